package models

import "time"

// MetricsSnapshot is a point-in-time reading of host metrics. Instances are
// produced fresh on every poll and never mutated afterward.
type MetricsSnapshot struct {
	Timestamp time.Time     `json:"timestamp"`
	CPU       CPUStats      `json:"cpu"`
	Memory    MemoryStats   `json:"memory"`
	Disk      DiskStats     `json:"disk"`
	Network   NetworkStats  `json:"network"`
	Processes []ProcessInfo `json:"processes"`
}

// CPUStats mirrors the dashboard's cpu payload.
type CPUStats struct {
	Percent float64   `json:"percent"`
	PerCore []float64 `json:"per_core"`
	Count   int       `json:"count"`
}

type MemoryStats struct {
	Percent     float64 `json:"percent"`
	UsedGB      float64 `json:"used_gb"`
	TotalGB     float64 `json:"total_gb"`
	AvailableGB float64 `json:"available_gb"`
}

type DiskStats struct {
	Percent float64 `json:"percent"`
	UsedGB  float64 `json:"used_gb"`
	TotalGB float64 `json:"total_gb"`
	FreeGB  float64 `json:"free_gb"`
}

type NetworkStats struct {
	BytesSent   uint64  `json:"bytes_sent"`
	BytesRecv   uint64  `json:"bytes_recv"`
	PacketsSent uint64  `json:"packets_sent"`
	PacketsRecv uint64  `json:"packets_recv"`
	BytesSentMB float64 `json:"bytes_sent_mb"`
	BytesRecvMB float64 `json:"bytes_recv_mb"`
}

// ProcessInfo describes one entry of the top-N process list.
type ProcessInfo struct {
	PID           int32   `json:"pid"`
	Name          string  `json:"name"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	Status        string  `json:"status,omitempty"`
}

// SystemStats is the "system" channel subset of a snapshot.
type SystemStats struct {
	Timestamp time.Time   `json:"timestamp"`
	CPU       CPUStats    `json:"cpu"`
	Memory    MemoryStats `json:"memory"`
	Disk      DiskStats   `json:"disk"`
}

// NetworkUpdate is the "network" channel payload.
type NetworkUpdate struct {
	Timestamp time.Time `json:"timestamp"`
	NetworkStats
}

// ProcessUpdate is the "processes" channel payload.
type ProcessUpdate struct {
	Timestamp time.Time     `json:"timestamp"`
	Processes []ProcessInfo `json:"processes"`
}

// SystemStats extracts the system channel view of the snapshot.
func (s *MetricsSnapshot) SystemStats() SystemStats {
	return SystemStats{Timestamp: s.Timestamp, CPU: s.CPU, Memory: s.Memory, Disk: s.Disk}
}

// NetworkUpdate extracts the network channel view of the snapshot.
func (s *MetricsSnapshot) NetworkUpdate() NetworkUpdate {
	return NetworkUpdate{Timestamp: s.Timestamp, NetworkStats: s.Network}
}

// ProcessUpdate extracts the processes channel view of the snapshot.
func (s *MetricsSnapshot) ProcessUpdate() ProcessUpdate {
	return ProcessUpdate{Timestamp: s.Timestamp, Processes: s.Processes}
}
