package diag

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"

	"eassist/internal/models"
)

// OSInfo describes the host operating system.
type OSInfo struct {
	System   string `json:"system"`
	Release  string `json:"release"`
	Version  string `json:"version"`
	Machine  string `json:"machine"`
	Hostname string `json:"hostname"`
	BootTime string `json:"boot_time"`
}

// CPUInfo is the diagnostics view of the processor.
type CPUInfo struct {
	PhysicalCores int       `json:"physical_cores"`
	LogicalCores  int       `json:"logical_cores"`
	UsagePercent  float64   `json:"usage_percent"`
	PerCPUUsage   []float64 `json:"per_cpu_usage"`
}

// MemoryInfo is the diagnostics view of virtual memory.
type MemoryInfo struct {
	Total       uint64  `json:"total"`
	Available   uint64  `json:"available"`
	Used        uint64  `json:"used"`
	Percent     float64 `json:"percent"`
	TotalGB     float64 `json:"total_gb"`
	AvailableGB float64 `json:"available_gb"`
	UsedGB      float64 `json:"used_gb"`
}

// DiskInfo describes one mounted partition.
type DiskInfo struct {
	Device     string  `json:"device"`
	Mountpoint string  `json:"mountpoint"`
	Fstype     string  `json:"fstype"`
	Total      uint64  `json:"total"`
	Used       uint64  `json:"used"`
	Free       uint64  `json:"free"`
	Percent    float64 `json:"percent"`
	TotalGB    float64 `json:"total_gb"`
	FreeGB     float64 `json:"free_gb"`
}

// HealthReport bundles the full system health view.
type HealthReport struct {
	OS     OSInfo     `json:"os"`
	CPU    CPUInfo    `json:"cpu"`
	Memory MemoryInfo `json:"memory"`
	Disks  []DiskInfo `json:"disks"`
}

// SystemHealth gathers a comprehensive health report for the host.
func SystemHealth(ctx context.Context) (*HealthReport, error) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	report := &HealthReport{}

	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, err
	}
	hostname, _ := os.Hostname()
	report.OS = OSInfo{
		System:   info.OS,
		Release:  info.PlatformVersion,
		Version:  info.KernelVersion,
		Machine:  runtime.GOARCH,
		Hostname: hostname,
		BootTime: time.Unix(int64(info.BootTime), 0).Format(time.RFC3339),
	}

	physical, _ := cpu.CountsWithContext(ctx, false)
	logical, _ := cpu.CountsWithContext(ctx, true)
	usage, err := cpu.PercentWithContext(ctx, 250*time.Millisecond, false)
	if err != nil || len(usage) == 0 {
		return nil, err
	}
	perCPU, _ := cpu.PercentWithContext(ctx, 100*time.Millisecond, true)
	report.CPU = CPUInfo{
		PhysicalCores: physical,
		LogicalCores:  logical,
		UsagePercent:  usage[0],
		PerCPUUsage:   perCPU,
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, err
	}
	report.Memory = MemoryInfo{
		Total:       vm.Total,
		Available:   vm.Available,
		Used:        vm.Used,
		Percent:     vm.UsedPercent,
		TotalGB:     gb(vm.Total),
		AvailableGB: gb(vm.Available),
		UsedGB:      gb(vm.Used),
	}

	partitions, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, err
	}
	for _, part := range partitions {
		usage, err := disk.UsageWithContext(ctx, part.Mountpoint)
		if err != nil {
			continue
		}
		report.Disks = append(report.Disks, DiskInfo{
			Device:     part.Device,
			Mountpoint: part.Mountpoint,
			Fstype:     part.Fstype,
			Total:      usage.Total,
			Used:       usage.Used,
			Free:       usage.Free,
			Percent:    usage.UsedPercent,
			TotalGB:    gb(usage.Total),
			FreeGB:     gb(usage.Free),
		})
	}

	return report, nil
}

// Processes lists the top running processes by CPU usage, capped at limit.
func Processes(ctx context.Context, limit int) ([]models.ProcessInfo, error) {
	if limit <= 0 {
		limit = 50
	}
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.ProcessInfo, 0, len(procs))
	for _, proc := range procs {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		name, err := proc.NameWithContext(ctx)
		if err != nil {
			continue
		}
		cpuPct, err := proc.CPUPercentWithContext(ctx)
		if err != nil {
			continue
		}
		memPct, _ := proc.MemoryPercentWithContext(ctx)
		var status string
		if st, err := proc.StatusWithContext(ctx); err == nil && len(st) > 0 {
			status = st[0]
		}
		out = append(out, models.ProcessInfo{
			PID:           proc.Pid,
			Name:          name,
			CPUPercent:    cpuPct,
			MemoryPercent: float64(memPct),
			Status:        status,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CPUPercent > out[j].CPUPercent })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CleanTempResult reports what a temp cleanup removed.
type CleanTempResult struct {
	FilesDeleted int     `json:"files_deleted"`
	SpaceFreedMB float64 `json:"space_freed_mb"`
}

// CleanTemp removes entries under the OS temp directory. Per-entry failures
// (files in use, permissions) are skipped; the sweep is best-effort.
func CleanTemp(ctx context.Context) (*CleanTempResult, error) {
	dir := os.TempDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	res := &CleanTempResult{}
	var freed int64
	for _, entry := range entries {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		path := filepath.Join(dir, entry.Name())
		size := treeSize(path)
		if err := os.RemoveAll(path); err != nil {
			continue
		}
		res.FilesDeleted++
		freed += size
	}
	res.SpaceFreedMB = float64(freed) / (1 << 20)
	return res, nil
}

func treeSize(path string) int64 {
	var total int64
	_ = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err == nil && info.Mode().IsRegular() {
			total += info.Size()
		}
		return nil
	})
	return total
}

func gb(b uint64) float64 { return float64(b) / (1 << 30) }
