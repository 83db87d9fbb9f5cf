package metrics

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"
	"golang.org/x/sync/errgroup"

	"eassist/internal/models"
)

const (
	// collectTimeout bounds a single collection pass; a stuck OS call is
	// treated as a provider failure, not a fatal error.
	collectTimeout = 30 * time.Second

	topProcessCount = 10
)

// HostProvider reads metrics from the local host via gopsutil.
type HostProvider struct {
	rootPath string
}

// NewHostProvider returns a provider sampling the filesystem mounted at
// rootPath (usually "/").
func NewHostProvider(rootPath string) *HostProvider {
	if rootPath == "" {
		rootPath = "/"
	}
	return &HostProvider{rootPath: rootPath}
}

// Snapshot gathers cpu, memory, disk, network and process readings
// concurrently. Any individual failure fails the whole snapshot.
func (p *HostProvider) Snapshot(ctx context.Context) (*models.MetricsSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, collectTimeout)
	defer cancel()

	snap := &models.MetricsSnapshot{Timestamp: time.Now()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := p.cpuStats(gctx)
		if err != nil {
			return err
		}
		snap.CPU = stats
		return nil
	})
	g.Go(func() error {
		stats, err := p.memoryStats(gctx)
		if err != nil {
			return err
		}
		snap.Memory = stats
		return nil
	})
	g.Go(func() error {
		stats, err := p.diskStats(gctx)
		if err != nil {
			return err
		}
		snap.Disk = stats
		return nil
	})
	g.Go(func() error {
		stats, err := p.networkStats(gctx)
		if err != nil {
			return err
		}
		snap.Network = stats
		return nil
	})
	g.Go(func() error {
		procs, err := p.topProcesses(gctx, topProcessCount)
		if err != nil {
			return err
		}
		snap.Processes = procs
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

func (p *HostProvider) cpuStats(ctx context.Context) (models.CPUStats, error) {
	total, err := cpu.PercentWithContext(ctx, 100*time.Millisecond, false)
	if err != nil || len(total) == 0 {
		return models.CPUStats{}, &CollectionError{Source: "cpu", Err: err}
	}
	perCore, err := cpu.PercentWithContext(ctx, 100*time.Millisecond, true)
	if err != nil {
		return models.CPUStats{}, &CollectionError{Source: "cpu", Err: err}
	}
	count, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		count = len(perCore)
	}
	return models.CPUStats{
		Percent: roundPercent(total[0]),
		PerCore: roundAll(perCore),
		Count:   count,
	}, nil
}

func (p *HostProvider) memoryStats(ctx context.Context) (models.MemoryStats, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return models.MemoryStats{}, &CollectionError{Source: "memory", Err: err}
	}
	return models.MemoryStats{
		Percent:     roundPercent(vm.UsedPercent),
		UsedGB:      toGB(vm.Used),
		TotalGB:     toGB(vm.Total),
		AvailableGB: toGB(vm.Available),
	}, nil
}

func (p *HostProvider) diskStats(ctx context.Context) (models.DiskStats, error) {
	usage, err := disk.UsageWithContext(ctx, p.rootPath)
	if err != nil {
		return models.DiskStats{}, &CollectionError{Source: "disk", Err: err}
	}
	return models.DiskStats{
		Percent: roundPercent(usage.UsedPercent),
		UsedGB:  toGB(usage.Used),
		TotalGB: toGB(usage.Total),
		FreeGB:  toGB(usage.Free),
	}, nil
}

func (p *HostProvider) networkStats(ctx context.Context) (models.NetworkStats, error) {
	counters, err := net.IOCountersWithContext(ctx, false)
	if err != nil || len(counters) == 0 {
		return models.NetworkStats{}, &CollectionError{Source: "network", Err: err}
	}
	c := counters[0]
	return models.NetworkStats{
		BytesSent:   c.BytesSent,
		BytesRecv:   c.BytesRecv,
		PacketsSent: c.PacketsSent,
		PacketsRecv: c.PacketsRecv,
		BytesSentMB: toMB(c.BytesSent),
		BytesRecvMB: toMB(c.BytesRecv),
	}, nil
}

// topProcesses returns the top-N processes by CPU usage. Individual process
// read failures are skipped; processes routinely exit mid-iteration.
func (p *HostProvider) topProcesses(ctx context.Context, n int) ([]models.ProcessInfo, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, &CollectionError{Source: "processes", Err: err}
	}
	out := make([]models.ProcessInfo, 0, len(procs))
	for _, proc := range procs {
		if ctx.Err() != nil {
			return nil, &CollectionError{Source: "processes", Err: ctx.Err()}
		}
		cpuPct, err := proc.CPUPercentWithContext(ctx)
		if err != nil || cpuPct <= 0 {
			continue
		}
		name, err := proc.NameWithContext(ctx)
		if err != nil {
			continue
		}
		memPct, err := proc.MemoryPercentWithContext(ctx)
		if err != nil {
			memPct = 0
		}
		out = append(out, models.ProcessInfo{
			PID:           proc.Pid,
			Name:          name,
			CPUPercent:    round1(cpuPct),
			MemoryPercent: round1(float64(memPct)),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CPUPercent > out[j].CPUPercent })
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func toGB(b uint64) float64 { return round2(float64(b) / (1 << 30)) }
func toMB(b uint64) float64 { return round2(float64(b) / (1 << 20)) }

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }

func roundPercent(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return round1(math.Min(math.Max(v, 0), 100))
}

func roundAll(vals []float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = roundPercent(v)
	}
	return out
}
