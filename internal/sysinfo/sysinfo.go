// Package sysinfo samples host metrics for scripts via gopsutil.
package sysinfo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	psnet "github.com/shirou/gopsutil/v4/net"
)

// CPU holds aggregate CPU utilisation.
type CPU struct {
	Usage float64 `json:"usage"` // percent since the previous sample
	Cores int     `json:"cores"`
}

// Memory holds physical memory statistics.
type Memory struct {
	Total          uint64  `json:"total"`
	Used           uint64  `json:"used"`
	Available      uint64  `json:"available"`
	UsedPercent    float64 `json:"used_percent"`
	TotalHuman     string  `json:"total_human"`
	UsedHuman      string  `json:"used_human"`
	AvailableHuman string  `json:"available_human"`
}

// Load holds the load averages.
type Load struct {
	Load1  float64 `json:"load1"`
	Load5  float64 `json:"load5"`
	Load15 float64 `json:"load15"`
}

// Uptime is the time since boot.
type Uptime struct {
	Seconds uint64 `json:"seconds"`
	Human   string `json:"human"`
}

// Disk holds usage of the filesystem containing Path.
type Disk struct {
	Path        string  `json:"path"`
	Total       uint64  `json:"total"`
	Used        uint64  `json:"used"`
	Free        uint64  `json:"free"`
	UsedPercent float64 `json:"used_percent"`
	TotalHuman  string  `json:"total_human"`
	UsedHuman   string  `json:"used_human"`
	FreeHuman   string  `json:"free_human"`
}

// Network holds counters and rates of one interface. Rates are bytes per
// second since the previous sample of the same interface, zero on the first.
type Network struct {
	Interface   string  `json:"interface"`
	RxBytes     uint64  `json:"rx_bytes"`
	TxBytes     uint64  `json:"tx_bytes"`
	RxRate      float64 `json:"rx_rate"`
	TxRate      float64 `json:"tx_rate"`
	RxRateHuman string  `json:"rx_rate_human"`
	TxRateHuman string  `json:"tx_rate_human"`
}

// Provider is the metric backend.
type Provider interface {
	CPUPercent(ctx context.Context) (float64, error)
	CPUCount(ctx context.Context) (int, error)
	VirtualMemory(ctx context.Context) (*mem.VirtualMemoryStat, error)
	LoadAvg(ctx context.Context) (*load.AvgStat, error)
	Uptime(ctx context.Context) (uint64, error)
	DiskUsage(ctx context.Context, path string) (*disk.UsageStat, error)
	IOCounters(ctx context.Context) ([]psnet.IOCountersStat, error)
}

type netSample struct {
	rx, tx uint64
	at     time.Time
}

// Sampler produces metric snapshots. It is safe for concurrent use.
type Sampler struct {
	provider Provider
	now      func() time.Time

	mu   sync.Mutex
	prev map[string]netSample
}

// New returns a Sampler backed by gopsutil.
func New() *Sampler {
	return NewWithProvider(gopsutilProvider{}, time.Now)
}

// NewWithProvider returns a Sampler using p and the clock now.
func NewWithProvider(p Provider, now func() time.Time) *Sampler {
	return &Sampler{
		provider: p,
		now:      now,
		prev:     make(map[string]netSample),
	}
}

// CPU samples CPU usage.
func (s *Sampler) CPU(ctx context.Context) (CPU, error) {
	usage, err := s.provider.CPUPercent(ctx)
	if err != nil {
		return CPU{}, fmt.Errorf("cpu: %w", err)
	}
	cores, err := s.provider.CPUCount(ctx)
	if err != nil {
		return CPU{}, fmt.Errorf("cpu count: %w", err)
	}
	return CPU{Usage: usage, Cores: cores}, nil
}

// Memory samples memory usage.
func (s *Sampler) Memory(ctx context.Context) (Memory, error) {
	vm, err := s.provider.VirtualMemory(ctx)
	if err != nil {
		return Memory{}, fmt.Errorf("memory: %w", err)
	}
	return Memory{
		Total:          vm.Total,
		Used:           vm.Used,
		Available:      vm.Available,
		UsedPercent:    vm.UsedPercent,
		TotalHuman:     humanize.IBytes(vm.Total),
		UsedHuman:      humanize.IBytes(vm.Used),
		AvailableHuman: humanize.IBytes(vm.Available),
	}, nil
}

// Load samples the load averages.
func (s *Sampler) Load(ctx context.Context) (Load, error) {
	avg, err := s.provider.LoadAvg(ctx)
	if err != nil {
		return Load{}, fmt.Errorf("load: %w", err)
	}
	return Load{Load1: avg.Load1, Load5: avg.Load5, Load15: avg.Load15}, nil
}

// Uptime samples the time since boot.
func (s *Sampler) Uptime(ctx context.Context) (Uptime, error) {
	secs, err := s.provider.Uptime(ctx)
	if err != nil {
		return Uptime{}, fmt.Errorf("uptime: %w", err)
	}
	return Uptime{Seconds: secs, Human: FormatUptime(time.Duration(secs) * time.Second)}, nil
}

// Disk samples usage of the filesystem holding path ("/" when empty).
func (s *Sampler) Disk(ctx context.Context, path string) (Disk, error) {
	if path == "" {
		path = "/"
	}
	u, err := s.provider.DiskUsage(ctx, path)
	if err != nil {
		return Disk{}, fmt.Errorf("disk %s: %w", path, err)
	}
	return Disk{
		Path:        path,
		Total:       u.Total,
		Used:        u.Used,
		Free:        u.Free,
		UsedPercent: u.UsedPercent,
		TotalHuman:  humanize.IBytes(u.Total),
		UsedHuman:   humanize.IBytes(u.Used),
		FreeHuman:   humanize.IBytes(u.Free),
	}, nil
}

// Network samples the counters of iface and the rates since its previous sample.
func (s *Sampler) Network(ctx context.Context, iface string) (Network, error) {
	counters, err := s.provider.IOCounters(ctx)
	if err != nil {
		return Network{}, fmt.Errorf("network: %w", err)
	}

	var stat *psnet.IOCountersStat
	for i := range counters {
		if counters[i].Name == iface {
			stat = &counters[i]
			break
		}
	}
	if stat == nil {
		return Network{}, fmt.Errorf("network: no interface %q", iface)
	}

	now := s.now()
	n := Network{Interface: iface, RxBytes: stat.BytesRecv, TxBytes: stat.BytesSent}

	s.mu.Lock()
	prev, ok := s.prev[iface]
	s.prev[iface] = netSample{rx: stat.BytesRecv, tx: stat.BytesSent, at: now}
	s.mu.Unlock()

	if elapsed := now.Sub(prev.at).Seconds(); ok && elapsed > 0 {
		// Counters reset when an interface goes down and up.
		if stat.BytesRecv >= prev.rx {
			n.RxRate = float64(stat.BytesRecv-prev.rx) / elapsed
		}
		if stat.BytesSent >= prev.tx {
			n.TxRate = float64(stat.BytesSent-prev.tx) / elapsed
		}
	}
	n.RxRateHuman = humanize.IBytes(uint64(n.RxRate)) + "/s"
	n.TxRateHuman = humanize.IBytes(uint64(n.TxRate)) + "/s"
	return n, nil
}

// FormatUptime renders d as "3d 4h 5m", dropping leading zero units.
func FormatUptime(d time.Duration) string {
	days := int(d / (24 * time.Hour))
	hours := int(d/time.Hour) % 24
	mins := int(d/time.Minute) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, mins)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, mins)
	default:
		return fmt.Sprintf("%dm", mins)
	}
}

type gopsutilProvider struct{}

func (gopsutilProvider) CPUPercent(ctx context.Context) (float64, error) {
	pcts, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, err
	}
	if len(pcts) == 0 {
		return 0, fmt.Errorf("no cpu data")
	}
	return pcts[0], nil
}

func (gopsutilProvider) CPUCount(ctx context.Context) (int, error) {
	return cpu.CountsWithContext(ctx, true)
}

func (gopsutilProvider) VirtualMemory(ctx context.Context) (*mem.VirtualMemoryStat, error) {
	return mem.VirtualMemoryWithContext(ctx)
}

func (gopsutilProvider) LoadAvg(ctx context.Context) (*load.AvgStat, error) {
	return load.AvgWithContext(ctx)
}

func (gopsutilProvider) Uptime(ctx context.Context) (uint64, error) {
	return host.UptimeWithContext(ctx)
}

func (gopsutilProvider) DiskUsage(ctx context.Context, path string) (*disk.UsageStat, error) {
	return disk.UsageWithContext(ctx, path)
}

func (gopsutilProvider) IOCounters(ctx context.Context) ([]psnet.IOCountersStat, error) {
	return psnet.IOCountersWithContext(ctx, true)
}
