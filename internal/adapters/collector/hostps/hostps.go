// Package hostps reads host and current-process metrics through gopsutil.
package hostps

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/vshulcz/hostdash/internal/domain"
	"github.com/vshulcz/hostdash/internal/ports"
)

var errNoData = errors.New("hostps: provider returned no data")

// Provider is a stateless gopsutil-backed ports.HostProvider. CPU percentages
// are measured against the previous call (interval 0), so the first reading
// after startup covers the time since boot.
type Provider struct {
	pid int32
}

var _ ports.HostProvider = (*Provider)(nil)

// New returns a Provider that reports process stats for the running binary.
func New() *Provider {
	return &Provider{pid: int32(os.Getpid())} // #nosec G115
}

func (p *Provider) CPUPercent(ctx context.Context) (float64, error) {
	pct, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, fmt.Errorf("cpu percent: %w", err)
	}
	if len(pct) == 0 {
		return 0, fmt.Errorf("cpu percent: %w", errNoData)
	}
	return pct[0], nil
}

func (p *Provider) CPUPercentPerCore(ctx context.Context) ([]float64, error) {
	pct, err := cpu.PercentWithContext(ctx, 0, true)
	if err != nil {
		return nil, fmt.Errorf("cpu percent per core: %w", err)
	}
	return pct, nil
}

func (p *Provider) CPUCount(ctx context.Context, logical bool) (int, error) {
	n, err := cpu.CountsWithContext(ctx, logical)
	if err != nil {
		return 0, fmt.Errorf("cpu count: %w", err)
	}
	return n, nil
}

// CPUFrequency reports the average and the highest MHz over all CPU entries.
func (p *Provider) CPUFrequency(ctx context.Context) (domain.CPUFrequency, error) {
	infos, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return domain.CPUFrequency{}, fmt.Errorf("cpu info: %w", err)
	}
	return frequency(infos)
}

func frequency(infos []cpu.InfoStat) (domain.CPUFrequency, error) {
	if len(infos) == 0 {
		return domain.CPUFrequency{}, fmt.Errorf("cpu info: %w", errNoData)
	}
	var f domain.CPUFrequency
	for _, in := range infos {
		f.Current += in.Mhz
		f.Max = max(f.Max, in.Mhz)
	}
	f.Current /= float64(len(infos))
	return f, nil
}

func (p *Provider) VirtualMemory(ctx context.Context) (domain.VirtualMemory, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return domain.VirtualMemory{}, fmt.Errorf("virtual memory: %w", err)
	}
	if vm == nil {
		return domain.VirtualMemory{}, fmt.Errorf("virtual memory: %w", errNoData)
	}
	return domain.VirtualMemory{
		Total:     vm.Total,
		Available: vm.Available,
		Used:      vm.Used,
		Percent:   vm.UsedPercent,
	}, nil
}

func (p *Provider) DiskUsage(ctx context.Context, path string) (domain.DiskUsage, error) {
	u, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return domain.DiskUsage{}, fmt.Errorf("disk usage %s: %w", path, err)
	}
	if u == nil {
		return domain.DiskUsage{}, fmt.Errorf("disk usage %s: %w", path, errNoData)
	}
	return domain.DiskUsage{
		Path:    u.Path,
		Total:   u.Total,
		Used:    u.Used,
		Free:    u.Free,
		Percent: u.UsedPercent,
	}, nil
}

func (p *Provider) ProcessCount(ctx context.Context) (int, error) {
	pids, err := process.PidsWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("process list: %w", err)
	}
	return len(pids), nil
}

// NetCounters sums the counters of every interface.
func (p *Provider) NetCounters(ctx context.Context) (domain.NetCounters, error) {
	io, err := net.IOCountersWithContext(ctx, false)
	if err != nil {
		return domain.NetCounters{}, fmt.Errorf("net io counters: %w", err)
	}
	if len(io) == 0 {
		return domain.NetCounters{}, fmt.Errorf("net io counters: %w", errNoData)
	}
	var c domain.NetCounters
	for _, s := range io {
		c.BytesSent += s.BytesSent
		c.BytesRecv += s.BytesRecv
		c.ErrIn += s.Errin
		c.ErrOut += s.Errout
	}
	return c, nil
}

// CurrentProcess reads stats of the running binary. Each field is read
// independently: a failure leaves only that field unavailable. The error is
// non-nil only when the process handle itself cannot be obtained.
func (p *Provider) CurrentProcess(ctx context.Context) (domain.ProcessStats, error) {
	st := domain.ProcessStats{
		MemPercent:  domain.Unavailable(),
		Threads:     domain.Unavailable(),
		OpenFiles:   domain.Unavailable(),
		Connections: domain.Unavailable(),
	}
	proc, err := process.NewProcessWithContext(ctx, p.pid)
	if err != nil {
		return st, fmt.Errorf("process %d: %w", p.pid, err)
	}
	if v, err := proc.MemoryPercentWithContext(ctx); err == nil {
		st.MemPercent = domain.Value(float64(v))
	}
	if v, err := proc.NumThreadsWithContext(ctx); err == nil {
		st.Threads = domain.Value(float64(v))
	}
	if v, err := proc.OpenFilesWithContext(ctx); err == nil {
		st.OpenFiles = domain.Value(float64(len(v)))
	}
	if v, err := proc.ConnectionsWithContext(ctx); err == nil {
		st.Connections = domain.Value(float64(len(v)))
	}
	return st, nil
}

// HostInfo gathers the static facts shown in the dashboard header. Parts that
// cannot be read are left zero; the first error encountered is returned along
// with whatever was collected.
func (p *Provider) HostInfo(ctx context.Context, diskPath string) (domain.HostInfo, error) {
	info := domain.HostInfo{RuntimeVersion: runtime.Version()}
	var errs []error

	if hi, err := host.InfoWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("host info: %w", err))
	} else if hi != nil {
		info.Hostname = hi.Hostname
		info.Platform = platform(hi)
	}
	if users, err := host.UsersWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("host users: %w", err))
	} else {
		info.Users = len(userNames(users))
	}
	if infos, err := cpu.InfoWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("cpu info: %w", err))
	} else {
		if len(infos) > 0 {
			info.Processor = infos[0].ModelName
		}
		if f, err := frequency(infos); err == nil {
			info.Frequency = f
		}
	}
	if n, err := p.CPUCount(ctx, false); err != nil {
		errs = append(errs, err)
	} else {
		info.PhysicalCores = n
	}
	if n, err := p.CPUCount(ctx, true); err != nil {
		errs = append(errs, err)
	} else {
		info.LogicalCores = n
	}
	if vm, err := p.VirtualMemory(ctx); err != nil {
		errs = append(errs, err)
	} else {
		info.Memory = vm
	}
	if du, err := p.DiskUsage(ctx, diskPath); err != nil {
		errs = append(errs, err)
	} else {
		info.Disk = du
	}

	return info, errors.Join(errs...)
}

func platform(hi *host.InfoStat) string {
	parts := make([]string, 0, 4)
	for _, s := range []string{hi.OS, hi.Platform, hi.PlatformVersion, hi.KernelArch} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "-")
}

// userNames lists distinct logged-in user names in first-seen order.
func userNames(users []host.UserStat) []string {
	seen := make(map[string]struct{}, len(users))
	out := make([]string, 0, len(users))
	for _, u := range users {
		if _, ok := seen[u.User]; ok || u.User == "" {
			continue
		}
		seen[u.User] = struct{}{}
		out = append(out, u.User)
	}
	return out
}
