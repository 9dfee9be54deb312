package ports

import (
	"context"

	"github.com/vshulcz/hostdash/internal/domain"
)

// HostProvider answers point-in-time OS metric queries. Implementations must
// not retry; every method fails independently.
type HostProvider interface {
	CPUPercent(ctx context.Context) (float64, error)
	CPUPercentPerCore(ctx context.Context) ([]float64, error)
	CPUCount(ctx context.Context, logical bool) (int, error)
	CPUFrequency(ctx context.Context) (domain.CPUFrequency, error)
	VirtualMemory(ctx context.Context) (domain.VirtualMemory, error)
	DiskUsage(ctx context.Context, path string) (domain.DiskUsage, error)
	ProcessCount(ctx context.Context) (int, error)
	NetCounters(ctx context.Context) (domain.NetCounters, error)
	CurrentProcess(ctx context.Context) (domain.ProcessStats, error)
	HostInfo(ctx context.Context, diskPath string) (domain.HostInfo, error)
}
