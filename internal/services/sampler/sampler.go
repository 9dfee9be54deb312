// Package sampler turns one round of host provider queries into a Reading.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vshulcz/hostdash/internal/domain"
	"github.com/vshulcz/hostdash/internal/ports"
)

var errNotReported = errors.New("not reported by provider")

// DefaultDiskPath is the mount point sampled when Options.DiskPath is empty.
const DefaultDiskPath = "/"

// Options tune what the sampler reads.
type Options struct {
	DiskPath string
	Now      func() time.Time
}

// Sampler queries a HostProvider once per call. The number of logical cores is
// fixed when the sampler is built so per-core series never shift.
type Sampler struct {
	provider ports.HostProvider
	diskPath string
	now      func() time.Time
	logger   *zap.Logger

	cores int
	ids   []domain.SeriesID

	mu       sync.Mutex
	reported map[int]struct{}
}

var _ ports.Sampler = (*Sampler)(nil)

// New detects the logical core count and freezes the metric set.
func New(ctx context.Context, provider ports.HostProvider, opts Options, logger *zap.Logger) (*Sampler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.DiskPath == "" {
		opts.DiskPath = DefaultDiskPath
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	cores, err := detectCores(ctx, provider)
	if err != nil {
		return nil, err
	}
	logger.Info("sampler ready", zap.Int("cores", cores), zap.String("disk_path", opts.DiskPath))

	return &Sampler{
		provider: provider,
		diskPath: opts.DiskPath,
		now:      opts.Now,
		logger:   logger,
		cores:    cores,
		ids:      domain.MetricSet(cores),
		reported: make(map[int]struct{}),
	}, nil
}

func detectCores(ctx context.Context, p ports.HostProvider) (int, error) {
	n, err := p.CPUCount(ctx, true)
	if err == nil && n > 0 {
		return n, nil
	}
	per, perErr := p.CPUPercentPerCore(ctx)
	if perErr == nil && len(per) > 0 {
		return len(per), nil
	}
	if err == nil {
		err = perErr
	}
	return 0, fmt.Errorf("sampler: detect cpu cores: %w", err)
}

// Cores returns the core count frozen at construction.
func (s *Sampler) Cores() int { return s.cores }

// SeriesIDs returns the metric set in display order.
func (s *Sampler) SeriesIDs() []domain.SeriesID {
	return append([]domain.SeriesID(nil), s.ids...)
}

// Sample reads every metric once. Failures never abort the reading: the
// affected series get an unavailable sample and an entry in Reading.Errors.
func (s *Sampler) Sample(ctx context.Context) domain.Reading {
	r := &domain.Reading{
		At:     s.now(),
		Values: make(map[domain.SeriesID]domain.Sample, len(s.ids)),
		Errors: make(map[domain.SeriesID]error),
	}

	if v, err := s.provider.CPUPercent(ctx); err != nil {
		fail(r, domain.CPUTotal, err)
	} else {
		set(r, domain.CPUTotal, v)
	}

	s.sampleCores(ctx, r)

	if vm, err := s.provider.VirtualMemory(ctx); err != nil {
		fail(r, domain.MemPercent, err)
	} else {
		set(r, domain.MemPercent, vm.Percent)
	}

	if du, err := s.provider.DiskUsage(ctx, s.diskPath); err != nil {
		fail(r, domain.DiskPercent, err)
	} else {
		set(r, domain.DiskPercent, du.Percent)
	}

	if n, err := s.provider.ProcessCount(ctx); err != nil {
		fail(r, domain.ProcCount, err)
	} else {
		set(r, domain.ProcCount, float64(n))
	}

	if nc, err := s.provider.NetCounters(ctx); err != nil {
		fail(r, domain.NetBytesSent, err)
		fail(r, domain.NetBytesRecv, err)
		fail(r, domain.NetErrIn, err)
		fail(r, domain.NetErrOut, err)
	} else {
		set(r, domain.NetBytesSent, float64(nc.BytesSent))
		set(r, domain.NetBytesRecv, float64(nc.BytesRecv))
		set(r, domain.NetErrIn, float64(nc.ErrIn))
		set(r, domain.NetErrOut, float64(nc.ErrOut))
	}

	ps, err := s.provider.CurrentProcess(ctx)
	for id, v := range map[domain.SeriesID]domain.Sample{
		domain.SelfMemPercent:  ps.MemPercent,
		domain.SelfThreads:     ps.Threads,
		domain.SelfOpenFiles:   ps.OpenFiles,
		domain.SelfConnections: ps.Connections,
	} {
		switch {
		case err != nil:
			fail(r, id, err)
		case !v.OK:
			fail(r, id, errNotReported)
		default:
			r.Values[id] = v
		}
	}

	if len(r.Errors) > 0 {
		s.logger.Debug("sample incomplete", zap.Int("unavailable", len(r.Errors)))
	}
	return *r
}

func set(r *domain.Reading, id domain.SeriesID, v float64) {
	r.Values[id] = domain.Value(v)
}

func fail(r *domain.Reading, id domain.SeriesID, err error) {
	r.Values[id] = domain.Unavailable()
	r.Errors[id] = fmt.Errorf("%w: %s: %w", domain.ErrMetricUnavailable, id, err)
}

func (s *Sampler) sampleCores(ctx context.Context, r *domain.Reading) {
	per, err := s.provider.CPUPercentPerCore(ctx)
	if err != nil {
		for i := range s.cores {
			fail(r, domain.CPUCore(i), err)
		}
		return
	}

	if len(per) != s.cores {
		s.reportCoreChange(len(per))
	}
	for i := range s.cores {
		if i < len(per) {
			set(r, domain.CPUCore(i), per[i])
			continue
		}
		fail(r, domain.CPUCore(i), fmt.Errorf("%w: core %d missing", domain.ErrCoreCountChanged, i))
	}
}

// reportCoreChange logs each distinct mismatching core count once.
func (s *Sampler) reportCoreChange(got int) {
	s.mu.Lock()
	_, seen := s.reported[got]
	s.reported[got] = struct{}{}
	s.mu.Unlock()
	if seen {
		return
	}
	s.logger.Warn("cpu core count changed",
		zap.Error(domain.ErrCoreCountChanged),
		zap.Int("expected", s.cores),
		zap.Int("reported", got),
	)
}
