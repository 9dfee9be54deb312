// Package monitor drives the sample, append and publish cycle.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/vshulcz/hostdash/internal/domain"
	"github.com/vshulcz/hostdash/internal/ports"
	"github.com/vshulcz/hostdash/pkg/observer"
)

// DefaultRefresh is used when Options.Refresh is not positive.
const DefaultRefresh = time.Second

// Options configure the service.
type Options struct {
	Refresh  time.Duration
	DiskPath string
	Now      func() time.Time

	// History and Series are reported in Stats only.
	History int
	Series  int
}

// Stats describe the scheduler since startup.
type Stats struct {
	Ticks        uint64        `json:"ticks"`
	Skipped      uint64        `json:"skipped"`
	Failed       uint64        `json:"failed"`
	LastTick     time.Time     `json:"last_tick"`
	LastDuration time.Duration `json:"last_duration_ns"`
	Refresh      time.Duration `json:"refresh_ns"`
	History      int           `json:"history"`
	Series       int           `json:"series"`
}

// Service owns the series store and the tick loop feeding it.
type Service struct {
	sampler ports.Sampler
	repo    ports.SeriesRepo
	host    ports.HostProvider
	subject *observer.Subject[domain.Window]
	logger  *zap.Logger

	refresh  time.Duration
	diskPath string
	now      func() time.Time
	history  int
	series   int

	busy     atomic.Bool
	inflight sync.WaitGroup

	ticks    atomic.Uint64
	skipped  atomic.Uint64
	failed   atomic.Uint64
	lastTick atomic.Int64
	lastDur  atomic.Int64
}

// New wires the service around an existing store.
func New(smp ports.Sampler, repo ports.SeriesRepo, host ports.HostProvider, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Refresh <= 0 {
		opts.Refresh = DefaultRefresh
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Service{
		sampler:  smp,
		repo:     repo,
		host:     host,
		subject:  observer.NewSubject[domain.Window](),
		logger:   logger,
		refresh:  opts.Refresh,
		diskPath: opts.DiskPath,
		now:      opts.Now,
		history:  opts.History,
		series:   opts.Series,
	}
	s.subject.SetErrorHandler(func(err error) {
		logger.Warn("window observer failed", zap.Error(err))
	})
	return s
}

// Subscribe registers obs for every window produced by OnTick.
func (s *Service) Subscribe(obs observer.Observer[domain.Window]) (unsubscribe func()) {
	return s.subject.Subscribe(obs)
}

// OnTick samples the host once, appends the reading at now and publishes the
// resulting window. Partial readings are normal; only store failures are
// returned.
func (s *Service) OnTick(ctx context.Context, now time.Time) (domain.Window, error) {
	start := time.Now()
	r := s.sampler.Sample(ctx)
	for id, err := range r.Errors {
		s.logger.Debug("metric unavailable", zap.String("series", string(id)), zap.Error(err))
	}

	if err := s.repo.Append(now, r.Values); err != nil {
		s.failed.Add(1)
		if errors.Is(err, domain.ErrInvariantViolation) {
			s.logger.DPanic("series store corrupted", zap.Error(err))
		}
		return domain.Window{}, fmt.Errorf("append tick: %w", err)
	}

	w := s.repo.Window()
	s.subject.Publish(ctx, w)

	s.ticks.Add(1)
	s.lastTick.Store(now.UnixNano())
	s.lastDur.Store(int64(time.Since(start)))
	return w, nil
}

// Run ticks every refresh period until ctx is done. A tick that fires while
// the previous one is still running is skipped, not queued. Run returns after
// the in-flight tick, if any, has finished.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.refresh)
	defer ticker.Stop()
	defer s.inflight.Wait()

	s.logger.Info("monitor started", zap.Duration("refresh", s.refresh))
	s.dispatch(ctx, s.now())
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("monitor stopping", zap.Uint64("ticks", s.ticks.Load()), zap.Uint64("skipped", s.skipped.Load()))
			return nil
		case <-ticker.C:
			s.dispatch(ctx, s.now())
		}
	}
}

func (s *Service) dispatch(ctx context.Context, now time.Time) bool {
	if !s.busy.CompareAndSwap(false, true) {
		s.skipped.Add(1)
		s.logger.Debug("tick skipped, previous still running", zap.Time("at", now))
		return false
	}
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer s.busy.Store(false)
		if _, err := s.OnTick(ctx, now); err != nil {
			s.logger.Error("tick failed", zap.Error(err))
		}
	}()
	return true
}

// Window returns the current snapshot. Repeated calls without a tick in
// between return equal windows.
func (s *Service) Window() domain.Window {
	return s.repo.Window()
}

// Latest returns the most recent sample of id.
func (s *Service) Latest(id domain.SeriesID) (domain.Sample, error) {
	return s.repo.Latest(id)
}

// Info reads the host facts shown in the dashboard header.
func (s *Service) Info(ctx context.Context) (domain.HostInfo, error) {
	return s.host.HostInfo(ctx, s.diskPath)
}

// Stats returns scheduler counters.
func (s *Service) Stats() Stats {
	st := Stats{
		Ticks:        s.ticks.Load(),
		Skipped:      s.skipped.Load(),
		Failed:       s.failed.Load(),
		LastDuration: time.Duration(s.lastDur.Load()),
		Refresh:      s.refresh,
		History:      s.history,
		Series:       s.series,
	}
	if ns := s.lastTick.Load(); ns != 0 {
		st.LastTick = time.Unix(0, ns).UTC()
	}
	return st
}
