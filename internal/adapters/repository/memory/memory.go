// Package memory implements the rolling in-memory series store.
package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/vshulcz/hostdash/internal/domain"
	"github.com/vshulcz/hostdash/internal/ports"
)

// Store keeps the last H samples of every registered series plus the shared
// timestamp sequence, all in lock-step, behind a coarse-grained RW lock.
type Store struct {
	mu      sync.RWMutex
	history int
	ids     []domain.SeriesID
	index   map[domain.SeriesID]int
	ts      []time.Time
	series  [][]domain.Sample
	latest  []domain.Sample
	ticks   uint64
}

var _ ports.SeriesRepo = (*Store)(nil)

// New registers ids (duplicates are dropped) with a history length of h.
// A negative h is treated as 0, which retains no history at all.
func New(h int, ids []domain.SeriesID) *Store {
	h = max(h, 0)
	s := &Store{
		history: h,
		index:   make(map[domain.SeriesID]int, len(ids)),
		ts:      make([]time.Time, 0, h+1),
	}
	for _, id := range ids {
		if _, dup := s.index[id]; dup {
			continue
		}
		s.index[id] = len(s.ids)
		s.ids = append(s.ids, id)
	}
	s.series = make([][]domain.Sample, len(s.ids))
	for i := range s.series {
		s.series[i] = make([]domain.Sample, 0, h+1)
	}
	s.latest = make([]domain.Sample, len(s.ids))
	return s
}

// Append records one tick: one timestamp and one sample for every registered
// series. Series missing from row get an unavailable sample; ids that were
// never registered are ignored. Afterwards every sequence holds at most H
// entries, oldest evicted first.
func (s *Store) Append(at time.Time, row map[domain.SeriesID]domain.Sample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkLocked(); err != nil {
		return err
	}

	s.ts = pushTrim(s.ts, at, s.history)
	for i, id := range s.ids {
		v, ok := row[id]
		if !ok {
			v = domain.Unavailable()
		}
		s.series[i] = pushTrim(s.series[i], v, s.history)
		s.latest[i] = v
	}
	s.ticks++

	return s.checkLocked()
}

// Latest returns the most recently appended sample of id. It works even when
// H is 0.
func (s *Store) Latest(id domain.SeriesID) (domain.Sample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return domain.Sample{}, fmt.Errorf("%w: %s", domain.ErrUnknownSeries, id)
	}
	if s.ticks == 0 {
		return domain.Sample{}, fmt.Errorf("%w: %s", domain.ErrEmptySeries, id)
	}
	return s.latest[i], nil
}

// Window copies the retained history so callers never alias the store.
func (s *Store) Window() domain.Window {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w := domain.Window{
		Timestamps: append(make([]time.Time, 0, len(s.ts)), s.ts...),
		Order:      append(make([]domain.SeriesID, 0, len(s.ids)), s.ids...),
		Series:     make(map[domain.SeriesID][]domain.Sample, len(s.ids)),
	}
	for i, id := range s.ids {
		w.Series[id] = append(make([]domain.Sample, 0, len(s.series[i])), s.series[i]...)
	}
	return w
}

// Len returns the number of retained ticks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ts)
}

// Ticks returns how many appends the store has seen in total.
func (s *Store) Ticks() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ticks
}

// History returns the configured H.
func (s *Store) History() int {
	return s.history
}

// IDs returns the registered series in registration order.
func (s *Store) IDs() []domain.SeriesID {
	return append([]domain.SeriesID(nil), s.ids...)
}

func (s *Store) checkLocked() error {
	n := len(s.ts)
	if n > s.history {
		return fmt.Errorf("%w: %d timestamps exceed history %d", domain.ErrInvariantViolation, n, s.history)
	}
	for i, id := range s.ids {
		if got := len(s.series[i]); got != n {
			return fmt.Errorf("%w: series %s has %d samples, %d timestamps", domain.ErrInvariantViolation, id, got, n)
		}
	}
	return nil
}

// pushTrim appends v and evicts from the front so that at most h items remain.
func pushTrim[T any](buf []T, v T, h int) []T {
	buf = append(buf, v)
	if over := len(buf) - h; over > 0 {
		if over > len(buf) {
			panic(fmt.Sprintf("memory: evicting %d of %d items", over, len(buf)))
		}
		buf = append(buf[:0], buf[over:]...)
	}
	return buf
}
