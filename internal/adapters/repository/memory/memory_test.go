package memory

import (
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/vshulcz/hostdash/internal/domain"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func tick(i int) time.Time { return t0.Add(time.Duration(i) * time.Second) }

func values(samples []domain.Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Value
	}
	return out
}

func TestStore_EvictsOldestDownToHistory(t *testing.T) {
	s := New(3, []domain.SeriesID{domain.CPUTotal, domain.MemPercent})
	for i, v := range []float64{5, 10, 15, 20} {
		row := map[domain.SeriesID]domain.Sample{
			domain.CPUTotal:   domain.Value(v),
			domain.MemPercent: domain.Value(v / 10),
		}
		if err := s.Append(tick(i), row); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	w := s.Window()
	if got := values(w.Values(domain.CPUTotal)); !slices.Equal(got, []float64{10, 15, 20}) {
		t.Fatalf("cpu=%v want [10 15 20]", got)
	}
	if w.Len() != 3 {
		t.Fatalf("timestamps=%d want 3", w.Len())
	}
	if !w.Timestamps[0].Equal(tick(1)) || !w.Timestamps[2].Equal(tick(3)) {
		t.Fatalf("timestamps=%v", w.Timestamps)
	}
}

func TestStore_LockStepAndBounded(t *testing.T) {
	tests := []struct {
		name    string
		history int
		ticks   int
	}{
		{"fewer_ticks_than_history", 10, 4},
		{"exactly_history", 5, 5},
		{"history_plus_one", 5, 6},
		{"many_ticks", 7, 100},
		{"history_one", 1, 9},
	}

	ids := domain.MetricSet(4)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := New(tc.history, ids)
			for i := range tc.ticks {
				row := map[domain.SeriesID]domain.Sample{domain.CPUTotal: domain.Value(float64(i))}
				if err := s.Append(tick(i), row); err != nil {
					t.Fatalf("append: %v", err)
				}
				w := s.Window()
				if w.Len() > tc.history {
					t.Fatalf("tick %d: len=%d > H=%d", i, w.Len(), tc.history)
				}
				for _, id := range ids {
					if got := len(w.Values(id)); got != w.Len() {
						t.Fatalf("tick %d: series %s len=%d timestamps=%d", i, id, got, w.Len())
					}
				}
			}
			if want := min(tc.ticks, tc.history); s.Len() != want {
				t.Fatalf("Len=%d want %d", s.Len(), want)
			}
			if s.Ticks() != uint64(tc.ticks) {
				t.Fatalf("Ticks=%d want %d", s.Ticks(), tc.ticks)
			}
		})
	}
}

func TestStore_FirstSampleGoneAfterHPlusOneTicks(t *testing.T) {
	const h = 4
	ids := []domain.SeriesID{domain.CPUTotal, domain.ProcCount}
	s := New(h, ids)
	for i := range h + 1 {
		v := float64(100 + i)
		if err := s.Append(tick(i), map[domain.SeriesID]domain.Sample{
			domain.CPUTotal:  domain.Value(v),
			domain.ProcCount: domain.Value(v),
		}); err != nil {
			t.Fatal(err)
		}
	}
	w := s.Window()
	for _, id := range ids {
		if slices.Contains(values(w.Values(id)), 100) {
			t.Fatalf("series %s still holds the first sample: %v", id, values(w.Values(id)))
		}
	}
	if slices.ContainsFunc(w.Timestamps, func(ts time.Time) bool { return ts.Equal(tick(0)) }) {
		t.Fatal("first timestamp was not evicted")
	}
}

func TestStore_Latest(t *testing.T) {
	s := New(2, []domain.SeriesID{domain.CPUTotal})

	if _, err := s.Latest(domain.CPUTotal); !errors.Is(err, domain.ErrEmptySeries) {
		t.Fatalf("before first append: err=%v want ErrEmptySeries", err)
	}
	if _, err := s.Latest("nope"); !errors.Is(err, domain.ErrUnknownSeries) {
		t.Fatalf("unknown id: err=%v want ErrUnknownSeries", err)
	}

	for i, v := range []float64{1, 2, 3, 4} {
		if err := s.Append(tick(i), map[domain.SeriesID]domain.Sample{domain.CPUTotal: domain.Value(v)}); err != nil {
			t.Fatal(err)
		}
		got, err := s.Latest(domain.CPUTotal)
		if err != nil {
			t.Fatalf("Latest: %v", err)
		}
		if got != domain.Value(v) {
			t.Fatalf("Latest=%+v want %v", got, v)
		}
	}
}

func TestStore_ZeroHistory(t *testing.T) {
	for _, h := range []int{0, -5} {
		s := New(h, []domain.SeriesID{domain.CPUTotal})
		if err := s.Append(tick(0), map[domain.SeriesID]domain.Sample{domain.CPUTotal: domain.Value(42)}); err != nil {
			t.Fatalf("H=%d append: %v", h, err)
		}
		if s.Len() != 0 || len(s.Window().Values(domain.CPUTotal)) != 0 {
			t.Fatalf("H=%d retained history: %+v", h, s.Window())
		}
		got, err := s.Latest(domain.CPUTotal)
		if err != nil || got.Value != 42 {
			t.Fatalf("H=%d Latest=(%+v,%v) want 42", h, got, err)
		}
	}
}

func TestStore_MissingValuesStayAligned(t *testing.T) {
	s := New(5, []domain.SeriesID{domain.CPUTotal, domain.SelfOpenFiles})
	if err := s.Append(tick(0), map[domain.SeriesID]domain.Sample{
		domain.CPUTotal:      domain.Value(1),
		domain.SelfOpenFiles: domain.Value(3),
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.Append(tick(1), map[domain.SeriesID]domain.Sample{
		domain.CPUTotal: domain.Value(2),
		"unregistered":  domain.Value(99),
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.Append(tick(2), nil); err != nil {
		t.Fatal(err)
	}

	w := s.Window()
	files := w.Values(domain.SelfOpenFiles)
	if len(files) != 3 || !files[0].OK || files[1].OK || files[2].OK {
		t.Fatalf("open files=%+v", files)
	}
	if _, ok := w.Series["unregistered"]; ok {
		t.Fatal("unregistered id leaked into the window")
	}
}

func TestStore_PerCoreIndexStable(t *testing.T) {
	ids := []domain.SeriesID{domain.CPUCore(0), domain.CPUCore(1)}
	s := New(10, ids)
	for i, row := range [][]float64{{10, 20}, {15, 25}, {20, 30}} {
		m := map[domain.SeriesID]domain.Sample{}
		for core, v := range row {
			m[domain.CPUCore(core)] = domain.Value(v)
		}
		if err := s.Append(tick(i), m); err != nil {
			t.Fatal(err)
		}
	}
	w := s.Window()
	if got := values(w.Values(domain.CPUCore(0))); !slices.Equal(got, []float64{10, 15, 20}) {
		t.Fatalf("core0=%v", got)
	}
	if got := values(w.Values(domain.CPUCore(1))); !slices.Equal(got, []float64{20, 25, 30}) {
		t.Fatalf("core1=%v", got)
	}
}

func TestStore_WindowIsACopy(t *testing.T) {
	s := New(3, []domain.SeriesID{domain.CPUTotal})
	_ = s.Append(tick(0), map[domain.SeriesID]domain.Sample{domain.CPUTotal: domain.Value(1)})

	w1 := s.Window()
	w2 := s.Window()
	if !slices.Equal(w1.Values(domain.CPUTotal), w2.Values(domain.CPUTotal)) || !slices.Equal(w1.Timestamps, w2.Timestamps) {
		t.Fatalf("two reads without append differ: %+v vs %+v", w1, w2)
	}

	w1.Series[domain.CPUTotal][0] = domain.Value(999)
	w1.Timestamps[0] = time.Time{}
	w1.Order[0] = "mutated"

	w3 := s.Window()
	if w3.Values(domain.CPUTotal)[0].Value != 1 || !w3.Timestamps[0].Equal(tick(0)) || w3.Order[0] != domain.CPUTotal {
		t.Fatalf("window aliases store state: %+v", w3)
	}

	_ = s.Append(tick(1), map[domain.SeriesID]domain.Sample{domain.CPUTotal: domain.Value(2)})
	if len(w2.Values(domain.CPUTotal)) != 1 {
		t.Fatalf("earlier snapshot changed after append: %+v", w2)
	}
}

func TestStore_DuplicateIDs(t *testing.T) {
	s := New(2, []domain.SeriesID{domain.CPUTotal, domain.CPUTotal, domain.MemPercent})
	if got := s.IDs(); !slices.Equal(got, []domain.SeriesID{domain.CPUTotal, domain.MemPercent}) {
		t.Fatalf("IDs=%v", got)
	}
	if s.History() != 2 {
		t.Fatalf("History=%d", s.History())
	}
}

func TestStore_InvariantViolation(t *testing.T) {
	s := New(3, []domain.SeriesID{domain.CPUTotal})
	s.series[0] = append(s.series[0], domain.Value(1))

	err := s.Append(tick(0), nil)
	if !errors.Is(err, domain.ErrInvariantViolation) {
		t.Fatalf("err=%v want ErrInvariantViolation", err)
	}
}

func TestStore_ConcurrentReaders(t *testing.T) {
	s := New(16, domain.MetricSet(2))
	var wg sync.WaitGroup
	done := make(chan struct{})

	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				w := s.Window()
				for _, id := range w.Order {
					if len(w.Series[id]) != w.Len() {
						t.Errorf("torn read: %s len=%d ts=%d", id, len(w.Series[id]), w.Len())
						return
					}
				}
			}
		}()
	}

	for i := range 200 {
		if err := s.Append(tick(i), map[domain.SeriesID]domain.Sample{domain.CPUTotal: domain.Value(float64(i))}); err != nil {
			t.Fatal(err)
		}
	}
	close(done)
	wg.Wait()
}
