package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Sample is one value of one series at one tick. OK=false marks a value the
// OS could not provide; it is kept so every series stays aligned with the
// timestamp sequence.
type Sample struct {
	Value float64
	OK    bool
}

// Value wraps v as an available sample.
func Value(v float64) Sample {
	return Sample{Value: v, OK: true}
}

// Unavailable is the placeholder stored for a failed sub-metric.
func Unavailable() Sample {
	return Sample{}
}

// MarshalJSON encodes available samples as numbers and unavailable ones as null.
func (s Sample) MarshalJSON() ([]byte, error) {
	if !s.OK || math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, s.Value, 'f', -1, 64), nil
}

// UnmarshalJSON accepts a number or null.
func (s *Sample) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*s = Sample{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*s = Value(v)
	return nil
}

// Reading is what the sampler returns for one tick.
type Reading struct {
	At     time.Time
	Values map[SeriesID]Sample
	Errors map[SeriesID]error
}

// Window is a read-only copy of the retained history: one timestamp per tick
// and, for every series in Order, one sample per timestamp.
type Window struct {
	Timestamps []time.Time
	Order      []SeriesID
	Series     map[SeriesID][]Sample
}

// Len returns the number of retained ticks.
func (w Window) Len() int {
	return len(w.Timestamps)
}

// Values returns the retained samples of id, oldest first.
func (w Window) Values(id SeriesID) []Sample {
	return w.Series[id]
}

type windowJSON struct {
	Timestamps []int64               `json:"timestamps"`
	Order      []SeriesID            `json:"order"`
	Series     map[SeriesID][]Sample `json:"series"`
}

// MarshalJSON renders timestamps as unix milliseconds.
func (w Window) MarshalJSON() ([]byte, error) {
	out := windowJSON{
		Timestamps: make([]int64, len(w.Timestamps)),
		Order:      w.Order,
		Series:     w.Series,
	}
	for i, ts := range w.Timestamps {
		out.Timestamps[i] = ts.UnixMilli()
	}
	if out.Order == nil {
		out.Order = []SeriesID{}
	}
	if out.Series == nil {
		out.Series = map[SeriesID][]Sample{}
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (w *Window) UnmarshalJSON(b []byte) error {
	var in windowJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	w.Timestamps = make([]time.Time, len(in.Timestamps))
	for i, ms := range in.Timestamps {
		w.Timestamps[i] = time.UnixMilli(ms)
	}
	w.Order = in.Order
	w.Series = in.Series
	return nil
}
