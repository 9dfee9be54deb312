package domain

import "errors"

var (
	// ErrEmptySeries is returned when a series is read before its first sample.
	ErrEmptySeries = errors.New("empty series")
	// ErrUnknownSeries indicates the series id was never registered.
	ErrUnknownSeries = errors.New("unknown series")
	// ErrMetricUnavailable marks a single OS query that failed during a tick.
	ErrMetricUnavailable = errors.New("metric unavailable")
	// ErrCoreCountChanged is logged when the OS reports a different number of cores than at startup.
	ErrCoreCountChanged = errors.New("core count changed")
	// ErrInvariantViolation means the store's sequences went out of lock-step.
	ErrInvariantViolation = errors.New("series invariant violated")
)
