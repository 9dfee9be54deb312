package ports

import (
	"context"
	"time"

	"github.com/vshulcz/hostdash/internal/domain"
)

// Sampler produces one reading per call.
type Sampler interface {
	Sample(ctx context.Context) domain.Reading
}

// SeriesRepo is the rolling history the tick handler writes into.
type SeriesRepo interface {
	Append(at time.Time, row map[domain.SeriesID]domain.Sample) error
	Latest(id domain.SeriesID) (domain.Sample, error)
	Window() domain.Window
}
