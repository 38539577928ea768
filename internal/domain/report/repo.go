package report

import (
	"context"
	"time"
)

type Repository interface {
	// Summary aggregates per-patient test counts and threshold percentages
	// over [from, to]. Every patient appears, tests or not, ordered by name.
	Summary(ctx context.Context, from, to time.Time) ([]Row, error)
}
