package report

import (
	"context"
	"errors"
	"time"

	"github.com/ptm/ptm/internal/platform/apperr"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GenerateReport produces the per-patient tests summary for the inclusive
// date range [from, to]. The upper bound is stretched to the end of its day
// so a test recorded at any time on the "to" date is counted.
func (s *Service) GenerateReport(ctx context.Context, from, to time.Time) ([]Row, error) {
	if from.IsZero() {
		return nil, apperr.Validation("from date is required")
	}
	if to.IsZero() {
		return nil, apperr.Validation("to date is required")
	}
	if from.After(to) {
		return nil, apperr.Validation("from date must not be after to date")
	}

	// End of day at the store's timestamp resolution.
	end := to.AddDate(0, 0, 1).Add(-time.Microsecond)

	rows, err := s.repo.Summary(ctx, from, end)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		return nil, apperr.Persistence("generate report", err)
	}
	if rows == nil {
		rows = []Row{}
	}
	return rows, nil
}
