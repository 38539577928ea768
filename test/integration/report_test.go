package integration

import (
	"context"
	"testing"
	"time"

	"github.com/ptm/ptm/internal/domain/report"
)

func generate(t *testing.T, ctx context.Context, from, to time.Time) []report.Row {
	t.Helper()
	svc := report.NewService(report.NewRepoPG(globalDB.Pool))
	rows, err := svc.GenerateReport(ctx, from, to)
	if err != nil {
		t.Fatalf("generate report: %v", err)
	}
	return rows
}

func TestReportPercentages(t *testing.T) {
	ctx := context.Background()
	resetTables(t, ctx)
	svc := newLoadedService(t, ctx)

	alice := seedPatient(t, ctx, svc, "Alice")
	date := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	seedTest(t, ctx, svc, alice, "CBC", date, 5.0, true)
	seedTest(t, ctx, svc, alice, "Glucose", date, 92.0, true)
	seedTest(t, ctx, svc, alice, "TSH", date, 8.1, false)

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	rows := generate(t, ctx, from, to)

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].TotalTests != 3 {
		t.Errorf("expected 3 tests, got %d", rows[0].TotalTests)
	}
	// 2 of 3 within threshold, rounded to 2 decimals.
	if rows[0].PercentageWithinThreshold != 66.67 {
		t.Errorf("expected 66.67, got %v", rows[0].PercentageWithinThreshold)
	}
}

func TestReportIncludesPatientsWithoutTests(t *testing.T) {
	ctx := context.Background()
	resetTables(t, ctx)
	svc := newLoadedService(t, ctx)

	seedPatient(t, ctx, svc, "Alice")
	bob := seedPatient(t, ctx, svc, "Bob")
	date := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	seedTest(t, ctx, svc, bob, "CBC", date, 5.0, true)

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	rows := generate(t, ctx, from, to)

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	// Ordered by name.
	if rows[0].PatientName != "Alice" || rows[1].PatientName != "Bob" {
		t.Errorf("expected name order Alice, Bob; got %s, %s", rows[0].PatientName, rows[1].PatientName)
	}
	if rows[0].TotalTests != 0 || rows[0].PercentageWithinThreshold != 0 {
		t.Errorf("expected zero totals for Alice, got %+v", rows[0])
	}
	if rows[1].TotalTests != 1 || rows[1].PercentageWithinThreshold != 100 {
		t.Errorf("expected full totals for Bob, got %+v", rows[1])
	}
}

func TestReportInclusiveUpperBound(t *testing.T) {
	ctx := context.Background()
	resetTables(t, ctx)
	svc := newLoadedService(t, ctx)

	alice := seedPatient(t, ctx, svc, "Alice")
	// Late on the last day of the range.
	seedTest(t, ctx, svc, alice, "CBC", time.Date(2024, 3, 31, 23, 45, 0, 0, time.UTC), 5.0, true)
	// Just past the range.
	seedTest(t, ctx, svc, alice, "Glucose", time.Date(2024, 4, 1, 0, 15, 0, 0, time.UTC), 92.0, true)

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	rows := generate(t, ctx, from, to)

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].TotalTests != 1 {
		t.Errorf("expected only the in-range test to count, got %d", rows[0].TotalTests)
	}
}

func TestReportOutOfRangeTestsExcluded(t *testing.T) {
	ctx := context.Background()
	resetTables(t, ctx)
	svc := newLoadedService(t, ctx)

	alice := seedPatient(t, ctx, svc, "Alice")
	seedTest(t, ctx, svc, alice, "CBC", time.Date(2024, 2, 28, 12, 0, 0, 0, time.UTC), 5.0, true)

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	rows := generate(t, ctx, from, to)

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	// The patient still appears, with nothing counted.
	if rows[0].TotalTests != 0 || rows[0].PercentageWithinThreshold != 0 {
		t.Errorf("expected zero totals, got %+v", rows[0])
	}
}
