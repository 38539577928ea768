package report

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

// The date bounds live in the join condition so patients without matching
// tests keep their row instead of being filtered out.
const summaryQuery = `
	SELECT p.id, p.name,
	       COUNT(t.id) AS total_tests,
	       COALESCE(
	           ROUND(SUM(CASE WHEN t.is_within_threshold THEN 1 ELSE 0 END) * 100.0
	               / NULLIF(COUNT(t.id), 0), 2),
	           0
	       )::float8 AS percentage_within_threshold
	FROM patients p
	LEFT JOIN tests t
	    ON t.patient_id = p.id
	   AND t.test_date >= $1
	   AND t.test_date <= $2
	GROUP BY p.id, p.name
	ORDER BY p.name`

func (r *repoPG) Summary(ctx context.Context, from, to time.Time) ([]Row, error) {
	rows, err := r.pool.Query(ctx, summaryQuery, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.PatientID, &row.PatientName, &row.TotalTests, &row.PercentageWithinThreshold); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
