package patient

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ptm/ptm/internal/platform/apperr"
)

// =========== Patient Repository ===========

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

const patientCols = `id, name, date_of_birth, gender, created_at, updated_at`

func (r *patientRepoPG) scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.Name, &p.DateOfBirth, &p.Gender, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	return &p, err
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO patients (name, date_of_birth, gender)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`,
		p.Name, p.DateOfBirth, p.Gender).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *patientRepoPG) GetByID(ctx context.Context, id int64) (*Patient, error) {
	return r.scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE patients SET name=$2, date_of_birth=$3, gender=$4, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.DateOfBirth, p.Gender)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *patientRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *patientRepoPG) List(ctx context.Context) ([]*Patient, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+patientCols+` FROM patients ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Patient
	for rows.Next() {
		p, err := r.scanPatient(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// =========== Test Repository ===========

type testRepoPG struct{ pool *pgxpool.Pool }

func NewTestRepoPG(pool *pgxpool.Pool) TestRepository {
	return &testRepoPG{pool: pool}
}

const testCols = `t.id, t.patient_id, t.test_name, t.test_date, t.result, t.is_within_threshold, t.created_at, t.updated_at, p.name`

func (r *testRepoPG) scanTest(row pgx.Row) (*Test, error) {
	var t Test
	err := row.Scan(&t.ID, &t.PatientID, &t.TestName, &t.TestDate, &t.Result,
		&t.IsWithinThreshold, &t.CreatedAt, &t.UpdatedAt, &t.PatientName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	return &t, err
}

func (r *testRepoPG) Create(ctx context.Context, t *Test) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO tests (patient_id, test_name, test_date, result, is_within_threshold)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		t.PatientID, t.TestName, t.TestDate, t.Result, t.IsWithinThreshold).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *testRepoPG) GetByID(ctx context.Context, id int64) (*Test, error) {
	return r.scanTest(r.pool.QueryRow(ctx, `
		SELECT `+testCols+` FROM tests t
		JOIN patients p ON p.id = t.patient_id
		WHERE t.id = $1`, id))
}

func (r *testRepoPG) Update(ctx context.Context, t *Test) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tests SET patient_id=$2, test_name=$3, test_date=$4, result=$5, is_within_threshold=$6, updated_at=NOW()
		WHERE id = $1`,
		t.ID, t.PatientID, t.TestName, t.TestDate, t.Result, t.IsWithinThreshold)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *testRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *testRepoPG) ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Test, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tests WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+testCols+` FROM tests t
		JOIN patients p ON p.id = t.patient_id
		WHERE t.patient_id = $1
		ORDER BY t.id LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Test
	for rows.Next() {
		t, err := r.scanTest(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, rows.Err()
}

func (r *testRepoPG) AllByPatient(ctx context.Context, patientID int64) ([]*Test, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+testCols+` FROM tests t
		JOIN patients p ON p.id = t.patient_id
		WHERE t.patient_id = $1
		ORDER BY t.id`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Test
	for rows.Next() {
		t, err := r.scanTest(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}
