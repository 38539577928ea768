package patient

import (
	"time"
)

// Patient maps to the patients table. A patient exclusively owns its tests;
// deleting a patient cascades to them at the store level.
type Patient struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	DateOfBirth time.Time `db:"date_of_birth" json:"date_of_birth"`
	Gender      string    `db:"gender" json:"gender"`
	Tests       []*Test   `db:"-" json:"tests"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// TestCount returns the number of tests currently attached to the patient.
func (p *Patient) TestCount() int {
	return len(p.Tests)
}

// Test maps to the tests table. The within-threshold flag is user-supplied;
// no rule derives it from the result value.
type Test struct {
	ID                int64     `db:"id" json:"id"`
	PatientID         int64     `db:"patient_id" json:"patient_id"`
	TestName          string    `db:"test_name" json:"test_name"`
	TestDate          time.Time `db:"test_date" json:"test_date"`
	Result            float64   `db:"result" json:"result"`
	IsWithinThreshold bool      `db:"is_within_threshold" json:"is_within_threshold"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`

	// PatientName is derived for display and never persisted.
	PatientName string `db:"-" json:"patient_name,omitempty"`
}
