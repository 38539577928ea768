package patient

import (
	"context"
)

type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id int64) (*Patient, error)
	// Update rewrites every field of the row by primary key.
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id int64) error
	// List returns all patients in insertion order.
	List(ctx context.Context) ([]*Patient, error)
}

type TestRepository interface {
	Create(ctx context.Context, t *Test) error
	GetByID(ctx context.Context, id int64) (*Test, error)
	// Update rewrites every field of the row by primary key.
	Update(ctx context.Context, t *Test) error
	Delete(ctx context.Context, id int64) error
	ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Test, int, error)
	// AllByPatient returns the patient's full test collection in insertion order.
	AllByPatient(ctx context.Context, patientID int64) ([]*Test, error)
}
