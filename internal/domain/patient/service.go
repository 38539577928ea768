package patient

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/ptm/ptm/internal/platform/apperr"
)

// Service keeps an ordered, insertion-order roster of patients mirrored from
// the store, loaded once at startup with tests eagerly attached. Every
// mutation writes to the store first; the roster only changes after the
// write commits, so a failed write leaves in-memory state untouched. Test
// collections are reloaded from the store after each test mutation rather
// than patched in memory, so the roster can never drift from persisted state.
type Service struct {
	mu       sync.RWMutex
	patients []*Patient

	patientRepo PatientRepository
	testRepo    TestRepository
}

func NewService(pr PatientRepository, tr TestRepository) *Service {
	return &Service{patientRepo: pr, testRepo: tr}
}

// Load mirrors the store into the roster. Called once at startup.
func (s *Service) Load(ctx context.Context) error {
	patients, err := s.patientRepo.List(ctx)
	if err != nil {
		return apperr.Persistence("load patients", err)
	}
	for _, p := range patients {
		tests, err := s.testRepo.AllByPatient(ctx, p.ID)
		if err != nil {
			return apperr.Persistence("load tests", err)
		}
		p.Tests = tests
	}

	s.mu.Lock()
	s.patients = patients
	s.mu.Unlock()
	return nil
}

// Patients returns a snapshot of the roster in insertion order. Entries are
// deep copies, so callers can read them after the lock is released.
func (s *Service) Patients() []*Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Patient, len(s.patients))
	for i, p := range s.patients {
		out[i] = clonePatient(p)
	}
	return out
}

// GetPatient returns a deep copy of the roster entry with the given id.
func (s *Service) GetPatient(id int64) (*Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.patients {
		if p.ID == id {
			return clonePatient(p), nil
		}
	}
	return nil, apperr.ErrNotFound
}

// AddPatient persists a new patient and appends it to the roster with its
// store-assigned id.
func (s *Service) AddPatient(ctx context.Context, name string, dob time.Time, gender string) (*Patient, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperr.Validation("name is required")
	}
	if dob.IsZero() {
		return nil, apperr.Validation("date of birth is required")
	}
	if strings.TrimSpace(gender) == "" {
		return nil, apperr.Validation("gender is required")
	}

	p := &Patient{
		Name:        name,
		DateOfBirth: dob,
		Gender:      gender,
		Tests:       []*Test{},
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.patientRepo.Create(ctx, p); err != nil {
		return nil, apperr.Persistence("add patient", err)
	}
	s.patients = append(s.patients, p)
	return clonePatient(p), nil
}

// UpdatePatient rewrites the full patient row by primary key. A nil patient
// is a no-op.
func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if p == nil {
		return nil
	}
	if strings.TrimSpace(p.Name) == "" {
		return apperr.Validation("name is required")
	}
	if p.DateOfBirth.IsZero() {
		return apperr.Validation("date of birth is required")
	}
	if strings.TrimSpace(p.Gender) == "" {
		return apperr.Validation("gender is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.patientRepo.Update(ctx, p); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		return apperr.Persistence("update patient", err)
	}
	if entry := s.find(p.ID); entry != nil && entry != p {
		entry.Name = p.Name
		entry.DateOfBirth = p.DateOfBirth
		entry.Gender = p.Gender
	}
	return nil
}

// DeletePatient removes the patient row, cascading to its tests at the store
// level, and drops the roster entry. A nil patient is a no-op.
func (s *Service) DeletePatient(ctx context.Context, p *Patient) error {
	if p == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.patientRepo.Delete(ctx, p.ID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		return apperr.Persistence("delete patient", err)
	}
	for i, entry := range s.patients {
		if entry.ID == p.ID {
			s.patients = append(s.patients[:i], s.patients[i+1:]...)
			break
		}
	}
	return nil
}

// AddTest persists a new test keyed to the patient's id, then reloads the
// patient's test collection from the store.
func (s *Service) AddTest(ctx context.Context, p *Patient, name string, date time.Time, result float64, isWithinThreshold bool) (*Test, error) {
	if p == nil {
		return nil, apperr.Validation("select a patient first")
	}
	if strings.TrimSpace(name) == "" {
		return nil, apperr.Validation("test name is required")
	}
	if date.IsZero() {
		return nil, apperr.Validation("test date is required")
	}

	t := &Test{
		PatientID:         p.ID,
		TestName:          name,
		TestDate:          date,
		Result:            result,
		IsWithinThreshold: isWithinThreshold,
		PatientName:       p.Name,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.testRepo.Create(ctx, t); err != nil {
		return nil, apperr.Persistence("add test", err)
	}
	if err := s.reloadTests(ctx, p); err != nil {
		return nil, err
	}
	return t, nil
}

// GetTest fetches a single test from the store.
func (s *Service) GetTest(ctx context.Context, id int64) (*Test, error) {
	t, err := s.testRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		return nil, apperr.Persistence("get test", err)
	}
	return t, nil
}

// UpdateTest rewrites the full test row by primary key, then reloads the
// owning patient's test collection.
func (s *Service) UpdateTest(ctx context.Context, t *Test) error {
	if t == nil {
		return apperr.Validation("test cannot be nil")
	}
	if strings.TrimSpace(t.TestName) == "" {
		return apperr.Validation("test name is required")
	}
	if t.TestDate.IsZero() {
		return apperr.Validation("test date is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.testRepo.Update(ctx, t); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		return apperr.Persistence("update test", err)
	}
	if entry := s.find(t.PatientID); entry != nil {
		if err := s.reloadTests(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

// DeleteTest removes the test row, then reloads the patient's test
// collection from the store.
func (s *Service) DeleteTest(ctx context.Context, p *Patient, t *Test) error {
	if p == nil || t == nil {
		return apperr.Validation("patient and test are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.testRepo.Delete(ctx, t.ID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		return apperr.Persistence("delete test", err)
	}
	return s.reloadTests(ctx, p)
}

// ListTests returns one page of the patient's tests straight from the store.
func (s *Service) ListTests(ctx context.Context, patientID int64, limit, offset int) ([]*Test, int, error) {
	items, total, err := s.testRepo.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, 0, apperr.Persistence("list tests", err)
	}
	return items, total, nil
}

// reloadTests replaces the in-memory test collection of the roster entry
// matching p (and of p itself when it is a detached copy) with the store's
// current contents. The roster entry gets its own copy of the collection so
// snapshots handed out earlier stay untouched. Callers must hold s.mu.
func (s *Service) reloadTests(ctx context.Context, p *Patient) error {
	tests, err := s.testRepo.AllByPatient(ctx, p.ID)
	if err != nil {
		return apperr.Persistence("reload tests", err)
	}
	p.Tests = tests
	if entry := s.find(p.ID); entry != nil && entry != p {
		entry.Tests = cloneTests(tests)
	}
	return nil
}

// find returns the roster entry with the given id. Callers must hold s.mu.
func (s *Service) find(id int64) *Patient {
	for _, p := range s.patients {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// clonePatient deep-copies a roster entry, tests included. The service never
// hands out pointers into the guarded roster.
func clonePatient(p *Patient) *Patient {
	cp := *p
	cp.Tests = cloneTests(p.Tests)
	return &cp
}

func cloneTests(tests []*Test) []*Test {
	if tests == nil {
		return nil
	}
	out := make([]*Test, len(tests))
	for i, t := range tests {
		tc := *t
		out[i] = &tc
	}
	return out
}
