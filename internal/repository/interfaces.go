package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/medicare/pharmacy-api/internal/model"
)

// ErrNotFound is returned when a lookup's predicate matches no row. The
// predicate deliberately folds existence, ownership and state together, so
// callers cannot tell which part failed.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned on a unique constraint violation.
var ErrDuplicate = errors.New("duplicate record")

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
}

type PatientRepository interface {
	// Create inserts the patient and its PII record in one transaction.
	Create(ctx context.Context, patient *model.Patient, pii *model.PatientPII) error
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int, error)
	// ListForDoctor returns patients with at least one prescription authored
	// by the doctor, newest first, with full PII (doctor projection).
	ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.PatientSummary, error)
}

type PrescriptionRepository interface {
	// Create inserts the prescription and its items in one transaction.
	Create(ctx context.Context, p *model.Prescription) error
	// GetForDoctor resolves with the (id, doctor_id) predicate.
	GetForDoctor(ctx context.Context, id, doctorID uuid.UUID) (*model.Prescription, error)
	ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Prescription, error)
	// UpdateDraft applies a conditional update gated on (id, doctor_id,
	// DRAFT) and replaces all items in the same transaction. ErrNotFound when
	// the predicate matches nothing.
	UpdateDraft(ctx context.Context, p *model.Prescription) error
	// Finalize flips DRAFT to FINAL via a conditional update.
	Finalize(ctx context.Context, id, doctorID uuid.UUID) error
	// Dispense sets dispensed_at/dispensed_by gated on FINAL and
	// dispensed_at IS NULL, making a second call indistinguishable from a
	// missing record.
	Dispense(ctx context.Context, id, dispenserID uuid.UUID, at time.Time) error
	// GetDocument loads the fully-joined FINAL prescription owned by the
	// doctor, for rendering.
	GetDocument(ctx context.Context, id, doctorID uuid.UUID) (*model.PrescriptionDocument, error)
	// ListForDispenser returns the redacted projection; the query never
	// touches patient_pii. With undispensedOnly it returns the work queue.
	ListForDispenser(ctx context.Context, undispensedOnly bool) ([]*model.DispenserPrescription, error)
	GetForDispenser(ctx context.Context, id uuid.UUID) (*model.DispenserPrescription, error)
}

type MedicineRepository interface {
	// Resolve finds or creates the medicine by its natural triple; concurrent
	// calls for the same triple yield the same row.
	Resolve(ctx context.Context, name, strength, form string) (*model.Medicine, error)
	ListActive(ctx context.Context) ([]*model.Medicine, error)
}

type AuditRepository interface {
	Create(ctx context.Context, log *model.AuditLog) error
	List(ctx context.Context, filters *model.AuditFilters) ([]*model.AuditLog, int64, error)
}

type RawPrescriptionRepository interface {
	Create(ctx context.Context, p *model.RawPrescription) error
	GetForDoctor(ctx context.Context, id, doctorID uuid.UUID) (*model.RawPrescription, error)
	ListForDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*model.RawPrescription, int64, error)
}
