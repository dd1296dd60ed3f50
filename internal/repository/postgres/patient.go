package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medicare/pharmacy-api/internal/model"
	"github.com/medicare/pharmacy-api/internal/repository"
)

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{NewBaseRepository(db)}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient, pii *model.PatientPII) error {
	patient.CreatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO patients (id, patient_code, age_band, created_at)
			VALUES ($1, $2, $3, $4)
		`
		if _, err := tx.ExecContext(ctx, query,
			patient.ID,
			patient.PatientCode,
			patient.AgeBand,
			patient.CreatedAt,
		); err != nil {
			if isUniqueViolation(err) {
				return repository.ErrDuplicate
			}
			return fmt.Errorf("failed to create patient: %w", err)
		}

		pii.PatientID = patient.ID
		piiQuery := `
			INSERT INTO patient_pii (patient_id, full_name, phone, address, cnic)
			VALUES ($1, $2, $3, $4, $5)
		`
		if _, err := tx.ExecContext(ctx, piiQuery,
			pii.PatientID,
			pii.FullName,
			pii.Phone,
			pii.Address,
			pii.CNIC,
		); err != nil {
			return fmt.Errorf("failed to create patient pii: %w", err)
		}
		return nil
	})
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	var patient model.Patient
	err := r.GetDB().GetContext(ctx, &patient, `SELECT * FROM patients WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	var pii model.PatientPII
	err = r.GetDB().GetContext(ctx, &pii, `SELECT * FROM patient_pii WHERE patient_id = $1`, id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get patient pii: %w", err)
	}
	if err == nil {
		patient.PII = &pii
	}
	return &patient, nil
}

func (r *patientRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.GetDB().GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM patients WHERE id = $1)`, id)
	if err != nil {
		return false, fmt.Errorf("failed to check patient existence: %w", err)
	}
	return exists, nil
}

func (r *patientRepository) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := r.GetDB().GetContext(ctx, &count,
		`SELECT COUNT(*) FROM patients WHERE created_at >= $1`, since)
	if err != nil {
		return 0, fmt.Errorf("failed to count patients: %w", err)
	}
	return count, nil
}

// ListForDoctor derives the doctor's patient list from prescription
// authorship; there is no independent doctor-patient assignment.
func (r *patientRepository) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.PatientSummary, error) {
	query := `
		SELECT p.id, p.patient_code, p.age_band, p.created_at,
		       pii.full_name, pii.phone, pii.address, pii.cnic
		FROM patients p
		JOIN patient_pii pii ON pii.patient_id = p.id
		WHERE EXISTS (
			SELECT 1 FROM prescriptions rx
			WHERE rx.patient_id = p.id AND rx.doctor_id = $1
		)
		ORDER BY p.created_at DESC
	`
	var patients []*model.PatientSummary
	if err := r.GetDB().SelectContext(ctx, &patients, query, doctorID); err != nil {
		return nil, fmt.Errorf("failed to list patients for doctor: %w", err)
	}
	return patients, nil
}
