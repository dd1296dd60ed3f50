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

type prescriptionRepository struct {
	BaseRepository
}

func NewPrescriptionRepository(db *sqlx.DB) repository.PrescriptionRepository {
	return &prescriptionRepository{NewBaseRepository(db)}
}

func (r *prescriptionRepository) Create(ctx context.Context, p *model.Prescription) error {
	p.CreatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO prescriptions (
				id, patient_id, doctor_id, diagnosis, recommendation, notes,
				status, issued_on, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`
		if _, err := tx.ExecContext(ctx, query,
			p.ID,
			p.PatientID,
			p.DoctorID,
			p.Diagnosis,
			p.Recommendation,
			p.Notes,
			p.Status,
			p.IssuedOn,
			p.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to create prescription: %w", err)
		}

		return insertItems(ctx, tx, p.ID, p.Items)
	})
}

func (r *prescriptionRepository) GetForDoctor(ctx context.Context, id, doctorID uuid.UUID) (*model.Prescription, error) {
	// Ownership is part of the lookup predicate: another doctor's
	// prescription and a nonexistent id are the same ErrNotFound.
	var p model.Prescription
	err := r.GetDB().GetContext(ctx, &p,
		`SELECT * FROM prescriptions WHERE id = $1 AND doctor_id = $2`, id, doctorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get prescription: %w", err)
	}

	items, err := r.loadItems(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Items = items
	return &p, nil
}

func (r *prescriptionRepository) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Prescription, error) {
	var list []*model.Prescription
	err := r.GetDB().SelectContext(ctx, &list,
		`SELECT * FROM prescriptions WHERE doctor_id = $1 ORDER BY created_at DESC`, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	for _, p := range list {
		items, err := r.loadItems(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p.Items = items
	}
	return list, nil
}

// UpdateDraft's WHERE clause carries the full precondition. Items are
// replaced delete-then-recreate inside the transaction, so no reader can
// observe an intermediate empty item list.
func (r *prescriptionRepository) UpdateDraft(ctx context.Context, p *model.Prescription) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE prescriptions
			SET patient_id = $1, diagnosis = $2, recommendation = $3, notes = $4
			WHERE id = $5 AND doctor_id = $6 AND status = $7
		`
		res, err := tx.ExecContext(ctx, query,
			p.PatientID,
			p.Diagnosis,
			p.Recommendation,
			p.Notes,
			p.ID,
			p.DoctorID,
			model.StatusDraft,
		)
		if err != nil {
			return fmt.Errorf("failed to update prescription: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if n == 0 {
			return repository.ErrNotFound
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM prescription_items WHERE prescription_id = $1`, p.ID); err != nil {
			return fmt.Errorf("failed to clear prescription items: %w", err)
		}
		return insertItems(ctx, tx, p.ID, p.Items)
	})
}

func (r *prescriptionRepository) Finalize(ctx context.Context, id, doctorID uuid.UUID) error {
	query := `
		UPDATE prescriptions SET status = $1
		WHERE id = $2 AND doctor_id = $3 AND status = $4
	`
	res, err := r.GetDB().ExecContext(ctx, query,
		model.StatusFinal, id, doctorID, model.StatusDraft)
	if err != nil {
		return fmt.Errorf("failed to finalize prescription: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Dispense is a single conditional update; two concurrent calls cannot both
// match dispensed_at IS NULL, so exactly one wins and the loser sees the same
// ErrNotFound as a missing record.
func (r *prescriptionRepository) Dispense(ctx context.Context, id, dispenserID uuid.UUID, at time.Time) error {
	query := `
		UPDATE prescriptions SET dispensed_at = $1, dispensed_by = $2
		WHERE id = $3 AND status = $4 AND dispensed_at IS NULL
	`
	res, err := r.GetDB().ExecContext(ctx, query, at, dispenserID, id, model.StatusFinal)
	if err != nil {
		return fmt.Errorf("failed to dispense prescription: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *prescriptionRepository) GetDocument(ctx context.Context, id, doctorID uuid.UUID) (*model.PrescriptionDocument, error) {
	var p model.Prescription
	err := r.GetDB().GetContext(ctx, &p,
		`SELECT * FROM prescriptions WHERE id = $1 AND doctor_id = $2 AND status = $3`,
		id, doctorID, model.StatusFinal)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get prescription for document: %w", err)
	}

	items, err := r.loadItems(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Items = items

	var patient model.Patient
	if err := r.GetDB().GetContext(ctx, &patient,
		`SELECT * FROM patients WHERE id = $1`, p.PatientID); err != nil {
		return nil, fmt.Errorf("failed to get patient for document: %w", err)
	}
	var pii model.PatientPII
	if err := r.GetDB().GetContext(ctx, &pii,
		`SELECT * FROM patient_pii WHERE patient_id = $1`, p.PatientID); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to get patient pii for document: %w", err)
		}
	} else {
		patient.PII = &pii
	}

	var doctor struct {
		DisplayName string `db:"display_name"`
		Email       string `db:"email"`
	}
	if err := r.GetDB().GetContext(ctx, &doctor,
		`SELECT display_name, email FROM users WHERE id = $1`, doctorID); err != nil {
		return nil, fmt.Errorf("failed to get doctor for document: %w", err)
	}

	return &model.PrescriptionDocument{
		Prescription: &p,
		Patient:      &patient,
		DoctorName:   doctor.DisplayName,
		DoctorEmail:  doctor.Email,
	}, nil
}

// ListForDispenser joins patients but never patient_pii; the projection the
// dispenser sees is patient_code and age_band only.
func (r *prescriptionRepository) ListForDispenser(ctx context.Context, undispensedOnly bool) ([]*model.DispenserPrescription, error) {
	query := `
		SELECT rx.id, rx.diagnosis, rx.recommendation, rx.status, rx.issued_on,
		       rx.dispensed_at, rx.dispensed_by, p.patient_code, p.age_band
		FROM prescriptions rx
		JOIN patients p ON p.id = rx.patient_id
		WHERE rx.status = $1
	`
	if undispensedOnly {
		query += ` AND rx.dispensed_at IS NULL`
	}
	query += ` ORDER BY rx.issued_on DESC`

	var list []*model.DispenserPrescription
	if err := r.GetDB().SelectContext(ctx, &list, query, model.StatusFinal); err != nil {
		return nil, fmt.Errorf("failed to list prescriptions for dispenser: %w", err)
	}
	for _, p := range list {
		items, err := r.loadItems(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p.Items = items
	}
	return list, nil
}

func (r *prescriptionRepository) GetForDispenser(ctx context.Context, id uuid.UUID) (*model.DispenserPrescription, error) {
	query := `
		SELECT rx.id, rx.diagnosis, rx.recommendation, rx.status, rx.issued_on,
		       rx.dispensed_at, rx.dispensed_by, p.patient_code, p.age_band
		FROM prescriptions rx
		JOIN patients p ON p.id = rx.patient_id
		WHERE rx.id = $1 AND rx.status = $2
	`
	var p model.DispenserPrescription
	err := r.GetDB().GetContext(ctx, &p, query, id, model.StatusFinal)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get prescription for dispenser: %w", err)
	}
	items, err := r.loadItems(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Items = items
	return &p, nil
}

func (r *prescriptionRepository) loadItems(ctx context.Context, prescriptionID uuid.UUID) ([]*model.PrescriptionItem, error) {
	var items []*model.PrescriptionItem
	err := r.GetDB().SelectContext(ctx, &items,
		`SELECT * FROM prescription_items WHERE prescription_id = $1 ORDER BY item_order`,
		prescriptionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load prescription items: %w", err)
	}
	for _, item := range items {
		var med model.Medicine
		if err := r.GetDB().GetContext(ctx, &med,
			`SELECT * FROM medicines WHERE id = $1`, item.MedicineID); err != nil {
			return nil, fmt.Errorf("failed to load medicine %s: %w", item.MedicineID, err)
		}
		item.Medicine = &med
	}
	return items, nil
}

func insertItems(ctx context.Context, tx *sqlx.Tx, prescriptionID uuid.UUID, items []*model.PrescriptionItem) error {
	query := `
		INSERT INTO prescription_items (
			id, prescription_id, medicine_id, item_order,
			dosage, frequency, duration, remarks
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for i, item := range items {
		item.ID = uuid.New()
		item.PrescriptionID = prescriptionID
		item.ItemOrder = i + 1
		if _, err := tx.ExecContext(ctx, query,
			item.ID,
			item.PrescriptionID,
			item.MedicineID,
			item.ItemOrder,
			item.Dosage,
			item.Frequency,
			item.Duration,
			item.Remarks,
		); err != nil {
			return fmt.Errorf("failed to insert prescription item: %w", err)
		}
	}
	return nil
}
