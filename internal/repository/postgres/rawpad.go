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

type rawPrescriptionRepository struct {
	BaseRepository
}

func NewRawPrescriptionRepository(db *sqlx.DB) repository.RawPrescriptionRepository {
	return &rawPrescriptionRepository{NewBaseRepository(db)}
}

func (r *rawPrescriptionRepository) Create(ctx context.Context, p *model.RawPrescription) error {
	p.CreatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO raw_prescriptions (
				id, doctor_id, patient_name, patient_age, patient_gender,
				patient_cnic, patient_phone, patient_address,
				diagnosis, tests, recommendations, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`
		if _, err := tx.ExecContext(ctx, query,
			p.ID,
			p.DoctorID,
			p.PatientName,
			p.PatientAge,
			p.PatientGender,
			p.PatientCNIC,
			p.PatientPhone,
			p.PatientAddress,
			p.Diagnosis,
			p.Tests,
			p.Recommendations,
			p.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to create raw prescription: %w", err)
		}

		medQuery := `
			INSERT INTO raw_prescription_medicines (
				id, raw_prescription_id, medicine_order, medicine_name,
				frequency1, frequency2, frequency3
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		for _, med := range p.Medicines {
			med.ID = uuid.New()
			med.RawPrescriptionID = p.ID
			if _, err := tx.ExecContext(ctx, medQuery,
				med.ID,
				med.RawPrescriptionID,
				med.MedicineOrder,
				med.MedicineName,
				med.Frequency1,
				med.Frequency2,
				med.Frequency3,
			); err != nil {
				return fmt.Errorf("failed to insert raw prescription medicine: %w", err)
			}
		}
		return nil
	})
}

func (r *rawPrescriptionRepository) GetForDoctor(ctx context.Context, id, doctorID uuid.UUID) (*model.RawPrescription, error) {
	var p model.RawPrescription
	err := r.GetDB().GetContext(ctx, &p,
		`SELECT * FROM raw_prescriptions WHERE id = $1 AND doctor_id = $2`, id, doctorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get raw prescription: %w", err)
	}
	meds, err := r.loadMedicines(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Medicines = meds
	return &p, nil
}

func (r *rawPrescriptionRepository) ListForDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*model.RawPrescription, int64, error) {
	var total int64
	if err := r.GetDB().GetContext(ctx, &total,
		`SELECT COUNT(*) FROM raw_prescriptions WHERE doctor_id = $1`, doctorID); err != nil {
		return nil, 0, fmt.Errorf("failed to count raw prescriptions: %w", err)
	}

	var list []*model.RawPrescription
	err := r.GetDB().SelectContext(ctx, &list,
		`SELECT * FROM raw_prescriptions WHERE doctor_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		doctorID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list raw prescriptions: %w", err)
	}
	for _, p := range list {
		meds, err := r.loadMedicines(ctx, p.ID)
		if err != nil {
			return nil, 0, err
		}
		p.Medicines = meds
	}
	return list, total, nil
}

func (r *rawPrescriptionRepository) loadMedicines(ctx context.Context, id uuid.UUID) ([]*model.RawPadMedicine, error) {
	var meds []*model.RawPadMedicine
	err := r.GetDB().SelectContext(ctx, &meds,
		`SELECT * FROM raw_prescription_medicines WHERE raw_prescription_id = $1 ORDER BY medicine_order`,
		id)
	if err != nil {
		return nil, fmt.Errorf("failed to load raw prescription medicines: %w", err)
	}
	return meds, nil
}
