package model

import (
	"time"

	"github.com/google/uuid"
)

// PrescriptionStatus is the lifecycle state of a prescription.
type PrescriptionStatus string

const (
	// StatusDraft is the initial, editable state visible only to the
	// authoring doctor.
	StatusDraft PrescriptionStatus = "DRAFT"
	// StatusFinal freezes clinical content. Dispensing is a sub-state of
	// FINAL marked by a non-null dispensed_at, not a further status value.
	StatusFinal PrescriptionStatus = "FINAL"
)

// Prescription is the lifecycle engine's root entity. doctor_id never changes
// after creation; status only moves DRAFT -> FINAL.
type Prescription struct {
	Base
	PatientID      uuid.UUID          `json:"patient_id" db:"patient_id"`
	DoctorID       uuid.UUID          `json:"doctor_id" db:"doctor_id"`
	Diagnosis      string             `json:"diagnosis" db:"diagnosis"`
	Recommendation string             `json:"recommendation" db:"recommendation"`
	Notes          *string            `json:"notes,omitempty" db:"notes"`
	Status         PrescriptionStatus `json:"status" db:"status"`
	IssuedOn       time.Time          `json:"issued_on" db:"issued_on"`
	DispensedAt    *time.Time         `json:"dispensed_at,omitempty" db:"dispensed_at"`
	DispensedBy    *uuid.UUID         `json:"dispensed_by,omitempty" db:"dispensed_by"`

	Items []*PrescriptionItem `json:"items,omitempty" db:"-"`
}

// PrescriptionItem is an ordered line item referencing a catalog medicine.
type PrescriptionItem struct {
	ID             uuid.UUID `json:"id" db:"id"`
	PrescriptionID uuid.UUID `json:"prescription_id" db:"prescription_id"`
	MedicineID     uuid.UUID `json:"medicine_id" db:"medicine_id"`
	ItemOrder      int       `json:"item_order" db:"item_order"`
	Dosage         string    `json:"dosage" db:"dosage"`
	Frequency      string    `json:"frequency" db:"frequency"`
	Duration       string    `json:"duration" db:"duration"`
	Remarks        *string   `json:"remarks,omitempty" db:"remarks"`

	Medicine *Medicine `json:"medicine,omitempty" db:"-"`
}

// PrescriptionItemRequest is a line item as submitted by a doctor; the
// medicine is resolved against the catalog by its natural triple.
type PrescriptionItemRequest struct {
	MedicineName string  `json:"medicine_name" binding:"required"`
	Strength     string  `json:"strength" binding:"required"`
	Form         string  `json:"form" binding:"required"`
	Dosage       string  `json:"dosage" binding:"required"`
	Frequency    string  `json:"frequency" binding:"required"`
	Duration     string  `json:"duration" binding:"required"`
	Remarks      *string `json:"remarks,omitempty"`
}

type CreatePrescriptionRequest struct {
	PatientID      uuid.UUID                  `json:"patient_id" binding:"required"`
	Diagnosis      string                     `json:"diagnosis" binding:"required"`
	Recommendation string                     `json:"recommendation" binding:"required"`
	Notes          *string                    `json:"notes,omitempty"`
	Items          []*PrescriptionItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdatePrescriptionRequest replaces the draft's fields and its items in full;
// partial item patches are not supported.
type UpdatePrescriptionRequest = CreatePrescriptionRequest

// DispenserPrescription is the redacted read model for the dispensing
// gateway. The patient portion carries only code and age band.
type DispenserPrescription struct {
	ID             uuid.UUID          `json:"id" db:"id"`
	Diagnosis      string             `json:"diagnosis" db:"diagnosis"`
	Recommendation string             `json:"recommendation" db:"recommendation"`
	Status         PrescriptionStatus `json:"status" db:"status"`
	IssuedOn       time.Time          `json:"issued_on" db:"issued_on"`
	DispensedAt    *time.Time         `json:"dispensed_at,omitempty" db:"dispensed_at"`
	DispensedBy    *uuid.UUID         `json:"dispensed_by,omitempty" db:"dispensed_by"`
	PatientCode    string             `json:"patient_code" db:"patient_code"`
	AgeBand        string             `json:"age_band" db:"age_band"`

	Items []*PrescriptionItem `json:"items,omitempty" db:"-"`
}

// PrescriptionDocument is the fully-joined read model handed to the PDF
// renderer for a finalized prescription.
type PrescriptionDocument struct {
	Prescription *Prescription
	Patient      *Patient
	DoctorName   string
	DoctorEmail  string
}
