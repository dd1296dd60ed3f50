package model

import (
	"time"

	"github.com/google/uuid"
)

// Patient carries no PII. The identifying record lives in patient_pii so a
// redacted read can omit it by simply not joining the table.
type Patient struct {
	Base
	PatientCode string `json:"patient_code" db:"patient_code"`
	AgeBand     string `json:"age_band" db:"age_band"`

	PII *PatientPII `json:"pii,omitempty" db:"-"`
}

// PatientPII is the owned one-to-one identifying record.
type PatientPII struct {
	PatientID uuid.UUID `json:"-" db:"patient_id"`
	FullName  string    `json:"full_name" db:"full_name"`
	Phone     string    `json:"phone" db:"phone"`
	Address   string    `json:"address" db:"address"`
	CNIC      string    `json:"cnic" db:"cnic"`
}

// CreatePatientRequest represents patient registration parameters
type CreatePatientRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone" binding:"required,min=10"`
	Address  string `json:"address" binding:"required"`
	CNIC     string `json:"cnic" binding:"required,cnic"`
	AgeBand  string `json:"age_band" binding:"required"`
}

// PatientSummary is the doctor/admin projection: full PII plus code and band.
type PatientSummary struct {
	ID          uuid.UUID `json:"id" db:"id"`
	PatientCode string    `json:"patient_code" db:"patient_code"`
	AgeBand     string    `json:"age_band" db:"age_band"`
	FullName    string    `json:"full_name" db:"full_name"`
	Phone       string    `json:"phone" db:"phone"`
	Address     string    `json:"address" db:"address"`
	CNIC        string    `json:"cnic" db:"cnic"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// RedactedPatient is the dispenser projection. It must never grow PII fields;
// the queries that produce it do not join patient_pii at all.
type RedactedPatient struct {
	ID          uuid.UUID `json:"id" db:"id"`
	PatientCode string    `json:"patient_code" db:"patient_code"`
	AgeBand     string    `json:"age_band" db:"age_band"`
}
