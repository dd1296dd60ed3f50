package model

import (
	"github.com/google/uuid"
)

// RawPrescription is the free-form prescription pad: a doctor's quick capture
// with no patient registry link and no lifecycle.
type RawPrescription struct {
	Base
	DoctorID        uuid.UUID `json:"doctor_id" db:"doctor_id"`
	PatientName     *string   `json:"patient_name,omitempty" db:"patient_name"`
	PatientAge      *string   `json:"patient_age,omitempty" db:"patient_age"`
	PatientGender   *string   `json:"patient_gender,omitempty" db:"patient_gender"`
	PatientCNIC     *string   `json:"patient_cnic,omitempty" db:"patient_cnic"`
	PatientPhone    *string   `json:"patient_phone,omitempty" db:"patient_phone"`
	PatientAddress  *string   `json:"patient_address,omitempty" db:"patient_address"`
	Diagnosis       *string   `json:"diagnosis,omitempty" db:"diagnosis"`
	Tests           *string   `json:"tests,omitempty" db:"tests"`
	Recommendations *string   `json:"recommendations,omitempty" db:"recommendations"`

	Medicines []*RawPadMedicine `json:"medicines,omitempty" db:"-"`
}

// RawPadMedicine is one line on the pad; the three frequency flags are the
// morning/noon/evening tick boxes.
type RawPadMedicine struct {
	ID                uuid.UUID `json:"id" db:"id"`
	RawPrescriptionID uuid.UUID `json:"raw_prescription_id" db:"raw_prescription_id"`
	MedicineOrder     int       `json:"medicine_order" db:"medicine_order"`
	MedicineName      string    `json:"medicine_name" db:"medicine_name"`
	Frequency1        bool      `json:"frequency1" db:"frequency1"`
	Frequency2        bool      `json:"frequency2" db:"frequency2"`
	Frequency3        bool      `json:"frequency3" db:"frequency3"`
}

// RawPadMedicineRequest mirrors the pad's medicine rows as submitted.
type RawPadMedicineRequest struct {
	Name        string `json:"name"`
	Frequencies []bool `json:"frequencies" binding:"required,len=3"`
}

type CreateRawPrescriptionRequest struct {
	PatientName     *string                  `json:"patient_name,omitempty"`
	PatientAge      *string                  `json:"patient_age,omitempty"`
	PatientGender   *string                  `json:"patient_gender,omitempty"`
	PatientCNIC     *string                  `json:"patient_cnic,omitempty"`
	PatientPhone    *string                  `json:"patient_phone,omitempty"`
	PatientAddress  *string                  `json:"patient_address,omitempty"`
	Diagnosis       *string                  `json:"diagnosis,omitempty"`
	Tests           *string                  `json:"tests,omitempty"`
	Recommendations *string                  `json:"recommendations,omitempty"`
	Medicines       []*RawPadMedicineRequest `json:"medicines" binding:"required,dive"`
}
