package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditLog is an append-only record of a state-changing action. There is no
// update or delete path for this entity anywhere in the codebase.
type AuditLog struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	ActorUserID  uuid.UUID       `json:"actor_user_id" db:"actor_user_id"`
	Action       string          `json:"action" db:"action"`
	ResourceType string          `json:"resource_type" db:"resource_type"`
	ResourceID   uuid.UUID       `json:"resource_id" db:"resource_id"`
	Details      json.RawMessage `json:"details" db:"details"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

const (
	// Audit actions
	AuditCreatePatient        = "CREATE_PATIENT"
	AuditCreatePrescription   = "CREATE_PRESCRIPTION"
	AuditUpdatePrescription   = "UPDATE_PRESCRIPTION"
	AuditFinalizePrescription = "FINALIZE_PRESCRIPTION"
	AuditDispensePrescription = "DISPENSE_PRESCRIPTION"
	AuditGeneratePDF          = "GENERATE_PDF"
	AuditCreateUser           = "CREATE_USER"

	// Resource types
	AuditResourcePatient      = "PATIENT"
	AuditResourcePrescription = "PRESCRIPTION"
	AuditResourceUser         = "USER"
)

// AuditFilters narrows audit log listings.
type AuditFilters struct {
	ActorUserID *uuid.UUID `form:"actor_user_id"`
	Action      string     `form:"action"`
	StartDate   *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate     *time.Time `form:"end_date" time_format:"2006-01-02"`
	Limit       int        `form:"limit,default=50"`
	Offset      int        `form:"offset,default=0"`
}
