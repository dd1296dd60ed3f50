package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/medicare/pharmacy-api/internal/model"
	"github.com/medicare/pharmacy-api/internal/repository"
)

// Service appends immutable audit records. Writes are fire-and-forget: a
// failed append never fails the parent operation, it is logged with the full
// entry so gaps remain detectable.
type Service struct {
	repo repository.AuditRepository
}

func NewService(repo repository.AuditRepository) *Service {
	return &Service{repo: repo}
}

// Record appends one audit entry for a completed mutation.
func (s *Service) Record(ctx context.Context, actorID uuid.UUID, action, resourceType string, resourceID uuid.UUID, details interface{}) {
	var raw json.RawMessage
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			log.Error().Err(err).
				Str("action", action).
				Str("resource_id", resourceID.String()).
				Msg("failed to marshal audit details")
			data = []byte(`{}`)
		}
		raw = data
	}

	entry := &model.AuditLog{
		ID:           uuid.New(),
		ActorUserID:  actorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      raw,
		CreatedAt:    time.Now(),
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		log.Error().Err(err).
			Str("actor_user_id", actorID.String()).
			Str("action", action).
			Str("resource_type", resourceType).
			Str("resource_id", resourceID.String()).
			RawJSON("details", entry.Details).
			Msg("audit write failed")
	}
}

// List returns audit entries for the admin trail view.
func (s *Service) List(ctx context.Context, filters *model.AuditFilters) ([]*model.AuditLog, int64, error) {
	if filters.Limit <= 0 || filters.Limit > 200 {
		filters.Limit = 50
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}
	return s.repo.List(ctx, filters)
}
