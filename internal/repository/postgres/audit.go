package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/medicare/pharmacy-api/internal/model"
	"github.com/medicare/pharmacy-api/internal/repository"
)

// auditRepository only ever appends. No update or delete statement exists
// for audit_logs anywhere in this codebase.
type auditRepository struct {
	BaseRepository
}

func NewAuditRepository(db *sqlx.DB) repository.AuditRepository {
	return &auditRepository{NewBaseRepository(db)}
}

func (r *auditRepository) Create(ctx context.Context, log *model.AuditLog) error {
	query := `
		INSERT INTO audit_logs (
			id, actor_user_id, action, resource_type, resource_id, details, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.GetDB().ExecContext(ctx, query,
		log.ID,
		log.ActorUserID,
		log.Action,
		log.ResourceType,
		log.ResourceID,
		log.Details,
		log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

func (r *auditRepository) List(ctx context.Context, filters *model.AuditFilters) ([]*model.AuditLog, int64, error) {
	baseQuery := `FROM audit_logs WHERE 1=1`
	var args []interface{}

	if filters.ActorUserID != nil {
		args = append(args, *filters.ActorUserID)
		baseQuery += fmt.Sprintf(" AND actor_user_id = $%d", len(args))
	}
	if filters.Action != "" {
		args = append(args, filters.Action)
		baseQuery += fmt.Sprintf(" AND action = $%d", len(args))
	}
	if filters.StartDate != nil {
		args = append(args, *filters.StartDate)
		baseQuery += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if filters.EndDate != nil {
		args = append(args, *filters.EndDate)
		baseQuery += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}

	var total int64
	if err := r.GetDB().GetContext(ctx, &total, "SELECT COUNT(*) "+baseQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	args = append(args, filters.Limit, filters.Offset)
	query := "SELECT * " + baseQuery +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	var logs []*model.AuditLog
	if err := r.GetDB().SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, total, nil
}
