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

type medicineRepository struct {
	BaseRepository
}

func NewMedicineRepository(db *sqlx.DB) repository.MedicineRepository {
	return &medicineRepository{NewBaseRepository(db)}
}

// Resolve is an atomic find-or-create on the natural (name, strength, form)
// key: insert-on-conflict-do-nothing followed by a select, so concurrent
// resolvers of the same triple converge on one row.
func (r *medicineRepository) Resolve(ctx context.Context, name, strength, form string) (*model.Medicine, error) {
	insert := `
		INSERT INTO medicines (id, name, strength, form, is_active, created_at)
		VALUES ($1, $2, $3, $4, TRUE, $5)
		ON CONFLICT (name, strength, form) DO NOTHING
	`
	if _, err := r.GetDB().ExecContext(ctx, insert,
		uuid.New(), name, strength, form, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to upsert medicine: %w", err)
	}

	var med model.Medicine
	err := r.GetDB().GetContext(ctx, &med,
		`SELECT * FROM medicines WHERE name = $1 AND strength = $2 AND form = $3`,
		name, strength, form)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select medicine: %w", err)
	}
	return &med, nil
}

func (r *medicineRepository) ListActive(ctx context.Context) ([]*model.Medicine, error) {
	var medicines []*model.Medicine
	err := r.GetDB().SelectContext(ctx, &medicines,
		`SELECT * FROM medicines WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list medicines: %w", err)
	}
	return medicines, nil
}
