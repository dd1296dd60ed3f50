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

type userRepository struct {
	BaseRepository
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{NewBaseRepository(db)}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	user.CreatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO users (id, display_name, email, password_hash, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`
		if _, err := tx.ExecContext(ctx, query,
			user.ID,
			user.DisplayName,
			user.Email,
			user.PasswordHash,
			user.CreatedAt,
		); err != nil {
			if isUniqueViolation(err) {
				return repository.ErrDuplicate
			}
			return fmt.Errorf("failed to create user: %w", err)
		}

		for _, role := range user.Roles {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO user_roles (user_id, role_name) VALUES ($1, $2)`,
				user.ID, role,
			); err != nil {
				return fmt.Errorf("failed to assign role %s: %w", role, err)
			}
		}
		return nil
	})
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	err := r.GetDB().GetContext(ctx, &user, `SELECT * FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if err := r.loadRoles(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.GetDB().GetContext(ctx, &user, `SELECT * FROM users WHERE email = $1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	if err := r.loadRoles(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	var users []*model.User
	err := r.GetDB().SelectContext(ctx, &users, `SELECT * FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	for _, user := range users {
		if err := r.loadRoles(ctx, user); err != nil {
			return nil, err
		}
	}
	return users, nil
}

func (r *userRepository) loadRoles(ctx context.Context, user *model.User) error {
	var roles []model.Role
	err := r.GetDB().SelectContext(ctx, &roles,
		`SELECT role_name FROM user_roles WHERE user_id = $1 ORDER BY role_name`, user.ID)
	if err != nil {
		return fmt.Errorf("failed to load roles for user %s: %w", user.ID, err)
	}
	user.Roles = roles
	return nil
}
