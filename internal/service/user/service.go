package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/medicare/pharmacy-api/internal/email"
	"github.com/medicare/pharmacy-api/internal/model"
	"github.com/medicare/pharmacy-api/internal/repository"
	"github.com/medicare/pharmacy-api/internal/service/audit"
	apperrors "github.com/medicare/pharmacy-api/pkg/errors"
)

const bcryptCost = 10

type UserService interface {
	CreateUser(ctx context.Context, caller *model.Caller, req *model.CreateUserRequest) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
}

type Service struct {
	repo    repository.UserRepository
	auditor *audit.Service
	mailer  email.Sender
}

func NewService(repo repository.UserRepository, auditor *audit.Service, mailer email.Sender) *Service {
	return &Service{
		repo:    repo,
		auditor: auditor,
		mailer:  mailer,
	}
}

// CreateUser provisions an account with its role assignments. Email delivery
// is best effort; a mail failure never fails the creation.
func (s *Service) CreateUser(ctx context.Context, caller *model.Caller, req *model.CreateUserRequest) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	roles := make([]model.Role, len(req.Roles))
	for i, r := range req.Roles {
		roles[i] = model.Role(r)
	}

	user := &model.User{
		Base:         model.Base{ID: uuid.New()},
		DisplayName:  req.DisplayName,
		Email:        req.Email,
		PasswordHash: string(hash),
		Roles:        roles,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("email already exists")
		}
		return nil, apperrors.Internal(err)
	}

	s.auditor.Record(ctx, caller.ID, model.AuditCreateUser, model.AuditResourceUser, user.ID, map[string]interface{}{
		"displayName": user.DisplayName,
		"email":       user.Email,
		"roles":       req.Roles,
		"createdBy":   caller.DisplayName,
	})

	go func() {
		if err := s.mailer.SendWelcome(user.Email, user.DisplayName); err != nil {
			log.Error().Err(err).Str("email", user.Email).Msg("welcome email failed")
		}
	}()

	return user, nil
}

func (s *Service) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return users, nil
}
