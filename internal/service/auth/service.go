package auth

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/medicare/pharmacy-api/internal/model"
	"github.com/medicare/pharmacy-api/internal/repository"
	"github.com/medicare/pharmacy-api/pkg/auth"
	apperrors "github.com/medicare/pharmacy-api/pkg/errors"
)

type AuthService interface {
	Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error)
	Refresh(ctx context.Context, req *model.RefreshTokenRequest) (*model.TokenResponse, error)
	Logout(ctx context.Context, claims *model.TokenClaims) error
	Authenticate(ctx context.Context, token string) (*model.TokenClaims, error)
}

type Service struct {
	users    repository.UserRepository
	jwt      auth.JWTService
	denylist auth.Denylist
}

func NewService(users repository.UserRepository, jwt auth.JWTService, denylist auth.Denylist) *Service {
	return &Service{
		users:    users,
		jwt:      jwt,
		denylist: denylist,
	}
}

// Login verifies credentials and issues a token pair. Unknown email and bad
// password produce the same error.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthenticated("invalid credentials")
		}
		return nil, apperrors.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.Unauthenticated("invalid credentials")
	}

	return s.issueTokens(user)
}

// Refresh exchanges a valid, unrevoked refresh token for a fresh pair. The
// old refresh token's jti is revoked so it cannot be replayed.
func (s *Service) Refresh(ctx context.Context, req *model.RefreshTokenRequest) (*model.TokenResponse, error) {
	claims, err := s.jwt.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, apperrors.Unauthenticated("invalid refresh token")
	}

	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if revoked {
		return nil, apperrors.Unauthenticated("invalid refresh token")
	}

	user, err := s.users.Get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthenticated("invalid refresh token")
		}
		return nil, apperrors.Internal(err)
	}

	if err := s.denylist.Revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
		return nil, apperrors.Internal(err)
	}

	return s.issueTokens(user)
}

// Logout revokes the presented access token for its remaining lifetime.
func (s *Service) Logout(ctx context.Context, claims *model.TokenClaims) error {
	if err := s.denylist.Revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// Authenticate validates an access token and checks it against the denylist.
func (s *Service) Authenticate(ctx context.Context, token string) (*model.TokenClaims, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthenticated("invalid token")
	}

	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if revoked {
		return nil, apperrors.Unauthenticated("token revoked")
	}
	return claims, nil
}

func (s *Service) issueTokens(user *model.User) (*model.TokenResponse, error) {
	access, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	refresh, err := s.jwt.GenerateRefreshToken(user)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &model.TokenResponse{AccessToken: access, RefreshToken: refresh}, nil
}
