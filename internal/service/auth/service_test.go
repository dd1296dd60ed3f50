package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/medicare/pharmacy-api/internal/config"
	"github.com/medicare/pharmacy-api/internal/model"
	"github.com/medicare/pharmacy-api/internal/repository"
	"github.com/medicare/pharmacy-api/pkg/auth"
	apperrors "github.com/medicare/pharmacy-api/pkg/errors"
)

type fakeUserRepo struct {
	users map[string]*model.User
}

func (f *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	f.users[u.Email] = u
	return nil
}

func (f *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) List(_ context.Context) ([]*model.User, error) {
	return nil, nil
}

type memDenylist struct {
	revoked map[string]bool
}

func (d *memDenylist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl > 0 {
		d.revoked[jti] = true
	}
	return nil
}

func (d *memDenylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	return d.revoked[jti], nil
}

func newService(t *testing.T) (*Service, *model.User) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("doctor123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &model.User{
		Base:         model.Base{ID: uuid.New()},
		DisplayName:  "Dr. Test",
		Email:        "doctor@example.com",
		PasswordHash: string(hash),
		Roles:        []model.Role{model.RoleDoctor},
	}

	repo := &fakeUserRepo{users: map[string]*model.User{user.Email: user}}
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:             "test-secret",
		RefreshSecret:      "test-refresh-secret",
		ExpiryHours:        1,
		RefreshExpiryHours: 24,
	})
	denylist := &memDenylist{revoked: make(map[string]bool)}

	return NewService(repo, jwtService, denylist), user
}

func TestLoginIssuesTokenPair(t *testing.T) {
	svc, user := newService(t)

	tokens, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    user.Email,
		Password: "doctor123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	claims, err := svc.Authenticate(context.Background(), tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, []string{"DOCTOR"}, claims.Roles)
}

func TestLoginRejectsBadCredentialsUniformly(t *testing.T) {
	svc, user := newService(t)

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    user.Email,
		Password: "wrong",
	})
	require.Error(t, err)

	_, err2 := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "nobody@example.com",
		Password: "doctor123",
	})
	require.Error(t, err2)

	// Unknown email and bad password are indistinguishable.
	assert.Equal(t, apperrors.CodeUnauthenticated, apperrors.Code(err))
	assert.Equal(t, err.Error(), err2.Error())
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, user := newService(t)

	tokens, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    user.Email,
		Password: "doctor123",
	})
	require.NoError(t, err)

	claims, err := svc.Authenticate(context.Background(), tokens.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), claims))

	_, err = svc.Authenticate(context.Background(), tokens.AccessToken)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnauthenticated, apperrors.Code(err))
}

func TestRefreshRotatesRefreshToken(t *testing.T) {
	svc, user := newService(t)

	tokens, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    user.Email,
		Password: "doctor123",
	})
	require.NoError(t, err)

	fresh, err := svc.Refresh(context.Background(), &model.RefreshTokenRequest{
		RefreshToken: tokens.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.AccessToken)

	// The consumed refresh token cannot be replayed.
	_, err = svc.Refresh(context.Background(), &model.RefreshTokenRequest{
		RefreshToken: tokens.RefreshToken,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnauthenticated, apperrors.Code(err))
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Authenticate(context.Background(), "not-a-token")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnauthenticated, apperrors.Code(err))
}
