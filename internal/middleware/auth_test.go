package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/medicare/pharmacy-api/internal/model"
	apperrors "github.com/medicare/pharmacy-api/pkg/errors"
)

type fakeAuthService struct {
	claims *model.TokenClaims
}

func (f *fakeAuthService) Login(_ context.Context, _ *model.LoginRequest) (*model.TokenResponse, error) {
	return nil, nil
}

func (f *fakeAuthService) Refresh(_ context.Context, _ *model.RefreshTokenRequest) (*model.TokenResponse, error) {
	return nil, nil
}

func (f *fakeAuthService) Logout(_ context.Context, _ *model.TokenClaims) error {
	return nil
}

func (f *fakeAuthService) Authenticate(_ context.Context, token string) (*model.TokenClaims, error) {
	if token != "valid-token" {
		return nil, apperrors.Unauthenticated("invalid token")
	}
	return f.claims, nil
}

func doctorClaims() *model.TokenClaims {
	return &model.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{ID: uuid.New().String()},
		UserID:           uuid.New(),
		DisplayName:      "Dr. Test",
		Email:            "doctor@example.com",
		Roles:            []string{"DOCTOR"},
	}
}

func newRouter(roles ...model.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Authenticate(&fakeAuthService{claims: doctorClaims()}))
	group := r.Group("")
	if len(roles) > 0 {
		group.Use(RequireRole(roles...))
	}
	group.GET("/probe", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": GetCaller(c).DisplayName})
	})
	return r
}

func request(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticateMissingHeader(t *testing.T) {
	w := request(newRouter(), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateMalformedHeader(t *testing.T) {
	w := request(newRouter(), "Token abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateInvalidToken(t *testing.T) {
	w := request(newRouter(), "Bearer bogus")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateValidToken(t *testing.T) {
	w := request(newRouter(), "Bearer valid-token")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Dr. Test")
}

func TestRequireRoleAdmits(t *testing.T) {
	w := request(newRouter(model.RoleDoctor), "Bearer valid-token")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRoleAdmitsAnyOf(t *testing.T) {
	w := request(newRouter(model.RoleAdmin, model.RoleDoctor), "Bearer valid-token")
	assert.Equal(t, http.StatusOK, w.Code)
}

// An authenticated caller without the role gets 403, not 404: role gates
// protect routes, record predicates protect records.
func TestRequireRoleRejectsWithForbidden(t *testing.T) {
	w := request(newRouter(model.RoleAdmin), "Bearer valid-token")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
