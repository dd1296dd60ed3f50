package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/medicare/pharmacy-api/internal/model"
	authsvc "github.com/medicare/pharmacy-api/internal/service/auth"
	apperrors "github.com/medicare/pharmacy-api/pkg/errors"
	"github.com/medicare/pharmacy-api/pkg/httputil"
)

const (
	// CallerKey is the gin context key holding the resolved *model.Caller.
	CallerKey = "caller"
	// ClaimsKey holds the raw *model.TokenClaims for logout.
	ClaimsKey = "claims"
)

// Authenticate resolves the caller from the Bearer token, rejecting revoked
// tokens. Every protected route goes through here exactly once.
func Authenticate(auth authsvc.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			httputil.RespondWithError(c, apperrors.Unauthenticated("missing authorization header"))
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httputil.RespondWithError(c, apperrors.Unauthenticated("invalid authorization header"))
			return
		}

		claims, err := auth.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}

		c.Set(CallerKey, claims.Caller())
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireRole admits callers holding at least one of the given roles.
// Authenticated callers without a matching role get 403, never 404; role
// checks gate routes, not records.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := GetCaller(c)
		if caller == nil {
			httputil.RespondWithError(c, apperrors.Unauthenticated("authentication required"))
			return
		}
		if !caller.Roles.HasAny(roles...) {
			httputil.RespondWithError(c, apperrors.Forbidden("insufficient role"))
			return
		}
		c.Next()
	}
}

// GetCaller returns the authenticated caller set by Authenticate, or nil.
func GetCaller(c *gin.Context) *model.Caller {
	v, ok := c.Get(CallerKey)
	if !ok {
		return nil
	}
	caller, _ := v.(*model.Caller)
	return caller
}

// GetClaims returns the raw token claims set by Authenticate, or nil.
func GetClaims(c *gin.Context) *model.TokenClaims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*model.TokenClaims)
	return claims
}
