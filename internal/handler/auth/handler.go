package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/medicare/pharmacy-api/internal/handler"
	"github.com/medicare/pharmacy-api/internal/middleware"
	"github.com/medicare/pharmacy-api/internal/model"
	"github.com/medicare/pharmacy-api/internal/service/auth"
	apperrors "github.com/medicare/pharmacy-api/pkg/errors"
	"github.com/medicare/pharmacy-api/pkg/httputil"
)

type Handler struct {
	service auth.AuthService
}

func NewHandler(service auth.AuthService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the public endpoints; RegisterProtectedRoutes mounts
// the ones requiring an authenticated caller.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
	}
}

func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/logout", h.Logout)
		authGroup.GET("/me", h.Me)
	}
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	tokens, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, tokens)
}

func (h *Handler) Refresh(c *gin.Context) {
	var req model.RefreshTokenRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	tokens, err := h.service.Refresh(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, tokens)
}

func (h *Handler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		httputil.RespondWithError(c, apperrors.Unauthenticated("authentication required"))
		return
	}

	if err := h.service.Logout(c.Request.Context(), claims); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"message": "logged out"})
}

// Me echoes the caller's identity as resolved from the token.
func (h *Handler) Me(c *gin.Context) {
	caller := middleware.GetCaller(c)
	if caller == nil {
		httputil.RespondWithError(c, apperrors.Unauthenticated("authentication required"))
		return
	}
	httputil.RespondWithSuccess(c, gin.H{
		"id":           caller.ID,
		"display_name": caller.DisplayName,
		"email":        caller.Email,
		"roles":        caller.Roles.Strings(),
	})
}
