package audit

import (
	"github.com/gin-gonic/gin"

	"github.com/medicare/pharmacy-api/internal/model"
	"github.com/medicare/pharmacy-api/internal/service/audit"
	apperrors "github.com/medicare/pharmacy-api/pkg/errors"
	"github.com/medicare/pharmacy-api/pkg/httputil"
)

type Handler struct {
	service *audit.Service
}

func NewHandler(service *audit.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/audit-logs", h.ListAuditLogs)
}

// ListAuditLogs serves the admin trail view with optional actor, action and
// date-range filters.
func (h *Handler) ListAuditLogs(c *gin.Context) {
	var filters model.AuditFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error(), nil))
		return
	}

	logs, total, err := h.service.List(c.Request.Context(), &filters)
	if err != nil {
		httputil.RespondWithError(c, apperrors.Internal(err))
		return
	}
	httputil.RespondWithPagination(c, logs, filters.Limit, filters.Offset, total)
}
