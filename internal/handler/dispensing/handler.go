package dispensing

import (
	"github.com/gin-gonic/gin"

	"github.com/medicare/pharmacy-api/internal/handler"
	"github.com/medicare/pharmacy-api/internal/middleware"
	"github.com/medicare/pharmacy-api/internal/service/prescription"
	"github.com/medicare/pharmacy-api/pkg/httputil"
)

// Handler serves the dispensing gateway. Everything returned here is the
// redacted projection; patient identity never crosses this boundary.
type Handler struct {
	service prescription.PrescriptionService
}

func NewHandler(service prescription.PrescriptionService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	dispensing := r.Group("/dispensing")
	{
		dispensing.GET("/prescriptions", h.ListPrescriptions)
		dispensing.GET("/prescriptions/:id", h.GetPrescription)
		dispensing.POST("/prescriptions/:id/dispense", h.Dispense)
	}
}

// ListPrescriptions returns the undispensed work queue by default; ?all=true
// includes already-dispensed entries.
func (h *Handler) ListPrescriptions(c *gin.Context) {
	undispensedOnly := c.Query("all") != "true"

	list, err := h.service.ListForDispenser(c.Request.Context(), undispensedOnly)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, list)
}

func (h *Handler) GetPrescription(c *gin.Context) {
	id, err := handler.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	p, err := h.service.GetForDispenser(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, p)
}

func (h *Handler) Dispense(c *gin.Context) {
	id, err := handler.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	dispensed, err := h.service.Dispense(c.Request.Context(), middleware.GetCaller(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, dispensed)
}
