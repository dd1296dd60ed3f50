package prescription

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medicare/pharmacy-api/internal/handler"
	"github.com/medicare/pharmacy-api/internal/middleware"
	"github.com/medicare/pharmacy-api/internal/model"
	"github.com/medicare/pharmacy-api/internal/service/prescription"
	"github.com/medicare/pharmacy-api/pkg/httputil"
)

type Handler struct {
	service prescription.PrescriptionService
}

func NewHandler(service prescription.PrescriptionService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	prescriptions := r.Group("/prescriptions")
	{
		prescriptions.POST("", h.CreatePrescription)
		prescriptions.GET("", h.ListPrescriptions)
		prescriptions.GET("/:id", h.GetPrescription)
		prescriptions.PUT("/:id", h.UpdatePrescription)
		prescriptions.POST("/:id/finalize", h.FinalizePrescription)
		prescriptions.GET("/:id/pdf", h.GeneratePDF)
	}
}

func (h *Handler) CreatePrescription(c *gin.Context) {
	var req model.CreatePrescriptionRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	created, err := h.service.Create(c.Request.Context(), middleware.GetCaller(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, created)
}

func (h *Handler) ListPrescriptions(c *gin.Context) {
	list, err := h.service.ListForDoctor(c.Request.Context(), middleware.GetCaller(c).ID)
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

	p, err := h.service.Get(c.Request.Context(), id, middleware.GetCaller(c).ID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, p)
}

func (h *Handler) UpdatePrescription(c *gin.Context) {
	id, err := handler.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.UpdatePrescriptionRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	updated, err := h.service.Update(c.Request.Context(), middleware.GetCaller(c), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) FinalizePrescription(c *gin.Context) {
	id, err := handler.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	finalized, err := h.service.Finalize(c.Request.Context(), middleware.GetCaller(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, finalized)
}

func (h *Handler) GeneratePDF(c *gin.Context) {
	id, err := handler.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	data, err := h.service.GeneratePDF(c.Request.Context(), middleware.GetCaller(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="prescription-%s.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", data)
}
