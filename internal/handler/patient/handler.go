package patient

import (
	"github.com/gin-gonic/gin"

	"github.com/medicare/pharmacy-api/internal/handler"
	"github.com/medicare/pharmacy-api/internal/middleware"
	"github.com/medicare/pharmacy-api/internal/model"
	"github.com/medicare/pharmacy-api/internal/service/patient"
	"github.com/medicare/pharmacy-api/pkg/httputil"
)

type Handler struct {
	service patient.PatientService
}

func NewHandler(service patient.PatientService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.CreatePatient)
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
	}
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	created, err := h.service.CreatePatient(c.Request.Context(), middleware.GetCaller(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, created)
}

// ListPatients returns the caller's patients, derived from prescription
// authorship.
func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.service.ListForDoctor(c.Request.Context(), middleware.GetCaller(c).ID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, patients)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, err := handler.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	p, prescriptions, err := h.service.GetForDoctor(c.Request.Context(), id, middleware.GetCaller(c).ID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{
		"patient":       p,
		"prescriptions": prescriptions,
	})
}
