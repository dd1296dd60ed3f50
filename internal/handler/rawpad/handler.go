package rawpad

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/medicare/pharmacy-api/internal/handler"
	"github.com/medicare/pharmacy-api/internal/middleware"
	"github.com/medicare/pharmacy-api/internal/model"
	"github.com/medicare/pharmacy-api/internal/service/rawpad"
	"github.com/medicare/pharmacy-api/pkg/httputil"
)

type Handler struct {
	service rawpad.RawPadService
}

func NewHandler(service rawpad.RawPadService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	pad := r.Group("/raw-prescriptions")
	{
		pad.POST("", h.CreateRawPrescription)
		pad.GET("", h.ListRawPrescriptions)
		pad.GET("/:id", h.GetRawPrescription)
	}
}

func (h *Handler) CreateRawPrescription(c *gin.Context) {
	var req model.CreateRawPrescriptionRequest
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

func (h *Handler) ListRawPrescriptions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, offset = rawpad.ClampPage(limit, offset)

	list, total, err := h.service.List(c.Request.Context(), middleware.GetCaller(c).ID, limit, offset)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, list, limit, offset, total)
}

func (h *Handler) GetRawPrescription(c *gin.Context) {
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
