package medicine

import (
	"github.com/gin-gonic/gin"

	"github.com/medicare/pharmacy-api/internal/service/medicine"
	"github.com/medicare/pharmacy-api/pkg/httputil"
)

type Handler struct {
	service medicine.MedicineService
}

func NewHandler(service medicine.MedicineService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/medicines", h.ListMedicines)
}

// ListMedicines returns the active catalog for autocomplete in prescription
// forms.
func (h *Handler) ListMedicines(c *gin.Context) {
	medicines, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, medicines)
}
