package dispensing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/medicare/pharmacy-api/internal/middleware"
	"github.com/medicare/pharmacy-api/internal/model"
	apperrors "github.com/medicare/pharmacy-api/pkg/errors"
)

type fakePrescriptionService struct {
	queue      []*model.DispenserPrescription
	lastFilter *bool
}

func (f *fakePrescriptionService) Create(_ context.Context, _ *model.Caller, _ *model.CreatePrescriptionRequest) (*model.Prescription, error) {
	return nil, nil
}

func (f *fakePrescriptionService) Get(_ context.Context, _, _ uuid.UUID) (*model.Prescription, error) {
	return nil, nil
}

func (f *fakePrescriptionService) ListForDoctor(_ context.Context, _ uuid.UUID) ([]*model.Prescription, error) {
	return nil, nil
}

func (f *fakePrescriptionService) Update(_ context.Context, _ *model.Caller, _ uuid.UUID, _ *model.UpdatePrescriptionRequest) (*model.Prescription, error) {
	return nil, nil
}

func (f *fakePrescriptionService) Finalize(_ context.Context, _ *model.Caller, _ uuid.UUID) (*model.Prescription, error) {
	return nil, nil
}

func (f *fakePrescriptionService) Dispense(_ context.Context, _ *model.Caller, id uuid.UUID) (*model.DispenserPrescription, error) {
	for _, p := range f.queue {
		if p.ID == id && p.DispensedAt == nil {
			now := time.Now()
			p.DispensedAt = &now
			return p, nil
		}
	}
	return nil, apperrors.NotFound("prescription not found")
}

func (f *fakePrescriptionService) GeneratePDF(_ context.Context, _ *model.Caller, _ uuid.UUID) ([]byte, error) {
	return nil, nil
}

func (f *fakePrescriptionService) ListForDispenser(_ context.Context, undispensedOnly bool) ([]*model.DispenserPrescription, error) {
	f.lastFilter = &undispensedOnly
	return f.queue, nil
}

func (f *fakePrescriptionService) GetForDispenser(_ context.Context, id uuid.UUID) (*model.DispenserPrescription, error) {
	for _, p := range f.queue {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, apperrors.NotFound("prescription not found")
}

func newServer(svc *fakePrescriptionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.CallerKey, &model.Caller{
			ID:          uuid.New(),
			DisplayName: "Bilal Ahmed",
			Roles:       model.NewRoleSet(model.RoleDispenser),
		})
	})
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func queued() *model.DispenserPrescription {
	return &model.DispenserPrescription{
		ID:             uuid.New(),
		Diagnosis:      "Seasonal flu",
		Recommendation: "Rest and fluids",
		Status:         model.StatusFinal,
		IssuedOn:       time.Now(),
		PatientCode:    "P260001",
		AgeBand:        "19-40",
	}
}

func TestListReturnsRedactedView(t *testing.T) {
	svc := &fakePrescriptionService{queue: []*model.DispenserPrescription{queued()}}
	r := newServer(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/dispensing/prescriptions", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "P260001")
	assert.Contains(t, body, "age_band")
	// No PII field ever appears in the dispenser projection.
	assert.NotContains(t, body, "full_name")
	assert.NotContains(t, body, "cnic")
	assert.NotContains(t, body, "phone")
	assert.NotContains(t, body, "address")
}

func TestListDefaultsToWorkQueue(t *testing.T) {
	svc := &fakePrescriptionService{}
	r := newServer(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/dispensing/prescriptions", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, svc.lastFilter)
	assert.True(t, *svc.lastFilter)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/dispensing/prescriptions?all=true", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, *svc.lastFilter)
}

func TestDispenseUnknownIDIs404(t *testing.T) {
	svc := &fakePrescriptionService{}
	r := newServer(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost,
		"/api/v1/dispensing/prescriptions/"+uuid.NewString()+"/dispense", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDispenseBadUUIDIs400(t *testing.T) {
	svc := &fakePrescriptionService{}
	r := newServer(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost,
		"/api/v1/dispensing/prescriptions/not-a-uuid/dispense", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
