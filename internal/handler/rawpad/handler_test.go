package rawpad

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/medicare/pharmacy-api/internal/handler"
	"github.com/medicare/pharmacy-api/internal/middleware"
	"github.com/medicare/pharmacy-api/internal/model"
)

type fakePadService struct {
	created    *model.RawPrescription
	lastLimit  int
	lastOffset int
}

func (f *fakePadService) Create(_ context.Context, caller *model.Caller, req *model.CreateRawPrescriptionRequest) (*model.RawPrescription, error) {
	p := &model.RawPrescription{
		Base:     model.Base{ID: uuid.New()},
		DoctorID: caller.ID,
	}
	f.created = p
	return p, nil
}

func (f *fakePadService) Get(_ context.Context, _, _ uuid.UUID) (*model.RawPrescription, error) {
	return nil, nil
}

func (f *fakePadService) List(_ context.Context, _ uuid.UUID, limit, offset int) ([]*model.RawPrescription, int64, error) {
	f.lastLimit = limit
	f.lastOffset = offset
	return nil, 0, nil
}

func newServer(svc *fakePadService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler.RegisterValidators()
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.CallerKey, &model.Caller{
			ID:          uuid.New(),
			DisplayName: "Dr. Test",
			Roles:       model.NewRoleSet(model.RoleDoctor),
		})
	})
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func post(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/raw-prescriptions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateAcceptsThreeFrequencyFlags(t *testing.T) {
	w := post(newServer(&fakePadService{}), `{
		"medicines": [{"name": "Panadol", "frequencies": [true, false, true]}]
	}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}

// A medicine row with fewer than three frequency flags must fail binding,
// not reach the service.
func TestCreateRejectsShortFrequencies(t *testing.T) {
	svc := &fakePadService{}
	w := post(newServer(svc), `{
		"medicines": [{"name": "Panadol", "frequencies": [true]}]
	}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "frequencies")
	assert.Nil(t, svc.created)
}

func TestCreateRejectsMissingFrequencies(t *testing.T) {
	svc := &fakePadService{}
	w := post(newServer(svc), `{
		"medicines": [{"name": "Panadol"}]
	}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, svc.created)
}

// The pagination envelope reports the limit/offset actually served, not the
// raw query values.
func TestListEchoesClampedPagination(t *testing.T) {
	svc := &fakePadService{}
	r := newServer(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/raw-prescriptions?limit=1000&offset=-3", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10, svc.lastLimit)
	assert.Equal(t, 0, svc.lastOffset)
	assert.Contains(t, w.Body.String(), `"limit":10`)
	assert.Contains(t, w.Body.String(), `"offset":0`)
	assert.NotContains(t, w.Body.String(), `"limit":1000`)
}
