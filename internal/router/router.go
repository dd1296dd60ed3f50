package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medicare/pharmacy-api/internal/config"
	"github.com/medicare/pharmacy-api/internal/handler"
	audithandler "github.com/medicare/pharmacy-api/internal/handler/audit"
	authhandler "github.com/medicare/pharmacy-api/internal/handler/auth"
	dispensinghandler "github.com/medicare/pharmacy-api/internal/handler/dispensing"
	medicinehandler "github.com/medicare/pharmacy-api/internal/handler/medicine"
	patienthandler "github.com/medicare/pharmacy-api/internal/handler/patient"
	prescriptionhandler "github.com/medicare/pharmacy-api/internal/handler/prescription"
	rawpadhandler "github.com/medicare/pharmacy-api/internal/handler/rawpad"
	userhandler "github.com/medicare/pharmacy-api/internal/handler/user"
	"github.com/medicare/pharmacy-api/internal/middleware"
	"github.com/medicare/pharmacy-api/internal/model"
	authsvc "github.com/medicare/pharmacy-api/internal/service/auth"
	"github.com/medicare/pharmacy-api/pkg/logger"
)

// Handlers collects everything the router mounts.
type Handlers struct {
	Health       *handler.HealthHandler
	Auth         *authhandler.Handler
	User         *userhandler.Handler
	Patient      *patienthandler.Handler
	Prescription *prescriptionhandler.Handler
	Dispensing   *dispensinghandler.Handler
	Medicine     *medicinehandler.Handler
	RawPad       *rawpadhandler.Handler
	Audit        *audithandler.Handler
}

// New assembles the gin engine: middleware chain, probes, metrics, then the
// versioned API grouped by role gate.
func New(cfg *config.Config, log *logger.Logger, authService authsvc.AuthService, h *Handlers) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	handler.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS())
	r.Use(middleware.RateLimit(cfg.RateLimit))

	h.Health.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	h.Auth.RegisterRoutes(v1)

	authed := v1.Group("")
	authed.Use(middleware.Authenticate(authService))
	h.Auth.RegisterProtectedRoutes(authed)

	doctor := authed.Group("")
	doctor.Use(middleware.RequireRole(model.RoleDoctor))
	h.Patient.RegisterRoutes(doctor)
	h.Prescription.RegisterRoutes(doctor)
	h.RawPad.RegisterRoutes(doctor)
	h.Medicine.RegisterRoutes(doctor)

	dispenser := authed.Group("")
	dispenser.Use(middleware.RequireRole(model.RoleDispenser, model.RoleAdmin))
	h.Dispensing.RegisterRoutes(dispenser)

	admin := authed.Group("/admin")
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	h.User.RegisterRoutes(admin)
	h.Audit.RegisterRoutes(admin)

	return r
}
