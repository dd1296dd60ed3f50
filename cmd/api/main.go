package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/medicare/pharmacy-api/internal/config"
	"github.com/medicare/pharmacy-api/internal/email"
	"github.com/medicare/pharmacy-api/internal/handler"
	audithandler "github.com/medicare/pharmacy-api/internal/handler/audit"
	authhandler "github.com/medicare/pharmacy-api/internal/handler/auth"
	dispensinghandler "github.com/medicare/pharmacy-api/internal/handler/dispensing"
	medicinehandler "github.com/medicare/pharmacy-api/internal/handler/medicine"
	patienthandler "github.com/medicare/pharmacy-api/internal/handler/patient"
	prescriptionhandler "github.com/medicare/pharmacy-api/internal/handler/prescription"
	rawpadhandler "github.com/medicare/pharmacy-api/internal/handler/rawpad"
	userhandler "github.com/medicare/pharmacy-api/internal/handler/user"
	"github.com/medicare/pharmacy-api/internal/pdf"
	"github.com/medicare/pharmacy-api/internal/repository/postgres"
	"github.com/medicare/pharmacy-api/internal/router"
	"github.com/medicare/pharmacy-api/internal/service/audit"
	authsvc "github.com/medicare/pharmacy-api/internal/service/auth"
	"github.com/medicare/pharmacy-api/internal/service/medicine"
	"github.com/medicare/pharmacy-api/internal/service/patient"
	"github.com/medicare/pharmacy-api/internal/service/prescription"
	"github.com/medicare/pharmacy-api/internal/service/rawpad"
	"github.com/medicare/pharmacy-api/internal/service/user"
	"github.com/medicare/pharmacy-api/pkg/auth"
	"github.com/medicare/pharmacy-api/pkg/logger"
)

func main() {
	log := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load config")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := auth.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		log.Fatal(err, "failed to connect to redis")
	}
	defer redisClient.Close()

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	prescriptionRepo := postgres.NewPrescriptionRepository(db)
	medicineRepo := postgres.NewMedicineRepository(db)
	auditRepo := postgres.NewAuditRepository(db)
	rawPadRepo := postgres.NewRawPrescriptionRepository(db)

	// Services
	jwtService := auth.NewJWTService(cfg.JWT)
	denylist := auth.NewRedisDenylist(redisClient)
	mailer := email.NewSender(cfg.SMTP, cfg.Clinic)
	renderer := pdf.NewRenderer(cfg.Clinic)

	auditService := audit.NewService(auditRepo)
	authService := authsvc.NewService(userRepo, jwtService, denylist)
	userService := user.NewService(userRepo, auditService, mailer)
	medicineService := medicine.NewService(medicineRepo)
	patientService := patient.NewService(patientRepo, prescriptionRepo, auditService)
	prescriptionService := prescription.NewService(prescriptionRepo, patientRepo, medicineService, renderer, auditService)
	rawPadService := rawpad.NewService(rawPadRepo)

	handlers := &router.Handlers{
		Health:       handler.NewHealthHandler(db, redisClient),
		Auth:         authhandler.NewHandler(authService),
		User:         userhandler.NewHandler(userService),
		Patient:      patienthandler.NewHandler(patientService),
		Prescription: prescriptionhandler.NewHandler(prescriptionService),
		Dispensing:   dispensinghandler.NewHandler(prescriptionService),
		Medicine:     medicinehandler.NewHandler(medicineService),
		RawPad:       rawpadhandler.NewHandler(rawPadService),
		Audit:        audithandler.NewHandler(auditService),
	}

	engine := router.New(cfg, log, authService, handlers)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err, "server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "graceful shutdown failed")
	}
}
