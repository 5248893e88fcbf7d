package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/careflow/clinic-api/config"
	"github.com/careflow/clinic-api/internal/email"
	"github.com/careflow/clinic-api/internal/handler"
	appointmenthandler "github.com/careflow/clinic-api/internal/handler/appointment"
	authhandler "github.com/careflow/clinic-api/internal/handler/auth"
	billinghandler "github.com/careflow/clinic-api/internal/handler/billing"
	cataloghandler "github.com/careflow/clinic-api/internal/handler/catalog"
	patienthandler "github.com/careflow/clinic-api/internal/handler/patient"
	recordhandler "github.com/careflow/clinic-api/internal/handler/record"
	"github.com/careflow/clinic-api/internal/middleware"
	"github.com/careflow/clinic-api/internal/repository/postgres"
	"github.com/careflow/clinic-api/internal/router"
	authservice "github.com/careflow/clinic-api/internal/service/auth"
	billingservice "github.com/careflow/clinic-api/internal/service/billing"
	catalogservice "github.com/careflow/clinic-api/internal/service/catalog"
	patientservice "github.com/careflow/clinic-api/internal/service/patient"
	recordservice "github.com/careflow/clinic-api/internal/service/record"
	schedulingservice "github.com/careflow/clinic-api/internal/service/scheduling"
	pkgauth "github.com/careflow/clinic-api/pkg/auth"
	"github.com/careflow/clinic-api/pkg/logger"
	"github.com/careflow/clinic-api/pkg/security"
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

	tokens := pkgauth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)
	mailer := email.NewSMTPService(cfg.SMTP)

	credRepo := postgres.NewCredentialRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	specialtyRepo := postgres.NewSpecialtyRepository(db)
	serviceRepo := postgres.NewServiceRepository(db)
	medicineRepo := postgres.NewMedicineRepository(db)
	recordRepo := postgres.NewMedicalRecordRepository(db)
	invoiceRepo := postgres.NewInvoiceRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	authSvc := authservice.NewService(credRepo, tokens, hasher, mailer, log)
	schedulingSvc, err := schedulingservice.NewService(appointmentRepo, outboxRepo, cfg.Scheduling, log)
	if err != nil {
		log.Fatal(err, "invalid scheduling config")
	}
	patientSvc := patientservice.NewService(patientRepo)
	catalogSvc := catalogservice.NewService(specialtyRepo, serviceRepo, medicineRepo)
	recordSvc := recordservice.NewService(recordRepo, medicineRepo, appointmentRepo)
	billingSvc := billingservice.NewService(invoiceRepo, serviceRepo)

	authMW := middleware.NewAuthMiddleware(tokens)

	r := router.NewRouter(
		authMW,
		authhandler.NewHandler(authSvc),
		appointmenthandler.NewHandler(schedulingSvc),
		patienthandler.NewHandler(patientSvc),
		cataloghandler.NewHandler(catalogSvc),
		recordhandler.NewHandler(recordSvc),
		billinghandler.NewHandler(billingSvc),
		handler.NewHealthHandler(db),
		cfg.RateLimit,
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "forced shutdown")
	}
}
