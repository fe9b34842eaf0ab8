package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/hrforge/advance-engine/internal/config"
	"github.com/hrforge/advance-engine/internal/handler"
	"github.com/hrforge/advance-engine/internal/policy"
	"github.com/hrforge/advance-engine/internal/repository"
	"github.com/hrforge/advance-engine/internal/salary"
	"github.com/hrforge/advance-engine/internal/schedule"
	"github.com/hrforge/advance-engine/internal/service"
	"github.com/hrforge/advance-engine/pkg/response"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := newLogger(cfg)

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Initialize repositories
	advanceRepo := repository.NewAdvanceRepository(db)
	installmentRepo := repository.NewInstallmentRepository(db)
	policyRepo := repository.NewPolicyRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	payrollRepo := repository.NewPayrollRepository(db)

	// Initialize collaborators
	payrollEngine := salary.NewPayslipEngine(payrollRepo)
	salaryProvider := salary.NewProvider(payrollEngine, cfg.GetSalaryFallbackPercent(), log)
	policyValidator := policy.NewValidator(policyRepo, advanceRepo, salaryProvider)
	scheduler := schedule.NewScheduler()

	// Initialize service
	advanceService := service.NewAdvanceService(
		advanceRepo, installmentRepo, policyRepo, employeeRepo,
		policyValidator, scheduler, redisClient, cfg, log,
	)
	advanceHandler := handler.NewAdvanceHandler(advanceService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	// Setup routes
	router := setupRoutes(advanceHandler, healthHandler, log)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Infof("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}

func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	if cfg.Logging.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(advanceHandler *handler.AdvanceHandler, healthHandler *handler.HealthHandler, log *logrus.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware(log))
	router.Use(response.CORSMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/advances", advanceHandler.Create).Methods("POST")
	api.HandleFunc("/advances", advanceHandler.List).Methods("GET")
	api.HandleFunc("/advances/validate", advanceHandler.Validate).Methods("POST")
	api.HandleFunc("/advances/{advanceId}", advanceHandler.GetByID).Methods("GET")
	api.HandleFunc("/advances/{advanceId}/approve", advanceHandler.Approve).Methods("POST")
	api.HandleFunc("/advances/{advanceId}/reject", advanceHandler.Reject).Methods("POST")
	api.HandleFunc("/advances/{advanceId}/disburse", advanceHandler.Disburse).Methods("POST")
	api.HandleFunc("/advances/{advanceId}/cancel", advanceHandler.Cancel).Methods("POST")
	api.HandleFunc("/advances/{advanceId}/installments/{number}/pay", advanceHandler.ProcessInstallment).Methods("POST")
	api.HandleFunc("/employees/{employeeId}/max-advance", advanceHandler.GetMaxAllowed).Methods("GET")
	api.HandleFunc("/statistics", advanceHandler.GetStatistics).Methods("GET")

	return router
}
