package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/hrforge/advance-engine/internal/config"
	"github.com/hrforge/advance-engine/internal/policy"
	"github.com/hrforge/advance-engine/internal/repository"
	"github.com/hrforge/advance-engine/internal/salary"
	"github.com/hrforge/advance-engine/internal/schedule"
	"github.com/hrforge/advance-engine/internal/service"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logrus.New()
	if cfg.Logging.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		log.SetLevel(level)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Same wiring as the server, minus the cache: the sweep goes through the
	// lifecycle service so it sees exactly what the API sees.
	advanceRepo := repository.NewAdvanceRepository(db)
	installmentRepo := repository.NewInstallmentRepository(db)
	policyRepo := repository.NewPolicyRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	payrollRepo := repository.NewPayrollRepository(db)

	payrollEngine := salary.NewPayslipEngine(payrollRepo)
	salaryProvider := salary.NewProvider(payrollEngine, cfg.GetSalaryFallbackPercent(), log)
	policyValidator := policy.NewValidator(policyRepo, advanceRepo, salaryProvider)

	advanceService := service.NewAdvanceService(
		advanceRepo, installmentRepo, policyRepo, employeeRepo,
		policyValidator, schedule.NewScheduler(), nil, cfg, log,
	)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("Invalid scheduler timezone %q: %v", cfg.Scheduler.Timezone, err)
	}

	// Initialize cron scheduler
	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	// Daily sweep over installments whose due month has passed without a
	// payroll deduction report. The sweep only surfaces them; installment
	// state is mutated exclusively through the lifecycle service.
	_, err = c.AddFunc(cfg.Scheduler.OverdueSweepSpec, func() {
		sweepOverdueInstallments(advanceService, log)
	})
	if err != nil {
		log.Fatalf("Error scheduling overdue installment sweep: %v", err)
	}

	c.Start()
	log.Info("Scheduler started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down scheduler...")
	c.Stop()
	log.Info("Scheduler stopped")
}

func sweepOverdueInstallments(advanceService *service.AdvanceService, log *logrus.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	overdue, err := advanceService.ListOverdueInstallments(ctx, time.Now())
	if err != nil {
		log.WithError(err).Error("overdue installment sweep failed")
		return
	}

	for _, inst := range overdue {
		log.WithFields(logrus.Fields{
			"tenant_id":   inst.TenantID,
			"advance_id":  inst.AdvanceID,
			"installment": inst.Number,
			"due_month":   inst.DueMonth.Format("2006-01"),
			"amount":      inst.Amount,
		}).Warn("installment overdue")
	}

	log.WithField("count", len(overdue)).Info("overdue installment sweep finished")
}
