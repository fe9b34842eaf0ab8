package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/hrforge/advance-engine/internal/config"
	"github.com/hrforge/advance-engine/internal/domain"
	"github.com/hrforge/advance-engine/internal/repository"
	"github.com/hrforge/advance-engine/internal/schedule"
	customError "github.com/hrforge/advance-engine/pkg/errors"
	"github.com/hrforge/advance-engine/pkg/utils"
)

// AdvanceValidator is the admission-control collaborator.
type AdvanceValidator interface {
	Validate(ctx context.Context, tenantID string, employee *domain.Employee, requestedAmount decimal.Decimal, repaymentMonths int) (*domain.ValidationResult, error)
	MaxAllowed(ctx context.Context, tenantID string, employee *domain.Employee) (decimal.Decimal, error)
}

// ScheduleBuilder is the repayment-schedule collaborator.
type ScheduleBuilder interface {
	BuildSchedule(amount decimal.Decimal, repaymentMonths int, anchor time.Time) (*schedule.Schedule, error)
}

// AdvanceService is the lifecycle state machine for salary advances. All
// collaborators are injected; per-advance serialization relies on the
// repositories' status-guarded writes.
type AdvanceService struct {
	AdvanceRepo     repository.AdvanceRepository
	InstallmentRepo repository.InstallmentRepository
	PolicyRepo      repository.PolicyRepository
	EmployeeRepo    repository.EmployeeRepository
	validator       AdvanceValidator
	scheduler       ScheduleBuilder
	redis           *redis.Client
	config          *config.Config
	log             *logrus.Logger
}

func NewAdvanceService(
	advanceRepo repository.AdvanceRepository,
	installmentRepo repository.InstallmentRepository,
	policyRepo repository.PolicyRepository,
	employeeRepo repository.EmployeeRepository,
	validator AdvanceValidator,
	scheduler ScheduleBuilder,
	redisClient *redis.Client,
	cfg *config.Config,
	log *logrus.Logger,
) *AdvanceService {
	return &AdvanceService{
		AdvanceRepo:     advanceRepo,
		InstallmentRepo: installmentRepo,
		PolicyRepo:      policyRepo,
		EmployeeRepo:    employeeRepo,
		validator:       validator,
		scheduler:       scheduler,
		redis:           redisClient,
		config:          cfg,
		log:             log,
	}
}

// Create validates a request against the tenant's policy and persists a
// pending advance with the employee's net salary frozen at request time.
// When the request is blocked, the full validation result is returned
// alongside the error so the caller can render every violated rule.
func (s *AdvanceService) Create(ctx context.Context, tenantID string, request *domain.CreateAdvanceRequest) (*domain.SalaryAdvance, *domain.ValidationResult, error) {
	employee, err := s.EmployeeRepo.GetByID(ctx, tenantID, request.EmployeeID)
	if err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	result, err := s.validator.Validate(ctx, tenantID, employee, request.Amount, request.RepaymentMonths)
	if err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}
	if !result.Admissible {
		return nil, result, validationFailed(result)
	}

	pol, err := s.PolicyRepo.GetActivePolicy(ctx, tenantID)
	if err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}
	if pol == nil {
		// Validator already checked this; the policy was deactivated in between.
		result.AddError(domain.ValidationNoPolicy, "tenant_id", "no active salary-advance policy for tenant")
		return nil, result, validationFailed(result)
	}

	now := time.Now()
	advance := &domain.SalaryAdvance{
		ID:               uuid.New(),
		TenantID:         tenantID,
		EmployeeID:       employee.ID,
		EmployeeNumber:   employee.EmployeeNumber,
		EmployeeName:     employee.FullName,
		NetSalary:        result.NetSalary,
		RequestedAmount:  request.Amount,
		RepaymentMonths:  request.RepaymentMonths,
		Reason:           request.Reason,
		Notes:            request.Notes,
		Status:           domain.AdvanceStatusPending,
		ApprovedAmount:   decimal.Zero,
		MonthlyDeduction: decimal.Zero,
		RemainingBalance: decimal.Zero,
		TotalRepaid:      decimal.Zero,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err = s.AdvanceRepo.Create(ctx, advance, pol.MaxOutstandingAdvances); err != nil {
		if errors.Is(err, repository.ErrOutstandingLimit) {
			// A concurrent create won the race for the last slot.
			result.AddError(domain.ValidationTooManyOutstanding, "employee_id",
				"outstanding advance limit reached")
			return nil, result, validationFailed(result)
		}
		return nil, nil, customError.WrapDatabaseError(err)
	}

	s.log.WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"advance_id": advance.ID,
		"amount":     advance.RequestedAmount,
	}).Info("advance requested")

	s.invalidateStatistics(ctx, tenantID)

	return advance, result, nil
}

// Approve transitions a pending advance to approved. The approved amount
// defaults to the requested amount and may be lowered, never raised; the
// lowered amount is re-validated so an approver cannot silently violate the
// amount rules or the minimum-wage floor.
func (s *AdvanceService) Approve(ctx context.Context, tenantID string, advanceID uuid.UUID, request *domain.ApproveAdvanceRequest) (*domain.SalaryAdvance, error) {
	advance, err := s.getAdvance(ctx, tenantID, advanceID)
	if err != nil {
		return nil, err
	}

	if advance.Status != domain.AdvanceStatusPending {
		return nil, customError.WrapInvalidStatusTransition(advanceID.String(), advance.Status, "approve")
	}

	approvedAmount := advance.RequestedAmount
	if request.ApprovedAmount != nil {
		approvedAmount = *request.ApprovedAmount
	}
	if approvedAmount.GreaterThan(advance.RequestedAmount) {
		return nil, customError.WrapAmountExceedsRequested(approvedAmount.String(), advance.RequestedAmount.String())
	}

	employee, err := s.EmployeeRepo.GetByID(ctx, tenantID, advance.EmployeeID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	result, err := s.validator.Validate(ctx, tenantID, employee, approvedAmount, advance.RepaymentMonths)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	// The advance under approval is itself one of this month's requests, so
	// the frequency rule is not a reason to refuse approving it.
	if blocked := blockingErrors(result); len(blocked) > 0 {
		result.Errors = blocked
		result.Admissible = false
		return nil, validationFailed(result)
	}

	now := time.Now()
	advance.Status = domain.AdvanceStatusApproved
	advance.ApprovedAmount = approvedAmount
	advance.MonthlyDeduction = utils.CeilDiv(approvedAmount, advance.RepaymentMonths)
	advance.RemainingBalance = approvedAmount
	advance.ApprovedBy = &request.Approver
	advance.ApprovedAt = &now

	ok, err := s.AdvanceRepo.UpdateIfStatus(ctx, advance, domain.AdvanceStatusPending)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if !ok {
		return nil, customError.WrapStaleState(advanceID.String(), domain.AdvanceStatusPending)
	}

	s.log.WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"advance_id": advance.ID,
		"approved":   approvedAmount,
		"approver":   request.Approver,
	}).Info("advance approved")

	s.invalidateStatistics(ctx, tenantID)

	return advance, nil
}

// Reject transitions a pending advance to rejected. A reason is mandatory;
// the record is kept for audit, never deleted.
func (s *AdvanceService) Reject(ctx context.Context, tenantID string, advanceID uuid.UUID, request *domain.RejectAdvanceRequest) (*domain.SalaryAdvance, error) {
	advance, err := s.getAdvance(ctx, tenantID, advanceID)
	if err != nil {
		return nil, err
	}

	if advance.Status != domain.AdvanceStatusPending {
		return nil, customError.WrapInvalidStatusTransition(advanceID.String(), advance.Status, "reject")
	}
	if strings.TrimSpace(request.Reason) == "" {
		return nil, customError.WrapMissingRejectionReason(advanceID.String())
	}

	now := time.Now()
	advance.Status = domain.AdvanceStatusRejected
	advance.RejectedBy = &request.Approver
	advance.RejectedAt = &now
	advance.RejectionReason = &request.Reason

	ok, err := s.AdvanceRepo.UpdateIfStatus(ctx, advance, domain.AdvanceStatusPending)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if !ok {
		return nil, customError.WrapStaleState(advanceID.String(), domain.AdvanceStatusPending)
	}

	s.invalidateStatistics(ctx, tenantID)

	return advance, nil
}

// Disburse pays out an approved advance as part of a payroll run: the
// repayment schedule is materialized and its installments are inserted in
// the same transaction as the status transition.
func (s *AdvanceService) Disburse(ctx context.Context, tenantID string, advanceID uuid.UUID, request *domain.DisburseAdvanceRequest) (*domain.SalaryAdvance, []*domain.RepaymentInstallment, error) {
	advance, err := s.getAdvance(ctx, tenantID, advanceID)
	if err != nil {
		return nil, nil, err
	}

	if advance.Status != domain.AdvanceStatusApproved {
		return nil, nil, customError.WrapInvalidStatusTransition(advanceID.String(), advance.Status, "disburse")
	}

	disbursementDate := time.Now()
	if request.DisbursementDate != nil {
		disbursementDate = *request.DisbursementDate
	}

	plan, err := s.scheduler.BuildSchedule(advance.ApprovedAmount, advance.RepaymentMonths, disbursementDate)
	if err != nil {
		return nil, nil, customError.NewBusinessError(customError.ErrCodeDatabaseError, "building repayment schedule", err)
	}

	now := time.Now()
	installments := make([]*domain.RepaymentInstallment, 0, len(plan.Installments))
	for _, line := range plan.Installments {
		installments = append(installments, &domain.RepaymentInstallment{
			ID:         uuid.New(),
			AdvanceID:  advance.ID,
			TenantID:   tenantID,
			Number:     line.Number,
			DueMonth:   line.DueMonth,
			Amount:     line.Amount,
			Status:     domain.InstallmentStatusPending,
			PaidAmount: decimal.Zero,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	advance.Status = domain.AdvanceStatusDisbursed
	advance.DisbursementDate = &disbursementDate
	advance.PayrollRunID = &request.PayrollRunID
	advance.FirstDeductionMonth = &plan.FirstDeductionMonth
	advance.MonthlyDeduction = plan.MonthlyDeduction

	ok, err := s.AdvanceRepo.DisburseWithInstallments(ctx, advance, installments)
	if err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}
	if !ok {
		return nil, nil, customError.WrapStaleState(advanceID.String(), domain.AdvanceStatusApproved)
	}

	s.log.WithFields(logrus.Fields{
		"tenant_id":      tenantID,
		"advance_id":     advance.ID,
		"payroll_run_id": request.PayrollRunID,
		"installments":   len(installments),
	}).Info("advance disbursed")

	s.invalidateStatistics(ctx, tenantID)

	return advance, installments, nil
}

// Cancel withdraws a pending advance. Once disbursed there is no cancellation
// path; a disbursed advance only reaches completed through full repayment.
func (s *AdvanceService) Cancel(ctx context.Context, tenantID string, advanceID uuid.UUID) (*domain.SalaryAdvance, error) {
	advance, err := s.getAdvance(ctx, tenantID, advanceID)
	if err != nil {
		return nil, err
	}

	if advance.Status != domain.AdvanceStatusPending {
		return nil, customError.WrapCannotCancel(advanceID.String(), advance.Status)
	}

	advance.Status = domain.AdvanceStatusCancelled

	ok, err := s.AdvanceRepo.UpdateIfStatus(ctx, advance, domain.AdvanceStatusPending)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if !ok {
		return nil, customError.WrapStaleState(advanceID.String(), domain.AdvanceStatusPending)
	}

	s.invalidateStatistics(ctx, tenantID)

	return advance, nil
}

// ProcessInstallment records a payroll deduction against one installment and
// recomputes the advance's aggregates. The recomputation is idempotent:
// replaying it after any installment update yields the same totals.
func (s *AdvanceService) ProcessInstallment(ctx context.Context, tenantID string, advanceID uuid.UUID, number int, request *domain.ProcessInstallmentRequest) (*domain.RepaymentInstallment, error) {
	advance, err := s.getAdvance(ctx, tenantID, advanceID)
	if err != nil {
		return nil, err
	}

	if advance.Status != domain.AdvanceStatusDisbursed && advance.Status != domain.AdvanceStatusActive {
		return nil, customError.WrapInvalidStatusTransition(advanceID.String(), advance.Status, "process installment")
	}

	installment, err := s.InstallmentRepo.GetByNumber(ctx, tenantID, advanceID, number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapInstallmentNotFound(advanceID.String(), number)
		}
		return nil, customError.WrapDatabaseError(err)
	}
	if installment.Status != domain.InstallmentStatusPending {
		return nil, customError.WrapInstallmentNotPending(advanceID.String(), number)
	}

	paidDate := time.Now()
	ok, err := s.InstallmentRepo.MarkPaid(ctx, tenantID, advanceID, number, request.ActualAmount, paidDate, request.PayrollRunID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if !ok {
		// Lost the race against another payroll report for the same number.
		return nil, customError.WrapInstallmentNotPending(advanceID.String(), number)
	}

	installment.Status = domain.InstallmentStatusPaid
	installment.PaidAmount = request.ActualAmount
	installment.PaidDate = &paidDate
	installment.PayrollRunID = &request.PayrollRunID

	if err := s.reconcileTotals(ctx, advance); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"tenant_id":      tenantID,
		"advance_id":     advanceID,
		"installment":    number,
		"actual_amount":  request.ActualAmount,
		"payroll_run_id": request.PayrollRunID,
	}).Info("installment processed")

	s.invalidateStatistics(ctx, tenantID)

	return installment, nil
}

// reconcileAttempts bounds the guard-miss retries in reconcileTotals.
const reconcileAttempts = 3

// reconcileTotals recomputes TotalRepaid and RemainingBalance from the
// installments of record and applies the resulting state transition:
// disbursed becomes active on the first settled deduction, and the advance
// completes when the balance is zero and every installment is paid or waived.
// The recomputation is a pure function of the installment rows, so losing the
// status-guard race is recoverable: the advance is reloaded and the recompute
// replayed. Without the replay a committed payment could leave the advance
// stranded with stale totals, since its installment is no longer pending.
func (s *AdvanceService) reconcileTotals(ctx context.Context, advance *domain.SalaryAdvance) error {
	for attempt := 1; ; attempt++ {
		installments, err := s.InstallmentRepo.GetByAdvance(ctx, advance.TenantID, advance.ID)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}

		totalRepaid := decimal.Zero
		allSettled := len(installments) > 0
		anyPaid := false
		for _, inst := range installments {
			switch inst.Status {
			case domain.InstallmentStatusPaid, domain.InstallmentStatusPartial:
				totalRepaid = totalRepaid.Add(inst.PaidAmount)
				anyPaid = true
			}
			if !inst.Settled() {
				allSettled = false
			}
		}

		remaining := advance.ApprovedAmount.Sub(totalRepaid)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}

		expectedStatus := advance.Status
		advance.TotalRepaid = totalRepaid
		advance.RemainingBalance = remaining

		if advance.Status == domain.AdvanceStatusDisbursed && anyPaid {
			advance.Status = domain.AdvanceStatusActive
		}
		if remaining.IsZero() && allSettled {
			advance.Status = domain.AdvanceStatusCompleted
		}

		ok, err := s.AdvanceRepo.UpdateIfStatus(ctx, advance, expectedStatus)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}
		if ok {
			return nil
		}
		if attempt >= reconcileAttempts {
			return customError.WrapStaleState(advance.ID.String(), expectedStatus)
		}

		s.log.WithFields(logrus.Fields{
			"tenant_id":  advance.TenantID,
			"advance_id": advance.ID,
			"attempt":    attempt,
		}).Warn("totals reconciliation lost a guard race, replaying")

		fresh, err := s.getAdvance(ctx, advance.TenantID, advance.ID)
		if err != nil {
			return err
		}
		advance = fresh
	}
}

// ValidateOnly runs admission validation without persisting anything, for
// pre-submission feedback.
func (s *AdvanceService) ValidateOnly(ctx context.Context, tenantID string, request *domain.ValidateAdvanceRequest) (*domain.ValidationResult, error) {
	employee, err := s.EmployeeRepo.GetByID(ctx, tenantID, request.EmployeeID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	result, err := s.validator.Validate(ctx, tenantID, employee, request.Amount, request.RepaymentMonths)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return result, nil
}

// GetMaxAllowed returns the maximum advance currently available to an employee.
func (s *AdvanceService) GetMaxAllowed(ctx context.Context, tenantID string, employeeID uuid.UUID) (decimal.Decimal, error) {
	employee, err := s.EmployeeRepo.GetByID(ctx, tenantID, employeeID)
	if err != nil {
		return decimal.Zero, customError.WrapDatabaseError(err)
	}

	max, err := s.validator.MaxAllowed(ctx, tenantID, employee)
	if err != nil {
		return decimal.Zero, customError.WrapDatabaseError(err)
	}

	return max, nil
}

// GetByID returns an advance and its installments.
func (s *AdvanceService) GetByID(ctx context.Context, tenantID string, advanceID uuid.UUID) (*domain.SalaryAdvance, []*domain.RepaymentInstallment, error) {
	advance, err := s.getAdvance(ctx, tenantID, advanceID)
	if err != nil {
		return nil, nil, err
	}

	installments, err := s.InstallmentRepo.GetByAdvance(ctx, tenantID, advanceID)
	if err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	return advance, installments, nil
}

// List returns advances matching the filter, newest first.
func (s *AdvanceService) List(ctx context.Context, tenantID string, filter domain.ListFilter) ([]*domain.SalaryAdvance, error) {
	if filter.Limit <= 0 {
		filter.Limit = s.config.Business.DefaultListLimit
	}

	advances, err := s.AdvanceRepo.List(ctx, tenantID, filter)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return advances, nil
}

// GetStatistics returns the tenant's aggregate advance figures, cached in
// Redis for a short TTL. The cache is advisory; a cache failure falls through
// to the database.
func (s *AdvanceService) GetStatistics(ctx context.Context, tenantID string) (*domain.AdvanceStatistics, error) {
	cacheKey := statisticsKey(tenantID)

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var stats domain.AdvanceStatistics
			if err := json.Unmarshal(cached, &stats); err == nil {
				return &stats, nil
			}
		}
	}

	stats, err := s.AdvanceRepo.GetStatistics(ctx, tenantID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if s.redis != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.redis.Set(ctx, cacheKey, payload, s.config.GetStatisticsCacheTTL()).Err(); err != nil {
				s.log.WithError(err).Debug("caching statistics")
			}
		}
	}

	return stats, nil
}

// ListOverdueInstallments returns pending installments whose due month has
// passed, for the daily reminder sweep. It mutates nothing.
func (s *AdvanceService) ListOverdueInstallments(ctx context.Context, asOf time.Time) ([]*domain.RepaymentInstallment, error) {
	installments, err := s.InstallmentRepo.ListOverduePending(ctx, asOf)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return installments, nil
}

func (s *AdvanceService) getAdvance(ctx context.Context, tenantID string, advanceID uuid.UUID) (*domain.SalaryAdvance, error) {
	advance, err := s.AdvanceRepo.GetByID(ctx, tenantID, advanceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapAdvanceNotFound(advanceID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	return advance, nil
}

func (s *AdvanceService) invalidateStatistics(ctx context.Context, tenantID string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, statisticsKey(tenantID)).Err(); err != nil {
		s.log.WithError(err).Debug("invalidating statistics cache")
	}
}

func statisticsKey(tenantID string) string {
	return "advance:stats:" + tenantID
}

// blockingErrors filters a re-validation result down to the rules that still
// apply at approval time.
func blockingErrors(result *domain.ValidationResult) []domain.ValidationError {
	var blocked []domain.ValidationError
	for _, e := range result.Errors {
		if e.Code == domain.ValidationTooManyRequests {
			continue
		}
		blocked = append(blocked, e)
	}
	return blocked
}

func validationFailed(result *domain.ValidationResult) *customError.BusinessError {
	codes := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		codes = append(codes, e.Code)
	}
	return customError.NewBusinessError(
		customError.ErrCodeValidationFailed,
		"request failed policy validation: "+strings.Join(codes, ", "),
		customError.ErrValidationFailed,
	)
}
