package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hrforge/advance-engine/internal/domain"
)

// ErrOutstandingLimit is returned by Create when the commit-time re-check of
// the outstanding-advance ceiling fails. Two concurrent creates can both pass
// validation; only one may win the insert.
var ErrOutstandingLimit = errors.New("outstanding advance limit reached")

// AdvanceRepository defines the interface for salary-advance data operations.
// Every method is tenant-scoped.
type AdvanceRepository interface {
	// Create inserts a pending advance. The outstanding-count ceiling is
	// re-checked inside the same transaction as the insert.
	Create(ctx context.Context, advance *domain.SalaryAdvance, maxOutstanding int) error

	// GetByID retrieves an advance by its ID
	GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*domain.SalaryAdvance, error)

	// List retrieves advances matching the filter, newest first
	List(ctx context.Context, tenantID string, filter domain.ListFilter) ([]*domain.SalaryAdvance, error)

	// UpdateIfStatus writes the advance's mutable fields only when its
	// persisted status still equals expectedStatus. Returns false when the
	// guard did not match (stale state).
	UpdateIfStatus(ctx context.Context, advance *domain.SalaryAdvance, expectedStatus string) (bool, error)

	// DisburseWithInstallments transitions the advance out of approved and
	// inserts its installment batch atomically. Returns false when the
	// status guard did not match.
	DisburseWithInstallments(ctx context.Context, advance *domain.SalaryAdvance, installments []*domain.RepaymentInstallment) (bool, error)

	// CountOutstanding counts the employee's disbursed-but-unfinished advances
	CountOutstanding(ctx context.Context, tenantID string, employeeID string) (int, error)

	// CountRequestsSince counts requests the employee created since a date
	CountRequestsSince(ctx context.Context, tenantID string, employeeID string, since time.Time) (int, error)

	// GetStatistics aggregates per-tenant advance figures
	GetStatistics(ctx context.Context, tenantID string) (*domain.AdvanceStatistics, error)
}

// InstallmentRepository defines the interface for repayment-installment data
// operations.
type InstallmentRepository interface {
	// GetByAdvance retrieves all installments of an advance ordered by number
	GetByAdvance(ctx context.Context, tenantID string, advanceID uuid.UUID) ([]*domain.RepaymentInstallment, error)

	// GetByNumber retrieves a single installment
	GetByNumber(ctx context.Context, tenantID string, advanceID uuid.UUID, number int) (*domain.RepaymentInstallment, error)

	// MarkPaid transitions a pending installment to paid, recording the actual
	// amount, paid date and payroll run. Returns false when the installment
	// was not pending (the double-processing guard).
	MarkPaid(ctx context.Context, tenantID string, advanceID uuid.UUID, number int, actualAmount decimal.Decimal, paidDate time.Time, payrollRunID string) (bool, error)

	// ListOverduePending lists pending installments whose due month has passed
	ListOverduePending(ctx context.Context, asOf time.Time) ([]*domain.RepaymentInstallment, error)
}

// PolicyRepository resolves tenant advance policies.
type PolicyRepository interface {
	// GetActivePolicy returns the tenant's active policy, or nil when none exists
	GetActivePolicy(ctx context.Context, tenantID string) (*domain.AdvancePolicy, error)
}

// EmployeeRepository reads the employee master-data projection.
type EmployeeRepository interface {
	// GetByID returns the employee, or nil when no such employee exists
	GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*domain.Employee, error)
}

// PayrollRepository reads persisted payslips for the net-salary fallback chain.
type PayrollRepository interface {
	// LatestNetSalary returns the net salary of the most recent processed payslip
	LatestNetSalary(ctx context.Context, tenantID string, employeeID string) (decimal.Decimal, error)
}
