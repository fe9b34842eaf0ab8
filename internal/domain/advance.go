package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	AdvanceStatusPending   = "pending"
	AdvanceStatusApproved  = "approved"
	AdvanceStatusRejected  = "rejected"
	AdvanceStatusDisbursed = "disbursed"
	AdvanceStatusActive    = "active"
	AdvanceStatusCompleted = "completed"
	AdvanceStatusCancelled = "cancelled"
)

// OutstandingStatuses are the states in which an advance has been paid out
// but not fully repaid. They count against the policy's outstanding ceiling.
var OutstandingStatuses = []string{AdvanceStatusDisbursed, AdvanceStatusActive}

// SalaryAdvance represents a zero-interest loan against future wages, repaid
// by payroll deduction. The employee name, number and net salary are frozen
// at request time so later master-data changes never rewrite past decisions.
type SalaryAdvance struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	TenantID        string          `json:"tenant_id" db:"tenant_id"`
	EmployeeID      uuid.UUID       `json:"employee_id" db:"employee_id"`
	EmployeeNumber  string          `json:"employee_number" db:"employee_number"`
	EmployeeName    string          `json:"employee_name" db:"employee_name"`
	NetSalary       decimal.Decimal `json:"net_salary" db:"net_salary"`
	RequestedAmount decimal.Decimal `json:"requested_amount" db:"requested_amount"`
	RepaymentMonths int             `json:"repayment_months" db:"repayment_months"`
	Reason          string          `json:"reason" db:"reason"`
	Notes           string          `json:"notes" db:"notes"`
	Status          string          `json:"status" db:"status"`

	ApprovedAmount   decimal.Decimal `json:"approved_amount" db:"approved_amount"`
	MonthlyDeduction decimal.Decimal `json:"monthly_deduction" db:"monthly_deduction"`
	RemainingBalance decimal.Decimal `json:"remaining_balance" db:"remaining_balance"`
	TotalRepaid      decimal.Decimal `json:"total_repaid" db:"total_repaid"`

	DisbursementDate    *time.Time `json:"disbursement_date,omitempty" db:"disbursement_date"`
	PayrollRunID        *string    `json:"payroll_run_id,omitempty" db:"payroll_run_id"`
	FirstDeductionMonth *time.Time `json:"first_deduction_month,omitempty" db:"first_deduction_month"`

	ApprovedBy      *string    `json:"approved_by,omitempty" db:"approved_by"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty" db:"approved_at"`
	RejectedBy      *string    `json:"rejected_by,omitempty" db:"rejected_by"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty" db:"rejected_at"`
	RejectionReason *string    `json:"rejection_reason,omitempty" db:"rejection_reason"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsOutstanding reports whether the advance counts against the policy's
// outstanding-advance ceiling.
func (a *SalaryAdvance) IsOutstanding() bool {
	return a.Status == AdvanceStatusDisbursed || a.Status == AdvanceStatusActive
}

// DTOs for requests and responses

type CreateAdvanceRequest struct {
	EmployeeID      uuid.UUID       `json:"employee_id" validate:"required"`
	Amount          decimal.Decimal `json:"amount" validate:"required"`
	RepaymentMonths int             `json:"repayment_months" validate:"required,gt=0"`
	Reason          string          `json:"reason" validate:"required"`
	Notes           string          `json:"notes"`
}

type ApproveAdvanceRequest struct {
	Approver       string           `json:"approver" validate:"required"`
	ApprovedAmount *decimal.Decimal `json:"approved_amount,omitempty"`
}

type RejectAdvanceRequest struct {
	Approver string `json:"approver" validate:"required"`
	Reason   string `json:"reason" validate:"required"`
}

type DisburseAdvanceRequest struct {
	PayrollRunID     string     `json:"payroll_run_id" validate:"required"`
	DisbursementDate *time.Time `json:"disbursement_date,omitempty"`
}

type ProcessInstallmentRequest struct {
	ActualAmount decimal.Decimal `json:"actual_amount" validate:"required"`
	PayrollRunID string          `json:"payroll_run_id" validate:"required"`
}

type ValidateAdvanceRequest struct {
	EmployeeID      uuid.UUID       `json:"employee_id" validate:"required"`
	Amount          decimal.Decimal `json:"amount" validate:"required"`
	RepaymentMonths int             `json:"repayment_months" validate:"required,gt=0"`
}

// ListFilter narrows List queries. Zero values mean "no filter".
type ListFilter struct {
	EmployeeID *uuid.UUID
	Status     string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// AdvanceStatistics is the per-tenant aggregate surfaced by GetStatistics.
type AdvanceStatistics struct {
	TenantID         string          `json:"tenant_id" db:"tenant_id"`
	TotalRequests    int             `json:"total_requests" db:"total_requests"`
	PendingCount     int             `json:"pending_count" db:"pending_count"`
	OutstandingCount int             `json:"outstanding_count" db:"outstanding_count"`
	CompletedCount   int             `json:"completed_count" db:"completed_count"`
	RejectedCount    int             `json:"rejected_count" db:"rejected_count"`
	TotalDisbursed   decimal.Decimal `json:"total_disbursed" db:"total_disbursed"`
	TotalRepaid      decimal.Decimal `json:"total_repaid" db:"total_repaid"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding" db:"total_outstanding"`
}
