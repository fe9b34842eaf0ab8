package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	InstallmentStatusPending = "pending"
	InstallmentStatusPaid    = "paid"
	InstallmentStatusPartial = "partial"
	InstallmentStatusWaived  = "waived"
)

// RepaymentInstallment is one scheduled payroll deduction of an advance.
// Rows are created as a batch at disbursement and mutated one at a time as
// payroll reports deductions; they are never deleted.
type RepaymentInstallment struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	AdvanceID uuid.UUID       `json:"advance_id" db:"advance_id"`
	TenantID  string          `json:"tenant_id" db:"tenant_id"`
	Number    int             `json:"number" db:"number"`
	DueMonth  time.Time       `json:"due_month" db:"due_month"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Status    string          `json:"status" db:"status"`

	PaidAmount   decimal.Decimal `json:"paid_amount" db:"paid_amount"`
	PaidDate     *time.Time      `json:"paid_date,omitempty" db:"paid_date"`
	PayrollRunID *string         `json:"payroll_run_id,omitempty" db:"payroll_run_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Settled reports whether the installment no longer expects a deduction.
func (i *RepaymentInstallment) Settled() bool {
	return i.Status == InstallmentStatusPaid || i.Status == InstallmentStatusWaived
}
