package schedule

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hrforge/advance-engine/pkg/utils"
)

// Installment is one planned repayment line of a schedule, before it is
// persisted against an advance.
type Installment struct {
	Number   int             `json:"number"`
	DueMonth time.Time       `json:"due_month"`
	Amount   decimal.Decimal `json:"amount"`
}

// Schedule is the complete repayment plan for an approved amount.
type Schedule struct {
	MonthlyDeduction    decimal.Decimal `json:"monthly_deduction"`
	FirstDeductionMonth time.Time       `json:"first_deduction_month"`
	Installments        []Installment   `json:"installments"`
}

// Scheduler builds exact installment schedules. It is stateless and safe for
// concurrent use.
type Scheduler struct{}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// BuildSchedule splits amount over repaymentMonths equal monthly deductions
// rounded up, anchored on the month after the disbursement date. The final
// installment carries whatever balance remains after the equal deductions, so
// the installments sum to the amount exactly and are never negative. A zero
// anchor means "now".
func (s *Scheduler) BuildSchedule(amount decimal.Decimal, repaymentMonths int, anchor time.Time) (*Schedule, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("schedule amount must be positive, got %s", amount)
	}
	if repaymentMonths <= 0 {
		return nil, fmt.Errorf("repayment months must be positive, got %d", repaymentMonths)
	}
	if anchor.IsZero() {
		anchor = time.Now()
	}

	monthly := utils.CeilDiv(amount, repaymentMonths)
	firstMonth := utils.FirstOfNextMonth(anchor)

	remaining := amount
	installments := make([]Installment, 0, repaymentMonths)
	for i := 1; i <= repaymentMonths; i++ {
		due := utils.MinDecimal(monthly, remaining)
		if i == repaymentMonths {
			due = remaining
		}
		installments = append(installments, Installment{
			Number:   i,
			DueMonth: utils.AddMonths(firstMonth, i-1),
			Amount:   due,
		})
		remaining = remaining.Sub(due)
	}

	return &Schedule{
		MonthlyDeduction:    monthly,
		FirstDeductionMonth: firstMonth,
		Installments:        installments,
	}, nil
}

// Recalculate rebuilds a schedule for the remaining balance over the
// remaining months, anchored so the first new installment falls on
// nextDueMonth. Already-paid installments are immutable history and are not
// touched here.
func (s *Scheduler) Recalculate(remainingBalance decimal.Decimal, remainingMonths int, nextDueMonth time.Time) (*Schedule, error) {
	// BuildSchedule anchors on the month after the anchor date.
	return s.BuildSchedule(remainingBalance, remainingMonths, utils.AddMonths(utils.FirstOfMonth(nextDueMonth), -1))
}

// ValidateSchedule is a standalone diagnostic over a set of installments: the
// planned amounts must sum to total exactly, the count must equal
// repaymentMonths, numbers must be the contiguous sequence 1..N, and
// consecutive due months must differ by exactly one calendar month.
func ValidateSchedule(installments []Installment, total decimal.Decimal, repaymentMonths int) error {
	if len(installments) != repaymentMonths {
		return fmt.Errorf("schedule has %d installments, want %d", len(installments), repaymentMonths)
	}

	sum := decimal.Zero
	for i, inst := range installments {
		if inst.Number != i+1 {
			return fmt.Errorf("installment at position %d has number %d, want %d", i, inst.Number, i+1)
		}
		if i > 0 {
			expected := utils.AddMonths(installments[i-1].DueMonth, 1)
			if !inst.DueMonth.Equal(expected) {
				return fmt.Errorf("installment %d due %s, want %s", inst.Number,
					inst.DueMonth.Format("2006-01"), expected.Format("2006-01"))
			}
		}
		sum = sum.Add(inst.Amount)
	}

	if !sum.Equal(total) {
		return fmt.Errorf("installments sum to %s, want %s", sum, total)
	}

	return nil
}
