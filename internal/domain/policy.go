package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdvancePolicy is a tenant's active ruleset for salary advances. At most one
// policy is active per tenant at a time.
type AdvancePolicy struct {
	ID                     uuid.UUID        `json:"id" db:"id"`
	TenantID               string           `json:"tenant_id" db:"tenant_id"`
	MinEmploymentMonths    int              `json:"min_employment_months" db:"min_employment_months"`
	MaxOutstandingAdvances int              `json:"max_outstanding_advances" db:"max_outstanding_advances"`
	MaxRequestsPerMonth    int              `json:"max_requests_per_month" db:"max_requests_per_month"`
	MinAmount              decimal.Decimal  `json:"min_amount" db:"min_amount"`
	MaxSalaryPercent       decimal.Decimal  `json:"max_salary_percent" db:"max_salary_percent"`
	MaxAbsoluteAmount      *decimal.Decimal `json:"max_absolute_amount,omitempty" db:"max_absolute_amount"`
	AllowedRepaymentMonths Months           `json:"allowed_repayment_months" db:"allowed_repayment_months"`
	CountryCode            string           `json:"country_code" db:"country_code"`
	Active                 bool             `json:"active" db:"active"`
	CreatedAt              time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time        `json:"updated_at" db:"updated_at"`
}

// AllowsRepaymentMonths reports whether the tenant permits the given
// repayment period.
func (p *AdvancePolicy) AllowsRepaymentMonths(months int) bool {
	for _, m := range p.AllowedRepaymentMonths {
		if m == months {
			return true
		}
	}
	return false
}

// MaxAmountFor returns the binding amount ceiling for a given net salary:
// the smaller of the percentage-of-salary cap and the absolute cap when set.
func (p *AdvancePolicy) MaxAmountFor(netSalary decimal.Decimal) decimal.Decimal {
	max := netSalary.Mul(p.MaxSalaryPercent)
	if p.MaxAbsoluteAmount != nil && p.MaxAbsoluteAmount.LessThan(max) {
		max = *p.MaxAbsoluteAmount
	}
	return max
}
