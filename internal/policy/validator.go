package policy

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hrforge/advance-engine/internal/domain"
	"github.com/hrforge/advance-engine/internal/salary"
	"github.com/hrforge/advance-engine/pkg/utils"
)

// PolicySource resolves a tenant's active advance policy.
type PolicySource interface {
	GetActivePolicy(ctx context.Context, tenantID string) (*domain.AdvancePolicy, error)
}

// AdvanceCounter supplies the per-employee counts the throttling rules need.
type AdvanceCounter interface {
	CountOutstanding(ctx context.Context, tenantID string, employeeID string) (int, error)
	CountRequestsSince(ctx context.Context, tenantID string, employeeID string, since time.Time) (int, error)
}

// Validator decides whether a salary-advance request is admissible under the
// tenant's active policy. All rules are evaluated and their violations
// accumulated; validation only halts early when the employee, the net salary
// or the policy cannot be resolved, since nothing else can be computed then.
type Validator struct {
	policies PolicySource
	counts   AdvanceCounter
	salaries salary.NetSalaryProvider
}

func NewValidator(policies PolicySource, counts AdvanceCounter, salaries salary.NetSalaryProvider) *Validator {
	return &Validator{
		policies: policies,
		counts:   counts,
		salaries: salaries,
	}
}

const (
	// Advisory thresholds. Crossing them yields warnings, never a block.
	nearMaxWarningRatio    = "0.9"
	singleMonthBurdenRatio = "0.2"
)

// Validate runs every admission rule for a requested amount and repayment
// period. MaxAllowedAmount is computed regardless of admissibility so callers
// can offer a corrected amount without re-submitting.
func (v *Validator) Validate(ctx context.Context, tenantID string, employee *domain.Employee, requestedAmount decimal.Decimal, repaymentMonths int) (*domain.ValidationResult, error) {
	result := &domain.ValidationResult{Admissible: true}

	if employee == nil || !employee.Active {
		result.AddError(domain.ValidationEmployeeNotFound, "employee_id", "employee not found for tenant")
		return result, nil
	}

	netSalary := v.salaries.NetSalary(ctx, employee)
	result.NetSalary = netSalary
	if !netSalary.IsPositive() {
		result.AddError(domain.ValidationNoActiveSalary, "employee_id", "employee has no active salary")
		return result, nil
	}

	pol, err := v.policies.GetActivePolicy(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("resolving active policy: %w", err)
	}
	if pol == nil {
		result.AddError(domain.ValidationNoPolicy, "tenant_id", "no active salary-advance policy for tenant")
		return result, nil
	}

	now := time.Now()

	tenure := utils.WholeMonthsBetween(employee.HireDate, now)
	if tenure < pol.MinEmploymentMonths {
		result.AddError(domain.ValidationInsufficientTenure, "employee_id",
			fmt.Sprintf("employment duration is %d months, policy requires %d", tenure, pol.MinEmploymentMonths))
	}

	outstanding, err := v.counts.CountOutstanding(ctx, tenantID, employee.ID.String())
	if err != nil {
		return nil, fmt.Errorf("counting outstanding advances: %w", err)
	}
	result.OutstandingCount = outstanding
	if outstanding >= pol.MaxOutstandingAdvances {
		result.AddError(domain.ValidationTooManyOutstanding, "employee_id",
			fmt.Sprintf("employee already has %d outstanding advances, policy allows %d", outstanding, pol.MaxOutstandingAdvances))
	}

	monthStart := utils.FirstOfMonth(now)
	requests, err := v.counts.CountRequestsSince(ctx, tenantID, employee.ID.String(), monthStart)
	if err != nil {
		return nil, fmt.Errorf("counting requests this month: %w", err)
	}
	result.RequestsThisMonth = requests
	if requests >= pol.MaxRequestsPerMonth {
		result.AddError(domain.ValidationTooManyRequests, "employee_id",
			fmt.Sprintf("employee already made %d requests this month, policy allows %d", requests, pol.MaxRequestsPerMonth))
	}

	if requestedAmount.LessThan(pol.MinAmount) {
		result.AddError(domain.ValidationAmountTooLow, "amount",
			fmt.Sprintf("requested amount %s is below the policy minimum %s", requestedAmount, pol.MinAmount))
	}

	capAmount := pol.MaxAmountFor(netSalary)
	if requestedAmount.GreaterThan(capAmount) {
		result.AddError(domain.ValidationAmountTooHigh, "amount",
			fmt.Sprintf("requested amount %s exceeds the allowed maximum %s", requestedAmount, capAmount))
	}

	if !pol.AllowsRepaymentMonths(repaymentMonths) {
		result.AddError(domain.ValidationInvalidPeriod, "repayment_months",
			fmt.Sprintf("repayment period of %d months is not permitted by the policy", repaymentMonths))
	}

	result.MaxAllowedAmount = maxAllowedAmount(pol, netSalary, repaymentMonths)

	if minWage, ok := salary.MinimumWage(pol.CountryCode); ok && repaymentMonths > 0 {
		deduction := utils.CeilDiv(requestedAmount, repaymentMonths)
		if netSalary.Sub(deduction).LessThan(minWage) {
			suggested := netSalary.Sub(minWage).Mul(decimal.NewFromInt(int64(repaymentMonths)))
			if suggested.IsNegative() {
				suggested = decimal.Zero
			}
			result.AddError(domain.ValidationMinimumWageViolation, "amount",
				fmt.Sprintf("monthly deduction %s would leave net pay below the statutory minimum wage %s; maximum allowed for this period is %s",
					deduction, minWage, suggested))
		}
	}

	warnRatio, _ := decimal.NewFromString(nearMaxWarningRatio)
	if result.MaxAllowedAmount.IsPositive() && requestedAmount.GreaterThan(result.MaxAllowedAmount.Mul(warnRatio)) {
		result.AddWarning(fmt.Sprintf("requested amount %s exceeds 90%% of the allowed maximum %s", requestedAmount, result.MaxAllowedAmount))
	}
	burdenRatio, _ := decimal.NewFromString(singleMonthBurdenRatio)
	if repaymentMonths == 1 && requestedAmount.GreaterThan(netSalary.Mul(burdenRatio)) {
		result.AddWarning("single-month repayment of more than 20% of net salary")
	}

	return result, nil
}

// MaxAllowed computes the maximum amount currently allowed for an employee
// without a specific repayment period, so the wage-floor cap does not apply.
func (v *Validator) MaxAllowed(ctx context.Context, tenantID string, employee *domain.Employee) (decimal.Decimal, error) {
	if employee == nil || !employee.Active {
		return decimal.Zero, nil
	}

	netSalary := v.salaries.NetSalary(ctx, employee)
	if !netSalary.IsPositive() {
		return decimal.Zero, nil
	}

	pol, err := v.policies.GetActivePolicy(ctx, tenantID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("resolving active policy: %w", err)
	}
	if pol == nil {
		return decimal.Zero, nil
	}

	return maxAllowedAmount(pol, netSalary, 0), nil
}

// maxAllowedAmount is the minimum of the percentage-of-salary cap, the
// absolute cap, and, when a repayment period and a wage floor both apply, the
// floor-derived cap (netSalary - minimumWage) * months.
func maxAllowedAmount(pol *domain.AdvancePolicy, netSalary decimal.Decimal, repaymentMonths int) decimal.Decimal {
	max := pol.MaxAmountFor(netSalary)

	if repaymentMonths > 0 {
		if minWage, ok := salary.MinimumWage(pol.CountryCode); ok {
			floorCap := netSalary.Sub(minWage).Mul(decimal.NewFromInt(int64(repaymentMonths)))
			if floorCap.IsNegative() {
				floorCap = decimal.Zero
			}
			max = utils.MinDecimal(max, floorCap)
		}
	}

	if max.IsNegative() {
		return decimal.Zero
	}
	return max
}
