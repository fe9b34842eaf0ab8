package policy_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hrforge/advance-engine/internal/domain"
	"github.com/hrforge/advance-engine/internal/policy"
	"github.com/hrforge/advance-engine/tests/mocks"
)

const tenantID = "tenant-1"

func activePolicy() *domain.AdvancePolicy {
	return &domain.AdvancePolicy{
		ID:                     uuid.New(),
		TenantID:               tenantID,
		MinEmploymentMonths:    3,
		MaxOutstandingAdvances: 2,
		MaxRequestsPerMonth:    3,
		MinAmount:              decimal.NewFromInt(1000),
		MaxSalaryPercent:       decimal.RequireFromString("0.5"),
		AllowedRepaymentMonths: domain.Months{1, 2, 3},
		CountryCode:            "XX", // no statutory floor
		Active:                 true,
	}
}

func employee(hiredMonthsAgo int) *domain.Employee {
	return &domain.Employee{
		ID:             uuid.New(),
		TenantID:       tenantID,
		EmployeeNumber: "EMP-001",
		FullName:       "Amina Haddad",
		HireDate:       time.Now().AddDate(0, -hiredMonthsAgo, -1),
		BaseSalary:     decimal.NewFromInt(120000),
		Active:         true,
	}
}

func newValidator(pol *domain.AdvancePolicy, netSalary decimal.Decimal, outstanding, requests int) *policy.Validator {
	policies := new(mocks.MockPolicyRepository)
	if pol != nil {
		policies.On("GetActivePolicy", mock.Anything, tenantID).Return(pol, nil)
	} else {
		policies.On("GetActivePolicy", mock.Anything, tenantID).Return(nil, nil)
	}

	counts := new(mocks.MockAdvanceRepository)
	counts.On("CountOutstanding", mock.Anything, tenantID, mock.Anything).Return(outstanding, nil)
	counts.On("CountRequestsSince", mock.Anything, tenantID, mock.Anything, mock.Anything).Return(requests, nil)

	salaries := new(mocks.MockNetSalaryProvider)
	salaries.On("NetSalary", mock.Anything, mock.Anything).Return(netSalary)

	return policy.NewValidator(policies, counts, salaries)
}

func TestValidateAdmissible(t *testing.T) {
	v := newValidator(activePolicy(), decimal.NewFromInt(100000), 0, 0)

	result, err := v.Validate(context.Background(), tenantID, employee(12), decimal.NewFromInt(30000), 3)
	require.NoError(t, err)

	assert.True(t, result.Admissible)
	assert.Empty(t, result.Errors)
	assert.True(t, result.NetSalary.Equal(decimal.NewFromInt(100000)))
	assert.True(t, result.MaxAllowedAmount.Equal(decimal.NewFromInt(50000)))
}

func TestValidateEmployeeNotFound(t *testing.T) {
	v := newValidator(activePolicy(), decimal.NewFromInt(100000), 0, 0)

	result, err := v.Validate(context.Background(), tenantID, nil, decimal.NewFromInt(30000), 3)
	require.NoError(t, err)

	assert.False(t, result.Admissible)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, domain.ValidationEmployeeNotFound, result.Errors[0].Code)
}

func TestValidateNoActiveSalary(t *testing.T) {
	v := newValidator(activePolicy(), decimal.Zero, 0, 0)

	result, err := v.Validate(context.Background(), tenantID, employee(12), decimal.NewFromInt(30000), 3)
	require.NoError(t, err)

	assert.False(t, result.Admissible)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, domain.ValidationNoActiveSalary, result.Errors[0].Code)
}

func TestValidateNoPolicy(t *testing.T) {
	v := newValidator(nil, decimal.NewFromInt(100000), 0, 0)

	result, err := v.Validate(context.Background(), tenantID, employee(12), decimal.NewFromInt(30000), 3)
	require.NoError(t, err)

	assert.False(t, result.Admissible)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, domain.ValidationNoPolicy, result.Errors[0].Code)
}

func TestValidateInsufficientEmployment(t *testing.T) {
	// Hired 2 months ago against a 3-month policy: rejected regardless of amount.
	v := newValidator(activePolicy(), decimal.NewFromInt(100000), 0, 0)

	for _, amount := range []int64{1000, 10000, 50000} {
		result, err := v.Validate(context.Background(), tenantID, employee(2), decimal.NewFromInt(amount), 3)
		require.NoError(t, err)

		assert.False(t, result.Admissible)
		assert.True(t, result.HasError(domain.ValidationInsufficientTenure))
	}
}

func TestValidateThrottling(t *testing.T) {
	t.Run("Too many outstanding advances", func(t *testing.T) {
		v := newValidator(activePolicy(), decimal.NewFromInt(100000), 2, 0)

		result, err := v.Validate(context.Background(), tenantID, employee(12), decimal.NewFromInt(30000), 3)
		require.NoError(t, err)

		assert.False(t, result.Admissible)
		assert.True(t, result.HasError(domain.ValidationTooManyOutstanding))
		assert.Equal(t, 2, result.OutstandingCount)
	})

	t.Run("Too many requests this month", func(t *testing.T) {
		v := newValidator(activePolicy(), decimal.NewFromInt(100000), 0, 3)

		result, err := v.Validate(context.Background(), tenantID, employee(12), decimal.NewFromInt(30000), 3)
		require.NoError(t, err)

		assert.False(t, result.Admissible)
		assert.True(t, result.HasError(domain.ValidationTooManyRequests))
		assert.Equal(t, 3, result.RequestsThisMonth)
	})
}

func TestValidateAmountBounds(t *testing.T) {
	t.Run("Below policy minimum", func(t *testing.T) {
		v := newValidator(activePolicy(), decimal.NewFromInt(100000), 0, 0)

		result, err := v.Validate(context.Background(), tenantID, employee(12), decimal.NewFromInt(500), 3)
		require.NoError(t, err)

		assert.False(t, result.Admissible)
		assert.True(t, result.HasError(domain.ValidationAmountTooLow))
	})

	t.Run("Above percentage cap", func(t *testing.T) {
		v := newValidator(activePolicy(), decimal.NewFromInt(100000), 0, 0)

		result, err := v.Validate(context.Background(), tenantID, employee(12), decimal.NewFromInt(60000), 3)
		require.NoError(t, err)

		assert.False(t, result.Admissible)
		assert.True(t, result.HasError(domain.ValidationAmountTooHigh))
	})

	t.Run("Absolute ceiling binds when smaller", func(t *testing.T) {
		pol := activePolicy()
		ceiling := decimal.NewFromInt(20000)
		pol.MaxAbsoluteAmount = &ceiling
		v := newValidator(pol, decimal.NewFromInt(100000), 0, 0)

		result, err := v.Validate(context.Background(), tenantID, employee(12), decimal.NewFromInt(30000), 3)
		require.NoError(t, err)

		assert.False(t, result.Admissible)
		assert.True(t, result.HasError(domain.ValidationAmountTooHigh))
		assert.True(t, result.MaxAllowedAmount.Equal(ceiling))
	})
}

func TestValidateRepaymentPeriod(t *testing.T) {
	v := newValidator(activePolicy(), decimal.NewFromInt(100000), 0, 0)

	result, err := v.Validate(context.Background(), tenantID, employee(12), decimal.NewFromInt(30000), 6)
	require.NoError(t, err)

	assert.False(t, result.Admissible)
	assert.True(t, result.HasError(domain.ValidationInvalidPeriod))
}

func TestValidateMinimumWageFloor(t *testing.T) {
	// Ivory Coast floor is 75000: netSalary=100000, requested=30000 over one
	// month leaves 70000 net, below the floor. The violation carries the
	// corrective maximum (100000-75000)*1 = 25000.
	pol := activePolicy()
	pol.CountryCode = "CI"
	v := newValidator(pol, decimal.NewFromInt(100000), 0, 0)

	result, err := v.Validate(context.Background(), tenantID, employee(12), decimal.NewFromInt(30000), 1)
	require.NoError(t, err)

	assert.False(t, result.Admissible)
	assert.True(t, result.HasError(domain.ValidationMinimumWageViolation))

	for _, e := range result.Errors {
		if e.Code == domain.ValidationMinimumWageViolation {
			assert.Contains(t, e.Message, "25000")
		}
	}

	// The period-aware maximum is capped by the floor, not the salary percent.
	assert.True(t, result.MaxAllowedAmount.Equal(decimal.NewFromInt(25000)))
}

func TestValidateWageFloorNeverAdmitsViolation(t *testing.T) {
	pol := activePolicy()
	pol.CountryCode = "CI" // floor 75000
	v := newValidator(pol, decimal.NewFromInt(100000), 0, 0)

	for months := 1; months <= 3; months++ {
		for _, amount := range []int64{20000, 25001, 26000, 50000, 75001} {
			result, err := v.Validate(context.Background(), tenantID, employee(12), decimal.NewFromInt(amount), months)
			require.NoError(t, err)

			deduction := decimal.NewFromInt(amount).Div(decimal.NewFromInt(int64(months))).Ceil()
			if decimal.NewFromInt(100000).Sub(deduction).LessThan(decimal.NewFromInt(75000)) {
				assert.False(t, result.Admissible, "amount=%d months=%d must not be admissible", amount, months)
			}
		}
	}
}

func TestValidateWarnings(t *testing.T) {
	t.Run("Near the allowed maximum", func(t *testing.T) {
		v := newValidator(activePolicy(), decimal.NewFromInt(100000), 0, 0)

		result, err := v.Validate(context.Background(), tenantID, employee(12), decimal.NewFromInt(48000), 3)
		require.NoError(t, err)

		assert.True(t, result.Admissible)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "90%")
	})

	t.Run("Heavy single-month burden", func(t *testing.T) {
		v := newValidator(activePolicy(), decimal.NewFromInt(100000), 0, 0)

		result, err := v.Validate(context.Background(), tenantID, employee(12), decimal.NewFromInt(25000), 1)
		require.NoError(t, err)

		assert.True(t, result.Admissible)
		require.NotEmpty(t, result.Warnings)
		assert.Contains(t, result.Warnings[len(result.Warnings)-1], "20%")
	})
}

func TestValidateAccumulatesErrors(t *testing.T) {
	// A single call reports every violated rule at once.
	v := newValidator(activePolicy(), decimal.NewFromInt(100000), 2, 3)

	result, err := v.Validate(context.Background(), tenantID, employee(1), decimal.NewFromInt(60000), 6)
	require.NoError(t, err)

	assert.False(t, result.Admissible)
	assert.True(t, result.HasError(domain.ValidationInsufficientTenure))
	assert.True(t, result.HasError(domain.ValidationTooManyOutstanding))
	assert.True(t, result.HasError(domain.ValidationTooManyRequests))
	assert.True(t, result.HasError(domain.ValidationAmountTooHigh))
	assert.True(t, result.HasError(domain.ValidationInvalidPeriod))
}

func TestMaxAllowed(t *testing.T) {
	t.Run("Percentage cap", func(t *testing.T) {
		v := newValidator(activePolicy(), decimal.NewFromInt(100000), 0, 0)

		max, err := v.MaxAllowed(context.Background(), tenantID, employee(12))
		require.NoError(t, err)
		assert.True(t, max.Equal(decimal.NewFromInt(50000)))
	})

	t.Run("Unknown employee yields zero", func(t *testing.T) {
		v := newValidator(activePolicy(), decimal.NewFromInt(100000), 0, 0)

		max, err := v.MaxAllowed(context.Background(), tenantID, nil)
		require.NoError(t, err)
		assert.True(t, max.IsZero())
	})
}
