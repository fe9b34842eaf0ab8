package salary_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/hrforge/advance-engine/internal/domain"
	"github.com/hrforge/advance-engine/internal/salary"
	"github.com/hrforge/advance-engine/tests/mocks"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func salariedEmployee(base int64) *domain.Employee {
	return &domain.Employee{
		ID:         uuid.New(),
		TenantID:   "tenant-1",
		BaseSalary: decimal.NewFromInt(base),
		Active:     true,
	}
}

func TestProviderNetSalary(t *testing.T) {
	fallbackPercent := decimal.RequireFromString("0.85")

	tests := []struct {
		name     string
		engine   salary.PayrollEngine
		employee *domain.Employee
		expected decimal.Decimal
	}{
		{
			name: "Engine figure wins when positive",
			engine: salary.PayrollEngineFunc(func(ctx context.Context, tenantID, employeeID string) (decimal.Decimal, error) {
				return decimal.NewFromInt(123456), nil
			}),
			employee: salariedEmployee(200000),
			expected: decimal.NewFromInt(123456),
		},
		{
			name: "Engine error falls back to percentage of base",
			engine: salary.PayrollEngineFunc(func(ctx context.Context, tenantID, employeeID string) (decimal.Decimal, error) {
				return decimal.Zero, errors.New("payroll engine timeout")
			}),
			employee: salariedEmployee(100000),
			expected: decimal.NewFromInt(85000),
		},
		{
			name: "Engine zero falls back to percentage of base",
			engine: salary.PayrollEngineFunc(func(ctx context.Context, tenantID, employeeID string) (decimal.Decimal, error) {
				return decimal.Zero, nil
			}),
			employee: salariedEmployee(100000),
			expected: decimal.NewFromInt(85000),
		},
		{
			name: "Engine negative falls back to percentage of base",
			engine: salary.PayrollEngineFunc(func(ctx context.Context, tenantID, employeeID string) (decimal.Decimal, error) {
				return decimal.NewFromInt(-500), nil
			}),
			employee: salariedEmployee(100000),
			expected: decimal.NewFromInt(85000),
		},
		{
			name:     "No engine wired uses fallback directly",
			engine:   nil,
			employee: salariedEmployee(60000),
			expected: decimal.NewFromInt(51000),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := salary.NewProvider(tt.engine, fallbackPercent, quietLogger())

			net := provider.NetSalary(context.Background(), tt.employee)

			assert.True(t, tt.expected.Equal(net), "expected %s, got %s", tt.expected, net)
		})
	}
}

func TestProviderConfigurablePercent(t *testing.T) {
	provider := salary.NewProvider(nil, decimal.RequireFromString("0.7"), quietLogger())

	net := provider.NetSalary(context.Background(), salariedEmployee(100000))

	assert.True(t, decimal.NewFromInt(70000).Equal(net))
}

func TestProviderPassesEmployeeIdentity(t *testing.T) {
	employee := salariedEmployee(100000)

	engine := new(mocks.MockPayrollEngine)
	engine.On("NetSalary", mock.Anything, "tenant-1", employee.ID.String()).
		Return(decimal.NewFromInt(90000), nil)

	provider := salary.NewProvider(engine, decimal.RequireFromString("0.85"), quietLogger())
	net := provider.NetSalary(context.Background(), employee)

	assert.True(t, decimal.NewFromInt(90000).Equal(net))
	engine.AssertExpectations(t)
}

func TestMinimumWage(t *testing.T) {
	t.Run("Known country", func(t *testing.T) {
		wage, ok := salary.MinimumWage("CI")
		assert.True(t, ok)
		assert.True(t, decimal.NewFromInt(75000).Equal(wage))
	})

	t.Run("Lowercase code is normalized", func(t *testing.T) {
		wage, ok := salary.MinimumWage("ci")
		assert.True(t, ok)
		assert.True(t, decimal.NewFromInt(75000).Equal(wage))
	})

	t.Run("Unknown country has no floor", func(t *testing.T) {
		_, ok := salary.MinimumWage("XX")
		assert.False(t, ok)
	})
}
