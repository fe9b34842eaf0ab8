package mocks

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/hrforge/advance-engine/internal/domain"
)

type MockAdvanceValidator struct {
	mock.Mock
}

func (m *MockAdvanceValidator) Validate(ctx context.Context, tenantID string, employee *domain.Employee, requestedAmount decimal.Decimal, repaymentMonths int) (*domain.ValidationResult, error) {
	args := m.Called(ctx, tenantID, employee, requestedAmount, repaymentMonths)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ValidationResult), args.Error(1)
}

func (m *MockAdvanceValidator) MaxAllowed(ctx context.Context, tenantID string, employee *domain.Employee) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, employee)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
