package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/hrforge/advance-engine/internal/domain"
)

type MockAdvanceRepository struct {
	mock.Mock
}

func (m *MockAdvanceRepository) Create(ctx context.Context, advance *domain.SalaryAdvance, maxOutstanding int) error {
	args := m.Called(ctx, advance, maxOutstanding)
	return args.Error(0)
}

func (m *MockAdvanceRepository) GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*domain.SalaryAdvance, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SalaryAdvance), args.Error(1)
}

func (m *MockAdvanceRepository) List(ctx context.Context, tenantID string, filter domain.ListFilter) ([]*domain.SalaryAdvance, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SalaryAdvance), args.Error(1)
}

func (m *MockAdvanceRepository) UpdateIfStatus(ctx context.Context, advance *domain.SalaryAdvance, expectedStatus string) (bool, error) {
	args := m.Called(ctx, advance, expectedStatus)
	return args.Bool(0), args.Error(1)
}

func (m *MockAdvanceRepository) DisburseWithInstallments(ctx context.Context, advance *domain.SalaryAdvance, installments []*domain.RepaymentInstallment) (bool, error) {
	args := m.Called(ctx, advance, installments)
	return args.Bool(0), args.Error(1)
}

func (m *MockAdvanceRepository) CountOutstanding(ctx context.Context, tenantID string, employeeID string) (int, error) {
	args := m.Called(ctx, tenantID, employeeID)
	return args.Int(0), args.Error(1)
}

func (m *MockAdvanceRepository) CountRequestsSince(ctx context.Context, tenantID string, employeeID string, since time.Time) (int, error) {
	args := m.Called(ctx, tenantID, employeeID, since)
	return args.Int(0), args.Error(1)
}

func (m *MockAdvanceRepository) GetStatistics(ctx context.Context, tenantID string) (*domain.AdvanceStatistics, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AdvanceStatistics), args.Error(1)
}

type MockInstallmentRepository struct {
	mock.Mock
}

func (m *MockInstallmentRepository) GetByAdvance(ctx context.Context, tenantID string, advanceID uuid.UUID) ([]*domain.RepaymentInstallment, error) {
	args := m.Called(ctx, tenantID, advanceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RepaymentInstallment), args.Error(1)
}

func (m *MockInstallmentRepository) GetByNumber(ctx context.Context, tenantID string, advanceID uuid.UUID, number int) (*domain.RepaymentInstallment, error) {
	args := m.Called(ctx, tenantID, advanceID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RepaymentInstallment), args.Error(1)
}

func (m *MockInstallmentRepository) MarkPaid(ctx context.Context, tenantID string, advanceID uuid.UUID, number int, actualAmount decimal.Decimal, paidDate time.Time, payrollRunID string) (bool, error) {
	args := m.Called(ctx, tenantID, advanceID, number, actualAmount, paidDate, payrollRunID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInstallmentRepository) ListOverduePending(ctx context.Context, asOf time.Time) ([]*domain.RepaymentInstallment, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RepaymentInstallment), args.Error(1)
}

type MockPolicyRepository struct {
	mock.Mock
}

func (m *MockPolicyRepository) GetActivePolicy(ctx context.Context, tenantID string) (*domain.AdvancePolicy, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AdvancePolicy), args.Error(1)
}

type MockEmployeeRepository struct {
	mock.Mock
}

func (m *MockEmployeeRepository) GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*domain.Employee, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Employee), args.Error(1)
}

type MockPayrollEngine struct {
	mock.Mock
}

func (m *MockPayrollEngine) NetSalary(ctx context.Context, tenantID string, employeeID string) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, employeeID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockNetSalaryProvider returns a fixed figure, standing in for the provider
// chain in validator and service tests.
type MockNetSalaryProvider struct {
	mock.Mock
}

func (m *MockNetSalaryProvider) NetSalary(ctx context.Context, employee *domain.Employee) decimal.Decimal {
	args := m.Called(ctx, employee)
	return args.Get(0).(decimal.Decimal)
}
