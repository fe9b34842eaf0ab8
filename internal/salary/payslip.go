package salary

import (
	"context"

	"github.com/shopspring/decimal"
)

// PayslipSource reads the net salary from the most recent processed payroll
// record. Implemented by the payroll repository.
type PayslipSource interface {
	LatestNetSalary(ctx context.Context, tenantID string, employeeID string) (decimal.Decimal, error)
}

// PayslipEngine is a PayrollEngine backed by persisted payslips. It is the
// default engine when the platform's payroll calculator is not reachable
// in-process.
type PayslipEngine struct {
	source PayslipSource
}

func NewPayslipEngine(source PayslipSource) *PayslipEngine {
	return &PayslipEngine{source: source}
}

func (e *PayslipEngine) NetSalary(ctx context.Context, tenantID string, employeeID string) (decimal.Decimal, error) {
	return e.source.LatestNetSalary(ctx, tenantID, employeeID)
}
