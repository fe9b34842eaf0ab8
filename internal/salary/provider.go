package salary

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/hrforge/advance-engine/internal/domain"
)

// PayrollEngine is the single function contract against the external payroll
// calculation engine: the employee's net salary for the current period.
type PayrollEngine interface {
	NetSalary(ctx context.Context, tenantID string, employeeID string) (decimal.Decimal, error)
}

// PayrollEngineFunc adapts a plain function to the PayrollEngine interface.
type PayrollEngineFunc func(ctx context.Context, tenantID string, employeeID string) (decimal.Decimal, error)

func (f PayrollEngineFunc) NetSalary(ctx context.Context, tenantID string, employeeID string) (decimal.Decimal, error) {
	return f(ctx, tenantID, employeeID)
}

// NetSalaryProvider resolves an employee's current net salary for admission
// decisions.
type NetSalaryProvider interface {
	NetSalary(ctx context.Context, employee *domain.Employee) decimal.Decimal
}

// Provider wraps the payroll engine with a deterministic fallback so the
// advance workflow never blocks on a payroll outage: when the engine fails or
// returns a non-positive figure, the provider approximates net salary as a
// fixed percentage of base salary. The approximation is a documented,
// intentional degradation; the percentage is configuration, not a constant.
type Provider struct {
	engine          PayrollEngine
	fallbackPercent decimal.Decimal
	log             *logrus.Logger
}

func NewProvider(engine PayrollEngine, fallbackPercent decimal.Decimal, log *logrus.Logger) *Provider {
	return &Provider{
		engine:          engine,
		fallbackPercent: fallbackPercent,
		log:             log,
	}
}

// NetSalary returns the engine's figure when available, otherwise the
// fallback approximation. A zero result means the employee has no usable
// salary at all; the validator turns that into a fatal admission error.
func (p *Provider) NetSalary(ctx context.Context, employee *domain.Employee) decimal.Decimal {
	if p.engine != nil {
		net, err := p.engine.NetSalary(ctx, employee.TenantID, employee.ID.String())
		if err == nil && net.IsPositive() {
			return net
		}
		if err != nil {
			p.log.WithFields(logrus.Fields{
				"tenant_id":   employee.TenantID,
				"employee_id": employee.ID,
			}).WithError(err).Warn("payroll engine unavailable, using fallback net salary")
		}
	}

	return employee.BaseSalary.Mul(p.fallbackPercent)
}
