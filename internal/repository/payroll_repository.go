package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type payrollRepository struct {
	db *sqlx.DB
}

func NewPayrollRepository(db *sqlx.DB) PayrollRepository {
	return &payrollRepository{db: db}
}

// LatestNetSalary reads the most recent processed payslip. No rows is not an
// error here: the net-salary provider falls back to the base-salary
// approximation, and the validator rejects a zero result.
func (r *payrollRepository) LatestNetSalary(ctx context.Context, tenantID string, employeeID string) (decimal.Decimal, error) {
	query := `
		SELECT net_salary
		FROM payslips
		WHERE tenant_id = $1 AND employee_id = $2 AND status = 'processed'
		ORDER BY period_end DESC
		LIMIT 1
	`

	var net decimal.Decimal
	err := r.db.GetContext(ctx, &net, query, tenantID, employeeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}

	return net, nil
}
