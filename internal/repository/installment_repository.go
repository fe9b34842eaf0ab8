package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/hrforge/advance-engine/internal/domain"
)

type installmentRepository struct {
	db *sqlx.DB
}

func NewInstallmentRepository(db *sqlx.DB) InstallmentRepository {
	return &installmentRepository{db: db}
}

const installmentColumns = `
	id, advance_id, tenant_id, number, due_month, amount, status,
	paid_amount, paid_date, payroll_run_id, created_at, updated_at
`

func (r *installmentRepository) GetByAdvance(ctx context.Context, tenantID string, advanceID uuid.UUID) ([]*domain.RepaymentInstallment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM repayment_installments
		WHERE tenant_id = $1 AND advance_id = $2
		ORDER BY number
	`

	var installments []*domain.RepaymentInstallment
	if err := r.db.SelectContext(ctx, &installments, query, tenantID, advanceID); err != nil {
		return nil, err
	}

	return installments, nil
}

func (r *installmentRepository) GetByNumber(ctx context.Context, tenantID string, advanceID uuid.UUID, number int) (*domain.RepaymentInstallment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM repayment_installments
		WHERE tenant_id = $1 AND advance_id = $2 AND number = $3
	`

	var installment domain.RepaymentInstallment
	if err := r.db.GetContext(ctx, &installment, query, tenantID, advanceID, number); err != nil {
		return nil, err
	}

	return &installment, nil
}

// MarkPaid requires the installment to still be pending; the guard is what
// keeps two payroll reports for the same installment from both succeeding.
func (r *installmentRepository) MarkPaid(ctx context.Context, tenantID string, advanceID uuid.UUID, number int, actualAmount decimal.Decimal, paidDate time.Time, payrollRunID string) (bool, error) {
	query := `
		UPDATE repayment_installments
		SET status = 'paid',
		    paid_amount = $4,
		    paid_date = $5,
		    payroll_run_id = $6,
		    updated_at = $7
		WHERE tenant_id = $1 AND advance_id = $2 AND number = $3 AND status = 'pending'
	`

	res, err := r.db.ExecContext(ctx, query, tenantID, advanceID, number, actualAmount, paidDate, payrollRunID, time.Now())
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}

func (r *installmentRepository) ListOverduePending(ctx context.Context, asOf time.Time) ([]*domain.RepaymentInstallment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM repayment_installments
		WHERE status = 'pending' AND due_month < $1
		ORDER BY tenant_id, advance_id, number
	`

	var installments []*domain.RepaymentInstallment
	if err := r.db.SelectContext(ctx, &installments, query, asOf); err != nil {
		return nil, err
	}

	return installments, nil
}
