package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hrforge/advance-engine/internal/domain"
)

type advanceRepository struct {
	db *sqlx.DB
}

func NewAdvanceRepository(db *sqlx.DB) AdvanceRepository {
	return &advanceRepository{db: db}
}

const advanceColumns = `
	id, tenant_id, employee_id, employee_number, employee_name, net_salary,
	requested_amount, repayment_months, reason, notes, status,
	approved_amount, monthly_deduction, remaining_balance, total_repaid,
	disbursement_date, payroll_run_id, first_deduction_month,
	approved_by, approved_at, rejected_by, rejected_at, rejection_reason,
	created_at, updated_at
`

func (r *advanceRepository) Create(ctx context.Context, advance *domain.SalaryAdvance, maxOutstanding int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Re-check the outstanding ceiling under row locks on the employee's
	// advances so two concurrent creates cannot both slip under it.
	countQuery := `
		SELECT count(*) FROM (
			SELECT id FROM salary_advances
			WHERE tenant_id = $1 AND employee_id = $2 AND status IN ('disbursed', 'active')
			FOR UPDATE
		) locked
	`
	var outstanding int
	if err = tx.GetContext(ctx, &outstanding, countQuery, advance.TenantID, advance.EmployeeID); err != nil {
		return err
	}
	if outstanding >= maxOutstanding {
		return ErrOutstandingLimit
	}

	insertQuery := `
		INSERT INTO salary_advances (` + advanceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		        $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
	`
	_, err = tx.ExecContext(ctx, insertQuery,
		advance.ID,
		advance.TenantID,
		advance.EmployeeID,
		advance.EmployeeNumber,
		advance.EmployeeName,
		advance.NetSalary,
		advance.RequestedAmount,
		advance.RepaymentMonths,
		advance.Reason,
		advance.Notes,
		advance.Status,
		advance.ApprovedAmount,
		advance.MonthlyDeduction,
		advance.RemainingBalance,
		advance.TotalRepaid,
		advance.DisbursementDate,
		advance.PayrollRunID,
		advance.FirstDeductionMonth,
		advance.ApprovedBy,
		advance.ApprovedAt,
		advance.RejectedBy,
		advance.RejectedAt,
		advance.RejectionReason,
		advance.CreatedAt,
		advance.UpdatedAt,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *advanceRepository) GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*domain.SalaryAdvance, error) {
	query := `
		SELECT ` + advanceColumns + `
		FROM salary_advances
		WHERE tenant_id = $1 AND id = $2
	`

	var advance domain.SalaryAdvance
	err := r.db.GetContext(ctx, &advance, query, tenantID, id)
	if err != nil {
		return nil, err
	}

	return &advance, nil
}

func (r *advanceRepository) List(ctx context.Context, tenantID string, filter domain.ListFilter) ([]*domain.SalaryAdvance, error) {
	query := `
		SELECT ` + advanceColumns + `
		FROM salary_advances
		WHERE tenant_id = $1
	`
	args := []interface{}{tenantID}

	if filter.EmployeeID != nil {
		args = append(args, *filter.EmployeeID)
		query += ` AND employee_id = $` + strconv.Itoa(len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += ` AND created_at >= $` + strconv.Itoa(len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += ` AND created_at < $` + strconv.Itoa(len(args))
	}

	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	var advances []*domain.SalaryAdvance
	if err := r.db.SelectContext(ctx, &advances, query, args...); err != nil {
		return nil, err
	}

	return advances, nil
}

func (r *advanceRepository) UpdateIfStatus(ctx context.Context, advance *domain.SalaryAdvance, expectedStatus string) (bool, error) {
	query := `
		UPDATE salary_advances
		SET status = $3,
		    approved_amount = $4,
		    monthly_deduction = $5,
		    remaining_balance = $6,
		    total_repaid = $7,
		    disbursement_date = $8,
		    payroll_run_id = $9,
		    first_deduction_month = $10,
		    approved_by = $11,
		    approved_at = $12,
		    rejected_by = $13,
		    rejected_at = $14,
		    rejection_reason = $15,
		    updated_at = $16
		WHERE tenant_id = $1 AND id = $2 AND status = $17
	`

	res, err := r.db.ExecContext(ctx, query,
		advance.TenantID,
		advance.ID,
		advance.Status,
		advance.ApprovedAmount,
		advance.MonthlyDeduction,
		advance.RemainingBalance,
		advance.TotalRepaid,
		advance.DisbursementDate,
		advance.PayrollRunID,
		advance.FirstDeductionMonth,
		advance.ApprovedBy,
		advance.ApprovedAt,
		advance.RejectedBy,
		advance.RejectedAt,
		advance.RejectionReason,
		time.Now(),
		expectedStatus,
	)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}

func (r *advanceRepository) DisburseWithInstallments(ctx context.Context, advance *domain.SalaryAdvance, installments []*domain.RepaymentInstallment) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	updateQuery := `
		UPDATE salary_advances
		SET status = $3,
		    disbursement_date = $4,
		    payroll_run_id = $5,
		    first_deduction_month = $6,
		    updated_at = $7
		WHERE tenant_id = $1 AND id = $2 AND status = $8
	`
	res, err := tx.ExecContext(ctx, updateQuery,
		advance.TenantID,
		advance.ID,
		advance.Status,
		advance.DisbursementDate,
		advance.PayrollRunID,
		advance.FirstDeductionMonth,
		time.Now(),
		domain.AdvanceStatusApproved,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected != 1 {
		return false, nil
	}

	insertQuery := `
		INSERT INTO repayment_installments
			(id, advance_id, tenant_id, number, due_month, amount, status, paid_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	for _, inst := range installments {
		_, err = tx.ExecContext(ctx, insertQuery,
			inst.ID,
			inst.AdvanceID,
			inst.TenantID,
			inst.Number,
			inst.DueMonth,
			inst.Amount,
			inst.Status,
			inst.PaidAmount,
			inst.CreatedAt,
			inst.UpdatedAt,
		)
		if err != nil {
			return false, err
		}
	}

	if err = tx.Commit(); err != nil {
		return false, err
	}

	return true, nil
}

func (r *advanceRepository) CountOutstanding(ctx context.Context, tenantID string, employeeID string) (int, error) {
	query := `
		SELECT count(*)
		FROM salary_advances
		WHERE tenant_id = $1 AND employee_id = $2 AND status IN ('disbursed', 'active')
	`

	var count int
	if err := r.db.GetContext(ctx, &count, query, tenantID, employeeID); err != nil {
		return 0, err
	}

	return count, nil
}

func (r *advanceRepository) CountRequestsSince(ctx context.Context, tenantID string, employeeID string, since time.Time) (int, error) {
	query := `
		SELECT count(*)
		FROM salary_advances
		WHERE tenant_id = $1 AND employee_id = $2 AND created_at >= $3
	`

	var count int
	if err := r.db.GetContext(ctx, &count, query, tenantID, employeeID, since); err != nil {
		return 0, err
	}

	return count, nil
}

func (r *advanceRepository) GetStatistics(ctx context.Context, tenantID string) (*domain.AdvanceStatistics, error) {
	query := `
		SELECT
			$1::text AS tenant_id,
			count(*) AS total_requests,
			count(*) FILTER (WHERE status = 'pending') AS pending_count,
			count(*) FILTER (WHERE status IN ('disbursed', 'active')) AS outstanding_count,
			count(*) FILTER (WHERE status = 'completed') AS completed_count,
			count(*) FILTER (WHERE status = 'rejected') AS rejected_count,
			coalesce(sum(approved_amount) FILTER (WHERE status IN ('disbursed', 'active', 'completed')), 0) AS total_disbursed,
			coalesce(sum(total_repaid) FILTER (WHERE status IN ('disbursed', 'active', 'completed')), 0) AS total_repaid,
			coalesce(sum(remaining_balance) FILTER (WHERE status IN ('disbursed', 'active')), 0) AS total_outstanding
		FROM salary_advances
		WHERE tenant_id = $1
	`

	var stats domain.AdvanceStatistics
	err := r.db.GetContext(ctx, &stats, query, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.AdvanceStatistics{TenantID: tenantID}, nil
		}
		return nil, err
	}

	return &stats, nil
}
