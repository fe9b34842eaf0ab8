package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/hrforge/advance-engine/internal/domain"
)

type policyRepository struct {
	db *sqlx.DB
}

func NewPolicyRepository(db *sqlx.DB) PolicyRepository {
	return &policyRepository{db: db}
}

func (r *policyRepository) GetActivePolicy(ctx context.Context, tenantID string) (*domain.AdvancePolicy, error) {
	query := `
		SELECT id, tenant_id, min_employment_months, max_outstanding_advances,
		       max_requests_per_month, min_amount, max_salary_percent,
		       max_absolute_amount, allowed_repayment_months, country_code,
		       active, created_at, updated_at
		FROM advance_policies
		WHERE tenant_id = $1 AND active = true
	`

	var policy domain.AdvancePolicy
	err := r.db.GetContext(ctx, &policy, query, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &policy, nil
}
