package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hrforge/advance-engine/internal/domain"
)

type employeeRepository struct {
	db *sqlx.DB
}

func NewEmployeeRepository(db *sqlx.DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*domain.Employee, error) {
	query := `
		SELECT id, tenant_id, employee_number, full_name, hire_date, base_salary, active
		FROM employees
		WHERE tenant_id = $1 AND id = $2
	`

	var employee domain.Employee
	err := r.db.GetContext(ctx, &employee, query, tenantID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &employee, nil
}
