package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Employee is a read-only projection of the payroll master-data store. The
// advance engine never mutates employee rows.
type Employee struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	TenantID       string          `json:"tenant_id" db:"tenant_id"`
	EmployeeNumber string          `json:"employee_number" db:"employee_number"`
	FullName       string          `json:"full_name" db:"full_name"`
	HireDate       time.Time       `json:"hire_date" db:"hire_date"`
	BaseSalary     decimal.Decimal `json:"base_salary" db:"base_salary"`
	Active         bool            `json:"active" db:"active"`
}
