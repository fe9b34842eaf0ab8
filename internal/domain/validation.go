package domain

import "github.com/shopspring/decimal"

// Validation error codes. Validation failures are coded, field-attributed and
// accumulated so a caller can render every violated rule at once.
const (
	ValidationEmployeeNotFound     = "EMPLOYEE_NOT_FOUND"
	ValidationNoActiveSalary       = "NO_ACTIVE_SALARY"
	ValidationNoPolicy             = "NO_POLICY"
	ValidationInsufficientTenure   = "INSUFFICIENT_EMPLOYMENT"
	ValidationTooManyOutstanding   = "TOO_MANY_OUTSTANDING"
	ValidationTooManyRequests      = "TOO_MANY_REQUESTS_THIS_MONTH"
	ValidationAmountTooLow         = "AMOUNT_TOO_LOW"
	ValidationAmountTooHigh        = "AMOUNT_TOO_HIGH"
	ValidationInvalidPeriod        = "INVALID_REPAYMENT_PERIOD"
	ValidationMinimumWageViolation = "MINIMUM_WAGE_VIOLATION"
)

// ValidationError is one violated admission rule.
type ValidationError struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult is the complete verdict of the policy validator. It is
// returned whole: callers gate on Admissible and must not proceed past a
// blocked result.
type ValidationResult struct {
	Admissible        bool              `json:"admissible"`
	Errors            []ValidationError `json:"errors"`
	Warnings          []string          `json:"warnings"`
	MaxAllowedAmount  decimal.Decimal   `json:"max_allowed_amount"`
	NetSalary         decimal.Decimal   `json:"net_salary"`
	OutstandingCount  int               `json:"outstanding_count"`
	RequestsThisMonth int               `json:"requests_this_month"`
}

// AddError records a violated rule and marks the result inadmissible.
func (r *ValidationResult) AddError(code, field, message string) {
	r.Admissible = false
	r.Errors = append(r.Errors, ValidationError{Code: code, Field: field, Message: message})
}

// AddWarning records a non-blocking advisory.
func (r *ValidationResult) AddWarning(message string) {
	r.Warnings = append(r.Warnings, message)
}

// HasError reports whether a specific code was recorded.
func (r *ValidationResult) HasError(code string) bool {
	for _, e := range r.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}
