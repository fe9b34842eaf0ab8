package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// CeilDiv divides amount by parts and rounds up to the next whole currency
// unit, so every non-final installment is an equal, slightly overestimated
// share. The final installment absorbs the difference.
func CeilDiv(amount decimal.Decimal, parts int) decimal.Decimal {
	if parts <= 0 {
		return decimal.Zero
	}
	return amount.Div(decimal.NewFromInt(int64(parts))).Ceil()
}

// FirstOfMonth truncates a date to the first day of its calendar month.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// FirstOfNextMonth returns the first day of the month after t. Disbursement
// on any day of month M yields a first deduction on the 1st of M+1.
func FirstOfNextMonth(t time.Time) time.Time {
	return FirstOfMonth(t).AddDate(0, 1, 0)
}

// AddMonths shifts a first-of-month date by n calendar months.
func AddMonths(t time.Time, n int) time.Time {
	return t.AddDate(0, n, 0)
}

// WholeMonthsBetween returns the number of complete calendar months elapsed
// between from and until. Returns 0 when until precedes from.
func WholeMonthsBetween(from, until time.Time) int {
	if until.Before(from) {
		return 0
	}
	months := (until.Year()-from.Year())*12 + int(until.Month()) - int(from.Month())
	if until.Day() < from.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// DecimalFromString converts string to decimal.Decimal
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// MinDecimal returns the smaller of a and b.
func MinDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
