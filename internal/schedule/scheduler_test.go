package schedule

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSchedule(t *testing.T) {
	anchor := time.Date(2025, time.March, 17, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name             string
		amount           decimal.Decimal
		months           int
		expectedMonthly  decimal.Decimal
		expectedAmounts  []string
		expectedFirstDue time.Time
	}{
		{
			name:             "Rounding remainder absorbed by final installment",
			amount:           decimal.NewFromInt(100000),
			months:           3,
			expectedMonthly:  decimal.NewFromInt(33334),
			expectedAmounts:  []string{"33334", "33334", "33332"},
			expectedFirstDue: time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:             "Even split",
			amount:           decimal.NewFromInt(9000),
			months:           3,
			expectedMonthly:  decimal.NewFromInt(3000),
			expectedAmounts:  []string{"3000", "3000", "3000"},
			expectedFirstDue: time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:             "Single month carries everything",
			amount:           decimal.NewFromInt(25000),
			months:           1,
			expectedMonthly:  decimal.NewFromInt(25000),
			expectedAmounts:  []string{"25000"},
			expectedFirstDue: time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	scheduler := NewScheduler()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := scheduler.BuildSchedule(tt.amount, tt.months, anchor)
			require.NoError(t, err)

			assert.True(t, plan.MonthlyDeduction.Equal(tt.expectedMonthly),
				"monthly deduction %s, want %s", plan.MonthlyDeduction, tt.expectedMonthly)
			assert.True(t, plan.FirstDeductionMonth.Equal(tt.expectedFirstDue))
			require.Len(t, plan.Installments, tt.months)

			sum := decimal.Zero
			for i, inst := range plan.Installments {
				assert.Equal(t, i+1, inst.Number)
				assert.Equal(t, tt.expectedAmounts[i], inst.Amount.String())
				assert.True(t, inst.DueMonth.Equal(tt.expectedFirstDue.AddDate(0, i, 0)))
				assert.True(t, inst.Amount.LessThanOrEqual(plan.MonthlyDeduction))
				sum = sum.Add(inst.Amount)
			}
			assert.True(t, sum.Equal(tt.amount), "installments sum to %s, want %s", sum, tt.amount)
		})
	}
}

func TestBuildScheduleSumInvariant(t *testing.T) {
	scheduler := NewScheduler()
	anchor := time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)

	// The sum of planned amounts equals the amount exactly for every period,
	// with rounding drift never spread over non-final installments.
	amounts := []int64{1, 99, 1000, 12345, 100000, 999999, 5000000}
	for _, amount := range amounts {
		for months := 1; months <= 12; months++ {
			plan, err := scheduler.BuildSchedule(decimal.NewFromInt(amount), months, anchor)
			require.NoError(t, err)

			sum := decimal.Zero
			for _, inst := range plan.Installments {
				assert.False(t, inst.Amount.IsNegative(),
					"amount=%d months=%d: negative installment %s", amount, months, inst.Amount)
				assert.True(t, inst.Amount.LessThanOrEqual(plan.MonthlyDeduction))
				sum = sum.Add(inst.Amount)
			}

			assert.True(t, sum.Equal(decimal.NewFromInt(amount)),
				"amount=%d months=%d: sum %s", amount, months, sum)
		}
	}
}

func TestBuildScheduleDeterministic(t *testing.T) {
	scheduler := NewScheduler()
	anchor := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)

	first, err := scheduler.BuildSchedule(decimal.NewFromInt(70001), 6, anchor)
	require.NoError(t, err)
	second, err := scheduler.BuildSchedule(decimal.NewFromInt(70001), 6, anchor)
	require.NoError(t, err)

	require.Len(t, second.Installments, len(first.Installments))
	for i := range first.Installments {
		assert.True(t, first.Installments[i].Amount.Equal(second.Installments[i].Amount))
		assert.True(t, first.Installments[i].DueMonth.Equal(second.Installments[i].DueMonth))
	}
}

func TestBuildScheduleAnchorAtMonthBoundaries(t *testing.T) {
	scheduler := NewScheduler()

	// Any day of month M anchors the first deduction on the 1st of M+1.
	for _, day := range []int{1, 15, 31} {
		anchor := time.Date(2025, time.December, day, 23, 59, 0, 0, time.UTC)
		plan, err := scheduler.BuildSchedule(decimal.NewFromInt(1000), 2, anchor)
		require.NoError(t, err)
		assert.True(t, plan.FirstDeductionMonth.Equal(time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)))
	}
}

func TestBuildScheduleRejectsInvalidInput(t *testing.T) {
	scheduler := NewScheduler()

	_, err := scheduler.BuildSchedule(decimal.Zero, 3, time.Now())
	assert.Error(t, err)

	_, err = scheduler.BuildSchedule(decimal.NewFromInt(-100), 3, time.Now())
	assert.Error(t, err)

	_, err = scheduler.BuildSchedule(decimal.NewFromInt(100), 0, time.Now())
	assert.Error(t, err)
}

func TestRecalculate(t *testing.T) {
	scheduler := NewScheduler()

	// Early termination: 66666 left over 2 months, next deduction due July.
	nextDue := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	plan, err := scheduler.Recalculate(decimal.NewFromInt(66666), 2, nextDue)
	require.NoError(t, err)

	require.Len(t, plan.Installments, 2)
	assert.True(t, plan.FirstDeductionMonth.Equal(nextDue))
	assert.Equal(t, "33333", plan.Installments[0].Amount.String())
	assert.Equal(t, "33333", plan.Installments[1].Amount.String())
}

func TestValidateSchedule(t *testing.T) {
	scheduler := NewScheduler()
	anchor := time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC)

	plan, err := scheduler.BuildSchedule(decimal.NewFromInt(100000), 3, anchor)
	require.NoError(t, err)

	t.Run("Valid schedule passes", func(t *testing.T) {
		assert.NoError(t, ValidateSchedule(plan.Installments, decimal.NewFromInt(100000), 3))
	})

	t.Run("Wrong count", func(t *testing.T) {
		err := ValidateSchedule(plan.Installments, decimal.NewFromInt(100000), 4)
		assert.ErrorContains(t, err, "want 4")
	})

	t.Run("Sum mismatch", func(t *testing.T) {
		err := ValidateSchedule(plan.Installments, decimal.NewFromInt(100001), 3)
		assert.ErrorContains(t, err, "sum")
	})

	t.Run("Gap in numbering", func(t *testing.T) {
		broken := []Installment{plan.Installments[0], plan.Installments[2]}
		err := ValidateSchedule(broken, decimal.NewFromInt(66666), 2)
		assert.ErrorContains(t, err, "number")
	})

	t.Run("Non-consecutive due months", func(t *testing.T) {
		broken := make([]Installment, len(plan.Installments))
		copy(broken, plan.Installments)
		broken[2].DueMonth = broken[2].DueMonth.AddDate(0, 1, 0)
		err := ValidateSchedule(broken, decimal.NewFromInt(100000), 3)
		assert.ErrorContains(t, err, "due")
	})
}
