package utils_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/hrforge/advance-engine/pkg/utils"
)

func TestCeilDiv(t *testing.T) {
	tests := []struct {
		name     string
		amount   int64
		parts    int
		expected int64
	}{
		{"Exact division", 30000, 3, 10000},
		{"Remainder rounds up", 100000, 3, 33334},
		{"Single part", 100000, 1, 100000},
		{"Amount smaller than parts", 5, 12, 1},
		{"Zero amount", 0, 6, 0},
		{"Zero parts", 100000, 0, 0},
		{"Negative parts", 100000, -2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := utils.CeilDiv(decimal.NewFromInt(tt.amount), tt.parts)
			assert.True(t, decimal.NewFromInt(tt.expected).Equal(got),
				"expected %d, got %s", tt.expected, got)
		})
	}
}

func TestFirstOfNextMonth(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected time.Time
	}{
		{
			"Mid month",
			time.Date(2025, time.March, 15, 10, 30, 0, 0, time.UTC),
			time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			"First of month still moves forward",
			time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			"Last day of month",
			time.Date(2025, time.January, 31, 23, 59, 59, 0, time.UTC),
			time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			"December rolls into next year",
			time.Date(2025, time.December, 28, 0, 0, 0, 0, time.UTC),
			time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.expected.Equal(utils.FirstOfNextMonth(tt.input)))
		})
	}
}

func TestAddMonths(t *testing.T) {
	start := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC).Equal(utils.AddMonths(start, 2)))
	assert.True(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC).Equal(utils.AddMonths(start, 10)))
}

func TestWholeMonthsBetween(t *testing.T) {
	tests := []struct {
		name     string
		from     time.Time
		until    time.Time
		expected int
	}{
		{
			"Exactly one year",
			time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC),
			12,
		},
		{
			"Day not yet reached does not count the month",
			time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.April, 19, 0, 0, 0, 0, time.UTC),
			2,
		},
		{
			"Day reached counts the month",
			time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.April, 20, 0, 0, 0, 0, time.UTC),
			3,
		},
		{
			"Same day",
			time.Date(2025, time.May, 5, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.May, 5, 0, 0, 0, 0, time.UTC),
			0,
		},
		{
			"Until before from",
			time.Date(2025, time.May, 5, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC),
			0,
		},
		{
			"Across year boundary",
			time.Date(2024, time.November, 10, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC),
			3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, utils.WholeMonthsBetween(tt.from, tt.until))
		})
	}
}

func TestMinDecimal(t *testing.T) {
	a := decimal.NewFromInt(100)
	b := decimal.NewFromInt(200)

	assert.True(t, a.Equal(utils.MinDecimal(a, b)))
	assert.True(t, a.Equal(utils.MinDecimal(b, a)))
	assert.True(t, a.Equal(utils.MinDecimal(a, a)))
}

func TestDecimalFromString(t *testing.T) {
	d, err := utils.DecimalFromString("0.85")
	assert.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.85").Equal(d))

	_, err = utils.DecimalFromString("not-a-number")
	assert.Error(t, err)
}
