package salary

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Statutory minimum net monthly wage per country, in local currency. Only
// countries listed here enforce the wage-floor rule; an unknown country has
// no floor.
var minimumWages = map[string]decimal.Decimal{
	"MA": decimal.NewFromInt(3046),    // Morocco (SMIG)
	"DZ": decimal.NewFromInt(20000),   // Algeria (SNMG)
	"TN": decimal.NewFromInt(459),     // Tunisia (SMIG, 48h regime)
	"SN": decimal.NewFromInt(64223),   // Senegal
	"CI": decimal.NewFromInt(75000),   // Ivory Coast
	"FR": decimal.NewFromInt(1426),    // France (net SMIC)
	"ES": decimal.NewFromInt(1134),    // Spain
	"PT": decimal.NewFromInt(870),     // Portugal
	"KE": decimal.NewFromInt(15201),   // Kenya (general labour, Nairobi)
	"NG": decimal.NewFromInt(70000),   // Nigeria
	"EG": decimal.NewFromInt(6000),    // Egypt
	"ID": decimal.NewFromInt(5067381), // Indonesia (DKI Jakarta)
}

// MinimumWage resolves the statutory minimum net wage for a country code.
// The second return is false when the country has no configured floor.
func MinimumWage(countryCode string) (decimal.Decimal, bool) {
	wage, ok := minimumWages[strings.ToUpper(countryCode)]
	return wage, ok
}
