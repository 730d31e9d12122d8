package clean

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	dotGroupedRe   = regexp.MustCompile(`^-?\d{1,3}(\.\d{3})+$`)
	commaGroupedRe = regexp.MustCompile(`^-?\d{1,3}(,\d{3}){2,}$`)
	amountReplacer = strings.NewReplacer("$", "", "CLP", "", "EUR", "", " ", "", "\u00a0", "")
)

// ParseAmount parses a numeric cell. It accepts plain numbers ("45000",
// "1234.5"), European and Chilean formats ("1.234,56", "45.000") and
// US grouping ("1,234.56", "1,234,567"). A lone comma is a decimal
// separator ("12,5"). Currency symbols and spaces are ignored.
func ParseAmount(s string) (decimal.Decimal, bool) {
	clean := amountReplacer.Replace(strings.TrimSpace(s))
	if clean == "" {
		return decimal.Zero, false
	}

	lastDot := strings.LastIndexByte(clean, '.')
	lastComma := strings.LastIndexByte(clean, ',')

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			clean = strings.ReplaceAll(clean, ".", "")
			clean = strings.ReplaceAll(clean, ",", ".")
		} else {
			clean = strings.ReplaceAll(clean, ",", "")
		}
	case commaGroupedRe.MatchString(clean):
		clean = strings.ReplaceAll(clean, ",", "")
	case lastComma >= 0:
		clean = strings.ReplaceAll(clean, ",", ".")
	case dotGroupedRe.MatchString(clean):
		clean = strings.ReplaceAll(clean, ".", "")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, false
	}

	return d, true
}

// ParseAmountOrZero returns zero for unparseable cells.
func ParseAmountOrZero(s string) decimal.Decimal {
	d, _ := ParseAmount(s)
	return d
}

// ToCents converts an amount to non-negative cents.
func ToCents(d decimal.Decimal) int64 {
	return d.Abs().Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
