package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount parses a user entered amount. Accepts "12", "12.3", "12,34" and
// an optional currency symbol or thousands separators ("£1,234.50").
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "£€$ ")
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// A single comma with no dot is a decimal separator; otherwise commas group thousands.
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") && len(s)-strings.Index(s, ",") <= 3 {
		s = strings.Replace(s, ",", ".", 1)
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}

// SumAmounts adds float amounts exactly and returns the rounded float.
func SumAmounts(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	f, _ := total.Round(2).Float64()
	return f
}

// Percent returns part/whole as a whole percentage capped to [0, 100].
// A zero whole yields 0.
func Percent(part, whole float64) int {
	if !(whole > 0) || !(part > 0) {
		return 0
	}
	p := decimal.NewFromFloat(part).Div(decimal.NewFromFloat(whole)).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if p > 100 {
		return 100
	}
	return int(p)
}

// ValidCurrency reports whether code is a known ISO 4217 code.
func ValidCurrency(code string) bool {
	return code != "" && money.GetCurrency(code) != nil
}

// FormatMoney renders an amount in the given currency, e.g. "£1,234.50".
// Unknown currencies fall back to GBP.
func FormatMoney(amount float64, currency string) string {
	if !ValidCurrency(currency) {
		currency = DefaultCurrency
	}
	cur := money.GetCurrency(currency)
	minor := decimal.NewFromFloat(amount).Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}
