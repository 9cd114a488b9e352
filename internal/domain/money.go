package domain

import "github.com/shopspring/decimal"

// RoundMoney normalizes a monetary amount to exactly 2 decimal places.
// Every arithmetic mutation of a balance re-rounds through this to keep
// drift from accumulating across long operation sequences.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
