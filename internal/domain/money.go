package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Money is an amount in minor currency units (kopecks for RUB).
// Integer amounts keep cart totals free of rounding drift.
type Money struct {
	Amount   int64
	Currency currency.Unit
}

func RUB(kopecks int64) Money {
	return Money{Amount: kopecks, Currency: currency.RUB}
}

// Add sums two amounts. The receiver's currency wins; a cart only ever
// holds items priced in the single catalog currency.
func (m Money) Add(other Money) Money {
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}
}

func (m Money) Mul(qty int) Money {
	return Money{Amount: m.Amount * int64(qty), Currency: m.Currency}
}

// Decimal returns the amount in major units, minor-unit exponent 2.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Amount, -2)
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Decimal().StringFixed(2), m.Currency)
}
