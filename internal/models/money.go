package models

import (
	"fmt"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is an amount with its ISO 4217 currency code.
type Money struct {
	Amount   decimal.Decimal `json:"amount" yaml:"amount"`
	Currency string          `json:"currency" yaml:"currency"`
}

// NewMoney creates a Money value; the currency code is upper-cased.
func NewMoney(amount decimal.Decimal, currency string) Money {
	return Money{
		Amount:   amount,
		Currency: strings.ToUpper(strings.TrimSpace(currency)),
	}
}

// ZeroMoney returns a zero amount in currency.
func ZeroMoney(currency string) Money {
	return NewMoney(decimal.Zero, currency)
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

func (m Money) Abs() Money {
	return Money{Amount: m.Amount.Abs(), Currency: m.Currency}
}

func (m Money) Neg() Money {
	return Money{Amount: m.Amount.Neg(), Currency: m.Currency}
}

// Add sums two amounts of the same currency.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("cannot add %s to %s", other.Currency, m.Currency)
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

// String renders the amount with two decimals and the currency code.
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.StringFixed(2), m.Currency)
}

// Display renders the amount with the currency's own symbol and separators,
// e.g. "1 500,00 ₽". Unknown codes fall back to String.
func (m Money) Display() string {
	if !IsKnownCurrency(m.Currency) {
		return m.String()
	}
	cur := gomoney.GetCurrency(m.Currency)
	minor := m.Amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return gomoney.New(minor, m.Currency).Display()
}

// IsKnownCurrency reports whether code is an ISO 4217 currency.
func IsKnownCurrency(code string) bool {
	if code == "" {
		return false
	}
	return gomoney.GetCurrency(strings.ToUpper(code)) != nil
}
