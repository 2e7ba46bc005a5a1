// Package models holds the canonical data types shared by every importer.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CanonicalTransaction is the normalized record produced by every importer
// regardless of the source institution. Amount is always a magnitude; the
// direction is carried by IsExpense.
type CanonicalTransaction struct {
	ID          string
	Date        time.Time
	Title       string
	Amount      Money
	IsExpense   bool
	Category    string
	Note        string
	Source      string
	SourceColor string
}

// SignedAmount returns the amount negated for expenses.
func (t CanonicalTransaction) SignedAmount() decimal.Decimal {
	if t.IsExpense {
		return t.Amount.Amount.Neg()
	}
	return t.Amount.Amount
}

// WithCategory returns a copy of t with a different category.
func (t CanonicalTransaction) WithCategory(category string) CanonicalTransaction {
	t.Category = category
	return t
}
