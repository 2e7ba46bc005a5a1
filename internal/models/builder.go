package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionBuilder provides a fluent API for constructing transactions.
// The first error short-circuits every following call and is returned by
// Build.
type TransactionBuilder struct {
	tx        CanonicalTransaction
	amountSet bool
	err       error
}

// NewTransactionBuilder creates a builder defaulting to an uncategorized
// RUB expense.
func NewTransactionBuilder() *TransactionBuilder {
	return &TransactionBuilder{
		tx: CanonicalTransaction{
			Amount:    ZeroMoney(CurrencyRUB),
			IsExpense: true,
			Category:  CategoryUncategorized,
		},
	}
}

func (b *TransactionBuilder) WithID(id string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.ID = id
	return b
}

// WithDate sets the calendar date; the time of day is dropped.
func (b *TransactionBuilder) WithDate(date time.Time) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	if date.IsZero() {
		b.err = errors.New("date cannot be zero")
		return b
	}
	b.tx.Date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return b
}

// WithAmount stores the magnitude of amount in currency.
func (b *TransactionBuilder) WithAmount(amount decimal.Decimal, currency string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	if strings.TrimSpace(currency) == "" {
		currency = b.tx.Amount.Currency
	}
	b.tx.Amount = NewMoney(amount.Abs(), currency)
	b.amountSet = true
	return b
}

func (b *TransactionBuilder) AsExpense(expense bool) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.IsExpense = expense
	return b
}

func (b *TransactionBuilder) WithTitle(title string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.Title = strings.TrimSpace(title)
	return b
}

func (b *TransactionBuilder) WithCategory(category string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	if category = strings.TrimSpace(category); category != "" {
		b.tx.Category = category
	}
	return b
}

func (b *TransactionBuilder) WithNote(note string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.Note = strings.TrimSpace(note)
	return b
}

// WithSource sets the institution label and its display tag.
func (b *TransactionBuilder) WithSource(source, color string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.Source = source
	b.tx.SourceColor = color
	return b
}

// Build validates and returns the transaction. A transaction without a date
// or an amount is never produced.
func (b *TransactionBuilder) Build() (CanonicalTransaction, error) {
	if b.err != nil {
		return CanonicalTransaction{}, b.err
	}
	if b.tx.Date.IsZero() {
		return CanonicalTransaction{}, errors.New("transaction date is required")
	}
	if !b.amountSet {
		return CanonicalTransaction{}, errors.New("transaction amount is required")
	}
	if b.tx.ID == "" {
		b.tx.ID = uuid.NewString()
	}
	return b.tx, nil
}
