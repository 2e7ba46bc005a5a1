// Package signresolver decides whether a statement amount is an expense or
// an income.
package signresolver

import "strings"

// DefaultIncomeKeywords bias an unsigned amount toward income.
var DefaultIncomeKeywords = []string{
	"пополнение",
	"перевод от",
	"возврат",
	"внесение наличных",
	"зачисление",
	"зарплата",
	"кэшбэк",
	"deposit",
	"refund",
	"salary",
	"cashback",
}

// Resolver applies the explicit sign first and the keyword heuristic second.
type Resolver struct {
	incomeKeywords []string
}

// New returns a Resolver using keywords, or DefaultIncomeKeywords when none
// are given. Keywords are matched case-insensitively as substrings.
func New(keywords ...string) *Resolver {
	if len(keywords) == 0 {
		keywords = DefaultIncomeKeywords
	}
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}
	return &Resolver{incomeKeywords: lowered}
}

// IsExpense reports whether the amount is an expense. sign is the explicit
// sign token adjacent to the number ("+", "-", "−" or ""); text is the bank
// category and/or description used when no sign is present.
func (r *Resolver) IsExpense(sign, text string) bool {
	switch strings.TrimSpace(sign) {
	case "+":
		return false
	case "-", "−":
		return true
	}
	return !r.IsIncomeText(text)
}

// IsIncomeText reports whether text carries one of the income keywords.
func (r *Resolver) IsIncomeText(text string) bool {
	lower := strings.ToLower(text)
	for _, k := range r.incomeKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
