package signresolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolver_IsExpense(t *testing.T) {
	r := New()

	tests := []struct {
		name     string
		sign     string
		text     string
		expected bool
	}{
		{"explicit plus wins over expense text", "+", "Оплата в магазине", false},
		{"explicit minus wins over income text", "-", "Пополнение", true},
		{"typographic minus", "−", "", true},
		{"income keyword without sign", "", "Пополнение. Система быстрых платежей", false},
		{"transfer from keyword", "", "ПЕРЕВОД ОТ Иван И.", false},
		{"plain purchase defaults to expense", "", "Супермаркеты", true},
		{"empty text defaults to expense", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, r.IsExpense(tt.sign, tt.text))
		})
	}
}

func TestResolver_CustomKeywords(t *testing.T) {
	r := New("Внесение наличных", " перевод ", "")

	assert.False(t, r.IsExpense("", "Перевод с карты"))
	assert.False(t, r.IsExpense("", "ВНЕСЕНИЕ НАЛИЧНЫХ"))
	assert.True(t, r.IsExpense("", "Пополнение"))
}

func TestResolver_ExplicitSignOverridesKeywords(t *testing.T) {
	r := New()
	assert.False(t, r.IsExpense("+", "Оплата Пополнение"))
}
