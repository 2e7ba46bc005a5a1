package tbankparser

import (
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/models"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/registry"
)

// HandlerSpec describes how T-Bank statements are recognized. The handler
// is registered last and takes every PDF the other institutions left,
// including account movement certificates ("справка о движении").
func HandlerSpec() registry.HandlerSpec {
	return registry.HandlerSpec{
		Name:             BankName,
		Formats:          []models.FileFormat{models.FormatPDF},
		Keywords:         []string{"tinkoff", "тинькофф", "tbank", "т-банк", "тбанк", "движени", "справка"},
		NegativeKeywords: []string{"sberbank", "сбербанк", "ozon", "озон", "alfa", "альфа"},
		GenericKeywords:  []string{"statement", "выписка", "операци"},
		Indicators:       indicators,
		RejectIndicators: []string{"СБЕРБАНК", "SBERBANK", "OZON", "Озон Банк"},
		Fallback:         true,
	}
}
