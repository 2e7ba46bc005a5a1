package ozonparser

import (
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/models"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/registry"
)

// HandlerSpec describes how Ozon Bank statements are recognized.
func HandlerSpec() registry.HandlerSpec {
	return registry.HandlerSpec{
		Name:             BankName,
		Formats:          []models.FileFormat{models.FormatPDF},
		Keywords:         []string{"ozon", "озон"},
		NegativeKeywords: []string{"sberbank", "сбербанк", "tinkoff", "тинькофф", "tbank", "тбанк", "alfa", "альфа"},
		GenericKeywords:  []string{"statement", "выписка", "операци"},
		Indicators:       bankIndicators,
		RejectIndicators: []string{"СБЕРБАНК", "SBERBANK", "Тинькофф", "ТБАНК", "TBANK"},
	}
}
