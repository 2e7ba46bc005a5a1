package sberbankparser

import (
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/models"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/registry"
)

// HandlerSpec describes how Sberbank statements are recognized. Names about
// account movements ("движени", "справка") are left to the Ozon and T-Bank
// handlers.
func HandlerSpec() registry.HandlerSpec {
	return registry.HandlerSpec{
		Name:             BankName,
		Formats:          []models.FileFormat{models.FormatPDF},
		Keywords:         []string{"sberbank", "сбербанк", "сбер", "sber"},
		NegativeKeywords: []string{"tinkoff", "тинькофф", "tbank", "тбанк", "т-банк", "ozon", "озон", "alfa", "альфа", "движени", "справка"},
		GenericKeywords:  []string{"statement", "выписка", "export", "операци"},
		Indicators:       []string{"СБЕРБАНК", "ПАО Сбербанк", "SBERBANK", "www.sberbank.ru"},
		RejectIndicators: []string{"Тинькофф", "ТБАНК", "TBANK", "OZON", "Озон Банк", "Альфа-Банк", "ALFA-BANK"},
	}
}
