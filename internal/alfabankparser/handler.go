package alfabankparser

import (
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/excelparser"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/models"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/registry"
)

// SniffBytes lets the content sniff see a whole small workbook, since the
// cells of an .xlsx file are compressed.
const SniffBytes = 1 << 20

// HandlerSpec describes how Alfa-Bank spreadsheets are recognized.
func HandlerSpec() registry.HandlerSpec {
	return registry.HandlerSpec{
		Name:             BankName,
		Formats:          []models.FileFormat{models.FormatSpreadsheet},
		Keywords:         []string{"alfabank", "альфабанк", "альфа-банк", "alfa"},
		NegativeKeywords: []string{"sberbank", "сбербанк", "сбер", "sber", "тинькофф", "tinkoff", "ozon", "озон"},
		GenericKeywords:  []string{"statement", "выписка", "операци", "движени", "excel", "xlsx", "xls"},
		Indicators:       []string{"АЛЬФА-БАНК", "ALFA-BANK", "Альфа-Банк", "Альфа", "Alfa"},
		RejectIndicators: []string{"СБЕРБАНК", "SBERBANK", "Тинькофф", "ТИНЬКОФФ", "OZON", "ОЗОН"},
		Preview:          excelparser.PreviewText,
		SniffBytes:       SniffBytes,
	}
}
