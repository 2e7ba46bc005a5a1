// Package alfabankparser reads Alfa-Bank statements exported to Excel.
//
// The export starts with a few title rows followed by a header row naming
// the columns. The header row is probed to map the date, amount,
// description and category columns; when it cannot be found the fixed
// layout below is used.
package alfabankparser

import (
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/dateutils"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/excelparser"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/logging"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/models"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/parser"
)

const (
	BankName    = "Альфа-Банк"
	SourceName  = "Альфа"
	SourceColor = "#EF3124"
)

// Config returns the Alfa-Bank spreadsheet layout.
func Config() excelparser.Config {
	return excelparser.Config{
		BankName:    BankName,
		SourceName:  SourceName,
		SourceColor: SourceColor,
		SheetIndex:  0,
		HeaderRows:  2,
		ProbeHeader: true,
		Columns: excelparser.Columns{
			Date:        0,
			Description: 3,
			Amount:      excelparser.NoColumn,
			Currency:    excelparser.NoColumn,
			Category:    4,
			Note:        excelparser.NoColumn,
			IsExpense:   excelparser.NoColumn,
		},
		DateLayouts: []string{
			dateutils.DateLayoutRussian,
			dateutils.DateLayoutRussianFull,
			dateutils.DateLayoutISO,
			dateutils.DateLayoutUS,
		},
		DecimalSeparator: ',',
		StripSymbols:     []string{"₽", "руб", "RUB"},
		DefaultCurrency:  models.CurrencyRUB,
		MinValues:        2,
	}
}

// NewParser creates an Alfa-Bank spreadsheet parser. The result also
// provides the matching SheetExtractor through Extractor.
func NewParser(detector parser.CategoryDetector, logger logging.Logger) *excelparser.Parser {
	return excelparser.NewParser(Config(), detector, logger)
}
