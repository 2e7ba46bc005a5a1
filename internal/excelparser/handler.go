package excelparser

import (
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/models"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/registry"
)

// HandlerSpec describes the generic spreadsheet handler. It takes any
// workbook left by the institution handlers.
func HandlerSpec() registry.HandlerSpec {
	return registry.HandlerSpec{
		Name:     BankName,
		Formats:  []models.FileFormat{models.FormatSpreadsheet},
		Fallback: true,
		Probe:    IsWorkbook,
	}
}
