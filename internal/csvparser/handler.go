package csvparser

import (
	"bytes"

	"github.com/davidbugayov/Financeanalyzer-sub008/internal/models"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/registry"
)

// HandlerSpec describes the generic CSV handler. Besides its filename
// keywords it takes any CSV whose first line carries a common delimiter.
func HandlerSpec() registry.HandlerSpec {
	return registry.HandlerSpec{
		Name:     BankName,
		Formats:  []models.FileFormat{models.FormatCSV},
		Keywords: []string{".csv", "export", "transactions"},
		Fallback: true,
		Probe:    HasDelimitedFirstLine,
	}
}

// HasDelimitedFirstLine reports whether the first line of head contains a
// comma or a semicolon.
func HasDelimitedFirstLine(head []byte) bool {
	first, _, _ := bytes.Cut(head, []byte("\n"))
	return bytes.ContainsAny(first, ",;")
}
