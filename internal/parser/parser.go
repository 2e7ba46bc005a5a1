// Package parser defines the capabilities a bank statement strategy exposes to
// the import pipeline.
//
// Every strategy is Named, validates a preview of the document and skips its
// headers. Institutions whose transactions fit on one line implement
// LineParser; institutions whose transactions span several lines implement
// RecordAccumulator and let the record package rebuild them.
package parser

import (
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/models"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/record"
)

// Named exposes the human-readable institution name of a strategy.
type Named interface {
	BankName() string
}

// FormatValidator checks that a document belongs to the institution. preview
// holds the first lines of the document. A nil error accepts the document.
type FormatValidator interface {
	ValidateFormat(preview []string) error
}

// HeaderSkipper advances the cursor to the first transaction line.
type HeaderSkipper interface {
	SkipHeaders(c *Cursor)
}

// PreviewSizer overrides the number of lines handed to ValidateFormat.
type PreviewSizer interface {
	PreviewLines() int
}

// LineParser parses institutions with one transaction per line. ok is false
// for lines that carry no transaction; a non-nil error marks a malformed
// transaction line.
type LineParser interface {
	ParseLine(line string) (tx models.CanonicalTransaction, ok bool, err error)
}

// RecordAccumulator parses institutions whose transactions span several
// lines.
type RecordAccumulator interface {
	// Classify turns one raw line into a record.Line.
	Classify(line string) record.Line

	// Finalize converts a finished record into a transaction.
	Finalize(rec record.Partial) (models.CanonicalTransaction, error)

	// Trigger reports when a record is finished.
	Trigger() record.Trigger
}

// Strategy is the part every institution implements.
type Strategy interface {
	Named
	FormatValidator
	HeaderSkipper
}

// CategoryDetector maps a bank category and a description to a canonical
// category name.
type CategoryDetector interface {
	Detect(bankCategory, description string) string
}
