// Package parsererror defines the typed errors raised while detecting,
// dispatching and parsing bank statements.
package parsererror

import (
	"context"
	"errors"
	"fmt"
)

// Short user-facing messages, one per pipeline failure family.
const (
	MsgDetectionFailed = "unknown file format"
	MsgNoHandler       = "no suitable handler"
	MsgExtraction      = "extraction failed"
	MsgInvalidFormat   = "invalid format"
	MsgNoTransactions  = "no transactions found"
	MsgStatisticsFile  = "statistics export is not a statement"
	MsgCancelled       = "import cancelled"
	MsgUnexpected      = "unexpected error"
)

// Failure kinds reported by the import pipeline.
const (
	KindDetection      = "detection"
	KindDispatch       = "dispatch"
	KindExtraction     = "extraction"
	KindInvalidFormat  = "invalid_format"
	KindNoTransactions = "no_transactions"
	KindCancelled      = "cancelled"
	KindUnexpected     = "unexpected"
)

// ParseError represents a field that could not be parsed.
type ParseError struct {
	Parser string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v",
		e.Parser, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError represents an invalid input or configuration value.
type ValidationError struct {
	FilePath string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.FilePath, e.Reason)
}

// CategorizationError represents a categorization strategy failure.
type CategorizationError struct {
	Transaction string
	Strategy    string
	Err         error
}

func (e *CategorizationError) Error() string {
	return fmt.Sprintf("categorization failed for %s using %s: %v",
		e.Transaction, e.Strategy, e.Err)
}

func (e *CategorizationError) Unwrap() error {
	return e.Err
}

// DetectionError is returned when neither the name, the MIME type nor the
// content identify the file format.
type DetectionError struct {
	FilePath string
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf("%s: '%s'", MsgDetectionFailed, e.FilePath)
}

// DispatchError is returned when no registered handler claims a document.
type DispatchError struct {
	FilePath string
	Format   string
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("%s for '%s' (format %s)", MsgNoHandler, e.FilePath, e.Format)
}

// ExtractionError is returned when the raw text of a document is empty or
// could not be read.
type ExtractionError struct {
	FilePath string
	Err      error
}

func (e *ExtractionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s for '%s': document is empty", MsgExtraction, e.FilePath)
	}
	return fmt.Sprintf("%s for '%s': %v", MsgExtraction, e.FilePath, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// InvalidFormatError represents an input that does not look like a statement
// of the expected institution.
type InvalidFormatError struct {
	FilePath             string
	ExpectedFormat       string
	ActualContentSnippet string
	Msg                  string
}

func (e *InvalidFormatError) Error() string {
	if e.ActualContentSnippet != "" {
		return fmt.Sprintf("%s in file '%s': %s. Expected: %s. Content snippet: '%s'",
			MsgInvalidFormat, e.FilePath, e.Msg, e.ExpectedFormat, e.ActualContentSnippet)
	}
	return fmt.Sprintf("%s in file '%s': %s. Expected: %s",
		MsgInvalidFormat, e.FilePath, e.Msg, e.ExpectedFormat)
}

// NoTransactionsError is returned when parsing finished without a single
// record.
type NoTransactionsError struct {
	FilePath string
	Bank     string
}

func (e *NoTransactionsError) Error() string {
	return fmt.Sprintf("%s in '%s' (%s)", MsgNoTransactions, e.FilePath, e.Bank)
}

// StatisticsFileError is returned for spending-statistics exports that carry
// no transaction table.
type StatisticsFileError struct {
	FilePath string
	Bank     string
}

func (e *StatisticsFileError) Error() string {
	return fmt.Sprintf("%s: '%s' is a %s statistics report", MsgStatisticsFile, e.FilePath, e.Bank)
}

// PersistError wraps a sink failure for a single transaction.
type PersistError struct {
	TransactionID string
	Err           error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to persist transaction %s: %v", e.TransactionID, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// Kind classifies err into the pipeline failure families. Unknown errors map
// to "unexpected".
func Kind(err error) string {
	var (
		detErr   *DetectionError
		dispErr  *DispatchError
		extErr   *ExtractionError
		fmtErr   *InvalidFormatError
		statsErr *StatisticsFileError
		noTxErr  *NoTransactionsError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	case errors.As(err, &detErr):
		return KindDetection
	case errors.As(err, &dispErr):
		return KindDispatch
	case errors.As(err, &extErr):
		return KindExtraction
	case errors.As(err, &fmtErr), errors.As(err, &statsErr):
		return KindInvalidFormat
	case errors.As(err, &noTxErr):
		return KindNoTransactions
	default:
		return KindUnexpected
	}
}
