package importer

import (
	"github.com/shopspring/decimal"
)

// ProgressTotal is the Total of every Progress value.
const ProgressTotal = 100

// Result is one value of an import run: any number of Progress values
// followed by exactly one Success or Failure.
type Result interface {
	isResult()
}

// Progress reports how far a run has come.
type Progress struct {
	Current int
	Total   int
	Message string
}

// Success is the terminal result of a completed run. ImportedCount and
// SkippedCount add up to the number of transactions parsed; MalformedCount
// counts records that could not be turned into transactions.
type Success struct {
	ImportedCount  int
	SkippedCount   int
	MalformedCount int
	TotalAmount    decimal.Decimal
	BankName       string
}

// Failure is the terminal result of an aborted run. Kind is one of the
// parsererror Kind* constants.
type Failure struct {
	Kind    string
	Message string
	Cause   error
}

func (Progress) isResult() {}
func (Success) isResult()  {}
func (Failure) isResult()  {}

func (f Failure) Error() string {
	if f.Cause != nil {
		return f.Message + ": " + f.Cause.Error()
	}
	return f.Message
}

func (f Failure) Unwrap() error {
	return f.Cause
}

// IsTerminal reports whether r ends a run.
func IsTerminal(r Result) bool {
	switch r.(type) {
	case Success, Failure:
		return true
	}
	return false
}

// ProgressSink receives the progress of a run.
type ProgressSink interface {
	Report(p Progress)
}

// ProgressFunc adapts a function to ProgressSink.
type ProgressFunc func(Progress)

// Report implements ProgressSink.
func (f ProgressFunc) Report(p Progress) {
	f(p)
}

type discardProgress struct{}

func (discardProgress) Report(Progress) {}
