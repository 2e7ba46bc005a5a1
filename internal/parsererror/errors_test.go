package parsererror

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "parse error",
			err:      &ParseError{Parser: "Сбербанк (PDF)", Field: "amount", Value: "1,2,3", Err: errors.New("bad decimal")},
			expected: "Сбербанк (PDF): failed to parse amount='1,2,3': bad decimal",
		},
		{
			name:     "detection",
			err:      &DetectionError{FilePath: "notes.bin"},
			expected: "unknown file format: 'notes.bin'",
		},
		{
			name:     "dispatch",
			err:      &DispatchError{FilePath: "x.pdf", Format: "PDF"},
			expected: "no suitable handler for 'x.pdf' (format PDF)",
		},
		{
			name:     "empty extraction",
			err:      &ExtractionError{FilePath: "a.pdf"},
			expected: "extraction failed for 'a.pdf': document is empty",
		},
		{
			name:     "invalid format",
			err:      &InvalidFormatError{FilePath: "a.pdf", ExpectedFormat: "Сбербанк", Msg: "statement title not found"},
			expected: "invalid format in file 'a.pdf': statement title not found. Expected: Сбербанк",
		},
		{
			name:     "no transactions",
			err:      &NoTransactionsError{FilePath: "a.pdf", Bank: "Ozon"},
			expected: "no transactions found in 'a.pdf' (Ozon)",
		},
		{
			name:     "validation",
			err:      &ValidationError{FilePath: "config.yaml", Reason: "bad trigger"},
			expected: "validation failed for config.yaml: bad trigger",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := io.ErrUnexpectedEOF

	assert.ErrorIs(t, &ParseError{Err: cause}, cause)
	assert.ErrorIs(t, &ExtractionError{Err: cause}, cause)
	assert.ErrorIs(t, &PersistError{Err: cause}, cause)
	assert.ErrorIs(t, &CategorizationError{Err: cause}, cause)
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		kind string
	}{
		{nil, ""},
		{&DetectionError{}, "detection"},
		{&DispatchError{}, "dispatch"},
		{fmt.Errorf("wrapped: %w", &ExtractionError{}), "extraction"},
		{&InvalidFormatError{}, "invalid_format"},
		{&StatisticsFileError{}, "invalid_format"},
		{&NoTransactionsError{}, "no_transactions"},
		{errors.New("disk on fire"), "unexpected"},
		{fmt.Errorf("run: %w", context.Canceled), "cancelled"},
		{context.DeadlineExceeded, "cancelled"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.kind, Kind(tt.err), "%v", tt.err)
	}
}
