package pdfparser

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/davidbugayov/Financeanalyzer-sub008/internal/logging"
)

// TextExtractor adapts a PDFExtractor to streamed documents by spooling
// them to a temporary file first.
type TextExtractor struct {
	extractor PDFExtractor
	logger    logging.Logger
}

// NewTextExtractor wraps extractor.
func NewTextExtractor(extractor PDFExtractor, logger logging.Logger) *TextExtractor {
	return &TextExtractor{extractor: extractor, logger: logging.OrDefault(logger)}
}

// Extract returns the text of the PDF read from r.
func (t *TextExtractor) Extract(ctx context.Context, r io.Reader) (string, error) {
	tempFile, err := os.CreateTemp("", "statement-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary PDF file: %w", err)
	}
	defer func() {
		if err := os.Remove(tempFile.Name()); err != nil {
			t.logger.WithError(err).Warn("Failed to remove temporary file",
				logging.Field{Key: logging.FieldFile, Value: tempFile.Name()})
		}
	}()

	if _, err := io.Copy(tempFile, r); err != nil {
		_ = tempFile.Close()
		return "", fmt.Errorf("failed to write temporary PDF file: %w", err)
	}
	// pdftotext must see the whole file.
	if err := tempFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close temporary PDF file: %w", err)
	}

	text, err := t.extractor.ExtractText(ctx, tempFile.Name())
	if err != nil {
		return "", err
	}
	t.logger.Debug("Extracted PDF text",
		logging.Field{Key: logging.FieldFile, Value: tempFile.Name()},
		logging.Field{Key: "length", Value: len(text)})
	return text, nil
}
