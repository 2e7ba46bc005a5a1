package importer

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// ReaderExtractor returns the content of a plain text document as is.
type ReaderExtractor struct{}

func (ReaderExtractor) Extract(ctx context.Context, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("document is not valid UTF-8")
	}
	return strings.TrimPrefix(string(data), "\uFEFF"), nil
}

// ExtractorFunc adapts a function to TextExtractor.
type ExtractorFunc func(ctx context.Context, r io.Reader) (string, error)

func (f ExtractorFunc) Extract(ctx context.Context, r io.Reader) (string, error) {
	return f(ctx, r)
}
