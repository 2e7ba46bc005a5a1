// Package pdfparser turns PDF statements into plain text with the poppler
// pdftotext tool.
package pdfparser

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Default pdftotext invocation.
const (
	DefaultCommand = "pdftotext"
	DefaultMode    = "raw"
)

// PDFExtractor defines the interface for extracting text from PDF files.
// This interface allows for dependency injection and makes the PDF parser testable
// by providing different implementations for production and testing.
type PDFExtractor interface {
	// ExtractText extracts text content from a PDF file at the given path.
	ExtractText(ctx context.Context, pdfPath string) (string, error)
}

// RealPDFExtractor runs pdftotext and captures its standard output.
type RealPDFExtractor struct {
	Command string
	// Mode is the pdftotext layout flag without the dash: "raw" or "layout".
	Mode string
}

// NewRealPDFExtractor creates a RealPDFExtractor. Empty values use the
// defaults.
func NewRealPDFExtractor(command, mode string) *RealPDFExtractor {
	if command == "" {
		command = DefaultCommand
	}
	if mode == "" {
		mode = DefaultMode
	}
	return &RealPDFExtractor{Command: command, Mode: mode}
}

// ExtractText extracts text from a PDF file using the pdftotext command.
func (e *RealPDFExtractor) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	if _, err := os.Stat(pdfPath); err != nil {
		return "", fmt.Errorf("cannot access PDF file: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.Command, "-"+e.Mode, "-enc", "UTF-8", pdfPath, "-")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("error running %s: %w: %s", e.Command, err, msg)
		}
		return "", fmt.Errorf("error running %s: %w", e.Command, err)
	}
	return stdout.String(), nil
}

// MockPDFExtractor implements PDFExtractor for testing purposes.
// It returns predefined mock data instead of actually extracting from PDF files.
type MockPDFExtractor struct {
	MockText string
	MockErr  error

	// Paths records every path passed to ExtractText.
	Paths []string
}

// NewMockPDFExtractor creates a new MockPDFExtractor with the given mock data.
func NewMockPDFExtractor(mockText string, mockErr error) *MockPDFExtractor {
	return &MockPDFExtractor{
		MockText: mockText,
		MockErr:  mockErr,
	}
}

// ExtractText returns the predefined mock text or error.
func (e *MockPDFExtractor) ExtractText(_ context.Context, pdfPath string) (string, error) {
	e.Paths = append(e.Paths, pdfPath)
	if e.MockErr != nil {
		return "", e.MockErr
	}
	return e.MockText, nil
}
