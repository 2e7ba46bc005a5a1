// Package registry resolves a document to the institution importer that can
// read it.
package registry

import (
	"bufio"
	"errors"
	"io"
	"path/filepath"
	"slices"

	"github.com/davidbugayov/Financeanalyzer-sub008/internal/importer"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/logging"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/models"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/textutils"
)

// DefaultSniffBytes is how much content a handler peeks at when the
// filename alone is inconclusive.
const DefaultSniffBytes = 2048

// Handler recognizes the documents of one institution.
type Handler interface {
	Name() string
	Formats() []models.FileFormat
	CanHandle(name string, content *bufio.Reader, format models.FileFormat) bool
	CreateImporter(format models.FileFormat) *importer.Importer
}

// HandlerSpec describes how an institution is recognized from the filename
// and the first bytes of its documents.
type HandlerSpec struct {
	Name    string
	Formats []models.FileFormat

	// Keywords in the filename claim the document.
	Keywords []string
	// NegativeKeywords in the filename name another institution.
	NegativeKeywords []string
	// GenericKeywords in the filename trigger a content sniff.
	GenericKeywords []string

	// Indicators found by the sniff claim the document; RejectIndicators
	// refuse it.
	Indicators       []string
	RejectIndicators []string

	// Fallback handlers accept any document of their formats that passes
	// Probe (or every document when Probe is nil).
	Fallback bool
	Probe    func(head []byte) bool

	// Preview turns the sniffed bytes into searchable text. The raw bytes are
	// used when nil.
	Preview func(head []byte) string

	// SniffBytes overrides the sniff size.
	SniffBytes int
}

// ImporterFactory builds the importer for a claimed document.
type ImporterFactory func(format models.FileFormat) *importer.Importer

// KeywordHandler is the Handler every institution uses.
type KeywordHandler struct {
	spec    HandlerSpec
	factory ImporterFactory
	logger  logging.Logger
}

// NewKeywordHandler creates a handler from spec.
func NewKeywordHandler(spec HandlerSpec, factory ImporterFactory, logger logging.Logger) *KeywordHandler {
	if spec.SniffBytes <= 0 {
		spec.SniffBytes = DefaultSniffBytes
	}
	return &KeywordHandler{
		spec:    spec,
		factory: factory,
		logger:  logging.OrDefault(logger).WithField(logging.FieldHandler, spec.Name),
	}
}

// WithSniffBytes returns a copy of spec using n sniff bytes unless the spec
// already sets its own size.
func (s HandlerSpec) WithSniffBytes(n int) HandlerSpec {
	if s.SniffBytes <= 0 {
		s.SniffBytes = n
	}
	return s
}

func (h *KeywordHandler) Name() string {
	return h.spec.Name
}

func (h *KeywordHandler) Formats() []models.FileFormat {
	return slices.Clone(h.spec.Formats)
}

type verdict int

const (
	undecided verdict = iota
	accept
	reject
)

// CanHandle reports whether the document belongs to the institution.
func (h *KeywordHandler) CanHandle(name string, content *bufio.Reader, format models.FileFormat) bool {
	if !slices.Contains(h.spec.Formats, format) {
		return false
	}

	base := filepath.Base(name)
	if textutils.ContainsAnyFold(base, h.spec.NegativeKeywords) {
		h.logger.Debug("Filename names another institution", logging.Field{Key: logging.FieldFile, Value: name})
		return false
	}
	if textutils.ContainsAnyFold(base, h.spec.Keywords) {
		return true
	}

	if len(h.spec.Indicators) > 0 && textutils.ContainsAnyFold(base, h.spec.GenericKeywords) {
		switch h.sniff(content) {
		case accept:
			return true
		case reject:
			return false
		}
	}

	if h.spec.Fallback {
		if h.spec.Probe == nil {
			return true
		}
		return h.spec.Probe(h.peek(content))
	}
	return false
}

// CreateImporter builds the importer for a claimed document.
func (h *KeywordHandler) CreateImporter(format models.FileFormat) *importer.Importer {
	return h.factory(format)
}

func (h *KeywordHandler) sniff(content *bufio.Reader) verdict {
	head := h.peek(content)
	if len(head) == 0 {
		return undecided
	}
	text := string(head)
	if h.spec.Preview != nil {
		text = h.spec.Preview(head)
	}
	switch {
	case textutils.ContainsAnyFold(text, h.spec.RejectIndicators):
		return reject
	case textutils.ContainsAnyFold(text, h.spec.Indicators):
		return accept
	}
	return undecided
}

// peek returns up to SniffBytes of content without consuming it.
func (h *KeywordHandler) peek(content *bufio.Reader) []byte {
	if content == nil {
		return nil
	}
	head, err := content.Peek(h.spec.SniffBytes)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		h.logger.WithError(err).Debug("Failed to sniff document content")
	}
	return head
}
