// Package formatdetect identifies the container format of an uploaded
// statement from its name, its declared MIME type and its first bytes.
package formatdetect

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/davidbugayov/Financeanalyzer-sub008/internal/logging"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/models"
)

// DefaultSniffBytes is how much content is inspected when the name and the
// MIME type are inconclusive.
const DefaultSniffBytes = 50

var (
	pdfMagic  = []byte("%PDF-")
	zipMagic  = []byte("PK\x03\x04")
	ole2Magic = []byte{0xD0, 0xCF, 0x11, 0xE0}
)

var extensionFormats = map[string]models.FileFormat{
	".pdf":  models.FormatPDF,
	".xlsx": models.FormatSpreadsheet,
	".xls":  models.FormatSpreadsheet,
	".csv":  models.FormatCSV,
}

var mimeFormats = map[string]models.FileFormat{
	"application/pdf":             models.FormatPDF,
	"text/csv":                    models.FormatCSV,
	"application/csv":             models.FormatCSV,
	"text/comma-separated-values": models.FormatCSV,
	"application/vnd.ms-excel":    models.FormatSpreadsheet,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": models.FormatSpreadsheet,
}

// Detector classifies documents. The zero value is not usable; use New.
type Detector struct {
	sniffBytes int
	logger     logging.Logger
}

// New creates a Detector inspecting at most sniffBytes of content. A
// non-positive value uses DefaultSniffBytes.
func New(sniffBytes int, logger logging.Logger) *Detector {
	if sniffBytes <= 0 {
		sniffBytes = DefaultSniffBytes
	}
	return &Detector{sniffBytes: sniffBytes, logger: logging.OrDefault(logger)}
}

// Detect returns the format of a document. The extension of name wins over
// the MIME type, which wins over the content. content is only peeked, so
// its read position is unchanged; it may be nil.
func (d *Detector) Detect(name, mimeType string, content *bufio.Reader) models.FileFormat {
	if f := FromExtension(name); f != models.FormatUnknown {
		return f
	}
	if f := FromMIMEType(mimeType); f != models.FormatUnknown {
		return f
	}
	if content == nil {
		return models.FormatUnknown
	}

	f := d.sniff(content)
	d.logger.Debug("Format detected from content",
		logging.Field{Key: logging.FieldFile, Value: name},
		logging.Field{Key: logging.FieldFormat, Value: f.String()})
	return f
}

func (d *Detector) sniff(content *bufio.Reader) models.FileFormat {
	head, err := content.Peek(d.sniffBytes)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		d.logger.WithError(err).Debug("Content sniffing failed")
		return models.FormatUnknown
	}
	return FromContent(head)
}

// FromExtension maps a file name to a format by its extension, ignoring case.
func FromExtension(name string) models.FileFormat {
	if f, ok := extensionFormats[strings.ToLower(filepath.Ext(name))]; ok {
		return f
	}
	return models.FormatUnknown
}

// FromMIMEType maps a declared MIME type to a format. Parameters such as
// charset are ignored.
func FromMIMEType(mimeType string) models.FileFormat {
	if strings.TrimSpace(mimeType) == "" {
		return models.FormatUnknown
	}
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		mediaType = strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
	}
	if f, ok := mimeFormats[strings.ToLower(mediaType)]; ok {
		return f
	}
	return models.FormatUnknown
}

// FromContent classifies the leading bytes of a document.
func FromContent(head []byte) models.FileFormat {
	switch {
	case bytes.HasPrefix(head, pdfMagic):
		return models.FormatPDF
	case bytes.HasPrefix(head, zipMagic), bytes.HasPrefix(head, ole2Magic):
		return models.FormatSpreadsheet
	case bytes.ContainsAny(head, ",;"):
		return models.FormatCSV
	}
	return models.FormatUnknown
}
