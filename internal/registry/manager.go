package registry

import (
	"bufio"
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/davidbugayov/Financeanalyzer-sub008/internal/formatdetect"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/importer"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/logging"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/models"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/parsererror"
)

// ReaderBufferSize is the buffer given to readers opened by OpenSource. It
// bounds how much content detection and handlers can peek at.
const ReaderBufferSize = 1 << 20

// Manager detects the format of a document, dispatches it to a handler and
// runs the resulting importer.
type Manager struct {
	detector *formatdetect.Detector
	registry *Registry
	logger   logging.Logger
}

// NewManager creates a Manager.
func NewManager(detector *formatdetect.Detector, registry *Registry, logger logging.Logger) *Manager {
	logger = logging.OrDefault(logger)
	if detector == nil {
		detector = formatdetect.New(formatdetect.DefaultSniffBytes, logger)
	}
	return &Manager{detector: detector, registry: registry, logger: logger}
}

// Resolve detects the format of src and finds the handler claiming it.
func (m *Manager) Resolve(src importer.Source) (models.FileFormat, Handler, error) {
	format := m.detector.Detect(src.Name, src.MIMEType, src.Reader)
	if format == models.FormatUnknown {
		return format, nil, &parsererror.DetectionError{FilePath: src.Name}
	}
	h, err := m.registry.Find(src.Name, src.Reader, format)
	if err != nil {
		return format, nil, err
	}
	return format, h, nil
}

// Import runs the whole pipeline for src and returns the terminal result.
// Detection and dispatch failures are returned as a Failure.
func (m *Manager) Import(ctx context.Context, src importer.Source, sink importer.TransactionSink, progress importer.ProgressSink) importer.Result {
	format, h, err := m.Resolve(src)
	if err != nil {
		return m.failure(src, err)
	}
	m.logger.Info("Importing document",
		logging.Field{Key: logging.FieldFile, Value: src.Name},
		logging.Field{Key: logging.FieldFormat, Value: format.String()},
		logging.Field{Key: logging.FieldHandler, Value: h.Name()})
	return h.CreateImporter(format).Run(ctx, src, sink, progress)
}

// ImportStream is Import delivering every result on a channel, terminal value
// last.
func (m *Manager) ImportStream(ctx context.Context, src importer.Source, sink importer.TransactionSink) <-chan importer.Result {
	format, h, err := m.Resolve(src)
	if err != nil {
		ch := make(chan importer.Result, 1)
		ch <- m.failure(src, err)
		close(ch)
		return ch
	}
	return importer.Stream(ctx, h.CreateImporter(format), src, sink)
}

func (m *Manager) failure(src importer.Source, err error) importer.Failure {
	kind := parsererror.Kind(err)
	msg := parsererror.MsgNoHandler
	if kind == parsererror.KindDetection {
		msg = parsererror.MsgDetectionFailed
	}
	m.logger.WithError(err).Warn("Document could not be dispatched",
		logging.Field{Key: logging.FieldFile, Value: src.Name})
	return importer.Failure{Kind: kind, Message: msg, Cause: err}
}

// OpenSource opens path as an import source. The caller closes the returned
// file.
func OpenSource(path string) (importer.Source, *os.File, error) {
	f, err := os.Open(path) // #nosec G304 -- user-supplied statement path
	if err != nil {
		return importer.Source{}, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return importer.Source{
		Name:     filepath.Base(path),
		MIMEType: mime.TypeByExtension(filepath.Ext(path)),
		Reader:   bufio.NewReaderSize(f, ReaderBufferSize),
	}, f, nil
}
