// Package importer runs the statement import pipeline: extract text,
// validate the institution, skip headers, parse transactions and hand them to
// a sink, reporting progress along the way.
package importer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/davidbugayov/Financeanalyzer-sub008/internal/logging"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/models"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/parser"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/parsererror"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/record"
)

// Default pipeline settings.
const (
	DefaultValidationLines = 25
	DefaultProgressEvery   = 20
)

// Progress checkpoints of the pipeline phases.
const (
	progressStart     = 0
	progressExtracted = 5
	progressValidated = 10
	progressParsing   = 15
	progressParseSpan = 70
	progressPersist   = 85
)

// Source is a document to import.
type Source struct {
	Name     string
	MIMEType string
	Reader   *bufio.Reader
}

// TextExtractor turns a document into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, r io.Reader) (string, error)
}

// TransactionSink stores imported transactions one at a time.
type TransactionSink interface {
	Add(ctx context.Context, tx models.CanonicalTransaction) error
}

// CategoryFallback is offered every transaction left uncategorized after
// parsing.
type CategoryFallback interface {
	Categorize(ctx context.Context, tx models.CanonicalTransaction) (string, bool, error)
}

// Option configures an Importer.
type Option func(*Importer)

// WithValidationLines sets how many leading lines are validated.
func WithValidationLines(n int) Option {
	return func(im *Importer) {
		if n > 0 {
			im.validationLines = n
		}
	}
}

// WithProgressEvery sets how many lines are parsed between progress reports.
func WithProgressEvery(n int) Option {
	return func(im *Importer) {
		if n > 0 {
			im.progressEvery = n
		}
	}
}

// WithCategoryFallback enables post-parse categorization of uncategorized
// transactions.
func WithCategoryFallback(f CategoryFallback) Option {
	return func(im *Importer) {
		im.fallback = f
	}
}

// Importer runs the pipeline for one institution strategy.
type Importer struct {
	strategy        parser.Strategy
	extractor       TextExtractor
	fallback        CategoryFallback
	validationLines int
	progressEvery   int
	logger          logging.Logger
}

// New creates an Importer. strategy must also implement parser.LineParser or
// parser.RecordAccumulator.
func New(strategy parser.Strategy, extractor TextExtractor, logger logging.Logger, opts ...Option) *Importer {
	im := &Importer{
		strategy:        strategy,
		extractor:       extractor,
		validationLines: DefaultValidationLines,
		progressEvery:   DefaultProgressEvery,
		logger:          logging.OrDefault(logger),
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// BankName returns the institution name of the underlying strategy.
func (im *Importer) BankName() string {
	return im.strategy.BankName()
}

// Run imports src into sink and returns the terminal result. Progress values
// are delivered to progress in order; progress may be nil. Run never panics.
func (im *Importer) Run(ctx context.Context, src Source, sink TransactionSink, progress ProgressSink) (result Result) {
	if progress == nil {
		progress = discardProgress{}
	}
	bank := im.BankName()
	logger := im.logger.WithFields(
		logging.Field{Key: logging.FieldFile, Value: src.Name},
		logging.Field{Key: logging.FieldBank, Value: bank})

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Import panicked",
				logging.Field{Key: logging.FieldError, Value: fmt.Sprint(r)},
				logging.Field{Key: "stack", Value: string(debug.Stack())})
			result = Failure{
				Kind:    parsererror.KindUnexpected,
				Message: parsererror.MsgUnexpected,
				Cause:   fmt.Errorf("panic: %v", r),
			}
		}
	}()

	report := func(current int, msg string) {
		progress.Report(Progress{Current: current, Total: ProgressTotal, Message: msg})
	}

	report(progressStart, fmt.Sprintf("Starting import (%s)", bank))
	if f, ok := cancelled(ctx); ok {
		return f
	}

	text, err := im.extract(ctx, src)
	if err != nil {
		logger.WithError(err).Warn("Text extraction failed")
		return failure(err, parsererror.MsgExtraction)
	}
	report(progressExtracted, "Text extracted, validating format")

	cursor := parser.NewCursor(parser.SplitLines(text))
	if f, ok := cancelled(ctx); ok {
		return f
	}

	if err := im.validate(src, cursor); err != nil {
		logger.WithError(err).Warn("Document rejected by format validation")
		msg := parsererror.MsgInvalidFormat
		var statsErr *parsererror.StatisticsFileError
		if errors.As(err, &statsErr) {
			msg = parsererror.MsgStatisticsFile
		}
		return failure(err, msg)
	}
	report(progressValidated, "Format validated, skipping headers")

	im.strategy.SkipHeaders(cursor)
	if f, ok := cancelled(ctx); ok {
		return f
	}

	report(progressParsing, "Processing transactions")
	txs, malformed, err := im.parse(ctx, cursor, report, logger)
	if err != nil {
		return failure(err, parsererror.MsgUnexpected)
	}
	if len(txs) == 0 {
		err := &parsererror.NoTransactionsError{FilePath: src.Name, Bank: bank}
		logger.Warn("No transactions found",
			logging.Field{Key: "malformed", Value: malformed})
		return failure(err, parsererror.MsgNoTransactions)
	}

	txs = im.enrich(ctx, txs, logger)
	if f, ok := cancelled(ctx); ok {
		return f
	}

	report(progressPersist, fmt.Sprintf("Saving %d transactions", len(txs)))
	imported, total := im.persist(ctx, txs, sink, logger)

	success := Success{
		ImportedCount:  imported,
		SkippedCount:   len(txs) - imported,
		MalformedCount: malformed,
		TotalAmount:    total,
		BankName:       bank,
	}
	logger.Info("Import finished",
		logging.Field{Key: logging.FieldCount, Value: imported},
		logging.Field{Key: "skipped", Value: success.SkippedCount},
		logging.Field{Key: "malformed", Value: malformed})
	return success
}

func (im *Importer) extract(ctx context.Context, src Source) (string, error) {
	if src.Reader == nil {
		return "", &parsererror.ExtractionError{FilePath: src.Name, Err: errors.New("no content")}
	}
	text, err := im.extractor.Extract(ctx, src.Reader)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", &parsererror.ExtractionError{FilePath: src.Name, Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", &parsererror.ExtractionError{FilePath: src.Name}
	}
	return text, nil
}

func (im *Importer) validate(src Source, cursor *parser.Cursor) error {
	n := im.validationLines
	if sizer, ok := im.strategy.(parser.PreviewSizer); ok && sizer.PreviewLines() > 0 {
		n = sizer.PreviewLines()
	}
	err := im.strategy.ValidateFormat(cursor.Preview(n))
	if err == nil {
		return nil
	}

	var fmtErr *parsererror.InvalidFormatError
	if errors.As(err, &fmtErr) && fmtErr.FilePath == "" {
		fmtErr.FilePath = src.Name
	}
	var statsErr *parsererror.StatisticsFileError
	if errors.As(err, &statsErr) && statsErr.FilePath == "" {
		statsErr.FilePath = src.Name
	}
	return err
}

func (im *Importer) parse(ctx context.Context, cursor *parser.Cursor, report func(int, string), logger logging.Logger) ([]models.CanonicalTransaction, int, error) {
	var (
		txs       []models.CanonicalTransaction
		malformed int
	)

	total := cursor.Remaining()
	processed := 0
	tick := func() error {
		processed++
		if processed%im.progressEvery != 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		step := processed * progressParseSpan / total
		if step > progressParseSpan {
			step = progressParseSpan
		}
		report(progressParsing+step, fmt.Sprintf("Processed %d of %d lines", processed, total))
		return nil
	}

	keep := func(tx models.CanonicalTransaction, err error, lineNo int) {
		if err != nil {
			malformed++
			logger.WithError(err).Warn("Skipping malformed record",
				logging.Field{Key: logging.FieldLineNo, Value: lineNo})
			return
		}
		txs = append(txs, tx)
	}

	switch s := im.strategy.(type) {
	case parser.RecordAccumulator:
		trigger := s.Trigger()
		var state record.State
		for {
			line, ok := cursor.Next()
			if !ok {
				break
			}
			var rec *record.Partial
			state, rec = record.Step(state, s.Classify(line), trigger)
			if rec != nil {
				tx, err := safeFinalize(s, *rec)
				keep(tx, err, cursor.Pos())
			}
			if err := tick(); err != nil {
				return nil, 0, err
			}
		}
		if rec := record.Flush(state); rec != nil {
			tx, err := safeFinalize(s, *rec)
			keep(tx, err, cursor.Pos())
		}

	case parser.LineParser:
		for {
			line, ok := cursor.Next()
			if !ok {
				break
			}
			tx, found, err := safeParseLine(s, line)
			if err != nil || found {
				keep(tx, err, cursor.Pos())
			}
			if err := tick(); err != nil {
				return nil, 0, err
			}
		}

	default:
		return nil, 0, fmt.Errorf("strategy %s parses neither lines nor records", im.BankName())
	}

	logger.Debug("Parsing finished",
		logging.Field{Key: logging.FieldCount, Value: len(txs)},
		logging.Field{Key: "malformed", Value: malformed})
	return txs, malformed, nil
}

func (im *Importer) enrich(ctx context.Context, txs []models.CanonicalTransaction, logger logging.Logger) []models.CanonicalTransaction {
	if im.fallback == nil {
		return txs
	}
	for i, tx := range txs {
		if tx.Category != models.CategoryUncategorized || ctx.Err() != nil {
			continue
		}
		name, ok, err := im.fallback.Categorize(ctx, tx)
		if err != nil {
			logger.WithError(err).Warn("Category fallback failed",
				logging.Field{Key: "title", Value: tx.Title})
			continue
		}
		if ok && name != "" {
			txs[i] = tx.WithCategory(name)
		}
	}
	return txs
}

func (im *Importer) persist(ctx context.Context, txs []models.CanonicalTransaction, sink TransactionSink, logger logging.Logger) (int, decimal.Decimal) {
	imported := 0
	total := decimal.Zero
	for _, tx := range txs {
		if err := sink.Add(ctx, tx); err != nil {
			logger.WithError(err).Warn("Failed to persist transaction",
				logging.Field{Key: "transaction_id", Value: tx.ID})
			continue
		}
		imported++
		total = total.Add(tx.SignedAmount())
	}
	return imported, total
}

func safeFinalize(acc parser.RecordAccumulator, rec record.Partial) (tx models.CanonicalTransaction, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("finalize panicked: %v", r)
		}
	}()
	return acc.Finalize(rec)
}

func safeParseLine(lp parser.LineParser, line string) (tx models.CanonicalTransaction, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse line panicked: %v", r)
		}
	}()
	return lp.ParseLine(line)
}

func cancelled(ctx context.Context) (Failure, bool) {
	if err := ctx.Err(); err != nil {
		return Failure{Kind: parsererror.KindCancelled, Message: parsererror.MsgCancelled, Cause: err}, true
	}
	return Failure{}, false
}

func failure(err error, msg string) Failure {
	kind := parsererror.Kind(err)
	if kind == parsererror.KindCancelled {
		msg = parsererror.MsgCancelled
	}
	return Failure{Kind: kind, Message: msg, Cause: err}
}
