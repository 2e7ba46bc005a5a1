// Package batch imports every statement in a directory into one sink and
// aggregates the per-file outcomes.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/davidbugayov/Financeanalyzer-sub008/internal/formatdetect"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/importer"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/logging"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/models"
)

// DateRange represents a date range with start and end dates
type DateRange struct {
	Start time.Time
	End   time.Time
}

// String returns the date range in the format "YYYY-MM-DD_YYYY-MM-DD"
func (dr DateRange) String() string {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s_%s",
		dr.Start.Format("2006-01-02"),
		dr.End.Format("2006-01-02"))
}

// ImportFunc imports one file into sink.
type ImportFunc func(ctx context.Context, path string, sink importer.TransactionSink) importer.Result

// FileOutcome is the terminal result of one file.
type FileOutcome struct {
	File   string
	Result importer.Result
}

// Summary aggregates the outcomes of a batch.
type Summary struct {
	Files      []FileOutcome
	Succeeded  int
	Failed     int
	Imported   int
	Skipped    int
	Malformed  int
	Total      decimal.Decimal
	DateRange  DateRange
	Duplicates int
	// ByBank counts imported transactions per institution.
	ByBank map[string]int
}

// BatchAggregator imports a set of files one after another.
type BatchAggregator struct {
	logger logging.Logger
}

// NewBatchAggregator creates a new BatchAggregator instance
func NewBatchAggregator(logger logging.Logger) *BatchAggregator {
	return &BatchAggregator{logger: logging.OrDefault(logger)}
}

// CollectFiles lists the files of dir with a supported statement extension,
// sorted by name. Subdirectories are not visited.
func (ba *BatchAggregator) CollectFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if formatdetect.FromExtension(e.Name()) == models.FormatUnknown {
			ba.logger.Debug("Skipping unsupported file", logging.Field{Key: logging.FieldFile, Value: e.Name()})
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)

	ba.logger.Info("Collected statement files",
		logging.Field{Key: "directory", Value: dir},
		logging.Field{Key: logging.FieldCount, Value: len(files)})
	return files, nil
}

// ImportAll runs fn for every file, in order, into sink. A failed file does
// not stop the batch; cancellation does.
func (ba *BatchAggregator) ImportAll(ctx context.Context, files []string, sink importer.TransactionSink, fn ImportFunc) Summary {
	summary := Summary{Total: decimal.Zero, ByBank: make(map[string]int)}
	rec := &recordingSink{next: sink}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			ba.logger.Warn("Batch cancelled", logging.Field{Key: logging.FieldFile, Value: file})
			break
		}

		res := fn(ctx, file, rec)
		summary.Files = append(summary.Files, FileOutcome{File: file, Result: res})

		switch r := res.(type) {
		case importer.Success:
			summary.Succeeded++
			summary.Imported += r.ImportedCount
			summary.Skipped += r.SkippedCount
			summary.Malformed += r.MalformedCount
			summary.Total = summary.Total.Add(r.TotalAmount)
			summary.ByBank[r.BankName] += r.ImportedCount
			ba.logger.Info("File imported",
				logging.Field{Key: logging.FieldFile, Value: filepath.Base(file)},
				logging.Field{Key: logging.FieldBank, Value: r.BankName},
				logging.Field{Key: logging.FieldCount, Value: r.ImportedCount})
		case importer.Failure:
			summary.Failed++
			ba.logger.Error("Failed to import file",
				logging.Field{Key: logging.FieldFile, Value: file},
				logging.Field{Key: logging.FieldStatus, Value: r.Kind},
				logging.Field{Key: logging.FieldError, Value: r.Error()})
		default:
			summary.Failed++
			ba.logger.Error("Import returned no terminal result",
				logging.Field{Key: logging.FieldFile, Value: file})
		}
	}

	txs := rec.transactions()
	summary.DateRange = CalculateDateRange(txs)
	summary.Duplicates = ba.detectAndLogDuplicates(txs)

	ba.logger.Info("Batch finished",
		logging.Field{Key: "files", Value: len(summary.Files)},
		logging.Field{Key: "failed", Value: summary.Failed},
		logging.Field{Key: logging.FieldCount, Value: summary.Imported})
	return summary
}

// Err reports the failures of a batch as one error, or nil when every file
// was imported.
func (s Summary) Err() error {
	var failed []string
	for _, f := range s.Files {
		if failure, ok := f.Result.(importer.Failure); ok {
			failed = append(failed, fmt.Sprintf("%s: %s", filepath.Base(f.File), failure.Message))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d files failed: %s", len(failed), len(s.Files), strings.Join(failed, "; "))
}

// detectAndLogDuplicates counts transactions sharing date, amount, direction
// and title with an earlier one. Duplicates are kept.
func (ba *BatchAggregator) detectAndLogDuplicates(txs []models.CanonicalTransaction) int {
	seen := make(map[string]bool, len(txs))
	count := 0
	for _, tx := range txs {
		key := duplicateKey(tx)
		if seen[key] {
			count++
			ba.logger.Warn("Potential duplicate transaction",
				logging.Field{Key: "date", Value: tx.Date.Format("2006-01-02")},
				logging.Field{Key: "amount", Value: tx.Amount.String()},
				logging.Field{Key: "title", Value: tx.Title})
			continue
		}
		seen[key] = true
	}

	if count > 0 {
		ba.logger.Warn("Found potential duplicate transactions", logging.Field{Key: logging.FieldCount, Value: count})
	}
	return count
}

func duplicateKey(tx models.CanonicalTransaction) string {
	return strings.Join([]string{
		tx.Date.Format("2006-01-02"),
		tx.SignedAmount().String(),
		tx.Amount.Currency,
		strings.ToLower(strings.TrimSpace(tx.Title)),
	}, "|")
}

// CalculateDateRange returns the span of the transaction dates.
func CalculateDateRange(txs []models.CanonicalTransaction) DateRange {
	if len(txs) == 0 {
		return DateRange{}
	}

	start := txs[0].Date
	end := txs[0].Date
	for _, tx := range txs {
		if tx.Date.Before(start) {
			start = tx.Date
		}
		if tx.Date.After(end) {
			end = tx.Date
		}
	}
	return DateRange{Start: start, End: end}
}

// GenerateOutputFilename creates a filename for the consolidated output:
// {prefix}_{start}_{end}.csv, or {prefix}.csv without a date range.
func GenerateOutputFilename(prefix string, dateRange DateRange) string {
	if prefix == "" {
		prefix = "statements"
	}
	if r := dateRange.String(); r != "" {
		return fmt.Sprintf("%s_%s.csv", prefix, r)
	}
	return prefix + ".csv"
}

// recordingSink forwards transactions and remembers the accepted ones.
type recordingSink struct {
	next importer.TransactionSink
	mu   sync.Mutex
	txs  []models.CanonicalTransaction
}

func (s *recordingSink) Add(ctx context.Context, tx models.CanonicalTransaction) error {
	if err := s.next.Add(ctx, tx); err != nil {
		return err
	}
	s.mu.Lock()
	s.txs = append(s.txs, tx)
	s.mu.Unlock()
	return nil
}

func (s *recordingSink) transactions() []models.CanonicalTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.CanonicalTransaction, len(s.txs))
	copy(out, s.txs)
	return out
}
