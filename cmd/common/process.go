// Package common contains shared functionality for command handlers
package common

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/davidbugayov/Financeanalyzer-sub008/internal/config"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/fileutils"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/importer"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/logging"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/models"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/parsererror"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/registry"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/store"
)

// Delimiter returns the configured CSV delimiter.
func Delimiter(cfg *config.Config) rune {
	if d := []rune(cfg.CSV.Delimiter); len(d) == 1 {
		return d[0]
	}
	return ','
}

// CreateSink opens the output CSV configured for cfg, creating its directory.
// output overrides the configured file.
func CreateSink(cfg *config.Config, output string) (*store.CSVSink, string, error) {
	if output == "" {
		output = cfg.Output.File
	}
	if err := fileutils.EnsureParentDirectory(output); err != nil {
		return nil, "", err
	}
	sink, err := store.CreateCSVSink(output, Delimiter(cfg), cfg.CSV.DateFormat)
	if err != nil {
		return nil, "", err
	}
	return sink, output, nil
}

// ImportFile imports path into sink through m, writing progress to w. The
// terminal result is returned.
func ImportFile(ctx context.Context, m *registry.Manager, path string, sink importer.TransactionSink, w io.Writer, log logging.Logger) importer.Result {
	src, f, err := registry.OpenSource(path)
	if err != nil {
		return importer.Failure{Kind: parsererror.KindExtraction, Message: parsererror.MsgExtraction,
			Cause: &parsererror.ExtractionError{FilePath: path, Err: err}}
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.WithError(err).Warn("Failed to close input file", logging.Field{Key: logging.FieldFile, Value: path})
		}
	}()

	var last importer.Result
	for res := range m.ImportStream(ctx, src, sink) {
		if p, ok := res.(importer.Progress); ok && w != nil {
			_, _ = fmt.Fprintf(w, "[%3d%%] %s\n", p.Current*100/max(p.Total, 1), p.Message)
			continue
		}
		last = res
	}
	if last == nil {
		return importer.Failure{Kind: parsererror.KindCancelled, Message: parsererror.MsgCancelled, Cause: ctx.Err()}
	}
	return last
}

// PrintResult writes a human-readable terminal result.
func PrintResult(w io.Writer, file, currency string, res importer.Result) {
	switch r := res.(type) {
	case importer.Success:
		_, _ = fmt.Fprintf(w, "%s: %s, imported %d, skipped %d, malformed %d, total %s\n",
			filepath.Base(file), r.BankName, r.ImportedCount, r.SkippedCount, r.MalformedCount,
			FormatAmount(r.TotalAmount, currency))
	case importer.Failure:
		_, _ = fmt.Fprintf(w, "%s: failed (%s): %s\n", filepath.Base(file), r.Kind, r.Error())
	default:
		_, _ = fmt.Fprintf(w, "%s: no result\n", filepath.Base(file))
	}
}

// FormatAmount renders amount in currency with its symbol.
func FormatAmount(amount decimal.Decimal, currency string) string {
	return models.NewMoney(amount, strings.ToUpper(currency)).Display()
}
