// Package batch handles batch import of a directory of statements
package batch

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/davidbugayov/Financeanalyzer-sub008/cmd/common"
	"github.com/davidbugayov/Financeanalyzer-sub008/cmd/root"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/batch"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/fileutils"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/importer"
)

// Cmd represents the batch command
var Cmd = &cobra.Command{
	Use:   "batch",
	Short: "Import every statement in a directory",
	Long: `Import every PDF, spreadsheet and CSV statement found in the input directory
into one CSV file. A file that fails does not stop the batch.

Without --output the file is named after the covered period, e.g.
statements_2024-01-01_2024-03-31.csv, and written to the working directory.

Example:
  statement-import batch -i statements/ -o all.csv`,
	RunE: batchFunc,
}

func batchFunc(cmd *cobra.Command, _ []string) error {
	inputDir := root.SharedFlags.Input
	if inputDir == "" {
		return errors.New("an input directory is required (--input)")
	}
	if err := fileutils.RequireDirectory(inputDir); err != nil {
		return err
	}

	c := root.GetContainer()
	if c == nil {
		return errors.New("container not initialized")
	}
	cfg := c.GetConfig()
	log := c.GetLogger()

	aggregator := batch.NewBatchAggregator(log)
	files, err := aggregator.CollectFiles(inputDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No statement files found")
		return nil
	}

	output := root.SharedFlags.Output
	tmpOutput := output
	if tmpOutput == "" {
		tmpOutput = batch.GenerateOutputFilename("", batch.DateRange{})
	}
	sink, _, err := common.CreateSink(cfg, tmpOutput)
	if err != nil {
		return err
	}

	summary := aggregator.ImportAll(cmd.Context(), files, sink,
		func(ctx context.Context, path string, s importer.TransactionSink) importer.Result {
			return common.ImportFile(ctx, c.GetManager(), path, s, nil, log)
		})
	if err := sink.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmpOutput, err)
	}

	if output == "" && summary.Imported > 0 {
		output, err = renameToPeriod(tmpOutput, summary.DateRange)
		if err != nil {
			return err
		}
	} else if output == "" {
		output = tmpOutput
	}

	printSummary(cmd, summary, cfg.CSV.DefaultCurrency, output)
	return summary.Err()
}

func printSummary(cmd *cobra.Command, s batch.Summary, currency, output string) {
	w := cmd.OutOrStdout()
	for _, f := range s.Files {
		common.PrintResult(w, f.File, currency, f.Result)
	}

	banks := make([]string, 0, len(s.ByBank))
	for bank := range s.ByBank {
		banks = append(banks, bank)
	}
	sort.Strings(banks)
	for _, bank := range banks {
		_, _ = fmt.Fprintf(w, "  %s: %d\n", bank, s.ByBank[bank])
	}

	_, _ = fmt.Fprintf(w, "Files: %d ok, %d failed. Transactions: %d imported, %d skipped, %d malformed, %d possible duplicates. Net: %s\n",
		s.Succeeded, s.Failed, s.Imported, s.Skipped, s.Malformed, s.Duplicates, common.FormatAmount(s.Total, currency))
	if r := s.DateRange.String(); r != "" {
		_, _ = fmt.Fprintf(w, "Period: %s\n", r)
	}
	_, _ = fmt.Fprintf(w, "Output: %s\n", output)
}
