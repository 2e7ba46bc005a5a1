// Package importcmd handles the import of a single statement file
package importcmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/davidbugayov/Financeanalyzer-sub008/cmd/common"
	"github.com/davidbugayov/Financeanalyzer-sub008/cmd/root"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/fileutils"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/importer"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/logging"
)

var quiet bool

// Cmd represents the import command
var Cmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import one statement into CSV",
	Long: `Import a PDF, spreadsheet or CSV statement. The institution is detected from
the file name and content; transactions are appended to the output CSV.

Example:
  statement-import import -i sberbank_2024.pdf -o transactions.csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: importFunc,
}

func init() {
	Cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print progress")
}

func importFunc(cmd *cobra.Command, args []string) error {
	input := root.SharedFlags.Input
	if len(args) == 1 {
		input = args[0]
	}
	if input == "" {
		return errors.New("an input file is required (--input or argument)")
	}
	if err := fileutils.RequireFile(input); err != nil {
		return err
	}

	c := root.GetContainer()
	if c == nil {
		return errors.New("container not initialized")
	}
	cfg := c.GetConfig()
	log := c.GetLogger()

	sink, output, err := common.CreateSink(cfg, root.SharedFlags.Output)
	if err != nil {
		return err
	}

	progress := cmd.OutOrStdout()
	if quiet {
		progress = nil
	}
	res := common.ImportFile(cmd.Context(), c.GetManager(), input, sink, progress, log)
	if err := sink.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	common.PrintResult(cmd.OutOrStdout(), input, cfg.CSV.DefaultCurrency, res)
	if failure, ok := res.(importer.Failure); ok {
		return failure
	}
	log.Info("Import completed", logging.Field{Key: logging.FieldOutput, Value: output})
	return nil
}
