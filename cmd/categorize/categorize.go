// Package categorize handles transaction categorization commands
package categorize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/davidbugayov/Financeanalyzer-sub008/cmd/common"
	"github.com/davidbugayov/Financeanalyzer-sub008/cmd/root"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/categorizer"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/container"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/fileutils"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/logging"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/models"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/parsererror"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/store"
)

var (
	bankCategory string
	recategorize bool
	all          bool
	initRules    bool
)

// Cmd represents the categorize command
var Cmd = &cobra.Command{
	Use:   "categorize [description]",
	Short: "Categorize a description or re-categorize an exported CSV",
	Long: `Print the category of a free-text operation description, or, with --file,
re-run categorization over a CSV written by the import command.

Examples:
  statement-import categorize "Пятёрочка 1234 Москва"
  statement-import categorize --file -i transactions.csv -o recategorized.csv
  statement-import categorize --init-rules`,
	Args: cobra.ArbitraryArgs,
	RunE: categorizeFunc,
}

func init() {
	Cmd.Flags().StringVarP(&bankCategory, "bank-category", "b", "", "Category reported by the bank")
	Cmd.Flags().BoolVarP(&recategorize, "file", "f", false, "Re-categorize the CSV given with --input")
	Cmd.Flags().BoolVarP(&all, "all", "a", false, "With --file, re-categorize every row, not only uncategorized ones")
	Cmd.Flags().BoolVar(&initRules, "init-rules", false, "Write the built-in category rules to the configured rules file")
}

func categorizeFunc(cmd *cobra.Command, args []string) error {
	c := root.GetContainer()
	if c == nil {
		return errors.New("container not initialized")
	}

	if initRules {
		return writeDefaultRules(cmd, c)
	}
	if recategorize {
		return categorizeFile(cmd, c)
	}

	description := strings.TrimSpace(strings.Join(args, " "))
	if description == "" && bankCategory == "" {
		return errors.New("a description or --bank-category is required")
	}

	category := Categorize(cmd.Context(), c, bankCategory, description)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), category)
	return nil
}

// Categorize runs the detector and, when it finds nothing, the configured
// fallback.
func Categorize(ctx context.Context, c *container.Container, bankCategory, description string) string {
	category := c.GetDetector().Detect(bankCategory, description)
	if category != models.CategoryUncategorized || c.GetCategoryFallback() == nil {
		return category
	}
	name, ok, err := c.GetCategoryFallback().Categorize(ctx, models.CanonicalTransaction{Title: description})
	if err != nil {
		c.GetLogger().WithError(err).Warn("Fallback categorization failed")
		return category
	}
	if ok {
		return name
	}
	return category
}

func categorizeFile(cmd *cobra.Command, c *container.Container) error {
	input := root.SharedFlags.Input
	if input == "" {
		return errors.New("an input CSV is required (--input)")
	}
	cfg := c.GetConfig()
	log := c.GetLogger()

	txs, err := store.ReadTransactionsFile(input, common.Delimiter(cfg), cfg.CSV.DateFormat)
	if err != nil {
		return err
	}

	output := root.SharedFlags.Output
	if output == "" || output == input {
		return &parsererror.ValidationError{FilePath: input, Reason: "an output CSV different from the input is required (--output)"}
	}
	sink, _, err := common.CreateSink(cfg, output)
	if err != nil {
		return err
	}

	changed := 0
	for _, tx := range txs {
		if all || tx.Category == "" || tx.Category == models.CategoryUncategorized {
			category := Categorize(cmd.Context(), c, "", tx.Title+" "+tx.Note)
			if category != tx.Category {
				changed++
				tx = tx.WithCategory(category)
			}
		}
		if err := sink.Add(cmd.Context(), tx); err != nil {
			_ = sink.Close()
			return err
		}
	}
	if err := sink.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	log.Info("Re-categorized transactions",
		logging.Field{Key: logging.FieldCount, Value: changed},
		logging.Field{Key: logging.FieldOutput, Value: output})
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d of %d transactions re-categorized into %s\n", changed, len(txs), output)
	return nil
}

// writeDefaultRules saves the built-in rule table. An existing file is kept.
func writeDefaultRules(cmd *cobra.Command, c *container.Container) error {
	rulesStore := c.GetStore()
	path := rulesStore.CategoriesFile
	if path == "" {
		path = store.DefaultCategoriesFile
	}
	if fileutils.FileExists(path) {
		return &parsererror.ValidationError{FilePath: path, Reason: "rules file already exists"}
	}

	rules := categorizer.DefaultRules()
	if err := rulesStore.SaveCategories(rules); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d category rules written to %s\n", len(rules), path)
	return nil
}
