// Package root contains the root command for the application
package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/davidbugayov/Financeanalyzer-sub008/internal/config"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/container"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/logging"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input      string
	Output     string
	ConfigFile string
	LogLevel   string
}

var (
	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "statement-import",
		Short: "Import Russian bank statements into a uniform transaction list.",
		Long: `statement-import reads PDF, spreadsheet and CSV statements from Sberbank,
T-Bank, Ozon Bank, Alfa-Bank and generic exports, detects the institution,
categorizes every operation and writes the transactions to CSV.`,
		SilenceUsage:       true,
		PersistentPreRunE:  initialize,
		PersistentPostRunE: shutdown,
	}

	// SharedFlags holds the persistent flags of every command.
	SharedFlags = CommonFlags{}

	appContainer *container.Container
)

// Init registers the persistent flags.
func Init() {
	flags := Cmd.PersistentFlags()
	flags.StringVarP(&SharedFlags.Input, "input", "i", "", "Input file or directory")
	flags.StringVarP(&SharedFlags.Output, "output", "o", "", "Output CSV file")
	flags.StringVarP(&SharedFlags.ConfigFile, "config", "c", "", "Config file (default: config.yaml in the standard locations)")
	flags.StringVar(&SharedFlags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

func initialize(cmd *cobra.Command, _ []string) error {
	config.LoadEnv()

	cfg, err := config.InitializeConfig(SharedFlags.ConfigFile)
	if err != nil {
		return err
	}
	if SharedFlags.LogLevel != "" {
		cfg.Log.Level = SharedFlags.LogLevel
	}

	c, err := container.NewContainer(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	appContainer = c
	c.GetLogger().Debug("Command started", logging.Field{Key: logging.FieldOperation, Value: cmd.Name()})
	return nil
}

func shutdown(*cobra.Command, []string) error {
	if appContainer == nil {
		return nil
	}
	err := appContainer.Close()
	appContainer = nil
	return err
}

// GetContainer returns the container built for the running command, or nil
// before initialization.
func GetContainer() *container.Container {
	return appContainer
}

// SetContainer replaces the container, for tests.
func SetContainer(c *container.Container) {
	appContainer = c
}

// GetLogger returns the logger of the running command.
func GetLogger() logging.Logger {
	if appContainer == nil {
		return logging.OrDefault(nil)
	}
	return appContainer.GetLogger()
}
