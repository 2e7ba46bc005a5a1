// Package config provides Viper-based hierarchical configuration management
// for the statement importer.
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Finalization triggers accepted in parsers.<bank>.finalize_on.
const (
	FinalizeOnDate   = "date"
	FinalizeOnAmount = "amount"
)

// ParserConfig holds per-institution parsing switches.
type ParserConfig struct {
	FinalizeOn string `mapstructure:"finalize_on" yaml:"finalize_on"`
}

// Config represents the complete application configuration.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Detect struct {
		SniffBytes int `mapstructure:"sniff_bytes" yaml:"sniff_bytes"`
	} `mapstructure:"detect" yaml:"detect"`

	Import struct {
		ValidationLines   int `mapstructure:"validation_lines" yaml:"validation_lines"`
		HandlerSniffBytes int `mapstructure:"handler_sniff_bytes" yaml:"handler_sniff_bytes"`
		ProgressEvery     int `mapstructure:"progress_every" yaml:"progress_every"`
	} `mapstructure:"import" yaml:"import"`

	Parsers struct {
		Sberbank ParserConfig `mapstructure:"sberbank" yaml:"sberbank"`
		TBank    ParserConfig `mapstructure:"tbank" yaml:"tbank"`
		Ozon     ParserConfig `mapstructure:"ozon" yaml:"ozon"`
	} `mapstructure:"parsers" yaml:"parsers"`

	PDF struct {
		Command string `mapstructure:"command" yaml:"command"`
		Mode    string `mapstructure:"mode" yaml:"mode"`
	} `mapstructure:"pdf" yaml:"pdf"`

	CSV struct {
		Delimiter       string `mapstructure:"delimiter" yaml:"delimiter"`
		DateFormat      string `mapstructure:"date_format" yaml:"date_format"`
		DefaultCurrency string `mapstructure:"default_currency" yaml:"default_currency"`
	} `mapstructure:"csv" yaml:"csv"`

	Categorization struct {
		RulesFile        string `mapstructure:"rules_file" yaml:"rules_file"`
		FuzzyMaxDistance int    `mapstructure:"fuzzy_max_distance" yaml:"fuzzy_max_distance"`
	} `mapstructure:"categorization" yaml:"categorization"`

	AI struct {
		Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
		Model          string `mapstructure:"model" yaml:"model"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		APIKey         string `mapstructure:"api_key" yaml:"-"`
	} `mapstructure:"ai" yaml:"ai"`

	Output struct {
		File string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"output" yaml:"output"`
}

// InitializeConfig loads configuration from defaults, an optional config
// file and STMT_* environment variables, in increasing precedence. When
// configFile is empty the standard locations are searched.
func InitializeConfig(configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.statement-import")
		v.AddConfigPath(".statement-import")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("STMT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if configFile != "" {
				return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
			}
			logrus.Warnf("error reading config file %s: %v", v.ConfigFileUsed(), err)
		}
	}

	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GEMINI_API_KEY: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Defaults returns the built-in configuration without reading any file or
// environment variable.
func Defaults() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		panic(fmt.Sprintf("invalid built-in configuration: %v", err))
	}
	return &config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("detect.sniff_bytes", 50)

	v.SetDefault("import.validation_lines", 25)
	v.SetDefault("import.handler_sniff_bytes", 2048)
	v.SetDefault("import.progress_every", 20)

	v.SetDefault("parsers.sberbank.finalize_on", FinalizeOnDate)
	v.SetDefault("parsers.tbank.finalize_on", FinalizeOnAmount)
	v.SetDefault("parsers.ozon.finalize_on", FinalizeOnDate)

	v.SetDefault("pdf.command", "pdftotext")
	v.SetDefault("pdf.mode", "raw")

	v.SetDefault("csv.delimiter", ",")
	v.SetDefault("csv.date_format", "2006-01-02_15-04-05")
	v.SetDefault("csv.default_currency", "RUB")

	v.SetDefault("categorization.rules_file", "categories.yaml")
	v.SetDefault("categorization.fuzzy_max_distance", 0)

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout_seconds", 30)
	v.SetDefault("ai.api_key", "")

	v.SetDefault("output.file", "transactions.csv")
}

func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if config.Detect.SniffBytes < 5 || config.Detect.SniffBytes > 4096 {
		return fmt.Errorf("detect.sniff_bytes must be between 5 and 4096, got: %d", config.Detect.SniffBytes)
	}

	if config.Import.ValidationLines < 1 {
		return fmt.Errorf("import.validation_lines must be positive, got: %d", config.Import.ValidationLines)
	}

	if config.Import.HandlerSniffBytes < 0 {
		return fmt.Errorf("import.handler_sniff_bytes must not be negative, got: %d", config.Import.HandlerSniffBytes)
	}

	if config.Import.ProgressEvery < 1 {
		return fmt.Errorf("import.progress_every must be positive, got: %d", config.Import.ProgressEvery)
	}

	for bank, pc := range map[string]ParserConfig{
		"sberbank": config.Parsers.Sberbank,
		"tbank":    config.Parsers.TBank,
		"ozon":     config.Parsers.Ozon,
	} {
		if pc.FinalizeOn != FinalizeOnDate && pc.FinalizeOn != FinalizeOnAmount {
			return fmt.Errorf("parsers.%s.finalize_on must be '%s' or '%s', got: %s",
				bank, FinalizeOnDate, FinalizeOnAmount, pc.FinalizeOn)
		}
	}

	switch config.PDF.Mode {
	case "raw", "layout", "simple":
	default:
		return fmt.Errorf("pdf.mode must be one of raw, layout, simple, got: %s", config.PDF.Mode)
	}

	if len([]rune(config.CSV.Delimiter)) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	if config.Categorization.FuzzyMaxDistance < 0 || config.Categorization.FuzzyMaxDistance > 3 {
		return fmt.Errorf("categorization.fuzzy_max_distance must be between 0 and 3, got: %d",
			config.Categorization.FuzzyMaxDistance)
	}

	if config.AI.Enabled {
		if config.AI.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY required when AI is enabled")
		}
		if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
			return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", config.AI.TimeoutSeconds)
		}
	}

	return nil
}
