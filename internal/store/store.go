// Package store persists category rules and imported transactions.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/davidbugayov/Financeanalyzer-sub008/internal/fileutils"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/logging"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/models"
)

// DefaultCategoriesFile is looked up when no explicit rules file is configured.
const DefaultCategoriesFile = "categories.yaml"

// CategoryStore loads and saves the ordered category rule table.
type CategoryStore struct {
	CategoriesFile string
	logger         logging.Logger
}

// NewCategoryStore creates a store reading categoriesFile.
func NewCategoryStore(categoriesFile string, logger logging.Logger) *CategoryStore {
	return &CategoryStore{
		CategoriesFile: categoriesFile,
		logger:         logging.OrDefault(logger),
	}
}

// FindConfigFile looks for a configuration file in standard locations
func (s *CategoryStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".config", "statement-import", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

// LoadCategories reads the rule table. A missing file yields an empty table
// so callers fall back to the built-in rules.
func (s *CategoryStore) LoadCategories() ([]models.CategoryRule, error) {
	filename := s.CategoriesFile
	if filename == "" {
		filename = DefaultCategoriesFile
	}

	path, err := s.FindConfigFile(filename)
	if err != nil {
		s.logger.Warn("Categories file not found",
			logging.Field{Key: logging.FieldFile, Value: filename})
		return []models.CategoryRule{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading categories file: %w", err)
	}

	var cfg models.CategoriesConfig
	if err := yaml.Unmarshal(data, &cfg); err == nil && len(cfg.Categories) > 0 {
		s.logger.Debug("Loaded category rules",
			logging.Field{Key: logging.FieldFile, Value: path},
			logging.Field{Key: logging.FieldCount, Value: len(cfg.Categories)})
		return cfg.Categories, nil
	}

	// Bare list without the top-level key.
	var rules []models.CategoryRule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("error parsing categories file %s: %w", path, err)
	}
	s.logger.Debug("Loaded category rules from bare list",
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(rules)})
	return rules, nil
}

// SaveCategories writes rules to the configured file, creating parent
// directories when needed.
func (s *CategoryStore) SaveCategories(rules []models.CategoryRule) error {
	filename := s.CategoriesFile
	if filename == "" {
		filename = DefaultCategoriesFile
	}
	if err := fileutils.EnsureParentDirectory(filename); err != nil {
		return fmt.Errorf("error creating directory for categories file: %w", err)
	}

	data, err := yaml.Marshal(models.CategoriesConfig{Categories: rules})
	if err != nil {
		return fmt.Errorf("error marshaling categories: %w", err)
	}
	if err := os.WriteFile(filename, data, models.PermissionFile); err != nil {
		return fmt.Errorf("error writing categories file: %w", err)
	}
	return nil
}
