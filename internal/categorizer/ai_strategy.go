package categorizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/davidbugayov/Financeanalyzer-sub008/internal/logging"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/models"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/parsererror"
)

const promptTemplate = `Categorize the following bank transaction:
Title: %s
Amount: %s
Date: %s
Details: %s

Assign it to exactly one of the following categories:
%s

Respond in this format:
Category: [Selected Category Name]`

// AIStrategy asks a TextGenerator to pick one of a fixed list of categories.
// Answers outside the list are discarded.
type AIStrategy struct {
	generator  TextGenerator
	categories []string
	timeout    time.Duration
	logger     logging.Logger
}

// NewAIStrategy creates an AIStrategy limited to categories.
func NewAIStrategy(generator TextGenerator, categories []string, timeout time.Duration, logger logging.Logger) *AIStrategy {
	return &AIStrategy{
		generator:  generator,
		categories: categories,
		timeout:    timeout,
		logger:     logging.OrDefault(logger),
	}
}

func (s *AIStrategy) Name() string {
	return "AI"
}

func (s *AIStrategy) Categorize(ctx context.Context, tx models.CanonicalTransaction) (string, bool, error) {
	if s.generator == nil || strings.TrimSpace(tx.Title) == "" {
		return "", false, nil
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	prompt := fmt.Sprintf(promptTemplate,
		tx.Title,
		tx.SignedAmount().StringFixed(2)+" "+tx.Amount.Currency,
		tx.Date.Format("2006-01-02"),
		tx.Note,
		strings.Join(s.categories, ", "))

	answer, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return "", false, &parsererror.CategorizationError{Transaction: tx.Title, Strategy: s.Name(), Err: err}
	}

	name := s.extractCategory(answer)
	if name == "" || name == models.CategoryUncategorized {
		s.logger.Debug("AI returned no usable category",
			logging.Field{Key: logging.FieldStrategy, Value: s.Name()})
		return "", false, nil
	}
	return name, true, nil
}

func (s *AIStrategy) extractCategory(answer string) string {
	for _, line := range strings.Split(answer, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "Category:") {
			continue
		}
		candidate := strings.Trim(strings.TrimSpace(strings.TrimPrefix(line, "Category:")), "[]\"'. ")
		for _, c := range s.categories {
			if strings.EqualFold(c, candidate) {
				return c
			}
		}
		return ""
	}

	for _, c := range s.categories {
		if strings.Contains(answer, c) {
			return c
		}
	}
	return ""
}
