package categorizer

import (
	"context"

	"github.com/davidbugayov/Financeanalyzer-sub008/internal/logging"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/models"
)

// CategorizationStrategy resolves a category for a transaction.
type CategorizationStrategy interface {
	// Categorize returns the category and whether this strategy found one.
	Categorize(ctx context.Context, tx models.CanonicalTransaction) (string, bool, error)

	// Name returns the name of this strategy for logging.
	Name() string
}

// KeywordStrategy categorizes with the keyword Detector using the title and
// the note of a transaction.
type KeywordStrategy struct {
	detector *Detector
}

// NewKeywordStrategy wraps detector as a strategy.
func NewKeywordStrategy(detector *Detector) *KeywordStrategy {
	return &KeywordStrategy{detector: detector}
}

func (s *KeywordStrategy) Name() string {
	return "Keyword"
}

func (s *KeywordStrategy) Categorize(_ context.Context, tx models.CanonicalTransaction) (string, bool, error) {
	name := s.detector.Detect("", tx.Title+" "+tx.Note)
	if name == models.CategoryUncategorized {
		return "", false, nil
	}
	return name, true, nil
}

// Chain runs strategies in order and returns the first category found.
// Strategy errors are logged and do not stop the chain.
type Chain struct {
	strategies []CategorizationStrategy
	logger     logging.Logger
}

// NewChain builds a Chain. Nil strategies are skipped.
func NewChain(logger logging.Logger, strategies ...CategorizationStrategy) *Chain {
	c := &Chain{logger: logging.OrDefault(logger)}
	for _, s := range strategies {
		if s != nil {
			c.strategies = append(c.strategies, s)
		}
	}
	return c
}

func (c *Chain) Name() string {
	return "Chain"
}

func (c *Chain) Categorize(ctx context.Context, tx models.CanonicalTransaction) (string, bool, error) {
	for _, s := range c.strategies {
		if err := ctx.Err(); err != nil {
			return "", false, err
		}
		name, ok, err := s.Categorize(ctx, tx)
		if err != nil {
			c.logger.WithError(err).Warn("Categorization strategy failed",
				logging.Field{Key: logging.FieldStrategy, Value: s.Name()})
			continue
		}
		if ok {
			c.logger.Debug("Transaction categorized",
				logging.Field{Key: logging.FieldStrategy, Value: s.Name()},
				logging.Field{Key: logging.FieldCategory, Value: name})
			return name, true, nil
		}
	}
	return "", false, nil
}
