package categorizer

import "github.com/davidbugayov/Financeanalyzer-sub008/internal/models"

// RuleStore loads the ordered category rule table.
type RuleStore interface {
	LoadCategories() ([]models.CategoryRule, error)
}
