package store

import (
	"context"
	"sync"

	"github.com/davidbugayov/Financeanalyzer-sub008/internal/models"
)

// MockCategoryStore is an in-memory rule store for tests.
type MockCategoryStore struct {
	Categories          []models.CategoryRule
	LoadCategoriesError error
}

// LoadCategories returns the mock categories.
func (m *MockCategoryStore) LoadCategories() ([]models.CategoryRule, error) {
	if m.LoadCategoriesError != nil {
		return nil, m.LoadCategoriesError
	}
	return m.Categories, nil
}

// FailingSink accepts the first FailAfter transactions and rejects the rest
// with Err.
type FailingSink struct {
	FailAfter int
	Err       error

	mu       sync.Mutex
	accepted []models.CanonicalTransaction
}

func (f *FailingSink) Add(_ context.Context, tx models.CanonicalTransaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.accepted) >= f.FailAfter {
		return f.Err
	}
	f.accepted = append(f.accepted, tx)
	return nil
}

// Accepted returns the transactions stored before the failure point.
func (f *FailingSink) Accepted() []models.CanonicalTransaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.CanonicalTransaction(nil), f.accepted...)
}
