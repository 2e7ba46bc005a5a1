package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidbugayov/Financeanalyzer-sub008/internal/logging"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/models"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	testFile := filepath.Join(dir, "test.yaml")
	writeFile(t, testFile, "x: 1")

	s := NewCategoryStore("", logging.NewMockLogger())

	path, err := s.FindConfigFile(testFile)
	require.NoError(t, err)
	assert.Equal(t, testFile, path)

	_, err = s.FindConfigFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadCategories(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []models.CategoryRule
		wantErr bool
	}{
		{
			name: "top-level categories key",
			content: `categories:
  - name: Продукты
    keywords: [магнит, лента]
    exclude: [интернет]
  - name: Связь
    keywords: [мтс]
`,
			want: []models.CategoryRule{
				{Name: "Продукты", Keywords: []string{"магнит", "лента"}, Exclude: []string{"интернет"}},
				{Name: "Связь", Keywords: []string{"мтс"}},
			},
		},
		{
			name: "bare list",
			content: `- name: Аптека
  keywords: [аптека]
`,
			want: []models.CategoryRule{{Name: "Аптека", Keywords: []string{"аптека"}}},
		},
		{
			name:    "malformed yaml",
			content: "categories: [\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "categories.yaml")
			writeFile(t, path, tt.content)

			rules, err := NewCategoryStore(path, logging.NewMockLogger()).LoadCategories()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, rules)
		})
	}
}

func TestLoadCategories_MissingFile(t *testing.T) {
	logger := logging.NewMockLogger()
	rules, err := NewCategoryStore(filepath.Join(t.TempDir(), "nope.yaml"), logger).LoadCategories()

	require.NoError(t, err)
	assert.Empty(t, rules)
	assert.True(t, logger.HasEntry("WARN", "Categories file not found"))
}

func TestSaveCategories_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "categories.yaml")
	s := NewCategoryStore(path, logging.NewMockLogger())
	rules := []models.CategoryRule{{Name: "Связь", Keywords: []string{"билайн"}}}

	require.NoError(t, s.SaveCategories(rules))

	loaded, err := s.LoadCategories()
	require.NoError(t, err)
	assert.Equal(t, rules, loaded)
}
