package container

import (
	"bufio"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidbugayov/Financeanalyzer-sub008/internal/config"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/importer"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/logging"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/models"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/parsererror"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/pdfparser"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/record"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/store"
)

const sberText = `ПАО Сбербанк
Выписка по счёту дебетовой карты
Расшифровка операций
ДАТА ОПЕРАЦИИ (МСК)
КАТЕГОРИЯ
СУММА В ВАЛЮТЕ СЧЁТА
ОСТАТОК СРЕДСТВ
01.01.2024 10:00 123 Супермаркеты -1 500,00 10 000,00
Карта ****1234
`

type fakeGenerator struct {
	closed   bool
	closeErr error
}

func (g *fakeGenerator) Generate(context.Context, string) (string, error) {
	return "Category: Кафе и рестораны", nil
}

func (g *fakeGenerator) Close() error {
	g.closed = true
	return g.closeErr
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.Categorization.RulesFile = filepath.Join(t.TempDir(), "missing.yaml")
	return cfg
}

func TestNewContainer_NilConfig(t *testing.T) {
	c, err := NewContainer(nil)
	require.Error(t, err)
	assert.Nil(t, c)
	assert.Contains(t, err.Error(), "configuration cannot be nil")
}

func TestNewContainer_Wiring(t *testing.T) {
	cfg := testConfig(t)
	logger := logging.NewMockLogger()

	c, err := NewContainer(cfg, WithLogger(logger))
	require.NoError(t, err)

	assert.Same(t, cfg, c.GetConfig())
	assert.Equal(t, logger, c.GetLogger())
	assert.NotNil(t, c.GetStore())
	assert.NotNil(t, c.GetDetector())
	assert.NotNil(t, c.GetManager())
	assert.Nil(t, c.GetCategoryFallback())

	var names []string
	for _, h := range c.GetRegistry().Handlers() {
		names = append(names, h.Name())
	}
	assert.Equal(t, []string{"Сбербанк", "Альфа-Банк", "Озон Банк", "CSV", "Excel", "Т-Банк"}, names)
	assert.NoError(t, c.Close())
}

func TestNewContainer_AIEnabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.AI.Enabled = true
	cfg.AI.APIKey = "test-key"
	gen := &fakeGenerator{}

	c, err := NewContainer(cfg, WithLogger(logging.NewMockLogger()), WithTextGenerator(gen))
	require.NoError(t, err)
	require.NotNil(t, c.GetCategoryFallback())

	name, ok, err := c.GetCategoryFallback().Categorize(context.Background(),
		models.CanonicalTransaction{Title: "ООО Ромашка"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.CategoryRestaurants, name)

	require.NoError(t, c.Close())
	assert.True(t, gen.closed)
}

func TestContainer_CloseError(t *testing.T) {
	cfg := testConfig(t)
	cfg.AI.Enabled = true
	gen := &fakeGenerator{closeErr: errors.New("boom")}

	c, err := NewContainer(cfg, WithLogger(logging.NewMockLogger()), WithTextGenerator(gen))
	require.NoError(t, err)
	assert.ErrorContains(t, c.Close(), "boom")
}

func TestContainer_ImportsPDFThroughManager(t *testing.T) {
	extractor := pdfparser.NewMockPDFExtractor(sberText, nil)
	c, err := NewContainer(testConfig(t), WithLogger(logging.NewMockLogger()), WithPDFExtractor(extractor))
	require.NoError(t, err)

	sink := store.NewMemorySink()
	res := c.GetManager().Import(context.Background(), importer.Source{
		Name:   "sberbank_january.pdf",
		Reader: bufio.NewReader(strings.NewReader("%PDF-1.7 fake")),
	}, sink, nil)

	success, ok := res.(importer.Success)
	require.True(t, ok, "got %#v", res)
	assert.Equal(t, 1, success.ImportedCount)
	assert.Equal(t, "Сбербанк", success.BankName)
	require.Len(t, extractor.Paths, 1)
	assert.Equal(t, models.CategoryGroceries, sink.Transactions()[0].Category)
}

func TestContainer_ExtractionFailure(t *testing.T) {
	extractor := pdfparser.NewMockPDFExtractor("", errors.New("pdftotext not installed"))
	c, err := NewContainer(testConfig(t), WithLogger(logging.NewMockLogger()), WithPDFExtractor(extractor))
	require.NoError(t, err)

	res := c.GetManager().Import(context.Background(), importer.Source{
		Name:   "ozon.pdf",
		Reader: bufio.NewReader(strings.NewReader("%PDF-1.7")),
	}, store.NewMemorySink(), nil)

	failure, ok := res.(importer.Failure)
	require.True(t, ok, "got %#v", res)
	assert.Equal(t, parsererror.KindExtraction, failure.Kind)
}

func TestTrigger(t *testing.T) {
	assert.Equal(t, record.FinalizeOnAmount, trigger(config.ParserConfig{FinalizeOn: config.FinalizeOnAmount}))
	assert.Equal(t, record.FinalizeOnNextDate, trigger(config.ParserConfig{FinalizeOn: config.FinalizeOnDate}))
	assert.Equal(t, record.FinalizeOnNextDate, trigger(config.ParserConfig{}))
}

func TestCSVConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.CSV.Delimiter = ";"
	cfg.CSV.DateFormat = "02.01.2006"
	cfg.CSV.DefaultCurrency = "USD"

	c, err := NewContainer(cfg, WithLogger(logging.NewMockLogger()))
	require.NoError(t, err)

	csvCfg := c.csvConfig()
	assert.Equal(t, ';', csvCfg.Delimiter)
	assert.Equal(t, "02.01.2006", csvCfg.DateLayout)
	assert.Equal(t, "USD", csvCfg.DefaultCurrency)
}
