// Package container wires the statement importer: logging, category
// detection, the institution handlers and the import manager.
package container

import (
	"context"
	"fmt"
	"time"

	"github.com/davidbugayov/Financeanalyzer-sub008/internal/alfabankparser"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/categorizer"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/config"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/csvparser"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/excelparser"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/formatdetect"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/importer"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/logging"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/models"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/ozonparser"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/parser"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/pdfparser"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/record"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/registry"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/sberbankparser"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/store"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/tbankparser"
)

// Container holds the application dependencies. It is immutable after
// creation; dependencies are reached through getters.
type Container struct {
	logger    logging.Logger
	config    *config.Config
	store     *store.CategoryStore
	detector  *categorizer.Detector
	fallback  importer.CategoryFallback
	generator categorizer.TextGenerator
	pdf       importer.TextExtractor
	registry  *registry.Registry
	manager   *registry.Manager
}

// Option overrides a dependency, mainly for tests.
type Option func(*options)

type options struct {
	logger       logging.Logger
	pdfExtractor pdfparser.PDFExtractor
	generator    categorizer.TextGenerator
}

// WithLogger replaces the logger built from the configuration.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithPDFExtractor replaces the pdftotext-based extractor.
func WithPDFExtractor(e pdfparser.PDFExtractor) Option {
	return func(o *options) { o.pdfExtractor = e }
}

// WithTextGenerator replaces the Gemini client used when AI categorization
// is enabled.
func WithTextGenerator(g categorizer.TextGenerator) Option {
	return func(o *options) { o.generator = g }
}

// NewContainer creates and wires all dependencies.
func NewContainer(cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	}

	categoryStore := store.NewCategoryStore(cfg.Categorization.RulesFile, logger)
	detector := categorizer.NewDetectorFromStore(categoryStore, logger,
		categorizer.WithFuzzyMaxDistance(cfg.Categorization.FuzzyMaxDistance))

	c := &Container{
		logger:   logger,
		config:   cfg,
		store:    categoryStore,
		detector: detector,
	}

	if cfg.AI.Enabled {
		generator := o.generator
		if generator == nil {
			client, err := categorizer.NewGeminiClient(context.Background(), cfg.AI.APIKey, cfg.AI.Model)
			if err != nil {
				return nil, fmt.Errorf("failed to create AI client: %w", err)
			}
			generator = client
		}
		c.generator = generator
		c.fallback = categorizer.NewChain(logger,
			categorizer.NewKeywordStrategy(detector),
			categorizer.NewAIStrategy(generator, detector.Categories(),
				time.Duration(cfg.AI.TimeoutSeconds)*time.Second, logger))
		logger.Info("AI categorization enabled", logging.Field{Key: "model", Value: cfg.AI.Model})
	} else {
		logger.Info("AI categorization disabled")
	}

	pdfExtractor := o.pdfExtractor
	if pdfExtractor == nil {
		pdfExtractor = pdfparser.NewRealPDFExtractor(cfg.PDF.Command, cfg.PDF.Mode)
	}
	c.pdf = pdfparser.NewTextExtractor(pdfExtractor, logger)

	c.registry = registry.NewRegistry(logger, c.handlers()...)
	c.manager = registry.NewManager(formatdetect.New(cfg.Detect.SniffBytes, logger), c.registry, logger)

	logger.Info("Container initialized successfully",
		logging.Field{Key: "handlers_count", Value: len(c.registry.Handlers())},
		logging.Field{Key: "ai_enabled", Value: cfg.AI.Enabled})

	return c, nil
}

// handlers returns the institution handlers in resolution order. Each
// factory builds a fresh parser, so stateful parsers serve one import.
func (c *Container) handlers() []registry.Handler {
	sniff := c.config.Import.HandlerSniffBytes
	handler := func(spec registry.HandlerSpec, factory registry.ImporterFactory) registry.Handler {
		return registry.NewKeywordHandler(spec.WithSniffBytes(sniff), factory, c.logger)
	}

	return []registry.Handler{
		handler(sberbankparser.HandlerSpec(), func(models.FileFormat) *importer.Importer {
			p := sberbankparser.NewParser(c.detector, c.logger,
				sberbankparser.WithTrigger(trigger(c.config.Parsers.Sberbank)))
			return c.newImporter(p, c.pdf)
		}),
		handler(alfabankparser.HandlerSpec(), func(models.FileFormat) *importer.Importer {
			p := alfabankparser.NewParser(c.detector, c.logger)
			return c.newImporter(p, p.Extractor())
		}),
		handler(ozonparser.HandlerSpec(), func(models.FileFormat) *importer.Importer {
			p := ozonparser.NewParser(c.detector, c.logger,
				ozonparser.WithTrigger(trigger(c.config.Parsers.Ozon)))
			return c.newImporter(p, c.pdf)
		}),
		handler(csvparser.HandlerSpec(), func(models.FileFormat) *importer.Importer {
			return c.newImporter(csvparser.NewParser(c.csvConfig(), c.detector, c.logger), importer.ReaderExtractor{})
		}),
		handler(excelparser.HandlerSpec(), func(models.FileFormat) *importer.Importer {
			p := excelparser.NewParser(excelparser.DefaultConfig(), c.detector, c.logger)
			return c.newImporter(p, p.Extractor())
		}),
		handler(tbankparser.HandlerSpec(), func(models.FileFormat) *importer.Importer {
			p := tbankparser.NewParser(c.detector, c.logger,
				tbankparser.WithTrigger(trigger(c.config.Parsers.TBank)))
			return c.newImporter(p, c.pdf)
		}),
	}
}

func (c *Container) newImporter(strategy parser.Strategy, extractor importer.TextExtractor) *importer.Importer {
	opts := []importer.Option{
		importer.WithValidationLines(c.config.Import.ValidationLines),
		importer.WithProgressEvery(c.config.Import.ProgressEvery),
	}
	if c.fallback != nil {
		opts = append(opts, importer.WithCategoryFallback(c.fallback))
	}
	return importer.New(strategy, extractor, c.logger, opts...)
}

func (c *Container) csvConfig() csvparser.Config {
	cfg := csvparser.DefaultConfig()
	if d := []rune(c.config.CSV.Delimiter); len(d) == 1 {
		cfg.Delimiter = d[0]
	}
	if c.config.CSV.DateFormat != "" {
		cfg.DateLayout = c.config.CSV.DateFormat
	}
	if c.config.CSV.DefaultCurrency != "" {
		cfg.DefaultCurrency = c.config.CSV.DefaultCurrency
	}
	return cfg
}

func trigger(pc config.ParserConfig) record.Trigger {
	if pc.FinalizeOn == config.FinalizeOnAmount {
		return record.FinalizeOnAmount
	}
	return record.FinalizeOnNextDate
}

// GetLogger returns the container's logger.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the configuration the container was built from.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the category rule store.
func (c *Container) GetStore() *store.CategoryStore {
	return c.store
}

// GetDetector returns the category detector shared by all parsers.
func (c *Container) GetDetector() *categorizer.Detector {
	return c.detector
}

// GetCategoryFallback returns the post-parse categorizer, or nil when AI
// categorization is disabled.
func (c *Container) GetCategoryFallback() importer.CategoryFallback {
	return c.fallback
}

// GetRegistry returns the handler registry.
func (c *Container) GetRegistry() *registry.Registry {
	return c.registry
}

// GetManager returns the import manager.
func (c *Container) GetManager() *registry.Manager {
	return c.manager
}

// Close releases the AI client, if any.
func (c *Container) Close() error {
	if closer, ok := c.generator.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("failed to close AI client: %w", err)
		}
	}
	c.logger.Info("Container closed")
	return nil
}
