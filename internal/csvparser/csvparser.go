// Package csvparser reads transactions from delimited text exports,
// including the CSV written by this tool.
package csvparser

import (
	"encoding/csv"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/davidbugayov/Financeanalyzer-sub008/internal/currencyutils"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/dateutils"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/logging"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/models"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/parser"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/parsererror"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/textutils"
)

const (
	BankName    = "CSV"
	SourceColor = "#607D8B"

	// NoColumn marks a column the layout does not have.
	NoColumn = -1

	defaultNote = "Импортировано из CSV-файла"
)

var fallbackDelimiters = []rune{',', ';', '\t'}

// Config describes a delimited layout. Column positions are zero-based.
type Config struct {
	BankName    string
	SourceName  string
	SourceColor string

	// Delimiter is tried first; ',', ';' and tab follow.
	Delimiter rune
	HasHeader bool

	DateColumn        int
	DescriptionColumn int
	AmountColumn      int
	CurrencyColumn    int
	CategoryColumn    int
	NoteColumn        int
	SourceColumn      int

	// ExpenseColumn holds ExpenseTrueValue for expenses. Without it a
	// negative amount is an expense.
	ExpenseColumn    int
	ExpenseTrueValue string

	// Rows whose StatusColumn is not one of ValidStatuses are skipped.
	StatusColumn  int
	ValidStatuses []string

	// DateLayout is tried before the common layouts.
	DateLayout      string
	DefaultCurrency string
	MinColumns      int
}

// DefaultConfig matches the CSV written by store.CSVSink:
// id, date, title, amount, currency, direction, category, note, source.
func DefaultConfig() Config {
	return Config{
		BankName:          BankName,
		SourceName:        BankName,
		SourceColor:       SourceColor,
		Delimiter:         ',',
		HasHeader:         true,
		DateColumn:        1,
		DescriptionColumn: 2,
		AmountColumn:      3,
		CurrencyColumn:    4,
		ExpenseColumn:     5,
		ExpenseTrueValue:  "expense",
		CategoryColumn:    6,
		NoteColumn:        7,
		SourceColumn:      8,
		StatusColumn:      NoColumn,
		DateLayout:        dateutils.DateLayoutExport,
		DefaultCurrency:   models.CurrencyRUB,
		MinColumns:        4,
	}
}

// Parser implements parser.Strategy and parser.LineParser. The delimiter is
// detected during validation, so a Parser serves a single import.
type Parser struct {
	parser.Base
	cfg       Config
	detector  parser.CategoryDetector
	delimiter rune
}

// NewParser creates a CSV parser for cfg.
func NewParser(cfg Config, detector parser.CategoryDetector, logger logging.Logger) *Parser {
	if cfg.BankName == "" {
		cfg.BankName = BankName
	}
	if cfg.SourceName == "" {
		cfg.SourceName = cfg.BankName
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = models.CurrencyRUB
	}
	if cfg.MinColumns <= 0 {
		cfg.MinColumns = 3
	}
	return &Parser{
		Base:     parser.NewBase(cfg.BankName, logger),
		cfg:      cfg,
		detector: detector,
	}
}

// Delimiter returns the detected delimiter, or 0 before validation.
func (p *Parser) Delimiter() rune {
	return p.delimiter
}

// ValidateFormat detects the delimiter from the first non-empty line and
// requires it to yield at least MinColumns fields.
func (p *Parser) ValidateFormat(preview []string) error {
	first := ""
	for _, line := range preview {
		if strings.TrimSpace(line) != "" {
			first = line
			break
		}
	}
	for _, d := range p.candidates() {
		fields, err := split(first, d)
		if err == nil && len(fields) >= p.cfg.MinColumns {
			p.delimiter = d
			p.GetLogger().Debug("Detected CSV delimiter",
				logging.Field{Key: logging.FieldDelimiter, Value: string(d)})
			return nil
		}
	}
	return &parsererror.InvalidFormatError{
		ExpectedFormat:       p.cfg.BankName,
		ActualContentSnippet: first,
		Msg:                  fmt.Sprintf("fewer than %d columns", p.cfg.MinColumns),
	}
}

// SkipHeaders skips the header line when the layout has one.
func (p *Parser) SkipHeaders(c *parser.Cursor) {
	if !p.cfg.HasHeader {
		return
	}
	c.SkipUntil(func(l string) bool { return strings.TrimSpace(l) != "" }, true)
}

// ParseLine converts one delimited row into a transaction.
func (p *Parser) ParseLine(line string) (models.CanonicalTransaction, bool, error) {
	if strings.TrimSpace(line) == "" {
		return models.CanonicalTransaction{}, false, nil
	}
	fields, err := split(line, p.delimiterFor(line))
	if err != nil {
		return models.CanonicalTransaction{}, false, fmt.Errorf("failed to split row: %w", err)
	}
	if len(fields) < p.cfg.MinColumns {
		p.GetLogger().Debug("Skipping row with too few columns",
			logging.Field{Key: logging.FieldCount, Value: len(fields)})
		return models.CanonicalTransaction{}, false, nil
	}
	if !p.validStatus(fields) {
		p.GetLogger().Debug("Skipping row by status",
			logging.Field{Key: logging.FieldStatus, Value: field(fields, p.cfg.StatusColumn)})
		return models.CanonicalTransaction{}, false, nil
	}

	date, err := p.findDate(fields)
	if err != nil {
		return models.CanonicalTransaction{}, false, err
	}
	rawAmount := field(fields, p.cfg.AmountColumn)
	amount, err := currencyutils.ParseAmount(rawAmount)
	if err != nil {
		return models.CanonicalTransaction{}, false, &parsererror.ParseError{Parser: p.cfg.BankName, Field: "amount", Value: rawAmount, Err: err}
	}

	desc := textutils.NormalizeSpaces(field(fields, p.cfg.DescriptionColumn))
	title := desc
	if title == "" {
		title = "Операция от " + dateutils.ToRussianFormat(date)
	}

	currency := strings.ToUpper(field(fields, p.cfg.CurrencyColumn))
	if !models.IsKnownCurrency(currency) {
		currency = p.cfg.DefaultCurrency
	}

	note := field(fields, p.cfg.NoteColumn)
	if note == "" {
		note = defaultNote
	}
	source := field(fields, p.cfg.SourceColumn)
	if source == "" {
		source = p.cfg.SourceName
	}

	category := models.CategoryUncategorized
	if p.detector != nil {
		category = p.detector.Detect(field(fields, p.cfg.CategoryColumn), desc)
	}

	tx, err := models.NewTransactionBuilder().
		WithDate(date).
		WithAmount(amount.Abs(), currency).
		AsExpense(p.isExpense(fields, amount)).
		WithTitle(title).
		WithCategory(category).
		WithNote(note).
		WithSource(source, p.cfg.SourceColor).
		Build()
	if err != nil {
		return models.CanonicalTransaction{}, false, fmt.Errorf("failed to build %s transaction: %w", p.cfg.BankName, err)
	}
	return tx, true, nil
}

// findDate reads the configured date column, or the first field that looks
// like a date when the column holds something else.
func (p *Parser) findDate(fields []string) (time.Time, error) {
	candidate := field(fields, p.cfg.DateColumn)
	if !dateutils.LooksLikeDate(candidate, p.cfg.DateLayout) {
		candidate = ""
		for _, f := range fields {
			if dateutils.LooksLikeDate(f, p.cfg.DateLayout) {
				candidate = f
				break
			}
		}
	}
	if candidate == "" {
		return time.Time{}, fmt.Errorf("no date found in row")
	}
	t, _, err := dateutils.ParseDate(candidate, p.cfg.DateLayout)
	return t, err
}

func (p *Parser) isExpense(fields []string, amount decimal.Decimal) bool {
	if v := field(fields, p.cfg.ExpenseColumn); v != "" {
		return strings.EqualFold(v, p.cfg.ExpenseTrueValue)
	}
	return amount.IsNegative()
}

func (p *Parser) validStatus(fields []string) bool {
	if p.cfg.StatusColumn == NoColumn || len(p.cfg.ValidStatuses) == 0 {
		return true
	}
	status := field(fields, p.cfg.StatusColumn)
	return slices.ContainsFunc(p.cfg.ValidStatuses, func(s string) bool {
		return strings.EqualFold(s, status)
	})
}

func (p *Parser) candidates() []rune {
	out := make([]rune, 0, len(fallbackDelimiters)+1)
	if p.cfg.Delimiter != 0 {
		out = append(out, p.cfg.Delimiter)
	}
	for _, d := range fallbackDelimiters {
		if !slices.Contains(out, d) {
			out = append(out, d)
		}
	}
	return out
}

// delimiterFor prefers the detected delimiter and falls back to the first
// candidate present in line.
func (p *Parser) delimiterFor(line string) rune {
	if p.delimiter != 0 && strings.ContainsRune(line, p.delimiter) {
		return p.delimiter
	}
	for _, d := range p.candidates() {
		if strings.ContainsRune(line, d) {
			return d
		}
	}
	return p.candidates()[0]
}

func split(line string, delimiter rune) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.Comma = delimiter
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	fields, err := r.Read()
	if err != nil {
		return nil, err
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields, nil
}

func field(fields []string, idx int) string {
	if idx < 0 || idx >= len(fields) {
		return ""
	}
	return fields[idx]
}
