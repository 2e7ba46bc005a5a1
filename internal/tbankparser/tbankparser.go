// Package tbankparser reads T-Bank (Tinkoff) statements extracted from PDF.
//
// Each operation is laid out over several lines: a bare date, a bare time,
// optional description lines and finally the amount line, which may carry
// the operation amount, the card amount and the description together.
package tbankparser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/davidbugayov/Financeanalyzer-sub008/internal/currencyutils"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/dateutils"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/logging"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/models"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/parser"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/parsererror"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/record"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/signresolver"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/textutils"
)

const (
	BankName    = "Т-Банк"
	SourceName  = "Т-Банк"
	SourceColor = "#FFDD2D"

	ValidationLines = 40
	MaxHeaderSkip   = 300
)

var (
	indicators = []string{
		"TINKOFF", "ТИНЬКОФФ", "Тинькофф Банк", "Тинькофф",
		"ТБАНК", "TBANK", "АО «ТБАНК»", "АО «Тинькофф Банк»",
	}
	statementTitles = []string{
		"Выписка по счетам", "Выписка по карте", "Операции по счету", "История операций",
		"Справка о движении средств", "Движение средств", "Платежное поручение",
		"С движением средств", "Справка о движении",
	}

	dateRe      = regexp.MustCompile(`^(\d{2}\.\d{2}\.\d{4})$`)
	timeRe      = regexp.MustCompile(`^(\d{2}:\d{2})$`)
	twoAmountRe = regexp.MustCompile(`^([+\-−]?)\s*(\d[\d\s.,]*\d)\s*[₽PР]\s+([+\-−]?)\s*(\d[\d\s.,]*\d)\s*[₽PР]\s+(.+)$`)
	amountRe    = regexp.MustCompile(`^([+\-−]?)\s*(\d[\d\s.,]*\d)\s*[₽PР](?:\s+(.*))?$`)

	ignorePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^Итого:`),
		regexp.MustCompile(`(?i)^Баланс на начало периода`),
		regexp.MustCompile(`(?i)^Баланс на конец периода`),
		regexp.MustCompile(`(?i)^Выписка сформирована:`),
		regexp.MustCompile(`(?i)^Пополнения:`),
		regexp.MustCompile(`(?i)^Расходы:`),
		regexp.MustCompile(`(?i)^С уважением,`),
		regexp.MustCompile(`(?i)^Руководитель`),
		regexp.MustCompile(`(?i)^АО «Тинькофф Банк»`),
		regexp.MustCompile(`(?i)^БИК`),
		regexp.MustCompile(`(?i)^Страница \d+ из \d+`),
	}
)

// Parser implements parser.Strategy and parser.RecordAccumulator.
type Parser struct {
	parser.Base
	detector parser.CategoryDetector
	signs    *signresolver.Resolver
	trigger  record.Trigger
}

// Option configures a Parser.
type Option func(*Parser)

// WithTrigger selects when a record is finished.
func WithTrigger(t record.Trigger) Option {
	return func(p *Parser) {
		p.trigger = t
	}
}

// NewParser creates a T-Bank parser. A record is finished as soon as its
// amount line is read unless WithTrigger says otherwise.
func NewParser(detector parser.CategoryDetector, logger logging.Logger, opts ...Option) *Parser {
	p := &Parser{
		Base:     parser.NewBase(BankName, logger),
		detector: detector,
		signs:    signresolver.New(),
		trigger:  record.FinalizeOnAmount,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PreviewLines implements parser.PreviewSizer.
func (p *Parser) PreviewLines() int {
	return ValidationLines
}

// ValidateFormat requires a T-Bank marker and either a statement title or
// both a date line and an amount line.
func (p *Parser) ValidateFormat(preview []string) error {
	return parser.RequireAll(BankName, preview,
		parser.ContainsAny("bank name", indicators...),
		parser.AnyOf("statement title or operations",
			parser.ContainsAny("statement title", statementTitles...),
			parser.AllOf("operations",
				parser.AnyLineMatches("date line", dateRe),
				parser.AnyLineMatches("amount line", amountRe))),
	)
}

// SkipHeaders stops at the first date or amount line within MaxHeaderSkip
// lines. When there is none the cursor stays where it was.
func (p *Parser) SkipHeaders(c *parser.Cursor) {
	start := c.Pos()
	for i := 0; i < MaxHeaderSkip; i++ {
		line, ok := c.Peek()
		if !ok {
			break
		}
		line = textutils.NormalizeSpaces(line)
		if dateRe.MatchString(line) || amountRe.MatchString(line) {
			return
		}
		c.Next()
	}
	p.GetLogger().Debug("No operations found in the header window, starting from the top")
	c.Seek(start)
}

func (p *Parser) Trigger() record.Trigger {
	return p.trigger
}

// Classify turns a statement line into a record.Line.
func (p *Parser) Classify(raw string) record.Line {
	line := textutils.NormalizeSpaces(raw)
	if line == "" || textutils.MatchesAny(line, ignorePatterns) {
		return record.Line{Kind: record.KindSkip, Raw: raw}
	}

	if m := dateRe.FindStringSubmatch(line); m != nil {
		return record.Line{Kind: record.KindDateAnchor, Raw: raw, Date: m[1]}
	}
	if m := timeRe.FindStringSubmatch(line); m != nil {
		return record.Line{Kind: record.KindTime, Raw: raw, Time: m[1]}
	}
	if m := twoAmountRe.FindStringSubmatch(line); m != nil {
		sign := m[1]
		if sign == "" {
			sign = m[3]
		}
		return record.Line{Kind: record.KindAmount, Raw: raw, Amount: m[2], Sign: sign, Text: strings.TrimSpace(m[5])}
	}
	if m := amountRe.FindStringSubmatch(line); m != nil {
		return record.Line{Kind: record.KindAmount, Raw: raw, Amount: m[2], Sign: m[1], Text: strings.TrimSpace(m[3])}
	}
	return record.Line{Kind: record.KindText, Raw: raw, Text: line}
}

// Finalize converts a finished record into a transaction.
func (p *Parser) Finalize(rec record.Partial) (models.CanonicalTransaction, error) {
	date, err := dateutils.MustParseRussian(rec.Date)
	if err != nil {
		return models.CanonicalTransaction{}, &parsererror.ParseError{Parser: BankName, Field: "date", Value: rec.Date, Err: err}
	}
	amount, err := currencyutils.ParseAmount(rec.Amount)
	if err != nil {
		return models.CanonicalTransaction{}, &parsererror.ParseError{Parser: BankName, Field: "amount", Value: rec.Amount, Err: err}
	}

	description := textutils.NormalizeSpaces(strings.Join(rec.Description, " "))
	title := description
	if title == "" {
		title = "Операция от " + dateutils.ToRussianFormat(date)
	}

	category := models.CategoryUncategorized
	if p.detector != nil {
		category = p.detector.Detect("", title)
	}

	var note string
	if rec.Time != "" {
		note = "Время: " + rec.Time
	}

	tx, err := models.NewTransactionBuilder().
		WithDate(date).
		WithAmount(amount, models.CurrencyRUB).
		AsExpense(p.signs.IsExpense(rec.Sign, description)).
		WithTitle(title).
		WithCategory(category).
		WithNote(note).
		WithSource(SourceName, SourceColor).
		Build()
	if err != nil {
		return models.CanonicalTransaction{}, fmt.Errorf("failed to build %s transaction: %w", BankName, err)
	}
	return tx, nil
}
