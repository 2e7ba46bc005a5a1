// Package sberbankparser reads Sberbank debit card statements extracted from
// PDF.
//
// A transaction starts with a line carrying the operation date, time,
// authorization code, category, amount and balance. The lines that follow
// hold the processing date with the description, the card and free text.
package sberbankparser

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
	BankName     = "Сбербанк"
	SourceName   = "Сбер"
	SourceColor  = "#21A038"
	UnknownTitle = "Неизвестная операция"
)

const amountPattern = `\d+(?:\s\d{3})*(?:[.,]\d{1,2})?`

var (
	primaryRe = regexp.MustCompile(`^(\d{2}\.\d{2}\.\d{4})\s+(\d{2}:\d{2})\s+(\d+)\s+(.+?)\s+([+\-−]?` +
		amountPattern + `)\s+(` + amountPattern + `)$`)
	dateTimeRe    = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}\s+\d{2}:\d{2}`)
	descriptionRe = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}\s+(.+)$`)
	dateStartRe   = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}`)
	cardRe        = regexp.MustCompile(`(?i)^(?:карта|карте|карты|card)\s+\*{4}(\d{4})$`)

	tableHeaders = []string{
		"ДАТА ОПЕРАЦИИ (МСК)",
		"Дата обработки¹ и код авторизации",
		"Дата обработки и код авторизации",
		"КАТЕГОРИЯ",
		"Описание операции",
		"СУММА В ВАЛЮТЕ СЧЁТА",
		"Сумма в валюте",
		"операции²",
		"ОСТАТОК СРЕДСТВ",
		"В ВАЛЮТЕ СЧЁТА",
	}

	footerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^Выписка по сч[её]ту дебетовой карты Страница \d+ из \d+$`),
		regexp.MustCompile(`(?i)^Продолжение на следующей странице$`),
		regexp.MustCompile(`(?i)^Дата формирования \d{2}\.\d{2}\.\d{4}$`),
		regexp.MustCompile(`(?i)^ПАО Сбербанк\. Генеральная лицензия`),
		regexp.MustCompile(`(?i)^Денежные средства списываются`),
		regexp.MustCompile(`(?i)^отображаются только обработанные`),
		regexp.MustCompile(`(?i)^до 30 дней\.$`),
		regexp.MustCompile(`^\d$`),
		regexp.MustCompile(`(?i)^Дата списания / зачисления денежных средств на сч[её]т карты$`),
		regexp.MustCompile(`(?i)^По курсу банка на дату обработки операции$`),
		regexp.MustCompile(`(?i)^Управляющий директор`),
	}
)

// incomeKeywords mark an unsigned amount as income when found in the
// category.
var incomeKeywords = []string{"внесение наличных", "перевод"}

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

// NewParser creates a Sberbank parser. detector may be nil, in which case
// the bank category is kept as is.
func NewParser(detector parser.CategoryDetector, logger logging.Logger, opts ...Option) *Parser {
	p := &Parser{
		Base:     parser.NewBase(BankName, logger),
		detector: detector,
		signs:    signresolver.New(incomeKeywords...),
		trigger:  record.FinalizeOnNextDate,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ValidateFormat requires the bank name, the statement title and the
// operations table in the preview.
func (p *Parser) ValidateFormat(preview []string) error {
	return parser.RequireAll(BankName, preview,
		parser.ContainsAny("bank name", "СБЕР", "Сбербанк"),
		parser.ContainsAny("statement title", "Выписка по счёту", "Выписка по счету"),
		parser.AnyOf("operations table",
			parser.ContainsAny("operations table", "Расшифровка операций"),
			parser.LineContainsAll("operations table", "ДАТА ОПЕРАЦИИ", "КАТЕГОРИЯ")),
	)
}

// SkipHeaders moves past the "Расшифровка операций" marker, then to the
// first dated line.
func (p *Parser) SkipHeaders(c *parser.Cursor) {
	if !c.SkipUntil(func(l string) bool {
		return textutils.ContainsFold(l, "Расшифровка операций")
	}, true) {
		p.GetLogger().Debug("Operations marker not found, looking for the first dated line")
	}
	c.SkipUntil(func(l string) bool {
		return dateStartRe.MatchString(strings.TrimSpace(l))
	}, false)
}

func (p *Parser) Trigger() record.Trigger {
	return p.trigger
}

// Classify turns a statement line into a record.Line.
func (p *Parser) Classify(raw string) record.Line {
	line := textutils.NormalizeSpaces(raw)
	if isSkipped(line) {
		return record.Line{Kind: record.KindSkip, Raw: raw}
	}

	if m := primaryRe.FindStringSubmatch(line); m != nil {
		sign, amount := currencyutils.SplitSign(m[5])
		return record.Line{
			Kind:     record.KindPrimary,
			Raw:      raw,
			Date:     m[1],
			Time:     m[2],
			AuthCode: m[3],
			Category: strings.TrimSpace(m[4]),
			Amount:   amount,
			Sign:     sign,
			Balance:  m[6],
		}
	}
	if m := cardRe.FindStringSubmatch(line); m != nil {
		return record.Line{Kind: record.KindCard, Raw: raw, Card: m[1]}
	}
	if dateTimeRe.MatchString(line) {
		return record.Line{Kind: record.KindIgnore, Raw: raw}
	}
	if m := descriptionRe.FindStringSubmatch(line); m != nil {
		return record.Line{Kind: record.KindText, Raw: raw, Text: m[1]}
	}
	if dateStartRe.MatchString(line) {
		return record.Line{Kind: record.KindIgnore, Raw: raw}
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

	title := rec.Category
	if title == "" {
		title = UnknownTitle
	}
	details := strings.Join(rec.Description, " ")

	var card string
	if rec.Card != "" {
		card = "****" + rec.Card
	}
	note := textutils.JoinNonEmpty("; ",
		prefixed("Время", rec.Time),
		prefixed("Код", rec.AuthCode),
		prefixed("Баланс", rec.Balance),
		prefixed("Карта", card),
		prefixed("Детали", details),
	)

	category := rec.Category
	if p.detector != nil {
		category = p.detector.Detect(rec.Category, details)
	}

	tx, err := models.NewTransactionBuilder().
		WithDate(date).
		WithAmount(amount, models.CurrencyRUB).
		AsExpense(p.signs.IsExpense(rec.Sign, rec.Category)).
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

func isSkipped(line string) bool {
	if line == "" {
		return true
	}
	for _, h := range tableHeaders {
		if strings.EqualFold(line, h) {
			return true
		}
	}
	return textutils.MatchesAny(line, footerPatterns)
}

func prefixed(label, value string) string {
	if value == "" {
		return ""
	}
	return label + ": " + value
}
