// Package ozonparser reads Ozon Bank statements and account movement
// certificates extracted from PDF.
//
// Two layouts exist. The compact one holds a whole operation on one line:
//
//	05.03.2024 14:22:10 4711 Оплата товаров Ozon -1 234,00 ₽
//
// The spread one puts the date, the time, the document number, the
// description and the amount on lines of their own.
package ozonparser

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
	BankName    = "Озон Банк"
	SourceName  = "Озон"
	SourceColor = "#005BFF"

	notePrefix = "Импортировано автоматически из Озон Банка"
)

var (
	bankIndicators  = []string{"OZON", "ОЗОН", "Ozon Банк", "Озон Банк"}
	statementTitles = []string{
		"Выписка по счёту", "Выписка по счету", "Информация по счёту",
		"ИСТОРИЯ ОПЕРАЦИЙ", "Справка о движении средств",
	}

	compactRe  = regexp.MustCompile(`^(\d{2}\.\d{2}\.\d{4})\s+(\d{2}:\d{2}:\d{2})\s+(\d+)\s+(.+?)\s+([+\-−])\s*(\d[\d\s.,]*\d)\s*₽.*$`)
	openerRe   = regexp.MustCompile(`^(\d{2}\.\d{2}\.\d{4})\s+(\d{2}:\d{2}:\d{2})\s+(\d+)$`)
	dateRe     = regexp.MustCompile(`^(\d{2}\.\d{2}\.\d{4})$`)
	timeRe     = regexp.MustCompile(`^(\d{2}:\d{2}(?::\d{2})?)$`)
	docRe      = regexp.MustCompile(`^(\d+)$`)
	amountRe   = regexp.MustCompile(`^([+\-−])?\s*(\d[\d\s.,]*\d)\s*₽(?:\s+(.*))?$`)
	dateLineRe = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}`)
	periodRe   = regexp.MustCompile(`(?i)^за период с \d{2}\.\d{2}\.\d{4} по \d{2}\.\d{2}\.\d{4}$`)

	skipPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^Итого:`),
		regexp.MustCompile(`(?i)^Перенесено со страницы`),
		regexp.MustCompile(`(?i)^Продолжение на странице`),
		regexp.MustCompile(`(?i)^Обороты по сч[её]ту за период`),
		regexp.MustCompile(`(?i)^Входящий остаток на начало периода`),
		regexp.MustCompile(`(?i)^Исходящий остаток на конец периода`),
		regexp.MustCompile(`(?i)^Страница \d+ из \d+`),
		regexp.MustCompile(`^\d{1,3}$`),
		regexp.MustCompile(`(?i)^Сформировано .* \d{2}:\d{2}:\d{2}`),
		regexp.MustCompile(`(?i)^Подпись Банка`),
		regexp.MustCompile(`(?i)^Выписка по сч[её]ту №`),
		regexp.MustCompile(`(?i)^Период: с .* по `),
		regexp.MustCompile(`(?i)^ДАТА И ВРЕМЯ( МСК)? ОПИСАНИЕ ОПЕРАЦИИ СУММА`),
	}

	headerContinuations = []string{"Сумма операции", "Российские рубли", "Валюта"}
)

var tableCheck = parser.AnyOf("operations table",
	parser.LineContainsAll("operations table", "Дата", "Описание", "Сумма"),
	parser.LineContainsAll("operations table", "ДАТА И ВРЕМЯ", "ОПИСАНИЕ ОПЕРАЦИИ", "СУММА"),
	parser.ContainsAny("operations table", "История операций", "Входящий остаток"),
	parser.LineContainsAll("operations table", "Дата операции", "Документ"),
	parser.LineContainsAll("operations table", "Назначение платежа", "Сумма операции"),
	parser.LineContainsAll("operations table", "Российские рубли", "Валюта"),
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

// NewParser creates an Ozon Bank parser.
func NewParser(detector parser.CategoryDetector, logger logging.Logger, opts ...Option) *Parser {
	p := &Parser{
		Base:     parser.NewBase(BankName, logger),
		detector: detector,
		signs:    signresolver.New(),
		trigger:  record.FinalizeOnNextDate,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ValidateFormat requires the bank name, a statement title and an
// operations table. A movement summary without a table is reported as a
// StatisticsFileError.
func (p *Parser) ValidateFormat(preview []string) error {
	bank := parser.ContainsAny("bank name", bankIndicators...)
	title := parser.ContainsAny("statement title", statementTitles...)

	if bank.Matches(preview) && title.Matches(preview) && !tableCheck.Matches(preview) {
		joined := strings.Join(preview, "\n")
		if textutils.ContainsAllFold(joined, []string{"движени", "средств"}) {
			p.GetLogger().Warn("Document is a movement summary without operations")
			return &parsererror.StatisticsFileError{Bank: BankName}
		}
	}
	return parser.RequireAll(BankName, preview, bank, title, tableCheck)
}

// SkipHeaders moves past the operations table header and its continuation
// lines, then to the first dated line.
func (p *Parser) SkipHeaders(c *parser.Cursor) {
	if c.SkipUntil(isTableHeader, true) {
		for {
			line, ok := c.Peek()
			if !ok {
				break
			}
			line = textutils.NormalizeSpaces(line)
			if !textutils.ContainsAnyFold(line, headerContinuations) && !periodRe.MatchString(line) {
				break
			}
			c.Next()
		}
	} else {
		p.GetLogger().Debug("Operations table header not found")
	}
	c.SkipUntil(func(l string) bool {
		return dateLineRe.MatchString(strings.TrimSpace(l))
	}, false)
}

func (p *Parser) Trigger() record.Trigger {
	return p.trigger
}

// Classify turns a statement line into a record.Line.
func (p *Parser) Classify(raw string) record.Line {
	line := textutils.NormalizeSpaces(raw)
	if line == "" || textutils.MatchesAny(line, skipPatterns) || isRepeatedHeader(line) {
		return record.Line{Kind: record.KindSkip, Raw: raw}
	}

	if m := compactRe.FindStringSubmatch(line); m != nil {
		return record.Line{
			Kind:   record.KindPrimary,
			Raw:    raw,
			Date:   m[1],
			Time:   m[2],
			DocNo:  m[3],
			Text:   strings.TrimSpace(m[4]),
			Sign:   normalizeSign(m[5]),
			Amount: m[6],
		}
	}
	if m := openerRe.FindStringSubmatch(line); m != nil {
		return record.Line{Kind: record.KindPrimary, Raw: raw, Date: m[1], Time: m[2], DocNo: m[3]}
	}
	if m := dateRe.FindStringSubmatch(line); m != nil {
		return record.Line{Kind: record.KindDateAnchor, Raw: raw, Date: m[1]}
	}
	if m := timeRe.FindStringSubmatch(line); m != nil {
		return record.Line{Kind: record.KindTime, Raw: raw, Time: m[1]}
	}
	if m := docRe.FindStringSubmatch(line); m != nil {
		return record.Line{Kind: record.KindCode, Raw: raw, DocNo: m[1]}
	}
	if m := amountRe.FindStringSubmatch(line); m != nil {
		return record.Line{Kind: record.KindAmount, Raw: raw, Sign: normalizeSign(m[1]), Amount: m[2], Text: strings.TrimSpace(m[3])}
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

	title := textutils.NormalizeSpaces(strings.Join(rec.Description, " "))
	if title == "" {
		title = "Операция от " + dateutils.ToRussianFormat(date)
	}

	note := notePrefix
	if rec.DocNo != "" {
		note = fmt.Sprintf("%s (документ %s)", notePrefix, rec.DocNo)
	}

	category := models.CategoryUncategorized
	if p.detector != nil {
		category = p.detector.Detect("", title)
	}

	tx, err := models.NewTransactionBuilder().
		WithDate(date).
		WithAmount(amount, models.CurrencyRUB).
		AsExpense(p.signs.IsExpense(rec.Sign, title)).
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

func isTableHeader(raw string) bool {
	line := textutils.NormalizeSpaces(raw)
	switch {
	case textutils.ContainsFold(line, "Дата операции") &&
		textutils.ContainsAnyFold(line, []string{"Документ", "Назначение платежа"}):
		return true
	case textutils.ContainsAllFold(line, []string{"ДАТА И ВРЕМЯ", "ОПИСАНИЕ ОПЕРАЦИИ", "СУММА"}):
		return true
	}
	return textutils.ContainsFold(line, "История операций")
}

// isRepeatedHeader matches the table header repeated on every page.
func isRepeatedHeader(line string) bool {
	return textutils.ContainsAllFold(line, []string{"ОПИСАНИЕ ОПЕРАЦИИ", "СУММА", "БАЛАНС"}) ||
		textutils.ContainsAllFold(line, []string{"Дата операции", "Документ", "Назначение платежа"})
}

func normalizeSign(s string) string {
	if s == "−" {
		return "-"
	}
	return s
}
