// Package excelparser reads tabular statements exported to spreadsheets.
//
// SheetExtractor renders a worksheet as tab-separated lines and Parser maps
// the cells of each line through a column Config. Institutions with their
// own spreadsheet layout (see alfabankparser) reuse both with a preset
// Config.
package excelparser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/davidbugayov/Financeanalyzer-sub008/internal/dateutils"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/logging"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/models"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/parser"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/parsererror"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/textutils"
)

const (
	BankName    = "Excel"
	SourceColor = "#217346"

	// NoColumn marks a column the layout does not have.
	NoColumn = -1

	// HeaderProbeRows is how far SkipHeaders looks for a header row.
	HeaderProbeRows = 30

	categoryPrefix = "Категория:"
)

var (
	amountJunkRe = regexp.MustCompile(`[^0-9.\-]`)

	// Rows whose first cell starts a summary block.
	summaryMarkers = []string{"итого", "остаток", "оборот", "сумма"}
	emptyMarkers   = []string{"null", "n/a"}
)

// Columns maps transaction fields to zero-based cell positions.
type Columns struct {
	Date        int
	Description int
	Amount      int
	Currency    int
	Category    int
	Note        int
	IsExpense   int
}

// Config describes a spreadsheet layout.
type Config struct {
	BankName    string
	SourceName  string
	SourceColor string

	// Sheet selects the worksheet by name, SheetIndex by position.
	Sheet      string
	SheetIndex int

	// HeaderRows is the number of leading rows to skip when no header row
	// is probed.
	HeaderRows int
	// ProbeHeader looks for a header row naming the date and amount
	// columns and maps the columns from it.
	ProbeHeader bool

	Columns Columns

	DateLayouts      []string
	DecimalSeparator rune
	StripSymbols     []string

	// ExpenseFromColumn reads the direction from Columns.IsExpense, where
	// ExpenseTrueValue marks an expense. Otherwise a negative amount is an
	// expense.
	ExpenseFromColumn bool
	ExpenseTrueValue  string

	DefaultCurrency string
	// MinValues is how many of date, description and amount must be filled
	// for a row to count as a transaction.
	MinValues int
}

// DefaultConfig is the generic layout: date, description, amount and
// currency in the first four columns under one header row.
func DefaultConfig() Config {
	return Config{
		BankName:    BankName,
		SourceName:  BankName,
		SourceColor: SourceColor,
		HeaderRows:  1,
		Columns: Columns{
			Date:        0,
			Description: 1,
			Amount:      2,
			Currency:    3,
			Category:    NoColumn,
			Note:        NoColumn,
			IsExpense:   NoColumn,
		},
		DateLayouts: []string{
			dateutils.DateLayoutRussian,
			dateutils.DateLayoutUS,
			dateutils.DateLayoutISO,
			dateutils.DateLayoutSlashEU,
		},
		DecimalSeparator: '.',
		ExpenseTrueValue: "EXPENSE",
		DefaultCurrency:  models.CurrencyRUB,
		MinValues:        2,
	}
}

// Parser implements parser.Strategy and parser.LineParser for spreadsheet
// rows. Header probing updates the column mapping, so a Parser serves a
// single import.
type Parser struct {
	parser.Base
	cfg      Config
	detector parser.CategoryDetector
}

// NewParser creates a spreadsheet parser for cfg.
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
	if cfg.DecimalSeparator == 0 {
		cfg.DecimalSeparator = '.'
	}
	return &Parser{
		Base:     parser.NewBase(cfg.BankName, logger),
		cfg:      cfg,
		detector: detector,
	}
}

// Extractor returns the SheetExtractor matching the configured sheet.
func (p *Parser) Extractor() SheetExtractor {
	return SheetExtractor{Sheet: p.cfg.Sheet, Index: p.cfg.SheetIndex}
}

// Columns returns the current column mapping.
func (p *Parser) Columns() Columns {
	return p.cfg.Columns
}

// PreviewLines covers the header probe window.
func (p *Parser) PreviewLines() int {
	if p.cfg.ProbeHeader {
		return HeaderProbeRows
	}
	return 0
}

// ValidateFormat accepts a preview holding at least one row with enough
// cells for the mapped columns. A layout without a fixed amount column
// also needs a header row naming it.
func (p *Parser) ValidateFormat(preview []string) error {
	if p.cfg.ProbeHeader && p.cfg.Columns.Amount == NoColumn {
		if _, _, ok := probeHeader(preview); !ok {
			return &parsererror.InvalidFormatError{
				ExpectedFormat:       p.cfg.BankName,
				ActualContentSnippet: strings.Join(preview[:min(len(preview), 3)], " | "),
				Msg:                  "missing header row with date and amount columns",
			}
		}
	}
	need := max(p.cfg.MinValues, 1)
	for _, line := range preview {
		if countCells(line) >= need {
			return nil
		}
	}
	return &parsererror.InvalidFormatError{
		ExpectedFormat: p.cfg.BankName,
		Msg:            fmt.Sprintf("no row with at least %d cells", need),
	}
}

// SkipHeaders skips the configured header rows, or past the probed header
// row when ProbeHeader is set and one is found.
func (p *Parser) SkipHeaders(c *parser.Cursor) {
	if p.cfg.ProbeHeader {
		if row, cols, ok := probeHeader(c.Preview(HeaderProbeRows)); ok {
			p.applyProbe(cols)
			c.Seek(row + 1)
			p.GetLogger().Debug("Header row found",
				logging.Field{Key: logging.FieldLineNo, Value: row + 1})
			return
		}
		p.GetLogger().Debug("Header row not found, using fixed layout")
	}
	for i := 0; i < p.cfg.HeaderRows; i++ {
		if _, ok := c.Next(); !ok {
			return
		}
	}
}

// ParseLine converts one spreadsheet row into a transaction.
func (p *Parser) ParseLine(line string) (models.CanonicalTransaction, bool, error) {
	cells := strings.Split(line, CellSeparator)
	if strings.TrimSpace(strings.Join(cells, "")) == "" || isSummaryRow(cells) {
		return models.CanonicalTransaction{}, false, nil
	}

	cols := p.cfg.Columns
	dateStr := cell(cells, cols.Date)
	desc := textutils.NormalizeSpaces(cell(cells, cols.Description))
	amountStr := cell(cells, cols.Amount)

	filled := 0
	for _, v := range []string{dateStr, desc, amountStr} {
		if v != "" {
			filled++
		}
	}
	if filled < p.cfg.MinValues || dateStr == "" || amountStr == "" {
		return models.CanonicalTransaction{}, false, nil
	}

	date, err := p.parseDate(dateStr)
	if err != nil {
		return models.CanonicalTransaction{}, false, err
	}
	amount, err := p.parseAmount(amountStr)
	if err != nil {
		return models.CanonicalTransaction{}, false, err
	}

	currency := strings.ToUpper(cell(cells, cols.Currency))
	if !models.IsKnownCurrency(currency) {
		currency = p.cfg.DefaultCurrency
	}

	title := desc
	if title == "" {
		title = "Операция от " + dateutils.ToRussianFormat(date)
	}
	note := cell(cells, cols.Note)
	if note == "" {
		note = "Импортировано из " + p.cfg.BankName
	}

	bankCategory := strings.TrimSpace(strings.TrimPrefix(cell(cells, cols.Category), categoryPrefix))
	category := models.CategoryUncategorized
	if p.detector != nil {
		category = p.detector.Detect(bankCategory, desc)
	}

	tx, err := models.NewTransactionBuilder().
		WithDate(date).
		WithAmount(amount.Abs(), currency).
		AsExpense(p.isExpense(cells, amount)).
		WithTitle(title).
		WithCategory(category).
		WithNote(note).
		WithSource(p.cfg.SourceName, p.cfg.SourceColor).
		Build()
	if err != nil {
		return models.CanonicalTransaction{}, false, fmt.Errorf("failed to build %s transaction: %w", p.cfg.BankName, err)
	}
	return tx, true, nil
}

func (p *Parser) isExpense(cells []string, amount decimal.Decimal) bool {
	if p.cfg.ExpenseFromColumn {
		if v := cell(cells, p.cfg.Columns.IsExpense); v != "" {
			return strings.EqualFold(v, p.cfg.ExpenseTrueValue)
		}
	}
	return amount.IsNegative()
}

// parseDate tries the configured layouts and the common ones, then an Excel
// serial day number.
func (p *Parser) parseDate(s string) (time.Time, error) {
	t, _, err := dateutils.ParseDate(s, p.cfg.DateLayouts...)
	if err == nil {
		return t, nil
	}
	if serial, serr := strconv.ParseFloat(s, 64); serr == nil && serial > 0 {
		if t, terr := excelize.ExcelDateToTime(serial, false); terr == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

func (p *Parser) parseAmount(s string) (decimal.Decimal, error) {
	clean := strings.ReplaceAll(s, "−", "-")
	for _, sym := range p.cfg.StripSymbols {
		clean = strings.ReplaceAll(clean, sym, "")
	}
	clean = strings.Join(strings.Fields(textutils.NormalizeSpaces(clean)), "")
	if p.cfg.DecimalSeparator == ',' {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	} else {
		clean = strings.ReplaceAll(clean, ",", "")
	}
	clean = amountJunkRe.ReplaceAllString(clean, "")

	amount, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", s, err)
	}
	return amount, nil
}

func (p *Parser) applyProbe(cols probedColumns) {
	p.cfg.Columns.Date = cols.date
	p.cfg.Columns.Amount = cols.amount
	if cols.description != NoColumn {
		p.cfg.Columns.Description = cols.description
	}
	if cols.category != NoColumn {
		p.cfg.Columns.Category = cols.category
	}
}

type probedColumns struct {
	date, amount, description, category int
}

// probeHeader finds the header row among lines. A row naming the date, the
// amount and a description column wins; otherwise the first row naming the
// date and the amount is used.
func probeHeader(lines []string) (int, probedColumns, bool) {
	fallback := -1
	for i, line := range lines {
		text := strings.ToLower(strings.ReplaceAll(line, CellSeparator, " "))
		if !strings.Contains(text, "дата") || !strings.Contains(text, "сумма") {
			continue
		}
		if strings.Contains(text, "описание") || strings.Contains(text, "дата операции") ||
			strings.Contains(text, "альфа") || strings.Contains(text, "alfa") {
			if cols, ok := mapHeader(line); ok {
				return i, cols, true
			}
		}
		if fallback < 0 {
			fallback = i
		}
	}
	if fallback >= 0 {
		if cols, ok := mapHeader(lines[fallback]); ok {
			return fallback, cols, true
		}
	}
	return 0, probedColumns{}, false
}

func mapHeader(line string) (probedColumns, bool) {
	cols := probedColumns{date: NoColumn, amount: NoColumn, description: NoColumn, category: NoColumn}
	for i, raw := range strings.Split(line, CellSeparator) {
		v := strings.ToLower(strings.TrimSpace(raw))
		if v == "" {
			continue
		}
		if cols.date == NoColumn && strings.Contains(v, "дата") {
			cols.date = i
		}
		if cols.amount == NoColumn && strings.Contains(v, "сумма") {
			cols.amount = i
		}
		if cols.description == NoColumn &&
			textutils.ContainsAnyFold(v, []string{"описание", "примечание", "назначение"}) {
			cols.description = i
		}
		if cols.category == NoColumn && strings.Contains(v, "категория") {
			cols.category = i
		}
	}
	return cols, cols.date != NoColumn && cols.amount != NoColumn
}

func cell(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	v := strings.TrimSpace(cells[idx])
	for _, m := range emptyMarkers {
		if strings.EqualFold(v, m) {
			return ""
		}
	}
	return v
}

func countCells(line string) int {
	n := 0
	for _, c := range strings.Split(line, CellSeparator) {
		if strings.TrimSpace(c) != "" {
			n++
		}
	}
	return n
}

func isSummaryRow(cells []string) bool {
	first := strings.ToLower(strings.TrimSpace(cells[0]))
	for _, m := range summaryMarkers {
		if strings.HasPrefix(first, m) {
			return true
		}
	}
	return false
}
