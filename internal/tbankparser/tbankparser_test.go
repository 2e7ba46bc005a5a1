package tbankparser

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidbugayov/Financeanalyzer-sub008/internal/categorizer"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/importer"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/logging"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/models"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/parser"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/parsererror"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/record"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/store"
)

const header = `АО «ТБАНК»
Справка о движении средств
Иванов Иван Иванович
Дата и время операции Сумма операции Описание
`

func newTestParser(opts ...Option) *Parser {
	logger := logging.NewMockLogger()
	return NewParser(categorizer.NewDetector(nil, logger), logger, opts...)
}

func runImport(t *testing.T, p *Parser, text string) (importer.Result, *store.MemorySink) {
	t.Helper()
	im := importer.New(p, importer.ReaderExtractor{}, logging.NewMockLogger())
	sink := store.NewMemorySink()
	res := im.Run(context.Background(), importer.Source{
		Name:   "tbank.pdf",
		Reader: bufio.NewReader(strings.NewReader(text)),
	}, sink, nil)
	return res, sink
}

func TestClassify(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		name string
		line string
		want record.Line
	}{
		{"date", "05.03.2024", record.Line{Kind: record.KindDateAnchor, Date: "05.03.2024"}},
		{"time", "14:22", record.Line{Kind: record.KindTime, Time: "14:22"}},
		{"single amount with description", "+2 000,50 ₽ Пополнение",
			record.Line{Kind: record.KindAmount, Amount: "2 000,50", Sign: "+", Text: "Пополнение"}},
		{"two amounts", "-1 200,00 ₽ -1 200,00 ₽ Оплата в Пятёрочке",
			record.Line{Kind: record.KindAmount, Amount: "1 200,00", Sign: "-", Text: "Оплата в Пятёрочке"}},
		{"sign on card amount only", "350,00 P -350,00 P Кофейня",
			record.Line{Kind: record.KindAmount, Amount: "350,00", Sign: "-", Text: "Кофейня"}},
		{"bare amount", "-99,90 ₽", record.Line{Kind: record.KindAmount, Amount: "99,90", Sign: "-"}},
		{"footer", "Итого: 10 000,00 ₽", record.Line{Kind: record.KindSkip}},
		{"page number", "Страница 2 из 3", record.Line{Kind: record.KindSkip}},
		{"bank signature", "АО «Тинькофф Банк» БИК 044525974", record.Line{Kind: record.KindSkip}},
		{"text", "Перевод по номеру телефона", record.Line{Kind: record.KindText, Text: "Перевод по номеру телефона"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Classify(tt.line)
			got.Raw = ""
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateFormat(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		name    string
		preview []string
		wantErr string
	}{
		{"bank and title", parser.SplitLines(header), ""},
		{"bank with date and amount lines", []string{"TINKOFF", "01.02.2024", "-100,00 ₽ Кафе"}, ""},
		{"bank only", []string{"Тинькофф", "Иванов"}, "statement title or operations"},
		{"bank with date but no amount", []string{"ТБАНК", "01.02.2024"}, "statement title or operations"},
		{"another bank", []string{"ПАО Сбербанк", "Выписка по карте"}, "bank name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.ValidateFormat(tt.preview)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var invalid *parsererror.InvalidFormatError
			require.ErrorAs(t, err, &invalid)
			assert.Contains(t, invalid.Msg, tt.wantErr)
		})
	}
	assert.Equal(t, ValidationLines, p.PreviewLines())
}

func TestSkipHeaders(t *testing.T) {
	p := newTestParser()

	c := parser.NewCursor(parser.SplitLines(header + "05.03.2024\n14:22\n"))
	p.SkipHeaders(c)
	line, ok := c.Peek()
	require.True(t, ok)
	assert.Equal(t, "05.03.2024", line)

	lines := make([]string, MaxHeaderSkip+5)
	for i := range lines {
		lines[i] = "шапка"
	}
	lines = append(lines, "05.03.2024")
	c = parser.NewCursor(lines)
	p.SkipHeaders(c)
	assert.Equal(t, 0, c.Pos(), "cursor restored when no operation is within the window")
}

func TestImport_IncomeBySign(t *testing.T) {
	text := header +
		"05.03.2024\n" +
		"14:22\n" +
		"+2 000,50 ₽ Пополнение\n"

	res, sink := runImport(t, newTestParser(), text)

	success, ok := res.(importer.Success)
	require.True(t, ok, "got %#v", res)
	assert.Equal(t, 1, success.ImportedCount)
	require.Equal(t, 1, sink.Len())

	tx := sink.Transactions()[0]
	assert.False(t, tx.IsExpense)
	assert.True(t, decimal.RequireFromString("2000.50").Equal(tx.Amount.Amount))
	assert.Equal(t, "Пополнение", tx.Title)
	assert.Equal(t, models.CategoryTopUps, tx.Category)
	assert.Equal(t, "Время: 14:22", tx.Note)
	assert.Equal(t, SourceName, tx.Source)
}

func TestImport_Sequence(t *testing.T) {
	text := header +
		"05.03.2024\n" +
		"09:10\n" +
		"Оплата в\n" +
		"-450,00 ₽ -450,00 ₽ Кафе Додо\n" +
		"Страница 1 из 2\n" +
		"06.03.2024\n" +
		"-1 000,00 ₽\n" +
		"07.03.2024\n" +
		"12:00\n" +
		"300,00 ₽ Возврат покупки\n" +
		"Итого: 1 150,00 ₽\n"

	res, sink := runImport(t, newTestParser(), text)

	success, ok := res.(importer.Success)
	require.True(t, ok, "got %#v", res)
	assert.Equal(t, 3, success.ImportedCount)
	assert.True(t, decimal.RequireFromString("-1150").Equal(success.TotalAmount))

	txs := sink.Transactions()
	require.Len(t, txs, 3)

	assert.Equal(t, "Оплата в Кафе Додо", txs[0].Title)
	assert.True(t, txs[0].IsExpense)
	assert.Equal(t, models.CategoryRestaurants, txs[0].Category)

	assert.Equal(t, "Операция от 06.03.2024", txs[1].Title)
	assert.Empty(t, txs[1].Note)

	// Unsigned refund resolves to income by keyword.
	assert.False(t, txs[2].IsExpense)
}

func TestImport_DateTriggerKeepsTrailingText(t *testing.T) {
	text := header +
		"05.03.2024\n" +
		"-450,00 ₽\n" +
		"Кафе Додо\n"

	res, sink := runImport(t, newTestParser(WithTrigger(record.FinalizeOnNextDate)), text)

	_, ok := res.(importer.Success)
	require.True(t, ok, "got %#v", res)
	require.Equal(t, 1, sink.Len())
	assert.Equal(t, "Кафе Додо", sink.Transactions()[0].Title)
}
