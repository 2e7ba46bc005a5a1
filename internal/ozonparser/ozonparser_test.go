package ozonparser

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

const compactHeader = `ООО «ОЗОН Банк»
Выписка по счёту № 40817810000000000001
Период: с 01.03.2024 по 31.03.2024
Входящий остаток на начало периода 5 000,00 ₽
Дата операции Документ Назначение платежа Сумма операции
Российские рубли
`

func newTestParser(opts ...Option) *Parser {
	logger := logging.NewMockLogger()
	return NewParser(categorizer.NewDetector(nil, logger), logger, opts...)
}

func runImport(t *testing.T, text string) (importer.Result, *store.MemorySink) {
	t.Helper()
	im := importer.New(newTestParser(), importer.ReaderExtractor{}, logging.NewMockLogger())
	sink := store.NewMemorySink()
	res := im.Run(context.Background(), importer.Source{
		Name:   "ozon_statement.pdf",
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
		{
			name: "compact operation",
			line: "05.03.2024 14:22:10 4711 Оплата товаров Ozon -1 234,00 ₽",
			want: record.Line{Kind: record.KindPrimary, Date: "05.03.2024", Time: "14:22:10", DocNo: "4711",
				Text: "Оплата товаров Ozon", Sign: "-", Amount: "1 234,00"},
		},
		{
			name: "spread opener",
			line: "05.03.2024 14:22:10 4711",
			want: record.Line{Kind: record.KindPrimary, Date: "05.03.2024", Time: "14:22:10", DocNo: "4711"},
		},
		{"bare date", "05.03.2024", record.Line{Kind: record.KindDateAnchor, Date: "05.03.2024"}},
		{"time", "14:22:10", record.Line{Kind: record.KindTime, Time: "14:22:10"}},
		{"document number", "4711", record.Line{Kind: record.KindCode, DocNo: "4711"}},
		{"amount", "+500,00 ₽", record.Line{Kind: record.KindAmount, Sign: "+", Amount: "500,00"}},
		{"page number", "2", record.Line{Kind: record.KindSkip}},
		{"totals", "Итого: 1 000,00 ₽", record.Line{Kind: record.KindSkip}},
		{"page carry-over", "Перенесено со страницы 1", record.Line{Kind: record.KindSkip}},
		{"repeated header", "ДАТА И ВРЕМЯ ОПИСАНИЕ ОПЕРАЦИИ СУММА БАЛАНС", record.Line{Kind: record.KindSkip}},
		{"description", "Перевод через СБП", record.Line{Kind: record.KindText, Text: "Перевод через СБП"}},
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

	assert.NoError(t, p.ValidateFormat(parser.SplitLines(compactHeader)))
	assert.NoError(t, p.ValidateFormat([]string{"Озон Банк", "ИСТОРИЯ ОПЕРАЦИЙ", "за период с 01.03.2024 по 31.03.2024"}))

	var invalid *parsererror.InvalidFormatError
	err := p.ValidateFormat([]string{"Озон Банк", "Что-то ещё"})
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Msg, "statement title")

	err = p.ValidateFormat([]string{"ПАО Сбербанк", "Выписка по счёту", "Расшифровка операций"})
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Msg, "bank name")
}

func TestValidateFormat_StatisticsFile(t *testing.T) {
	p := newTestParser()

	err := p.ValidateFormat([]string{
		"Озон Банк",
		"Справка о движении средств",
		"Поступления 10 000,00",
		"Списания 7 500,00",
	})

	var statsErr *parsererror.StatisticsFileError
	require.ErrorAs(t, err, &statsErr)
	assert.Equal(t, BankName, statsErr.Bank)
	assert.Equal(t, parsererror.KindInvalidFormat, parsererror.Kind(err))
}

func TestSkipHeaders(t *testing.T) {
	p := newTestParser()

	c := parser.NewCursor(parser.SplitLines(compactHeader + "05.03.2024 14:22:10 4711 Покупка -10,00 ₽\n"))
	p.SkipHeaders(c)
	line, ok := c.Peek()
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(line, "05.03.2024"))

	c = parser.NewCursor([]string{"Озон Банк", "История операций", "за период с 01.03.2024 по 31.03.2024", "01.03.2024"})
	p.SkipHeaders(c)
	assert.Equal(t, 3, c.Pos())
}

func TestImport_CompactLayout(t *testing.T) {
	text := compactHeader +
		"05.03.2024 14:22:10 4711 Оплата товаров Ozon -1 234,00 ₽\n" +
		"06.03.2024 09:00:00 4712 Пополнение счёта +5 000,00 ₽\n" +
		"Страница 1 из 1\n"

	res, sink := runImport(t, text)

	success, ok := res.(importer.Success)
	require.True(t, ok, "got %#v", res)
	assert.Equal(t, 2, success.ImportedCount)
	assert.True(t, decimal.RequireFromString("3766").Equal(success.TotalAmount))

	txs := sink.Transactions()
	require.Len(t, txs, 2)
	assert.True(t, txs[0].IsExpense)
	assert.Equal(t, "Оплата товаров Ozon", txs[0].Title)
	assert.Equal(t, models.CategoryOzon, txs[0].Category)
	assert.Equal(t, "Импортировано автоматически из Озон Банка (документ 4711)", txs[0].Note)
	assert.Equal(t, SourceName, txs[0].Source)

	assert.False(t, txs[1].IsExpense)
	assert.Equal(t, models.CategoryTopUps, txs[1].Category)
}

func TestImport_SpreadLayout(t *testing.T) {
	text := compactHeader +
		"05.03.2024\n" +
		"14:22:10\n" +
		"4711\n" +
		"Аптека Ригла\n" +
		"-350,00 ₽\n" +
		"07.03.2024\n" +
		"10:00:00\n" +
		"4712\n" +
		"Возврат\n" +
		"+120,00 ₽\n"

	res, sink := runImport(t, text)

	_, ok := res.(importer.Success)
	require.True(t, ok, "got %#v", res)

	txs := sink.Transactions()
	require.Len(t, txs, 2)
	assert.Equal(t, "Аптека Ригла", txs[0].Title)
	assert.Equal(t, models.CategoryPharmacy, txs[0].Category)
	assert.True(t, decimal.NewFromInt(350).Equal(txs[0].Amount.Amount))
	assert.Contains(t, txs[0].Note, "документ 4711")
	assert.False(t, txs[1].IsExpense)
}

func TestImport_PageNumberBetweenLines(t *testing.T) {
	text := compactHeader +
		"05.03.2024\n" +
		"14:22:10\n" +
		"4711\n" +
		"Аптека Ригла\n" +
		"2\n" +
		"-350,00 ₽\n"

	res, sink := runImport(t, text)

	_, ok := res.(importer.Success)
	require.True(t, ok, "got %#v", res)

	txs := sink.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, "Аптека Ригла", txs[0].Title)
	assert.Contains(t, txs[0].Note, "документ 4711")
}

func TestImport_StatisticsFile(t *testing.T) {
	res, sink := runImport(t, "Озон Банк\nСправка о движении средств\nПоступления 10 000,00\n")

	failure, ok := res.(importer.Failure)
	require.True(t, ok, "got %#v", res)
	assert.Equal(t, parsererror.KindInvalidFormat, failure.Kind)
	assert.Equal(t, parsererror.MsgStatisticsFile, failure.Message)

	var statsErr *parsererror.StatisticsFileError
	require.ErrorAs(t, failure.Cause, &statsErr)
	assert.Equal(t, "ozon_statement.pdf", statsErr.FilePath)
	assert.Zero(t, sink.Len())
}
