package importer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidbugayov/Financeanalyzer-sub008/internal/logging"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/models"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/parser"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/parsererror"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/record"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/store"
)

// lineStrategy accepts documents mentioning TESTBANK and a statement title,
// starts after BEGIN and parses "tx;dd.mm.yyyy;amount;title" lines.
type lineStrategy struct {
	panicOn string
}

func (lineStrategy) BankName() string { return "Test Bank" }

func (lineStrategy) ValidateFormat(preview []string) error {
	return parser.RequireAll("Test Bank", preview,
		parser.ContainsAny("bank name", "TESTBANK"),
		parser.ContainsAny("statement title", "STATEMENT"))
}

func (lineStrategy) SkipHeaders(c *parser.Cursor) {
	c.SkipUntil(func(l string) bool { return l == "BEGIN" }, true)
}

func (s lineStrategy) ParseLine(line string) (models.CanonicalTransaction, bool, error) {
	if s.panicOn != "" && strings.Contains(line, s.panicOn) {
		panic("boom")
	}
	if !strings.HasPrefix(line, "tx;") {
		return models.CanonicalTransaction{}, false, nil
	}
	parts := strings.Split(line, ";")
	if len(parts) != 4 {
		return models.CanonicalTransaction{}, false, fmt.Errorf("bad line %q", line)
	}
	date, err := time.Parse("02.01.2006", parts[1])
	if err != nil {
		return models.CanonicalTransaction{}, false, err
	}
	amount, err := decimal.NewFromString(parts[2])
	if err != nil {
		return models.CanonicalTransaction{}, false, err
	}
	tx, err := models.NewTransactionBuilder().
		WithDate(date).
		WithAmount(amount.Abs(), models.CurrencyRUB).
		AsExpense(amount.IsNegative()).
		WithTitle(parts[3]).
		Build()
	return tx, err == nil, err
}

// recordStrategy uses bare "date"/"amount" lines.
type recordStrategy struct {
	lineStrategy
}

func (recordStrategy) Classify(line string) record.Line {
	switch {
	case strings.HasPrefix(line, "date "):
		return record.Line{Kind: record.KindDateAnchor, Raw: line, Date: strings.TrimPrefix(line, "date ")}
	case strings.HasPrefix(line, "amount "):
		sign, rest := "", strings.TrimPrefix(line, "amount ")
		if strings.HasPrefix(rest, "-") || strings.HasPrefix(rest, "+") {
			sign, rest = rest[:1], rest[1:]
		}
		return record.Line{Kind: record.KindAmount, Raw: line, Amount: rest, Sign: sign}
	case line == "":
		return record.Line{Kind: record.KindSkip}
	default:
		return record.Line{Kind: record.KindText, Raw: line, Text: line}
	}
}

func (recordStrategy) Finalize(rec record.Partial) (models.CanonicalTransaction, error) {
	date, err := time.Parse("02.01.2006", rec.Date)
	if err != nil {
		return models.CanonicalTransaction{}, err
	}
	amount, err := decimal.NewFromString(rec.Amount)
	if err != nil {
		return models.CanonicalTransaction{}, err
	}
	return models.NewTransactionBuilder().
		WithDate(date).
		WithAmount(amount, models.CurrencyRUB).
		AsExpense(rec.Sign != "+").
		WithTitle(strings.Join(rec.Description, " ")).
		Build()
}

func (recordStrategy) Trigger() record.Trigger { return record.FinalizeOnAmount }

type progressRecorder struct {
	mu     sync.Mutex
	events []Progress
}

func (p *progressRecorder) Report(pr Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, pr)
}

func (p *progressRecorder) currents() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]int, len(p.events))
	for i, e := range p.events {
		out[i] = e.Current
	}
	return out
}

type fallbackFunc func(ctx context.Context, tx models.CanonicalTransaction) (string, bool, error)

func (f fallbackFunc) Categorize(ctx context.Context, tx models.CanonicalTransaction) (string, bool, error) {
	return f(ctx, tx)
}

func source(text string) Source {
	return Source{Name: "statement.txt", Reader: bufio.NewReader(strings.NewReader(text))}
}

func statement(body ...string) string {
	head := []string{"TESTBANK", "STATEMENT", "header noise", "BEGIN"}
	return strings.Join(append(head, body...), "\n")
}

func newImporter(s parser.Strategy, opts ...Option) *Importer {
	return New(s, ReaderExtractor{}, logging.NewMockLogger(), opts...)
}

func assertMonotonic(t *testing.T, currents []int) {
	t.Helper()
	for i := 1; i < len(currents); i++ {
		assert.GreaterOrEqual(t, currents[i], currents[i-1], "progress went backwards: %v", currents)
	}
	for _, c := range currents {
		assert.LessOrEqual(t, c, ProgressTotal)
	}
}

func TestRun_LineParserSuccess(t *testing.T) {
	sink := store.NewMemorySink()
	progress := &progressRecorder{}

	res := newImporter(lineStrategy{}).Run(context.Background(), source(statement(
		"tx;01.01.2024;-100.50;Магнит",
		"not a transaction",
		"tx;02.01.2024;2000;Зарплата",
	)), sink, progress)

	success, ok := res.(Success)
	require.True(t, ok, "got %#v", res)
	assert.Equal(t, 2, success.ImportedCount)
	assert.Equal(t, 0, success.SkippedCount)
	assert.Equal(t, 0, success.MalformedCount)
	assert.Equal(t, "Test Bank", success.BankName)
	assert.True(t, decimal.RequireFromString("1899.5").Equal(success.TotalAmount), success.TotalAmount.String())
	assert.Equal(t, 2, sink.Len())

	currents := progress.currents()
	assert.Equal(t, []int{0, 5, 10, 15, 85}, currents)
	assert.Equal(t, "Starting import (Test Bank)", progress.events[0].Message)
	assert.Equal(t, "Saving 2 transactions", progress.events[4].Message)
}

func TestRun_RecordAccumulatorSuccess(t *testing.T) {
	sink := store.NewMemorySink()
	res := newImporter(recordStrategy{}).Run(context.Background(), source(statement(
		"date 03.02.2024",
		"Пополнение",
		"amount +2000.50",
		"date 04.02.2024",
		"Кафе",
		"amount -150",
	)), sink, nil)

	success, ok := res.(Success)
	require.True(t, ok, "got %#v", res)
	assert.Equal(t, 2, success.ImportedCount)

	txs := sink.Transactions()
	require.Len(t, txs, 2)
	assert.False(t, txs[0].IsExpense)
	assert.Equal(t, "Пополнение", txs[0].Title)
	assert.True(t, txs[1].IsExpense)
}

func TestRun_InvalidFormatStopsAfterExtraction(t *testing.T) {
	lines := make([]string, 0, 30)
	for i := 0; i < 25; i++ {
		lines = append(lines, "TESTBANK header line")
	}
	lines = append(lines, "tx;01.01.2024;-1;x")
	progress := &progressRecorder{}

	res := newImporter(lineStrategy{}).Run(context.Background(), source(strings.Join(lines, "\n")), store.NewMemorySink(), progress)

	failure, ok := res.(Failure)
	require.True(t, ok)
	assert.Equal(t, parsererror.KindInvalidFormat, failure.Kind)
	assert.Equal(t, parsererror.MsgInvalidFormat, failure.Message)
	assert.Equal(t, []int{0, 5}, progress.currents())

	var fmtErr *parsererror.InvalidFormatError
	require.ErrorAs(t, failure, &fmtErr)
	assert.Equal(t, "statement.txt", fmtErr.FilePath)
}

func TestRun_ValidationOnlySeesPreview(t *testing.T) {
	lines := []string{"TESTBANK"}
	for i := 0; i < 30; i++ {
		lines = append(lines, "filler")
	}
	lines = append(lines, "STATEMENT")

	res := newImporter(lineStrategy{}).Run(context.Background(), source(strings.Join(lines, "\n")), store.NewMemorySink(), nil)
	assert.Equal(t, parsererror.KindInvalidFormat, res.(Failure).Kind)

	res = newImporter(lineStrategy{}, WithValidationLines(40)).Run(context.Background(), source(strings.Join(lines, "\n")), store.NewMemorySink(), nil)
	assert.Equal(t, parsererror.KindNoTransactions, res.(Failure).Kind)
}

func TestRun_ExtractionFailures(t *testing.T) {
	tests := []struct {
		name      string
		extractor TextExtractor
		src       Source
	}{
		{
			name: "extractor error",
			extractor: ExtractorFunc(func(context.Context, io.Reader) (string, error) {
				return "", errors.New("pdftotext missing")
			}),
			src: source("x"),
		},
		{
			name:      "blank text",
			extractor: ReaderExtractor{},
			src:       source("  \n\t\n"),
		},
		{
			name:      "no reader",
			extractor: ReaderExtractor{},
			src:       Source{Name: "empty"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			progress := &progressRecorder{}
			im := New(lineStrategy{}, tt.extractor, logging.NewMockLogger())
			res := im.Run(context.Background(), tt.src, store.NewMemorySink(), progress)

			failure, ok := res.(Failure)
			require.True(t, ok)
			assert.Equal(t, parsererror.KindExtraction, failure.Kind)
			assert.Equal(t, parsererror.MsgExtraction, failure.Message)
			assert.Equal(t, []int{0}, progress.currents())
		})
	}
}

func TestRun_NoTransactions(t *testing.T) {
	res := newImporter(lineStrategy{}).Run(context.Background(), source(statement("nothing here")), store.NewMemorySink(), nil)

	failure, ok := res.(Failure)
	require.True(t, ok)
	assert.Equal(t, parsererror.KindNoTransactions, failure.Kind)
	assert.Equal(t, parsererror.MsgNoTransactions, failure.Message)
}

func TestRun_FaultIsolation(t *testing.T) {
	body := []string{
		"tx;01.01.2024;-10;a",
		"tx;32.01.2024;-10;bad date",
		"tx;02.01.2024;-10;b",
		"tx;03.01.2024;-10;c",
	}
	sink := store.NewMemorySink()
	res := newImporter(lineStrategy{}).Run(context.Background(), source(statement(body...)), sink, nil)

	success := res.(Success)
	assert.Equal(t, 3, success.ImportedCount)
	assert.Equal(t, 1, success.MalformedCount)
	assert.Equal(t, 3, sink.Len())
}

func TestRun_PanickingRecordIsIsolated(t *testing.T) {
	res := newImporter(lineStrategy{panicOn: "explode"}).Run(context.Background(), source(statement(
		"tx;01.01.2024;-10;a",
		"tx;02.01.2024;-10;explode",
	)), store.NewMemorySink(), nil)

	success := res.(Success)
	assert.Equal(t, 1, success.ImportedCount)
	assert.Equal(t, 1, success.MalformedCount)
}

func TestRun_PersistenceFailureConservation(t *testing.T) {
	var body []string
	for i := 1; i <= 5; i++ {
		body = append(body, fmt.Sprintf("tx;0%d.01.2024;-10;t%d", i, i))
	}
	sink := &store.FailingSink{FailAfter: 2, Err: errors.New("disk full")}
	logger := logging.NewMockLogger()

	res := New(lineStrategy{}, ReaderExtractor{}, logger).Run(context.Background(), source(statement(body...)), sink, nil)

	success := res.(Success)
	assert.Equal(t, 2, success.ImportedCount)
	assert.Equal(t, 3, success.SkippedCount)
	assert.Equal(t, 5, success.ImportedCount+success.SkippedCount)
	assert.True(t, decimal.NewFromInt(-20).Equal(success.TotalAmount))
	assert.Len(t, logger.GetEntriesByLevel("WARN"), 3)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	progress := &progressRecorder{}

	res := newImporter(lineStrategy{}).Run(ctx, source(statement("tx;01.01.2024;-1;a")), store.NewMemorySink(), progress)

	failure, ok := res.(Failure)
	require.True(t, ok)
	assert.Equal(t, parsererror.KindCancelled, failure.Kind)
	assert.ErrorIs(t, failure, context.Canceled)
	assert.Equal(t, []int{0}, progress.currents())
}

type panickingSkipper struct {
	lineStrategy
}

func (panickingSkipper) SkipHeaders(*parser.Cursor) {
	panic("index out of range")
}

func TestRun_PanicBecomesUnexpectedFailure(t *testing.T) {
	res := newImporter(panickingSkipper{}).Run(context.Background(), source(statement("tx;01.01.2024;-1;a")), store.NewMemorySink(), nil)

	failure, ok := res.(Failure)
	require.True(t, ok)
	assert.Equal(t, parsererror.KindUnexpected, failure.Kind)
	assert.Equal(t, parsererror.MsgUnexpected, failure.Message)
	assert.Contains(t, failure.Error(), "index out of range")
}

type nameOnly struct{}

func (nameOnly) BankName() string              { return "Nobody" }
func (nameOnly) ValidateFormat([]string) error { return nil }
func (nameOnly) SkipHeaders(*parser.Cursor)    {}

func TestRun_StrategyWithoutParsingCapability(t *testing.T) {
	res := newImporter(nameOnly{}).Run(context.Background(), source("x"), store.NewMemorySink(), nil)
	assert.Equal(t, parsererror.KindUnexpected, res.(Failure).Kind)
}

func TestRun_ProgressThrottledAndMonotonic(t *testing.T) {
	var body []string
	for i := 0; i < 200; i++ {
		body = append(body, fmt.Sprintf("tx;01.01.2024;-%d;t", i+1))
	}
	progress := &progressRecorder{}

	res := newImporter(lineStrategy{}, WithProgressEvery(10)).Run(context.Background(), source(statement(body...)), store.NewMemorySink(), progress)
	require.IsType(t, Success{}, res)

	currents := progress.currents()
	assertMonotonic(t, currents)
	// start, extract, validate, parse start, 20 parse ticks, persist
	assert.Len(t, currents, 25)
	assert.Equal(t, 85, currents[len(currents)-2])
	assert.Equal(t, 85, currents[len(currents)-1])
}

func TestRun_CategoryFallback(t *testing.T) {
	sink := store.NewMemorySink()
	var offered []string
	fallback := fallbackFunc(func(_ context.Context, tx models.CanonicalTransaction) (string, bool, error) {
		offered = append(offered, tx.Title)
		switch tx.Title {
		case "Аптека":
			return models.CategoryPharmacy, true, nil
		case "broken":
			return "", false, errors.New("quota exceeded")
		}
		return "", false, nil
	})

	res := newImporter(lineStrategy{}, WithCategoryFallback(fallback)).Run(context.Background(), source(statement(
		"tx;01.01.2024;-10;Аптека",
		"tx;02.01.2024;-10;broken",
		"tx;03.01.2024;-10;unknown",
	)), sink, nil)

	require.IsType(t, Success{}, res)
	assert.Equal(t, []string{"Аптека", "broken", "unknown"}, offered)

	txs := sink.Transactions()
	require.Len(t, txs, 3)
	assert.Equal(t, models.CategoryPharmacy, txs[0].Category)
	assert.Equal(t, models.CategoryUncategorized, txs[1].Category)
	assert.Equal(t, models.CategoryUncategorized, txs[2].Category)
}

func TestStream(t *testing.T) {
	im := newImporter(lineStrategy{})
	results := Collect(Stream(context.Background(), im, source(statement("tx;01.01.2024;-1;a")), store.NewMemorySink()))

	require.NotEmpty(t, results)
	last := results[len(results)-1]
	assert.True(t, IsTerminal(last))
	assert.IsType(t, Success{}, last)

	var currents []int
	for _, r := range results[:len(results)-1] {
		p, ok := r.(Progress)
		require.True(t, ok)
		assert.False(t, IsTerminal(r))
		currents = append(currents, p.Current)
	}
	assert.Equal(t, []int{0, 5, 10, 15, 85}, currents)
}

func TestStream_AbandonedConsumer(t *testing.T) {
	before := runtime.NumGoroutine()

	for i := 0; i < 50; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		ch := Stream(ctx, newImporter(lineStrategy{}),
			source(statement("tx;01.01.2024;-1;a", "tx;02.01.2024;-2;b")), store.NewMemorySink())
		first, ok := <-ch
		require.True(t, ok)
		assert.IsType(t, Progress{}, first)
		cancel()
	}

	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, 2*time.Second, 10*time.Millisecond, "stream goroutines still running")
}

func TestStream_CancelledClosesChannel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := Collect(Stream(ctx, newImporter(lineStrategy{}),
		source(statement("tx;01.01.2024;-1;a")), store.NewMemorySink()))

	for _, r := range results {
		switch v := r.(type) {
		case Failure:
			assert.Equal(t, parsererror.KindCancelled, v.Kind)
		case Success:
			t.Fatalf("cancelled stream reported success: %+v", v)
		}
	}
}

func TestBankName(t *testing.T) {
	assert.Equal(t, "Test Bank", newImporter(lineStrategy{}).BankName())
}
