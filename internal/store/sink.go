package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/gocarina/gocsv"

	"github.com/davidbugayov/Financeanalyzer-sub008/internal/dateutils"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/models"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/parsererror"
)

// Direction values of the CSV layout.
const (
	directionIncome  = "income"
	directionExpense = "expense"
)

// transactionRow is the CSV layout of an imported transaction.
type transactionRow struct {
	ID        string `csv:"id"`
	Date      string `csv:"date"`
	Title     string `csv:"title"`
	Amount    string `csv:"amount"`
	Currency  string `csv:"currency"`
	Direction string `csv:"direction"`
	Category  string `csv:"category"`
	Note      string `csv:"note"`
	Source    string `csv:"source"`
}

// MemorySink keeps transactions in memory.
type MemorySink struct {
	mu  sync.Mutex
	txs []models.CanonicalTransaction
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (m *MemorySink) Add(ctx context.Context, tx models.CanonicalTransaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txs = append(m.txs, tx)
	return nil
}

// Transactions returns a copy of the stored transactions in insertion order.
func (m *MemorySink) Transactions() []models.CanonicalTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.CanonicalTransaction(nil), m.txs...)
}

// Len returns the number of stored transactions.
func (m *MemorySink) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.txs)
}

// CSVSink appends transactions to a CSV stream. The header is written with
// the first row. It is safe for concurrent use.
type CSVSink struct {
	mu         sync.Mutex
	writer     *gocsv.SafeCSVWriter
	closer     io.Closer
	dateLayout string
	header     bool
}

// NewCSVSink writes rows to w using delimiter. An empty dateLayout uses the
// ISO date layout.
func NewCSVSink(w io.Writer, delimiter rune, dateLayout string) *CSVSink {
	cw := csv.NewWriter(w)
	if delimiter != 0 {
		cw.Comma = delimiter
	}
	if dateLayout == "" {
		dateLayout = dateutils.DateLayoutISO
	}
	return &CSVSink{
		writer:     gocsv.NewSafeCSVWriter(cw),
		dateLayout: dateLayout,
	}
}

// CreateCSVSink creates (or truncates) path and returns a sink writing to it.
// Close must be called to release the file.
func CreateCSVSink(path string, delimiter rune, dateLayout string) (*CSVSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, models.PermissionFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	s := NewCSVSink(f, delimiter, dateLayout)
	s.closer = f
	return s, nil
}

func (s *CSVSink) Add(ctx context.Context, tx models.CanonicalTransaction) error {
	if err := ctx.Err(); err != nil {
		return &parsererror.PersistError{TransactionID: tx.ID, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows := []*transactionRow{s.toRow(tx)}
	var err error
	if !s.header {
		err = gocsv.MarshalCSV(rows, s.writer)
	} else {
		err = gocsv.MarshalCSVWithoutHeaders(rows, s.writer)
	}
	if err == nil {
		s.writer.Flush()
		err = s.writer.Error()
	}
	if err != nil {
		return &parsererror.PersistError{TransactionID: tx.ID, Err: err}
	}
	s.header = true
	return nil
}

// Close flushes pending output and closes the underlying file, if any.
func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return err
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

func (s *CSVSink) toRow(tx models.CanonicalTransaction) *transactionRow {
	direction := directionIncome
	if tx.IsExpense {
		direction = directionExpense
	}
	return &transactionRow{
		ID:        tx.ID,
		Date:      tx.Date.Format(s.dateLayout),
		Title:     tx.Title,
		Amount:    tx.SignedAmount().StringFixed(2),
		Currency:  tx.Amount.Currency,
		Direction: direction,
		Category:  tx.Category,
		Note:      tx.Note,
		Source:    tx.Source,
	}
}
