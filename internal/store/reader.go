package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/davidbugayov/Financeanalyzer-sub008/internal/dateutils"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/models"
)

// ReadTransactionsCSV reads transactions in the layout written by CSVSink.
// An empty dateLayout uses the ISO date layout.
func ReadTransactionsCSV(r io.Reader, delimiter rune, dateLayout string) ([]models.CanonicalTransaction, error) {
	cr := csv.NewReader(r)
	if delimiter != 0 {
		cr.Comma = delimiter
	}
	cr.LazyQuotes = true
	if dateLayout == "" {
		dateLayout = dateutils.DateLayoutISO
	}

	var rows []*transactionRow
	if err := gocsv.UnmarshalCSV(cr, &rows); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}

	txs := make([]models.CanonicalTransaction, 0, len(rows))
	for i, row := range rows {
		tx, err := fromRow(row, dateLayout)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// ReadTransactionsFile opens path and reads it with ReadTransactionsCSV.
func ReadTransactionsFile(path string, delimiter rune, dateLayout string) ([]models.CanonicalTransaction, error) {
	f, err := os.Open(path) // #nosec G304 -- path is supplied by the CLI user
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return ReadTransactionsCSV(f, delimiter, dateLayout)
}

func fromRow(row *transactionRow, dateLayout string) (models.CanonicalTransaction, error) {
	date, _, err := dateutils.ParseDate(row.Date, dateLayout)
	if err != nil {
		return models.CanonicalTransaction{}, err
	}
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return models.CanonicalTransaction{}, fmt.Errorf("invalid amount %q: %w", row.Amount, err)
	}
	expense := amount.IsNegative()
	switch row.Direction {
	case directionExpense:
		expense = true
	case directionIncome:
		expense = false
	}
	return models.NewTransactionBuilder().
		WithID(row.ID).
		WithDate(date).
		WithAmount(amount.Abs(), row.Currency).
		AsExpense(expense).
		WithTitle(row.Title).
		WithCategory(row.Category).
		WithNote(row.Note).
		WithSource(row.Source, "").
		Build()
}
