package excelparser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// CellSeparator joins the cells of a row in the extracted text.
const CellSeparator = "\t"

const previewRows = 20

var (
	zipSignature  = []byte("PK\x03\x04")
	ole2Signature = []byte{0xD0, 0xCF, 0x11, 0xE0}

	cellReplacer = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")
)

// ErrLegacyWorkbook is returned for binary .xls workbooks.
var ErrLegacyWorkbook = errors.New("legacy binary .xls workbooks are not supported, save the file as .xlsx")

// SheetExtractor renders one worksheet as text, one row per line with cells
// separated by CellSeparator. Blank rows are kept as empty lines so row
// numbers match line numbers.
type SheetExtractor struct {
	// Sheet selects the worksheet by name; Index is used when it is empty.
	Sheet string
	Index int
}

// Extract implements importer.TextExtractor.
func (e SheetExtractor) Extract(ctx context.Context, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read workbook: %w", err)
	}
	if bytes.HasPrefix(data, ole2Signature) {
		return "", ErrLegacyWorkbook
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet, err := e.resolveSheet(f)
	if err != nil {
		return "", err
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return "", fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	var sb strings.Builder
	for _, row := range rows {
		sb.WriteString(joinRow(row))
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

func (e SheetExtractor) resolveSheet(f *excelize.File) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", errors.New("workbook has no sheets")
	}
	if e.Sheet != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, e.Sheet) {
				return s, nil
			}
		}
		return "", fmt.Errorf("sheet %q not found, available: %s", e.Sheet, strings.Join(sheets, ", "))
	}
	idx := min(max(e.Index, 0), len(sheets)-1)
	return sheets[idx], nil
}

// PreviewText renders the first rows of the first sheet of a workbook held
// in head. It returns "" when head is not a complete workbook.
func PreviewText(head []byte) string {
	if !bytes.HasPrefix(head, zipSignature) {
		return ""
	}
	f, err := excelize.OpenReader(bytes.NewReader(head))
	if err != nil {
		return ""
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ""
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return ""
	}
	lines := make([]string, 0, previewRows)
	for i, row := range rows {
		if i == previewRows {
			break
		}
		lines = append(lines, joinRow(row))
	}
	return strings.Join(lines, "\n")
}

// IsWorkbook reports whether head starts with an OOXML or OLE2 signature.
func IsWorkbook(head []byte) bool {
	return bytes.HasPrefix(head, zipSignature) || bytes.HasPrefix(head, ole2Signature)
}

func joinRow(row []string) string {
	cells := make([]string, len(row))
	for i, c := range row {
		cells[i] = cellReplacer.Replace(c)
	}
	return strings.Join(cells, CellSeparator)
}
