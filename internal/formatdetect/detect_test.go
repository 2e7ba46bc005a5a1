package formatdetect

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidbugayov/Financeanalyzer-sub008/internal/logging"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/models"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("device not ready") }

func reader(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestDetect(t *testing.T) {
	d := New(0, logging.NewMockLogger())

	tests := []struct {
		name     string
		file     string
		mimeType string
		content  string
		want     models.FileFormat
	}{
		{"pdf extension", "statement.pdf", "", "", models.FormatPDF},
		{"upper case extension beats pdf bytes", "export.CSV", "", "%PDF-1.7 binary", models.FormatCSV},
		{"xlsx extension", "Alfa.XLSX", "", "", models.FormatSpreadsheet},
		{"xls extension", "old.xls", "", "", models.FormatSpreadsheet},
		{"extension beats mime", "a.pdf", "text/csv", "", models.FormatPDF},
		{"mime with parameters", "upload", "text/csv; charset=utf-8", "%PDF-", models.FormatCSV},
		{"pdf mime", "upload", "application/pdf", "", models.FormatPDF},
		{"excel mime", "upload", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "", models.FormatSpreadsheet},
		{"unknown mime falls to content", "upload", "application/octet-stream", "%PDF-1.4", models.FormatPDF},
		{"zip content", "upload", "", "PK\x03\x04rest", models.FormatSpreadsheet},
		{"ole2 content", "upload", "", "\xD0\xCF\x11\xE0\xA1\xB1", models.FormatSpreadsheet},
		{"semicolon content", "upload", "", "date;amount\n", models.FormatCSV},
		{"comma content", "upload", "", "date,amount\n", models.FormatCSV},
		{"plain text", "upload", "", "hello world", models.FormatUnknown},
		{"empty content", "upload", "", "", models.FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Detect(tt.file, tt.mimeType, reader(tt.content)))
		})
	}
}

func TestDetect_PreservesReadPosition(t *testing.T) {
	d := New(0, logging.NewMockLogger())
	r := reader("%PDF-1.7 rest of the document")

	assert.Equal(t, models.FormatPDF, d.Detect("upload", "", r))
	assert.Equal(t, models.FormatPDF, d.Detect("upload", "", r))

	all, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 rest of the document", string(all))
}

func TestDetect_SniffWindow(t *testing.T) {
	content := strings.Repeat("x", 60) + ",tail"

	assert.Equal(t, models.FormatUnknown, New(50, logging.NewMockLogger()).Detect("upload", "", reader(content)))
	assert.Equal(t, models.FormatCSV, New(100, logging.NewMockLogger()).Detect("upload", "", reader(content)))
}

func TestDetect_ReadErrorIsUnknown(t *testing.T) {
	d := New(0, logging.NewMockLogger())
	assert.Equal(t, models.FormatUnknown, d.Detect("upload", "", bufio.NewReader(failingReader{})))
	assert.Equal(t, models.FormatUnknown, d.Detect("upload", "", nil))
}

func TestFromMIMEType_Malformed(t *testing.T) {
	assert.Equal(t, models.FormatCSV, FromMIMEType("text/csv;;"))
	assert.Equal(t, models.FormatUnknown, FromMIMEType(""))
}
