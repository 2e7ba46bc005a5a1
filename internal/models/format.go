package models

// FileFormat is the result of file-format detection. It is never persisted.
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatPDF
	FormatCSV
	FormatSpreadsheet
)

func (f FileFormat) String() string {
	switch f {
	case FormatPDF:
		return "PDF"
	case FormatCSV:
		return "CSV"
	case FormatSpreadsheet:
		return "SPREADSHEET"
	default:
		return "UNKNOWN"
	}
}
