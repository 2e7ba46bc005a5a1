package logging

// Standardized field names for structured logging.
const (
	FieldFile      = "file_path"
	FieldParser    = "parser"
	FieldBank      = "bank"
	FieldHandler   = "handler"
	FieldFormat    = "format"
	FieldMIMEType  = "mime_type"
	FieldPhase     = "phase"
	FieldLine      = "line"
	FieldLineNo    = "line_no"
	FieldCategory  = "category"
	FieldReason    = "reason"
	FieldOperation = "operation"
	FieldStatus    = "status"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
	FieldCount     = "count"
	FieldDelimiter = "delimiter"
	FieldSheet     = "sheet"
	FieldStrategy  = "strategy"
	FieldOutput    = "output_file"
)
