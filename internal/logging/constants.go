package logging

// Standardized field names for structured logging across the pipeline.
const (
	FieldFile       = "file_path"
	FieldComponent  = "component"
	FieldStatus     = "status"
	FieldError      = "error"
	FieldDuration   = "duration_ms"
	FieldCount      = "count"
	FieldDelimiter  = "delimiter"
	FieldInputFile  = "input_file"
	FieldOutputFile = "output_file"
	FieldColumn     = "column"
	FieldMode       = "time_mode"
	FieldBucket     = "bucket"
	FieldProduct    = "product"
	FieldRow        = "row"
	FieldFormat     = "format"
	FieldHistory    = "history_entry"
	FieldDirectory  = "directory"
)
