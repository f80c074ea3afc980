// Package pipelineerror defines the typed failures raised by the sales pipeline.
// Configuration-level errors abort the current run; per-row conditions are counted
// by the pipeline and only surface here as sentinels.
package pipelineerror

import (
	"errors"
	"fmt"
)

// ErrUnresolvedRevenue marks a row whose revenue could be read neither from the
// revenue column nor derived from quantity and price. Non-fatal.
var ErrUnresolvedRevenue = errors.New("unresolved revenue")

// ParseError represents an error while reading an uploaded table.
type ParseError struct {
	Source string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v",
		e.Source, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// UnknownColumnError is returned when a mapped column is missing from the table header.
type UnknownColumnError struct {
	Field  string
	Column string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column '%s' mapped to %s", e.Column, e.Field)
}

// InvalidMappingError is returned when a column mapping cannot resolve the required fields.
type InvalidMappingError struct {
	Reason string
}

func (e *InvalidMappingError) Error() string {
	return fmt.Sprintf("invalid column mapping: %s", e.Reason)
}

// MissingTemporalColumnError is returned when the selected time mode has no
// date-bearing column configured at all.
type MissingTemporalColumnError struct {
	Mode string
}

func (e *MissingTemporalColumnError) Error() string {
	return fmt.Sprintf("time mode %s requires a date, year-month, year or month column", e.Mode)
}

// BucketError covers malformed bucketing configuration such as an unknown mode.
type BucketError struct {
	Mode   string
	Reason string
}

func (e *BucketError) Error() string {
	return fmt.Sprintf("cannot bucket rows by '%s': %s", e.Mode, e.Reason)
}

// NoValidRowsError is returned when no row survives column resolution.
type NoValidRowsError struct {
	TotalRows int
}

func (e *NoValidRowsError) Error() string {
	return fmt.Sprintf("no valid rows after applying selected columns (%d rows read)", e.TotalRows)
}

// GenerationError represents a failure while rendering a report artifact.
type GenerationError struct {
	Format string
	Err    error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("failed to generate %s report: %v", e.Format, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// WriteError represents a failure to publish an artifact or store file.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write '%s': %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// StorageUnavailableError is returned when a storage directory cannot be created or used.
type StorageUnavailableError struct {
	Path string
	Err  error
}

func (e *StorageUnavailableError) Error() string {
	return fmt.Sprintf("storage unavailable at '%s': %v", e.Path, e.Err)
}

func (e *StorageUnavailableError) Unwrap() error {
	return e.Err
}

// NotFoundError is returned by lookups of history entries, uploads and reports.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.Kind, e.Name)
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
