// Package common provides the CSV input and output shared by the pipeline: parsing
// uploaded sales tables and writing record exports.
package common

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"autosales/salesdash/internal/logging"
	"autosales/salesdash/internal/models"
	"autosales/salesdash/internal/pipelineerror"

	"github.com/gocarina/gocsv"
	"golang.org/x/text/encoding/charmap"
)

// DefaultDelimiter is used when no delimiter is configured.
const DefaultDelimiter = ','

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// TableReader parses uploaded CSV exports into RawTables.
type TableReader struct {
	delimiter rune
	logger    logging.Logger
}

// NewTableReader creates a reader for the given delimiter. A zero delimiter means comma.
func NewTableReader(delimiter rune, logger logging.Logger) *TableReader {
	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}
	return &TableReader{delimiter: delimiter, logger: logger}
}

// Delimiter returns the configured field separator.
func (r *TableReader) Delimiter() rune {
	return r.delimiter
}

// ReadFile parses the CSV file at path.
func (r *TableReader) ReadFile(path string) (*models.RawTable, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the storage manager or CLI flag
	if err != nil {
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	return r.Parse(data, path)
}

// Read parses CSV content from an io.Reader; source names it in errors and logs.
func (r *TableReader) Read(in io.Reader, source string) (*models.RawTable, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("error reading CSV data: %w", err)
	}
	return r.Parse(data, source)
}

// Parse decodes raw CSV bytes. Content that is not valid UTF-8 is decoded as
// ISO-8859-1. Header names are trimmed and lower-cased.
func (r *TableReader) Parse(data []byte, source string) (*models.RawTable, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, &pipelineerror.ParseError{Source: source, Field: "encoding", Value: "latin1", Err: err}
		}
		r.logger.Debug("Decoded upload as ISO-8859-1", logging.F(logging.FieldFile, source))
		data = decoded
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = r.delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &pipelineerror.ParseError{Source: source, Field: "header", Err: errors.New("file is empty")}
	}
	if err != nil {
		return nil, &pipelineerror.ParseError{Source: source, Field: "header", Err: err}
	}

	header, err = normalizeHeader(header, source)
	if err != nil {
		return nil, err
	}

	table := &models.RawTable{Source: source, Header: header}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &pipelineerror.ParseError{Source: source, Field: "record", Value: fmt.Sprintf("line %d", len(table.Rows)+2), Err: err}
		}
		row := make(models.Row, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			} else {
				row[name] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}

	r.logger.Info("Read sales table",
		logging.F(logging.FieldFile, source),
		logging.F(logging.FieldDelimiter, string(r.delimiter)),
		logging.F(logging.FieldCount, len(table.Rows)),
		logging.F("columns", len(header)))
	return table, nil
}

func normalizeHeader(header []string, source string) ([]string, error) {
	seen := make(map[string]bool, len(header))
	out := make([]string, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if name == "" {
			return nil, &pipelineerror.ParseError{Source: source, Field: "header", Value: fmt.Sprintf("column %d", i+1), Err: errors.New("empty column name")}
		}
		if seen[name] {
			return nil, &pipelineerror.ParseError{Source: source, Field: "header", Value: name, Err: errors.New("duplicate column name")}
		}
		seen[name] = true
		out[i] = name
	}
	return out, nil
}

// WriteRecords marshals tagged structs as CSV using the given delimiter.
func WriteRecords[T any](w io.Writer, records []T, delimiter rune) error {
	if records == nil {
		return fmt.Errorf("cannot write nil records to CSV")
	}
	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}

	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = delimiter

	if err := gocsv.MarshalCSV(records, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}
