package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReportFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    ReportFormat
		wantErr bool
	}{
		{"spreadsheet", FormatSpreadsheet, false},
		{"Excel", FormatSpreadsheet, false},
		{"xlsx", FormatSpreadsheet, false},
		{"document", FormatDocument, false},
		{" PDF ", FormatDocument, false},
		{"csv", FormatCSV, false},
		{"docx", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseReportFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseReportFormats_DeduplicatesInOrder(t *testing.T) {
	got, err := ParseReportFormats([]string{"pdf", "xlsx", "document", "csv"})
	require.NoError(t, err)
	assert.Equal(t, []ReportFormat{FormatDocument, FormatSpreadsheet, FormatCSV}, got)

	_, err = ParseReportFormats([]string{"csv", "png"})
	assert.Error(t, err)
}

func TestReportFormat_ExtensionRoundTrip(t *testing.T) {
	for _, f := range []ReportFormat{FormatSpreadsheet, FormatDocument, FormatCSV} {
		got, ok := FormatForExtension(f.Extension())
		assert.True(t, ok, f)
		assert.Equal(t, f, got)
	}
	_, ok := FormatForExtension(".txt")
	assert.False(t, ok)

	got, ok := FormatForExtension(".XLSX")
	assert.True(t, ok)
	assert.Equal(t, FormatSpreadsheet, got)
}

func TestReportFormat_Label(t *testing.T) {
	assert.Equal(t, "Excel", FormatSpreadsheet.Label())
	assert.Equal(t, "PDF", FormatDocument.Label())
	assert.Equal(t, "CSV", FormatCSV.Label())
	assert.Equal(t, "", ReportFormat("gif").Extension())
}
