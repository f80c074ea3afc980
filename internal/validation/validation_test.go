package validation_test

import (
	"os"
	"path/filepath"
	"testing"

	"autosales/salesdash/internal/models"
	"autosales/salesdash/internal/validation"

	"github.com/stretchr/testify/assert"
)

func TestStruct_ColumnMapping(t *testing.T) {
	tests := []struct {
		name        string
		mapping     models.ColumnMapping
		expectError bool
		errContains []string
	}{
		{
			name:    "Direct revenue column",
			mapping: models.ColumnMapping{Product: "product", Revenue: "total"},
		},
		{
			name:    "Quantity times price",
			mapping: models.ColumnMapping{Product: "product", Quantity: "qty", Price: "price"},
		},
		{
			name:        "Missing product",
			mapping:     models.ColumnMapping{Revenue: "total"},
			expectError: true,
			errContains: []string{"product is required"},
		},
		{
			name:        "Price without quantity",
			mapping:     models.ColumnMapping{Product: "product", Price: "price"},
			expectError: true,
			errContains: []string{"quantity is required when revenue is not set"},
		},
		{
			name:        "No revenue path at all",
			mapping:     models.ColumnMapping{Product: "product", Date: "date"},
			expectError: true,
			errContains: []string{"quantity is required", "price is required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.Struct(tt.mapping)
			if !tt.expectError {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			for _, want := range tt.errContains {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

type wrapper struct {
	Token   string               `json:"token" validate:"required"`
	Label   string               `json:"label" validate:"omitempty,max=5"`
	Mapping models.ColumnMapping `json:"mapping"`
}

func TestStructExcept_SkipsNestedMapping(t *testing.T) {
	err := validation.StructExcept(wrapper{Token: "abc"}, "Mapping")
	assert.NoError(t, err)

	err = validation.StructExcept(wrapper{Label: "too long"}, "Mapping")
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "token is required")
		assert.Contains(t, err.Error(), "label must be at most 5")
		assert.NotContains(t, err.Error(), "product")
	}
}

func TestIsValidDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.txt")
	assert.NoError(t, os.WriteFile(testFile, []byte("test"), 0600))

	tests := []struct {
		name        string
		path        string
		errContains string
	}{
		{name: "Existing directory", path: tmpDir},
		{name: "Regular file", path: testFile, errContains: "not a directory"},
		{name: "Non-existent path", path: filepath.Join(tmpDir, "missing"), errContains: "path does not exist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.IsValidDirectory(tt.path)
			if tt.errContains == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errContains)
		})
	}
}

func TestIsSafeFilename(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		expectError bool
	}{
		{"Plain report name", "sales_report_20240115_093000.xlsx", false},
		{"Upload token", "0f8fad5b-d9cb-469f-a165-70867728950e_sales.csv", false},
		{"Empty", "", true},
		{"Parent directory", "..", true},
		{"Traversal", "../config.yaml", true},
		{"Nested path", "output/summary.pdf", true},
		{"Windows separator", `output\summary.pdf`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.IsSafeFilename(tt.file)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
