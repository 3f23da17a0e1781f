package schemas

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	schemafiles "github.com/jonathan/tender-intel/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["name"],
	"properties": {
		"name": {"type": "string"}
	}
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidateJSON_ValidJSON(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "schema.json", personSchema)
	jsonPath := writeFile(t, dir, "doc.json", `{"name": "tender"}`)

	assert.NoError(t, ValidateJSON(schemaPath, jsonPath))
}

func TestValidateJSON_InvalidJSON_MissingField(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "schema.json", personSchema)
	jsonPath := writeFile(t, dir, "doc.json", `{"age": 30}`)

	err := ValidateJSON(schemaPath, jsonPath)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok, "error should be ValidationError type")
	assert.Greater(t, len(validationErr.Errors), 0)
}

func TestValidateJSON_NonExistentFiles(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "schema.json", personSchema)

	err := ValidateJSON(filepath.Join(dir, "missing_schema.json"), schemaPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	err = ValidateJSON(schemaPath, filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidateJSON_MalformedJSON(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "schema.json", personSchema)
	jsonPath := writeFile(t, dir, "doc.json", "{ invalid json }")

	err := ValidateJSON(schemaPath, jsonPath)
	require.Error(t, err)
	var loadErr *SchemaLoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestValidateJSONString_Invalid(t *testing.T) {
	err := ValidateJSONString(personSchema, `{"name": 7}`)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)
	require.Len(t, validationErr.Errors, 1)
	assert.Equal(t, "name", validationErr.Errors[0].Field)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "tenders.0.title", Message: "Invalid type"},
			{Field: "meta.last_sync", Message: "Invalid type"},
		},
	}

	errorMsg := err.Error()
	assert.Contains(t, errorMsg, "validation failed")
	assert.Contains(t, errorMsg, "tenders.0.title")
	assert.Contains(t, errorMsg, "meta.last_sync")
}

func TestValidateDocument_Tenders(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantError bool
	}{
		{"bare array", `[{"title": "Boiler service", "scores": {"fit": 7}}]`, false},
		{"empty array", `[]`, false},
		{"envelope with meta", `{"tenders": [], "meta": {"last_sync": "2026-10-19 08:00", "next_run": "Daily 08:00"}}`, false},
		{"data key", `{"data": [{"title": "Pumps"}]}`, false},
		{"null scores", `[{"title": "Pumps", "scores": null}]`, false},
		{"scraper health", `{"tenders": [], "meta": {"scraper_health": {"eTenders": {"status": "Success", "count": 4}}}}`, false},
		{"string payload", `"tenders"`, true},
		{"tender not an object", `[1, 2]`, true},
		{"title not a string", `[{"title": 12}]`, true},
		{"scores not an object", `[{"scores": [1]}]`, true},
		{"score not a number", `[{"scores": {"fit": "high"}}]`, true},
		{"tenders not an array", `{"tenders": {"title": "x"}}`, true},
		{"last_sync not a string", `{"tenders": [], "meta": {"last_sync": 5}}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(schemafiles.Tenders, []byte(tt.doc))
			if tt.wantError {
				require.Error(t, err)
				var validationErr *ValidationError
				require.True(t, errors.As(err, &validationErr), "got %T: %v", err, err)
				assert.NotEmpty(t, validationErr.Errors)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDocument_Summary(t *testing.T) {
	assert.NoError(t, ValidateDocument(schemafiles.Summary,
		[]byte(`{"counts": {"total": 2, "by_company": {"TES": 2}}, "top": []}`)))

	assert.Error(t, ValidateDocument(schemafiles.Summary, []byte(`{"top": []}`)))
	assert.Error(t, ValidateDocument(schemafiles.Summary, []byte(`{"counts": {"total": 1.5}}`)))
}

func TestValidateDocument_UnknownSchema(t *testing.T) {
	err := ValidateDocument("missing.schema.json", []byte(`{}`))
	var loadErr *SchemaLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "missing.schema.json", loadErr.Path)
}
