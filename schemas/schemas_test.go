package schemas_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/tender-intel/internal/schemas"
	schemafiles "github.com/jonathan/tender-intel/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var schemaFiles = []string{
	schemafiles.Tenders,
	schemafiles.Summary,
}

func TestAllSchemaFiles_ValidJSON(t *testing.T) {
	for _, schemaFile := range schemaFiles {
		t.Run(schemaFile, func(t *testing.T) {
			data, err := os.ReadFile(filepath.Join(".", schemaFile))
			require.NoError(t, err, "should be able to read schema file")

			var v interface{}
			assert.NoError(t, json.Unmarshal(data, &v), "schema file should be valid JSON: %s", schemaFile)
		})
	}
}

func TestSchemaFiles_ValidJSONSchema(t *testing.T) {
	for _, schemaFile := range schemaFiles {
		t.Run(schemaFile, func(t *testing.T) {
			data, err := schemafiles.Read(schemaFile)
			require.NoError(t, err)

			var schemaObj map[string]interface{}
			require.NoError(t, json.Unmarshal(data, &schemaObj))

			_, hasSchema := schemaObj["$schema"]
			_, hasID := schemaObj["$id"]
			assert.True(t, hasSchema, "schema should declare $schema")
			assert.True(t, hasID, "schema should declare $id")
		})
	}
}

func TestEmbeddedMatchesDisk(t *testing.T) {
	for _, schemaFile := range schemaFiles {
		onDisk, err := os.ReadFile(schemaFile)
		require.NoError(t, err)
		embedded, err := schemafiles.Read(schemaFile)
		require.NoError(t, err)
		assert.Equal(t, onDisk, embedded, schemaFile)
	}
}

func TestTendersSchema_MetaStringsWhenPresent(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "tenders.json")
	require.NoError(t, os.WriteFile(doc, []byte(`{"tenders": [], "meta": {"last_sync": null, "next_run": "Daily 08:00"}}`), 0644))

	// last_sync must be a string when present, so an explicit null is rejected.
	err := schemas.ValidateJSON(schemafiles.Tenders, doc)
	require.Error(t, err)
	_, ok := err.(*schemas.ValidationError)
	assert.True(t, ok, "got %T", err)

	require.NoError(t, os.WriteFile(doc, []byte(`{"tenders": [], "meta": {"next_run": "Daily 08:00"}}`), 0644))
	assert.NoError(t, schemas.ValidateJSON(schemafiles.Tenders, doc))
}
