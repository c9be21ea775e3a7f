package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSchema(t *testing.T) {
	schema := GenerateSchema()

	assert.Equal(t, "webbridge configuration", schema.Title)
	for _, key := range []string{"workers", "bridge", "engine", "logging", "journal", "metrics"} {
		_, ok := schema.Properties.Get(key)
		assert.True(t, ok, key)
	}

	workers, ok := schema.Properties.Get("workers")
	require.True(t, ok)
	maxWorkers, ok := workers.Properties.Get("max_workers")
	require.True(t, ok)
	assert.Equal(t, "integer", maxWorkers.Type)
	assert.Equal(t, json.Number("1"), maxWorkers.Minimum)
}

func TestWriteSchemaFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	path, err := WriteSchemaFile(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, schemaFileName), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "https://github.com/bnema/webbridge/config.schema.json", doc["$id"])
}
