package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"
)

// GenerateSchema reflects the JSON schema of Config.
func GenerateSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: true,
	}
	schema := r.Reflect(&Config{})

	schema.ID = "https://github.com/bnema/webbridge/config.schema.json"
	schema.Title = "webbridge configuration"
	schema.Description = "Configuration schema for webbridge, a headless script host with a JSON invocation bridge"
	return schema
}

// MarshalSchema returns the indented schema document.
func MarshalSchema() ([]byte, error) {
	data, err := json.MarshalIndent(GenerateSchema(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}

// WriteSchemaFile writes config.schema.json next to the config file in dir
// and returns its path.
func WriteSchemaFile(dir string) (string, error) {
	data, err := MarshalSchema()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	path := filepath.Join(dir, schemaFileName)
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return "", fmt.Errorf("failed to write schema file: %w", err)
	}
	return path, nil
}
