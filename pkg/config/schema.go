package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/invopop/jsonschema"

	"github.com/badgehub/badgehub/internal/bytesize"
)

// Schema returns the JSON schema of the configuration file, for editor
// completion and external validation.
func Schema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		FieldNameTag:              "yaml",
		Mapper:                    schemaMapper,
	}

	schema := reflector.Reflect(&Config{})
	schema.Version = "https://json-schema.org/draft/2020-12/schema"
	schema.Title = "BadgeHub Configuration"
	schema.Description = "Configuration schema for the BadgeHub metadata store"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to generate schema: %w", err)
	}
	return data, nil
}

// schemaMapper describes types that are written as strings in YAML.
func schemaMapper(t reflect.Type) *jsonschema.Schema {
	switch t {
	case reflect.TypeOf(time.Duration(0)):
		return &jsonschema.Schema{
			Type:        "string",
			Pattern:     `^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`,
			Description: "Duration such as 30s, 5m or 1h",
		}
	case reflect.TypeOf(bytesize.ByteSize(0)):
		return &jsonschema.Schema{
			OneOf: []*jsonschema.Schema{
				{Type: "integer", Minimum: json.Number("0")},
				{Type: "string", Pattern: `^\s*[0-9]+(\.[0-9]+)?\s*([KkMmGg]i?[Bb]?|[Bb])?\s*$`},
			},
			Description: "Size in bytes or with a unit such as 32Mi or 10MB",
		}
	}
	return nil
}
