package config

import (
	"encoding/json"
	"testing"
)

func TestSchema(t *testing.T) {
	data, err := Schema()
	if err != nil {
		t.Fatalf("Schema failed: %v", err)
	}

	var doc struct {
		Title      string                     `json:"title"`
		Properties map[string]json.RawMessage `json:"properties"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Schema is not valid JSON: %v", err)
	}

	if doc.Title != "BadgeHub Configuration" {
		t.Errorf("Schema title = %q", doc.Title)
	}
	for _, key := range []string{"logging", "telemetry", "metrics", "database", "uploads", "catalog", "stats_cache", "reports"} {
		if _, ok := doc.Properties[key]; !ok {
			t.Errorf("Schema missing property %q", key)
		}
	}
}

func TestSchema_StringTypes(t *testing.T) {
	data, err := Schema()
	if err != nil {
		t.Fatalf("Schema failed: %v", err)
	}

	var doc struct {
		Properties struct {
			ShutdownTimeout struct {
				Type string `json:"type"`
			} `json:"shutdown_timeout"`
			Uploads struct {
				Properties struct {
					MaxFileSize struct {
						OneOf []json.RawMessage `json:"oneOf"`
					} `json:"max_file_size"`
				} `json:"properties"`
			} `json:"uploads"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Schema is not valid JSON: %v", err)
	}

	if doc.Properties.ShutdownTimeout.Type != "string" {
		t.Errorf("shutdown_timeout type = %q, want string", doc.Properties.ShutdownTimeout.Type)
	}
	if len(doc.Properties.Uploads.Properties.MaxFileSize.OneOf) != 2 {
		t.Errorf("max_file_size should accept integers and strings")
	}
}
