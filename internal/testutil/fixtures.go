// Package testutil provides test utilities and fixtures for unit tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"go.yaml.in/yaml/v4"
)

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// NewSimpleOAS2Document creates a minimal OAS 2.0 document for testing.
// Contains only required fields: swagger, info, paths.
func NewSimpleOAS2Document() map[string]any {
	return map[string]any{
		"swagger": "2.0",
		"info": map[string]any{
			"title":   "Test API",
			"version": "1.0.0",
		},
		"basePath": "/v1",
		"paths":    map[string]any{},
	}
}

// NewDetailedOAS2Document creates an OAS 2.0 pet store with a collection
// path, an item path, and a Pet definition.
func NewDetailedOAS2Document() map[string]any {
	doc := NewSimpleOAS2Document()
	doc["definitions"] = map[string]any{
		"Pet": petSchema(),
	}
	doc["paths"] = map[string]any{
		"/pets": map[string]any{
			"get": map[string]any{
				"summary":     "List pets",
				"operationId": "listPets",
				"parameters": []any{
					map[string]any{"name": "limit", "in": "query", "type": "integer"},
					map[string]any{"name": "tags", "in": "query", "type": "array", "collectionFormat": "multi",
						"items": map[string]any{"type": "string"}},
				},
				"responses": okResponse(),
			},
		},
		"/pets/{petId}": map[string]any{
			"parameters": []any{
				map[string]any{"name": "petId", "in": "path", "required": true, "type": "integer"},
			},
			"get": map[string]any{
				"operationId": "showPet",
				"responses":   okResponse(),
			},
		},
	}
	return doc
}

// NewSimpleOAS3Document creates a minimal OAS 3.x document for testing.
// Contains only required fields: openapi, info, paths, servers.
func NewSimpleOAS3Document() map[string]any {
	return map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   "Test API",
			"version": "1.0.0",
		},
		"servers": []any{
			map[string]any{"url": "https://api.example.com/v1", "description": "Production server"},
		},
		"paths": map[string]any{},
	}
}

// NewDetailedOAS3Document creates the OAS 3.x counterpart of
// NewDetailedOAS2Document.
func NewDetailedOAS3Document() map[string]any {
	doc := NewSimpleOAS3Document()
	doc["components"] = map[string]any{
		"schemas": map[string]any{
			"Pet": petSchema(),
		},
	}
	doc["paths"] = map[string]any{
		"/pets": map[string]any{
			"get": map[string]any{
				"summary":     "List pets",
				"operationId": "listPets",
				"parameters": []any{
					map[string]any{"name": "limit", "in": "query", "schema": map[string]any{"type": "integer"}},
					map[string]any{"name": "tags", "in": "query",
						"schema": map[string]any{"type": "array", "items": map[string]any{"type": "string"}}},
				},
				"responses": okResponse(),
			},
		},
		"/pets/{petId}": map[string]any{
			"parameters": []any{
				map[string]any{"name": "petId", "in": "path", "required": true, "schema": map[string]any{"type": "integer"}},
			},
			"get": map[string]any{
				"operationId": "showPet",
				"responses":   okResponse(),
			},
		},
	}
	return doc
}

func petSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []any{"id", "name"},
		"properties": map[string]any{
			"id":   map[string]any{"type": "integer"},
			"name": map[string]any{"type": "string"},
		},
	}
}

func okResponse() map[string]any {
	return map[string]any{
		"200": map[string]any{"description": "OK"},
	}
}

// WriteTempYAML marshals a document to YAML and writes it to a temporary file.
// Returns the path to the temporary file.
// The file is automatically cleaned up when the test completes (via t.TempDir).
func WriteTempYAML(t *testing.T, doc any) string {
	t.Helper()

	data, err := yaml.Marshal(doc)
	if err != nil {
		t.Fatalf("Failed to marshal document to YAML: %v", err)
	}
	return writeTemp(t, "test.yaml", data)
}

// WriteTempJSON marshals a document to JSON and writes it to a temporary file.
// Returns the path to the temporary file.
// The file is automatically cleaned up when the test completes (via t.TempDir).
func WriteTempJSON(t *testing.T, doc any) string {
	t.Helper()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal document to JSON: %v", err)
	}
	return writeTemp(t, "test.json", data)
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()

	tmpFile := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		t.Fatalf("Failed to write temporary file: %v", err)
	}
	return tmpFile
}
