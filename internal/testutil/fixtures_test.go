package testutil

import (
	"os"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v4"
)

func TestPtr(t *testing.T) {
	p := Ptr(true)
	require.NotNil(t, p)
	assert.True(t, *p)
	assert.Equal(t, 3, *Ptr(3))
}

// TestNewSimpleOAS2Document verifies that a minimal OAS 2.0 document is created correctly.
func TestNewSimpleOAS2Document(t *testing.T) {
	doc := NewSimpleOAS2Document()

	assert.Equal(t, "2.0", doc["swagger"])
	info, ok := doc["info"].(map[string]any)
	require.True(t, ok, "info should be an object")
	assert.Equal(t, "Test API", info["title"])
	assert.Equal(t, "/v1", doc["basePath"])
	assert.Empty(t, doc["paths"])
}

func TestNewDetailedOAS2Document(t *testing.T) {
	doc := NewDetailedOAS2Document()

	assert.Contains(t, doc["definitions"], "Pet")
	paths := doc["paths"].(map[string]any)
	assert.Contains(t, paths, "/pets")
	assert.Contains(t, paths, "/pets/{petId}")
}

func TestNewDetailedOAS3Document(t *testing.T) {
	doc := NewDetailedOAS3Document()

	assert.Equal(t, "3.0.3", doc["openapi"])
	servers := doc["servers"].([]any)
	require.Len(t, servers, 1)
	assert.Equal(t, "https://api.example.com/v1", servers[0].(map[string]any)["url"])
	assert.Contains(t, doc["components"].(map[string]any)["schemas"], "Pet")
}

// TestFixturesAreIndependent verifies that each call returns a fresh document.
func TestFixturesAreIndependent(t *testing.T) {
	a := NewDetailedOAS3Document()
	a["paths"].(map[string]any)["/extra"] = map[string]any{}
	b := NewDetailedOAS3Document()
	assert.NotContains(t, b["paths"], "/extra")
}

func TestWriteTempYAML(t *testing.T) {
	path := WriteTempYAML(t, NewSimpleOAS2Document())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, "2.0", got["swagger"])
}

func TestWriteTempJSON(t *testing.T) {
	path := WriteTempJSON(t, NewSimpleOAS3Document())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "3.0.3", got["openapi"])
}
