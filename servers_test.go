package enforcer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robhayesmba/openapi-enforcer/internal/testutil"
)

func TestURLPath(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://api.example.com/v1", "/v1"},
		{"https://api.example.com/v1/", "/v1"},
		{"https://api.example.com", ""},
		{"https://api.example.com/", ""},
		{"//cdn.example.com/base", "/base"},
		{"/relative/api", "/relative/api"},
		{"relative", "/relative"},
		{"https://api.example.com/v2?x=1", "/v2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, urlPath(tt.url), tt.url)
	}
}

func TestServerPaths(t *testing.T) {
	vars := map[string]any{
		"env":     map[string]any{"default": "prod", "enum": []any{"prod", "staging"}},
		"version": map[string]any{"default": "v1", "enum": []any{"v1", "v2"}},
	}
	got := serverPaths("https://{env}.example.com/{version}/api", vars)
	assert.Equal(t, []string{"/v1/api", "/v2/api", "/v1/api", "/v2/api"}, got)

	assert.Equal(t, []string{"/base"}, serverPaths("/{root}", map[string]any{
		"root": map[string]any{"default": "base"},
	}))
}

func TestStripPrefix(t *testing.T) {
	doc := testutil.NewSimpleOAS3Document()
	doc["servers"] = []any{
		map[string]any{"url": "https://api.example.com/api"},
		map[string]any{"url": "https://api.example.com/api/v2"},
		map[string]any{"url": "https://api.example.com/"},
	}
	e := mustNew(t, doc)
	require.Equal(t, []string{"/api/v2", "/api"}, e.prefixes)

	tests := map[string]string{
		"/api/v2/pets": "/pets",
		"/api/pets":    "/pets",
		"/api":         "/",
		"/apis/pets":   "/apis/pets",
		"/pets":        "/pets",
	}
	for in, want := range tests {
		assert.Equal(t, want, e.stripPrefix(in), in)
	}
}
