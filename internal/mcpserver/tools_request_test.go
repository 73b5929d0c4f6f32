package mcpserver

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const petstoreSpec = `openapi: "3.0.0"
info:
  title: Petstore
  version: "1.0.0"
servers:
  - url: https://api.example.com/v1
paths:
  /pets:
    get:
      parameters:
        - name: limit
          in: query
          schema:
            type: integer
        - name: X-Request-Id
          in: header
          required: true
          schema:
            type: integer
        - name: session
          in: cookie
          schema:
            type: string
      responses:
        "200":
          description: OK
  /pets/{petId}:
    parameters:
      - name: petId
        in: path
        required: true
        schema:
          type: integer
    get:
      responses:
        "200":
          description: OK
`

func TestDecodeRequestTool(t *testing.T) {
	tests := []struct {
		name   string
		input  requestInput
		assert func(t *testing.T, out requestOutput)
	}{
		{
			name:  "path parameter",
			input: requestInput{Path: "/v1/pets/12"},
			assert: func(t *testing.T, out requestOutput) {
				assert.True(t, out.Valid)
				assert.Equal(t, "GET", out.Method)
				assert.Equal(t, "/pets/{petId}", out.Template)
				assert.Equal(t, map[string]any{"petId": int64(12)}, out.Path)
			},
		},
		{
			name: "query header and cookie",
			input: requestInput{
				Path:    "/v1/pets?limit=3",
				Headers: map[string]string{"x-request-id": "9"},
				Cookies: map[string]string{"session": "abc"},
			},
			assert: func(t *testing.T, out requestOutput) {
				assert.True(t, out.Valid, out.Errors)
				assert.Equal(t, map[string]any{"limit": int64(3)}, out.Query)
				assert.Equal(t, map[string]any{"X-Request-Id": int64(9)}, out.Header)
				assert.Equal(t, map[string]any{"session": "abc"}, out.Cookie)
			},
		},
		{
			name:  "missing required header",
			input: requestInput{Path: "/v1/pets"},
			assert: func(t *testing.T, out requestOutput) {
				assert.False(t, out.Valid)
				assert.Equal(t, []issue{{Path: "header", Message: "Missing required parameter: X-Request-Id"}}, out.Errors)
			},
		},
		{
			name:  "method not allowed",
			input: requestInput{Method: "delete", Path: "/v1/pets/1"},
			assert: func(t *testing.T, out requestOutput) {
				assert.False(t, out.Valid)
				assert.Equal(t, "DELETE", out.Method)
				assert.Equal(t, []issue{{Path: "", Message: "Method not allowed: DELETE"}}, out.Errors)
			},
		},
		{
			name:  "unknown query parameter is a warning",
			input: requestInput{Path: "/v1/pets/1?verbose=true"},
			assert: func(t *testing.T, out requestOutput) {
				assert.True(t, out.Valid)
				assert.Equal(t, []issue{{Path: "query.verbose", Message: "Unknown query parameter"}}, out.Warnings)
			},
		},
		{
			name:  "unknown query parameter in strict mode",
			input: requestInput{Path: "/v1/pets/1?verbose=true", Strict: boolPtr(true)},
			assert: func(t *testing.T, out requestOutput) {
				assert.False(t, out.Valid)
				assert.Equal(t, []issue{{Path: "query.verbose", Message: "Unknown query parameter"}}, out.Errors)
				assert.Empty(t, out.Warnings)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.input.Spec = specInput{Content: petstoreSpec}
			result, out, err := handleDecodeRequest(context.Background(), &mcp.CallToolRequest{}, tt.input)
			require.NoError(t, err)
			require.Nil(t, result)
			tt.assert(t, out)
		})
	}
}

func TestDecodeRequestTool_InvalidSpec(t *testing.T) {
	content := `openapi: "3.0.0"
info:
  title: Broken
paths: {}
`
	input := requestInput{Spec: specInput{Content: content}, Path: "/"}
	result, _, err := handleDecodeRequest(context.Background(), &mcp.CallToolRequest{}, input)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content[0].(*mcp.TextContent).Text, "Missing required property: version")
}

func boolPtr(b bool) *bool {
	return &b
}
