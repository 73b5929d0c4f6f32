package mcpserver

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const warningSpec = `openapi: "3.0.0"
info:
  title: Test API
  version: "1.0.0"
paths:
  /owners/{ownerId}:
    get:
      responses:
        "200":
          description: OK
`

func TestValidateTool_ValidSpec(t *testing.T) {
	input := validateInput{Spec: specInput{Content: minimalSpec}}
	result, output, err := handleValidate(context.Background(), &mcp.CallToolRequest{}, input)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.True(t, output.Valid)
	assert.Equal(t, "3.0.0", output.Version)
	assert.Empty(t, output.Errors)
	assert.Zero(t, output.Returned)
}

func TestValidateTool_InvalidSpec(t *testing.T) {
	content := `openapi: "3.0.0"
info:
  title: Test API
paths: {}
`
	input := validateInput{Spec: specInput{Content: content}}
	_, output, err := handleValidate(context.Background(), &mcp.CallToolRequest{}, input)
	require.NoError(t, err)
	assert.False(t, output.Valid)
	assert.Equal(t, 1, output.ErrorCount)
	assert.Equal(t, []issue{{Path: "info", Message: "Missing required property: version"}}, output.Errors)
}

func TestValidateTool_Warnings(t *testing.T) {
	input := validateInput{Spec: specInput{Content: warningSpec}}
	_, output, err := handleValidate(context.Background(), &mcp.CallToolRequest{}, input)
	require.NoError(t, err)
	assert.True(t, output.Valid)
	assert.Equal(t, 1, output.WarningCount)
	assert.Equal(t, []issue{{
		Path:    "paths./owners/{ownerId}.get",
		Message: `Path parameter "ownerId" is not defined`,
	}}, output.Warnings)
	assert.Equal(t, 1, output.Returned)
}

func TestValidateTool_NoWarnings(t *testing.T) {
	noWarnings := true
	input := validateInput{Spec: specInput{Content: warningSpec}, NoWarnings: &noWarnings}
	_, output, err := handleValidate(context.Background(), &mcp.CallToolRequest{}, input)
	require.NoError(t, err)
	assert.True(t, output.Valid)
	assert.Zero(t, output.WarningCount)
	assert.Empty(t, output.Warnings)
}

func TestValidateTool_StrictPromotesWarnings(t *testing.T) {
	strict := true
	input := validateInput{Spec: specInput{Content: warningSpec}, Strict: &strict}
	_, output, err := handleValidate(context.Background(), &mcp.CallToolRequest{}, input)
	require.NoError(t, err)
	assert.False(t, output.Valid)
	assert.Equal(t, 1, output.ErrorCount)
	assert.Zero(t, output.WarningCount)
}

func TestValidateTool_Pagination(t *testing.T) {
	content := `openapi: "3.0.0"
info: {}
paths:
  /a:
    get: {}
`
	input := validateInput{Spec: specInput{Content: content}, Limit: 1}
	_, output, err := handleValidate(context.Background(), &mcp.CallToolRequest{}, input)
	require.NoError(t, err)
	assert.False(t, output.Valid)
	assert.Greater(t, output.ErrorCount, 1)
	assert.Len(t, output.Errors, 1)
	assert.Equal(t, 1, output.NextOffset)

	input.Offset = output.NextOffset
	_, page2, err := handleValidate(context.Background(), &mcp.CallToolRequest{}, input)
	require.NoError(t, err)
	require.Len(t, page2.Errors, 1)
	assert.NotEqual(t, output.Errors[0], page2.Errors[0])
}

func TestValidateTool_MissingVersion(t *testing.T) {
	input := validateInput{Spec: specInput{Content: "info: {}\npaths: {}\n"}}
	result, _, err := handleValidate(context.Background(), &mcp.CallToolRequest{}, input)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}

func TestValidateTool_BadInput(t *testing.T) {
	result, _, err := handleValidate(context.Background(), &mcp.CallToolRequest{}, validateInput{})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
	text := result.Content[0].(*mcp.TextContent).Text
	assert.Equal(t, "one of file, url, or content must be provided", text)
}
