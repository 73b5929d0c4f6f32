package mcpserver

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	enforcer "github.com/robhayesmba/openapi-enforcer"
	"github.com/robhayesmba/openapi-enforcer/internal/severity"
)

type requestInput struct {
	Spec    specInput         `json:"spec"              jsonschema:"The OAS document that describes the API"`
	Method  string            `json:"method,omitempty"  jsonschema:"HTTP method (default GET)"`
	Path    string            `json:"path"              jsonschema:"Request path with optional query string, e.g. /v1/pets/12?limit=5"`
	Headers map[string]string `json:"headers,omitempty" jsonschema:"Request headers by name"`
	Cookies map[string]string `json:"cookies,omitempty" jsonschema:"Request cookies by name"`
	Strict  *bool             `json:"strict,omitempty"  jsonschema:"Report unknown query parameters as errors instead of warnings"`
}

type requestOutput struct {
	Valid    bool           `json:"valid"`
	Method   string         `json:"method"`
	Template string         `json:"template,omitempty"`
	Path     map[string]any `json:"path,omitempty"`
	Query    map[string]any `json:"query,omitempty"`
	Header   map[string]any `json:"header,omitempty"`
	Cookie   map[string]any `json:"cookie,omitempty"`
	Errors   []issue        `json:"errors,omitempty"`
	Warnings []issue        `json:"warnings,omitempty"`
}

func handleDecodeRequest(ctx context.Context, _ *mcp.CallToolRequest, input requestInput) (*mcp.CallToolResult, requestOutput, error) {
	strict := cfg.RequestStrict
	if input.Strict != nil {
		strict = *input.Strict
	}

	spec, err := input.Spec.resolve(ctx)
	if err != nil {
		return errResult(err), requestOutput{}, nil
	}
	e, err := spec.enforcer(strict)
	if err != nil {
		return errResult(err), requestOutput{}, nil
	}

	header := make(http.Header, len(input.Headers))
	for name, v := range input.Headers {
		header.Set(name, v)
	}
	res := e.Request(enforcer.Request{
		Method:  input.Method,
		Path:    input.Path,
		Header:  header,
		Cookies: input.Cookies,
	})

	return nil, requestOutput{
		Valid:    res.Valid(),
		Method:   res.Method,
		Template: res.Template,
		Path:     res.Path,
		Query:    res.Query,
		Header:   res.Header,
		Cookie:   res.Cookie,
		Errors:   treeIssues(res.Errors, severity.SeverityError),
		Warnings: treeIssues(res.Warnings, severity.SeverityWarning),
	}, nil
}
