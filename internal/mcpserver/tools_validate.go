package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/robhayesmba/openapi-enforcer/internal/severity"
)

type validateInput struct {
	Spec       specInput `json:"spec"                    jsonschema:"The OAS document to validate"`
	Strict     *bool     `json:"strict,omitempty"        jsonschema:"Treat warnings as errors"`
	NoWarnings *bool     `json:"no_warnings,omitempty"   jsonschema:"Suppress warnings from output"`
	Offset     int       `json:"offset,omitempty"        jsonschema:"Skip the first N errors/warnings (for pagination)"`
	Limit      int       `json:"limit,omitempty"         jsonschema:"Maximum number of errors/warnings to return (default 100). Applied independently to errors and warnings arrays."`
}

type validateOutput struct {
	Valid        bool    `json:"valid"`
	Version      string  `json:"version"`
	ErrorCount   int     `json:"error_count"`
	WarningCount int     `json:"warning_count"`
	Returned     int     `json:"returned"`
	NextOffset   int     `json:"next_offset,omitempty"`
	Errors       []issue `json:"errors,omitempty"`
	Warnings     []issue `json:"warnings,omitempty"`
}

func handleValidate(ctx context.Context, _ *mcp.CallToolRequest, input validateInput) (*mcp.CallToolResult, validateOutput, error) {
	// Apply config defaults when input fields are omitted (nil).
	strict := cfg.ValidateStrict
	if input.Strict != nil {
		strict = *input.Strict
	}
	noWarnings := cfg.ValidateNoWarnings
	if input.NoWarnings != nil {
		noWarnings = *input.NoWarnings
	}

	spec, err := input.Spec.resolve(ctx)
	if err != nil {
		return errResult(err), validateOutput{}, nil
	}
	result, err := spec.validate()
	if err != nil {
		return errResult(err), validateOutput{}, nil
	}

	errs := treeIssues(result.Errors, severity.SeverityError)
	warnings := treeIssues(result.Warnings, severity.SeverityWarning)
	if strict {
		errs = append(errs, warnings...)
		warnings = nil
	}

	errPage := paginate(errs, input.Offset, input.Limit)
	output := validateOutput{
		Valid:      len(errs) == 0,
		Version:    result.Version.String(),
		ErrorCount: len(errs),
		Errors:     errPage.Items,
		NextOffset: errPage.Next,
	}
	if !noWarnings {
		warnPage := paginate(warnings, input.Offset, input.Limit)
		output.WarningCount = len(warnings)
		output.Warnings = warnPage.Items
		output.NextOffset = max(output.NextOffset, warnPage.Next)
	}
	output.Returned = len(output.Errors) + len(output.Warnings)

	return nil, output, nil
}
