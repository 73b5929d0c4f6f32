package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	enforcer "github.com/robhayesmba/openapi-enforcer"
	"github.com/robhayesmba/openapi-enforcer/internal/options"
)

type randomInput struct {
	Spec   specInput      `json:"spec"             jsonschema:"The OAS document the schema belongs to"`
	Ref    string         `json:"ref,omitempty"    jsonschema:"Local reference to a schema, e.g. #/components/schemas/Pet"`
	Schema map[string]any `json:"schema,omitempty" jsonschema:"Inline schema object; local $ref values are followed"`
	Seed   *uint64        `json:"seed,omitempty"   jsonschema:"Seed for reproducible output"`
	Count  int            `json:"count,omitempty"  jsonschema:"Number of values to generate (default 1)"`
}

type randomOutput struct {
	Count  int   `json:"count"`
	Values []any `json:"values"`
}

func handleRandom(ctx context.Context, _ *mcp.CallToolRequest, input randomInput) (*mcp.CallToolResult, randomOutput, error) {
	if err := options.ExactlyOne(
		options.Source{Name: "ref", Set: input.Ref != ""},
		options.Source{Name: "schema", Set: input.Schema != nil},
	); err != nil {
		return errResult(err), randomOutput{}, nil
	}
	count := input.Count
	if count <= 0 {
		count = 1
	}
	if count > cfg.RandomMaxCount {
		return errResult(fmt.Errorf("count %d exceeds maximum %d; set ENFORCER_RANDOM_MAX_COUNT to increase",
			count, cfg.RandomMaxCount)), randomOutput{}, nil
	}

	spec, err := input.Spec.resolve(ctx)
	if err != nil {
		return errResult(err), randomOutput{}, nil
	}
	// A seeded generator is private to this call; the cached enforcer's
	// generator is shared.
	var opts []enforcer.Option
	if input.Seed != nil {
		opts = append(opts, enforcer.WithRandomSeed(*input.Seed))
	}
	e, err := spec.enforcer(false, opts...)
	if err != nil {
		return errResult(err), randomOutput{}, nil
	}

	var node any = input.Schema
	if input.Ref != "" {
		node = map[string]any{"$ref": input.Ref}
	}

	output := randomOutput{Values: make([]any, 0, count)}
	for range count {
		v, err := e.RandomFor(node)
		if err != nil {
			return errResult(err), randomOutput{}, nil
		}
		output.Values = append(output.Values, v)
	}
	output.Count = len(output.Values)
	return nil, output, nil
}
