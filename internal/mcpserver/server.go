// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes openapi-enforcer capabilities as MCP tools over stdio.
package mcpserver

import (
	"context"
	"regexp"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	enforcer "github.com/robhayesmba/openapi-enforcer"
	"github.com/robhayesmba/openapi-enforcer/errtree"
	"github.com/robhayesmba/openapi-enforcer/internal/severity"
)

const serverInstructions = `openapi-enforcer MCP server: validates OpenAPI 2.0 and 3.0 documents, decodes requests against them, and generates example values from their schemas.

Configuration: All defaults are configurable via ENFORCER_* environment variables set in your MCP client config.

Key settings:
- ENFORCER_CACHE_FILE_TTL (default: 15m): cache TTL for local file specs
- ENFORCER_CACHE_URL_TTL (default: 5m): cache TTL for URL-fetched specs
- ENFORCER_CACHE_ENABLED (default: true): disable spec caching entirely
- ENFORCER_LIMIT (default: 100): default page size for issue lists
- ENFORCER_VALIDATE_STRICT (default: false): treat warnings as errors in validate
- ENFORCER_VALIDATE_NO_WARNINGS (default: false): suppress warnings by default
- ENFORCER_REQUEST_STRICT (default: false): reject unknown query parameters in decode_request
- ENFORCER_RANDOM_MAX_COUNT (default: 100): upper bound for random values per call

Caching: Loaded specs are cached per session together with their validation result. File entries use path+mtime as key (auto-invalidated on change). URL entries are cached with a shorter TTL. A background sweeper removes expired entries every 60s.`

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled.
func Run(ctx context.Context) error {
	if cfg.CacheEnabled {
		specCache.startSweeper(ctx, cfg.CacheSweepInterval)
	}

	server := mcp.NewServer(
		&mcp.Implementation{Name: "openapi-enforcer", Version: enforcer.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate",
		Description: "Validate an OpenAPI 2.0 or 3.0 document. Returns errors and warnings with dotted path locations, e.g. paths./pets.get.responses. Use no_warnings to focus on errors first and offset/limit to paginate. Defaults are configurable via ENFORCER_VALIDATE_STRICT and ENFORCER_VALIDATE_NO_WARNINGS env vars.",
	}, handleValidate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "decode_request",
		Description: "Match an HTTP request against a valid OpenAPI document and decode its path, query, header, and cookie parameters. The path may include a query string and the basePath or server prefix. Returns the matched path template, the decoded values by location and name, and any errors or warnings. Set strict=true to reject unknown query parameters.",
	}, handleDecodeRequest)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "random",
		Description: "Generate random values that satisfy a schema from an OpenAPI document. Provide either ref (e.g. #/components/schemas/Pet or #/definitions/Pet) or an inline schema, which may itself contain local $ref values. Use seed for reproducible output and count for several values.",
	}, handleRandom)
}

// issue is one error or warning in tool output.
type issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// treeIssues flattens an error tree into tool output issues.
func treeIssues(t *errtree.Tree, sev severity.Severity) []issue {
	flat := t.Issues(sev)
	out := makeSlice[issue](len(flat))
	for _, i := range flat {
		out = append(out, issue{Path: i.Path, Message: i.Message})
	}
	return out
}

// page is one window of a longer list, together with the offset at which
// the following window starts. Next is 0 on the last page.
type page[T any] struct {
	Items []T
	Next  int
}

// paginate returns the window of items starting at offset. A non-positive
// limit means cfg.Limit and no window is larger than cfg.MaxLimit.
func paginate[T any](items []T, offset, limit int) page[T] {
	if limit <= 0 {
		limit = cfg.Limit
	}
	limit = min(limit, cfg.MaxLimit)
	if offset < 0 || offset >= len(items) {
		return page[T]{}
	}
	remaining := len(items) - offset
	if limit >= remaining {
		return page[T]{Items: items[offset:]}
	}
	return page[T]{Items: items[offset : offset+limit], Next: offset + limit}
}

// makeSlice returns nil for n == 0 so empty lists are dropped by omitempty.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}

// privateRoots are the top-level directories whose paths are redacted from
// errors sent to MCP clients.
var privateRoots = []string{
	"home", "Users", "root", "tmp", "var", "private", "etc", "opt",
	"usr", "mnt", "srv", "run", "snap", "nix", "workspace",
}

var pathPattern = regexp.MustCompile(`(?:file://)?/(?:` + strings.Join(privateRoots, "|") + `)\b(?:/[\w.@+-]*)*`)

// sanitizeError renders err with local filesystem paths replaced by
// "<path>".
func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult reports err to the client as a failed tool call.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}
