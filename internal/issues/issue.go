// Package issues provides the flat issue type that error trees are rendered
// into for structured (JSON, YAML, MCP) output.
package issues

import (
	"fmt"
	"sort"

	"github.com/robhayesmba/openapi-enforcer/internal/severity"
)

// Issue represents a single problem found while normalizing a document or
// decoding a request.
type Issue struct {
	// Path is the location of the problem (e.g., "paths./pets.get.parameters[0]").
	// Empty for problems attached to the root.
	Path string `json:"path" yaml:"path"`
	// Message is a human-readable description of the problem.
	Message string `json:"message" yaml:"message"`
	// Severity indicates whether the issue rejects the input.
	Severity severity.Severity `json:"-" yaml:"-"`
	// Level is the textual form of Severity, kept for structured output.
	Level string `json:"severity" yaml:"severity"`
}

// New creates an issue and fills in its textual level.
func New(path, message string, sev severity.Severity) Issue {
	return Issue{
		Path:     path,
		Message:  message,
		Severity: sev,
		Level:    sev.String(),
	}
}

// String returns a formatted representation of the issue, e.g.
// "✗ paths./pets.get: Missing required property: responses".
func (i Issue) String() string {
	if i.Path == "" {
		return fmt.Sprintf("%s %s", i.Severity.Symbol(), i.Message)
	}
	return fmt.Sprintf("%s %s: %s", i.Severity.Symbol(), i.Path, i.Message)
}

// Sort orders issues by path and then by message so output is stable.
func Sort(list []Issue) {
	sort.SliceStable(list, func(a, b int) bool {
		if list[a].Path != list[b].Path {
			return list[a].Path < list[b].Path
		}
		return list[a].Message < list[b].Message
	})
}

// Count returns the number of issues with the given severity.
func Count(list []Issue, sev severity.Severity) int {
	n := 0
	for _, i := range list {
		if i.Severity == sev {
			n++
		}
	}
	return n
}
