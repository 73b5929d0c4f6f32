// Package errtree provides the hierarchical, path-addressable collector that
// every openapi-enforcer engine reports into.
//
// A Tree mirrors the structure of the value being checked. Descending with
// [Tree.At] (property names) or [Tree.Index] (array positions) creates the
// child node on first access, so messages can be recorded exactly where they
// occur without any bookkeeping by the caller:
//
//	errs := errtree.New("One or more errors exist in the OpenAPI definition")
//	errs.At("paths").At("/pets").At("get").Push("Missing required property: responses")
//
//	if errs.HasMessages() {
//	    fmt.Println(errs)
//	}
//
// Children are never removed, and a Tree is not safe for concurrent writers.
// Each normalization or decode pass owns its own pair of trees (errors and
// warnings).
package errtree

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/robhayesmba/openapi-enforcer/internal/issues"
	"github.com/robhayesmba/openapi-enforcer/internal/pathutil"
	"github.com/robhayesmba/openapi-enforcer/internal/severity"
	"github.com/robhayesmba/openapi-enforcer/oaserrors"
)

// Issue is a single message flattened out of a Tree together with its path.
type Issue = issues.Issue

// Tree is one node of an error (or warning) tree.
type Tree struct {
	header   string
	messages []string
	props    map[string]*Tree
	items    map[int]*Tree
}

// New returns an empty tree. The header is the sentence printed above the
// rendered messages and is only meaningful on the root.
func New(header string) *Tree {
	return &Tree{header: header}
}

// Header returns the tree's header sentence.
func (t *Tree) Header() string {
	return t.header
}

// At returns the child for a property name, creating it on first access.
func (t *Tree) At(key string) *Tree {
	if c, ok := t.props[key]; ok {
		return c
	}
	if t.props == nil {
		t.props = make(map[string]*Tree)
	}
	c := &Tree{}
	t.props[key] = c
	return c
}

// Index returns the child for an array position, creating it on first access.
func (t *Tree) Index(i int) *Tree {
	if c, ok := t.items[i]; ok {
		return c
	}
	if t.items == nil {
		t.items = make(map[int]*Tree)
	}
	c := &Tree{}
	t.items[i] = c
	return c
}

// Push appends a message to this node.
func (t *Tree) Push(msg string) {
	t.messages = append(t.messages, msg)
}

// Pushf appends a formatted message to this node.
func (t *Tree) Pushf(format string, args ...any) {
	t.messages = append(t.messages, fmt.Sprintf(format, args...))
}

// Messages returns the messages recorded directly on this node.
func (t *Tree) Messages() []string {
	return t.messages
}

// HasMessages reports whether this node or any descendant holds a message.
func (t *Tree) HasMessages() bool {
	if len(t.messages) > 0 {
		return true
	}
	for _, c := range t.items {
		if c.HasMessages() {
			return true
		}
	}
	for _, c := range t.props {
		if c.HasMessages() {
			return true
		}
	}
	return false
}

// Count returns the total number of messages in this node and its descendants.
func (t *Tree) Count() int {
	n := len(t.messages)
	for _, c := range t.items {
		n += c.Count()
	}
	for _, c := range t.props {
		n += c.Count()
	}
	return n
}

// Keys returns the child keys in rendering order: array positions
// numerically, then property names alphabetically.
func (t *Tree) Keys() []string {
	keys := make([]string, 0, len(t.items)+len(t.props))
	for _, i := range t.indices() {
		keys = append(keys, strconv.Itoa(i))
	}
	return append(keys, t.names()...)
}

func (t *Tree) indices() []int {
	out := make([]int, 0, len(t.items))
	for i := range t.items {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

func (t *Tree) names() []string {
	out := make([]string, 0, len(t.props))
	for k := range t.props {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Walk visits every node holding messages depth-first, in rendering order.
// The path uses '.' between property names and "[n]" for array positions.
func (t *Tree) Walk(fn func(path string, messages []string)) {
	b := pathutil.Get()
	defer pathutil.Put(b)
	t.walk(b, fn)
}

func (t *Tree) walk(b *pathutil.Builder, fn func(string, []string)) {
	if len(t.messages) > 0 {
		fn(b.String(), t.messages)
	}
	for _, i := range t.indices() {
		b.PushIndex(i)
		t.items[i].walk(b, fn)
		b.Pop()
	}
	for _, k := range t.names() {
		b.Push(k)
		t.props[k].walk(b, fn)
		b.Pop()
	}
}

// Issues flattens the tree into issues of the given severity.
func (t *Tree) Issues(sev severity.Severity) []Issue {
	var out []Issue
	t.Walk(func(path string, messages []string) {
		for _, m := range messages {
			out = append(out, issues.New(path, m, sev))
		}
	})
	return out
}

// String renders the header followed by the messages, each nested under an
// "at: key" line per level.
func (t *Tree) String() string {
	var sb strings.Builder
	sb.WriteString(t.header)
	indent := ""
	if t.header != "" {
		indent = "  "
	}
	t.render(&sb, indent)
	return strings.TrimPrefix(sb.String(), "\n")
}

func (t *Tree) render(sb *strings.Builder, indent string) {
	for _, m := range t.messages {
		sb.WriteString("\n" + indent + m)
	}
	for _, i := range t.indices() {
		if c := t.items[i]; c.HasMessages() {
			sb.WriteString("\n" + indent + "at: " + strconv.Itoa(i))
			c.render(sb, indent+"  ")
		}
	}
	for _, k := range t.names() {
		if c := t.props[k]; c.HasMessages() {
			sb.WriteString("\n" + indent + "at: " + k)
			c.render(sb, indent+"  ")
		}
	}
}

// Err returns nil when the tree holds no messages and a
// *oaserrors.ValidationError describing it otherwise.
func (t *Tree) Err() error {
	if !t.HasMessages() {
		return nil
	}
	return &oaserrors.ValidationError{
		Header: t.header,
		Count:  t.Count(),
		Detail: t.String(),
	}
}
