// Package pathutil builds the human-readable locations attached to issues
// while an error tree is walked.
//
// A [Builder] uses push/pop semantics so that a depth-first walk only
// materializes a string when a message is actually found:
//
//	b := pathutil.Get()
//	defer pathutil.Put(b)
//
//	b.Push("paths")
//	b.Push("/pets")
//	b.PushIndex(0)
//	b.String() // "paths./pets[0]"
package pathutil

import (
	"strconv"
	"strings"
	"sync"
)

// Builder accumulates path segments. Property segments are joined with '.',
// index segments are rendered as "[n]" without a separator.
type Builder struct {
	segments []segment
}

type segment struct {
	key   string
	index bool
}

// Push appends a property segment.
func (b *Builder) Push(key string) {
	b.segments = append(b.segments, segment{key: key})
}

// PushIndex appends an array index segment.
func (b *Builder) PushIndex(i int) {
	b.segments = append(b.segments, segment{key: strconv.Itoa(i), index: true})
}

// Pop removes the most recent segment. Popping an empty builder is a no-op.
func (b *Builder) Pop() {
	if len(b.segments) > 0 {
		b.segments = b.segments[:len(b.segments)-1]
	}
}

// Len returns the number of segments.
func (b *Builder) Len() int {
	return len(b.segments)
}

// Reset clears the builder for reuse.
func (b *Builder) Reset() {
	b.segments = b.segments[:0]
}

// String renders the current path.
func (b *Builder) String() string {
	var sb strings.Builder
	for i, seg := range b.segments {
		if seg.index {
			sb.WriteByte('[')
			sb.WriteString(seg.key)
			sb.WriteByte(']')
			continue
		}
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(seg.key)
	}
	return sb.String()
}

const (
	defaultCap = 8
	maxCap     = 64
)

var pool = sync.Pool{
	New: func() any {
		return &Builder{segments: make([]segment, 0, defaultCap)}
	},
}

// Get retrieves a reset Builder from the pool.
func Get() *Builder {
	b := pool.Get().(*Builder)
	b.Reset()
	return b
}

// Put returns a Builder to the pool unless it grew unusually deep.
func Put(b *Builder) {
	if b == nil || cap(b.segments) > maxCap {
		return
	}
	pool.Put(b)
}
