package mcpserver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	enforcer "github.com/robhayesmba/openapi-enforcer"
	"github.com/robhayesmba/openapi-enforcer/internal/options"
	"github.com/robhayesmba/openapi-enforcer/loader"
	"github.com/robhayesmba/openapi-enforcer/normalizer"
)

// specInput represents the three ways an OAS document can be provided to a tool.
// Exactly one of File, URL, or Content must be set.
type specInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to an OAS file on disk"`
	URL     string `json:"url,omitempty"     jsonschema:"URL to fetch an OAS document from"`
	Content string `json:"content,omitempty" jsonschema:"Inline OAS document content (JSON or YAML)"`
}

// loadedSpec is a loaded document together with the work derived from it.
// Validation and enforcer construction happen at most once per strictness
// and are shared by every tool call that hits the same cache entry.
type loadedSpec struct {
	doc *loader.Result

	mu         sync.Mutex
	validation *normalizer.Result
	enforcers  map[bool]*enforcer.Enforcer
}

func newLoadedSpec(doc *loader.Result) *loadedSpec {
	return &loadedSpec{doc: doc, enforcers: map[bool]*enforcer.Enforcer{}}
}

// validate runs the document through the normalizer once and remembers the
// outcome.
func (s *loadedSpec) validate() (*normalizer.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.validation != nil {
		return s.validation, nil
	}
	res, err := enforcer.Validate(s.doc.Data)
	if err != nil {
		return nil, err
	}
	s.validation = res
	return res, nil
}

// enforcer returns the enforcer for the given request strictness, building
// it on first use. Documents with errors are rejected on every call.
func (s *loadedSpec) enforcer(strict bool, opts ...enforcer.Option) (*enforcer.Enforcer, error) {
	if len(opts) > 0 {
		return enforcer.New(s.doc.Data, append(opts, enforcer.WithStrictMode(strict))...)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.enforcers[strict]; ok {
		return e, nil
	}
	e, err := enforcer.New(s.doc.Data, enforcer.WithStrictMode(strict))
	if err != nil {
		return nil, err
	}
	s.enforcers[strict] = e
	return e, nil
}

// makeCacheKey creates a cache key for the given spec input, or "" when the
// input cannot be cached.
func makeCacheKey(s specInput) string {
	switch {
	case s.File != "":
		absPath, err := filepath.Abs(s.File)
		if err != nil {
			return ""
		}
		info, err := os.Stat(absPath)
		if err != nil {
			return "" // Can't stat, don't cache.
		}
		return fmt.Sprintf("file:%s:%d", absPath, info.ModTime().UnixNano())
	case s.Content != "":
		h := sha256.Sum256([]byte(s.Content))
		return fmt.Sprintf("content:%s", hex.EncodeToString(h[:]))
	case s.URL != "":
		return fmt.Sprintf("url:%s", s.URL)
	default:
		return ""
	}
}

// resolve loads the document from whichever input was provided, using the
// cache for file, URL, and content inputs.
func (s specInput) resolve(ctx context.Context) (*loadedSpec, error) {
	if err := options.ExactlyOne(
		options.Source{Name: "file", Set: s.File != ""},
		options.Source{Name: "url", Set: s.URL != ""},
		options.Source{Name: "content", Set: s.Content != ""},
	); err != nil {
		return nil, err
	}

	if s.Content != "" && int64(len(s.Content)) > cfg.MaxInlineSize {
		return nil, fmt.Errorf("inline content size %d bytes exceeds maximum %d bytes; use file input instead, or set ENFORCER_MAX_INLINE_SIZE to increase",
			len(s.Content), cfg.MaxInlineSize)
	}

	if !cfg.CacheEnabled {
		return s.load(ctx)
	}
	key := makeCacheKey(s)
	if key == "" {
		return s.load(ctx)
	}
	ttl := cfg.CacheContentTTL
	switch {
	case s.File != "":
		ttl = cfg.CacheFileTTL
	case s.URL != "":
		ttl = cfg.CacheURLTTL
	}
	return specCache.load(key, ttl, func() (*loadedSpec, error) {
		return s.load(ctx)
	})
}

// load reads the document without consulting the cache.
func (s specInput) load(ctx context.Context) (*loadedSpec, error) {
	opts := []loader.Option{loader.WithUserAgent(enforcer.UserAgent())}
	var doc *loader.Result
	var err error
	switch {
	case s.File != "":
		doc, err = loader.Load(ctx, s.File, opts...)
	case s.URL != "":
		if !cfg.AllowPrivateIPs {
			opts = append(opts, loader.WithHTTPClient(newSafeHTTPClient()))
		}
		doc, err = loader.Load(ctx, s.URL, opts...)
	default:
		doc, err = loader.LoadBytes([]byte(s.Content), loader.FormatUnknown, opts...)
	}
	if err != nil {
		return nil, err
	}
	return newLoadedSpec(doc), nil
}
