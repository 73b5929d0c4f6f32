// Package loader reads OpenAPI documents from files, URLs, readers, and byte
// slices and decodes them into the canonical value set used by the rest of
// the module (see package value).
//
// JSON input may carry comments and trailing commas. Numbers keep their
// precision: integers become int64 and everything else float64.
package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/tailscale/hujson"
	"go.yaml.in/yaml/v4"

	"github.com/robhayesmba/openapi-enforcer/logging"
	"github.com/robhayesmba/openapi-enforcer/oaserrors"
	"github.com/robhayesmba/openapi-enforcer/value"
)

// Format is the serialization a document was read from.
type Format string

const (
	// FormatUnknown means the format could not be determined
	FormatUnknown Format = ""
	// FormatJSON is JSON, optionally with comments and trailing commas
	FormatJSON Format = "json"
	// FormatYAML is YAML
	FormatYAML Format = "yaml"
)

// DefaultMaxSize is the largest document accepted by default (64 MiB).
const DefaultMaxSize int64 = 64 << 20

// Result is a decoded document.
type Result struct {
	// Data is the document root in canonical form
	Data map[string]any
	// Format is the format the document was decoded from
	Format Format
	// SourcePath is the file path or URL, or "" for in-memory input
	SourcePath string
	// SourceSize is the input size in bytes
	SourceSize int64
}

type config struct {
	client    *http.Client
	userAgent string
	maxSize   int64
	logger    logging.Logger
}

// Option configures loading.
type Option func(*config) error

// WithHTTPClient sets the client used to fetch documents by URL.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *config) error {
		if c == nil {
			return &oaserrors.ConfigError{Option: "WithHTTPClient", Message: "client cannot be nil"}
		}
		cfg.client = c
		return nil
	}
}

// WithUserAgent sets the User-Agent header sent when fetching by URL.
func WithUserAgent(ua string) Option {
	return func(cfg *config) error {
		cfg.userAgent = ua
		return nil
	}
}

// WithMaxSize limits the number of bytes read from any source.
func WithMaxSize(n int64) Option {
	return func(cfg *config) error {
		if n <= 0 {
			return &oaserrors.ConfigError{Option: "WithMaxSize", Value: n, Message: "must be positive"}
		}
		cfg.maxSize = n
		return nil
	}
}

// WithLogger sets the logger for load diagnostics.
func WithLogger(l logging.Logger) Option {
	return func(cfg *config) error {
		cfg.logger = logging.OrNop(l)
		return nil
	}
}

func applyOptions(opts ...Option) (*config, error) {
	cfg := &config{
		userAgent: "openapi-enforcer",
		maxSize:   DefaultMaxSize,
		logger:    logging.NopLogger{},
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.client == nil {
		cfg.client = &http.Client{Timeout: 30 * time.Second}
	}
	return cfg, nil
}

// Load reads the document at path. Paths starting with http:// or https://
// are fetched. The format comes from the file extension (or the response
// Content-Type) and falls back to sniffing the content.
func Load(ctx context.Context, path string, opts ...Option) (*Result, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, err
	}

	var data []byte
	format := formatFromPath(path)
	if isURL(path) {
		var contentType string
		data, contentType, err = cfg.fetch(ctx, path)
		if err != nil {
			return nil, &oaserrors.ParseError{Path: path, Message: "failed to fetch document", Cause: err}
		}
		if format == FormatUnknown {
			format = formatFromContentType(contentType)
		}
	} else {
		data, err = cfg.readFile(path)
		if err != nil {
			return nil, &oaserrors.ParseError{Path: path, Message: "failed to read file", Cause: err}
		}
	}

	res, err := cfg.decode(data, format, path)
	if err != nil {
		return nil, err
	}
	cfg.logger.Debug("document loaded", "path", path, "format", string(res.Format), "size", res.SourceSize)
	return res, nil
}

// LoadBytes decodes data. An unknown format is sniffed from the content.
func LoadBytes(data []byte, format Format, opts ...Option) (*Result, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > cfg.maxSize {
		return nil, tooLarge("", cfg.maxSize, int64(len(data)))
	}
	return cfg.decode(data, format, "")
}

// Read decodes everything read from r.
func Read(r io.Reader, opts ...Option) (*Result, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, err
	}
	data, err := cfg.readAll(r, "")
	if err != nil {
		return nil, err
	}
	return cfg.decode(data, FormatUnknown, "")
}

func (cfg *config) readFile(path string) ([]byte, error) {
	f, err := os.Open(path) //nolint:gosec // G304 - path is caller input
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return cfg.readAll(f, path)
}

func (cfg *config) readAll(r io.Reader, path string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, cfg.maxSize+1))
	if err != nil {
		return nil, &oaserrors.ParseError{Path: path, Message: "failed to read data", Cause: err}
	}
	if int64(len(data)) > cfg.maxSize {
		return nil, tooLarge(path, cfg.maxSize, int64(len(data)))
	}
	return data, nil
}

func (cfg *config) fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", cfg.userAgent)

	resp, err := cfg.client.Do(req) //nolint:gosec // G107 - URL is caller input
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	data, err := cfg.readAll(resp.Body, url)
	if err != nil {
		return nil, "", err
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func tooLarge(path string, limit, actual int64) error {
	return &oaserrors.ParseError{
		Path:    path,
		Message: "document too large",
		Cause:   &oaserrors.ResourceLimitError{ResourceType: "document size", Limit: limit, Actual: actual},
	}
}

func (cfg *config) decode(data []byte, format Format, path string) (*Result, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &oaserrors.ParseError{Path: path, Message: "document is empty"}
	}
	if format == FormatUnknown {
		format = sniff(data)
	}

	var raw any
	var err error
	switch format {
	case FormatJSON:
		raw, err = decodeJSON(data)
	case FormatYAML:
		raw, err = decodeYAML(data)
	default:
		return nil, &oaserrors.ParseError{Path: path, Message: fmt.Sprintf("unsupported format %q", format)}
	}
	if err != nil {
		return nil, &oaserrors.ParseError{Path: path, Format: string(format), Message: "invalid document", Cause: err}
	}

	canonical, err := value.Canonical(raw)
	if err != nil {
		return nil, &oaserrors.ParseError{Path: path, Format: string(format), Message: "unsupported value", Cause: err}
	}
	doc, ok := canonical.(map[string]any)
	if !ok {
		return nil, &oaserrors.ParseError{
			Path:    path,
			Format:  string(format),
			Message: "document root must be an object, got " + value.KindOf(canonical).String(),
		}
	}
	return &Result{
		Data:       doc,
		Format:     format,
		SourcePath: path,
		SourceSize: int64(len(data)),
	}, nil
}

func decodeJSON(data []byte) (any, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(std))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return v, nil
}

func decodeYAML(data []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// sniff treats content starting with '{' or '[' as JSON and anything else
// as YAML.
func sniff(data []byte) Format {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatYAML
}

func formatFromPath(path string) Format {
	if isURL(path) {
		if i := strings.IndexAny(path, "?#"); i >= 0 {
			path = path[:i]
		}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatUnknown
	}
}

func formatFromContentType(ct string) Format {
	ct = strings.ToLower(ct)
	switch {
	case strings.Contains(ct, "json"):
		return FormatJSON
	case strings.Contains(ct, "yaml"):
		return FormatYAML
	default:
		return FormatUnknown
	}
}

func isURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}
