// Package commands provides CLI command handlers for openapi-enforcer.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v4"

	enforcer "github.com/robhayesmba/openapi-enforcer"
	"github.com/robhayesmba/openapi-enforcer/loader"
	"github.com/robhayesmba/openapi-enforcer/logging"
)

// Output format constants
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// StdinFilePath is the special file path used to indicate reading from stdin.
const StdinFilePath = "-"

// Standard streams, swapped out by tests.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// ExitError ends the program with Code after its output has been written.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// ValidateOutputFormat validates an output format and returns an error if invalid.
func ValidateOutputFormat(format string) error {
	if format != FormatText && format != FormatJSON && format != FormatYAML {
		return fmt.Errorf("invalid format '%s'. Valid formats: %s, %s, %s", format, FormatText, FormatJSON, FormatYAML)
	}
	return nil
}

// OutputStructured writes data to stdout in the specified format (json or yaml).
func OutputStructured(data any, format string) error {
	var bytes []byte
	var err error

	switch format {
	case FormatJSON:
		bytes, err = json.MarshalIndent(data, "", "  ")
	case FormatYAML:
		bytes, err = yaml.Marshal(data)
	default:
		return fmt.Errorf("invalid format for structured output: %s", format)
	}

	if err != nil {
		return fmt.Errorf("marshaling to %s: %w", format, err)
	}

	Writef(stdout, "%s\n", strings.TrimSuffix(string(bytes), "\n"))
	return nil
}

// FormatSpecPath returns a display-friendly spec path.
// Returns "<stdin>" for stdin input, otherwise returns the path unchanged.
func FormatSpecPath(specPath string) string {
	if specPath == StdinFilePath {
		return "<stdin>"
	}
	return specPath
}

// Writef writes formatted output to the writer. A failed write is reported
// on os.Stderr, since the writer itself is usually stdout or stderr.
func Writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "write error: %v\n", err)
	}
}

// OutputSpecHeader outputs the common document header to stderr.
func OutputSpecHeader(specPath, version string) {
	Writef(stderr, "openapi-enforcer version: %s\n", enforcer.Version())
	Writef(stderr, "Specification: %s\n", FormatSpecPath(specPath))
	Writef(stderr, "OpenAPI Version: %s\n", version)
}

// newLogger returns a zap-backed debug logger writing to stderr when verbose
// is set, and a no-op logger otherwise. The returned func flushes the logger.
func newLogger(verbose bool) (logging.Logger, func()) {
	if !verbose {
		return logging.NopLogger{}, func() {}
	}
	zl, err := zap.NewDevelopment()
	if err != nil {
		Writef(stderr, "Warning: verbose logging unavailable: %v\n", err)
		return logging.NopLogger{}, func() {}
	}
	adapter := logging.NewZapAdapter(zl)
	return adapter, func() { _ = adapter.Sync() }
}

// loadSpec reads the document at specPath, which may be a file, a URL, or
// "-" for stdin.
func loadSpec(ctx context.Context, specPath string, logger logging.Logger) (*loader.Result, error) {
	opts := []loader.Option{
		loader.WithLogger(logger),
		loader.WithUserAgent(enforcer.UserAgent()),
	}
	if specPath == StdinFilePath {
		res, err := loader.Read(stdin, opts...)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return res, nil
	}
	res, err := loader.Load(ctx, specPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading document: %w", err)
	}
	return res, nil
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ", ")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
