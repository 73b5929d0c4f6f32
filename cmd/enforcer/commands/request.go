package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	enforcer "github.com/robhayesmba/openapi-enforcer"
	"github.com/robhayesmba/openapi-enforcer/errtree"
	"github.com/robhayesmba/openapi-enforcer/internal/severity"
	"github.com/robhayesmba/openapi-enforcer/value"
)

// RequestFlags contains flags for the request command
type RequestFlags struct {
	Method  string
	Headers stringList
	Cookies stringList
	Strict  bool
	Verbose bool
	Format  string
}

// RequestReport is the structured output of the request command.
type RequestReport struct {
	Valid    bool            `json:"valid" yaml:"valid"`
	Method   string          `json:"method" yaml:"method"`
	Template string          `json:"template,omitempty" yaml:"template,omitempty"`
	Path     map[string]any  `json:"path,omitempty" yaml:"path,omitempty"`
	Query    map[string]any  `json:"query,omitempty" yaml:"query,omitempty"`
	Header   map[string]any  `json:"header,omitempty" yaml:"header,omitempty"`
	Cookie   map[string]any  `json:"cookie,omitempty" yaml:"cookie,omitempty"`
	Errors   []errtree.Issue `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings []errtree.Issue `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// SetupRequestFlags creates and configures a FlagSet for the request command.
func SetupRequestFlags() (*flag.FlagSet, *RequestFlags) {
	fs := flag.NewFlagSet("request", flag.ContinueOnError)
	flags := &RequestFlags{}

	fs.StringVar(&flags.Method, "X", "GET", "HTTP method")
	fs.StringVar(&flags.Method, "method", "GET", "HTTP method")
	fs.Var(&flags.Headers, "H", "request header as 'Name: value' (repeatable)")
	fs.Var(&flags.Headers, "header", "request header as 'Name: value' (repeatable)")
	fs.Var(&flags.Cookies, "cookie", "request cookie as 'name=value' (repeatable)")
	fs.BoolVar(&flags.Strict, "strict", false, "report unknown query parameters as errors")
	fs.BoolVar(&flags.Verbose, "v", false, "log debug output to stderr")
	fs.BoolVar(&flags.Verbose, "verbose", false, "log debug output to stderr")
	fs.StringVar(&flags.Format, "format", FormatText, "output format: text, json, or yaml")

	fs.Usage = func() {
		Writef(fs.Output(), "Usage: openapi-enforcer request [flags] <file|url|-> <path>\n\n")
		Writef(fs.Output(), "Match a request against a document and decode its parameters.\n")
		Writef(fs.Output(), "The path may include a query string and the basePath or server prefix.\n\n")
		Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		Writef(fs.Output(), "\nExamples:\n")
		Writef(fs.Output(), "  openapi-enforcer request openapi.yaml '/v1/pets/12'\n")
		Writef(fs.Output(), "  openapi-enforcer request openapi.yaml '/v1/pets?limit=5&tags=a,b'\n")
		Writef(fs.Output(), "  openapi-enforcer request -X POST -H 'X-Request-Id: 7' openapi.yaml /v1/pets\n")
		Writef(fs.Output(), "  openapi-enforcer request --format json swagger.json '/pets/3' | jq '.path'\n")
		Writef(fs.Output(), "\nExit Codes:\n")
		Writef(fs.Output(), "  0    The request is valid\n")
		Writef(fs.Output(), "  1    The request has errors\n")
	}

	return fs, flags
}

// HandleRequest executes the request command
func HandleRequest(args []string) error {
	fs, flags := SetupRequestFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 2 {
		fs.Usage()
		return fmt.Errorf("request command requires a document and a request path")
	}
	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}
	header, err := parseHeaders(flags.Headers)
	if err != nil {
		return err
	}
	cookies, err := parseCookies(flags.Cookies)
	if err != nil {
		return err
	}

	logger, flush := newLogger(flags.Verbose)
	defer flush()

	doc, err := loadSpec(context.Background(), fs.Arg(0), logger)
	if err != nil {
		return err
	}
	e, err := enforcer.New(doc.Data, enforcer.WithStrictMode(flags.Strict), enforcer.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("preparing document: %w", err)
	}

	res := e.Request(enforcer.Request{
		Method:  flags.Method,
		Path:    fs.Arg(1),
		Header:  header,
		Cookies: cookies,
	})
	report := RequestReport{
		Valid:    res.Valid(),
		Method:   res.Method,
		Template: res.Template,
		Path:     res.Path,
		Query:    res.Query,
		Header:   res.Header,
		Cookie:   res.Cookie,
		Errors:   res.Errors.Issues(severity.SeverityError),
		Warnings: res.Warnings.Issues(severity.SeverityWarning),
	}

	if flags.Format == FormatJSON || flags.Format == FormatYAML {
		if err := OutputStructured(report, flags.Format); err != nil {
			return err
		}
	} else {
		writeRequestText(res)
	}

	if !report.Valid {
		return &ExitError{Code: 1, Message: fmt.Sprintf("request has %d error(s)", len(report.Errors))}
	}
	return nil
}

// writeRequestText prints the match and one section per parameter location.
func writeRequestText(res *enforcer.RequestResult) {
	title := cases.Title(language.English)
	if res.Template != "" {
		Writef(stdout, "%s %s\n", res.Method, res.Template)
	}
	for _, in := range []string{"path", "query", "header", "cookie"} {
		values := res.Path
		switch in {
		case "query":
			values = res.Query
		case "header":
			values = res.Header
		case "cookie":
			values = res.Cookie
		}
		if len(values) == 0 {
			continue
		}
		Writef(stdout, "\n%s Parameters:\n", title.String(in))
		for _, name := range value.SortedKeys(values) {
			Writef(stdout, "  %s = %s\n", name, formatValue(values[name]))
		}
	}
	if res.Errors.HasMessages() {
		Writef(stderr, "\n%s\n", res.Errors)
	}
	if res.Warnings.HasMessages() {
		Writef(stderr, "\n%s\n", res.Warnings)
	}
}

// formatValue renders a decoded value as compact JSON, falling back to Go
// formatting for values JSON cannot hold.
func formatValue(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// parseHeaders turns "Name: value" pairs into a header map.
func parseHeaders(list []string) (http.Header, error) {
	header := http.Header{}
	for _, h := range list {
		name, v, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q: expected 'Name: value'", h)
		}
		header.Add(name, strings.TrimSpace(v))
	}
	return header, nil
}

// parseCookies turns "name=value" pairs into a cookie map. The first value
// of a repeated cookie wins.
func parseCookies(list []string) (map[string]string, error) {
	cookies := map[string]string{}
	for _, c := range list {
		name, v, ok := strings.Cut(c, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid cookie %q: expected 'name=value'", c)
		}
		if _, seen := cookies[name]; !seen {
			cookies[name] = v
		}
	}
	return cookies, nil
}
