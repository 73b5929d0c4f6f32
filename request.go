package enforcer

import (
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/robhayesmba/openapi-enforcer/errtree"
	"github.com/robhayesmba/openapi-enforcer/paramcodec"
)

// Request is the part of an HTTP request that parameters are read from.
type Request struct {
	// Method is the HTTP method; empty means GET
	Method string
	// Path is the escaped request path, optionally followed by "?" and the
	// raw query string
	Path string
	// Header holds the request headers
	Header http.Header
	// Cookies maps cookie names to their values
	Cookies map[string]string
}

// FromHTTPRequest copies what Request needs out of r. For repeated cookies
// the first value wins.
func FromHTTPRequest(r *http.Request) Request {
	path := r.URL.EscapedPath()
	if r.URL.RawQuery != "" {
		path += "?" + r.URL.RawQuery
	}
	cookies := map[string]string{}
	for _, c := range r.Cookies() {
		if _, seen := cookies[c.Name]; !seen {
			cookies[c.Name] = c.Value
		}
	}
	return Request{
		Method:  r.Method,
		Path:    path,
		Header:  r.Header.Clone(),
		Cookies: cookies,
	}
}

// RequestResult holds the decoded parameters of one request.
type RequestResult struct {
	// Method is the upper-case request method
	Method string
	// Template is the matched path template, or "" when nothing matched
	Template string

	// Path, Query, Header and Cookie hold the decoded parameter values by
	// parameter name
	Path   map[string]any
	Query  map[string]any
	Header map[string]any
	Cookie map[string]any

	// Errors is keyed by location, then parameter name
	Errors *errtree.Tree
	// Warnings is keyed like Errors
	Warnings *errtree.Tree
}

// Valid reports whether the request produced no errors.
func (r *RequestResult) Valid() bool {
	return !r.Errors.HasMessages()
}

// Err returns the error tree as a *oaserrors.ValidationError, or nil.
func (r *RequestResult) Err() error {
	return r.Errors.Err()
}

func (r *RequestResult) values(in string) map[string]any {
	switch in {
	case "path":
		return r.Path
	case "query":
		return r.Query
	case "header":
		return r.Header
	default:
		return r.Cookie
	}
}

// Request matches req against the document's paths and decodes every
// parameter the operation declares. Problems are collected in the result's
// trees rather than returned.
func (e *Enforcer) Request(req Request) *RequestResult {
	method := strings.ToLower(req.Method)
	if method == "" {
		method = "get"
	}
	res := &RequestResult{
		Method:   strings.ToUpper(method),
		Path:     map[string]any{},
		Query:    map[string]any{},
		Header:   map[string]any{},
		Cookie:   map[string]any{},
		Errors:   errtree.New("One or more errors exist in the request"),
		Warnings: errtree.New("One or more warnings exist in the request"),
	}

	rawPath, rawQuery, _ := strings.Cut(req.Path, "?")
	path := e.stripPrefix(rawPath)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	op, captures := e.match(path, method, res.Errors)
	if op == nil {
		e.logger.Debug("request not matched", "method", res.Method, "path", path)
		return res
	}
	res.Template = op.template
	e.logger.Debug("request matched", "method", res.Method, "path", path, "template", op.template)

	query, err := paramcodec.ParseQuery(rawQuery)
	if err != nil {
		res.Errors.At("query").Pushf("Invalid query string: %v", err)
	}

	missing := map[string][]string{}
	for _, p := range op.params {
		node := res.Errors.At(p.In).At(p.Name)
		raw, ok := e.raw(p, req, captures, query, node)
		if !ok {
			continue
		}
		v, decoded := e.codec.Decode(p, raw, node)
		switch {
		case decoded:
			res.values(p.In)[p.Name] = v
		case !node.HasMessages() && p.Required:
			missing[p.In] = append(missing[p.In], p.Name)
		}
	}
	for _, in := range []string{"path", "query", "header", "cookie"} {
		names := missing[in]
		sort.Strings(names)
		switch len(names) {
		case 0:
		case 1:
			res.Errors.At(in).Push("Missing required parameter: " + names[0])
		default:
			res.Errors.At(in).Push("Missing required parameters: " + strings.Join(names, ", "))
		}
	}

	e.checkUnknownQuery(op, query, res)
	return res
}

// match finds the operation serving method at path. Several templates may
// match one path; the most specific one that has the method wins.
func (e *Enforcer) match(path, method string, errs *errtree.Tree) (*operation, map[string]string) {
	matches := e.paths.MatchAll(path)
	if len(matches) == 0 {
		errs.Pushf("Path not found: %s", path)
		return nil, nil
	}
	for _, m := range matches {
		if op := e.ops[m.Template.String()][method]; op != nil {
			return op, m.Params
		}
	}
	errs.Pushf("Method not allowed: %s", strings.ToUpper(method))
	return nil, nil
}

// raw collects the undecoded input for p. It returns false when the input is
// already known to be unusable; the reason is pushed to errs.
func (e *Enforcer) raw(p *paramcodec.Parameter, req Request, captures map[string]string, query url.Values, errs *errtree.Tree) (paramcodec.Raw, bool) {
	switch p.In {
	case "path":
		capture, ok := captures[p.Name]
		if !ok {
			return paramcodec.Raw{}, true
		}
		return paramcodec.PathCapture(capture), true
	case "query":
		values := query[p.Name]
		if len(values) > 0 && values[len(values)-1] == "" && !p.AllowEmptyValue {
			errs.Push("Empty value not allowed")
			return paramcodec.Raw{}, false
		}
		return paramcodec.FromQuery(query, p.Name), true
	case "header":
		values := req.Header.Values(p.Name)
		if len(values) == 0 {
			return paramcodec.Raw{}, true
		}
		return paramcodec.Single(strings.Join(values, ",")), true
	case "cookie":
		v, ok := req.Cookies[p.Name]
		if !ok {
			return paramcodec.Raw{}, true
		}
		return paramcodec.Single(v), true
	}
	return paramcodec.Raw{}, false
}

// checkUnknownQuery reports query keys no parameter reads: errors in strict
// mode, warnings otherwise.
func (e *Enforcer) checkUnknownQuery(op *operation, query url.Values, res *RequestResult) {
	tree := res.Warnings
	if e.strict {
		tree = res.Errors
	}
	keys := make([]string, 0, len(query))
	for key := range query {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if !e.readsQueryKey(op, key) {
			tree.At("query").At(key).Push("Unknown query parameter")
		}
	}
}

// readsQueryKey reports whether any query parameter of op consumes key.
// Exploded form objects read one key per property and deepObject parameters
// read name[property] keys.
func (e *Enforcer) readsQueryKey(op *operation, key string) bool {
	for _, p := range op.params {
		if p.In != "query" {
			continue
		}
		if p.Name == key {
			return true
		}
		if e.codec.Major() < 3 || p.Schema.EffectiveType() != "object" {
			continue
		}
		switch style := p.EffectiveStyle(); {
		case style == "deepObject":
			if inner, ok := strings.CutPrefix(key, p.Name+"["); ok && strings.HasSuffix(inner, "]") {
				return true
			}
		case style == "form" && p.EffectiveExplode():
			if _, ok := p.Schema.Properties[key]; ok || p.Schema.AdditionalProperties != nil {
				return true
			}
		}
	}
	return false
}
