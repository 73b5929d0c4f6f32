// Package pathtemplate compiles path templates such as "/pets/{petId}" into
// matchers that extract the raw placeholder values from concrete paths.
//
// A segment may hold several placeholders as long as literal characters
// separate them; each placeholder then captures up to the next literal:
//
//	t := pathtemplate.MustCompile("/{a},{b}.{c}-{d}")
//	params, _ := t.Match("/paths,have.parameters-sometimes")
//	// map[a:paths b:have c:parameters d:sometimes]
//
// Captures are returned undecoded. A placeholder that captures nothing is left
// out of the result, so the caller can tell a missing value from an empty one.
package pathtemplate

import (
	"regexp"
	"sort"
	"strings"

	"github.com/robhayesmba/openapi-enforcer/oaserrors"
)

// Template is a compiled path template.
type Template struct {
	template    string
	regex       *regexp.Regexp
	names       []string
	specificity int
}

// Compile parses a path template. Placeholders are delimited by '{' and '}';
// two placeholders may not be adjacent, names may not be empty or repeated.
func Compile(template string) (*Template, error) {
	if template == "" {
		return nil, &oaserrors.TemplateError{Position: -1, Message: "path template cannot be empty"}
	}

	var rx strings.Builder
	rx.WriteString("^")

	var names []string
	specificity := 0
	prevPlaceholder := false

	for i := 0; i < len(template); {
		c := template[i]
		if c == '}' {
			return nil, templateError(template, i, "unexpected '}'")
		}
		if c != '{' {
			rx.WriteString(regexp.QuoteMeta(string(c)))
			if c != '/' {
				specificity++
			}
			prevPlaceholder = false
			i++
			continue
		}

		end := strings.IndexAny(template[i+1:], "{}")
		if end == -1 || template[i+1+end] == '{' {
			return nil, templateError(template, i, "unclosed path parameter")
		}
		name := template[i+1 : i+1+end]
		if name == "" {
			return nil, templateError(template, i, "empty path parameter name")
		}
		if prevPlaceholder {
			return nil, templateError(template, i, "path parameters must be separated by at least one literal character")
		}
		for _, existing := range names {
			if existing == name {
				return nil, templateError(template, i, "duplicate path parameter "+name)
			}
		}
		names = append(names, name)

		// lazy so that each capture stops at the next literal of its segment
		rx.WriteString("([^/]*?)")
		specificity--
		prevPlaceholder = true
		i += end + 2
	}
	rx.WriteString("$")

	re, err := regexp.Compile(rx.String())
	if err != nil {
		return nil, templateError(template, -1, err.Error())
	}
	return &Template{
		template:    template,
		regex:       re,
		names:       names,
		specificity: specificity,
	}, nil
}

func templateError(template string, pos int, msg string) error {
	return &oaserrors.TemplateError{Template: template, Position: pos, Message: msg}
}

// MustCompile is like Compile but panics if the template is invalid.
func MustCompile(template string) *Template {
	t, err := Compile(template)
	if err != nil {
		panic(err)
	}
	return t
}

// Match tests path against the template. On success it returns the raw
// capture for every placeholder that captured at least one character.
func (t *Template) Match(path string) (map[string]string, bool) {
	m := t.regex.FindStringSubmatch(path)
	if m == nil {
		return nil, false
	}
	params := make(map[string]string, len(t.names))
	for i, name := range t.names {
		if v := m[i+1]; v != "" {
			params[name] = v
		}
	}
	return params, true
}

// Names returns the placeholder names in order of appearance.
func (t *Template) Names() []string {
	return t.names
}

// String returns the source template.
func (t *Template) String() string {
	return t.template
}

// Set matches a path against several templates, most specific first.
type Set struct {
	templates []*Template
}

// NewSet compiles the templates and orders them by specificity: literal
// characters count for a template and placeholders against it; ties go to
// the longer template, then alphabetically.
func NewSet(templates ...string) (*Set, error) {
	compiled := make([]*Template, 0, len(templates))
	for _, tmpl := range templates {
		t, err := Compile(tmpl)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, t)
	}
	sort.SliceStable(compiled, func(i, j int) bool {
		a, b := compiled[i], compiled[j]
		if a.specificity != b.specificity {
			return a.specificity > b.specificity
		}
		if len(a.template) != len(b.template) {
			return len(a.template) > len(b.template)
		}
		return a.template < b.template
	})
	return &Set{templates: compiled}, nil
}

// Match returns the first template in specificity order that matches path.
func (s *Set) Match(path string) (*Template, map[string]string, bool) {
	for _, t := range s.templates {
		if params, ok := t.Match(path); ok {
			return t, params, true
		}
	}
	return nil, nil, false
}

// MatchAll returns every template that matches path, most specific first.
// Callers use it when several templates share a shape but not every one of
// them serves the request method.
func (s *Set) MatchAll(path string) []Match {
	var out []Match
	for _, t := range s.templates {
		if params, ok := t.Match(path); ok {
			out = append(out, Match{Template: t, Params: params})
		}
	}
	return out
}

// Match pairs a matching template with its captures.
type Match struct {
	Template *Template
	Params   map[string]string
}

// Templates returns the source templates in match order.
func (s *Set) Templates() []string {
	out := make([]string, len(s.templates))
	for i, t := range s.templates {
		out[i] = t.template
	}
	return out
}
