package paramcodec

import (
	"errors"
	"net/url"
	"strings"

	"github.com/robhayesmba/openapi-enforcer/schema"
)

// Parameter is a parameter definition. Version 2 parameters describe their
// value with Type, Format, Items, and CollectionFormat; version 3 parameters
// use Schema, Style, and Explode.
type Parameter struct {
	Name            string `mapstructure:"name"`
	In              string `mapstructure:"in"`
	Required        bool   `mapstructure:"required"`
	AllowEmptyValue bool   `mapstructure:"allowEmptyValue"`

	Type             string         `mapstructure:"type"`
	Format           string         `mapstructure:"format"`
	Items            *schema.Schema `mapstructure:"items"`
	CollectionFormat string         `mapstructure:"collectionFormat"`

	Schema  *schema.Schema `mapstructure:"schema"`
	Style   string         `mapstructure:"style"`
	Explode *bool          `mapstructure:"explode"`
}

// DecodeParameter converts a normalized parameter object into a Parameter.
func DecodeParameter(node any) (*Parameter, error) {
	var p Parameter
	if err := schema.Into(node, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Key identifies a parameter within an operation.
func (p *Parameter) Key() string {
	return p.In + ":" + p.Name
}

// valueSchema returns the schema describing the parameter value for the
// given major version.
func (p *Parameter) valueSchema(major int) *schema.Schema {
	if major >= 3 {
		return p.Schema
	}
	return &schema.Schema{
		Type:             p.Type,
		Format:           p.Format,
		Items:            p.Items,
		CollectionFormat: p.CollectionFormat,
	}
}

// EffectiveStyle returns the declared style or the default for the
// parameter's location: simple for path and header, form for query and
// cookie.
func (p *Parameter) EffectiveStyle() string {
	if p.Style != "" {
		return p.Style
	}
	return DefaultStyle(p.In)
}

// EffectiveExplode returns the declared explode flag, or true for form style
// and false otherwise.
func (p *Parameter) EffectiveExplode() bool {
	if p.Explode != nil {
		return *p.Explode
	}
	return p.EffectiveStyle() == "form"
}

// DefaultStyle returns the default version 3 style for a location.
func DefaultStyle(in string) string {
	switch in {
	case "query", "cookie":
		return "form"
	default:
		return "simple"
	}
}

// Raw is the undecoded input for one parameter.
type Raw struct {
	values   []string
	query    url.Values
	escaping escaping
}

type escaping int

const (
	unescaped escaping = iota
	pathEscaped
	queryEscaped
)

// Single wraps a single string that needs no unescaping (header, cookie).
func Single(s string) Raw {
	return Raw{values: []string{s}}
}

// PathCapture wraps a path capture as it appeared in the request URL. Percent
// escapes are resolved per item, after the style's delimiters are split.
func PathCapture(s string) Raw {
	return Raw{values: []string{s}, escaping: pathEscaped}
}

// Multi wraps the repeated values of one query key.
func Multi(values []string) Raw {
	return Raw{values: values}
}

// FromQuery selects the values of name from a query parsed by ParseQuery.
// The whole query is kept for styles that spread one parameter over several
// keys (exploded form objects, deepObject).
func FromQuery(q url.Values, name string) Raw {
	return Raw{values: q[name], query: q, escaping: queryEscaped}
}

// ParseQuery splits a raw query string into its pairs. Keys are unescaped;
// values are kept escaped for FromQuery. Pairs with a malformed escape or a
// semicolon in the key are dropped and the first such error is returned.
func ParseQuery(rawQuery string) (url.Values, error) {
	q := url.Values{}
	var firstErr error
	for rawQuery != "" {
		var pair string
		pair, rawQuery, _ = strings.Cut(rawQuery, "&")
		if pair == "" {
			continue
		}
		rawKey, val, _ := strings.Cut(pair, "=")
		if strings.Contains(rawKey, ";") {
			if firstErr == nil {
				firstErr = errors.New("invalid semicolon separator in query")
			}
			continue
		}
		key, err := url.QueryUnescape(rawKey)
		if err == nil {
			_, err = url.QueryUnescape(val)
		}
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		q[key] = append(q[key], val)
	}
	return q, firstErr
}

func (r Raw) unescape(s string) (string, error) {
	switch r.escaping {
	case pathEscaped:
		return url.PathUnescape(s)
	case queryEscaped:
		return url.QueryUnescape(s)
	default:
		return s, nil
	}
}

// Values returns the raw strings.
func (r Raw) Values() []string {
	return r.values
}

// Empty reports whether there is nothing to decode.
func (r Raw) Empty() bool {
	return len(r.values) == 0
}

// last returns the final value; repeated non-multi query keys keep the last.
func (r Raw) last() string {
	if len(r.values) == 0 {
		return ""
	}
	return r.values[len(r.values)-1]
}
