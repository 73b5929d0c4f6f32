package paramcodec

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/robhayesmba/openapi-enforcer/errtree"
	"github.com/robhayesmba/openapi-enforcer/schema"
)

var locationStyles = map[string][]string{
	"path":   {"simple", "label", "matrix"},
	"query":  {"form", "spaceDelimited", "pipeDelimited", "deepObject"},
	"header": {"simple"},
	"cookie": {"form"},
}

// Styles returns the styles allowed for parameters in location.
func Styles(in string) []string {
	return slices.Clone(locationStyles[in])
}

// StyleAllowed reports whether style may be used for parameters in location.
func StyleAllowed(in, style string) bool {
	return slices.Contains(locationStyles[in], style)
}

func (d *decoder) decodeV3() (any, bool) {
	p, raw := d.p, d.raw
	style := p.EffectiveStyle()
	explode := p.EffectiveExplode()
	if !StyleAllowed(p.In, style) {
		unsupported(d.errs, fmt.Sprintf("Style %q for %s parameters", style, p.In))
		return nil, false
	}

	s := p.Schema
	shape := shapeOf(s)

	// these two read keys other than the parameter name
	if style == "deepObject" || (style == "form" && explode && shape == "object") {
		if shape != "object" || raw.query == nil {
			unsupportedCombination(d.errs, style, explode, shape)
			return nil, false
		}
		return d.decodeQueryObject(style, s)
	}
	if raw.Empty() {
		return nil, false
	}

	switch style {
	case "simple":
		return d.decodeDelimited(raw.last(), ",", "=", ",", s, explode)
	case "label":
		text := raw.last()
		if !strings.HasPrefix(text, ".") {
			d.errs.Pushf("Expected value to begin with \".\". Received: %q", text)
			return nil, false
		}
		sep := ","
		if explode {
			sep = "."
		}
		return d.decodeDelimited(text[1:], sep, "=", sep, s, explode)
	case "matrix":
		return d.decodeMatrix(raw.last(), s, explode)
	case "form":
		if shape == "array" && explode {
			return d.coerceAll(raw.values, s.Items), true
		}
		return d.decodeDelimited(raw.last(), ",", "", ",", s, false)
	case "spaceDelimited", "pipeDelimited":
		if shape == "primitive" {
			unsupportedCombination(d.errs, style, explode, shape)
			return nil, false
		}
		if shape == "array" && explode {
			return d.coerceAll(raw.values, s.Items), true
		}
		sep := " "
		if style == "pipeDelimited" {
			sep = "|"
		}
		if shape == "object" && explode {
			unsupportedCombination(d.errs, style, explode, shape)
			return nil, false
		}
		return d.decodeDelimited(raw.last(), sep, "", sep, s, false)
	}
	unsupportedCombination(d.errs, style, explode, shape)
	return nil, false
}

func shapeOf(s *schema.Schema) string {
	switch s.EffectiveType() {
	case "array":
		return "array"
	case "object":
		return "object"
	default:
		return "primitive"
	}
}

func unsupportedCombination(errs *errtree.Tree, style string, explode bool, shape string) {
	unsupported(errs, fmt.Sprintf("Style %q with explode %t for %s values", style, explode, shape))
}

// decodeDelimited decodes text whose array items are separated by arraySep.
// Objects are key=value pairs separated by pairSep when explode is set (and
// kvSep is not empty), or alternating keys and values separated by arraySep.
func (d *decoder) decodeDelimited(text, arraySep, kvSep, pairSep string, s *schema.Schema, explode bool) (any, bool) {
	switch shapeOf(s) {
	case "array":
		if text == "" {
			return []any{}, true
		}
		return d.coerceAll(d.split(text, arraySep), s.Items), true
	case "object":
		if explode && kvSep != "" {
			return d.decodePairs(d.splitNonEmpty(text, pairSep), kvSep, s)
		}
		return d.decodeAlternating(d.splitNonEmpty(text, arraySep), s)
	default:
		return d.coerce(text, s)
	}
}

func (d *decoder) decodeMatrix(text string, s *schema.Schema, explode bool) (any, bool) {
	if !strings.HasPrefix(text, ";") {
		d.errs.Pushf("Expected value to begin with \";\". Received: %q", text)
		return nil, false
	}
	text = text[1:]
	prefix := d.p.Name + "="

	if shapeOf(s) == "object" && explode {
		return d.decodePairs(d.splitNonEmpty(text, ";"), "=", s)
	}
	if shapeOf(s) == "array" && explode {
		var values []string
		for _, part := range d.splitNonEmpty(text, ";") {
			if !strings.HasPrefix(part, prefix) {
				d.errs.Pushf("Expected %q. Received: %q", prefix+"...", part)
				continue
			}
			values = append(values, part[len(prefix):])
		}
		return d.coerceAll(values, s.Items), true
	}
	if !strings.HasPrefix(text, prefix) {
		d.errs.Pushf("Expected %q. Received: %q", ";"+prefix+"...", ";"+text)
		return nil, false
	}
	return d.decodeDelimited(text[len(prefix):], ",", "", ",", s, false)
}

// decodePairs decodes "k=v" parts into an object.
func (d *decoder) decodePairs(parts []string, kvSep string, s *schema.Schema) (any, bool) {
	out := make(map[string]any, len(parts))
	for _, part := range parts {
		rawKey, text, found := strings.Cut(part, kvSep)
		if !found || rawKey == "" {
			d.errs.Pushf("Expected key%svalue pairs. Received: %q", kvSep, part)
			continue
		}
		key, ok := d.text(rawKey)
		if !ok {
			continue
		}
		if v, ok := d.coerce(text, propertySchema(s, key)); ok {
			out[key] = v
		}
	}
	return out, true
}

// decodeAlternating decodes "k,v,k,v" parts into an object.
func (d *decoder) decodeAlternating(parts []string, s *schema.Schema) (any, bool) {
	if len(parts)%2 != 0 {
		d.errs.Pushf("Expected an even number of keys and values. Received: %d", len(parts))
		return nil, false
	}
	out := make(map[string]any, len(parts)/2)
	for i := 0; i < len(parts); i += 2 {
		key, ok := d.text(parts[i])
		if !ok {
			continue
		}
		if v, ok := d.coerce(parts[i+1], propertySchema(s, key)); ok {
			out[key] = v
		}
	}
	return out, true
}

// decodeQueryObject collects the properties of an exploded form object
// (one query key per property) or a deepObject (name[property] keys).
func (d *decoder) decodeQueryObject(style string, s *schema.Schema) (any, bool) {
	out := map[string]any{}
	found := false
	keys := make([]string, 0, len(d.raw.query))
	for key := range d.raw.query {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		values := d.raw.query[key]
		var prop string
		if style == "deepObject" {
			inner, ok := strings.CutPrefix(key, d.p.Name+"[")
			if !ok || !strings.HasSuffix(inner, "]") {
				continue
			}
			prop = strings.TrimSuffix(inner, "]")
		} else {
			if _, declared := s.Properties[key]; !declared && s.AdditionalProperties == nil {
				continue
			}
			prop = key
		}
		if len(values) == 0 {
			continue
		}
		found = true
		if v, ok := d.coerce(values[len(values)-1], propertySchema(s, prop)); ok {
			out[prop] = v
		}
	}
	if !found {
		return nil, false
	}
	return out, true
}

func propertySchema(s *schema.Schema, key string) *schema.Schema {
	if s == nil {
		return nil
	}
	if ps, ok := s.Properties[key]; ok {
		return ps
	}
	return s.AdditionalProperties
}
