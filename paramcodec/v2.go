package paramcodec

import (
	"strings"

	"github.com/robhayesmba/openapi-enforcer/schema"
)

var collectionSeparators = map[string]string{
	"":      ",",
	"csv":   ",",
	"ssv":   " ",
	"tsv":   "\t",
	"pipes": "|",
}

func (d *decoder) decodeV2() (any, bool) {
	p, raw := d.p, d.raw
	if raw.Empty() {
		return nil, false
	}
	if p.In == "body" {
		unsupported(d.errs, "Decoding body parameters")
		return nil, false
	}
	s := p.valueSchema(2)
	if s.EffectiveType() == "array" && s.CollectionFormat == "multi" {
		if p.In != "query" && p.In != "formData" {
			unsupported(d.errs, `Collection format "multi" in `+p.In+" parameters")
			return nil, false
		}
		out := make([]any, 0, len(raw.values))
		for _, text := range raw.values {
			if v, ok := d.decodeV2Value(text, s.Items); ok {
				out = append(out, v)
			}
		}
		return out, true
	}
	return d.decodeV2Value(raw.last(), s)
}

// decodeV2Value splits text by the collection format of s, recursing into
// nested item arrays, and coerces the leaves.
func (d *decoder) decodeV2Value(text string, s *schema.Schema) (any, bool) {
	switch s.EffectiveType() {
	case "array":
		sep, ok := collectionSeparators[s.CollectionFormat]
		if !ok {
			unsupported(d.errs, `Collection format "`+s.CollectionFormat+`" for nested arrays`)
			return nil, false
		}
		out := []any{}
		if text == "" {
			return out, true
		}
		for _, part := range d.split(text, sep) {
			if v, ok := d.decodeV2Value(part, s.Items); ok {
				out = append(out, v)
			}
		}
		return out, true
	case "object":
		unsupported(d.errs, "Object values in version 2 parameters")
		return nil, false
	default:
		return d.coerce(text, s)
	}
}

func (c *Codec) encodeV2(p *Parameter, v any) ([]string, error) {
	s := p.valueSchema(2)
	if s.EffectiveType() == "array" && s.CollectionFormat == "multi" {
		items, ok := v.([]any)
		if !ok {
			return nil, encodeError(p, "expected an array")
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			text, err := c.encodeV2Value(p, item, s.Items)
			if err != nil {
				return nil, err
			}
			out = append(out, text)
		}
		return out, nil
	}
	text, err := c.encodeV2Value(p, v, s)
	if err != nil {
		return nil, err
	}
	return []string{text}, nil
}

func (c *Codec) encodeV2Value(p *Parameter, v any, s *schema.Schema) (string, error) {
	if s.EffectiveType() != "array" {
		return encodeScalar(p, v, s)
	}
	sep, ok := collectionSeparators[s.CollectionFormat]
	if !ok {
		return "", encodeError(p, `unsupported collection format "`+s.CollectionFormat+`"`)
	}
	items, ok := v.([]any)
	if !ok {
		return "", encodeError(p, "expected an array")
	}
	parts := make([]string, len(items))
	for i, item := range items {
		text, err := c.encodeV2Value(p, item, s.Items)
		if err != nil {
			return "", err
		}
		parts[i] = text
	}
	return strings.Join(parts, sep), nil
}
