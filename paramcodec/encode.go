package paramcodec

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robhayesmba/openapi-enforcer/oaserrors"
	"github.com/robhayesmba/openapi-enforcer/schema"
	"github.com/robhayesmba/openapi-enforcer/value"
)

// Encode serializes v for p. The result holds one string, or one string per
// item for version 2 multi arrays and exploded version 3 form arrays.
// Exploded form objects and deepObject parameters span several query keys
// and are not encoded.
func (c *Codec) Encode(p *Parameter, v any) ([]string, error) {
	if c.major < 3 {
		return c.encodeV2(p, v)
	}

	style := p.EffectiveStyle()
	explode := p.EffectiveExplode()
	if !StyleAllowed(p.In, style) {
		return nil, encodeError(p, fmt.Sprintf("style %q is not allowed for %s parameters", style, p.In))
	}
	s := p.Schema

	switch shapeOf(s) {
	case "array":
		parts, err := encodeItems(p, v, s.Items)
		if err != nil {
			return nil, err
		}
		return encodeArray(p, style, explode, parts)
	case "object":
		keys, vals, err := encodeProperties(p, v, s)
		if err != nil {
			return nil, err
		}
		return encodeObject(p, style, explode, keys, vals)
	default:
		text, err := encodeScalar(p, v, s)
		if err != nil {
			return nil, err
		}
		switch style {
		case "label":
			return []string{"." + text}, nil
		case "matrix":
			return []string{";" + p.Name + "=" + text}, nil
		case "simple", "form":
			return []string{text}, nil
		}
		return nil, encodeError(p, fmt.Sprintf("style %q does not apply to primitive values", style))
	}
}

func encodeArray(p *Parameter, style string, explode bool, parts []string) ([]string, error) {
	switch style {
	case "simple":
		return []string{strings.Join(parts, ",")}, nil
	case "label":
		if explode {
			return []string{"." + strings.Join(parts, ".")}, nil
		}
		return []string{"." + strings.Join(parts, ",")}, nil
	case "matrix":
		if explode {
			var sb strings.Builder
			for _, part := range parts {
				sb.WriteString(";" + p.Name + "=" + part)
			}
			return []string{sb.String()}, nil
		}
		return []string{";" + p.Name + "=" + strings.Join(parts, ",")}, nil
	case "form", "spaceDelimited", "pipeDelimited":
		if explode {
			return parts, nil
		}
		sep := map[string]string{"form": ",", "spaceDelimited": " ", "pipeDelimited": "|"}[style]
		return []string{strings.Join(parts, sep)}, nil
	}
	return nil, encodeError(p, fmt.Sprintf("style %q does not apply to arrays", style))
}

func encodeObject(p *Parameter, style string, explode bool, keys, vals []string) ([]string, error) {
	pairs := make([]string, len(keys))
	flat := make([]string, 0, len(keys)*2)
	for i := range keys {
		pairs[i] = keys[i] + "=" + vals[i]
		flat = append(flat, keys[i], vals[i])
	}
	switch {
	case style == "simple" && explode:
		return []string{strings.Join(pairs, ",")}, nil
	case style == "simple":
		return []string{strings.Join(flat, ",")}, nil
	case style == "label" && explode:
		return []string{"." + strings.Join(pairs, ".")}, nil
	case style == "label":
		return []string{"." + strings.Join(flat, ",")}, nil
	case style == "matrix" && explode:
		return []string{";" + strings.Join(pairs, ";")}, nil
	case style == "matrix":
		return []string{";" + p.Name + "=" + strings.Join(flat, ",")}, nil
	case style == "form" && !explode:
		return []string{strings.Join(flat, ",")}, nil
	case style == "spaceDelimited" && !explode:
		return []string{strings.Join(flat, " ")}, nil
	case style == "pipeDelimited" && !explode:
		return []string{strings.Join(flat, "|")}, nil
	}
	return nil, encodeError(p, fmt.Sprintf("style %q with explode %t does not apply to a single object value", style, explode))
}

func encodeItems(p *Parameter, v any, items *schema.Schema) ([]string, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, encodeError(p, "expected an array")
	}
	parts := make([]string, len(list))
	for i, item := range list {
		text, err := encodeScalar(p, item, items)
		if err != nil {
			return nil, err
		}
		parts[i] = text
	}
	return parts, nil
}

// encodeProperties returns the object's keys in sorted order with their
// encoded values.
func encodeProperties(p *Parameter, v any, s *schema.Schema) ([]string, []string, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, nil, encodeError(p, "expected an object")
	}
	keys := value.SortedKeys(m)
	vals := make([]string, len(keys))
	for i, k := range keys {
		text, err := encodeScalar(p, m[k], propertySchema(s, k))
		if err != nil {
			return nil, nil, err
		}
		vals[i] = text
	}
	return keys, vals, nil
}

// encodeScalar is the inverse of Coerce.
func encodeScalar(p *Parameter, v any, s *schema.Schema) (string, error) {
	format := ""
	if s != nil {
		format = s.Format
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case int:
		return strconv.Itoa(t), nil
	case float64:
		return value.FormatNumber(t), nil
	case time.Time:
		if format == "date" {
			return t.UTC().Format("2006-01-02"), nil
		}
		return t.UTC().Format(time.RFC3339Nano), nil
	case []byte:
		if format == "binary" {
			return encodeBits(t), nil
		}
		return base64.StdEncoding.EncodeToString(t), nil
	}
	return "", encodeError(p, fmt.Sprintf("cannot encode %T as a primitive value", v))
}

func encodeError(p *Parameter, msg string) error {
	return &oaserrors.DecodeError{Parameter: p.Name, In: p.In, Message: msg}
}
