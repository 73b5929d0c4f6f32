// Package value defines the closed set of Go types that documents, schemas,
// and decoded parameters are represented with.
//
// Decoders produce loosely typed trees (map[any]any from YAML, json.Number,
// int, uint32, ...). [Canonical] converts such a tree once, at the document
// boundary, so every engine downstream only has to handle:
//
//	nil, bool, int64, float64, string, time.Time, []byte, []any, map[string]any
package value

import (
	"encoding/base64"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Kind identifies one member of the closed value set.
type Kind int

const (
	Invalid Kind = iota
	Null
	Boolean
	Integer
	Number
	String
	Date
	Binary
	Array
	Object
)

var kindNames = [...]string{
	Invalid: "invalid",
	Null:    "null",
	Boolean: "boolean",
	Integer: "integer",
	Number:  "number",
	String:  "string",
	Date:    "date",
	Binary:  "binary",
	Array:   "array",
	Object:  "object",
}

// String returns the kind's name.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "invalid"
	}
	return kindNames[k]
}

// KindOf reports the kind of a canonical value. Values outside the closed set
// are Invalid.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return Null
	case bool:
		return Boolean
	case int64:
		return Integer
	case float64:
		return Number
	case string:
		return String
	case time.Time:
		return Date
	case []byte:
		return Binary
	case []any:
		return Array
	case map[string]any:
		return Object
	default:
		return Invalid
	}
}

// TypeName returns the document type name a kind is checked against:
// dates and binaries are strings on the wire, integers are numbers.
func TypeName(k Kind) string {
	switch k {
	case Date, Binary:
		return "string"
	default:
		return k.String()
	}
}

// Is reports whether v satisfies the document type typ ("string", "number",
// "integer", "boolean", "array", "object"). A whole-valued float64 satisfies
// "integer"; any numeric value satisfies "number"; deserialized dates and
// byte sequences satisfy "string".
func Is(typ string, v any) bool {
	switch k := KindOf(v); typ {
	case "string":
		return k == String || k == Date || k == Binary
	case "number":
		return k == Number || k == Integer
	case "integer":
		if k == Number {
			f := v.(float64)
			return f == math.Trunc(f) && !math.IsInf(f, 0)
		}
		return k == Integer
	case "boolean":
		return k == Boolean
	case "array":
		return k == Array
	case "object":
		return k == Object
	case "null":
		return k == Null
	default:
		return false
	}
}

// Canonical converts a decoded tree into the closed value set. Map keys that
// are not strings are formatted, all integer kinds become int64 (unsigned
// values that overflow become float64), float32 becomes float64, and
// json.Number becomes int64 or float64.
func Canonical(v any) (any, error) {
	switch t := v.(type) {
	case nil, bool, int64, float64, string, time.Time:
		return t, nil
	case []byte:
		return append([]byte(nil), t...), nil
	case int:
		return int64(t), nil
	case int8:
		return int64(t), nil
	case int16:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case uint:
		return canonicalUint(uint64(t)), nil
	case uint8:
		return int64(t), nil
	case uint16:
		return int64(t), nil
	case uint32:
		return int64(t), nil
	case uint64:
		return canonicalUint(t), nil
	case float32:
		return float64(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", t.String(), err)
		}
		return f, nil
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			c, err := Canonical(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = c
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			c, err := Canonical(item)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = c
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			key := keyString(k)
			c, err := Canonical(item)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			out[key] = c
		}
		return out, nil
	}
	return canonicalReflect(v)
}

func canonicalUint(u uint64) any {
	if u > math.MaxInt64 {
		return float64(u)
	}
	return int64(u)
}

func keyString(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprint(k)
}

// canonicalReflect handles typed slices and maps such as []string or
// map[string]int that callers build by hand.
func canonicalReflect(v any) (any, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			c, err := Canonical(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = c
		}
		return out, nil
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key := keyString(iter.Key().Interface())
			c, err := Canonical(iter.Value().Interface())
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			out[key] = c
		}
		return out, nil
	case reflect.Pointer:
		if rv.IsNil() {
			return nil, nil
		}
		return Canonical(rv.Elem().Interface())
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	}
	return nil, fmt.Errorf("unsupported value type %T", v)
}

// Copy returns a deep copy of a canonical value.
func Copy(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Copy(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = Copy(item)
		}
		return out
	case []byte:
		return append([]byte(nil), t...)
	default:
		return t
	}
}

// Equal reports whether two canonical values are deeply equal. Integers and
// floats compare by numeric value.
func Equal(a, b any) bool {
	switch x := a.(type) {
	case int64:
		switch y := b.(type) {
		case int64:
			return x == y
		case float64:
			return float64(x) == y
		}
		return false
	case float64:
		switch y := b.(type) {
		case int64:
			return x == float64(y)
		case float64:
			return x == y
		}
		return false
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	case []byte:
		y, ok := b.([]byte)
		return ok && string(x) == string(y)
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		y, ok := b.(map[string]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, xv := range x {
			yv, ok := y[k]
			if !ok || !Equal(xv, yv) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// Render formats a received value for use in messages: strings are quoted,
// dates use RFC 3339, byte sequences use base64, and composites are JSON.
func Render(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(t)
	case bool:
		return strconv.FormatBool(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return FormatNumber(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case []byte:
		return base64.StdEncoding.EncodeToString(t)
	case []any, map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}

// FormatNumber renders a float without exponent for ordinary magnitudes.
func FormatNumber(f float64) string {
	if a := math.Abs(f); a != 0 && (a >= 1e21 || a < 1e-6) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Literal formats an allowed value for enum messages: strings are written
// without quotes, everything else as Render does.
func Literal(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return Render(v)
}

// JoinLiterals renders a list of allowed values separated by ", ".
func JoinLiterals(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = Literal(v)
	}
	return strings.Join(parts, ", ")
}

// SortedKeys returns the keys of an object in ascending order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
