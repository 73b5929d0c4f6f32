// Package random synthesizes values that conform to a schema, for examples,
// mocks, and fuzzing.
//
// Values are drawn from an explicit random source held by the [Generator],
// so a generator built with [WithSeed] is reproducible. Shapes always follow
// the schema: enum values are picked as-is, numbers stay inside their bounds,
// lengths inside their limits, and objects receive every required property.
//
// A Generator is not safe for concurrent use.
package random

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/cast"

	"github.com/robhayesmba/openapi-enforcer/schema"
	"github.com/robhayesmba/openapi-enforcer/value"
)

const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// dates are drawn from this window when a schema gives no bounds
var (
	defaultDateMin = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	defaultDateMax = time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)
	dateSpan       = defaultDateMax.Sub(defaultDateMin)
)

const day = 24 * time.Hour

// Generator produces random values for schemas.
type Generator struct {
	cfg *config
}

// New creates a Generator.
func New(opts ...Option) (*Generator, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &Generator{cfg: cfg}, nil
}

// Value returns a random value for s, dispatching on its type and format.
// A nil schema, or one without a type, produces a string.
func (g *Generator) Value(s *schema.Schema) any {
	return g.value(s, 0)
}

func (g *Generator) value(s *schema.Schema, depth int) any {
	if v, ok := g.pickEnum(s); ok {
		return v
	}
	switch s.EffectiveType() {
	case "array":
		if depth >= g.cfg.maxDepth {
			g.cfg.logger.Debug("random: depth limit reached", "depth", depth)
			return nil
		}
		return g.array(s, depth)
	case "object":
		if depth >= g.cfg.maxDepth {
			g.cfg.logger.Debug("random: depth limit reached", "depth", depth)
			return nil
		}
		return g.object(s, depth)
	case "boolean":
		return g.Boolean(s)
	case "integer":
		return g.Integer(s)
	case "number":
		return g.Number(s)
	}
	switch format(s) {
	case "date":
		return g.Date(s)
	case "date-time":
		return g.DateTime(s)
	case "binary", "byte":
		return g.Binary(s)
	}
	return g.String(s)
}

// Array returns a slice whose length lies within minItems and maxItems, with
// every element synthesized from items.
func (g *Generator) Array(s *schema.Schema) []any {
	if v, ok := g.pickEnum(s); ok {
		if list, ok := v.([]any); ok {
			return list
		}
	}
	return g.array(s, 0)
}

func (g *Generator) array(s *schema.Schema, depth int) []any {
	var lo, hi *int
	var items *schema.Schema
	if s != nil {
		lo, hi, items = s.MinItems, s.MaxItems, s.Items
	}
	n := g.length(lo, hi, g.cfg.itemSpread)
	out := make([]any, n)
	for i := range out {
		out[i] = g.value(items, depth+1)
	}
	return out
}

// Binary returns random bytes with a length within minLength and maxLength.
func (g *Generator) Binary(s *schema.Schema) []byte {
	if v, ok := g.pickEnum(s); ok {
		if b, ok := v.([]byte); ok {
			return b
		}
	}
	lo, hi := lengthBounds(s)
	out := make([]byte, g.length(lo, hi, g.cfg.lengthSpread))
	for i := range out {
		out[i] = byte(g.cfg.rng.IntN(256))
	}
	return out
}

// Boolean returns true or false.
func (g *Generator) Boolean(s *schema.Schema) bool {
	if v, ok := g.pickEnum(s); ok {
		if b, err := cast.ToBoolE(v); err == nil {
			return b
		}
	}
	return g.cfg.rng.IntN(2) == 1
}

// Date returns a random calendar date at midnight UTC.
func (g *Generator) Date(s *schema.Schema) time.Time {
	if v, ok := g.pickEnum(s); ok {
		if t, err := cast.ToTimeE(v); err == nil {
			return t.UTC()
		}
	}
	lo, hi := g.timeBounds(s)
	first := ceilDay(lo)
	days := int64(hi.Sub(first) / day)
	if days < 0 {
		return first
	}
	return first.Add(time.Duration(g.cfg.rng.Int64N(days+1)) * day)
}

// DateTime returns a random timestamp with millisecond precision, honoring
// minimum and maximum when given as dates or timestamps.
func (g *Generator) DateTime(s *schema.Schema) time.Time {
	if v, ok := g.pickEnum(s); ok {
		if t, err := cast.ToTimeE(v); err == nil {
			return t.UTC()
		}
	}
	lo, hi := g.timeBounds(s)
	span := hi.Sub(lo).Milliseconds()
	if span <= 0 {
		return lo
	}
	return lo.Add(time.Duration(g.cfg.rng.Int64N(span+1)) * time.Millisecond)
}

// Integer returns a whole number within the schema's bounds, or within
// ±DefaultRange when it has none. Exclusive bounds move inward by one.
// Bounds beyond the int64 range are clamped to it. When the bounds admit no
// whole number, such as minimum 1.5 and maximum 1.7, no valid value exists
// and the smallest whole number above the minimum is returned.
func (g *Generator) Integer(s *schema.Schema) int64 {
	if v, ok := g.pickEnum(s); ok {
		if i, err := cast.ToInt64E(v); err == nil {
			return i
		}
	}
	lo, hi := g.numericBounds(s)
	ilo, ihi := toInt64(math.Ceil(lo)), toInt64(math.Floor(hi))
	if s != nil && s.ExclusiveMinimum && float64(ilo) == lo {
		ilo++
	}
	if s != nil && s.ExclusiveMaximum && float64(ihi) == hi {
		ihi--
	}
	if ihi < ilo {
		g.cfg.logger.Debug("random: empty integer range", "minimum", lo, "maximum", hi)
		return ilo
	}
	span := uint64(ihi - ilo)
	if span == math.MaxUint64 {
		return int64(g.cfg.rng.Uint64())
	}
	return ilo + int64(g.cfg.rng.Uint64N(span+1))
}

// toInt64 converts a whole float, saturating at the int64 limits.
func toInt64(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	default:
		return int64(f)
	}
}

// Number returns a floating point number within the schema's bounds, or
// within ±DefaultRange when it has none. Exclusive bounds are never
// returned.
func (g *Generator) Number(s *schema.Schema) float64 {
	if v, ok := g.pickEnum(s); ok {
		if f, err := cast.ToFloat64E(v); err == nil {
			return f
		}
	}
	lo, hi := g.numericBounds(s)
	if s != nil && s.ExclusiveMinimum {
		lo = math.Nextafter(lo, math.Inf(1))
	}
	if s != nil && s.ExclusiveMaximum {
		hi = math.Nextafter(hi, math.Inf(-1))
	}
	if hi <= lo {
		return lo
	}
	return min(lo+g.cfg.rng.Float64()*(hi-lo), hi)
}

// Object returns a map holding every required property, then as many
// optional properties as maxProperties leaves room for, then synthetic
// additionalPropertyN keys when additionalProperties is declared.
func (g *Generator) Object(s *schema.Schema) map[string]any {
	if v, ok := g.pickEnum(s); ok {
		if m, ok := v.(map[string]any); ok {
			return m
		}
	}
	return g.object(s, 0)
}

func (g *Generator) object(s *schema.Schema, depth int) map[string]any {
	out := map[string]any{}
	if s == nil {
		return out
	}
	lower := len(s.Required)
	if s.MinProperties != nil {
		lower = *s.MinProperties
	}
	upper := -1
	if s.MaxProperties != nil {
		upper = *s.MaxProperties
	}
	full := func() bool { return upper >= 0 && len(out) >= upper }

	for _, name := range s.Required {
		out[name] = g.value(s.Properties[name], depth+1)
	}

	optional := make([]string, 0, len(s.Properties))
	for _, name := range value.SortedKeys(s.Properties) {
		if !s.IsRequired(name) {
			optional = append(optional, name)
		}
	}
	g.cfg.rng.Shuffle(len(optional), func(i, j int) {
		optional[i], optional[j] = optional[j], optional[i]
	})
	for _, name := range optional {
		if full() {
			break
		}
		out[name] = g.value(s.Properties[name], depth+1)
	}

	if s.AdditionalProperties == nil {
		return out
	}
	target := upper
	if target < 0 {
		target = len(out) + g.cfg.rng.IntN(3)
	}
	target = max(target, lower)
	for i := 1; len(out) < target; i++ {
		key := fmt.Sprintf("additionalProperty%d", i)
		if _, taken := out[key]; taken {
			continue
		}
		out[key] = g.value(s.AdditionalProperties, depth+1)
	}
	return out
}

// String returns random alphanumeric text with a length within minLength
// and maxLength.
func (g *Generator) String(s *schema.Schema) string {
	if v, ok := g.pickEnum(s); ok {
		if str, err := cast.ToStringE(v); err == nil {
			return str
		}
	}
	lo, hi := lengthBounds(s)
	buf := make([]byte, g.length(lo, hi, g.cfg.lengthSpread))
	for i := range buf {
		buf[i] = alphabet[g.cfg.rng.IntN(len(alphabet))]
	}
	return string(buf)
}

// pickEnum picks one enum value uniformly. The value is copied so callers
// may modify it.
func (g *Generator) pickEnum(s *schema.Schema) (any, bool) {
	if s == nil || len(s.Enum) == 0 {
		return nil, false
	}
	return value.Copy(s.Enum[g.cfg.rng.IntN(len(s.Enum))]), true
}

// length picks a length in [lo, hi]. A missing lower bound is zero and a
// missing upper bound is the lower bound plus spread.
func (g *Generator) length(lo, hi *int, spread int) int {
	a := 0
	if lo != nil {
		a = max(*lo, 0)
	}
	b := a + spread
	if hi != nil {
		b = *hi
	}
	if b <= a {
		return a
	}
	return a + g.cfg.rng.IntN(b-a+1)
}

// numericBounds resolves minimum and maximum. With one bound the other lies
// twice the default range away; with none the range is centered on zero.
func (g *Generator) numericBounds(s *schema.Schema) (float64, float64) {
	w := g.cfg.rangeWidth
	var minimum, maximum any
	if s != nil {
		minimum, maximum = s.Minimum, s.Maximum
	}
	lo, hasLo := g.toFloat("minimum", minimum)
	hi, hasHi := g.toFloat("maximum", maximum)
	switch {
	case hasLo && hasHi:
		return lo, hi
	case hasLo:
		return lo, lo + 2*w
	case hasHi:
		return hi - 2*w, hi
	default:
		return -w, w
	}
}

func (g *Generator) toFloat(name string, v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		g.cfg.logger.Debug("random: ignoring bound", "bound", name, "error", err)
		return 0, false
	}
	return f, true
}

// timeBounds resolves minimum and maximum as times. With one bound the other
// lies the width of the default window away.
func (g *Generator) timeBounds(s *schema.Schema) (time.Time, time.Time) {
	var minimum, maximum any
	if s != nil {
		minimum, maximum = s.Minimum, s.Maximum
	}
	lo, hasLo := g.toTime("minimum", minimum)
	hi, hasHi := g.toTime("maximum", maximum)
	switch {
	case hasLo && hasHi:
		return lo, hi
	case hasLo:
		return lo, lo.Add(dateSpan)
	case hasHi:
		return hi.Add(-dateSpan), hi
	default:
		return defaultDateMin, defaultDateMax
	}
}

func (g *Generator) toTime(name string, v any) (time.Time, bool) {
	if v == nil {
		return time.Time{}, false
	}
	t, err := cast.ToTimeE(v)
	if err != nil {
		g.cfg.logger.Debug("random: ignoring bound", "bound", name, "error", err)
		return time.Time{}, false
	}
	return t.UTC(), true
}

func ceilDay(t time.Time) time.Time {
	d := t.Truncate(day)
	if d.Before(t) {
		d = d.Add(day)
	}
	return d
}

func lengthBounds(s *schema.Schema) (*int, *int) {
	if s == nil {
		return nil, nil
	}
	return s.MinLength, s.MaxLength
}

func format(s *schema.Schema) string {
	if s == nil {
		return ""
	}
	return s.Format
}
