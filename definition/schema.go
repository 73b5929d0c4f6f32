package definition

import (
	"fmt"
	"math"
	"regexp"

	"github.com/robhayesmba/openapi-enforcer/normalizer"
	"github.com/robhayesmba/openapi-enforcer/value"
)

func schemaTypes(c *normalizer.Context) []any {
	types := []any{"array", "boolean", "integer", "number", "object", "string"}
	if isV2(c) {
		types = append(types, "file")
	}
	return types
}

func newSchema() *normalizer.Validator {
	s := typed("object")
	props := map[string]*normalizer.Validator{}
	s.Properties = props
	s.Errors = checkSchema

	// additionalProperties is either a boolean or a schema
	additional := *s
	additional.Type = normalizer.Computed(func(c *normalizer.Context) string {
		if _, ok := c.Value.(bool); ok {
			return "boolean"
		}
		return "object"
	})

	discriminator := &normalizer.Validator{
		Type: normalizer.Computed(func(c *normalizer.Context) string {
			if isV2(c) {
				return "string"
			}
			return "object"
		}),
	}

	typ := str()
	typ.Enum = normalizer.Computed(schemaTypes)

	for k, v := range map[string]*normalizer.Validator{
		"type":        typ,
		"format":      str(),
		"title":       str(),
		"description": str(),
		"default":     anything(),
		"enum":        list(anything()),
		"example":     anything(),

		"multipleOf":       number(),
		"maximum":          number(),
		"exclusiveMaximum": boolean(),
		"minimum":          number(),
		"exclusiveMinimum": boolean(),
		"maxLength":        count(),
		"minLength":        count(),
		"pattern":          str(),
		"maxItems":         count(),
		"minItems":         count(),
		"uniqueItems":      boolean(),
		"maxProperties":    count(),
		"minProperties":    count(),
		"required":         list(str()),

		"items": requiredWhen(s, func(c *normalizer.Context) bool {
			return sibling(c, "type") == "array"
		}),
		"properties":           mapOf(s),
		"additionalProperties": &additional,
		"allOf":                list(s),
		"anyOf":                v3(list(s)),
		"oneOf":                v3(list(s)),
		"not":                  v3(s),

		"discriminator": discriminator,
		"readOnly":      boolean(),
		"writeOnly":     v3(boolean()),
		"nullable":      v3(boolean()),
		"deprecated":    v3(boolean()),
		"xml":           freeForm(),
		"externalDocs":  externalDocs(),
	} {
		props[k] = v
	}
	withRef(s)
	return s
}

var formatRanges = map[string][2]float64{
	"int32": {math.MinInt32, math.MaxInt32},
	"int64": {math.MinInt64, math.MaxInt64},
}

// checkSchema runs the cross-field checks shared by schemas and version 2
// parameters and items.
func checkSchema(c *normalizer.Context) {
	m := c.Object()
	if m == nil {
		return
	}
	checkOrder(c, m, "minimum", "maximum")
	checkOrder(c, m, "minLength", "maxLength")
	checkOrder(c, m, "minItems", "maxItems")
	checkOrder(c, m, "minProperties", "maxProperties")

	if m["type"] == "integer" {
		format, _ := m["format"].(string)
		if r, ok := formatRanges[format]; ok {
			for _, key := range []string{"minimum", "maximum", "default"} {
				if f, ok := toFloat(m[key]); ok && (f < r[0] || f > r[1]) {
					c.Errors.At(key).Pushf("Value is outside the %s range. Received: %s", format, value.Render(m[key]))
				}
			}
		}
	}

	if pattern, ok := m["pattern"].(string); ok {
		if _, err := regexp.Compile(pattern); err != nil {
			c.Warnings.At("pattern").Pushf("Pattern cannot be evaluated: %v", err)
		}
	}

	if enum, ok := m["enum"].([]any); ok {
		if def, present := m["default"]; present && !containsValue(enum, def) {
			c.Errors.At("default").Pushf("Default value must be one of: %s. Received: %s", value.JoinLiterals(enum), value.Render(def))
		}
	}

	if names, ok := m["required"].([]any); ok {
		if props, ok := m["properties"].(map[string]any); ok && m["additionalProperties"] == nil {
			for i, name := range names {
				key, _ := name.(string)
				if _, declared := props[key]; !declared {
					c.Warnings.At("required").Index(i).Pushf("Required property %q is not defined in properties", key)
				}
			}
		}
	}
}

func checkOrder(c *normalizer.Context, m map[string]any, lo, hi string) {
	a, okA := toFloat(m[lo])
	b, okB := toFloat(m[hi])
	if okA && okB && a > b {
		c.Errors.Push(fmt.Sprintf("Property %q (%s) must be less than or equal to %q (%s)",
			lo, value.FormatNumber(a), hi, value.FormatNumber(b)))
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func containsValue(list []any, v any) bool {
	for _, item := range list {
		if value.Equal(item, v) {
			return true
		}
	}
	return false
}
