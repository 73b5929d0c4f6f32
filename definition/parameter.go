package definition

import (
	"github.com/robhayesmba/openapi-enforcer/normalizer"
	"github.com/robhayesmba/openapi-enforcer/paramcodec"
)

var collectionFormats = []any{"csv", "ssv", "tsv", "pipes"}

func location(c *normalizer.Context) string {
	in, _ := sibling(c, "in").(string)
	return in
}

func inBody(c *normalizer.Context) bool { return location(c) == "body" }

// describedBySchema reports whether the value is described by schema
// (version 3, or a version 2 body) rather than by type and format.
func describedBySchema(c *normalizer.Context) bool {
	return isV3(c) || inBody(c)
}

func newParameter(schema *normalizer.Validator) *normalizer.Validator {
	items := newItems()

	in := str()
	in.Enum = normalizer.Computed(func(c *normalizer.Context) []any {
		if isV2(c) {
			return []any{"body", "formData", "header", "path", "query"}
		}
		return []any{"cookie", "header", "path", "query"}
	})

	style := str()
	style.Enum = normalizer.Computed(func(c *normalizer.Context) []any {
		styles := paramcodec.Styles(location(c))
		if len(styles) == 0 {
			// an unknown location is reported on "in"
			return nil
		}
		out := make([]any, len(styles))
		for i, s := range styles {
			out[i] = s
		}
		return out
	})
	style.Default = normalizer.Computed(func(c *normalizer.Context) any {
		if in := location(c); in != "" {
			return paramcodec.DefaultStyle(in)
		}
		return nil
	})

	explode := boolean()
	explode.Default = normalizer.Computed(func(c *normalizer.Context) any {
		style, _ := sibling(c, "style").(string)
		if style == "" {
			if location(c) == "" {
				return nil
			}
			style = paramcodec.DefaultStyle(location(c))
		}
		return style == "form"
	})

	typ := oneOf("array", "boolean", "file", "integer", "number", "string")

	p := object(map[string]*normalizer.Validator{
		"name":        requiredWhen(str(), requiredUnlessRef),
		"in":          requiredWhen(in, requiredUnlessRef),
		"description": str(),
		"required": requiredWhen(boolean(), func(c *normalizer.Context) bool {
			return location(c) == "path"
		}),
		"deprecated": v3(boolean()),
		"allowEmptyValue": allowedWhen(boolean(), func(c *normalizer.Context) bool {
			in := location(c)
			return in == "query" || (isV2(c) && in == "formData")
		}),

		"schema": requiredWhen(allowedWhen(schema, describedBySchema), func(c *normalizer.Context) bool {
			if isV2(c) {
				return true
			}
			_, hasContent := c.ParentObject()["content"]
			return !hasContent && !hasRef(c)
		}),
		"content":       v3(mapOf(newMediaType(schema))),
		"style":         v3(style),
		"explode":       v3(explode),
		"allowReserved": v3(boolean()),
		"example":       v3(anything()),
		"examples":      v3(freeForm()),
	})

	// version 2 non-body parameters describe their value inline
	inline := func(c *normalizer.Context) bool { return isV2(c) && !inBody(c) }
	for key, v := range itemProperties(items) {
		p.Properties[key] = allowedWhen(v, inline)
	}
	p.Properties["type"] = requiredWhen(allowedWhen(typ, inline), requiredUnlessRef)
	p.Properties["collectionFormat"] = allowedWhen(collectionFormat(true), inline)

	p.Errors = checkParameter
	withRef(p)
	return p
}

// newItems returns the validator for version 2 "items", which describe the
// elements of a non-body array parameter or header.
func newItems() *normalizer.Validator {
	items := object(map[string]*normalizer.Validator{})
	items.Errors = checkSchema
	for key, v := range itemProperties(items) {
		items.Properties[key] = v
	}
	items.Properties["type"] = required(oneOf("array", "boolean", "integer", "number", "string"))
	items.Properties["collectionFormat"] = collectionFormat(false)
	return items
}

// itemProperties are the properties version 2 parameters share with items.
func itemProperties(items *normalizer.Validator) map[string]*normalizer.Validator {
	return map[string]*normalizer.Validator{
		"format": str(),
		"items": requiredWhen(items, func(c *normalizer.Context) bool {
			return sibling(c, "type") == "array"
		}),
		"default":          anything(),
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
		"enum":             list(anything()),
		"multipleOf":       number(),
	}
}

// collectionFormat defaults to csv for arrays. multi is only accepted for
// parameters in query or formData.
func collectionFormat(parameter bool) *normalizer.Validator {
	v := str()
	v.Enum = normalizer.Computed(func(c *normalizer.Context) []any {
		in := location(c)
		if parameter && (in == "query" || in == "formData") {
			return append(append([]any{}, collectionFormats...), "multi")
		}
		return collectionFormats
	})
	v.Default = normalizer.Computed(func(c *normalizer.Context) any {
		if sibling(c, "type") == "array" {
			return "csv"
		}
		return nil
	})
	return v
}

func newMediaType(schema *normalizer.Validator) *normalizer.Validator {
	return object(map[string]*normalizer.Validator{
		"schema":   schema,
		"example":  anything(),
		"examples": freeForm(),
		"encoding": freeForm(),
	})
}

func checkParameter(c *normalizer.Context) {
	m := c.Object()
	if m == nil {
		return
	}
	if _, ref := m["$ref"]; ref {
		return
	}
	if m["in"] == "path" {
		if req, ok := m["required"].(bool); ok && !req {
			c.Errors.At("required").Push("Value must be true for path parameters")
		}
	}
	if isV2(c) {
		if m["type"] == "file" && m["in"] != "formData" {
			c.Errors.At("type").Push(`Parameters of type "file" must be in formData`)
		}
		if m["in"] != "body" {
			checkSchema(c)
		}
	}
}
