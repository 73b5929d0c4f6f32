// Package definition holds the validator tables for OpenAPI documents.
//
// [Document] returns one validator tree that serves both major versions.
// Properties that exist in only one version are gated with Allowed, so a
// "host" in a version 3 document or a "components" in a version 2 document
// is reported as not allowed. Defaults that the parameter codec relies on
// (style, explode, collectionFormat) are filled in, and cross-field rules
// such as numeric bounds, unique operation IDs, and path template syntax are
// checked by Errors hooks.
//
// References ("$ref") are not resolved. An object holding a "$ref" skips its
// required-property checks, and its other properties are dropped with a
// warning.
package definition

import (
	"slices"
	"sync"

	"github.com/robhayesmba/openapi-enforcer/normalizer"
)

// Document returns the root validator for version 2 and version 3 documents.
// The returned tree is shared and must not be modified.
func Document() *normalizer.Validator {
	return tables().document
}

// Schema returns the validator for a schema object.
func Schema() *normalizer.Validator {
	return tables().schema
}

// Parameter returns the validator for a parameter object.
func Parameter() *normalizer.Validator {
	return tables().parameter
}

// Operation returns the validator for an operation object.
func Operation() *normalizer.Validator {
	return tables().operation
}

type table struct {
	document  *normalizer.Validator
	info      *normalizer.Validator
	server    *normalizer.Validator
	paths     *normalizer.Validator
	pathItem  *normalizer.Validator
	operation *normalizer.Validator
	parameter *normalizer.Validator
	response  *normalizer.Validator
	schema    *normalizer.Validator
}

var tables = sync.OnceValue(build)

func build() *table {
	t := &table{}
	t.schema = newSchema()
	t.parameter = newParameter(t.schema)
	t.response = newResponse(t.schema)
	t.operation = newOperation(t.parameter, t.response, t.schema)
	t.pathItem = newPathItem(t.operation, t.parameter)
	t.paths = newPaths(t.pathItem)
	t.info = newInfo()
	t.server = newServer()
	t.document = newDocument(t)
	return t
}

// predicates for Allowed, Required, and friends

func isV2(c *normalizer.Context) bool { return c.Version.Major == 2 }

func isV3(c *normalizer.Context) bool { return c.Version.Major >= 3 }

// sibling returns another property of the object holding this position.
func sibling(c *normalizer.Context, key string) any {
	return c.ParentObject()[key]
}

// siblingIs returns a predicate that holds when the sibling property key is
// one of values.
func siblingIs(key string, values ...string) func(*normalizer.Context) bool {
	return func(c *normalizer.Context) bool {
		s, _ := sibling(c, key).(string)
		return slices.Contains(values, s)
	}
}

func hasRef(c *normalizer.Context) bool {
	_, ok := c.ParentObject()["$ref"]
	return ok
}

func requiredUnlessRef(c *normalizer.Context) bool {
	return !hasRef(c)
}

// besideRef drops properties that sit next to a "$ref".
func besideRef(c *normalizer.Context) bool {
	if !hasRef(c) {
		return false
	}
	c.Warnings.Push(`Property ignored because "$ref" is present`)
	return true
}

// constructors

func typed(t string) *normalizer.Validator {
	return &normalizer.Validator{Type: normalizer.Const(t)}
}

func str() *normalizer.Validator     { return typed("string") }
func boolean() *normalizer.Validator { return typed("boolean") }
func number() *normalizer.Validator  { return typed("number") }

// anything accepts any value and copies it unchanged.
func anything() *normalizer.Validator { return &normalizer.Validator{} }

// freeForm accepts any object and copies it unchanged.
func freeForm() *normalizer.Validator { return typed("object") }

// count is a non-negative integer such as minLength.
func count() *normalizer.Validator {
	v := typed("integer")
	v.Errors = func(c *normalizer.Context) {
		if n, ok := c.Value.(int64); ok && n < 0 {
			c.Errors.Push("Value must be greater than or equal to 0")
		}
	}
	return v
}

func oneOf(values ...any) *normalizer.Validator {
	v := str()
	v.Enum = normalizer.Const(values)
	return v
}

func list(items *normalizer.Validator) *normalizer.Validator {
	return &normalizer.Validator{Type: normalizer.Const("array"), Items: items}
}

func mapOf(v *normalizer.Validator) *normalizer.Validator {
	return &normalizer.Validator{Type: normalizer.Const("object"), AdditionalProperties: v}
}

func object(props map[string]*normalizer.Validator) *normalizer.Validator {
	return &normalizer.Validator{Type: normalizer.Const("object"), Properties: props}
}

func required(v *normalizer.Validator) *normalizer.Validator {
	c := *v
	c.Required = normalizer.Const(true)
	return &c
}

func requiredWhen(v *normalizer.Validator, fn func(*normalizer.Context) bool) *normalizer.Validator {
	c := *v
	c.Required = normalizer.Computed(fn)
	return &c
}

func allowedWhen(v *normalizer.Validator, fn func(*normalizer.Context) bool) *normalizer.Validator {
	c := *v
	c.Allowed = normalizer.Computed(fn)
	return &c
}

func v2(v *normalizer.Validator) *normalizer.Validator { return allowedWhen(v, isV2) }
func v3(v *normalizer.Validator) *normalizer.Validator { return allowedWhen(v, isV3) }

// withRef adds a "$ref" property and makes the object's other properties
// yield to it. It must run after the property map is complete.
func withRef(v *normalizer.Validator) {
	for key, child := range v.Properties {
		c := *child
		c.Ignore = normalizer.Computed(besideRef)
		v.Properties[key] = &c
	}
	v.Properties["$ref"] = str()
}

func externalDocs() *normalizer.Validator {
	return object(map[string]*normalizer.Validator{
		"description": str(),
		"url":         required(str()),
	})
}
