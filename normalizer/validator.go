package normalizer

import (
	"strconv"

	"github.com/robhayesmba/openapi-enforcer/errtree"
)

// Validator describes the expected shape of one document position.
//
// Every Field may be a constant or a function of the evaluation context,
// which is how version-conditional rules are expressed:
//
//	host := &normalizer.Validator{
//	    Type:    normalizer.Const("string"),
//	    Allowed: normalizer.Computed(func(c *normalizer.Context) bool { return c.Version.Major == 2 }),
//	}
//
// A nil *Validator accepts any value and copies it through unchanged.
// Validators may reference each other cyclically (a schema's items are a
// schema); recursion is driven by the value, which is finite.
type Validator struct {
	// Type is one of string, number, integer, boolean, array, object. When
	// unset it is inferred from Items (array) or Properties /
	// AdditionalProperties (object).
	Type Field[string]

	// Enum lists the allowed values. A nil list places no restriction.
	Enum Field[[]any]

	// Required reports whether the property must be present.
	Required Field[bool]

	// Allowed reports whether the property may be present at all. Defaults
	// to true.
	Allowed Field[bool]

	// Ignore drops an otherwise valid property from the result.
	Ignore Field[bool]

	// Default supplies a value when the property is absent and not required.
	// A computed default may return nil to supply nothing.
	Default Field[any]

	// Properties maps property names to child validators.
	Properties map[string]*Validator

	// AdditionalProperties is applied to every key of a free-form map and
	// takes precedence over Properties.
	AdditionalProperties *Validator

	// Items is applied to every array element.
	Items *Validator

	// Deserialize converts a raw scalar (string, number, boolean) into its
	// normalized form. It is not applied to values that are already
	// deserialized.
	Deserialize func(*Context) any

	// Errors is invoked with the normalized value to perform cross-field
	// checks. It may push to ctx.Errors and ctx.Warnings.
	Errors func(*Context)
}

// EffectiveType resolves the declared type, falling back to the type implied
// by Items, Properties, or AdditionalProperties. An empty string means the
// validator places no constraint on the type.
func (v *Validator) EffectiveType(ctx *Context) string {
	if v.Type.IsSet() {
		if t := v.Type.Resolve(ctx); t != "" {
			return t
		}
	}
	switch {
	case v.Items != nil:
		return "array"
	case v.Properties != nil, v.AdditionalProperties != nil:
		return "object"
	}
	return ""
}

// Context is the evaluation context handed to every context function.
type Context struct {
	// Version is the document's specification version.
	Version Version

	// Parent is the context of the enclosing object or array, nil at the root.
	Parent *Context

	// Key is the property name or array index of this position.
	Key string

	// Validator is the validator being evaluated.
	Validator *Validator

	// Value is the value at this position. Inside an Errors hook it is the
	// normalized value.
	Value any

	// Errors and Warnings are the trees for this position.
	Errors   *errtree.Tree
	Warnings *errtree.Tree

	depth int
	cfg   *config
}

// Root returns the outermost context.
func (c *Context) Root() *Context {
	for c.Parent != nil {
		c = c.Parent
	}
	return c
}

// Object returns the value as an object, or nil if it is not one.
func (c *Context) Object() map[string]any {
	m, _ := c.Value.(map[string]any)
	return m
}

// ParentObject returns the enclosing object, or nil.
func (c *Context) ParentObject() map[string]any {
	if c.Parent == nil {
		return nil
	}
	return c.Parent.Object()
}

// Depth returns the nesting depth of this position; the root is 0.
func (c *Context) Depth() int {
	return c.depth
}

func (c *Context) property(key string, v *Validator, val any) *Context {
	return &Context{
		Version:   c.Version,
		Parent:    c,
		Key:       key,
		Validator: v,
		Value:     val,
		Errors:    c.Errors.At(key),
		Warnings:  c.Warnings.At(key),
		depth:     c.depth + 1,
		cfg:       c.cfg,
	}
}

func (c *Context) element(i int, v *Validator, val any) *Context {
	return &Context{
		Version:   c.Version,
		Parent:    c,
		Key:       strconv.Itoa(i),
		Validator: v,
		Value:     val,
		Errors:    c.Errors.Index(i),
		Warnings:  c.Warnings.Index(i),
		depth:     c.depth + 1,
		cfg:       c.cfg,
	}
}
