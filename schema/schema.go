// Package schema provides the typed view of a normalized schema object used
// by the parameter codec and the random value synthesizer.
//
// Documents are normalized as untyped trees; [Decode] turns one schema node
// of such a tree into a [Schema] struct.
package schema

import (
	"fmt"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
)

// Schema is the subset of a schema object the codec and the synthesizer
// understand. Version 2 item objects share the same shape.
type Schema struct {
	Type   string `mapstructure:"type"`
	Format string `mapstructure:"format"`
	Enum   []any  `mapstructure:"enum"`

	Default any `mapstructure:"default"`

	// Minimum and Maximum are numbers, or date / date-time bounds given as
	// strings.
	Minimum          any  `mapstructure:"minimum"`
	Maximum          any  `mapstructure:"maximum"`
	ExclusiveMinimum bool `mapstructure:"exclusiveMinimum"`
	ExclusiveMaximum bool `mapstructure:"exclusiveMaximum"`

	MinLength     *int `mapstructure:"minLength"`
	MaxLength     *int `mapstructure:"maxLength"`
	MinItems      *int `mapstructure:"minItems"`
	MaxItems      *int `mapstructure:"maxItems"`
	MinProperties *int `mapstructure:"minProperties"`
	MaxProperties *int `mapstructure:"maxProperties"`

	Items                *Schema            `mapstructure:"items"`
	Properties           map[string]*Schema `mapstructure:"properties"`
	AdditionalProperties *Schema            `mapstructure:"additionalProperties"`
	Required             []string           `mapstructure:"required"`

	// CollectionFormat is the version 2 array serialization of an items
	// object nested in a parameter.
	CollectionFormat string `mapstructure:"collectionFormat"`

	Nullable bool   `mapstructure:"nullable"`
	Pattern  string `mapstructure:"pattern"`
}

// EffectiveType returns the declared type, or "array" / "object" when it is
// implied by Items / Properties / AdditionalProperties.
func (s *Schema) EffectiveType() string {
	switch {
	case s == nil:
		return ""
	case s.Type != "":
		return s.Type
	case s.Items != nil:
		return "array"
	case s.Properties != nil, s.AdditionalProperties != nil:
		return "object"
	}
	return ""
}

// IsRequired reports whether name is listed in Required.
func (s *Schema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// Decode converts an untyped schema node into a Schema.
// additionalProperties: true becomes an empty schema, false becomes nil.
func Decode(node any) (*Schema, error) {
	if node == nil {
		return nil, nil
	}
	if _, ok := node.(map[string]any); !ok {
		return nil, fmt.Errorf("schema: expected an object, got %T", node)
	}
	var s Schema
	if err := Into(node, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Into decodes an untyped node into the struct pointed to by out using the
// "mapstructure" tags of its fields. Schema-typed fields accept a boolean.
func Into(node any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.DecodeHookFuncType(booleanSchemaHook),
		Result:     out,
		TagName:    "mapstructure",
	})
	if err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	if err := dec.Decode(node); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}

var schemaType = reflect.TypeOf(Schema{})

// booleanSchemaHook maps true to an empty schema and false to nothing.
func booleanSchemaHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.Bool {
		return data, nil
	}
	if to != schemaType && !(to.Kind() == reflect.Pointer && to.Elem() == schemaType) {
		return data, nil
	}
	if data.(bool) {
		return map[string]any{}, nil
	}
	return nil, nil
}
