package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	node := map[string]any{
		"type":     "object",
		"required": []any{"id"},
		"properties": map[string]any{
			"id":   map[string]any{"type": "integer", "format": "int64", "minimum": int64(1)},
			"tags": map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "minItems": int64(1), "maxItems": int64(3)},
			"born": map[string]any{"type": "string", "format": "date", "minimum": "2000-01-01"},
		},
		"additionalProperties": true,
		"minProperties":        int64(1),
		"x-ignored":            "extension",
	}

	s, err := Decode(node)
	require.NoError(t, err)

	assert.Equal(t, "object", s.Type)
	assert.Equal(t, []string{"id"}, s.Required)
	assert.True(t, s.IsRequired("id"))
	assert.False(t, s.IsRequired("tags"))
	require.NotNil(t, s.MinProperties)
	assert.Equal(t, 1, *s.MinProperties)
	assert.Nil(t, s.MaxProperties)

	require.Contains(t, s.Properties, "id")
	assert.Equal(t, "int64", s.Properties["id"].Format)
	assert.Equal(t, int64(1), s.Properties["id"].Minimum)
	assert.Equal(t, "2000-01-01", s.Properties["born"].Minimum)

	tags := s.Properties["tags"]
	require.NotNil(t, tags.Items)
	assert.Equal(t, "string", tags.Items.Type)
	assert.Equal(t, 3, *tags.MaxItems)

	require.NotNil(t, s.AdditionalProperties)
	assert.Equal(t, Schema{}, *s.AdditionalProperties)
}

func TestDecodeAdditionalPropertiesFalse(t *testing.T) {
	s, err := Decode(map[string]any{"type": "object", "additionalProperties": false})
	require.NoError(t, err)
	assert.Nil(t, s.AdditionalProperties)
}

func TestDecodeAdditionalPropertiesSchema(t *testing.T) {
	s, err := Decode(map[string]any{"additionalProperties": map[string]any{"type": "number"}})
	require.NoError(t, err)
	assert.Equal(t, "number", s.AdditionalProperties.Type)
	assert.Equal(t, "object", s.EffectiveType())
}

func TestDecodeErrors(t *testing.T) {
	s, err := Decode(nil)
	assert.NoError(t, err)
	assert.Nil(t, s)

	_, err = Decode("string")
	assert.EqualError(t, err, "schema: expected an object, got string")

	_, err = Decode(map[string]any{"minLength": "many"})
	assert.Error(t, err)
}

func TestEffectiveType(t *testing.T) {
	var nilSchema *Schema
	assert.Equal(t, "", nilSchema.EffectiveType())
	assert.Equal(t, "string", (&Schema{Type: "string", Items: &Schema{}}).EffectiveType())
	assert.Equal(t, "array", (&Schema{Items: &Schema{}}).EffectiveType())
	assert.Equal(t, "object", (&Schema{Properties: map[string]*Schema{}}).EffectiveType())
	assert.Equal(t, "", (&Schema{}).EffectiveType())
}
