package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuilder(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		b := Get()
		defer Put(b)
		assert.Equal(t, "", b.String())
		assert.Equal(t, 0, b.Len())
	})

	t.Run("keys and indices", func(t *testing.T) {
		b := Get()
		defer Put(b)

		b.Push("paths")
		b.Push("/pets")
		b.Push("get")
		b.Push("parameters")
		b.PushIndex(2)
		assert.Equal(t, "paths./pets.get.parameters[2]", b.String())

		b.Pop()
		b.Pop()
		assert.Equal(t, "paths./pets.get", b.String())
	})

	t.Run("leading index", func(t *testing.T) {
		b := Get()
		defer Put(b)

		b.PushIndex(0)
		b.Push("name")
		assert.Equal(t, "[0].name", b.String())
	})

	t.Run("pop on empty is safe", func(t *testing.T) {
		var b Builder
		b.Pop()
		assert.Equal(t, 0, b.Len())
	})
}

func TestPutOversized(t *testing.T) {
	b := &Builder{segments: make([]segment, 0, maxCap+1)}
	Put(b)
	Put(nil)
}
