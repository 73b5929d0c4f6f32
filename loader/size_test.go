package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSize(t *testing.T) {
	tests := map[int64]string{
		-1:             "-1 B",
		0:              "0 B",
		1023:           "1023 B",
		1024:           "1.0 KiB",
		1536:           "1.5 KiB",
		DefaultMaxSize: "64.0 MiB",
		3 << 30:        "3.0 GiB",
		5 << 40:        "5.0 TiB",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatSize(in), "%d", in)
	}
}
