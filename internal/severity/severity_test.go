package severity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityString(t *testing.T) {
	tests := []struct {
		name     string
		severity Severity
		expected string
	}{
		{"error level", SeverityError, "error"},
		{"warning level", SeverityWarning, "warning"},
		{"info level", SeverityInfo, "info"},
		{"unknown negative", Severity(-1), "unknown"},
		{"unknown large value", Severity(42), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.severity.String())
		})
	}
}

func TestSeveritySymbol(t *testing.T) {
	assert.Equal(t, "✗", SeverityError.Symbol())
	assert.Equal(t, "⚠", SeverityWarning.Symbol())
	assert.Equal(t, "ℹ", SeverityInfo.Symbol())
	assert.Equal(t, "?", Severity(7).Symbol())
}

func TestSeverityBlocking(t *testing.T) {
	assert.True(t, SeverityError.Blocking())
	assert.False(t, SeverityWarning.Blocking())
	assert.False(t, SeverityInfo.Blocking())
}
