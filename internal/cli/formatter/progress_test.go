package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderUtilization(t *testing.T) {
	tests := []struct {
		name   string
		pct    float64
		filled int
		label  string
	}{
		{"empty", 0, 0, "  0%"},
		{"half", 50, 5, " 50%"},
		{"full", 100, 10, "100%"},
		{"over clamps bar not label", 150, 10, "150%"},
		{"negative clamps", -20, 0, "-20%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripANSI(RenderUtilization(tt.pct, 10))
			assert.Equal(t, tt.filled, strings.Count(got, filledBlock))
			assert.Equal(t, 10-tt.filled, strings.Count(got, emptyBlock))
			assert.True(t, strings.HasSuffix(got, tt.label), got)
		})
	}
}

func TestRenderBar(t *testing.T) {
	assert.Empty(t, RenderBar(0, 10, 10, StyleBlue))
	assert.Empty(t, RenderBar(5, 0, 10, StyleBlue))
	assert.Equal(t, 5, strings.Count(stripANSI(RenderBar(5, 10, 10, StyleBlue)), filledBlock))
	assert.Equal(t, 10, strings.Count(stripANSI(RenderBar(50, 10, 10, StyleBlue)), filledBlock))
	assert.Equal(t, 1, strings.Count(stripANSI(RenderBar(0.1, 100, 10, StyleBlue)), filledBlock))
}
