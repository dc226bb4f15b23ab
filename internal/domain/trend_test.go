package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func f(v float64) *float64 { return &v }

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		change *float64
		want   Trend
	}{
		{"nil is neutral", nil, TrendNeutral},
		{"nan is neutral", f(math.NaN()), TrendNeutral},
		{"zero is up", f(0), TrendUp},
		{"positive", f(3.2), TrendUp},
		{"tiny negative", f(-0.0001), TrendDown},
		{"large negative", f(-99), TrendDown},
		{"positive infinity", f(math.Inf(1)), TrendUp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.change))
		})
	}
}

func TestClassify_Colors(t *testing.T) {
	assert.Equal(t, "#39FF14", Classify(f(1)).Color)
	assert.Equal(t, "#ff5252", Classify(f(-1)).Color)
	assert.Equal(t, "#a7ffce", Classify(nil).Color)
	assert.Empty(t, Classify(nil).Glyph)
}
