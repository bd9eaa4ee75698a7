package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTendencyOf_Arrow(t *testing.T) {
	tests := []struct {
		name     string
		baseline float64
		value    float64
		want     Arrow
	}{
		{name: "above baseline", baseline: 50, value: 55, want: ArrowUp},
		{name: "below baseline", baseline: 50, value: 45, want: ArrowDown},
		{name: "equal", baseline: 50, value: 50, want: ArrowNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TendencyOf(tt.baseline, tt.value, 1)
			assert.Equal(t, tt.want, got.Arrow)
			assert.Equal(t, Round2(tt.value-tt.baseline), got.Delta)
		})
	}
}

func TestTendencyOf_NeutralWhenEqual(t *testing.T) {
	got := TendencyOf(52.5, 52.5, 3)
	assert.Equal(t, NeutralColor, got.Color)
}

func TestTendencyOf_SaturatesAtMaxSeverity(t *testing.T) {
	// |delta| * sensitivity = 100 is clamped to 50, so x = 1 and the color
	// reaches the reference endpoint.
	up := TendencyOf(50, 60, 10)
	assert.Equal(t, PositiveColor, up.Color)

	down := TendencyOf(50, 40, 10)
	assert.Equal(t, NegativeColor, down.Color)
}

func TestTendencyWithIntensity_EaseCurve(t *testing.T) {
	// severity 12.5 of 50 -> x = 0.25; with intensity 0 the ease is linear.
	linear := TendencyWithIntensity(50, 62.5, 1, 0)
	assert.InDelta(t, 60+60*0.25, linear.Color.H, 0.01)

	// With intensity 75 the exponent is 0.25: 0.25^0.25 ~= 0.7071.
	eased := TendencyWithIntensity(50, 62.5, 1, 75)
	assert.InDelta(t, 60+60*math.Pow(0.25, 0.25), eased.Color.H, 0.01)
}

func TestTendencyOf_SensitivityScales(t *testing.T) {
	low := TendencyOf(50, 51, 1)
	high := TendencyOf(50, 51, 5)
	assert.Greater(t, high.Color.H, low.Color.H)
}

func TestHSL_String(t *testing.T) {
	assert.Equal(t, "hsl(120, 100%, 30%)", PositiveColor.String())
}
