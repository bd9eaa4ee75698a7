package stats

import (
	"fmt"
	"math"
)

// Arrow is the direction marker shown next to a winrate delta.
type Arrow string

const (
	ArrowUp   Arrow = "▲"
	ArrowDown Arrow = "▼"
	ArrowNone Arrow = ""
)

// HSL is a color in hue/saturation/lightness space.
type HSL struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	L float64 `json:"l"`
}

// String renders the color as a CSS hsl() value.
func (c HSL) String() string {
	return fmt.Sprintf("hsl(%g, %g%%, %g%%)", c.H, c.S, c.L)
}

// MarshalText lets HSL values serialize as CSS strings.
func (c HSL) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Reference colors of the three-point gradient.
var (
	NegativeColor = HSL{H: 0, S: 100, L: 40}
	NeutralColor  = HSL{H: 60, S: 100, L: 35}
	PositiveColor = HSL{H: 120, S: 100, L: 30}
)

const (
	// MaxSeverity caps the scaled deviation.
	MaxSeverity = 50.0

	// DefaultIntensity shapes the ease curve x^(1 - intensity/100).
	DefaultIntensity = 75.0

	// TendencyAdjustment scales the raw deviation before clamping.
	TendencyAdjustment = 1.0
)

// Tendency describes how a value deviates from its baseline.
type Tendency struct {
	Delta float64 `json:"delta"`
	Color HSL     `json:"color"`
	Arrow Arrow   `json:"arrow"`
}

// TendencyOf maps a winrate against its baseline onto a color and arrow
// using DefaultIntensity.
func TendencyOf(baseline, value, sensitivity float64) Tendency {
	return TendencyWithIntensity(baseline, value, sensitivity, DefaultIntensity)
}

// TendencyWithIntensity is TendencyOf with an explicit ease intensity in [0, 100].
func TendencyWithIntensity(baseline, value, sensitivity, intensity float64) Tendency {
	delta := value - baseline

	arrow := ArrowNone
	switch {
	case delta > 0:
		arrow = ArrowUp
	case delta < 0:
		arrow = ArrowDown
	}

	severity := Clamp(math.Abs(delta)*sensitivity*TendencyAdjustment, 0, MaxSeverity)
	if math.IsNaN(severity) {
		severity = 0
	}
	x := ease(severity/MaxSeverity, intensity)

	target := PositiveColor
	if delta < 0 {
		target = NegativeColor
	}

	return Tendency{
		Delta: Round2(delta),
		Color: lerpHSL(NeutralColor, target, x),
		Arrow: arrow,
	}
}

func ease(x, intensity float64) float64 {
	if x <= 0 {
		return 0
	}
	return math.Pow(x, 1-Clamp(intensity, 0, 100)/100)
}

func lerpHSL(from, to HSL, x float64) HSL {
	lerp := func(a, b float64) float64 {
		return Round2(a + (b-a)*x)
	}
	return HSL{
		H: lerp(from.H, to.H),
		S: lerp(from.S, to.S),
		L: lerp(from.L, to.L),
	}
}
