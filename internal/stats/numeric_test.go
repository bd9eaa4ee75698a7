package stats

import (
	"math"
	"testing"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{name: "exact", in: 60, want: 60},
		{name: "round down", in: 51.234, want: 51.23},
		{name: "round up", in: 51.236, want: 51.24},
		{name: "half up", in: 0.125, want: 0.13},
		{name: "negative", in: -1.234, want: -1.23},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Round2(tt.in); got != tt.want {
				t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	if !math.IsNaN(Round2(math.NaN())) {
		t.Error("Round2(NaN) should stay NaN")
	}
}

func TestWeightedMean(t *testing.T) {
	// (60*100 + 40*50) / 150 = 53.333...
	if got := WeightedMean(60*100+40*50, 150); got != 53.33 {
		t.Errorf("WeightedMean = %v, want 53.33", got)
	}

	// 0.17 and 50 over 30 games each: 25.085 must round up.
	var sum float64
	for _, wr := range []float64{0.17, 50} {
		sum += wr * 30
	}
	if got := WeightedMean(sum, 60); got != 25.09 {
		t.Errorf("WeightedMean at tie = %v, want 25.09", got)
	}

	if got := WeightedMean(0, 0); !math.IsNaN(got) {
		t.Errorf("zero weight should give NaN, got %v", got)
	}
}

func TestClamp(t *testing.T) {
	if Clamp(-1, 0, 50) != 0 {
		t.Error("expected lower bound")
	}
	if Clamp(70, 0, 50) != 50 {
		t.Error("expected upper bound")
	}
	if Clamp(20, 0, 50) != 20 {
		t.Error("expected value inside range unchanged")
	}
}

func TestNullable(t *testing.T) {
	if Nullable(math.NaN()) != nil {
		t.Error("NaN should become nil")
	}
	if Nullable(math.Inf(1)) != nil {
		t.Error("Inf should become nil")
	}
	p := Nullable(42.5)
	if p == nil || *p != 42.5 {
		t.Errorf("expected pointer to 42.5, got %v", p)
	}
	if !math.IsNaN(FromNullable(nil)) {
		t.Error("nil should decode to NaN")
	}
	if FromNullable(p) != 42.5 {
		t.Error("round trip failed")
	}
}
