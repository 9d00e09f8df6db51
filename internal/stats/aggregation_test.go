package stats

import (
	"math"
	"testing"
)

func TestMean(t *testing.T) {
	if m := Mean([]float64{1, 2, 3, 4}); m != 2.5 {
		t.Errorf("expected 2.5, got %v", m)
	}
	if m := Mean(nil); m != 0 {
		t.Errorf("expected 0 for empty input, got %v", m)
	}
}

func TestStdDev(t *testing.T) {
	// Sample SD of {4, 6, 8, 10} is sqrt(20/3).
	sd := StdDev([]float64{4, 6, 8, 10})
	if math.Abs(sd-math.Sqrt(20.0/3.0)) > 1e-12 {
		t.Errorf("expected sqrt(20/3), got %v", sd)
	}

	if sd := StdDev([]float64{5}); sd != 0 {
		t.Errorf("expected 0 for a single value, got %v", sd)
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		values []float64
		want   float64
	}{
		{[]float64{3, 1, 2}, 2},
		{[]float64{4, 1, 3, 2}, 2.5},
		{[]float64{7}, 7},
		{nil, 0},
	}
	for _, tt := range tests {
		if got := Median(tt.values); got != tt.want {
			t.Errorf("Median(%v) = %v, want %v", tt.values, got, tt.want)
		}
	}
}

func TestMedianDoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Median(values)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input slice was reordered: %v", values)
	}
}

func TestQuantile(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	if q := Quantile(values, 0); q != 1 {
		t.Errorf("expected min, got %v", q)
	}
	if q := Quantile(values, 1); q != 5 {
		t.Errorf("expected max, got %v", q)
	}
	if q := Quantile(values, 0.25); q != 2 {
		t.Errorf("expected 2, got %v", q)
	}
}

func TestMinMaxSum(t *testing.T) {
	values := []float64{4, -1, 7, 2}
	if m := Min(values); m != -1 {
		t.Errorf("expected -1, got %v", m)
	}
	if m := Max(values); m != 7 {
		t.Errorf("expected 7, got %v", m)
	}
	if s := Sum(values); s != 12 {
		t.Errorf("expected 12, got %v", s)
	}
}
