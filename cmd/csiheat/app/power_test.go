package app

import (
	"math"
	"testing"
)

func TestPowerHistogramDefaultBounds(t *testing.T) {
	h := NewPowerHistogram()

	p := 10.0
	for i := 0; i < minimumSampleCount-1; i++ {
		h.Update(&p)
	}

	got := h.GetPercentileBounds()
	want := defaultPowerBounds()
	if got != want {
		t.Errorf("GetPercentileBounds() = %+v, want defaults %+v below minimum sample count", got, want)
	}
}

func TestPowerHistogramPercentileBounds(t *testing.T) {
	h := NewPowerHistogram()

	// 100 samples spread evenly over [0, 100) dB.
	for i := 0; i < 100; i++ {
		p := float64(i)
		h.Update(&p)
	}

	bounds := h.GetPercentileBounds()
	if bounds.Min >= bounds.Max {
		t.Fatalf("bounds inverted: %+v", bounds)
	}
	if bounds.Min > 5 {
		t.Errorf("bounds.Min = %v, want <= 5th percentile", bounds.Min)
	}
	if bounds.Max < 94 {
		t.Errorf("bounds.Max = %v, want >= 95th percentile", bounds.Max)
	}
	if math.Abs(bounds.Mean-49.5) > 1 {
		t.Errorf("bounds.Mean = %v, want about 49.5", bounds.Mean)
	}
}

func TestPowerHistogramIgnoresInvalid(t *testing.T) {
	h := NewPowerHistogram()

	inf := math.Inf(-1)
	nan := math.NaN()
	h.Update(nil)
	h.Update(&inf)
	h.Update(&nan)

	if h.totalCount != 0 {
		t.Errorf("totalCount = %d after invalid updates, want 0", h.totalCount)
	}
}

func TestPowerHistogramMinimumSpan(t *testing.T) {
	h := NewPowerHistogram()

	// A tight cluster must still produce a usable display range.
	for i := 0; i < 50; i++ {
		p := 20.0 + float64(i%3)
		h.Update(&p)
	}

	bounds := h.GetPercentileBounds()
	if bounds.Max-bounds.Min < 20 {
		t.Errorf("bounds span = %v, want at least 20 dB", bounds.Max-bounds.Min)
	}
}

func TestSmoothBoundsOverride(t *testing.T) {
	s := NewSmoothBounds(0.3)
	for i := 0; i < 100; i++ {
		p := float64(i)
		s.Update(&p)
	}

	min, max := -5.0, 35.0
	s.Override(&min, &max)

	got := s.Current()
	if got.Min != min || got.Max != max {
		t.Errorf("Current() after Override = %+v, want Min=%v Max=%v", got, min, max)
	}
}

func TestSmoothBoundsNilUpdate(t *testing.T) {
	s := NewSmoothBounds(0.3)
	before := s.Current()
	if got := s.Update(nil); got != before {
		t.Errorf("Update(nil) = %+v, want unchanged %+v", got, before)
	}
}
