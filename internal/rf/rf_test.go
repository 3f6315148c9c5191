package rf

import (
	"math"
	"testing"
)

func TestToDB(t *testing.T) {
	testCases := []struct {
		name  string
		value float64
		mode  Mode
		want  float64
	}{
		{"unit power", 1, Power, 0},
		{"10 mW power", 10, Power, 10},
		{"100 mW power", 100, Power, 20},
		{"unit voltage", 1, Voltage, 0},
		{"10 V", 10, Voltage, 20},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ToDB(tc.value, tc.mode)
			if math.Abs(got-tc.want) > 1e-12 {
				t.Errorf("ToDB(%f, %d) = %f, want %f", tc.value, tc.mode, got, tc.want)
			}
		})
	}
}

func TestFromDB(t *testing.T) {
	testCases := []struct {
		name string
		db   float64
		want float64
	}{
		{"zero dB", 0, 1},
		{"10 dB", 10, 10},
		{"negative dB", -10, 0.1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := FromDB(tc.db)
			if math.Abs(got-tc.want) > 1e-12 {
				t.Errorf("FromDB(%f) = %f, want %f", tc.db, got, tc.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for _, v := range []float64{0.001, 0.5, 1, 42, 190, 1e6} {
		got := FromDB(ToDB(v, Power))
		if math.Abs(got-v)/v > 1e-12 {
			t.Errorf("FromDB(ToDB(%f)) = %f, want %f", v, got, v)
		}
	}
}
