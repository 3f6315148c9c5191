package iwl

import (
	"math"
	"testing"

	"github.com/csitools/csi-surveillance/internal/rf"
)

func onesMatrix(nRx, nTx int) *Matrix {
	m := NewMatrix(nRx, nTx)
	for sc := 0; sc < NumSubcarriers; sc++ {
		for rx := 0; rx < nRx; rx++ {
			for tx := 0; tx < nTx; tx++ {
				m.set(sc, rx, tx, complex(1, 0))
			}
		}
	}
	return m
}

// referenceFactor recomputes the expected scale factor from first
// principles, independent of the production code path.
func referenceFactor(h RecordHeader, csiPwr float64) float64 {
	var mag float64
	for _, rssi := range []uint8{h.RSSIA, h.RSSIB, h.RSSIC} {
		if rssi != 0 {
			mag += rf.FromDB(float64(rssi))
		}
	}
	rssiPwr := rf.FromDB(rf.ToDB(mag, rf.Power) - 44 - float64(h.AGC))
	scale := rssiPwr / (csiPwr / NumSubcarriers)

	noiseDB := float64(h.Noise)
	if h.Noise == -127 {
		noiseDB = -92
	}
	totalNoise := rf.FromDB(noiseDB) + scale*float64(int(h.NRx)*int(h.NTx))

	factor := math.Sqrt(scale / totalNoise)
	switch h.NTx {
	case 2:
		factor *= math.Sqrt(2)
	case 3:
		factor *= math.Sqrt(rf.FromDB(4.5))
	}
	return factor
}

func TestScaleMatrix(t *testing.T) {
	testCases := []struct {
		name   string
		header RecordHeader
	}{
		{
			"single antenna",
			RecordHeader{NRx: 1, NTx: 1, RSSIA: 190, Noise: -92, AGC: 40},
		},
		{
			"two transmit antennas",
			RecordHeader{NRx: 2, NTx: 2, RSSIA: 190, RSSIB: 185, Noise: -90, AGC: 38},
		},
		{
			"three transmit antennas",
			RecordHeader{NRx: 3, NTx: 3, RSSIA: 190, RSSIB: 185, RSSIC: 180, Noise: -88, AGC: 36},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := onesMatrix(int(tc.header.NRx), int(tc.header.NTx))
			scaled, err := ScaleMatrix(m, tc.header)
			if err != nil {
				t.Fatalf("ScaleMatrix failed: %v", err)
			}

			want := complex(referenceFactor(tc.header, m.Power()), 0)
			for sc := 0; sc < NumSubcarriers; sc++ {
				got := scaled.At(sc, 0, 0)
				if math.IsNaN(real(got)) || math.IsInf(real(got), 0) {
					t.Fatalf("scaled entry is not finite: %v", got)
				}
				if math.Abs(real(got)-real(want)) > 1e-12 {
					t.Fatalf("scaled[%d][0][0] = %v, want %v", sc, got, want)
				}
			}
		})
	}
}

func TestScaleMatrixDeterministic(t *testing.T) {
	h := RecordHeader{NRx: 1, NTx: 1, RSSIA: 190, Noise: -92, AGC: 40}
	m := onesMatrix(1, 1)

	first, err := ScaleMatrix(m, h)
	if err != nil {
		t.Fatalf("ScaleMatrix failed: %v", err)
	}
	second, err := ScaleMatrix(m, h)
	if err != nil {
		t.Fatalf("ScaleMatrix failed: %v", err)
	}

	for sc := 0; sc < NumSubcarriers; sc++ {
		if first.At(sc, 0, 0) != second.At(sc, 0, 0) {
			t.Fatalf("scaling is not reproducible at subcarrier %d", sc)
		}
	}
}

func TestScaleMatrixNoiseSentinel(t *testing.T) {
	// An undefined noise floor (-127) must behave exactly like -92 dBm.
	undefined := RecordHeader{NRx: 1, NTx: 1, RSSIA: 190, Noise: -127, AGC: 40}
	explicit := RecordHeader{NRx: 1, NTx: 1, RSSIA: 190, Noise: -92, AGC: 40}

	m := onesMatrix(1, 1)
	a, err := ScaleMatrix(m, undefined)
	if err != nil {
		t.Fatalf("ScaleMatrix failed: %v", err)
	}
	b, err := ScaleMatrix(m, explicit)
	if err != nil {
		t.Fatalf("ScaleMatrix failed: %v", err)
	}

	for sc := 0; sc < NumSubcarriers; sc++ {
		if a.At(sc, 0, 0) != b.At(sc, 0, 0) {
			t.Fatalf("sentinel noise diverges from -92dBm at subcarrier %d", sc)
		}
	}
}

func TestScaleMatrixAbsentAntennasExcluded(t *testing.T) {
	// RSSI readings of 0 mean "antenna absent" and must not contribute
	// a unit-power term to the combined signal strength.
	single := RecordHeader{NRx: 1, NTx: 1, RSSIA: 190, RSSIB: 0, RSSIC: 0, Noise: -92, AGC: 40}

	m := onesMatrix(1, 1)
	got, err := ScaleMatrix(m, single)
	if err != nil {
		t.Fatalf("ScaleMatrix failed: %v", err)
	}

	want := referenceFactor(single, m.Power())
	if math.Abs(real(got.At(0, 0, 0))-want) > 1e-12 {
		t.Errorf("scaled entry = %v, want %f", got.At(0, 0, 0), want)
	}
}

func TestScaleMatrixZeroPower(t *testing.T) {
	h := RecordHeader{NRx: 1, NTx: 1, RSSIA: 190, Noise: -92, AGC: 40}
	if _, err := ScaleMatrix(NewMatrix(1, 1), h); err == nil {
		t.Error("Expected zero power error for all-zero matrix")
	}
}
