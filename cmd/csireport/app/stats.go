package app

import (
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/csitools/csi-surveillance/internal/capture"
	"github.com/csitools/csi-surveillance/internal/iwl"
	"github.com/csitools/csi-surveillance/internal/rf"
)

// FrameStats accumulates per-frame measurements across one session.
type FrameStats struct {
	powers  []float64 // Total CSI power per frame in dB
	offsets []float64
	rssiA   []float64
	rssiB   []float64
	rssiC   []float64

	// Amplitudes per subcarrier, pooled over frames and antenna pairs.
	subAmps [iwl.NumSubcarriers][]float64

	frames       int
	scaledFrames int
}

// Summary holds the derived statistics of a session's frames.
type Summary struct {
	Frames       int
	ScaledFrames int

	DurationSeconds float64
	FrameRate       float64 // Frames per second over the capture span

	PowerMean   float64 // dB
	PowerStdDev float64 // dB
	PowerMedian float64 // dB
	PowerMin    float64 // dB
	PowerMax    float64 // dB

	RSSIAMean float64
	RSSIBMean float64
	RSSICMean float64

	Subcarriers []SubcarrierStats
}

// SubcarrierStats holds amplitude statistics for one subcarrier.
type SubcarrierStats struct {
	Index  int
	Mean   float64
	StdDev float64
}

// Update folds one stored frame into the accumulator.
func (s *FrameStats) Update(rec *capture.FrameRecord) {
	s.frames++
	if rec.Scaled {
		s.scaledFrames++
	}
	s.offsets = append(s.offsets, rec.OffsetSeconds)

	if pwr := rec.Matrix.Power(); pwr > 0 {
		s.powers = append(s.powers, rf.ToDB(pwr, rf.Power))
	}

	nRx, nTx := rec.Matrix.NRx(), rec.Matrix.NTx()
	for sc := 0; sc < iwl.NumSubcarriers; sc++ {
		for rx := 0; rx < nRx; rx++ {
			for tx := 0; tx < nTx; tx++ {
				s.subAmps[sc] = append(s.subAmps[sc], cmplx.Abs(rec.Matrix.At(sc, rx, tx)))
			}
		}
	}

	s.rssiA = append(s.rssiA, float64(rec.Header.RSSIA))
	s.rssiB = append(s.rssiB, float64(rec.Header.RSSIB))
	s.rssiC = append(s.rssiC, float64(rec.Header.RSSIC))
}

// Summarize computes the session summary from the accumulated frames.
func (s *FrameStats) Summarize() Summary {
	sum := Summary{
		Frames:       s.frames,
		ScaledFrames: s.scaledFrames,
		RSSIAMean:    stat.Mean(s.rssiA, nil),
		RSSIBMean:    stat.Mean(s.rssiB, nil),
		RSSICMean:    stat.Mean(s.rssiC, nil),
	}

	if len(s.offsets) > 1 {
		sum.DurationSeconds = s.offsets[len(s.offsets)-1] - s.offsets[0]
		if sum.DurationSeconds > 0 {
			sum.FrameRate = float64(s.frames) / sum.DurationSeconds
		}
	}

	if len(s.powers) > 0 {
		sorted := make([]float64, len(s.powers))
		copy(sorted, s.powers)
		sort.Float64s(sorted)

		sum.PowerMean = stat.Mean(s.powers, nil)
		sum.PowerStdDev = stat.StdDev(s.powers, nil)
		sum.PowerMedian = stat.Quantile(0.5, stat.Empirical, sorted, nil)
		sum.PowerMin = sorted[0]
		sum.PowerMax = sorted[len(sorted)-1]
	} else {
		sum.PowerMean = math.NaN()
		sum.PowerStdDev = math.NaN()
		sum.PowerMedian = math.NaN()
		sum.PowerMin = math.NaN()
		sum.PowerMax = math.NaN()
	}

	if s.frames > 0 {
		sum.Subcarriers = make([]SubcarrierStats, iwl.NumSubcarriers)
		for sc := range s.subAmps {
			sum.Subcarriers[sc] = SubcarrierStats{
				Index:  sc,
				Mean:   stat.Mean(s.subAmps[sc], nil),
				StdDev: stat.StdDev(s.subAmps[sc], nil),
			}
		}
	}

	return sum
}
