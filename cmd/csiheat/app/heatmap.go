package app

import (
	"github.com/csitools/csi-surveillance/internal/capture"
	"github.com/csitools/csi-surveillance/internal/iwl"
	"github.com/csitools/csi-surveillance/internal/rf"
)

// HeatmapData accumulates per-subcarrier power for one antenna pair, one
// row per frame in capture order.
type HeatmapData struct {
	Width, Height          int
	OffsetStart, OffsetEnd float64 // Seconds into the capture
	Scaled                 bool
	BoundsTracker          *SmoothBounds
	Rows                   [][]*float64
	Offsets                []float64 // Per-row capture offset in seconds
	SkippedFrames          int       // Frames missing the selected antenna pair
}

func NewHeatmapData(b *SmoothBounds) *HeatmapData {
	return &HeatmapData{
		Width:         iwl.NumSubcarriers,
		BoundsTracker: b,
		Rows:          make([][]*float64, 0),
	}
}

// Update appends a row of subcarrier powers from rec for the given
// antenna pair. Frames without that pair are counted and skipped.
func (h *HeatmapData) Update(rec *capture.FrameRecord, rx, tx int) {
	if rx >= int(rec.Header.NRx) || tx >= int(rec.Header.NTx) {
		h.SkippedFrames++
		return
	}

	if h.Height == 0 {
		h.OffsetStart = rec.OffsetSeconds
		h.Scaled = rec.Scaled
	}
	h.OffsetEnd = rec.OffsetSeconds
	h.Height++

	powers := make([]*float64, h.Width)
	for sc := 0; sc < h.Width; sc++ {
		v := rec.Matrix.At(sc, rx, tx)
		mag := real(v)*real(v) + imag(v)*imag(v)
		if mag == 0 {
			continue
		}
		p := rf.ToDB(mag, rf.Power)
		powers[sc] = &p
		h.BoundsTracker.Update(&p)
	}
	h.Rows = append(h.Rows, powers)
	h.Offsets = append(h.Offsets, rec.OffsetSeconds)
}
