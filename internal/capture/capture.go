// Package capture accumulates the decoded frames of one CSI capture stream.
package capture

import (
	"time"

	"github.com/csitools/csi-surveillance/internal/iwl"
)

const (
	// HardwareIWL5300 names the only radio whose record layout this
	// toolkit decodes.
	HardwareIWL5300 = "Intel IWL5300"

	// BandwidthMHz is the channel bandwidth of IWL5300 CSI captures.
	BandwidthMHz = 20
)

// Capture owns the ordered sequence of frames decoded from one byte
// stream, plus the attempted-record count for diagnostics. Frames are
// compacted: dropped and skipped records advance ExpectedFrames without
// producing a frame, so frame index and record position are not 1:1.
type Capture struct {
	SourceFile     string
	Hardware       string
	BandwidthMHz   int
	Frames         []iwl.Frame
	ExpectedFrames int
}

// New creates an empty capture for the given source file.
func New(sourceFile string) *Capture {
	return &Capture{
		SourceFile:   sourceFile,
		Hardware:     HardwareIWL5300,
		BandwidthMHz: BandwidthMHz,
	}
}

// FromScan wraps a scan result into a Capture.
func FromScan(sourceFile string, frames []iwl.Frame, attempted int) *Capture {
	c := New(sourceFile)
	c.Frames = frames
	c.ExpectedFrames = attempted
	return c
}

// Push appends a decoded frame. Emission order must equal byte-stream
// order; Push never reorders.
func (c *Capture) Push(f iwl.Frame) {
	c.Frames = append(c.Frames, f)
}

// Duration returns the relative timestamp of the last frame, i.e. the
// time span covered by the capture.
func (c *Capture) Duration() time.Duration {
	if len(c.Frames) == 0 {
		return 0
	}
	return c.Frames[len(c.Frames)-1].Offset
}
