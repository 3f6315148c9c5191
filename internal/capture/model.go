package capture

import (
	"time"

	"github.com/csitools/csi-surveillance/internal/iwl"
)

// Session describes one imported capture stream as persisted by the
// storage layer.
type Session struct {
	ID             int64     `json:"ID"`
	StartTime      time.Time `json:"startTime"`      // When the capture was imported
	SourceFile     string    `json:"sourceFile"`     // Capture file the frames came from
	Hardware       string    `json:"hardware"`       // Radio that produced the capture
	Scaled         bool      `json:"scaled"`         // Whether matrices are in sqrt(SNR) units
	ExpectedFrames int       `json:"expectedFrames"` // Attempted-record count (frames are compacted)
	Config         *string   `json:"config,omitempty"`
}

// FrameRecord is a single stored frame read back from a session.
type FrameRecord struct {
	Index         int              `json:"index"`         // Position in the emitted frame sequence
	OffsetSeconds float64          `json:"offsetSeconds"` // Relative timestamp within the capture
	Scaled        bool             `json:"scaled"`
	Header        iwl.RecordHeader `json:"header"`
	Matrix        *iwl.Matrix      `json:"-"`
}
