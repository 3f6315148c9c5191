package iwl

import (
	"fmt"
	"math"

	"github.com/csitools/csi-surveillance/internal/rf"
)

const (
	// agcCalibration is the fixed dB offset between the reported RSSI
	// magnitude and true received power, per the IWL5300 firmware.
	agcCalibration = 44

	// noiseUndefined is the sentinel the firmware reports when the noise
	// floor was not measured (typical of monitor-mode captures).
	noiseUndefined = -127

	// defaultNoiseFloor substitutes for an undefined noise reading, in dBm.
	defaultNoiseFloor = -92
)

// ErrZeroPower indicates a matrix with zero total CSI power (e.g. an
// all-zero payload); the scaling factor is undefined for such frames.
var ErrZeroPower = fmt.Errorf("matrix has zero CSI power")

// totalRSS combines the per-antenna RSSI readings into total received
// signal strength in dBm. Readings of 0 mean the antenna is absent and
// are excluded rather than converted.
func totalRSS(h RecordHeader) float64 {
	var mag float64
	for _, rssi := range [3]uint8{h.RSSIA, h.RSSIB, h.RSSIC} {
		if rssi != 0 {
			mag += rf.FromDB(float64(rssi))
		}
	}
	return rf.ToDB(mag, rf.Power) - agcCalibration - float64(h.AGC)
}

// ScaleMatrix converts a raw CSI matrix into calibrated channel-gain
// units of sqrt(SNR), compensating for AGC, thermal noise and the
// quantization error of the 8-bit sample components.
//
// Returns ErrZeroPower for matrices with no signal energy, since the
// scale factor would otherwise be undefined.
func ScaleMatrix(m *Matrix, h RecordHeader) (*Matrix, error) {
	csiPwr := m.Power()
	if csiPwr == 0 {
		return nil, ErrZeroPower
	}

	rssiPwr := rf.FromDB(totalRSS(h))

	// Scale factor between normalized CSI and received power, using the
	// per-subcarrier average CSI power.
	scale := rssiPwr / (csiPwr / NumSubcarriers)

	noiseDB := float64(h.Noise)
	if h.Noise == noiseUndefined {
		noiseDB = defaultNoiseFloor
	}
	thermalNoisePwr := rf.FromDB(noiseDB)

	// Quantization error: roughly unit power per matrix entry for one
	// subcarrier's worth of signal, so NRx*NTx entries total.
	quantErrorPwr := scale * float64(int(h.NRx)*int(h.NTx))

	totalNoisePwr := thermalNoisePwr + quantErrorPwr

	factor := math.Sqrt(scale / totalNoisePwr)
	switch h.NTx {
	case 2:
		factor *= math.Sqrt2
	case 3:
		// The firmware approximates the sqrt(3) transmit correction as
		// 4.5dB instead of the exact 4.77dB; kept for bit-compatibility.
		factor *= math.Sqrt(rf.FromDB(4.5))
	}

	return m.scaledBy(factor), nil
}
