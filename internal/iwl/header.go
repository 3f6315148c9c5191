// Package iwl decodes raw capture streams produced by the Intel IWL5300
// CSI firmware extension into per-frame channel state matrices.
package iwl

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the fixed byte length of a record header.
const HeaderSize = 20

// ErrShortHeader indicates that a record does not contain enough bytes
// for a complete header.
var ErrShortHeader = fmt.Errorf("record shorter than %d header bytes", HeaderSize)

// RecordHeader holds the decoded fixed-layout header of a CSI record.
// All multi-byte fields are little-endian on the wire.
type RecordHeader struct {
	TimestampLow  uint32 // Device clock ticks, 100ns per tick
	BeamformCount uint16 // Running count of beamforming measurements (unused)
	Reserved      uint16
	NRx           uint8 // Number of receive antennas (1-3)
	NTx           uint8 // Number of transmit antennas (1-3)
	RSSIA         uint8 // RSSI of antenna A in dB, 0 = antenna not present
	RSSIB         uint8 // RSSI of antenna B in dB, 0 = antenna not present
	RSSIC         uint8 // RSSI of antenna C in dB, 0 = antenna not present
	Noise         int8  // Noise floor in dBm, -127 = undefined
	AGC           uint8 // Automatic gain control setting in dB
	AntennaSel    uint8 // Packed 2-bit receive antenna permutation codes
	PayloadLength uint16
	Rate          uint16
}

// ParseHeader decodes exactly HeaderSize bytes into a RecordHeader. It
// performs no sanity checks beyond buffer length; the caller validates
// field values.
func ParseHeader(buf []byte) (RecordHeader, error) {
	if len(buf) < HeaderSize {
		return RecordHeader{}, ErrShortHeader
	}
	return RecordHeader{
		TimestampLow:  binary.LittleEndian.Uint32(buf[0:4]),
		BeamformCount: binary.LittleEndian.Uint16(buf[4:6]),
		Reserved:      binary.LittleEndian.Uint16(buf[6:8]),
		NRx:           buf[8],
		NTx:           buf[9],
		RSSIA:         buf[10],
		RSSIB:         buf[11],
		RSSIC:         buf[12],
		Noise:         int8(buf[13]),
		AGC:           buf[14],
		AntennaSel:    buf[15],
		PayloadLength: binary.LittleEndian.Uint16(buf[16:18]),
		Rate:          binary.LittleEndian.Uint16(buf[18:20]),
	}, nil
}

// Permutation returns the receive antenna ordering encoded in AntennaSel
// as three 2-bit fields. The permutation is only defined for 3-antenna
// captures; for fewer antennas the firmware leaves AntennaSel meaningless
// and the identity ordering is returned.
func (h RecordHeader) Permutation() [3]int {
	if h.NRx != 3 {
		return [3]int{0, 1, 2}
	}
	return [3]int{
		int(h.AntennaSel & 0x3),
		int((h.AntennaSel >> 2) & 0x3),
		int((h.AntennaSel >> 4) & 0x3),
	}
}
