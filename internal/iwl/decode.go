package iwl

import (
	"fmt"
)

// ErrLengthMismatch indicates that a record's declared payload length
// disagrees with the actual payload size. Such records are corrupt or
// truncated and are dropped rather than repaired.
var ErrLengthMismatch = fmt.Errorf("payload length mismatch")

// DecodeMatrix reconstructs the raw CSI matrix from a record payload.
//
// The firmware packs samples with no alignment guarantees: each subcarrier
// block starts with a 3-bit exponent field, followed by NRx*NTx complex
// samples of 8 bits per component, so the byte alignment of every block
// shifts by 3 bits. A running bit cursor is the only faithful way to walk
// the payload; byte-aligned reads cannot express this layout.
//
// perm is the receive antenna permutation from RecordHeader.Permutation.
// A permutation index outside the matrix bounds (seen with malformed
// AntennaSel values from real hardware) falls back to unpermuted indexing
// for that entry instead of failing the decode.
func DecodeMatrix(h RecordHeader, payload []byte, perm [3]int) (*Matrix, error) {
	if int(h.PayloadLength) != len(payload) {
		return nil, fmt.Errorf("%w: declared %d, actual %d", ErrLengthMismatch, h.PayloadLength, len(payload))
	}

	nRx, nTx := int(h.NRx), int(h.NTx)
	m := NewMatrix(nRx, nTx)

	index := 0
	for sc := 0; sc < NumSubcarriers; sc++ {
		index += 3 // per-subcarrier exponent field, not used here
		remainder := uint(index % 8)

		for j := 0; j < nRx; j++ {
			for k := 0; k < nTx; k++ {
				base := index / 8
				if base+2 >= len(payload) {
					// Final subcarrier data is occasionally short one
					// sample; leave the remaining entries zeroed.
					continue
				}

				re := int8(payload[base]>>remainder | payload[base+1]<<(8-remainder))
				im := int8(payload[base+1]>>remainder | payload[base+2]<<(8-remainder))
				v := complex(float64(re), float64(im))

				rx := perm[j]
				if rx < 0 || rx >= nRx {
					rx = j
				}
				m.set(sc, rx, k, v)

				index += 16
			}
		}
	}

	return m, nil
}
