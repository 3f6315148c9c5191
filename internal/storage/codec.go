package storage

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/csitools/csi-surveillance/internal/iwl"
)

// Matrix BLOB layout: little-endian float64 (real, imag) pairs in
// row-major [subcarrier][rx][tx] order, 16 bytes per entry.

func encodeMatrixBlob(m *iwl.Matrix) []byte {
	values := m.Values()
	buf := make([]byte, len(values)*16)
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*16:], math.Float64bits(real(v)))
		binary.LittleEndian.PutUint64(buf[i*16+8:], math.Float64bits(imag(v)))
	}
	return buf
}

func decodeMatrixBlob(blob []byte, nRx, nTx int) (*iwl.Matrix, error) {
	want := iwl.NumSubcarriers * nRx * nTx * 16
	if len(blob) != want {
		return nil, fmt.Errorf("matrix blob is %d bytes, want %d for %dx%d antennas", len(blob), want, nRx, nTx)
	}

	values := make([]complex128, len(blob)/16)
	for i := range values {
		re := math.Float64frombits(binary.LittleEndian.Uint64(blob[i*16:]))
		im := math.Float64frombits(binary.LittleEndian.Uint64(blob[i*16+8:]))
		values[i] = complex(re, im)
	}
	return iwl.MatrixFromValues(nRx, nTx, values)
}
