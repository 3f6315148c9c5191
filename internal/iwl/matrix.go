package iwl

import "fmt"

// NumSubcarriers is the fixed subcarrier dimension of every CSI matrix
// produced by the IWL5300 (20 MHz OFDM channel, grouped reporting).
const NumSubcarriers = 30

// Matrix is a complex-valued channel state matrix with dimensions
// NumSubcarriers x NRx x NTx. Raw matrices hold 8-bit two's complement
// components promoted to complex128; scaled matrices hold values in
// units of sqrt(SNR).
type Matrix struct {
	nRx, nTx int
	data     []complex128
}

// NewMatrix returns a zero-initialized matrix for the given antenna counts.
func NewMatrix(nRx, nTx int) *Matrix {
	return &Matrix{
		nRx:  nRx,
		nTx:  nTx,
		data: make([]complex128, NumSubcarriers*nRx*nTx),
	}
}

// MatrixFromValues builds a matrix from row-major [subcarrier][rx][tx]
// values, e.g. when deserializing a stored frame.
func MatrixFromValues(nRx, nTx int, values []complex128) (*Matrix, error) {
	if len(values) != NumSubcarriers*nRx*nTx {
		return nil, fmt.Errorf("matrix needs %d values for %dx%d antennas, got %d",
			NumSubcarriers*nRx*nTx, nRx, nTx, len(values))
	}
	m := NewMatrix(nRx, nTx)
	copy(m.data, values)
	return m, nil
}

// Values returns a copy of the matrix entries in row-major
// [subcarrier][rx][tx] order.
func (m *Matrix) Values() []complex128 {
	out := make([]complex128, len(m.data))
	copy(out, m.data)
	return out
}

// NRx returns the receive antenna dimension.
func (m *Matrix) NRx() int { return m.nRx }

// NTx returns the transmit antenna dimension.
func (m *Matrix) NTx() int { return m.nTx }

// At returns the channel estimate for the given subcarrier and antenna pair.
func (m *Matrix) At(subcarrier, rx, tx int) complex128 {
	return m.data[m.index(subcarrier, rx, tx)]
}

func (m *Matrix) set(subcarrier, rx, tx int, v complex128) {
	m.data[m.index(subcarrier, rx, tx)] = v
}

func (m *Matrix) index(subcarrier, rx, tx int) int {
	return (subcarrier*m.nRx+rx)*m.nTx + tx
}

// Power returns the total CSI power: the real part of the sum of
// v * conj(v) over all matrix entries.
func (m *Matrix) Power() float64 {
	var pwr float64
	for _, v := range m.data {
		pwr += real(v)*real(v) + imag(v)*imag(v)
	}
	return pwr
}

// scaledBy returns a new matrix with every entry multiplied by factor.
func (m *Matrix) scaledBy(factor float64) *Matrix {
	out := NewMatrix(m.nRx, m.nTx)
	f := complex(factor, 0)
	for i, v := range m.data {
		out.data[i] = v * f
	}
	return out
}
