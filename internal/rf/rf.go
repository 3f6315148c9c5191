// Package rf provides power-domain conversions between linear and
// logarithmic (decibel) units.
package rf

import "math"

// Mode selects how a linear value is interpreted when converting to dB.
type Mode int

const (
	// Power interprets the value as a power quantity (10*log10).
	Power Mode = iota

	// Voltage interprets the value as a voltage quantity (20*log10).
	Voltage
)

// ToDB converts a linear value to decibels. ToDB and FromDB are exact
// mathematical inverses over the power domain.
func ToDB(value float64, mode Mode) float64 {
	if mode == Voltage {
		return 20 * math.Log10(value)
	}
	return 10 * math.Log10(value)
}

// FromDB converts a power value in decibels back to linear units.
func FromDB(db float64) float64 {
	return math.Pow(10, db/10)
}
