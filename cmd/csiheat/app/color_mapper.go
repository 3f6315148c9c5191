package app

import (
	"image/color"
	"math"
)

// ColorTheme selects a predefined color scheme for power visualization.
type ColorTheme string

const (
	ClassicTheme   ColorTheme = "classic"   // Blue to red transition
	GrayscaleTheme ColorTheme = "grayscale" // Black to white transition
	ThermalTheme   ColorTheme = "thermal"   // Black to red to yellow to white
	MarineTheme    ColorTheme = "marine"    // Deep blue to cyan to white

	DefaultColorMapSize = 256
)

var validColorThemes = map[ColorTheme]struct{}{
	ClassicTheme:   {},
	GrayscaleTheme: {},
	ThermalTheme:   {},
	MarineTheme:    {},
}

// ColorMapper maps power values onto a pre-computed color gradient for
// the active power bounds.
type ColorMapper struct {
	colorMap      []color.Color
	theme         func(float64) color.Color
	themeName     ColorTheme
	size          int
	powerPerIndex float64
	boundsMin     float64
}

// NewColorMapper creates a color mapper with the given theme and bounds.
func NewColorMapper(theme ColorTheme, bounds PowerBounds) *ColorMapper {
	cm := &ColorMapper{
		colorMap:  make([]color.Color, DefaultColorMapSize),
		theme:     getColorTheme(theme),
		themeName: theme,
		size:      DefaultColorMapSize,
	}
	cm.UpdateBounds(bounds)
	return cm
}

// UpdateBounds updates the power bounds and recomputes the color map.
func (cm *ColorMapper) UpdateBounds(bounds PowerBounds) {
	cm.boundsMin = bounds.Min
	cm.powerPerIndex = (bounds.Max - bounds.Min) / float64(cm.size-1)

	for i := 0; i < cm.size; i++ {
		cm.colorMap[i] = cm.theme(float64(i) / float64(cm.size-1))
	}
}

// GetColor returns the color for the given power value. Nil readings map
// to the minimum-power color.
func (cm *ColorMapper) GetColor(power *float64) color.Color {
	if power == nil {
		return cm.colorMap[0]
	}

	index := int((*power - cm.boundsMin) / cm.powerPerIndex)
	if index < 0 {
		return cm.colorMap[0]
	}
	if index >= cm.size {
		return cm.colorMap[cm.size-1]
	}
	return cm.colorMap[index]
}

// ThemeName returns the current color theme name.
func (cm *ColorMapper) ThemeName() ColorTheme {
	return cm.themeName
}

// HSV represents a color in HSV (Hue, Saturation, Value) color space
type HSV struct {
	H float64 // Hue angle in degrees [0-360]
	S float64 // Saturation [0-1]
	V float64 // Value/Brightness [0-1]
}

// RGB converts HSV to RGB color space
func (hsv HSV) RGB() color.Color {
	if hsv.S <= 0.0 {
		v := uint8(hsv.V * 255)
		return color.RGBA{R: v, G: v, B: v, A: 255}
	}

	h := hsv.H
	if h >= 360 {
		h -= 360
	}
	h /= 60

	i := int(h)
	f := h - float64(i)

	v := uint8(hsv.V * 255)
	p := uint8((hsv.V * (1 - hsv.S)) * 255)
	q := uint8((hsv.V * (1 - (hsv.S * f))) * 255)
	t := uint8((hsv.V * (1 - (hsv.S * (1 - f)))) * 255)

	switch i {
	case 0:
		return color.RGBA{R: v, G: t, B: p, A: 255}
	case 1:
		return color.RGBA{R: q, G: v, B: p, A: 255}
	case 2:
		return color.RGBA{R: p, G: v, B: t, A: 255}
	case 3:
		return color.RGBA{R: p, G: q, B: v, A: 255}
	case 4:
		return color.RGBA{R: t, G: p, B: v, A: 255}
	default: // case 5:
		return color.RGBA{R: v, G: p, B: q, A: 255}
	}
}

func getColorTheme(theme ColorTheme) func(float64) color.Color {
	switch theme {
	case GrayscaleTheme:
		return func(power float64) color.Color {
			v := uint8(math.Pow(power, 0.7) * 255)
			return color.RGBA{R: v, G: v, B: v, A: 255}
		}

	case ThermalTheme:
		return func(power float64) color.Color {
			if power < 0.33 {
				return color.RGBA{
					R: uint8((power * 3) * 255),
					A: 255,
				}
			}
			if power < 0.66 {
				return color.RGBA{
					R: 255,
					G: uint8(((power - 0.33) * 3) * 255),
					A: 255,
				}
			}
			return color.RGBA{
				R: 255,
				G: 255,
				B: uint8(((power - 0.66) * 3) * 255),
				A: 255,
			}
		}

	case MarineTheme:
		return func(power float64) color.Color {
			return HSV{
				H: 240 - (power * 60),
				S: 1.0 - (power * 0.8),
				V: 0.3 + (math.Pow(power, 0.6) * 0.7),
			}.RGB()
		}

	default: // ClassicTheme
		return func(power float64) color.Color {
			return HSV{
				H: 240 - (power * 240),
				S: 0.9 + (power * 0.1),
				V: math.Pow(power, 0.7),
			}.RGB()
		}
	}
}
