package app

import "math"

const (
	defaultMinPower = -10.0 // dB
	defaultMaxPower = 50.0  // dB

	// 5th and 95th percentiles need at least one sample each.
	minimumSampleCount = 20
)

// PowerBounds holds the display range for cell power values.
type PowerBounds struct {
	Min  float64 // 5th percentile power in dB
	Max  float64 // 95th percentile power in dB
	Mean float64 // Mean power in dB
}

func defaultPowerBounds() PowerBounds {
	return PowerBounds{
		Min:  defaultMinPower,
		Max:  defaultMaxPower,
		Mean: (defaultMinPower + defaultMaxPower) / 2,
	}
}

// PowerHistogram accumulates power readings in 1 dB bins so percentile
// bounds can be derived without keeping every sample.
type PowerHistogram struct {
	bins       map[int]uint32
	totalCount uint64
	minBin     int
	maxBin     int
}

func NewPowerHistogram() *PowerHistogram {
	return &PowerHistogram{
		bins:   make(map[int]uint32),
		minBin: math.MaxInt32,
		maxBin: math.MinInt32,
	}
}

// scaleDown halves all bin counts to avoid counter overflow.
func (h *PowerHistogram) scaleDown() {
	h.minBin = math.MaxInt32
	h.maxBin = math.MinInt32

	for bin := range h.bins {
		h.bins[bin] /= 2
		if h.bins[bin] == 0 {
			delete(h.bins, bin)
			continue
		}

		if bin < h.minBin {
			h.minBin = bin
		}
		if bin > h.maxBin {
			h.maxBin = bin
		}
	}
	h.totalCount /= 2
}

// Update adds a power reading to the histogram. Nil readings come from
// empty cells and are ignored.
func (h *PowerHistogram) Update(power *float64) {
	if power == nil || math.IsInf(*power, 0) || math.IsNaN(*power) {
		return
	}

	bin := int(math.Floor(*power))

	if h.bins[bin] == math.MaxUint32 || h.totalCount == math.MaxUint64 {
		h.scaleDown()
	}

	h.bins[bin]++
	h.totalCount++

	if bin < h.minBin {
		h.minBin = bin
	}
	if bin > h.maxBin {
		h.maxBin = bin
	}
}

// GetPercentileBounds returns the 5th/95th percentile power bounds, with
// a minimum 20 dB span and a 10% margin on each side.
func (h *PowerHistogram) GetPercentileBounds() PowerBounds {
	if h.totalCount < minimumSampleCount {
		return defaultPowerBounds()
	}

	target := h.totalCount * 5 / 100

	var count uint64
	var min5th, max95th int

	for bin := h.minBin; bin <= h.maxBin; bin++ {
		count += uint64(h.bins[bin])
		if count >= target {
			min5th = bin
			break
		}
	}

	count = 0
	for bin := h.maxBin; bin >= h.minBin; bin-- {
		count += uint64(h.bins[bin])
		if count >= target {
			max95th = bin
			break
		}
	}

	var sumProduct float64
	for bin := h.minBin; bin <= h.maxBin; bin++ {
		sumProduct += float64(bin) * float64(h.bins[bin])
	}
	mean := sumProduct / float64(h.totalCount)

	if max95th-min5th < 20 {
		center := (max95th + min5th) / 2
		min5th = center - 10
		max95th = center + 10
	}

	margin := (max95th - min5th) / 10
	return PowerBounds{
		Min:  float64(min5th - margin),
		Max:  float64(max95th + margin),
		Mean: mean,
	}
}

// SmoothBounds applies exponential smoothing to the histogram bounds so
// the display range does not jump between renders of growing data.
type SmoothBounds struct {
	hist    *PowerHistogram
	alpha   float64
	current PowerBounds
}

func NewSmoothBounds(alpha float64) *SmoothBounds {
	return &SmoothBounds{
		hist:    NewPowerHistogram(),
		alpha:   alpha,
		current: defaultPowerBounds(),
	}
}

// Update adds a power reading and returns the smoothed bounds.
func (s *SmoothBounds) Update(power *float64) PowerBounds {
	if power == nil {
		return s.current
	}

	s.hist.Update(power)
	bounds := s.hist.GetPercentileBounds()

	s.current.Min = s.current.Min*(1-s.alpha) + bounds.Min*s.alpha
	s.current.Max = s.current.Max*(1-s.alpha) + bounds.Max*s.alpha
	s.current.Mean = bounds.Mean

	return s.current
}

// Current returns the current smoothed power bounds.
func (s *SmoothBounds) Current() PowerBounds {
	return s.current
}

// Override pins one or both bounds to manually chosen values.
func (s *SmoothBounds) Override(min, max *float64) {
	if min != nil {
		s.current.Min = *min
	}
	if max != nil {
		s.current.Max = *max
	}
}
