package orientation

// DefaultAlpha is the smoothing gain used by the game: at a 20 ms
// sampling interval it gives a time constant of roughly 190 ms.
const DefaultAlpha = 0.1

// Filter is a first-order exponential moving average over both tilt
// axes, i.e. a one-pole low-pass filter. State starts at zero and is
// mutated in place by Update. Not safe for concurrent use; the engine
// owns it from a single goroutine.
type Filter struct {
	alpha  float64
	state  Sample
	primed bool
}

// NewFilter returns a filter with gain alpha. Alpha outside (0, 1]
// falls back to DefaultAlpha.
func NewFilter(alpha float64) *Filter {
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultAlpha
	}
	return &Filter{alpha: alpha}
}

// Update folds one raw sample into the smoothed state and returns the
// new smoothed value. For each axis independently:
//
//	smoothed += alpha * (sample - smoothed)
func (f *Filter) Update(s Sample) Sample {
	f.state.Pitch += f.alpha * (s.Pitch - f.state.Pitch)
	f.state.Roll += f.alpha * (s.Roll - f.state.Roll)
	f.primed = true
	return f.state
}

// Smoothed returns the current smoothed orientation. Zero until the
// first Update, which matches the original behavior when the sensor
// never delivers (the engine reports that condition separately).
func (f *Filter) Smoothed() Sample {
	return f.state
}

// Primed reports whether at least one sample has been folded in.
func (f *Filter) Primed() bool {
	return f.primed
}
