package windowing

import (
	"fmt"
	"math"
)

// Hann is a raised-cosine window. Periodic windows (symmetric=false) are the
// right choice for STFT frames; symmetric ones for filter kernels.
type Hann struct {
	size         int
	symmetric    bool
	coefficients []float64
}

// NewHann creates a new Hann window of the given size
func NewHann(size int, symmetric bool) *Hann {
	h := &Hann{
		size:      size,
		symmetric: symmetric,
	}
	h.coefficients = HannCoefficients(size, symmetric)
	return h
}

// HannCoefficients computes the raw window values
func HannCoefficients(size int, symmetric bool) []float64 {
	if size <= 0 {
		return []float64{}
	}
	if size == 1 {
		return []float64{1}
	}

	denominator := float64(size)
	if symmetric {
		denominator = float64(size - 1)
	}

	coefficients := make([]float64, size)
	for i := range size {
		coefficients[i] = 0.5 * (1.0 - math.Cos(2*math.Pi*float64(i)/denominator))
	}
	return coefficients
}

// Apply returns a windowed copy of signal, or nil if the length doesn't match
func (h *Hann) Apply(signal []float64) []float64 {
	if len(signal) != h.size {
		return nil
	}

	windowed := make([]float64, h.size)
	for i, c := range h.coefficients {
		windowed[i] = signal[i] * c
	}
	return windowed
}

// ApplyInPlace applies the window to signal in place
func (h *Hann) ApplyInPlace(signal []float64) error {
	if len(signal) != h.size {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), h.size)
	}

	for i, c := range h.coefficients {
		signal[i] *= c
	}
	return nil
}

// Coefficients returns a copy of the window coefficients
func (h *Hann) Coefficients() []float64 {
	coeffs := make([]float64, len(h.coefficients))
	copy(coeffs, h.coefficients)
	return coeffs
}

// Size returns the window size
func (h *Hann) Size() int {
	return h.size
}
