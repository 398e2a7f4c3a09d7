package common

// Resample converts signal between sample rates with linear interpolation.
// Equal rates return a copy.
func Resample(signal []float64, fromRate, toRate int) []float64 {
	if len(signal) == 0 || fromRate <= 0 || toRate <= 0 {
		return []float64{}
	}
	if fromRate == toRate {
		out := make([]float64, len(signal))
		copy(out, signal)
		return out
	}

	ratio := float64(fromRate) / float64(toRate)
	length := int(float64(len(signal)) * float64(toRate) / float64(fromRate))
	out := make([]float64, length)
	for i := range out {
		out[i] = linearAt(signal, float64(i)*ratio)
	}
	return out
}

// linearAt interpolates data at a fractional index, clamping at the ends
func linearAt(data []float64, index float64) float64 {
	if index <= 0 {
		return data[0]
	}
	last := len(data) - 1
	if index >= float64(last) {
		return data[last]
	}

	i := int(index)
	frac := index - float64(i)
	return data[i] + frac*(data[i+1]-data[i])
}
