package temporal

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-acorde/algorithms/common"
	"github.com/RyanBlaney/sonido-acorde/logging"
)

// FallbackTempo is reported whenever beat tracking cannot produce a grid
const FallbackTempo = 120.0

// silenceRMS is the peak RMS below which a signal is treated as silent
const silenceRMS = 1e-6

// BeatGrid is a tempo plus beat positions in onset frames
type BeatGrid struct {
	TempoBPM float64 `json:"tempo_bpm"`
	Frames   []int   `json:"beat_frames"`
}

// BeatTrackerConfig holds the beat tracker parameters
type BeatTrackerConfig struct {
	HopLength int     `json:"hop_length"`
	NFFT      int     `json:"n_fft"`
	StartBPM  float64 `json:"start_bpm"`
	Tightness float64 `json:"tightness"` // penalty on deviation from the tempo period
}

// DefaultBeatTrackerConfig matches the analysis defaults
func DefaultBeatTrackerConfig() BeatTrackerConfig {
	return BeatTrackerConfig{
		HopLength: 512,
		NFFT:      2048,
		StartBPM:  120,
		Tightness: 100,
	}
}

// BeatTracker runs onset detection, tempo estimation and dynamic-programming
// beat selection. Degenerate signals never fail: they get a regular 120 BPM grid.
type BeatTracker struct {
	config BeatTrackerConfig
	onsets *OnsetDetection
	tempo  *TempoEstimation
	rms    *Envelope
	logger logging.Logger
}

// NewBeatTracker creates a beat tracker; a nil logger uses the global one
func NewBeatTracker(config BeatTrackerConfig, logger logging.Logger) *BeatTracker {
	tempo := NewTempoEstimation()
	if config.StartBPM > 0 {
		tempo.StartBPM = config.StartBPM
	}
	return &BeatTracker{
		config: config,
		onsets: NewOnsetDetection(),
		tempo:  tempo,
		rms:    NewEnvelope(),
		logger: logging.Component(logger, "beat_tracker"),
	}
}

// Track returns the beat grid of signal. An error is returned only for
// invalid parameters; signal-quality problems produce a fallback outcome.
func (bt *BeatTracker) Track(signal []float64, sampleRate int) (common.Outcome[BeatGrid], error) {
	hop := bt.config.HopLength
	if sampleRate <= 0 {
		return common.Outcome[BeatGrid]{}, common.InvalidInput("beat tracking", "sample rate must be positive, got %d", sampleRate)
	}
	if hop <= 0 || bt.config.NFFT <= 0 {
		return common.Outcome[BeatGrid]{}, common.InvalidInput("beat tracking", "hop length and FFT size must be positive")
	}

	grid, reason := bt.track(signal, sampleRate)
	if reason != "" {
		fallback := FallbackGrid(len(signal), sampleRate, hop)
		bt.logger.Warn("beat tracking failed, using regular grid", logging.Fields{
			"reason":    reason,
			"tempo_bpm": fallback.TempoBPM,
			"beats":     len(fallback.Frames),
		})
		return common.Fallback(fallback, reason), nil
	}

	bt.logger.Debug("beat tracking complete", logging.Fields{
		"tempo_bpm": grid.TempoBPM,
		"beats":     len(grid.Frames),
	})
	return common.Ok(grid), nil
}

// FallbackGrid is the regular 120 BPM grid: beats every int(0.5*sr/hop)
// frames starting at 0, up to the signal's frame count
func FallbackGrid(numSamples, sampleRate, hopLength int) BeatGrid {
	interval := max(1, int(0.5*float64(sampleRate)/float64(hopLength)))
	numFrames := numSamples / hopLength

	frames := []int{}
	for f := 0; f < numFrames; f += interval {
		frames = append(frames, f)
	}
	return BeatGrid{TempoBPM: FallbackTempo, Frames: frames}
}

// track returns a non-empty reason when the signal can't be tracked
func (bt *BeatTracker) track(signal []float64, sampleRate int) (BeatGrid, string) {
	hop := bt.config.HopLength

	if len(signal) < bt.config.NFFT {
		return BeatGrid{}, fmt.Sprintf("signal shorter than one FFT frame (%d samples)", len(signal))
	}
	if bt.rms.PeakRMS(signal, bt.config.NFFT, hop) < silenceRMS {
		return BeatGrid{}, "signal is silent"
	}

	envelope, err := bt.onsets.Strength(signal, sampleRate, bt.config.NFFT, hop)
	if err != nil {
		return BeatGrid{}, err.Error()
	}

	bpm, ok := bt.tempo.EstimateTempo(envelope, sampleRate, hop)
	if !ok || math.IsNaN(bpm) || bpm <= 0 {
		return BeatGrid{}, "no periodicity in onset envelope"
	}

	period := 60.0 * float64(sampleRate) / float64(hop) / bpm
	beats := bt.selectBeats(envelope, period)
	if len(beats) < 2 {
		return BeatGrid{}, "fewer than two beats found"
	}

	return BeatGrid{TempoBPM: bpm, Frames: beats}, ""
}

// selectBeats is the Ellis dynamic-programming tracker: every frame scores its
// onset strength plus the best predecessor roughly one period back, penalised
// by the squared log deviation from the period.
func (bt *BeatTracker) selectBeats(envelope []float64, period float64) []int {
	std := common.StandardDeviation(envelope)
	if std <= 0 {
		return nil
	}

	normalized := make([]float64, len(envelope))
	for i, v := range envelope {
		normalized[i] = v / std
	}
	local := smoothForPeriod(normalized, period)

	n := len(local)
	cumulative := make([]float64, n)
	backlink := make([]int, n)

	searchStart := int(math.Round(period / 2))
	searchEnd := int(math.Round(2 * period))
	firstBeat := true

	for i := range n {
		backlink[i] = -1
		best := math.Inf(-1)

		for prev := i - searchEnd; prev <= i-searchStart; prev++ {
			if prev < 0 {
				continue
			}
			dev := math.Log(float64(i-prev) / period)
			score := cumulative[prev] - bt.config.Tightness*dev*dev
			if score > best {
				best = score
				backlink[i] = prev
			}
		}

		cumulative[i] = local[i]
		if backlink[i] >= 0 {
			cumulative[i] += best
		}

		// leading frames before the first real onset have no predecessor
		if firstBeat && local[i] < 0.01*common.Max(local) {
			backlink[i] = -1
		} else {
			firstBeat = false
		}
	}

	last := lastStrongPeak(cumulative)
	if last < 0 {
		return nil
	}

	beats := []int{}
	for b := last; b >= 0; b = backlink[b] {
		beats = append(beats, b)
	}
	for i, j := 0, len(beats)-1; i < j; i, j = i+1, j-1 {
		beats[i], beats[j] = beats[j], beats[i]
	}

	return trimWeakBeats(beats, local)
}

// smoothForPeriod convolves the envelope with a Gaussian a few percent of a period wide
func smoothForPeriod(envelope []float64, period float64) []float64 {
	half := max(1, int(math.Round(period)))
	kernel := make([]float64, 2*half+1)
	for k := range kernel {
		x := float64(k-half) * 32 / period
		kernel[k] = math.Exp(-0.5 * x * x)
	}

	out := make([]float64, len(envelope))
	for i := range envelope {
		sum := 0.0
		for k, w := range kernel {
			j := i + k - half
			if j >= 0 && j < len(envelope) {
				sum += w * envelope[j]
			}
		}
		out[i] = sum
	}
	return out
}

// lastStrongPeak returns the last local maximum of the cumulative score that
// reaches half the median of all local maxima
func lastStrongPeak(cumulative []float64) int {
	var peaks []int
	var values []float64
	for i := 1; i < len(cumulative)-1; i++ {
		if cumulative[i] > cumulative[i-1] && cumulative[i] >= cumulative[i+1] {
			peaks = append(peaks, i)
			values = append(values, cumulative[i])
		}
	}
	if len(peaks) == 0 {
		return -1
	}

	threshold := 0.5 * common.Median(values)
	for i := len(peaks) - 1; i >= 0; i-- {
		if values[i] >= threshold {
			return peaks[i]
		}
	}
	return peaks[len(peaks)-1]
}

// trimWeakBeats drops leading and trailing beats whose smoothed onset strength
// is below half the RMS strength at the beats
func trimWeakBeats(beats []int, local []float64) []int {
	if len(beats) == 0 {
		return beats
	}

	sumSquares := 0.0
	for _, b := range beats {
		sumSquares += local[b] * local[b]
	}
	threshold := 0.5 * math.Sqrt(sumSquares/float64(len(beats)))

	start, end := 0, len(beats)
	for start < end && local[beats[start]] < threshold {
		start++
	}
	for end > start && local[beats[end-1]] < threshold {
		end--
	}
	return beats[start:end]
}
