// Package transcode loads audio files into mono float64 PCM for analysis.
// WAV files are decoded in process; everything else goes through ffmpeg.
package transcode

import (
	"time"

	"github.com/RyanBlaney/sonido-acorde/algorithms/common"
)

// AudioData is decoded mono PCM
type AudioData struct {
	PCM        []float64     `json:"-"`
	SampleRate int           `json:"sample_rate"`
	Channels   int           `json:"channels"` // channels in the source before downmixing
	Duration   time.Duration `json:"duration"`
	Source     string        `json:"source,omitempty"`
	Codec      string        `json:"codec,omitempty"`
	Truncated  bool          `json:"truncated,omitempty"`
}

// Frames returns the number of samples
func (a *AudioData) Frames() int {
	return len(a.PCM)
}

func durationOf(samples, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(samples) * time.Second / time.Duration(sampleRate)
}

// Downmix averages interleaved frames of the given channel count into mono.
// A trailing partial frame is dropped.
func Downmix(interleaved []float64, channels int) ([]float64, error) {
	if channels <= 0 {
		return nil, common.InvalidInput("downmix", "channel count must be positive, got %d", channels)
	}
	if channels == 1 {
		return append([]float64(nil), interleaved...), nil
	}

	frames := len(interleaved) / channels
	mono := make([]float64, frames)
	for i := range frames {
		sum := 0.0
		for _, v := range interleaved[i*channels : (i+1)*channels] {
			sum += v
		}
		mono[i] = sum / float64(channels)
	}
	return mono, nil
}

// Limit truncates audio to at most maxDuration; zero or negative means no limit
func (a *AudioData) Limit(maxDuration time.Duration) {
	if maxDuration <= 0 || a.SampleRate <= 0 {
		return
	}
	maxSamples := int(maxDuration.Seconds() * float64(a.SampleRate))
	if len(a.PCM) > maxSamples {
		a.PCM = a.PCM[:maxSamples]
		a.Truncated = true
	}
	a.Duration = durationOf(len(a.PCM), a.SampleRate)
}

// ResampleTo converts the PCM to rate in place when it differs
func (a *AudioData) ResampleTo(rate int) {
	if rate <= 0 || rate == a.SampleRate {
		return
	}
	a.PCM = common.Resample(a.PCM, a.SampleRate, rate)
	a.SampleRate = rate
	a.Duration = durationOf(len(a.PCM), rate)
}
