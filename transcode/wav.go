package transcode

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/faiface/beep/wav"
)

const wavChunkFrames = 4096

// DecodeWAV reads a WAV stream and downmixes it to mono. Reading stops once
// maxDuration of audio has been read; zero means read everything.
func DecodeWAV(r io.Reader, maxDuration time.Duration) (*AudioData, error) {
	streamer, format, err := wav.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}

	sampleRate := int(format.SampleRate)
	limit := -1
	if maxDuration > 0 {
		limit = int(maxDuration.Seconds() * float64(sampleRate))
	}

	var pcm []float64
	if n := streamer.Len(); n > 0 {
		pcm = make([]float64, 0, n)
	}

	buf := make([][2]float64, wavChunkFrames)
	truncated := false
	for {
		n, ok := streamer.Stream(buf)
		for _, frame := range buf[:n] {
			if limit >= 0 && len(pcm) >= limit {
				truncated = true
				break
			}
			// beep duplicates mono into both channels, so the average is exact
			pcm = append(pcm, (frame[0]+frame[1])/2)
		}
		if !ok || truncated {
			break
		}
	}
	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("read wav samples: %w", err)
	}

	return &AudioData{
		PCM:        pcm,
		SampleRate: sampleRate,
		Channels:   format.NumChannels,
		Duration:   durationOf(len(pcm), sampleRate),
		Codec:      "pcm_wav",
		Truncated:  truncated,
	}, nil
}

// DecodeWAVFile opens path and decodes it with DecodeWAV
func DecodeWAVFile(path string, maxDuration time.Duration) (*AudioData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	audio, err := DecodeWAV(f, maxDuration)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	audio.Source = path
	return audio, nil
}
