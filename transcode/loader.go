package transcode

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/RyanBlaney/sonido-acorde/algorithms/common"
	"github.com/RyanBlaney/sonido-acorde/algorithms/filters"
	"github.com/RyanBlaney/sonido-acorde/logging"
)

// Loader picks a decoder by file extension and returns mono PCM at the
// configured rate, truncated to the configured duration and optionally
// DC-blocked
type Loader struct {
	config  *DecoderConfig
	decoder *Decoder
	logger  logging.Logger
}

// NewLoader creates a loader; nil config uses the defaults
func NewLoader(config *DecoderConfig, logger logging.Logger) *Loader {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Loader{
		config:  config,
		decoder: NewDecoder(config, logger),
		logger:  logging.Component(logger, "audio_loader"),
	}
}

// Load decodes path. WAV files are read in process and resampled, other
// formats are handed to ffmpeg.
func (l *Loader) Load(ctx context.Context, path string) (*AudioData, error) {
	if l.config.TargetSampleRate <= 0 {
		return nil, common.InvalidInput("load audio", "target sample rate must be positive, got %d", l.config.TargetSampleRate)
	}

	var (
		audio *AudioData
		err   error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		audio, err = DecodeWAVFile(path, l.config.MaxDuration)
		if err == nil {
			audio.ResampleTo(l.config.TargetSampleRate)
		}
	default:
		audio, err = l.decoder.DecodeFile(ctx, path)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if audio.Frames() == 0 {
		return nil, common.InvalidInput("load audio", "%s contains no samples", path)
	}
	if l.config.RemoveDC {
		dc, err := filters.NewDCRemoval(audio.SampleRate, filters.DefaultDCCutoff)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		dc.ProcessInPlace(audio.PCM)
	}

	l.logger.Info("audio loaded", logging.Fields{
		"path":        path,
		"sample_rate": audio.SampleRate,
		"channels":    audio.Channels,
		"duration":    audio.Duration.Seconds(),
		"truncated":   audio.Truncated,
	})
	return audio, nil
}
