package transcode

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/RyanBlaney/sonido-acorde/logging"
)

// DecoderConfig holds ffmpeg decoding settings
type DecoderConfig struct {
	TargetSampleRate int           `json:"target_sample_rate"`
	MaxDuration      time.Duration `json:"max_duration"` // 0 means no limit
	FFmpegPath       string        `json:"ffmpeg_path"`
	FFprobePath      string        `json:"ffprobe_path"`
	Timeout          time.Duration `json:"timeout"`
	RemoveDC         bool          `json:"remove_dc"`
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		TargetSampleRate: 22050,
		MaxDuration:      180 * time.Second,
		FFmpegPath:       "ffmpeg",
		FFprobePath:      "ffprobe",
		Timeout:          60 * time.Second,
		RemoveDC:         true,
	}
}

// AudioMetadata holds the audio properties reported by ffprobe
type AudioMetadata struct {
	SampleRate int     `json:"sample_rate"`
	Channels   int     `json:"channels"`
	Codec      string  `json:"codec"`
	Duration   float64 `json:"duration"`
	Bitrate    int     `json:"bitrate"`
	Format     string  `json:"format"`
}

// Decoder decodes arbitrary audio files by piping them through ffmpeg as
// mono float64 little-endian PCM at the target rate.
type Decoder struct {
	config *DecoderConfig
	logger logging.Logger
}

// NewDecoder creates an ffmpeg decoder; nil config uses the defaults and a
// nil logger the global one
func NewDecoder(config *DecoderConfig, logger logging.Logger) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{config: config, logger: logging.Component(logger, "audio_decoder")}
}

// DecodeFile probes filename and decodes its first audio stream
func (d *Decoder) DecodeFile(ctx context.Context, filename string) (*AudioData, error) {
	logger := d.logger.WithFields(logging.Fields{"filename": filename})

	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	metadata, err := d.Probe(ctx, filename)
	if err != nil {
		logger.Error(err, "failed to probe audio file")
		return nil, err
	}
	logger.Debug("audio metadata detected", logging.Fields{
		"input_sample_rate": metadata.SampleRate,
		"input_channels":    metadata.Channels,
		"input_codec":       metadata.Codec,
		"input_duration":    metadata.Duration,
	})

	args := append([]string{"-i", filename}, d.buildFFmpegArgs()...)
	args = append(args, "pipe:1")
	logger.Debug("running ffmpeg", logging.Fields{"args": strings.Join(args, " ")})

	start := time.Now()
	output, err := exec.CommandContext(ctx, d.config.FFmpegPath, args...).Output()
	if err != nil {
		return nil, commandError("ffmpeg decode", err)
	}

	samples := bytesToFloat64(output)
	if len(samples) == 0 {
		return nil, fmt.Errorf("no audio samples decoded from %s", filename)
	}

	rate := d.config.TargetSampleRate
	audio := &AudioData{
		PCM:        samples,
		SampleRate: rate,
		Channels:   metadata.Channels,
		Duration:   durationOf(len(samples), rate),
		Source:     filename,
		Codec:      metadata.Codec,
		Truncated:  d.config.MaxDuration > 0 && metadata.Duration > d.config.MaxDuration.Seconds(),
	}

	logger.Debug("ffmpeg decode completed", logging.Fields{
		"samples":     len(samples),
		"duration":    audio.Duration.Seconds(),
		"decode_time": time.Since(start).Seconds(),
	})
	return audio, nil
}

// Probe runs ffprobe on the first audio stream of filename
func (d *Decoder) Probe(ctx context.Context, filename string) (*AudioMetadata, error) {
	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "a:0",
		filename,
	}

	output, err := exec.CommandContext(ctx, d.config.FFprobePath, args...).Output()
	if err != nil {
		return nil, commandError("ffprobe", err)
	}
	return parseFFprobeOutput(output)
}

func (d *Decoder) buildFFmpegArgs() []string {
	args := []string{
		"-vn",
		"-f", "f64le",
		"-ac", "1",
		"-ar", strconv.Itoa(d.config.TargetSampleRate),
	}
	if d.config.MaxDuration > 0 {
		args = append(args, "-t", fmt.Sprintf("%.2f", d.config.MaxDuration.Seconds()))
	}
	return append(args, "-v", "error")
}

// Available checks that ffmpeg and ffprobe can be executed
func (d *Decoder) Available() error {
	for _, bin := range []string{d.config.FFmpegPath, d.config.FFprobePath} {
		if err := exec.Command(bin, "-version").Run(); err != nil {
			return fmt.Errorf("%s not available: %w", bin, err)
		}
	}
	return nil
}

func commandError(op string, err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
		return fmt.Errorf("%s failed: %w, stderr: %s", op, err, strings.TrimSpace(string(exitErr.Stderr)))
	}
	return fmt.Errorf("%s failed: %w", op, err)
}

func parseFFprobeOutput(jsonData []byte) (*AudioMetadata, error) {
	var probe struct {
		Streams []struct {
			CodecType     string `json:"codec_type"`
			CodecName     string `json:"codec_name"`
			SampleRate    string `json:"sample_rate"`
			Channels      int    `json:"channels"`
			Duration      string `json:"duration"`
			BitRate       string `json:"bit_rate"`
			CodecLongName string `json:"codec_long_name"`
		} `json:"streams"`
	}

	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	if len(probe.Streams) == 0 {
		return nil, fmt.Errorf("no audio streams found")
	}

	stream := probe.Streams[0]
	if stream.CodecType != "audio" {
		return nil, fmt.Errorf("stream is not audio type: %s", stream.CodecType)
	}
	if stream.Channels <= 0 || stream.Channels > 8 {
		return nil, fmt.Errorf("invalid channel count: %d", stream.Channels)
	}

	// ffprobe leaves fields empty for some containers
	sampleRate, _ := strconv.Atoi(stream.SampleRate)
	duration, _ := strconv.ParseFloat(stream.Duration, 64)
	bitrate, _ := strconv.Atoi(stream.BitRate)

	return &AudioMetadata{
		SampleRate: sampleRate,
		Channels:   stream.Channels,
		Codec:      stream.CodecName,
		Duration:   duration,
		Bitrate:    bitrate,
		Format:     stream.CodecLongName,
	}, nil
}

// bytesToFloat64 converts raw f64le bytes, ignoring a trailing partial sample
func bytesToFloat64(data []byte) []float64 {
	count := len(data) / 8
	if count == 0 {
		return nil
	}
	samples := make([]float64, count)
	for i := range count {
		samples[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return samples
}
