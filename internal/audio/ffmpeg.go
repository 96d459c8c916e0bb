package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
)

// FFmpegEncoder implements Encoder using the ffmpeg CLI.
// Raw float32 PCM is piped to ffmpeg, which writes a 16-bit PCM WAV file.
type FFmpegEncoder struct {
	ffmpegPath string
	tempDir    string
}

// NewFFmpegEncoder creates a new FFmpegEncoder.
// If ffmpegPath is empty, it defaults to "ffmpeg" (found in PATH).
// If tempDir is empty, os.TempDir() is used for intermediate files.
func NewFFmpegEncoder(ffmpegPath, tempDir string) *FFmpegEncoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpegEncoder{ffmpegPath: ffmpegPath, tempDir: tempDir}
}

// Encode implements Encoder.Encode.
func (e *FFmpegEncoder) Encode(ctx context.Context, w Waveform, sampleRate int) ([]byte, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSampleRate, sampleRate)
	}
	if err := w.validate(); err != nil {
		return nil, fmt.Errorf("%w: %d samples over %d channels", err, len(w.Samples), w.Channels)
	}

	// ffmpeg cannot patch the RIFF sizes when writing to a pipe, so the
	// output goes through a temporary file.
	out, err := os.CreateTemp(e.tempDir, "clip_*.wav")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	outPath := out.Name()
	_ = out.Close()
	defer func() { _ = os.Remove(outPath) }()

	cmd := exec.CommandContext(ctx, e.ffmpegPath,
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-f", "f32le",
		"-ar", strconv.Itoa(sampleRate),
		"-ac", strconv.Itoa(w.Channels),
		"-i", "pipe:0",
		"-c:a", "pcm_s16le",
		"-f", "wav",
		outPath,
	)
	cmd.Stdin = bytes.NewReader(float32LE(w.Samples))

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg error: %w, stderr: %s", err, stderr.String())
	}

	data, err := os.ReadFile(outPath) // #nosec G304 - path created above
	if err != nil {
		return nil, fmt.Errorf("read encoded clip: %w", err)
	}
	return data, nil
}

// FFmpegDecoder decodes arbitrary audio files into waveforms with a fixed
// sample rate and channel count.
type FFmpegDecoder struct {
	ffmpegPath string
	sampleRate int
	channels   int
}

// NewFFmpegDecoder creates a new FFmpegDecoder that resamples to
// sampleRate Hz and remixes to channels channels.
// If ffmpegPath is empty, it defaults to "ffmpeg" (found in PATH).
func NewFFmpegDecoder(ffmpegPath string, sampleRate, channels int) *FFmpegDecoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpegDecoder{ffmpegPath: ffmpegPath, sampleRate: sampleRate, channels: channels}
}

// SampleRate returns the output sample rate in Hz.
func (d *FFmpegDecoder) SampleRate() int {
	return d.sampleRate
}

// Decode reads the audio file at path and returns its samples.
func (d *FFmpegDecoder) Decode(ctx context.Context, path string) (Waveform, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Waveform{}, fmt.Errorf("input file does not exist: %s", path)
	}
	if d.sampleRate <= 0 {
		return Waveform{}, fmt.Errorf("%w: got %d", ErrInvalidSampleRate, d.sampleRate)
	}
	if d.channels <= 0 {
		return Waveform{}, fmt.Errorf("%w: %d channels", ErrInvalidChannels, d.channels)
	}

	cmd := exec.CommandContext(ctx, d.ffmpegPath,
		"-hide_banner",
		"-loglevel", "error",
		"-i", path,
		"-f", "f32le",
		"-c:a", "pcm_f32le",
		"-ar", strconv.Itoa(d.sampleRate),
		"-ac", strconv.Itoa(d.channels),
		"pipe:1",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return Waveform{}, fmt.Errorf("ffmpeg error: %w, stderr: %s", err, stderr.String())
	}

	return Waveform{Channels: d.channels, Samples: parseFloat32LE(stdout.Bytes())}, nil
}

// float32LE serializes samples as little-endian IEEE floats.
func float32LE(samples []float32) []byte {
	out := make([]byte, 4*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(s))
	}
	return out
}

// parseFloat32LE is the inverse of float32LE. Trailing partial samples are dropped.
func parseFloat32LE(data []byte) []float32 {
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return out
}

// Verify interface implementation at compile time.
var _ Encoder = (*FFmpegEncoder)(nil)
