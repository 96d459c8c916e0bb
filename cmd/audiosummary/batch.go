package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/maauso/audiosummary/internal/audio"
	"github.com/maauso/audiosummary/internal/tensor"
)

var (
	errChannelMismatch    = errors.New("input files have different channel counts")
	errSampleRateMismatch = errors.New("input files have different sample rates")
)

// loadBatch decodes every file and stacks the clips into a [K, T, C] batch.
// Clips shorter than the longest one are zero-padded.
func loadBatch(ctx context.Context, dec *audio.FFmpegDecoder, paths []string) (*tensor.Batch, int, error) {
	waves := make([]audio.Waveform, 0, len(paths))
	sampleRate := 0

	for _, path := range paths {
		w, rate, err := loadClip(ctx, dec, path)
		if err != nil {
			return nil, 0, fmt.Errorf("load %s: %w", path, err)
		}
		if sampleRate != 0 && rate != sampleRate {
			return nil, 0, fmt.Errorf("%w: %s is %d Hz, want %d Hz", errSampleRateMismatch, path, rate, sampleRate)
		}
		sampleRate = rate
		waves = append(waves, w)
	}

	batch, err := stackClips(waves)
	if err != nil {
		return nil, 0, err
	}
	return batch, sampleRate, nil
}

// loadClip decodes WAV files natively and everything else through ffmpeg.
func loadClip(ctx context.Context, dec *audio.FFmpegDecoder, path string) (audio.Waveform, int, error) {
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		data, err := os.ReadFile(path)
		if err != nil {
			return audio.Waveform{}, 0, err
		}
		return audio.DecodeWAV(data)
	}

	w, err := dec.Decode(ctx, path)
	if err != nil {
		return audio.Waveform{}, 0, err
	}
	return w, dec.SampleRate(), nil
}

func stackClips(waves []audio.Waveform) (*tensor.Batch, error) {
	if len(waves) == 0 {
		return nil, fmt.Errorf("%w: no input files", errUsage)
	}

	channels := waves[0].Channels
	frames := 0
	for i, w := range waves {
		if w.Channels != channels {
			return nil, fmt.Errorf("%w: clip %d has %d, want %d", errChannelMismatch, i, w.Channels, channels)
		}
		frames = max(frames, w.Frames())
	}

	row := frames * channels
	data := make([]float32, len(waves)*row)
	for i, w := range waves {
		copy(data[i*row:(i+1)*row], w.Samples)
	}

	return tensor.New(tensor.Shape{len(waves), frames, channels}, data)
}
