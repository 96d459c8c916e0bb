// Package audio provides the waveform type and the encoders that turn a
// single clip into a container byte string.
package audio

import (
	"context"
	"errors"
)

var (
	// ErrInvalidSampleRate is returned when the sample rate is not positive.
	ErrInvalidSampleRate = errors.New("audio: sample rate must be positive")
	// ErrInvalidChannels is returned when a waveform has no channels or its
	// sample count is not a multiple of the channel count.
	ErrInvalidChannels = errors.New("audio: invalid channel layout")
)

// Waveform is one clip of shape [T, C] stored as interleaved frames.
// Sample values are expected in [-1.0, 1.0].
type Waveform struct {
	// Channels is the number of interleaved channels (C).
	Channels int
	// Samples holds T*C amplitudes, frame by frame.
	Samples []float32
}

// Frames returns the number of sample frames (T).
func (w Waveform) Frames() int {
	if w.Channels <= 0 {
		return 0
	}
	return len(w.Samples) / w.Channels
}

// validate checks the channel layout of the waveform.
func (w Waveform) validate() error {
	if w.Channels <= 0 || len(w.Samples)%w.Channels != 0 {
		return ErrInvalidChannels
	}
	return nil
}

// Encoder turns one waveform into an encoded byte string.
type Encoder interface {
	// Encode encodes w at sampleRate Hz. The returned bytes are opaque to
	// callers; their format is fixed by the implementation.
	Encode(ctx context.Context, w Waveform, sampleRate int) ([]byte, error)
}

// EncoderFunc adapts an ordinary function to the Encoder interface.
type EncoderFunc func(ctx context.Context, w Waveform, sampleRate int) ([]byte, error)

// Encode calls f(ctx, w, sampleRate).
func (f EncoderFunc) Encode(ctx context.Context, w Waveform, sampleRate int) ([]byte, error) {
	return f(ctx, w, sampleRate)
}
