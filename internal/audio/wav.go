package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavBitDepth  = 16
	wavFormatPCM = 1
)

// ErrInvalidWAV is returned when bytes cannot be parsed as a WAV file.
var ErrInvalidWAV = errors.New("audio: invalid WAV data")

// WAVEncoder encodes waveforms as 16-bit PCM WAV files.
type WAVEncoder struct{}

// NewWAVEncoder creates a new WAVEncoder.
func NewWAVEncoder() *WAVEncoder {
	return &WAVEncoder{}
}

// Encode implements Encoder.Encode.
// Samples outside [-1, 1] are clipped before quantization.
func (e *WAVEncoder) Encode(ctx context.Context, w Waveform, sampleRate int) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSampleRate, sampleRate)
	}
	if err := w.validate(); err != nil {
		return nil, fmt.Errorf("%w: %d samples over %d channels", err, len(w.Samples), w.Channels)
	}

	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: w.Channels,
			SampleRate:  sampleRate,
		},
		Data:           quantize(w.Samples),
		SourceBitDepth: wavBitDepth,
	}

	out := &seekBuffer{}
	enc := wav.NewEncoder(out, sampleRate, wavBitDepth, w.Channels, wavFormatPCM)
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("write WAV data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("finalize WAV header: %w", err)
	}

	return out.Bytes(), nil
}

// quantize maps float amplitudes to signed 16-bit integers.
func quantize(samples []float32) []int {
	out := make([]int, len(samples))
	for i, s := range samples {
		v := float64(s)
		switch {
		case math.IsNaN(v):
			v = 0
		case v > 1:
			v = 1
		case v < -1:
			v = -1
		}
		out[i] = int(math.Round(v * math.MaxInt16))
	}
	return out
}

// DecodeWAV decodes a PCM WAV file into a waveform and its sample rate.
func DecodeWAV(data []byte) (Waveform, int, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return Waveform{}, 0, ErrInvalidWAV
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Waveform{}, 0, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
	}

	scale := float32(int64(1) << (dec.BitDepth - 1))
	samples := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float32(v) / scale
	}

	return Waveform{Channels: int(dec.NumChans), Samples: samples}, int(dec.SampleRate), nil
}

// WAVInfo describes the header of a WAV file.
type WAVInfo struct {
	SampleRate    int           `json:"sample_rate"`
	Channels      int           `json:"channels"`
	BitsPerSample int           `json:"bits_per_sample"`
	Duration      time.Duration `json:"duration"`
}

// GetWAVInfo reads the header of a WAV file without decoding its samples.
func GetWAVInfo(data []byte) (*WAVInfo, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, ErrInvalidWAV
	}

	duration, err := dec.Duration()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
	}

	return &WAVInfo{
		SampleRate:    int(dec.SampleRate),
		Channels:      int(dec.NumChans),
		BitsPerSample: int(dec.BitDepth),
		Duration:      duration,
	}, nil
}

// seekBuffer is an in-memory io.WriteSeeker; the WAV encoder seeks back to
// patch chunk sizes once all samples are written.
type seekBuffer struct {
	buf []byte
	pos int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	end := b.pos + len(p)
	if end > len(b.buf) {
		if end > cap(b.buf) {
			grown := make([]byte, len(b.buf), 2*end)
			copy(grown, b.buf)
			b.buf = grown
		}
		old := len(b.buf)
		b.buf = b.buf[:end]
		if b.pos > old {
			clear(b.buf[old:b.pos])
		}
	}
	copy(b.buf[b.pos:], p)
	b.pos = end
	return len(p), nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(b.pos) + offset
	case io.SeekEnd:
		abs = int64(len(b.buf)) + offset
	default:
		return 0, fmt.Errorf("seek: invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("seek: negative position %d", abs)
	}
	b.pos = int(abs)
	return abs, nil
}

func (b *seekBuffer) Bytes() []byte {
	return b.buf
}

// Verify interface implementation at compile time.
var _ Encoder = (*WAVEncoder)(nil)
