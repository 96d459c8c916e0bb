package audio

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWAVEncoder_Encode(t *testing.T) {
	enc := NewWAVEncoder()
	ctx := context.Background()

	t.Run("writes RIFF header", func(t *testing.T) {
		data, err := enc.Encode(ctx, sineWave(800, 8000), 8000)
		require.NoError(t, err)

		require.GreaterOrEqual(t, len(data), 44)
		assert.Equal(t, "RIFF", string(data[0:4]))
		assert.Equal(t, "WAVE", string(data[8:12]))
		assert.Len(t, data, 44+800*2)
	})

	t.Run("round trips through decoder", func(t *testing.T) {
		in := Waveform{Channels: 2, Samples: []float32{0, 0.5, -0.5, 1, -1, 0.25}}
		data, err := enc.Encode(ctx, in, 44100)
		require.NoError(t, err)

		out, rate, err := DecodeWAV(data)
		require.NoError(t, err)
		assert.Equal(t, 44100, rate)
		assert.Equal(t, 2, out.Channels)
		assert.Equal(t, 3, out.Frames())
		for i := range in.Samples {
			assert.InDelta(t, in.Samples[i], out.Samples[i], 1.0/16384, "sample %d", i)
		}
	})

	t.Run("clips out of range samples", func(t *testing.T) {
		data, err := enc.Encode(ctx, Waveform{Channels: 1, Samples: []float32{3, -3}}, 8000)
		require.NoError(t, err)

		out, _, err := DecodeWAV(data)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, out.Samples[0], 1.0/16384)
		assert.InDelta(t, -1.0, out.Samples[1], 1.0/16384)
	})

	t.Run("is deterministic", func(t *testing.T) {
		a, err := enc.Encode(ctx, sineWave(100, 8000), 8000)
		require.NoError(t, err)
		b, err := enc.Encode(ctx, sineWave(100, 8000), 8000)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("rejects non-positive sample rate", func(t *testing.T) {
		_, err := enc.Encode(ctx, sineWave(10, 8000), -1)
		assert.ErrorIs(t, err, ErrInvalidSampleRate)
	})

	t.Run("rejects missing channels", func(t *testing.T) {
		_, err := enc.Encode(ctx, Waveform{Channels: 0, Samples: []float32{0.1}}, 8000)
		assert.ErrorIs(t, err, ErrInvalidChannels)
	})

	t.Run("rejects partial frames", func(t *testing.T) {
		_, err := enc.Encode(ctx, Waveform{Channels: 2, Samples: []float32{0.1, 0.2, 0.3}}, 8000)
		assert.ErrorIs(t, err, ErrInvalidChannels)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := enc.Encode(cctx, sineWave(10, 8000), 8000)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestGetWAVInfo(t *testing.T) {
	data, err := NewWAVEncoder().Encode(context.Background(), sineWave(16000, 16000), 16000)
	require.NoError(t, err)

	info, err := GetWAVInfo(data)
	require.NoError(t, err)
	assert.Equal(t, 16000, info.SampleRate)
	assert.Equal(t, 1, info.Channels)
	assert.Equal(t, 16, info.BitsPerSample)
	assert.InDelta(t, float64(time.Second), float64(info.Duration), float64(10*time.Millisecond))
}

func TestDecodeWAV_Invalid(t *testing.T) {
	_, _, err := DecodeWAV([]byte("definitely not a wav file, just some text"))
	assert.ErrorIs(t, err, ErrInvalidWAV)

	_, err = GetWAVInfo(nil)
	assert.ErrorIs(t, err, ErrInvalidWAV)
}

func TestEncoderFunc(t *testing.T) {
	var calls int
	f := EncoderFunc(func(_ context.Context, w Waveform, rate int) ([]byte, error) {
		calls++
		return []byte{byte(w.Channels), byte(rate)}, nil
	})

	out, err := f.Encode(context.Background(), Waveform{Channels: 2}, 7)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 7}, out)
	assert.Equal(t, 1, calls)
}

func TestSeekBuffer(t *testing.T) {
	b := &seekBuffer{}
	_, _ = b.Write([]byte("hello world"))

	pos, err := b.Seek(0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pos)

	_, _ = b.Write([]byte("HE"))
	assert.Equal(t, "HEllo world", string(b.Bytes()))

	pos, err = b.Seek(0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(11), pos)

	_, err = b.Seek(-20, 1)
	assert.Error(t, err)

	t.Run("gap after seek past end is zeroed", func(t *testing.T) {
		b := &seekBuffer{buf: []byte("stale bytes here")[:2]}
		_, err := b.Seek(6, io.SeekStart)
		require.NoError(t, err)
		_, _ = b.Write([]byte("X"))
		assert.Equal(t, []byte{'s', 't', 0, 0, 0, 0, 'X'}, b.Bytes())
	})
}
