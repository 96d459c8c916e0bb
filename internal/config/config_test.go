package config

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable for the duration of t.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"OUTPUT_DIR", "SAMPLE_RATE", "CHANNELS", "FFMPEG_PATH",
		"MAX_OUTPUTS", "ENCODING", "ENCODER", "MAX_CONCURRENT_ENCODES",
		"S3_BUCKET", "S3_REGION", "S3_ENDPOINT",
		"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY",
		"LOG_FORMAT", "LOG_LEVEL",
	} {
		t.Setenv(k, "") // restores the previous value on cleanup
		_ = os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "./summaries", cfg.OutputDir)
	assert.Equal(t, 16000, cfg.SampleRate)
	assert.Equal(t, 1, cfg.Channels)
	assert.Equal(t, 3, cfg.MaxOutputs)
	assert.Equal(t, "wav", cfg.Encoding)
	assert.Equal(t, EncoderNative, cfg.Encoder)
	assert.Equal(t, 1, cfg.MaxConcurrentEncodes)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.S3Enabled())
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("OUTPUT_DIR", "/custom/out")
	t.Setenv("SAMPLE_RATE", "44100")
	t.Setenv("CHANNELS", "2")
	t.Setenv("FFMPEG_PATH", "/opt/ffmpeg")
	t.Setenv("MAX_OUTPUTS", "5")
	t.Setenv("ENCODER", "ffmpeg")
	t.Setenv("MAX_CONCURRENT_ENCODES", "4")
	t.Setenv("S3_BUCKET", "my-bucket")
	t.Setenv("S3_REGION", "us-east-1")
	t.Setenv("S3_ENDPOINT", "http://localhost:9000")
	t.Setenv("AWS_ACCESS_KEY_ID", "access-key")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret-key")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/custom/out", cfg.OutputDir)
	assert.Equal(t, 44100, cfg.SampleRate)
	assert.Equal(t, 2, cfg.Channels)
	assert.Equal(t, "/opt/ffmpeg", cfg.FFmpegPath)
	assert.Equal(t, 5, cfg.MaxOutputs)
	assert.Equal(t, EncoderFFmpeg, cfg.Encoder)
	assert.Equal(t, 4, cfg.MaxConcurrentEncodes)
	assert.Equal(t, "my-bucket", cfg.S3Bucket)
	assert.Equal(t, "us-east-1", cfg.S3Region)
	assert.Equal(t, "http://localhost:9000", cfg.S3Endpoint)
	assert.Equal(t, "access-key", cfg.AWSAccessKeyID)
	assert.Equal(t, "secret-key", cfg.AWSSecretAccessKey)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.S3Enabled())
}

func TestLoad_InvalidIntegers(t *testing.T) {
	clearEnv(t)
	t.Setenv("SAMPLE_RATE", "not-a-number")

	// go-envconfig returns an error when parsing fails
	_, err := Load()
	require.Error(t, err)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  error
	}{
		{"zero sample rate", "SAMPLE_RATE", "0", ErrInvalidSampleRate},
		{"negative channels", "CHANNELS", "-1", ErrInvalidChannels},
		{"zero max outputs", "MAX_OUTPUTS", "0", ErrInvalidMaxOutputs},
		{"zero concurrency", "MAX_CONCURRENT_ENCODES", "0", ErrInvalidConcurrency},
		{"unknown encoder", "ENCODER", "lame", ErrUnknownEncoder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestConfig_S3Enabled(t *testing.T) {
	tests := []struct {
		name     string
		bucket   string
		region   string
		expected bool
	}{
		{"both set", "bucket", "region", true},
		{"only bucket", "bucket", "", false},
		{"only region", "", "region", false},
		{"neither set", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				S3Bucket: tt.bucket,
				S3Region: tt.region,
			}
			assert.Equal(t, tt.expected, cfg.S3Enabled())
		})
	}
}

func TestConfig_String(t *testing.T) {
	cfg := &Config{
		OutputDir:          "/tmp/out",
		SampleRate:         22050,
		AWSAccessKeyID:     "access-id",
		AWSSecretAccessKey: "secret-key",
		S3Bucket:           "bucket",
		S3Region:           "region",
		LogFormat:          "json",
		LogLevel:           "info",
	}

	str := cfg.String()

	// Should contain non-sensitive values
	assert.Contains(t, str, "/tmp/out")
	assert.Contains(t, str, "22050")
	assert.Contains(t, str, "bucket")

	// Should NOT contain sensitive values
	assert.NotContains(t, str, "secret-key")
	assert.NotContains(t, str, "access-id")
}

func TestConfig_NewLogger(t *testing.T) {
	for _, format := range []string{"json", "text", ""} {
		t.Run(format, func(t *testing.T) {
			cfg := &Config{LogFormat: format, LogLevel: "warn"}

			logger := cfg.NewLogger()
			require.NotNil(t, logger)
			assert.False(t, logger.Handler().Enabled(t.Context(), slog.LevelInfo))
			assert.True(t, logger.Handler().Enabled(t.Context(), slog.LevelWarn))
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo}, // defaults to info
		{"", slog.LevelInfo},        // defaults to info
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLogLevel(tt.input))
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{SampleRate: 16000, Channels: 1, MaxOutputs: 3, MaxConcurrentEncodes: 1, Encoder: "native"}

	t.Run("valid config", func(t *testing.T) {
		cfg := valid
		assert.NoError(t, cfg.Validate())
	})

	t.Run("encoder is case insensitive", func(t *testing.T) {
		cfg := valid
		cfg.Encoder = "FFmpeg"
		assert.NoError(t, cfg.Validate())
	})
}
