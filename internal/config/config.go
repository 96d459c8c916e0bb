// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

// Encoder backends.
const (
	EncoderNative = "native"
	EncoderFFmpeg = "ffmpeg"
)

// Static errors for configuration validation.
var (
	// ErrInvalidSampleRate is returned when SAMPLE_RATE is not positive.
	ErrInvalidSampleRate = errors.New("config: SAMPLE_RATE must be positive")
	// ErrInvalidChannels is returned when CHANNELS is not positive.
	ErrInvalidChannels = errors.New("config: CHANNELS must be positive")
	// ErrInvalidMaxOutputs is returned when MAX_OUTPUTS is not positive.
	ErrInvalidMaxOutputs = errors.New("config: MAX_OUTPUTS must be positive")
	// ErrInvalidConcurrency is returned when MAX_CONCURRENT_ENCODES is not positive.
	ErrInvalidConcurrency = errors.New("config: MAX_CONCURRENT_ENCODES must be positive")
	// ErrUnknownEncoder is returned when ENCODER names an unknown backend.
	ErrUnknownEncoder = errors.New("config: ENCODER must be \"native\" or \"ffmpeg\"")
)

// Config holds all configuration for the application.
type Config struct {
	// Output settings
	OutputDir string `env:"OUTPUT_DIR, default=./summaries" json:"output_dir"`

	// Decoding settings for inputs read through ffmpeg
	SampleRate int    `env:"SAMPLE_RATE, default=16000" json:"sample_rate"`
	Channels   int    `env:"CHANNELS, default=1" json:"channels"`
	FFmpegPath string `env:"FFMPEG_PATH" json:"ffmpeg_path,omitempty"`

	// Summary settings
	MaxOutputs           int    `env:"MAX_OUTPUTS, default=3" json:"max_outputs"`
	Encoding             string `env:"ENCODING, default=wav" json:"encoding"`
	Encoder              string `env:"ENCODER, default=native" json:"encoder"` // "native" or "ffmpeg"
	MaxConcurrentEncodes int    `env:"MAX_CONCURRENT_ENCODES, default=1" json:"max_concurrent_encodes"`

	// Optional S3 settings
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	S3Endpoint         string `env:"S3_ENDPOINT" json:"s3_endpoint,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// Load reads configuration from environment variables using go-envconfig
// and validates it.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that numeric settings are in range and the encoder
// backend is known. The encoding name is checked by the summary builder.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return ErrInvalidSampleRate
	}
	if c.Channels <= 0 {
		return ErrInvalidChannels
	}
	if c.MaxOutputs <= 0 {
		return ErrInvalidMaxOutputs
	}
	if c.MaxConcurrentEncodes <= 0 {
		return ErrInvalidConcurrency
	}
	switch strings.ToLower(c.Encoder) {
	case EncoderNative, EncoderFFmpeg:
	default:
		return ErrUnknownEncoder
	}
	return nil
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs. Logs go to stderr so that
// command output on stdout stays parseable.
func (c *Config) NewLogger() *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{OutputDir: %s, SampleRate: %d, Channels: %d, MaxOutputs: %d, Encoding: %s, Encoder: %s, MaxConcurrentEncodes: %d, S3Bucket: %s, S3Region: %s, LogFormat: %s, LogLevel: %s}",
		c.OutputDir,
		c.SampleRate,
		c.Channels,
		c.MaxOutputs,
		c.Encoding,
		c.Encoder,
		c.MaxConcurrentEncodes,
		c.S3Bucket,
		c.S3Region,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
