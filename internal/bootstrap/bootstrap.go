// Package bootstrap provides dependency initialization for the audiosummary command.
package bootstrap

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/maauso/audiosummary/internal/audio"
	"github.com/maauso/audiosummary/internal/config"
	"github.com/maauso/audiosummary/internal/storage"
	"github.com/maauso/audiosummary/internal/summary"
)

// Dependencies holds all initialized dependencies for the command.
type Dependencies struct {
	Builder *summary.Builder
	Storage storage.Storage
	Decoder *audio.FFmpegDecoder
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	store, err := initStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	builder := summary.NewBuilder(
		summary.WithEncoder(initEncoder(cfg, logger)),
		summary.WithConcurrency(cfg.MaxConcurrentEncodes),
		summary.WithLogger(logger),
	)

	return &Dependencies{
		Builder: builder,
		Storage: store,
		Decoder: audio.NewFFmpegDecoder(cfg.FFmpegPath, cfg.SampleRate, cfg.Channels),
	}, nil
}

// SummaryOptions returns the summary options configured for name.
func SummaryOptions(cfg *config.Config, name string) summary.Options {
	return summary.Options{
		Name:       name,
		MaxOutputs: cfg.MaxOutputs,
		Encoding:   cfg.Encoding,
	}
}

// initEncoder selects the WAV encoder backend.
func initEncoder(cfg *config.Config, logger *slog.Logger) audio.Encoder {
	if strings.ToLower(cfg.Encoder) == config.EncoderFFmpeg {
		logger.Debug("ffmpeg encoder configured", slog.String("ffmpeg_path", cfg.FFmpegPath))
		return audio.NewFFmpegEncoder(cfg.FFmpegPath, "")
	}
	return audio.NewWAVEncoder()
}

// initStorage creates the appropriate storage backend based on configuration.
func initStorage(cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.S3Enabled() {
		s3Store, err := storage.NewS3Storage(storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Debug("S3 storage configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return s3Store, nil
	}

	localStore, err := storage.NewLocalStorage(cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}
	logger.Debug("local storage configured",
		slog.String("output_dir", localStore.Dir()),
	)
	return localStore, nil
}
