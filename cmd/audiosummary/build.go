package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/maauso/audiosummary/internal/bootstrap"
	"github.com/maauso/audiosummary/internal/config"
	"github.com/maauso/audiosummary/internal/storage"
)

// labelList collects repeated -label flags.
type labelList []string

func (l *labelList) String() string {
	return strings.Join(*l, ",")
}

func (l *labelList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func runBuild(ctx context.Context, cfg *config.Config, deps *bootstrap.Dependencies, logger *slog.Logger, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var labels labelList
	name := fs.String("name", "", "Summary name; the record is tagged NAME/audio_summary")
	displayName := fs.String("display-name", "", "Display name (defaults to NAME)")
	description := fs.String("description", "", "Markdown description")
	fs.Var(&labels, "label", "Label for the clip at the same position (repeatable)")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: no input files", errUsage)
	}

	batch, sampleRate, err := loadBatch(ctx, deps.Decoder, fs.Args())
	if err != nil {
		return err
	}

	opts := bootstrap.SummaryOptions(cfg, *name)
	opts.DisplayName = *displayName
	opts.Description = *description

	rec, err := deps.Builder.Build(ctx, batch, sampleRate, labels, opts)
	if err != nil {
		return fmt.Errorf("build summary: %w", err)
	}

	data, err := rec.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	location, err := deps.Storage.Save(ctx, storage.ObjectKey(*name), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("save summary: %w", err)
	}

	logger.Info("summary stored",
		slog.String("tag", rec.Tag),
		slog.Int("clips", len(rec.Rows)),
		slog.Int("bytes", len(data)),
		slog.String("location", location),
	)

	_, err = fmt.Fprintln(stdout, location)
	return err
}
