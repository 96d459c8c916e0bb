package main

import (
	"context"
	"fmt"
	"io"

	"github.com/maauso/audiosummary/internal/audio"
	"github.com/maauso/audiosummary/internal/bootstrap"
	"github.com/maauso/audiosummary/internal/summary"
)

func runInspect(ctx context.Context, deps *bootstrap.Dependencies, args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: inspect takes exactly one location", errUsage)
	}

	r, err := deps.Storage.Load(ctx, args[0])
	if err != nil {
		return fmt.Errorf("load summary: %w", err)
	}
	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read summary: %w", err)
	}

	recs, err := summary.UnmarshalRecords(data)
	if err != nil {
		return fmt.Errorf("decode summary: %w", err)
	}

	for _, rec := range recs {
		printRecord(stdout, rec)
	}
	return nil
}

func printRecord(w io.Writer, rec *summary.Record) {
	fmt.Fprintf(w, "tag: %s\n", rec.Tag)
	fmt.Fprintf(w, "display_name: %s\n", rec.Metadata.DisplayName)
	fmt.Fprintf(w, "description: %s\n", rec.Metadata.Description)
	fmt.Fprintf(w, "encoding: %s\n", rec.Metadata.Encoding)
	fmt.Fprintf(w, "clips: %d\n", len(rec.Rows))

	for i, row := range rec.Rows {
		info, err := audio.GetWAVInfo(row.EncodedAudio)
		if err != nil {
			fmt.Fprintf(w, "  [%d] invalid audio (%v) label=%q\n", i, err, row.Label)
			continue
		}
		fmt.Fprintf(w, "  [%d] %s %d Hz %dch label=%q\n", i, info.Duration, info.SampleRate, info.Channels, row.Label)
	}
}
