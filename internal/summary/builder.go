// Package summary builds audio summary records: a batch of waveforms is
// limited to a maximum number of clips, each clip is encoded, paired with
// its label and tagged together with metadata describing the encoding.
//
// Records can be built immediately from a concrete batch (Builder.Build) or
// described now and evaluated later against fed inputs (Builder.NewOp).
// Both paths share the same algorithm.
package summary

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/maauso/audiosummary/internal/audio"
	"github.com/maauso/audiosummary/internal/tensor"
)

// Options configures a single summary.
type Options struct {
	// Name identifies the summary and prefixes its tag.
	Name string `validate:"required"`
	// MaxOutputs caps the number of emitted clips. Zero selects DefaultMaxOutputs.
	MaxOutputs int `validate:"gte=0"`
	// Encoding selects the container format. Only "wav" is supported;
	// empty selects it.
	Encoding string
	// DisplayName defaults to Name.
	DisplayName string
	// Description is Markdown and defaults to empty.
	Description string
}

// Builder produces audio records.
// A Builder holds no per-call state and is safe for concurrent use.
type Builder struct {
	encoder     audio.Encoder
	concurrency int
	logger      *slog.Logger
	validate    *validator.Validate
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithEncoder sets the WAV encoder. Defaults to audio.WAVEncoder.
func WithEncoder(e audio.Encoder) BuilderOption {
	return func(b *Builder) {
		if e != nil {
			b.encoder = e
		}
	}
}

// WithConcurrency sets how many clips may be encoded at once.
// Values below 1 are ignored.
func WithConcurrency(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) BuilderOption {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBuilder creates a Builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		encoder:     audio.NewWAVEncoder(),
		concurrency: 1,
		logger:      slog.Default(),
		validate:    validator.New(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// plan holds options after defaults are applied and validation passed.
type plan struct {
	tag        string
	maxOutputs int
	metadata   Metadata
}

// resolve validates opts and applies defaults. It never touches audio data,
// so configuration errors surface before any encoding work.
func (b *Builder) resolve(opts Options) (plan, error) {
	if err := b.validate.Struct(opts); err != nil {
		return plan{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	enc, err := ParseEncoding(opts.Encoding)
	if err != nil {
		return plan{}, err
	}

	maxOutputs := opts.MaxOutputs
	if maxOutputs == 0 {
		maxOutputs = DefaultMaxOutputs
	}
	displayName := opts.DisplayName
	if displayName == "" {
		displayName = opts.Name
	}

	return plan{
		tag:        Tag(opts.Name),
		maxOutputs: maxOutputs,
		metadata: Metadata{
			DisplayName: displayName,
			Description: opts.Description,
			Encoding:    enc,
		},
	}, nil
}

// Build encodes the first min(K, MaxOutputs) clips of a [K, T, C] batch and
// returns the record.
//
// labels may be nil, in which case every label is empty. Otherwise it must
// hold at least as many entries as emitted clips; extra entries are ignored.
// Encoder errors, such as an invalid sample rate, are returned unchanged.
func (b *Builder) Build(ctx context.Context, batch *tensor.Batch, sampleRate int, labels []string, opts Options) (*Record, error) {
	p, err := b.resolve(opts)
	if err != nil {
		return nil, err
	}
	return b.run(ctx, p, batch, sampleRate, labels, false)
}

// run is the algorithm shared by immediate builds and deferred ops.
// padLabels allows a label list shorter than the emitted clips.
func (b *Builder) run(ctx context.Context, p plan, batch *tensor.Batch, sampleRate int, labels []string, padLabels bool) (*Record, error) {
	if batch == nil {
		return nil, &ShapeError{}
	}
	if batch.Rank() != 3 {
		return nil, &ShapeError{Shape: batch.Shape()}
	}

	limited := batch.Slice(p.maxOutputs)
	n := limited.Len()

	rowLabels, err := limitLabels(labels, n, padLabels)
	if err != nil {
		return nil, err
	}

	encoded, err := b.encodeAll(ctx, limited, sampleRate)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, n)
	for i := range rows {
		rows[i] = Row{EncodedAudio: encoded[i], Label: rowLabels[i]}
	}

	b.logger.Debug("audio summary built",
		slog.String("tag", p.tag),
		slog.Int("clips", batch.Len()),
		slog.Int("rows", n),
		slog.String("encoding", p.metadata.Encoding.String()),
	)

	return &Record{Tag: p.tag, Rows: rows, Metadata: p.metadata}, nil
}

// limitLabels returns exactly n labels.
func limitLabels(labels []string, n int, pad bool) ([]string, error) {
	out := make([]string, n)
	if labels == nil {
		return out, nil
	}
	if len(labels) < n && !pad {
		return nil, fmt.Errorf("%w: got %d labels for %d clips", ErrLabelCount, len(labels), n)
	}
	copy(out, labels)
	return out, nil
}

// encodeAll encodes every clip of a [k, T, C] batch. Clips are independent;
// results are stored by index so output order is input order.
func (b *Builder) encodeAll(ctx context.Context, batch *tensor.Batch, sampleRate int) ([][]byte, error) {
	n := batch.Len()
	channels := batch.Dim(2)
	out := make([][]byte, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := b.encoder.Encode(gctx, audio.Waveform{Channels: channels, Samples: batch.Row(i)}, sampleRate)
			if err != nil {
				return err
			}
			out[i] = data
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
