package summary

import (
	"context"
	"fmt"
	"sync"

	"github.com/maauso/audiosummary/internal/tensor"
)

// SummariesCollection is the collection ops join when none is requested.
const SummariesCollection = "summaries"

// Graph groups deferred ops into named collections so a caller can
// evaluate them together once inputs are available.
type Graph struct {
	mu          sync.RWMutex
	collections map[string][]*Op
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{collections: make(map[string][]*Op)}
}

func (g *Graph) add(op *Op, keys []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, k := range keys {
		g.collections[k] = append(g.collections[k], op)
	}
}

// Collection returns the ops registered under key in registration order.
func (g *Graph) Collection(key string) []*Op {
	g.mu.RLock()
	defer g.mu.RUnlock()
	ops := g.collections[key]
	out := make([]*Op, len(ops))
	copy(out, ops)
	return out
}

// Run evaluates every op in a collection against feed and returns their
// records in registration order. It stops at the first error and returns
// it as Op.Eval reported it.
func (g *Graph) Run(ctx context.Context, key string, feed *Feed) ([]*Record, error) {
	ops := g.Collection(key)
	out := make([]*Record, 0, len(ops))
	for _, op := range ops {
		rec, err := op.Eval(ctx, feed)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Feed supplies the concrete values for placeholders at evaluation time.
type Feed struct {
	audio  map[string]*tensor.Batch
	labels map[string][]string
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{
		audio:  make(map[string]*tensor.Batch),
		labels: make(map[string][]string),
	}
}

// Audio binds a batch to the placeholder called name.
func (f *Feed) Audio(name string, b *tensor.Batch) *Feed {
	f.audio[name] = b
	return f
}

// Labels binds a label list to the feed called name.
func (f *Feed) Labels(name string, labels []string) *Feed {
	f.labels[name] = labels
	return f
}

// OpOptions configures a deferred op.
type OpOptions struct {
	Options
	// Labels names the feed holding per-clip labels. Empty means no labels.
	Labels string
	// Collections lists the graph collections the op joins.
	// Defaults to SummariesCollection.
	Collections []string
}

// Op is a summary whose audio is supplied later through a Feed.
type Op struct {
	builder    *Builder
	plan       plan
	audio      tensor.Placeholder
	labels     string
	sampleRate int
}

// NewOp validates opts and returns an op that builds a record from the
// batch fed for audio. Options and encoding are checked now; the rank of
// the audio is only checked when the op is evaluated.
//
// When g is non-nil the op is added to each of opts.Collections.
func (b *Builder) NewOp(g *Graph, audio tensor.Placeholder, sampleRate int, opts OpOptions) (*Op, error) {
	p, err := b.resolve(opts.Options)
	if err != nil {
		return nil, err
	}
	if audio.Name == "" {
		return nil, fmt.Errorf("%w: audio placeholder has no name", ErrInvalidConfig)
	}

	op := &Op{
		builder:    b,
		plan:       p,
		audio:      audio,
		labels:     opts.Labels,
		sampleRate: sampleRate,
	}

	if g != nil {
		keys := opts.Collections
		if len(keys) == 0 {
			keys = []string{SummariesCollection}
		}
		g.add(op, keys)
	}
	return op, nil
}

// Tag returns the tag of the records this op produces.
func (op *Op) Tag() string {
	return op.plan.tag
}

// Metadata returns the metadata attached to every record of this op.
func (op *Op) Metadata() Metadata {
	return op.plan.metadata
}

// Eval materializes the op's inputs from feed and builds the record.
// A label feed shorter than the emitted clips is padded with empty labels.
func (op *Op) Eval(ctx context.Context, feed *Feed) (*Record, error) {
	var batch *tensor.Batch
	if feed != nil {
		batch = feed.audio[op.audio.Name]
	}
	if batch == nil {
		return nil, fmt.Errorf("%w: audio %q", ErrMissingFeed, op.audio.Name)
	}
	if !op.audio.Accepts(batch) {
		return nil, &ShapeError{Shape: batch.Shape(), Want: op.audio.Shape}
	}

	var labels []string
	if op.labels != "" {
		l, ok := feed.labels[op.labels]
		if !ok {
			return nil, fmt.Errorf("%w: labels %q", ErrMissingFeed, op.labels)
		}
		labels = l
	}

	return op.builder.run(ctx, op.plan, batch, op.sampleRate, labels, true)
}
