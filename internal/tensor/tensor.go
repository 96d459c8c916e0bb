// Package tensor provides the small dense float32 array used to carry
// batches of waveforms, plus placeholders for batches that are only
// materialized later.
package tensor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Unknown marks a dimension whose size is not known yet.
const Unknown = -1

var (
	// ErrDataSize is returned when the element count does not match the shape.
	ErrDataSize = errors.New("tensor: data size does not match shape")
	// ErrUndefinedShape is returned when a concrete batch is given unknown dimensions.
	ErrUndefinedShape = errors.New("tensor: shape must be fully defined")
	// ErrRagged is returned when nested clips do not share the same dimensions.
	ErrRagged = errors.New("tensor: ragged input")
)

// Shape lists the size of each dimension. A nil Shape means the rank
// itself is unknown.
type Shape []int

// Rank returns the number of dimensions, or Unknown for a nil shape.
func (s Shape) Rank() int {
	if s == nil {
		return Unknown
	}
	return len(s)
}

// IsFullyDefined reports whether the rank and every dimension are known.
func (s Shape) IsFullyDefined() bool {
	if s == nil {
		return false
	}
	for _, d := range s {
		if d < 0 {
			return false
		}
	}
	return true
}

// NumElements returns the product of all dimensions.
// It is only meaningful for fully defined shapes.
func (s Shape) NumElements() int {
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

// CompatibleWith reports whether a shape can describe the same array as o,
// treating unknown dimensions and unknown ranks as wildcards.
func (s Shape) CompatibleWith(o Shape) bool {
	if s == nil || o == nil {
		return true
	}
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] >= 0 && o[i] >= 0 && s[i] != o[i] {
			return false
		}
	}
	return true
}

// String renders the shape as "[2 100 ?]", or "<unknown>" for unknown rank.
func (s Shape) String() string {
	if s == nil {
		return "<unknown>"
	}
	parts := make([]string, len(s))
	for i, d := range s {
		if d < 0 {
			parts[i] = "?"
			continue
		}
		parts[i] = strconv.Itoa(d)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	if s == nil {
		return nil
	}
	out := make(Shape, len(s))
	copy(out, s)
	return out
}

// Batch is a dense row-major float32 array with a fully defined shape.
type Batch struct {
	shape Shape
	data  []float32
}

// New creates a Batch over data. The slice is not copied.
func New(shape Shape, data []float32) (*Batch, error) {
	if !shape.IsFullyDefined() {
		return nil, fmt.Errorf("%w: got %s", ErrUndefinedShape, shape)
	}
	if want := shape.NumElements(); want != len(data) {
		return nil, fmt.Errorf("%w: shape %s needs %d elements, got %d", ErrDataSize, shape, want, len(data))
	}
	return &Batch{shape: shape.Clone(), data: data}, nil
}

// FromClips builds a [K, T, C] batch from clips indexed as clip, frame, channel.
// Every clip must have the same number of frames and channels.
func FromClips(clips [][][]float32) (*Batch, error) {
	k := len(clips)
	t, c := 0, 0
	if k > 0 {
		t = len(clips[0])
		if t > 0 {
			c = len(clips[0][0])
		}
	}

	data := make([]float32, 0, k*t*c)
	for i, clip := range clips {
		if len(clip) != t {
			return nil, fmt.Errorf("%w: clip %d has %d frames, want %d", ErrRagged, i, len(clip), t)
		}
		for j, frame := range clip {
			if len(frame) != c {
				return nil, fmt.Errorf("%w: clip %d frame %d has %d channels, want %d", ErrRagged, i, j, len(frame), c)
			}
			data = append(data, frame...)
		}
	}

	return &Batch{shape: Shape{k, t, c}, data: data}, nil
}

// Shape returns a copy of the batch shape.
func (b *Batch) Shape() Shape {
	return b.shape.Clone()
}

// Rank returns the number of dimensions.
func (b *Batch) Rank() int {
	return len(b.shape)
}

// Dim returns the size of dimension i.
func (b *Batch) Dim(i int) int {
	return b.shape[i]
}

// Data returns the backing slice.
func (b *Batch) Data() []float32 {
	return b.data
}

// Len returns the size of the leading dimension, or 0 for a scalar.
func (b *Batch) Len() int {
	if len(b.shape) == 0 {
		return 0
	}
	return b.shape[0]
}

// rowSize is the number of elements in one entry of the leading dimension.
func (b *Batch) rowSize() int {
	if len(b.shape) == 0 {
		return 0
	}
	return Shape(b.shape[1:]).NumElements()
}

// Slice returns the first min(n, Len()) entries along the leading
// dimension. The result shares memory with b.
func (b *Batch) Slice(n int) *Batch {
	if len(b.shape) == 0 {
		return b
	}
	if n < 0 {
		n = 0
	}
	if n > b.shape[0] {
		n = b.shape[0]
	}
	shape := b.shape.Clone()
	shape[0] = n
	return &Batch{shape: shape, data: b.data[:n*b.rowSize()]}
}

// Row returns the flat elements of entry i along the leading dimension.
func (b *Batch) Row(i int) []float32 {
	size := b.rowSize()
	return b.data[i*size : (i+1)*size]
}

// Placeholder describes a batch that will be fed at evaluation time.
// Its shape may be partially or entirely unknown.
type Placeholder struct {
	Name  string
	Shape Shape
}

// Accepts reports whether b can be fed for this placeholder.
func (p Placeholder) Accepts(b *Batch) bool {
	return p.Shape.CompatibleWith(b.shape)
}
