package summary

import (
	"errors"
	"fmt"

	"github.com/maauso/audiosummary/internal/tensor"
)

var (
	// ErrInvalidConfig is the parent of every error caused by a bad call site:
	// unsupported encodings, label count mismatches and invalid options.
	ErrInvalidConfig = errors.New("summary: invalid configuration")
	// ErrLabelCount is returned in immediate mode when fewer labels than
	// emitted clips are provided.
	ErrLabelCount = fmt.Errorf("%w: not enough labels", ErrInvalidConfig)
	// ErrShape is matched by every *ShapeError.
	ErrShape = errors.New("summary: invalid audio shape")
	// ErrMissingFeed is returned when a deferred op is evaluated without its audio input.
	ErrMissingFeed = errors.New("summary: missing feed")
	// ErrNotAudio is returned when decoding a value that is not an audio summary.
	ErrNotAudio = errors.New("summary: not an audio summary")
)

// UnsupportedEncodingError is returned when an encoding other than "wav"
// is requested.
type UnsupportedEncodingError struct {
	Requested string
}

func (e *UnsupportedEncodingError) Error() string {
	return fmt.Sprintf("summary: unknown encoding: %q", e.Requested)
}

// Is makes errors.Is(err, ErrInvalidConfig) hold.
func (e *UnsupportedEncodingError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// ShapeError reports an audio batch whose shape cannot be summarized.
type ShapeError struct {
	Shape tensor.Shape
	// Want is the shape that was expected. Nil means "any rank-3 shape".
	Want tensor.Shape
}

func (e *ShapeError) Error() string {
	if e.Want != nil {
		return fmt.Sprintf("summary: shape %s is not compatible with %s", e.Shape, e.Want)
	}
	return fmt.Sprintf("summary: shape %s must have rank 3", e.Shape)
}

// Is makes errors.Is(err, ErrShape) hold.
func (e *ShapeError) Is(target error) bool {
	return target == ErrShape
}
