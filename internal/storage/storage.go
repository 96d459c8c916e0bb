// Package storage provides the sinks that serialized audio records are
// written to. It defines the Storage interface and implementations for
// local disk and S3.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrInvalidKey is returned when a key would escape the storage root.
var ErrInvalidKey = errors.New("storage: invalid key")

// Storage defines where serialized records are written and read back from.
type Storage interface {
	// Save writes data under key and returns the location it can be
	// loaded from.
	Save(ctx context.Context, key string, data io.Reader) (location string, err error)

	// Load opens a location previously returned by Save.
	// The caller is responsible for closing the returned ReadCloser.
	Load(ctx context.Context, location string) (io.ReadCloser, error)
}
