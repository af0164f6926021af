// Package storage saves uploaded image files
package storage

import (
	"context"
	"errors"
	"io"
)

var ErrInvalidName = errors.New("invalid storage name")

// Storage is where uploaded files end up. Names are flat, already sanitized
// file names; nested paths are rejected.
type Storage interface {
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, name string) error
	// URL returns where a browser can fetch the file from
	URL(name string) string
}
