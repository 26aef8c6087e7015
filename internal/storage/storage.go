// Package storage persists downloaded thumbnails.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrEmptyName indicates Save was called without an object name.
var ErrEmptyName = errors.New("storage: empty name")

// Storage stores a named blob and returns where it ended up.
type Storage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}
