// Package storage holds uploaded files on disk while they are being imported.
package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("file not found")

// FileInfo contains metadata about a stored file
type FileInfo struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	Path      string    `json:"path"` // relative to the storage root
	CreatedAt time.Time `json:"created_at"`
}

// Storage defines the temporary upload store used by the import handlers
type Storage interface {
	// Save stores the content of r under a fresh ID
	Save(ctx context.Context, filename string, r io.Reader) (*FileInfo, error)

	// Open returns a reader for a stored file
	Open(ctx context.Context, id uuid.UUID) (io.ReadCloser, *FileInfo, error)

	// Remove deletes a stored file; removing a missing file is not an error
	Remove(ctx context.Context, id uuid.UUID) error

	// Sweep removes files older than maxAge and returns how many were removed
	Sweep(ctx context.Context, maxAge time.Duration) (int, error)
}
