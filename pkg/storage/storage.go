// Package storage lists and opens the documents of a batch.
package storage

import (
	"context"
	"io"
	"time"
)

// FileInfo contains metadata about a stored document
type FileInfo struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	Path       string    `json:"path"` // Internal storage path
	ModifiedAt time.Time `json:"modified_at"`
}

// Source defines the read operations a batch needs
type Source interface {
	// List returns every document, ordered by name
	List(ctx context.Context) ([]FileInfo, error)

	// Open returns a reader for a document
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// ReadAll loads a document fully into memory.
func ReadAll(ctx context.Context, src Source, name string) ([]byte, error) {
	rc, err := src.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
