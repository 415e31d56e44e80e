package storage

import (
	"context"
	"io"
)

// DocumentStore holds leave request attachments and hands back opaque
// references.
type DocumentStore interface {
	// Store writes the document and returns its reference. A nil reader
	// means no attachment was supplied and yields an empty reference.
	Store(ctx context.Context, r io.Reader, originalName string) (string, error)

	// Open retrieves a stored document by reference.
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}
