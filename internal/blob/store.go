// Package blob stores uploaded document files. Documents reference blobs by
// key; the store decides where the bytes actually live.
package blob

import (
	"context"
	"io"
)

// Store accepts a stream under a caller-chosen key and can remove it later.
// Keys are opaque to callers beyond being stable handles.
type Store interface {
	Save(ctx context.Context, key string, r io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
}
