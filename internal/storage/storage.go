package storage

import (
	"context"
	"io"
)

// Package storage contains the remote media store abstraction and its
// S3-compatible implementation. Implementations must avoid using local disk
// and rely on streaming I/O only.

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and the implementation
// will buffer/chunk as supported by the backend.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo describes an uploaded object. Key is the stable identifier used
// for later deletion; URL is the public address served to clients.
type ObjectInfo struct {
	Key         string
	Size        int64
	ETag        string
	ContentType string
	URL         string
}

// Storage is a reusable, S3-compatible object storage client interface.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// PublicURL returns the permanent public URL for the object at key.
	PublicURL(key string) string
}
