// Package storage holds the blob stores that back item files.
//
// Keys are physical names: opaque hex strings produced by NewPhysicalName.
// Backends add the ".gif" extension themselves so callers never deal with it.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// Extension is appended to every physical name on the storage medium.
const Extension = ".gif"

// ContentType is the only content type accepted for blobs.
const ContentType = "image/gif"

// ErrNotFound is returned by Get when no blob exists under the key.
var ErrNotFound = errors.New("storage: object not found")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; -1 when unknown.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about a stored blob.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage maps a physical name to binary content.
//
// Put is atomic on success: a reader never observes a partial blob.
// Delete of a missing key is not an error.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves a blob as a streaming reader alongside its info.
	// The caller must close the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}
