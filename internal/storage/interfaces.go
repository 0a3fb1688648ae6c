package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
)

// KeyPrefix is the object path prefix all produce photos live under.
const KeyPrefix = "produce/"

// StorageError is a typed error for storage operations.
type StorageError string

func (e StorageError) Error() string { return string(e) }

const (
	// ErrObjectExists indicates an upload would overwrite an existing object.
	ErrObjectExists StorageError = "object already exists"
	// ErrObjectNotFound indicates the object does not exist.
	ErrObjectNotFound StorageError = "object not found"
)

// PhotoStorage defines the blob storage operations used for produce photos.
// Implementations must reject overwrites: photo keys embed the item id and
// a timestamp, so a key collision is always a caller bug.
type PhotoStorage interface {
	// Upload stores data under key and returns the public URL.
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// PublicURL returns the public URL for an object key.
	PublicURL(key string) string

	// Delete removes the object with the given key.
	Delete(ctx context.Context, key string) error
}

// PhotoKey builds the object key for a produce photo:
// produce/<itemID>-<unixmilli>.<ext>
func PhotoKey(itemID, filename string) string {
	ext := strings.TrimPrefix(path.Ext(filename), ".")
	if ext == "" {
		ext = "jpg"
	}
	return fmt.Sprintf("%s%s-%d.%s", KeyPrefix, itemID, time.Now().UnixMilli(), ext)
}

// KeyFromURL recovers the object key from a stored public photo URL by
// taking the last path segment and re-rooting it under the photo prefix.
func KeyFromURL(photoURL string) string {
	if photoURL == "" {
		return ""
	}
	parts := strings.Split(photoURL, "/")
	return KeyPrefix + parts[len(parts)-1]
}
