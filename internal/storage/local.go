package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalPhotoStorage implements PhotoStorage on the local filesystem.
// Use this for development or single-instance deployments; photos are
// served from the configured public base URL (the server's /photos mount).
type LocalPhotoStorage struct {
	baseDir       string
	publicBaseURL string
}

// NewLocalPhotoStorage creates a filesystem-backed photo storage rooted
// at baseDir.
func NewLocalPhotoStorage(baseDir, publicBaseURL string) (*LocalPhotoStorage, error) {
	if baseDir == "" {
		return nil, errors.New("storage directory is required")
	}

	if err := os.MkdirAll(filepath.Join(baseDir, KeyPrefix), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	if publicBaseURL == "" {
		publicBaseURL = "/photos"
	}

	return &LocalPhotoStorage{
		baseDir:       baseDir,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}, nil
}

// BaseDir returns the storage root, for mounting a file server over it.
func (s *LocalPhotoStorage) BaseDir() string {
	return s.baseDir
}

// Upload stores data under key with a no-overwrite guarantee and returns
// the public URL.
func (s *LocalPhotoStorage) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}

	// O_EXCL makes the no-overwrite guarantee atomic.
	f, err := os.OpenFile(s.path(key), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return "", ErrObjectExists
		}
		return "", fmt.Errorf("failed to create object file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return "", fmt.Errorf("failed to write object file: %w", err)
	}

	return s.PublicURL(key), nil
}

// PublicURL returns the public URL for an object key.
func (s *LocalPhotoStorage) PublicURL(key string) string {
	return s.publicBaseURL + "/" + key
}

// Delete removes the object with the given key.
func (s *LocalPhotoStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}

	if err := os.Remove(s.path(key)); err != nil {
		if os.IsNotExist(err) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("failed to delete object file: %w", err)
	}
	return nil
}

func (s *LocalPhotoStorage) path(key string) string {
	// Keys are server-generated, but keep traversal out anyway.
	return filepath.Join(s.baseDir, filepath.Clean("/"+key))
}

// Ensure LocalPhotoStorage implements PhotoStorage
var _ PhotoStorage = (*LocalPhotoStorage)(nil)
