package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// FilesystemStorage implements FileStorage on a local directory.
// Keys map to paths below the root; path traversal is rejected.
type FilesystemStorage struct {
	root   string
	logger *zap.Logger
}

// FilesystemOption configures the FilesystemStorage
type FilesystemOption func(*FilesystemStorage)

// WithFilesystemLogger sets the logger
func WithFilesystemLogger(logger *zap.Logger) FilesystemOption {
	return func(f *FilesystemStorage) {
		f.logger = logger
	}
}

// NewFilesystemStorage creates a directory-backed file storage
func NewFilesystemStorage(root string, opts ...FilesystemOption) (*FilesystemStorage, error) {
	if root == "" {
		return nil, fmt.Errorf("storage root directory is required")
	}
	storage := &FilesystemStorage{
		root:   root,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(storage)
	}
	return storage, nil
}

// EnsureReady creates the root directory if needed
func (f *FilesystemStorage) EnsureReady(ctx context.Context) error {
	if err := os.MkdirAll(f.root, 0o755); err != nil {
		return fmt.Errorf("failed to create storage root %s: %w", f.root, err)
	}
	return nil
}

func (f *FilesystemStorage) pathFor(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("object key is required")
	}
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(f.root, cleaned), nil
}

// Put stores an object, creating parent directories as needed.
// The write goes through a temp file so readers never see partial content.
func (f *FilesystemStorage) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	path, err := f.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write object %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file for %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to store object %s: %w", key, err)
	}
	f.logger.Debug("stored object", zap.String("key", key))
	return nil
}

// Open streams an object from disk
func (f *FilesystemStorage) Open(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	path, err := f.pathFor(key)
	if err != nil {
		return nil, 0, err
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, ErrObjectNotFound
		}
		return nil, 0, fmt.Errorf("failed to open object %s: %w", key, err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, 0, fmt.Errorf("failed to stat object %s: %w", key, err)
	}
	return file, info.Size(), nil
}

// Delete removes an object. Missing objects are ignored.
func (f *FilesystemStorage) Delete(ctx context.Context, key string) error {
	path, err := f.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// Exists reports whether an object is stored under the key
func (f *FilesystemStorage) Exists(ctx context.Context, key string) (bool, error) {
	path, err := f.pathFor(key)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Ensure FilesystemStorage implements FileStorage
var _ FileStorage = (*FilesystemStorage)(nil)
