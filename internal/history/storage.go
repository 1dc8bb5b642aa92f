// Package history records calculations: the full record as a JSON blob in
// local, S3 or GCS storage, and a summary row in the SQL index.
package history

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jeffcwolf/klinscore/pkg/config"
)

// StorageClient abstracts blob storage for calculation records.
type StorageClient interface {
	PutRecord(ctx context.Context, scoreID, recordID string, data []byte) error
	GetRecord(ctx context.Context, scoreID, recordID string) ([]byte, error)
}

// NewStorage returns the StorageClient selected by cfg.Backend.
func NewStorage(ctx context.Context, cfg config.StorageConfig) (StorageClient, error) {
	switch cfg.Backend {
	case "local", "":
		dir := cfg.LocalDir
		if dir == "" {
			dir = config.RecordDir()
		}
		return NewLocalStorage(dir), nil
	case "s3":
		return NewS3Storage(ctx, S3Config{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
		})
	case "gcs":
		return NewGCSStorage(ctx, cfg.Bucket)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}

// objectKey is shared by every backend: <score>/records/<id>.json.
func objectKey(scoreID, recordID string) string {
	return scoreID + "/records/" + recordID + ".json"
}

// LocalStorage implements StorageClient using the local filesystem.
type LocalStorage struct {
	BaseDir string
}

// NewLocalStorage creates a LocalStorage rooted at the given directory.
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{BaseDir: baseDir}
}

func (s *LocalStorage) path(scoreID, recordID string) string {
	return filepath.Join(s.BaseDir, filepath.FromSlash(objectKey(scoreID, recordID)))
}

// PutRecord stores a record blob.
func (s *LocalStorage) PutRecord(_ context.Context, scoreID, recordID string, data []byte) error {
	p := s.path(scoreID, recordID)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(p, data, 0o644)
}

// GetRecord retrieves a record blob. A missing blob wraps ErrNotFound.
func (s *LocalStorage) GetRecord(_ context.Context, scoreID, recordID string) ([]byte, error) {
	data, err := os.ReadFile(s.path(scoreID, recordID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: blob %s", ErrNotFound, objectKey(scoreID, recordID))
	}
	return data, err
}
