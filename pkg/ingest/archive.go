package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalArchiver keeps frozen document copies in a local directory. It is the
// default archive backend when no object storage is configured.
type LocalArchiver struct {
	dir string
}

// NewLocalArchiver creates an archiver writing under dir.
func NewLocalArchiver(dir string) *LocalArchiver {
	return &LocalArchiver{dir: dir}
}

// Archive writes data to a key-scoped file and returns its path. Existing
// archives are never overwritten: the archived copy is immutable.
func (a *LocalArchiver) Archive(ctx context.Context, key string, filename string, data []byte) (string, error) {
	if err := os.MkdirAll(a.dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create archive dir: %w", err)
	}

	ext := filepath.Ext(filename)
	target := filepath.Join(a.dir, key+ext)
	if _, err := os.Stat(target); err == nil {
		return "", fmt.Errorf("archive already exists: %s", target)
	}

	if err := os.WriteFile(target, data, 0o440); err != nil {
		return "", fmt.Errorf("failed to write archive copy: %w", err)
	}
	return target, nil
}

// Remove deletes an archived copy by the path Archive returned.
func (a *LocalArchiver) Remove(_ context.Context, archivedPath string) error {
	if err := os.Remove(archivedPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove archive copy: %w", err)
	}
	return nil
}
