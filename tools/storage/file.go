package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

type FileImageStore struct {
	Dir string
}

func NewFileImageStore(dir string) *FileImageStore {
	return &FileImageStore{Dir: dir}
}

func (s *FileImageStore) Save(ctx context.Context, key string, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create image directory: %w", err)
	}
	path := filepath.Join(s.Dir, filepath.Base(key))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return path, nil
}
