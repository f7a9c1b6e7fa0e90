package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ImageStore archives generated images and reports where each one went.
type ImageStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (location string, err error)
}

// TestImageStore is a simple in-memory implementation for testing
type TestImageStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func NewTestImageStore() *TestImageStore {
	return &TestImageStore{objects: make(map[string][]byte)}
}

func NewTestImageStoreWithError() *TestImageStore {
	return &TestImageStore{objects: make(map[string][]byte), err: errors.New("store unavailable")}
}

func (t *TestImageStore) Save(_ context.Context, key string, data []byte, _ string) (string, error) {
	if t.err != nil {
		return "", t.err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.objects[key] = append([]byte(nil), data...)
	return fmt.Sprintf("memory://%s", key), nil
}

// Objects returns a snapshot of everything saved so far.
func (t *TestImageStore) Objects() map[string][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string][]byte, len(t.objects))
	for k, v := range t.objects {
		out[k] = v
	}
	return out
}
