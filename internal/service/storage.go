package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Storage is where uploaded manuscripts, forms and payment proofs end up.
// Put returns the public URL of the stored object.
type Storage interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	Delete(ctx context.Context, key string) error
}

type StoredObject struct {
	Key string
	URL string
}

// Store uploads an already validated file under prefix with a random name
func Store(ctx context.Context, s Storage, prefix, contentType string, body io.Reader, size int64) (*StoredObject, error) {
	ext := ""
	if m := mimetype.Lookup(contentType); m != nil {
		ext = m.Extension()
	}

	key := path.Join(prefix, uuid.NewString()+ext)

	url, err := s.Put(ctx, key, contentType, body, size)
	if err != nil {
		return nil, fmt.Errorf("failed to store object, %w", err)
	}

	return &StoredObject{Key: key, URL: url}, nil
}

// Discard removes an object that ended up unused because the write that
// referenced it failed
func Discard(s Storage, key string) {
	if key == "" {
		return
	}

	if err := s.Delete(context.Background(), key); err != nil {
		zap.L().Error("Failed to clean up orphaned object", zap.String("key", key), zap.Error(err))
	}
}

// MemoryStorage keeps objects in memory. Used in tests and with storage.type = "memory".
type MemoryStorage struct {
	BaseURL string

	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemoryStorage(baseURL string) *MemoryStorage {
	return &MemoryStorage{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		objects: make(map[string][]byte),
	}
}

func (m *MemoryStorage) Put(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return "", err
	}

	m.mu.Lock()
	m.objects[key] = buf.Bytes()
	m.mu.Unlock()

	return m.BaseURL + "/" + key, nil
}

func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.objects[key]; !ok {
		return errors.New("object not found")
	}

	delete(m.objects, key)
	return nil
}

func (m *MemoryStorage) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.objects[key]
	return ok
}

func (m *MemoryStorage) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.objects)
}
