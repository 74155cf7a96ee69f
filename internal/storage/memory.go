package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryStorage хранит объекты в памяти процесса. Используется, когда MinIO не настроен.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

// NewMemoryStorage создаёт пустое хранилище в памяти.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: make(map[string]memoryObject)}
}

// EnsureBucket ничего не делает: бакет у хранилища в памяти один.
func (m *MemoryStorage) EnsureBucket(context.Context) error {
	return nil
}

// Put сохраняет копию содержимого r.
func (m *MemoryStorage) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read object: %w", err)
	}

	m.mu.Lock()
	m.objects[key] = memoryObject{data: data, contentType: contentType}
	m.mu.Unlock()
	return nil
}

// Get возвращает объект по ключу.
func (m *MemoryStorage) Get(_ context.Context, key string) (*Object, error) {
	m.mu.RLock()
	obj, ok := m.objects[key]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrObjectNotFound
	}

	return &Object{
		ReadCloser:  io.NopCloser(bytes.NewReader(obj.data)),
		Size:        int64(len(obj.data)),
		ContentType: obj.contentType,
	}, nil
}

// Delete удаляет объект.
func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// Len возвращает количество хранимых объектов.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// Bucket возвращает условное имя бакета.
func (m *MemoryStorage) Bucket() string {
	return "memory"
}
