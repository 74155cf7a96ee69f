// Package storage хранит обложки книг в объектном хранилище.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrObjectNotFound возвращается, если объект с таким ключом отсутствует.
var ErrObjectNotFound = errors.New("object not found")

// Object представляет открытый на чтение объект хранилища.
type Object struct {
	io.ReadCloser
	Size        int64
	ContentType string
}

// ObjectStorage описывает операции над объектами, общие для всех бэкендов.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (*Object, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// Storage хранит обложки в бэкенде ObjectStorage под ключами вида uuid + расширение.
// Ключи другого вида не доходят до бэкенда.
type Storage struct {
	backend ObjectStorage
}

// NewStorage создаёт хранилище обложек поверх переданного бэкенда.
func NewStorage(backend ObjectStorage) *Storage {
	return &Storage{backend: backend}
}

// EnsureBucket создаёт бакет, если его ещё нет.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	return s.backend.EnsureBucket(ctx)
}

// Save сохраняет обложку под новым ключом с расширением fileName в нижнем регистре
// и возвращает этот ключ.
func (s *Storage) Save(ctx context.Context, fileName string, r io.Reader, size int64, contentType string) (string, error) {
	key := NewKey(fileName)
	if err := s.backend.Put(ctx, key, r, size, contentType); err != nil {
		return "", fmt.Errorf("put cover %s: %w", key, err)
	}
	return key, nil
}

// Open открывает обложку на чтение. Вызывающий обязан закрыть её.
func (s *Storage) Open(ctx context.Context, key string) (*Object, error) {
	if !IsCoverKey(key) {
		return nil, ErrObjectNotFound
	}

	obj, err := s.backend.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("get cover %s: %w", key, err)
	}
	return obj, nil
}

// Remove удаляет обложку. Чужие ключи игнорируются.
func (s *Storage) Remove(ctx context.Context, key string) error {
	if !IsCoverKey(key) {
		return nil
	}
	if err := s.backend.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete cover %s: %w", key, err)
	}
	return nil
}

// Bucket возвращает имя бакета.
func (s *Storage) Bucket() string {
	return s.backend.Bucket()
}

// NewKey возвращает ключ обложки для исходного имени файла.
func NewKey(fileName string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(fileName))
}

// IsCoverKey сообщает, имеет ли name вид uuid с необязательным расширением.
func IsCoverKey(name string) bool {
	ext := filepath.Ext(name)
	if _, err := uuid.Parse(strings.TrimSuffix(name, ext)); err != nil {
		return false
	}
	return !strings.ContainsAny(ext, `/\`)
}
