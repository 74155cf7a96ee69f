package session

import (
	"context"
	"sync"
	"time"

	"github.com/mmeshcher/bookstore-system/internal/model"
)

type memoryEntry struct {
	session   model.Session
	expiresAt time.Time
}

// MemoryStore хранит сессии в памяти процесса. Подходит для одного экземпляра сервиса.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore создаёт хранилище сессий в памяти.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Create сохраняет сессию и возвращает её идентификатор.
func (m *MemoryStore) Create(_ context.Context, s model.Session) (string, error) {
	id := newID()

	m.mu.Lock()
	m.entries[id] = memoryEntry{session: s, expiresAt: m.now().Add(m.ttl)}
	m.mu.Unlock()

	return id, nil
}

// Get возвращает сессию и продлевает срок её жизни.
func (m *MemoryStore) Get(_ context.Context, id string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	now := m.now()
	if !ok || !now.Before(e.expiresAt) {
		delete(m.entries, id)
		return nil, ErrNotFound
	}

	e.expiresAt = now.Add(m.ttl)
	m.entries[id] = e

	s := e.session
	return &s, nil
}

// Delete удаляет сессию.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()
	return nil
}

// Len возвращает количество хранимых сессий, включая ещё не удалённые истёкшие.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// StartSweeper запускает фоновое удаление истёкших сессий до отмены контекста.
func (m *MemoryStore) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *MemoryStore) sweep() {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	for id, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, id)
		}
	}
}
