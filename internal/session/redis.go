package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mmeshcher/bookstore-system/internal/model"
)

const keyPrefix = "session:"

// RedisStore хранит сессии в Redis с TTL, продлеваемым при каждом обращении.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// Connect подключается к Redis и проверяет соединение.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

// NewRedisStore создаёт хранилище сессий поверх клиента Redis.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Create сохраняет сессию и возвращает её идентификатор.
func (s *RedisStore) Create(ctx context.Context, sess model.Session) (string, error) {
	data, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}

	id := newID()
	if err := s.client.Set(ctx, keyPrefix+id, data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return id, nil
}

// Get возвращает сессию и продлевает её TTL.
func (s *RedisStore) Get(ctx context.Context, id string) (*model.Session, error) {
	data, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	if err := s.client.Expire(ctx, keyPrefix+id, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("touch session: %w", err)
	}

	var sess model.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &sess, nil
}

// Delete удаляет сессию. Удаление несуществующей сессии не считается ошибкой.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
