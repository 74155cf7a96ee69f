// Package session хранит сессии пользователей книжного магазина.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mmeshcher/bookstore-system/internal/model"
)

// ErrNotFound возвращается, если сессия отсутствует или истекла.
var ErrNotFound = errors.New("session not found")

// Store описывает хранилище сессий.
type Store interface {
	Create(ctx context.Context, s model.Session) (string, error)
	Get(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
}

// DefaultTTL задаёт время жизни неактивной сессии.
const DefaultTTL = 30 * time.Minute

func newID() string {
	return uuid.NewString()
}
