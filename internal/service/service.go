// Package service реализует бизнес-логику книжного магазина.
package service

import (
	"context"
	"errors"
	"io"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmeshcher/bookstore-system/internal/model"
	"github.com/mmeshcher/bookstore-system/internal/storage"
)

// DefaultPageSize задаёт размер страницы поиска, если он не задан.
const DefaultPageSize = 3

// MaxPageSize ограничивает размер страницы поиска.
const MaxPageSize = 100

var (
	// ErrNoActor возвращается, если операция требует аутентифицированного пользователя.
	ErrNoActor = errors.New("authentication required")
	// ErrInvalidQuantity возвращается при количестве экземпляров меньше единицы.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error
	Ping(ctx context.Context) error

	SearchBooks(ctx context.Context, q model.BookQuery) ([]model.Book, error)
	CountBooks(ctx context.Context, q model.BookQuery) (int, error)
	ListBooks(ctx context.Context) ([]model.Book, error)
	GetBookByID(ctx context.Context, id int64) (*model.Book, error)
	CreateBook(ctx context.Context, b model.Book) (*model.Book, error)

	GetUserByLogin(ctx context.Context, login string) (*model.User, error)
	CreateUser(ctx context.Context, u model.User) (*model.User, error)

	CreateOrder(ctx context.Context, bookID int64, build func(b *model.Book) model.Order) (*model.Order, error)
	GetOrdersByUser(ctx context.Context, custID int64) ([]model.Order, error)
}

// CoverStorage описывает хранилище обложек книг.
type CoverStorage interface {
	Save(ctx context.Context, fileName string, r io.Reader, size int64, contentType string) (string, error)
	Open(ctx context.Context, key string) (*storage.Object, error)
	Remove(ctx context.Context, key string) error
}

// Service содержит бизнес-логику книжного магазина.
type Service struct {
	repo     Repository
	covers   CoverStorage
	pageSize int
	hashCost int
	now      func() time.Time
}

// NewService создаёт сервис поверх репозитория и хранилища обложек.
// pageSize <= 0 заменяется на DefaultPageSize.
func NewService(repo Repository, covers CoverStorage, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return &Service{
		repo:     repo,
		covers:   covers,
		pageSize: pageSize,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// Ping проверяет доступность хранилища данных.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *Service) today() time.Time {
	y, m, d := s.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
