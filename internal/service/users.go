package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmeshcher/bookstore-system/internal/metrics"
	"github.com/mmeshcher/bookstore-system/internal/model"
	"github.com/mmeshcher/bookstore-system/internal/repository"
)

// RegisterUser регистрирует нового пользователя, если логин ещё не занят.
// Пароль сохраняется в виде bcrypt-хеша.
func (s *Service) RegisterUser(ctx context.Context, u model.User) (*model.User, error) {
	_, err := s.repo.GetUserByLogin(ctx, u.UserName)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: %s", repository.ErrUserExists, u.UserName)
	case !errors.Is(err, repository.ErrUserNotFound):
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u.ID = 0
	u.Password = string(hash)

	created, err := s.repo.CreateUser(ctx, u)
	if err != nil {
		return nil, err
	}

	metrics.UsersRegisteredTotal.Inc()
	return created, nil
}

// Authenticate проверяет логин и пароль. Неизвестный логин и неверный пароль
// неразличимы для вызывающего: оба дают (nil, false, nil).
func (s *Service) Authenticate(ctx context.Context, login, password string) (*model.User, bool, error) {
	u, err := s.repo.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			metrics.LoginAttemptsTotal.WithLabelValues("rejected").Inc()
			return nil, false, nil
		}
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, false, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("rejected").Inc()
		return nil, false, nil
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return u, true, nil
}
