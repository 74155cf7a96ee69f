package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mmeshcher/bookstore-system/internal/model"
)

// CreateUser создаёт нового пользователя. Нарушение уникальности логина возвращается как ErrUserExists.
func (r *PostgresRepository) CreateUser(ctx context.Context, u model.User) (*model.User, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (name, username, password, birthday, email, address, phone)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING custid`,
		u.Name, u.UserName, u.Password, u.Birthday, u.Email, u.Address, u.Phone,
	).Scan(&u.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, fmt.Errorf("%w: %s", ErrUserExists, u.UserName)
		}
		return nil, storageError("create user", err)
	}
	return &u, nil
}

// GetUserByLogin возвращает пользователя по логину.
func (r *PostgresRepository) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT custid, name, username, password, birthday, email, address, phone
		 FROM users
		 WHERE username = $1`,
		login,
	)

	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.UserName, &u.Password, &u.Birthday, &u.Email, &u.Address, &u.Phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, storageError("get user", err)
	}

	return &u, nil
}
