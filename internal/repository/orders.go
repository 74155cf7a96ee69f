package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/bookstore-system/internal/model"
)

// CreateOrder в одной транзакции читает книгу, строит заказ функцией build и сохраняет его.
// Строка книги блокируется FOR SHARE до фиксации, поэтому зафиксированная цена
// соответствует состоянию книги на момент вставки.
func (r *PostgresRepository) CreateOrder(ctx context.Context, bookID int64, build func(b *model.Book) model.Order) (*model.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, storageError("begin tx", err)
	}
	defer tx.Rollback(ctx)

	b, err := scanBook(tx.QueryRow(ctx,
		`SELECT bookid, bookname, publisher, price, content, writer, year, original_file_name, stored_file_name
		 FROM book
		 WHERE bookid = $1
		 FOR SHARE`,
		bookID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, storageError("select book", err)
	}

	o := build(&b)

	err = tx.QueryRow(ctx,
		`INSERT INTO orders (custid, bookid, saleprice, orderdate, quantity)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING orderid`,
		o.CustID, o.BookID, o.SalePrice, o.OrderDate, o.Quantity,
	).Scan(&o.ID)
	if err != nil {
		return nil, storageError("insert order", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storageError("commit tx", err)
	}

	return &o, nil
}

// GetOrdersByUser возвращает заказы пользователя вместе с названием книги, новые первыми.
func (r *PostgresRepository) GetOrdersByUser(ctx context.Context, custID int64) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT o.orderid, o.custid, o.bookid, COALESCE(b.bookname, ''), o.saleprice, o.orderdate, o.quantity
		 FROM orders o
		 LEFT JOIN book b ON b.bookid = o.bookid
		 WHERE o.custid = $1
		 ORDER BY o.orderdate DESC, o.orderid DESC`,
		custID,
	)
	if err != nil {
		return nil, storageError("select orders", err)
	}
	defer rows.Close()

	orders := make([]model.Order, 0)
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.CustID, &o.BookID, &o.BookName, &o.SalePrice, &o.OrderDate, &o.Quantity); err != nil {
			return nil, storageError("scan order", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError("select orders", err)
	}

	return orders, nil
}
