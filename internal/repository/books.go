package repository

import (
	"context"
	"errors"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/bookstore-system/internal/model"
)

// DefaultSort задаёт ключ сортировки по умолчанию.
const DefaultSort = "bookname"

var bookColumns = []string{
	"bookid",
	"bookname",
	"publisher",
	"price",
	"content",
	"writer",
	"year",
	"original_file_name",
	"stored_file_name",
}

var sortColumns = map[string]string{
	"bookid":    "bookid",
	"bookname":  "bookname",
	"publisher": "publisher",
	"price":     "price",
	"writer":    "writer",
	"year":      "year",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SortKey возвращает допустимый ключ сортировки; неизвестные значения заменяются на DefaultSort.
func SortKey(key string) string {
	if _, ok := sortColumns[key]; ok {
		return key
	}
	return DefaultSort
}

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func applyBookFilter(b sq.SelectBuilder, q model.BookQuery) sq.SelectBuilder {
	if q.Name != "" {
		b = b.Where(sq.ILike{"bookname": containsPattern(q.Name)})
	}
	if q.Publisher != "" {
		b = b.Where(sq.ILike{"publisher": containsPattern(q.Publisher)})
	}
	if q.Year != "" {
		b = b.Where(sq.Eq{"year": q.Year})
	}
	return b
}

func buildSearchQuery(q model.BookQuery) (string, []any, error) {
	b := applyBookFilter(psql.Select(bookColumns...).From("book"), q)

	limit := q.PageSize
	if limit < 1 {
		limit = 1
	}
	offset := q.Offset()
	if offset < 0 {
		offset = 0
	}

	return b.
		OrderBy(sortColumns[SortKey(q.Sort)]+" ASC", "bookid ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
}

func buildCountQuery(q model.BookQuery) (string, []any, error) {
	return applyBookFilter(psql.Select("COUNT(*)").From("book"), q).ToSql()
}

func scanBook(row scanner) (model.Book, error) {
	var b model.Book
	err := row.Scan(
		&b.ID,
		&b.Name,
		&b.Publisher,
		&b.Price,
		&b.Content,
		&b.Writer,
		&b.Year,
		&b.OriginalFileName,
		&b.StoredFileName,
	)
	return b, err
}

func (r *PostgresRepository) queryBooks(ctx context.Context, op, query string, args ...any) ([]model.Book, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storageError(op, err)
	}
	defer rows.Close()

	books := make([]model.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, storageError("scan book", err)
		}
		books = append(books, b)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError(op, err)
	}

	return books, nil
}

// SearchBooks возвращает страницу книг, удовлетворяющих фильтрам запроса.
func (r *PostgresRepository) SearchBooks(ctx context.Context, q model.BookQuery) ([]model.Book, error) {
	query, args, err := buildSearchQuery(q)
	if err != nil {
		return nil, storageError("build search query", err)
	}
	return r.queryBooks(ctx, "search books", query, args...)
}

// CountBooks возвращает количество книг, удовлетворяющих тем же фильтрам, без пагинации.
func (r *PostgresRepository) CountBooks(ctx context.Context, q model.BookQuery) (int, error) {
	query, args, err := buildCountQuery(q)
	if err != nil {
		return 0, storageError("build count query", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, storageError("count books", err)
	}
	return total, nil
}

// ListBooks возвращает весь каталог, упорядоченный по идентификатору.
func (r *PostgresRepository) ListBooks(ctx context.Context) ([]model.Book, error) {
	query, args, err := psql.Select(bookColumns...).From("book").OrderBy("bookid ASC").ToSql()
	if err != nil {
		return nil, storageError("build list query", err)
	}
	return r.queryBooks(ctx, "list books", query, args...)
}

// GetBookByID возвращает книгу по идентификатору.
func (r *PostgresRepository) GetBookByID(ctx context.Context, id int64) (*model.Book, error) {
	query, args, err := psql.Select(bookColumns...).From("book").Where(sq.Eq{"bookid": id}).ToSql()
	if err != nil {
		return nil, storageError("build get book query", err)
	}

	b, err := scanBook(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, storageError("get book", err)
	}
	return &b, nil
}

// CreateBook сохраняет новую книгу и возвращает её с присвоенным идентификатором.
func (r *PostgresRepository) CreateBook(ctx context.Context, b model.Book) (*model.Book, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO book (bookname, publisher, price, content, writer, year, original_file_name, stored_file_name)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING bookid`,
		b.Name, b.Publisher, b.Price, b.Content, b.Writer, b.Year, b.OriginalFileName, b.StoredFileName,
	).Scan(&b.ID)
	if err != nil {
		return nil, storageError("create book", err)
	}
	return &b, nil
}
