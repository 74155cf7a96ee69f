package service

import (
	"context"
	"io"
	"path/filepath"
	"strconv"

	"github.com/mmeshcher/bookstore-system/internal/metrics"
	"github.com/mmeshcher/bookstore-system/internal/model"
	"github.com/mmeshcher/bookstore-system/internal/repository"
	"github.com/mmeshcher/bookstore-system/internal/storage"
)

// CoverUpload описывает загружаемую обложку книги.
type CoverUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// SearchBooks возвращает страницу каталога по фильтрам запроса и общее число совпадений.
// Пустой год заменяется текущим, номер и размер страницы приводятся к допустимым значениям,
// неизвестный ключ сортировки заменяется сортировкой по названию.
func (s *Service) SearchBooks(ctx context.Context, q model.BookQuery) (*model.BookPage, error) {
	q = s.normalizeQuery(q)

	books, err := s.repo.SearchBooks(ctx, q)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.CountBooks(ctx, q)
	if err != nil {
		return nil, err
	}

	metrics.SearchRequestsTotal.Inc()

	return &model.BookPage{
		Query:      q,
		Books:      books,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalCount: total,
		TotalPages: model.TotalPages(total, q.PageSize),
	}, nil
}

func (s *Service) normalizeQuery(q model.BookQuery) model.BookQuery {
	if q.Year == "" {
		q.Year = strconv.Itoa(s.now().Year())
	}
	if q.Page < 1 {
		q.Page = 1
	}
	switch {
	case q.PageSize <= 0:
		q.PageSize = s.pageSize
	case q.PageSize > MaxPageSize:
		q.PageSize = MaxPageSize
	}
	q.Sort = repository.SortKey(q.Sort)
	return q
}

// ListBooks возвращает весь каталог.
func (s *Service) ListBooks(ctx context.Context) ([]model.Book, error) {
	return s.repo.ListBooks(ctx)
}

// GetBook возвращает книгу по идентификатору.
func (s *Service) GetBook(ctx context.Context, id int64) (*model.Book, error) {
	return s.repo.GetBookByID(ctx, id)
}

// AddBook добавляет книгу в каталог. Пустой год заменяется текущим. Если передана обложка,
// она сохраняется под именем uuid + расширение исходного файла и удаляется,
// если книгу сохранить не удалось.
func (s *Service) AddBook(ctx context.Context, b model.Book, cover *CoverUpload) (*model.Book, error) {
	if b.Year == "" {
		b.Year = strconv.Itoa(s.now().Year())
	}
	b.OriginalFileName = ""
	b.StoredFileName = ""

	if cover != nil {
		key, err := s.covers.Save(ctx, cover.FileName, cover.Body, cover.Size, cover.ContentType)
		if err != nil {
			return nil, err
		}
		b.OriginalFileName = filepath.Base(cover.FileName)
		b.StoredFileName = key
	}

	created, err := s.repo.CreateBook(ctx, b)
	if err != nil {
		if b.StoredFileName != "" {
			_ = s.covers.Remove(context.WithoutCancel(ctx), b.StoredFileName)
		}
		return nil, err
	}

	return created, nil
}

// OpenCover открывает сохранённую обложку. Имена, которые не могли быть выданы AddBook,
// дают storage.ErrObjectNotFound.
func (s *Service) OpenCover(ctx context.Context, name string) (*storage.Object, error) {
	return s.covers.Open(ctx, name)
}
