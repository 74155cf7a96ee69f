package handler

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/bookstore-system/internal/model"
	"github.com/mmeshcher/bookstore-system/internal/repository"
	"github.com/mmeshcher/bookstore-system/internal/service"
	"github.com/mmeshcher/bookstore-system/internal/storage"
	"github.com/mmeshcher/bookstore-system/internal/validation"
)

const maxCoverSize = 10 << 20

type searchResponse struct {
	Books       []model.Book `json:"books"`
	CurrentPage int          `json:"currentPage"`
	TotalPages  int          `json:"totalPages"`
	TotalCount  int          `json:"totalCount"`
	PageSize    int          `json:"pageSize"`
	BookName    string       `json:"bookname"`
	Publisher   string       `json:"publisher"`
	Year        string       `json:"year"`
	Sort        string       `json:"sort"`
}

// Search выполняет поиск по каталогу с фильтрами, сортировкой и пагинацией.
// Нечисловые page и pageSize считаются отсутствующими.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	qv := r.URL.Query()

	year := strings.TrimSpace(qv.Get("year"))
	if year != "" && !validation.IsYear(year) {
		writeError(w, http.StatusBadRequest, "year must be a 4-digit year")
		return
	}

	q := model.BookQuery{
		Name:      qv.Get("bookname"),
		Publisher: qv.Get("publisher"),
		Year:      year,
		Page:      atoiOrZero(qv.Get("page")),
		PageSize:  atoiOrZero(qv.Get("pageSize")),
		Sort:      qv.Get("sort"),
	}

	page, err := h.service.SearchBooks(r.Context(), q)
	if err != nil {
		h.internalError(w, "search books error", err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Books:       page.Books,
		CurrentPage: page.Page,
		TotalPages:  page.TotalPages,
		TotalCount:  page.TotalCount,
		PageSize:    page.PageSize,
		BookName:    page.Query.Name,
		Publisher:   page.Query.Publisher,
		Year:        page.Query.Year,
		Sort:        page.Query.Sort,
	})
}

// ListBooks возвращает весь каталог.
func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.ListBooks(r.Context())
	if err != nil {
		h.internalError(w, "list books error", err)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

// BookDetail возвращает книгу по идентификатору.
func (h *Handler) BookDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, msgItemNotFound)
		return
	}

	b, err := h.service.GetBook(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			writeError(w, http.StatusNotFound, msgItemNotFound)
			return
		}
		h.internalError(w, "get book error", err, zap.Int64("bookID", id))
		return
	}
	writeJSON(w, http.StatusOK, b)
}

type bookRequest struct {
	Name      string `json:"bookname" validate:"required,max=200"`
	Publisher string `json:"publisher" validate:"max=100"`
	Price     int    `json:"price" validate:"gte=0"`
	Content   string `json:"content"`
	Writer    string `json:"writer" validate:"max=100"`
	Year      string `json:"year" validate:"omitempty,year"`
}

func (b *bookRequest) bindForm(v url.Values) error {
	b.Name = strings.TrimSpace(v.Get("bookname"))
	b.Publisher = strings.TrimSpace(v.Get("publisher"))
	b.Content = v.Get("content")
	b.Writer = strings.TrimSpace(v.Get("writer"))
	b.Year = strings.TrimSpace(v.Get("year"))

	if raw := strings.TrimSpace(v.Get("price")); raw != "" {
		price, err := strconv.Atoi(raw)
		if err != nil {
			return invalidField("price", "must be an integer")
		}
		b.Price = price
	}
	return nil
}

// AddBook добавляет книгу из multipart-формы с необязательной обложкой в поле imageFile.
func (h *Handler) AddBook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCoverSize+1<<20)

	if err := r.ParseMultipartForm(maxCoverSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeError(w, http.StatusBadRequest, "malformed multipart form")
		return
	}

	var req bookRequest
	if err := h.decodeRequest(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}

	var cover *service.CoverUpload
	file, header, err := r.FormFile("imageFile")
	switch {
	case err == nil:
		defer file.Close()
		if header.Size > 0 {
			cover = &service.CoverUpload{
				FileName:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Size:        header.Size,
				Body:        file,
			}
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		writeError(w, http.StatusBadRequest, "malformed imageFile")
		return
	}

	b, err := h.service.AddBook(r.Context(), model.Book{
		Name:      req.Name,
		Publisher: req.Publisher,
		Price:     req.Price,
		Content:   req.Content,
		Writer:    req.Writer,
		Year:      req.Year,
	}, cover)
	if err != nil {
		h.internalError(w, "add book error", err)
		return
	}

	writeJSON(w, http.StatusCreated, b)
}

// Cover отдаёт сохранённую обложку книги.
func (h *Handler) Cover(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")

	obj, err := h.service.OpenCover(r.Context(), name)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			writeError(w, http.StatusNotFound, "image not found")
			return
		}
		h.internalError(w, "open cover error", err, zap.String("filename", name))
		return
	}
	defer obj.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	if obj.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, obj); err != nil {
		h.logger.Warn("write cover error", zap.Error(err), zap.String("filename", name))
	}
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
