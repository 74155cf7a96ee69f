// Package handler содержит HTTP-обработчики книжного магазина.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/bookstore-system/internal/middleware"
	"github.com/mmeshcher/bookstore-system/internal/model"
	"github.com/mmeshcher/bookstore-system/internal/service"
	"github.com/mmeshcher/bookstore-system/internal/storage"
	"github.com/mmeshcher/bookstore-system/internal/validation"
)

const (
	msgInternal     = "internal server error"
	msgItemNotFound = "item does not exist"
	msgBodyTooLarge = "request body too large"
)

// maxRequestBody ограничивает тело JSON- и form-запросов.
const maxRequestBody = 1 << 20

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	Ping(ctx context.Context) error

	SearchBooks(ctx context.Context, q model.BookQuery) (*model.BookPage, error)
	ListBooks(ctx context.Context) ([]model.Book, error)
	GetBook(ctx context.Context, id int64) (*model.Book, error)
	AddBook(ctx context.Context, b model.Book, cover *service.CoverUpload) (*model.Book, error)
	OpenCover(ctx context.Context, name string) (*storage.Object, error)

	RegisterUser(ctx context.Context, u model.User) (*model.User, error)
	Authenticate(ctx context.Context, login, password string) (*model.User, bool, error)

	PlaceOrder(ctx context.Context, actor *model.User, bookID int64, quantity int) (*model.Order, error)
	OrderHistory(ctx context.Context, custID int64) ([]model.Order, error)
}

// Handler реализует HTTP-обработчики книжного магазина.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
	validate       *validation.Validator
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
		validate:       validation.New(),
	}
}

// Index перенаправляет на поиск с пустыми фильтрами.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/search?bookname=&publisher=&page=1", http.StatusFound)
}

// Health сообщает, отвечает ли база данных.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.service.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type messageResponse struct {
	Message string `json:"message"`
}

// formBinder заполняет запрос из полей формы.
type formBinder interface {
	bindForm(v url.Values) error
}

// decodeRequest разбирает тело запроса как JSON при Content-Type application/json
// и как форму в остальных случаях, затем проверяет результат валидатором.
// Тело длиннее maxRequestBody даёт *http.MaxBytesError.
func (h *Handler) decodeRequest(w http.ResponseWriter, r *http.Request, dst formBinder) error {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var tooLarge *http.MaxBytesError
	if mt == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			if errors.As(err, &tooLarge) {
				return err
			}
			return fmt.Errorf("%w: malformed JSON body", validation.ErrInvalidInput)
		}
	} else {
		if err := r.ParseForm(); err != nil {
			if errors.As(err, &tooLarge) {
				return err
			}
			return fmt.Errorf("%w: malformed form body", validation.ErrInvalidInput)
		}
		if err := dst.bindForm(r.Form); err != nil {
			return err
		}
	}

	return h.validate.Struct(dst)
}

func invalidField(field, reason string) error {
	return fmt.Errorf("%w: %s %s", validation.ErrInvalidInput, field, reason)
}

func (h *Handler) internalError(w http.ResponseWriter, msg string, err error, fields ...zap.Field) {
	h.logger.Error(msg, append(fields, zap.Error(err))...)
	writeError(w, http.StatusInternalServerError, msgInternal)
}

func badRequest(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
		return
	}
	if errors.Is(err, validation.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeError(w, http.StatusBadRequest, http.StatusText(http.StatusBadRequest))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
