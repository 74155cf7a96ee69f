package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mmeshcher/bookstore-system/internal/middleware"
	"github.com/mmeshcher/bookstore-system/internal/model"
	"github.com/mmeshcher/bookstore-system/internal/repository"
	"github.com/mmeshcher/bookstore-system/internal/service"
)

type orderRequest struct {
	BookID   int64 `json:"bookid" validate:"gt=0"`
	Quantity int   `json:"quantity"`
}

func (req *orderRequest) bindForm(v url.Values) error {
	id, err := strconv.ParseInt(strings.TrimSpace(v.Get("bookid")), 10, 64)
	if err != nil {
		return invalidField("bookid", "must be an integer")
	}
	qty, err := strconv.Atoi(strings.TrimSpace(v.Get("quantity")))
	if err != nil {
		return invalidField("quantity", "must be an integer")
	}
	req.BookID = id
	req.Quantity = qty
	return nil
}

type orderResponse struct {
	Message string       `json:"message"`
	Order   *model.Order `json:"order"`
}

// NewOrder оформляет заказ книги от имени текущего пользователя.
func (h *Handler) NewOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req orderRequest
	if err := h.decodeRequest(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}

	o, err := h.service.PlaceOrder(r.Context(), actor, req.BookID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBookNotFound):
			writeError(w, http.StatusNotFound, msgItemNotFound)
		case errors.Is(err, service.ErrInvalidQuantity):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrNoActor):
			writeError(w, http.StatusUnauthorized, "authentication required")
		default:
			h.internalError(w, "place order error", err,
				zap.Int64("userID", actor.ID), zap.Int64("bookID", req.BookID))
		}
		return
	}

	writeJSON(w, http.StatusCreated, orderResponse{Message: "order placed", Order: o})
}

// OrderHistory возвращает заказы текущего пользователя, новые первыми.
func (h *Handler) OrderHistory(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	orders, err := h.service.OrderHistory(r.Context(), actor.ID)
	if err != nil {
		h.internalError(w, "order history error", err, zap.Int64("userID", actor.ID))
		return
	}

	writeJSON(w, http.StatusOK, orders)
}
