package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/bookstore-system/internal/model"
	"github.com/mmeshcher/bookstore-system/internal/repository"
)

const (
	msgUserExists     = "username is already taken"
	msgBadCredentials = "invalid username or password"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	UserName string `json:"userName" validate:"required,max=50"`
	Password string `json:"password" validate:"required,bytesmax=72"`
	Birthday string `json:"birthday" validate:"omitempty,datetime=2006-01-02"`
	Email    string `json:"email" validate:"omitempty,email"`
	Address  string `json:"address" validate:"max=200"`
	Phone    string `json:"phone" validate:"max=30"`
}

func (req *registerRequest) bindForm(v url.Values) error {
	req.Name = strings.TrimSpace(v.Get("name"))
	req.UserName = strings.TrimSpace(v.Get("userName"))
	req.Password = v.Get("password")
	req.Birthday = strings.TrimSpace(v.Get("birthday"))
	req.Email = strings.TrimSpace(v.Get("email"))
	req.Address = strings.TrimSpace(v.Get("address"))
	req.Phone = strings.TrimSpace(v.Get("phone"))
	return nil
}

func (req *registerRequest) user() model.User {
	u := model.User{
		Name:     req.Name,
		UserName: req.UserName,
		Password: req.Password,
		Email:    req.Email,
		Address:  req.Address,
		Phone:    req.Phone,
	}
	if req.Birthday != "" {
		if d, err := time.Parse(time.DateOnly, req.Birthday); err == nil {
			u.Birthday = &d
		}
	}
	return u
}

// Register регистрирует нового пользователя.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := h.decodeRequest(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}

	u, err := h.service.RegisterUser(r.Context(), req.user())
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			writeError(w, http.StatusConflict, msgUserExists)
			return
		}
		h.internalError(w, "register user error", err, zap.String("userName", req.UserName))
		return
	}

	writeJSON(w, http.StatusCreated, u)
}

type loginRequest struct {
	UserName string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (req *loginRequest) bindForm(v url.Values) error {
	req.UserName = strings.TrimSpace(v.Get("username"))
	req.Password = v.Get("password")
	return nil
}

type loginResponse struct {
	Message string      `json:"message"`
	User    *model.User `json:"user"`
}

// Login проверяет учётные данные и открывает сессию.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.decodeRequest(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}

	u, ok, err := h.service.Authenticate(r.Context(), req.UserName, req.Password)
	if err != nil {
		h.internalError(w, "login user error", err)
		return
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, msgBadCredentials)
		return
	}

	if err := h.authMiddleware.StartSession(w, r, u); err != nil {
		h.internalError(w, "start session error", err, zap.Int64("userID", u.ID))
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Message: "login successful", User: u})
}

// Logout закрывает сессию запроса.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authMiddleware.EndSession(w, r); err != nil {
		h.internalError(w, "end session error", err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "logged out"})
}
