// Package middleware содержит HTTP middleware книжного магазина.
package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/bookstore-system/internal/model"
	"github.com/mmeshcher/bookstore-system/internal/session"
)

type contextKey string

const sessionKey contextKey = "session"

// SessionCookieName задаёт имя cookie с подписанным идентификатором сессии.
const SessionCookieName = "bookstore_session"

// AuthMiddleware связывает запрос с сессией пользователя по подписанному cookie.
// Содержимое сессии хранится на сервере, в cookie только её идентификатор.
type AuthMiddleware struct {
	secretKey []byte
	store     session.Store
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthMiddleware создаёт AuthMiddleware. Пустой secret заменяется случайным ключом,
// тогда сессии не переживают перезапуск процесса.
func NewAuthMiddleware(secret string, store session.Store, logger *zap.Logger) *AuthMiddleware {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic(fmt.Sprintf("generate session key: %v", err))
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AuthMiddleware{
		secretKey: key,
		store:     store,
		logger:    logger,
		now:       time.Now,
	}
}

// Middleware пропускает запрос дальше только при наличии действующей сессии
// и кладёт её в контекст. Иначе отвечает 401.
func (a *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := a.loadSession(r)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			a.logger.Error("load session failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey, s)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// StartSession создаёт сессию для пользователя и выставляет cookie.
// Предыдущая сессия запроса, если она была, уничтожается.
func (a *AuthMiddleware) StartSession(w http.ResponseWriter, r *http.Request, u *model.User) error {
	if id, ok := a.sessionID(r); ok {
		if err := a.store.Delete(r.Context(), id); err != nil {
			a.logger.Warn("drop previous session failed", zap.Error(err))
		}
	}

	id, err := a.store.Create(r.Context(), model.NewSession(u, a.now()))
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    a.sign(id),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// EndSession уничтожает сессию запроса и удаляет cookie. Запрос без сессии не считается ошибкой.
func (a *AuthMiddleware) EndSession(w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	id, ok := a.sessionID(r)
	if !ok {
		return nil
	}
	if err := a.store.Delete(r.Context(), id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (a *AuthMiddleware) loadSession(r *http.Request) (*model.Session, error) {
	id, ok := a.sessionID(r)
	if !ok {
		return nil, session.ErrNotFound
	}
	return a.store.Get(r.Context(), id)
}

func (a *AuthMiddleware) sessionID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return "", false
	}
	return a.verify(cookie.Value)
}

func (a *AuthMiddleware) sign(id string) string {
	return id + "." + a.signature(id)
}

func (a *AuthMiddleware) verify(value string) (string, bool) {
	id, sig, ok := strings.Cut(value, ".")
	if !ok || id == "" {
		return "", false
	}
	if !hmac.Equal([]byte(sig), []byte(a.signature(id))) {
		return "", false
	}
	return id, true
}

func (a *AuthMiddleware) signature(id string) string {
	mac := hmac.New(sha256.New, a.secretKey)
	mac.Write([]byte(id))
	return hex.EncodeToString(mac.Sum(nil))
}

// SessionFromContext извлекает сессию из контекста запроса.
func SessionFromContext(ctx context.Context) (*model.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*model.Session)
	return s, ok && s != nil
}

// ActorFromContext возвращает пользователя, от имени которого выполняется запрос.
func ActorFromContext(ctx context.Context) (*model.User, bool) {
	s, ok := SessionFromContext(ctx)
	if !ok {
		return nil, false
	}
	return s.Actor(), true
}

// WithSession кладёт сессию в контекст. Используется в тестах обработчиков.
func WithSession(ctx context.Context, s *model.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}
