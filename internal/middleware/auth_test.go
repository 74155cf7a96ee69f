package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/bookstore-system/internal/model"
	"github.com/mmeshcher/bookstore-system/internal/session"
)

func newTestAuth(t *testing.T) (*AuthMiddleware, *session.MemoryStore) {
	t.Helper()
	store := session.NewMemoryStore(time.Minute)
	return NewAuthMiddleware("test-secret", store, nil), store
}

func loginCookie(t *testing.T, a *AuthMiddleware, u *model.User) *http.Cookie {
	t.Helper()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/user/login", nil)
	require.NoError(t, a.StartSession(w, r, u))

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies, "no cookies set by StartSession")
	return cookies[0]
}

func TestAuthMiddleware_WithValidSession(t *testing.T) {
	a, _ := newTestAuth(t)
	cookie := loginCookie(t, a, &model.User{ID: 42, UserName: "kim", Name: "Kim"})

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		actor, ok := ActorFromContext(r.Context())
		require.True(t, ok, "actor not in context")
		assert.Equal(t, int64(42), actor.ID)
		assert.Equal(t, "kim", actor.UserName)
	})

	r := httptest.NewRequest(http.MethodGet, "/order/history", nil)
	r.AddCookie(cookie)
	a.Middleware(next).ServeHTTP(httptest.NewRecorder(), r)

	assert.True(t, nextCalled, "next handler was not called")
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	a, _ := newTestAuth(t)
	valid := loginCookie(t, a, &model.User{ID: 42})

	other := NewAuthMiddleware("other-secret", session.NewMemoryStore(time.Minute), nil)
	foreign := loginCookie(t, other, &model.User{ID: 42})

	tests := []struct {
		name   string
		cookie *http.Cookie
	}{
		{name: "no cookie"},
		{name: "tampered signature", cookie: &http.Cookie{Name: SessionCookieName, Value: valid.Value + "00"}},
		{name: "no signature", cookie: &http.Cookie{Name: SessionCookieName, Value: "plain-id"}},
		{name: "signed with another key", cookie: foreign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatalf("next handler should not be called")
			})

			r := httptest.NewRequest(http.MethodGet, "/order/history", nil)
			if tt.cookie != nil {
				r.AddCookie(tt.cookie)
			}
			w := httptest.NewRecorder()
			a.Middleware(next).ServeHTTP(w, r)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"error":"authentication required"}`, w.Body.String())
		})
	}
}

func TestEndSession_InvalidatesSession(t *testing.T) {
	a, store := newTestAuth(t)
	cookie := loginCookie(t, a, &model.User{ID: 7})
	require.Equal(t, 1, store.Len())

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/user/logout", nil)
	r.AddCookie(cookie)
	require.NoError(t, a.EndSession(w, r))

	assert.Equal(t, 0, store.Len())

	cleared := w.Result().Cookies()
	require.NotEmpty(t, cleared)
	assert.Equal(t, SessionCookieName, cleared[0].Name)
	assert.True(t, cleared[0].MaxAge < 0)

	r = httptest.NewRequest(http.MethodGet, "/order/history", nil)
	r.AddCookie(cookie)
	w = httptest.NewRecorder()
	a.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatalf("old cookie must not authenticate after logout")
	})).ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEndSession_WithoutSession(t *testing.T) {
	a, _ := newTestAuth(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/user/logout", nil)
	assert.NoError(t, a.EndSession(w, r))
}

func TestStartSession_ReplacesPreviousSession(t *testing.T) {
	a, store := newTestAuth(t)
	first := loginCookie(t, a, &model.User{ID: 1})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/user/login", nil)
	r.AddCookie(first)
	require.NoError(t, a.StartSession(w, r, &model.User{ID: 2}))

	assert.Equal(t, 1, store.Len())
}

func TestActorFromContext_Empty(t *testing.T) {
	_, ok := ActorFromContext(context.Background())
	assert.False(t, ok)
}
