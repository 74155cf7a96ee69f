package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	custommiddleware "github.com/mmeshcher/bookstore-system/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware книжного магазина.
// requestTimeout > 0 ограничивает время обработки каждого запроса.
func (h *Handler) SetupRouter(requestTimeout time.Duration) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(custommiddleware.RequestLogger(h.logger))
	r.Use(chimw.Recoverer)
	r.Use(custommiddleware.Metrics)
	if requestTimeout > 0 {
		r.Use(chimw.Timeout(requestTimeout))
	}

	r.Get("/healthz", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(custommiddleware.GzipMiddleware)

		r.Get("/", h.Index)
		r.Get("/search", h.Search)
		r.Get("/images/{filename}", h.Cover)

		r.Route("/book", func(r chi.Router) {
			r.Get("/list", h.ListBooks)
			r.Get("/detail/{id}", h.BookDetail)
			r.With(h.authMiddleware.Middleware).Post("/add", h.AddBook)
		})

		r.Route("/user", func(r chi.Router) {
			r.Post("/add", h.Register)
			r.Post("/login", h.Login)
			r.Get("/logout", h.Logout)
			r.Post("/logout", h.Logout)
		})

		r.Route("/order", func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)

			r.Post("/new", h.NewOrder)
			r.Get("/history", h.OrderHistory)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	})

	return r
}
