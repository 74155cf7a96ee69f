package middleware

import (
	"compress/gzip"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
)

var compressResponse = chimw.Compress(5, "application/json", "text/plain", "text/html")

// GzipMiddleware распаковывает тела запросов с Content-Encoding: gzip
// и сжимает текстовые и JSON-ответы для клиентов, принимающих gzip.
func GzipMiddleware(next http.Handler) http.Handler {
	return decompressRequest(compressResponse(next))
}

func decompressRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Content-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		gr, err := gzip.NewReader(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid gzip body")
			return
		}
		defer gr.Close()

		r.Body = gr
		r.Header.Del("Content-Encoding")
		r.Header.Del("Content-Length")
		r.ContentLength = -1
		next.ServeHTTP(w, r)
	})
}
