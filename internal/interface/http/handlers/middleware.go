package handlers

import (
	"net/http"
	"path"
	"strconv"
	"time"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Wrap applies middlewares to h; the first one ends up outermost.
func Wrap(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// ══════════════════════════════════════════════════════════════════════════════
// API RESPONSES
// ══════════════════════════════════════════════════════════════════════════════

// APIHeaders locks JSON responses down and forbids caching them. Rosters
// change with every reload, and the dataset document has its own ETag.
func APIHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// LimitBody rejects request bodies larger than maxBytes with 413.
func LimitBody(maxBytes int64) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				_, _ = w.Write([]byte(`{"success":false,"error":{"code":"payload_too_large","message":"request body too large"}}` + "\n"))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// STATIC UI
// ══════════════════════════════════════════════════════════════════════════════

// StaticAssets sets Cache-Control for the UI shell. HTML pages are always
// revalidated so a redeployed index.html shows up at once; scripts, styles and
// images may be cached for maxAge.
func StaticAssets(maxAge time.Duration) Middleware {
	assets := "public, max-age=" + formatSeconds(maxAge)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPage(r.URL.Path) {
				w.Header().Set("Cache-Control", "no-cache")
			} else {
				w.Header().Set("Cache-Control", assets)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isPage(p string) bool {
	if p == "" || p[len(p)-1] == '/' {
		return true
	}
	ext := path.Ext(p)
	return ext == ".html" || ext == ".htm"
}

// formatSeconds renders d as whole, non-negative seconds.
func formatSeconds(d time.Duration) string {
	return strconv.FormatInt(max(int64(d/time.Second), 0), 10)
}
