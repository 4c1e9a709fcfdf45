package http

import (
	"bufio"
	"log/slog"
	"net"
	"net/http"
	"time"
)

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrader take over the connection through the recorder.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return http.NewResponseController(r.ResponseWriter).Hijack()
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.statusCode,
			"duration", time.Since(start),
		)
	})
}

func (h *Handler) requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := h.currentSession(r.Context())
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if !sess.Authenticated {
			if err := h.flash(r.Context(), "Please log in first"); err != nil {
				h.fail(w, r, err)
				return
			}
			redirect(w, r, "/login")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return h.requireLogin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := h.currentSession(r.Context())
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if !h.svc.Credentials.IsAdmin(sess.Username) {
			h.render(w, r, http.StatusForbidden, "error", view{Title: "Administrator access required"})
			return
		}
		next.ServeHTTP(w, r)
	}))
}
