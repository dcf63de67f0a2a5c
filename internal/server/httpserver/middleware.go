package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/dashboard/internal/common"
	"github.com/dmitrijs2005/dashboard/internal/server/auth"
)

type ctxKey string

const sessionKey ctxKey = "session"

// SessionFromContext returns the session set by requireSession.
func SessionFromContext(ctx context.Context) (*auth.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*auth.Session)
	return s, ok
}

// requireSession sends visitors without a valid session cookie to the
// sign-in page.
func (s *HTTPServer) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(common.SessionCookieName)
		if err != nil || cookie.Value == "" {
			http.Redirect(w, r, common.LoginPath, http.StatusFound)
			return
		}

		session, err := s.sessions.Parse(cookie.Value)
		if err != nil {
			s.logger.Debug(r.Context(), "rejected session", "error", err)
			s.clearSessionCookie(w)
			http.Redirect(w, r, common.LoginPath, http.StatusFound)
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *HTTPServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Info(r.Context(), "Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
