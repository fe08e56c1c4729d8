package middleware

import (
	"net/http"
	"time"

	"github.com/atinyakov/GolfClubAuctions/internal/session"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// WithRequestLogging logs method, path, status, size and duration of every
// request, plus any sign in or sign out that happens during it. Server errors
// are logged at error level.
func WithRequestLogging(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			if h := session.FromContext(r.Context()); h != nil {
				initial := true
				unsubscribe := h.Subscribe(func(s session.Session) {
					if initial {
						initial = false
						return
					}
					log.Info("session changed",
						zap.String("state", s.State.String()),
						zap.String("user_id", s.UserID()),
					)
				})
				defer unsubscribe()
			}
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("uri", r.RequestURI),
				zap.Int("status", status),
				zap.Int("size", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			}
			if s := SessionFrom(r); s.SignedIn() {
				fields = append(fields, zap.String("user_id", s.UserID()))
			}
			if status >= http.StatusInternalServerError {
				log.Error("request failed", fields...)
				return
			}
			log.Info("request", fields...)
		})
	}
}
