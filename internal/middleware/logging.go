package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/AnshRaj112/videotube-backend/internal/metrics"
	"github.com/AnshRaj112/videotube-backend/pkg/clientip"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestLogger writes one log line per request and records HTTP metrics.
// Metrics are labelled with the chi route pattern to keep cardinality bounded.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}
			code := strconv.Itoa(status)
			metrics.RequestCount.WithLabelValues(r.Method, route, code).Inc()
			metrics.RequestDuration.WithLabelValues(r.Method, route, code).Observe(elapsed.Seconds())

			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(r.Context(), level, "request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Duration("latency", elapsed),
				slog.Int("bytes", ww.BytesWritten()),
				slog.String("ip", clientip.RealClientIP(r)),
				slog.String("request_id", chimw.GetReqID(r.Context())),
			)
		})
	}
}
