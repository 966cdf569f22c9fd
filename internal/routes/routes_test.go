package routes

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AnshRaj112/videotube-backend/internal/handlers"
	"github.com/AnshRaj112/videotube-backend/internal/metrics"
	"github.com/AnshRaj112/videotube-backend/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestSetupRoutes(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics.Register(registry)

	r := chi.NewRouter()
	SetupRoutes(r, Deps{
		Users: &handlers.UserHandler{
			Tokens: services.NewTokenService(services.TokenConfig{AccessSecret: "a", AccessTTL: time.Hour, RefreshSecret: "r", RefreshTTL: time.Hour}),
			Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		},
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		UploadDir:     t.TempDir(),
		MaxUploadSize: 1 << 20,
		Metrics:       metrics.Handler(registry),
	})

	cases := []struct {
		method, path string
		status       int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodPost, "/api/v1/users/login", http.StatusBadRequest},
		{http.MethodPost, "/api/v1/users/register", http.StatusBadRequest},
		{http.MethodPost, "/api/v1/users/refresh-token", http.StatusUnauthorized},
		{http.MethodPost, "/api/v1/users/logout", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/users/current-user", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/users/login", http.StatusMethodNotAllowed},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}
