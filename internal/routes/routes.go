package routes

import (
	"log/slog"
	"net/http"

	"github.com/AnshRaj112/videotube-backend/internal/handlers"
	"github.com/AnshRaj112/videotube-backend/internal/middleware"
	"github.com/AnshRaj112/videotube-backend/internal/services"
	"github.com/go-chi/chi/v5"
)

type Deps struct {
	Users         *handlers.UserHandler
	AuthStore     services.UserStore // user lookups for VerifyJWT; defaults to Users.Store
	Logger        *slog.Logger
	UploadDir     string
	MaxUploadSize int64
	Metrics       http.Handler // nil leaves /metrics unmounted
}

func SetupRoutes(r chi.Router, d Deps) {
	r.Get("/health", handlers.Health)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	wrap := func(fn handlers.HandlerFunc) http.HandlerFunc { return handlers.Wrap(d.Logger, fn) }
	upload := middleware.UploadFields(d.UploadDir, d.MaxUploadSize, handlers.AvatarField, handlers.CoverImageField)
	authStore := d.AuthStore
	if authStore == nil {
		authStore = d.Users.Store
	}
	verifyJWT := middleware.VerifyJWT(d.Users.Tokens, authStore, d.Users.Denylist)

	r.Route("/api/v1/users", func(r chi.Router) {
		r.With(upload).Post("/register", wrap(d.Users.Register))
		r.Post("/login", wrap(d.Users.Login))
		r.Post("/refresh-token", wrap(d.Users.RefreshAccessToken))

		// secured routes
		r.Group(func(r chi.Router) {
			r.Use(verifyJWT)
			r.Post("/logout", wrap(d.Users.Logout))
			r.Get("/current-user", wrap(d.Users.CurrentUser))
		})
	})
}
