package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/AnshRaj112/videotube-backend/internal/config"
	"github.com/AnshRaj112/videotube-backend/internal/database"
	"github.com/AnshRaj112/videotube-backend/internal/handlers"
	"github.com/AnshRaj112/videotube-backend/internal/logging"
	"github.com/AnshRaj112/videotube-backend/internal/metrics"
	"github.com/AnshRaj112/videotube-backend/internal/middleware"
	"github.com/AnshRaj112/videotube-backend/internal/routes"
	"github.com/AnshRaj112/videotube-backend/internal/services"
	"github.com/AnshRaj112/videotube-backend/pkg/utils"
)

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()

	logger := logging.NewLogger(cfg.LogLevel, "videotube-backend", cfg.Environment)
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Info("No .env file found")
	}

	if err := cfg.Validate(); err != nil {
		fatal(logger, "invalid configuration", err)
	}

	store, closeStore, err := openUserStore(cfg, logger)
	if err != nil {
		fatal(logger, "failed to open user store", err)
	}
	defer closeStore()

	logger.Info("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		// token revocation and shared rate limits are skipped without Redis
		logger.Warn("Redis unavailable", slog.Any("error", err))
	} else {
		logger.Info("Connected to Redis")
		defer database.DisconnectRedis()
	}

	media, err := newMediaUploader(cfg)
	if err != nil {
		fatal(logger, "failed to initialize media uploader", err)
	}
	logger.Info("Media uploader initialized", slog.String("backend", cfg.MediaBackend))

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.Register(registry)

	users := &handlers.UserHandler{
		Store:  store,
		Media:  media,
		Hasher: utils.NewArgon2Hasher(utils.DefaultArgon2Params),
		Tokens: services.NewTokenService(services.TokenConfig{
			AccessSecret:  cfg.AccessTokenSecret,
			AccessTTL:     cfg.AccessTokenTTL,
			RefreshSecret: cfg.RefreshTokenSecret,
			RefreshTTL:    cfg.RefreshTokenTTL,
			Issuer:        cfg.TokenIssuer,
		}),
		Denylist: services.NewTokenDenylist(database.RedisClient),
		Cookies: handlers.CookieOptions{
			Domain:   cfg.CookieDomain,
			SameSite: cfg.CookieSameSite,
		},
		Logger: logger,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Production: SecurityHeaders → HostCheck → GlobalRateLimit → LoginRateLimit
	// Elsewhere: shared Redis counter only
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity(cfg.AllowedHost) {
			r.Use(mw)
		}
		logger.Info("Production security enabled")
	} else {
		r.Use(middleware.RedisRateLimit(database.RedisClient, cfg.LoginRateLimit, cfg.LoginRateWindow))
	}

	routes.SetupRoutes(r, routes.Deps{
		Users:         users,
		AuthStore:     services.NewCachedUserStore(store, database.RedisClient, cfg.UserCacheTTL),
		Logger:        logger,
		UploadDir:     cfg.UploadDir,
		MaxUploadSize: cfg.MaxUploadSize,
		Metrics:       metrics.Handler(registry),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("videotube backend running", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(logger, "server failed", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
	}
}

// openUserStore connects the configured backend and returns it with its
// disconnect function.
func openUserStore(cfg *config.Config, logger *slog.Logger) (services.UserStore, func(), error) {
	if cfg.UserStore == "postgres" {
		logger.Info("Connecting to PostgreSQL...")
		if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
			return nil, nil, err
		}
		logger.Info("Connected to PostgreSQL")
		return services.NewPostgresUserStore(database.PostgresDB), func() { database.DisconnectPostgres() }, nil
	}

	logger.Info("Connecting to MongoDB...")
	if err := database.Connect(cfg.MongoURI, cfg.MongoDatabase); err != nil {
		logger.Error("MongoDB connection failed; check the URI, credentials and network access list")
		return nil, nil, err
	}
	logger.Info("Connected to MongoDB", slog.String("database", cfg.MongoDatabase))

	col := database.DB.Collection(database.UsersCollection)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.EnsureUserIndexes(ctx, col); err != nil {
		database.Disconnect()
		return nil, nil, err
	}
	logger.Info("MongoDB user indexes ensured")

	return services.NewMongoUserStore(col), func() { database.Disconnect() }, nil
}

func newMediaUploader(cfg *config.Config) (services.MediaUploader, error) {
	if cfg.MediaBackend == "minio" {
		svc, err := services.NewMinioService(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := svc.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return svc, nil
	}

	if cfg.CloudinaryName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, errors.New("cloudinary credentials not set")
	}
	svc, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, slog.Any("error", err))
	os.Exit(1)
}
