package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultTokenSecret = "change-me-in-production"

type Config struct {
	Environment string // ENV: production, development, etc.
	Port        string
	LogLevel    string

	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL(s)
	AllowedHost    string   // production Host header check; empty disables it

	MongoURI      string
	MongoDatabase string
	PostgresURI   string
	RedisURI      string
	UserStore     string // "mongo" or "postgres"
	UserCacheTTL  time.Duration

	AccessTokenSecret  string
	AccessTokenTTL     time.Duration
	RefreshTokenSecret string
	RefreshTokenTTL    time.Duration
	TokenIssuer        string

	CookieDomain   string
	CookieSameSite http.SameSite

	UploadDir     string
	MaxUploadSize int64

	MediaBackend        string // "cloudinary" or "minio"
	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string
	MinioEndpoint       string
	MinioAccessKey      string
	MinioSecretKey      string
	MinioBucket         string
	MinioUseSSL         bool

	LoginRateLimit  int
	LoginRateWindow time.Duration
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", "http://localhost:3000"), getEnv("FRONTEND_URL_2", "")} {
			u = strings.TrimSpace(u)
			if u != "" && !containsOrigin(allowedOrigins, u) {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}

	return &Config{
		Environment:    env,
		Port:           getEnv("PORT", "8000"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: allowedOrigins,
		AllowedHost:    strings.TrimSpace(getEnv("ALLOWED_HOST", "")),

		MongoURI:      getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017")),
		MongoDatabase: getEnv("MONGODB_DATABASE", "videotube"),
		PostgresURI:   getEnv("POSTGRES_URI", "postgres://localhost:5432/videotube?sslmode=disable"),
		RedisURI:      getEnv("REDIS_URI", "redis://localhost:6379/0"),
		UserStore:     strings.ToLower(getEnv("USER_STORE", "mongo")),
		UserCacheTTL:  getEnvDuration("USER_CACHE_TTL", 5*time.Minute),

		AccessTokenSecret:  getEnv("ACCESS_TOKEN_SECRET", defaultTokenSecret),
		AccessTokenTTL:     getEnvDuration("ACCESS_TOKEN_EXPIRY", 24*time.Hour),
		RefreshTokenSecret: getEnv("REFRESH_TOKEN_SECRET", defaultTokenSecret+"-refresh"),
		RefreshTokenTTL:    getEnvDuration("REFRESH_TOKEN_EXPIRY", 10*24*time.Hour),
		TokenIssuer:        getEnv("TOKEN_ISSUER", "videotube"),

		CookieDomain:   getEnv("COOKIE_DOMAIN", ""),
		CookieSameSite: parseSameSite(getEnv("COOKIE_SAME_SITE", "lax")),

		UploadDir:     getEnv("UPLOAD_DIR", "./public/temp"),
		MaxUploadSize: int64(getEnvInt("MAX_UPLOAD_SIZE", 10<<20)),

		MediaBackend:        strings.ToLower(getEnv("MEDIA_BACKEND", "cloudinary")),
		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		CloudinaryFolder:    getEnv("CLOUDINARY_FOLDER", "videotube"),
		MinioEndpoint:       getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey:      getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey:      getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinioBucket:         getEnv("MINIO_BUCKET", "videotube-media"),
		MinioUseSSL:         getEnvBool("MINIO_USE_SSL", false),

		LoginRateLimit:  getEnvInt("LOGIN_RATE_LIMIT", 25),
		LoginRateWindow: getEnvDuration("LOGIN_RATE_WINDOW", 2*time.Minute),
	}
}

// Validate catches settings that would make the service unsafe or unable to start.
func (c *Config) Validate() error {
	var errs []error
	if c.UserStore != "mongo" && c.UserStore != "postgres" {
		errs = append(errs, fmt.Errorf("USER_STORE must be mongo or postgres, got %q", c.UserStore))
	}
	if c.MediaBackend != "cloudinary" && c.MediaBackend != "minio" {
		errs = append(errs, fmt.Errorf("MEDIA_BACKEND must be cloudinary or minio, got %q", c.MediaBackend))
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		errs = append(errs, errors.New("token expiries must be positive"))
	}
	if c.IsProduction() {
		if c.AccessTokenSecret == "" || strings.HasPrefix(c.AccessTokenSecret, defaultTokenSecret) {
			errs = append(errs, errors.New("ACCESS_TOKEN_SECRET must be set in production"))
		}
		if c.RefreshTokenSecret == "" || strings.HasPrefix(c.RefreshTokenSecret, defaultTokenSecret) {
			errs = append(errs, errors.New("REFRESH_TOKEN_SECRET must be set in production"))
		}
	}
	if c.AccessTokenSecret == c.RefreshTokenSecret {
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ"))
	}
	return errors.Join(errs...)
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func containsOrigin(list []string, o string) bool {
	o = strings.TrimSpace(strings.ToLower(o))
	for _, v := range list {
		if strings.TrimSpace(strings.ToLower(v)) == o {
			return true
		}
	}
	return false
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// parseDuration accepts Go durations plus a day suffix ("10d").
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, err
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := parseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}
