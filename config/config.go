// Package config loads application settings from environment variables,
// applying defaults so the server can boot with nothing but MONGODB_URI
// and JWT_SECRET set.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every environment-driven setting for the server.
type Config struct {
	// Server
	Port         string
	GinMode      string // debug|release|test
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Stores
	MongoURI      string
	MongoDatabase string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Caching. Zero means entries live until explicitly invalidated.
	CacheTTL time.Duration

	// Auth
	JWTSecret string
	TokenTTL  time.Duration

	// Logging
	LogLevel  string
	LogPretty bool

	// CORS
	AllowedOrigins []string

	// Media uploads (Cloudinary signed-credential endpoint)
	CloudinaryURL string
	MediaFolder   string

	// Web push
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubject    string
}

// Load reads configuration from the environment and validates the
// required values.
func Load() (Config, error) {
	cfg := Config{
		Port:         getenv("PORT", "8080"),
		GinMode:      strings.ToLower(getenv("GIN_MODE", "debug")),
		ReadTimeout:  getdur("READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getdur("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:  getdur("IDLE_TIMEOUT", 60*time.Second),

		MongoURI:      getenv("MONGODB_URI", ""),
		MongoDatabase: getenv("MONGODB_DATABASE", "forum"),
		RedisAddr:     getenv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getint("REDIS_DB", 0),

		CacheTTL: getdur("CACHE_TTL", 0),

		JWTSecret: getenv("JWT_SECRET", ""),
		TokenTTL:  getdur("TOKEN_TTL", 24*time.Hour),

		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),

		CloudinaryURL: getenv("CLOUDINARY_URL", ""),
		MediaFolder:   getenv("MEDIA_FOLDER", "forum"),

		VAPIDPublicKey:  getenv("VAPID_PUBLIC_KEY", ""),
		VAPIDPrivateKey: getenv("VAPID_PRIVATE_KEY", ""),
		VAPIDSubject:    getenv("VAPID_SUBJECT", "mailto:admin@localhost"),
	}

	if cfg.MongoURI == "" {
		return Config{}, errors.New("MONGODB_URI must be set")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET must be set")
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
