package config

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int

	DBDriver string
	DBPath   string
	DBURL    string

	SessionSecret string
	SessionTTL    time.Duration

	AdminName     string
	AdminEmail    string
	AdminPassword string
	BcryptCost    int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CORSOrigins     []string
	LoginRateLimit  int
	LoginRateWindow time.Duration
	MaxBodyBytes    int64

	OTelEndpoint string
}

func (c Config) IsProd() bool {
	return c.Env == "prod"
}

// Load reads the environment. envFile is loaded first when present; a missing
// file is not an error.
func Load(envFile string) Config {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		slog.Warn("env file not loaded", "path", envFile, "err", err)
	}

	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 5000),

		DBDriver: getEnv("DB_DRIVER", "sqlite"),
		DBPath:   getEnv("DB_PATH", "proyectos.db"),
		DBURL:    getEnv("DB_URL", ""),

		SessionSecret: getEnv("SESSION_SECRET", "dev-session-secret-change-me"),
		SessionTTL:    time.Duration(getEnvInt("SESSION_TTL_HOURS", 24)) * time.Hour,

		AdminName:     getEnv("ADMIN_NAME", "Administrador"),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@proyectos.com"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
		BcryptCost:    getEnvInt("BCRYPT_COST", 10),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		CORSOrigins:     getEnvList("CORS_ORIGINS", []string{"http://localhost:5000"}),
		LoginRateLimit:  getEnvInt("LOGIN_RATE_LIMIT", 10),
		LoginRateWindow: time.Duration(getEnvInt("LOGIN_RATE_WINDOW_SECONDS", 60)) * time.Second,
		MaxBodyBytes:    int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),

		OTelEndpoint: getEnv("OTEL_ENDPOINT", ""),
	}
}

// WithTimeout bounds a store call made on behalf of parent.
func WithTimeout(parent context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env value, using default", "key", key, "value", v)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
