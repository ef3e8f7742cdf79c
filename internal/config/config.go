package config

import (
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Config struct {
	DBDSN         string
	ServerPort    string
	SessionSecret string
	LogLevel      string

	// рабочие сессии редактирования угроз
	WorkspaceTTL       time.Duration
	WorkspaceCacheSize int
}

const (
	defaultPort          = "8080"
	defaultLogLevel      = "info"
	defaultWorkspaceTTL  = 30 * time.Minute
	defaultWorkspaceSize = 256
)

// Load читает .env (если есть) и переменные окружения.
// Без DB_DSN или SESSION_SECRET сервер не стартует.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := Parse(os.LookupEnv)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

// Parse собирает конфиг из произвольного источника переменных.
func Parse(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return v
	}

	cfg := &Config{
		DBDSN:              get("DB_DSN"),
		ServerPort:         get("SERVER_PORT"),
		SessionSecret:      get("SESSION_SECRET"),
		LogLevel:           get("LOG_LEVEL"),
		WorkspaceTTL:       defaultWorkspaceTTL,
		WorkspaceCacheSize: defaultWorkspaceSize,
	}

	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN is not set")
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("SESSION_SECRET is not set")
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = defaultPort
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}

	if raw := get("WORKSPACE_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			slog.Warn("invalid WORKSPACE_TTL, using default", "value", raw, "default", defaultWorkspaceTTL)
		} else {
			cfg.WorkspaceTTL = ttl
		}
	}
	if raw := get("WORKSPACE_CACHE_SIZE"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			slog.Warn("invalid WORKSPACE_CACHE_SIZE, using default", "value", raw, "default", defaultWorkspaceSize)
		} else {
			cfg.WorkspaceCacheSize = n
		}
	}

	return cfg, nil
}
