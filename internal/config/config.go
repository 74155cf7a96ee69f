// Package config содержит логику чтения конфигурации книжного магазина.
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// MinioConfig описывает хранилище обложек. Пустой Endpoint отключает MinIO.
type MinioConfig struct {
	Endpoint  string `env:"ENDPOINT"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	Bucket    string `env:"BUCKET"`
	UseSSL    bool   `env:"USE_SSL"`
}

// Config содержит параметры конфигурации книжного магазина.
type Config struct {
	RunAddress     string        `env:"RUN_ADDRESS"`
	DatabaseURI    string        `env:"DATABASE_URI"`
	RedisAddress   string        `env:"REDIS_ADDRESS"`
	SessionSecret  string        `env:"SESSION_SECRET"`
	SessionTTL     time.Duration `env:"SESSION_TTL"`
	PageSize       int           `env:"PAGE_SIZE"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
	Minio          MinioConfig   `envPrefix:"MINIO_"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами. При ENV=dev дополнительно читается .env.
func Parse() (*Config, error) {
	cfg := &Config{}

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.RedisAddress, "r", "", "redis address for sessions, in-memory sessions if empty")
	flag.StringVar(&cfg.SessionSecret, "s", "", "session cookie signing key")
	flag.DurationVar(&cfg.SessionTTL, "session-ttl", 30*time.Minute, "idle session lifetime")
	flag.IntVar(&cfg.PageSize, "page-size", 3, "default search page size")
	flag.DurationVar(&cfg.RequestTimeout, "request-timeout", 15*time.Second, "per-request timeout")

	flag.Parse()

	if os.Getenv("ENV") == "dev" {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}

	return cfg, nil
}
