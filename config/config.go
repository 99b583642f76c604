// ABOUTME: Workspace configuration loaded from PLAINTEXT_* environment variables and an optional .env file.
// ABOUTME: Selects the storage backend and validates the settings each backend requires.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage backend names accepted by PLAINTEXT_STORE.
const (
	BackendSqlite = "sqlite"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMinio  = "minio"
)

var (
	ErrUnknownStore       = errors.New("PLAINTEXT_STORE must be one of sqlite, memory, redis, minio")
	ErrMissingRedisAddr   = errors.New("PLAINTEXT_STORE=redis requires PLAINTEXT_REDIS_ADDR")
	ErrMissingMinioConfig = errors.New("PLAINTEXT_STORE=minio requires PLAINTEXT_MINIO_ENDPOINT and PLAINTEXT_MINIO_BUCKET")
)

// Config holds runtime configuration.
type Config struct {
	Home  string // Data directory (PLAINTEXT_HOME, default: ~/.plaintext)
	Bind  string // HTTP listen address (PLAINTEXT_BIND, default: 127.0.0.1:7780)
	Store Store
}

// Store selects and configures the key-value backend.
type Store struct {
	Backend    string
	SqlitePath string
	Redis      Redis
	Minio      Minio
}

type Redis struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type Minio struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Load reads envFile (if it exists) without overriding variables already set,
// then builds the configuration from the environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return FromEnv()
}

// FromEnv builds the configuration from PLAINTEXT_* variables.
func FromEnv() (*Config, error) {
	home := envOrDefault("PLAINTEXT_HOME", "")
	if home == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = os.TempDir()
		}
		home = filepath.Join(homeDir, ".plaintext")
	}

	redisDB := 0
	if v := os.Getenv("PLAINTEXT_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("PLAINTEXT_REDIS_DB: %w", err)
		}
		redisDB = n
	}

	cfg := &Config{
		Home: home,
		Bind: envOrDefault("PLAINTEXT_BIND", "127.0.0.1:7780"),
		Store: Store{
			Backend:    strings.ToLower(envOrDefault("PLAINTEXT_STORE", BackendSqlite)),
			SqlitePath: filepath.Join(home, "workspace.db"),
			Redis: Redis{
				Addr:     os.Getenv("PLAINTEXT_REDIS_ADDR"),
				Password: os.Getenv("PLAINTEXT_REDIS_PASSWORD"),
				DB:       redisDB,
				Prefix:   envOrDefault("PLAINTEXT_REDIS_PREFIX", "plaintext:"),
			},
			Minio: Minio{
				Endpoint:  os.Getenv("PLAINTEXT_MINIO_ENDPOINT"),
				AccessKey: os.Getenv("PLAINTEXT_MINIO_ACCESS_KEY"),
				SecretKey: os.Getenv("PLAINTEXT_MINIO_SECRET_KEY"),
				Bucket:    os.Getenv("PLAINTEXT_MINIO_BUCKET"),
				UseSSL:    isTrue(os.Getenv("PLAINTEXT_MINIO_USE_SSL")),
			},
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendSqlite, BackendMemory:
	case BackendRedis:
		if c.Store.Redis.Addr == "" {
			return ErrMissingRedisAddr
		}
	case BackendMinio:
		if c.Store.Minio.Endpoint == "" || c.Store.Minio.Bucket == "" {
			return ErrMissingMinioConfig
		}
	default:
		return fmt.Errorf("%w: got %q", ErrUnknownStore, c.Store.Backend)
	}
	return nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func isTrue(v string) bool {
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return true
	}
	return false
}
