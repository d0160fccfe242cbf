package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	SourceLocal = "local"
	SourceS3    = "s3"

	LockPostgres = "postgres"
	LockRedis    = "redis"
	LockMemory   = "memory"
)

type S3Options struct {
	Endpoint  string `env:"S3_ENDPOINT"`
	Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	Bucket    string `env:"S3_BUCKET"`
	AccessKey string `env:"S3_ACCESS_KEY"`
	SecretKey string `env:"S3_SECRET_KEY"`
	UseSSL    bool   `env:"S3_USE_SSL" envDefault:"true"`
	KeyPrefix string `env:"S3_KEY_PREFIX"`
}

type ImportOptions struct {
	Source      string        `env:"IMPORT_SOURCE" envDefault:"local"`
	BaseDir     string        `env:"IMPORT_BASE_DIR" envDefault:"."`
	ChunkSize   int           `env:"IMPORT_CHUNK_SIZE" envDefault:"1000"`
	BatchSize   int           `env:"IMPORT_BATCH_SIZE" envDefault:"200"`
	InviteRole  string        `env:"IMPORT_INVITE_ROLE" envDefault:"INSTITUTION_ADMIN"`
	InviteTTL   time.Duration `env:"IMPORT_INVITE_TTL" envDefault:"168h"`
	Workers     int           `env:"IMPORT_WORKERS" envDefault:"4"`
	QueueSize   int           `env:"IMPORT_QUEUE_SIZE" envDefault:"256"`
	LockBackend string        `env:"IMPORT_LOCK_BACKEND" envDefault:"postgres"`
	LockTTL     time.Duration `env:"IMPORT_LOCK_TTL" envDefault:"5m"`
}

type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`
	Port        int    `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"text"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"false"`
	Metrics     bool   `env:"METRICS_ENABLED" envDefault:"true"`

	Import ImportOptions
	S3     S3Options
}

// LoadEnv loads whichever of envFiles exist. Variables already set in the
// process environment win.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env", ".env.local"}
	}
	if _, err := LoadEnv(envFiles); err != nil {
		return nil, fmt.Errorf("load env files: %w", err)
	}

	c := &Config{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.Import.ChunkSize <= 0 {
		return fmt.Errorf("IMPORT_CHUNK_SIZE must be positive, got %d", c.Import.ChunkSize)
	}
	if c.Import.BatchSize <= 0 {
		return fmt.Errorf("IMPORT_BATCH_SIZE must be positive, got %d", c.Import.BatchSize)
	}

	switch c.Import.Source {
	case SourceLocal:
	case SourceS3:
		if c.S3.Bucket == "" {
			return errors.New("S3_BUCKET is required when IMPORT_SOURCE is 's3'")
		}
	default:
		return fmt.Errorf("IMPORT_SOURCE must be 'local' or 's3', got '%s'", c.Import.Source)
	}

	switch c.Import.LockBackend {
	case LockPostgres, LockMemory:
	case LockRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required when IMPORT_LOCK_BACKEND is 'redis'")
		}
	default:
		return fmt.Errorf("IMPORT_LOCK_BACKEND must be 'postgres', 'redis' or 'memory', got '%s'", c.Import.LockBackend)
	}
	return nil
}

func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}
