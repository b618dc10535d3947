package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort      string        `env:"SERVER_PORT, default=8080"`
	Env             string        `env:"ENV, default=development"`
	JWTSecret       string        `env:"JWT_SECRET, default=change-me"`
	SwaggerHost     string        `env:"SWAGGER_HOST"`
	PageSize        int           `env:"PAGE_SIZE, default=15"`
	ResetDB         bool          `env:"RESET_DB, default=false"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`

	Log   LogConfig
	MySQL MySQLConfig
	Redis RedisConfig
}

// LogConfig configures the zerolog logger.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL, default=info"`
	Pretty bool   `env:"LOG_PRETTY, default=false"`
}

// MySQLConfig configures the gorm connection pool.
type MySQLConfig struct {
	DSN          string `env:"MYSQL_DSN, default=user:password@tcp(localhost:3306)/clientdesk?charset=utf8mb4&parseTime=True&loc=Local"`
	MaxOpenConns int    `env:"MYSQL_MAX_OPEN_CONNS, default=10"`
	MaxIdleConns int    `env:"MYSQL_MAX_IDLE_CONNS, default=5"`
}

// RedisConfig configures the cache and token store.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	DB       int    `env:"REDIS_DB, default=0"`
	Password string `env:"REDIS_PASSWORD"`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return FromLookuper(ctx, envconfig.OsLookuper())
}

// FromLookuper builds Config from an arbitrary variable source.
func FromLookuper(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.PageSize < 1 {
		return nil, fmt.Errorf("config: PAGE_SIZE must be positive, got %d", cfg.PageSize)
	}
	return &cfg, nil
}
