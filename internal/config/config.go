package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"

	pkgconfig "github.com/Skotchmaster/restaurant/pkg/config"
)

type Config struct {
	pkgconfig.Config

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PollInterval     time.Duration
	DirectoryTTL     time.Duration
	DirectoryRefresh time.Duration

	ChefCapacity int

	BridgeMaxAttempts int
	BridgeBackoff     time.Duration

	OrderEventsTopic string
}

// Load reads .env when present, then the environment.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	return Config{
		Config: pkgconfig.Load(),

		RedisAddr:     pkgconfig.EnvDefault("REDIS_ADDR", ""),
		RedisPassword: pkgconfig.EnvDefault("REDIS_PASSWORD", ""),
		RedisDB:       pkgconfig.EnvIntDefault("REDIS_DB", 0),

		PollInterval:     pkgconfig.EnvDurationDefault("POLL_INTERVAL", 3*time.Second),
		DirectoryTTL:     pkgconfig.EnvDurationDefault("DIRECTORY_TTL", 30*time.Second),
		DirectoryRefresh: pkgconfig.EnvDurationDefault("DIRECTORY_REFRESH", time.Minute),

		ChefCapacity: pkgconfig.EnvIntDefault("CHEF_CAPACITY", 3),

		BridgeMaxAttempts: pkgconfig.EnvIntDefault("BRIDGE_MAX_ATTEMPTS", 3),
		BridgeBackoff:     pkgconfig.EnvDurationDefault("BRIDGE_BACKOFF", 200*time.Millisecond),

		OrderEventsTopic: pkgconfig.EnvDefault("ORDER_EVENTS_TOPIC", "order_events"),
	}
}

// MustValidate stops the process when required settings are missing.
func (c Config) MustValidate() {
	pkgconfig.MustOneOf(c.DBDriver, "DB_DRIVER", "postgres", "sqlite")
	if c.DBDriver == "postgres" {
		pkgconfig.MustNonEmpty(c.DatabaseURL, "DATABASE_URL")
	}
	pkgconfig.MustNonEmptyBytes(c.JWTAccessSecret, "JWT_SECRET")
}
