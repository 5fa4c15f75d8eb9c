package config

import "time"

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"                    envDefault:"localhost"`
	Port     int    `env:"PORT"                    envDefault:"5432"`
	User     string `env:"USER"                    envDefault:"coursedeck"`
	Password string `env:"PASSWORD"                envDefault:"coursedeck"`
	Name     string `env:"NAME"                    envDefault:"coursedeck"`
	SSLMode  string `env:"SSL_MODE"                envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI      string `env:"URI"      envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
}

// CacheConfig contains the ingested-material cache configuration (Redis-based).
type CacheConfig struct {
	// Enabled turns the material cache on. When disabled every run refetches
	// source material from the course API.
	Enabled bool `env:"CACHE_ENABLED" envDefault:"true"`

	// MaterialTTL is the TTL for cached source material bytes.
	MaterialTTL time.Duration `env:"CACHE_MATERIAL_TTL" envDefault:"30m"`
}
