// Package database provides PostgreSQL connection management using pgx.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config holds PostgreSQL connection settings read from environment variables.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// configFromEnv reads database config from well-known environment variables,
// falling back to sensible local-development defaults.
func configFromEnv() Config {
	return Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "tierreports"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// DSN builds a libpq-compatible connection string.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// NewPool creates and validates a pgxpool connection pool.
// It retries up to 5 times to accommodate containers starting up.
func NewPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg := configFromEnv()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	// Sensible pool defaults for a small service.
	poolCfg.MaxConns = 20
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= 5; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			if pingErr := pool.Ping(ctx); pingErr == nil {
				break
			}
			pool.Close()
		}
		slog.Warn("db connect attempt failed, retrying in 2s", "attempt", attempt, "error", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	return pool, nil
}

// migrations are applied in order on startup. Statements are idempotent
// so a restart against an existing database is a no-op.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id                 TEXT PRIMARY KEY,
		name               TEXT NOT NULL,
		registration_tiers JSONB NOT NULL DEFAULT '[]',
		companion_tiers    JSONB NOT NULL DEFAULT '[]',
		dependent_tiers    JSONB NOT NULL DEFAULT '[]',
		created_at         TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS registrants (
		id                    TEXT PRIMARY KEY,
		event_id              TEXT NOT NULL REFERENCES events(id),
		badge_name            TEXT NOT NULL DEFAULT '',
		first_name            TEXT NOT NULL DEFAULT '',
		last_name             TEXT NOT NULL DEFAULT '',
		email                 TEXT NOT NULL,
		organization          TEXT NOT NULL DEFAULT '',
		mobile                TEXT NOT NULL DEFAULT '',
		has_companion         BOOLEAN NOT NULL DEFAULT FALSE,
		companion_first_name  TEXT NOT NULL DEFAULT '',
		companion_last_name   TEXT NOT NULL DEFAULT '',
		dependent_count       INTEGER NOT NULL DEFAULT 0,
		created_at            TIMESTAMPTZ NOT NULL,
		companion_added_at    TIMESTAMPTZ,
		dependent_added_at    TIMESTAMPTZ,
		registration_tier     TEXT NOT NULL DEFAULT '',
		companion_tier        TEXT NOT NULL DEFAULT '',
		dependent_tier        TEXT NOT NULL DEFAULT '',
		cancelled             BOOLEAN NOT NULL DEFAULT FALSE,
		discount_code         TEXT NOT NULL DEFAULT '',
		discount_amount       NUMERIC NOT NULL DEFAULT 0,
		waitlisted_activities TEXT[] NOT NULL DEFAULT '{}'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_registrants_event ON registrants(event_id)`,
}

// Migrate creates the schema when it does not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration %d: %w", i+1, err)
		}
	}
	return nil
}
