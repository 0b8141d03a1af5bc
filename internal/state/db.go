// ./internal/state/db.go
package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// DB is a global database connection pool.
var DB *sql.DB

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // "disable", "require", "verify-full", etc.
}

// InitDB initializes the database connection pool.
func InitDB(cfg DBConfig) error {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	var err error
	DB, err = sql.Open("postgres", psqlInfo)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	err = DB.Ping()
	if err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to the PostgreSQL database!")
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		log.Info().Msg("Closing database connection...")
		if err := DB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database connection")
		}
	}
}

// EnsureSchema applies the necessary DDL to create tables if they don't exist.
//
// Amounts are stored as NUMERIC(78, 0) text so base-unit integers survive
// round trips without float truncation; the slippage bound keeps its full
// 18-decimal precision the same way.
func EnsureSchema() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	schemaSQL := `
		CREATE TABLE IF NOT EXISTS manager_parameters (
			params_id SERIAL PRIMARY KEY,
			version INTEGER NOT NULL DEFAULT 1,
			is_active BOOLEAN NOT NULL DEFAULT FALSE,
			activated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			liquidity_min NUMERIC(78, 0) NOT NULL,
			liquidity_middle NUMERIC(78, 0) NOT NULL,
			liquidity_max NUMERIC(78, 0) NOT NULL,
			claim_rewards_min NUMERIC(78, 0) NOT NULL,
			reinvest_rewards_min NUMERIC(78, 0) NOT NULL,
			max_slippage NUMERIC(40, 18) NOT NULL,
			CONSTRAINT uq_manager_parameters_version UNIQUE (version)
		);
		CREATE INDEX IF NOT EXISTS idx_manager_parameters_active_timestamp ON manager_parameters(is_active, activated_at DESC);

		-- Migration: change notes were added after the first deployment
		ALTER TABLE manager_parameters ADD COLUMN IF NOT EXISTS note TEXT NOT NULL DEFAULT '';

		CREATE TABLE IF NOT EXISTS operation_events (
			event_id SERIAL PRIMARY KEY,
			sequence BIGINT NOT NULL,
			operation_id VARCHAR(64) NOT NULL,
			kind VARCHAR(32) NOT NULL,
			success BOOLEAN NOT NULL,
			message TEXT,
			payload JSONB,
			event_timestamp TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_operation_events_timestamp ON operation_events(event_timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_operation_events_sequence ON operation_events(sequence DESC);
		CREATE INDEX IF NOT EXISTS idx_operation_events_kind ON operation_events(kind);

		-- Operation counter table for persistent global operation tracking
		CREATE TABLE IF NOT EXISTS operation_counter (
			id INTEGER PRIMARY KEY DEFAULT 1,
			current_operation BIGINT NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT single_row_check CHECK (id = 1)
		);

		-- Insert initial row if it doesn't exist
		INSERT INTO operation_counter (id, current_operation)
		VALUES (1, 0)
		ON CONFLICT (id) DO NOTHING;

		CREATE TABLE IF NOT EXISTS position_snapshots (
			snapshot_id BIGSERIAL PRIMARY KEY,
			operation_id VARCHAR(64) NOT NULL,
			principal NUMERIC(78, 0) NOT NULL,
			reward_position NUMERIC(78, 0) NOT NULL,
			reward_held NUMERIC(78, 0) NOT NULL,
			unclaimed NUMERIC(78, 0) NOT NULL,
			exchange_rate NUMERIC(40, 18) NOT NULL,
			reward_value NUMERIC(78, 0) NOT NULL,
			total_value NUMERIC(78, 0) NOT NULL,
			snapshot_timestamp TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_position_snapshots_timestamp ON position_snapshots(snapshot_timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_position_snapshots_operation ON position_snapshots(operation_id);
	`
	_, err := DB.Exec(schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to execute schema DDL: %w", err)
	}
	log.Info().Msg("Database schema ensured.")
	return nil
}

// TestDBConnection tests if the database connection is healthy
func TestDBConnection() error {
	if DB == nil {
		return fmt.Errorf("database connection is nil")
	}

	// Use a short timeout context for health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := DB.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
