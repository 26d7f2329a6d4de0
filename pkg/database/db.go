package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
)

// Config holds database configuration
type Config struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// ConnectionPool manages database connections
type ConnectionPool struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewConnectionPool creates a new database connection pool
func NewConnectionPool(ctx context.Context, config *Config, logger *slog.Logger) (*ConnectionPool, error) {
	if logger == nil {
		logger = slog.Default()
	}

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host,
		config.Port,
		config.User,
		config.Password,
		config.Database,
		config.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	} else {
		db.SetMaxOpenConns(25)
	}

	if config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.MaxIdleConns)
	} else {
		db.SetMaxIdleConns(5)
	}

	if config.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(config.ConnMaxLifetime)
	} else {
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	ctxTest, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctxTest); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connected successfully",
		slog.String("host", config.Host),
		slog.String("database", config.Database),
	)

	return &ConnectionPool{
		db:     db,
		logger: logger,
	}, nil
}

// GetDB returns the underlying sql.DB connection
func (cp *ConnectionPool) GetDB() *sql.DB {
	return cp.db
}

// Close closes the database connection
func (cp *ConnectionPool) Close() error {
	if cp.db != nil {
		return cp.db.Close()
	}
	return nil
}

// Health checks the database health
func (cp *ConnectionPool) Health(ctx context.Context) error {
	ctxTest, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return cp.db.PingContext(ctxTest)
}

// migrations are applied in order at startup. The unique indexes here are
// the authority for uniqueness: service-layer pre-checks only exist to give
// a friendlier error message before the write.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		nombre        TEXT NOT NULL,
		email         TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (email)`,
	`CREATE TABLE IF NOT EXISTS services (
		id          UUID PRIMARY KEY,
		nombre      TEXT NOT NULL,
		descripcion TEXT NOT NULL,
		precio      NUMERIC(12,2) NOT NULL CHECK (precio >= 0),
		tipo        TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS services_nombre_key ON services (nombre)`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id              UUID PRIMARY KEY,
		numero_contrato TEXT NOT NULL,
		fecha_inicio    TIMESTAMPTZ NOT NULL,
		fecha_fin       TIMESTAMPTZ NOT NULL,
		estado          TEXT NOT NULL DEFAULT 'Activo',
		user_id         UUID NOT NULL REFERENCES users (id),
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS contracts_numero_key ON contracts (numero_contrato)`,
	`CREATE INDEX IF NOT EXISTS contracts_user_idx ON contracts (user_id)`,
	`CREATE INDEX IF NOT EXISTS contracts_estado_idx ON contracts (estado)`,
	`CREATE TABLE IF NOT EXISTS contract_services (
		contract_id UUID NOT NULL REFERENCES contracts (id) ON DELETE CASCADE,
		service_id  UUID NOT NULL REFERENCES services (id),
		PRIMARY KEY (contract_id, service_id)
	)`,
	`CREATE INDEX IF NOT EXISTS contract_services_service_idx ON contract_services (service_id)`,
}

// Migrate creates the schema if it does not exist yet
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := cp.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	cp.logger.Info("database schema up to date")
	return nil
}
