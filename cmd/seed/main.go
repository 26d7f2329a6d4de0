package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/telecomplus/contracts-backend/internal/infrastructure/logger"
	"github.com/telecomplus/contracts-backend/pkg/config"
	"github.com/telecomplus/contracts-backend/pkg/database"
)

type seedService struct {
	nombre      string
	descripcion string
	precio      float64
	tipo        string
}

// The starter catalog. Re-running the seeder is safe: names are unique and
// existing rows are left untouched.
var seedServices = []seedService{
	{"Internet Básico 50MB", "Conexión de fibra óptica de 50 megas, ideal para navegación y redes sociales", 45000, "Internet"},
	{"Internet Estándar 100MB", "Conexión de fibra óptica de 100 megas para streaming y teletrabajo", 65000, "Internet"},
	{"Internet Premium 200MB", "Conexión de fibra óptica de 200 megas para hogares exigentes", 85000, "Internet"},
	{"Internet Ultra 500MB", "Conexión de fibra óptica de 500 megas para gamers y creadores de contenido", 120000, "Internet"},
	{"TV Básica", "Plan de televisión con 60 canales nacionales e internacionales", 35000, "Televisión"},
	{"TV Estándar", "Plan de televisión con 100 canales incluyendo deportes", 55000, "Televisión"},
	{"TV Premium", "Plan de televisión con 150 canales incluyendo cine y deportes premium", 75000, "Televisión"},
	{"TV Ultra + HBO", "Plan de televisión completo con 200 canales y paquete HBO incluido", 95000, "Televisión"},
}

func main() {
	if err := run(); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.NewLogger(cfg.LogLevel)
	ctx := context.Background()

	pool, err := database.NewConnectionPool(ctx, &database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	db := pool.GetDB()
	inserted := 0
	for _, s := range seedServices {
		result, err := db.ExecContext(ctx, `
			INSERT INTO services (id, nombre, descripcion, precio, tipo)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (nombre) DO NOTHING
		`, uuid.NewString(), s.nombre, s.descripcion, s.precio, s.tipo)
		if err != nil {
			return fmt.Errorf("failed to seed service %q: %w", s.nombre, err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check rows affected: %w", err)
		}
		inserted += int(rows)
	}

	log.Info("catalog seeded",
		slog.Int("inserted", inserted),
		slog.Int("skipped", len(seedServices)-inserted),
	)
	return nil
}
