package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/telecomplus/contracts-backend/internal/domain"
)

// PostgresServiceRepository implements domain.ServiceRepository using PostgreSQL
type PostgresServiceRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresServiceRepository creates a new service catalog repository
func NewPostgresServiceRepository(db *sql.DB, logger *slog.Logger) *PostgresServiceRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresServiceRepository{db: db, logger: logger}
}

// Create creates a new catalog service
func (r *PostgresServiceRepository) Create(service *domain.Service) error {
	if service.ID == "" {
		service.ID = uuid.NewString()
	}

	query := `
		INSERT INTO services (id, nombre, descripcion, precio, tipo)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		service.ID,
		service.Nombre,
		service.Descripcion,
		service.Precio,
		service.Tipo,
	).Scan(&service.CreatedAt, &service.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateServiceName
		}
		r.logger.Error("failed to create service",
			slog.String("nombre", service.Nombre),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create service: %w", err)
	}

	return nil
}

// GetByID retrieves a service by ID
func (r *PostgresServiceRepository) GetByID(id string) (*domain.Service, error) {
	s := &domain.Service{}

	query := `
		SELECT id, nombre, descripcion, precio, tipo, created_at, updated_at
		FROM services
		WHERE id = $1
	`

	err := r.db.QueryRow(query, id).Scan(
		&s.ID, &s.Nombre, &s.Descripcion, &s.Precio, &s.Tipo, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return s, nil
}

// GetByName retrieves a service by its unique name
func (r *PostgresServiceRepository) GetByName(nombre string) (*domain.Service, error) {
	s := &domain.Service{}

	query := `
		SELECT id, nombre, descripcion, precio, tipo, created_at, updated_at
		FROM services
		WHERE nombre = $1
	`

	err := r.db.QueryRow(query, nombre).Scan(
		&s.ID, &s.Nombre, &s.Descripcion, &s.Precio, &s.Tipo, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get service by name: %w", err)
	}
	return s, nil
}

// GetByIDs resolves a set of service ids. Ids not present in the catalog are
// simply absent from the result.
func (r *PostgresServiceRepository) GetByIDs(ids []string) ([]*domain.Service, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, nombre, descripcion, precio, tipo, created_at, updated_at
		FROM services
		WHERE id = ANY($1)
	`

	rows, err := r.db.Query(query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve services: %w", err)
	}
	defer rows.Close()

	var out []*domain.Service
	for rows.Next() {
		s := &domain.Service{}
		if err := rows.Scan(&s.ID, &s.Nombre, &s.Descripcion, &s.Precio, &s.Tipo, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// List returns catalog services, optionally filtered by tipo, newest first,
// with offset/limit pagination and the total matching count.
func (r *PostgresServiceRepository) List(tipo domain.ServiceType, offset, limit int) ([]*domain.Service, int, error) {
	where := ""
	args := []interface{}{}
	if tipo != "" {
		where = "WHERE tipo = $1"
		args = append(args, tipo)
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM services %s", where)
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count services: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, nombre, descripcion, precio, tipo, created_at, updated_at
		FROM services
		%s
		ORDER BY created_at DESC
		OFFSET $%d LIMIT $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, offset, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list services: %w", err)
	}
	defer rows.Close()

	var out []*domain.Service
	for rows.Next() {
		s := &domain.Service{}
		if err := rows.Scan(&s.ID, &s.Nombre, &s.Descripcion, &s.Precio, &s.Tipo, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan service: %w", err)
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

// Update updates an existing service
func (r *PostgresServiceRepository) Update(service *domain.Service) error {
	query := `
		UPDATE services
		SET nombre = $1, descripcion = $2, precio = $3, tipo = $4, updated_at = now()
		WHERE id = $5
		RETURNING updated_at
	`

	err := r.db.QueryRow(
		query,
		service.Nombre,
		service.Descripcion,
		service.Precio,
		service.Tipo,
		service.ID,
	).Scan(&service.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		if isUniqueViolation(err) {
			return domain.ErrDuplicateServiceName
		}
		return fmt.Errorf("failed to update service: %w", err)
	}

	return nil
}

// Delete removes a service from the catalog. Callers must first check that
// no contract references it; the foreign key backs that check up.
func (r *PostgresServiceRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
