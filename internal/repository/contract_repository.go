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

// PostgresContractRepository implements domain.ContractRepository using
// PostgreSQL. A contract row plus its contract_services join rows are written
// together in a transaction; the unique index on numero_contrato is the
// authority for number uniqueness.
type PostgresContractRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresContractRepository creates a new contract repository
func NewPostgresContractRepository(db *sql.DB, logger *slog.Logger) *PostgresContractRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresContractRepository{db: db, logger: logger}
}

// Create persists a contract and its service references
func (r *PostgresContractRepository) Create(contract *domain.Contract) error {
	if contract.ID == "" {
		contract.ID = uuid.NewString()
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO contracts (id, numero_contrato, fecha_inicio, fecha_fin, estado, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err = tx.QueryRow(
		query,
		contract.ID,
		contract.Number,
		contract.StartDate,
		contract.EndDate,
		contract.Status,
		contract.UserID,
	).Scan(&contract.CreatedAt, &contract.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateNumber
		}
		r.logger.Error("failed to create contract",
			slog.String("numero", contract.Number),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create contract: %w", err)
	}

	if err := insertServiceRefs(tx, contract.ID, contract.ServiceIDs); err != nil {
		return err
	}

	return tx.Commit()
}

// GetByID retrieves a contract by id scoped to its owner. Another user's
// contract id yields ErrNotFound.
func (r *PostgresContractRepository) GetByID(id, userID string) (*domain.Contract, error) {
	c := &domain.Contract{}

	query := `
		SELECT id, numero_contrato, fecha_inicio, fecha_fin, estado, user_id, created_at, updated_at
		FROM contracts
		WHERE id = $1 AND user_id = $2
	`

	err := r.db.QueryRow(query, id, userID).Scan(
		&c.ID, &c.Number, &c.StartDate, &c.EndDate, &c.Status, &c.UserID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}

	ids, err := r.serviceIDsFor([]string{c.ID})
	if err != nil {
		return nil, err
	}
	c.ServiceIDs = ids[c.ID]
	return c, nil
}

// Update rewrites a contract and replaces its service references. The write
// is ownership-scoped the same way GetByID is.
func (r *PostgresContractRepository) Update(contract *domain.Contract) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE contracts
		SET numero_contrato = $1, fecha_inicio = $2, fecha_fin = $3, estado = $4, updated_at = now()
		WHERE id = $5 AND user_id = $6
		RETURNING updated_at
	`

	err = tx.QueryRow(
		query,
		contract.Number,
		contract.StartDate,
		contract.EndDate,
		contract.Status,
		contract.ID,
		contract.UserID,
	).Scan(&contract.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		if isUniqueViolation(err) {
			return domain.ErrDuplicateNumber
		}
		return fmt.Errorf("failed to update contract: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM contract_services WHERE contract_id = $1`, contract.ID); err != nil {
		return fmt.Errorf("failed to clear contract services: %w", err)
	}
	if err := insertServiceRefs(tx, contract.ID, contract.ServiceIDs); err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes a contract outright. Join rows cascade; referenced services
// and the owning user are untouched.
func (r *PostgresContractRepository) Delete(id, userID string) error {
	result, err := r.db.Exec(`DELETE FROM contracts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete contract: %w", err)
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

// ListByUser returns the owner's contracts newest-created-first, optionally
// filtered by estado, with offset/limit pagination and the total count.
func (r *PostgresContractRepository) ListByUser(userID string, status domain.ContractStatus, offset, limit int) ([]*domain.Contract, int, error) {
	where := "WHERE user_id = $1"
	args := []interface{}{userID}
	if status != "" {
		where += " AND estado = $2"
		args = append(args, status)
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM contracts %s", where)
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count contracts: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, numero_contrato, fecha_inicio, fecha_fin, estado, user_id, created_at, updated_at
		FROM contracts
		%s
		ORDER BY created_at DESC
		OFFSET $%d LIMIT $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, offset, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contracts: %w", err)
	}
	defer rows.Close()

	var contracts []*domain.Contract
	var contractIDs []string
	for rows.Next() {
		c := &domain.Contract{}
		if err := rows.Scan(&c.ID, &c.Number, &c.StartDate, &c.EndDate, &c.Status, &c.UserID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan contract: %w", err)
		}
		contracts = append(contracts, c)
		contractIDs = append(contractIDs, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	refs, err := r.serviceIDsFor(contractIDs)
	if err != nil {
		return nil, 0, err
	}
	for _, c := range contracts {
		c.ServiceIDs = refs[c.ID]
	}

	return contracts, total, nil
}

// NumberExists reports whether a contract other than excludeID uses number
func (r *PostgresContractRepository) NumberExists(number, excludeID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM contracts WHERE numero_contrato = $1 AND id <> $2)`
	if err := r.db.QueryRow(query, number, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check contract number: %w", err)
	}
	return exists, nil
}

// CountByService counts contracts referencing a catalog service
func (r *PostgresContractRepository) CountByService(serviceID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM contract_services WHERE service_id = $1`
	if err := r.db.QueryRow(query, serviceID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count contracts by service: %w", err)
	}
	return count, nil
}

// StatsByStatus groups the owner's contracts by estado
func (r *PostgresContractRepository) StatsByStatus(userID string) (map[domain.ContractStatus]int, error) {
	query := `
		SELECT estado, COUNT(*)
		FROM contracts
		WHERE user_id = $1
		GROUP BY estado
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate contracts by status: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.ContractStatus]int)
	for rows.Next() {
		var status domain.ContractStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status aggregate: %w", err)
		}
		out[status] = count
	}
	return out, rows.Err()
}

// StatsByServiceType expands each contract's service set, joins the catalog
// and counts by tipo.
func (r *PostgresContractRepository) StatsByServiceType(userID string) (map[domain.ServiceType]int, error) {
	query := `
		SELECT s.tipo, COUNT(*)
		FROM contracts c
		JOIN contract_services cs ON cs.contract_id = c.id
		JOIN services s ON s.id = cs.service_id
		WHERE c.user_id = $1
		GROUP BY s.tipo
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate contracts by service type: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.ServiceType]int)
	for rows.Next() {
		var tipo domain.ServiceType
		var count int
		if err := rows.Scan(&tipo, &count); err != nil {
			return nil, fmt.Errorf("failed to scan type aggregate: %w", err)
		}
		out[tipo] = count
	}
	return out, rows.Err()
}

// CountByUser counts all of the owner's contracts
func (r *PostgresContractRepository) CountByUser(userID string) (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM contracts WHERE user_id = $1`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count contracts: %w", err)
	}
	return count, nil
}

func insertServiceRefs(tx *sql.Tx, contractID string, serviceIDs []string) error {
	for _, sid := range serviceIDs {
		if _, err := tx.Exec(
			`INSERT INTO contract_services (contract_id, service_id) VALUES ($1, $2)`,
			contractID, sid,
		); err != nil {
			return fmt.Errorf("failed to link service %s: %w", sid, err)
		}
	}
	return nil
}

// serviceIDsFor loads the service references for a set of contracts in one
// query and groups them by contract id.
func (r *PostgresContractRepository) serviceIDsFor(contractIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(contractIDs))
	if len(contractIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(
		`SELECT contract_id, service_id FROM contract_services WHERE contract_id = ANY($1)`,
		pq.Array(contractIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load contract services: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cid, sid string
		if err := rows.Scan(&cid, &sid); err != nil {
			return nil, fmt.Errorf("failed to scan contract service: %w", err)
		}
		out[cid] = append(out[cid], sid)
	}
	return out, rows.Err()
}
