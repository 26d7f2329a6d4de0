package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/telecomplus/contracts-backend/internal/cache"
	"github.com/telecomplus/contracts-backend/internal/domain"
	"github.com/telecomplus/contracts-backend/internal/observability/metrics"
)

// contractNumberPattern is the shape a normalized contract number must have:
// 3 to 20 characters of uppercase letters, digits and dashes.
var contractNumberPattern = regexp.MustCompile(`^[A-Z0-9-]{3,20}$`)

// ContractService manages the contract lifecycle. Every read and write is
// scoped to the calling user; another user's contract behaves like a missing
// one.
type ContractService struct {
	contracts domain.ContractRepository
	users     domain.UserRepository
	services  domain.ServiceRepository
	stats     *cache.StatsCache
	logger    *slog.Logger
}

// NewContractService creates a new contract service
func NewContractService(
	contracts domain.ContractRepository,
	users domain.UserRepository,
	services domain.ServiceRepository,
	stats *cache.StatsCache,
	logger *slog.Logger,
) *ContractService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContractService{
		contracts: contracts,
		users:     users,
		services:  services,
		stats:     stats,
		logger:    logger,
	}
}

// CreateContractInput carries the fields for a new contract
type CreateContractInput struct {
	Number     string
	StartDate  time.Time
	EndDate    time.Time
	Status     string
	ServiceIDs []string
}

// UpdateContractInput carries a partial contract update. Nil fields keep the
// stored value; the merged result is validated as a whole.
type UpdateContractInput struct {
	Number     *string
	StartDate  *time.Time
	EndDate    *time.Time
	Status     *string
	ServiceIDs *[]string
}

// normalizeNumber uppercases and trims a contract number so that lookups and
// the unique index see one canonical form.
func normalizeNumber(number string) (string, error) {
	number = strings.ToUpper(strings.TrimSpace(number))
	if !contractNumberPattern.MatchString(number) {
		return "", domain.ErrInvalidNumber
	}
	return number, nil
}

// Create registers a new contract for the calling user
func (s *ContractService) Create(ctx context.Context, userID string, in CreateContractInput) (*domain.ContractDetail, error) {
	number, err := normalizeNumber(in.Number)
	if err != nil {
		return nil, err
	}

	status := domain.StatusActive
	if in.Status != "" {
		status = domain.ContractStatus(in.Status)
		if !status.Valid() {
			return nil, domain.ErrInvalidStatus
		}
	}

	exists, err := s.contracts.NumberExists(number, "")
	if err != nil {
		return nil, err
	}
	if exists {
		metrics.ObserveConflict("contract_number")
		return nil, domain.ErrDuplicateNumber
	}

	owner, err := s.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnknownOwner
		}
		return nil, err
	}

	serviceIDs := uniqueIDs(in.ServiceIDs)
	services, err := s.services.GetByIDs(serviceIDs)
	if err != nil {
		return nil, err
	}
	if len(services) != len(serviceIDs) {
		return nil, domain.ErrUnknownService
	}

	if !in.EndDate.After(in.StartDate) {
		return nil, domain.ErrInvalidDateRange
	}
	if len(serviceIDs) == 0 {
		return nil, domain.ErrEmptyServiceSet
	}

	contract := &domain.Contract{
		Number:     number,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		Status:     status,
		UserID:     userID,
		ServiceIDs: serviceIDs,
	}

	if err := s.contracts.Create(contract); err != nil {
		if errors.Is(err, domain.ErrDuplicateNumber) {
			metrics.ObserveConflict("contract_number")
		}
		return nil, err
	}

	s.stats.Invalidate(ctx, userID)
	metrics.ObserveContractCreated(string(contract.Status))
	s.logger.Info("contract created",
		slog.String("contract_id", contract.ID),
		slog.String("numero", contract.Number),
		slog.String("user_id", userID),
	)

	return &domain.ContractDetail{Contract: contract, Owner: owner, Services: services}, nil
}

// List returns a page of the user's contracts, optionally filtered by estado
func (s *ContractService) List(ctx context.Context, userID, estado string, page, pageSize int) ([]*domain.Contract, *Pagination, error) {
	var filter domain.ContractStatus
	if estado != "" {
		filter = domain.ContractStatus(estado)
		if !filter.Valid() {
			return nil, nil, domain.ErrInvalidStatus
		}
	}

	offset := (page - 1) * pageSize
	contracts, total, err := s.contracts.ListByUser(userID, filter, offset, pageSize)
	if err != nil {
		return nil, nil, err
	}
	return contracts, newPagination(page, pageSize, total), nil
}

// GetByID returns one of the user's contracts with its owner and services
// resolved
func (s *ContractService) GetByID(ctx context.Context, userID, id string) (*domain.ContractDetail, error) {
	contract, err := s.contracts.GetByID(id, userID)
	if err != nil {
		return nil, err
	}
	return s.toDetail(contract)
}

// Update applies a partial update to one of the user's contracts. The merged
// result must satisfy the same invariants as a fresh contract.
func (s *ContractService) Update(ctx context.Context, userID, id string, in UpdateContractInput) (*domain.ContractDetail, error) {
	contract, err := s.contracts.GetByID(id, userID)
	if err != nil {
		return nil, err
	}

	if in.Number != nil {
		number, err := normalizeNumber(*in.Number)
		if err != nil {
			return nil, err
		}
		if number != contract.Number {
			exists, err := s.contracts.NumberExists(number, id)
			if err != nil {
				return nil, err
			}
			if exists {
				metrics.ObserveConflict("contract_number")
				return nil, domain.ErrDuplicateNumber
			}
		}
		contract.Number = number
	}
	if in.StartDate != nil {
		contract.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		contract.EndDate = *in.EndDate
	}
	if in.Status != nil {
		status := domain.ContractStatus(*in.Status)
		if !status.Valid() {
			return nil, domain.ErrInvalidStatus
		}
		contract.Status = status
	}
	if in.ServiceIDs != nil {
		contract.ServiceIDs = uniqueIDs(*in.ServiceIDs)
	}

	if !contract.EndDate.After(contract.StartDate) {
		return nil, domain.ErrInvalidDateRange
	}
	if len(contract.ServiceIDs) == 0 {
		return nil, domain.ErrEmptyServiceSet
	}

	services, err := s.services.GetByIDs(contract.ServiceIDs)
	if err != nil {
		return nil, err
	}
	if len(services) != len(contract.ServiceIDs) {
		return nil, domain.ErrUnknownService
	}

	if err := s.contracts.Update(contract); err != nil {
		if errors.Is(err, domain.ErrDuplicateNumber) {
			metrics.ObserveConflict("contract_number")
		}
		return nil, err
	}

	s.stats.Invalidate(ctx, userID)
	s.logger.Info("contract updated",
		slog.String("contract_id", contract.ID),
		slog.String("user_id", userID),
	)

	owner, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	return &domain.ContractDetail{Contract: contract, Owner: owner, Services: services}, nil
}

// Delete removes one of the user's contracts
func (s *ContractService) Delete(ctx context.Context, userID, id string) error {
	if err := s.contracts.Delete(id, userID); err != nil {
		return err
	}

	s.stats.Invalidate(ctx, userID)
	metrics.ObserveContractDeleted()
	s.logger.Info("contract deleted",
		slog.String("contract_id", id),
		slog.String("user_id", userID),
	)
	return nil
}

// Stats aggregates the user's contracts by status and by service category,
// serving from the cache when a fresh entry exists.
func (s *ContractService) Stats(ctx context.Context, userID string) (*domain.ContractStats, error) {
	if cached, ok := s.stats.Get(ctx, userID); ok {
		return cached, nil
	}

	total, err := s.contracts.CountByUser(userID)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.contracts.StatsByStatus(userID)
	if err != nil {
		return nil, err
	}
	byType, err := s.contracts.StatsByServiceType(userID)
	if err != nil {
		return nil, err
	}

	stats := &domain.ContractStats{
		Total:         total,
		ByStatus:      byStatus,
		ByServiceType: byType,
	}
	s.stats.Set(ctx, userID, stats)
	return stats, nil
}

func (s *ContractService) toDetail(contract *domain.Contract) (*domain.ContractDetail, error) {
	owner, err := s.users.GetByID(contract.UserID)
	if err != nil {
		return nil, err
	}
	services, err := s.services.GetByIDs(contract.ServiceIDs)
	if err != nil {
		return nil, err
	}
	return &domain.ContractDetail{Contract: contract, Owner: owner, Services: services}, nil
}

// uniqueIDs deduplicates a slice of ids so that cardinality comparison against
// a resolved set is exact.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
