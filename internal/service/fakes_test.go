package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/telecomplus/contracts-backend/internal/domain"
)

// In-memory repositories mirroring the Postgres implementations' contracts,
// including the sentinel errors they return.

type memUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (r *memUserRepo) Create(user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.ErrDuplicateEmail
		}
	}
	r.seq++
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", r.seq)
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) GetByID(id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memUserRepo) GetByEmail(email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memUserRepo) Update(user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

type memServiceRepo struct {
	mu       sync.Mutex
	seq      int
	services map[string]*domain.Service
}

func newMemServiceRepo() *memServiceRepo {
	return &memServiceRepo{services: make(map[string]*domain.Service)}
}

func (r *memServiceRepo) Create(service *domain.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.services {
		if s.Nombre == service.Nombre {
			return domain.ErrDuplicateServiceName
		}
	}
	r.seq++
	if service.ID == "" {
		service.ID = fmt.Sprintf("svc-%d", r.seq)
	}
	service.CreatedAt = time.Now()
	service.UpdatedAt = service.CreatedAt
	copied := *service
	r.services[service.ID] = &copied
	return nil
}

func (r *memServiceRepo) GetByID(id string) (*domain.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.services[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *memServiceRepo) GetByName(nombre string) (*domain.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.services {
		if s.Nombre == nombre {
			copied := *s
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memServiceRepo) GetByIDs(ids []string) ([]*domain.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool, len(ids))
	var out []*domain.Service
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if s, ok := r.services[id]; ok {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memServiceRepo) List(tipo domain.ServiceType, offset, limit int) ([]*domain.Service, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*domain.Service
	for _, s := range r.services {
		if tipo != "" && s.Tipo != tipo {
			continue
		}
		copied := *s
		all = append(all, &copied)
	}
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *memServiceRepo) Update(service *domain.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.services[service.ID]; !ok {
		return domain.ErrNotFound
	}
	for id, s := range r.services {
		if id != service.ID && s.Nombre == service.Nombre {
			return domain.ErrDuplicateServiceName
		}
	}
	service.UpdatedAt = time.Now()
	copied := *service
	r.services[service.ID] = &copied
	return nil
}

func (r *memServiceRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.services[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.services, id)
	return nil
}

type memContractRepo struct {
	mu        sync.Mutex
	seq       int
	contracts map[string]*domain.Contract
	services  *memServiceRepo
}

func newMemContractRepo(services *memServiceRepo) *memContractRepo {
	return &memContractRepo{contracts: make(map[string]*domain.Contract), services: services}
}

func (r *memContractRepo) Create(contract *domain.Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.contracts {
		if c.Number == contract.Number {
			return domain.ErrDuplicateNumber
		}
	}
	r.seq++
	if contract.ID == "" {
		contract.ID = fmt.Sprintf("contract-%d", r.seq)
	}
	contract.CreatedAt = time.Now()
	contract.UpdatedAt = contract.CreatedAt
	copied := *contract
	copied.ServiceIDs = append([]string(nil), contract.ServiceIDs...)
	r.contracts[contract.ID] = &copied
	return nil
}

func (r *memContractRepo) GetByID(id, userID string) (*domain.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contracts[id]
	if !ok || c.UserID != userID {
		return nil, domain.ErrNotFound
	}
	copied := *c
	copied.ServiceIDs = append([]string(nil), c.ServiceIDs...)
	return &copied, nil
}

func (r *memContractRepo) Update(contract *domain.Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.contracts[contract.ID]
	if !ok || existing.UserID != contract.UserID {
		return domain.ErrNotFound
	}
	for id, c := range r.contracts {
		if id != contract.ID && c.Number == contract.Number {
			return domain.ErrDuplicateNumber
		}
	}
	contract.UpdatedAt = time.Now()
	copied := *contract
	copied.ServiceIDs = append([]string(nil), contract.ServiceIDs...)
	r.contracts[contract.ID] = &copied
	return nil
}

func (r *memContractRepo) Delete(id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contracts[id]
	if !ok || c.UserID != userID {
		return domain.ErrNotFound
	}
	delete(r.contracts, id)
	return nil
}

func (r *memContractRepo) ListByUser(userID string, status domain.ContractStatus, offset, limit int) ([]*domain.Contract, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*domain.Contract
	for _, c := range r.contracts {
		if c.UserID != userID {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		copied := *c
		all = append(all, &copied)
	}
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *memContractRepo) NumberExists(number, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.contracts {
		if id != excludeID && c.Number == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *memContractRepo) CountByService(serviceID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, c := range r.contracts {
		for _, id := range c.ServiceIDs {
			if id == serviceID {
				count++
				break
			}
		}
	}
	return count, nil
}

func (r *memContractRepo) StatsByStatus(userID string) (map[domain.ContractStatus]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[domain.ContractStatus]int)
	for _, c := range r.contracts {
		if c.UserID == userID {
			out[c.Status]++
		}
	}
	return out, nil
}

func (r *memContractRepo) StatsByServiceType(userID string) (map[domain.ServiceType]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[domain.ServiceType]int)
	for _, c := range r.contracts {
		if c.UserID != userID {
			continue
		}
		for _, id := range c.ServiceIDs {
			if s, err := r.services.GetByID(id); err == nil {
				out[s.Tipo]++
			}
		}
	}
	return out, nil
}

func (r *memContractRepo) CountByUser(userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, c := range r.contracts {
		if c.UserID == userID {
			count++
		}
	}
	return count, nil
}
