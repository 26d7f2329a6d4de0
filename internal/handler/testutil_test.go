package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/telecomplus/contracts-backend/internal/cache"
	"github.com/telecomplus/contracts-backend/internal/domain"
	"github.com/telecomplus/contracts-backend/internal/infrastructure/logger"
	"github.com/telecomplus/contracts-backend/internal/security/audit"
	"github.com/telecomplus/contracts-backend/internal/security/auth"
	"github.com/telecomplus/contracts-backend/internal/security/middleware"
	"github.com/telecomplus/contracts-backend/internal/service"
	"golang.org/x/crypto/bcrypt"
)

// Minimal in-memory repositories for end-to-end handler tests

type stubUsers struct {
	seq   int
	users map[string]*domain.User
}

func (r *stubUsers) Create(user *domain.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.ErrDuplicateEmail
		}
	}
	r.seq++
	user.ID = fmt.Sprintf("user-%d", r.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = user
	return nil
}

func (r *stubUsers) GetByID(id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (r *stubUsers) GetByEmail(email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubUsers) Update(user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	r.users[user.ID] = user
	return nil
}

type stubServices struct {
	seq      int
	services map[string]*domain.Service
}

func (r *stubServices) Create(s *domain.Service) error {
	for _, existing := range r.services {
		if existing.Nombre == s.Nombre {
			return domain.ErrDuplicateServiceName
		}
	}
	r.seq++
	s.ID = fmt.Sprintf("svc-%d", r.seq)
	r.services[s.ID] = s
	return nil
}

func (r *stubServices) GetByID(id string) (*domain.Service, error) {
	if s, ok := r.services[id]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

func (r *stubServices) GetByName(nombre string) (*domain.Service, error) {
	for _, s := range r.services {
		if s.Nombre == nombre {
			return s, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubServices) GetByIDs(ids []string) ([]*domain.Service, error) {
	seen := make(map[string]bool, len(ids))
	var out []*domain.Service
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if s, ok := r.services[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *stubServices) List(tipo domain.ServiceType, offset, limit int) ([]*domain.Service, int, error) {
	var out []*domain.Service
	for _, s := range r.services {
		if tipo == "" || s.Tipo == tipo {
			out = append(out, s)
		}
	}
	return out, len(out), nil
}

func (r *stubServices) Update(s *domain.Service) error {
	if _, ok := r.services[s.ID]; !ok {
		return domain.ErrNotFound
	}
	r.services[s.ID] = s
	return nil
}

func (r *stubServices) Delete(id string) error {
	if _, ok := r.services[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.services, id)
	return nil
}

type stubContracts struct {
	seq       int
	contracts map[string]*domain.Contract
}

func (r *stubContracts) Create(c *domain.Contract) error {
	for _, existing := range r.contracts {
		if existing.Number == c.Number {
			return domain.ErrDuplicateNumber
		}
	}
	r.seq++
	c.ID = fmt.Sprintf("contract-%d", r.seq)
	r.contracts[c.ID] = c
	return nil
}

func (r *stubContracts) GetByID(id, userID string) (*domain.Contract, error) {
	if c, ok := r.contracts[id]; ok && c.UserID == userID {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

func (r *stubContracts) Update(c *domain.Contract) error {
	existing, ok := r.contracts[c.ID]
	if !ok || existing.UserID != c.UserID {
		return domain.ErrNotFound
	}
	r.contracts[c.ID] = c
	return nil
}

func (r *stubContracts) Delete(id, userID string) error {
	if c, ok := r.contracts[id]; ok && c.UserID == userID {
		delete(r.contracts, id)
		return nil
	}
	return domain.ErrNotFound
}

func (r *stubContracts) ListByUser(userID string, status domain.ContractStatus, offset, limit int) ([]*domain.Contract, int, error) {
	var out []*domain.Contract
	for _, c := range r.contracts {
		if c.UserID == userID && (status == "" || c.Status == status) {
			out = append(out, c)
		}
	}
	return out, len(out), nil
}

func (r *stubContracts) NumberExists(number, excludeID string) (bool, error) {
	for id, c := range r.contracts {
		if id != excludeID && c.Number == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubContracts) CountByService(serviceID string) (int, error) {
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

func (r *stubContracts) StatsByStatus(userID string) (map[domain.ContractStatus]int, error) {
	out := make(map[domain.ContractStatus]int)
	for _, c := range r.contracts {
		if c.UserID == userID {
			out[c.Status]++
		}
	}
	return out, nil
}

func (r *stubContracts) StatsByServiceType(userID string) (map[domain.ServiceType]int, error) {
	return map[domain.ServiceType]int{}, nil
}

func (r *stubContracts) CountByUser(userID string) (int, error) {
	count := 0
	for _, c := range r.contracts {
		if c.UserID == userID {
			count++
		}
	}
	return count, nil
}

type testEnv struct {
	server   *httptest.Server
	services *stubServices
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := &stubUsers{users: make(map[string]*domain.User)}
	services := &stubServices{services: make(map[string]*domain.Service)}
	contracts := &stubContracts{contracts: make(map[string]*domain.Contract)}

	log := logger.NewLogger("error")
	tokens := auth.NewTokenManager("test-secret-at-least-32-chars-long!!", "test", time.Hour)
	statsCache := cache.NewStatsCache(nil, time.Minute, log)
	auditLog := audit.NewLogger(log)

	authService := service.NewAuthService(users, tokens, bcrypt.MinCost, log)
	catalogService := service.NewCatalogService(services, contracts, log)
	contractService := service.NewContractService(contracts, users, services, statsCache, log)

	authHandler := NewAuthHandler(authService, auditLog, log)
	serviceHandler := NewServiceHandler(catalogService, auditLog, log)
	contractHandler := NewContractHandler(contractService, auditLog, log)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/auth/profile", authHandler.Profile)
	mux.HandleFunc("PUT /api/auth/profile", authHandler.UpdateProfile)
	mux.HandleFunc("PUT /api/auth/change-password", authHandler.ChangePassword)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("POST /api/services", serviceHandler.Create)
	mux.HandleFunc("GET /api/services", serviceHandler.List)
	mux.HandleFunc("GET /api/services/{id}", serviceHandler.GetByID)
	mux.HandleFunc("PUT /api/services/{id}", serviceHandler.Update)
	mux.HandleFunc("DELETE /api/services/{id}", serviceHandler.Delete)
	mux.HandleFunc("POST /api/contracts", contractHandler.Create)
	mux.HandleFunc("GET /api/contracts", contractHandler.List)
	mux.HandleFunc("GET /api/contracts/stats", contractHandler.Stats)
	mux.HandleFunc("GET /api/contracts/{id}", contractHandler.GetByID)
	mux.HandleFunc("PUT /api/contracts/{id}", contractHandler.Update)
	mux.HandleFunc("DELETE /api/contracts/{id}", contractHandler.Delete)

	root := middleware.Authenticate(tokens, users, log)(mux)
	server := httptest.NewServer(root)
	t.Cleanup(server.Close)

	return &testEnv{server: server, services: services}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) (*http.Response, Envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.server.Client().Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	var envelope Envelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, envelope
}

func (e *testEnv) registerUser(t *testing.T, email string) string {
	t.Helper()

	resp, envelope := e.request(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"nombre":   "Test User",
		"email":    email,
		"password": "secret123",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register returned %d: %s", resp.StatusCode, envelope.Message)
	}

	data, ok := envelope.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected register payload: %+v", envelope.Data)
	}
	token, _ := data["token"].(string)
	if token == "" {
		t.Fatal("register returned no token")
	}
	return token
}

func (e *testEnv) seedService(t *testing.T, nombre string, tipo domain.ServiceType) string {
	t.Helper()

	s := &domain.Service{Nombre: nombre, Descripcion: "x", Precio: 45000, Tipo: tipo}
	if err := e.services.Create(s); err != nil {
		t.Fatalf("seed service: %v", err)
	}
	return s.ID
}
