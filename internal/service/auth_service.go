package service

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/telecomplus/contracts-backend/internal/domain"
	"github.com/telecomplus/contracts-backend/internal/observability/metrics"
	"github.com/telecomplus/contracts-backend/internal/security/auth"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration, login and profile operations
type AuthService struct {
	users      domain.UserRepository
	tokens     *auth.TokenManager
	bcryptCost int
	logger     *slog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(users domain.UserRepository, tokens *auth.TokenManager, bcryptCost int, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// AuthResult pairs a user with a freshly issued token
type AuthResult struct {
	User  *domain.User
	Token string
}

// Register creates a new user account and issues a token for it
func (s *AuthService) Register(nombre, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)

	// Pre-check for a friendlier message; the unique index is the authority.
	if _, err := s.users.GetByEmail(email); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, errors.New("failed to register user")
	}

	user := &domain.User{
		Nombre:       strings.TrimSpace(nombre),
		Email:        email,
		PasswordHash: string(hash),
	}

	if err := s.users.Create(user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			metrics.ObserveConflict("email")
			return nil, err
		}
		s.logger.Error("failed to create user", slog.String("error", err.Error()))
		return nil, errors.New("failed to register user")
	}

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return nil, errors.New("failed to generate token")
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)

	user, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Info("login attempt with unknown email", slog.String("email", email))
			metrics.ObserveLogin("failure")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("login failed with wrong password", slog.String("email", email))
		metrics.ObserveLogin("failure")
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return nil, errors.New("failed to generate token")
	}

	s.logger.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)
	metrics.ObserveLogin("success")

	return &AuthResult{User: user, Token: token}, nil
}

// GetProfile returns the user's account record
func (s *AuthService) GetProfile(userID string) (*domain.User, error) {
	return s.users.GetByID(userID)
}

// UpdateProfile applies a partial update of nombre and/or email. A nil field
// leaves the stored value unchanged.
func (s *AuthService) UpdateProfile(userID string, nombre, email *string) (*domain.User, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}

	if nombre != nil {
		user.Nombre = strings.TrimSpace(*nombre)
	}
	if email != nil {
		newEmail := normalizeEmail(*email)
		if newEmail != user.Email {
			if other, err := s.users.GetByEmail(newEmail); err == nil && other.ID != userID {
				return nil, domain.ErrDuplicateEmail
			} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
		}
		user.Email = newEmail
	}

	if err := s.users.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword re-verifies the current credential before recomputing the
// stored hash from the new one.
func (s *AuthService) ChangePassword(userID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash new password", slog.String("error", err.Error()))
		return errors.New("failed to change password")
	}

	user.PasswordHash = string(hash)
	if err := s.users.Update(user); err != nil {
		s.logger.Error("failed to update password", slog.String("error", err.Error()))
		return errors.New("failed to change password")
	}

	s.logger.Info("user changed password", slog.String("user_id", userID))
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
