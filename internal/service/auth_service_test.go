package service

import (
	"errors"
	"testing"
	"time"

	"github.com/telecomplus/contracts-backend/internal/domain"
	"github.com/telecomplus/contracts-backend/internal/security/auth"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService() (*AuthService, *memUserRepo) {
	users := newMemUserRepo()
	tokens := auth.NewTokenManager("test-secret-at-least-32-chars-long!!", "test", time.Hour)
	svc := NewAuthService(users, tokens, bcrypt.MinCost, nil)
	return svc, users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestAuthService()

	result, err := svc.Register("Ana García", "ANA@Example.COM", "secret123")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected a token")
	}
	if result.User.Email != "ana@example.com" {
		t.Fatalf("email not normalized: %q", result.User.Email)
	}
	if result.User.PasswordHash == "secret123" {
		t.Fatal("password stored in plain text")
	}

	login, err := svc.Login("ana@example.com", "secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if login.User.ID != result.User.ID {
		t.Fatalf("login resolved wrong user: %s", login.User.ID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService()

	if _, err := svc.Register("Ana", "ana@example.com", "secret123"); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register("Otra Ana", "Ana@Example.com", "different"); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestAuthService()

	if _, err := svc.Register("Ana", "ana@example.com", "secret123"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, err := svc.Login("ana@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login("nobody@example.com", "secret123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown email should look like bad credentials, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newTestAuthService()

	result, err := svc.Register("Ana", "ana@example.com", "secret123")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	nombre := "Ana María"
	updated, err := svc.UpdateProfile(result.User.ID, &nombre, nil)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Nombre != "Ana María" {
		t.Fatalf("nombre not updated: %q", updated.Nombre)
	}
	if updated.Email != "ana@example.com" {
		t.Fatalf("email changed unexpectedly: %q", updated.Email)
	}
}

func TestUpdateProfileDuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService()

	if _, err := svc.Register("Ana", "ana@example.com", "secret123"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	other, err := svc.Register("Luis", "luis@example.com", "secret123")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	email := "ana@example.com"
	if _, err := svc.UpdateProfile(other.User.ID, nil, &email); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	// Re-submitting your own email is not a conflict.
	own := "luis@example.com"
	if _, err := svc.UpdateProfile(other.User.ID, nil, &own); err != nil {
		t.Fatalf("own email rejected: %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestAuthService()

	result, err := svc.Register("Ana", "ana@example.com", "secret123")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := svc.ChangePassword(result.User.ID, "wrong", "newpass123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	if err := svc.ChangePassword(result.User.ID, "secret123", "newpass123"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	if _, err := svc.Login("ana@example.com", "secret123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatal("old password still accepted")
	}
	if _, err := svc.Login("ana@example.com", "newpass123"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}
