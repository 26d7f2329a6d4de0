package domain

import "time"

// User represents an account holder
type User struct {
	ID           string // UUID
	Nombre       string // Display name
	Email        string // Unique email address, stored lowercase
	PasswordHash string // Bcrypt hashed password (not returned in API)
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRepository defines data access for users
type UserRepository interface {
	Create(user *User) error
	GetByID(id string) (*User, error)
	GetByEmail(email string) (*User, error)
	Update(user *User) error
}
