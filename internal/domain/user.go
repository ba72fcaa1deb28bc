package domain

import (
	"context"
	"time"
)

// DefaultAvatar is the profile picture every new account starts with. It is
// never deleted from the media directory, no matter how many users share it.
const DefaultAvatar = "default.jpg"

// User represents a registered user of the application.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	AvatarFile   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	// Update persists username, email, and avatar filename in one statement.
	Update(ctx context.Context, user *User) error
	// UpdatePassword overwrites only the password hash.
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}
