package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address (unique).
	Email string

	// DisplayName is shown to other group members.
	DisplayName string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// WalletAddress is where settlements owed to this user are sent.
	// Empty when the user has not linked a wallet yet.
	WalletAddress string

	// CreatedAt is the Unix timestamp when the user account was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last profile change.
	UpdatedAt int64
}

// NewUser creates a user with a fresh ID and timestamps.
func NewUser(email, displayName, passwordHash, walletAddress string) *User {
	now := time.Now().Unix()
	return &User{
		ID:            uuid.New().String(),
		Email:         email,
		DisplayName:   displayName,
		PasswordHash:  passwordHash,
		WalletAddress: walletAddress,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
