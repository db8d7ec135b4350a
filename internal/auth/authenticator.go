package auth

import (
	"context"

	"github.com/mmynk/splitpay/internal/models"
)

// Registration carries the fields needed to open an account.
type Registration struct {
	Email       string
	DisplayName string

	// Credential format depends on the implementation (password, OAuth token, ...).
	Credential string

	// WalletAddress is optional at signup; settlements owed to a user
	// without one are skipped until it is linked.
	WalletAddress string
}

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods (password, passkeys, OAuth, etc.)
// without changing the service layer code.
type Authenticator interface {
	// Register creates a new user account.
	// Returns the created user or an error if registration fails.
	Register(ctx context.Context, reg Registration) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if successful.
	// Returns an error if authentication fails.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
