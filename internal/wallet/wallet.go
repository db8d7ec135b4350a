// Package wallet resolves the receiving address for a user from the user
// directory.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mmynk/splitpay/internal/models"
	"github.com/mmynk/splitpay/internal/settlement"
)

// ErrInvalidAddress is returned for strings that are not a 0x-prefixed,
// 20-byte hex address.
var ErrInvalidAddress = errors.New("invalid wallet address")

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// UserDirectory is the part of the store the resolver needs.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

var _ settlement.AddressResolver = (*Resolver)(nil)

// Resolver implements settlement.AddressResolver on top of users.wallet_address.
type Resolver struct {
	users UserDirectory
}

// NewResolver creates a Resolver.
func NewResolver(users UserDirectory) *Resolver {
	return &Resolver{users: users}
}

// ResolveRecipientAddress returns the user's wallet address, or an error
// wrapping settlement.ErrAddressNotFound when the user is unknown, has no
// address linked, or has a malformed one.
func (r *Resolver) ResolveRecipientAddress(ctx context.Context, userID string) (string, error) {
	user, err := r.users.GetUserByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to look up user %s: %w", userID, err)
	}
	if user == nil || user.WalletAddress == "" {
		return "", fmt.Errorf("%w: user %s", settlement.ErrAddressNotFound, userID)
	}
	if err := ValidateAddress(user.WalletAddress); err != nil {
		return "", fmt.Errorf("%w: user %s: %v", settlement.ErrAddressNotFound, userID, err)
	}
	return user.WalletAddress, nil
}

// ValidateAddress checks that address is 0x followed by 40 hex digits.
// An empty address is valid; it means no wallet is linked.
func ValidateAddress(address string) error {
	if address == "" {
		return nil
	}
	if !addressPattern.MatchString(address) {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	return nil
}

// Normalize lowercases the hex digits so addresses compare equal
// regardless of checksum casing.
func Normalize(address string) string {
	if len(address) < 2 {
		return address
	}
	return "0x" + strings.ToLower(address[2:])
}
