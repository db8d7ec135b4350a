// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitpay/internal/models"
)

var (
	// ErrNotFound is wrapped by stores when a group, expense or membership
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyMember is returned when adding a user to a group twice.
	ErrAlreadyMember = errors.New("user is already a member of this group")
)

// Store defines the interface for splitpay storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateUser inserts a new user. The caller assigns ID and timestamps.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail and GetUserByID return nil, nil when no user matches.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUsersByIDs returns the users that exist, keyed by ID.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	UpdateWalletAddress(ctx context.Context, userID, address string) error

	// CreateGroup persists a group and its members. The creator is added as
	// owner if not listed. ID and timestamps are assigned by the store.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup returns the group with its members.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)
	ListGroupMembers(ctx context.Context, groupID string) ([]models.Member, error)
	AddGroupMember(ctx context.Context, groupID, userID string, role models.Role) error
	RemoveGroupMember(ctx context.Context, groupID, userID string) error

	// CreateExpense persists an expense and its splits in one transaction and
	// logs an expense_added activity. IDs and CreatedAt are assigned by the store.
	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)
	ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error)

	// MarkSplitsSettled settles the user's unsettled splits in the group.
	// Only rows with is_settled = 0 change, so a split settles at most once.
	MarkSplitsSettled(ctx context.Context, groupID, userID, txHash string) (int64, error)
	LastSplitSettlement(ctx context.Context, groupID, userID string) (int64, error)

	// CreateSettlement appends an audit record and a settlement activity.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]models.Settlement, error)

	// ListActivity returns the group's feed, newest first. limit <= 0 means all.
	ListActivity(ctx context.Context, groupID string, limit int) ([]models.Activity, error)

	// Close releases any resources held by the store.
	Close() error
}
