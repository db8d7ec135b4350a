package settlement

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"

	"github.com/mmynk/splitpay/internal/models"
	"github.com/shopspring/decimal"
)

// ErrAddressNotFound is returned by an AddressResolver when the user has no
// receiving address.
var ErrAddressNotFound = errors.New("recipient address not found")

// Store is the persistence the executor reads balances from and writes
// settlement state to.
type Store interface {
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	ListGroupMembers(ctx context.Context, groupID string) ([]models.Member, error)
	ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error)

	// CreateSettlement appends an audit record. ID and CreatedAt are
	// assigned by the store.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// MarkSplitsSettled flips every unsettled split owned by userID in the
	// group to settled, stamping txHash. Already settled splits are left
	// alone. Returns the number of splits changed.
	MarkSplitsSettled(ctx context.Context, groupID, userID, txHash string) (int64, error)

	// LastSplitSettlement returns the latest settled_at among the user's
	// settled splits in the group, or 0.
	LastSplitSettlement(ctx context.Context, groupID, userID string) (int64, error)

	ListSettlementsByGroup(ctx context.Context, groupID string) ([]models.Settlement, error)
}

// AddressResolver maps a user to the address payments to them are sent to.
type AddressResolver interface {
	ResolveRecipientAddress(ctx context.Context, userID string) (string, error)
}

// Transfer is one payment handed to a PaymentExecutor.
type Transfer struct {
	To     string
	Amount decimal.Decimal
	Memo   [MemoSize]byte
}

// PaymentExecutor submits a transfer and blocks until it is confirmed or
// rejected, returning the transaction hash.
type PaymentExecutor interface {
	SubmitTransfer(ctx context.Context, transfer Transfer) (string, error)
}
