package models

import "github.com/shopspring/decimal"

// SettlementStatus is the state recorded on a settlement audit record.
type SettlementStatus string

// SettlementCompleted is the only status written today: records are
// appended after the transfer is confirmed.
const SettlementCompleted SettlementStatus = "completed"

// Settlement is an append-only audit record of a confirmed transfer
// between group members. Never mutated after insert.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to.
	GroupID string

	// FromUserID is the user who paid (debtor settling up).
	FromUserID string

	// ToUserID is the user who received payment (creditor being paid).
	ToUserID string

	// Amount is the payment amount.
	Amount decimal.Decimal

	// TxHash is the on-chain transaction hash of the transfer.
	TxHash string

	// Memo is the on-chain memo the transfer carried.
	Memo string

	Status SettlementStatus

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64
}
