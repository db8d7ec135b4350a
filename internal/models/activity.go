package models

import "github.com/shopspring/decimal"

// ActivityType enumerates group feed entries.
type ActivityType string

const (
	ActivityGroupCreated ActivityType = "group_created"
	ActivityExpenseAdded ActivityType = "expense_added"
	ActivitySettlement   ActivityType = "settlement"
)

// Activity is one entry in a group's feed.
type Activity struct {
	ID      string
	GroupID string
	ActorID string
	Type    ActivityType

	// Title carries the expense title or group name, depending on Type.
	Title string

	// Amount and TxHash are set for expenses and settlements.
	Amount decimal.Decimal
	TxHash string

	// Counterparty is the receiving user for settlements.
	Counterparty string

	CreatedAt int64
}
