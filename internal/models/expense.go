package models

import "github.com/shopspring/decimal"

// Expense is a shared cost logged by a group member.
// Immutable once created, except for the settlement state of its splits.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group that owns this expense.
	GroupID string

	// PaidBy is the user ID of the member who fronted the money.
	PaidBy string

	// Title is a short label (e.g., "Dinner at Luigi's").
	Title string

	// Description is optional free text.
	Description string

	// TotalAmount is the full amount paid.
	TotalAmount decimal.Decimal

	// Currency is an ISO code; only "USD" is used today.
	Currency string

	// Splits are each member's share of TotalAmount.
	Splits []ExpenseSplit

	// CreatedAt is the Unix timestamp when the expense was logged.
	CreatedAt int64
}

// ExpenseSplit is one member's share of one expense.
type ExpenseSplit struct {
	ID        string
	ExpenseID string
	UserID    string
	Amount    decimal.Decimal

	// IsSettled flips to true exactly once, when a settlement covering
	// this user's debt in the group completes.
	IsSettled     bool
	SettledTxHash string
	SettledAt     int64
}
