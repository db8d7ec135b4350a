package calculator

import (
	"sort"

	"github.com/shopspring/decimal"
)

// UnknownMemberName labels balances for users missing from the member list.
const UnknownMemberName = "Unknown"

// ExpenseForBalance represents an expense with the minimal information needed for balance calculations.
type ExpenseForBalance struct {
	PaidBy      string
	TotalAmount decimal.Decimal
	Splits      []SplitForBalance
}

// SplitForBalance is one member's share of an expense.
type SplitForBalance struct {
	UserID    string
	Amount    decimal.Decimal
	IsSettled bool
}

// MemberForBalance identifies a group member and the name shown next to their balance.
type MemberForBalance struct {
	UserID string
	Name   string
}

// BalanceInput is one member's signed net balance.
// Positive = owed money (creditor), negative = owes money (debtor).
type BalanceInput struct {
	UserID   string
	UserName string
	Amount   decimal.Decimal
}

// CalculateGroupBalances derives each member's net balance from a group's expenses.
//
// Algorithm:
// - every member starts at 0
// - the payer of each expense is credited the full total (they fronted the money)
// - each unsettled split debits its owner; settled splits were already paid
// off by a settlement and are skipped
//
// The result is sorted ascending by amount (largest debtor first). The order
// is for display only.
func CalculateGroupBalances(expenses []ExpenseForBalance, members []MemberForBalance) []BalanceInput {
	net := make(map[string]decimal.Decimal, len(members))
	names := make(map[string]string, len(members))
	for _, m := range members {
		net[m.UserID] = decimal.Zero
		names[m.UserID] = m.Name
	}

	for _, expense := range expenses {
		net[expense.PaidBy] = net[expense.PaidBy].Add(expense.TotalAmount)

		for _, split := range expense.Splits {
			if split.IsSettled {
				continue
			}
			net[split.UserID] = net[split.UserID].Sub(split.Amount)
		}
	}

	balances := make([]BalanceInput, 0, len(net))
	for userID, amount := range net {
		name, ok := names[userID]
		if !ok {
			name = UnknownMemberName
		}
		balances = append(balances, BalanceInput{
			UserID:   userID,
			UserName: name,
			Amount:   amount.Round(2),
		})
	}

	sort.Slice(balances, func(i, j int) bool {
		if c := balances[i].Amount.Cmp(balances[j].Amount); c != 0 {
			return c < 0
		}
		return balances[i].UserID < balances[j].UserID
	})

	return balances
}
