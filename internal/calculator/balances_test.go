package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func balanceOf(t *testing.T, balances []BalanceInput, userID string) BalanceInput {
	t.Helper()
	for _, b := range balances {
		if b.UserID == userID {
			return b
		}
	}
	t.Fatalf("no balance for %s", userID)
	return BalanceInput{}
}

func TestCalculateGroupBalances(t *testing.T) {
	members := []MemberForBalance{
		{UserID: "alice", Name: "Alice"},
		{UserID: "bob", Name: "Bob"},
		{UserID: "charlie", Name: "Charlie"},
	}

	t.Run("payer credited and split owners debited", func(t *testing.T) {
		expenses := []ExpenseForBalance{
			{
				PaidBy:      "alice",
				TotalAmount: dec("30"),
				Splits: []SplitForBalance{
					{UserID: "alice", Amount: dec("10")},
					{UserID: "bob", Amount: dec("10")},
					{UserID: "charlie", Amount: dec("10")},
				},
			},
		}

		balances := CalculateGroupBalances(expenses, members)
		require.Len(t, balances, 3)
		assert.Equal(t, "20.00", balanceOf(t, balances, "alice").Amount.StringFixed(2))
		assert.Equal(t, "-10.00", balanceOf(t, balances, "bob").Amount.StringFixed(2))
		assert.Equal(t, "-10.00", balanceOf(t, balances, "charlie").Amount.StringFixed(2))
		assert.True(t, BalanceSum(balances).IsZero())
	})

	t.Run("settled splits are skipped", func(t *testing.T) {
		expenses := []ExpenseForBalance{
			{
				PaidBy:      "alice",
				TotalAmount: dec("20"),
				Splits: []SplitForBalance{
					{UserID: "alice", Amount: dec("10")},
					{UserID: "bob", Amount: dec("10"), IsSettled: true},
				},
			},
		}

		balances := CalculateGroupBalances(expenses, members)
		assert.Equal(t, "10.00", balanceOf(t, balances, "alice").Amount.StringFixed(2))
		assert.True(t, balanceOf(t, balances, "bob").Amount.IsZero())
	})

	t.Run("members without expenses appear at zero", func(t *testing.T) {
		balances := CalculateGroupBalances(nil, members)
		require.Len(t, balances, 3)
		for _, b := range balances {
			assert.True(t, b.Amount.IsZero(), b.UserID)
		}
	})

	t.Run("non-members are labelled unknown", func(t *testing.T) {
		expenses := []ExpenseForBalance{
			{
				PaidBy:      "alice",
				TotalAmount: dec("10"),
				Splits:      []SplitForBalance{{UserID: "ghost", Amount: dec("10")}},
			},
		}

		balances := CalculateGroupBalances(expenses, members)
		require.Len(t, balances, 4)
		ghost := balanceOf(t, balances, "ghost")
		assert.Equal(t, UnknownMemberName, ghost.UserName)
		assert.Equal(t, "-10.00", ghost.Amount.StringFixed(2))
	})

	t.Run("sorted largest debtor first", func(t *testing.T) {
		expenses := []ExpenseForBalance{
			{
				PaidBy:      "charlie",
				TotalAmount: dec("50"),
				Splits: []SplitForBalance{
					{UserID: "alice", Amount: dec("35")},
					{UserID: "bob", Amount: dec("15")},
				},
			},
		}

		balances := CalculateGroupBalances(expenses, members)
		require.Len(t, balances, 3)
		assert.Equal(t, "alice", balances[0].UserID)
		assert.Equal(t, "bob", balances[1].UserID)
		assert.Equal(t, "charlie", balances[2].UserID)
	})

	t.Run("amounts rounded to cents", func(t *testing.T) {
		expenses := []ExpenseForBalance{
			{
				PaidBy:      "alice",
				TotalAmount: dec("10.004"),
				Splits:      []SplitForBalance{{UserID: "bob", Amount: dec("10.004")}},
			},
		}

		balances := CalculateGroupBalances(expenses, members)
		assert.Equal(t, "10.00", balanceOf(t, balances, "alice").Amount.StringFixed(2))
		assert.Equal(t, "-10.00", balanceOf(t, balances, "bob").Amount.StringFixed(2))
	})
}
