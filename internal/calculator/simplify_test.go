package calculator

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func balance(id, name, amount string) BalanceInput {
	return BalanceInput{UserID: id, UserName: name, Amount: dec(amount)}
}

func TestSimplifyDebts(t *testing.T) {
	tests := []struct {
		name         string
		balances     []BalanceInput
		maxTransfers int
		exact        bool
	}{
		{
			name: "simple 2-person",
			balances: []BalanceInput{
				balance("a", "Alice", "-20"),
				balance("b", "Bob", "20"),
			},
			maxTransfers: 1,
			exact:        true,
		},
		{
			name: "3-person chain",
			balances: []BalanceInput{
				balance("a", "Alice", "-25"),
				balance("b", "Bob", "5"),
				balance("c", "Charlie", "20"),
			},
			maxTransfers: 2,
		},
		{
			name: "5-person complex",
			balances: []BalanceInput{
				balance("a", "Alice", "-40"),
				balance("b", "Bob", "-10"),
				balance("c", "Charlie", "25"),
				balance("d", "Diana", "15"),
				balance("e", "Eve", "10"),
			},
			maxTransfers: 4,
		},
		{
			name: "all settled",
			balances: []BalanceInput{
				balance("a", "Alice", "0"),
				balance("b", "Bob", "0"),
			},
			maxTransfers: 0,
			exact:        true,
		},
		{
			name: "1 debtor, 3 creditors",
			balances: []BalanceInput{
				balance("a", "Alice", "-30"),
				balance("b", "Bob", "10"),
				balance("c", "Charlie", "10"),
				balance("d", "Diana", "10"),
			},
			maxTransfers: 3,
			exact:        true,
		},
		{
			name: "restaurant decimal split",
			balances: []BalanceInput{
				balance("a", "Alice", "-33.33"),
				balance("b", "Bob", "-33.33"),
				balance("c", "Charlie", "66.66"),
			},
			maxTransfers: 2,
			exact:        true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transfers := SimplifyDebts(tt.balances)

			if tt.exact {
				assert.Len(t, transfers, tt.maxTransfers)
			} else {
				assert.LessOrEqual(t, len(transfers), tt.maxTransfers)
			}

			v := ValidateSimplification(tt.balances, transfers)
			assert.True(t, v.Valid, "validation errors: %v", v.Errors)
		})
	}
}

func TestSimplifyDebts_Order(t *testing.T) {
	t.Run("largest debtor pays largest creditor first", func(t *testing.T) {
		transfers := SimplifyDebts([]BalanceInput{
			balance("a", "Alice", "-40"),
			balance("b", "Bob", "-10"),
			balance("c", "Charlie", "25"),
			balance("d", "Diana", "15"),
			balance("e", "Eve", "10"),
		})

		require.Len(t, transfers, 3)
		assert.Equal(t, "a", transfers[0].From)
		assert.Equal(t, "c", transfers[0].To)
		assert.Equal(t, "25.00", transfers[0].Amount.StringFixed(2))
		assert.Equal(t, "a", transfers[1].From)
		assert.Equal(t, "d", transfers[1].To)
		assert.Equal(t, "15.00", transfers[1].Amount.StringFixed(2))
		assert.Equal(t, "b", transfers[2].From)
		assert.Equal(t, "e", transfers[2].To)
		assert.Equal(t, "10.00", transfers[2].Amount.StringFixed(2))
	})

	t.Run("ties broken by user id", func(t *testing.T) {
		transfers := SimplifyDebts([]BalanceInput{
			balance("d", "Diana", "10"),
			balance("a", "Alice", "-30"),
			balance("c", "Charlie", "10"),
			balance("b", "Bob", "10"),
		})

		require.Len(t, transfers, 3)
		assert.Equal(t, []string{"b", "c", "d"}, []string{transfers[0].To, transfers[1].To, transfers[2].To})
		for _, tr := range transfers {
			assert.Equal(t, "Alice", tr.FromName)
		}
	})

	t.Run("names carried onto edges", func(t *testing.T) {
		transfers := SimplifyDebts([]BalanceInput{
			balance("a", "Alice", "-20"),
			balance("b", "Bob", "20"),
		})

		require.Len(t, transfers, 1)
		assert.Equal(t, DebtEdge{From: "a", FromName: "Alice", To: "b", ToName: "Bob", Amount: transfers[0].Amount}, transfers[0])
		assert.Equal(t, "20.00", transfers[0].Amount.StringFixed(2))
	})
}

func TestSimplifyDebts_EdgeCases(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, SimplifyDebts(nil))
	})

	t.Run("balances within a cent are ignored", func(t *testing.T) {
		transfers := SimplifyDebts([]BalanceInput{
			balance("a", "Alice", "-0.01"),
			balance("b", "Bob", "0.01"),
		})
		assert.Empty(t, transfers)
	})

	t.Run("only creditors", func(t *testing.T) {
		transfers := SimplifyDebts([]BalanceInput{
			balance("a", "Alice", "5"),
			balance("b", "Bob", "7"),
		})
		assert.Empty(t, transfers)
	})

	t.Run("drift is logged and still planned", func(t *testing.T) {
		var buf bytes.Buffer
		prev := slog.Default()
		slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
		t.Cleanup(func() { slog.SetDefault(prev) })

		transfers := SimplifyDebts([]BalanceInput{
			balance("a", "Alice", "-20"),
			balance("b", "Bob", "25"),
		})

		require.Len(t, transfers, 1)
		assert.Equal(t, "20.00", transfers[0].Amount.StringFixed(2))
		assert.Contains(t, buf.String(), "Balance sum deviates from zero")
	})

	t.Run("balanced input does not warn", func(t *testing.T) {
		var buf bytes.Buffer
		prev := slog.Default()
		slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
		t.Cleanup(func() { slog.SetDefault(prev) })

		SimplifyDebts([]BalanceInput{
			balance("a", "Alice", "-20"),
			balance("b", "Bob", "20.05"),
		})
		assert.Empty(t, buf.String())
	})
}

func TestValidateSimplification(t *testing.T) {
	balances := []BalanceInput{
		balance("a", "Alice", "-30"),
		balance("b", "Bob", "10"),
		balance("c", "Charlie", "20"),
	}

	t.Run("valid plan", func(t *testing.T) {
		v := ValidateSimplification(balances, []DebtEdge{
			{From: "a", To: "c", Amount: dec("20")},
			{From: "a", To: "b", Amount: dec("10")},
		})
		assert.True(t, v.Valid)
		assert.Empty(t, v.Errors)
	})

	t.Run("rounding slack tolerated", func(t *testing.T) {
		v := ValidateSimplification(balances, []DebtEdge{
			{From: "a", To: "c", Amount: dec("19.99")},
			{From: "a", To: "b", Amount: dec("10.01")},
		})
		assert.True(t, v.Valid, "%v", v.Errors)
	})

	t.Run("too many transfers", func(t *testing.T) {
		v := ValidateSimplification(balances, []DebtEdge{
			{From: "a", To: "c", Amount: dec("10")},
			{From: "a", To: "c", Amount: dec("10")},
			{From: "a", To: "b", Amount: dec("10")},
		})
		assert.False(t, v.Valid)
		require.Len(t, v.Errors, 1)
		assert.Empty(t, v.Errors[0].UserID)
		assert.Contains(t, v.Errors[0].Error(), "too many transfers: 3 (max 2)")
	})

	t.Run("every mismatch reported", func(t *testing.T) {
		v := ValidateSimplification(balances, []DebtEdge{
			{From: "a", To: "b", Amount: dec("10")},
		})
		assert.False(t, v.Valid)
		require.Len(t, v.Errors, 2)
		assert.Equal(t, "a", v.Errors[0].UserID)
		assert.Equal(t, "c", v.Errors[1].UserID)
		assert.Equal(t, "user c: expected net 20.00, got 0.00", v.Errors[1].Error())
	})

	t.Run("settled members may be absent from transfers", func(t *testing.T) {
		v := ValidateSimplification([]BalanceInput{
			balance("a", "Alice", "-10"),
			balance("b", "Bob", "10"),
			balance("z", "Zed", "0.01"),
		}, []DebtEdge{{From: "a", To: "b", Amount: dec("10")}})
		assert.True(t, v.Valid, "%v", v.Errors)
	})
}

// randomBalances builds a zero-sum set of cent-precision balances.
func randomBalances(f *gofakeit.Faker, n int) []BalanceInput {
	balances := make([]BalanceInput, n)
	var sum int64
	for i := 0; i < n-1; i++ {
		cents := int64(f.IntRange(-50000, 50000))
		sum += cents
		balances[i] = BalanceInput{
			UserID:   fmt.Sprintf("user-%02d", i),
			UserName: f.FirstName(),
			Amount:   decimal.New(cents, -2),
		}
	}
	balances[n-1] = BalanceInput{
		UserID:   fmt.Sprintf("user-%02d", n-1),
		UserName: f.FirstName(),
		Amount:   decimal.New(-sum, -2),
	}
	return balances
}

func TestSimplifyDebts_Properties(t *testing.T) {
	f := gofakeit.New(42)

	for round := 0; round < 200; round++ {
		n := f.IntRange(2, 12)
		balances := randomBalances(f, n)

		nonZero := 0
		for _, b := range balances {
			if b.Amount.Abs().GreaterThan(SettledThreshold) {
				nonZero++
			}
		}

		transfers := SimplifyDebts(balances)

		v := ValidateSimplification(balances, transfers)
		require.True(t, v.Valid, "round %d: %v", round, v.Errors)
		require.LessOrEqual(t, len(transfers), max(nonZero-1, 0), "round %d", round)

		for _, tr := range transfers {
			require.True(t, tr.Amount.GreaterThan(SettledThreshold), "round %d: transfer %s too small", round, tr.Amount)
			require.True(t, tr.Amount.Equal(tr.Amount.Round(2)), "round %d: %s not in cents", round, tr.Amount)
			require.NotEqual(t, tr.From, tr.To)
		}
	}
}

func TestSimplifyDebts_Deterministic(t *testing.T) {
	f := gofakeit.New(7)
	balances := randomBalances(f, 10)

	reversed := make([]BalanceInput, len(balances))
	for i, b := range balances {
		reversed[len(balances)-1-i] = b
	}

	first := SimplifyDebts(balances)
	second := SimplifyDebts(reversed)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].From, second[i].From)
		assert.Equal(t, first[i].To, second[i].To)
		assert.True(t, first[i].Amount.Equal(second[i].Amount))
	}
}
