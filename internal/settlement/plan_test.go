package settlement

import (
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitpay/internal/calculator"
	"github.com/mmynk/splitpay/internal/models"
)

func bal(id, amount string) calculator.BalanceInput {
	return calculator.BalanceInput{UserID: id, UserName: strings.ToUpper(id), Amount: decimal.RequireFromString(amount)}
}

func TestComputePlan(t *testing.T) {
	plan := ComputePlan([]calculator.BalanceInput{
		bal("a", "-33.33"),
		bal("b", "-33.33"),
		bal("c", "66.66"),
	})

	require.Equal(t, 2, plan.TransactionCount)
	require.Len(t, plan.Transfers, 2)
	assert.Equal(t, "66.66", plan.TotalAmount.StringFixed(2))
	for _, tr := range plan.Transfers {
		assert.Equal(t, "c", tr.To)
	}

	assert.Len(t, plan.ForDebtor("a"), 1)
	assert.Len(t, plan.ForDebtor("b"), 1)
	assert.Empty(t, plan.ForDebtor("c"))
}

func TestBuildPlanResult(t *testing.T) {
	tests := []struct {
		name      string
		balances  []calculator.BalanceInput
		status    PlanStatus
		transfers int
		warnings  bool
	}{
		{
			name:      "ready",
			balances:  []calculator.BalanceInput{bal("a", "-20"), bal("b", "20")},
			status:    PlanReady,
			transfers: 1,
		},
		{
			name:     "empty",
			balances: []calculator.BalanceInput{bal("a", "0"), bal("b", "0.01")},
			status:   PlanEmpty,
		},
		{
			name:     "no members",
			balances: nil,
			status:   PlanEmpty,
		},
		{
			name:      "inconsistent still plans",
			balances:  []calculator.BalanceInput{bal("a", "-20"), bal("b", "25")},
			status:    PlanInconsistent,
			transfers: 1,
			warnings:  true,
		},
		{
			name:      "drift within tolerance",
			balances:  []calculator.BalanceInput{bal("a", "-20"), bal("b", "20.05")},
			status:    PlanReady,
			transfers: 1,
			// b is left 0.05 short, which validation reports.
			warnings: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := BuildPlanResult(tt.balances)
			assert.Equal(t, tt.status, result.Status, result.Status.String())
			assert.Len(t, result.Plan.Transfers, tt.transfers)
			if tt.warnings {
				assert.NotEmpty(t, result.Warnings)
			} else {
				assert.Empty(t, result.Warnings)
			}
		})
	}
}

func TestPlanStatusString(t *testing.T) {
	assert.Equal(t, "ready", PlanReady.String())
	assert.Equal(t, "empty", PlanEmpty.String())
	assert.Equal(t, "inconsistent", PlanInconsistent.String())
	assert.Equal(t, "PlanStatus(9)", PlanStatus(9).String())
}

func TestGroupBalances(t *testing.T) {
	members := []models.Member{
		{UserID: "u1", DisplayName: "Alice"},
		{UserID: "u2", DisplayName: "Bob"},
	}
	expenses := []models.Expense{
		{
			PaidBy:      "u1",
			TotalAmount: decimal.RequireFromString("40"),
			Splits: []models.ExpenseSplit{
				{UserID: "u1", Amount: decimal.RequireFromString("20")},
				{UserID: "u2", Amount: decimal.RequireFromString("20")},
			},
		},
	}

	balances := GroupBalances(expenses, members)
	require.Len(t, balances, 2)
	assert.Equal(t, "u2", balances[0].UserID)
	assert.Equal(t, "Bob", balances[0].UserName)
	assert.Equal(t, "-20.00", balances[0].Amount.StringFixed(2))
	assert.Equal(t, "20.00", balances[1].Amount.StringFixed(2))
}

func TestBuildSettlementMemo(t *testing.T) {
	tests := []struct {
		name        string
		groupID     string
		description string
		want        string
	}{
		{"short", "0b5c1c9e-77aa", "Ski Trip", "sp|0b5c1c9e|Ski Trip"},
		{"truncated", "0b5c1c9e-77aa", "Roommates at 42 Wallaby Way", "sp|0b5c1c9e|Roommates at 42 Wal"},
		{"short group id", "abc", "Dinner", "sp|abc|Dinner"},
		{"empty description", "0b5c1c9e-77aa", "", "sp|0b5c1c9e|"},
		{"multibyte description", "0b5c1c9e", "Soirée au café de Flore", "sp|0b5c1c9e|Soirée au café de"},
		// The 19-byte budget ends inside é, so the cut backs off to the rune start.
		{"cut inside rune", "0b5c1c9e", strings.Repeat("a", 18) + "éclair", "sp|0b5c1c9e|" + strings.Repeat("a", 18)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildSettlementMemo(tt.groupID, tt.description)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), MaxMemoLen)
			assert.True(t, utf8.ValidString(got))
			assert.Equal(t, got, BuildSettlementMemo(tt.groupID, tt.description), "deterministic")
		})
	}
}

func TestBuildSettlementMemo_NeverSplitsRunes(t *testing.T) {
	desc := strings.Repeat("€", 20)
	memo := BuildSettlementMemo("12345678", desc)
	assert.True(t, utf8.ValidString(memo))
	assert.LessOrEqual(t, len(memo), MaxMemoLen)
	// 19 bytes of budget fit six 3-byte euro signs.
	assert.Equal(t, "sp|12345678|"+strings.Repeat("€", 6), memo)
}

func TestEncodeMemo(t *testing.T) {
	memo := BuildSettlementMemo("0b5c1c9e", "Ski Trip")
	b := EncodeMemo(memo)

	assert.Equal(t, memo, string(b[:len(memo)]))
	for _, c := range b[len(memo):] {
		assert.Zero(t, c)
	}
	assert.Equal(t, memo, DecodeMemo(b))

	long := EncodeMemo(strings.Repeat("x", 40))
	assert.Equal(t, strings.Repeat("x", MemoSize), DecodeMemo(long))
}

func TestToTokenUnits(t *testing.T) {
	tests := []struct {
		amount   string
		decimals int32
		want     string
	}{
		{"20", 6, "20000000"},
		{"33.33", 6, "33330000"},
		{"0.01", 6, "10000"},
		{"1.2345678", 6, "1234567"},
		{"12.34", 2, "1234"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			units := ToTokenUnits(decimal.RequireFromString(tt.amount), tt.decimals)
			assert.Equal(t, tt.want, units.String())
		})
	}

	back := FromTokenUnits(ToTokenUnits(decimal.RequireFromString("66.66"), 6), 6)
	assert.Equal(t, "66.66", back.StringFixed(2))
}

func TestKeyedLocker(t *testing.T) {
	var l KeyedLocker

	unlock, ok := l.TryLock("g/u")
	require.True(t, ok)
	assert.True(t, l.Held("g/u"))

	_, ok = l.TryLock("g/u")
	assert.False(t, ok, "same key is exclusive")

	unlockOther, ok := l.TryLock("g/v")
	require.True(t, ok, "different keys are independent")
	unlockOther()

	unlock()
	unlock() // idempotent
	assert.False(t, l.Held("g/u"))

	unlock, ok = l.TryLock("g/u")
	require.True(t, ok)
	unlock()
}

func TestKeyedLocker_Concurrent(t *testing.T) {
	var (
		l        KeyedLocker
		attempts sync.WaitGroup
		done     sync.WaitGroup
		mu       sync.Mutex
		winners  int
	)
	release := make(chan struct{})

	const workers = 16
	attempts.Add(workers)
	done.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer done.Done()
			unlock, ok := l.TryLock(settleKey("g", "u"))
			attempts.Done()
			if !ok {
				return
			}
			mu.Lock()
			winners++
			mu.Unlock()
			<-release
			unlock()
		}()
	}

	attempts.Wait()
	close(release)
	done.Wait()
	assert.Equal(t, 1, winners)
	assert.False(t, l.Held(settleKey("g", "u")))
}
