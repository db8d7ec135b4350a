package calculator

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"
)

var (
	// SettledThreshold is the magnitude at or below which a balance counts as settled.
	SettledThreshold = decimal.New(1, -2)

	// DriftTolerance is how far a group's balance sum may drift from zero
	// before it is reported as inconsistent.
	DriftTolerance = decimal.New(1, -1)

	// ValidationTolerance is the per-participant slack allowed by ValidateSimplification.
	ValidationTolerance = decimal.New(2, -2)
)

// DebtEdge represents a debt from one person to another.
type DebtEdge struct {
	From     string // Person who owes
	FromName string
	To       string // Person who is owed
	ToName   string
	Amount   decimal.Decimal
}

// party is a debtor or creditor with the amount still unmatched (always positive).
type party struct {
	userID    string
	name      string
	remaining decimal.Decimal
}

// BalanceSum returns the sum of all non-settled balances.
// For a consistent group this is ~0.
func BalanceSum(balances []BalanceInput) decimal.Decimal {
	sum := decimal.Zero
	for _, b := range balances {
		if b.Amount.Abs().GreaterThan(SettledThreshold) {
			sum = sum.Add(b.Amount)
		}
	}
	return sum
}

// SimplifyDebts computes a near-minimal set of transfers that settles all balances.
//
// Greedy matching: debtors and creditors are each sorted largest first, and the
// current largest debtor pays the current largest creditor the smaller of the
// two remaining amounts. Whoever reaches zero is advanced, so every iteration
// retires at least one party and the result has at most k-1 transfers for k
// non-zero balances. Amounts are rounded to cents after every step.
func SimplifyDebts(balances []BalanceInput) []DebtEdge {
	var debtors, creditors []*party
	sum := decimal.Zero
	for _, b := range balances {
		if b.Amount.Abs().LessThanOrEqual(SettledThreshold) {
			continue
		}
		sum = sum.Add(b.Amount)
		p := &party{userID: b.UserID, name: b.UserName, remaining: b.Amount.Abs().Round(2)}
		if b.Amount.IsNegative() {
			debtors = append(debtors, p)
		} else {
			creditors = append(creditors, p)
		}
	}

	if len(debtors) == 0 && len(creditors) == 0 {
		return nil
	}

	if sum.Abs().GreaterThan(DriftTolerance) {
		slog.Warn("Balance sum deviates from zero",
			"sum", sum.StringFixed(2),
			"debtors", len(debtors),
			"creditors", len(creditors),
		)
	}

	sortLargestFirst(debtors)
	sortLargestFirst(creditors)

	var transfers []DebtEdge
	di, ci := 0, 0
	for di < len(debtors) && ci < len(creditors) {
		debtor := debtors[di]
		creditor := creditors[ci]

		amount := decimal.Min(debtor.remaining, creditor.remaining).Round(2)
		if amount.GreaterThan(SettledThreshold) {
			transfers = append(transfers, DebtEdge{
				From:     debtor.userID,
				FromName: debtor.name,
				To:       creditor.userID,
				ToName:   creditor.name,
				Amount:   amount,
			})
		}

		debtor.remaining = debtor.remaining.Sub(amount).Round(2)
		creditor.remaining = creditor.remaining.Sub(amount).Round(2)

		if debtor.remaining.LessThan(SettledThreshold) {
			di++
		}
		if creditor.remaining.LessThan(SettledThreshold) {
			ci++
		}
	}

	return transfers
}

func sortLargestFirst(parties []*party) {
	sort.SliceStable(parties, func(i, j int) bool {
		if c := parties[i].remaining.Cmp(parties[j].remaining); c != 0 {
			return c > 0
		}
		return parties[i].userID < parties[j].userID
	})
}

// ValidationError describes one way a set of transfers fails to settle the balances.
type ValidationError struct {
	UserID      string // empty for whole-plan violations
	Description string
}

func (e ValidationError) Error() string {
	if e.UserID == "" {
		return e.Description
	}
	return fmt.Sprintf("user %s: %s", e.UserID, e.Description)
}

// Validation is the outcome of ValidateSimplification.
type Validation struct {
	Valid  bool
	Errors []ValidationError
}

// ValidateSimplification checks that transfers settle balances:
//   - no more than max(nonZero-1, 0) transfers
//   - each participant's transfer net (received minus paid) equals their
//     balance within ValidationTolerance; near-zero balances are skipped
//
// All violations are reported.
func ValidateSimplification(balances []BalanceInput, transfers []DebtEdge) Validation {
	var errs []ValidationError

	nonZero := 0
	for _, b := range balances {
		if b.Amount.Abs().GreaterThan(SettledThreshold) {
			nonZero++
		}
	}
	maxTransfers := max(nonZero-1, 0)
	if len(transfers) > maxTransfers {
		errs = append(errs, ValidationError{
			Description: fmt.Sprintf("too many transfers: %d (max %d)", len(transfers), maxTransfers),
		})
	}

	transferNet := make(map[string]decimal.Decimal)
	for _, t := range transfers {
		transferNet[t.From] = transferNet[t.From].Sub(t.Amount)
		transferNet[t.To] = transferNet[t.To].Add(t.Amount)
	}

	for _, b := range balances {
		actual := transferNet[b.UserID]
		if b.Amount.Sub(actual).Abs().LessThanOrEqual(ValidationTolerance) {
			continue
		}
		if b.Amount.Abs().LessThanOrEqual(SettledThreshold) {
			continue
		}
		errs = append(errs, ValidationError{
			UserID:      b.UserID,
			Description: fmt.Sprintf("expected net %s, got %s", b.Amount.StringFixed(2), actual.StringFixed(2)),
		})
	}

	return Validation{Valid: len(errs) == 0, Errors: errs}
}
