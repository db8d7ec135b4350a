// Package settlement turns group balances into a settlement plan and drives
// the transfers that pay it off.
package settlement

import (
	"fmt"

	"github.com/mmynk/splitpay/internal/calculator"
	"github.com/mmynk/splitpay/internal/models"
	"github.com/shopspring/decimal"
)

// Plan is the presentation-ready shape of a simplified set of transfers.
// Derived on demand, never persisted.
type Plan struct {
	Transfers        []calculator.DebtEdge
	TotalAmount      decimal.Decimal
	TransactionCount int
}

// ComputePlan simplifies balances into transfers and totals them.
func ComputePlan(balances []calculator.BalanceInput) Plan {
	transfers := calculator.SimplifyDebts(balances)
	total := decimal.Zero
	for _, t := range transfers {
		total = total.Add(t.Amount)
	}
	return Plan{
		Transfers:        transfers,
		TotalAmount:      total.Round(2),
		TransactionCount: len(transfers),
	}
}

// ForDebtor returns the transfers the given user has to pay.
func (p Plan) ForDebtor(userID string) []calculator.DebtEdge {
	var out []calculator.DebtEdge
	for _, t := range p.Transfers {
		if t.From == userID {
			out = append(out, t)
		}
	}
	return out
}

// PlanStatus tags a PlanResult.
type PlanStatus int

const (
	// PlanReady means there is at least one transfer to make.
	PlanReady PlanStatus = iota
	// PlanEmpty means every balance is already settled.
	PlanEmpty
	// PlanInconsistent means the balances do not sum to zero. The plan is
	// still computed from the data as given.
	PlanInconsistent
)

func (s PlanStatus) String() string {
	switch s {
	case PlanReady:
		return "ready"
	case PlanEmpty:
		return "empty"
	case PlanInconsistent:
		return "inconsistent"
	default:
		return fmt.Sprintf("PlanStatus(%d)", int(s))
	}
}

// PlanResult is the outcome of planning a group's settlement.
type PlanResult struct {
	Status   PlanStatus
	Plan     Plan
	Warnings []string

	// Validation is the simplifier self-check; it is informational and
	// never blocks execution.
	Validation calculator.Validation
}

// BuildPlanResult computes the plan for balances and classifies it.
func BuildPlanResult(balances []calculator.BalanceInput) PlanResult {
	plan := ComputePlan(balances)
	result := PlanResult{
		Status:     PlanReady,
		Plan:       plan,
		Validation: calculator.ValidateSimplification(balances, plan.Transfers),
	}

	if sum := calculator.BalanceSum(balances); sum.Abs().GreaterThan(calculator.DriftTolerance) {
		result.Status = PlanInconsistent
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("balances sum to %s instead of zero", sum.StringFixed(2)))
	} else if plan.TransactionCount == 0 {
		result.Status = PlanEmpty
	}

	for _, e := range result.Validation.Errors {
		result.Warnings = append(result.Warnings, e.Error())
	}
	return result
}

// GroupBalances computes each member's balance from stored expenses.
func GroupBalances(expenses []models.Expense, members []models.Member) []calculator.BalanceInput {
	in := make([]calculator.ExpenseForBalance, 0, len(expenses))
	for _, e := range expenses {
		splits := make([]calculator.SplitForBalance, 0, len(e.Splits))
		for _, s := range e.Splits {
			splits = append(splits, calculator.SplitForBalance{
				UserID:    s.UserID,
				Amount:    s.Amount,
				IsSettled: s.IsSettled,
			})
		}
		in = append(in, calculator.ExpenseForBalance{
			PaidBy:      e.PaidBy,
			TotalAmount: e.TotalAmount,
			Splits:      splits,
		})
	}

	mem := make([]calculator.MemberForBalance, 0, len(members))
	for _, m := range members {
		mem = append(mem, calculator.MemberForBalance{UserID: m.UserID, Name: m.DisplayName})
	}

	return calculator.CalculateGroupBalances(in, mem)
}
