package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitpay/internal/calculator"
	"github.com/mmynk/splitpay/internal/models"
	"github.com/mmynk/splitpay/internal/storage"
	"github.com/mmynk/splitpay/pkg/api"
)

var (
	errSharesMismatch   = errors.New("split amounts must add up to the total")
	errNotParticipant   = errors.New("user is not a member of this group")
	errNonPositiveTotal = errors.New("total amount must be positive")
)

var _ api.ExpenseServiceHandler = (*ExpenseService)(nil)

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	store storage.Store
}

// NewExpenseService creates a new ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

// CreateExpense logs a shared cost and divides it among members.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	group, userID, err := memberGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	slog.Info("CreateExpense request received",
		"group_id", group.ID,
		"title", req.Msg.Title,
		"total", req.Msg.TotalAmount.StringFixed(2),
		"mode", req.Msg.Mode,
	)

	payer := req.Msg.PaidBy
	if payer == "" {
		payer = userID
	}
	if !group.HasMember(payer) {
		return nil, invalidArgument(fmt.Errorf("payer %s: %w", payer, errNotParticipant))
	}

	shares, err := computeShares(group, req.Msg)
	if err != nil {
		slog.Warn("CreateExpense rejected", "group_id", group.ID, "error", err)
		return nil, err
	}

	expense := &models.Expense{
		GroupID:     group.ID,
		PaidBy:      payer,
		Title:       req.Msg.Title,
		Description: req.Msg.Description,
		TotalAmount: req.Msg.TotalAmount.Round(2),
	}
	for _, sh := range shares {
		if sh.Amount.IsZero() {
			continue
		}
		expense.Splits = append(expense.Splits, models.ExpenseSplit{UserID: sh.UserID, Amount: sh.Amount})
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("CreateExpense failed", "group_id", group.ID, "error", err)
		return nil, connectError(err)
	}
	slog.Info("Expense created",
		"expense_id", expense.ID,
		"group_id", group.ID,
		"splits", len(expense.Splits),
	)

	return connect.NewResponse(&api.CreateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// computeShares divides the request total per its mode. Shares come back
// in participant order and always sum to the rounded total.
func computeShares(group *models.Group, msg *api.CreateExpenseRequest) ([]api.ExactShare, error) {
	total := msg.TotalAmount.Round(2)
	if !total.IsPositive() {
		return nil, invalidArgument(errNonPositiveTotal)
	}

	participants := msg.Participants
	if len(participants) == 0 && msg.Mode != api.SplitExact {
		for _, m := range group.Members {
			participants = append(participants, m.UserID)
		}
	}
	for _, p := range participants {
		if !group.HasMember(p) {
			return nil, invalidArgument(fmt.Errorf("participant %s: %w", p, errNotParticipant))
		}
	}

	switch msg.Mode {
	case api.SplitEqual:
		amounts, err := calculator.SplitEqually(total, participants)
		if err != nil {
			return nil, connectError(err)
		}
		return sharesInOrder(participants, amounts), nil

	case api.SplitExact:
		if len(msg.Shares) == 0 {
			return nil, connectError(calculator.ErrNoParticipants)
		}
		sum := decimal.Zero
		seen := make(map[string]bool, len(msg.Shares))
		out := make([]api.ExactShare, 0, len(msg.Shares))
		for _, sh := range msg.Shares {
			if !group.HasMember(sh.UserID) {
				return nil, invalidArgument(fmt.Errorf("share for %s: %w", sh.UserID, errNotParticipant))
			}
			if seen[sh.UserID] {
				return nil, connectError(calculator.ErrDuplicatePerson)
			}
			seen[sh.UserID] = true
			amount := sh.Amount.Round(2)
			if amount.IsNegative() {
				return nil, connectError(calculator.ErrNegativeAmount)
			}
			sum = sum.Add(amount)
			out = append(out, api.ExactShare{UserID: sh.UserID, Amount: amount})
		}
		if !sum.Equal(total) {
			return nil, invalidArgument(fmt.Errorf("%w: shares sum to %s, total is %s",
				errSharesMismatch, sum.StringFixed(2), total.StringFixed(2)))
		}
		return out, nil

	case api.SplitItemized:
		items := make([]calculator.Item, len(msg.Items))
		for i, it := range msg.Items {
			for _, p := range it.AssignedTo {
				if !contains(participants, p) {
					return nil, invalidArgument(fmt.Errorf("item %q assigned to %s: %w", it.Description, p, errNotParticipant))
				}
			}
			items[i] = calculator.Item{Description: it.Description, Amount: it.Amount, AssignedTo: it.AssignedTo}
		}
		subtotal := msg.Subtotal
		if subtotal.IsZero() {
			for _, it := range msg.Items {
				subtotal = subtotal.Add(it.Amount)
			}
		}
		splits, err := calculator.CalculateSplit(items, total, subtotal, participants)
		if err != nil {
			return nil, connectError(err)
		}
		amounts := make(map[string]decimal.Decimal, len(splits))
		for p, sp := range splits {
			amounts[p] = sp.Total
		}
		return sharesInOrder(participants, amounts), nil
	}

	return nil, invalidArgument(fmt.Errorf("unknown split mode %q", msg.Mode))
}

func sharesInOrder(participants []string, amounts map[string]decimal.Decimal) []api.ExactShare {
	out := make([]api.ExactShare, 0, len(participants))
	for _, p := range participants {
		out = append(out, api.ExactShare{UserID: p, Amount: amounts[p]})
	}
	return out
}

func contains(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func invalidArgument(err error) error {
	return connect.NewError(connect.CodeInvalidArgument, err)
}

// GetExpense retrieves an expense with its splits.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	expense, err := s.store.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, connectError(err)
	}
	if _, _, err := memberGroup(ctx, s.store, expense.GroupID); err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GetExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// ListExpenses lists a group's expenses, oldest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	group, _, err := memberGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.store.ListExpensesByGroup(ctx, group.ID)
	if err != nil {
		return nil, connectError(err)
	}
	out := make([]api.Expense, len(expenses))
	for i := range expenses {
		out[i] = toAPIExpense(&expenses[i])
	}
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: out}), nil
}
