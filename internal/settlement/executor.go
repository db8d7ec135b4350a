package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/splitpay/internal/calculator"
	"github.com/mmynk/splitpay/internal/metrics"
	"github.com/mmynk/splitpay/internal/models"
	"github.com/shopspring/decimal"
)

var (
	// ErrSettlementInProgress is returned when the same user is already
	// settling in the same group.
	ErrSettlementInProgress = errors.New("settlement already in progress")

	// ErrUnreconciledTransfers is returned when transfers from a previous
	// batch were recorded but the user's splits were never marked settled.
	// The remaining legs must be retried instead of re-planned.
	ErrUnreconciledTransfers = errors.New("previous settlement batch is incomplete")

	ErrForeignTransfer  = errors.New("transfer is not owed by this user")
	ErrRetryExceedsDebt = errors.New("retried transfers exceed the outstanding balance")
	ErrAlreadyRecorded  = errors.New("transaction already recorded")
	ErrInvalidAmount    = errors.New("amount must be positive")
)

// Executor pays one user's share of a group's settlement plan.
type Executor struct {
	store    Store
	resolver AddressResolver
	payments PaymentExecutor
	locks    KeyedLocker
}

// NewExecutor creates an Executor.
func NewExecutor(store Store, resolver AddressResolver, payments PaymentExecutor) *Executor {
	return &Executor{
		store:    store,
		resolver: resolver,
		payments: payments,
	}
}

// Settle recomputes the group's plan and pays every transfer userID owes,
// one at a time. Every leg is attempted: legs whose creditor has no address
// are skipped and rejected submissions are reported as failed. The user's
// splits are marked settled only when all legs succeed.
//
// A returned error means the batch stopped on a persistence failure; the
// report is still returned and holds the transaction hash that must be
// reconciled.
func (e *Executor) Settle(ctx context.Context, groupID, userID string) (*BatchReport, error) {
	unlock, ok := e.locks.TryLock(settleKey(groupID, userID))
	if !ok {
		metrics.ObserveBatch("in_progress")
		return nil, ErrSettlementInProgress
	}
	defer unlock()

	if err := e.checkReconciled(ctx, groupID, userID); err != nil {
		return nil, err
	}

	group, err := e.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	result, err := e.plan(ctx, groupID)
	if err != nil {
		return nil, err
	}

	report := &BatchReport{
		GroupID:    groupID,
		UserID:     userID,
		Memo:       BuildSettlementMemo(groupID, group.Name),
		PlanStatus: result.Status,
		Warnings:   result.Warnings,
	}
	if result.Status == PlanInconsistent {
		slog.Warn("Settling against inconsistent balances",
			"group_id", groupID,
			"user_id", userID,
			"warnings", result.Warnings,
		)
	}

	legs := result.Plan.ForDebtor(userID)
	if len(legs) == 0 {
		slog.Info("Nothing to settle", "group_id", groupID, "user_id", userID)
		metrics.ObserveBatch("noop")
		return report, nil
	}

	slog.Info("Settlement batch started",
		"group_id", groupID,
		"user_id", userID,
		"transfers", len(legs),
	)
	return e.execute(ctx, report, legs, legs)
}

// Retry re-attempts the given legs, typically BatchReport.Failed() from an
// earlier run. Legs are checked per creditor against what the current plan
// still leaves unpaid once transfers recorded since the user's last split
// settlement are subtracted, so a leg that already went through is refused.
// The user's splits are marked settled only when nothing remains owed.
func (e *Executor) Retry(ctx context.Context, groupID, userID string, legs []calculator.DebtEdge) (*BatchReport, error) {
	requested := make(map[string]decimal.Decimal, len(legs))
	for _, leg := range legs {
		if leg.From != userID {
			return nil, fmt.Errorf("%w: %s -> %s", ErrForeignTransfer, leg.From, leg.To)
		}
		if !leg.Amount.GreaterThan(calculator.SettledThreshold) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidAmount, leg.From, leg.To)
		}
		requested[leg.To] = requested[leg.To].Add(leg.Amount)
	}

	unlock, ok := e.locks.TryLock(settleKey(groupID, userID))
	if !ok {
		metrics.ObserveBatch("in_progress")
		return nil, ErrSettlementInProgress
	}
	defer unlock()

	group, err := e.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	report := &BatchReport{
		GroupID:    groupID,
		UserID:     userID,
		Memo:       BuildSettlementMemo(groupID, group.Name),
		PlanStatus: PlanReady,
	}
	if len(legs) == 0 {
		metrics.ObserveBatch("noop")
		return report, nil
	}

	// Splits stay unsettled until the batch completes, so the plan still
	// holds every leg of it, paid or not.
	result, err := e.plan(ctx, groupID)
	if err != nil {
		return nil, err
	}
	recorded, err := e.recordedSince(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	paid := make(map[string]decimal.Decimal, len(recorded))
	for _, r := range recorded {
		paid[r.ToUserID] = paid[r.ToUserID].Add(r.Amount)
	}
	remaining := unpaid(result.Plan.ForDebtor(userID), paid)

	left := make(map[string]decimal.Decimal, len(remaining))
	for _, leg := range remaining {
		left[leg.To] = left[leg.To].Add(leg.Amount)
	}
	for _, leg := range legs {
		if requested[leg.To].Sub(left[leg.To]).GreaterThan(calculator.SettledThreshold) {
			metrics.ObserveBatch("rejected")
			return nil, fmt.Errorf("%w: %s -> %s: retrying %s, outstanding %s", ErrRetryExceedsDebt,
				userID, leg.To, requested[leg.To].StringFixed(2), left[leg.To].StringFixed(2))
		}
	}

	slog.Info("Settlement retry started",
		"group_id", groupID,
		"user_id", userID,
		"transfers", len(legs),
		"already_recorded", len(recorded),
	)
	return e.execute(ctx, report, legs, remaining)
}

// Reconciliation describes a confirmed transfer whose audit record is missing.
type Reconciliation struct {
	GroupID    string
	FromUserID string
	ToUserID   string
	Amount     decimal.Decimal
	TxHash     string

	// Memo defaults to the memo Settle would have built.
	Memo string

	// MarkSettled also settles FromUserID's splits with TxHash. Only set it
	// when this was the last outstanding leg.
	MarkSettled bool
}

// ReconcileTransfer records a transfer that was paid but never recorded,
// the recovery path for TransferRecordFailed.
func (e *Executor) ReconcileTransfer(ctx context.Context, r Reconciliation) (*models.Settlement, int64, error) {
	if r.TxHash == "" {
		return nil, 0, errors.New("tx hash is required")
	}
	if !r.Amount.IsPositive() {
		return nil, 0, ErrInvalidAmount
	}

	unlock, ok := e.locks.TryLock(settleKey(r.GroupID, r.FromUserID))
	if !ok {
		return nil, 0, ErrSettlementInProgress
	}
	defer unlock()

	existing, err := e.store.ListSettlementsByGroup(ctx, r.GroupID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list settlements: %w", err)
	}
	for _, s := range existing {
		if s.TxHash == r.TxHash {
			return nil, 0, fmt.Errorf("%w: %s", ErrAlreadyRecorded, r.TxHash)
		}
	}

	memo := r.Memo
	if memo == "" {
		group, err := e.store.GetGroup(ctx, r.GroupID)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to get group: %w", err)
		}
		memo = BuildSettlementMemo(r.GroupID, group.Name)
	}

	record := &models.Settlement{
		GroupID:    r.GroupID,
		FromUserID: r.FromUserID,
		ToUserID:   r.ToUserID,
		Amount:     r.Amount.Round(2),
		TxHash:     r.TxHash,
		Memo:       memo,
		Status:     models.SettlementCompleted,
	}
	if err := e.store.CreateSettlement(ctx, record); err != nil {
		return nil, 0, fmt.Errorf("failed to record settlement: %w", err)
	}
	slog.Info("Settlement reconciled",
		"group_id", r.GroupID,
		"from", r.FromUserID,
		"to", r.ToUserID,
		"tx_hash", r.TxHash,
	)

	if !r.MarkSettled {
		return record, 0, nil
	}
	n, err := e.store.MarkSplitsSettled(ctx, r.GroupID, r.FromUserID, r.TxHash)
	if err != nil {
		return record, 0, fmt.Errorf("failed to mark splits settled: %w", err)
	}
	return record, n, nil
}

// checkReconciled refuses to plan while transfers recorded after the user's
// last split settlement exist. Their balance does not reflect those
// payments yet, so a fresh plan would pay the same debt twice.
func (e *Executor) checkReconciled(ctx context.Context, groupID, userID string) error {
	pending, err := e.recordedSince(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if len(pending) > 0 {
		metrics.ObserveBatch("unreconciled")
		return fmt.Errorf("%w: %d transfer(s) recorded since the last settlement", ErrUnreconciledTransfers, len(pending))
	}
	return nil
}

// recordedSince returns the transfers userID made in the group after their
// splits were last settled.
func (e *Executor) recordedSince(ctx context.Context, groupID, userID string) ([]models.Settlement, error) {
	last, err := e.store.LastSplitSettlement(ctx, groupID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get last split settlement: %w", err)
	}
	records, err := e.store.ListSettlementsByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}

	var out []models.Settlement
	for _, r := range records {
		if r.FromUserID == userID && r.CreatedAt > last {
			out = append(out, r)
		}
	}
	return out, nil
}

// unpaid subtracts paid, keyed by creditor, from owed and drops the legs
// left at or under the settled threshold.
func unpaid(owed []calculator.DebtEdge, paid map[string]decimal.Decimal) []calculator.DebtEdge {
	credit := make(map[string]decimal.Decimal, len(paid))
	for to, amount := range paid {
		credit[to] = amount
	}

	var out []calculator.DebtEdge
	for _, leg := range owed {
		applied := decimal.Min(credit[leg.To], leg.Amount)
		credit[leg.To] = credit[leg.To].Sub(applied)
		leg.Amount = leg.Amount.Sub(applied)
		if leg.Amount.GreaterThan(calculator.SettledThreshold) {
			out = append(out, leg)
		}
	}
	return out
}

func (e *Executor) plan(ctx context.Context, groupID string) (PlanResult, error) {
	members, err := e.store.ListGroupMembers(ctx, groupID)
	if err != nil {
		return PlanResult{}, fmt.Errorf("failed to list group members: %w", err)
	}
	expenses, err := e.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return PlanResult{}, fmt.Errorf("failed to list expenses: %w", err)
	}

	result := BuildPlanResult(GroupBalances(expenses, members))
	metrics.ObservePlan(result.Status.String())
	return result, nil
}

// execute runs legs in order. owed is what the user still owes before this
// run; the user's splits are settled only when the legs paid here cover it.
func (e *Executor) execute(ctx context.Context, report *BatchReport, legs, owed []calculator.DebtEdge) (*BatchReport, error) {
	memo := EncodeMemo(report.Memo)

	for _, leg := range legs {
		res, err := e.pay(ctx, report, leg, memo)
		report.Results = append(report.Results, res)
		metrics.ObserveTransfer(string(res.Status), leg.Amount)
		if res.Status == TransferSucceeded {
			report.LastTxHash = res.TxHash
		}
		if err != nil {
			metrics.ObserveBatch("error")
			return report, err
		}
	}

	paid := make(map[string]decimal.Decimal)
	for _, res := range report.Succeeded() {
		paid[res.Transfer.To] = paid[res.Transfer.To].Add(res.Transfer.Amount)
	}
	report.Outstanding = unpaid(owed, paid)

	if !report.Complete() {
		slog.Warn("Settlement batch incomplete",
			"group_id", report.GroupID,
			"user_id", report.UserID,
			"succeeded", len(report.Succeeded()),
			"failed", len(report.Failed()),
			"outstanding", len(report.Outstanding),
		)
		metrics.ObserveBatch("partial")
		return report, nil
	}

	n, err := e.store.MarkSplitsSettled(ctx, report.GroupID, report.UserID, report.LastTxHash)
	if err != nil {
		slog.Error("Failed to mark splits settled",
			"group_id", report.GroupID,
			"user_id", report.UserID,
			"tx_hash", report.LastTxHash,
			"error", err,
		)
		metrics.ObserveBatch("error")
		return report, fmt.Errorf("failed to mark splits settled after tx %s: %w", report.LastTxHash, err)
	}
	report.SplitsSettled = n

	slog.Info("Settlement batch complete",
		"group_id", report.GroupID,
		"user_id", report.UserID,
		"transfers", len(report.Results),
		"splits_settled", n,
	)
	metrics.ObserveBatch("complete")
	return report, nil
}

// pay runs one leg. Only a persistence failure after the money moved is
// returned as an error; everything else is captured in the result.
func (e *Executor) pay(ctx context.Context, report *BatchReport, leg calculator.DebtEdge, memo [MemoSize]byte) (TransferResult, error) {
	res := TransferResult{Transfer: leg}

	to, err := e.resolver.ResolveRecipientAddress(ctx, leg.To)
	if err != nil {
		slog.Warn("Skipping transfer - no recipient address",
			"group_id", report.GroupID,
			"to", leg.To,
			"error", err,
		)
		res.Status = TransferSkipped
		res.Err = err
		return res, nil
	}

	start := time.Now()
	txHash, err := e.payments.SubmitTransfer(ctx, Transfer{To: to, Amount: leg.Amount, Memo: memo})
	metrics.ObserveSubmit(time.Since(start))
	if err != nil {
		slog.Error("Transfer submission failed",
			"group_id", report.GroupID,
			"to", leg.To,
			"amount", leg.Amount.StringFixed(2),
			"error", err,
		)
		res.Status = TransferFailed
		res.Err = fmt.Errorf("failed to submit transfer: %w", err)
		return res, nil
	}
	res.TxHash = txHash

	record := &models.Settlement{
		GroupID:    report.GroupID,
		FromUserID: leg.From,
		ToUserID:   leg.To,
		Amount:     leg.Amount,
		TxHash:     txHash,
		Memo:       report.Memo,
		Status:     models.SettlementCompleted,
	}
	if err := e.store.CreateSettlement(ctx, record); err != nil {
		slog.Error("Transfer sent but not recorded",
			"group_id", report.GroupID,
			"from", leg.From,
			"to", leg.To,
			"amount", leg.Amount.StringFixed(2),
			"tx_hash", txHash,
			"error", err,
		)
		res.Status = TransferRecordFailed
		res.Err = fmt.Errorf("failed to record settlement: %w", err)
		return res, fmt.Errorf("transfer %s sent but not recorded: %w", txHash, err)
	}

	slog.Info("Transfer settled",
		"group_id", report.GroupID,
		"from", leg.From,
		"to", leg.To,
		"amount", leg.Amount.StringFixed(2),
		"tx_hash", txHash,
	)
	res.Status = TransferSucceeded
	return res, nil
}
