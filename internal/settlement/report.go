package settlement

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/mmynk/splitpay/internal/calculator"
)

// TransferStatus is the outcome of one leg of a batch.
type TransferStatus string

const (
	// TransferSucceeded: submitted and recorded.
	TransferSucceeded TransferStatus = "succeeded"
	// TransferSkipped: the creditor has no resolvable address. Nothing was sent.
	TransferSkipped TransferStatus = "skipped"
	// TransferFailed: the payment executor rejected the transfer. Nothing was sent.
	TransferFailed TransferStatus = "failed"
	// TransferRecordFailed: money moved but the audit record could not be
	// written. TxHash is set and the leg must be reconciled, not retried.
	TransferRecordFailed TransferStatus = "record_failed"
)

// TransferResult is the outcome of a single transfer in a batch.
type TransferResult struct {
	Transfer calculator.DebtEdge
	Status   TransferStatus
	TxHash   string
	Err      error
}

// BatchReport summarises one Settle or Retry run.
type BatchReport struct {
	GroupID string
	UserID  string
	Memo    string

	PlanStatus PlanStatus
	Warnings   []string

	Results []TransferResult

	// LastTxHash is the hash of the last successful transfer. Splits are
	// stamped with it when the batch completes.
	LastTxHash string

	// SplitsSettled counts splits transitioned by this run.
	SplitsSettled int64

	// Outstanding is what the user still owes each creditor after this
	// run, net of every recorded transfer. Splits are only settled once
	// it is empty.
	Outstanding []calculator.DebtEdge
}

// Succeeded returns the legs that were paid and recorded.
func (r *BatchReport) Succeeded() []TransferResult {
	var out []TransferResult
	for _, res := range r.Results {
		if res.Status == TransferSucceeded {
			out = append(out, res)
		}
	}
	return out
}

// Failed returns the legs that moved no money and can be retried as is.
func (r *BatchReport) Failed() []calculator.DebtEdge {
	var out []calculator.DebtEdge
	for _, res := range r.Results {
		if res.Status == TransferFailed || res.Status == TransferSkipped {
			out = append(out, res.Transfer)
		}
	}
	return out
}

// Complete reports whether every leg succeeded and nothing is left owed.
func (r *BatchReport) Complete() bool {
	for _, res := range r.Results {
		if res.Status != TransferSucceeded {
			return false
		}
	}
	return len(r.Outstanding) == 0
}

// Err aggregates every per-transfer failure, or returns nil.
func (r *BatchReport) Err() error {
	var result *multierror.Error
	for _, res := range r.Results {
		if res.Status == TransferSucceeded || res.Err == nil {
			continue
		}
		result = multierror.Append(result, fmt.Errorf("%s -> %s (%s): %s: %w",
			res.Transfer.From, res.Transfer.To, res.Transfer.Amount.StringFixed(2), res.Status, res.Err))
	}
	return result.ErrorOrNil()
}
