package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitpay/internal/settlement"
	"github.com/mmynk/splitpay/internal/storage"
	"github.com/mmynk/splitpay/pkg/api"
)

const defaultActivityLimit = 50

var _ api.SettlementServiceHandler = (*SettlementService)(nil)

// SettlementService implements the Connect SettlementService.
type SettlementService struct {
	store    storage.Store
	executor *settlement.Executor
}

// NewSettlementService creates a SettlementService paying through executor.
func NewSettlementService(store storage.Store, executor *settlement.Executor) *SettlementService {
	return &SettlementService{store: store, executor: executor}
}

// Settle pays everything the caller owes in the group.
func (s *SettlementService) Settle(ctx context.Context, req *connect.Request[api.SettleRequest]) (*connect.Response[api.SettleResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	group, userID, err := memberGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	report, err := s.executor.Settle(ctx, group.ID, userID)
	return s.respond(report, err)
}

// RetrySettlement re-attempts the failed or skipped legs of an earlier batch.
func (s *SettlementService) RetrySettlement(ctx context.Context, req *connect.Request[api.RetrySettlementRequest]) (*connect.Response[api.RetrySettlementResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	group, userID, err := memberGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	report, err := s.executor.Retry(ctx, group.ID, userID, fromAPITransfers(req.Msg.Transfers))
	resp, err := s.respond(report, err)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.RetrySettlementResponse{Report: resp.Msg.Report}), nil
}

// respond turns an executor outcome into a response. A hard error that
// comes with a report means money moved, so the report is still returned
// with the error attached for reconciliation.
func (s *SettlementService) respond(report *settlement.BatchReport, err error) (*connect.Response[api.SettleResponse], error) {
	if err != nil && report == nil {
		return nil, connectError(err)
	}

	out := toAPIReport(report)
	if err != nil {
		slog.Error("Settlement batch stopped",
			"group_id", report.GroupID,
			"user_id", report.UserID,
			"last_tx_hash", report.LastTxHash,
			"error", err,
		)
		out.Error = err.Error()
	} else if perr := report.Err(); perr != nil {
		slog.Warn("Settlement batch has failed legs",
			"group_id", report.GroupID,
			"user_id", report.UserID,
			"error", perr,
		)
	}
	return connect.NewResponse(&api.SettleResponse{Report: out}), nil
}

// ListSettlements returns the group's settlement records, newest first.
func (s *SettlementService) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	group, _, err := memberGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	records, err := s.store.ListSettlementsByGroup(ctx, group.ID)
	if err != nil {
		return nil, connectError(err)
	}
	out := make([]api.Settlement, len(records))
	for i, r := range records {
		out[i] = toAPISettlement(r)
	}
	return connect.NewResponse(&api.ListSettlementsResponse{Settlements: out}), nil
}

// ListActivity returns the group's feed, newest first.
func (s *SettlementService) ListActivity(ctx context.Context, req *connect.Request[api.ListActivityRequest]) (*connect.Response[api.ListActivityResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	group, _, err := memberGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	limit := req.Msg.Limit
	if limit == 0 {
		limit = defaultActivityLimit
	}
	feed, err := s.store.ListActivity(ctx, group.ID, limit)
	if err != nil {
		return nil, connectError(err)
	}
	out := make([]api.Activity, len(feed))
	for i, a := range feed {
		out[i] = toAPIActivity(a)
	}
	return connect.NewResponse(&api.ListActivityResponse{Activity: out}), nil
}
