package service

import (
	"time"

	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/mmynk/splitpay/internal/calculator"
	"github.com/mmynk/splitpay/internal/models"
	"github.com/mmynk/splitpay/internal/settlement"
	"github.com/mmynk/splitpay/pkg/api"
)

// timestamp converts Unix seconds, leaving unset times nil.
func timestamp(unix int64) *timestamppb.Timestamp {
	if unix == 0 {
		return nil
	}
	return timestamppb.New(time.Unix(unix, 0))
}

func toAPIUser(u *models.User) api.User {
	return api.User{
		ID:            u.ID,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		WalletAddress: u.WalletAddress,
		CreatedAt:     timestamp(u.CreatedAt),
	}
}

func toAPIGroup(g *models.Group) api.Group {
	members := make([]api.Member, len(g.Members))
	for i, m := range g.Members {
		members[i] = api.Member{
			UserID:      m.UserID,
			DisplayName: m.DisplayName,
			Role:        string(m.Role),
			JoinedAt:    timestamp(m.JoinedAt),
		}
	}
	return api.Group{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		CreatedBy:   g.CreatedBy,
		Members:     members,
		CreatedAt:   timestamp(g.CreatedAt),
		UpdatedAt:   timestamp(g.UpdatedAt),
	}
}

func toAPIExpense(e *models.Expense) api.Expense {
	splits := make([]api.Split, len(e.Splits))
	for i, s := range e.Splits {
		splits[i] = api.Split{
			UserID:        s.UserID,
			Amount:        s.Amount,
			IsSettled:     s.IsSettled,
			SettledTxHash: s.SettledTxHash,
			SettledAt:     timestamp(s.SettledAt),
		}
	}
	return api.Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		PaidBy:      e.PaidBy,
		Title:       e.Title,
		Description: e.Description,
		TotalAmount: e.TotalAmount,
		Currency:    e.Currency,
		Splits:      splits,
		CreatedAt:   timestamp(e.CreatedAt),
	}
}

func toAPIBalances(balances []calculator.BalanceInput) []api.Balance {
	out := make([]api.Balance, len(balances))
	for i, b := range balances {
		out[i] = api.Balance{UserID: b.UserID, UserName: b.UserName, Amount: b.Amount}
	}
	return out
}

func toAPITransfer(e calculator.DebtEdge) api.Transfer {
	return api.Transfer{From: e.From, FromName: e.FromName, To: e.To, ToName: e.ToName, Amount: e.Amount}
}

func fromAPITransfers(transfers []api.Transfer) []calculator.DebtEdge {
	out := make([]calculator.DebtEdge, len(transfers))
	for i, t := range transfers {
		out[i] = calculator.DebtEdge{From: t.From, FromName: t.FromName, To: t.To, ToName: t.ToName, Amount: t.Amount.Round(2)}
	}
	return out
}

func toAPIPlan(r settlement.PlanResult) api.Plan {
	transfers := make([]api.Transfer, len(r.Plan.Transfers))
	for i, t := range r.Plan.Transfers {
		transfers[i] = toAPITransfer(t)
	}
	return api.Plan{
		Status:           r.Status.String(),
		Transfers:        transfers,
		TotalAmount:      r.Plan.TotalAmount,
		TransactionCount: r.Plan.TransactionCount,
		Warnings:         r.Warnings,
		Valid:            r.Validation.Valid,
	}
}

func toAPIReport(r *settlement.BatchReport) api.BatchReport {
	results := make([]api.TransferResult, len(r.Results))
	for i, res := range r.Results {
		results[i] = api.TransferResult{
			Transfer: toAPITransfer(res.Transfer),
			Status:   string(res.Status),
			TxHash:   res.TxHash,
		}
		if res.Err != nil {
			results[i].Error = res.Err.Error()
		}
	}
	var outstanding []api.Transfer
	for _, t := range r.Outstanding {
		outstanding = append(outstanding, toAPITransfer(t))
	}
	return api.BatchReport{
		GroupID:       r.GroupID,
		UserID:        r.UserID,
		Memo:          r.Memo,
		PlanStatus:    r.PlanStatus.String(),
		Warnings:      r.Warnings,
		Results:       results,
		LastTxHash:    r.LastTxHash,
		SplitsSettled: r.SplitsSettled,
		Outstanding:   outstanding,
		Complete:      r.Complete(),
	}
}

func toAPISettlement(s models.Settlement) api.Settlement {
	return api.Settlement{
		ID:         s.ID,
		GroupID:    s.GroupID,
		FromUserID: s.FromUserID,
		ToUserID:   s.ToUserID,
		Amount:     s.Amount,
		TxHash:     s.TxHash,
		Memo:       s.Memo,
		Status:     string(s.Status),
		CreatedAt:  timestamp(s.CreatedAt),
	}
}

func toAPIActivity(a models.Activity) api.Activity {
	return api.Activity{
		ID:           a.ID,
		Type:         string(a.Type),
		ActorID:      a.ActorID,
		Title:        a.Title,
		Amount:       a.Amount,
		TxHash:       a.TxHash,
		Counterparty: a.Counterparty,
		CreatedAt:    timestamp(a.CreatedAt),
	}
}
