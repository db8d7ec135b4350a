package api

import (
	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Amounts are decimal strings with two places ("12.50") on the wire.

type User struct {
	ID            string                 `json:"id"`
	Email         string                 `json:"email"`
	DisplayName   string                 `json:"display_name"`
	WalletAddress string                 `json:"wallet_address,omitempty"`
	CreatedAt     *timestamppb.Timestamp `json:"created_at,omitempty"`
}

type Member struct {
	UserID      string                 `json:"user_id"`
	DisplayName string                 `json:"display_name"`
	Role        string                 `json:"role"`
	JoinedAt    *timestamppb.Timestamp `json:"joined_at,omitempty"`
}

type Group struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	CreatedBy   string                 `json:"created_by"`
	Members     []Member               `json:"members"`
	CreatedAt   *timestamppb.Timestamp `json:"created_at,omitempty"`
	UpdatedAt   *timestamppb.Timestamp `json:"updated_at,omitempty"`
}

type Split struct {
	UserID        string                 `json:"user_id"`
	Amount        decimal.Decimal        `json:"amount"`
	IsSettled     bool                   `json:"is_settled"`
	SettledTxHash string                 `json:"settled_tx_hash,omitempty"`
	SettledAt     *timestamppb.Timestamp `json:"settled_at,omitempty"`
}

type Expense struct {
	ID          string                 `json:"id"`
	GroupID     string                 `json:"group_id"`
	PaidBy      string                 `json:"paid_by"`
	Title       string                 `json:"title"`
	Description string                 `json:"description,omitempty"`
	TotalAmount decimal.Decimal        `json:"total_amount"`
	Currency    string                 `json:"currency"`
	Splits      []Split                `json:"splits"`
	CreatedAt   *timestamppb.Timestamp `json:"created_at,omitempty"`
}

type Balance struct {
	UserID   string          `json:"user_id"`
	UserName string          `json:"user_name"`
	Amount   decimal.Decimal `json:"amount"`
}

type Transfer struct {
	From     string          `json:"from" validate:"required"`
	FromName string          `json:"from_name,omitempty"`
	To       string          `json:"to" validate:"required"`
	ToName   string          `json:"to_name,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
}

type Plan struct {
	Status           string          `json:"status"`
	Transfers        []Transfer      `json:"transfers"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	TransactionCount int             `json:"transaction_count"`
	Warnings         []string        `json:"warnings,omitempty"`
	Valid            bool            `json:"valid"`
}

type TransferResult struct {
	Transfer Transfer `json:"transfer"`
	Status   string   `json:"status"`
	TxHash   string   `json:"tx_hash,omitempty"`
	Error    string   `json:"error,omitempty"`
}

type BatchReport struct {
	GroupID       string           `json:"group_id"`
	UserID        string           `json:"user_id"`
	Memo          string           `json:"memo"`
	PlanStatus    string           `json:"plan_status"`
	Warnings      []string         `json:"warnings,omitempty"`
	Results       []TransferResult `json:"results"`
	LastTxHash    string           `json:"last_tx_hash,omitempty"`
	SplitsSettled int64            `json:"splits_settled"`
	Outstanding   []Transfer       `json:"outstanding,omitempty"`
	Complete      bool             `json:"complete"`
	// Error is set when the batch stopped after money moved; the
	// record_failed result carries the tx hash to reconcile.
	Error string `json:"error,omitempty"`
}

type Settlement struct {
	ID         string                 `json:"id"`
	GroupID    string                 `json:"group_id"`
	FromUserID string                 `json:"from_user_id"`
	ToUserID   string                 `json:"to_user_id"`
	Amount     decimal.Decimal        `json:"amount"`
	TxHash     string                 `json:"tx_hash"`
	Memo       string                 `json:"memo"`
	Status     string                 `json:"status"`
	CreatedAt  *timestamppb.Timestamp `json:"created_at,omitempty"`
}

type Activity struct {
	ID           string                 `json:"id"`
	Type         string                 `json:"type"`
	ActorID      string                 `json:"actor_id"`
	Title        string                 `json:"title,omitempty"`
	Amount       decimal.Decimal        `json:"amount"`
	TxHash       string                 `json:"tx_hash,omitempty"`
	Counterparty string                 `json:"counterparty,omitempty"`
	CreatedAt    *timestamppb.Timestamp `json:"created_at,omitempty"`
}

// Auth

type RegisterRequest struct {
	Email         string `json:"email" validate:"required,email"`
	DisplayName   string `json:"display_name" validate:"required,max=64"`
	Password      string `json:"password" validate:"required"`
	WalletAddress string `json:"wallet_address,omitempty"`
}

type RegisterResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type LogoutRequest struct{}

type LogoutResponse struct{}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User User `json:"user"`
}

type UpdateWalletRequest struct {
	WalletAddress string `json:"wallet_address" validate:"required"`
}

type UpdateWalletResponse struct {
	User User `json:"user"`
}

// Groups

type CreateGroupRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description,omitempty" validate:"max=500"`
	// MemberIDs are added alongside the caller, who becomes owner.
	MemberIDs []string `json:"member_ids,omitempty" validate:"dive,required"`
}

type CreateGroupResponse struct {
	Group Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type GetGroupResponse struct {
	Group Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []Group `json:"groups"`
}

// AddMemberRequest identifies the new member by UserID or Email.
type AddMemberRequest struct {
	GroupID string `json:"group_id" validate:"required"`
	UserID  string `json:"user_id,omitempty" validate:"required_without=Email"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
}

type AddMemberResponse struct {
	Group Group `json:"group"`
}

type RemoveMemberRequest struct {
	GroupID string `json:"group_id" validate:"required"`
	UserID  string `json:"user_id" validate:"required"`
}

type RemoveMemberResponse struct{}

type GetGroupBalancesRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type GetGroupBalancesResponse struct {
	Balances []Balance `json:"balances"`
}

type GetSettlementPlanRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type GetSettlementPlanResponse struct {
	Plan Plan `json:"plan"`
}

// Expenses

// SplitMode selects how CreateExpenseRequest is divided.
type SplitMode string

const (
	SplitEqual    SplitMode = "equal"
	SplitExact    SplitMode = "exact"
	SplitItemized SplitMode = "itemized"
)

type ExactShare struct {
	UserID string          `json:"user_id" validate:"required"`
	Amount decimal.Decimal `json:"amount"`
}

type LineItem struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	AssignedTo  []string        `json:"assigned_to" validate:"min=1,dive,required"`
}

type CreateExpenseRequest struct {
	GroupID     string          `json:"group_id" validate:"required"`
	Title       string          `json:"title" validate:"required,max=200"`
	Description string          `json:"description,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	// PaidBy defaults to the caller.
	PaidBy string    `json:"paid_by,omitempty"`
	Mode   SplitMode `json:"mode" validate:"required,oneof=equal exact itemized"`

	// Participants is used by equal and itemized splits. Empty means every
	// group member.
	Participants []string `json:"participants,omitempty" validate:"dive,required"`

	// Shares is used by exact splits.
	Shares []ExactShare `json:"shares,omitempty" validate:"dive"`

	// Items and Subtotal are used by itemized splits; tax and tip are the
	// difference between TotalAmount and Subtotal.
	Items    []LineItem      `json:"items,omitempty" validate:"dive"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type CreateExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type GetExpenseRequest struct {
	ExpenseID string `json:"expense_id" validate:"required"`
}

type GetExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type ListExpensesRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type ListExpensesResponse struct {
	Expenses []Expense `json:"expenses"`
}

// Settlements

type SettleRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type SettleResponse struct {
	Report BatchReport `json:"report"`
}

type RetrySettlementRequest struct {
	GroupID   string     `json:"group_id" validate:"required"`
	Transfers []Transfer `json:"transfers" validate:"min=1,dive"`
}

type RetrySettlementResponse struct {
	Report BatchReport `json:"report"`
}

type ListSettlementsRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type ListSettlementsResponse struct {
	Settlements []Settlement `json:"settlements"`
}

type ListActivityRequest struct {
	GroupID string `json:"group_id" validate:"required"`
	Limit   int    `json:"limit,omitempty" validate:"gte=0,lte=500"`
}

type ListActivityResponse struct {
	Activity []Activity `json:"activity"`
}
