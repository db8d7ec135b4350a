package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// AuthServiceHandler is implemented by the server side of AuthService.
type AuthServiceHandler interface {
	Register(context.Context, *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error)
	Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error)
	Logout(context.Context, *connect.Request[LogoutRequest]) (*connect.Response[LogoutResponse], error)
	GetCurrentUser(context.Context, *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error)
	UpdateWallet(context.Context, *connect.Request[UpdateWalletRequest]) (*connect.Response[UpdateWalletResponse], error)
}

// GroupServiceHandler is implemented by the server side of GroupService.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error)
	AddMember(context.Context, *connect.Request[AddMemberRequest]) (*connect.Response[AddMemberResponse], error)
	RemoveMember(context.Context, *connect.Request[RemoveMemberRequest]) (*connect.Response[RemoveMemberResponse], error)
	GetGroupBalances(context.Context, *connect.Request[GetGroupBalancesRequest]) (*connect.Response[GetGroupBalancesResponse], error)
	GetSettlementPlan(context.Context, *connect.Request[GetSettlementPlanRequest]) (*connect.Response[GetSettlementPlanResponse], error)
}

// ExpenseServiceHandler is implemented by the server side of ExpenseService.
type ExpenseServiceHandler interface {
	CreateExpense(context.Context, *connect.Request[CreateExpenseRequest]) (*connect.Response[CreateExpenseResponse], error)
	GetExpense(context.Context, *connect.Request[GetExpenseRequest]) (*connect.Response[GetExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error)
}

// SettlementServiceHandler is implemented by the server side of SettlementService.
type SettlementServiceHandler interface {
	Settle(context.Context, *connect.Request[SettleRequest]) (*connect.Response[SettleResponse], error)
	RetrySettlement(context.Context, *connect.Request[RetrySettlementRequest]) (*connect.Response[RetrySettlementResponse], error)
	ListSettlements(context.Context, *connect.Request[ListSettlementsRequest]) (*connect.Response[ListSettlementsResponse], error)
	ListActivity(context.Context, *connect.Request[ListActivityRequest]) (*connect.Response[ListActivityResponse], error)
}

// route registers one unary procedure on mux. JSONCodec is always added.
func route[Req, Res any](mux *http.ServeMux, procedure string, fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error), opts []connect.HandlerOption) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	mux.Handle(procedure, connect.NewUnaryHandler(procedure, fn, opts...))
}

// NewAuthServiceHandler builds an HTTP handler for AuthService. It returns
// the path prefix to mount it on.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	route(mux, AuthServiceRegisterProcedure, svc.Register, opts)
	route(mux, AuthServiceLoginProcedure, svc.Login, opts)
	route(mux, AuthServiceLogoutProcedure, svc.Logout, opts)
	route(mux, AuthServiceGetCurrentUserProcedure, svc.GetCurrentUser, opts)
	route(mux, AuthServiceUpdateWalletProcedure, svc.UpdateWallet, opts)
	return "/" + AuthServiceName + "/", mux
}

// NewGroupServiceHandler builds an HTTP handler for GroupService.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	route(mux, GroupServiceCreateGroupProcedure, svc.CreateGroup, opts)
	route(mux, GroupServiceGetGroupProcedure, svc.GetGroup, opts)
	route(mux, GroupServiceListGroupsProcedure, svc.ListGroups, opts)
	route(mux, GroupServiceAddMemberProcedure, svc.AddMember, opts)
	route(mux, GroupServiceRemoveMemberProcedure, svc.RemoveMember, opts)
	route(mux, GroupServiceGetGroupBalancesProcedure, svc.GetGroupBalances, opts)
	route(mux, GroupServiceGetSettlementPlanProcedure, svc.GetSettlementPlan, opts)
	return "/" + GroupServiceName + "/", mux
}

// NewExpenseServiceHandler builds an HTTP handler for ExpenseService.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	route(mux, ExpenseServiceCreateExpenseProcedure, svc.CreateExpense, opts)
	route(mux, ExpenseServiceGetExpenseProcedure, svc.GetExpense, opts)
	route(mux, ExpenseServiceListExpensesProcedure, svc.ListExpenses, opts)
	return "/" + ExpenseServiceName + "/", mux
}

// NewSettlementServiceHandler builds an HTTP handler for SettlementService.
func NewSettlementServiceHandler(svc SettlementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	route(mux, SettlementServiceSettleProcedure, svc.Settle, opts)
	route(mux, SettlementServiceRetrySettlementProcedure, svc.RetrySettlement, opts)
	route(mux, SettlementServiceListSettlementsProcedure, svc.ListSettlements, opts)
	route(mux, SettlementServiceListActivityProcedure, svc.ListActivity, opts)
	return "/" + SettlementServiceName + "/", mux
}
