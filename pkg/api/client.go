package api

import (
	"context"

	"connectrpc.com/connect"
)

// BearerToken returns a client interceptor that sends token on every call.
func BearerToken(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if req.Spec().IsClient && token != "" {
				req.Header().Set("Authorization", "Bearer "+token)
			}
			return next(ctx, req)
		}
	}
}

func newClient[Req, Res any](httpClient connect.HTTPClient, baseURL, procedure string, opts []connect.ClientOption) *connect.Client[Req, Res] {
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return connect.NewClient[Req, Res](httpClient, baseURL+procedure, opts...)
}

// AuthServiceClient calls AuthService.
type AuthServiceClient struct {
	register       *connect.Client[RegisterRequest, RegisterResponse]
	login          *connect.Client[LoginRequest, LoginResponse]
	logout         *connect.Client[LogoutRequest, LogoutResponse]
	getCurrentUser *connect.Client[GetCurrentUserRequest, GetCurrentUserResponse]
	updateWallet   *connect.Client[UpdateWalletRequest, UpdateWalletResponse]
}

// NewAuthServiceClient creates a client for the server at baseURL.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AuthServiceClient {
	return &AuthServiceClient{
		register:       newClient[RegisterRequest, RegisterResponse](httpClient, baseURL, AuthServiceRegisterProcedure, opts),
		login:          newClient[LoginRequest, LoginResponse](httpClient, baseURL, AuthServiceLoginProcedure, opts),
		logout:         newClient[LogoutRequest, LogoutResponse](httpClient, baseURL, AuthServiceLogoutProcedure, opts),
		getCurrentUser: newClient[GetCurrentUserRequest, GetCurrentUserResponse](httpClient, baseURL, AuthServiceGetCurrentUserProcedure, opts),
		updateWallet:   newClient[UpdateWalletRequest, UpdateWalletResponse](httpClient, baseURL, AuthServiceUpdateWalletProcedure, opts),
	}
}

func (c *AuthServiceClient) Register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *AuthServiceClient) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *AuthServiceClient) Logout(ctx context.Context, req *connect.Request[LogoutRequest]) (*connect.Response[LogoutResponse], error) {
	return c.logout.CallUnary(ctx, req)
}

func (c *AuthServiceClient) GetCurrentUser(ctx context.Context, req *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error) {
	return c.getCurrentUser.CallUnary(ctx, req)
}

func (c *AuthServiceClient) UpdateWallet(ctx context.Context, req *connect.Request[UpdateWalletRequest]) (*connect.Response[UpdateWalletResponse], error) {
	return c.updateWallet.CallUnary(ctx, req)
}

// GroupServiceClient calls GroupService.
type GroupServiceClient struct {
	createGroup       *connect.Client[CreateGroupRequest, CreateGroupResponse]
	getGroup          *connect.Client[GetGroupRequest, GetGroupResponse]
	listGroups        *connect.Client[ListGroupsRequest, ListGroupsResponse]
	addMember         *connect.Client[AddMemberRequest, AddMemberResponse]
	removeMember      *connect.Client[RemoveMemberRequest, RemoveMemberResponse]
	getGroupBalances  *connect.Client[GetGroupBalancesRequest, GetGroupBalancesResponse]
	getSettlementPlan *connect.Client[GetSettlementPlanRequest, GetSettlementPlanResponse]
}

// NewGroupServiceClient creates a client for the server at baseURL.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *GroupServiceClient {
	return &GroupServiceClient{
		createGroup:       newClient[CreateGroupRequest, CreateGroupResponse](httpClient, baseURL, GroupServiceCreateGroupProcedure, opts),
		getGroup:          newClient[GetGroupRequest, GetGroupResponse](httpClient, baseURL, GroupServiceGetGroupProcedure, opts),
		listGroups:        newClient[ListGroupsRequest, ListGroupsResponse](httpClient, baseURL, GroupServiceListGroupsProcedure, opts),
		addMember:         newClient[AddMemberRequest, AddMemberResponse](httpClient, baseURL, GroupServiceAddMemberProcedure, opts),
		removeMember:      newClient[RemoveMemberRequest, RemoveMemberResponse](httpClient, baseURL, GroupServiceRemoveMemberProcedure, opts),
		getGroupBalances:  newClient[GetGroupBalancesRequest, GetGroupBalancesResponse](httpClient, baseURL, GroupServiceGetGroupBalancesProcedure, opts),
		getSettlementPlan: newClient[GetSettlementPlanRequest, GetSettlementPlanResponse](httpClient, baseURL, GroupServiceGetSettlementPlanProcedure, opts),
	}
}

func (c *GroupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) GetGroup(ctx context.Context, req *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) ListGroups(ctx context.Context, req *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *GroupServiceClient) AddMember(ctx context.Context, req *connect.Request[AddMemberRequest]) (*connect.Response[AddMemberResponse], error) {
	return c.addMember.CallUnary(ctx, req)
}

func (c *GroupServiceClient) RemoveMember(ctx context.Context, req *connect.Request[RemoveMemberRequest]) (*connect.Response[RemoveMemberResponse], error) {
	return c.removeMember.CallUnary(ctx, req)
}

func (c *GroupServiceClient) GetGroupBalances(ctx context.Context, req *connect.Request[GetGroupBalancesRequest]) (*connect.Response[GetGroupBalancesResponse], error) {
	return c.getGroupBalances.CallUnary(ctx, req)
}

func (c *GroupServiceClient) GetSettlementPlan(ctx context.Context, req *connect.Request[GetSettlementPlanRequest]) (*connect.Response[GetSettlementPlanResponse], error) {
	return c.getSettlementPlan.CallUnary(ctx, req)
}

// ExpenseServiceClient calls ExpenseService.
type ExpenseServiceClient struct {
	createExpense *connect.Client[CreateExpenseRequest, CreateExpenseResponse]
	getExpense    *connect.Client[GetExpenseRequest, GetExpenseResponse]
	listExpenses  *connect.Client[ListExpensesRequest, ListExpensesResponse]
}

// NewExpenseServiceClient creates a client for the server at baseURL.
func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ExpenseServiceClient {
	return &ExpenseServiceClient{
		createExpense: newClient[CreateExpenseRequest, CreateExpenseResponse](httpClient, baseURL, ExpenseServiceCreateExpenseProcedure, opts),
		getExpense:    newClient[GetExpenseRequest, GetExpenseResponse](httpClient, baseURL, ExpenseServiceGetExpenseProcedure, opts),
		listExpenses:  newClient[ListExpensesRequest, ListExpensesResponse](httpClient, baseURL, ExpenseServiceListExpensesProcedure, opts),
	}
}

func (c *ExpenseServiceClient) CreateExpense(ctx context.Context, req *connect.Request[CreateExpenseRequest]) (*connect.Response[CreateExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) GetExpense(ctx context.Context, req *connect.Request[GetExpenseRequest]) (*connect.Response[GetExpenseResponse], error) {
	return c.getExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) ListExpenses(ctx context.Context, req *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

// SettlementServiceClient calls SettlementService.
type SettlementServiceClient struct {
	settle          *connect.Client[SettleRequest, SettleResponse]
	retrySettlement *connect.Client[RetrySettlementRequest, RetrySettlementResponse]
	listSettlements *connect.Client[ListSettlementsRequest, ListSettlementsResponse]
	listActivity    *connect.Client[ListActivityRequest, ListActivityResponse]
}

// NewSettlementServiceClient creates a client for the server at baseURL.
func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SettlementServiceClient {
	return &SettlementServiceClient{
		settle:          newClient[SettleRequest, SettleResponse](httpClient, baseURL, SettlementServiceSettleProcedure, opts),
		retrySettlement: newClient[RetrySettlementRequest, RetrySettlementResponse](httpClient, baseURL, SettlementServiceRetrySettlementProcedure, opts),
		listSettlements: newClient[ListSettlementsRequest, ListSettlementsResponse](httpClient, baseURL, SettlementServiceListSettlementsProcedure, opts),
		listActivity:    newClient[ListActivityRequest, ListActivityResponse](httpClient, baseURL, SettlementServiceListActivityProcedure, opts),
	}
}

func (c *SettlementServiceClient) Settle(ctx context.Context, req *connect.Request[SettleRequest]) (*connect.Response[SettleResponse], error) {
	return c.settle.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) RetrySettlement(ctx context.Context, req *connect.Request[RetrySettlementRequest]) (*connect.Response[RetrySettlementResponse], error) {
	return c.retrySettlement.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) ListSettlements(ctx context.Context, req *connect.Request[ListSettlementsRequest]) (*connect.Response[ListSettlementsResponse], error) {
	return c.listSettlements.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) ListActivity(ctx context.Context, req *connect.Request[ListActivityRequest]) (*connect.Response[ListActivityResponse], error) {
	return c.listActivity.CallUnary(ctx, req)
}
