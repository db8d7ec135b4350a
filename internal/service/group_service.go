package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitpay/internal/calculator"
	"github.com/mmynk/splitpay/internal/models"
	"github.com/mmynk/splitpay/internal/settlement"
	"github.com/mmynk/splitpay/internal/storage"
	"github.com/mmynk/splitpay/pkg/api"
)

var errOutstandingBalance = errors.New("member still has an outstanding balance")

var _ api.GroupServiceHandler = (*GroupService)(nil)

// GroupService implements the Connect GroupService
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// memberGroup loads the group and checks that the caller belongs to it.
func memberGroup(ctx context.Context, store storage.Store, groupID string) (*models.Group, string, error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, "", err
	}
	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, "", connectError(err)
	}
	if !group.HasMember(userID) {
		slog.Warn("Access denied", "group_id", groupID, "user_id", userID)
		return nil, "", connectError(fmt.Errorf("%w: %s", errNotMember, groupID))
	}
	return group, userID, nil
}

// CreateGroup creates a new group owned by the caller.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.MemberIDs),
	)

	// Every invited member must already have an account.
	if len(req.Msg.MemberIDs) > 0 {
		users, err := s.store.GetUsersByIDs(ctx, req.Msg.MemberIDs)
		if err != nil {
			return nil, connectError(err)
		}
		for _, id := range req.Msg.MemberIDs {
			if _, ok := users[id]; !ok {
				return nil, connectError(fmt.Errorf("%w: user %s", storage.ErrNotFound, id))
			}
		}
	}

	group := &models.Group{
		Name:        req.Msg.Name,
		Description: req.Msg.Description,
		CreatedBy:   userID,
	}
	seen := map[string]bool{userID: true}
	for _, id := range req.Msg.MemberIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		group.Members = append(group.Members, models.Member{UserID: id, Role: models.RoleMember})
	}

	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, connectError(err)
	}

	// Reload for display names.
	created, err := s.store.GetGroup(ctx, group.ID)
	if err != nil {
		return nil, connectError(err)
	}
	slog.Info("Group created", "group_id", group.ID)

	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(created)}), nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	group, _, err := memberGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GetGroupResponse{Group: toAPIGroup(group)}), nil
}

// ListGroups retrieves the caller's groups.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, connectError(err)
	}

	out := make([]api.Group, len(groups))
	for i, g := range groups {
		out[i] = toAPIGroup(g)
	}
	slog.Info("ListGroups successful", "count", len(groups))

	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// AddMember adds a registered user to the group, by ID or email.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	group, _, err := memberGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	var user *models.User
	if req.Msg.UserID != "" {
		user, err = s.store.GetUserByID(ctx, req.Msg.UserID)
	} else {
		user, err = s.store.GetUserByEmail(ctx, req.Msg.Email)
	}
	if err != nil {
		return nil, connectError(err)
	}
	if user == nil {
		return nil, connectError(fmt.Errorf("%w: user", storage.ErrNotFound))
	}

	if err := s.store.AddGroupMember(ctx, group.ID, user.ID, models.RoleMember); err != nil {
		return nil, connectError(err)
	}
	slog.Info("Member added", "group_id", group.ID, "user_id", user.ID)

	updated, err := s.store.GetGroup(ctx, group.ID)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.AddMemberResponse{Group: toAPIGroup(updated)}), nil
}

// RemoveMember removes a member. Owners may remove anyone but themselves;
// members may only leave. A member with an unsettled balance stays.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	group, userID, err := memberGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	target := req.Msg.UserID
	var callerRole, targetRole models.Role
	for _, m := range group.Members {
		if m.UserID == userID {
			callerRole = m.Role
		}
		if m.UserID == target {
			targetRole = m.Role
		}
	}
	if targetRole == "" {
		return nil, connectError(fmt.Errorf("%w: member %s", storage.ErrNotFound, target))
	}
	if targetRole == models.RoleOwner {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errors.New("the group owner cannot be removed"))
	}
	if target != userID && callerRole != models.RoleOwner {
		return nil, connect.NewError(connect.CodePermissionDenied, errors.New("only the owner can remove other members"))
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, group.ID)
	if err != nil {
		return nil, connectError(err)
	}
	for _, b := range settlement.GroupBalances(expenses, group.Members) {
		if b.UserID == target && b.Amount.Abs().GreaterThan(calculator.SettledThreshold) {
			return nil, connect.NewError(connect.CodeFailedPrecondition,
				fmt.Errorf("%w: %s", errOutstandingBalance, b.Amount.StringFixed(2)))
		}
	}

	if err := s.store.RemoveGroupMember(ctx, group.ID, target); err != nil {
		return nil, connectError(err)
	}
	slog.Info("Member removed", "group_id", group.ID, "user_id", target, "by", userID)
	return connect.NewResponse(&api.RemoveMemberResponse{}), nil
}

// GetGroupBalances returns every member's net balance across the group's expenses.
func (s *GroupService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	balances, err := s.balances(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	slog.Info("GetGroupBalances successful",
		"group_id", req.Msg.GroupID,
		"members_count", len(balances),
	)
	return connect.NewResponse(&api.GetGroupBalancesResponse{Balances: toAPIBalances(balances)}), nil
}

// GetSettlementPlan returns the simplified transfers that settle the group.
func (s *GroupService) GetSettlementPlan(ctx context.Context, req *connect.Request[api.GetSettlementPlanRequest]) (*connect.Response[api.GetSettlementPlanResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	balances, err := s.balances(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	result := settlement.BuildPlanResult(balances)
	slog.Info("GetSettlementPlan successful",
		"group_id", req.Msg.GroupID,
		"status", result.Status.String(),
		"transfers", result.Plan.TransactionCount,
		"total", result.Plan.TotalAmount.StringFixed(2),
	)
	return connect.NewResponse(&api.GetSettlementPlanResponse{Plan: toAPIPlan(result)}), nil
}

func (s *GroupService) balances(ctx context.Context, groupID string) ([]calculator.BalanceInput, error) {
	group, _, err := memberGroup(ctx, s.store, groupID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.store.ListExpensesByGroup(ctx, group.ID)
	if err != nil {
		slog.Error("Failed to list expenses", "group_id", group.ID, "error", err)
		return nil, connectError(err)
	}
	return settlement.GroupBalances(expenses, group.Members), nil
}
