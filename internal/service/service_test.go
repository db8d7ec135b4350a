package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitpay/internal/auth"
	"github.com/mmynk/splitpay/internal/payments"
	"github.com/mmynk/splitpay/internal/settlement"
	"github.com/mmynk/splitpay/internal/storage/sqlite"
	"github.com/mmynk/splitpay/internal/wallet"
	"github.com/mmynk/splitpay/pkg/api"
)

const (
	aliceWallet = "0x1111111111111111111111111111111111111111"
	bobWallet   = "0x2222222222222222222222222222222222222222"
	carolWallet = "0x3333333333333333333333333333333333333333"
)

type testServer struct {
	url     string
	sandbox *payments.Sandbox
}

// setupTestServer runs every service against a temp database and the
// sandbox payment executor.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	sandbox := payments.NewSandbox(6)
	mux := http.NewServeMux()
	Mount(mux, Deps{
		Store:         store,
		Authenticator: auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost),
		JWT:           auth.NewJWTManager("0123456789abcdef0123456789abcdef", time.Hour),
		Executor:      settlement.NewExecutor(store, wallet.NewResolver(store), sandbox),
		Logger:        slog.Default(),
	})

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})
	return &testServer{url: server.URL, sandbox: sandbox}
}

type session struct {
	user        api.User
	auth        *api.AuthServiceClient
	groups      *api.GroupServiceClient
	expenses    *api.ExpenseServiceClient
	settlements *api.SettlementServiceClient
}

func (s *testServer) register(t *testing.T, name, walletAddress string) *session {
	t.Helper()
	anon := api.NewAuthServiceClient(http.DefaultClient, s.url)
	resp, err := anon.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:         name + "@example.com",
		DisplayName:   name,
		Password:      "password-" + name,
		WalletAddress: walletAddress,
	}))
	if err != nil {
		t.Fatalf("Register %s failed: %v", name, err)
	}
	return s.session(resp.Msg.User, resp.Msg.Token)
}

func (s *testServer) session(user api.User, token string) *session {
	opt := connect.WithInterceptors(api.BearerToken(token))
	return &session{
		user:        user,
		auth:        api.NewAuthServiceClient(http.DefaultClient, s.url, opt),
		groups:      api.NewGroupServiceClient(http.DefaultClient, s.url, opt),
		expenses:    api.NewExpenseServiceClient(http.DefaultClient, s.url, opt),
		settlements: api.NewSettlementServiceClient(http.DefaultClient, s.url, opt),
	}
}

func (s *session) createGroup(t *testing.T, name string, members ...*session) api.Group {
	t.Helper()
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.user.ID
	}
	resp, err := s.groups.CreateGroup(context.Background(), connect.NewRequest(&api.CreateGroupRequest{
		Name:      name,
		MemberIDs: ids,
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return resp.Msg.Group
}

func (s *session) addEqualExpense(t *testing.T, groupID, title, total string) api.Expense {
	t.Helper()
	resp, err := s.expenses.CreateExpense(context.Background(), connect.NewRequest(&api.CreateExpenseRequest{
		GroupID:     groupID,
		Title:       title,
		TotalAmount: decimal.RequireFromString(total),
		Mode:        api.SplitEqual,
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	return resp.Msg.Expense
}

func expectCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v, got no error", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Fatalf("expected %v, got %v (%v)", want, got, err)
	}
}

func amountEquals(t *testing.T, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("amount: expected %s, got %s", want, got.StringFixed(2))
	}
}

func TestAuthService(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()
	alice := srv.register(t, "alice", aliceWallet)

	if alice.user.ID == "" || alice.user.CreatedAt == nil {
		t.Fatalf("expected ID and CreatedAt, got %+v", alice.user)
	}

	t.Run("GetCurrentUser", func(t *testing.T) {
		resp, err := alice.auth.GetCurrentUser(ctx, connect.NewRequest(&api.GetCurrentUserRequest{}))
		if err != nil {
			t.Fatalf("GetCurrentUser failed: %v", err)
		}
		if resp.Msg.User.DisplayName != "alice" || resp.Msg.User.WalletAddress != aliceWallet {
			t.Errorf("unexpected user: %+v", resp.Msg.User)
		}
	})

	t.Run("anonymous GetCurrentUser", func(t *testing.T) {
		anon := api.NewAuthServiceClient(http.DefaultClient, srv.url)
		_, err := anon.GetCurrentUser(ctx, connect.NewRequest(&api.GetCurrentUserRequest{}))
		expectCode(t, err, connect.CodeUnauthenticated)
	})

	t.Run("Login", func(t *testing.T) {
		anon := api.NewAuthServiceClient(http.DefaultClient, srv.url)
		resp, err := anon.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "alice@example.com", Password: "password-alice"}))
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if resp.Msg.Token == "" {
			t.Error("expected token")
		}

		_, err = anon.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "alice@example.com", Password: "nope-nope"}))
		expectCode(t, err, connect.CodeUnauthenticated)
	})

	t.Run("Register validation", func(t *testing.T) {
		anon := api.NewAuthServiceClient(http.DefaultClient, srv.url)
		_, err := anon.Register(ctx, connect.NewRequest(&api.RegisterRequest{Email: "alice@example.com", DisplayName: "A", Password: "password1"}))
		expectCode(t, err, connect.CodeAlreadyExists)

		_, err = anon.Register(ctx, connect.NewRequest(&api.RegisterRequest{Email: "not-an-email", DisplayName: "B", Password: "password1"}))
		expectCode(t, err, connect.CodeInvalidArgument)

		_, err = anon.Register(ctx, connect.NewRequest(&api.RegisterRequest{Email: "b@example.com", DisplayName: "B", Password: "short"}))
		expectCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("UpdateWallet", func(t *testing.T) {
		resp, err := alice.auth.UpdateWallet(ctx, connect.NewRequest(&api.UpdateWalletRequest{WalletAddress: bobWallet}))
		if err != nil {
			t.Fatalf("UpdateWallet failed: %v", err)
		}
		if resp.Msg.User.WalletAddress != bobWallet {
			t.Errorf("wallet not updated: %s", resp.Msg.User.WalletAddress)
		}

		_, err = alice.auth.UpdateWallet(ctx, connect.NewRequest(&api.UpdateWalletRequest{WalletAddress: "0x12"}))
		expectCode(t, err, connect.CodeInvalidArgument)
	})
}

func TestGroupService(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()
	alice := srv.register(t, "alice", "")
	bob := srv.register(t, "bob", "")
	carol := srv.register(t, "carol", "")

	group := alice.createGroup(t, "Roommates", bob)
	if group.ID == "" || group.CreatedAt == nil {
		t.Fatalf("expected ID and CreatedAt, got %+v", group)
	}
	if len(group.Members) != 2 {
		t.Fatalf("members: expected 2, got %d", len(group.Members))
	}

	t.Run("unauthenticated", func(t *testing.T) {
		anon := api.NewGroupServiceClient(http.DefaultClient, srv.url)
		_, err := anon.ListGroups(ctx, connect.NewRequest(&api.ListGroupsRequest{}))
		expectCode(t, err, connect.CodeUnauthenticated)
	})

	t.Run("non-member is denied", func(t *testing.T) {
		_, err := carol.groups.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: group.ID}))
		expectCode(t, err, connect.CodePermissionDenied)
	})

	t.Run("missing group", func(t *testing.T) {
		_, err := alice.groups.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: "nonexistent-id"}))
		expectCode(t, err, connect.CodeNotFound)
	})

	t.Run("unknown member ID", func(t *testing.T) {
		_, err := alice.groups.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{Name: "X", MemberIDs: []string{"ghost"}}))
		expectCode(t, err, connect.CodeNotFound)
	})

	t.Run("AddMember by email", func(t *testing.T) {
		resp, err := bob.groups.AddMember(ctx, connect.NewRequest(&api.AddMemberRequest{GroupID: group.ID, Email: "carol@example.com"}))
		if err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}
		if len(resp.Msg.Group.Members) != 3 {
			t.Errorf("members: expected 3, got %d", len(resp.Msg.Group.Members))
		}

		_, err = alice.groups.AddMember(ctx, connect.NewRequest(&api.AddMemberRequest{GroupID: group.ID, UserID: carol.user.ID}))
		expectCode(t, err, connect.CodeAlreadyExists)

		_, err = alice.groups.AddMember(ctx, connect.NewRequest(&api.AddMemberRequest{GroupID: group.ID}))
		expectCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("ListGroups", func(t *testing.T) {
		alice.createGroup(t, "Solo")
		resp, err := alice.groups.ListGroups(ctx, connect.NewRequest(&api.ListGroupsRequest{}))
		if err != nil {
			t.Fatalf("ListGroups failed: %v", err)
		}
		if len(resp.Msg.Groups) != 2 {
			t.Errorf("expected 2 groups, got %d", len(resp.Msg.Groups))
		}

		resp, err = carol.groups.ListGroups(ctx, connect.NewRequest(&api.ListGroupsRequest{}))
		if err != nil {
			t.Fatalf("ListGroups failed: %v", err)
		}
		if len(resp.Msg.Groups) != 1 {
			t.Errorf("expected 1 group, got %d", len(resp.Msg.Groups))
		}
	})

	t.Run("RemoveMember", func(t *testing.T) {
		_, err := bob.groups.RemoveMember(ctx, connect.NewRequest(&api.RemoveMemberRequest{GroupID: group.ID, UserID: carol.user.ID}))
		expectCode(t, err, connect.CodePermissionDenied)

		_, err = bob.groups.RemoveMember(ctx, connect.NewRequest(&api.RemoveMemberRequest{GroupID: group.ID, UserID: alice.user.ID}))
		expectCode(t, err, connect.CodeFailedPrecondition)

		_, err = carol.groups.RemoveMember(ctx, connect.NewRequest(&api.RemoveMemberRequest{GroupID: group.ID, UserID: carol.user.ID}))
		if err != nil {
			t.Fatalf("leaving failed: %v", err)
		}
	})

	t.Run("member with a balance cannot leave", func(t *testing.T) {
		alice.addEqualExpense(t, group.ID, "Rent", "100.00")
		_, err := bob.groups.RemoveMember(ctx, connect.NewRequest(&api.RemoveMemberRequest{GroupID: group.ID, UserID: bob.user.ID}))
		expectCode(t, err, connect.CodeFailedPrecondition)
	})
}

func TestExpenseService(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()
	alice := srv.register(t, "alice", "")
	bob := srv.register(t, "bob", "")
	carol := srv.register(t, "carol", "")
	group := alice.createGroup(t, "Trip", bob, carol)

	t.Run("equal split absorbs the odd cent", func(t *testing.T) {
		e := alice.addEqualExpense(t, group.ID, "Dinner", "100.00")
		if e.PaidBy != alice.user.ID {
			t.Errorf("payer: expected alice, got %s", e.PaidBy)
		}
		if len(e.Splits) != 3 {
			t.Fatalf("splits: expected 3, got %d", len(e.Splits))
		}
		sum := decimal.Zero
		for _, s := range e.Splits {
			sum = sum.Add(s.Amount)
		}
		amountEquals(t, sum, "100.00")
	})

	t.Run("exact split must add up", func(t *testing.T) {
		_, err := bob.expenses.CreateExpense(ctx, connect.NewRequest(&api.CreateExpenseRequest{
			GroupID:     group.ID,
			Title:       "Groceries",
			TotalAmount: decimal.RequireFromString("50"),
			Mode:        api.SplitExact,
			Shares: []api.ExactShare{
				{UserID: alice.user.ID, Amount: decimal.RequireFromString("20")},
				{UserID: bob.user.ID, Amount: decimal.RequireFromString("20")},
			},
		}))
		expectCode(t, err, connect.CodeInvalidArgument)

		resp, err := bob.expenses.CreateExpense(ctx, connect.NewRequest(&api.CreateExpenseRequest{
			GroupID:     group.ID,
			Title:       "Groceries",
			TotalAmount: decimal.RequireFromString("50"),
			Mode:        api.SplitExact,
			Shares: []api.ExactShare{
				{UserID: alice.user.ID, Amount: decimal.RequireFromString("20")},
				{UserID: bob.user.ID, Amount: decimal.RequireFromString("30")},
			},
		}))
		if err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if resp.Msg.Expense.PaidBy != bob.user.ID || len(resp.Msg.Expense.Splits) != 2 {
			t.Errorf("unexpected expense: %+v", resp.Msg.Expense)
		}
	})

	t.Run("itemized split with tax", func(t *testing.T) {
		resp, err := carol.expenses.CreateExpense(ctx, connect.NewRequest(&api.CreateExpenseRequest{
			GroupID:      group.ID,
			Title:        "Pizza night",
			TotalAmount:  decimal.RequireFromString("33.00"),
			Mode:         api.SplitItemized,
			Participants: []string{alice.user.ID, carol.user.ID},
			Items: []api.LineItem{
				{Description: "Pizza", Amount: decimal.RequireFromString("20"), AssignedTo: []string{alice.user.ID, carol.user.ID}},
				{Description: "Beer", Amount: decimal.RequireFromString("10"), AssignedTo: []string{carol.user.ID}},
			},
		}))
		if err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		got := map[string]decimal.Decimal{}
		for _, s := range resp.Msg.Expense.Splits {
			got[s.UserID] = s.Amount
		}
		amountEquals(t, got[alice.user.ID], "11.00")
		amountEquals(t, got[carol.user.ID], "22.00")
	})

	t.Run("payer must be a member", func(t *testing.T) {
		_, err := alice.expenses.CreateExpense(ctx, connect.NewRequest(&api.CreateExpenseRequest{
			GroupID:     group.ID,
			Title:       "Taxi",
			TotalAmount: decimal.RequireFromString("10"),
			PaidBy:      "ghost",
			Mode:        api.SplitEqual,
		}))
		expectCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("non-positive total", func(t *testing.T) {
		_, err := alice.expenses.CreateExpense(ctx, connect.NewRequest(&api.CreateExpenseRequest{
			GroupID:     group.ID,
			Title:       "Nothing",
			TotalAmount: decimal.Zero,
			Mode:        api.SplitEqual,
		}))
		expectCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("ListExpenses and GetExpense", func(t *testing.T) {
		resp, err := bob.expenses.ListExpenses(ctx, connect.NewRequest(&api.ListExpensesRequest{GroupID: group.ID}))
		if err != nil {
			t.Fatalf("ListExpenses failed: %v", err)
		}
		if len(resp.Msg.Expenses) != 3 {
			t.Fatalf("expected 3 expenses, got %d", len(resp.Msg.Expenses))
		}

		got, err := bob.expenses.GetExpense(ctx, connect.NewRequest(&api.GetExpenseRequest{ExpenseID: resp.Msg.Expenses[0].ID}))
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.Msg.Expense.Title != resp.Msg.Expenses[0].Title {
			t.Errorf("title mismatch: %s vs %s", got.Msg.Expense.Title, resp.Msg.Expenses[0].Title)
		}
	})
}

func TestBalancesAndPlan(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()
	alice := srv.register(t, "alice", "")
	bob := srv.register(t, "bob", "")
	carol := srv.register(t, "carol", "")
	group := alice.createGroup(t, "Trip", bob, carol)

	plan, err := alice.groups.GetSettlementPlan(ctx, connect.NewRequest(&api.GetSettlementPlanRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("GetSettlementPlan failed: %v", err)
	}
	if plan.Msg.Plan.Status != "empty" || len(plan.Msg.Plan.Transfers) != 0 {
		t.Errorf("expected empty plan, got %+v", plan.Msg.Plan)
	}

	alice.addEqualExpense(t, group.ID, "Cabin", "90.00")
	bob.addEqualExpense(t, group.ID, "Lift passes", "30.00")

	balances, err := carol.groups.GetGroupBalances(ctx, connect.NewRequest(&api.GetGroupBalancesRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("GetGroupBalances failed: %v", err)
	}
	got := map[string]decimal.Decimal{}
	for _, b := range balances.Msg.Balances {
		got[b.UserID] = b.Amount
	}
	amountEquals(t, got[alice.user.ID], "50.00")
	amountEquals(t, got[bob.user.ID], "-10.00")
	amountEquals(t, got[carol.user.ID], "-40.00")

	plan, err = carol.groups.GetSettlementPlan(ctx, connect.NewRequest(&api.GetSettlementPlanRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("GetSettlementPlan failed: %v", err)
	}
	p := plan.Msg.Plan
	if p.Status != "ready" || !p.Valid || p.TransactionCount != 2 {
		t.Fatalf("unexpected plan: %+v", p)
	}
	if p.Transfers[0].From != carol.user.ID || p.Transfers[0].To != alice.user.ID {
		t.Errorf("first transfer: expected carol -> alice, got %+v", p.Transfers[0])
	}
	amountEquals(t, p.Transfers[0].Amount, "40.00")
	amountEquals(t, p.TotalAmount, "50.00")
}

func TestSettlementService(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()
	alice := srv.register(t, "alice", aliceWallet)
	bob := srv.register(t, "bob", bobWallet)
	carol := srv.register(t, "carol", "")
	group := alice.createGroup(t, "Ski Trip", bob, carol)
	alice.addEqualExpense(t, group.ID, "Cabin", "90.00")

	t.Run("Settle pays the creditor and settles splits", func(t *testing.T) {
		resp, err := bob.settlements.Settle(ctx, connect.NewRequest(&api.SettleRequest{GroupID: group.ID}))
		if err != nil {
			t.Fatalf("Settle failed: %v", err)
		}
		r := resp.Msg.Report
		if !r.Complete || len(r.Results) != 1 || r.SplitsSettled != 1 {
			t.Fatalf("unexpected report: %+v", r)
		}
		if r.Results[0].Status != "succeeded" || r.Results[0].TxHash == "" {
			t.Errorf("unexpected result: %+v", r.Results[0])
		}
		amountEquals(t, r.Results[0].Transfer.Amount, "30.00")
		if r.Memo != "sp|"+group.ID[:8]+"|Ski Trip" {
			t.Errorf("memo: got %q", r.Memo)
		}

		sent := srv.sandbox.Submitted()
		if len(sent) != 1 || sent[0].To != aliceWallet {
			t.Fatalf("expected one transfer to alice, got %+v", sent)
		}
	})

	t.Run("settling again is a no-op", func(t *testing.T) {
		resp, err := bob.settlements.Settle(ctx, connect.NewRequest(&api.SettleRequest{GroupID: group.ID}))
		if err != nil {
			t.Fatalf("Settle failed: %v", err)
		}
		if len(resp.Msg.Report.Results) != 0 || resp.Msg.Report.SplitsSettled != 0 {
			t.Errorf("expected empty report, got %+v", resp.Msg.Report)
		}
		if len(srv.sandbox.Submitted()) != 1 {
			t.Error("expected no new transfers")
		}
	})

	t.Run("skipped leg can be retried after the wallet is linked", func(t *testing.T) {
		club := alice.createGroup(t, "Dinner club", carol)
		carol.addEqualExpense(t, club.ID, "Dinner", "40.00")

		// alice owes carol 20, but carol has no wallet yet.
		resp, err := alice.settlements.Settle(ctx, connect.NewRequest(&api.SettleRequest{GroupID: club.ID}))
		if err != nil {
			t.Fatalf("Settle failed: %v", err)
		}
		r := resp.Msg.Report
		if r.Complete || r.SplitsSettled != 0 || len(r.Results) != 1 || r.Results[0].Status != "skipped" {
			t.Fatalf("expected one skipped leg, got %+v", r)
		}

		if _, err := carol.auth.UpdateWallet(ctx, connect.NewRequest(&api.UpdateWalletRequest{WalletAddress: carolWallet})); err != nil {
			t.Fatalf("UpdateWallet failed: %v", err)
		}

		retry, err := alice.settlements.RetrySettlement(ctx, connect.NewRequest(&api.RetrySettlementRequest{
			GroupID:   club.ID,
			Transfers: []api.Transfer{r.Results[0].Transfer},
		}))
		if err != nil {
			t.Fatalf("RetrySettlement failed: %v", err)
		}
		if !retry.Msg.Report.Complete || retry.Msg.Report.SplitsSettled != 1 {
			t.Errorf("expected completed retry, got %+v", retry.Msg.Report)
		}
		amountEquals(t, retry.Msg.Report.Results[0].Transfer.Amount, "20.00")

		sent := srv.sandbox.Submitted()
		if len(sent) != 2 || sent[1].To != carolWallet {
			t.Errorf("expected second transfer to carol, got %+v", sent)
		}
	})

	t.Run("retry cannot pay someone else's debt", func(t *testing.T) {
		_, err := alice.settlements.RetrySettlement(ctx, connect.NewRequest(&api.RetrySettlementRequest{
			GroupID: group.ID,
			Transfers: []api.Transfer{
				{From: bob.user.ID, To: alice.user.ID, Amount: decimal.RequireFromString("5")},
			},
		}))
		expectCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("ListSettlements and ListActivity", func(t *testing.T) {
		resp, err := carol.settlements.ListSettlements(ctx, connect.NewRequest(&api.ListSettlementsRequest{GroupID: group.ID}))
		if err != nil {
			t.Fatalf("ListSettlements failed: %v", err)
		}
		if len(resp.Msg.Settlements) != 1 {
			t.Fatalf("expected 1 settlement, got %d", len(resp.Msg.Settlements))
		}
		if s := resp.Msg.Settlements[0]; s.FromUserID != bob.user.ID || s.ToUserID != alice.user.ID || s.TxHash == "" {
			t.Errorf("unexpected settlement: %+v", s)
		}

		feed, err := carol.settlements.ListActivity(ctx, connect.NewRequest(&api.ListActivityRequest{GroupID: group.ID}))
		if err != nil {
			t.Fatalf("ListActivity failed: %v", err)
		}
		// settlement, expense, group_created
		if len(feed.Msg.Activity) != 3 {
			t.Fatalf("expected 3 activity entries, got %d", len(feed.Msg.Activity))
		}
		if feed.Msg.Activity[2].Type != "group_created" {
			t.Errorf("expected group_created last, got %s", feed.Msg.Activity[2].Type)
		}
	})

	t.Run("non-member cannot settle", func(t *testing.T) {
		dave := srv.register(t, "dave", "")
		_, err := dave.settlements.Settle(ctx, connect.NewRequest(&api.SettleRequest{GroupID: group.ID}))
		expectCode(t, err, connect.CodePermissionDenied)
	})
}

func TestSettlementRetryPaysEachCreditorOnce(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()

	bob := srv.register(t, "bob", bobWallet)
	carol := srv.register(t, "carol", carolWallet)
	dave := srv.register(t, "dave", "")
	group := bob.createGroup(t, "Cabin", carol, dave)

	// dave owes bob 20 and carol 10.
	for _, payer := range []struct {
		who    *session
		amount string
	}{{bob, "20"}, {carol, "10"}} {
		_, err := payer.who.expenses.CreateExpense(ctx, connect.NewRequest(&api.CreateExpenseRequest{
			GroupID:     group.ID,
			Title:       "Groceries",
			TotalAmount: decimal.RequireFromString(payer.amount),
			Mode:        api.SplitExact,
			Shares:      []api.ExactShare{{UserID: dave.user.ID, Amount: decimal.RequireFromString(payer.amount)}},
		}))
		if err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
	}

	srv.sandbox.FailFor(carolWallet, errors.New("insufficient gas"))
	resp, err := dave.settlements.Settle(ctx, connect.NewRequest(&api.SettleRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	r := resp.Msg.Report
	if r.Complete || r.SplitsSettled != 0 || len(r.Results) != 2 {
		t.Fatalf("expected a partial batch, got %+v", r)
	}
	if len(r.Outstanding) != 1 || r.Outstanding[0].To != carol.user.ID {
		t.Fatalf("expected carol outstanding, got %+v", r.Outstanding)
	}
	amountEquals(t, r.Outstanding[0].Amount, "10.00")

	t.Run("paid leg cannot be retried", func(t *testing.T) {
		_, err := dave.settlements.RetrySettlement(ctx, connect.NewRequest(&api.RetrySettlementRequest{
			GroupID:   group.ID,
			Transfers: []api.Transfer{r.Results[0].Transfer},
		}))
		expectCode(t, err, connect.CodeInvalidArgument)
		if n := len(srv.sandbox.Submitted()); n != 1 {
			t.Errorf("expected bob to be paid once, got %d transfers", n)
		}
	})

	t.Run("fresh settle is refused until the batch is finished", func(t *testing.T) {
		_, err := dave.settlements.Settle(ctx, connect.NewRequest(&api.SettleRequest{GroupID: group.ID}))
		expectCode(t, err, connect.CodeFailedPrecondition)
	})

	t.Run("failed leg completes the batch", func(t *testing.T) {
		srv.sandbox.FailFor(carolWallet, nil)
		retry, err := dave.settlements.RetrySettlement(ctx, connect.NewRequest(&api.RetrySettlementRequest{
			GroupID:   group.ID,
			Transfers: []api.Transfer{r.Results[1].Transfer},
		}))
		if err != nil {
			t.Fatalf("RetrySettlement failed: %v", err)
		}
		if !retry.Msg.Report.Complete || retry.Msg.Report.SplitsSettled != 2 {
			t.Errorf("expected completed retry, got %+v", retry.Msg.Report)
		}

		sent := srv.sandbox.Submitted()
		if len(sent) != 2 || sent[0].To != bobWallet || sent[1].To != carolWallet {
			t.Errorf("expected one transfer each to bob and carol, got %+v", sent)
		}
	})
}
