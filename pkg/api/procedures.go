package api

const (
	AuthServiceName       = "splitpay.v1.AuthService"
	GroupServiceName      = "splitpay.v1.GroupService"
	ExpenseServiceName    = "splitpay.v1.ExpenseService"
	SettlementServiceName = "splitpay.v1.SettlementService"
)

const (
	AuthServiceRegisterProcedure       = "/splitpay.v1.AuthService/Register"
	AuthServiceLoginProcedure          = "/splitpay.v1.AuthService/Login"
	AuthServiceLogoutProcedure         = "/splitpay.v1.AuthService/Logout"
	AuthServiceGetCurrentUserProcedure = "/splitpay.v1.AuthService/GetCurrentUser"
	AuthServiceUpdateWalletProcedure   = "/splitpay.v1.AuthService/UpdateWallet"

	GroupServiceCreateGroupProcedure       = "/splitpay.v1.GroupService/CreateGroup"
	GroupServiceGetGroupProcedure          = "/splitpay.v1.GroupService/GetGroup"
	GroupServiceListGroupsProcedure        = "/splitpay.v1.GroupService/ListGroups"
	GroupServiceAddMemberProcedure         = "/splitpay.v1.GroupService/AddMember"
	GroupServiceRemoveMemberProcedure      = "/splitpay.v1.GroupService/RemoveMember"
	GroupServiceGetGroupBalancesProcedure  = "/splitpay.v1.GroupService/GetGroupBalances"
	GroupServiceGetSettlementPlanProcedure = "/splitpay.v1.GroupService/GetSettlementPlan"

	ExpenseServiceCreateExpenseProcedure = "/splitpay.v1.ExpenseService/CreateExpense"
	ExpenseServiceGetExpenseProcedure    = "/splitpay.v1.ExpenseService/GetExpense"
	ExpenseServiceListExpensesProcedure  = "/splitpay.v1.ExpenseService/ListExpenses"

	SettlementServiceSettleProcedure          = "/splitpay.v1.SettlementService/Settle"
	SettlementServiceRetrySettlementProcedure = "/splitpay.v1.SettlementService/RetrySettlement"
	SettlementServiceListSettlementsProcedure = "/splitpay.v1.SettlementService/ListSettlements"
	SettlementServiceListActivityProcedure    = "/splitpay.v1.SettlementService/ListActivity"
)
