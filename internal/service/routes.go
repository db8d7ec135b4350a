package service

import (
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitpay/internal/auth"
	"github.com/mmynk/splitpay/internal/middleware"
	"github.com/mmynk/splitpay/internal/settlement"
	"github.com/mmynk/splitpay/internal/storage"
	"github.com/mmynk/splitpay/pkg/api"
)

// Deps are the collaborators the RPC services are built from.
type Deps struct {
	Store         storage.Store
	Authenticator auth.Authenticator
	JWT           *auth.JWTManager
	Executor      *settlement.Executor
	Logger        *slog.Logger
}

// Mount registers every service on mux. AuthService accepts anonymous
// calls for Register and Login; everything else requires a bearer token.
func Mount(mux *http.ServeMux, deps Deps) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	public := connect.WithInterceptors(middleware.OptionalAuth(deps.JWT), middleware.LoggingInterceptor())
	private := connect.WithInterceptors(middleware.RequireAuth(deps.JWT), middleware.LoggingInterceptor())

	mux.Handle(api.NewAuthServiceHandler(NewAuthService(deps.Authenticator, deps.JWT, deps.Store, logger), public))
	mux.Handle(api.NewGroupServiceHandler(NewGroupService(deps.Store), private))
	mux.Handle(api.NewExpenseServiceHandler(NewExpenseService(deps.Store), private))
	mux.Handle(api.NewSettlementServiceHandler(NewSettlementService(deps.Store, deps.Executor), private))
}
