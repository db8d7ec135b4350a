package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitpay/internal/auth"
	"github.com/mmynk/splitpay/internal/middleware"
	"github.com/mmynk/splitpay/internal/models"
	"github.com/mmynk/splitpay/internal/wallet"
	"github.com/mmynk/splitpay/pkg/api"
)

// UserStore is the user directory the auth service reads and updates.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateWalletAddress(ctx context.Context, userID, address string) error
}

var _ api.AuthServiceHandler = (*AuthService)(nil)

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	users         UserStore
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, users UserStore, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		users:         users,
		logger:        logger,
	}
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	s.logger.Info("Register request", "email", req.Msg.Email)

	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	user, err := s.authenticator.Register(ctx, auth.Registration{
		Email:         req.Msg.Email,
		DisplayName:   req.Msg.DisplayName,
		Credential:    req.Msg.Password,
		WalletAddress: req.Msg.WalletAddress,
	})
	if err != nil {
		s.logger.Error("Registration failed", "email", req.Msg.Email, "error", err)
		return nil, connectError(err)
	}

	// Generate JWT token
	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("User registered successfully", "user_id", user.ID, "email", user.Email)
	return connect.NewResponse(&api.RegisterResponse{User: toAPIUser(user), Token: token}), nil
}

// Login authenticates a user and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	s.logger.Info("Login request", "email", req.Msg.Email)

	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	user, err := s.authenticator.Authenticate(ctx, req.Msg.Email, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Login failed", "email", req.Msg.Email, "error", err)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidCredentials)
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	// Generate JWT token
	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("User logged in successfully", "user_id", user.ID, "email", user.Email)
	return connect.NewResponse(&api.LoginResponse{User: toAPIUser(user), Token: token}), nil
}

// Logout invalidates the user's session (currently a no-op since JWTs are stateless).
func (s *AuthService) Logout(ctx context.Context, req *connect.Request[api.LogoutRequest]) (*connect.Response[api.LogoutResponse], error) {
	// With stateless JWTs, logout is handled client-side by discarding the token.
	s.logger.Info("Logout request", "user_id", middleware.GetUserID(ctx))
	return connect.NewResponse(&api.LogoutResponse{}), nil
}

// GetCurrentUser returns the currently authenticated user's information.
func (s *AuthService) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GetCurrentUserResponse{User: toAPIUser(user)}), nil
}

// UpdateWallet links the address settlements owed to the caller are paid to.
func (s *AuthService) UpdateWallet(ctx context.Context, req *connect.Request[api.UpdateWalletRequest]) (*connect.Response[api.UpdateWalletResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	if err := wallet.ValidateAddress(req.Msg.WalletAddress); err != nil {
		return nil, connectError(err)
	}

	if err := s.users.UpdateWalletAddress(ctx, userID, wallet.Normalize(req.Msg.WalletAddress)); err != nil {
		s.logger.Error("UpdateWallet failed", "user_id", userID, "error", err)
		return nil, connectError(err)
	}
	s.logger.Info("Wallet updated", "user_id", userID)

	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.UpdateWalletResponse{User: toAPIUser(user)}), nil
}

func (s *AuthService) currentUser(ctx context.Context) (*models.User, error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load current user", "user_id", userID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	if user == nil {
		// Token outlived the account.
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
	}
	return user, nil
}
