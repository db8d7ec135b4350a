package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"

	"github.com/mmynk/splitpay/internal/auth"
	"github.com/mmynk/splitpay/internal/calculator"
	"github.com/mmynk/splitpay/internal/middleware"
	"github.com/mmynk/splitpay/internal/settlement"
	"github.com/mmynk/splitpay/internal/storage"
	"github.com/mmynk/splitpay/internal/wallet"
)

var (
	errNotMember    = errors.New("not a member of this group")
	errUnauthorized = errors.New("authentication required")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateRequest runs struct tag validation and reports every failed field.
func validateRequest(msg any) error {
	err := validate.Struct(msg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return connect.NewError(connect.CodeInvalidArgument, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid request: %s", strings.Join(fields, ", ")))
}

// connectError maps domain errors onto Connect codes.
func connectError(err error) error {
	var ce *connect.Error
	if errors.As(err, &ce) {
		return err
	}

	code := connect.CodeInternal
	switch {
	case errors.Is(err, storage.ErrNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, storage.ErrAlreadyMember),
		errors.Is(err, auth.ErrEmailExists),
		errors.Is(err, settlement.ErrAlreadyRecorded):
		code = connect.CodeAlreadyExists
	case errors.Is(err, errNotMember):
		code = connect.CodePermissionDenied
	case errors.Is(err, errUnauthorized),
		errors.Is(err, auth.ErrInvalidCredentials):
		code = connect.CodeUnauthenticated
	case errors.Is(err, settlement.ErrSettlementInProgress):
		code = connect.CodeAborted
	case errors.Is(err, settlement.ErrUnreconciledTransfers):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, settlement.ErrForeignTransfer),
		errors.Is(err, settlement.ErrRetryExceedsDebt),
		errors.Is(err, settlement.ErrInvalidAmount),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrPasswordTooLong),
		errors.Is(err, wallet.ErrInvalidAddress),
		errors.Is(err, calculator.ErrZeroSubtotal),
		errors.Is(err, calculator.ErrNoParticipants),
		errors.Is(err, calculator.ErrNothingAssigned),
		errors.Is(err, calculator.ErrNegativeAmount),
		errors.Is(err, calculator.ErrDuplicatePerson):
		code = connect.CodeInvalidArgument
	}
	return connect.NewError(code, err)
}

// caller returns the authenticated user set by middleware.RequireAuth.
func caller(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, errUnauthorized)
	}
	return userID, nil
}
