// Package payments implements settlement.PaymentExecutor.
package payments

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/mmynk/splitpay/internal/settlement"
)

// RouteTransfers is the signer endpoint that submits a token transfer and
// waits for its receipt.
const RouteTransfers = "/v1/transfers"

// ErrRejected is returned when the signer answered but the chain did not
// accept the transfer.
var ErrRejected = errors.New("transfer rejected")

// StatusCodeError is returned for any non-200 response from the signer.
type StatusCodeError struct {
	Code    int
	Message string
}

func NewStatusCodeError(code int, message string) *StatusCodeError {
	return &StatusCodeError{Code: code, Message: message}
}

func (e *StatusCodeError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status code %d", e.Code)
	}
	return fmt.Sprintf("unexpected status code %d: %s", e.Code, e.Message)
}

type transferRequest struct {
	To string `json:"to"`
	// Amount is in token base units, as a decimal string.
	Amount string `json:"amount"`
	// Memo is the 32-byte memo, 0x-prefixed hex.
	Memo string `json:"memo"`
}

type transferResponse struct {
	TxHash string `json:"tx_hash"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HTTPExecutor submits transfers to a signer service that holds the
// payer's session key. The signer blocks until the transfer is confirmed.
type HTTPExecutor struct {
	baseURL    string
	token      string
	decimals   int32
	httpClient *http.Client
}

// NewHTTPExecutor creates an executor for the signer at baseURL. Amounts are
// converted to token base units using decimals. token, when set, is sent as
// a bearer token.
func NewHTTPExecutor(baseURL, token string, decimals int32) *HTTPExecutor {
	return &HTTPExecutor{
		baseURL:    baseURL,
		token:      token,
		decimals:   decimals,
		httpClient: http.DefaultClient,
	}
}

// SubmitTransfer implements settlement.PaymentExecutor.
func (c *HTTPExecutor) SubmitTransfer(ctx context.Context, t settlement.Transfer) (string, error) {
	payload, err := json.Marshal(transferRequest{
		To:     t.To,
		Amount: settlement.ToTokenUnits(t.Amount, c.decimals).String(),
		Memo:   "0x" + hex.EncodeToString(t.Memo[:]),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode transfer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+RouteTransfers, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach signer: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	// The body is fully read; a close error cannot undo a confirmed transfer.
	_ = resp.Body.Close()
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		_ = json.Unmarshal(body, &e)
		return "", NewStatusCodeError(resp.StatusCode, e.Error)
	}

	var out transferResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if out.Status != "" && out.Status != "success" {
		return "", fmt.Errorf("%w: %s %s", ErrRejected, out.Status, out.Reason)
	}
	if out.TxHash == "" {
		return "", errors.New("signer returned no transaction hash")
	}
	return out.TxHash, nil
}
