package payments

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sync"

	"github.com/mmynk/splitpay/internal/settlement"
)

// Submitted is a transfer accepted by the Sandbox.
type Submitted struct {
	settlement.Transfer
	TxHash string
}

// Sandbox is an in-process PaymentExecutor. It accepts every transfer and
// derives a deterministic transaction hash from the submission order and
// the transfer itself. Failures can be injected per recipient address.
type Sandbox struct {
	mu        sync.Mutex
	decimals  int32
	nonce     uint64
	submitted []Submitted
	failures  map[string]error
}

func NewSandbox(decimals int32) *Sandbox {
	return &Sandbox{decimals: decimals, failures: make(map[string]error)}
}

// FailFor makes every transfer to address fail with err until cleared
// with a nil err.
func (s *Sandbox) FailFor(address string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, address)
		return
	}
	s.failures[address] = err
}

// SubmitTransfer implements settlement.PaymentExecutor.
func (s *Sandbox) SubmitTransfer(ctx context.Context, t settlement.Transfer) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err, ok := s.failures[t.To]; ok {
		return "", err
	}

	s.nonce++
	h := sha256.New()
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], s.nonce)
	h.Write(n[:])
	h.Write([]byte(t.To))
	h.Write(settlement.ToTokenUnits(t.Amount, s.decimals).Bytes())
	h.Write(t.Memo[:])
	txHash := "0x" + hex.EncodeToString(h.Sum(nil))

	s.submitted = append(s.submitted, Submitted{Transfer: t, TxHash: txHash})
	return txHash, nil
}

// Submitted returns a copy of every accepted transfer, oldest first.
func (s *Sandbox) Submitted() []Submitted {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Submitted, len(s.submitted))
	copy(out, s.submitted)
	return out
}
