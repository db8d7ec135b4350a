package settlement

import (
	"math/big"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	// MemoSize is the width of the on-chain memo slot.
	MemoSize = 32

	// MaxMemoLen leaves one byte of the slot unused.
	MaxMemoLen = MemoSize - 1

	memoPrefix     = "sp|"
	memoGroupIDLen = 8
)

// BuildSettlementMemo returns "sp|<groupID[:8]>|<description>", with the
// description cut so the memo never exceeds MaxMemoLen bytes. Cuts happen on
// rune boundaries.
func BuildSettlementMemo(groupID, description string) string {
	shortGroupID := truncate(groupID, memoGroupIDLen)
	budget := MaxMemoLen - len(memoPrefix) - len(shortGroupID) - 1
	return memoPrefix + shortGroupID + "|" + truncate(description, budget)
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// EncodeMemo right-pads memo with zero bytes into the memo slot.
// Anything past MemoSize bytes is dropped.
func EncodeMemo(memo string) [MemoSize]byte {
	var out [MemoSize]byte
	copy(out[:], memo)
	return out
}

// DecodeMemo reverses EncodeMemo.
func DecodeMemo(b [MemoSize]byte) string {
	n := len(b)
	for n > 0 && b[n-1] == 0 {
		n--
	}
	return string(b[:n])
}

// ToTokenUnits converts a currency amount into integer token base units.
// Precision beyond the token's decimals is truncated toward zero.
func ToTokenUnits(amount decimal.Decimal, decimals int32) *big.Int {
	return amount.Shift(decimals).Truncate(0).BigInt()
}

// FromTokenUnits converts token base units back into a currency amount.
func FromTokenUnits(units *big.Int, decimals int32) decimal.Decimal {
	return decimal.NewFromBigInt(units, -decimals)
}
