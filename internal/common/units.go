package common

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// Both chains use 9 decimal places for their native asset
// (1 SOL = 1e9 lamports, 1 TON = 1e9 nanoTON).
const (
	NativeDecimals = 9
	UnitScale      = uint64(1_000_000_000)

	BpsDenominator = uint64(10_000)
)

// ToRaw converts a human-readable decimal string ("0.5") into smallest
// units. The conversion is pure integer string arithmetic: no float ever
// touches an on-chain amount.
func ToRaw(amount string) (uint64, error) {
	s := strings.TrimSpace(amount)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return 0, fmt.Errorf("amount must be unsigned: %q", amount)
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > NativeDecimals {
		return 0, fmt.Errorf("amount %q exceeds %d decimal places", amount, NativeDecimals)
	}
	frac += strings.Repeat("0", NativeDecimals-len(frac))

	for _, part := range []string{whole, frac} {
		for _, r := range part {
			if r < '0' || r > '9' {
				return 0, fmt.Errorf("malformed amount %q", amount)
			}
		}
	}

	digits := strings.TrimLeft(whole+frac, "0")
	if digits == "" {
		return 0, nil
	}
	raw, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("amount %q out of range", amount)
	}
	return raw, nil
}

// FromRaw renders smallest units as a decimal string with trailing zeros
// trimmed ("500000000" -> "0.5").
func FromRaw(raw uint64) string {
	whole := raw / UnitScale
	frac := raw % UnitScale
	if frac == 0 {
		return strconv.FormatUint(whole, 10)
	}
	s := fmt.Sprintf("%d.%09d", whole, frac)
	return strings.TrimRight(s, "0")
}

// MulBps computes amount * bps / 10000 exactly, using a 128-bit
// intermediate so large amounts never lose precision or overflow.
func MulBps(amount uint64, bps uint64) uint64 {
	if bps >= BpsDenominator {
		// ratio is never above 100% in this pipeline; clamp
		return amount
	}
	hi, lo := bits.Mul64(amount, bps)
	q, _ := bits.Div64(hi, lo, BpsDenominator)
	return q
}

// MinOutput applies slippage tolerance to a quoted output:
// floor(quoted * (10000 - slippageBps) / 10000). With zero slippage the
// quoted amount is returned unchanged, no rounding applied.
func MinOutput(quotedRaw uint64, slippageBps uint16) uint64 {
	if slippageBps == 0 {
		return quotedRaw
	}
	if uint64(slippageBps) >= BpsDenominator {
		return 0
	}
	return MulBps(quotedRaw, BpsDenominator-uint64(slippageBps))
}
