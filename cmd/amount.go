package cmd

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

// parseAmount converts a human-units amount string (e.g. "1.5") into
// base units scaled by the token's decimals.
func parseAmount(s string, decimals uint8) (*uint256.Int, error) {
	units, ok := new(big.Float).SetString(s)
	if !ok || units.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	scale := new(big.Float).SetInt(
		new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	scaled, _ := new(big.Float).Mul(units, scale).Int(nil)

	v, overflow := uint256.FromBig(scaled)
	if overflow {
		return nil, fmt.Errorf("amount %q overflows 256 bits", s)
	}
	return v, nil
}

// formatAmount renders a base-units value in human units, trimming
// trailing zeros.
func formatAmount(v *uint256.Int, decimals uint8) string {
	if decimals == 0 {
		return v.Dec()
	}
	raw := v.Dec()
	d := int(decimals)
	if len(raw) <= d {
		raw = strings.Repeat("0", d-len(raw)+1) + raw
	}
	whole := raw[:len(raw)-d]
	frac := strings.TrimRight(raw[len(raw)-d:], "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}
