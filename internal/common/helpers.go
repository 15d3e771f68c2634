package common

import (
	"math/big"
	"strings"
)

const (
	UnitDecimals = 12 // Substrate dev chains use 12 decimals (planck)
)

// PlanckToUnits converts planck to a unit string without float precision loss
func PlanckToUnits(planck *big.Int) string {
	if planck == nil {
		return formatWithDecimals("0", UnitDecimals)
	}
	return formatWithDecimals(planck.String(), UnitDecimals)
}

// formatWithDecimals inserts a decimal point into a string of digits
// Example: formatWithDecimals("24981836", 9) = "0.024981836"
func formatWithDecimals(digits string, decimals int) string {
	neg := strings.HasPrefix(digits, "-")
	s := strings.TrimPrefix(digits, "-")

	// Pad with leading zeros if needed
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}

	// Insert decimal point
	pos := len(s) - decimals
	out := s[:pos] + "." + s[pos:]
	if neg {
		out = "-" + out
	}
	return out
}
