// Package amount converts between raw fixed-point token amounts and
// human-readable decimal strings without going through float64.
package amount

import (
	"math"
	"math/big"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/seedfarm/internal/domain"
)

// Display precision per field.
const (
	BalancePlaces = 3
	StakePlaces   = 5
	RewardPlaces  = 5
	APRPlaces     = 0
	PricePlaces   = 5
)

// unavailable is shown for values that have no finite representation.
const unavailable = "-"

// ToDisplay shifts raw by -decimals and rounds half away from zero to places
// fractional digits, keeping trailing zeros.
func ToDisplay(raw *big.Int, decimals, places int32) string {
	if raw == nil {
		raw = new(big.Int)
	}
	return decimal.NewFromBigInt(raw, -decimals).StringFixed(places)
}

// ToRaw parses a non-negative decimal numeral, shifts it by decimals and
// truncates the remainder.
func ToRaw(input string, decimals int32) (*big.Int, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return nil, errors.Wrap(domain.ErrInvalidAmount, "empty input")
	}
	if !isNumeral(s) {
		return nil, errors.Wrapf(domain.ErrInvalidAmount, "%q is not a decimal number", input)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrInvalidAmount, "%q: %v", input, err)
	}
	return d.Shift(decimals).Truncate(0).BigInt(), nil
}

// isNumeral accepts digits with at most one decimal point and at least one
// digit. Signs and exponents are rejected.
func isNumeral(s string) bool {
	digits, dots := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

// Balance formats a raw wallet balance.
func Balance(raw *big.Int) string { return ToDisplay(raw, domain.TokenDecimals, BalancePlaces) }

// Stake formats a raw staked amount.
func Stake(raw *big.Int) string { return ToDisplay(raw, domain.TokenDecimals, StakePlaces) }

// Reward formats a raw pending reward.
func Reward(raw *big.Int) string { return ToDisplay(raw, domain.TokenDecimals, RewardPlaces) }

// APR formats the yield estimate with no fractional digits. It rounds the
// shortest decimal form of v, half away from zero.
func APR(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return unavailable
	}
	return decimal.NewFromFloat(v).StringFixed(APRPlaces)
}

// Price formats the pool price ratio. It rounds the exact binary value of
// v, so 1.000025 (stored just below) shows as 1.00002.
func Price(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return unavailable
	}
	return decimal.NewFromFloatWithExponent(v, -PricePlaces).StringFixed(PricePlaces)
}

// ShortenAddress keeps the first and last five characters of an address.
func ShortenAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:5] + " . . . " + addr[len(addr)-5:]
}
