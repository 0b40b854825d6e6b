package domain

import "math/big"

const (
	// TokenDecimals is the fixed-point precision of every farm token amount.
	TokenDecimals = 18
	// SecondsPerWeek scales the per-second reward rate in the APR estimate.
	SecondsPerWeek = 604800
)

// Display units of the farm: the pair prices SEED in FTM, the staked and
// held token is the SEED/FTM LP token and rewards are paid in SEED.
const (
	QuoteUnit  = "FTM"
	LPUnit     = "SEED/FTM spLP"
	RewardUnit = "SEED"
)

var (
	approvalThreshold = new(big.Int).Mul(big.NewInt(100), pow10(TokenDecimals))
	approvalAmount    = new(big.Int).Mul(big.NewInt(1_000_000_000), pow10(TokenDecimals))
)

// ApprovalThreshold returns 100 tokens in raw units, the unlock gate boundary.
func ApprovalThreshold() *big.Int {
	return new(big.Int).Set(approvalThreshold)
}

// ApprovalAmount returns 10^9 tokens in raw units, granted once so staking
// never needs a second approval.
func ApprovalAmount() *big.Int {
	return new(big.Int).Set(approvalAmount)
}

// RawOrZero returns a copy of v, or zero for nil.
func RawOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}

func pow10(n int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(n), nil)
}
