package domain

import (
	"math"
	"math/big"
	"time"
)

// FarmSnapshot is the account-scoped state read in one poll cycle.
// Fields are fetched independently, so minor skew between them is expected.
type FarmSnapshot struct {
	Account      string
	UserBalance  *big.Int
	UserStake    *big.Int
	UserApproved *big.Int
	UserReward   *big.Int
	FetchedAt    time.Time
}

// EmptySnapshot returns a zeroed snapshot for account.
func EmptySnapshot(account string) FarmSnapshot {
	return FarmSnapshot{
		Account:      account,
		UserBalance:  new(big.Int),
		UserStake:    new(big.Int),
		UserApproved: new(big.Int),
		UserReward:   new(big.Int),
	}
}

// PriceSample is the pool reserve ratio. Display-only, float precision is fine here.
type PriceSample struct {
	Reserve0  *big.Int
	Reserve1  *big.Int
	Price     float64
	SampledAt time.Time
}

// NewPriceSample computes reserve0/reserve1. ok is false for an empty pool.
func NewPriceSample(reserve0, reserve1 *big.Int, at time.Time) (PriceSample, bool) {
	if reserve0 == nil || reserve1 == nil || reserve1.Sign() == 0 {
		return PriceSample{}, false
	}
	return PriceSample{
		Reserve0:  new(big.Int).Set(reserve0),
		Reserve1:  new(big.Int).Set(reserve1),
		Price:     toFloat(reserve0) / toFloat(reserve1),
		SampledAt: at,
	}, true
}

// YieldEstimate is the farm APR derived from reward rate and total stake.
type YieldEstimate struct {
	RewardRate  *big.Int
	TotalSupply *big.Int
	APR         float64
	// StalePrice marks estimates computed from the previous tick's price.
	StalePrice bool
}

// Valid reports whether APR is a finite number.
func (y YieldEstimate) Valid() bool {
	return !math.IsNaN(y.APR) && !math.IsInf(y.APR, 0)
}

// EstimateAPR evaluates (price*(rewardRate*SecondsPerWeek))/(price*totalSupply)
// in float64, operation by operation. The price factor cancels algebraically
// but not numerically: a zero price yields NaN and the result is kept as is.
func EstimateAPR(price float64, rewardRate, totalSupply *big.Int) float64 {
	rate := toFloat(rewardRate)
	supply := toFloat(totalSupply)
	weekly := rate * SecondsPerWeek
	numerator := price * weekly
	denominator := price * supply
	return numerator / denominator
}

// toFloat converts to the nearest float64, the same value a decimal string
// of v would parse to.
func toFloat(v *big.Int) float64 {
	if v == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}
