package domain

import (
	"fmt"
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPriceSample(t *testing.T) {
	now := time.Now()

	sample, ok := NewPriceSample(big.NewInt(3000), big.NewInt(1500), now)
	require.True(t, ok)
	assert.Equal(t, 2.0, sample.Price)
	assert.Equal(t, now, sample.SampledAt)

	_, ok = NewPriceSample(big.NewInt(3000), big.NewInt(0), now)
	assert.False(t, ok, "empty pool has no price")

	_, ok = NewPriceSample(nil, big.NewInt(1), now)
	assert.False(t, ok)
}

func TestEstimateAPR(t *testing.T) {
	rewardRate := big.NewInt(1000)
	totalSupply := new(big.Int).Exp(big.NewInt(10), big.NewInt(24), nil)

	t.Run("literal formula", func(t *testing.T) {
		price, rate, supply := 2.5, 1000.0, 1e24
		want := (price * (rate * 604800)) / (price * supply)

		got := EstimateAPR(price, rewardRate, totalSupply)
		assert.Equal(t, math.Float64bits(want), math.Float64bits(got))
		assert.InDelta(t, 6.048e-16, got, 1e-28)
	})

	t.Run("reproducible across calls", func(t *testing.T) {
		a := EstimateAPR(0.37, rewardRate, totalSupply)
		b := EstimateAPR(0.37, rewardRate, totalSupply)
		assert.Equal(t, fmt.Sprintf("%v", a), fmt.Sprintf("%v", b))
	})

	t.Run("zero price yields NaN", func(t *testing.T) {
		got := EstimateAPR(0, rewardRate, totalSupply)
		assert.True(t, math.IsNaN(got))
		assert.False(t, YieldEstimate{APR: got}.Valid())
	})

	t.Run("zero supply is not finite", func(t *testing.T) {
		got := EstimateAPR(1, rewardRate, big.NewInt(0))
		assert.True(t, math.IsInf(got, 1))
		assert.False(t, YieldEstimate{APR: got}.Valid())
	})
}

func TestErrorCategories(t *testing.T) {
	cause := fmt.Errorf("execution reverted")

	err := LedgerReadError("allowance", cause)
	assert.ErrorIs(t, err, ErrLedgerRead)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrSubmission)
	assert.Equal(t, "ledger read failure: allowance: execution reverted", err.Error())

	err = SubmissionError("stake", cause)
	assert.ErrorIs(t, err, ErrSubmission)
	assert.ErrorIs(t, err, cause)
}
