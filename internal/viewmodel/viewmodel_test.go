package viewmodel

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/seedfarm/internal/domain"
)

const account = "0x23D50a056c5Dd62073600e1daDcE73D454Cfd391"

func rawTokens(t *testing.T, s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok)
	return v
}

func TestModel_DisconnectedView(t *testing.T) {
	v := New().View()

	assert.False(t, v.Connected)
	assert.Empty(t, v.ShortAccount)
	assert.Equal(t, "0.000", v.Balance)
	assert.Equal(t, "0.00000", v.Stake)
	assert.Equal(t, "0.00000", v.Reward)
	assert.Equal(t, "0.00000", v.Price)
	assert.Equal(t, "-", v.APR)
	assert.Equal(t, []domain.Action{domain.ActionApprove, domain.ActionExit}, v.Actions)
}

func TestModel_SnapshotView(t *testing.T) {
	m := New()
	m.SetAccount(account)

	ok := m.PublishSnapshot(domain.FarmSnapshot{
		Account:      account,
		UserBalance:  rawTokens(t, "1234500000000000000000"),
		UserStake:    rawTokens(t, "1500000000000000000"),
		UserApproved: rawTokens(t, "200000000000000000000"),
		UserReward:   rawTokens(t, "123456789000000"),
	})
	require.True(t, ok)

	v := m.View()
	assert.True(t, v.Connected)
	assert.Equal(t, "0x23D . . . fd391", v.ShortAccount)
	assert.Equal(t, "1234.500", v.Balance)
	assert.Equal(t, "1.50000", v.Stake)
	assert.Equal(t, "0.00012", v.Reward)
	assert.Equal(t, []domain.Action{domain.ActionStake, domain.ActionExit}, v.Actions)
}

func TestModel_RejectsSnapshotForOtherAccount(t *testing.T) {
	m := New()
	m.SetAccount(account)

	ok := m.PublishSnapshot(domain.FarmSnapshot{Account: "0xother", UserBalance: big.NewInt(1)})
	assert.False(t, ok)
	assert.Equal(t, "0", m.Snapshot().UserBalance.String())

	m.SetAccount("")
	assert.False(t, m.PublishSnapshot(domain.FarmSnapshot{Account: ""}))
}

func TestModel_AccountChangeResetsSnapshot(t *testing.T) {
	m := New()
	m.SetAccount(account)
	require.True(t, m.PublishSnapshot(domain.FarmSnapshot{Account: account, UserStake: big.NewInt(5)}))

	m.SetAccount(account) // same account keeps data
	assert.Equal(t, int64(5), m.Snapshot().UserStake.Int64())

	m.SetAccount("0xB0B0000000000000000000000000000000000002")
	assert.Equal(t, int64(0), m.Snapshot().UserStake.Int64())
}

func TestModel_MarketAndSubscription(t *testing.T) {
	m := New()
	ch := m.Subscribe()
	defer m.Unsubscribe(ch)

	sample, ok := domain.NewPriceSample(big.NewInt(5), big.NewInt(2), time.Now())
	require.True(t, ok)
	m.PublishMarket(sample, domain.YieldEstimate{APR: 41.5})

	v := <-ch
	assert.Equal(t, "2.50000", v.Price)
	assert.Equal(t, "42", v.APR)

	got, ok := m.Price()
	assert.True(t, ok)
	assert.Equal(t, 2.5, got.Price)
}

func TestModel_SnapshotIsCopied(t *testing.T) {
	m := New()
	m.SetAccount(account)
	balance := big.NewInt(10)
	require.True(t, m.PublishSnapshot(domain.FarmSnapshot{Account: account, UserBalance: balance}))

	balance.SetInt64(99)
	m.Snapshot().UserBalance.SetInt64(77)
	assert.Equal(t, int64(10), m.Snapshot().UserBalance.Int64())
}
