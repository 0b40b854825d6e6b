package clients

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/seedfarm/internal/domain"
)

var (
	testToken = "0x1000000000000000000000000000000000000001"
	testFarm  = "0x2000000000000000000000000000000000000002"
	testPair  = "0x3000000000000000000000000000000000000003"
	testOwner = "0x4000000000000000000000000000000000000004"
)

// fakeCaller answers eth_call by ABI-encoding canned outputs.
type fakeCaller struct {
	abis    map[common.Address]abi.ABI
	outputs map[string][]interface{}
	fail    map[string]error
	calls   []string
	args    map[string][]interface{}
}

func newFakeCaller(t *testing.T) *fakeCaller {
	parse := func(definition string) abi.ABI {
		parsed, err := abi.JSON(strings.NewReader(definition))
		require.NoError(t, err)
		return parsed
	}
	return &fakeCaller{
		abis: map[common.Address]abi.ABI{
			common.HexToAddress(testToken): parse(tokenABI),
			common.HexToAddress(testFarm):  parse(farmABI),
			common.HexToAddress(testPair):  parse(pairABI),
		},
		outputs: make(map[string][]interface{}),
		fail:    make(map[string]error),
		args:    make(map[string][]interface{}),
	}
}

func key(contract, method string) string {
	return common.HexToAddress(contract).Hex() + "." + method
}

func (f *fakeCaller) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{0x60}, nil
}

func (f *fakeCaller) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	parsed := f.abis[*call.To]
	method, err := parsed.MethodById(call.Data[:4])
	if err != nil {
		return nil, err
	}
	k := call.To.Hex() + "." + method.Name
	f.calls = append(f.calls, k)

	args, err := method.Inputs.Unpack(call.Data[4:])
	if err != nil {
		return nil, err
	}
	f.args[k] = args

	if err := f.fail[k]; err != nil {
		return nil, err
	}
	return method.Outputs.Pack(f.outputs[k]...)
}

func newTestLedger(t *testing.T) (*LedgerClient, *fakeCaller) {
	caller := newFakeCaller(t)
	c, err := newLedgerClient(caller, nil, Contracts{Token: testToken, Farm: testFarm, Pair: testPair})
	require.NoError(t, err)
	return c, caller
}

func TestNewLedgerClient_InvalidAddress(t *testing.T) {
	_, err := newLedgerClient(nil, nil, Contracts{Token: "nope", Farm: testFarm, Pair: testPair})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token address")
}

func TestLedgerClient_Reserves(t *testing.T) {
	c, caller := newTestLedger(t)
	caller.outputs[key(testPair, "getReserves")] = []interface{}{big.NewInt(5000), big.NewInt(2000), uint32(1700000000)}

	r0, r1, err := c.Reserves(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "5000", r0.String())
	assert.Equal(t, "2000", r1.String())
}

func TestLedgerClient_FarmReads(t *testing.T) {
	c, caller := newTestLedger(t)
	caller.outputs[key(testFarm, "totalSupply")] = []interface{}{big.NewInt(1_000_000)}
	caller.outputs[key(testFarm, "rewardRate")] = []interface{}{big.NewInt(1000)}
	caller.outputs[key(testFarm, "balanceOf")] = []interface{}{big.NewInt(42)}
	caller.outputs[key(testFarm, "earned")] = []interface{}{big.NewInt(7)}
	ctx := context.Background()

	supply, err := c.TotalSupply(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), supply.Int64())

	rate, err := c.RewardRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), rate.Int64())

	staked, err := c.StakedBalance(ctx, testOwner)
	require.NoError(t, err)
	assert.Equal(t, int64(42), staked.Int64())
	assert.Equal(t, []interface{}{common.HexToAddress(testOwner)}, caller.args[key(testFarm, "balanceOf")])

	earned, err := c.Earned(ctx, testOwner)
	require.NoError(t, err)
	assert.Equal(t, int64(7), earned.Int64())
}

func TestLedgerClient_TokenReads(t *testing.T) {
	c, caller := newTestLedger(t)
	caller.outputs[key(testToken, "balanceOf")] = []interface{}{big.NewInt(99)}
	caller.outputs[key(testToken, "allowance")] = []interface{}{domain.ApprovalAmount()}
	ctx := context.Background()

	balance, err := c.TokenBalance(ctx, testOwner)
	require.NoError(t, err)
	assert.Equal(t, int64(99), balance.Int64())

	allowance, err := c.Allowance(ctx, testOwner, c.FarmAddress())
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalAmount().String(), allowance.String())
	assert.Equal(t,
		[]interface{}{common.HexToAddress(testOwner), common.HexToAddress(testFarm)},
		caller.args[key(testToken, "allowance")])
}

func TestLedgerClient_ReadFailure(t *testing.T) {
	c, caller := newTestLedger(t)
	reverted := errors.New("execution reverted")
	caller.fail[key(testFarm, "earned")] = reverted

	_, err := c.Earned(context.Background(), testOwner)
	assert.ErrorIs(t, err, domain.ErrLedgerRead)
	assert.ErrorIs(t, err, reverted)

	_, err = c.TokenBalance(context.Background(), "not-an-address")
	assert.ErrorIs(t, err, domain.ErrLedgerRead)
	assert.Empty(t, caller.calls[1:], "invalid owner must not reach the node")
}

func TestLedgerClient_TransactWithoutSigner(t *testing.T) {
	c, _ := newTestLedger(t)

	_, err := c.Exit(nil)
	assert.ErrorIs(t, err, domain.ErrSubmission)

	_, err = c.Approve(nil, "bad", domain.ApprovalAmount())
	assert.ErrorIs(t, err, domain.ErrSubmission)
}
