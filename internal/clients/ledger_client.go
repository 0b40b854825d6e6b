package clients

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/seedfarm/internal/domain"
)

// Contracts holds the hex addresses of the farm deployment.
type Contracts struct {
	Token string
	Farm  string
	Pair  string
}

// LedgerClient is a read/write façade over the token, farm and pair contracts.
type LedgerClient struct {
	eth      *ethclient.Client
	token    *bind.BoundContract
	farm     *bind.BoundContract
	pair     *bind.BoundContract
	farmAddr common.Address
}

// NewLedgerClient dials rpcURL and binds the farm contracts.
func NewLedgerClient(ctx context.Context, rpcURL string, contracts Contracts) (*LedgerClient, error) {
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", rpcURL)
	}

	c, err := newLedgerClient(eth, eth, contracts)
	if err != nil {
		eth.Close()
		return nil, err
	}
	c.eth = eth

	return c, nil
}

func newLedgerClient(caller bind.ContractCaller, transactor bind.ContractTransactor, contracts Contracts) (*LedgerClient, error) {
	tokenAddr, err := parseAddress("token", contracts.Token)
	if err != nil {
		return nil, err
	}
	farmAddr, err := parseAddress("farm", contracts.Farm)
	if err != nil {
		return nil, err
	}
	pairAddr, err := parseAddress("pair", contracts.Pair)
	if err != nil {
		return nil, err
	}

	bindContract := func(name, definition string, addr common.Address) (*bind.BoundContract, error) {
		parsed, err := abi.JSON(strings.NewReader(definition))
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s ABI", name)
		}
		return bind.NewBoundContract(addr, parsed, caller, transactor, nil), nil
	}

	token, err := bindContract("token", tokenABI, tokenAddr)
	if err != nil {
		return nil, err
	}
	farm, err := bindContract("farm", farmABI, farmAddr)
	if err != nil {
		return nil, err
	}
	pair, err := bindContract("pair", pairABI, pairAddr)
	if err != nil {
		return nil, err
	}

	return &LedgerClient{token: token, farm: farm, pair: pair, farmAddr: farmAddr}, nil
}

func parseAddress(name, addr string) (common.Address, error) {
	if !common.IsHexAddress(addr) {
		return common.Address{}, errors.Errorf("invalid %s address %q", name, addr)
	}
	return common.HexToAddress(addr), nil
}

// FarmAddress is the spender every allowance is checked and granted against.
func (c *LedgerClient) FarmAddress() string {
	return c.farmAddr.Hex()
}

// ChainID asks the node which chain it serves.
func (c *LedgerClient) ChainID(ctx context.Context) (*big.Int, error) {
	if c.eth == nil {
		return nil, errors.New("ledger client is not connected")
	}
	id, err := c.eth.ChainID(ctx)
	if err != nil {
		return nil, domain.LedgerReadError("chainId", err)
	}
	return id, nil
}

// Close releases the RPC connection.
func (c *LedgerClient) Close() {
	if c.eth != nil {
		c.eth.Close()
	}
}

// Reserves returns the pair's reserve0 and reserve1.
func (c *LedgerClient) Reserves(ctx context.Context) (*big.Int, *big.Int, error) {
	var result []interface{}
	if err := c.pair.Call(&bind.CallOpts{Context: ctx}, &result, "getReserves"); err != nil {
		return nil, nil, domain.LedgerReadError("getReserves", err)
	}
	if len(result) < 2 {
		return nil, nil, domain.LedgerReadError("getReserves", errors.Errorf("expected 3 outputs, got %d", len(result)))
	}
	reserve0, ok0 := result[0].(*big.Int)
	reserve1, ok1 := result[1].(*big.Int)
	if !ok0 || !ok1 {
		return nil, nil, domain.LedgerReadError("getReserves", errors.New("unexpected reserve types"))
	}
	return reserve0, reserve1, nil
}

// TotalSupply returns the total amount staked in the farm.
func (c *LedgerClient) TotalSupply(ctx context.Context) (*big.Int, error) {
	return callUint(ctx, c.farm, "totalSupply")
}

// RewardRate returns the farm's reward emission per second.
func (c *LedgerClient) RewardRate(ctx context.Context) (*big.Int, error) {
	return callUint(ctx, c.farm, "rewardRate")
}

// TokenBalance returns owner's wallet balance of the staking token.
func (c *LedgerClient) TokenBalance(ctx context.Context, owner string) (*big.Int, error) {
	addr, err := parseAddress("owner", owner)
	if err != nil {
		return nil, domain.LedgerReadError("balanceOf", err)
	}
	return callUint(ctx, c.token, "balanceOf", addr)
}

// Allowance returns how much of owner's tokens spender may move.
func (c *LedgerClient) Allowance(ctx context.Context, owner, spender string) (*big.Int, error) {
	ownerAddr, err := parseAddress("owner", owner)
	if err != nil {
		return nil, domain.LedgerReadError("allowance", err)
	}
	spenderAddr, err := parseAddress("spender", spender)
	if err != nil {
		return nil, domain.LedgerReadError("allowance", err)
	}
	return callUint(ctx, c.token, "allowance", ownerAddr, spenderAddr)
}

// StakedBalance returns owner's position in the farm.
func (c *LedgerClient) StakedBalance(ctx context.Context, owner string) (*big.Int, error) {
	addr, err := parseAddress("owner", owner)
	if err != nil {
		return nil, domain.LedgerReadError("balanceOf", err)
	}
	return callUint(ctx, c.farm, "balanceOf", addr)
}

// Earned returns owner's unclaimed reward.
func (c *LedgerClient) Earned(ctx context.Context, owner string) (*big.Int, error) {
	addr, err := parseAddress("owner", owner)
	if err != nil {
		return nil, domain.LedgerReadError("earned", err)
	}
	return callUint(ctx, c.farm, "earned", addr)
}

// Approve submits token.approve(spender, amount) and returns the tx hash.
func (c *LedgerClient) Approve(opts *bind.TransactOpts, spender string, amount *big.Int) (string, error) {
	addr, err := parseAddress("spender", spender)
	if err != nil {
		return "", domain.SubmissionError("approve", err)
	}
	return transact(opts, c.token, "approve", addr, amount)
}

// Stake submits farm.stake(amount).
func (c *LedgerClient) Stake(opts *bind.TransactOpts, amount *big.Int) (string, error) {
	return transact(opts, c.farm, "stake", amount)
}

// Exit submits farm.exit(), withdrawing the whole position and claiming rewards.
func (c *LedgerClient) Exit(opts *bind.TransactOpts) (string, error) {
	return transact(opts, c.farm, "exit")
}

func callUint(ctx context.Context, contract *bind.BoundContract, method string, params ...interface{}) (*big.Int, error) {
	var result []interface{}
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &result, method, params...); err != nil {
		return nil, domain.LedgerReadError(method, err)
	}
	if len(result) == 0 {
		return nil, domain.LedgerReadError(method, errors.New("empty result"))
	}
	v, ok := result[0].(*big.Int)
	if !ok {
		return nil, domain.LedgerReadError(method, errors.Errorf("unexpected result type %T", result[0]))
	}
	return v, nil
}

func transact(opts *bind.TransactOpts, contract *bind.BoundContract, method string, params ...interface{}) (string, error) {
	if opts == nil {
		return "", domain.SubmissionError(method, errors.New("no signer"))
	}
	tx, err := contract.Transact(opts, method, params...)
	if err != nil {
		return "", domain.SubmissionError(method, err)
	}
	return tx.Hash().Hex(), nil
}
