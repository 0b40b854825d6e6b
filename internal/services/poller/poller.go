// Package poller periodically reads farm state from the ledger and
// publishes it to the view model.
package poller

import (
	"context"
	"math/big"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/seedfarm/internal/domain"
	"go.uber.org/zap"
)

// DefaultInterval between two ticks.
const DefaultInterval = 5 * time.Second

var errEmptyPool = errors.New("pair reserve1 is zero")

type ledgerReader interface {
	Reserves(ctx context.Context) (*big.Int, *big.Int, error)
	TotalSupply(ctx context.Context) (*big.Int, error)
	RewardRate(ctx context.Context) (*big.Int, error)
	TokenBalance(ctx context.Context, owner string) (*big.Int, error)
	Allowance(ctx context.Context, owner, spender string) (*big.Int, error)
	StakedBalance(ctx context.Context, owner string) (*big.Int, error)
	Earned(ctx context.Context, owner string) (*big.Int, error)
}

type stateSink interface {
	Price() (domain.PriceSample, bool)
	PublishMarket(p domain.PriceSample, y domain.YieldEstimate)
	PublishSnapshot(s domain.FarmSnapshot) bool
}

// Config tunes the poller.
type Config struct {
	// Interval between ticks, DefaultInterval if zero.
	Interval time.Duration
	// CallTimeout bounds one cycle; zero leaves ledger calls unbounded.
	CallTimeout time.Duration
	// StalePriceAPR computes APR with the price published by the previous
	// tick instead of the one just read.
	StalePriceAPR bool
	// Spender is the farm address the allowance is read against.
	Spender string
}

// Poller runs price and account cycles on a fixed period.
type Poller struct {
	ledger ledgerReader
	sink   stateSink
	cfg    Config
	l      *zap.Logger
	now    func() time.Time
}

// NewPoller creates a poller publishing into sink.
func NewPoller(l *zap.Logger, ledger ledgerReader, sink stateSink, cfg Config) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &Poller{ledger: ledger, sink: sink, cfg: cfg, l: l, now: time.Now}
}

// Run ticks immediately and then every interval for account until ctx is
// cancelled. An empty account polls market data only.
func (p *Poller) Run(ctx context.Context, account string) error {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	l := p.l.With(zap.String("account", account))
	l.Info("starting sync loop", zap.Duration("poll_interval", p.cfg.Interval))

	p.Tick(ctx, account)
	for {
		select {
		case <-ctx.Done():
			l.Info("context done, stopping sync loop")
			return ctx.Err()
		case <-ticker.C:
			p.Tick(ctx, account)
		}
	}
}

// Tick runs the price cycle, then the account cycle. Failures are logged
// and leave the previously published values in place.
func (p *Poller) Tick(ctx context.Context, account string) {
	if err := p.RefreshMarket(ctx); err != nil && ctx.Err() == nil {
		p.l.Warn("price cycle failed", zap.Error(err))
	}
	if account == "" {
		return
	}
	if err := p.RefreshAccount(ctx, account); err != nil && ctx.Err() == nil {
		p.l.Warn("account cycle failed", zap.String("account", account), zap.Error(err))
	}
}

// RefreshMarket reads reserves, total supply and reward rate, and publishes
// price and APR together.
func (p *Poller) RefreshMarket(ctx context.Context) error {
	ctx, cancel := p.cycleContext(ctx)
	defer cancel()

	previous, _ := p.sink.Price()

	reserve0, reserve1, err := p.ledger.Reserves(ctx)
	if err != nil {
		return err
	}
	sample, ok := domain.NewPriceSample(reserve0, reserve1, p.now())
	if !ok {
		return errEmptyPool
	}

	totalSupply, err := p.ledger.TotalSupply(ctx)
	if err != nil {
		return err
	}
	rewardRate, err := p.ledger.RewardRate(ctx)
	if err != nil {
		return err
	}

	aprPrice := sample.Price
	if p.cfg.StalePriceAPR {
		aprPrice = previous.Price
	}
	yield := domain.YieldEstimate{
		RewardRate:  rewardRate,
		TotalSupply: totalSupply,
		APR:         domain.EstimateAPR(aprPrice, rewardRate, totalSupply),
		StalePrice:  p.cfg.StalePriceAPR,
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	p.sink.PublishMarket(sample, yield)
	p.l.Debug("market refreshed", zap.Float64("price", sample.Price), zap.Float64("apr", yield.APR))
	return nil
}

// RefreshAccount reads balance, allowance, stake and reward in that order
// and replaces the snapshot only when all four succeed.
func (p *Poller) RefreshAccount(ctx context.Context, account string) error {
	ctx, cancel := p.cycleContext(ctx)
	defer cancel()

	balance, err := p.ledger.TokenBalance(ctx, account)
	if err != nil {
		return err
	}
	approved, err := p.ledger.Allowance(ctx, account, p.cfg.Spender)
	if err != nil {
		return err
	}
	stake, err := p.ledger.StakedBalance(ctx, account)
	if err != nil {
		return err
	}
	reward, err := p.ledger.Earned(ctx, account)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	published := p.sink.PublishSnapshot(domain.FarmSnapshot{
		Account:      account,
		UserBalance:  balance,
		UserStake:    stake,
		UserApproved: approved,
		UserReward:   reward,
		FetchedAt:    p.now(),
	})
	if !published {
		p.l.Debug("discarding snapshot for inactive account", zap.String("account", account))
	}
	return nil
}

func (p *Poller) cycleContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.cfg.CallTimeout > 0 {
		return context.WithTimeout(ctx, p.cfg.CallTimeout)
	}
	return context.WithCancel(ctx)
}
