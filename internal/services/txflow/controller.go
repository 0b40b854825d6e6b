// Package txflow turns user actions into signed farm transactions.
package txflow

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/seedfarm/internal/amount"
	"github.com/vadiminshakov/seedfarm/internal/domain"
	"go.uber.org/zap"
)

type accountSource interface {
	Account() (string, bool)
}

type signer interface {
	TransactOpts(ctx context.Context, account string) (*bind.TransactOpts, error)
}

type ledgerWriter interface {
	Approve(opts *bind.TransactOpts, spender string, amount *big.Int) (string, error)
	Stake(opts *bind.TransactOpts, amount *big.Int) (string, error)
	Exit(opts *bind.TransactOpts) (string, error)
}

// SubmissionObserver is told about every transaction the ledger accepted.
type SubmissionObserver func(domain.Submission)

// Controller submits approve, stake and exit for the active account. It
// returns once the transaction hash is known and never waits for inclusion.
type Controller struct {
	session accountSource
	signer  signer
	ledger  ledgerWriter
	farm    string
	l       *zap.Logger

	observer SubmissionObserver
	now      func() time.Time
	newID    func() string
}

// NewController creates a controller approving spending by farm.
func NewController(l *zap.Logger, session accountSource, signer signer, ledger ledgerWriter, farm string) *Controller {
	return &Controller{
		session: session,
		signer:  signer,
		ledger:  ledger,
		farm:    farm,
		l:       l,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
}

// OnSubmission registers observer; nil removes it.
func (c *Controller) OnSubmission(observer SubmissionObserver) {
	c.observer = observer
}

// Approve grants the farm a one-time allowance of domain.ApprovalAmount.
func (c *Controller) Approve(ctx context.Context) (domain.Submission, error) {
	account, ok := c.session.Account()
	if !ok {
		return domain.Submission{}, domain.ErrNotConnected
	}
	allowance := domain.ApprovalAmount()
	return c.submit(ctx, domain.ActionApprove, account, allowance, func(opts *bind.TransactOpts) (string, error) {
		return c.ledger.Approve(opts, c.farm, allowance)
	})
}

// Stake deposits the decimal token amount typed by the user.
func (c *Controller) Stake(ctx context.Context, input string) (domain.Submission, error) {
	account, ok := c.session.Account()
	if !ok {
		return domain.Submission{}, domain.ErrNotConnected
	}
	raw, err := amount.ToRaw(input, domain.TokenDecimals)
	if err != nil {
		return domain.Submission{}, err
	}
	return c.submit(ctx, domain.ActionStake, account, raw, func(opts *bind.TransactOpts) (string, error) {
		return c.ledger.Stake(opts, raw)
	})
}

// Exit withdraws the whole stake and claims the accrued reward.
func (c *Controller) Exit(ctx context.Context) (domain.Submission, error) {
	account, ok := c.session.Account()
	if !ok {
		return domain.Submission{}, domain.ErrNotConnected
	}
	return c.submit(ctx, domain.ActionExit, account, nil, c.ledger.Exit)
}

// Do dispatches action; input is only read for stake.
func (c *Controller) Do(ctx context.Context, action domain.Action, input string) (domain.Submission, error) {
	switch action {
	case domain.ActionApprove:
		return c.Approve(ctx)
	case domain.ActionStake:
		return c.Stake(ctx, input)
	case domain.ActionExit:
		return c.Exit(ctx)
	default:
		return domain.Submission{}, errors.Errorf("unknown action %d", int(action))
	}
}

func (c *Controller) submit(
	ctx context.Context,
	action domain.Action,
	account string,
	value *big.Int,
	send func(*bind.TransactOpts) (string, error),
) (domain.Submission, error) {
	l := c.l.With(zap.Stringer("action", action), zap.String("account", account))

	opts, err := c.signer.TransactOpts(ctx, account)
	if err != nil {
		l.Warn("no signer for account", zap.Error(err))
		return domain.Submission{}, domain.SubmissionError(action.String(), err)
	}
	if opts != nil {
		opts.Context = ctx
	}

	hash, err := send(opts)
	if err != nil {
		l.Error("submission failed", zap.Error(err))
		return domain.Submission{}, err
	}

	sub := domain.Submission{
		ID:          c.newID(),
		Action:      action,
		Account:     account,
		TxHash:      hash,
		Amount:      value,
		Status:      domain.StatusSubmitted,
		SubmittedAt: c.now(),
	}
	l.Info("transaction submitted", zap.String("id", sub.ID), zap.String("tx", hash))

	if c.observer != nil {
		c.observer(sub)
	}
	return sub, nil
}
