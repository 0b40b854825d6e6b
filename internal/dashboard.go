package internal

import (
	"context"
	"math/big"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/seedfarm/config"
	"github.com/vadiminshakov/seedfarm/internal/clients"
	"github.com/vadiminshakov/seedfarm/internal/services/poller"
	"github.com/vadiminshakov/seedfarm/internal/services/txflow"
	"github.com/vadiminshakov/seedfarm/internal/session"
	"github.com/vadiminshakov/seedfarm/internal/viewmodel"
	"github.com/vadiminshakov/seedfarm/internal/wallet"
	"github.com/vadiminshakov/seedfarm/pkg/retrier"
)

type sessionDriver interface {
	Restore(ctx context.Context)
	Account() (string, bool)
	Changes() <-chan struct{}
}

type syncRunner interface {
	Run(ctx context.Context, account string) error
	Tick(ctx context.Context, account string)
}

// Dashboard owns every component of one farm dashboard and keeps the
// poller bound to the active account.
type Dashboard struct {
	Session    *session.Manager
	Model      *viewmodel.Model
	Controller *txflow.Controller

	sessions sessionDriver
	sync     syncRunner
	closers  []func() error
	logger   *zap.Logger
}

// NewDashboard connects to the node and wires all components from conf.
func NewDashboard(ctx context.Context, conf config.Config, logger *zap.Logger) (*Dashboard, error) {
	ledger, err := clients.NewLedgerClient(ctx, conf.RPCURL, clients.Contracts{
		Token: conf.Contracts.Token,
		Farm:  conf.Contracts.Farm,
		Pair:  conf.Contracts.Pair,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create ledger client")
	}

	chainID, err := resolveChainID(ctx, conf, ledger, logger)
	if err != nil {
		ledger.Close()
		return nil, err
	}

	provider, err := newWalletProvider(conf, chainID, logger.Named("wallet"))
	if err != nil {
		ledger.Close()
		return nil, err
	}

	store, err := newSessionStore(ctx, conf, logger.Named("session"))
	if err != nil {
		ledger.Close()
		return nil, errors.Wrap(err, "failed to open session store")
	}

	model := viewmodel.New()
	sess := newSession(provider, store, model, logger.Named("session"))
	syncer := poller.NewPoller(logger.Named("poller"), ledger, model, poller.Config{
		Interval:      conf.PollInterval,
		CallTimeout:   conf.CallTimeout,
		StalePriceAPR: conf.APRStalePrice,
		Spender:       ledger.FarmAddress(),
	})
	controller := txflow.NewController(logger.Named("txflow"), sess, provider, ledger, ledger.FarmAddress())

	return &Dashboard{
		Session:    sess,
		Model:      model,
		Controller: controller,
		sessions:   sess,
		sync:       syncer,
		closers: []func() error{
			store.Close,
			func() error { ledger.Close(); return nil },
		},
		logger: logger,
	}, nil
}

// newSession builds a session whose account changes reach the model before
// Connect or Disconnect return; only the poller rebind is left to Run.
func newSession(provider wallet.Provider, store session.Store, model *viewmodel.Model, logger *zap.Logger) *session.Manager {
	sess := session.NewManager(provider, store, logger)
	sess.OnAccountChange(model.SetAccount)
	return sess
}

func resolveChainID(ctx context.Context, conf config.Config, ledger *clients.LedgerClient, logger *zap.Logger) (*big.Int, error) {
	if conf.ChainID > 0 {
		return big.NewInt(conf.ChainID), nil
	}

	r := retrier.New(
		retrier.WithLogger(logger.Named("chain_id")),
		retrier.WithRetryIf(func(error) bool { return ctx.Err() == nil }),
	)
	chainID, err := retrier.DoWithData(r, ctx, ledger.ChainID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query chain id")
	}
	logger.Info("connected to node", zap.String("chain_id", chainID.String()))
	return chainID, nil
}

// Run restores the previous session and polls for the active account until
// ctx is cancelled. Every account change restarts polling for the new account.
func (d *Dashboard) Run(ctx context.Context) error {
	d.sessions.Restore(ctx)
	// the loop below reads the restored account itself
	select {
	case <-d.sessions.Changes():
	default:
	}

	for {
		account, _ := d.sessions.Account()
		d.Model.SetAccount(account)

		pollCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			_ = d.sync.Run(pollCtx, account)
		}()

		select {
		case <-ctx.Done():
			cancel()
			<-done
			d.logger.Info("context done, stopping dashboard")
			return ctx.Err()
		case <-d.sessions.Changes():
			cancel()
			<-done
			d.logger.Debug("session changed, rebinding poller")
		}
	}
}

// Refresh restores the session and runs a single tick.
func (d *Dashboard) Refresh(ctx context.Context) {
	d.sessions.Restore(ctx)
	account, _ := d.sessions.Account()
	d.Model.SetAccount(account)
	d.sync.Tick(ctx, account)
}

// Close releases the session store and the node connection.
func (d *Dashboard) Close() {
	for _, c := range d.closers {
		if err := c(); err != nil {
			d.logger.Warn("close failed", zap.Error(err))
		}
	}
}
