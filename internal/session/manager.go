// Package session owns the wallet connection lifecycle. Failures never
// propagate: the session falls back to Disconnected and logs why.
package session

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/seedfarm/internal/domain"
	"github.com/vadiminshakov/seedfarm/internal/wallet"
	"go.uber.org/zap"
)

// State of the wallet session.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// AccountObserver is told about every account change before Connect or
// Disconnect returns. Empty means disconnected.
type AccountObserver func(account string)

// Manager tracks the active account. A nil provider means no wallet is
// installed; every connect attempt then fails with ErrWalletUnavailable.
type Manager struct {
	provider wallet.Provider
	store    Store
	l        *zap.Logger

	// commitMu orders account commits together with their flag writes.
	commitMu sync.Mutex
	observer AccountObserver

	mu      sync.Mutex
	state   State
	account string
	// gen is bumped by Disconnect; an attempt started under an older
	// generation is discarded when it completes.
	gen     uint64
	changes chan struct{}
}

// NewManager creates a disconnected session.
func NewManager(provider wallet.Provider, store Store, l *zap.Logger) *Manager {
	return &Manager{
		provider: provider,
		store:    store,
		l:        l,
		changes:  make(chan struct{}, 1),
	}
}

// OnAccountChange registers fn to be called synchronously on every account
// change. Call it before the session is used.
func (m *Manager) OnAccountChange(fn AccountObserver) {
	m.commitMu.Lock()
	defer m.commitMu.Unlock()
	m.observer = fn
}

// Account returns the active account and whether one is set. An account
// stays active while a repeated connect is in flight.
func (m *Manager) Account() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.account, m.account != ""
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Changes signals account changes. Notifications coalesce: a receiver
// should re-read Account after each one.
func (m *Manager) Changes() <-chan struct{} {
	return m.changes
}

// Connect explicitly requests account permission, then the account list.
func (m *Manager) Connect(ctx context.Context) {
	m.connect(ctx, "connect", true)
}

// Reconnect requests the account list assuming permission was granted in
// an earlier session.
func (m *Manager) Reconnect(ctx context.Context) {
	m.connect(ctx, "reconnect", false)
}

// Restore reconnects at startup only if the previous session left the flag set.
func (m *Manager) Restore(ctx context.Context) {
	was, err := m.store.Connected(ctx)
	if err != nil {
		m.l.Warn("failed to read session flag", zap.Error(err))
		return
	}
	if !was {
		m.l.Debug("no previous wallet session")
		return
	}
	m.Reconnect(ctx)
}

func (m *Manager) connect(ctx context.Context, op string, askPermission bool) {
	m.mu.Lock()
	if m.state == StateConnecting {
		m.mu.Unlock()
		m.l.Debug("connect already in flight, ignoring", zap.String("op", op))
		return
	}
	gen := m.gen
	m.state = StateConnecting
	m.mu.Unlock()

	account, err := m.requestAccount(ctx, askPermission)

	m.commitMu.Lock()
	defer m.commitMu.Unlock()

	m.mu.Lock()
	if m.gen != gen {
		m.settleLocked()
		m.mu.Unlock()
		m.l.Info("wallet "+op+" superseded by disconnect, discarding result")
		return
	}
	if err != nil {
		// a failed attempt never drops an account that was already active
		m.settleLocked()
		m.mu.Unlock()
		m.l.Warn("wallet "+op+" failed", zap.Error(err))
		return
	}
	changed := m.account != account
	m.account = account
	m.state = StateConnected
	m.mu.Unlock()

	if err := m.store.MarkConnected(ctx); err != nil {
		m.l.Warn("failed to persist session flag", zap.Error(err))
	}

	m.l.Info("wallet connected", zap.String("op", op), zap.String("account", account))
	if changed {
		m.changed(account)
	}
}

// settleLocked leaves Connecting for whatever the current account implies.
func (m *Manager) settleLocked() {
	if m.account != "" {
		m.state = StateConnected
	} else {
		m.state = StateDisconnected
	}
}

func (m *Manager) requestAccount(ctx context.Context, askPermission bool) (string, error) {
	if m.provider == nil {
		return "", domain.ErrWalletUnavailable
	}
	if askPermission {
		if err := m.provider.RequestPermissions(ctx); err != nil {
			return "", errors.Wrap(err, "request permissions")
		}
	}
	accounts, err := m.provider.Accounts(ctx)
	if err != nil {
		return "", errors.Wrap(err, "request accounts")
	}
	if len(accounts) == 0 || accounts[0] == "" {
		return "", errors.Wrap(domain.ErrPermissionDenied, "wallet returned no accounts")
	}
	return accounts[0], nil
}

// Disconnect clears the account and the persisted flag. Always succeeds
// locally. An attempt still in flight keeps the session in Connecting until
// it returns, and its result is dropped.
func (m *Manager) Disconnect(ctx context.Context) {
	m.commitMu.Lock()
	defer m.commitMu.Unlock()

	m.mu.Lock()
	hadAccount := m.account != ""
	m.gen++
	m.account = ""
	if m.state != StateConnecting {
		m.state = StateDisconnected
	}
	m.mu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		m.l.Warn("failed to clear session flag", zap.Error(err))
	}

	m.l.Info("wallet disconnected")
	if hadAccount {
		m.changed("")
	}
}

// changed runs with commitMu held so observers see commits in order.
func (m *Manager) changed(account string) {
	if m.observer != nil {
		m.observer(account)
	}
	m.notify()
}

func (m *Manager) notify() {
	select {
	case m.changes <- struct{}{}:
	default:
	}
}
