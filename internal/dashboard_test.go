package internal

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"

	"github.com/vadiminshakov/seedfarm/internal/session"
	"github.com/vadiminshakov/seedfarm/internal/viewmodel"
)

type fakeSessions struct {
	mu       sync.Mutex
	account  string
	restored string
	changes  chan struct{}
}

func newFakeSessions(restored string) *fakeSessions {
	return &fakeSessions{restored: restored, changes: make(chan struct{}, 1)}
}

func (f *fakeSessions) Restore(context.Context) {
	f.set(f.restored)
}

func (f *fakeSessions) Account() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.account, f.account != ""
}

func (f *fakeSessions) Changes() <-chan struct{} { return f.changes }

func (f *fakeSessions) set(account string) {
	f.mu.Lock()
	f.account = account
	f.mu.Unlock()
	select {
	case f.changes <- struct{}{}:
	default:
	}
}

type fakeSync struct {
	started chan string
	stopped chan string
	ticked  []string
}

func newFakeSync() *fakeSync {
	return &fakeSync{started: make(chan string, 8), stopped: make(chan string, 8)}
}

func (f *fakeSync) Run(ctx context.Context, account string) error {
	f.started <- account
	<-ctx.Done()
	f.stopped <- account
	return ctx.Err()
}

func (f *fakeSync) Tick(_ context.Context, account string) {
	f.ticked = append(f.ticked, account)
}

func newTestDashboard(s *fakeSessions, y *fakeSync) *Dashboard {
	return &Dashboard{
		Model:    viewmodel.New(),
		sessions: s,
		sync:     y,
		logger:   zap.NewNop(),
	}
}

func receive(t *testing.T, ch chan string) string {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		require.FailNow(t, "timed out")
		return ""
	}
}

func receiveUntil(t *testing.T, ch chan string, want string) {
	t.Helper()
	for {
		if receive(t, ch) == want {
			return
		}
	}
}

func TestDashboard_RebindsPollerOnAccountChange(t *testing.T) {
	const alice = "0xA11CE00000000000000000000000000000000001"
	const bob = "0xB0B0000000000000000000000000000000000002"

	sessions := newFakeSessions(alice)
	syncer := newFakeSync()
	d := newTestDashboard(sessions, syncer)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- d.Run(ctx) }()

	assert.Equal(t, alice, receive(t, syncer.started), "restored account is bound first")
	assert.Equal(t, alice, d.Model.Account())
	select {
	case account := <-syncer.stopped:
		t.Fatalf("poller for %q torn down without an account change", account)
	case <-time.After(50 * time.Millisecond):
	}

	sessions.set(bob)
	assert.Equal(t, alice, receive(t, syncer.stopped))
	receiveUntil(t, syncer.started, bob)
	assert.Equal(t, bob, d.Model.Account())

	sessions.set("")
	receiveUntil(t, syncer.started, "")
	assert.False(t, d.Model.View().Connected)

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestDashboard_Refresh(t *testing.T) {
	const alice = "0xA11CE00000000000000000000000000000000001"
	syncer := newFakeSync()
	d := newTestDashboard(newFakeSessions(alice), syncer)

	d.Refresh(context.Background())

	assert.Equal(t, []string{alice}, syncer.ticked)
	assert.Equal(t, alice, d.Model.Account())
}

type staticWallet struct{ account string }

func (w staticWallet) RequestPermissions(context.Context) error { return nil }

func (w staticWallet) Accounts(context.Context) ([]string, error) {
	return []string{w.account}, nil
}

func (w staticWallet) TransactOpts(context.Context, string) (*bind.TransactOpts, error) {
	return &bind.TransactOpts{}, nil
}

type flagStore struct{ connected bool }

func (s *flagStore) Connected(context.Context) (bool, error) { return s.connected, nil }
func (s *flagStore) MarkConnected(context.Context) error     { s.connected = true; return nil }
func (s *flagStore) Clear(context.Context) error             { s.connected = false; return nil }

func TestSession_UpdatesViewBeforeReturning(t *testing.T) {
	const alice = "0xA11CE00000000000000000000000000000000001"
	model := viewmodel.New()
	sess := newSession(staticWallet{account: alice}, &flagStore{}, model, zap.NewNop())
	ctx := context.Background()

	sess.Connect(ctx)
	v := model.View()
	assert.True(t, v.Connected)
	assert.Equal(t, alice, v.Account)

	sess.Disconnect(ctx)
	assert.False(t, model.View().Connected)
	assert.Equal(t, session.StateDisconnected, sess.State())
}
