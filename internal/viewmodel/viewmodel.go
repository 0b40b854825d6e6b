// Package viewmodel aggregates session and poller output into the View
// handed to renderers.
package viewmodel

import (
	"math"
	"sync"
	"time"

	"github.com/vadiminshakov/seedfarm/internal/amount"
	"github.com/vadiminshakov/seedfarm/internal/domain"
	"github.com/vadiminshakov/seedfarm/internal/events"
)

const subscriberBuffer = 32

// View is everything a renderer may show. Display strings are preformatted.
type View struct {
	Connected    bool            `json:"connected"`
	Account      string          `json:"account,omitempty"`
	ShortAccount string          `json:"short_account,omitempty"`
	Balance      string          `json:"balance"`
	Stake        string          `json:"stake"`
	Reward       string          `json:"reward"`
	Approved     string          `json:"approved_raw"`
	Price        string          `json:"price"`
	APR          string          `json:"apr"`
	Actions      []domain.Action `json:"actions"`
	UpdatedAt    time.Time       `json:"updated_at"`

	Snapshot domain.FarmSnapshot `json:"-"`
	// PriceValue and APRValue may be NaN and are kept out of JSON.
	PriceValue float64 `json:"-"`
	APRValue   float64 `json:"-"`
}

// Model holds the latest upstream values. It derives nothing on its own
// beyond what View computes from them.
type Model struct {
	mu        sync.RWMutex
	account   string
	snapshot  domain.FarmSnapshot
	price     domain.PriceSample
	hasPrice  bool
	yield     domain.YieldEstimate
	hasYield  bool
	updatedAt time.Time

	views *events.Broadcaster[View]
}

// New creates an empty, disconnected model.
func New() *Model {
	return &Model{
		snapshot: domain.EmptySnapshot(""),
		yield:    domain.YieldEstimate{APR: math.NaN()},
		views:    events.NewBroadcaster[View](subscriberBuffer),
	}
}

// SetAccount records the active account; empty means disconnected. A
// different account starts from an empty snapshot.
func (m *Model) SetAccount(account string) {
	m.mu.Lock()
	if m.account == account {
		m.mu.Unlock()
		return
	}
	m.account = account
	m.snapshot = domain.EmptySnapshot(account)
	m.updatedAt = time.Now()
	v := m.viewLocked()
	m.mu.Unlock()

	m.views.Publish(v)
}

// Account returns the account the model is bound to.
func (m *Model) Account() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.account
}

// PublishSnapshot replaces the snapshot wholesale. Snapshots read for an
// account that is no longer active are rejected.
func (m *Model) PublishSnapshot(s domain.FarmSnapshot) bool {
	m.mu.Lock()
	if s.Account == "" || s.Account != m.account {
		m.mu.Unlock()
		return false
	}
	m.snapshot = domain.FarmSnapshot{
		Account:      s.Account,
		UserBalance:  domain.RawOrZero(s.UserBalance),
		UserStake:    domain.RawOrZero(s.UserStake),
		UserApproved: domain.RawOrZero(s.UserApproved),
		UserReward:   domain.RawOrZero(s.UserReward),
		FetchedAt:    s.FetchedAt,
	}
	m.updatedAt = time.Now()
	v := m.viewLocked()
	m.mu.Unlock()

	m.views.Publish(v)
	return true
}

// PublishMarket replaces price and yield together.
func (m *Model) PublishMarket(p domain.PriceSample, y domain.YieldEstimate) {
	m.mu.Lock()
	m.price, m.hasPrice = p, true
	m.yield, m.hasYield = y, true
	m.updatedAt = time.Now()
	v := m.viewLocked()
	m.mu.Unlock()

	m.views.Publish(v)
}

// Price returns the last known price sample.
func (m *Model) Price() (domain.PriceSample, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.price, m.hasPrice
}

// Snapshot returns a copy of the current snapshot.
func (m *Model) Snapshot() domain.FarmSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copySnapshot(m.snapshot)
}

// View derives the renderer-facing view from the current values.
func (m *Model) View() View {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.viewLocked()
}

// Subscribe streams a fresh View after every change.
func (m *Model) Subscribe() chan View {
	return m.views.Subscribe()
}

// Unsubscribe stops and closes a subscription.
func (m *Model) Unsubscribe(ch chan View) {
	m.views.Unsubscribe(ch)
}

func (m *Model) viewLocked() View {
	s := copySnapshot(m.snapshot)

	v := View{
		Connected: m.account != "",
		Account:   m.account,
		Balance:   amount.Balance(s.UserBalance),
		Stake:     amount.Stake(s.UserStake),
		Reward:    amount.Reward(s.UserReward),
		Approved:  s.UserApproved.String(),
		Actions:   domain.OfferedActions(s.UserApproved),
		UpdatedAt: m.updatedAt,
		Snapshot:  s,
		APRValue:  math.NaN(),
	}
	if m.account != "" {
		v.ShortAccount = amount.ShortenAddress(m.account)
	}

	v.Price = amount.Price(0)
	if m.hasPrice {
		v.PriceValue = m.price.Price
		v.Price = amount.Price(m.price.Price)
	}

	v.APR = amount.APR(math.NaN())
	if m.hasYield {
		v.APRValue = m.yield.APR
		v.APR = amount.APR(m.yield.APR)
	}

	return v
}

func copySnapshot(s domain.FarmSnapshot) domain.FarmSnapshot {
	return domain.FarmSnapshot{
		Account:      s.Account,
		UserBalance:  domain.RawOrZero(s.UserBalance),
		UserStake:    domain.RawOrZero(s.UserStake),
		UserApproved: domain.RawOrZero(s.UserApproved),
		UserReward:   domain.RawOrZero(s.UserReward),
		FetchedAt:    s.FetchedAt,
	}
}
