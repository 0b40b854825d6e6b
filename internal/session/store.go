package session

import "context"

// connectedKey is the only value persisted across sessions.
const connectedKey = "walletConnected"

// Store persists the "previously connected" flag.
type Store interface {
	Connected(ctx context.Context) (bool, error)
	MarkConnected(ctx context.Context) error
	Clear(ctx context.Context) error
}
