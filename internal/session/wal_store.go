package session

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"
)

const (
	defaultSessionDir   = "./wal/session"
	sessionSegmentLimit = 100
	sessionMaxSegments  = 5
	connectedValue      = "true"
)

// WALStore keeps the connected flag in a WAL: the latest record wins and
// Clear tombstones it.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore opens or creates the session WAL under dir.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = defaultSessionDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "session_",
		SegmentThreshold: sessionSegmentLimit,
		MaxSegments:      sessionMaxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init session WAL")
	}

	return &WALStore{wal: wal}, nil
}

// Connected reports whether the latest record sets the flag.
func (s *WALStore) Connected(context.Context) (bool, error) {
	if s == nil || s.wal == nil {
		return false, errors.New("session store is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current == 0 {
		return false, nil
	}
	key, payload, err := s.wal.Get(current)
	if err != nil {
		return false, errors.Wrap(err, "read session flag")
	}
	if key != connectedKey {
		return false, nil
	}
	return string(payload) == connectedValue, nil
}

// MarkConnected appends a record setting the flag.
func (s *WALStore) MarkConnected(context.Context) error {
	return s.write([]byte(connectedValue))
}

// Clear tombstones the latest record.
func (s *WALStore) Clear(context.Context) error {
	if s == nil || s.wal == nil {
		return errors.New("session store is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.wal.CurrentIndex()
	if current == 0 {
		return nil
	}
	return errors.Wrap(s.wal.WriteTombstone(current), "clear session flag")
}

func (s *WALStore) write(payload []byte) error {
	if s == nil || s.wal == nil {
		return errors.New("session store is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return errors.Wrap(s.wal.Write(nextIndex, connectedKey, payload), "write session flag")
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("session store is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
