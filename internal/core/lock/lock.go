// Package lock provides the per-journal single-writer lock that serialises
// read-modify-write updates of a journal's event collection.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrLocked is returned when another writer holds the lock.
	ErrLocked = errors.New("lock is held by another writer")

	// ErrNotHeld is returned by an Unlock whose lock expired or was taken over.
	ErrNotHeld = errors.New("lock no longer held")
)

// Unlock releases a lock obtained from a Locker.
type Unlock func(ctx context.Context) error

// Locker hands out exclusive locks by key. Lock never waits: a held key
// fails immediately with ErrLocked.
type Locker interface {
	Lock(ctx context.Context, key string) (Unlock, error)

	// TTL is how long a lock stays held without being released, or zero when
	// locks never expire. Work done under a lock must finish within it.
	TTL() time.Duration
}

// Budget returns the share of ttl a holder may spend before it has to stop,
// leaving the rest as margin for clock drift and the final write. A zero ttl
// has no budget.
func Budget(ttl time.Duration) time.Duration {
	return ttl - ttl/4
}

// Local is an in-process Locker for single-instance deployments and tests.
type Local struct {
	mu   sync.Mutex
	held map[string]uint64
	next uint64
}

// NewLocal creates an empty in-process Locker.
func NewLocal() *Local {
	return &Local{held: make(map[string]uint64)}
}

// TTL implements Locker. Local locks are held until released.
func (l *Local) TTL() time.Duration {
	return 0
}

// Lock implements Locker.
func (l *Local) Lock(_ context.Context, key string) (Unlock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[key]; ok {
		return nil, ErrLocked
	}
	l.next++
	token := l.next
	l.held[key] = token

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.held[key] != token {
			return ErrNotHeld
		}
		delete(l.held, key)
		return nil
	}, nil
}
