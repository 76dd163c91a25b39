package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// loadTimeout bounds a detached load so an unresponsive loader cannot pin
// a key's flight forever.
const loadTimeout = time.Minute

type entry struct {
	value     any
	writtenAt time.Time
}

// flight is one in-progress load. done is closed after value/err are set
// and the flight is removed from the pending map.
type flight struct {
	done  chan struct{}
	value any
	err   error
}

// Store is a time-bounded read-through cache. An entry is fresh while
// now - writtenAt < ttl; a stale entry is a logical miss but stays stored
// until the next successful load overwrites it, so a failed reload leaves
// the previous state untouched. Each Store owns its own state; construct
// one per concern instead of sharing process-wide singletons.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration

	pendingMu sync.Mutex
	pending   map[string]*flight

	now func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]entry),
		pending: make(map[string]*flight),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the stored value for key if it is still fresh.
func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.ttl > 0 && s.now().Sub(e.writtenAt) >= s.ttl {
		return nil, false
	}

	return e.value, true
}

// Set replaces the entry for key in one step and resets its age.
func (s *Store) Set(_ context.Context, key string, value any) {
	if key == "" {
		return
	}

	s.mu.Lock()
	s.entries[key] = entry{
		value:     value,
		writtenAt: s.now(),
	}
	s.mu.Unlock()
}

func (s *Store) Delete(_ context.Context, key string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// GetOrLoad returns the fresh value for key, or invokes loader to produce
// one. Concurrent callers hitting a stale or absent key coalesce onto a
// single in-flight load; the load runs on a context detached from every
// caller, so one caller's cancellation never poisons the others. Each
// waiter still honors its own context while waiting and gets its own
// ctx.Err() back if it gives up; the load itself keeps running for the
// rest. A loader error is propagated to every remaining waiter unchanged
// and nothing is cached, so the next call retries.
func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	s.pendingMu.Lock()
	f, inFlight := s.pending[key]
	if !inFlight {
		f = &flight{done: make(chan struct{})}
		s.pending[key] = f
		// Detach from the initiating caller: the flight serves every
		// coalesced waiter, not just whoever started it.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		go func() {
			defer cancel()
			s.runLoad(loadCtx, key, f, loader)
		}()
	}
	s.pendingMu.Unlock()

	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Store) runLoad(ctx context.Context, key string, f *flight, loader func(context.Context) (any, error)) {
	if cached, ok := s.Get(ctx, key); ok {
		f.value = cached
	} else {
		value, err := loader(ctx)
		if err != nil {
			f.err = err
		} else {
			s.Set(ctx, key, value)
			f.value = value
		}
	}

	s.pendingMu.Lock()
	delete(s.pending, key)
	s.pendingMu.Unlock()
	close(f.done)
}
