package driftchat

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// The live channel is one connection per authenticated session, but pages
// mount and unmount independently. Channels are therefore hoisted into a
// process-wide registry keyed by credential and handed out as refcounted
// leases: the first acquire dials, the last release closes.

type sharedEntry struct {
	ch   *Channel
	refs int

	// ready is closed once the first acquirer's dial has resolved; err
	// holds the outcome and may only be read after ready.
	ready chan struct{}
	err   error
}

var sharedChannels = struct {
	mu sync.Mutex
	m  map[string]*sharedEntry
}{m: make(map[string]*sharedEntry)}

// Lease is a refcounted handle on a shared channel.
type Lease struct {
	id    string
	token string
	ch    *Channel

	mu       sync.Mutex
	released bool
}

// Acquire returns a lease on the shared channel for cfg.Token, dialing it
// if no one else holds it yet. Two callers with the same credential share
// one connection; an acquire arriving while the first dial is still in
// flight waits for its outcome instead of racing it.
func Acquire(ctx context.Context, cfg Config) (*Lease, error) {
	sharedChannels.mu.Lock()
	entry, ok := sharedChannels.m[cfg.Token]
	if ok {
		entry.refs++
		sharedChannels.mu.Unlock()

		select {
		case <-entry.ready:
		case <-ctx.Done():
			dropRef(cfg.Token, entry)
			return nil, ctx.Err()
		}
		if entry.err != nil {
			// The dialer already removed the entry and closed the
			// channel; this reference died with it.
			return nil, entry.err
		}
		return &Lease{id: uuid.NewString(), token: cfg.Token, ch: entry.ch}, nil
	}

	ch := NewChannel(cfg)
	entry = &sharedEntry{ch: ch, refs: 1, ready: make(chan struct{})}
	sharedChannels.m[cfg.Token] = entry
	sharedChannels.mu.Unlock()

	err := ch.Connect(ctx)

	sharedChannels.mu.Lock()
	entry.err = err
	close(entry.ready)
	if err != nil {
		delete(sharedChannels.m, cfg.Token)
		sharedChannels.mu.Unlock()
		// The channel never connected but its state delivery goroutine
		// is already running; close it so nothing outlives the failure.
		_ = ch.Close()
		return nil, err
	}
	sharedChannels.mu.Unlock()
	return &Lease{id: uuid.NewString(), token: cfg.Token, ch: ch}, nil
}

// dropRef undoes a reference taken on an entry whose dial has not resolved
// yet. The dialer still holds its own reference, so the entry never closes
// from here.
func dropRef(token string, entry *sharedEntry) {
	sharedChannels.mu.Lock()
	if e, ok := sharedChannels.m[token]; ok && e == entry {
		e.refs--
	}
	sharedChannels.mu.Unlock()
}

// Channel returns the shared channel. Valid until Release.
func (l *Lease) Channel() *Channel { return l.ch }

// ID identifies this lease for logging.
func (l *Lease) ID() string { return l.id }

// Release drops this lease's reference. The underlying channel is closed
// when the last lease goes. Releasing twice is a no-op.
func (l *Lease) Release() error {
	l.mu.Lock()
	if l.released {
		l.mu.Unlock()
		return nil
	}
	l.released = true
	l.mu.Unlock()

	sharedChannels.mu.Lock()
	entry, ok := sharedChannels.m[l.token]
	if !ok {
		sharedChannels.mu.Unlock()
		return nil
	}
	entry.refs--
	last := entry.refs <= 0
	if last {
		delete(sharedChannels.m, l.token)
	}
	sharedChannels.mu.Unlock()

	if last {
		return entry.ch.Close()
	}
	return nil
}
