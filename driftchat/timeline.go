package driftchat

import "sync"

// Timeline is the ordered, deduplicated message sequence for one open
// room: the single source of truth consumed by rendering. A timeline
// belongs to exactly one session and is discarded with it; a stray late
// event for a closed room can never resurrect a stale list.
type Timeline struct {
	mu   sync.Mutex
	msgs []Message
	seen map[string]struct{}
}

// NewTimeline returns an empty timeline.
func NewTimeline() *Timeline {
	return &Timeline{seen: make(map[string]struct{})}
}

// Seed replaces the contents with the fetched backlog, oldest first.
func (t *Timeline) Seed(msgs []Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.msgs = make([]Message, 0, len(msgs))
	t.seen = make(map[string]struct{}, len(msgs))
	for _, m := range msgs {
		if _, dup := t.seen[m.ID]; dup {
			continue
		}
		t.seen[m.ID] = struct{}{}
		t.msgs = append(t.msgs, m)
	}
}

// Append adds a message at the end. A message whose id is already present
// is dropped silently; existing entries are never reordered.
func (t *Timeline) Append(m Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, dup := t.seen[m.ID]; dup {
		return
	}
	t.seen[m.ID] = struct{}{}
	t.msgs = append(t.msgs, m)
}

// Snapshot returns a copy of the current ordered sequence.
func (t *Timeline) Snapshot() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Message, len(t.msgs))
	copy(out, t.msgs)
	return out
}

// Len returns the number of messages in the timeline.
func (t *Timeline) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.msgs)
}
