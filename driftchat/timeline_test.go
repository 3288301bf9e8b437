package driftchat

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func msg(id string) Message {
	return Message{ID: id, Content: "content-" + id, Type: KindText}
}

func ids(msgs []Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.ID)
	}
	return out
}

func TestTimelineAppendDeduplicates(t *testing.T) {
	tl := NewTimeline()
	tl.Append(msg("m1"))
	tl.Append(msg("m2"))
	tl.Append(msg("m1"))
	tl.Append(msg("m1"))

	assert.Equal(t, []string{"m1", "m2"}, ids(tl.Snapshot()), "duplicate ids must be dropped, first-seen order kept")
}

func TestTimelineSeedThenAppend(t *testing.T) {
	tl := NewTimeline()
	tl.Seed([]Message{msg("m1"), msg("m2"), msg("m3")})
	tl.Append(msg("m4"))
	tl.Append(msg("m5"))

	assert.Equal(t, []string{"m1", "m2", "m3", "m4", "m5"}, ids(tl.Snapshot()), "seeded entries must never be dropped or reordered")
}

func TestTimelineSeedReplacesContents(t *testing.T) {
	tl := NewTimeline()
	tl.Append(msg("early"))
	tl.Seed([]Message{msg("m1")})

	assert.Equal(t, []string{"m1"}, ids(tl.Snapshot()))

	// The replaced entry's id is usable again after a reseed.
	tl.Append(msg("early"))
	assert.Equal(t, []string{"m1", "early"}, ids(tl.Snapshot()))
}

func TestTimelineAppendAfterSeedWithSeededId(t *testing.T) {
	tl := NewTimeline()
	tl.Seed([]Message{msg("m1")})
	tl.Append(msg("m1"))

	assert.Equal(t, []string{"m1"}, ids(tl.Snapshot()), "an echo of a seeded message must not re-append")
}

func TestTimelineFirstSeenOrderUnderManyAppends(t *testing.T) {
	tl := NewTimeline()
	var want []string
	for i := 0; i < 50; i++ {
		id := fmt.Sprintf("m%d", i%10)
		tl.Append(Message{ID: id})
		if i < 10 {
			want = append(want, id)
		}
	}
	assert.Equal(t, want, ids(tl.Snapshot()))
	assert.Equal(t, 10, tl.Len())
}

func TestTimelineSnapshotIsACopy(t *testing.T) {
	tl := NewTimeline()
	tl.Seed([]Message{msg("m1"), msg("m2")})

	snap := tl.Snapshot()
	snap[0] = msg("mutated")

	assert.Equal(t, []string{"m1", "m2"}, ids(tl.Snapshot()), "mutating a snapshot must not affect the store")
}
