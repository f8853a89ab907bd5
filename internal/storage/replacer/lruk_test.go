package replacer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"teachdb/internal/storage/common"
)

func TestRecordAccessAndSize(t *testing.T) {
	r := New(5, 2, nil)
	r.RecordAccess(1, common.AccessUnknown)
	assert.Equal(t, 1, r.Size())

	r.SetEvictable(1, false)
	assert.Equal(t, 0, r.Size())
}

func TestCapacityExceededPanics(t *testing.T) {
	r := New(1, 2, nil)
	r.RecordAccess(1, common.AccessUnknown)

	assert.PanicsWithError(t, "replacer: capacity exceeded: frame 2, max 1", func() {
		r.RecordAccess(2, common.AccessUnknown)
	})
}

func TestSetEvictableUnknownFramePanics(t *testing.T) {
	r := New(2, 2, nil)
	assert.Panics(t, func() {
		r.SetEvictable(99, true)
	})
}

func TestSetEvictableIsIdempotent(t *testing.T) {
	r := New(2, 2, nil)
	r.RecordAccess(1, common.AccessUnknown)
	r.SetEvictable(1, true) // already evictable, no-op
	assert.Equal(t, 1, r.Size())
}

func TestRemoveNoOpWhenAbsent(t *testing.T) {
	r := New(2, 2, nil)
	assert.NotPanics(t, func() {
		r.Remove(42)
	})
}

func TestRemovePanicsWhenPinned(t *testing.T) {
	r := New(2, 2, nil)
	r.RecordAccess(1, common.AccessUnknown)
	r.SetEvictable(1, false)

	assert.Panics(t, func() {
		r.Remove(1)
	})
}

func TestEvictFalseWhenEmpty(t *testing.T) {
	r := New(2, 2, nil)
	_, ok := r.Evict()
	assert.False(t, ok)
}

// TestEvictInfiniteDistanceWins is scenario S1 at the replacer level:
// frame C has only one access (infinite k-distance for k=2) while A
// and B each have two; C must be evicted first.
func TestEvictInfiniteDistanceWins(t *testing.T) {
	r := New(3, 2, nil)

	r.RecordAccess(0, common.AccessUnknown) // A
	r.RecordAccess(1, common.AccessUnknown) // B
	r.RecordAccess(2, common.AccessUnknown) // C
	r.RecordAccess(0, common.AccessUnknown) // A again: history [2]
	r.RecordAccess(1, common.AccessUnknown) // B again: history [2]
	// C has only 1 access recorded -> infinite backward distance.

	victim, ok := r.Evict()
	require.True(t, ok)
	assert.Equal(t, common.FrameID(2), victim)
}

func TestEvictAmongUnderKIsFIFOByFirstSeen(t *testing.T) {
	r := New(3, 2, nil)

	r.RecordAccess(0, common.AccessUnknown) // first seen at tick 1
	r.RecordAccess(1, common.AccessUnknown) // first seen at tick 2
	r.RecordAccess(2, common.AccessUnknown) // first seen at tick 3
	// all three have fewer than k=2 accesses; frame 0 was first seen
	// earliest and should evict first.

	victim, ok := r.Evict()
	require.True(t, ok)
	assert.Equal(t, common.FrameID(0), victim)
}

func TestEvictAmongFullHistoryComparesKthTimestamp(t *testing.T) {
	r := New(2, 2, nil)

	r.RecordAccess(0, common.AccessUnknown) // tick1
	r.RecordAccess(1, common.AccessUnknown) // tick2
	r.RecordAccess(0, common.AccessUnknown) // tick3 -> frame0 history [3,1]
	r.RecordAccess(1, common.AccessUnknown) // tick4 -> frame1 history [4,2]
	// frame0's k-th-most-recent (back) timestamp is 1, frame1's is 2.
	// frame0's is older, so it has the greater backward k-distance ->
	// evicts first.

	victim, ok := r.Evict()
	require.True(t, ok)
	assert.Equal(t, common.FrameID(0), victim)
}

func TestEvictRemovesNodeEntirely(t *testing.T) {
	r := New(2, 2, nil)
	r.RecordAccess(0, common.AccessUnknown)

	_, ok := r.Evict()
	require.True(t, ok)
	assert.Equal(t, 0, r.Size())

	// Re-recording after eviction should succeed as if fresh.
	assert.NotPanics(t, func() {
		r.RecordAccess(0, common.AccessUnknown)
	})
}

func TestRecordAccessReordersOnKeyChange(t *testing.T) {
	r := New(3, 2, nil)
	r.RecordAccess(0, common.AccessUnknown)
	r.RecordAccess(1, common.AccessUnknown)

	// Both under k; 0 was first seen earliest so evicts first right now.
	// Access 0 again: its history now holds k=2 entries (no longer under k).
	r.RecordAccess(0, common.AccessUnknown)

	// Now frame 0 has full history [tick3, tick1], frame1 still under k
	// with a single entry -> frame1 (infinite distance) evicts first.
	victim, ok := r.Evict()
	require.True(t, ok)
	assert.Equal(t, common.FrameID(1), victim)
}

func TestString(t *testing.T) {
	r := New(2, 2, nil)
	assert.Contains(t, r.String(), "LRUKReplacer")
}
