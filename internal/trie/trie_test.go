package trie

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOnEmptyTrie(t *testing.T) {
	tr := New()
	v, ok := Get[uint32](tr, "a")
	assert.False(t, ok)
	assert.Nil(t, v)
}

// TestPutGetHeterogeneousTypes is scenario S4.
func TestPutGetHeterogeneousTypes(t *testing.T) {
	t0 := New()
	t1 := Put(t0, "a", uint32(1))
	t2 := Put(t1, "ab", "x")

	v, ok := Get[uint32](t2, "a")
	require.True(t, ok)
	assert.Equal(t, uint32(1), *v)

	s, ok := Get[string](t2, "ab")
	require.True(t, ok)
	assert.Equal(t, "x", *s)

	_, ok = Get[string](t2, "a")
	assert.False(t, ok, "wrong type at a present key must report absent")

	_, ok = Get[string](t1, "ab")
	assert.False(t, ok, "t1 predates the ab insertion")

	_, ok = Get[uint32](t0, "a")
	assert.False(t, ok, "original empty trie must be untouched")
}

// TestStructuralSharing is scenario S5: Put on a sibling key leaves the
// unrelated subtree referentially identical.
func TestStructuralSharing(t *testing.T) {
	t1 := Put(New(), "abc", 1)
	t2 := Put(t1, "abd", 2)

	cNodeFromT1 := t1.root.children['a'].children['b'].children['c']
	cNodeFromT2 := t2.root.children['a'].children['b'].children['c']
	assert.Same(t, cNodeFromT1, cNodeFromT2, "unmodified 'c' subtree must be shared, not copied")

	v, ok := Get[int](t2, "abc")
	require.True(t, ok)
	assert.Equal(t, 1, *v)
}

// TestRemovePrunes is scenario S6.
func TestRemovePrunes(t *testing.T) {
	t1 := Remove(Put(New(), "abc", 1), "abc")
	assert.Nil(t, t1.root, "removing the only key must yield the empty trie")

	base := Put(Put(New(), "abc", 1), "abd", 2)
	afterRemove := Remove(base, "abc")

	v, ok := Get[int](afterRemove, "abd")
	require.True(t, ok)
	assert.Equal(t, 2, *v)

	_, ok = Get[int](afterRemove, "abc")
	assert.False(t, ok)

	bNode := afterRemove.root.children['a'].children['b']
	_, hasC := bNode.children['c']
	assert.False(t, hasC, "'c' branch must be pruned away entirely")
}

func TestRemoveNonexistentKeyIsNoOp(t *testing.T) {
	base := Put(New(), "a", 1)
	same := Remove(base, "zzz")
	assert.Same(t, base.root, same.root)
}

func TestRemoveOnNonValueNodeIsNoOp(t *testing.T) {
	base := Put(New(), "ab", 1)
	// "a" exists as an interior node but carries no value.
	same := Remove(base, "a")
	assert.Same(t, base.root, same.root)
}

// TestTrieImmutability is property 5: prior observations survive later
// mutation of derived tries.
func TestTrieImmutability(t *testing.T) {
	t0 := Put(New(), "k", 1)
	before, ok := Get[int](t0, "k")
	require.True(t, ok)

	_ = Put(t0, "k", 2)
	_ = Remove(t0, "k")

	after, ok := Get[int](t0, "k")
	require.True(t, ok)
	assert.Equal(t, *before, *after)
	assert.Same(t, before, after)
}

// TestPutThenRemoveRestoresOriginal is property 7 combined with 6: a
// Put followed by Remove of the same key round-trips to an equivalent
// trie (the same resulting shape, not necessarily the same node
// pointers for the untouched prefix since Remove always clones it).
func TestPutThenRemoveRestoresOriginal(t *testing.T) {
	base := Put(New(), "xyz", 7)
	roundTripped := Remove(Put(base, "xyz", 99), "xyz")

	v, ok := Get[int](roundTripped, "xyz")
	require.True(t, ok)
	assert.Equal(t, 7, *v)
}

// TestTrailingNullByteIsStripped exercises the data model's key rule:
// a trailing null byte, if present, is stripped before use, so a key
// written with or without one addresses the same entry.
func TestTrailingNullByteIsStripped(t *testing.T) {
	t1 := Put(New(), "abc\x00", 1)

	v, ok := Get[int](t1, "abc")
	require.True(t, ok, "Put with a trailing null byte must install the value at the stripped key")
	assert.Equal(t, 1, *v)

	v, ok = Get[int](t1, "abc\x00")
	require.True(t, ok, "Get with a trailing null byte must resolve the same entry")
	assert.Equal(t, 1, *v)

	t2 := Put(New(), "abc", 1)
	assert.Equal(t, t2.root.children, t1.root.children, "null-terminated and bare keys must produce the same shape")

	t3 := Remove(t1, "abc\x00")
	_, ok = Get[int](t3, "abc")
	assert.False(t, ok, "Remove with a trailing null byte must erase the stripped key")
}

func TestNoNonValueLeavesAfterPutAndRemove(t *testing.T) {
	tr := Put(New(), "abc", 1)
	tr = Put(tr, "abd", 2)
	tr = Remove(tr, "abc")

	var walk func(n *node)
	walk = func(n *node) {
		if n == nil {
			return
		}
		if n.isLeaf() {
			assert.True(t, n.hasValue, "leaf node must carry a value")
		}
		for _, child := range n.children {
			walk(child)
		}
	}
	walk(tr.root)
}
