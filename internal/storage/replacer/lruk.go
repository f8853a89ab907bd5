// Package replacer implements the LRU-K eviction policy: among
// evictable frames, the one with the greatest backward k-distance goes
// first, tie-broken by earliest least-recent access.
package replacer

import (
	"container/list"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"teachdb/internal/dbtelemetry"
	"teachdb/internal/storage/common"
)

// node is one tracked frame's access history plus its position in the
// eviction-ordered list when evictable. history holds at most k
// timestamps, newest first.
type node struct {
	frameID   common.FrameID
	history   []uint64
	evictable bool
	elem      *list.Element // nil unless evictable
}

// LRUKReplacer tracks per-frame access history and picks an evictable
// frame to reclaim. All public methods are serialized under a single
// mutex; none of them block on I/O.
type LRUKReplacer struct {
	mu sync.Mutex

	k       int
	maxSize int
	nowTick uint64

	nodes     map[common.FrameID]*node
	evictable *list.List // ordered ascending by "evicts before"; Front() is next victim
	evictSize int

	log *zap.Logger
}

// New returns a replacer tracking up to numFrames frames, evicting by
// the k-th most recent access.
func New(numFrames, k int, logger *zap.Logger) *LRUKReplacer {
	if numFrames <= 0 {
		panic(fmt.Errorf("%w: %d", common.ErrInvalidPoolSize, numFrames))
	}
	if k <= 0 {
		panic(fmt.Errorf("%w: %d", common.ErrInvalidK, k))
	}
	return &LRUKReplacer{
		k:         k,
		maxSize:   numFrames,
		nodes:     make(map[common.FrameID]*node, numFrames),
		evictable: list.New(),
		log:       dbtelemetry.OrNop(logger),
	}
}

// less reports whether l evicts before r, per the comparator in spec
// §4.A: infinite backward k-distance (fewer than k accesses) beats a
// finite one; among two infinite (or two finite) distances, the older
// retained timestamp evicts first.
func (r *LRUKReplacer) less(l, rr *node) bool {
	lUnder := len(l.history) < r.k
	rUnder := len(rr.history) < r.k
	switch {
	case lUnder && !rUnder:
		return true
	case !lUnder && rUnder:
		return false
	default:
		return l.history[len(l.history)-1] < rr.history[len(rr.history)-1]
	}
}

// insertOrdered places n into the evictable list at the position its
// sort key demands, first-match linear scan from the front. A handle
// to the resulting element is stashed on n so removal is O(1).
func (r *LRUKReplacer) insertOrdered(n *node) {
	for e := r.evictable.Front(); e != nil; e = e.Next() {
		if r.less(n, e.Value.(*node)) {
			n.elem = r.evictable.InsertBefore(n, e)
			return
		}
	}
	n.elem = r.evictable.PushBack(n)
}

func (r *LRUKReplacer) removeFromEvictable(n *node) {
	r.evictable.Remove(n.elem)
	n.elem = nil
}

// RecordAccess bumps the global timestamp and appends it to frameID's
// history, truncating to the last k entries. Creates the node (in the
// evictable state) on first access, panicking with
// ErrCapacityExceeded if that would exceed maxSize.
func (r *LRUKReplacer) RecordAccess(frameID common.FrameID, accessType common.AccessType) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nowTick++
	ts := r.nowTick

	n, ok := r.nodes[frameID]
	if !ok {
		if len(r.nodes) >= r.maxSize {
			panic(fmt.Errorf("%w: frame %d, max %d", common.ErrCapacityExceeded, frameID, r.maxSize))
		}
		n = &node{frameID: frameID, history: []uint64{ts}, evictable: true}
		r.nodes[frameID] = n
		r.insertOrdered(n)
		r.evictSize++
		return
	}

	if n.evictable {
		r.removeFromEvictable(n)
	}
	n.history = append([]uint64{ts}, n.history...)
	if len(n.history) > r.k {
		n.history = n.history[:r.k]
	}
	if n.evictable {
		r.insertOrdered(n)
	}
}

// SetEvictable toggles frameID's evictable flag, adjusting the ordered
// structure and evictable count. Idempotent; panics with
// ErrUnknownFrame if frameID was never recorded.
func (r *LRUKReplacer) SetEvictable(frameID common.FrameID, evictable bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.nodes[frameID]
	if !ok {
		panic(fmt.Errorf("%w: %d", common.ErrUnknownFrame, frameID))
	}
	if n.evictable == evictable {
		return
	}
	n.evictable = evictable
	if evictable {
		r.insertOrdered(n)
		r.evictSize++
	} else {
		r.removeFromEvictable(n)
		r.evictSize--
	}
}

// Evict selects the evictable node with the greatest backward
// k-distance (tie-broken by earliest least-recent timestamp), removes
// it from tracking entirely, and reports its frame id. Returns false
// if no frame is evictable.
func (r *LRUKReplacer) Evict() (common.FrameID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	front := r.evictable.Front()
	if front == nil {
		return 0, false
	}
	n := front.Value.(*node)
	r.evictable.Remove(front)
	delete(r.nodes, n.frameID)
	r.evictSize--
	r.log.Debug("evicted frame", zap.Int32("frame_id", int32(n.frameID)))
	return n.frameID, true
}

// Remove drops an evictable node from tracking. No-op if frameID is
// not tracked; panics with ErrNotEvictable if it is tracked but
// currently pinned.
func (r *LRUKReplacer) Remove(frameID common.FrameID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.nodes[frameID]
	if !ok {
		return
	}
	if !n.evictable {
		panic(fmt.Errorf("%w: frame %d", common.ErrNotEvictable, frameID))
	}
	r.removeFromEvictable(n)
	delete(r.nodes, frameID)
	r.evictSize--
}

// Size reports the number of currently evictable nodes.
func (r *LRUKReplacer) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.evictSize
}

func (r *LRUKReplacer) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fmt.Sprintf("LRUKReplacer{evictable=%d, tracked=%d, max=%d, k=%d}", r.evictSize, len(r.nodes), r.maxSize, r.k)
}
