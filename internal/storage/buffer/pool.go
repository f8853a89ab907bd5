// Package buffer implements the buffer pool manager: it owns a fixed
// array of page frames and mediates all fetch/new/unpin/flush/delete
// traffic between callers, the replacer, and the disk scheduler.
package buffer

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"
	"teachdb/internal/dbtelemetry"
	"teachdb/internal/storage/common"
	"teachdb/internal/storage/disk"
	"teachdb/internal/storage/page"
	"teachdb/internal/storage/replacer"
)

// Pool owns POOL_SIZE frames and routes page requests between the
// resident index, the free list, the replacer, and the disk scheduler.
// All public operations are serialized under mu.
type Pool struct {
	mu sync.Mutex

	frames   []page.Frame
	resident map[common.PageID]common.FrameID

	// freeList holds frame ids currently idle, LIFO by convention (§9
	// Open Question 3: ordering is unobserved, tests must not depend on
	// it).
	freeList []common.FrameID
	// residentFrames is the authoritative set of frame ids currently
	// holding a live page; FlushAllPages iterates it directly rather
	// than deriving frame ids from the resident page->frame map. Tests
	// check that its cardinality matches Size(), which counts the
	// resident index.
	residentFrames mapset.Set[common.FrameID]

	nextPageID common.PageID
	// deleted holds the ids of pages removed by DeletePage; FetchPage
	// refuses them, so a deleted id never resolves again.
	deleted map[common.PageID]struct{}

	replacer *replacer.LRUKReplacer
	sched    disk.Scheduler
	log      *zap.Logger
}

// NewPool builds a pool of poolSize frames, evicting via an LRU-K
// replacer with history depth k, against the given disk scheduler.
func NewPool(poolSize, k int, sched disk.Scheduler, logger *zap.Logger) *Pool {
	if poolSize <= 0 {
		panic(common.ErrInvalidPoolSize)
	}

	freeList := make([]common.FrameID, poolSize)
	for i := range freeList {
		freeList[i] = common.FrameID(i)
	}

	return &Pool{
		frames:         make([]page.Frame, poolSize),
		resident:       make(map[common.PageID]common.FrameID, poolSize),
		freeList:       freeList,
		residentFrames: mapset.NewThreadUnsafeSet[common.FrameID](),
		deleted:        make(map[common.PageID]struct{}),
		replacer:       replacer.New(poolSize, k, logger),
		sched:          sched,
		log:            dbtelemetry.OrNop(logger),
	}
}

// NewPage allocates a fresh page id, binds it to an acquired frame with
// pin count 1, and returns a pointer to that frame. Returns ok=false if
// the pool is full and nothing is evictable.
func (p *Pool) NewPage() (frame *page.Frame, pageID common.PageID, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	frameID, ok := p.acquireFrame()
	if !ok {
		return nil, common.InvalidPageID, false
	}

	pageID = p.allocatePageID()
	f := &p.frames[frameID]
	f.Reset()
	f.PageID = pageID
	f.PinCount = 1

	p.resident[pageID] = frameID
	p.residentFrames.Add(frameID)
	p.replacer.RecordAccess(frameID, common.AccessUnknown)
	p.replacer.SetEvictable(frameID, false)

	p.log.Debug("new page", zap.Int64("page_id", int64(pageID)), zap.Int32("frame_id", int32(frameID)))
	return f, pageID, true
}

// FetchPage returns the frame holding pageID, reading it from disk on a
// miss. The returned frame is always pinned (pin count >= 1) and
// non-evictable. Returns ok=false if pageID was deleted by DeletePage,
// if no frame could be acquired for a miss, or if the disk read failed.
func (p *Pool) FetchPage(pageID common.PageID, accessType common.AccessType) (frame *page.Frame, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if frameID, found := p.resident[pageID]; found {
		f := &p.frames[frameID]
		f.PinCount++
		p.replacer.RecordAccess(frameID, accessType)
		p.replacer.SetEvictable(frameID, false)
		return f, true
	}

	if _, gone := p.deleted[pageID]; gone {
		return nil, false
	}

	frameID, ok := p.acquireFrame()
	if !ok {
		return nil, false
	}

	f := &p.frames[frameID]
	f.Reset()
	f.PageID = pageID
	f.PinCount = 1 // see DESIGN.md, Open Question resolution 1: fetched frames must be pinned

	req := p.sched.CreateRequest(false, &f.Data, pageID)
	p.sched.Schedule(req)
	if err := <-req.Done; err != nil {
		p.log.Error("fetch page read failed", zap.Int64("page_id", int64(pageID)), zap.Error(err))
		f.Reset()
		p.freeList = append(p.freeList, frameID)
		return nil, false
	}

	p.resident[pageID] = frameID
	p.residentFrames.Add(frameID)
	p.replacer.RecordAccess(frameID, accessType)
	p.replacer.SetEvictable(frameID, false)

	return f, true
}

// UnpinPage decrements pageID's pin count, marking the frame evictable
// once it reaches zero. accessType is accepted for interface symmetry
// with the replacer's access-recording surface; the present policy
// does not otherwise act on it here since pinning, not access, drives
// evictability. Returns false if pageID is not resident or already
// unpinned.
func (p *Pool) UnpinPage(pageID common.PageID, isDirty bool, accessType common.AccessType) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	frameID, ok := p.resident[pageID]
	if !ok {
		return false
	}
	f := &p.frames[frameID]
	if f.PinCount <= 0 {
		return false
	}

	f.PinCount--
	f.IsDirty = f.IsDirty || isDirty
	if f.PinCount == 0 {
		p.replacer.SetEvictable(frameID, true)
	}
	return true
}

// FlushPage writes pageID's frame to disk synchronously and clears its
// dirty flag, regardless of pin state. Returns false if not resident.
func (p *Pool) FlushPage(pageID common.PageID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	frameID, ok := p.resident[pageID]
	if !ok {
		return false
	}
	return p.flushFrame(frameID)
}

// FlushAllPages flushes every resident frame.
func (p *Pool) FlushAllPages() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.residentFrames.Each(func(frameID common.FrameID) bool {
		p.flushFrame(frameID)
		return false
	})
}

// flushFrame writes frameID's contents to disk and clears its dirty
// flag. Caller must hold mu.
func (p *Pool) flushFrame(frameID common.FrameID) bool {
	f := &p.frames[frameID]
	req := p.sched.CreateRequest(true, &f.Data, f.PageID)
	p.sched.Schedule(req)
	if err := <-req.Done; err != nil {
		p.log.Error("flush page failed", zap.Int64("page_id", int64(f.PageID)), zap.Error(err))
		return false
	}
	f.IsDirty = false
	return true
}

// DeletePage frees pageID's frame after flushing it if dirty. Returns
// true vacuously if pageID is not resident; false if still pinned.
func (p *Pool) DeletePage(pageID common.PageID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	frameID, ok := p.resident[pageID]
	if !ok {
		return true
	}
	f := &p.frames[frameID]
	if f.PinCount > 0 {
		return false
	}

	p.replacer.Remove(frameID)
	delete(p.resident, pageID)
	p.residentFrames.Remove(frameID)

	if f.IsDirty {
		p.flushFrame(frameID)
	}
	f.Reset()
	p.freeList = append(p.freeList, frameID)
	p.deallocatePageID(pageID)
	return true
}

// acquireFrame implements the shared frame-acquisition sub-protocol of
// NewPage and FetchPage's miss path: prefer the free list (LIFO), else
// ask the replacer to evict; erase the evicted frame's former mapping
// and flush it before reuse. Caller must hold mu.
func (p *Pool) acquireFrame() (common.FrameID, bool) {
	if n := len(p.freeList); n > 0 {
		frameID := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		return frameID, true
	}

	frameID, ok := p.replacer.Evict()
	if !ok {
		return 0, false
	}

	f := &p.frames[frameID]
	delete(p.resident, f.PageID)
	p.residentFrames.Remove(frameID)
	if f.IsDirty {
		p.flushFrame(frameID)
	}
	return frameID, true
}

// allocatePageID returns the next monotonically increasing page id.
// Caller must hold mu.
func (p *Pool) allocatePageID() common.PageID {
	id := p.nextPageID
	p.nextPageID++
	return id
}

// deallocatePageID is the counterpart to allocatePageID, called once a
// page_id's frame has been fully reclaimed. It records the id as
// deleted so that FetchPage refuses it from then on; allocatePageID
// never hands an id out twice. Kept as its own named hook, mirroring
// the reference AllocatePage/DeallocatePage pair. Caller must hold mu.
func (p *Pool) deallocatePageID(pageID common.PageID) {
	p.deleted[pageID] = struct{}{}
}

// Size reports the number of currently resident pages.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.resident)
}

// FreeCount reports the number of free frames, for invariant checks.
func (p *Pool) FreeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.freeList)
}
