package buffer

import "teachdb/internal/storage/common"

// BasicPageGuard binds a pinned frame to a scope that releases the pin
// exactly once on Drop, accumulating whatever dirty flag the holder
// reports during its lifetime. Zero value is not usable; obtain one
// from Pool.FetchPageBasic or Pool.NewPageGuarded.
type BasicPageGuard struct {
	pool    *Pool
	pageID  common.PageID
	dirty   bool
	dropped bool
}

func newGuard(pool *Pool, pageID common.PageID) *BasicPageGuard {
	return &BasicPageGuard{pool: pool, pageID: pageID}
}

// PageID returns the id of the page this guard pins.
func (g *BasicPageGuard) PageID() common.PageID {
	return g.pageID
}

// MarkDirty ORs true into the guard's accumulated dirty flag, written
// back to the frame on Drop.
func (g *BasicPageGuard) MarkDirty() {
	g.dirty = true
}

// Drop releases the pin this guard holds via a single UnpinPage call.
// Safe to call more than once; only the first call has effect.
func (g *BasicPageGuard) Drop() {
	if g.dropped {
		return
	}
	g.dropped = true
	g.pool.UnpinPage(g.pageID, g.dirty, common.AccessUnknown)
}

// ReadPageGuard is a BasicPageGuard obtained for read-only access. It
// carries no additional state; the distinction exists so callers can
// express intent and so a future reader/writer latch could be layered
// on without changing call sites.
type ReadPageGuard struct {
	*BasicPageGuard
}

// WritePageGuard is a BasicPageGuard obtained for mutating access. Any
// write through the guard's frame should be followed by MarkDirty.
type WritePageGuard struct {
	*BasicPageGuard
}

// FetchPageBasic pins pageID and returns an untyped guard exposing only
// PageID/MarkDirty/Drop. Returns ok=false under the same conditions as
// FetchPage.
func (p *Pool) FetchPageBasic(pageID common.PageID, accessType common.AccessType) (*BasicPageGuard, bool) {
	if _, ok := p.FetchPage(pageID, accessType); !ok {
		return nil, false
	}
	return newGuard(p, pageID), true
}

// FetchPageRead pins pageID for read-only access, recording the access
// as a Lookup.
func (p *Pool) FetchPageRead(pageID common.PageID) (*ReadPageGuard, bool) {
	g, ok := p.FetchPageBasic(pageID, common.AccessLookup)
	if !ok {
		return nil, false
	}
	return &ReadPageGuard{g}, true
}

// FetchPageWrite pins pageID for mutating access. Callers that write
// through the returned guard's frame must call MarkDirty before Drop.
func (p *Pool) FetchPageWrite(pageID common.PageID) (*WritePageGuard, bool) {
	g, ok := p.FetchPageBasic(pageID, common.AccessUnknown)
	if !ok {
		return nil, false
	}
	return &WritePageGuard{g}, true
}

// NewPageGuarded allocates a page as in NewPage and wraps its pin in a
// guard that releases on Drop.
func (p *Pool) NewPageGuarded() (*BasicPageGuard, common.PageID, bool) {
	_, pageID, ok := p.NewPage()
	if !ok {
		return nil, common.InvalidPageID, false
	}
	return newGuard(p, pageID), pageID, true
}
