package common

import "errors"

// Configuration and runtime conditions. ErrInvalidPoolSize and
// ErrInvalidK are the panic values of the pool and replacer
// constructors on invalid sizes; ErrDiskClosed is delivered on a
// request's Done channel. They are exported so tests can assert on
// them with errors.Is.
var (
	ErrInvalidPoolSize = errors.New("invalid pool size")
	ErrInvalidK        = errors.New("invalid replacer k")
	ErrPageOutOfBounds = errors.New("page offset out of bounds")
	ErrDiskClosed      = errors.New("disk scheduler is closed")
)

// Caller-bug conditions. These are never expected in correct code and
// are surfaced as panics wrapping one of these sentinels, per spec.
var (
	ErrCapacityExceeded = errors.New("replacer: capacity exceeded")
	ErrUnknownFrame     = errors.New("replacer: unknown frame")
	ErrNotEvictable     = errors.New("replacer: frame is pinned, not evictable")
)
