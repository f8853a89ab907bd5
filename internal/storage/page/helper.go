package page

import "teachdb/internal/storage/common"

// NewTestFrame builds a frame preloaded with data, truncated to fit,
// for use by package tests that need deterministic frame contents.
func NewTestFrame(pageID common.PageID, data []byte) *Frame {
	f := &Frame{PageID: pageID}
	if len(data) > len(f.Data) {
		data = data[:len(f.Data)]
	}
	copy(f.Data[:], data)
	return f
}
