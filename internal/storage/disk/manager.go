package disk

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"teachdb/internal/dbtelemetry"
	"teachdb/internal/storage/common"
)

// Manager is a file-backed Scheduler. One background worker goroutine
// drains the request queue and serves each request against a single
// *os.File by page offset (offset = pageID * PageSize), the same
// convention the teacher's file.FileManager and the pack's
// ryogrid-sametree disk manager both use.
//
// A page that has never been written reads back as all zeros rather
// than erroring, matching ryogrid-sametree's disk_manager_impl.go
// short-read behavior.
type Manager struct {
	file    *os.File
	log     *zap.Logger
	queue   chan Request
	closeWg sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewManager opens (creating if needed) the file at path and starts
// its background worker.
func NewManager(path string, logger *zap.Logger) (*Manager, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o666)
	if err != nil {
		return nil, fmt.Errorf("disk: open %q: %w", path, err)
	}

	m := &Manager{
		file:  f,
		log:   dbtelemetry.OrNop(logger),
		queue: make(chan Request, 64),
	}
	m.closeWg.Add(1)
	go m.worker()
	return m, nil
}

func (m *Manager) CreateRequest(isWrite bool, data *[common.PageSize]byte, pageID common.PageID) Request {
	return Request{
		IsWrite: isWrite,
		Data:    data,
		PageID:  pageID,
		Done:    make(chan error, 1),
	}
}

// Schedule enqueues r. Returns immediately; the result arrives on
// r.Done. Scheduling on a closed Manager fulfills Done with
// ErrDiskClosed rather than panicking, since the caller may be racing
// an in-flight flush against shutdown.
func (m *Manager) Schedule(r Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		r.Done <- common.ErrDiskClosed
		return
	}
	m.queue <- r
}

func (m *Manager) worker() {
	defer m.closeWg.Done()
	for r := range m.queue {
		var err error
		if r.IsWrite {
			err = m.writePage(r.PageID, r.Data)
		} else {
			err = m.readPage(r.PageID, r.Data)
		}
		r.Done <- err
	}
}

func (m *Manager) writePage(id common.PageID, data *[common.PageSize]byte) error {
	offset := int64(id) * common.PageSize
	n, err := m.file.WriteAt(data[:], offset)
	if err != nil {
		return fmt.Errorf("disk: write page %d: %w", id, err)
	}
	if n != common.PageSize {
		return fmt.Errorf("disk: short write for page %d: wrote %d of %d bytes", id, n, common.PageSize)
	}
	m.log.Debug("flushed page", zap.Int64("page_id", int64(id)))
	return nil
}

func (m *Manager) readPage(id common.PageID, data *[common.PageSize]byte) error {
	offset := int64(id) * common.PageSize

	info, err := m.file.Stat()
	if err != nil {
		return fmt.Errorf("disk: stat: %w", err)
	}
	if offset >= info.Size() {
		// Page never written: zero-fill rather than error.
		*data = [common.PageSize]byte{}
		return nil
	}

	n, err := m.file.ReadAt(data[:], offset)
	if n < common.PageSize {
		// Short read at end of file: zero-fill the remainder.
		for i := n; i < common.PageSize; i++ {
			data[i] = 0
		}
	}
	if err != nil && n == 0 {
		return fmt.Errorf("disk: read page %d: %w", id, err)
	}
	m.log.Debug("read page", zap.Int64("page_id", int64(id)))
	return nil
}

// Close stops accepting new requests, drains the queue, and closes the
// backing file.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	close(m.queue)
	m.closeWg.Wait()
	return m.file.Close()
}
