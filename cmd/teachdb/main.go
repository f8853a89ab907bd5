// Command teachdb is a small demo wiring the disk scheduler, the
// LRU-K buffer pool, and the persistent trie together: it allocates
// more pages than the pool has frames, writes a short text label into
// each through a guard (so dirty pages are flushed as they are
// evicted), flushes the rest, looks up two keys in a small trie, and
// logs the pool's final state. It does not read the pages back.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"teachdb/internal/storage/buffer"
	"teachdb/internal/storage/common"
	"teachdb/internal/storage/disk"
	"teachdb/internal/trie"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "teachdb:", err)
		os.Exit(1)
	}
}

func run() error {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	dbFile, err := os.CreateTemp("", "teachdb-*.dat")
	if err != nil {
		return fmt.Errorf("create backing file: %w", err)
	}
	path := dbFile.Name()
	dbFile.Close()
	defer os.Remove(path)

	sched, err := disk.NewManager(path, logger)
	if err != nil {
		return fmt.Errorf("open disk manager: %w", err)
	}
	defer sched.Close()

	const poolSize, k = 4, 2
	pool := buffer.NewPool(poolSize, k, sched, logger)

	t := trie.New()
	t = trie.Put(t, "greeting", "hello, teachdb")
	t = trie.Put(t, "count", uint32(1))

	for i := 0; i < poolSize+2; i++ {
		g, pageID, ok := pool.NewPageGuarded()
		if !ok {
			logger.Warn("pool exhausted", zap.Int("iteration", i))
			continue
		}
		frame, _ := pool.FetchPage(pageID, common.AccessUnknown)
		pool.UnpinPage(pageID, false, common.AccessUnknown) // undo the extra pin FetchPage took
		copy(frame.Data[:], fmt.Sprintf("page %d holds trie snapshot", pageID))
		g.MarkDirty()
		g.Drop()
	}

	pool.FlushAllPages()

	if greeting, ok := trie.Get[string](t, "greeting"); ok {
		logger.Info("trie lookup", zap.String("key", "greeting"), zap.String("value", *greeting))
	}
	if count, ok := trie.Get[uint32](t, "count"); ok {
		logger.Info("trie lookup", zap.String("key", "count"), zap.Uint32("value", *count))
	}

	logger.Info("pool state", zap.Int("resident", pool.Size()), zap.Int("free", pool.FreeCount()))
	return nil
}
