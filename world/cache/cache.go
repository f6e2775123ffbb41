// Package cache holds loaded chunks in memory, tracks which players are
// watching each one, and coalesces dirty chunks into periodic background
// saves. The locking strategy is a lock-striped concurrent map, generalized
// from the teacher's single coarse sync.RWMutex provider.
package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/kilnmc/kiln/world/chunk"
)

const shardCount = 16 // power of two, selected by hashed chunk key

// Key identifies a chunk within a specific dimension.
type Key struct {
	Dimension string
	X, Z      int32
}

func (k Key) hash() uint64 {
	var buf [8]byte
	putInt32(buf[0:4], k.X)
	putInt32(buf[4:8], k.Z)
	h := xxhash.New()
	h.Write([]byte(k.Dimension))
	h.Write(buf[:])
	return h.Sum64()
}

func putInt32(b []byte, v int32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}

// entry is one cached chunk plus its watcher set.
type entry struct {
	chunk    *chunk.Chunk
	watchers map[uint64]struct{} // player session ids
}

type shard struct {
	mu      sync.RWMutex
	entries map[Key]*entry
}

// Loader loads a chunk from backing storage when it is not already cached.
type Loader interface {
	LoadChunk(dimension string, x, z int32) (*chunk.Chunk, error)
}

// Saver persists a chunk to backing storage.
type Saver interface {
	SaveChunk(dimension string, c *chunk.Chunk) error
}

// Cache is the in-memory chunk cache and watch manager.
type Cache struct {
	shards [shardCount]*shard

	loader Loader
	saver  Saver

	dirtyMu sync.Mutex
	dirty   map[Key]struct{}

	saveInterval time.Duration
	stopCh       chan struct{}
	wg           sync.WaitGroup
}

// New returns a Cache backed by loader/saver, saving dirty chunks on
// saveInterval.
func New(loader Loader, saver Saver, saveInterval time.Duration) *Cache {
	c := &Cache{
		loader:       loader,
		saver:        saver,
		dirty:        make(map[Key]struct{}),
		saveInterval: saveInterval,
	}
	for i := range c.shards {
		c.shards[i] = &shard{entries: make(map[Key]*entry)}
	}
	return c
}

func (c *Cache) shardFor(k Key) *shard {
	return c.shards[k.hash()%shardCount]
}

// Get returns the chunk at k, loading it via Loader on a cache miss.
func (c *Cache) Get(k Key) (*chunk.Chunk, error) {
	sh := c.shardFor(k)

	sh.mu.RLock()
	if e, ok := sh.entries[k]; ok {
		sh.mu.RUnlock()
		return e.chunk, nil
	}
	sh.mu.RUnlock()

	loaded, err := c.loader.LoadChunk(k.Dimension, k.X, k.Z)
	if err != nil {
		return nil, fmt.Errorf("cache: load chunk %v: %w", k, err)
	}

	sh.mu.Lock()
	defer sh.mu.Unlock()
	if e, ok := sh.entries[k]; ok {
		return e.chunk, nil
	}
	sh.entries[k] = &entry{chunk: loaded, watchers: make(map[uint64]struct{})}
	return loaded, nil
}

// MarkDirty records that k needs to be saved on the next background flush.
func (c *Cache) MarkDirty(k Key) {
	c.dirtyMu.Lock()
	c.dirty[k] = struct{}{}
	c.dirtyMu.Unlock()
}

// Watch adds playerID to k's watcher set, returning the new watcher count.
func (c *Cache) Watch(k Key, playerID uint64) int {
	sh := c.shardFor(k)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	e, ok := sh.entries[k]
	if !ok {
		return 0
	}
	e.watchers[playerID] = struct{}{}
	return len(e.watchers)
}

// Unwatch removes playerID from k's watcher set, returning the new watcher
// count. A chunk whose watcher count reaches zero becomes eligible for
// eviction by Evict.
func (c *Cache) Unwatch(k Key, playerID uint64) int {
	sh := c.shardFor(k)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	e, ok := sh.entries[k]
	if !ok {
		return 0
	}
	delete(e.watchers, playerID)
	return len(e.watchers)
}

// WatcherCount returns how many players currently watch k.
func (c *Cache) WatcherCount(k Key) int {
	sh := c.shardFor(k)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	if e, ok := sh.entries[k]; ok {
		return len(e.watchers)
	}
	return 0
}

// Evict removes k from the cache if it has no watchers, saving it first if
// it is dirty.
func (c *Cache) Evict(k Key) error {
	sh := c.shardFor(k)
	sh.mu.RLock()
	_, ok := sh.entries[k]
	sh.mu.RUnlock()
	if !ok {
		return nil
	}
	if c.WatcherCount(k) > 0 {
		return nil
	}
	if c.isDirty(k) {
		if err := c.flushOne(k); err != nil {
			return err
		}
	}
	sh.mu.Lock()
	delete(sh.entries, k)
	sh.mu.Unlock()
	return nil
}

func (c *Cache) isDirty(k Key) bool {
	c.dirtyMu.Lock()
	defer c.dirtyMu.Unlock()
	_, ok := c.dirty[k]
	return ok
}

func (c *Cache) flushOne(k Key) error {
	sh := c.shardFor(k)
	sh.mu.RLock()
	e, ok := sh.entries[k]
	sh.mu.RUnlock()
	if !ok {
		return nil
	}
	if err := c.saver.SaveChunk(k.Dimension, e.chunk); err != nil {
		return fmt.Errorf("cache: save chunk %v: %w", k, err)
	}
	c.dirtyMu.Lock()
	delete(c.dirty, k)
	c.dirtyMu.Unlock()
	return nil
}

// FlushDirty saves every chunk currently marked dirty.
func (c *Cache) FlushDirty() error {
	c.dirtyMu.Lock()
	keys := make([]Key, 0, len(c.dirty))
	for k := range c.dirty {
		keys = append(keys, k)
	}
	c.dirtyMu.Unlock()

	for _, k := range keys {
		if err := c.flushOne(k); err != nil {
			return err
		}
	}
	return nil
}

// EnableBackgroundSaves starts a ticker goroutine flushing dirty chunks
// every saveInterval; a chunk marked dirty several times between ticks is
// saved once.
func (c *Cache) EnableBackgroundSaves() {
	c.stopCh = make(chan struct{})
	c.wg.Add(1)
	go c.runSaver()
}

func (c *Cache) runSaver() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.saveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := c.FlushDirty(); err != nil {
				_ = err // dropped; chunks that were not saved stay dirty and are retried on the next tick
			}
		case <-c.stopCh:
			return
		}
	}
}

// DisableBackgroundSaves stops the background save loop started by
// EnableBackgroundSaves and waits for it to exit.
func (c *Cache) DisableBackgroundSaves() {
	if c.stopCh == nil {
		return
	}
	close(c.stopCh)
	c.wg.Wait()
	c.stopCh = nil
}
