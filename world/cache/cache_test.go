package cache

import (
	"testing"
	"time"

	"github.com/kilnmc/kiln/world/chunk"
)

type fakeStore struct {
	loadCount int
	saved     map[Key]*chunk.Chunk
}

func newFakeStore() *fakeStore { return &fakeStore{saved: make(map[Key]*chunk.Chunk)} }

func (f *fakeStore) LoadChunk(dimension string, x, z int32) (*chunk.Chunk, error) {
	f.loadCount++
	return chunk.NewChunk(x, z, -4, 20), nil
}

func (f *fakeStore) SaveChunk(dimension string, c *chunk.Chunk) error {
	f.saved[Key{Dimension: dimension, X: c.X, Z: c.Z}] = c
	return nil
}

func TestGetCachesAfterFirstLoad(t *testing.T) {
	store := newFakeStore()
	c := New(store, store, time.Hour)
	k := Key{Dimension: "overworld", X: 1, Z: 2}

	if _, err := c.Get(k); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := c.Get(k); err != nil {
		t.Fatalf("get: %v", err)
	}
	if store.loadCount != 1 {
		t.Fatalf("expected 1 load, got %d", store.loadCount)
	}
}

func TestWatchUnwatch(t *testing.T) {
	store := newFakeStore()
	c := New(store, store, time.Hour)
	k := Key{Dimension: "overworld", X: 0, Z: 0}
	if _, err := c.Get(k); err != nil {
		t.Fatalf("get: %v", err)
	}
	if n := c.Watch(k, 1); n != 1 {
		t.Fatalf("expected 1 watcher, got %d", n)
	}
	if n := c.Watch(k, 2); n != 2 {
		t.Fatalf("expected 2 watchers, got %d", n)
	}
	if n := c.Unwatch(k, 1); n != 1 {
		t.Fatalf("expected 1 watcher after unwatch, got %d", n)
	}
}

func TestMarkDirtyAndFlush(t *testing.T) {
	store := newFakeStore()
	c := New(store, store, time.Hour)
	k := Key{Dimension: "overworld", X: 5, Z: 5}
	got, err := c.Get(k)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	c.MarkDirty(k)
	if err := c.FlushDirty(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if store.saved[k] != got {
		t.Fatalf("expected chunk to be saved")
	}
}

func TestEvictSkipsWatchedChunk(t *testing.T) {
	store := newFakeStore()
	c := New(store, store, time.Hour)
	k := Key{Dimension: "overworld", X: 9, Z: 9}
	if _, err := c.Get(k); err != nil {
		t.Fatalf("get: %v", err)
	}
	c.Watch(k, 1)
	if err := c.Evict(k); err != nil {
		t.Fatalf("evict: %v", err)
	}
	if _, ok := store.saved[k]; ok {
		t.Fatalf("did not expect watched chunk to be evicted/saved")
	}
}

func TestEvictUnknownChunkIsNoop(t *testing.T) {
	store := newFakeStore()
	c := New(store, store, time.Hour)
	if err := c.Evict(Key{Dimension: "nether", X: 1, Z: 1}); err != nil {
		t.Fatalf("expected no error evicting unknown key, got %v", err)
	}
}

func TestBackgroundSaveLoopFlushesDirtyChunks(t *testing.T) {
	store := newFakeStore()
	c := New(store, store, 5*time.Millisecond)
	k := Key{Dimension: "overworld", X: 2, Z: 2}
	if _, err := c.Get(k); err != nil {
		t.Fatalf("get: %v", err)
	}
	c.MarkDirty(k)
	c.EnableBackgroundSaves()
	defer c.DisableBackgroundSaves()

	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) {
		if _, ok := store.saved[k]; ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected background save to flush dirty chunk")
}
