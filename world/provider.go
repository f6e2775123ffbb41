// Package world glues the Anvil region-file storage layer to the in-memory
// chunk model, giving the chunk cache a concrete Loader/Saver backed by
// actual files on disk. The directory layout (one subdirectory per
// dimension, each holding r.X.Z.mca files) and the mutex-guarded map of
// open region files are grounded on the teacher's Provider, generalized
// from its single-file-per-world model to Anvil's many-region-files model.
package world

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kilnmc/kiln/world/chunk"
	"github.com/kilnmc/kiln/world/region"
)

// defaultMinSectionY and defaultMaxSectionY bound the standard -64..320
// world height as section indices (16 blocks each), matching the exclusive
// upper bound chunk.NewChunk expects.
const (
	defaultMinSectionY int32 = -4
	defaultMaxSectionY int32 = 20
)

// Generator produces terrain for a chunk that has no saved data on disk
// yet. Provider depends only on this narrow interface rather than importing
// a specific generation strategy, so worldgen.Generator (or a test double)
// satisfies it structurally.
type Generator interface {
	GenerateChunk(dimension string, x, z, minSectionY, maxSectionY int32) (*chunk.Chunk, error)
}

// Provider implements world/cache's Loader and Saver against a directory of
// Anvil region files, one subdirectory per dimension.
type Provider struct {
	mu   sync.Mutex
	dir  string
	opts region.Options
	gen  Generator

	open map[string]*region.File // "dimension/rX.rZ" -> open file
}

// SetGenerator installs the terrain generator LoadChunk falls back to for
// chunks absent from disk. Without one, missing chunks come back empty
// (air), which is only appropriate for tests and void worlds.
func (p *Provider) SetGenerator(gen Generator) { p.gen = gen }

// NewProvider returns a Provider rooted at dir, creating it if necessary.
func NewProvider(dir string, opts region.Options) (*Provider, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("world: create root %s: %w", dir, err)
	}
	return &Provider{
		dir:  dir,
		opts: opts,
		open: make(map[string]*region.File),
	}, nil
}

func (p *Provider) regionFor(dimension string, chunkX, chunkZ int32) (*region.File, int, int, error) {
	regionX, regionZ, localX, localZ := region.RegionCoords(chunkX, chunkZ)
	key := fmt.Sprintf("%s/r.%d.%d", dimension, regionX, regionZ)

	p.mu.Lock()
	defer p.mu.Unlock()

	if f, ok := p.open[key]; ok {
		return f, localX, localZ, nil
	}

	dimDir := filepath.Join(p.dir, dimension)
	if err := os.MkdirAll(dimDir, 0o755); err != nil {
		return nil, 0, 0, fmt.Errorf("world: create dimension dir %s: %w", dimDir, err)
	}
	path := filepath.Join(dimDir, fmt.Sprintf("r.%d.%d.mca", regionX, regionZ))
	f, err := region.Open(path, p.opts)
	if err != nil {
		return nil, 0, 0, err
	}
	p.open[key] = f
	return f, localX, localZ, nil
}

// LoadChunk implements world/cache.Loader.
func (p *Provider) LoadChunk(dimension string, x, z int32) (*chunk.Chunk, error) {
	f, lx, lz, err := p.regionFor(dimension, x, z)
	if err != nil {
		return nil, err
	}
	if !f.Has(lx, lz) {
		if p.gen == nil {
			return chunk.NewChunk(x, z, defaultMinSectionY, defaultMaxSectionY), nil
		}
		c, err := p.gen.GenerateChunk(dimension, x, z, defaultMinSectionY, defaultMaxSectionY)
		if err != nil {
			return nil, fmt.Errorf("world: generate chunk (%d,%d): %w", x, z, err)
		}
		return c, nil
	}
	raw, err := f.Read(lx, lz)
	if err != nil {
		return nil, fmt.Errorf("world: read chunk (%d,%d): %w", x, z, err)
	}
	c, err := chunk.Decode(raw, 20)
	if err != nil {
		return nil, fmt.Errorf("world: decode chunk (%d,%d): %w", x, z, err)
	}
	return c, nil
}

// SaveChunk implements world/cache.Saver.
func (p *Provider) SaveChunk(dimension string, c *chunk.Chunk) error {
	f, lx, lz, err := p.regionFor(dimension, c.X, c.Z)
	if err != nil {
		return err
	}
	data, err := chunk.Encode(c)
	if err != nil {
		return fmt.Errorf("world: encode chunk (%d,%d): %w", c.X, c.Z, err)
	}
	if err := f.Write(lx, lz, data, uint32(time.Now().Unix())); err != nil {
		return fmt.Errorf("world: write chunk (%d,%d): %w", c.X, c.Z, err)
	}
	c.ClearDirty()
	return nil
}

// Close closes every region file this provider has opened.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var firstErr error
	for key, f := range p.open {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("world: close region %s: %w", key, err)
		}
	}
	p.open = make(map[string]*region.File)
	return firstErr
}
