package world

import (
	"testing"

	"github.com/kilnmc/kiln/world/region"
	"github.com/kilnmc/kiln/worldgen"
)

func TestProviderRoundTripsChunkThroughDisk(t *testing.T) {
	dir := t.TempDir()
	p, err := NewProvider(dir, region.Options{Compression: region.CompressionZlib, WriteInPlace: true})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	defer p.Close()

	c, err := p.LoadChunk("overworld", 2, -3)
	if err != nil {
		t.Fatalf("load missing chunk: %v", err)
	}
	c.SetBlockAt(1, 64, 1, 7)

	if err := p.SaveChunk("overworld", c); err != nil {
		t.Fatalf("save chunk: %v", err)
	}

	loaded, err := p.LoadChunk("overworld", 2, -3)
	if err != nil {
		t.Fatalf("load saved chunk: %v", err)
	}
	if got := loaded.BlockAt(1, 64, 1); got != 7 {
		t.Fatalf("expected block state 7, got %d", got)
	}
}

func TestProviderLoadMissingChunkReturnsEmptyWithoutGenerator(t *testing.T) {
	dir := t.TempDir()
	p, err := NewProvider(dir, region.Options{Compression: region.CompressionZlib})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	defer p.Close()

	c, err := p.LoadChunk("overworld", 100, 100)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.BlockAt(0, 64, 0) != 0 {
		t.Fatalf("expected empty chunk to read air")
	}
}

func TestProviderLoadMissingChunkGeneratesTerrain(t *testing.T) {
	dir := t.TempDir()
	p, err := NewProvider(dir, region.Options{Compression: region.CompressionZlib})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	defer p.Close()
	p.SetGenerator(worldgen.NewGenerator(42))

	c, err := p.LoadChunk("overworld", 100, 100)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.BlockAt(0, -64, 0) != worldgen.StateBedrock {
		t.Fatalf("expected generated chunk's floor to be bedrock, got %d", c.BlockAt(0, -64, 0))
	}

	again, err := p.LoadChunk("overworld", 100, 100)
	if err != nil {
		t.Fatalf("load again: %v", err)
	}
	if again.BlockAt(0, -64, 0) != c.BlockAt(0, -64, 0) {
		t.Fatalf("expected the same seed/coordinates to regenerate identical terrain")
	}
}
