package chunk

import (
	"testing"

	"github.com/google/uuid"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c := NewChunk(3, -2, -4, 20)
	c.SetBlockAt(1, 70, 2, 5)
	c.SetBlockAt(15, -10, 0, 9)
	c.BlockEntities = append(c.BlockEntities, BlockEntity{PackedXZ: 0x12, Y: 64, ID: "minecraft:chest", Data: []byte{1, 2, 3}})
	c.Entities = append(c.Entities, Entity{
		UUID:     uuid.New(),
		ID:       "minecraft:zombie",
		Position: [3]float64{3.5, 70, -1.5},
		Rotation: [2]float32{90, 0},
		Velocity: [3]float32{0, -0.1, 0},
	})
	c.ScheduledTicks = append(c.ScheduledTicks, ScheduledTick{PackedXZ: 0x34, Y: 65, Block: "minecraft:water", Delay: 5})
	c.Heightmaps["WORLD_SURFACE"] = []int64{1, 2, 3}

	data, err := Encode(c)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := Decode(data, 20)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got.X != c.X || got.Z != c.Z || got.MinSectionY != c.MinSectionY {
		t.Fatalf("chunk identity mismatch: got (%d,%d,%d)", got.X, got.Z, got.MinSectionY)
	}
	if got.BlockAt(1, 70, 2) != 5 {
		t.Fatalf("expected block state 5 at (1,70,2), got %d", got.BlockAt(1, 70, 2))
	}
	if got.BlockAt(15, -10, 0) != 9 {
		t.Fatalf("expected block state 9 at (15,-10,0), got %d", got.BlockAt(15, -10, 0))
	}
	if len(got.BlockEntities) != 1 || got.BlockEntities[0].ID != "minecraft:chest" {
		t.Fatalf("block entity not round-tripped: %+v", got.BlockEntities)
	}
	if len(got.Entities) != 1 || got.Entities[0].ID != "minecraft:zombie" || got.Entities[0].UUID != c.Entities[0].UUID {
		t.Fatalf("entity not round-tripped: %+v", got.Entities)
	}
	if len(got.ScheduledTicks) != 1 || got.ScheduledTicks[0].Block != "minecraft:water" {
		t.Fatalf("scheduled tick not round-tripped: %+v", got.ScheduledTicks)
	}
	if len(got.Heightmaps["WORLD_SURFACE"]) != 3 {
		t.Fatalf("heightmap not round-tripped: %+v", got.Heightmaps)
	}
}

func TestEncodeOmitsEmptySections(t *testing.T) {
	c := NewChunk(0, 0, -4, 20)
	data, err := Encode(c)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(data, 20)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, sec := range got.Sections {
		if sec != nil {
			t.Fatalf("expected every section to stay absent for an untouched chunk")
		}
	}
}
