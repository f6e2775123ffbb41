package chunk

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sandertv/gophertunnel/minecraft/nbt"
)

// wireSection is the NBT-tagged shape one Section is encoded/decoded as,
// following the same Marshal/Unmarshal-by-struct-tag approach the teacher
// uses for its world settings round trip.
type wireSection struct {
	Y            int8     `nbt:"Y"`
	BlockPalette []string `nbt:"block_palette"`
	BlockData    []int64  `nbt:"block_data"`
	BiomePalette []string `nbt:"biome_palette"`
	BiomeData    []int64  `nbt:"biome_data"`
	SkyLight     []byte   `nbt:"sky_light,omitempty"`
	BlockLight   []byte   `nbt:"block_light,omitempty"`
}

type wireBlockEntity struct {
	PackedXZ uint8  `nbt:"xz"`
	Y        int32  `nbt:"y"`
	ID       string `nbt:"id"`
	Data     []byte `nbt:"data"`
}

type wireScheduledTick struct {
	PackedXZ uint8  `nbt:"xz"`
	Y        int32  `nbt:"y"`
	Block    string `nbt:"block"`
	Delay    int32  `nbt:"delay"`
}

// wireEntity is the on-disk shape of a free entity, following pumpkin's and
// the teacher's habit of persisting entities inline with their containing
// chunk rather than in a separate per-world entity store.
type wireEntity struct {
	UUID     [16]byte   `nbt:"uuid"`
	ID       string     `nbt:"id"`
	Position [3]float64 `nbt:"pos"`
	Rotation [2]float32 `nbt:"rot"`
	Velocity [3]float32 `nbt:"vel"`
	Data     []byte     `nbt:"data"`
}

type wireChunk struct {
	X              int32               `nbt:"x"`
	Z              int32               `nbt:"z"`
	MinSectionY    int32               `nbt:"min_section_y"`
	Sections       []wireSection       `nbt:"sections"`
	BlockEntities  []wireBlockEntity   `nbt:"block_entities"`
	Entities       []wireEntity        `nbt:"entities"`
	ScheduledTicks []wireScheduledTick `nbt:"scheduled_ticks"`
	Heightmaps     map[string][]int64  `nbt:"heightmaps"`
}

// Encode serializes c, including its free entities, block entities,
// scheduled ticks and heightmaps, to its NBT on-disk representation.
func Encode(c *Chunk) ([]byte, error) {
	w := wireChunk{
		X: c.X, Z: c.Z,
		MinSectionY: c.MinSectionY,
		Heightmaps:  c.Heightmaps,
	}
	for _, s := range c.Sections {
		if s.IsEmpty() {
			continue
		}
		bits := s.Blocks.BitsPerEntry()
		biomeBits := s.Biomes.BitsPerEntry()
		w.Sections = append(w.Sections, wireSection{
			Y:            int8(s.Y),
			BlockPalette: paletteStrings(s.Blocks),
			BlockData:    PaletteEncodeIndices(s.BlockIndices, bits),
			BiomePalette: paletteStrings(s.Biomes),
			BiomeData:    PaletteEncodeIndices(s.BiomeIndices, biomeBits),
			SkyLight:     s.SkyLight,
			BlockLight:   s.BlockLight,
		})
	}
	for _, be := range c.BlockEntities {
		w.BlockEntities = append(w.BlockEntities, wireBlockEntity{
			PackedXZ: be.PackedXZ, Y: be.Y, ID: be.ID, Data: be.Data,
		})
	}
	for _, e := range c.Entities {
		w.Entities = append(w.Entities, wireEntity{
			UUID: e.UUID, ID: e.ID, Position: e.Position,
			Rotation: e.Rotation, Velocity: e.Velocity, Data: e.Data,
		})
	}
	for _, st := range c.ScheduledTicks {
		w.ScheduledTicks = append(w.ScheduledTicks, wireScheduledTick{
			PackedXZ: st.PackedXZ, Y: st.Y, Block: st.Block, Delay: st.Delay,
		})
	}

	data, err := nbt.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("chunk: encode nbt: %w", err)
	}
	return data, nil
}

// Decode deserializes a chunk from its NBT on-disk representation. maxY is
// the chunk's exclusive upper section bound, needed because it is not
// itself persisted (only MinSectionY is).
func Decode(data []byte, maxY int32) (*Chunk, error) {
	var w wireChunk
	if err := nbt.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("chunk: decode nbt: %w", err)
	}

	c := NewChunk(w.X, w.Z, w.MinSectionY, maxY)
	c.Heightmaps = w.Heightmaps
	if c.Heightmaps == nil {
		c.Heightmaps = make(map[string][]int64)
	}

	for _, ws := range w.Sections {
		sec := NewSection(int32(ws.Y))
		sec.Blocks = palettesFromStrings(ws.BlockPalette, 4)
		bits := BitsPerEntry(len(ws.BlockPalette), 4)
		sec.BlockIndices = PaletteDecodeIndices(ws.BlockData, bits, 16*16*16)
		sec.Biomes = palettesFromStrings(ws.BiomePalette, 1)
		biomeBits := BitsPerEntry(len(ws.BiomePalette), 1)
		sec.BiomeIndices = PaletteDecodeIndices(ws.BiomeData, biomeBits, 4*4*4)
		sec.SkyLight = ws.SkyLight
		sec.BlockLight = ws.BlockLight

		idx := sec.Y - c.MinSectionY
		if idx >= 0 && int(idx) < len(c.Sections) {
			c.Sections[idx] = sec
		}
	}

	for _, wbe := range w.BlockEntities {
		c.BlockEntities = append(c.BlockEntities, BlockEntity{
			PackedXZ: wbe.PackedXZ, Y: wbe.Y, ID: wbe.ID, Data: wbe.Data,
		})
	}
	for _, we := range w.Entities {
		c.Entities = append(c.Entities, Entity{
			UUID: uuid.UUID(we.UUID), ID: we.ID, Position: we.Position,
			Rotation: we.Rotation, Velocity: we.Velocity, Data: we.Data,
		})
	}
	for _, wst := range w.ScheduledTicks {
		c.ScheduledTicks = append(c.ScheduledTicks, ScheduledTick{
			PackedXZ: wst.PackedXZ, Y: wst.Y, Block: wst.Block, Delay: wst.Delay,
		})
	}
	return c, nil
}

func paletteStrings(p *Palette) []string {
	entries := p.Entries()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = fmt.Sprintf("state:%d", e)
	}
	return out
}

func palettesFromStrings(names []string, minBits int) *Palette {
	p := NewPalette(minBits)
	for _, n := range names {
		var id uint32
		fmt.Sscanf(n, "state:%d", &id)
		p.IDOf(id)
	}
	return p
}
