package chunk

import "github.com/google/uuid"

// SectionHeight is the number of blocks along each axis of a section.
const SectionHeight = 16

// Section is one 16x16x16 slice of a Chunk: a paletted block-state grid, a
// coarse 4x4x4 paletted biome grid, and the two 4-bit light arrays. The
// in-memory shape is grounded on the teacher's format.Section, widened with
// light arrays and heightmap support the teacher's single-file world format
// did not need.
type Section struct {
	Y int32

	Blocks *Palette
	// BlockIndices holds one palette index per block position, ordered
	// y*256+z*16+x, matching the protocol's paletted-container iteration
	// order.
	BlockIndices []int

	Biomes       *Palette
	BiomeIndices []int // 4x4x4 = 64 entries

	SkyLight   []byte // 2048 bytes, nil if absent
	BlockLight []byte // 2048 bytes, nil if absent
}

// NewSection returns an empty section at section-Y y, with every block slot
// defaulting to the zero palette entry (air).
func NewSection(y int32) *Section {
	s := &Section{
		Y:            y,
		Blocks:       NewPalette(4),
		BlockIndices: make([]int, 16*16*16),
		Biomes:       NewPalette(1),
		BiomeIndices: make([]int, 4*4*4),
	}
	s.Blocks.IDOf(0)
	s.Biomes.IDOf(0)
	return s
}

// IsEmpty reports whether the section contains only the zero block state
// (air) and carries no light data, and can therefore be omitted from
// storage.
func (s *Section) IsEmpty() bool {
	if s == nil {
		return true
	}
	if s.Blocks.Len() > 1 {
		return false
	}
	return s.SkyLight == nil && s.BlockLight == nil
}

// BlockAt returns the block state at local coordinates (x, y, z), each in
// [0, 16).
func (s *Section) BlockAt(x, y, z int) uint32 {
	idx := s.BlockIndices[y*256+z*16+x]
	return s.Blocks.StateAt(idx)
}

// SetBlockAt sets the block state at local coordinates (x, y, z).
func (s *Section) SetBlockAt(x, y, z int, state uint32) {
	s.BlockIndices[y*256+z*16+x] = s.Blocks.IDOf(state)
}

// BlockEntity is a block with attached NBT data, keyed by a packed (x,z)
// pair and a Y, matching the teacher's format.BlockEntity shape.
type BlockEntity struct {
	PackedXZ uint8
	Y        int32
	ID       string
	Data     []byte
}

// Position reconstructs the block entity's world-relative local coordinate.
func (b BlockEntity) Position() (x, z int) {
	return int(b.PackedXZ >> 4), int(b.PackedXZ & 0xF)
}

// Entity is a free (non-block) entity persisted with its containing chunk.
type Entity struct {
	UUID     uuid.UUID
	ID       string
	Position [3]float64
	Rotation [2]float32
	Velocity [3]float32
	Data     []byte
}

// ScheduledTick is a pending block or fluid tick persisted with its chunk so
// it survives an unload/reload cycle.
type ScheduledTick struct {
	PackedXZ uint8
	Y        int32
	Block    string
	Delay    int32
}

// Position reconstructs the scheduled tick's local (x, z) coordinate.
func (s ScheduledTick) Position() (x, z int) {
	return int(s.PackedXZ >> 4), int(s.PackedXZ & 0xF)
}

// Chunk is one 16xHx16 column of Sections plus the block entities, free
// entities, and scheduled ticks anchored to it.
type Chunk struct {
	X, Z int32

	MinSectionY, MaxSectionY int32 // exclusive upper bound, as section indices
	Sections                 []*Section

	Heightmaps map[string][]int64

	BlockEntities  []BlockEntity
	Entities       []Entity
	ScheduledTicks []ScheduledTick

	dirty bool
}

// NewChunk returns an empty chunk spanning section range [minY, maxY).
func NewChunk(x, z, minY, maxY int32) *Chunk {
	c := &Chunk{
		X: x, Z: z,
		MinSectionY: minY, MaxSectionY: maxY,
		Sections:   make([]*Section, maxY-minY),
		Heightmaps: make(map[string][]int64),
	}
	return c
}

// SectionAt returns the section at section-Y y, creating it on demand.
func (c *Chunk) SectionAt(y int32) *Section {
	idx := y - c.MinSectionY
	if idx < 0 || int(idx) >= len(c.Sections) {
		return nil
	}
	if c.Sections[idx] == nil {
		c.Sections[idx] = NewSection(y)
	}
	return c.Sections[idx]
}

// MarkDirty flags the chunk as needing to be persisted.
func (c *Chunk) MarkDirty() { c.dirty = true }

// Dirty reports whether the chunk has unsaved changes.
func (c *Chunk) Dirty() bool { return c.dirty }

// ClearDirty resets the dirty flag after a successful save.
func (c *Chunk) ClearDirty() { c.dirty = false }

// BlockAt returns the block state at a chunk-local coordinate, where y is
// the absolute world Y.
func (c *Chunk) BlockAt(x int, y int32, z int) uint32 {
	sy := sectionIndexForY(y)
	idx := sy - c.MinSectionY
	if idx < 0 || int(idx) >= len(c.Sections) || c.Sections[idx] == nil {
		return 0
	}
	return c.Sections[idx].BlockAt(x, int(mod16(y)), z)
}

// SetBlockAt sets the block state at a chunk-local coordinate, where y is
// the absolute world Y.
func (c *Chunk) SetBlockAt(x int, y int32, z int, state uint32) {
	sy := sectionIndexForY(y)
	sec := c.SectionAt(sy)
	if sec == nil {
		return
	}
	sec.SetBlockAt(x, int(mod16(y)), z, state)
	c.MarkDirty()
}

func sectionIndexForY(y int32) int32 {
	if y >= 0 {
		return y / 16
	}
	return (y+1)/16 - 1
}

func mod16(y int32) int32 {
	m := y % 16
	if m < 0 {
		m += 16
	}
	return m
}
