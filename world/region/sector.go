package region

const (
	// SectorSize is the allocation granularity within a region file.
	SectorSize = 4096
	// HeaderSectors is the number of sectors consumed by the location and
	// timestamp tables at the start of every region file.
	HeaderSectors = 2
	// ChunksPerRegion is the number of chunk slots (32x32) in one region
	// file.
	ChunksPerRegion = 32 * 32
	// maxSectorCount is the largest sector count the legacy single-byte
	// location-table field can represent. Earlier implementations silently
	// truncated sector counts above this to fit the byte, corrupting the
	// file; this implementation rejects the write instead (REDESIGN FLAG).
	maxSectorCount = 255
)

// locationEntry is one 4-byte entry of the region file's 1024-entry
// location table: a 24-bit sector offset and an 8-bit sector count.
type locationEntry struct {
	SectorOffset uint32
	SectorCount  uint8
}

func (e locationEntry) isEmpty() bool { return e.SectorOffset == 0 && e.SectorCount == 0 }

func encodeLocationEntry(e locationEntry) [4]byte {
	return [4]byte{
		byte(e.SectorOffset >> 16),
		byte(e.SectorOffset >> 8),
		byte(e.SectorOffset),
		e.SectorCount,
	}
}

func decodeLocationEntry(b [4]byte) locationEntry {
	return locationEntry{
		SectorOffset: uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]),
		SectorCount:  b[3],
	}
}

// chunkIndex returns the location-table slot for chunk-local coordinates
// (x, z), each in [0, 32).
func chunkIndex(localX, localZ int) int { return localX + localZ*32 }

// sectorsNeeded returns how many whole 4096-byte sectors are required to
// hold totalBytes bytes. Callers pass the chunk's length-field value (the
// 1-byte compression id plus the compressed body) plus 4 for the length
// field itself.
func sectorsNeeded(totalBytes int) int {
	return (totalBytes + SectorSize - 1) / SectorSize
}

// paddingFor returns the number of zero-padding bytes needed after a chunk
// payload of the given on-wire length (the length value written into the
// chunk's own 4-byte length field) so that it fills an exact multiple of
// sectorCount sectors. This is the corrected formula: earlier
// implementations forgot to add back the 4 bytes of the length field itself
// when computing how much space remained, under-padding every chunk by 4
// bytes (REDESIGN FLAG).
func paddingFor(sectorCount int, length uint32) int {
	return sectorCount*SectorSize - (int(length) + 4)
}
