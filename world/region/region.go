// Package region implements the Anvil (.mca) region file format: an 8 KiB
// header of location and timestamp tables followed by 4096-byte-aligned
// chunk payloads, each individually compressed.
package region

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
)

// ErrChunkNotFound is returned by Read when the requested chunk slot is
// empty.
var ErrChunkNotFound = fmt.Errorf("region: chunk not present")

// File is one open .mca region file, covering a 32x32 grid of chunks. All
// access is serialized by mu, matching the per-region mutex the cache layer
// above this package relies on for I/O ordering.
type File struct {
	mu   sync.Mutex
	path string
	f    *os.File

	locations  [ChunksPerRegion]locationEntry
	timestamps [ChunksPerRegion]uint32

	compression      CompressionID
	compressionLevel int
	writeInPlace     bool
}

// Options configures how a File compresses and rewrites chunk payloads.
type Options struct {
	Compression      CompressionID
	CompressionLevel int
	// WriteInPlace enables the sector-preserving/slot-swap overwrite
	// strategy; when false every overwrite of an existing chunk falls back
	// to a full rewrite (a chunk written for the first time is appended).
	WriteInPlace bool
}

// Open opens (creating if necessary) the region file at path and reads its
// header tables.
func Open(path string, opts Options) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("region: open %s: %w", path, err)
	}
	rf := &File{
		path:             path,
		f:                f,
		compression:      opts.Compression,
		compressionLevel: opts.CompressionLevel,
		writeInPlace:     opts.WriteInPlace,
	}
	if err := rf.readHeader(); err != nil {
		f.Close()
		return nil, err
	}
	return rf, nil
}

func (r *File) readHeader() error {
	info, err := r.f.Stat()
	if err != nil {
		return err
	}
	if info.Size() < HeaderSectors*SectorSize {
		return r.writeEmptyHeader()
	}

	header := make([]byte, HeaderSectors*SectorSize)
	if _, err := r.f.ReadAt(header, 0); err != nil && err != io.EOF {
		return fmt.Errorf("region: read header: %w", err)
	}
	for i := 0; i < ChunksPerRegion; i++ {
		var b [4]byte
		copy(b[:], header[i*4:i*4+4])
		r.locations[i] = decodeLocationEntry(b)
	}
	for i := 0; i < ChunksPerRegion; i++ {
		off := SectorSize + i*4
		r.timestamps[i] = binary.BigEndian.Uint32(header[off : off+4])
	}
	return nil
}

func (r *File) writeEmptyHeader() error {
	header := make([]byte, HeaderSectors*SectorSize)
	if _, err := r.f.WriteAt(header, 0); err != nil {
		return fmt.Errorf("region: init header: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (r *File) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.f.Close()
}

// Has reports whether a chunk occupies the slot at local coordinates
// (x, z).
func (r *File) Has(localX, localZ int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.locations[chunkIndex(localX, localZ)].isEmpty()
}

// Read returns the raw decompressed payload for the chunk at local
// coordinates (x, z).
func (r *File) Read(localX, localZ int) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	loc := r.locations[chunkIndex(localX, localZ)]
	if loc.isEmpty() {
		return nil, ErrChunkNotFound
	}

	offset := int64(loc.SectorOffset) * SectorSize
	lenBuf := make([]byte, 4)
	if _, err := r.f.ReadAt(lenBuf, offset); err != nil {
		return nil, fmt.Errorf("region: read chunk length: %w", err)
	}
	length := binary.BigEndian.Uint32(lenBuf)
	if length == 0 {
		return nil, ErrChunkNotFound
	}

	body := make([]byte, length)
	if _, err := r.f.ReadAt(body, offset+4); err != nil {
		return nil, fmt.Errorf("region: read chunk body: %w", err)
	}
	compID := CompressionID(body[0])
	data, err := Decompress(compID, body[1:])
	if err != nil {
		return nil, fmt.Errorf("region: decompress chunk (%d,%d): %w", localX, localZ, err)
	}
	return data, nil
}

// Write stores raw (decompressed) chunk data at local coordinates (x, z),
// compressing it with the file's configured scheme and recording now as
// its timestamp.
func (r *File) Write(localX, localZ int, data []byte, now uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	compressed, err := Compress(r.compression, r.compressionLevel, data)
	if err != nil {
		return fmt.Errorf("region: compress chunk (%d,%d): %w", localX, localZ, err)
	}

	payload := make([]byte, 0, len(compressed)+1)
	payload = append(payload, byte(r.compression))
	payload = append(payload, compressed...)
	length := uint32(len(payload))
	sectorsNeededCount := sectorsNeeded(int(length) + 4)
	if sectorsNeededCount > maxSectorCount {
		return fmt.Errorf("region: chunk (%d,%d) needs %d sectors, exceeds legacy 1-byte field limit of %d",
			localX, localZ, sectorsNeededCount, maxSectorCount)
	}

	idx := chunkIndex(localX, localZ)
	existing := r.locations[idx]

	if r.writeInPlace && !existing.isEmpty() && int(existing.SectorCount) == sectorsNeededCount {
		if err := r.writeAt(existing.SectorOffset, payload, length); err != nil {
			return err
		}
		r.timestamps[idx] = now
		return r.flushHeader()
	}

	if r.writeInPlace && !existing.isEmpty() {
		if ok, err := r.swapInPlace(idx, payload, length, sectorsNeededCount, now); err != nil {
			return err
		} else if ok {
			return nil
		}
		return r.rewriteAll(idx, payload, length, sectorsNeededCount, now)
	}

	if existing.isEmpty() {
		offset, err := r.appendSectors(sectorsNeededCount)
		if err != nil {
			return err
		}
		if err := r.writeAt(offset, payload, length); err != nil {
			return err
		}
		r.locations[idx] = locationEntry{SectorOffset: offset, SectorCount: uint8(sectorsNeededCount)}
		r.timestamps[idx] = now
		return r.flushHeader()
	}

	return r.rewriteAll(idx, payload, length, sectorsNeededCount, now)
}

// writeAt writes a length-prefixed payload at the given sector offset,
// zero-padding the remainder of its allocated sectors.
func (r *File) writeAt(sectorOffset uint32, payload []byte, length uint32) error {
	offset := int64(sectorOffset) * SectorSize
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], length)
	if _, err := r.f.WriteAt(lenBuf[:], offset); err != nil {
		return fmt.Errorf("region: write chunk length: %w", err)
	}
	if _, err := r.f.WriteAt(payload, offset+4); err != nil {
		return fmt.Errorf("region: write chunk body: %w", err)
	}
	sectors := sectorsNeeded(int(length) + 4)
	pad := paddingFor(sectors, length)
	if pad > 0 {
		zeros := make([]byte, pad)
		if _, err := r.f.WriteAt(zeros, offset+4+int64(length)); err != nil {
			return fmt.Errorf("region: pad chunk: %w", err)
		}
	}
	return nil
}

// appendSectors grows the file by count sectors and returns the sector
// offset of the new space.
func (r *File) appendSectors(count int) (uint32, error) {
	info, err := r.f.Stat()
	if err != nil {
		return 0, err
	}
	sizeSectors := uint32((info.Size() + SectorSize - 1) / SectorSize)
	if sizeSectors < HeaderSectors {
		sizeSectors = HeaderSectors
	}
	if err := r.f.Truncate(int64(sizeSectors+uint32(count)) * SectorSize); err != nil {
		return 0, fmt.Errorf("region: grow file: %w", err)
	}
	return sizeSectors, nil
}

// swapInPlace resizes the chunk at idx without a full rewrite by walking the
// most-recently-allocated chunk slots (bounded to the last 64 by sector
// offset, nearest EOF first) for one whose sector count matches idx's
// *current* (pre-resize) sector count. That candidate is relocated into the
// slot idx is vacating (an exact fit, since it matches idx's old size), the
// resized payload takes the candidate's old slot, and every slot that sat
// between the candidate and EOF is shifted by the sector-count delta between
// the resized chunk and the candidate it displaced. This mirrors the
// relocate-and-shift strategy of _examples/original_source/pumpkin-world's
// AnvilChunkFile::update_chunk, rather than overwriting the candidate's
// bytes outright (which would silently corrupt whatever chunk used to live
// there). ok is false if no candidate was found within the search bound, or
// if the walk reaches idx itself before any other slot of that size; the
// caller then falls back to a full rewrite.
func (r *File) swapInPlace(idx int, newPayload []byte, newLength uint32, newSectors int, now uint32) (ok bool, err error) {
	existing := r.locations[idx]
	oldSectorCount := int(existing.SectorCount)

	type slot struct {
		idx    int
		offset uint32
		count  int
	}
	var present []slot
	for i, loc := range r.locations {
		if loc.isEmpty() {
			continue
		}
		present = append(present, slot{idx: i, offset: loc.SectorOffset, count: int(loc.SectorCount)})
	}
	sort.Slice(present, func(a, b int) bool { return present[a].offset > present[b].offset })
	if len(present) > 64 {
		present = present[:64]
	}

	var toShift []slot
	var swap slot
	found := false
	for _, s := range present {
		toShift = append(toShift, s)
		if s.count == oldSectorCount {
			swap = s
			found = true
			break
		}
	}
	if !found || swap.idx == idx {
		return false, nil
	}
	toShift = toShift[:len(toShift)-1] // drop swap itself, it's handled separately

	// Read every slot we're about to move before writing anything, so the
	// order writes happen in can never clobber a read we still need.
	swapBytes, err := r.readSlot(swap.offset)
	if err != nil {
		return false, fmt.Errorf("region: swap: read candidate slot %d: %w", swap.idx, err)
	}
	shiftBytes := make([][]byte, len(toShift))
	for i, s := range toShift {
		b, err := r.readSlot(s.offset)
		if err != nil {
			return false, fmt.Errorf("region: swap: read shifted slot %d: %w", s.idx, err)
		}
		shiftBytes[i] = b
	}

	delta := int64(newSectors) - int64(swap.count)
	needSectors := int64(swap.offset) + int64(newSectors)
	for _, s := range toShift {
		if end := int64(s.offset) + delta + int64(s.count); end > needSectors {
			needSectors = end
		}
	}
	if err := r.ensureSectorCapacity(uint32(needSectors)); err != nil {
		return false, err
	}

	if err := r.writeAt(swap.offset, newPayload, newLength); err != nil {
		return false, fmt.Errorf("region: swap: write resized chunk: %w", err)
	}
	if err := r.writeRawSlot(existing.SectorOffset, swapBytes); err != nil {
		return false, fmt.Errorf("region: swap: relocate candidate: %w", err)
	}
	for i, s := range toShift {
		newOffset := uint32(int64(s.offset) + delta)
		if err := r.writeRawSlot(newOffset, shiftBytes[i]); err != nil {
			return false, fmt.Errorf("region: swap: relocate shifted slot %d: %w", s.idx, err)
		}
	}

	r.locations[idx] = locationEntry{SectorOffset: swap.offset, SectorCount: uint8(newSectors)}
	r.locations[swap.idx] = locationEntry{SectorOffset: existing.SectorOffset, SectorCount: existing.SectorCount}
	for _, s := range toShift {
		loc := r.locations[s.idx]
		loc.SectorOffset = uint32(int64(s.offset) + delta)
		r.locations[s.idx] = loc
	}
	r.timestamps[idx] = now
	if err := r.flushHeader(); err != nil {
		return false, err
	}
	return true, nil
}

// readSlot reads the raw length-prefixed payload (4-byte big-endian length
// plus that many bytes of compressed body) starting at sectorOffset.
func (r *File) readSlot(sectorOffset uint32) ([]byte, error) {
	offset := int64(sectorOffset) * SectorSize
	lenBuf := make([]byte, 4)
	if _, err := r.f.ReadAt(lenBuf, offset); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(lenBuf)
	raw := make([]byte, 4+length)
	copy(raw, lenBuf)
	if _, err := r.f.ReadAt(raw[4:], offset+4); err != nil {
		return nil, err
	}
	return raw, nil
}

// writeRawSlot writes a length-prefixed payload previously read by readSlot
// to sectorOffset, zero-padding the rest of its sectors.
func (r *File) writeRawSlot(sectorOffset uint32, raw []byte) error {
	length := binary.BigEndian.Uint32(raw[:4])
	return r.writeAt(sectorOffset, raw[4:], length)
}

// ensureSectorCapacity grows the file so it is at least sectors sectors
// long, needed before shifting chunks toward EOF to make room for a grown
// chunk.
func (r *File) ensureSectorCapacity(sectors uint32) error {
	info, err := r.f.Stat()
	if err != nil {
		return err
	}
	have := uint32((info.Size() + SectorSize - 1) / SectorSize)
	if have >= sectors {
		return nil
	}
	if err := r.f.Truncate(int64(sectors) * SectorSize); err != nil {
		return fmt.Errorf("region: grow file: %w", err)
	}
	return nil
}

// rewriteAll compacts the entire region file, reassigning sector offsets to
// every chunk (including the one being written), falling back to this
// whenever an in-place strategy cannot place the resized chunk.
func (r *File) rewriteAll(writeIdx int, newPayload []byte, newLength uint32, newSectors int, now uint32) error {
	type existingChunk struct {
		idx     int
		payload []byte
		length  uint32
	}
	var chunks []existingChunk
	for i, loc := range r.locations {
		if i == writeIdx || loc.isEmpty() {
			continue
		}
		offset := int64(loc.SectorOffset) * SectorSize
		lenBuf := make([]byte, 4)
		if _, err := r.f.ReadAt(lenBuf, offset); err != nil {
			return fmt.Errorf("region: rewrite: read length for slot %d: %w", i, err)
		}
		length := binary.BigEndian.Uint32(lenBuf)
		body := make([]byte, length)
		if _, err := r.f.ReadAt(body, offset+4); err != nil {
			return fmt.Errorf("region: rewrite: read body for slot %d: %w", i, err)
		}
		chunks = append(chunks, existingChunk{idx: i, payload: body, length: length})
	}

	var buf bytes.Buffer
	buf.Write(make([]byte, HeaderSectors*SectorSize))

	var newLocations [ChunksPerRegion]locationEntry
	cursor := uint32(HeaderSectors)

	writeOne := func(idx int, payload []byte, length uint32) {
		sectors := sectorsNeeded(int(length) + 4)
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], length)
		buf.Write(lenBuf[:])
		buf.Write(payload)
		pad := paddingFor(sectors, length)
		if pad > 0 {
			buf.Write(make([]byte, pad))
		}
		newLocations[idx] = locationEntry{SectorOffset: cursor, SectorCount: uint8(sectors)}
		cursor += uint32(sectors)
	}

	for _, c := range chunks {
		writeOne(c.idx, c.payload, c.length)
	}
	writeOne(writeIdx, newPayload, newLength)
	_ = newSectors

	out := buf.Bytes()
	for i := 0; i < ChunksPerRegion; i++ {
		b := encodeLocationEntry(newLocations[i])
		copy(out[i*4:i*4+4], b[:])
	}
	ts := r.timestamps
	ts[writeIdx] = now
	for i := 0; i < ChunksPerRegion; i++ {
		off := SectorSize + i*4
		binary.BigEndian.PutUint32(out[off:off+4], ts[i])
	}

	tmpPath := r.path + ".tmp"
	tmp, err := os.OpenFile(tmpPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("region: rewrite: create temp file: %w", err)
	}
	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("region: rewrite: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("region: rewrite: close temp file: %w", err)
	}
	if err := r.f.Close(); err != nil {
		return fmt.Errorf("region: rewrite: close original: %w", err)
	}
	if err := os.Rename(tmpPath, r.path); err != nil {
		return fmt.Errorf("region: rewrite: rename temp file: %w", err)
	}
	f, err := os.OpenFile(r.path, os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("region: rewrite: reopen: %w", err)
	}
	r.f = f
	r.locations = newLocations
	r.timestamps = ts
	return nil
}

func (r *File) flushHeader() error {
	header := make([]byte, HeaderSectors*SectorSize)
	for i := 0; i < ChunksPerRegion; i++ {
		b := encodeLocationEntry(r.locations[i])
		copy(header[i*4:i*4+4], b[:])
	}
	for i := 0; i < ChunksPerRegion; i++ {
		off := SectorSize + i*4
		binary.BigEndian.PutUint32(header[off:off+4], r.timestamps[i])
	}
	if _, err := r.f.WriteAt(header, 0); err != nil {
		return fmt.Errorf("region: flush header: %w", err)
	}
	return nil
}

// RegionCoords converts absolute chunk coordinates to the (region, local)
// coordinates used to locate a file and a slot within it.
func RegionCoords(chunkX, chunkZ int32) (regionX, regionZ int32, localX, localZ int) {
	regionX = floorDiv(chunkX, 32)
	regionZ = floorDiv(chunkZ, 32)
	localX = int(chunkX - regionX*32)
	localZ = int(chunkZ - regionZ*32)
	return
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
