package chunk

import "testing"

func TestPaletteEncodeDecodeRoundTrip(t *testing.T) {
	indices := []int{0, 1, 2, 3, 4, 5, 15, 0, 7, 8, 9, 10, 11, 12, 13, 14, 15, 1}
	bits := BitsPerEntry(16, 4)
	packed := PaletteEncodeIndices(indices, bits)
	got := PaletteDecodeIndices(packed, bits, len(indices))
	for i := range indices {
		if got[i] != indices[i] {
			t.Fatalf("index %d: got %d want %d", i, got[i], indices[i])
		}
	}
}

func TestPaletteDoesNotCrossLongBoundary(t *testing.T) {
	// 5 bits per entry: 12 entries fit per long (60 bits used, 4 bits padding).
	// A tightly-packed scheme would let entry 12 start at bit 60 and spill into
	// the next long; this layout must instead start entry 12 in a fresh long.
	bits := 5
	indices := make([]int, 13)
	for i := range indices {
		indices[i] = i % 32
	}
	packed := PaletteEncodeIndices(indices, bits)
	if len(packed) != 2 {
		t.Fatalf("expected 2 longs for 13 entries at 5 bits/entry, got %d", len(packed))
	}
	got := PaletteDecodeIndices(packed, bits, len(indices))
	for i := range indices {
		if got[i] != indices[i] {
			t.Fatalf("index %d: got %d want %d", i, got[i], indices[i])
		}
	}
}

func TestPaletteIDOfDeduplicates(t *testing.T) {
	p := NewPalette(4)
	a := p.IDOf(100)
	b := p.IDOf(200)
	c := p.IDOf(100)
	if a != c {
		t.Fatalf("expected repeated state to reuse id: %d != %d", a, c)
	}
	if a == b {
		t.Fatalf("expected distinct states to get distinct ids")
	}
	if p.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", p.Len())
	}
}
