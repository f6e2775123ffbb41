package player

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Face names one of the six directions a block-place/dig packet can
// reference.
type Face int

const (
	FaceDown Face = iota
	FaceUp
	FaceNorth
	FaceSouth
	FaceWest
	FaceEast
)

var faceOffsets = map[Face][3]int32{
	FaceDown:  {0, -1, 0},
	FaceUp:    {0, 1, 0},
	FaceNorth: {0, 0, -1},
	FaceSouth: {0, 0, 1},
	FaceWest:  {-1, 0, 0},
	FaceEast:  {1, 0, 0},
}

// AABB is an axis-aligned bounding box in world coordinates.
type AABB struct {
	Min, Max mgl64.Vec3
}

// Intersects reports whether a and b overlap on all three axes.
func (a AABB) Intersects(b AABB) bool {
	return a.Min.X() < b.Max.X() && a.Max.X() > b.Min.X() &&
		a.Min.Y() < b.Max.Y() && a.Max.Y() > b.Min.Y() &&
		a.Min.Z() < b.Max.Z() && a.Max.Z() > b.Min.Z()
}

// PlayerAABB returns the player's collision box for the given feet
// position, using the standard survival hitbox (0.6 wide, 1.8 tall).
func PlayerAABB(feet mgl64.Vec3) AABB {
	return AABB{
		Min: mgl64.Vec3{feet.X() - 0.3, feet.Y(), feet.Z() - 0.3},
		Max: mgl64.Vec3{feet.X() + 0.3, feet.Y() + 1.8, feet.Z() + 0.3},
	}
}

// ErrPlacementRejected is returned by ValidatePlacement when a placement
// attempt fails a server-side check and must be silently ignored (with the
// client resynced), rather than applied.
var ErrPlacementRejected = fmt.Errorf("player: block placement rejected")

// BlockShapeLookup resolves a block state's collision AABBs, in
// block-local coordinates ([0,1] per axis), for a full-cube block this is a
// single box spanning the whole cell.
type BlockShapeLookup func(state uint32) []AABB

// ReplaceableLookup reports whether the block currently occupying a state
// can be placed into directly instead of requiring the adjacent, empty
// cell a fresh placement would use — water, tall grass, and snow layers all
// behave this way, as does placing a second slab into a single slab to form
// the double-slab state.
type ReplaceableLookup func(state uint32) bool

// ValidatePlacement checks reach, the world's vertical bounds, and that the
// placed block's collision shape would not intersect the placing player's
// own hitbox. It returns the world coordinates the new state should
// actually be written to, which is the target cell itself when replaceable
// is true for targetState (water, grass, a mergeable slab), or the
// face-adjacent cell otherwise. It does not check what block occupies the
// targeted cell beyond the replaceable lookup.
func ValidatePlacement(p *Player, targetX, targetY, targetZ int32, targetState uint32, face Face, newState uint32, shapes BlockShapeLookup, replaceable ReplaceableLookup, bounds Bounds) (placeX, placeY, placeZ int32, err error) {
	target := mgl64.Vec3{float64(targetX) + 0.5, float64(targetY) + 0.5, float64(targetZ) + 0.5}
	if !p.WithinReach(target) {
		return 0, 0, 0, ErrPlacementRejected
	}

	if replaceable != nil && replaceable(targetState) {
		placeX, placeY, placeZ = targetX, targetY, targetZ
	} else {
		off := faceOffsets[face]
		placeX, placeY, placeZ = targetX+off[0], targetY+off[1], targetZ+off[2]
	}

	if float64(placeY) < bounds.MinY || float64(placeY) > bounds.MaxY {
		return 0, 0, 0, ErrPlacementRejected
	}

	playerBox := PlayerAABB(p.Position)
	for _, local := range shapes(newState) {
		world := AABB{
			Min: local.Min.Add(mgl64.Vec3{float64(placeX), float64(placeY), float64(placeZ)}),
			Max: local.Max.Add(mgl64.Vec3{float64(placeX), float64(placeY), float64(placeZ)}),
		}
		if world.Intersects(playerBox) {
			return 0, 0, 0, ErrPlacementRejected
		}
	}
	return placeX, placeY, placeZ, nil
}
