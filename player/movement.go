package player

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// movementFixedPointScale is the wire protocol's delta-movement precision:
// positions are sent as absolute doubles, but relative-move packets encode
// deltas at 1/4096 of a block.
const movementFixedPointScale = 4096.0

// ErrInvalidMovement is returned when a movement packet fails basic sanity
// checks (NaN/Inf coordinates or out-of-bounds position) and the connection
// should be terminated rather than applied.
var ErrInvalidMovement = fmt.Errorf("player: invalid movement")

// ValidateMove checks a proposed new position against NaN/Inf and the
// world's configured bounds. It does not reject implausible speed; that is
// a server-policy decision left to the caller (anti-cheat heuristics beyond
// basic sanity checks are out of scope here).
func ValidateMove(pos mgl64.Vec3, bounds Bounds) error {
	for _, v := range pos {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrInvalidMovement
		}
	}
	if pos.X() < bounds.MinX || pos.X() > bounds.MaxX ||
		pos.Y() < bounds.MinY || pos.Y() > bounds.MaxY ||
		pos.Z() < bounds.MinZ || pos.Z() > bounds.MaxZ {
		return ErrInvalidMovement
	}
	return nil
}

// ApplyMove validates and applies a new position/rotation to the player. If
// the player has an outstanding teleport confirmation, incoming movement is
// ignored until TeleportID is acknowledged, so a stale client packet can
// never overwrite a server-issued teleport.
func (p *Player) ApplyMove(pos mgl64.Vec3, yaw, pitch float32, onGround bool, bounds Bounds) error {
	if p.AwaitingTeleport {
		return nil
	}
	if err := ValidateMove(pos, bounds); err != nil {
		return err
	}
	p.Position = pos
	p.Yaw = yaw
	p.Pitch = pitch
	p.OnGround = onGround
	return nil
}

// Teleport moves the player to pos, records nextID as the outstanding
// teleport id, and marks the player as awaiting its confirmation; ApplyMove
// is a no-op until ConfirmTeleport matches this id. The id is stored as
// given; Teleport does not check that it exceeds the previous one.
func (p *Player) Teleport(pos mgl64.Vec3, nextID int32) {
	p.Position = pos
	p.TeleportID = nextID
	p.AwaitingTeleport = true
}

// ConfirmTeleport clears AwaitingTeleport if id matches the outstanding
// teleport id, and reports whether the confirmation was accepted.
func (p *Player) ConfirmTeleport(id int32) bool {
	if !p.AwaitingTeleport || id != p.TeleportID {
		return false
	}
	p.AwaitingTeleport = false
	return true
}

// PackRelativeMove encodes the delta from `from` to `to` at the protocol's
// 1/4096-block fixed-point precision.
func PackRelativeMove(from, to mgl64.Vec3) (dx, dy, dz int16) {
	d := to.Sub(from).Mul(movementFixedPointScale)
	return int16(d.X()), int16(d.Y()), int16(d.Z())
}
