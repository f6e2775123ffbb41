// Package player implements the per-player tick loop: keep-alive,
// movement validation, mining progress, and block placement, driven off
// Play-state packets handed in by the session package.
package player

import "github.com/go-gl/mathgl/mgl64"

// Bounds holds the world's configured coordinate limits, used to reject
// movement packets that would put a player outside the playable volume.
type Bounds struct {
	MinX, MaxX float64
	MinY, MaxY float64
	MinZ, MaxZ float64
}

// GameMode mirrors the protocol's four game modes. It gates the Creative
// instant-break in HandleDig (ValidatePlacement does not consult it),
// independently of inventory.GameMode, which gates
// the equivalent container-click behavior; callers that own both a Player
// and an inventory.Engine for the same client are responsible for keeping
// the two in sync, since neither package imports the other.
type GameMode int

const (
	Survival GameMode = iota
	Creative
	Adventure
	Spectator
)

// Player is one connected player's tick-relevant state.
type Player struct {
	SessionID uint64
	Position  mgl64.Vec3
	Yaw, Pitch float32
	OnGround  bool
	GameMode  GameMode

	TeleportID      int32
	AwaitingTeleport bool

	keepAlive keepAliveState
	mining    *miningState
}

// NewPlayer returns a Player at the given spawn position.
func NewPlayer(sessionID uint64, spawn mgl64.Vec3) *Player {
	return &Player{SessionID: sessionID, Position: spawn}
}

// ReachDistance is the maximum distance (in blocks) a player may interact
// with a block from, matching survival-mode reach.
const ReachDistance = 6.0

// WithinReach reports whether target is within ReachDistance of the
// player's eye position (approximated as Position + 1.62 in Y, the
// standing eye height).
func (p *Player) WithinReach(target mgl64.Vec3) bool {
	eye := p.Position.Add(mgl64.Vec3{0, 1.62, 0})
	return eye.Sub(target).Len() <= ReachDistance
}
