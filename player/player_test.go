package player

import (
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

func testBounds() Bounds {
	return Bounds{MinX: -1000, MaxX: 1000, MinY: -64, MaxY: 320, MinZ: -1000, MaxZ: 1000}
}

func TestApplyMoveRejectsNaN(t *testing.T) {
	p := NewPlayer(1, mgl64.Vec3{0, 64, 0})
	err := p.ApplyMove(mgl64.Vec3{math.NaN(), 64, 0}, 0, 0, true, testBounds())
	if err != ErrInvalidMovement {
		t.Fatalf("expected ErrInvalidMovement, got %v", err)
	}
}

func TestApplyMoveRejectsOutOfBounds(t *testing.T) {
	p := NewPlayer(1, mgl64.Vec3{0, 64, 0})
	err := p.ApplyMove(mgl64.Vec3{0, 10000, 0}, 0, 0, true, testBounds())
	if err != ErrInvalidMovement {
		t.Fatalf("expected ErrInvalidMovement, got %v", err)
	}
}

func TestApplyMoveIgnoredDuringTeleport(t *testing.T) {
	p := NewPlayer(1, mgl64.Vec3{0, 64, 0})
	p.Teleport(mgl64.Vec3{100, 64, 100}, 1)
	if err := p.ApplyMove(mgl64.Vec3{5, 64, 5}, 0, 0, true, testBounds()); err != nil {
		t.Fatalf("apply move: %v", err)
	}
	if p.Position != (mgl64.Vec3{100, 64, 100}) {
		t.Fatalf("expected position to stay at teleport target, got %v", p.Position)
	}
}

func TestConfirmTeleportClearsFlag(t *testing.T) {
	p := NewPlayer(1, mgl64.Vec3{0, 64, 0})
	p.Teleport(mgl64.Vec3{1, 1, 1}, 7)
	if p.ConfirmTeleport(6) {
		t.Fatalf("expected wrong id to be rejected")
	}
	if !p.ConfirmTeleport(7) {
		t.Fatalf("expected matching id to be accepted")
	}
	if p.AwaitingTeleport {
		t.Fatalf("expected AwaitingTeleport cleared")
	}
}

func TestKeepAliveRoundTrip(t *testing.T) {
	p := NewPlayer(1, mgl64.Vec3{})
	now := time.Now()
	sent := false
	err := p.TickKeepAlive(now, 42, func(id int64) error { sent = true; return nil })
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if !sent {
		t.Fatalf("expected keep alive to be sent")
	}
	if err := p.HandleKeepAliveResponse(42); err != nil {
		t.Fatalf("handle response: %v", err)
	}
}

func TestKeepAliveTimeout(t *testing.T) {
	p := NewPlayer(1, mgl64.Vec3{})
	now := time.Now()
	if err := p.TickKeepAlive(now, 1, func(int64) error { return nil }); err != nil {
		t.Fatalf("tick: %v", err)
	}
	later := now.Add(20 * time.Second)
	if err := p.TickKeepAlive(later, 2, func(int64) error { return nil }); err != ErrKeepAliveTimeout {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestHandleDigInstaBreak(t *testing.T) {
	p := NewPlayer(1, mgl64.Vec3{})
	broke, err := p.HandleDig(DigStarted, 0, 0, 0, 1, func(uint32) float64 { return 0 })
	if err != nil {
		t.Fatalf("dig: %v", err)
	}
	if !broke {
		t.Fatalf("expected zero-hardness block to insta-break")
	}
}

func TestHandleDigFinishedMatchesStarted(t *testing.T) {
	p := NewPlayer(1, mgl64.Vec3{})
	if _, err := p.HandleDig(DigStarted, 1, 2, 3, 1, func(uint32) float64 { return 1.5 }); err != nil {
		t.Fatalf("start: %v", err)
	}
	broke, err := p.HandleDig(DigFinished, 1, 2, 3, 1, nil)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if !broke {
		t.Fatalf("expected finished dig to report broken")
	}
}

func TestHandleDigFinishedWrongBlockRejected(t *testing.T) {
	p := NewPlayer(1, mgl64.Vec3{})
	if _, err := p.HandleDig(DigStarted, 1, 2, 3, 1, func(uint32) float64 { return 1.5 }); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := p.HandleDig(DigFinished, 9, 9, 9, 1, nil); err == nil {
		t.Fatalf("expected error for mismatched finish target")
	}
}

func TestTickMiningReachesBroken(t *testing.T) {
	p := NewPlayer(1, mgl64.Vec3{})
	if _, err := p.HandleDig(DigStarted, 0, 0, 0, 1, func(uint32) float64 { return 0.05 }); err != nil {
		t.Fatalf("start: %v", err)
	}
	var broken bool
	for i := 0; i < 10 && !broken; i++ {
		_, broken = p.TickMining(0.05, MiningModifiers{ToolEfficiency: 1, OnGround: true})
	}
	if !broken {
		t.Fatalf("expected mining to reach broken within a second at 0.05s hardness")
	}
}

func TestTickMiningSlowerMidAirAndUnderwater(t *testing.T) {
	p := NewPlayer(1, mgl64.Vec3{})
	if _, err := p.HandleDig(DigStarted, 0, 0, 0, 1, func(uint32) float64 { return 1 }); err != nil {
		t.Fatalf("start: %v", err)
	}
	_, broken := p.TickMining(1, MiningModifiers{ToolEfficiency: 1, InWater: true})
	if broken {
		t.Fatalf("expected a single tick at 1/25 speed not to break a hardness-1 block")
	}
}

func TestTickMiningHasteSpeedsUpFatigueSlowsDown(t *testing.T) {
	fast := MiningModifiers{ToolEfficiency: 1, OnGround: true, HasteLevel: 2}
	slow := MiningModifiers{ToolEfficiency: 1, OnGround: true, FatigueLevel: 2}
	if fast.speedMultiplier() <= 1 {
		t.Fatalf("expected haste to raise the speed multiplier above 1, got %f", fast.speedMultiplier())
	}
	if slow.speedMultiplier() >= 1 {
		t.Fatalf("expected fatigue to lower the speed multiplier below 1, got %f", slow.speedMultiplier())
	}
}

func TestHandleDigCreativeAlwaysInstaBreaks(t *testing.T) {
	p := NewPlayer(1, mgl64.Vec3{})
	p.GameMode = Creative
	broke, err := p.HandleDig(DigStarted, 0, 0, 0, 1, func(uint32) float64 { return 50 })
	if err != nil {
		t.Fatalf("dig: %v", err)
	}
	if !broke {
		t.Fatalf("expected creative mode to insta-break a high-hardness block")
	}
}

func TestPlacementRejectedOutOfReach(t *testing.T) {
	p := NewPlayer(1, mgl64.Vec3{0, 64, 0})
	shapes := func(uint32) []AABB {
		return []AABB{{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 1, 1}}}
	}
	_, _, _, err := ValidatePlacement(p, 100, 64, 100, 0, FaceUp, 1, shapes, nil, testBounds())
	if err != ErrPlacementRejected {
		t.Fatalf("expected rejection for out-of-reach placement, got %v", err)
	}
}

func TestPlacementRejectedWhenIntersectingPlayer(t *testing.T) {
	p := NewPlayer(1, mgl64.Vec3{0, 64, 0})
	shapes := func(uint32) []AABB {
		return []AABB{{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 1, 1}}}
	}
	// placing directly on top of the targeted block at the player's feet
	// would overlap the player's own hitbox.
	_, _, _, err := ValidatePlacement(p, 0, 63, 0, 0, FaceUp, 1, shapes, nil, testBounds())
	if err != ErrPlacementRejected {
		t.Fatalf("expected rejection for self-intersecting placement, got %v", err)
	}
}

func TestPlacementAcceptedWhenClear(t *testing.T) {
	p := NewPlayer(1, mgl64.Vec3{0, 64, 0})
	shapes := func(uint32) []AABB {
		return []AABB{{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 1, 1}}}
	}
	x, y, z, err := ValidatePlacement(p, 2, 64, 2, 0, FaceUp, 1, shapes, nil, testBounds())
	if err != nil {
		t.Fatalf("expected placement to be accepted, got %v", err)
	}
	if x != 2 || y != 65 || z != 2 {
		t.Fatalf("expected placement above the targeted block at (2,65,2), got (%d,%d,%d)", x, y, z)
	}
}

func TestPlacementRejectedAboveWorldHeight(t *testing.T) {
	p := NewPlayer(1, mgl64.Vec3{0, 319, 0})
	shapes := func(uint32) []AABB {
		return []AABB{{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 1, 1}}}
	}
	// target is the block at y=320 (the world's top block); placing on its
	// upward face would put the new block at y=321, past testBounds().MaxY.
	_, _, _, err := ValidatePlacement(p, 0, 320, 0, 0, FaceUp, 1, shapes, nil, testBounds())
	if err != ErrPlacementRejected {
		t.Fatalf("expected rejection for a placement above the world's build limit, got %v", err)
	}
}

func TestPlacementIntoReplaceableBlockTargetsClickedCell(t *testing.T) {
	p := NewPlayer(1, mgl64.Vec3{0, 62, 0})
	shapes := func(uint32) []AABB {
		return []AABB{{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 1, 1}}}
	}
	waterState := uint32(9)
	replaceable := func(state uint32) bool { return state == waterState }
	x, y, z, err := ValidatePlacement(p, 2, 64, 2, waterState, FaceUp, 1, shapes, replaceable, testBounds())
	if err != nil {
		t.Fatalf("expected placement into a replaceable block to be accepted, got %v", err)
	}
	if x != 2 || y != 64 || z != 2 {
		t.Fatalf("expected placement at the clicked cell itself (2,64,2), got (%d,%d,%d)", x, y, z)
	}
}
