package player

import (
	"fmt"
	"math"
)

// DigStatus names the digging-action packet's status field.
type DigStatus int

const (
	DigStarted DigStatus = iota
	DigCancelled
	DigFinished
)

// miningState tracks one in-progress block-break attempt.
type miningState struct {
	x, y, z  int32
	progress float64 // accumulated [0,1]
	active   bool
}

// BlockHardnessLookup resolves a block state's hardness (in the vanilla
// "seconds to break by hand" unit); a negative value means unbreakable.
type BlockHardnessLookup func(state uint32) float64

// HandleDig advances the block-break state machine for one digging-action
// packet, returning true when the block should actually be broken: on
// Started when the block's hardness is zero or the player is in Creative,
// and on Finished when its position matches the tracked Started position.
// Finished does not check the progress accumulated by TickMining.
func (p *Player) HandleDig(status DigStatus, x, y, z int32, state uint32, hardness BlockHardnessLookup) (bool, error) {
	switch status {
	case DigStarted:
		h := hardness(state)
		if h < 0 {
			p.mining = nil
			return false, nil // unbreakable
		}
		if p.GameMode == Creative {
			p.mining = nil
			return true, nil // creative mode always insta-breaks breakable blocks
		}
		p.mining = &miningState{x: x, y: y, z: z, active: true}
		if h == 0 {
			p.mining = nil
			return true, nil // insta-break
		}
		return false, nil

	case DigCancelled:
		p.mining = nil
		return false, nil

	case DigFinished:
		if p.mining == nil || !p.mining.active || p.mining.x != x || p.mining.y != y || p.mining.z != z {
			return false, fmt.Errorf("player: finished dig for untracked block (%d,%d,%d)", x, y, z)
		}
		p.mining = nil
		return true, nil

	default:
		return false, fmt.Errorf("player: unknown dig status %d", status)
	}
}

// MiningModifiers carries the per-tick conditions that scale a player's
// raw mining speed, mirroring vanilla's break-speed formula: held tool
// efficiency, active Haste/Mining Fatigue levels, and the fivefold
// penalties for mining underwater or mid-air.
type MiningModifiers struct {
	ToolEfficiency float64 // multiplier from the held tool/enchantments; 1 for bare hands or a non-matching tool
	HasteLevel     int     // 0 if the effect is not active
	FatigueLevel   int     // 0 if the effect is not active
	InWater        bool    // submerged without an Aqua Affinity helmet
	OnGround       bool
}

// speedMultiplier folds the modifiers into the single multiplier TickMining
// applies to the block's base breaking speed.
func (m MiningModifiers) speedMultiplier() float64 {
	speed := m.ToolEfficiency
	if speed <= 0 {
		speed = 1
	}
	if m.HasteLevel > 0 {
		speed *= 1 + 0.2*float64(m.HasteLevel)
	}
	if m.FatigueLevel > 0 {
		speed *= math.Pow(0.3, float64(m.FatigueLevel))
	}
	if m.InWater {
		speed /= 5
	}
	if !m.OnGround {
		speed /= 5
	}
	return speed
}

// TickMining advances per-tick mining progress by speed/(hardness*20) (the
// per-tick mining speed against a block's hardness at 20 ticks/second,
// scaled by mods), reporting the current destroy stage in [0,9] for
// broadcast, and whether the block is now fully broken.
func (p *Player) TickMining(hardness float64, mods MiningModifiers) (stage int, broken bool) {
	if p.mining == nil || !p.mining.active || hardness <= 0 {
		return -1, false
	}
	p.mining.progress += mods.speedMultiplier() / (hardness * 20)
	if p.mining.progress >= 1 {
		broken = true
		p.mining = nil
		return 9, true
	}
	stage = int(p.mining.progress * 10)
	if stage > 9 {
		stage = 9
	}
	return stage, false
}
