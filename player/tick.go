package player

import (
	"fmt"
	"time"
)

// TickInterval is the nominal server tick duration (20 ticks/second).
const TickInterval = 50 * time.Millisecond

const (
	keepAliveInterval = 15 * time.Second
	keepAliveTimeout  = 15 * time.Second
)

// keepAliveState tracks the outstanding keep-alive challenge for one
// player.
type keepAliveState struct {
	lastSent     time.Time
	pendingID    int64
	awaitingPong bool
}

// ErrKeepAliveTimeout is returned by TickKeepAlive when a player has not responded
// to a keep-alive within keepAliveTimeout.
var ErrKeepAliveTimeout = fmt.Errorf("player: keep-alive timed out")

// KeepAliveSender issues a Keep Alive packet carrying id.
type KeepAliveSender func(id int64) error

// TickKeepAlive advances the keep-alive state machine: if the interval has
// elapsed since the last ping with no pending challenge, sends a new one;
// if a challenge has been outstanding longer than the timeout, returns
// ErrKeepAliveTimeout so the caller can disconnect the player.
func (p *Player) TickKeepAlive(now time.Time, nextID int64, send KeepAliveSender) error {
	if p.keepAlive.awaitingPong {
		if now.Sub(p.keepAlive.lastSent) > keepAliveTimeout {
			return ErrKeepAliveTimeout
		}
		return nil
	}
	if now.Sub(p.keepAlive.lastSent) < keepAliveInterval {
		return nil
	}
	if err := send(nextID); err != nil {
		return fmt.Errorf("player: send keep alive: %w", err)
	}
	p.keepAlive.lastSent = now
	p.keepAlive.pendingID = nextID
	p.keepAlive.awaitingPong = true
	return nil
}

// HandleKeepAliveResponse clears the pending keep-alive challenge if id
// matches what was last sent.
func (p *Player) HandleKeepAliveResponse(id int64) error {
	if !p.keepAlive.awaitingPong || id != p.keepAlive.pendingID {
		return fmt.Errorf("player: unexpected keep-alive response %d", id)
	}
	p.keepAlive.awaitingPong = false
	return nil
}
