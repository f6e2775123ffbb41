package session

import "fmt"

// handleConfiguration processes the Configuration-state packets. Registry
// data, resource packs, and feature flags are pushed by the caller before
// this state is entered; here we only need to recognize the client's
// Acknowledge Finish Configuration (0x03) to advance into Play, and answer
// Client Information/Keep Alive/Pong as opaque no-ops the caller may hook.
func (c *Connection) handleConfiguration(id int32, payload []byte) error {
	switch id {
	case 0x03: // Acknowledge Finish Configuration
		c.state = StatePlay
		return nil
	case 0x00, 0x02, 0x04, 0x05: // Client Information, Plugin Message, Keep Alive, Pong
		if c.onConfigPacket != nil {
			return c.onConfigPacket(id, payload)
		}
		return nil
	default:
		return fmt.Errorf("session: unexpected packet 0x%02X in configuration", id)
	}
}

// FinishConfiguration sends the Finish Configuration packet, after which the
// client is expected to reply with Acknowledge Finish Configuration.
func (c *Connection) FinishConfiguration() error {
	return c.SendPacket(0x03, nil)
}

// ConfigPacketHandler lets the caller observe configuration-phase packets
// this package treats as opaque (client information, plugin channels).
type ConfigPacketHandler func(id int32, payload []byte) error

// SetConfigPacketHandler installs the callback used for configuration-phase
// packets not directly needed to drive the state machine.
func (c *Connection) SetConfigPacketHandler(h ConfigPacketHandler) { c.onConfigPacket = h }
