package session

// PlayPacketHandler receives every Play-state packet. The player package
// implements the real movement/mining/placement/container semantics;
// session only owns the wire-level state machine and hands packets off.
type PlayPacketHandler func(id int32, payload []byte) error

// SetPlayPacketHandler installs the callback used for all Play-state
// packets.
func (c *Connection) SetPlayPacketHandler(h PlayPacketHandler) { c.onPlayPacket = h }

func (c *Connection) handlePlay(id int32, payload []byte) error {
	if c.onPlayPacket == nil {
		return nil
	}
	return c.onPlayPacket(id, payload)
}
