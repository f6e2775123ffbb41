package session

import (
	"bytes"
	"fmt"

	"github.com/kilnmc/kiln/protocol"
)

const (
	intentStatus      = 1
	intentLogin       = 2
	intentTransfer    = 3
)

// handleHandshake processes the single Handshake-state packet (id 0x00):
// protocol version, server address/port, and the intent selecting the next
// state (Status, Login, or Transfer).
func (c *Connection) handleHandshake(id int32, payload []byte) error {
	if id != 0x00 {
		return fmt.Errorf("session: unexpected packet 0x%02X in handshake", id)
	}
	r := bytes.NewReader(payload)

	version, err := protocol.ReadVarInt(r)
	if err != nil {
		return fmt.Errorf("read protocol version: %w", err)
	}
	addr, err := protocol.ReadString(r)
	if err != nil {
		return fmt.Errorf("read server address: %w", err)
	}
	port, err := protocol.ReadInt16(r)
	if err != nil {
		return fmt.Errorf("read server port: %w", err)
	}
	intent, err := protocol.ReadVarInt(r)
	if err != nil {
		return fmt.Errorf("read intent: %w", err)
	}

	c.protocolVersion = version
	c.serverAddress = addr
	c.serverPort = uint16(port)
	c.intent = intent

	switch intent {
	case intentStatus:
		c.state = StateStatus
	case intentLogin, intentTransfer:
		c.state = StateLogin
	default:
		return fmt.Errorf("session: unknown handshake intent %d", intent)
	}
	return nil
}

// StatusResponder supplies the JSON status response body for the Status
// sub-protocol, letting the caller control version name, player counts, and
// MOTD without this package depending on a JSON schema directly.
type StatusResponder func() string

// handleStatus answers the two Status-state packets: Status Request (0x00)
// and Ping Request (0x01, echoed back verbatim).
func (c *Connection) handleStatus(id int32, payload []byte) error {
	switch id {
	case 0x00:
		if c.statusResponder == nil {
			return nil
		}
		var buf bytes.Buffer
		if err := protocol.WriteString(&buf, c.statusResponder()); err != nil {
			return err
		}
		return c.SendPacket(0x00, buf.Bytes())
	case 0x01:
		return c.SendPacket(0x01, payload)
	default:
		return fmt.Errorf("session: unexpected packet 0x%02X in status", id)
	}
}
