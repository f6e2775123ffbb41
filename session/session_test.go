package session

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/kilnmc/kiln/internal/logging"
	"github.com/kilnmc/kiln/protocol"
)

func newPipeConnection(t *testing.T) (*Connection, net.Conn) {
	t.Helper()
	serverSide, clientSide := net.Pipe()
	t.Cleanup(func() { serverSide.Close(); clientSide.Close() })
	c := NewConnection(serverSide, logging.New(), nil)
	return c, clientSide
}

func writeHandshake(t *testing.T, c *Connection, intent int32) {
	t.Helper()
	var body bytes.Buffer
	protocol.WriteVarInt(&body, 772)
	protocol.WriteString(&body, "localhost")
	protocol.WriteInt16(&body, 25565)
	protocol.WriteVarInt(&body, intent)
	if err := c.handleHandshake(0x00, body.Bytes()); err != nil {
		t.Fatalf("handshake: %v", err)
	}
}

func TestHandshakeToStatus(t *testing.T) {
	c, _ := newPipeConnection(t)
	writeHandshake(t, c, intentStatus)
	if c.State() != StateStatus {
		t.Fatalf("expected status state, got %s", c.State())
	}
}

func TestHandshakeToLogin(t *testing.T) {
	c, _ := newPipeConnection(t)
	writeHandshake(t, c, intentLogin)
	if c.State() != StateLogin {
		t.Fatalf("expected login state, got %s", c.State())
	}
}

func TestOfflineLoginStartAssignsProfile(t *testing.T) {
	c, clientSide := newPipeConnection(t)
	writeHandshake(t, c, intentLogin)

	var body bytes.Buffer
	protocol.WriteString(&body, "Steve")
	body.Write(make([]byte, 16))

	done := make(chan error, 1)
	go func() {
		done <- c.handleLogin(0x00, body.Bytes())
	}()

	buf := make([]byte, 512)
	// the server writes a Login Success packet through the pipe; read it so
	// the goroutine above can return.
	if _, err := clientSide.Read(buf); err != nil {
		t.Fatalf("read login success: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("handle login start: %v", err)
	}
	if c.profile == nil || c.profile.Username != "Steve" {
		t.Fatalf("expected profile to be set for Steve, got %+v", c.profile)
	}
}

func TestUnknownHandshakeIntentRejected(t *testing.T) {
	c, _ := newPipeConnection(t)
	var body bytes.Buffer
	protocol.WriteVarInt(&body, 772)
	protocol.WriteString(&body, "localhost")
	protocol.WriteInt16(&body, 25565)
	protocol.WriteVarInt(&body, 99)
	if err := c.handleHandshake(0x00, body.Bytes()); err == nil {
		t.Fatalf("expected error for unknown intent")
	}
}

func TestServeRoundTripsPingThroughReaderWriterQueues(t *testing.T) {
	c, clientSide := newPipeConnection(t)
	c.statusResponder = func() string { return `{"version":{}}` }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serveErr := make(chan error, 1)
	go func() { serveErr <- c.Serve(ctx) }()

	clientEnc := protocol.NewEncoder(clientSide)
	clientDec := protocol.NewDecoder(clientSide)

	var handshakeBody bytes.Buffer
	protocol.WriteVarInt(&handshakeBody, 772)
	protocol.WriteString(&handshakeBody, "localhost")
	protocol.WriteInt16(&handshakeBody, 25565)
	protocol.WriteVarInt(&handshakeBody, intentStatus)
	if err := clientEnc.WritePacket(0x00, handshakeBody.Bytes()); err != nil {
		t.Fatalf("write handshake: %v", err)
	}

	if err := clientEnc.WritePacket(0x01, []byte{1, 2, 3, 4, 5, 6, 7, 8}); err != nil {
		t.Fatalf("write ping: %v", err)
	}

	id, payload, err := clientDec.ReadPacket()
	if err != nil {
		t.Fatalf("read pong: %v", err)
	}
	if id != 0x01 {
		t.Fatalf("expected pong packet id 0x01, got 0x%02X", id)
	}
	if !bytes.Equal(payload, []byte{1, 2, 3, 4, 5, 6, 7, 8}) {
		t.Fatalf("expected ping payload echoed verbatim, got %v", payload)
	}

	cancel()
	select {
	case <-serveErr:
	case <-time.After(time.Second):
		t.Fatalf("expected Serve to return after cancellation")
	}
}

func TestCloseWaitsForReaderAndWriterTasks(t *testing.T) {
	c, _ := newPipeConnection(t)
	done := make(chan error, 1)
	go func() { done <- c.Serve(context.Background()) }()

	// give Serve a moment to start its reader/writer tasks before closing.
	time.Sleep(10 * time.Millisecond)
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("expected Serve to return once Close tears down its tasks")
	}
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		StateHandshake:     "handshake",
		StateStatus:        "status",
		StateLogin:         "login",
		StateConfiguration: "configuration",
		StatePlay:          "play",
	}
	for s, want := range cases {
		if s.String() != want {
			t.Fatalf("state %d: got %q want %q", s, s.String(), want)
		}
	}
}
