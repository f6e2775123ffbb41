package session

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/kilnmc/kiln/internal/logging"
	"github.com/kilnmc/kiln/protocol"
)

// inboundQueueSize and outboundQueueSize bound the receive/outbound frame
// queues a connection's reader and writer tasks hand packets through.
const (
	inboundQueueSize  = 64
	outboundQueueSize = 256
)

// rawPacket is one decoded-but-not-yet-dispatched (or encoded-but-not-yet-
// written) packet passed between a connection's tasks.
type rawPacket struct {
	id      int32
	payload []byte
}

// outboundItem is either a packet for the writer task to encode and write,
// or an action to run on the writer task in its place. Routing encoder
// state changes (enabling compression/encryption) through the same queue
// as packet writes guarantees they take effect in the order the session
// task enqueued them, with no separate lock needed against a concurrent
// WritePacket on the writer task.
type outboundItem struct {
	pkt    rawPacket
	action func()
}

// Authenticator performs the (external, blocking) Mojang session-server
// lookup that turns a verified shared secret into a profile. It is injected
// so tests never make a real network call.
type Authenticator func(username, serverHash string) (Profile, error)

// Profile is the authenticated identity handed back by an Authenticator.
type Profile struct {
	Username string
	UUID     [16]byte
}

// Connection owns one client's socket and the reader/writer/session tasks
// coordinating access to it, following the teacher's one-goroutine-per-
// connection shape generalized to three cooperating goroutines (reader,
// writer, session logic) instead of one. The reader task decodes frames off
// the socket into a bounded receive queue; the writer task drains a
// separate bounded outbound queue onto the socket; Serve itself is the
// session task, pulling from the receive queue and dispatching handlers. A
// shared context cancellation is the one-shot close signal all three
// observe, and a sync.WaitGroup lets Close await the reader and writer
// before the connection is torn down.
type Connection struct {
	conn net.Conn
	enc  *protocol.Encoder
	dec  *protocol.Decoder

	state State

	inbound  chan rawPacket
	outbound chan outboundItem
	wg       sync.WaitGroup

	log *logging.Logger

	protocolVersion int32
	serverAddress   string
	serverPort      uint16
	intent          int32

	rsaKey *rsa.PrivateKey

	loginUsername string
	loginUUID     [16]byte
	verifyToken   []byte

	authenticator Authenticator
	profile       *Profile

	compressionThreshold int

	statusResponder StatusResponder
	onConfigPacket  ConfigPacketHandler
	onPlayPacket    PlayPacketHandler

	ctx    context.Context
	cancel context.CancelFunc
}

// SetStatusResponder installs the callback used to answer Status Request
// packets.
func (c *Connection) SetStatusResponder(f StatusResponder) { c.statusResponder = f }

// SetRSAKey installs the server's login-encryption key pair. Without one,
// handleLoginStart skips the encryption handshake entirely (offline mode).
func (c *Connection) SetRSAKey(key *rsa.PrivateKey) { c.rsaKey = key }

// Profile returns the connection's authenticated identity, or nil before
// login completes.
func (c *Connection) Profile() *Profile { return c.profile }

// NewConnection wraps conn, starting in the Handshake state.
func NewConnection(conn net.Conn, log *logging.Logger, auth Authenticator) *Connection {
	return &Connection{
		conn:                 conn,
		enc:                  protocol.NewEncoder(conn),
		dec:                  protocol.NewDecoder(conn),
		state:                StateHandshake,
		log:                  log,
		authenticator:        auth,
		compressionThreshold: -1,
	}
}

// State returns the connection's current protocol phase.
func (c *Connection) State() State { return c.state }

// Serve starts the reader and writer tasks and runs the session task (this
// goroutine) until ctx is cancelled or the connection errors/closes.
// Packets pulled from the receive queue are dispatched in arrival order,
// per-connection; Play-state packets go to the PlayPacketHandler, and Serve
// does not tick the player itself. Serve returns once all three tasks have
// stopped.
func (c *Connection) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	c.ctx = ctx
	c.cancel = cancel
	defer cancel()

	c.inbound = make(chan rawPacket, inboundQueueSize)
	c.outbound = make(chan outboundItem, outboundQueueSize)
	readErr := make(chan error, 1)

	c.wg.Add(2)
	go c.readLoop(ctx, readErr)
	go c.writeLoop(ctx)
	defer func() {
		// Cancel so the writer exits, and expire the read deadline so a
		// reader blocked on the socket returns, before waiting on both.
		cancel()
		c.conn.SetReadDeadline(time.Now())
		c.wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			return fmt.Errorf("session: read packet: %w", err)
		case pkt, ok := <-c.inbound:
			if !ok {
				return nil
			}
			if err := c.dispatch(pkt.id, pkt.payload); err != nil {
				return fmt.Errorf("session: dispatch packet 0x%02X in state %s: %w", pkt.id, c.state, err)
			}
		}
	}
}

// readLoop decodes frames off the socket and pushes them onto the bounded
// receive queue until the socket errors or ctx is cancelled.
func (c *Connection) readLoop(ctx context.Context, errc chan<- error) {
	defer c.wg.Done()
	for {
		id, payload, err := c.dec.ReadPacket()
		if err != nil {
			select {
			case errc <- err:
			default:
			}
			return
		}
		select {
		case c.inbound <- rawPacket{id: id, payload: payload}:
		case <-ctx.Done():
			return
		}
	}
}

// writeLoop drains the bounded outbound queue onto the socket in enqueue
// order until ctx is cancelled. A write error cancels the connection so the
// reader and session tasks unwind too.
func (c *Connection) writeLoop(ctx context.Context) {
	defer c.wg.Done()
	for {
		select {
		case item := <-c.outbound:
			if item.action != nil {
				item.action()
				continue
			}
			if err := c.enc.WritePacket(item.pkt.id, item.pkt.payload); err != nil {
				c.cancel()
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// SendPacket enqueues a complete packet for the writer task to deliver,
// safe for concurrent use by the session task and any other goroutine
// driving the connection (e.g. broadcast of world state). It blocks while
// the outbound queue is full rather than dropping the packet, so "every
// enqueued frame is eventually delivered" holds as long as the connection
// stays open; it returns promptly once the connection is closing.
func (c *Connection) SendPacket(id int32, payload []byte) error {
	if c.ctx == nil {
		return c.enc.WritePacket(id, payload)
	}
	select {
	case c.outbound <- outboundItem{pkt: rawPacket{id: id, payload: payload}}:
		return nil
	case <-c.ctx.Done():
		return fmt.Errorf("session: send packet 0x%02X: connection closing", id)
	}
}

// enqueueEncoderAction runs fn on the writer task, ordered against queued
// packet writes exactly like SendPacket, so a change to the encoder's
// compression or encryption state can never run concurrently with (or
// out of order relative to) a WritePacket call on the same encoder. Unlike
// SendPacket it blocks until fn has actually run, so the caller can safely
// inspect whatever fn captured (e.g. an error fn assigned) once this
// returns.
func (c *Connection) enqueueEncoderAction(fn func()) error {
	if c.ctx == nil {
		fn()
		return nil
	}
	done := make(chan struct{})
	item := outboundItem{action: func() { fn(); close(done) }}
	select {
	case c.outbound <- item:
	case <-c.ctx.Done():
		return fmt.Errorf("session: enqueue encoder action: connection closing")
	}
	select {
	case <-done:
		return nil
	case <-c.ctx.Done():
		return fmt.Errorf("session: encoder action: connection closing")
	}
}

// Close terminates the connection's reader, writer, and session tasks and
// the underlying socket, waiting for the reader and writer to stop before
// returning; the session task (Serve) observes the cancellation on its own.
func (c *Connection) Close() error {
	if c.cancel != nil {
		c.cancel()
	}
	err := c.conn.Close()
	c.wg.Wait()
	return err
}

func (c *Connection) dispatch(id int32, payload []byte) error {
	switch c.state {
	case StateHandshake:
		return c.handleHandshake(id, payload)
	case StateStatus:
		return c.handleStatus(id, payload)
	case StateLogin:
		return c.handleLogin(id, payload)
	case StateConfiguration:
		return c.handleConfiguration(id, payload)
	case StatePlay:
		return c.handlePlay(id, payload)
	default:
		return fmt.Errorf("session: unknown state %d", c.state)
	}
}

// generateVerifyToken returns a fresh random verify token for the login
// encryption handshake.
func generateVerifyToken() ([]byte, error) {
	tok := make([]byte, 4)
	if _, err := rand.Read(tok); err != nil {
		return nil, fmt.Errorf("session: generate verify token: %w", err)
	}
	return tok, nil
}
