// Package connection implements the per-connection RakNet reliability state
// machine: the offline handshake, the frame-packet send/receive pipelines,
// the ACK/NACK subsystem, and the tick loop that drains queues onto the
// socket. It is grounded on the teacher's source/protocol/raknet.go Session
// type (map-based queues hung off one struct, a single mutex guarding
// mutation) and on original_source/src/conn.rs and
// src/connection/queue/send.rs for the queue composition spec.md §9 calls
// for (plain fields, no back-references).
package connection

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"raknet-server-go/pkg/metrics"
	"raknet-server-go/source/connection/order"
	"raknet-server-go/source/connection/queue"
	"raknet-server-go/source/protocol"
)

// State is the Connection lifecycle stage (spec.md §3 Lifecycle).
type State int

const (
	StateOffline State = iota
	StateConnecting
	StateConnected
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateOffline:
		return "offline"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Config bundles the tunables the dispatcher's CLI surface exposes (spec.md
// §6 "CLI / configuration").
type Config struct {
	MTUCap            uint16
	RetransmitTimeout time.Duration
	MaxRetries        int
	InactivityTimeout time.Duration
	ServerGUID        uint64
	// ProtocolVersion is the RakNet protocol byte this server accepts; a
	// client proposing a different one is answered with Incompatible
	// Protocol Version (spec.md §4.2). original_source/src/server.rs names
	// this as a RakNetVersion parameter rather than a hardcoded constant.
	ProtocolVersion byte
}

// DefaultConfig returns the spec.md §4.4/§4.6 default tunables.
func DefaultConfig() Config {
	return Config{
		MTUCap:            protocol.MaxMTU,
		RetransmitTimeout: protocol.DefaultRetransmitTimeout,
		MaxRetries:        protocol.DefaultMaxRetries,
		InactivityTimeout: protocol.DefaultInactivityTimeout,
		ProtocolVersion:   protocol.RAKNET_PROTOCOL_VERSION,
	}
}

// Sender abstracts the dispatcher's UDP socket so Connection never owns it
// directly (spec.md §4.7: the socket is an external collaborator).
type Sender interface {
	WriteTo(b []byte, addr *net.UDPAddr) (int, error)
}

// PayloadFunc is the user-payload callback signature (spec.md §6:
// `Server::on_payload(callback)`, signature `(connection_handle,
// payload_bytes)`). It MUST NOT suspend (spec.md §5).
type PayloadFunc func(addr *net.UDPAddr, payload []byte)

// ConnectFunc is invoked exactly once when a Connection reaches
// StateConnected, letting the dispatcher emit a `Connected(addr)` event
// (spec.md §3/§6) at the point the handshake actually completes rather than
// on first contact.
type ConnectFunc func(addr *net.UDPAddr)

// DisconnectFunc is invoked exactly once when a Connection transitions to
// Disconnected, letting the dispatcher emit a `Disconnected(addr, reason)`
// event and evict the connection from its peer table.
type DisconnectFunc func(addr *net.UDPAddr, reason string)

// Connection is one remote peer's reliability state machine. All mutation
// happens under mu; spec.md §5 permits multiple worker goroutines provided
// each Connection is only ever touched while its lease (mu) is held.
type Connection struct {
	mu sync.Mutex

	Addr      *net.UDPAddr
	startTime time.Time
	cfg       Config

	mtu   uint16
	state State

	sender       Sender
	onPayload    PayloadFunc
	onConnect    ConnectFunc
	onDisconnect DisconnectFunc
	log          *logrus.Entry
	met          *metrics.Metrics

	serverGUID uint64
	clientGUID uint64

	sendSeq     protocol.Wrap24
	reliableSeq protocol.Wrap32
	fragmentID  protocol.Wrap16

	nextExpectedSeq  protocol.Wrap24
	haveNextExpected bool

	orderSend *order.Send
	orderRecv *order.Receive

	ack       *queue.Ack
	nack      *queue.Nack
	recovery  *queue.Recovery
	fragments *queue.Fragment

	ready []protocol.Frame

	lastSeen     time.Time
	dropped      int // malformed-datagram counter (spec.md §7 propagation policy)
	disconnected bool
}

// New creates a Connection in state Offline for a newly-seen remote
// address (spec.md §3 Lifecycle: "created on first datagram from a new
// address").
func New(addr *net.UDPAddr, now time.Time, cfg Config, sender Sender, onPayload PayloadFunc, onConnect ConnectFunc, onDisconnect DisconnectFunc, log *logrus.Entry, met *metrics.Metrics) *Connection {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Connection{
		Addr:         addr,
		startTime:    now,
		cfg:          cfg,
		mtu:          protocol.DefaultMTU,
		state:        StateOffline,
		sender:       sender,
		onPayload:    onPayload,
		onConnect:    onConnect,
		onDisconnect: onDisconnect,
		log:          log.WithField("peer", addr.String()),
		met:          met,
		serverGUID:   cfg.ServerGUID,
		orderSend:    order.NewSend(),
		orderRecv:    order.NewReceive(),
		ack:          queue.NewAck(),
		nack:         queue.NewNack(),
		recovery:     queue.NewRecovery(),
		fragments:    queue.NewFragment(),
		lastSeen:     now,
	}
}

// State returns the connection's current lifecycle stage.
func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// MTU returns the negotiated MTU.
func (c *Connection) MTU() uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mtu
}

// frameBudget is the largest body a single frame may carry: mtu minus the
// worst-case per-frame overhead (spec.md §3 invariants, §4.1
// RAKNET_HEADER_FRAME_OVERHEAD).
func (c *Connection) frameBudget() int {
	return int(c.mtu) - protocol.RAKNET_HEADER_FRAME_OVERHEAD
}

// write hands an encoded datagram to the dispatcher's socket, logging send
// failures without disconnecting (spec.md §7: SendError "log, do not
// disconnect").
func (c *Connection) write(b []byte) {
	if _, err := c.sender.WriteTo(b, c.Addr); err != nil {
		c.log.WithError(err).Warn("raknet: datagram write failed")
	}
}

// transitionLocked moves the connection to state s, logging the change and
// firing onConnect the moment s is StateConnected (spec.md §3/§6: the
// `Connected(addr)` event corresponds to reaching this state, not to first
// contact). Caller must hold mu.
func (c *Connection) transitionLocked(s State) {
	if c.state == s {
		return
	}
	c.log.WithFields(logrus.Fields{"from": c.state, "to": s}).Debug("raknet: state transition")
	c.state = s
	if s == StateConnected && c.onConnect != nil {
		addr, fn := c.Addr, c.onConnect
		// Invoke outside the lock, the same non-suspension discipline
		// onDisconnect follows.
		go fn(addr)
	}
}

// disconnectLocked transitions to Disconnected and fires onDisconnect at
// most once. Caller must hold mu.
func (c *Connection) disconnectLocked(reason string) {
	if c.disconnected {
		return
	}
	c.disconnected = true
	c.transitionLocked(StateDisconnected)
	if c.onDisconnect != nil {
		addr, fn := c.Addr, c.onDisconnect
		// Invoke outside the lock to honor the "no suspending callback holds
		// the connection lease" rule from spec.md §5.
		go fn(addr, reason)
	}
}

// Disconnected reports whether the connection has been evicted-eligible.
func (c *Connection) Disconnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateDisconnected
}

// Close sends a Disconnect notification and transitions to Disconnected
// immediately, used for graceful shutdown of the dispatcher.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateConnected || c.state == StateConnecting {
		c.write(protocol.Disconnect{}.Encode())
	}
	c.disconnectLocked("closed")
}

func (c *Connection) String() string {
	return fmt.Sprintf("Connection{%s state=%s mtu=%d}", c.Addr, c.state, c.mtu)
}
