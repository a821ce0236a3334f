// Package server implements the dispatcher spec.md §4.7 describes as an
// external collaborator: it owns the single UDP socket, routes datagrams by
// source address to a Connection, and ticks every Connection on a fixed
// cadence. Grounded on the teacher's source/server/server.go Start/listen/
// updateLoop/sessionCleanupLoop shape (a running bool, a listen goroutine
// reading into a reusable buffer, a ticker-driven maintenance loop) and on
// fragglet-ipxbox/bridge's errgroup.WithContext usage for coordinating the
// read loop and tick loop under one cancellable context.
package server

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"raknet-server-go/pkg/metrics"
	"raknet-server-go/source/connection"
	"raknet-server-go/source/protocol"
)

// recvBufferSize is sized to the largest MTU this codec will negotiate.
const recvBufferSize = int(protocol.MaxMTU) + 128

// Config bundles the dispatcher's own tunables alongside the per-connection
// Config spec.md §6 groups under "CLI / configuration".
type Config struct {
	Addr string
	connection.Config
	TickPeriod time.Duration
	Motd       connection.MotdFunc
}

// DefaultConfig returns the spec.md §4.6 tick cadence and connection.Config
// defaults, with a random server GUID populated by the caller.
func DefaultConfig(addr string, serverGUID uint64) Config {
	cfg := connection.DefaultConfig()
	cfg.ServerGUID = serverGUID
	return Config{
		Addr:       addr,
		Config:     cfg,
		TickPeriod: protocol.DefaultTickPeriod,
	}
}

// Server is the UDP dispatcher: one socket, one peer table, one read loop,
// one tick loop (spec.md §4.7: "No per-connection thread; connections are
// data, ticked from a single loop").
type Server struct {
	cfg  Config
	conn *net.UDPConn
	log  *logrus.Entry
	met  *metrics.Metrics

	onPayload connection.PayloadFunc
	events    *EventManager

	mu    sync.RWMutex
	peers map[string]*connection.Connection
}

// New constructs a Server bound to no socket yet; call Start to begin
// serving.
func New(cfg Config, log *logrus.Entry, met *metrics.Metrics) *Server {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Server{
		cfg:    cfg,
		log:    log,
		met:    met,
		events: NewEventManager(),
		peers:  make(map[string]*connection.Connection),
	}
}

// Events returns the dispatcher's event bus (Connected/Disconnected/
// Received, spec.md §6).
func (s *Server) Events() *EventManager { return s.events }

// OnPayload sets the user-payload receiver forwarded to every Connection
// (spec.md §6: `Server::on_payload(callback)`).
func (s *Server) OnPayload(fn connection.PayloadFunc) { s.onPayload = fn }

// WriteTo implements connection.Sender by writing directly to the bound
// socket; Connections never see the socket itself (spec.md §4.7).
func (s *Server) WriteTo(b []byte, addr *net.UDPAddr) (int, error) {
	n, err := s.conn.WriteToUDP(b, addr)
	if err == nil {
		s.met.IncDatagramsSent()
	}
	return n, err
}

// Send enqueues payload for a known peer (spec.md §6:
// `Server::send(address, payload, reliability, immediate, channel)`).
func (s *Server) Send(addr *net.UDPAddr, payload []byte, reliability protocol.Reliability, immediate bool, channel byte) error {
	s.mu.RLock()
	conn, ok := s.peers[addr.String()]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("raknet: no connection for %s", addr)
	}
	return conn.Send(payload, reliability, immediate, channel)
}

// Start binds the UDP socket and runs the read loop and tick loop until ctx
// is cancelled or either loop returns an error.
func (s *Server) Start(ctx context.Context) error {
	udpAddr, err := net.ResolveUDPAddr("udp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("raknet: resolve %s: %w", s.cfg.Addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return fmt.Errorf("raknet: bind %s: %w", s.cfg.Addr, err)
	}
	s.conn = conn
	s.log.WithField("addr", s.cfg.Addr).Info("raknet: listening")

	eg, egctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return s.readLoop(egctx) })
	eg.Go(func() error { return s.tickLoop(egctx) })

	err = eg.Wait()
	conn.Close()
	return err
}

func (s *Server) readLoop(ctx context.Context) error {
	buf := make([]byte, recvBufferSize)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.conn.SetReadDeadline(time.Now().Add(time.Second))
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("raknet: read: %w", err)
		}
		s.met.IncDatagramsReceived()

		data := make([]byte, n)
		copy(data, buf[:n])
		now := time.Now()

		c := s.connectionFor(addr, now)
		c.Recv(data, now, s.cfg.Motd)

		if c.Disconnected() {
			s.evict(addr, "handshake rejected")
		}
	}
}

func (s *Server) tickLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.TickPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.tickAll()
		}
	}
}

func (s *Server) tickAll() {
	now := time.Now()
	s.mu.RLock()
	snapshot := make(map[string]*connection.Connection, len(s.peers))
	for k, v := range s.peers {
		snapshot[k] = v
	}
	s.mu.RUnlock()

	for key, c := range snapshot {
		if c.Tick(now) {
			s.evictKey(key, c.Addr, "timeout or max retries")
		}
	}
}

// connectionFor returns the existing Connection for addr, creating one in
// state Offline on first contact (spec.md §4.7, §3 Lifecycle).
func (s *Server) connectionFor(addr *net.UDPAddr, now time.Time) *connection.Connection {
	key := addr.String()

	s.mu.RLock()
	c, ok := s.peers[key]
	s.mu.RUnlock()
	if ok {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.peers[key]; ok {
		return c
	}
	log := s.log.WithField("peer", key)
	c = connection.New(addr, now, s.cfg.Config, s, s.dispatchPayload, s.onConnect, s.onDisconnect, log, s.met)
	s.peers[key] = c
	s.met.ConnectionOpened()
	return c
}

// dispatchPayload forwards an inbound user payload to the embedder's
// callback and emits the `Received(addr, bytes)` event (spec.md §6).
func (s *Server) dispatchPayload(addr *net.UDPAddr, payload []byte) {
	s.events.Trigger(Event{Type: EventReceived, Addr: addr, Bytes: payload})
	if s.onPayload != nil {
		s.onPayload(addr, payload)
	}
}

// onConnect fires once a Connection reaches StateConnected, emitting
// `Connected(addr)` at the point the handshake actually completes rather
// than on first contact (spec.md §3/§6).
func (s *Server) onConnect(addr *net.UDPAddr) {
	s.events.Trigger(Event{Type: EventConnected, Addr: addr})
}

func (s *Server) onDisconnect(addr *net.UDPAddr, reason string) {
	s.evict(addr, reason)
}

func (s *Server) evict(addr *net.UDPAddr, reason string) {
	s.evictKey(addr.String(), addr, reason)
}

func (s *Server) evictKey(key string, addr *net.UDPAddr, reason string) {
	s.mu.Lock()
	_, ok := s.peers[key]
	delete(s.peers, key)
	s.mu.Unlock()
	if !ok {
		return
	}
	s.met.ConnectionClosed()
	s.log.WithFields(logrus.Fields{"peer": key, "reason": reason}).Info("raknet: connection evicted")
	s.events.Trigger(Event{Type: EventDisconnected, Addr: addr, Reason: reason})
}

// PeerCount reports how many connections are currently tracked.
func (s *Server) PeerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.peers)
}

// Close shuts every tracked connection down gracefully and closes the
// socket; callers typically cancel the Start context instead, which
// triggers the same path via readLoop/tickLoop returning.
func (s *Server) Close() error {
	s.mu.RLock()
	conns := make([]*connection.Connection, 0, len(s.peers))
	for _, c := range s.peers {
		conns = append(conns, c)
	}
	s.mu.RUnlock()
	for _, c := range conns {
		c.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
