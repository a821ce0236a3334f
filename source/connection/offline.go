package connection

import (
	"time"

	"raknet-server-go/source/protocol"
)

// MotdFunc produces the Motd string returned in an UnconnectedPong,
// evaluated fresh per ping so the dispatcher can report live player counts
// (spec.md §6: "Motd/ping reply generator" is an external collaborator).
type MotdFunc func() string

// handleOffline answers the three datagrams exchanged before a Connection
// is promoted past the handshake: Unconnected Ping, Open Connection
// Request 1, and Open Connection Request 2 (spec.md §4.2). Anything else
// unrecognised in the current state is dropped silently.
func (c *Connection) handleOffline(data []byte, now time.Time, motd MotdFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch data[0] {
	case protocol.IDUnconnectedPing:
		c.handleUnconnectedPingLocked(data, motd)
	case protocol.IDOpenConnectionRequest1:
		c.handleOpenConnectionRequest1Locked(data)
	case protocol.IDOpenConnectionRequest2:
		c.handleOpenConnectionRequest2Locked(data)
	default:
		c.log.WithField("id", data[0]).Debug("raknet: unrecognised offline packet, dropping")
	}
}

func (c *Connection) handleUnconnectedPingLocked(data []byte, motd MotdFunc) {
	ping, err := protocol.DecodeUnconnectedPing(data)
	if err != nil {
		c.dropped++
		c.log.WithError(err).Debug("raknet: malformed unconnected ping")
		return
	}
	m := ""
	if motd != nil {
		m = motd()
	}
	pong := &protocol.UnconnectedPong{
		Time:       ping.Time,
		ServerGUID: c.serverGUID,
		Motd:       m,
	}
	c.write(pong.Encode())
}

func (c *Connection) handleOpenConnectionRequest1Locked(data []byte) {
	if c.state != StateOffline {
		return
	}
	req, err := protocol.DecodeOpenConnectionRequest1(data)
	if err != nil {
		c.dropped++
		c.log.WithError(err).Debug("raknet: malformed open connection request 1")
		return
	}
	if req.ProtocolVersion != c.cfg.ProtocolVersion {
		c.write((&protocol.IncompatibleProtocolVersion{
			ServerProtocol: c.cfg.ProtocolVersion,
			ServerGUID:     c.serverGUID,
		}).Encode())
		c.disconnectLocked("incompatible protocol version")
		return
	}
	// The padding length directly signals the client's desired MTU (spec.md
	// §8 S1: a 1400-byte padding yields a negotiated MTU of 1400).
	proposed := uint16(req.PaddingLength)
	if proposed > c.cfg.MTUCap {
		proposed = c.cfg.MTUCap
	}
	if proposed > protocol.MaxMTU {
		proposed = protocol.MaxMTU
	}
	if proposed < protocol.MinMTU {
		proposed = protocol.MinMTU
	}
	c.write((&protocol.OpenConnectionReply1{
		ServerGUID: c.serverGUID,
		Secure:     false,
		MTU:        proposed,
	}).Encode())
}

func (c *Connection) handleOpenConnectionRequest2Locked(data []byte) {
	if c.state != StateOffline {
		return
	}
	req, err := protocol.DecodeOpenConnectionRequest2(data)
	if err != nil {
		c.dropped++
		c.log.WithError(err).Debug("raknet: malformed open connection request 2")
		return
	}
	mtu := req.MTU
	if mtu > c.cfg.MTUCap {
		mtu = c.cfg.MTUCap
	}
	if mtu > protocol.MaxMTU {
		mtu = protocol.MaxMTU
	}
	if mtu < protocol.MinMTU {
		mtu = protocol.MinMTU
	}
	c.mtu = mtu
	c.clientGUID = req.ClientGUID

	c.write((&protocol.OpenConnectionReply2{
		ServerGUID:    c.serverGUID,
		ClientAddress: c.Addr,
		MTU:           mtu,
		Secure:        false,
	}).Encode())
	c.transitionLocked(StateConnecting)
}

// handleOnlineLocked dispatches a decoded frame payload whose first byte is
// not the user-payload identifier to the online-handshake state machine
// (spec.md §4.3 step 6). Caller must hold mu.
func (c *Connection) handleOnlineLocked(body []byte, now time.Time) {
	if len(body) == 0 {
		return
	}
	switch body[0] {
	case protocol.IDConnectionRequest:
		c.handleConnectionRequestLocked(body, now)
	case protocol.IDNewIncomingConnection:
		c.handleNewIncomingConnectionLocked(body)
	case protocol.IDConnectedPing:
		c.handleConnectedPingLocked(body, now)
	case protocol.IDDisconnectionNotification:
		c.disconnectLocked("peer disconnect notification")
	default:
		c.log.WithField("id", body[0]).Debug("raknet: unrecognised online packet, dropping")
	}
}

func (c *Connection) handleConnectionRequestLocked(body []byte, now time.Time) {
	if c.state != StateConnecting {
		return
	}
	req, err := protocol.DecodeConnectionRequest(body)
	if err != nil {
		c.dropped++
		c.log.WithError(err).Debug("raknet: malformed connection request")
		return
	}
	c.clientGUID = req.ClientGUID
	accepted := &protocol.ConnectionRequestAccepted{
		ClientAddress:     c.Addr,
		SystemIndex:       0,
		RequestTimestamp:  req.Time,
		AcceptedTimestamp: uint64(now.UnixMilli()),
	}
	c.sendLocked(accepted.Encode(), protocol.Reliable, true, 0)
}

func (c *Connection) handleNewIncomingConnectionLocked(body []byte) {
	if c.state != StateConnecting {
		return
	}
	if _, err := protocol.DecodeNewIncomingConnection(body); err != nil {
		c.dropped++
		c.log.WithError(err).Debug("raknet: malformed new incoming connection")
		return
	}
	c.transitionLocked(StateConnected)
}

func (c *Connection) handleConnectedPingLocked(body []byte, now time.Time) {
	ping, err := protocol.DecodeConnectedPing(body)
	if err != nil {
		c.dropped++
		c.log.WithError(err).Debug("raknet: malformed connected ping")
		return
	}
	pong := &protocol.ConnectedPong{PingTime: ping.Time, PongTime: uint64(now.UnixMilli())}
	c.sendLocked(pong.Encode(), protocol.Unreliable, false, 0)
}
