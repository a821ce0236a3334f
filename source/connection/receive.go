package connection

import (
	"net"
	"time"

	"raknet-server-go/source/protocol"
)

// Recv is the single entry point the dispatcher hands every datagram from
// this peer to. It routes by leading byte: ACK/NACK packets, FramePackets
// (valid-frame bit set), or one of the three pre-frame offline packets
// (spec.md §4.2/§4.3/§4.4).
func (c *Connection) Recv(data []byte, now time.Time, motd MotdFunc) {
	if len(data) == 0 {
		return
	}
	switch {
	case data[0] == protocol.IDACK:
		c.handleInboundACK(data)
	case data[0] == protocol.IDNACK:
		c.handleInboundNACK(data, now)
	case protocol.IsFramePacket(data[0]):
		c.receiveFramePacket(data, now)
	default:
		c.handleOffline(data, now, motd)
	}
}

// handleInboundACK removes every referenced sequence from the recovery
// queue (spec.md §4.4: "On inbound ACK: remove each referenced sequence
// from the RecoveryQueue").
func (c *Connection) handleInboundACK(data []byte) {
	records, err := protocol.DecodeACK(data)
	if err != nil {
		c.mu.Lock()
		c.dropped++
		c.mu.Unlock()
		c.met.IncPacketsDropped()
		c.log.WithError(err).Debug("raknet: malformed ACK")
		return
	}
	for _, seq := range protocol.ExpandRecords(records) {
		c.recovery.Remove(seq)
	}
}

// handleInboundNACK re-transmits the original bytes of every referenced
// sequence still in the recovery queue, under the same sequence number
// (spec.md §4.4: "On inbound NACK ... if present, re-transmit the original
// FramePacket bytes under the same sequence; if absent, ignore").
func (c *Connection) handleInboundNACK(data []byte, now time.Time) {
	records, err := protocol.DecodeNACK(data)
	if err != nil {
		c.mu.Lock()
		c.dropped++
		c.mu.Unlock()
		c.met.IncPacketsDropped()
		c.log.WithError(err).Debug("raknet: malformed NACK")
		return
	}
	for _, seq := range protocol.ExpandRecords(records) {
		entry, ok := c.recovery.Get(seq)
		if !ok {
			continue
		}
		c.write(entry.Encoded)
		c.recovery.Touch(seq, now)
		c.met.IncRetransmits()
	}
}

// receiveFramePacket implements spec.md §4.3 steps 1-6 for one inbound
// FramePacket. The user-payload callback is invoked after mu is released,
// so a callback that turns around and calls Send does not deadlock against
// its own connection's lock (spec.md §5: the callback must not suspend the
// core, but it is free to call back into the connection).
func (c *Connection) receiveFramePacket(data []byte, now time.Time) {
	fp, err := protocol.DecodeFramePacket(data)
	if err != nil {
		c.mu.Lock()
		c.dropped++
		c.mu.Unlock()
		c.met.IncPacketsDropped()
		c.log.WithError(err).Debug("raknet: malformed frame packet")
		return
	}

	c.mu.Lock()
	if c.ack.Has(fp.Sequence) {
		c.mu.Unlock()
		c.met.IncPacketsDropped()
		return
	}
	c.ack.Add(fp.Sequence)
	c.reconcileSequenceLocked(fp.Sequence)
	c.lastSeen = now

	var deliveries [][]byte
	for _, frame := range fp.Frames {
		deliveries = append(deliveries, c.processFrameLocked(frame, now)...)
	}
	addr, cb := c.Addr, c.onPayload
	c.mu.Unlock()

	for range fp.Frames {
		c.met.IncFramesReceived()
	}

	if cb == nil {
		return
	}
	for _, body := range deliveries {
		c.invokePayloadCallback(cb, addr, body)
	}
}

// invokePayloadCallback runs the user callback inside a recovery boundary: a
// panic there is logged and swallowed rather than propagating into the
// dispatcher (spec.md §7: "The user callback is invoked inside a recovery
// boundary: a failure there MUST NOT corrupt the connection's queues").
func (c *Connection) invokePayloadCallback(cb PayloadFunc, addr *net.UDPAddr, payload []byte) {
	defer func() {
		if r := recover(); r != nil {
			c.log.WithField("panic", r).Error("raknet: user payload callback panicked")
		}
	}()
	cb(addr, payload)
}

// reconcileSequenceLocked advances nextExpectedSeq and pushes any skipped
// sequences into the NACK queue, or — for a late arrival behind
// nextExpectedSeq — simply clears it from the NACK queue without moving the
// watermark (spec.md §8 S4). Caller must hold mu.
func (c *Connection) reconcileSequenceLocked(seq protocol.Wrap24) {
	if !c.haveNextExpected {
		c.nextExpectedSeq = seq.Succ()
		c.haveNextExpected = true
		return
	}
	switch {
	case seq == c.nextExpectedSeq:
		c.nextExpectedSeq = seq.Succ()
	case c.nextExpectedSeq.Less(seq):
		for s := c.nextExpectedSeq; s != seq; s = s.Succ() {
			c.nack.Add(s)
		}
		c.nextExpectedSeq = seq.Succ()
	default: // seq.Less(c.nextExpectedSeq): a previously-missing seq arriving late
		c.nack.Remove(seq)
	}
}

// processFrameLocked runs steps 3-6 of spec.md §4.3 for a single frame,
// returning any user-payload bodies ready for delivery. Online-handshake
// packets are dispatched immediately since handling them only mutates
// connection-local state and the send pipeline, both already guarded by mu.
// Caller must hold mu.
func (c *Connection) processFrameLocked(frame protocol.Frame, now time.Time) [][]byte {
	if frame.Fragment != nil {
		reassembled, complete := c.fragments.Add(frame, now)
		if !complete {
			return nil
		}
		frame = reassembled
	}

	if frame.Reliability.IsSequenced() {
		if !c.orderRecv.AcceptSequenced(frame.OrderChannel, frame.SequenceIndex) {
			return nil
		}
	}

	if frame.Reliability.IsOrdered() {
		var out [][]byte
		for _, body := range c.orderRecv.Push(frame.OrderChannel, frame.OrderIndex, frame.Body) {
			out = append(out, c.classifyLocked(body, now)...)
		}
		return out
	}

	return c.classifyLocked(frame.Body, now)
}

// classifyLocked dispatches one fully-ordered payload: user-payload bodies
// are returned for delivery once mu is released; everything else goes to
// the online-handshake handler immediately (spec.md §4.3 step 6).
// Caller must hold mu.
func (c *Connection) classifyLocked(body []byte, now time.Time) [][]byte {
	if len(body) == 0 {
		return nil
	}
	if body[0] == protocol.IDUserPayload {
		return [][]byte{append([]byte(nil), body[1:]...)}
	}
	c.handleOnlineLocked(body, now)
	return nil
}
