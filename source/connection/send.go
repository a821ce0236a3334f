package connection

import (
	"time"

	"raknet-server-go/source/protocol"
)

// framePacketOverhead is the FramePacket envelope's fixed wire cost: the
// valid-frame header byte plus the 24-bit sequence number.
const framePacketOverhead = 1 + 3

// Send enqueues payload for delivery under reliability on channel. If
// immediate, the encoded datagram(s) are written to the socket before this
// call returns; otherwise the frame(s) wait in the ready buffer for the next
// tick (spec.md §4.5 "Public operation send(payload, reliability,
// immediate, channel)").
func (c *Connection) Send(payload []byte, reliability protocol.Reliability, immediate bool, channel byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sendLocked(payload, reliability, immediate, channel)
}

func (c *Connection) sendLocked(payload []byte, reliability protocol.Reliability, immediate bool, channel byte) error {
	budget := c.frameBudget()

	// Step 1: a payload that cannot fit in a single frame is always carried
	// ReliableOrdered regardless of what the caller asked for.
	effective := reliability
	if len(payload) > budget {
		effective = protocol.ReliableOrdered
	}

	if len(payload) <= budget {
		frame := protocol.Frame{Reliability: effective, Body: payload}
		c.stampFrameLocked(&frame, effective, channel, 0, 0, false)
		c.dispatchFrameLocked(frame, immediate)
		return nil
	}

	return c.sendFragmentedLocked(payload, effective, immediate, channel, budget)
}

// stampFrameLocked fills in the index fields a frame of reliability needs.
// When shared is true, orderIdx/seqIdx are used verbatim instead of drawing
// fresh ones from the per-channel counters (every fragment of one compound
// shares a single order_index/sequence_index, spec.md §4.5 step 3).
func (c *Connection) stampFrameLocked(frame *protocol.Frame, reliability protocol.Reliability, channel byte, orderIdx, seqIdx uint32, shared bool) {
	if reliability.IsReliable() {
		frame.HasReliableIndex = true
		frame.ReliableIndex = uint32(c.reliableSeq.Next())
	}
	if reliability.IsSequenced() {
		frame.HasSequenceIndex = true
		if shared {
			frame.SequenceIndex = seqIdx
		} else {
			frame.SequenceIndex = c.orderSend.NextSequence(channel)
		}
	}
	if reliability.HasOrderChannel() {
		frame.HasOrder = true
		frame.OrderChannel = channel
		switch {
		case shared:
			frame.OrderIndex = orderIdx
		case reliability.IsOrdered():
			frame.OrderIndex = c.orderSend.NextOrder(channel)
		default:
			// Sequenced-only reliabilities still carry the order_index wire
			// slot (protocol.Reliability.HasOrderChannel) but must not
			// advance the channel's ordered-delivery counter.
			frame.OrderIndex = c.orderSend.CurrentOrder(channel)
		}
	}
}

// sendFragmentedLocked splits payload into fragments of at most budget
// bytes, wraps each in a Frame under a freshly allocated compound_id, and
// dispatches them (spec.md §4.5 step 3).
func (c *Connection) sendFragmentedLocked(payload []byte, reliability protocol.Reliability, immediate bool, channel byte, budget int) error {
	n := (len(payload) + budget - 1) / budget
	if n > 0xffff {
		return protocol.ErrPacketTooLarge
	}
	compoundID := uint16(c.fragmentID.Next())

	var sharedOrder, sharedSeq uint32
	switch {
	case reliability.IsOrdered():
		sharedOrder = c.orderSend.NextOrder(channel)
	case reliability.IsSequenced():
		sharedOrder = c.orderSend.CurrentOrder(channel)
	}
	if reliability.IsSequenced() {
		sharedSeq = c.orderSend.NextSequence(channel)
	}

	for i := 0; i < n; i++ {
		start := i * budget
		end := start + budget
		if end > len(payload) {
			end = len(payload)
		}
		frame := protocol.Frame{
			Reliability: reliability,
			Fragment: &protocol.FragmentInfo{
				CompoundSize:  uint32(n),
				CompoundID:    compoundID,
				FragmentIndex: uint32(i),
			},
			Body: payload[start:end],
		}
		c.stampFrameLocked(&frame, reliability, channel, sharedOrder, sharedSeq, true)
		c.dispatchFrameLocked(frame, immediate)
	}
	return nil
}

// dispatchFrameLocked appends frame to the ready buffer and, if immediate,
// flushes the ready buffer to the socket right away (spec.md §4.5 step 5).
func (c *Connection) dispatchFrameLocked(frame protocol.Frame, immediate bool) {
	c.ready = append(c.ready, frame)
	if immediate {
		c.flushReadyLocked(time.Now())
	}
}

// flushReadyLocked packs the ready buffer into as few FramePackets as the
// negotiated MTU permits, writes each to the socket, and retains reliable
// ones in the recovery queue for retransmission (spec.md §4.6 step (c)).
func (c *Connection) flushReadyLocked(now time.Time) {
	if len(c.ready) == 0 {
		return
	}
	var batch []protocol.Frame
	batchSize := framePacketOverhead

	flush := func() {
		if len(batch) == 0 {
			return
		}
		seq := c.sendSeq.Next()
		fp := &protocol.FramePacket{Sequence: seq, Frames: batch}
		encoded := fp.Encode()
		c.write(encoded)

		reliable := false
		for _, f := range batch {
			if f.Reliability.IsReliable() {
				reliable = true
				break
			}
		}
		if reliable {
			c.recovery.Store(seq, encoded, now)
		}
		batch = nil
		batchSize = framePacketOverhead
	}

	for i := range c.ready {
		f := c.ready[i]
		size := f.Size()
		if len(batch) > 0 && batchSize+size > int(c.mtu) {
			flush()
		}
		batch = append(batch, f)
		batchSize += size
	}
	flush()
	c.ready = nil
}
