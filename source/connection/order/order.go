// Package order implements the per-channel ordering and sequencing state a
// Connection maintains on both the send and receive side, grounded on
// spec.md §3 OrderChannels and §4.3 steps 4-5, and on original_source's
// src/connection/queue/send.rs order_channels field
// (`HashMap<u8, (u32, u32)>`): one (sequence_index, order_index) counter
// pair per channel, allocated lazily rather than a fixed-size table, since
// the channel selector is a full 8-bit value.
package order

import "raknet-server-go/source/protocol"

// Send lazily tracks the next order_index and sequence_index to assign per
// channel when a caller sends on an ordered or sequenced reliability.
type Send struct {
	counters map[byte]*sendCounters
}

type sendCounters struct {
	orderIndex    uint32
	sequenceIndex uint32
}

// NewSend returns a Send generator with no channels yet allocated; a
// channel's counters start at zero on first use.
func NewSend() *Send {
	return &Send{counters: make(map[byte]*sendCounters)}
}

func (s *Send) entry(channel byte) *sendCounters {
	c, ok := s.counters[channel]
	if !ok {
		c = &sendCounters{}
		s.counters[channel] = c
	}
	return c
}

// NextOrder returns the next order_index for channel and advances it. Every
// ordered send on a channel consumes one order_index; sequenced-only sends
// read the counter through CurrentOrder without advancing it.
func (s *Send) NextOrder(channel byte) uint32 {
	c := s.entry(channel)
	v := c.orderIndex
	c.orderIndex++
	return v
}

// NextSequence returns the next sequence_index for channel and advances it.
// Only sequenced sends consume this counter.
func (s *Send) NextSequence(channel byte) uint32 {
	c := s.entry(channel)
	v := c.sequenceIndex
	c.sequenceIndex++
	return v
}

// CurrentOrder returns channel's order_index counter without advancing it.
// A sequenced-but-not-ordered frame still carries the wire's order_index
// slot alongside order_channel (see protocol.Reliability.HasOrderChannel),
// but spec.md §4.5 step 4 only bumps sequence_index for such a send, so the
// slot is filled by peeking the counter rather than consuming it.
func (s *Send) CurrentOrder(channel byte) uint32 {
	return s.entry(channel).orderIndex
}

// pending holds one out-of-order frame buffered until its order_index
// becomes the next expected one.
type pending struct {
	index protocol.Wrap32
	body  []byte
}

// channelState is the receive-side bookkeeping for a single ordering
// channel (spec.md §4.3 steps 4-5).
type channelState struct {
	nextExpected    protocol.Wrap32
	highestSequence protocol.Wrap32
	haveHighestSeq  bool
	buffered        []pending
}

// Receive is the receive-side per-channel ordering/sequencing state for a
// Connection: buffers ordered frames that arrive ahead of nextExpected, and
// drops sequenced frames whose sequence_index is not newer than the highest
// one seen.
// Channels are allocated lazily, keyed by the 8-bit channel selector.
type Receive struct {
	channels map[byte]*channelState
}

// NewReceive returns a Receive state with no channels yet allocated.
func NewReceive() *Receive {
	return &Receive{channels: make(map[byte]*channelState)}
}

func (rc *Receive) entry(channel byte) *channelState {
	c, ok := rc.channels[channel]
	if !ok {
		c = &channelState{}
		rc.channels[channel] = c
	}
	return c
}

// AcceptSequenced reports whether a sequenced frame with the given
// sequence_index on channel should be delivered now. A sequenced frame is
// dropped if its index is not strictly greater than the highest one already
// delivered on that channel (spec.md §3: "the receiver MUST drop any frame
// whose sequence_index is not greater than the largest sequence_index
// already delivered on that channel"; spec.md §4.3 step 4 repeats this as
// `sequence_index <= highest_delivered_sequence_index[channel]`).
func (rc *Receive) AcceptSequenced(channel byte, seq uint32) bool {
	c := rc.entry(channel)
	w := protocol.Wrap32(seq)
	if c.haveHighestSeq && !c.highestSequence.Less(w) {
		return false
	}
	c.highestSequence = w
	c.haveHighestSeq = true
	return true
}

// Push buffers an ordered frame's body under its order_index and drains
// every now-contiguous entry starting at nextExpected, returning them in
// delivery order (spec.md §4.3 step 5).
func (rc *Receive) Push(channel byte, index uint32, body []byte) [][]byte {
	c := rc.entry(channel)
	w := protocol.Wrap32(index)

	if w.Less(c.nextExpected) {
		// Already delivered; duplicate ordered frame, drop it.
		return nil
	}
	for _, p := range c.buffered {
		if p.index == w {
			return nil
		}
	}
	c.buffered = append(c.buffered, pending{index: w, body: body})

	var ready [][]byte
	for {
		found := -1
		for i, p := range c.buffered {
			if p.index == c.nextExpected {
				found = i
				break
			}
		}
		if found < 0 {
			break
		}
		ready = append(ready, c.buffered[found].body)
		c.buffered = append(c.buffered[:found], c.buffered[found+1:]...)
		c.nextExpected.Next()
	}
	return ready
}
