// Package queue holds the reliability-layer queues a Connection owns: the
// ACK and NACK dedup/record queues, the recovery queue retaining sent
// FramePackets for retransmission, and the fragment reassembly queue.
// Grounded on original_source/src/connection/queue/send.rs's SendQueue
// field layout (ack, fragment_queue, order_channels) and on the teacher's
// map-based ACKQueue/NACKQueue/RecoveryQueue fields in
// source/protocol/raknet.go's Session, translated into standalone types so
// a Connection composes them as plain fields (spec.md Design Notes: no
// back-references, queues hold only encoded bytes + sequence metadata).
package queue

import (
	"sync"

	"raknet-server-go/source/protocol"
)

// Ack tracks both halves of spec.md §3's AckQueue: seen is the permanent
// record of every sequence ever received, consulted by Has to dedupe
// inbound FramePackets regardless of whether it has already been flushed;
// pending is the subset not yet reported in an outbound ACK, cleared by
// Drain on every tick flush. The spec's single "AckQueue" text conflates
// these two roles — splitting them is required to satisfy both "Has dedupes
// forever" and "tick flush clears the queue" at once (see DESIGN.md).
type Ack struct {
	mu      sync.Mutex
	seen    map[protocol.Wrap24]struct{}
	pending map[protocol.Wrap24]struct{}
}

// NewAck returns an empty Ack queue.
func NewAck() *Ack {
	return &Ack{
		seen:    make(map[protocol.Wrap24]struct{}),
		pending: make(map[protocol.Wrap24]struct{}),
	}
}

// Has reports whether seq has ever been received, used to drop duplicate
// FramePackets (spec.md §3 invariants).
func (a *Ack) Has(seq protocol.Wrap24) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.seen[seq]
	return ok
}

// Add records seq as received and pending acknowledgment.
func (a *Ack) Add(seq protocol.Wrap24) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seen[seq] = struct{}{}
	a.pending[seq] = struct{}{}
}

// Empty reports whether there is nothing pending to flush.
func (a *Ack) Empty() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending) == 0
}

// Drain compacts and returns every pending sequence as Records, clearing
// only the pending set — Has continues to recognize these sequences
// afterward (spec.md §4.4 tick behavior: "If AckQueue is non-empty, emit
// one ACK containing all pending records and clear the queue").
func (a *Ack) Drain() []protocol.Record {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.pending) == 0 {
		return nil
	}
	seqs := make([]protocol.Wrap24, 0, len(a.pending))
	for s := range a.pending {
		seqs = append(seqs, s)
	}
	a.pending = make(map[protocol.Wrap24]struct{})
	return protocol.CompactRecords(seqs)
}
