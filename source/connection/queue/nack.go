package queue

import (
	"sync"

	"raknet-server-go/source/protocol"
)

// Nack is the set of sequences observed as missing (a gap between the last
// contiguous received sequence and a newly-seen higher one). A sequence
// appears here only while it has not yet been seen in Ack; once ACKed it is
// removed (spec.md §3 invariants).
type Nack struct {
	mu   sync.Mutex
	seen map[protocol.Wrap24]struct{}
}

// NewNack returns an empty Nack queue.
func NewNack() *Nack {
	return &Nack{seen: make(map[protocol.Wrap24]struct{})}
}

// Add marks seq as missing.
func (n *Nack) Add(seq protocol.Wrap24) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seen[seq] = struct{}{}
}

// Remove clears seq, called once it has actually been received.
func (n *Nack) Remove(seq protocol.Wrap24) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.seen, seq)
}

// Empty reports whether there is nothing pending to flush.
func (n *Nack) Empty() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.seen) == 0
}

// Drain compacts and returns every pending sequence as Records, clearing the
// queue (spec.md §4.4: "If NackQueue is non-empty, emit one NACK ... and
// clear the queue").
func (n *Nack) Drain() []protocol.Record {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.seen) == 0 {
		return nil
	}
	seqs := make([]protocol.Wrap24, 0, len(n.seen))
	for s := range n.seen {
		seqs = append(seqs, s)
	}
	n.seen = make(map[protocol.Wrap24]struct{})
	return protocol.CompactRecords(seqs)
}
