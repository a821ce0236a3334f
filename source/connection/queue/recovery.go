package queue

import (
	"sort"
	"sync"
	"time"

	"raknet-server-go/source/protocol"
)

// Entry is one sent-but-unacknowledged FramePacket retained for possible
// retransmission. Encoded is the original wire bytes: on NACK or timeout the
// stored bytes are resent unchanged, under the same sequence number (spec.md
// §3: RecoveryQueue entries "are NOT renumbered").
type Entry struct {
	Sequence protocol.Wrap24
	Encoded  []byte
	sentAt   time.Time
	retries  int
}

// Recovery is the map from sent FramePacket.sequence to the retained entry,
// used for retransmission on NACK or on a tick-detected timeout (spec.md §3
// RecoveryQueue, §4.4, §4.6).
type Recovery struct {
	mu      sync.Mutex
	entries map[protocol.Wrap24]*Entry
}

// NewRecovery returns an empty Recovery queue.
func NewRecovery() *Recovery {
	return &Recovery{entries: make(map[protocol.Wrap24]*Entry)}
}

// Store retains encoded under seq, stamped with the current time.
func (r *Recovery) Store(seq protocol.Wrap24, encoded []byte, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[seq] = &Entry{Sequence: seq, Encoded: encoded, sentAt: now}
}

// Remove drops seq, called when an ACK references it.
func (r *Recovery) Remove(seq protocol.Wrap24) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, seq)
}

// Get returns the retained entry for seq, if any, used by the NACK handler
// to look up the original bytes before resending.
func (r *Recovery) Get(seq protocol.Wrap24) (*Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[seq]
	return e, ok
}

// Touch refreshes an entry's sentAt and increments its retry count, called
// when its bytes are retransmitted (on NACK or on timeout).
func (r *Recovery) Touch(seq protocol.Wrap24, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[seq]; ok {
		e.sentAt = now
		e.retries++
	}
}

// Stale returns every entry older than timeout, ordered by sequence. The
// caller is expected to retransmit each and call Touch (or Remove, once
// retries exceeds a connection's max-retries budget) for each returned
// entry (spec.md §4.4 tick behavior).
func (r *Recovery) Stale(timeout time.Duration, now time.Time) []*Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var stale []*Entry
	for _, e := range r.entries {
		if now.Sub(e.sentAt) >= timeout {
			stale = append(stale, e)
		}
	}
	sort.Slice(stale, func(i, j int) bool { return stale[i].Sequence.Less(stale[j].Sequence) })
	return stale
}

// Retries reports how many retransmission attempts have been made for seq.
func (e *Entry) Retries() int { return e.retries }

// Len reports how many entries are currently retained.
func (r *Recovery) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
