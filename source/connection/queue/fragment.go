package queue

import (
	"time"

	"raknet-server-go/source/protocol"
)

// reassemblyTimeout is how long a partially-received compound is retained
// before being dropped (spec.md §9 edge cases: fragments belonging to a
// compound that never completes are evicted after 30s).
const reassemblyTimeout = 30 * time.Second

type compound struct {
	size     uint32
	parts    map[uint32][]byte
	template protocol.Frame
	started  time.Time
}

// Fragment is the receive-side reassembly table: a map from compound_id to
// the fragments seen so far, becoming reassemblable once the stored index
// count equals the compound size (spec.md §3 FragmentQueue, grounded on
// original_source/src/connection/queue/send.rs's FragmentQueue-on-receive
// counterpart).
type Fragment struct {
	compounds map[uint16]*compound
}

// NewFragment returns an empty Fragment reassembly queue.
func NewFragment() *Fragment {
	return &Fragment{compounds: make(map[uint16]*compound)}
}

// Add stores one fragment frame and, once its compound is complete, returns
// the reassembled frame with Fragment cleared and Body set to the
// concatenation of all parts in index order. now is used to stamp new
// compounds for later eviction via Evict.
func (f *Fragment) Add(frame protocol.Frame, now time.Time) (protocol.Frame, bool) {
	info := frame.Fragment
	c, ok := f.compounds[info.CompoundID]
	if !ok {
		c = &compound{
			size:     info.CompoundSize,
			parts:    make(map[uint32][]byte),
			template: frame,
			started:  now,
		}
		f.compounds[info.CompoundID] = c
	}
	c.parts[info.FragmentIndex] = frame.Body

	if uint32(len(c.parts)) < c.size {
		return protocol.Frame{}, false
	}

	body := make([]byte, 0)
	for i := uint32(0); i < c.size; i++ {
		part, ok := c.parts[i]
		if !ok {
			// An index outside 0..size-1 was stored in place of a missing
			// one; treat as still incomplete.
			return protocol.Frame{}, false
		}
		body = append(body, part...)
	}
	delete(f.compounds, info.CompoundID)

	out := c.template
	out.Fragment = nil
	out.Body = body
	return out, true
}

// Evict drops any compound that has been incomplete for longer than
// reassemblyTimeout, returning how many were dropped.
func (f *Fragment) Evict(now time.Time) int {
	dropped := 0
	for id, c := range f.compounds {
		if now.Sub(c.started) >= reassemblyTimeout {
			delete(f.compounds, id)
			dropped++
		}
	}
	return dropped
}

// Len reports how many compounds are currently pending reassembly.
func (f *Fragment) Len() int {
	return len(f.compounds)
}
