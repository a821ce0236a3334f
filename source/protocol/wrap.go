package protocol

// Wrap24 is a 24-bit counter used for FramePacket sequence numbers, which
// wrap per spec.md §9. Arithmetic is modulo 2^24.
type Wrap24 uint32

const wrap24Mod = 1 << 24

// Next returns the counter's current value and advances the counter by one,
// wrapping at 2^24 (the classic post-increment generator used throughout
// the send pipeline: assign, then advance).
func (w *Wrap24) Next() Wrap24 {
	v := *w % wrap24Mod
	*w = (v + 1) % wrap24Mod
	return v
}

// Less reports whether a precedes b using modular-distance semantics: the
// value reachable by the smaller forward step (less than half the modulus
// away) is considered "earlier". This lets comparisons against "next
// expected" survive wraparound.
func (a Wrap24) Less(b Wrap24) bool {
	diff := (uint32(b) - uint32(a)) & (wrap24Mod - 1)
	return diff != 0 && diff < wrap24Mod/2
}

// Succ returns a+1 without mutating a, wrapping at 2^24.
func (a Wrap24) Succ() Wrap24 {
	return Wrap24((uint32(a) + 1) % wrap24Mod)
}

// Wrap32 is a 32-bit wrapping counter for reliable/order/sequence indices.
type Wrap32 uint32

// Next returns the pre-increment value and advances the counter, wrapping
// naturally on uint32 overflow.
func (w *Wrap32) Next() Wrap32 {
	v := *w
	*w = v + 1
	return v
}

// Less reports modular precedence the same way Wrap24.Less does, but over
// the full 32-bit modulus.
func (a Wrap32) Less(b Wrap32) bool {
	diff := uint32(b) - uint32(a)
	return diff != 0 && diff < (1<<31)
}

// Wrap16 is a 16-bit wrapping counter, used for fragment compound ids.
type Wrap16 uint16

// Next returns the pre-increment value and advances the counter, wrapping
// at 2^16.
func (w *Wrap16) Next() Wrap16 {
	v := *w
	*w = v + 1
	return v
}
