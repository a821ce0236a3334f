package protocol

import "fmt"

// FragmentInfo describes a frame's place within a fragmented compound: the
// total number of fragments (compound_size), the compound's id, and this
// frame's index within it. Every fragment of a compound shares compound_id
// and compound_size; indices run 0..compound_size with no duplicates
// (spec.md §3 invariants).
type FragmentInfo struct {
	CompoundSize  uint32
	CompoundID    uint16
	FragmentIndex uint32
}

// Frame is a single reliable unit carried inside a FramePacket. Optional
// fields are populated according to Reliability and whether the frame is a
// fragment, per spec.md §3.
type Frame struct {
	Reliability Reliability

	HasReliableIndex bool
	ReliableIndex    uint32

	HasSequenceIndex bool
	SequenceIndex    uint32

	HasOrder     bool
	OrderIndex   uint32
	OrderChannel byte

	Fragment *FragmentInfo

	Body []byte
}

// Size returns the encoded size of the frame in bytes, used to pack frames
// into FramePackets without exceeding the negotiated MTU.
func (f *Frame) Size() int {
	size := 1 + 2 // flags + bit-length
	if f.Reliability.IsReliable() {
		size += 3
	}
	if f.Reliability.IsSequenced() {
		size += 3
	}
	if f.Reliability.HasOrderChannel() {
		size += 4
	}
	if f.Fragment != nil {
		size += 10
	}
	size += len(f.Body)
	return size
}

// write encodes the frame onto w.
func (f *Frame) write(w *Writer) {
	flags := byte(f.Reliability) << 5
	if f.Fragment != nil {
		flags |= splitFlag
	}
	w.Byte(flags)
	w.Uint16(uint16(len(f.Body)) * 8)

	if f.Reliability.IsReliable() {
		w.Uint24(f.ReliableIndex)
	}
	if f.Reliability.IsSequenced() {
		w.Uint24(f.SequenceIndex)
	}
	if f.Reliability.HasOrderChannel() {
		w.Uint24(f.OrderIndex)
		w.Byte(f.OrderChannel)
	}
	if f.Fragment != nil {
		w.Uint32(f.Fragment.CompoundSize)
		w.Uint16(f.Fragment.CompoundID)
		w.Uint32(f.Fragment.FragmentIndex)
	}
	w.Raw(f.Body)
}

// readFrame decodes a single Frame from r. Only the payload declared by the
// bit-length header is consumed; callers loop until r is exhausted to decode
// every frame in a FramePacket.
func readFrame(r *Reader) (Frame, error) {
	var f Frame

	flags, err := r.Byte()
	if err != nil {
		return f, err
	}
	f.Reliability = Reliability((flags >> 5) & 0x07)
	fragmented := flags&splitFlag != 0

	bitLength, err := r.Uint16()
	if err != nil {
		return f, err
	}
	byteLength := int(bitLength) / 8

	if f.Reliability.IsReliable() {
		f.HasReliableIndex = true
		if f.ReliableIndex, err = r.Uint24(); err != nil {
			return f, err
		}
	}
	if f.Reliability.IsSequenced() {
		f.HasSequenceIndex = true
		if f.SequenceIndex, err = r.Uint24(); err != nil {
			return f, err
		}
	}
	if f.Reliability.HasOrderChannel() {
		f.HasOrder = true
		if f.OrderIndex, err = r.Uint24(); err != nil {
			return f, err
		}
		if f.OrderChannel, err = r.Byte(); err != nil {
			return f, err
		}
	}
	if fragmented {
		info := &FragmentInfo{}
		if info.CompoundSize, err = r.Uint32(); err != nil {
			return f, err
		}
		if info.CompoundID, err = r.Uint16(); err != nil {
			return f, err
		}
		if info.FragmentIndex, err = r.Uint32(); err != nil {
			return f, err
		}
		f.Fragment = info
	}

	body, err := r.Raw(byteLength)
	if err != nil {
		return f, fmt.Errorf("frame body: %w", err)
	}
	f.Body = append([]byte(nil), body...)
	return f, nil
}
