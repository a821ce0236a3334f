package protocol

import (
	"bytes"
	"testing"
)

func TestFrameRoundTripUnreliable(t *testing.T) {
	f := Frame{Reliability: Unreliable, Body: []byte("ping")}
	w := NewWriter()
	f.write(w)

	got, err := readFrame(NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("readFrame: %v", err)
	}
	if got.Reliability != Unreliable || !bytes.Equal(got.Body, f.Body) {
		t.Fatalf("got %+v", got)
	}
	if got.HasReliableIndex || got.HasSequenceIndex || got.HasOrder {
		t.Fatalf("unreliable frame should carry no index fields: %+v", got)
	}
}

func TestFrameRoundTripReliableOrdered(t *testing.T) {
	f := Frame{
		Reliability:  ReliableOrdered,
		Body:         []byte("payload"),
	}
	f.HasReliableIndex = true
	f.ReliableIndex = 12345
	f.HasOrder = true
	f.OrderIndex = 7
	f.OrderChannel = 3

	w := NewWriter()
	f.write(w)

	got, err := readFrame(NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("readFrame: %v", err)
	}
	if got.ReliableIndex != 12345 {
		t.Fatalf("reliable index: got %d", got.ReliableIndex)
	}
	if got.OrderIndex != 7 || got.OrderChannel != 3 {
		t.Fatalf("order fields: got index=%d channel=%d", got.OrderIndex, got.OrderChannel)
	}
	if !bytes.Equal(got.Body, f.Body) {
		t.Fatalf("body mismatch: got %q", got.Body)
	}
}

func TestFrameRoundTripUnreliableSequencedCarriesOrderChannel(t *testing.T) {
	f := Frame{
		Reliability:      UnreliableSequenced,
		HasSequenceIndex: true,
		SequenceIndex:    9,
		HasOrder:         true,
		OrderChannel:     5,
		Body:             []byte("tick"),
	}

	w := NewWriter()
	f.write(w)

	got, err := readFrame(NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("readFrame: %v", err)
	}
	if got.SequenceIndex != 9 {
		t.Fatalf("sequence index: got %d", got.SequenceIndex)
	}
	if !got.HasOrder {
		t.Fatal("a sequenced frame must still carry the order_channel wire slot")
	}
	if got.OrderChannel != 5 {
		t.Fatalf("order channel: got %d, want 5 (sequenced frames are not all channel 0)", got.OrderChannel)
	}
}

func TestFrameRoundTripFragment(t *testing.T) {
	f := Frame{
		Reliability: ReliableOrdered,
		Fragment: &FragmentInfo{
			CompoundSize:  4,
			CompoundID:    99,
			FragmentIndex: 2,
		},
		Body: []byte("chunk"),
	}
	f.HasReliableIndex = true
	f.HasOrder = true

	w := NewWriter()
	f.write(w)

	got, err := readFrame(NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("readFrame: %v", err)
	}
	if got.Fragment == nil {
		t.Fatal("expected fragment info to survive round trip")
	}
	if got.Fragment.CompoundSize != 4 || got.Fragment.CompoundID != 99 || got.Fragment.FragmentIndex != 2 {
		t.Fatalf("fragment info: got %+v", got.Fragment)
	}
}

func TestFramePacketEncodeDecode(t *testing.T) {
	fp := &FramePacket{
		Sequence: Wrap24(42),
		Frames: []Frame{
			{Reliability: Unreliable, Body: []byte("a")},
			{Reliability: Reliable, HasReliableIndex: true, ReliableIndex: 1, Body: []byte("b")},
		},
	}
	data := fp.Encode()
	if !IsFramePacket(data[0]) {
		t.Fatal("encoded datagram should carry the valid-frame bit")
	}

	got, err := DecodeFramePacket(data)
	if err != nil {
		t.Fatalf("DecodeFramePacket: %v", err)
	}
	if got.Sequence != fp.Sequence {
		t.Fatalf("sequence: got %d want %d", got.Sequence, fp.Sequence)
	}
	if len(got.Frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(got.Frames))
	}
	if !bytes.Equal(got.Frames[0].Body, []byte("a")) || !bytes.Equal(got.Frames[1].Body, []byte("b")) {
		t.Fatalf("frame bodies mismatch: %+v", got.Frames)
	}
}

func TestDecodeFramePacketRejectsMissingValidFlag(t *testing.T) {
	_, err := DecodeFramePacket([]byte{0x00, 0x01, 0x02, 0x03})
	if err == nil {
		t.Fatal("expected error for datagram without the valid-frame bit")
	}
}
