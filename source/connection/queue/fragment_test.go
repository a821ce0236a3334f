package queue

import (
	"bytes"
	"testing"
	"time"

	"raknet-server-go/source/protocol"
)

func TestFragmentReassemblesInOrder(t *testing.T) {
	f := NewFragment()
	now := time.Now()

	parts := [][]byte{[]byte("AAA"), []byte("BBB"), []byte("CCC")}
	for i, body := range parts {
		frame := protocol.Frame{
			Reliability: protocol.ReliableOrdered,
			Fragment: &protocol.FragmentInfo{
				CompoundSize:  uint32(len(parts)),
				CompoundID:    7,
				FragmentIndex: uint32(i),
			},
			Body: body,
		}
		reassembled, complete := f.Add(frame, now)
		if i < len(parts)-1 {
			if complete {
				t.Fatalf("should not be complete after fragment %d", i)
			}
			continue
		}
		if !complete {
			t.Fatal("expected completion on last fragment")
		}
		want := bytes.Join(parts, nil)
		if !bytes.Equal(reassembled.Body, want) {
			t.Fatalf("got %q, want %q", reassembled.Body, want)
		}
		if reassembled.Fragment != nil {
			t.Fatal("reassembled frame should have Fragment cleared")
		}
	}
	if f.Len() != 0 {
		t.Fatalf("compound should be removed once complete, got %d pending", f.Len())
	}
}

func TestFragmentReassemblesOutOfOrder(t *testing.T) {
	f := NewFragment()
	now := time.Now()

	mk := func(idx int, body string) protocol.Frame {
		return protocol.Frame{
			Fragment: &protocol.FragmentInfo{CompoundSize: 3, CompoundID: 1, FragmentIndex: uint32(idx)},
			Body:     []byte(body),
		}
	}

	if _, complete := f.Add(mk(2, "C"), now); complete {
		t.Fatal("should not complete with only 1 of 3 parts")
	}
	if _, complete := f.Add(mk(0, "A"), now); complete {
		t.Fatal("should not complete with only 2 of 3 parts")
	}
	reassembled, complete := f.Add(mk(1, "B"), now)
	if !complete {
		t.Fatal("expected completion after all 3 parts arrive")
	}
	if string(reassembled.Body) != "ABC" {
		t.Fatalf("got %q, want ABC", reassembled.Body)
	}
}

func TestFragmentEvictsStaleCompounds(t *testing.T) {
	f := NewFragment()
	now := time.Now()
	f.Add(protocol.Frame{
		Fragment: &protocol.FragmentInfo{CompoundSize: 2, CompoundID: 9, FragmentIndex: 0},
		Body:     []byte("x"),
	}, now)

	if dropped := f.Evict(now); dropped != 0 {
		t.Fatalf("should not evict before timeout, got %d dropped", dropped)
	}
	later := now.Add(reassemblyTimeout + time.Second)
	if dropped := f.Evict(later); dropped != 1 {
		t.Fatalf("expected 1 eviction after timeout, got %d", dropped)
	}
	if f.Len() != 0 {
		t.Fatalf("expected queue empty after eviction, got %d", f.Len())
	}
}
