package queue

import (
	"testing"

	"raknet-server-go/source/protocol"
)

func TestNackAddAndRemove(t *testing.T) {
	n := NewNack()
	n.Add(protocol.Wrap24(10))
	n.Add(protocol.Wrap24(11))
	if n.Empty() {
		t.Fatal("expected pending entries")
	}
	n.Remove(10)

	records := n.Drain()
	if len(records) != 1 || records[0].Start != 11 {
		t.Fatalf("expected only sequence 11 remaining, got %+v", records)
	}
	if !n.Empty() {
		t.Fatal("Drain should clear the queue")
	}
}

func TestNackDrainEmptyReturnsNil(t *testing.T) {
	n := NewNack()
	if records := n.Drain(); records != nil {
		t.Fatalf("expected nil from draining an empty queue, got %+v", records)
	}
}
