package queue

import (
	"testing"

	"raknet-server-go/source/protocol"
)

func TestAckHasPersistsAcrossDrain(t *testing.T) {
	a := NewAck()
	a.Add(protocol.Wrap24(5))

	if !a.Has(5) {
		t.Fatal("expected Has(5) to be true right after Add")
	}

	records := a.Drain()
	if len(records) != 1 {
		t.Fatalf("expected 1 drained record, got %d", len(records))
	}

	if !a.Has(5) {
		t.Fatal("Has should still report true after Drain: dedup memory must outlive tick flush")
	}
	if !a.Empty() {
		t.Fatal("pending set should be empty immediately after Drain")
	}
}

func TestAckDrainClearsPendingOnly(t *testing.T) {
	a := NewAck()
	a.Add(1)
	a.Add(2)
	if a.Drain() == nil {
		t.Fatal("expected records from first drain")
	}
	if records := a.Drain(); records != nil {
		t.Fatalf("second drain should be empty, got %+v", records)
	}
	a.Add(3)
	records := a.Drain()
	if len(records) != 1 {
		t.Fatalf("expected only the newly-added sequence, got %+v", records)
	}
}
