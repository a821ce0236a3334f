package queue

import (
	"testing"
	"time"

	"raknet-server-go/source/protocol"
)

func TestRecoveryStoreGetRemove(t *testing.T) {
	r := NewRecovery()
	now := time.Now()
	r.Store(1, []byte("hello"), now)

	entry, ok := r.Get(1)
	if !ok {
		t.Fatal("expected entry to be retained")
	}
	if string(entry.Encoded) != "hello" {
		t.Fatalf("got %q", entry.Encoded)
	}

	r.Remove(1)
	if _, ok := r.Get(1); ok {
		t.Fatal("expected entry to be gone after Remove")
	}
}

func TestRecoveryStaleAndTouch(t *testing.T) {
	r := NewRecovery()
	base := time.Now()
	r.Store(protocol.Wrap24(1), []byte("a"), base)

	if stale := r.Stale(time.Second, base); len(stale) != 0 {
		t.Fatalf("expected nothing stale immediately, got %d", len(stale))
	}

	later := base.Add(2 * time.Second)
	stale := r.Stale(time.Second, later)
	if len(stale) != 1 {
		t.Fatalf("expected 1 stale entry, got %d", len(stale))
	}
	if stale[0].Retries() != 0 {
		t.Fatalf("expected 0 retries before Touch, got %d", stale[0].Retries())
	}

	r.Touch(1, later)
	entry, _ := r.Get(1)
	if entry.Retries() != 1 {
		t.Fatalf("expected 1 retry after Touch, got %d", entry.Retries())
	}
	if stale := r.Stale(time.Second, later); len(stale) != 0 {
		t.Fatalf("Touch should reset the staleness clock, got %d stale", len(stale))
	}
}

func TestRecoveryLen(t *testing.T) {
	r := NewRecovery()
	now := time.Now()
	r.Store(1, nil, now)
	r.Store(2, nil, now)
	if r.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", r.Len())
	}
}
