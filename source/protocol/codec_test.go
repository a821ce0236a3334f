package protocol

import (
	"net"
	"testing"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	w := NewWriter()
	w.Byte(0x42)
	w.Uint16(0xBEEF)
	w.Uint24(0xABCDEF)
	w.Uint32(0xDEADBEEF)
	w.Uint64(0x0102030405060708)
	w.String("hello raknet")
	w.Magic()

	r := NewReader(w.Bytes())

	if b, err := r.Byte(); err != nil || b != 0x42 {
		t.Fatalf("Byte: got %x, %v", b, err)
	}
	if v, err := r.Uint16(); err != nil || v != 0xBEEF {
		t.Fatalf("Uint16: got %x, %v", v, err)
	}
	if v, err := r.Uint24(); err != nil || v != 0xABCDEF {
		t.Fatalf("Uint24: got %x, %v", v, err)
	}
	if v, err := r.Uint32(); err != nil || v != 0xDEADBEEF {
		t.Fatalf("Uint32: got %x, %v", v, err)
	}
	if v, err := r.Uint64(); err != nil || v != 0x0102030405060708 {
		t.Fatalf("Uint64: got %x, %v", v, err)
	}
	if s, err := r.String(); err != nil || s != "hello raknet" {
		t.Fatalf("String: got %q, %v", s, err)
	}
	if err := r.Magic(); err != nil {
		t.Fatalf("Magic: %v", err)
	}
	if r.Remaining() != 0 {
		t.Fatalf("expected buffer fully consumed, %d bytes left", r.Remaining())
	}
}

func TestReaderTruncated(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02})
	if _, err := r.Uint32(); err == nil {
		t.Fatal("expected error reading past end of buffer")
	}
}

func TestAddressRoundTripIPv4(t *testing.T) {
	addr := &net.UDPAddr{IP: net.ParseIP("192.168.1.42").To4(), Port: 19132}
	w := NewWriter()
	w.Address(addr)

	r := NewReader(w.Bytes())
	got, err := r.Address()
	if err != nil {
		t.Fatalf("Address: %v", err)
	}
	if !got.IP.Equal(addr.IP) || got.Port != addr.Port {
		t.Fatalf("got %v, want %v", got, addr)
	}
}

func TestAddressRoundTripIPv6(t *testing.T) {
	addr := &net.UDPAddr{IP: net.ParseIP("::1"), Port: 7777}
	w := NewWriter()
	w.Address(addr)

	r := NewReader(w.Bytes())
	got, err := r.Address()
	if err != nil {
		t.Fatalf("Address: %v", err)
	}
	if !got.IP.Equal(addr.IP) || got.Port != addr.Port {
		t.Fatalf("got %v, want %v", got, addr)
	}
}

func TestMagicMismatch(t *testing.T) {
	r := NewReader(make([]byte, 16))
	if err := r.Magic(); err == nil {
		t.Fatal("expected magic mismatch error")
	}
}
