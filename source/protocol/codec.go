package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
)

// Writer accumulates a wire-format buffer. All multi-byte integers are
// written big-endian (spec.md §4.1); 24-bit values occupy exactly three
// bytes.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns an empty Writer ready to accumulate a packet.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Byte appends a single byte.
func (w *Writer) Byte(b byte) {
	w.buf.WriteByte(b)
}

// Raw appends a raw byte slice verbatim.
func (w *Writer) Raw(b []byte) {
	w.buf.Write(b)
}

// Uint16 appends a big-endian uint16.
func (w *Writer) Uint16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

// Uint24 appends a big-endian 24-bit integer in the low three bytes of v.
func (w *Writer) Uint24(v uint32) {
	w.buf.WriteByte(byte(v >> 16))
	w.buf.WriteByte(byte(v >> 8))
	w.buf.WriteByte(byte(v))
}

// Uint32 appends a big-endian uint32.
func (w *Writer) Uint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

// Uint64 appends a big-endian uint64.
func (w *Writer) Uint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

// String appends a uint16-length-prefixed string.
func (w *Writer) String(s string) {
	w.Uint16(uint16(len(s)))
	w.buf.WriteString(s)
}

// Address appends a RakNet-encoded socket address: a 1-byte family (4 or 6)
// followed by the IPv4 layout (4 address bytes + 2-byte port) or the legacy
// RakNet IPv6 layout (family, port, flow, 16 address bytes, scope).
func (w *Writer) Address(addr *net.UDPAddr) {
	if ip4 := addr.IP.To4(); ip4 != nil {
		w.Byte(addressFamilyIPv4)
		w.Raw(ip4)
		w.Uint16(uint16(addr.Port))
		return
	}
	w.Byte(addressFamilyIPv6)
	w.Uint16(uint16(addr.Port))
	w.Uint32(0) // flow info, unused
	ip16 := addr.IP.To16()
	if ip16 == nil {
		ip16 = make([]byte, 16)
	}
	w.Raw(ip16)
	w.Uint32(0) // scope id, unused
}

// Reader consumes a wire-format buffer produced by Writer.
type Reader struct {
	buf []byte
	off int
}

// NewReader wraps data for sequential reads.
func NewReader(data []byte) *Reader {
	return &Reader{buf: data}
}

// Remaining reports how many unread bytes remain.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

// Byte reads a single byte.
func (r *Reader) Byte() (byte, error) {
	if r.Remaining() < 1 {
		return 0, fmt.Errorf("%w: expected 1 byte, have %d", ErrMalformedPacket, r.Remaining())
	}
	b := r.buf[r.off]
	r.off++
	return b, nil
}

// Raw reads n raw bytes.
func (r *Reader) Raw(n int) ([]byte, error) {
	if r.Remaining() < n {
		return nil, fmt.Errorf("%w: expected %d bytes, have %d", ErrMalformedPacket, n, r.Remaining())
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// Uint16 reads a big-endian uint16.
func (r *Reader) Uint16() (uint16, error) {
	b, err := r.Raw(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// Uint24 reads a big-endian 24-bit integer, widened to uint32.
func (r *Reader) Uint24() (uint32, error) {
	b, err := r.Raw(3)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), nil
}

// Uint32 reads a big-endian uint32.
func (r *Reader) Uint32() (uint32, error) {
	b, err := r.Raw(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// Uint64 reads a big-endian uint64.
func (r *Reader) Uint64() (uint64, error) {
	b, err := r.Raw(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// String reads a uint16-length-prefixed string.
func (r *Reader) String() (string, error) {
	n, err := r.Uint16()
	if err != nil {
		return "", err
	}
	b, err := r.Raw(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Address reads a RakNet-encoded socket address. IPv6 MUST parse per
// spec.md Non-goals (no IPv4-preference requirement on decode).
func (r *Reader) Address() (*net.UDPAddr, error) {
	family, err := r.Byte()
	if err != nil {
		return nil, err
	}
	switch family {
	case addressFamilyIPv4:
		ipBytes, err := r.Raw(4)
		if err != nil {
			return nil, err
		}
		port, err := r.Uint16()
		if err != nil {
			return nil, err
		}
		ip := make(net.IP, 4)
		copy(ip, ipBytes)
		return &net.UDPAddr{IP: ip, Port: int(port)}, nil
	case addressFamilyIPv6:
		port, err := r.Uint16()
		if err != nil {
			return nil, err
		}
		if _, err := r.Uint32(); err != nil { // flow info
			return nil, err
		}
		ipBytes, err := r.Raw(16)
		if err != nil {
			return nil, err
		}
		if _, err := r.Uint32(); err != nil { // scope id
			return nil, err
		}
		ip := make(net.IP, 16)
		copy(ip, ipBytes)
		return &net.UDPAddr{IP: ip, Port: int(port)}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported address family %d", ErrMalformedPacket, family)
	}
}

// Magic reads and validates the 16-byte OFFLINE_MESSAGE_DATA_ID.
func (r *Reader) Magic() error {
	b, err := r.Raw(len(MagicBytes))
	if err != nil {
		return err
	}
	if !bytes.Equal(b, MagicBytes[:]) {
		return fmt.Errorf("%w: magic mismatch", ErrMalformedPacket)
	}
	return nil
}

// Magic appends the 16-byte OFFLINE_MESSAGE_DATA_ID.
func (w *Writer) Magic() {
	w.Raw(MagicBytes[:])
}
