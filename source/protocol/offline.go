package protocol

import "net"

// Offline packets are exchanged before a Connection is promoted past the
// handshake (spec.md §4.2). Every offline packet after the identifier byte
// carries the 16-byte MAGIC constant verbatim; a mismatch is
// ErrMalformedPacket.

// UnconnectedPing is the client's discovery probe (spec.md §6, id 0x01).
type UnconnectedPing struct {
	Time       uint64
	ClientGUID uint64
}

func (p *UnconnectedPing) Encode() []byte {
	w := NewWriter()
	w.Byte(IDUnconnectedPing)
	w.Uint64(p.Time)
	w.Magic()
	w.Uint64(p.ClientGUID)
	return w.Bytes()
}

func DecodeUnconnectedPing(data []byte) (*UnconnectedPing, error) {
	r := NewReader(data)
	if _, err := r.Byte(); err != nil {
		return nil, err
	}
	p := &UnconnectedPing{}
	var err error
	if p.Time, err = r.Uint64(); err != nil {
		return nil, err
	}
	if err := r.Magic(); err != nil {
		return nil, err
	}
	if p.ClientGUID, err = r.Uint64(); err != nil {
		return nil, err
	}
	return p, nil
}

// UnconnectedPong replies to a ping with the server GUID and Motd (spec.md
// §6, id 0x1c). S1: "Server replies `1c <time:8> <serverGuid:8> MAGIC
// <motdLen:2> <motd>`".
type UnconnectedPong struct {
	Time       uint64
	ServerGUID uint64
	Motd       string
}

func (p *UnconnectedPong) Encode() []byte {
	w := NewWriter()
	w.Byte(IDUnconnectedPong)
	w.Uint64(p.Time)
	w.Uint64(p.ServerGUID)
	w.Magic()
	w.String(p.Motd)
	return w.Bytes()
}

func DecodeUnconnectedPong(data []byte) (*UnconnectedPong, error) {
	r := NewReader(data)
	if _, err := r.Byte(); err != nil {
		return nil, err
	}
	p := &UnconnectedPong{}
	var err error
	if p.Time, err = r.Uint64(); err != nil {
		return nil, err
	}
	if p.ServerGUID, err = r.Uint64(); err != nil {
		return nil, err
	}
	if err := r.Magic(); err != nil {
		return nil, err
	}
	if p.Motd, err = r.String(); err != nil {
		return nil, err
	}
	return p, nil
}

// OpenConnectionRequest1 proposes a protocol version and, via its padding
// length, the client's desired MTU (spec.md §4.2, id 0x05).
type OpenConnectionRequest1 struct {
	ProtocolVersion byte
	PaddingLength   int
}

func (p *OpenConnectionRequest1) Encode() []byte {
	w := NewWriter()
	w.Byte(IDOpenConnectionRequest1)
	w.Magic()
	w.Byte(p.ProtocolVersion)
	w.Raw(make([]byte, p.PaddingLength))
	return w.Bytes()
}

func DecodeOpenConnectionRequest1(data []byte) (*OpenConnectionRequest1, error) {
	r := NewReader(data)
	if _, err := r.Byte(); err != nil {
		return nil, err
	}
	if err := r.Magic(); err != nil {
		return nil, err
	}
	p := &OpenConnectionRequest1{}
	var err error
	if p.ProtocolVersion, err = r.Byte(); err != nil {
		return nil, err
	}
	p.PaddingLength = r.Remaining()
	return p, nil
}

// OpenConnectionReply1 answers with the negotiated MTU (spec.md §4.2, id
// 0x07).
type OpenConnectionReply1 struct {
	ServerGUID uint64
	Secure     bool
	MTU        uint16
}

func (p *OpenConnectionReply1) Encode() []byte {
	w := NewWriter()
	w.Byte(IDOpenConnectionReply1)
	w.Magic()
	w.Uint64(p.ServerGUID)
	if p.Secure {
		w.Byte(1)
	} else {
		w.Byte(0)
	}
	w.Uint16(p.MTU)
	return w.Bytes()
}

func DecodeOpenConnectionReply1(data []byte) (*OpenConnectionReply1, error) {
	r := NewReader(data)
	if _, err := r.Byte(); err != nil {
		return nil, err
	}
	if err := r.Magic(); err != nil {
		return nil, err
	}
	p := &OpenConnectionReply1{}
	var err error
	if p.ServerGUID, err = r.Uint64(); err != nil {
		return nil, err
	}
	secure, err := r.Byte()
	if err != nil {
		return nil, err
	}
	p.Secure = secure != 0
	if p.MTU, err = r.Uint16(); err != nil {
		return nil, err
	}
	return p, nil
}

// OpenConnectionRequest2 finalizes the MTU and carries the client GUID
// (spec.md §4.2, id 0x06).
type OpenConnectionRequest2 struct {
	ServerAddress *net.UDPAddr
	MTU           uint16
	ClientGUID    uint64
}

func (p *OpenConnectionRequest2) Encode() []byte {
	w := NewWriter()
	w.Byte(IDOpenConnectionRequest2)
	w.Magic()
	w.Address(p.ServerAddress)
	w.Uint16(p.MTU)
	w.Uint64(p.ClientGUID)
	return w.Bytes()
}

func DecodeOpenConnectionRequest2(data []byte) (*OpenConnectionRequest2, error) {
	r := NewReader(data)
	if _, err := r.Byte(); err != nil {
		return nil, err
	}
	if err := r.Magic(); err != nil {
		return nil, err
	}
	p := &OpenConnectionRequest2{}
	var err error
	if p.ServerAddress, err = r.Address(); err != nil {
		return nil, err
	}
	if p.MTU, err = r.Uint16(); err != nil {
		return nil, err
	}
	if p.ClientGUID, err = r.Uint64(); err != nil {
		return nil, err
	}
	return p, nil
}

// OpenConnectionReply2 confirms the finalized MTU; the Connection
// transitions to Connecting once this is sent (spec.md §4.2, id 0x08).
type OpenConnectionReply2 struct {
	ServerGUID    uint64
	ClientAddress *net.UDPAddr
	MTU           uint16
	Secure        bool
}

func (p *OpenConnectionReply2) Encode() []byte {
	w := NewWriter()
	w.Byte(IDOpenConnectionReply2)
	w.Magic()
	w.Uint64(p.ServerGUID)
	w.Address(p.ClientAddress)
	w.Uint16(p.MTU)
	if p.Secure {
		w.Byte(1)
	} else {
		w.Byte(0)
	}
	return w.Bytes()
}

func DecodeOpenConnectionReply2(data []byte) (*OpenConnectionReply2, error) {
	r := NewReader(data)
	if _, err := r.Byte(); err != nil {
		return nil, err
	}
	if err := r.Magic(); err != nil {
		return nil, err
	}
	p := &OpenConnectionReply2{}
	var err error
	if p.ServerGUID, err = r.Uint64(); err != nil {
		return nil, err
	}
	if p.ClientAddress, err = r.Address(); err != nil {
		return nil, err
	}
	if p.MTU, err = r.Uint16(); err != nil {
		return nil, err
	}
	secure, err := r.Byte()
	if err != nil {
		return nil, err
	}
	p.Secure = secure != 0
	return p, nil
}

// IncompatibleProtocolVersion is sent when a request's protocol byte does
// not match the server's configured version (spec.md §4.2, id 0x19).
type IncompatibleProtocolVersion struct {
	ServerProtocol byte
	ServerGUID     uint64
}

func (p *IncompatibleProtocolVersion) Encode() []byte {
	w := NewWriter()
	w.Byte(IDIncompatibleProtocolVersion)
	w.Byte(p.ServerProtocol)
	w.Magic()
	w.Uint64(p.ServerGUID)
	return w.Bytes()
}

func DecodeIncompatibleProtocolVersion(data []byte) (*IncompatibleProtocolVersion, error) {
	r := NewReader(data)
	if _, err := r.Byte(); err != nil {
		return nil, err
	}
	p := &IncompatibleProtocolVersion{}
	var err error
	if p.ServerProtocol, err = r.Byte(); err != nil {
		return nil, err
	}
	if err := r.Magic(); err != nil {
		return nil, err
	}
	if p.ServerGUID, err = r.Uint64(); err != nil {
		return nil, err
	}
	return p, nil
}
