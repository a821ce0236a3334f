package protocol

import "net"

// systemAddressCount is the number of dummy system addresses carried in
// Connection Request Accepted / New Incoming Connection, matching the
// fixed-size system address list called out in the original implementation
// ("20 system addresses").
const systemAddressCount = 20

var zeroAddr = &net.UDPAddr{IP: net.IPv4zero, Port: 0}

// ConnectionRequest is the online handshake packet sent over a reliable
// frame once Open Connection Reply 2 has been received (spec.md §4.2, id
// 0x09).
type ConnectionRequest struct {
	ClientGUID uint64
	Time       uint64
	Secure     bool
}

func (p *ConnectionRequest) Encode() []byte {
	w := NewWriter()
	w.Byte(IDConnectionRequest)
	w.Uint64(p.ClientGUID)
	w.Uint64(p.Time)
	if p.Secure {
		w.Byte(1)
	} else {
		w.Byte(0)
	}
	return w.Bytes()
}

func DecodeConnectionRequest(data []byte) (*ConnectionRequest, error) {
	r := NewReader(data)
	if _, err := r.Byte(); err != nil {
		return nil, err
	}
	p := &ConnectionRequest{}
	var err error
	if p.ClientGUID, err = r.Uint64(); err != nil {
		return nil, err
	}
	if p.Time, err = r.Uint64(); err != nil {
		return nil, err
	}
	secure, err := r.Byte()
	if err != nil {
		return nil, err
	}
	p.Secure = secure != 0
	return p, nil
}

// ConnectionRequestAccepted is the server's reply to ConnectionRequest
// (spec.md §4.2, id 0x10).
type ConnectionRequestAccepted struct {
	ClientAddress     *net.UDPAddr
	SystemIndex       uint16
	RequestTimestamp  uint64
	AcceptedTimestamp uint64
}

func (p *ConnectionRequestAccepted) Encode() []byte {
	w := NewWriter()
	w.Byte(IDConnectionRequestAccepted)
	w.Address(p.ClientAddress)
	w.Uint16(p.SystemIndex)
	for i := 0; i < systemAddressCount; i++ {
		w.Address(zeroAddr)
	}
	w.Uint64(p.RequestTimestamp)
	w.Uint64(p.AcceptedTimestamp)
	return w.Bytes()
}

func DecodeConnectionRequestAccepted(data []byte) (*ConnectionRequestAccepted, error) {
	r := NewReader(data)
	if _, err := r.Byte(); err != nil {
		return nil, err
	}
	p := &ConnectionRequestAccepted{}
	var err error
	if p.ClientAddress, err = r.Address(); err != nil {
		return nil, err
	}
	if p.SystemIndex, err = r.Uint16(); err != nil {
		return nil, err
	}
	for i := 0; i < systemAddressCount; i++ {
		if _, err := r.Address(); err != nil {
			return nil, err
		}
	}
	if p.RequestTimestamp, err = r.Uint64(); err != nil {
		return nil, err
	}
	if p.AcceptedTimestamp, err = r.Uint64(); err != nil {
		return nil, err
	}
	return p, nil
}

// NewIncomingConnection confirms the client has accepted the handshake; its
// receipt promotes the Connection to Connected (spec.md §4.2, id 0x13).
type NewIncomingConnection struct {
	ServerAddress     *net.UDPAddr
	RequestTimestamp  uint64
	AcceptedTimestamp uint64
}

func (p *NewIncomingConnection) Encode() []byte {
	w := NewWriter()
	w.Byte(IDNewIncomingConnection)
	w.Address(p.ServerAddress)
	for i := 0; i < systemAddressCount; i++ {
		w.Address(zeroAddr)
	}
	w.Uint64(p.RequestTimestamp)
	w.Uint64(p.AcceptedTimestamp)
	return w.Bytes()
}

func DecodeNewIncomingConnection(data []byte) (*NewIncomingConnection, error) {
	r := NewReader(data)
	if _, err := r.Byte(); err != nil {
		return nil, err
	}
	p := &NewIncomingConnection{}
	var err error
	if p.ServerAddress, err = r.Address(); err != nil {
		return nil, err
	}
	for i := 0; i < systemAddressCount; i++ {
		if _, err := r.Address(); err != nil {
			return nil, err
		}
	}
	if p.RequestTimestamp, err = r.Uint64(); err != nil {
		return nil, err
	}
	if p.AcceptedTimestamp, err = r.Uint64(); err != nil {
		return nil, err
	}
	return p, nil
}

// ConnectedPing is a keepalive sent over the reliable channel once connected
// (spec.md §4.2, id 0x00).
type ConnectedPing struct {
	Time uint64
}

func (p *ConnectedPing) Encode() []byte {
	w := NewWriter()
	w.Byte(IDConnectedPing)
	w.Uint64(p.Time)
	return w.Bytes()
}

func DecodeConnectedPing(data []byte) (*ConnectedPing, error) {
	r := NewReader(data)
	if _, err := r.Byte(); err != nil {
		return nil, err
	}
	p := &ConnectedPing{}
	var err error
	if p.Time, err = r.Uint64(); err != nil {
		return nil, err
	}
	return p, nil
}

// ConnectedPong answers a ConnectedPing (spec.md §4.2, id 0x03).
type ConnectedPong struct {
	PingTime uint64
	PongTime uint64
}

func (p *ConnectedPong) Encode() []byte {
	w := NewWriter()
	w.Byte(IDConnectedPong)
	w.Uint64(p.PingTime)
	w.Uint64(p.PongTime)
	return w.Bytes()
}

func DecodeConnectedPong(data []byte) (*ConnectedPong, error) {
	r := NewReader(data)
	if _, err := r.Byte(); err != nil {
		return nil, err
	}
	p := &ConnectedPong{}
	var err error
	if p.PingTime, err = r.Uint64(); err != nil {
		return nil, err
	}
	if p.PongTime, err = r.Uint64(); err != nil {
		return nil, err
	}
	return p, nil
}

// Disconnect notifies the peer of a graceful close (spec.md §4.2/§3
// Lifecycle, id 0x15). It carries no payload beyond the identifier byte.
type Disconnect struct{}

func (Disconnect) Encode() []byte {
	return []byte{IDDisconnectionNotification}
}
