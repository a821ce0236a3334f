package protocol

import (
	"net"
	"testing"
)

func TestUnconnectedPingRoundTrip(t *testing.T) {
	p := &UnconnectedPing{Time: 123456, ClientGUID: 0xfeedface}
	got, err := DecodeUnconnectedPing(p.Encode())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if *got != *p {
		t.Fatalf("got %+v, want %+v", got, p)
	}
}

func TestUnconnectedPongRoundTrip(t *testing.T) {
	p := &UnconnectedPong{Time: 1, ServerGUID: 2, Motd: "A RakNet Server"}
	got, err := DecodeUnconnectedPong(p.Encode())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if *got != *p {
		t.Fatalf("got %+v, want %+v", got, p)
	}
}

func TestOpenConnectionRequest1CarriesPaddingAsMTUSignal(t *testing.T) {
	req := &OpenConnectionRequest1{ProtocolVersion: RAKNET_PROTOCOL_VERSION, PaddingLength: 1400}
	got, err := DecodeOpenConnectionRequest1(req.Encode())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ProtocolVersion != req.ProtocolVersion {
		t.Fatalf("protocol version: got %d want %d", got.ProtocolVersion, req.ProtocolVersion)
	}
	if got.PaddingLength != 1400 {
		t.Fatalf("padding length: got %d want 1400", got.PaddingLength)
	}
}

func TestOpenConnectionReply1RoundTrip(t *testing.T) {
	r := &OpenConnectionReply1{ServerGUID: 42, Secure: false, MTU: 1400}
	got, err := DecodeOpenConnectionReply1(r.Encode())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if *got != *r {
		t.Fatalf("got %+v, want %+v", got, r)
	}
}

func TestOpenConnectionRequest2RoundTrip(t *testing.T) {
	req := &OpenConnectionRequest2{
		ServerAddress: &net.UDPAddr{IP: net.ParseIP("127.0.0.1").To4(), Port: 19132},
		MTU:           1400,
		ClientGUID:    0x1122334455,
	}
	got, err := DecodeOpenConnectionRequest2(req.Encode())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.MTU != req.MTU || got.ClientGUID != req.ClientGUID {
		t.Fatalf("got %+v, want %+v", got, req)
	}
	if !got.ServerAddress.IP.Equal(req.ServerAddress.IP) || got.ServerAddress.Port != req.ServerAddress.Port {
		t.Fatalf("address mismatch: got %v want %v", got.ServerAddress, req.ServerAddress)
	}
}

func TestOpenConnectionReply2RoundTrip(t *testing.T) {
	r := &OpenConnectionReply2{
		ServerGUID:    7,
		ClientAddress: &net.UDPAddr{IP: net.ParseIP("10.0.0.1").To4(), Port: 7777},
		MTU:           1200,
		Secure:        false,
	}
	got, err := DecodeOpenConnectionReply2(r.Encode())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.MTU != r.MTU || got.ServerGUID != r.ServerGUID {
		t.Fatalf("got %+v, want %+v", got, r)
	}
}

func TestIncompatibleProtocolVersionRoundTrip(t *testing.T) {
	p := &IncompatibleProtocolVersion{ServerProtocol: RAKNET_PROTOCOL_VERSION, ServerGUID: 99}
	got, err := DecodeIncompatibleProtocolVersion(p.Encode())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if *got != *p {
		t.Fatalf("got %+v, want %+v", got, p)
	}
}
