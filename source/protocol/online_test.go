package protocol

import (
	"net"
	"testing"
)

func TestConnectionRequestRoundTrip(t *testing.T) {
	req := &ConnectionRequest{ClientGUID: 0xabc, Time: 555, Secure: false}
	got, err := DecodeConnectionRequest(req.Encode())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if *got != *req {
		t.Fatalf("got %+v, want %+v", got, req)
	}
}

func TestConnectionRequestAcceptedRoundTrip(t *testing.T) {
	a := &ConnectionRequestAccepted{
		ClientAddress:     &net.UDPAddr{IP: net.ParseIP("172.16.0.5").To4(), Port: 12345},
		SystemIndex:       0,
		RequestTimestamp:  10,
		AcceptedTimestamp: 20,
	}
	got, err := DecodeConnectionRequestAccepted(a.Encode())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.RequestTimestamp != a.RequestTimestamp || got.AcceptedTimestamp != a.AcceptedTimestamp {
		t.Fatalf("got %+v, want %+v", got, a)
	}
	if !got.ClientAddress.IP.Equal(a.ClientAddress.IP) || got.ClientAddress.Port != a.ClientAddress.Port {
		t.Fatalf("address mismatch: got %v want %v", got.ClientAddress, a.ClientAddress)
	}
}

func TestNewIncomingConnectionRoundTrip(t *testing.T) {
	n := &NewIncomingConnection{
		ServerAddress:     &net.UDPAddr{IP: net.ParseIP("127.0.0.1").To4(), Port: 19132},
		RequestTimestamp:  1,
		AcceptedTimestamp: 2,
	}
	got, err := DecodeNewIncomingConnection(n.Encode())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.RequestTimestamp != n.RequestTimestamp || got.AcceptedTimestamp != n.AcceptedTimestamp {
		t.Fatalf("got %+v, want %+v", got, n)
	}
}

func TestConnectedPingPongRoundTrip(t *testing.T) {
	ping := &ConnectedPing{Time: 100}
	gotPing, err := DecodeConnectedPing(ping.Encode())
	if err != nil {
		t.Fatalf("decode ping: %v", err)
	}
	if *gotPing != *ping {
		t.Fatalf("got %+v, want %+v", gotPing, ping)
	}

	pong := &ConnectedPong{PingTime: 100, PongTime: 150}
	gotPong, err := DecodeConnectedPong(pong.Encode())
	if err != nil {
		t.Fatalf("decode pong: %v", err)
	}
	if *gotPong != *pong {
		t.Fatalf("got %+v, want %+v", gotPong, pong)
	}
}

func TestDisconnectEncodesSingleByte(t *testing.T) {
	data := Disconnect{}.Encode()
	if len(data) != 1 || data[0] != IDDisconnectionNotification {
		t.Fatalf("got %v, want single byte %x", data, IDDisconnectionNotification)
	}
}
