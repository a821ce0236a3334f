package connection

import (
	"net"
	"sync"
)

// captureSender is a Sender that stores every datagram written to it, used
// throughout this package's tests in place of a real UDP socket.
type captureSender struct {
	mu      sync.Mutex
	written [][]byte
}

func (s *captureSender) WriteTo(b []byte, addr *net.UDPAddr) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := append([]byte(nil), b...)
	s.written = append(s.written, cp)
	return len(b), nil
}

func (s *captureSender) last() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.written) == 0 {
		return nil
	}
	return s.written[len(s.written)-1]
}

func (s *captureSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.written)
}

func (s *captureSender) all() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.written))
	copy(out, s.written)
	return out
}

var testAddr = &net.UDPAddr{IP: net.ParseIP("127.0.0.1").To4(), Port: 19132}
