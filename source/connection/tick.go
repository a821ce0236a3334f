package connection

import (
	"time"

	"raknet-server-go/source/protocol"
)

// Tick runs one cycle of spec.md §4.6 for this connection: flush ACK, flush
// NACK, drain the ready buffer, age-scan the recovery queue, and check the
// inactivity timeout. It reports whether the connection is Disconnected and
// should be evicted from the dispatcher's peer table.
func (c *Connection) Tick(now time.Time) (evict bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateDisconnected {
		return true
	}

	// (a) flush ACK
	if records := c.ack.Drain(); len(records) > 0 {
		c.write(protocol.EncodeACK(records))
		c.met.IncAcksSent()
	}
	// (b) flush NACK
	if records := c.nack.Drain(); len(records) > 0 {
		c.write(protocol.EncodeNACK(records))
		c.met.IncNacksSent()
	}
	// (c) drain ready frames into FramePackets
	c.flushReadyLocked(now)
	// (d) age-scan the recovery queue, retransmit stale entries
	c.retransmitStaleLocked(now)
	// (e) inactivity timeout
	if now.Sub(c.lastSeen) >= c.cfg.InactivityTimeout {
		c.disconnectLocked("inactivity timeout")
	}

	return c.state == StateDisconnected
}

// retransmitStaleLocked resends every recovery entry older than the
// configured retransmit timeout, disconnecting the connection once an entry
// has been retried past max_retries (spec.md §4.4: "Traverse the
// RecoveryQueue and resend any entry whose age exceeds the retransmit
// timeout ... after max_retries attempts the connection enters
// Disconnected"). Caller must hold mu.
func (c *Connection) retransmitStaleLocked(now time.Time) {
	for _, entry := range c.recovery.Stale(c.cfg.RetransmitTimeout, now) {
		if entry.Retries() >= c.cfg.MaxRetries {
			c.disconnectLocked("max retries exceeded")
			return
		}
		c.write(entry.Encoded)
		c.recovery.Touch(entry.Sequence, now)
		c.met.IncRetransmits()
	}
	c.fragments.Evict(now)
}
