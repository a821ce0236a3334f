// Package metrics exposes the server's Prometheus instrumentation, grounded
// on runZeroInc-conniver/pkg/exporter and runZeroInc-sockstats's
// prometheus.MustRegister + promhttp.Handler() exposition pattern, adapted
// from their per-socket TCP collector to a flat set of counters/gauges
// describing the RakNet reliability layer.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles every counter/gauge the connection and dispatcher layers
// update. A nil *Metrics is safe to call methods on — every method is a
// no-op in that case — so wiring metrics is optional for callers that don't
// need them (e.g. unit tests).
type Metrics struct {
	DatagramsReceived prometheus.Counter
	DatagramsSent     prometheus.Counter
	FramesReceived    prometheus.Counter
	PacketsDropped    prometheus.Counter
	AcksSent          prometheus.Counter
	NacksSent         prometheus.Counter
	Retransmits       prometheus.Counter
	ConnectionsActive prometheus.Gauge
	ConnectionsTotal  prometheus.Counter
	Disconnects       prometheus.Counter
}

// New constructs a Metrics bundle and registers every collector with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DatagramsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "raknet", Name: "datagrams_received_total",
			Help: "UDP datagrams received across all connections.",
		}),
		DatagramsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "raknet", Name: "datagrams_sent_total",
			Help: "UDP datagrams written to the socket.",
		}),
		FramesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "raknet", Name: "frames_received_total",
			Help: "Frames successfully decoded out of inbound FramePackets.",
		}),
		PacketsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "raknet", Name: "packets_dropped_total",
			Help: "Datagrams dropped: malformed, duplicate, or unrecognised.",
		}),
		AcksSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "raknet", Name: "acks_sent_total",
			Help: "ACK datagrams emitted on tick flush.",
		}),
		NacksSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "raknet", Name: "nacks_sent_total",
			Help: "NACK datagrams emitted on tick flush.",
		}),
		Retransmits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "raknet", Name: "retransmits_total",
			Help: "FramePackets resent due to NACK or recovery-queue timeout.",
		}),
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "raknet", Name: "connections_active",
			Help: "Connections currently not in the Disconnected state.",
		}),
		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "raknet", Name: "connections_total",
			Help: "Connections ever created.",
		}),
		Disconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "raknet", Name: "disconnects_total",
			Help: "Connections evicted, labelled by nothing (see logs for reason).",
		}),
	}
	reg.MustRegister(
		m.DatagramsReceived, m.DatagramsSent, m.FramesReceived, m.PacketsDropped,
		m.AcksSent, m.NacksSent, m.Retransmits,
		m.ConnectionsActive, m.ConnectionsTotal, m.Disconnects,
	)
	return m
}

func (m *Metrics) incDatagramsReceived() {
	if m != nil {
		m.DatagramsReceived.Inc()
	}
}

// IncDatagramsReceived records one inbound UDP datagram.
func (m *Metrics) IncDatagramsReceived() { m.incDatagramsReceived() }

// IncDatagramsSent records one outbound UDP datagram.
func (m *Metrics) IncDatagramsSent() {
	if m != nil {
		m.DatagramsSent.Inc()
	}
}

// IncPacketsDropped records one dropped/malformed/duplicate datagram.
func (m *Metrics) IncPacketsDropped() {
	if m != nil {
		m.PacketsDropped.Inc()
	}
}

// IncFramesReceived records one frame successfully decoded out of an
// inbound FramePacket.
func (m *Metrics) IncFramesReceived() {
	if m != nil {
		m.FramesReceived.Inc()
	}
}

// IncAcksSent records one ACK datagram emitted on tick flush.
func (m *Metrics) IncAcksSent() {
	if m != nil {
		m.AcksSent.Inc()
	}
}

// IncNacksSent records one NACK datagram emitted on tick flush.
func (m *Metrics) IncNacksSent() {
	if m != nil {
		m.NacksSent.Inc()
	}
}

// IncRetransmits records one FramePacket resent due to NACK or
// recovery-queue timeout.
func (m *Metrics) IncRetransmits() {
	if m != nil {
		m.Retransmits.Inc()
	}
}

// ConnectionOpened records a newly created Connection.
func (m *Metrics) ConnectionOpened() {
	if m != nil {
		m.ConnectionsTotal.Inc()
		m.ConnectionsActive.Inc()
	}
}

// ConnectionClosed records a Connection's eviction.
func (m *Metrics) ConnectionClosed() {
	if m != nil {
		m.ConnectionsActive.Dec()
		m.Disconnects.Inc()
	}
}
