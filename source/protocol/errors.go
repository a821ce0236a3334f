package protocol

import "errors"

// Sentinel errors for the codec and frame layer, classified per spec.md §7.
var (
	// ErrMalformedPacket is returned when a datagram cannot be parsed: too
	// short, an unknown record discriminator, a magic mismatch, and so on.
	// The caller drops the datagram.
	ErrMalformedPacket = errors.New("raknet: malformed packet")

	// ErrPacketTooLarge is returned when a user payload would require more
	// fragments than a 16-bit compound size can address.
	ErrPacketTooLarge = errors.New("raknet: packet too large to fragment")

	// ErrFragmentInconsistent is returned when a fragment's compound_size or
	// indices are inconsistent with previously-seen fragments of the same
	// compound_id.
	ErrFragmentInconsistent = errors.New("raknet: inconsistent fragment")

	// ErrProtocolMismatch is returned when an Open Connection Request
	// carries a protocol byte other than RAKNET_PROTOCOL_VERSION.
	ErrProtocolMismatch = errors.New("raknet: incompatible protocol version")
)
