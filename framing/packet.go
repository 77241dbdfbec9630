// Package framing extracts well-formed packets from an SSR archive byte
// stream, resynchronizing after corruption and validating the Fletcher-16
// trailer on every candidate packet.
package framing

const (
	// PrefixByte opens every packet on the wire.
	PrefixByte = 0x82
	// TypeTCP marks a Time-Correlation Packet.
	TypeTCP = 0xA3
	// TypeData marks a Time-Tagged Data Packet.
	TypeData = 0xA2
)

// Packet is one well-formed, checksum-validated wire packet.
type Packet struct {
	// Type is TypeTCP or TypeData.
	Type byte
	// Payload is everything between the type byte and the checksum trailer;
	// for TypeData the 0xFFFF terminator before the trailer is left out.
	Payload []byte
	// Offset is the stream offset of the first byte after the 0x82 prefix.
	Offset uint64
}
