package correlation

import "fmt"

// payloadLen is the fixed size of an A3 payload (runtime_ms plus three
// bit-packed calendar words), spec §4.3.
const payloadLen = 10

// Parse decodes a validated A3 payload into a TCP record. No range
// validation is performed beyond the bit layout: a malformed but
// checksum-valid TCP is accepted as-is (spec §4.3).
func Parse(payload []byte) (TCP, error) {
	if len(payload) != payloadLen {
		return TCP{}, fmt.Errorf("correlation: A3 payload has %d bytes, want %d", len(payload), payloadLen)
	}

	runtimeMS := uint32(payload[0])<<24 | uint32(payload[1])<<16 | uint32(payload[2])<<8 | uint32(payload[3])

	ymWord := uint16(payload[4])<<8 | uint16(payload[5])
	dhmWord := uint16(payload[6])<<8 | uint16(payload[7])
	smsWord := uint16(payload[8])<<8 | uint16(payload[9])

	return TCP{
		RuntimeMS: runtimeMS,
		Year:      ymWord >> 4,
		Month:     ymWord & 0x0F,
		Day:       dhmWord >> 11,
		Hour:      (dhmWord >> 6) & 0x1F,
		Minute:    dhmWord & 0x3F,
		Second:    smsWord >> 10,
		Msec:      smsWord & 0x3FF,
	}, nil
}
