package timedata

import "fmt"

// headerLen is the size of the runtime_sec field that opens every A2
// payload (spec §3).
const headerLen = 4

// Parse decodes a validated A2 payload (runtime_sec followed by one or
// more subpacket headers+bytes, with the 0xFFFF terminator and checksum
// already stripped by the frame reader) into a TTDP with its subpackets
// coalesced (spec §3, §4.1).
func Parse(payload []byte) (TTDP, error) {
	if len(payload) < headerLen {
		return TTDP{}, fmt.Errorf("timedata: A2 payload has %d bytes, want at least %d", len(payload), headerLen)
	}

	runtimeSec := uint32(payload[0])<<24 | uint32(payload[1])<<16 | uint32(payload[2])<<8 | uint32(payload[3])
	rest := payload[headerLen:]

	var raw []Subpacket
	for len(rest) > 0 {
		if len(rest) < 2 {
			return TTDP{}, fmt.Errorf("timedata: truncated subpacket header")
		}
		w := uint16(rest[0])<<8 | uint16(rest[1])
		rest = rest[2:]

		msec := (w >> 7) * 2
		count := int(w & 0x7F)
		if msec > 999 || count == 0 {
			return TTDP{}, fmt.Errorf("timedata: invalid subpacket header msec=%d count=%d", msec, count)
		}
		if len(rest) < count {
			return TTDP{}, fmt.Errorf("timedata: truncated subpacket body, want %d bytes, have %d", count, len(rest))
		}

		raw = append(raw, Subpacket{MsecOffset: msec, Bytes: rest[:count]})
		rest = rest[count:]
	}

	return TTDP{RuntimeSec: runtimeSec, Subpackets: coalesce(raw)}, nil
}

// coalesce merges consecutive subpackets that share MsecOffset into one,
// concatenating their bytes (spec §3, §4.1, testable property 6).
func coalesce(raw []Subpacket) []Subpacket {
	if len(raw) == 0 {
		return nil
	}
	out := make([]Subpacket, 0, len(raw))
	cur := raw[0]
	for _, sp := range raw[1:] {
		if sp.MsecOffset == cur.MsecOffset {
			cur.Bytes = append(append([]byte{}, cur.Bytes...), sp.Bytes...)
			continue
		}
		out = append(out, cur)
		cur = sp
	}
	return append(out, cur)
}
