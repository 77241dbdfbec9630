// Package interp reconstructs a wall-clock TCP for a subpacket by
// interpolating the drifting runtime millisecond counter against the
// bracketing pair of Time-Correlation Packets.
package interp

import (
	"time"

	"github.com/m-lab/ssr-archive/correlation"
)

// epochMillis converts tcp's calendar fields (second precision, ignoring
// Msec) to milliseconds since the Unix epoch, treated as UTC with no
// daylight saving (spec §4.5, §6).
func epochMillis(tcp correlation.TCP) int64 {
	t := time.Date(int(tcp.Year), time.Month(tcp.Month), int(tcp.Day),
		int(tcp.Hour), int(tcp.Minute), int(tcp.Second), 0, time.UTC)
	return t.Unix() * 1000
}

// wallclockMillis is epochMillis plus the TCP's own Msec field, used when
// comparing two TCPs' wall-clock distance (spec §4.5).
func wallclockMillis(tcp correlation.TCP) int64 {
	return epochMillis(tcp) + int64(tcp.Msec)
}

// WallclockMillis converts tcp's calendar fields and Msec to milliseconds
// since the Unix epoch in UTC. Exported for the Interval Gate's elapsed-
// time bookkeeping (spec §4.7).
func WallclockMillis(tcp correlation.TCP) int64 {
	return wallclockMillis(tcp)
}

// WallclockDiffMillis returns WallclockMillis(tcp) - WallclockMillis(anchor).
func WallclockDiffMillis(tcp, anchor correlation.TCP) int64 {
	return wallclockMillis(tcp) - wallclockMillis(anchor)
}

// fromEpochSecond converts an epoch second back to calendar fields in UTC.
func fromEpochSecond(sec int64) (year, month, day, hour, minute, second uint16) {
	t := time.Unix(sec, 0).UTC()
	return uint16(t.Year()), uint16(t.Month()), uint16(t.Day()),
		uint16(t.Hour()), uint16(t.Minute()), uint16(t.Second())
}
