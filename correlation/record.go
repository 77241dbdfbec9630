// Package correlation decodes Time-Correlation Packets (A3) and provides a
// look-ahead cursor that yields successive TCPs without disturbing a
// primary reader's position.
package correlation

// TCP is a time-correlation record: it maps a free-running runtime
// millisecond counter to wall-clock calendar fields.
type TCP struct {
	RuntimeMS uint32
	Year      uint16
	Month     uint16
	Day       uint16
	Hour      uint16
	Minute    uint16
	Second    uint16
	Msec      uint16
}

// Zero is the sentinel TCP meaning "no TCP yet" or "no further TCP in the
// file" (RuntimeMS == 0, spec §3).
var Zero TCP

// IsZero reports whether t is the sentinel TCP.
func (t TCP) IsZero() bool {
	return t.RuntimeMS == 0
}
