package emit

// TCPFields are the six calendar fields plus runtime and milliseconds
// written to the TCP sink on each A3 (spec §4.8).
type TCPFields struct {
	RuntimeMS uint32 `csv:"runtime_ms"`
	Year      uint16 `csv:"year"`
	Month     uint16 `csv:"month"`
	Day       uint16 `csv:"day"`
	Hour      uint16 `csv:"hour"`
	Minute    uint16 `csv:"minute"`
	Second    uint16 `csv:"second"`
	Msec      uint16 `csv:"msec"`
}

// TCPRow is one TCP-sink line without the optional byte-offset column.
type TCPRow struct {
	TCPFields
}

// TCPRowOffset is one TCP-sink line with the byte-offset column (-O).
type TCPRowOffset struct {
	TCPFields
	Offset uint64 `csv:"offset"`
}

// DataFields are the runtime/count/hex columns written to the Data sink
// per subpacket, or per byte in one-byte-per-line mode (spec §4.8).
type DataFields struct {
	// Runtime is runtime_sec concatenated with the three-digit zero-padded
	// msec_offset, forming the runtime in milliseconds (5250 for
	// runtime_sec 5, msec_offset 250).
	Runtime string `csv:"runtime"`
	Count   int    `csv:"count"`
	Hex     string `csv:"hex"`
}

// DataRow is one Data-sink line without the optional byte-offset column.
type DataRow struct {
	DataFields
}

// DataRowOffset is one Data-sink line with the byte-offset column (-O).
type DataRowOffset struct {
	DataFields
	Offset uint64 `csv:"offset"`
}

// MixedRow is one Mixed-sink line: a TCP or Data line fully rendered and
// prefixed with its packet kind, merged chronologically (spec §4.8).
type MixedRow struct {
	Line string `csv:"line"`
}
