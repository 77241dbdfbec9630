package emit

import (
	"bytes"
	"strings"
	"testing"

	"github.com/m-lab/ssr-archive/correlation"
	"github.com/m-lab/ssr-archive/gate"
	"github.com/m-lab/ssr-archive/timedata"
	"github.com/m-lab/ssr-archive/tsfmt"
)

func mustFormatter(t *testing.T, suppressMsec bool) *tsfmt.Formatter {
	t.Helper()
	f, err := tsfmt.New(tsfmt.DefaultFormat, suppressMsec)
	if err != nil {
		t.Fatalf("tsfmt.New: %v", err)
	}
	return f
}

// TestEmitSubpacketScenarioS1 reproduces spec.md S1 for the -n (line) sink
// with interpolation disabled.
func TestEmitSubpacketScenarioS1(t *testing.T) {
	var lineBuf bytes.Buffer
	f := mustFormatter(t, false)
	e := New(Config{Interpolate: false}, f, SinkSet{Line: &lineBuf}, gate.Param{}, gate.Param{}, gate.Param{}, 0)

	prev := correlation.TCP{RuntimeMS: 1000, Year: 2020, Month: 1, Day: 1, Hour: 0, Minute: 0, Second: 1, Msec: 0}
	sp := timedata.Subpacket{MsecOffset: 500, Bytes: []byte("ABC")}

	if err := e.EmitSubpacket(prev, correlation.Zero, 2, sp, 0); err != nil {
		t.Fatalf("EmitSubpacket: %v", err)
	}

	want := "2020 01 01 00 00 02 500 ABC"
	if lineBuf.String() != want {
		t.Errorf("line sink = %q, want %q", lineBuf.String(), want)
	}
}

// TestEmitSubpacketScenarioS3 reproduces spec.md S3: a TTDP preceding any
// TCP produces no -n output but still appears in the raw sink verbatim.
func TestEmitSubpacketScenarioS3(t *testing.T) {
	var lineBuf, rawBuf bytes.Buffer
	f := mustFormatter(t, false)
	e := New(Config{Interpolate: true}, f, SinkSet{Line: &lineBuf, Raw: &rawBuf}, gate.Param{}, gate.Param{}, gate.Param{}, 0)

	sp := timedata.Subpacket{MsecOffset: 0, Bytes: []byte("hello")}
	if err := e.EmitSubpacket(correlation.Zero, correlation.Zero, 1, sp, 0); err != nil {
		t.Fatalf("EmitSubpacket: %v", err)
	}

	if lineBuf.Len() != 0 {
		t.Errorf("line sink = %q, want empty (no TCP seen yet)", lineBuf.String())
	}
	if rawBuf.String() != "hello" {
		t.Errorf("raw sink = %q, want %q", rawBuf.String(), "hello")
	}
}

// TestEmitSubpacketScenarioS4 reproduces spec.md S4: one-byte-per-line
// Data sink output.
func TestEmitSubpacketScenarioS4(t *testing.T) {
	var dataBuf bytes.Buffer
	f := mustFormatter(t, false)
	e := New(Config{OneBytePerLine: true}, f, SinkSet{Data: &dataBuf}, gate.Param{}, gate.Param{}, gate.Param{}, 0)

	sp := timedata.Subpacket{MsecOffset: 250, Bytes: []byte("AB")}
	if err := e.EmitSubpacket(correlation.Zero, correlation.Zero, 5, sp, 0); err != nil {
		t.Fatalf("EmitSubpacket: %v", err)
	}

	got := strings.TrimRight(dataBuf.String(), "\n")
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), dataBuf.String())
	}
	if lines[0] != "5250 1 41" {
		t.Errorf("first line = %q, want %q", lines[0], "5250 1 41")
	}
	if lines[1] != "5250 1 42" {
		t.Errorf("second line = %q, want %q", lines[1], "5250 1 42")
	}
}

// TestStampInsertionSingleStampPerLine covers testable property 7: exactly
// one timestamp precedes the first non-newline byte after every newline.
func TestStampInsertionSingleStampPerLine(t *testing.T) {
	var lineBuf bytes.Buffer
	f := mustFormatter(t, true)
	e := New(Config{}, f, SinkSet{Line: &lineBuf}, gate.Param{}, gate.Param{}, gate.Param{}, 0)

	prev := correlation.TCP{RuntimeMS: 1000, Year: 2020, Month: 1, Day: 1}
	sp := timedata.Subpacket{MsecOffset: 0, Bytes: []byte("line1\nline2\n")}
	if err := e.EmitSubpacket(prev, correlation.Zero, 1, sp, 0); err != nil {
		t.Fatalf("EmitSubpacket: %v", err)
	}

	out := lineBuf.String()
	stampCount := strings.Count(out, "2020 01 01 00 00 00 ")
	if stampCount != 2 {
		t.Errorf("stamp occurrences = %d, want 2 in %q", stampCount, out)
	}
}
