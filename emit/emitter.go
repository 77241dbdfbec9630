// Package emit fans TTDP subpackets and TCPs out to the raw, TCP, data,
// mixed, timestamped-line, and script sinks (spec §4.8).
package emit

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/m-lab/ssr-archive/correlation"
	"github.com/m-lab/ssr-archive/gate"
	"github.com/m-lab/ssr-archive/interp"
	"github.com/m-lab/ssr-archive/metrics"
	"github.com/m-lab/ssr-archive/script"
	"github.com/m-lab/ssr-archive/timedata"
	"github.com/m-lab/ssr-archive/tsfmt"
)

// Config carries the emission-affecting command-line options (spec §6).
type Config struct {
	Headers        bool
	IncludeOffset  bool
	OneBytePerLine bool
	Interpolate    bool
}

// SinkSet is the destination for each optional output artifact. A nil
// field disables that artifact entirely.
type SinkSet struct {
	Raw    io.Writer
	TCP    io.Writer
	Data   io.Writer
	Mixed  io.Writer
	Line   io.Writer
	Script script.Bridge
}

// Emitter fans out packets according to Config and SinkSet. It owns the
// stamp inserter's two bits of state and lazily constructs the Interval
// Gate on the first timestamped line, anchored at that line's wall-clock
// time — first_tcp in spec §3's terms.
type Emitter struct {
	cfg       Config
	rawW      io.Writer
	tcpSink   *tabularSink
	dataSink  *tabularSink
	mixedSink *tabularSink
	lineW     io.Writer
	bridge    script.Bridge
	formatter *tsfmt.Formatter

	skip, interval, window gate.Param
	nwins                  uint64
	g                      *gate.Gate

	stampOnNextContent bool
	outputEnabled      bool
}

// New constructs an Emitter. skip/interval/window/nwins parameterize the
// Interval Gate (spec §4.7); they are inert unless a Line sink is set.
func New(cfg Config, formatter *tsfmt.Formatter, sinks SinkSet, skip, interval, window gate.Param, nwins uint64) *Emitter {
	e := &Emitter{
		cfg:                cfg,
		rawW:               sinks.Raw,
		lineW:              sinks.Line,
		bridge:             sinks.Script,
		formatter:          formatter,
		skip:               skip,
		interval:           interval,
		window:             window,
		nwins:              nwins,
		stampOnNextContent: true,
		outputEnabled:      true,
	}
	if sinks.TCP != nil {
		e.tcpSink = newTabularSink(sinks.TCP, cfg.Headers)
	}
	if sinks.Data != nil {
		e.dataSink = newTabularSink(sinks.Data, cfg.Headers)
	}
	if sinks.Mixed != nil {
		e.mixedSink = newTabularSink(sinks.Mixed, cfg.Headers)
	}
	return e
}

// EmitTCP fans an A3 out to the TCP and Mixed sinks (spec §4.9: called on
// every A3 before the look-ahead is advanced).
func (e *Emitter) EmitTCP(tcp correlation.TCP, offset uint64) error {
	if e.tcpSink != nil {
		if err := e.writeTCPRow(tcp, offset); err != nil {
			return err
		}
		metrics.LinesEmittedTotal.With(prometheus.Labels{"sink": "tcp"}).Inc()
	}
	if e.mixedSink != nil {
		line := formatTCPLine(tcp, e.cfg.IncludeOffset, offset)
		if err := e.mixedSink.writeMixedRow(MixedRow{Line: "A3 " + line}); err != nil {
			return err
		}
		metrics.LinesEmittedTotal.With(prometheus.Labels{"sink": "mixed"}).Inc()
	}
	return nil
}

func (e *Emitter) writeTCPRow(tcp correlation.TCP, offset uint64) error {
	fields := TCPFields{
		RuntimeMS: tcp.RuntimeMS, Year: tcp.Year, Month: tcp.Month, Day: tcp.Day,
		Hour: tcp.Hour, Minute: tcp.Minute, Second: tcp.Second, Msec: tcp.Msec,
	}
	if e.cfg.IncludeOffset {
		return e.tcpSink.writeTCPRow([]TCPRowOffset{{TCPFields: fields, Offset: offset}})
	}
	return e.tcpSink.writeTCPRow([]TCPRow{{TCPFields: fields}})
}

func formatTCPLine(tcp correlation.TCP, withOffset bool, offset uint64) string {
	if withOffset {
		return fmt.Sprintf("%d %d %d %d %d %d %d %d %d",
			tcp.RuntimeMS, offset, tcp.Year, tcp.Month, tcp.Day, tcp.Hour, tcp.Minute, tcp.Second, tcp.Msec)
	}
	return fmt.Sprintf("%d %d %d %d %d %d %d %d",
		tcp.RuntimeMS, tcp.Year, tcp.Month, tcp.Day, tcp.Hour, tcp.Minute, tcp.Second, tcp.Msec)
}

// EmitSubpacket fans one already-coalesced A2 subpacket out to whichever
// sinks are active. prevTCP/nextTCP bracket the subpacket for the
// timestamped-line and script sinks only; the Data sink's runtime field
// is the raw runtime_sec/msec_offset, never interpolated (spec §4.8).
func (e *Emitter) EmitSubpacket(prevTCP, nextTCP correlation.TCP, runtimeSec uint32, sp timedata.Subpacket, offset uint64) error {
	if e.rawW != nil {
		if _, err := e.rawW.Write(sp.Bytes); err != nil {
			return err
		}
	}

	if e.dataSink != nil || e.mixedSink != nil {
		if err := e.emitDataAndMixed(runtimeSec, sp, offset); err != nil {
			return err
		}
	}

	if (e.lineW != nil || e.bridge != nil) && !prevTCP.IsZero() {
		if err := e.emitTimestamped(prevTCP, nextTCP, runtimeSec, sp); err != nil {
			return err
		}
	}

	return nil
}

func (e *Emitter) emitDataAndMixed(runtimeSec uint32, sp timedata.Subpacket, offset uint64) error {
	if e.cfg.OneBytePerLine {
		for i := range sp.Bytes {
			hexByte := strings.ToUpper(hex.EncodeToString(sp.Bytes[i : i+1]))
			if err := e.emitDataLine(runtimeSec, sp.MsecOffset, offset, 1, hexByte); err != nil {
				return err
			}
		}
		return nil
	}
	hexAll := strings.ToUpper(hex.EncodeToString(sp.Bytes))
	return e.emitDataLine(runtimeSec, sp.MsecOffset, offset, len(sp.Bytes), hexAll)
}

func (e *Emitter) emitDataLine(runtimeSec uint32, msecOffset uint16, offset uint64, count int, hexStr string) error {
	if e.dataSink != nil {
		fields := DataFields{Runtime: dataRuntimeField(runtimeSec, msecOffset), Count: count, Hex: hexStr}
		var err error
		if e.cfg.IncludeOffset {
			err = e.dataSink.writeDataRow([]DataRowOffset{{DataFields: fields, Offset: offset}})
		} else {
			err = e.dataSink.writeDataRow([]DataRow{{DataFields: fields}})
		}
		if err != nil {
			return err
		}
		metrics.LinesEmittedTotal.With(prometheus.Labels{"sink": "data"}).Inc()
	}
	if e.mixedSink != nil {
		line := formatDataLine(runtimeSec, msecOffset, e.cfg.IncludeOffset, offset, count, hexStr)
		if err := e.mixedSink.writeMixedRow(MixedRow{Line: "A2 " + line}); err != nil {
			return err
		}
		metrics.LinesEmittedTotal.With(prometheus.Labels{"sink": "mixed"}).Inc()
	}
	return nil
}

func dataRuntimeField(runtimeSec uint32, msecOffset uint16) string {
	return fmt.Sprintf("%d%03d", runtimeSec, msecOffset)
}

func formatDataLine(runtimeSec uint32, msecOffset uint16, withOffset bool, offset uint64, count int, hexStr string) string {
	if withOffset {
		return fmt.Sprintf("%s %d %d %s", dataRuntimeField(runtimeSec, msecOffset), offset, count, hexStr)
	}
	return fmt.Sprintf("%s %d %s", dataRuntimeField(runtimeSec, msecOffset), count, hexStr)
}

func (e *Emitter) emitTimestamped(prevTCP, nextTCP correlation.TCP, runtimeSec uint32, sp timedata.Subpacket) error {
	wallclock := interp.At(prevTCP, nextTCP, runtimeSec, sp.MsecOffset, e.cfg.Interpolate)
	stamp, err := e.formatter.Format(wallclock)
	if err != nil {
		return err
	}

	if e.lineW != nil {
		if err := e.insertStamps(wallclock, stamp, sp.Bytes); err != nil {
			return err
		}
	}
	if e.bridge != nil {
		runtime := float64(runtimeSec) + float64(sp.MsecOffset)/1000.0
		if err := e.bridge.ParseData(runtime, stamp, sp.Bytes); err != nil {
			metrics.ScriptErrorTotal.Inc()
			return err
		}
	}
	return nil
}

// insertStamps implements the stamp inserter (spec §4.8). It runs only
// once prevTCP is non-sentinel, per EmitSubpacket's guard above.
func (e *Emitter) insertStamps(wallclock correlation.TCP, stamp string, data []byte) error {
	if e.g == nil {
		e.g = gate.New(e.skip, e.interval, e.window, e.nwins, wallclock)
	}

	for _, b := range data {
		if b == 0x0A || b == 0x0D {
			e.stampOnNextContent = true
			if e.outputEnabled {
				if _, err := e.lineW.Write([]byte{b}); err != nil {
					return err
				}
			}
			continue
		}

		if e.stampOnNextContent {
			e.outputEnabled = e.g.Enabled(wallclock)
			if e.outputEnabled {
				if _, err := io.WriteString(e.lineW, stamp+" "); err != nil {
					return err
				}
				metrics.LinesEmittedTotal.With(prometheus.Labels{"sink": "line"}).Inc()
			}
			e.stampOnNextContent = false
		}

		if e.outputEnabled {
			if _, err := e.lineW.Write([]byte{b}); err != nil {
				return err
			}
		}
	}
	return nil
}
