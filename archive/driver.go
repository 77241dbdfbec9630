// Package archive glues the frame reader, look-ahead cursor, and emitter
// together into the single sequential pass over an SSR archive (spec
// §4.9).
package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/m-lab/go/logx"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/m-lab/ssr-archive/correlation"
	"github.com/m-lab/ssr-archive/emit"
	"github.com/m-lab/ssr-archive/framing"
	"github.com/m-lab/ssr-archive/metrics"
	"github.com/m-lab/ssr-archive/timedata"
)

var preTCPWarning = logx.NewLogEvery(nil, time.Second)

// Driver reads one archive file sequentially through a primary cursor
// and an independent look-ahead cursor, maintaining the previous/next
// TCP pair and dispatching every A2 through the Emitter.
type Driver struct {
	primary  *framing.Reader
	lookAhead *correlation.LookAhead

	primaryFile   *os.File
	lookAheadFile *os.File

	emitter *emit.Emitter

	interpolate bool
	prevTCP     correlation.TCP
	nextTCP     correlation.TCP
}

// Open opens two independent read handles on path (spec §5: sharing a
// descriptor is not acceptable) and constructs a Driver around emitter.
func Open(path string, emitter *emit.Emitter, interpolate bool) (*Driver, error) {
	primaryFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("archive: opening primary cursor on %s: %w", path, err)
	}
	lookAheadFile, err := os.Open(path)
	if err != nil {
		primaryFile.Close()
		return nil, fmt.Errorf("archive: opening look-ahead cursor on %s: %w", path, err)
	}

	d := &Driver{
		primary:       framing.NewReader(primaryFile),
		lookAhead:     correlation.NewLookAhead(lookAheadFile),
		primaryFile:   primaryFile,
		lookAheadFile: lookAheadFile,
		emitter:       emitter,
		interpolate:   interpolate,
	}

	if interpolate {
		next, err := d.lookAhead.Next()
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("archive: priming look-ahead cursor: %w", err)
		}
		d.nextTCP = next
	}

	return d, nil
}

// Close releases both read handles. Safe to call multiple times.
func (d *Driver) Close() {
	if d.primaryFile != nil {
		d.primaryFile.Close()
		d.primaryFile = nil
	}
	if d.lookAheadFile != nil {
		d.lookAheadFile.Close()
		d.lookAheadFile = nil
	}
}

// Run processes the archive to completion, dispatching every packet
// through the Emitter (spec §4.9). It returns nil on a clean end of
// stream.
func (d *Driver) Run() error {
	timer := prometheus.NewTimer(prometheus.ObserverFunc(metrics.RunDuration.Observe))
	defer timer.ObserveDuration()

	for {
		pkt, err := d.primary.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("archive: reading packet: %w", err)
		}

		switch pkt.Type {
		case framing.TypeTCP:
			tcp, err := correlation.Parse(pkt.Payload)
			if err != nil {
				return fmt.Errorf("archive: parsing TCP payload: %w", err)
			}
			metrics.TCPPacketsTotal.Inc()
			d.prevTCP = tcp
			if err := d.emitter.EmitTCP(tcp, pkt.Offset); err != nil {
				return fmt.Errorf("archive: emitting TCP: %w", err)
			}
			if d.interpolate {
				next, err := d.lookAhead.Next()
				if err != nil {
					return fmt.Errorf("archive: advancing look-ahead cursor: %w", err)
				}
				d.nextTCP = next
			}

		case framing.TypeData:
			ttdp, err := timedata.Parse(pkt.Payload)
			if err != nil {
				return fmt.Errorf("archive: parsing data payload: %w", err)
			}
			if d.prevTCP.IsZero() {
				preTCPWarning.Printf("archive: TTDP at offset %d precedes any TCP; -n/script output skipped for it", pkt.Offset)
			}
			metrics.SubpacketsTotal.Add(float64(len(ttdp.Subpackets)))
			for _, sp := range ttdp.Subpackets {
				if err := d.emitter.EmitSubpacket(d.prevTCP, d.nextTCP, ttdp.RuntimeSec, sp, pkt.Offset); err != nil {
					return fmt.Errorf("archive: emitting subpacket: %w", err)
				}
			}
		}
	}
}
