// Package metrics defines prometheus metric types and provides convenience
// methods to add accounting to various parts of the pipeline.
//
// When defining new operations or metrics, these are helpful values to track:
//  - things coming into or go out of the system: requests, files, tests, api calls.
//  - the success or error status of any of the above.
//  - the distribution of processing latency.
package metrics

import (
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PacketsReadTotal counts well-formed packets extracted from the
	// archive stream, by type ("tcp" or "data").
	PacketsReadTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ssrarchive_packets_read_total",
			Help: "Number of well-formed packets extracted from the archive stream, by type.",
		}, []string{"type"})

	// ResyncTotal counts how many times the frame reader had to resync
	// after rejecting a candidate packet (bad type byte, bad subpacket
	// header, or bad checksum).
	ResyncTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ssrarchive_resync_total",
			Help: "Number of times the frame reader resynchronized after a corrupt or rejected packet.",
		},
	)

	// ChecksumFailureTotal counts candidate packets rejected specifically
	// because their Fletcher-16 trailer did not validate.
	ChecksumFailureTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ssrarchive_checksum_failure_total",
			Help: "Number of candidate packets rejected for a bad Fletcher-16 checksum.",
		},
	)

	// TCPPacketsTotal counts Time-Correlation Packets accepted by the
	// correlation package.
	TCPPacketsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ssrarchive_tcp_packets_total",
			Help: "Number of Time-Correlation Packets accepted.",
		},
	)

	// SubpacketsTotal counts subpackets extracted from Time-Tagged Data
	// Packets, after adjacent-subpacket coalescing.
	SubpacketsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ssrarchive_subpackets_total",
			Help: "Number of coalesced subpackets extracted from data packets.",
		},
	)

	// NonInterpolatedTotal counts subpacket timestamps computed with the
	// non-interpolated calculation, either because interpolation is
	// disabled or because no look-ahead TCP brackets the subpacket (end of
	// file, file split or power cycle).
	NonInterpolatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ssrarchive_noninterpolated_total",
			Help: "Number of subpacket timestamps computed without interpolation.",
		},
	)

	// LinesEmittedTotal counts output lines written to a sink, by sink
	// kind. For the timestamped-line sink only lines the interval gate let
	// through are counted.
	LinesEmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ssrarchive_lines_emitted_total",
			Help: "Number of lines written to an output sink, by sink kind.",
		}, []string{"sink"})

	// ScriptErrorTotal counts errors raised by the embedded Lua bridge
	// while parsing subpacket payloads.
	ScriptErrorTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ssrarchive_script_error_total",
			Help: "Number of errors raised by the embedded parser script.",
		},
	)

	// RunDuration tracks the wall-clock time to process one archive file
	// from open to EOF.
	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ssrarchive_run_duration_seconds",
			Help:    "Wall-clock time to process one archive file.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 16),
		},
	)
)

// init() prints a log message to let the user know that the package has been
// loaded and the metrics registered. The metrics are auto-registered, which
// means they are registered as soon as this package is loaded, and the exact
// time this occurs (and whether this occurs at all in a given context) can be
// opaque.
func init() {
	log.Println("Prometheus metrics in ssr-archive.metrics are registered.")
}
