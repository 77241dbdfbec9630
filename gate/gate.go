package gate

import (
	"github.com/m-lab/ssr-archive/correlation"
	"github.com/m-lab/ssr-archive/interp"
)

// Gate is the Interval Gate (spec §4.7). Each call to Enabled represents
// one candidate timestamped line; LinesGenerated is incremented exactly
// once per call regardless of the verdict (testable property 8).
type Gate struct {
	skip, interval, window Param
	nwins                  uint64

	anchor         correlation.TCP
	linesGenerated uint64 // restarts from zero once the skip is satisfied
	totalLines     uint64
	skipDone       bool

	haveInterval               bool
	currentIntervalNumber      int64
	currentIntervalStartTimeMs int64
	currentIntervalStartLines  uint64
}

// New constructs a Gate anchored at anchor (normally the Driver's
// first_tcp, spec §3).
func New(skip, interval, window Param, nwins uint64, anchor correlation.TCP) *Gate {
	return &Gate{
		skip: skip, interval: interval, window: window, nwins: nwins,
		anchor:   anchor,
		skipDone: skip.Zero(),
	}
}

// LinesGenerated returns the number of candidate lines processed so far.
func (g *Gate) LinesGenerated() uint64 {
	return g.totalLines
}

// Enabled evaluates the five-step gate logic against tcp (spec §4.7) and
// reports whether the corresponding line should be emitted.
func (g *Gate) Enabled(tcp correlation.TCP) bool {
	g.totalLines++
	g.linesGenerated++

	if !g.skipDone {
		if !g.skipSatisfied(tcp) {
			return false
		}
		g.anchor = tcp
		g.linesGenerated = 0
		g.skipDone = true
	}

	if g.interval.Zero() || g.window.Zero() {
		return true
	}

	elapsedMs := interp.WallclockDiffMillis(tcp, g.anchor)
	k := g.intervalNumber(elapsedMs)

	if !g.haveInterval || k != g.currentIntervalNumber {
		g.haveInterval = true
		g.currentIntervalNumber = k
		if g.interval.Unit == Seconds {
			g.currentIntervalStartTimeMs = k * int64(g.interval.Magnitude) * 1000
		} else {
			g.currentIntervalStartTimeMs = elapsedMs
		}
		g.currentIntervalStartLines = g.linesGenerated
	}

	if g.nwins > 0 && k >= int64(g.nwins) {
		return false
	}

	return g.insideWindow(elapsedMs)
}

func (g *Gate) skipSatisfied(tcp correlation.TCP) bool {
	if g.skip.Unit == Seconds {
		return interp.WallclockDiffMillis(tcp, g.anchor) >= int64(g.skip.Magnitude)*1000
	}
	return g.linesGenerated >= g.skip.Magnitude
}

func (g *Gate) intervalNumber(elapsedMs int64) int64 {
	if g.interval.Unit == Seconds {
		return elapsedMs / (int64(g.interval.Magnitude) * 1000)
	}
	return int64(g.linesGenerated) / int64(g.interval.Magnitude)
}

func (g *Gate) insideWindow(elapsedMs int64) bool {
	if g.window.Unit == Seconds {
		return elapsedMs-g.currentIntervalStartTimeMs <= int64(g.window.Magnitude)*1000
	}
	return g.linesGenerated-g.currentIntervalStartLines < g.window.Magnitude
}
