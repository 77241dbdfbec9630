package interp

import (
	"testing"

	"github.com/m-lab/ssr-archive/correlation"
)

func tcp(runtimeMS uint32, year, month, day, hour, min, sec, msec uint16) correlation.TCP {
	return correlation.TCP{
		RuntimeMS: runtimeMS, Year: year, Month: month, Day: day,
		Hour: hour, Minute: min, Second: sec, Msec: msec,
	}
}

// TestAtNonInterpolated covers spec.md S1.
func TestAtNonInterpolated(t *testing.T) {
	prev := tcp(1000, 2020, 1, 1, 0, 0, 1, 0)
	got := At(prev, correlation.Zero, 2, 500, false)
	want := tcp(2500, 2020, 1, 1, 0, 0, 2, 500)
	if got.Year != want.Year || got.Month != want.Month || got.Day != want.Day ||
		got.Hour != want.Hour || got.Minute != want.Minute || got.Second != want.Second || got.Msec != want.Msec {
		t.Errorf("At() = %+v, want calendar %+v", got, want)
	}
}

// TestAtInterpolated covers spec.md S2: same rate as non-interpolated here
// (1:1 runtime-to-wallclock), so the text output is identical.
func TestAtInterpolated(t *testing.T) {
	prev := tcp(1000, 2020, 1, 1, 0, 0, 1, 0)
	next := tcp(3000, 2020, 1, 1, 0, 0, 3, 0)
	got := At(prev, next, 2, 500, true)
	if got.Second != 2 || got.Msec != 500 {
		t.Errorf("At() = %+v, want second=2 msec=500", got)
	}
}

// TestAtInterpolationIdentity covers testable property 3.
func TestAtInterpolationIdentity(t *testing.T) {
	prev := tcp(1000, 2020, 3, 15, 12, 30, 45, 250)
	next := tcp(5000, 2020, 3, 15, 12, 30, 49, 0)
	got := At(prev, next, 1, 0, true) // runtime_sec*1000+msec_offset == 1000 == prev.RuntimeMS
	if got.Year != prev.Year || got.Month != prev.Month || got.Day != prev.Day ||
		got.Hour != prev.Hour || got.Minute != prev.Minute || got.Second != prev.Second || got.Msec != prev.Msec {
		t.Errorf("At() at RT==prev.RuntimeMS = %+v, want prev calendar %+v", got, prev)
	}
}

// TestAtBracketExitMatchesNonInterpolated covers testable property 5.
func TestAtBracketExitMatchesNonInterpolated(t *testing.T) {
	prev := tcp(1000, 2020, 1, 1, 0, 0, 1, 0)
	next := tcp(2000, 2020, 1, 1, 0, 0, 2, 0)

	// RT beyond next.RuntimeMS: bracket-exit.
	gotInterp := At(prev, next, 5, 0, true) // RT = 5000 > next.RuntimeMS
	gotNoInterp := At(prev, correlation.Zero, 5, 0, false)
	if gotInterp != gotNoInterp {
		t.Errorf("bracket-exit At() = %+v, want same as non-interpolated %+v", gotInterp, gotNoInterp)
	}
}

// TestAtFileSplitFallback covers the next.RuntimeMS < prev.RuntimeMS case
// (spec §4.5's file-append/power-cycle fallback).
func TestAtFileSplitFallback(t *testing.T) {
	prev := tcp(5000, 2020, 1, 1, 0, 0, 5, 0)
	next := tcp(100, 2020, 1, 1, 0, 0, 6, 0) // looks earlier: file split
	got := At(prev, next, 5, 500, true)
	want := At(prev, correlation.Zero, 5, 500, false)
	if got != want {
		t.Errorf("file-split At() = %+v, want non-interpolated %+v", got, want)
	}
}

// TestAtMonotonic covers testable property 4.
func TestAtMonotonic(t *testing.T) {
	prev := tcp(1000, 2020, 1, 1, 0, 0, 0, 0)
	next := tcp(9000, 2020, 1, 1, 0, 0, 8, 0)

	var prevMillis int64 = -1
	for rt := uint32(1000); rt <= 9000; rt += 250 {
		got := At(prev, next, rt/1000, uint16(rt%1000), true)
		millis := int64(got.Second)*1000 + int64(got.Msec)
		if millis < prevMillis {
			t.Fatalf("At() not monotonic at rt=%d: got %d ms, previous %d ms", rt, millis, prevMillis)
		}
		prevMillis = millis
	}
}
