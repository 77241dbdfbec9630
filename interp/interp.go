package interp

import (
	"math"

	"github.com/m-lab/ssr-archive/correlation"
	"github.com/m-lab/ssr-archive/metrics"
)

// At returns the wall-clock TCP at a subpacket's runtime, bracketed by
// prev (required non-sentinel) and next (may be the sentinel). When
// interpolate is false, or next cannot bracket RT, the non-interpolated
// fallback dt = RT - prev.RuntimeMS is used instead (spec §4.5).
func At(prev, next correlation.TCP, runtimeSec uint32, msecOffset uint16, interpolate bool) correlation.TCP {
	rt := int64(runtimeSec)*1000 + int64(msecOffset)

	dt := nonInterpolatedDelta(prev, rt)
	if interpolate && brackets(prev, next, rt) {
		dt = interpolatedDelta(prev, next, rt)
	} else {
		metrics.NonInterpolatedTotal.Inc()
	}

	dtSec := dt / 1000
	dtMsec := dt%1000 + int64(prev.Msec)
	if dtMsec > 999 {
		dtMsec -= 1000
		dtSec++
	}

	baseSec := epochMillis(prev) / 1000
	year, month, day, hour, minute, second := fromEpochSecond(baseSec + dtSec)

	return correlation.TCP{
		RuntimeMS: uint32(rt),
		Year:      year,
		Month:     month,
		Day:       day,
		Hour:      hour,
		Minute:    minute,
		Second:    second,
		Msec:      uint16(dtMsec),
	}
}

func nonInterpolatedDelta(prev correlation.TCP, rt int64) int64 {
	return rt - int64(prev.RuntimeMS)
}

// brackets reports whether next can legitimately bracket prev for
// interpolation: it is not the sentinel, strictly later than prev, and
// rt falls within [prev.RuntimeMS, next.RuntimeMS] (spec §4.5).
func brackets(prev, next correlation.TCP, rt int64) bool {
	if next.IsZero() {
		return false
	}
	if next.RuntimeMS <= prev.RuntimeMS {
		return false
	}
	if rt < int64(prev.RuntimeMS) || rt > int64(next.RuntimeMS) {
		return false
	}
	return true
}

func interpolatedDelta(prev, next correlation.TCP, rt int64) int64 {
	frac := float64(rt-int64(prev.RuntimeMS)) / float64(int64(next.RuntimeMS)-int64(prev.RuntimeMS))
	dRTCms := wallclockMillis(next) - wallclockMillis(prev)
	return int64(math.Floor(frac * float64(dRTCms)))
}
