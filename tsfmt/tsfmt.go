// Package tsfmt renders a correlation.TCP as text through a user-supplied
// strftime format string, with an optional millisecond suffix.
package tsfmt

import (
	"fmt"
	"time"

	"github.com/lestrrat-go/strftime"

	"github.com/m-lab/ssr-archive/correlation"
)

// DefaultFormat is the calendar format used when no override is given
// (spec §6, option -N).
const DefaultFormat = "%Y %m %d %H %M %S "

// Formatter renders TCPs as text. It caches the compiled strftime pattern
// so repeated formatting (one call per stamped line) avoids recompiling.
type Formatter struct {
	pattern       *strftime.Strftime
	suppressMsec  bool
	rawFormatSpec string
}

// New compiles format (standard strftime vocabulary, spec §4.6) and
// returns a Formatter. suppressMsec disables the trailing millisecond
// suffix.
func New(format string, suppressMsec bool) (*Formatter, error) {
	p, err := strftime.New(format)
	if err != nil {
		return nil, fmt.Errorf("tsfmt: invalid format %q: %w", format, err)
	}
	return &Formatter{pattern: p, suppressMsec: suppressMsec, rawFormatSpec: format}, nil
}

// Format renders tcp in UTC. It fails fatally from the caller's
// perspective if formatting yields zero bytes (spec §4.6) — callers
// should treat a non-nil error as fatal.
func (f *Formatter) Format(tcp correlation.TCP) (string, error) {
	t := time.Date(int(tcp.Year), time.Month(tcp.Month), int(tcp.Day),
		int(tcp.Hour), int(tcp.Minute), int(tcp.Second), 0, time.UTC)

	s := f.pattern.FormatString(t)
	if !f.suppressMsec {
		s = fmt.Sprintf("%s%03d", s, tcp.Msec)
	}
	if len(s) == 0 {
		return "", fmt.Errorf("tsfmt: format %q produced zero bytes", f.rawFormatSpec)
	}
	return s, nil
}
