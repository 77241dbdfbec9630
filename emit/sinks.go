package emit

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

func init() {
	// The SSR tabular dumps are space-delimited, not comma-delimited;
	// reconfigure gocsv's writer factory once for the whole process.
	gocsv.SetCSVWriter(func(w io.Writer) *gocsv.SafeCSVWriter {
		cw := csv.NewWriter(w)
		cw.Comma = ' '
		return gocsv.NewSafeCSVWriter(cw)
	})
}

// tabularSink wraps a destination writer, emitting a struct-tag-derived
// header line once (if enabled) before any row.
type tabularSink struct {
	w           io.Writer
	withHeader  bool
	wroteHeader bool
}

func newTabularSink(w io.Writer, withHeader bool) *tabularSink {
	return &tabularSink{w: w, withHeader: withHeader}
}

func (s *tabularSink) writeTCPRow(row interface{}) error {
	return s.write(row)
}

func (s *tabularSink) writeDataRow(row interface{}) error {
	return s.write(row)
}

// writeMixedRow writes row.Line verbatim. The line is already rendered
// and space-separated, so it bypasses the csv writer, which would quote it.
func (s *tabularSink) writeMixedRow(row MixedRow) error {
	if s.withHeader && !s.wroteHeader {
		s.wroteHeader = true
		if _, err := io.WriteString(s.w, "line\n"); err != nil {
			return fmt.Errorf("emit: writing header: %w", err)
		}
	}
	if _, err := io.WriteString(s.w, row.Line+"\n"); err != nil {
		return fmt.Errorf("emit: writing row: %w", err)
	}
	return nil
}

// write marshals a single-element slice, emitting the header line on the
// very first call if headers are enabled (spec §4.8's "optional header
// line if headers are enabled").
func (s *tabularSink) write(rows interface{}) error {
	if s.withHeader && !s.wroteHeader {
		s.wroteHeader = true
		if err := gocsv.Marshal(rows, s.w); err != nil {
			return fmt.Errorf("emit: writing header+row: %w", err)
		}
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(rows, s.w); err != nil {
		return fmt.Errorf("emit: writing row: %w", err)
	}
	return nil
}
