package tsfmt

import (
	"testing"

	"github.com/m-lab/ssr-archive/correlation"
)

func TestFormatDefaultWithMsec(t *testing.T) {
	f, err := New(DefaultFormat, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tcp := correlation.TCP{Year: 2020, Month: 1, Day: 1, Hour: 0, Minute: 0, Second: 2, Msec: 500}
	got, err := f.Format(tcp)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	want := "2020 01 01 00 00 02 500"
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestFormatSuppressMsec(t *testing.T) {
	f, err := New(DefaultFormat, true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tcp := correlation.TCP{Year: 2020, Month: 1, Day: 1, Hour: 0, Minute: 0, Second: 2, Msec: 500}
	got, err := f.Format(tcp)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	want := "2020 01 01 00 00 02 "
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestNewRejectsInvalidFormat(t *testing.T) {
	if _, err := New("%Q%", false); err == nil {
		t.Fatal("New accepted a malformed strftime pattern")
	}
}
