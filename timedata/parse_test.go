package timedata

import (
	"reflect"
	"testing"
)

func header(msec uint16, count int) []byte {
	w := (msec/2)<<7 | uint16(count)
	return []byte{byte(w >> 8), byte(w)}
}

func TestParseSingleSubpacket(t *testing.T) {
	payload := []byte{0, 0, 0, 2} // runtime_sec = 2
	payload = append(payload, header(500, 3)...)
	payload = append(payload, []byte("ABC")...)

	ttdp, err := Parse(payload)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if ttdp.RuntimeSec != 2 {
		t.Errorf("RuntimeSec = %d, want 2", ttdp.RuntimeSec)
	}
	want := []Subpacket{{MsecOffset: 500, Bytes: []byte("ABC")}}
	if !reflect.DeepEqual(ttdp.Subpackets, want) {
		t.Errorf("Subpackets = %+v, want %+v", ttdp.Subpackets, want)
	}
}

func TestParseCoalescesAdjacentSameOffset(t *testing.T) {
	payload := []byte{0, 0, 0, 5}
	payload = append(payload, header(100, 2)...)
	payload = append(payload, []byte("ab")...)
	payload = append(payload, header(100, 3)...)
	payload = append(payload, []byte("cde")...)

	ttdp, err := Parse(payload)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(ttdp.Subpackets) != 1 {
		t.Fatalf("got %d subpackets, want 1 coalesced subpacket", len(ttdp.Subpackets))
	}
	if string(ttdp.Subpackets[0].Bytes) != "abcde" {
		t.Errorf("coalesced bytes = %q, want %q", ttdp.Subpackets[0].Bytes, "abcde")
	}
}

func TestParseDoesNotCoalesceDifferentOffsets(t *testing.T) {
	payload := []byte{0, 0, 0, 5}
	payload = append(payload, header(100, 2)...)
	payload = append(payload, []byte("ab")...)
	payload = append(payload, header(102, 2)...)
	payload = append(payload, []byte("cd")...)

	ttdp, err := Parse(payload)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(ttdp.Subpackets) != 2 {
		t.Fatalf("got %d subpackets, want 2", len(ttdp.Subpackets))
	}
}

func TestParseRejectsTruncatedBody(t *testing.T) {
	payload := []byte{0, 0, 0, 5}
	payload = append(payload, header(100, 4)...)
	payload = append(payload, []byte("ab")...) // only 2 of 4 bytes present
	if _, err := Parse(payload); err == nil {
		t.Fatal("Parse accepted a truncated subpacket body")
	}
}
