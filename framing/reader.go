package framing

import (
	"bufio"
	"errors"
	"io"

	"github.com/m-lab/ssr-archive/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// readBufferSize is the large buffered-read size called for by spec §5
// (~1 MiB) to make sequential archive reads cheap.
const readBufferSize = 1 << 20

// Reader is the byte-level framing state machine (spec §4.1). It wraps an
// io.ReadSeeker that supports forward reads and relative seeks backward by
// up to one packet's worth of bytes, which the resync policy relies on.
type Reader struct {
	src io.ReadSeeker
	buf *bufio.Reader
	pos int64 // absolute offset of the next unread byte
}

// NewReader wraps src for sequential packet extraction starting at its
// current position (normally offset 0).
func NewReader(src io.ReadSeeker) *Reader {
	return &Reader{src: src, buf: bufio.NewReaderSize(src, readBufferSize)}
}

func (r *Reader) readByte() (byte, error) {
	b, err := r.buf.ReadByte()
	if err != nil {
		return 0, err
	}
	r.pos++
	return b, nil
}

func (r *Reader) readFull(p []byte) error {
	for i := range p {
		b, err := r.readByte()
		if err != nil {
			return err
		}
		p[i] = b
	}
	return nil
}

// rewindTo seeks the underlying source back to offset and discards any
// buffered look-ahead bytes, re-arming the reader to continue from there.
func (r *Reader) rewindTo(offset int64) error {
	if _, err := r.src.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	r.buf.Reset(r.src)
	r.pos = offset
	return nil
}

// Next extracts the next well-formed packet, or returns io.EOF once the
// stream is exhausted without yielding one (end-of-stream at any state
// other than HUNT is "no packet", spec §4.1).
func (r *Reader) Next() (*Packet, error) {
	for {
		pkt, retry, err := r.attempt()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, err
		}
		if retry {
			continue
		}
		return pkt, nil
	}
}

// attempt hunts for the next 0x82 prefix and tries to extract one packet
// starting there. retry==true means the candidate was rejected (wrong type
// byte, bad subpacket header, or bad checksum) and the caller should try
// again from the reader's now-resynced position.
func (r *Reader) attempt() (pkt *Packet, retry bool, err error) {
	for {
		b, err := r.readByte()
		if err != nil {
			return nil, false, err
		}
		if b == PrefixByte {
			break
		}
	}
	prefixPos := r.pos - 1

	typeByte, err := r.readByte()
	if err != nil {
		return nil, false, err
	}

	switch typeByte {
	case TypeTCP:
		return r.readTCPBody(prefixPos)
	case TypeData:
		return r.readDataBody(prefixPos)
	default:
		// AFTER_SYNC saw neither 0xA2 nor 0xA3. Rewind one byte so this
		// byte is reconsidered by HUNT on the next attempt — this also
		// correctly recovers a 0x82 byte that happened to land here.
		metrics.ResyncTotal.Inc()
		if err := r.rewindTo(r.pos - 1); err != nil {
			return nil, false, err
		}
		return nil, true, nil
	}
}

func (r *Reader) readTCPBody(prefixPos int64) (*Packet, bool, error) {
	body := make([]byte, 12) // 10 bytes payload + 2 bytes checksum
	if err := r.readFull(body); err != nil {
		return nil, false, err
	}
	full := append([]byte{PrefixByte, TypeTCP}, body...)
	if !validateChecksum(full) {
		metrics.ChecksumFailureTotal.Inc()
		metrics.ResyncTotal.Inc()
		if err := r.rewindTo(prefixPos + 1); err != nil {
			return nil, false, err
		}
		return nil, true, nil
	}
	metrics.PacketsReadTotal.With(prometheus.Labels{"type": "tcp"}).Inc()
	return &Packet{
		Type:    TypeTCP,
		Payload: body[:len(body)-2],
		Offset:  uint64(prefixPos + 1),
	}, false, nil
}

func (r *Reader) readDataBody(prefixPos int64) (*Packet, bool, error) {
	buf := []byte{PrefixByte, TypeData}

	var rt [4]byte
	if err := r.readFull(rt[:]); err != nil {
		return nil, false, err
	}
	buf = append(buf, rt[:]...)

	for {
		var word [2]byte
		if err := r.readFull(word[:]); err != nil {
			return nil, false, err
		}
		w := uint16(word[0])<<8 | uint16(word[1])

		if w == 0xFFFF {
			buf = append(buf, word[:]...)
			var cksum [2]byte
			if err := r.readFull(cksum[:]); err != nil {
				return nil, false, err
			}
			buf = append(buf, cksum[:]...)
			if !validateChecksum(buf) {
				metrics.ChecksumFailureTotal.Inc()
				metrics.ResyncTotal.Inc()
				if err := r.rewindTo(prefixPos + 1); err != nil {
					return nil, false, err
				}
				return nil, true, nil
			}
			metrics.PacketsReadTotal.With(prometheus.Labels{"type": "data"}).Inc()
			return &Packet{
				Type:    TypeData,
				Payload: buf[2 : len(buf)-4],
				Offset:  uint64(prefixPos + 1),
			}, false, nil
		}

		msec := (w >> 7) * 2
		count := w & 0x7F
		if msec > 999 || count == 0 {
			metrics.ResyncTotal.Inc()
			if err := r.rewindTo(prefixPos + 1); err != nil {
				return nil, false, err
			}
			return nil, true, nil
		}

		buf = append(buf, word[:]...)
		body := make([]byte, count)
		if err := r.readFull(body); err != nil {
			return nil, false, err
		}
		buf = append(buf, body...)
	}
}
