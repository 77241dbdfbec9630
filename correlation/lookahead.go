package correlation

import (
	"io"

	"github.com/m-lab/ssr-archive/framing"
)

// LookAhead advances through an independent Frame Reader, discarding
// everything that is not an A3 packet, and yields the next TCP. It never
// perturbs a primary reader's position — callers must open a second
// read handle on the same path (spec §4.4, §5).
type LookAhead struct {
	r *framing.Reader
}

// NewLookAhead wraps src, which must be an independent read handle from
// whatever the primary cursor uses.
func NewLookAhead(src io.ReadSeeker) *LookAhead {
	return &LookAhead{r: framing.NewReader(src)}
}

// Next returns the next TCP in the stream, or the zero sentinel once the
// stream is exhausted (spec §4.4).
func (la *LookAhead) Next() (TCP, error) {
	for {
		pkt, err := la.r.Next()
		if err != nil {
			if err == io.EOF {
				return Zero, nil
			}
			return Zero, err
		}
		if pkt.Type != framing.TypeTCP {
			continue
		}
		return Parse(pkt.Payload)
	}
}
