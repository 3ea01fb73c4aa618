package xls

import (
	"encoding/binary"
	"errors"
)

// Option flags of a BIFF8 unicode string.
const (
	sstWide     = 0x01
	sstExtended = 0x04
	sstRichText = 0x08
)

// continuationSource yields the body of the CONTINUE record that follows the
// data consumed so far. It returns ErrMalformedContinuation when the next
// record is something else.
type continuationSource interface {
	nextContinue() ([]byte, error)
}

// sstBuilder walks string entries across the SST body and its CONTINUE chain.
type sstBuilder struct {
	src   continuationSource
	seg   []byte
	units []uint16
}

// buildSharedStrings decodes the SST record body. complete is false when the
// record chain ended on an entry boundary before the declared unique count
// was reached; the strings decoded up to that point are still returned.
func buildSharedStrings(body []byte, src continuationSource) (strs []string, complete bool, err error) {
	if len(body) < 8 {
		return nil, false, ErrTruncatedStream
	}

	// body[0:4] is the total reference count, informational only
	unique := binary.LittleEndian.Uint32(body[4:])

	b := &sstBuilder{src: src, seg: body[8:]}
	strs = make([]string, 0, min(int(unique), len(body)))

	for i := uint32(0); i < unique; i++ {
		if len(b.seg) == 0 {
			if err := b.advance(); err != nil {
				if errors.Is(err, ErrMalformedContinuation) {
					return strs, false, nil
				}
				return nil, false, err
			}
		}

		s, err := b.entry()
		if err != nil {
			return nil, false, err
		}

		strs = append(strs, s)
	}

	return strs, true, nil
}

func (b *sstBuilder) advance() error {
	data, err := b.src.nextContinue()
	if err != nil {
		return err
	}
	b.seg = data

	return nil
}

// take returns the next n bytes of entry header data. Header fields carry no
// option byte when they straddle a record boundary.
func (b *sstBuilder) take(n int) ([]byte, error) {
	if len(b.seg) >= n {
		p := b.seg[:n]
		b.seg = b.seg[n:]
		return p, nil
	}

	p := make([]byte, 0, n)
	for len(p) < n {
		if len(b.seg) == 0 {
			if err := b.advance(); err != nil {
				return nil, err
			}
			continue
		}

		k := min(n-len(p), len(b.seg))
		p = append(p, b.seg[:k]...)
		b.seg = b.seg[k:]
	}

	return p, nil
}

func (b *sstBuilder) skip(n int64) error {
	for n > 0 {
		if len(b.seg) == 0 {
			if err := b.advance(); err != nil {
				return err
			}
			continue
		}

		k := min(n, int64(len(b.seg)))
		b.seg = b.seg[k:]
		n -= k
	}

	return nil
}

func (b *sstBuilder) entry() (string, error) {
	hdr, err := b.take(3)
	if err != nil {
		return "", err
	}

	count := int(binary.LittleEndian.Uint16(hdr))
	flags := hdr[2]

	var runs, ext int64
	if flags&sstRichText != 0 {
		p, err := b.take(2)
		if err != nil {
			return "", err
		}
		runs = int64(binary.LittleEndian.Uint16(p))
	}

	if flags&sstExtended != 0 {
		p, err := b.take(4)
		if err != nil {
			return "", err
		}
		ext = int64(binary.LittleEndian.Uint32(p))
	}

	// Characters are stored as UTF-16 code units. A compressed byte is the
	// low byte of its code unit, so switching modes mid-string needs no
	// conversion of what was read before.
	wide := flags&sstWide != 0
	units := b.units[:0]
	low := -1 // first byte of a code unit cut by a record boundary

	for len(units) < count {
		if len(b.seg) == 0 {
			if err := b.advance(); err != nil {
				return "", err
			}

			if len(b.seg) == 0 {
				continue
			}

			wide = b.seg[0]&sstWide != 0
			b.seg = b.seg[1:]
			continue
		}

		if !wide {
			if low >= 0 {
				units = append(units, uint16(low))
				low = -1
				continue
			}

			n := min(count-len(units), len(b.seg))
			for _, ch := range b.seg[:n] {
				units = append(units, uint16(ch))
			}
			b.seg = b.seg[n:]
			continue
		}

		if low >= 0 {
			units = append(units, uint16(low)|uint16(b.seg[0])<<8)
			b.seg = b.seg[1:]
			low = -1
			continue
		}

		if len(b.seg) == 1 {
			low = int(b.seg[0])
			b.seg = b.seg[:0]
			continue
		}

		n := min(count-len(units), len(b.seg)/2)
		for i := 0; i < n; i++ {
			units = append(units, binary.LittleEndian.Uint16(b.seg[2*i:]))
		}
		b.seg = b.seg[2*n:]
	}

	b.units = units

	if err := b.skip(runs*4 + ext); err != nil {
		return "", err
	}

	return decodeUTF16(units), nil
}
