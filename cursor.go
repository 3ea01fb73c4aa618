package xls

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Charset selects how many bytes a string character occupies.
type Charset uint8

const (
	// CharsetASCII stores one byte per character (BIFF7 strings and compressed BIFF8 strings).
	CharsetASCII Charset = iota
	// CharsetUTF16 stores one little-endian UTF-16 code unit per character.
	CharsetUTF16
)

func (cs Charset) width() int {
	if cs == CharsetUTF16 {
		return 2
	}

	return 1
}

// Cursor reads little-endian fields from a seekable BIFF stream.
// Positions are relative to the offset the cursor was created with.
type Cursor struct {
	r     io.ReadSeeker
	base  int64
	pos   int64
	limit int64
	buf   [8]byte
}

// NewCursor positions a cursor at base.
func NewCursor(r io.ReadSeeker, base int64) (*Cursor, error) {
	if _, err := r.Seek(base, io.SeekStart); err != nil {
		return nil, err
	}

	return &Cursor{r: r, base: base}, nil
}

func newBodyCursor(body []byte) *Cursor {
	return &Cursor{r: bytes.NewReader(body)}
}

// SetLimit makes every read that would cross limit fail with ErrTruncatedStream.
// Zero removes the limit.
func (c *Cursor) SetLimit(limit int64) {
	c.limit = limit
}

func (c *Cursor) read(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrTruncatedStream
	}

	if c.limit > 0 && c.pos+int64(n) > c.limit {
		return nil, ErrTruncatedStream
	}

	var p []byte
	if n <= len(c.buf) {
		p = c.buf[:n]
	} else {
		p = make([]byte, n)
	}

	got, err := io.ReadFull(c.r, p)
	c.pos += int64(got)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrTruncatedStream
		}

		return nil, err
	}

	return p, nil
}

func (c *Cursor) ReadU8() (uint8, error) {
	p, err := c.read(1)
	if err != nil {
		return 0, err
	}

	return p[0], nil
}

func (c *Cursor) ReadU16() (uint16, error) {
	p, err := c.read(2)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint16(p), nil
}

func (c *Cursor) ReadU32() (uint32, error) {
	p, err := c.read(4)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(p), nil
}

// ReadF64 reads an 8-byte IEEE-754 double.
func (c *Cursor) ReadF64() (float64, error) {
	p, err := c.read(8)
	if err != nil {
		return 0, err
	}

	return math.Float64frombits(binary.LittleEndian.Uint64(p)), nil
}

// ReadBytes returns a fresh copy of the next n bytes.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	p, err := c.read(n)
	if err != nil {
		return nil, err
	}

	out := make([]byte, n)
	copy(out, p)

	return out, nil
}

// ReadFixedString reads count characters and returns their raw bytes.
func (c *Cursor) ReadFixedString(count int, cs Charset) ([]byte, error) {
	return c.ReadBytes(count * cs.width())
}

// ReadLengthPrefixedString reads a 1, 2 or 4 byte character count followed
// by that many characters.
func (c *Cursor) ReadLengthPrefixedString(width int, cs Charset) ([]byte, error) {
	var count int

	switch width {
	case 1:
		n, err := c.ReadU8()
		if err != nil {
			return nil, err
		}
		count = int(n)
	case 2:
		n, err := c.ReadU16()
		if err != nil {
			return nil, err
		}
		count = int(n)
	case 4:
		n, err := c.ReadU32()
		if err != nil {
			return nil, err
		}
		count = int(n)
	default:
		return nil, fmt.Errorf("xls: invalid length field width %d", width)
	}

	return c.ReadFixedString(count, cs)
}

// Seek moves to a stream-relative position.
func (c *Cursor) Seek(pos int64) error {
	if pos < 0 {
		return fmt.Errorf("xls: seek to negative position %d", pos)
	}

	if _, err := c.r.Seek(c.base+pos, io.SeekStart); err != nil {
		return err
	}
	c.pos = pos

	return nil
}

// Tell returns the stream-relative position.
func (c *Cursor) Tell() int64 {
	return c.pos
}

func (c *Cursor) Skip(n int64) error {
	return c.Seek(c.pos + n)
}
