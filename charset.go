package xls

import (
	"encoding/binary"
	"unicode/utf16"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// codepageEncoding maps a CODEPAGE record value to a single-byte decoder.
// Unknown pages fall back to Windows-1252.
func codepageEncoding(cp uint16) encoding.Encoding {
	switch cp {
	case 437:
		return charmap.CodePage437
	case 850:
		return charmap.CodePage850
	case 852:
		return charmap.CodePage852
	case 855:
		return charmap.CodePage855
	case 858:
		return charmap.CodePage858
	case 860:
		return charmap.CodePage860
	case 862:
		return charmap.CodePage862
	case 863:
		return charmap.CodePage863
	case 865:
		return charmap.CodePage865
	case 866:
		return charmap.CodePage866
	case 874:
		return charmap.Windows874
	case 1250:
		return charmap.Windows1250
	case 1251:
		return charmap.Windows1251
	case 1253:
		return charmap.Windows1253
	case 1254:
		return charmap.Windows1254
	case 1255:
		return charmap.Windows1255
	case 1256:
		return charmap.Windows1256
	case 1257:
		return charmap.Windows1257
	case 1258:
		return charmap.Windows1258
	case 10000, 32768:
		return charmap.Macintosh
	case 10007:
		return charmap.MacintoshCyrillic
	case 28591:
		return charmap.ISO8859_1
	}

	return charmap.Windows1252
}

// textDecoder turns on-disk strings into Go strings. BIFF8 strings carry a
// flags byte and may be UTF-16; BIFF7 strings are bytes in the workbook codepage.
type textDecoder struct {
	biff8 bool
	enc   encoding.Encoding
}

func newTextDecoder(v Version, codepage uint16) textDecoder {
	return textDecoder{biff8: v == BIFF8, enc: codepageEncoding(codepage)}
}

func (t textDecoder) decodeBytes(raw []byte) string {
	out, err := t.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}

	return string(out)
}

// readString reads a string whose character count is countWidth bytes wide.
func (t textDecoder) readString(c *Cursor, countWidth int) (string, error) {
	if !t.biff8 {
		raw, err := c.ReadLengthPrefixedString(countWidth, CharsetASCII)
		if err != nil {
			return "", err
		}

		return t.decodeBytes(raw), nil
	}

	var count int
	if countWidth == 1 {
		n, err := c.ReadU8()
		if err != nil {
			return "", err
		}
		count = int(n)
	} else {
		n, err := c.ReadU16()
		if err != nil {
			return "", err
		}
		count = int(n)
	}

	return readUnicodeBody(c, count)
}

// readUnicodeBody reads the flags byte and characters of a BIFF8 unicode
// string, skipping any rich-text runs and phonetic block that follow.
func readUnicodeBody(c *Cursor, count int) (string, error) {
	flags, err := c.ReadU8()
	if err != nil {
		return "", err
	}

	var runs uint16
	var ext uint32

	if flags&sstRichText != 0 {
		if runs, err = c.ReadU16(); err != nil {
			return "", err
		}
	}

	if flags&sstExtended != 0 {
		if ext, err = c.ReadU32(); err != nil {
			return "", err
		}
	}

	cs := CharsetASCII
	if flags&sstWide != 0 {
		cs = CharsetUTF16
	}

	raw, err := c.ReadFixedString(count, cs)
	if err != nil {
		return "", err
	}

	if runs > 0 || ext > 0 {
		// trailing formatting data is allowed to be cut off by the record end
		_ = c.Skip(int64(runs)*4 + int64(ext))
	}

	return decodeChars(raw, cs), nil
}

// decodeChars converts compressed (Latin-1) or UTF-16LE bytes to a string.
func decodeChars(raw []byte, cs Charset) string {
	if cs == CharsetASCII {
		units := make([]uint16, len(raw))
		for i, b := range raw {
			units[i] = uint16(b)
		}

		return decodeUTF16(units)
	}

	units := make([]uint16, len(raw)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(raw[2*i:])
	}

	return decodeUTF16(units)
}

func decodeUTF16(units []uint16) string {
	return string(utf16.Decode(units))
}
