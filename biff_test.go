package xls

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"

	"github.com/vstasn/ole2"
)

// le encodes fixed-size values little-endian, back to back.
func le(parts ...any) []byte {
	var b bytes.Buffer
	for _, p := range parts {
		if err := binary.Write(&b, binary.LittleEndian, p); err != nil {
			panic(err)
		}
	}

	return b.Bytes()
}

// biffWriter assembles BIFF record streams for tests.
type biffWriter struct {
	buf bytes.Buffer
}

func (w *biffWriter) record(id uint16, body []byte) {
	w.buf.Write(le(id, uint16(len(body))))
	w.buf.Write(body)
}

func (w *biffWriter) bof(v Version, typ uint16) {
	if v == BIFF8 {
		w.record(recBOF, le(uint16(v), typ, uint16(0x0DBB), uint16(0x07CC), uint32(0x41), uint32(0x0006)))
		return
	}

	w.record(recBOF, le(uint16(v), typ, uint16(0x0DBB), uint16(0x07CC)))
}

func (w *biffWriter) eof() {
	w.record(recEOF, nil)
}

func (w *biffWriter) xf(v Version, format uint16) {
	if v == BIFF8 {
		w.record(recXF, append(le(uint16(0), format), make([]byte, 16)...))
		return
	}

	w.record(recXF, append(le(uint16(0), format), make([]byte, 12)...))
}

func (w *biffWriter) sst(strs []string, limit int) {
	for i, seg := range sstRecords(strs, limit) {
		if i == 0 {
			w.record(recSST, seg)
		} else {
			w.record(recContinue, seg)
		}
	}
}

func encodeChars(s string) ([]uint16, bool) {
	units := utf16.Encode([]rune(s))
	for _, u := range units {
		if u > 0xFF {
			return units, true
		}
	}

	return units, false
}

func appendChars(dst []byte, units []uint16, wide bool) []byte {
	for _, u := range units {
		if wide {
			dst = append(dst, byte(u), byte(u>>8))
		} else {
			dst = append(dst, byte(u))
		}
	}

	return dst
}

// ustr16 is a BIFF8 unicode string with a 16-bit character count.
func ustr16(s string) []byte {
	units, wide := encodeChars(s)
	flags := byte(0)
	if wide {
		flags = sstWide
	}

	return appendChars(le(uint16(len(units)), flags), units, wide)
}

// ustr8 is a BIFF8 unicode string with an 8-bit character count.
func ustr8(s string) []byte {
	units, wide := encodeChars(s)
	flags := byte(0)
	if wide {
		flags = sstWide
	}

	return appendChars(le(uint8(len(units)), flags), units, wide)
}

// bstr is a BIFF7 byte string with a count of the given width.
func bstr(raw []byte, width int) []byte {
	if width == 1 {
		return append([]byte{byte(len(raw))}, raw...)
	}

	return append(le(uint16(len(raw))), raw...)
}

// sstRecords encodes strs as an SST body followed by CONTINUE bodies of at
// most limit bytes, splitting character data the way Excel does.
func sstRecords(strs []string, limit int) [][]byte {
	segs := [][]byte{le(uint32(len(strs)), uint32(len(strs)))}
	last := func() *[]byte { return &segs[len(segs)-1] }

	for _, s := range strs {
		units, wide := encodeChars(s)
		flags := byte(0)
		width := 1
		if wide {
			flags, width = sstWide, 2
		}

		if len(*last())+3 > limit {
			segs = append(segs, nil)
		}
		*last() = append(*last(), le(uint16(len(units)), flags)...)

		for i := 0; i < len(units); {
			room := (limit - len(*last())) / width
			if room == 0 {
				segs = append(segs, []byte{flags})
				continue
			}

			n := min(room, len(units)-i)
			*last() = appendChars(*last(), units[i:i+n], wide)
			i += n
		}
	}

	return segs
}

type testSheet struct {
	name  string
	vis   uint8
	typ   uint8
	build func(w *biffWriter)
}

// buildBook writes a globals sub-stream with one BOUNDSHEET per sheet,
// followed by the sheet sub-streams, and patches the sheet offsets.
func buildBook(v Version, globals func(w *biffWriter), sheets ...testSheet) []byte {
	w := &biffWriter{}
	w.bof(v, substreamGlobals)
	if globals != nil {
		globals(w)
	}

	fix := make([]int, len(sheets))
	for i, s := range sheets {
		fix[i] = w.buf.Len() + 4

		var name []byte
		if v == BIFF8 {
			name = ustr8(s.name)
		} else {
			name = bstr([]byte(s.name), 1)
		}
		w.record(recBoundSheet, append(le(uint32(0), s.vis, s.typ), name...))
	}
	w.eof()

	offsets := make([]uint32, len(sheets))
	for i, s := range sheets {
		offsets[i] = uint32(w.buf.Len())
		w.bof(v, substreamWorksheet)
		if s.build != nil {
			s.build(w)
		}
		w.eof()
	}

	out := w.buf.Bytes()
	for i, pos := range fix {
		binary.LittleEndian.PutUint32(out[pos:], offsets[i])
	}

	return out
}

func encodeRKInt(n int32) uint32 {
	return uint32(n)<<2 | 0x02
}

const (
	sectorSize   = 512
	sectorCutoff = 4096
	fatSector    = 0xFFFFFFFD
)

// compoundFile wraps stream in a minimal OLE2 container: the allocation
// table sectors, one directory sector, then the stream sectors in order.
// Streams are padded to the cutoff so they never land in the short stream.
func compoundFile(name string, stream []byte) []byte {
	body := make([]byte, max(len(stream), sectorCutoff))
	copy(body, stream)

	nStream := (len(body) + sectorSize - 1) / sectorSize
	nFat := 1
	for nFat*sectorSize/4 < nFat+1+nStream {
		nFat++
	}

	dirSect := uint32(nFat)
	first := dirSect + 1

	fat := make([]uint32, nFat*sectorSize/4)
	for i := range fat {
		fat[i] = ole2.FREESECT
	}
	for i := 0; i < nFat; i++ {
		fat[i] = fatSector
	}
	fat[dirSect] = ole2.ENDOFCHAIN
	for i := uint32(0); i < uint32(nStream); i++ {
		fat[first+i] = first + i + 1
	}
	fat[first+uint32(nStream)-1] = ole2.ENDOFCHAIN

	h := ole2.Header{
		Id:           [2]uint32{0xE011CFD0, 0xE11AB1A1},
		Verminor:     0x3E,
		Verdll:       3,
		Byteorder:    0xFFFE,
		Lsectorb:     9,
		Lssectorb:    6,
		Cfat:         uint32(nFat),
		Dirstart:     dirSect,
		Sectorcutoff: sectorCutoff,
		Sfatstart:    ole2.ENDOFCHAIN,
		Difstart:     ole2.ENDOFCHAIN,
	}
	for i := range h.Msat {
		h.Msat[i] = ole2.FREESECT
	}
	for i := 0; i < nFat; i++ {
		h.Msat[i] = uint32(i)
	}

	root := dirEntry("Root Entry", ole2.ROOT, ole2.ENDOFCHAIN, 0)
	root.Child = 1
	entries := []ole2.File{root, dirEntry(name, ole2.USERSTREAM, first, uint32(len(body)))}

	var buf bytes.Buffer
	buf.Write(le(h, fat, entries))
	buf.Write(make([]byte, sectorSize-len(entries)*128))
	buf.Write(body)
	buf.Write(make([]byte, nStream*sectorSize-len(body)))

	return buf.Bytes()
}

func dirEntry(name string, typ byte, start, size uint32) ole2.File {
	units := utf16.Encode([]rune(name))

	f := ole2.File{
		Bsize:  uint16((len(units) + 1) * 2),
		Type:   typ,
		Left:   ole2.FREESECT,
		Right:  ole2.FREESECT,
		Child:  ole2.FREESECT,
		Sstart: start,
		Size:   size,
	}
	copy(f.NameBts[:], units)

	return f
}
