package xls

import "fmt"

// Record opcodes.
const (
	recFormula     uint16 = 0x0006
	recEOF         uint16 = 0x000A
	recDateMode    uint16 = 0x0022
	recFilepass    uint16 = 0x002F
	recContinue    uint16 = 0x003C
	recCodepage    uint16 = 0x0042
	recWriteAccess uint16 = 0x005C
	recRK2         uint16 = 0x007E
	recBoundSheet  uint16 = 0x0085
	recMulRK       uint16 = 0x00BD
	recMulBlank    uint16 = 0x00BE
	recRString     uint16 = 0x00D6
	recDBCell      uint16 = 0x00D7
	recXF          uint16 = 0x00E0
	recMergedCells uint16 = 0x00E5
	recSST         uint16 = 0x00FC
	recLabelSST    uint16 = 0x00FD
	recExtSST      uint16 = 0x00FF
	recDimensions  uint16 = 0x0200
	recBlank       uint16 = 0x0201
	recNumber      uint16 = 0x0203
	recLabel       uint16 = 0x0204
	recBoolErr     uint16 = 0x0205
	recFormula3    uint16 = 0x0206
	recString      uint16 = 0x0207
	recRow         uint16 = 0x0208
	recIndex       uint16 = 0x020B
	recRK          uint16 = 0x027E
	recFormula4    uint16 = 0x0406
	recFormat      uint16 = 0x041E
	recBOF         uint16 = 0x0809
)

// Version is the BIFF version declared by a BOF record.
type Version uint16

const (
	BIFF7 Version = 0x0500
	BIFF8 Version = 0x0600
)

func (v Version) String() string {
	switch v {
	case BIFF7:
		return "BIFF7"
	case BIFF8:
		return "BIFF8"
	}

	return fmt.Sprintf("BIFF(0x%04X)", uint16(v))
}

// BOF sub-stream types.
const (
	substreamGlobals   uint16 = 0x0005
	substreamWorksheet uint16 = 0x0010
)

// the information unit in xls file.
type recordHeader struct {
	ID   uint16
	Size uint16
}

type record struct {
	recordHeader
	offset int64 // stream-relative position of the header
	data   []byte
}

// next is where the following record starts, whatever a handler consumed.
func (r *record) next() int64 {
	return r.offset + 4 + int64(r.Size)
}

func readRecord(c *Cursor) (*record, error) {
	rec := &record{offset: c.Tell()}

	var err error
	if rec.ID, err = c.ReadU16(); err != nil {
		return rec, err
	}

	if rec.Size, err = c.ReadU16(); err != nil {
		return rec, err
	}

	if rec.data, err = c.ReadBytes(int(rec.Size)); err != nil {
		return rec, err
	}

	return rec, nil
}

type biffHeader struct {
	Ver    Version
	Type   uint16
	IDMake uint16
	Year   uint16
	Flags  uint32 // BIFF8 only
	MinVer uint32 // BIFF8 only
}

// parseBOF validates a BOF record against the expected sub-stream type.
func parseBOF(rec *record, want uint16) (*biffHeader, error) {
	if rec.ID != recBOF {
		return nil, fmt.Errorf("%w: expected BOF, got record 0x%04X", ErrUnsupportedFormat, rec.ID)
	}

	c := newBodyCursor(rec.data)
	h := new(biffHeader)

	ver, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	h.Ver = Version(ver)

	if h.Type, err = c.ReadU16(); err != nil {
		return nil, err
	}

	// build identifiers and history flags are informational
	h.IDMake, _ = c.ReadU16()
	h.Year, _ = c.ReadU16()
	if h.Ver == BIFF8 {
		h.Flags, _ = c.ReadU32()
		h.MinVer, _ = c.ReadU32()
	}

	if h.Ver != BIFF7 && h.Ver != BIFF8 {
		return nil, fmt.Errorf("%w: version %s", ErrUnsupportedFormat, h.Ver)
	}

	if h.Type != want {
		return nil, fmt.Errorf("%w: sub-stream type 0x%04X, want 0x%04X", ErrUnsupportedFormat, h.Type, want)
	}

	return h, nil
}
