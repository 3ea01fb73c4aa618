package xls

import (
	"bytes"
	"encoding/binary"
)

// xf7 is the BIFF7 XF record layout.
type xf7 struct {
	Font      uint16
	Format    uint16
	Type      uint16
	Align     uint16
	Color     uint16
	Fill      uint16
	Border    uint16
	LineStyle uint16
}

func (x *xf7) formatNo() uint16 {
	return x.Format
}

// xf8 is the BIFF8 XF record layout.
type xf8 struct {
	Font        uint16
	Format      uint16
	Type        uint16
	Align       byte
	Rotation    byte
	Ident       byte
	UsedAttr    byte
	LineStyle   uint32
	LineColor   uint32
	GroundColor uint16
}

func (x *xf8) formatNo() uint16 {
	return x.Format
}

type xfRecord interface {
	formatNo() uint16
}

// parseXF returns the number format index an XF record points at.
func parseXF(data []byte, v Version) (uint16, error) {
	var xf xfRecord = new(xf7)
	if v == BIFF8 {
		xf = new(xf8)
	}

	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, xf); err != nil {
		return 0, ErrTruncatedStream
	}

	return xf.formatNo(), nil
}
