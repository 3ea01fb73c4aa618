package xls

// Visibility of a sheet as declared by BOUNDSHEET.
type Visibility uint8

const (
	SheetVisible Visibility = iota
	SheetHidden
	SheetVeryHidden
)

// SheetType of a BOUNDSHEET entry.
type SheetType uint8

const (
	SheetWorksheet SheetType = 0x00
	SheetMacro     SheetType = 0x01
	SheetChart     SheetType = 0x02
	SheetVBModule  SheetType = 0x06
)

// SheetEntry is one BOUNDSHEET record.
type SheetEntry struct {
	Name string
	// Offset is the position of the sheet's BOF relative to the globals BOF.
	Offset     uint32
	Visibility Visibility
	Type       SheetType
}

// parsed reports whether the entry is decoded as a worksheet.
func (e SheetEntry) parsed() bool {
	return e.Visibility == SheetVisible && e.Type == SheetWorksheet
}

// tablesBuilder collects the globals stream. It is append-only and is
// consumed by freeze once the globals EOF is reached.
type tablesBuilder struct {
	version   Version
	epoch     DateEpoch
	codepage  uint16
	author    string
	strings   []string
	formats   map[uint16]string
	xfs       []uint16
	directory []SheetEntry
	text      textDecoder
	frozen    bool
}

func newTablesBuilder(v Version, opts Options) *tablesBuilder {
	return &tablesBuilder{
		version:  v,
		codepage: opts.Codepage,
		formats:  make(map[uint16]string),
		text:     newTextDecoder(v, opts.Codepage),
	}
}

func (b *tablesBuilder) check() {
	if b.frozen {
		panic("xls: tables modified after the globals phase")
	}
}

func (b *tablesBuilder) setCodepage(cp uint16, override bool) {
	b.check()
	if override {
		return
	}

	b.codepage = cp
	b.text = newTextDecoder(b.version, cp)
}

func (b *tablesBuilder) setStrings(strs []string) {
	b.check()
	b.strings = strs
}

func (b *tablesBuilder) addFormat(index uint16, pattern string) {
	b.check()
	b.formats[index] = pattern
}

func (b *tablesBuilder) addXF(formatIndex uint16) {
	b.check()
	b.xfs = append(b.xfs, formatIndex)
}

func (b *tablesBuilder) addSheet(e SheetEntry) {
	b.check()
	b.directory = append(b.directory, e)
}

// freeze resolves every XF against the final FORMAT map and hands the
// collected state over to an immutable tables value.
func (b *tablesBuilder) freeze() *tables {
	b.check()
	b.frozen = true

	cellFormats := make([]CellFormat, len(b.xfs))
	for i, idx := range b.xfs {
		cellFormats[i] = resolveFormat(idx, b.formats)
	}

	t := &tables{
		version:     b.version,
		epoch:       b.epoch,
		codepage:    b.codepage,
		author:      b.author,
		strings:     b.strings,
		formats:     b.formats,
		cellFormats: cellFormats,
		directory:   b.directory,
		text:        b.text,
	}

	b.strings, b.formats, b.xfs, b.directory = nil, nil, nil, nil

	return t
}

// tables is the read-only outcome of the globals phase, shared by every
// worksheet parse.
type tables struct {
	version     Version
	epoch       DateEpoch
	codepage    uint16
	author      string
	strings     []string
	formats     map[uint16]string
	cellFormats []CellFormat
	directory   []SheetEntry
	text        textDecoder
}

func (t *tables) sharedString(i uint32) (string, bool) {
	if uint64(i) >= uint64(len(t.strings)) {
		return "", false
	}

	return t.strings[i], true
}

func (t *tables) cellFormat(xf uint16) (CellFormat, bool) {
	if int(xf) >= len(t.cellFormats) {
		return CellFormat{Multiplier: 1}, false
	}

	return t.cellFormats[xf], true
}
