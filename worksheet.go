package xls

import (
	"fmt"
	"sort"
)

// Dimensions is the used range declared by a DIMENSIONS record.
// LastRow and LastCol are one past the last used index, as stored on disk.
type Dimensions struct {
	FirstRow uint32
	LastRow  uint32
	FirstCol uint32
	LastCol  uint32
	Declared bool
}

// Region is a merged cell range, inclusive on both ends.
type Region struct {
	FirstRow uint32
	LastRow  uint32
	FirstCol uint32
	LastCol  uint32
}

// WorkSheet is one decoded worksheet.
type WorkSheet struct {
	Name string
	// Index is the position of the sheet in WorkBook.Directory.
	Index         int
	Visibility    Visibility
	Dimensions    Dimensions
	MergedRegions []Region
	// Err is set when decoding stopped early. Cells decoded before the
	// failure are kept.
	Err error

	rows     map[uint32]*Row
	numCells int
	maxRow   uint32
	maxCol   uint32
	warnings []Warning
}

// Row returns a row by its zero-based index, or nil if the row has no cells.
func (ws *WorkSheet) Row(i int) *Row {
	if i < 0 {
		return nil
	}

	return ws.rows[uint32(i)]
}

// Cell looks up a single cell.
func (ws *WorkSheet) Cell(row, col uint32) (Cell, bool) {
	r := ws.rows[row]
	if r == nil {
		return Cell{}, false
	}

	return r.Cell(int(col))
}

// Cells returns every cell in row-major order.
func (ws *WorkSheet) Cells() []Cell {
	idx := make([]uint32, 0, len(ws.rows))
	for i := range ws.rows {
		idx = append(idx, i)
	}
	sort.Slice(idx, func(a, b int) bool { return idx[a] < idx[b] })

	out := make([]Cell, 0, ws.numCells)
	for _, i := range idx {
		out = append(out, ws.rows[i].cells...)
	}

	return out
}

// NumCells returns the number of populated cells.
func (ws *WorkSheet) NumCells() int {
	return ws.numCells
}

// NumRows is one past the highest row index, taking the larger of the
// DIMENSIONS record and the cells actually decoded.
func (ws *WorkSheet) NumRows() uint32 {
	if ws.Dimensions.Declared {
		return max(ws.Dimensions.LastRow, ws.maxRow)
	}

	return ws.maxRow
}

// NumCols is one past the highest column index, see NumRows.
func (ws *WorkSheet) NumCols() uint32 {
	if ws.Dimensions.Declared {
		return max(ws.Dimensions.LastCol, ws.maxCol)
	}

	return ws.maxCol
}

type cellHandler func(p *sheetParser, c *Cursor) error

// ROW, INDEX, DBCELL and other navigation records have no handler and
// are skipped by length.
var cellHandlers = map[uint16]cellHandler{
	recBlank:       handleBlank,
	recMulBlank:    handleMulBlank,
	recBoolErr:     handleBoolErr,
	recLabel:       handleLabel,
	recRString:     handleLabel,
	recLabelSST:    handleLabelSST,
	recNumber:      handleNumber,
	recRK:          handleRK,
	recRK2:         handleRK,
	recMulRK:       handleMulRK,
	recFormula:     handleFormula,
	recFormula3:    handleFormula,
	recFormula4:    handleFormula,
	recString:      handleString,
	recMergedCells: handleMergedCells,
	recDimensions:  handleDimensions,
}

type cellKey struct {
	row, col uint32
}

type sheetParser struct {
	t     *tables
	ws    *WorkSheet
	cells map[cellKey]Cell
	rec   *record
	// src is the stream cursor, positioned after rec
	src *Cursor
	// formula cell whose string result follows in a STRING record
	pending *Cell
	badXF   map[uint16]bool
}

// parseWorksheet decodes the directory entry at index. Failures are
// reported on the returned sheet.
func parseWorksheet(c *Cursor, t *tables, index int) *WorkSheet {
	entry := t.directory[index]
	ws := &WorkSheet{Name: entry.Name, Index: index, Visibility: entry.Visibility}
	p := &sheetParser{
		t:     t,
		ws:    ws,
		cells: make(map[cellKey]Cell),
		badXF: make(map[uint16]bool),
	}

	ws.Err = p.run(c, int64(entry.Offset))
	p.finish()

	return ws
}

func (p *sheetParser) fail(rec *record, err error) error {
	return &DecodeError{Phase: PhaseWorksheet, Sheet: p.ws.Name, Offset: rec.offset, Record: rec.ID, Err: err}
}

func (p *sheetParser) warn(err error) {
	p.ws.warnings = append(p.ws.warnings, Warning{Sheet: p.ws.Name, Offset: p.rec.offset, Record: p.rec.ID, Err: err})
}

func (p *sheetParser) run(c *Cursor, offset int64) error {
	rec := &record{offset: offset}
	if err := c.Seek(offset); err != nil {
		return p.fail(rec, err)
	}

	rec, err := readRecord(c)
	if err != nil {
		return p.fail(rec, err)
	}

	if _, err := parseBOF(rec, substreamWorksheet); err != nil {
		return p.fail(rec, err)
	}

	// embedded chart sub-streams nest their own BOF/EOF pair
	depth := 0

	for {
		if err := c.Seek(rec.next()); err != nil {
			return p.fail(rec, err)
		}

		if rec, err = readRecord(c); err != nil {
			return p.fail(rec, err)
		}

		switch {
		case rec.ID == recBOF:
			depth++
			continue
		case rec.ID == recEOF:
			if depth == 0 {
				return nil
			}
			depth--
			continue
		case depth > 0:
			continue
		}

		handler := cellHandlers[rec.ID]
		if handler == nil {
			continue
		}

		if rec.ID != recString {
			p.pending = nil
		}

		p.rec, p.src = rec, c
		if err := handler(p, newBodyCursor(rec.data)); err != nil {
			p.warn(err)
		}
	}
}

func (p *sheetParser) add(row, col uint32, xf uint16, v Value) {
	if _, ok := p.t.cellFormat(xf); !ok && !p.badXF[xf] {
		p.badXF[xf] = true
		p.warn(fmt.Errorf("%w: XF %d of %d", ErrIndexOutOfRange, xf, len(p.t.cellFormats)))
	}

	p.cells[cellKey{row, col}] = Cell{Row: row, Col: col, FormatIndex: xf, Value: v}
	p.ws.maxRow = max(p.ws.maxRow, row+1)
	p.ws.maxCol = max(p.ws.maxCol, col+1)
}

func (p *sheetParser) finish() {
	rows := make(map[uint32]*Row)
	for _, cell := range p.cells {
		r := rows[cell.Row]
		if r == nil {
			r = &Row{index: cell.Row}
			rows[cell.Row] = r
		}
		r.cells = append(r.cells, cell)
	}

	for _, r := range rows {
		sort.Slice(r.cells, func(a, b int) bool { return r.cells[a].Col < r.cells[b].Col })
	}

	p.ws.rows = rows
	p.ws.numCells = len(p.cells)
	p.cells = nil
}

// readCellHeader reads the row, column and XF index that open most cell records.
func readCellHeader(c *Cursor) (row, col uint32, xf uint16, err error) {
	r, err := c.ReadU16()
	if err != nil {
		return 0, 0, 0, err
	}

	cl, err := c.ReadU16()
	if err != nil {
		return 0, 0, 0, err
	}

	if xf, err = c.ReadU16(); err != nil {
		return 0, 0, 0, err
	}

	return uint32(r), uint32(cl), xf, nil
}

// lastCol reads the trailing last-column field of MULRK and MULBLANK and
// returns to the current position.
func (p *sheetParser) lastCol(c *Cursor) (uint16, error) {
	pos := c.Tell()
	size := int64(len(p.rec.data))
	if size < pos+2 {
		return 0, ErrTruncatedStream
	}

	if err := c.Seek(size - 2); err != nil {
		return 0, err
	}

	last, err := c.ReadU16()
	if err != nil {
		return 0, err
	}

	return last, c.Seek(pos)
}

// readSpan reads the row and column range of a MULRK or MULBLANK record.
func (p *sheetParser) readSpan(c *Cursor) (row uint32, first, last int, err error) {
	r, err := c.ReadU16()
	if err != nil {
		return 0, 0, 0, err
	}

	f, err := c.ReadU16()
	if err != nil {
		return 0, 0, 0, err
	}

	l, err := p.lastCol(c)
	if err != nil {
		return 0, 0, 0, err
	}

	if l < f {
		return 0, 0, 0, fmt.Errorf("%w: columns %d..%d", errRecordShape, f, l)
	}

	return uint32(r), int(f), int(l), nil
}

func handleBlank(p *sheetParser, c *Cursor) error {
	row, col, xf, err := readCellHeader(c)
	if err != nil {
		return err
	}

	p.add(row, col, xf, Value{})

	return nil
}

func handleMulBlank(p *sheetParser, c *Cursor) error {
	row, first, last, err := p.readSpan(c)
	if err != nil {
		return err
	}

	for col := first; col <= last; col++ {
		xf, err := c.ReadU16()
		if err != nil {
			return err
		}

		p.add(row, uint32(col), xf, Value{})
	}

	return nil
}

func handleMulRK(p *sheetParser, c *Cursor) error {
	row, first, last, err := p.readSpan(c)
	if err != nil {
		return err
	}

	for col := first; col <= last; col++ {
		xf, err := c.ReadU16()
		if err != nil {
			return err
		}

		rk, err := c.ReadU32()
		if err != nil {
			return err
		}

		p.add(row, uint32(col), xf, numberValue(DecodeRK(rk)))
	}

	return nil
}

func handleRK(p *sheetParser, c *Cursor) error {
	row, col, xf, err := readCellHeader(c)
	if err != nil {
		return err
	}

	rk, err := c.ReadU32()
	if err != nil {
		return err
	}

	p.add(row, col, xf, numberValue(DecodeRK(rk)))

	return nil
}

func handleNumber(p *sheetParser, c *Cursor) error {
	row, col, xf, err := readCellHeader(c)
	if err != nil {
		return err
	}

	f, err := c.ReadF64()
	if err != nil {
		return err
	}

	p.add(row, col, xf, numberValue(f))

	return nil
}

func handleBoolErr(p *sheetParser, c *Cursor) error {
	row, col, xf, err := readCellHeader(c)
	if err != nil {
		return err
	}

	val, err := c.ReadU8()
	if err != nil {
		return err
	}

	isError, err := c.ReadU8()
	if err != nil {
		return err
	}

	if isError != 0 {
		p.add(row, col, xf, errorValue(val))
	} else {
		p.add(row, col, xf, boolValue(val != 0))
	}

	return nil
}

func handleLabel(p *sheetParser, c *Cursor) error {
	row, col, xf, err := readCellHeader(c)
	if err != nil {
		return err
	}

	s, err := p.t.text.readString(c, 2)
	if err != nil {
		return err
	}

	p.add(row, col, xf, textValue(s))

	return nil
}

func handleLabelSST(p *sheetParser, c *Cursor) error {
	row, col, xf, err := readCellHeader(c)
	if err != nil {
		return err
	}

	index, err := c.ReadU32()
	if err != nil {
		return err
	}

	s, ok := p.t.sharedString(index)
	if !ok {
		p.add(row, col, xf, Value{})
		return fmt.Errorf("%w: shared string %d of %d", ErrIndexOutOfRange, index, len(p.t.strings))
	}

	p.add(row, col, xf, textValue(s))

	return nil
}

// FORMULA result types used when the last two result bytes are 0xFFFF.
const (
	formulaString = 0
	formulaBool   = 1
	formulaError  = 2
	formulaEmpty  = 3
)

func handleFormula(p *sheetParser, c *Cursor) error {
	row, col, xf, err := readCellHeader(c)
	if err != nil {
		return err
	}

	low, err := c.ReadU32()
	if err != nil {
		return err
	}

	high, err := c.ReadU32()
	if err != nil {
		return err
	}

	if high>>16 != 0xFFFF {
		p.add(row, col, xf, numberValue(DecodeDoubleFromPacked(high, low)))
		return nil
	}

	switch byte(low) {
	case formulaString:
		p.pending = &Cell{Row: row, Col: col, FormatIndex: xf}
	case formulaBool:
		p.add(row, col, xf, boolValue(byte(low>>16) != 0))
	case formulaError:
		p.add(row, col, xf, errorValue(byte(low>>16)))
	case formulaEmpty:
		p.add(row, col, xf, Value{})
	default:
		return fmt.Errorf("%w: formula result type %d", errRecordShape, byte(low))
	}

	return nil
}

func handleString(p *sheetParser, c *Cursor) error {
	if p.pending == nil {
		return nil
	}

	cell := *p.pending
	p.pending = nil

	var s string
	var err error
	if p.t.version == BIFF8 {
		// long results continue in CONTINUE records, split like SST entries
		b := &sstBuilder{src: streamContinuations{c: p.src}, seg: p.rec.data}
		s, err = b.entry()
	} else {
		s, err = p.t.text.readString(c, 2)
	}
	if err != nil {
		return err
	}

	p.add(cell.Row, cell.Col, cell.FormatIndex, textValue(s))

	return nil
}

func handleMergedCells(p *sheetParser, c *Cursor) error {
	n, err := c.ReadU16()
	if err != nil {
		return err
	}

	for i := 0; i < int(n); i++ {
		var f [4]uint16
		for j := range f {
			if f[j], err = c.ReadU16(); err != nil {
				return err
			}
		}

		p.ws.MergedRegions = append(p.ws.MergedRegions, Region{
			FirstRow: uint32(f[0]),
			LastRow:  uint32(f[1]),
			FirstCol: uint32(f[2]),
			LastCol:  uint32(f[3]),
		})
	}

	return nil
}

// DIMENSIONS uses 32-bit row fields in BIFF8 and 16-bit ones in BIFF7.
func handleDimensions(p *sheetParser, c *Cursor) error {
	var d Dimensions

	if p.t.version == BIFF8 && len(p.rec.data) >= 14 {
		fr, err := c.ReadU32()
		if err != nil {
			return err
		}

		lr, err := c.ReadU32()
		if err != nil {
			return err
		}
		d.FirstRow, d.LastRow = fr, lr
	} else {
		fr, err := c.ReadU16()
		if err != nil {
			return err
		}

		lr, err := c.ReadU16()
		if err != nil {
			return err
		}
		d.FirstRow, d.LastRow = uint32(fr), uint32(lr)
	}

	fc, err := c.ReadU16()
	if err != nil {
		return err
	}

	lc, err := c.ReadU16()
	if err != nil {
		return err
	}

	d.FirstCol, d.LastCol = uint32(fc), uint32(lc)
	d.Declared = true
	p.ws.Dimensions = d

	return nil
}
