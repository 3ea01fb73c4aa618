package xls

import (
	"fmt"
	"sort"
	"strconv"
)

// ValueType tags the content of a Value.
type ValueType uint8

const (
	Blank ValueType = iota
	Number
	Text
	Boolean
	Error
)

func (t ValueType) String() string {
	switch t {
	case Number:
		return "number"
	case Text:
		return "text"
	case Boolean:
		return "boolean"
	case Error:
		return "error"
	}

	return "blank"
}

// Value is the raw content of a cell. Only the field matching Type is set.
type Value struct {
	Type   ValueType
	Number float64
	Text   string
	Bool   bool
	Code   uint8 // error code for Type == Error
}

// Excel error codes as stored by BOOLERR and FORMULA records.
var errorNames = map[uint8]string{
	0x00: "#NULL!",
	0x07: "#DIV/0!",
	0x0F: "#VALUE!",
	0x17: "#REF!",
	0x1D: "#NAME?",
	0x24: "#NUM!",
	0x2A: "#N/A",
}

// String renders the value without applying its number format.
func (v Value) String() string {
	switch v.Type {
	case Number:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case Text:
		return v.Text
	case Boolean:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	case Error:
		if name, ok := errorNames[v.Code]; ok {
			return name
		}
		return fmt.Sprintf("#ERR%d", v.Code)
	}

	return ""
}

// Cell is one decoded cell. FormatIndex refers to WorkBook.CellFormats.
type Cell struct {
	Row         uint32
	Col         uint32
	FormatIndex uint16
	Value       Value
}

func numberValue(f float64) Value {
	return Value{Type: Number, Number: f}
}

func textValue(s string) Value {
	return Value{Type: Text, Text: s}
}

func boolValue(b bool) Value {
	return Value{Type: Boolean, Bool: b}
}

func errorValue(code uint8) Value {
	return Value{Type: Error, Code: code}
}

// Row is the populated cells of one worksheet row, ordered by column.
type Row struct {
	index uint32
	cells []Cell
}

// Index returns the zero-based row number.
func (r *Row) Index() uint32 {
	return r.index
}

// Cells returns the populated cells of the row.
func (r *Row) Cells() []Cell {
	return r.cells
}

// FirstCol returns the column of the first populated cell.
func (r *Row) FirstCol() int {
	if len(r.cells) == 0 {
		return 0
	}

	return int(r.cells[0].Col)
}

// LastCol returns one past the column of the last populated cell.
func (r *Row) LastCol() int {
	if len(r.cells) == 0 {
		return 0
	}

	return int(r.cells[len(r.cells)-1].Col) + 1
}

// Cell looks up a column of the row.
func (r *Row) Cell(col int) (Cell, bool) {
	lo := sort.Search(len(r.cells), func(i int) bool {
		return int(r.cells[i].Col) >= col
	})

	if lo < len(r.cells) && int(r.cells[lo].Col) == col {
		return r.cells[lo], true
	}

	return Cell{}, false
}

// Col returns the plain string value of a column, or "" when it is empty.
func (r *Row) Col(col int) string {
	c, ok := r.Cell(col)
	if !ok {
		return ""
	}

	return c.Value.String()
}
