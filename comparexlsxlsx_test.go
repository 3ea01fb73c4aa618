package xls

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareCell(t *testing.T) {
	wb := &WorkBook{CellFormats: []CellFormat{resolveFormat(0, nil), resolveFormat(14, nil)}}

	tests := []struct {
		name      string
		cell      Cell
		ok        bool
		raw       string
		formatted string
		match     bool
	}{
		{"both empty", Cell{}, false, "", "", true},
		{"xls empty", Cell{}, false, "1", "1", false},
		{"blank cell", Cell{Value: Value{}}, true, "", "", true},
		{"number", Cell{Value: numberValue(1.5)}, true, "1.5", "1.5", true},
		{"number drift", Cell{Value: numberValue(0.1 + 0.2)}, true, "0.3", "0.3", true},
		{"number mismatch", Cell{Value: numberValue(2)}, true, "3", "3", false},
		{"not a number", Cell{Value: numberValue(2)}, true, "two", "two", false},
		{"same second", Cell{FormatIndex: 1, Value: numberValue(43831.5)}, true, "43831.500001", "1/1/20", true},
		{"text", Cell{Value: textValue("abc")}, true, "abc", "abc", true},
		{"text mismatch", Cell{Value: textValue("abc")}, true, "abd", "abd", false},
		{"bool", Cell{Value: boolValue(true)}, true, "1", "TRUE", true},
		{"bool mismatch", Cell{Value: boolValue(false)}, true, "1", "TRUE", false},
		{"error", Cell{Value: errorValue(0x07)}, true, "#DIV/0!", "#DIV/0!", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diff := compareCell(wb, tt.cell, tt.ok, tt.raw, tt.formatted)
			assert.Equal(t, tt.match, diff == "", diff)
		})
	}
}

func TestCompareXlsXlsxMissingFile(t *testing.T) {
	diff := CompareXlsXlsx("testdata/missing.xls", "testdata/missing.xlsx")
	assert.True(t, strings.HasPrefix(diff, "Cannot open XLS file"), diff)
}

func TestCompareXlsXlsxDetectsMismatch(t *testing.T) {
	xlsPath, _ := writeParityPair(t, t.TempDir(), "book", paritySheet{name: "Data", rows: [][]any{
		{"name", "value"},
		{"beta", 42.0},
	}})
	_, xlsxPath := writeParityPair(t, t.TempDir(), "book", paritySheet{name: "Data", rows: [][]any{
		{"name", "value"},
		{"beta", 43.0},
	}})

	diff := CompareXlsXlsx(xlsPath, xlsxPath)
	assert.Contains(t, diff, `Sheet "Data", row 1, col 1`)
	assert.Contains(t, diff, "numeric mismatch")

	_, extra := writeParityPair(t, t.TempDir(), "book",
		paritySheet{name: "Data", rows: [][]any{{"name", "value"}, {"beta", 42.0}}},
		paritySheet{name: "Extra", rows: [][]any{{"x"}}},
	)
	assert.Equal(t, "Missing XLS sheet at index 1", CompareXlsXlsx(xlsPath, extra))
}
