package xls

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/tealeg/xlsx"
)

// CompareXlsXlsx compares the content of an XLS file against an XLSX file
// saved from the same workbook. It returns an empty string if the files are
// considered equivalent, or a description of the first mismatch.
func CompareXlsXlsx(xlsFilePath, xlsxFilePath string) string {
	xlsFile, err := Open(xlsFilePath)
	if err != nil {
		return fmt.Sprintf("Cannot open XLS file: %s", err)
	}

	xlsxFile, err := xlsx.OpenFile(xlsxFilePath)
	if err != nil {
		return fmt.Sprintf("Cannot open XLSX file: %s", err)
	}

	for sheetIdx, xlsxSheet := range xlsxFile.Sheets {
		xlsSheet := xlsFile.GetSheet(sheetIdx)
		if xlsSheet == nil {
			return fmt.Sprintf("Missing XLS sheet at index %d", sheetIdx)
		}

		if xlsSheet.Err != nil {
			return fmt.Sprintf("Sheet %q failed to decode: %s", xlsSheet.Name, xlsSheet.Err)
		}

		for rowIdx, xlsxRow := range xlsxSheet.Rows {
			if xlsxRow == nil {
				continue
			}

			xlsRow := xlsSheet.Row(rowIdx)

			for colIdx, xlsxCell := range xlsxRow.Cells {
				var cell Cell
				var ok bool
				if xlsRow != nil {
					cell, ok = xlsRow.Cell(colIdx)
				}

				formatted := xlsxCell.String()
				if val, err := xlsxCell.FormattedValue(); err == nil {
					formatted = val
				}

				if diff := compareCell(xlsFile, cell, ok, xlsxCell.Value, formatted); diff != "" {
					return fmt.Sprintf("Sheet %q, row %d, col %d: %s", xlsxSheet.Name, rowIdx, colIdx, diff)
				}
			}
		}
	}

	return ""
}

// compareCell matches one decoded cell against the raw and formatted
// values of its xlsx counterpart.
func compareCell(wb *WorkBook, c Cell, ok bool, raw, formatted string) string {
	if !ok || c.Value.Type == Blank {
		if raw == "" {
			return ""
		}

		return fmt.Sprintf("xls cell is empty, xlsx: %q", raw)
	}

	got := c.Value.String()

	switch c.Value.Type {
	case Number:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Sprintf("numeric mismatch: xls %s, xlsx %q", got, raw)
		}

		if math.Abs(f-c.Value.Number) < 1e-7 {
			return ""
		}

		// serials that land on the same second are the same date
		xlsTime := SerialToCalendar(c.Value.Number, wb.DateEpoch).Time
		xlsxTime := SerialToCalendar(f, wb.DateEpoch).Time
		if xlsTime.Truncate(time.Second).Equal(xlsxTime.Truncate(time.Second)) {
			return ""
		}

		return fmt.Sprintf(
			"numeric mismatch: xls %f (%s), xlsx %f (%s)",
			c.Value.Number, xlsTime.Format("2006-01-02 15:04:05"),
			f, xlsxTime.Format("2006-01-02 15:04:05"),
		)
	case Boolean:
		want := "0"
		if c.Value.Bool {
			want = "1"
		}

		if raw == want || formatted == got {
			return ""
		}
	default:
		if raw == got || formatted == got {
			return ""
		}
	}

	return fmt.Sprintf("mismatch: xls %q, xlsx %q (%q)", got, raw, formatted)
}
