package xls

import (
	"bytes"
	"fmt"
	"testing"
	"time"
)

const bigTableRows = 4999

// bigTable builds a sheet of numbered invoices whose labels live in a
// shared string table spread over many CONTINUE records.
func bigTable() []byte {
	date1 := mustParseDate("2015-01-01")
	date2 := mustParseDate("2016-01-01")
	date3 := mustParseDate("2017-01-01")

	strs := make([]string, 0, 3*bigTableRows+3)
	strs = append(strs, "Номер", "Счёт", "Акт")

	for i := 0; i < bigTableRows; i++ {
		strs = append(strs,
			fmt.Sprintf("%d от %s", 1+i, date1.AddDate(0, 0, i).Format("02.01.2006")),
			fmt.Sprintf("%d от %s", 10000+i, date2.AddDate(0, 0, i).Format("02.01.2006")),
			fmt.Sprintf("%d от %s", 20000+i, date3.AddDate(0, 0, i).Format("02.01.2006")),
		)
	}

	globals := func(w *biffWriter) {
		w.xf(BIFF8, 0)
		w.sst(strs, 8224)
	}

	sheet := testSheet{name: "Реестр", build: func(w *biffWriter) {
		w.record(recDimensions, le(uint32(0), uint32(bigTableRows+1), uint16(0), uint16(9), uint16(0)))
		for col, idx := range []uint16{2, 5, 8} {
			w.record(recLabelSST, le(uint16(0), idx, uint16(0), uint32(col)))
		}

		for i := 1; i <= bigTableRows; i++ {
			w.record(recRow, le(uint16(i), uint16(0), uint16(9), make([]byte, 10)))
			w.record(recRK, le(uint16(i), uint16(0), uint16(0), encodeRKInt(int32(i))))
			for col, idx := range []uint16{2, 5, 8} {
				w.record(recLabelSST, le(uint16(i), idx, uint16(0), uint32(3*i+col)))
			}
		}
	}}

	return buildBook(BIFF8, globals, sheet)
}

// TestBigTable verifies that values in specific columns match expected patterns
// across thousands of rows. It checks for content and formatting correctness.
func TestBigTable(t *testing.T) {
	xlFile, err := Decode(bytes.NewReader(bigTable()), 0)
	if err != nil {
		t.Fatalf("failed to decode table: %v", err)
	}

	if len(xlFile.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", xlFile.Warnings)
	}

	// Get the first worksheet
	sheet := xlFile.GetSheet(0)
	if sheet == nil {
		t.Fatal("failed to get sheet at index 0")
	}

	if sheet.NumRows() != bigTableRows+1 {
		t.Fatalf("got %d rows, want %d", sheet.NumRows(), bigTableRows+1)
	}

	// Initialize counter and start dates
	cnt1, cnt2, cnt3 := 1, 10000, 20000
	date1 := mustParseDate("2015-01-01")
	date2 := mustParseDate("2016-01-01")
	date3 := mustParseDate("2017-01-01")

	for i := 1; i <= bigTableRows; i++ {
		row := sheet.Row(i)
		if row == nil {
			t.Fatalf("row %d is nil", i)
		}

		if got := row.Col(0); got != fmt.Sprint(i) {
			t.Errorf("row %d: col 0 mismatch: got %q", i, got)
		}

		expectedCol2 := fmt.Sprintf("%d от %s", cnt1, date1.Format("02.01.2006"))
		expectedCol5 := fmt.Sprintf("%d от %s", cnt2, date2.Format("02.01.2006"))
		expectedCol8 := fmt.Sprintf("%d от %s", cnt3, date3.Format("02.01.2006"))

		actualCol2 := row.Col(2)
		actualCol5 := row.Col(5)
		actualCol8 := row.Col(8)

		if actualCol2 != expectedCol2 {
			t.Errorf("row %d: col 2 mismatch: got %q, want %q", i, actualCol2, expectedCol2)
		}
		if actualCol5 != expectedCol5 {
			t.Errorf("row %d: col 5 mismatch: got %q, want %q", i, actualCol5, expectedCol5)
		}
		if actualCol8 != expectedCol8 {
			t.Errorf("row %d: col 8 mismatch: got %q, want %q", i, actualCol8, expectedCol8)
		}

		// Advance counters and dates
		cnt1++
		cnt2++
		cnt3++
		date1 = date1.AddDate(0, 0, 1)
		date2 = date2.AddDate(0, 0, 1)
		date3 = date3.AddDate(0, 0, 1)
	}
}

func BenchmarkDecodeBigTable(b *testing.B) {
	data := bigTable()
	b.SetBytes(int64(len(data)))

	for i := 0; i < b.N; i++ {
		if _, err := Decode(bytes.NewReader(data), 0); err != nil {
			b.Fatal(err)
		}
	}
}

// mustParseDate parses a date in "YYYY-MM-DD" format and panics if it fails.
func mustParseDate(value string) time.Time {
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(fmt.Sprintf("invalid test date %q: %v", value, err))
	}
	return date
}
