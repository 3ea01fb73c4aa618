package xls

import (
	"bytes"
	"fmt"
	"os"
)

// ExampleOpen demonstrates how to open an XLS file and access basic metadata.
func ExampleOpen() {
	xlFile, err := Open("testdata/Table.xls")
	if err != nil {
		fmt.Println("failed to open XLS:", err)
		return
	}

	// Print workbook author metadata
	fmt.Println("Author:", xlFile.Author)
}

// ExampleWorkBook_NumSheets shows how to list all sheet names in the workbook.
func ExampleWorkBook_NumSheets() {
	xlFile, err := Open("testdata/Table.xls")
	if err != nil {
		fmt.Println("failed to open XLS:", err)
		return
	}

	// Iterate over all sheets and print their names
	for i := 0; i < xlFile.NumSheets(); i++ {
		sheet := xlFile.GetSheet(i)
		fmt.Println("Sheet:", sheet.Name)
	}
}

// ExampleWorkBook_GetSheet reads the first sheet and prints the first two columns of each row.
func ExampleWorkBook_GetSheet() {
	xlFile, err := Open("testdata/Table.xls")
	if err != nil {
		fmt.Println("failed to open XLS:", err)
		return
	}

	sheet := xlFile.GetSheet(0)
	if sheet == nil {
		fmt.Println("sheet not found")
		return
	}

	fmt.Printf("Total Lines: %d (%s)", sheet.NumRows(), sheet.Name)

	// Iterate over all rows and print values from the first two columns
	for i := 0; i < int(sheet.NumRows()); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		fmt.Printf("\n%s, %s", row.Col(0), row.Col(1))
	}
}

// ExampleDecodeWithOptions decodes a raw BIFF stream, for instance one
// already extracted from its OLE2 container, with four worksheet workers.
func ExampleDecodeWithOptions() {
	data, err := os.ReadFile("testdata/Workbook.bin")
	if err != nil {
		fmt.Println("failed to read stream:", err)
		return
	}

	opts := DefaultOptions()
	opts.Concurrency = 4

	wb, err := DecodeWithOptions(bytes.NewReader(data), 0, opts)
	if err != nil {
		fmt.Println("failed to decode:", err)
		return
	}

	for _, ws := range wb.Worksheets {
		fmt.Printf("%s: %d cells\n", ws.Name, ws.NumCells())
	}

	if err := wb.SheetErrors(); err != nil {
		fmt.Println("partial decode:", err)
	}
}
