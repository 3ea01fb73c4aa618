package xls

import (
	"context"
	"errors"
	"io"
	"math"
	"sync"

	"golang.org/x/sync/semaphore"
)

// WorkBook is a decoded BIFF7/BIFF8 workbook.
type WorkBook struct {
	Version  Version
	Codepage uint16
	// Author is the user name from the WRITEACCESS record.
	Author    string
	DateEpoch DateEpoch

	SharedStrings []string
	FormatStrings map[uint16]string
	// CellFormats is indexed by XF record number.
	CellFormats []CellFormat
	// Directory lists every BOUNDSHEET entry, including hidden sheets and
	// chart or macro sheets that are not decoded.
	Directory []SheetEntry
	// Worksheets holds the visible worksheets in directory order.
	Worksheets []*WorkSheet
	Warnings   []Warning
}

// Decode reads the BIFF stream that starts at offset with DefaultOptions.
func Decode(r io.ReadSeeker, offset int64) (*WorkBook, error) {
	return DecodeWithOptions(r, offset, DefaultOptions())
}

// DecodeWithOptions reads the globals sub-stream, then every visible
// worksheet. It fails only when the globals cannot be decoded; worksheet
// failures are reported on WorkSheet.Err.
func DecodeWithOptions(r io.ReadSeeker, offset int64, opts Options) (*WorkBook, error) {
	c, err := NewCursor(r, offset)
	if err != nil {
		return nil, err
	}
	c.SetLimit(opts.MaxStreamSize)

	builder, warnings, err := parseGlobals(c, opts)
	if err != nil {
		return nil, err
	}

	t := builder.freeze()
	wb := &WorkBook{
		Version:       t.version,
		Codepage:      t.codepage,
		Author:        t.author,
		DateEpoch:     t.epoch,
		SharedStrings: t.strings,
		FormatStrings: t.formats,
		CellFormats:   t.cellFormats,
		Directory:     t.directory,
		Warnings:      warnings,
	}

	if err := wb.parseSheets(r, offset, t, opts); err != nil {
		return nil, err
	}

	for _, ws := range wb.Worksheets {
		wb.Warnings = append(wb.Warnings, ws.warnings...)
		ws.warnings = nil
	}

	if opts.Logger != nil {
		for _, w := range wb.Warnings {
			opts.Logger.Printf("[xls] %s", w)
		}
	}

	return wb, nil
}

// parseSheets decodes the visible worksheets. Every worker gets its own
// cursor; the tables are only read.
func (wb *WorkBook) parseSheets(r io.ReadSeeker, offset int64, t *tables, opts Options) error {
	var entries []int
	for i, e := range t.directory {
		if e.parsed() {
			entries = append(entries, i)
		}
	}

	wb.Worksheets = make([]*WorkSheet, len(entries))
	workers := opts.workers(len(entries))
	ra, ok := r.(io.ReaderAt)

	if !ok || workers < 2 {
		c, err := NewCursor(r, offset)
		if err != nil {
			return err
		}
		c.SetLimit(opts.MaxStreamSize)

		for i, idx := range entries {
			wb.Worksheets[i] = parseWorksheet(c, t, idx)
		}

		return nil
	}

	ctx := context.Background()
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup

	for i, idx := range entries {
		i, idx := i, idx
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			c, err := NewCursor(io.NewSectionReader(ra, 0, math.MaxInt64), offset)
			if err != nil {
				entry := t.directory[idx]
				wb.Worksheets[i] = &WorkSheet{Name: entry.Name, Index: idx, Visibility: entry.Visibility, Err: err}
				return
			}
			c.SetLimit(opts.MaxStreamSize)

			wb.Worksheets[i] = parseWorksheet(c, t, idx)
		}()
	}

	wg.Wait()

	return nil
}

// NumSheets returns the number of decoded worksheets.
func (wb *WorkBook) NumSheets() int {
	return len(wb.Worksheets)
}

// GetSheet returns a decoded worksheet by position, or nil.
func (wb *WorkBook) GetSheet(num int) *WorkSheet {
	if num < 0 || num >= len(wb.Worksheets) {
		return nil
	}

	return wb.Worksheets[num]
}

func (wb *WorkBook) GetSheetByName(sheetName string) *WorkSheet {
	for _, sheet := range wb.Worksheets {
		if sheet.Name == sheetName {
			return sheet
		}
	}

	return nil
}

func (wb *WorkBook) GetFirstSheet() *WorkSheet {
	return wb.GetSheet(0)
}

// SheetErrors joins the errors of worksheets that failed to decode.
func (wb *WorkBook) SheetErrors() error {
	var errs []error
	for _, ws := range wb.Worksheets {
		if ws.Err != nil {
			errs = append(errs, ws.Err)
		}
	}

	return errors.Join(errs...)
}

// Format resolves the number format of a cell. A cell referring to an XF
// record that does not exist gets KindOther.
func (wb *WorkBook) Format(c Cell) CellFormat {
	if int(c.FormatIndex) >= len(wb.CellFormats) {
		return CellFormat{Kind: KindOther, Multiplier: 1}
	}

	return wb.CellFormats[c.FormatIndex]
}

func (wb *WorkBook) Kind(c Cell) FormatKind {
	return wb.Format(c).Kind
}

// Time converts a numeric cell with a date format.
func (wb *WorkBook) Time(c Cell) (Instant, bool) {
	if c.Value.Type != Number || wb.Kind(c) != KindDate {
		return Instant{}, false
	}

	return SerialToCalendar(c.Value.Number, wb.DateEpoch), true
}

// DisplayNumber returns a numeric cell scaled by its format multiplier.
func (wb *WorkBook) DisplayNumber(c Cell) (float64, bool) {
	if c.Value.Type != Number {
		return 0, false
	}

	return c.Value.Number * wb.Format(c).Multiplier, true
}

// helper function to read all cells from file
// Notice: the max value is the limit of the max capacity of lines.
// Warning: the helper function will need big memory if file is large.
func (wb *WorkBook) ReadAllCells(max int) (res [][]string) {
	res = make([][]string, 0)

	for _, sheet := range wb.Worksheets {
		if len(res) >= max {
			break
		}

		n := int(sheet.NumRows())
		if rest := max - len(res); n > rest {
			n = rest
		}

		for i := 0; i < n; i++ {
			row := sheet.Row(i)
			if row == nil {
				res = append(res, nil)
				continue
			}

			data := make([]string, row.LastCol())
			for _, c := range row.cells {
				data[c.Col] = c.Value.String()
			}
			res = append(res, data)
		}
	}

	return
}
