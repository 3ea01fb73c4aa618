// Package main provides the xlsdump command, which prints the worksheets of
// a legacy .xls workbook as CSV or JSON.
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"gopkg.inshopline.com/commons/xls/v2"
)

var (
	sheetName string
	format    string
	jobs      int
	raw       bool
	offset    int64
	dates     bool
	verbose   bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "xlsdump [input.xls]",
		Short: "Dump the worksheets of a BIFF7/BIFF8 .xls workbook",
		Long: `xlsdump decodes a legacy Excel workbook and prints its worksheets
as CSV (one sheet) or JSON (all sheets).`,
		Args:         cobra.ExactArgs(1),
		RunE:         run,
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVar(&sheetName, "sheet", "", "Sheet to dump (default: first sheet for csv, all sheets for json)")
	rootCmd.Flags().StringVar(&format, "format", "csv", "Output format: csv or json")
	rootCmd.Flags().IntVar(&jobs, "jobs", 1, "Number of worksheets decoded in parallel")
	rootCmd.Flags().BoolVar(&raw, "raw", false, "Input is a bare BIFF stream instead of an OLE2 container")
	rootCmd.Flags().Int64Var(&offset, "offset", 0, "Start offset of the BIFF stream with --raw")
	rootCmd.Flags().BoolVar(&dates, "dates", false, "Render date-formatted cells as dates")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log decode warnings to stderr")

	return rootCmd
}

func run(cmd *cobra.Command, args []string) error {
	if format != "csv" && format != "json" {
		return fmt.Errorf("invalid format: %s (must be csv or json)", format)
	}

	opts := xls.DefaultOptions()
	opts.Concurrency = jobs
	if verbose {
		opts.Logger = log.New(os.Stderr, "", log.LstdFlags)
	}

	wb, err := open(args[0], opts)
	if err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}

	sheets := wb.Worksheets
	if sheetName != "" {
		ws := wb.GetSheetByName(sheetName)
		if ws == nil {
			return fmt.Errorf("sheet not found: %s", sheetName)
		}
		sheets = []*xls.WorkSheet{ws}
	}

	if len(sheets) == 0 {
		return fmt.Errorf("workbook has no worksheets")
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		return writeJSON(out, wb, sheets)
	}

	return writeCSV(out, wb, sheets[0])
}

func open(path string, opts xls.Options) (*xls.WorkBook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if raw {
		return xls.DecodeWithOptions(f, offset, opts)
	}

	return xls.OpenReaderWithOptions(f, opts)
}

// grid is sized from the decoded cells. A DIMENSIONS record can declare
// an extent far beyond what the file holds.
func grid(wb *xls.WorkBook, ws *xls.WorkSheet) [][]string {
	cells := ws.Cells()

	var numRows, numCols uint32
	for _, c := range cells {
		numRows = max(numRows, c.Row+1)
		numCols = max(numCols, c.Col+1)
	}

	rows := make([][]string, numRows)
	for i := range rows {
		rows[i] = make([]string, numCols)
	}

	for _, c := range cells {
		rows[c.Row][c.Col] = render(wb, c)
	}

	return rows
}

func render(wb *xls.WorkBook, c xls.Cell) string {
	if dates {
		if inst, ok := wb.Time(c); ok {
			if layout := wb.Format(c).Layout; layout != "" {
				return inst.Time.Format(layout)
			}
			return inst.Time.Format("2006-01-02 15:04:05")
		}
	}

	return c.Value.String()
}

func writeCSV(w io.Writer, wb *xls.WorkBook, ws *xls.WorkSheet) error {
	if ws.Err != nil {
		log.Printf("[xlsdump] sheet %q is incomplete: %v", ws.Name, ws.Err)
	}

	cw := csv.NewWriter(w)
	if err := cw.WriteAll(grid(wb, ws)); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}

	return nil
}

type sheetJSON struct {
	Name  string     `json:"name"`
	Error string     `json:"error,omitempty"`
	Rows  [][]string `json:"rows"`
}

func writeJSON(w io.Writer, wb *xls.WorkBook, sheets []*xls.WorkSheet) error {
	out := make([]sheetJSON, 0, len(sheets))
	for _, ws := range sheets {
		s := sheetJSON{Name: ws.Name, Rows: grid(wb, ws)}
		if ws.Err != nil {
			s.Error = ws.Err.Error()
		}
		out = append(out, s)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}

	return nil
}
