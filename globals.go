package xls

import (
	"fmt"
	"strings"
)

// Handler function type for globals records. A returned error aborts the
// globals phase; recoverable problems are recorded with warn.
type globalsHandler func(p *globalsParser, rec *record) error

var globalsHandlers = map[uint16]globalsHandler{
	recSST:         handleSST,
	recFormat:      handleFormat,
	recXF:          handleXF,
	recBoundSheet:  handleBoundSheet,
	recDateMode:    handleDateMode,
	recFilepass:    handleFilepass,
	recCodepage:    handleCodepage,
	recWriteAccess: handleWriteAccess,
}

type globalsParser struct {
	c        *Cursor
	b        *tablesBuilder
	opts     Options
	warnings []Warning
}

func (p *globalsParser) warn(rec *record, err error) {
	p.warnings = append(p.warnings, Warning{Offset: rec.offset, Record: rec.ID, Err: err})
}

func globalsError(rec *record, err error) error {
	return &DecodeError{Phase: PhaseGlobals, Offset: rec.offset, Record: rec.ID, Err: err}
}

// parseGlobals reads the globals sub-stream from BOF to EOF.
func parseGlobals(c *Cursor, opts Options) (*tablesBuilder, []Warning, error) {
	rec, err := readRecord(c)
	if err != nil {
		return nil, nil, globalsError(rec, err)
	}

	h, err := parseBOF(rec, substreamGlobals)
	if err != nil {
		return nil, nil, globalsError(rec, err)
	}

	p := &globalsParser{c: c, b: newTablesBuilder(h.Ver, opts), opts: opts}

	for {
		if err := c.Seek(rec.next()); err != nil {
			return nil, nil, globalsError(rec, err)
		}

		if rec, err = readRecord(c); err != nil {
			return nil, nil, globalsError(rec, err)
		}

		if rec.ID == recEOF {
			break
		}

		// CONTINUE, EXTSST, FONT, STYLE and the rest are skipped by length
		if handler := globalsHandlers[rec.ID]; handler != nil {
			if err := handler(p, rec); err != nil {
				return nil, nil, globalsError(rec, err)
			}
		}
	}

	return p.b, p.warnings, nil
}

// streamContinuations reads CONTINUE records straight after the SST record.
// The globals loop seeks back to the SST end afterwards and skips them again.
type streamContinuations struct {
	c *Cursor
}

func (s streamContinuations) nextContinue() ([]byte, error) {
	rec, err := readRecord(s.c)
	if err != nil {
		return nil, err
	}

	if rec.ID != recContinue {
		return nil, fmt.Errorf("%w: record 0x%04X at offset %d", ErrMalformedContinuation, rec.ID, rec.offset)
	}

	return rec.data, nil
}

func handleSST(p *globalsParser, rec *record) error {
	strs, complete, err := buildSharedStrings(rec.data, streamContinuations{c: p.c})
	if err != nil {
		return err
	}

	if !complete {
		p.warn(rec, fmt.Errorf("%w: shared string table ends after %d strings", errRecordShape, len(strs)))
	}

	p.b.setStrings(strs)

	return nil
}

func handleFormat(p *globalsParser, rec *record) error {
	c := newBodyCursor(rec.data)

	index, err := c.ReadU16()
	if err != nil {
		p.warn(rec, err)
		return nil
	}

	width := 1
	if p.b.version == BIFF8 {
		width = 2
	}

	pattern, err := p.b.text.readString(c, width)
	if err != nil {
		p.warn(rec, err)
		return nil
	}

	p.b.addFormat(index, pattern)

	return nil
}

func handleXF(p *globalsParser, rec *record) error {
	format, err := parseXF(rec.data, p.b.version)
	if err != nil {
		return err
	}

	p.b.addXF(format)

	return nil
}

func handleBoundSheet(p *globalsParser, rec *record) error {
	c := newBodyCursor(rec.data)

	offset, err := c.ReadU32()
	if err != nil {
		p.warn(rec, err)
		return nil
	}

	vis, err := c.ReadU8()
	if err != nil {
		p.warn(rec, err)
		return nil
	}

	typ, err := c.ReadU8()
	if err != nil {
		p.warn(rec, err)
		return nil
	}

	name, err := p.b.text.readString(c, 1)
	if err != nil {
		p.warn(rec, err)
		return nil
	}

	p.b.addSheet(SheetEntry{
		Name:       name,
		Offset:     offset,
		Visibility: Visibility(vis & 0x03),
		Type:       SheetType(typ),
	})

	return nil
}

func handleDateMode(p *globalsParser, rec *record) error {
	mode, err := newBodyCursor(rec.data).ReadU16()
	if err != nil {
		p.warn(rec, err)
		return nil
	}

	p.b.check()
	if mode == 1 {
		p.b.epoch = Epoch1904
	} else {
		p.b.epoch = Epoch1900
	}

	return nil
}

func handleFilepass(_ *globalsParser, _ *record) error {
	return ErrEncryptedWorkbook
}

func handleCodepage(p *globalsParser, rec *record) error {
	cp, err := newBodyCursor(rec.data).ReadU16()
	if err != nil {
		p.warn(rec, err)
		return nil
	}

	p.b.setCodepage(cp, p.opts.Codepage != 0)

	return nil
}

// WRITEACCESS holds the name of the user who last saved the file, padded
// with spaces.
func handleWriteAccess(p *globalsParser, rec *record) error {
	width := 1
	if p.b.version == BIFF8 {
		width = 2
	}

	name, err := p.b.text.readString(newBodyCursor(rec.data), width)
	if err != nil {
		p.warn(rec, err)
		return nil
	}

	p.b.check()
	p.b.author = strings.TrimRight(name, " \x00")

	return nil
}
