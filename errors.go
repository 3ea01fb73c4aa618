package xls

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncatedStream is returned when a field or record extends past the end of the stream.
	ErrTruncatedStream = errors.New("xls: truncated stream")
	// ErrUnsupportedFormat is returned for a BOF that is not BIFF7/BIFF8 or has the wrong sub-stream type.
	ErrUnsupportedFormat = errors.New("xls: unsupported format")
	// ErrEncryptedWorkbook is returned when the globals stream carries a FILEPASS record.
	ErrEncryptedWorkbook = errors.New("xls: workbook is encrypted")
	// ErrMalformedContinuation is returned when a string needs a CONTINUE record and a different record follows.
	ErrMalformedContinuation = errors.New("xls: malformed continuation")
	// ErrIndexOutOfRange marks a shared string or XF reference beyond its table.
	ErrIndexOutOfRange = errors.New("xls: index out of range")

	errRecordShape = errors.New("xls: unexpected record shape")
)

// Phase identifies the decode phase an error occurred in.
type Phase int

const (
	PhaseGlobals Phase = iota
	PhaseWorksheet
)

func (p Phase) String() string {
	switch p {
	case PhaseGlobals:
		return "globals"
	case PhaseWorksheet:
		return "worksheet"
	}

	return fmt.Sprintf("phase(%d)", int(p))
}

// DecodeError reports where a decode stopped.
type DecodeError struct {
	Phase  Phase
	Sheet  string // empty in the globals phase
	Offset int64  // stream-relative offset of the record being decoded
	Record uint16
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("xls: %s %q: record 0x%04X at offset %d: %v", e.Phase, e.Sheet, e.Record, e.Offset, e.Err)
	}

	return fmt.Sprintf("xls: %s: record 0x%04X at offset %d: %v", e.Phase, e.Record, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Warning is a recovered problem. The record it refers to was skipped or
// replaced by a sentinel value.
type Warning struct {
	Sheet  string
	Offset int64
	Record uint16
	Err    error
}

func (w Warning) String() string {
	if w.Sheet == "" {
		return fmt.Sprintf("record 0x%04X at offset %d: %v", w.Record, w.Offset, w.Err)
	}

	return fmt.Sprintf("sheet %q: record 0x%04X at offset %d: %v", w.Sheet, w.Record, w.Offset, w.Err)
}
