package xls

import "log"

// Options configures Decode.
type Options struct {
	// Concurrency is the number of worksheets parsed at the same time once
	// the globals are decoded. Values below 2 parse sequentially. Parallel
	// parsing needs a source implementing io.ReaderAt and falls back to
	// sequential parsing otherwise.
	Concurrency int
	// MaxStreamSize caps the number of stream bytes the decoder may read,
	// counted from the start offset. Zero means no limit.
	MaxStreamSize int64
	// Codepage overrides the CODEPAGE record when decoding BIFF7 byte strings.
	Codepage uint16
	// Logger receives every recorded warning. Nil keeps the decoder silent.
	Logger *log.Logger
}

// DefaultOptions returns the options used by Decode.
func DefaultOptions() Options {
	return Options{
		Concurrency: 1,
	}
}

func (o Options) workers(sheets int) int {
	n := o.Concurrency
	if n > sheets {
		n = sheets
	}

	if n < 1 {
		n = 1
	}

	return n
}
