package xls

import (
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/vstasn/ole2"
)

// ErrWorkbookNotFound is returned when neither "Workbook" nor "Book" stream
// could be found in the OLE2 directory structure.
var ErrWorkbookNotFound = errors.New("xls: no Workbook or Book stream found")

// Open opens an XLS file from the given file path.
func Open(file string) (*WorkBook, error) {
	fi, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer fi.Close()

	return OpenReader(fi)
}

// OpenWithCloser is similar to Open, but leaves the file open and returns it
// so the caller decides when to close it.
func OpenWithCloser(file string) (*WorkBook, io.Closer, error) {
	fi, err := os.Open(file)
	if err != nil {
		return nil, nil, err
	}

	wb, err := OpenReader(fi)

	return wb, fi, err
}

// OpenStream loads an XLS workbook from any io.Reader. The container needs
// random access, so the whole input is buffered into memory.
func OpenStream(r io.Reader) (*WorkBook, error) {
	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, r); err != nil {
		return nil, err
	}

	return OpenReader(bytes.NewReader(buf.Bytes()))
}

// OpenReader decodes the workbook stream of an OLE2 container with DefaultOptions.
func OpenReader(reader io.ReadSeeker) (*WorkBook, error) {
	return OpenReaderWithOptions(reader, DefaultOptions())
}

// OpenReaderWithOptions locates the workbook stream in an OLE2 container and
// decodes it.
func OpenReaderWithOptions(reader io.ReadSeeker, opts Options) (*WorkBook, error) {
	stream, err := workbookStream(reader)
	if err != nil {
		return nil, err
	}

	return DecodeWithOptions(stream, 0, opts)
}

// workbookStream copies the "Workbook" (BIFF8) or "Book" (BIFF7) stream out
// of the container into memory, which also lets worksheets decode in parallel.
func workbookStream(reader io.ReadSeeker) (*bytes.Reader, error) {
	ole, err := ole2.Open(reader)
	if err != nil {
		return nil, err
	}

	dir, err := ole.ListDir()
	if err != nil {
		return nil, err
	}

	var book, root *ole2.File

	for _, file := range dir {
		switch file.Name() {
		case "Workbook":
			if book == nil {
				book = file
			}
		case "Book":
			if book == nil {
				book = file
			}
		case "Root Entry":
			root = file
		}
	}

	if book == nil {
		return nil, ErrWorkbookNotFound
	}

	data, err := io.ReadAll(ole.OpenFile(book, root))
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(data), nil
}
