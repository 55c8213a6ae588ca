// Package sheet reads and writes the tabular formats accepted for upload.
//
// Only the first sheet of a workbook is read. Cells come back as string,
// float64, bool or nil so the email scanner can tell text apart from other
// values. CSV files have no types: every non-empty field is a string.
//
// The reader is chosen from the file's leading bytes, not only its name: a
// workbook saved under the other workbook extension still loads, and a text
// file named .xls or .xlsx is read as CSV.
package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/JonMunkholm/mxgroup/internal/core"
)

// ErrUnsupportedFormat is returned for extensions with no reader.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Table is a fully loaded first sheet.
type Table [][]any

// Rows yields each row in order.
func (t Table) Rows() iter.Seq[[]any] {
	return func(yield func([]any) bool) {
		for _, row := range t {
			if !yield(row) {
				return
			}
		}
	}
}

// Loader picks a reader by extension. It satisfies core.DocumentLoader.
type Loader struct{}

// NewLoader returns a Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads the whole first sheet of the document at path. ext must name a
// supported format (case-insensitively); the format actually read is
// detected from the content.
func (l *Loader) Load(path, ext string) (core.Document, error) {
	declared := strings.ToLower(strings.TrimPrefix(ext, "."))
	switch declared {
	case "csv", "xlsx", "xls":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	format, err := sniffFile(path, declared)
	if err != nil {
		return nil, err
	}

	switch format {
	case "xlsx":
		return loadXLSX(path)
	case "xls":
		return loadXLS(path)
	default:
		return loadCSV(path)
	}
}

const sniffLen = 512

var (
	zipSignature = []byte("PK\x03\x04")
	oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

func sniffFile(path, declared string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", fmt.Errorf("read document: %w", err)
	}
	return detectFormat(head[:n], declared), nil
}

// detectFormat maps a file's leading bytes to a reader. Zip containers are
// read as xlsx and OLE2 compound files as xls. Anything else keeps the
// declared format, except that UTF-8 text declared as a workbook is CSV.
func detectFormat(head []byte, declared string) string {
	switch {
	case bytes.HasPrefix(head, zipSignature):
		return "xlsx"
	case bytes.HasPrefix(head, oleSignature):
		return "xls"
	case declared != "csv" && isText(head):
		return "csv"
	default:
		return declared
	}
}

func isText(head []byte) bool {
	if len(head) == 0 || bytes.IndexByte(head, 0) >= 0 {
		return false
	}
	// The sample may end inside a multi-byte rune.
	for i := len(head) - 1; i >= 0 && i >= len(head)-utf8.UTFMax; i-- {
		if utf8.RuneStart(head[i]) {
			if !utf8.FullRune(head[i:]) {
				head = head[:i]
			}
			break
		}
	}
	return len(head) > 0 && utf8.Valid(head)
}
