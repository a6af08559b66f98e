package ingest

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedFormat  = errors.New("only .xlsx and .xls files are supported")
	ErrUnreadableWorkbook = errors.New("workbook cannot be read")
)

// RowSource a one-pass iterator over the rows of a worksheet.
//
//	for src.Next() { n, cells := src.RowNumber(), src.Cells() }
//	if err := src.Err(); err != nil { ... }
type RowSource interface {
	Next() bool
	Cells() []Cell
	// RowNumber 1-based row number of the current row as shown by spreadsheet tools.
	RowNumber() int
	Err() error
	Close() error
}

// Format of an uploaded workbook.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

// DetectFormat picks the format from the file extension.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filename)
	}
}

// OpenWorkbook opens the first worksheet of an uploaded file.
// The extension is checked before any byte is parsed.
func OpenWorkbook(filename string, r io.ReadSeeker) (RowSource, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}
	if format == FormatXLS {
		return OpenXLS(r)
	}
	return OpenXLSX(r)
}
