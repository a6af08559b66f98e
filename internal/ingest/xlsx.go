package ingest

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// unzipSizeLimit caps the decompressed size of an .xlsx package.
var unzipSizeLimit int64 = 256 << 20

// xlsxSource walks the first worksheet of an OOXML workbook row by row.
// excelize resolves cell types and styles against the parsed worksheet, so
// the whole sheet is held in memory; the upload cap and unzipSizeLimit bound it.
type xlsxSource struct {
	file  *excelize.File
	sheet string
	rows  *excelize.Rows

	row   int
	cells []Cell
	err   error

	dateStyles map[int]bool
}

// OpenXLSX opens an .xlsx workbook and positions before its first row.
func OpenXLSX(r io.Reader) (RowSource, error) {
	f, err := excelize.OpenReader(r, excelize.Options{
		UnzipSizeLimit:    unzipSizeLimit,
		UnzipXMLSizeLimit: unzipSizeLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableWorkbook, err)
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		_ = f.Close()
		return nil, fmt.Errorf("%w: no worksheet", ErrUnreadableWorkbook)
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnreadableWorkbook, err)
	}

	return &xlsxSource{
		file:       f,
		sheet:      sheets[0],
		rows:       rows,
		dateStyles: make(map[int]bool),
	}, nil
}

func (s *xlsxSource) Next() bool {
	if s.err != nil || !s.rows.Next() {
		return false
	}
	s.row++

	raw, err := s.rows.Columns(excelize.Options{RawCellValue: true})
	if err != nil {
		s.err = err
		return false
	}

	cells := make([]Cell, len(raw))
	for i, v := range raw {
		cell, err := s.readCell(i+1, v)
		if err != nil {
			s.err = err
			return false
		}
		cells[i] = cell
	}
	s.cells = cells
	return true
}

func (s *xlsxSource) readCell(col int, raw string) (Cell, error) {
	axis, err := excelize.CoordinatesToCellName(col, s.row)
	if err != nil {
		return Blank, err
	}

	formula, err := s.file.GetCellFormula(s.sheet, axis)
	if err != nil {
		return Blank, err
	}
	if formula != "" {
		return FormulaCell(formula), nil
	}
	if raw == "" {
		return Blank, nil
	}

	typ, err := s.file.GetCellType(s.sheet, axis)
	if err != nil {
		return Blank, err
	}

	switch typ {
	case excelize.CellTypeBool:
		return BoolCell(raw == "1" || strings.EqualFold(raw, "true")), nil
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeError, excelize.CellTypeFormula:
		return TextCell(raw), nil
	case excelize.CellTypeDate:
		// ISO 8601 stored date: hand it over as an ISO date string
		if t, perr := time.Parse(time.RFC3339Nano, raw); perr == nil {
			return TextCell(t.Format(isoDate)), nil
		}
		if len(raw) >= len(isoDate) {
			return TextCell(raw[:len(isoDate)]), nil
		}
		return TextCell(raw), nil
	}

	v, perr := strconv.ParseFloat(raw, 64)
	if perr != nil {
		return TextCell(raw), nil
	}
	isDate, err := s.isDateStyled(axis)
	if err != nil {
		return Blank, err
	}
	if isDate {
		return DateCell(v), nil
	}
	return NumberCell(v), nil
}

func (s *xlsxSource) isDateStyled(axis string) (bool, error) {
	idx, err := s.file.GetCellStyle(s.sheet, axis)
	if err != nil {
		return false, err
	}
	if cached, found := s.dateStyles[idx]; found {
		return cached, nil
	}

	isDate := false
	if idx != 0 {
		style, err := s.file.GetStyle(idx)
		if err != nil {
			return false, err
		}
		custom := ""
		if style.CustomNumFmt != nil {
			custom = *style.CustomNumFmt
		}
		isDate = isDateFormat(style.NumFmt, custom)
	}
	s.dateStyles[idx] = isDate
	return isDate, nil
}

func (s *xlsxSource) Cells() []Cell  { return s.cells }
func (s *xlsxSource) RowNumber() int { return s.row }

func (s *xlsxSource) Err() error {
	if s.err != nil {
		return s.err
	}
	return s.rows.Error()
}

func (s *xlsxSource) Close() error {
	rerr := s.rows.Close()
	ferr := s.file.Close()
	if rerr != nil {
		return rerr
	}
	return ferr
}
