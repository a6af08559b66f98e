package ingest

import (
	"fmt"
	"io"
	"time"

	"github.com/extrame/xls"
)

// xlsDateLayouts renderings the BIFF reader produces for date cells.
var xlsDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006.01.02 15:04:05",
	"2006.01.02",
}

// xlsSource iterates the first sheet of a legacy BIFF workbook.
// The reader only exposes rendered text, so every cell is a text cell.
type xlsSource struct {
	sheet  *xls.WorkSheet
	maxRow int

	next  int
	row   int
	cells []Cell
}

// OpenXLS opens an .xls workbook.
func OpenXLS(r io.ReadSeeker) (src RowSource, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			src, err = nil, fmt.Errorf("%w: %v", ErrUnreadableWorkbook, rec)
		}
	}()

	wb, err := xls.OpenReader(r, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableWorkbook, err)
	}
	if wb.NumSheets() == 0 {
		return nil, fmt.Errorf("%w: no worksheet", ErrUnreadableWorkbook)
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("%w: no worksheet", ErrUnreadableWorkbook)
	}

	return &xlsSource{sheet: sheet, maxRow: int(sheet.MaxRow)}, nil
}

func (s *xlsSource) Next() bool {
	if s.next > s.maxRow {
		return false
	}
	i := s.next
	s.next++
	s.row = i + 1

	row := sheetRow(s.sheet, i)
	if row == nil {
		s.cells = nil
		return true
	}

	// cells written without a ROW record leave LastCol at 0
	width := row.LastCol()
	if width < ColumnCount {
		width = ColumnCount
	}
	cells := make([]Cell, width)
	for c := 0; c < width; c++ {
		v := row.Col(c)
		if v == "" {
			continue
		}
		cells[c] = TextCell(normalizeXLSDate(v))
	}
	s.cells = cells
	return true
}

// sheetRow returns nil for a row index with no records; the reader
// dereferences the missing row instead of reporting it.
func sheetRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

func normalizeXLSDate(v string) string {
	for _, layout := range xlsDateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(isoDate)
		}
	}
	return v
}

func (s *xlsSource) Cells() []Cell  { return s.cells }
func (s *xlsSource) RowNumber() int { return s.row }
func (s *xlsSource) Err() error     { return nil }
func (s *xlsSource) Close() error   { return nil }
