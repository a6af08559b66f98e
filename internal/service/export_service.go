package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"costedge/backend/internal/ingest"
	"costedge/backend/internal/model"
	"costedge/backend/internal/repository"
)

// ── export errors ──

var ErrExportGenerateFail = errors.New("failed to generate xlsx file")

const (
	exportSheet = "BOM Changes"
	// builtin number format 14: m/d/yyyy
	exportDateNumFmt = 14
)

// ExportService spreadsheet export.
//
// The workbook uses the import column order followed by an Impact column,
// so an exported file can be uploaded again unchanged.
type ExportService interface {
	// ExportBomChanges returns the xlsx content and a suggested file name.
	ExportBomChanges(ctx context.Context) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService creates an ExportService.
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger, now: time.Now}
}

func (s *exportService) ExportBomChanges(ctx context.Context) (*bytes.Buffer, string, error) {
	recs, err := s.repo.BomChange.List(ctx)
	if err != nil {
		s.logger.Error("list bom changes for export failed", zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	dateStyle, _ := f.NewStyle(&excelize.Style{NumFmt: exportDateNumFmt})

	// header
	headers := append(ingest.HeaderTitles[:], "Impact")
	for i, h := range headers {
		f.SetCellValue(exportSheet, cellName(i, 1), h)
	}
	f.SetCellStyle(exportSheet, cellName(0, 1), cellName(len(headers)-1, 1), headerStyle)
	f.SetColWidth(exportSheet, "A", colName(len(headers)-1), 16)

	// rows
	for i := range recs {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}
		row := i + 2
		if err := writeBomChangeRow(f, row, &recs[i], dateStyle); err != nil {
			s.logger.Error("write export row failed", zap.Int("row", row), zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write xlsx failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("bom_changes_%s.xlsx", s.now().Format("20060102"))
	return buf, filename, nil
}

func writeBomChangeRow(f *excelize.File, row int, rec *model.BomChange, dateStyle int) error {
	values := [ingest.ColumnCount + 1]interface{}{
		ingest.ColModel:         rec.Model,
		ingest.ColPartName:      rec.PartName,
		ingest.ColPartNumber:    rec.PartNumber,
		ingest.ColOldCost:       nullDecimalCell(rec.OldCost),
		ingest.ColNewCost:       nullDecimalCell(rec.NewCost),
		ingest.ColSupplier:      rec.Supplier,
		ingest.ColEffectiveDate: time.Time(rec.EffectiveDate),
		ingest.ColChangeType:    string(rec.ChangeType),
		ingest.ColStatus:        string(rec.Status),
		ingest.ColDepartment:    rec.Department,
		ingest.ColRemarks:       rec.Remarks,
		ingest.ColumnCount:      nullDecimalCell(rec.Impact),
	}
	for col, v := range values {
		if v == nil {
			continue
		}
		if err := f.SetCellValue(exportSheet, cellName(col, row), v); err != nil {
			return err
		}
	}
	dateCell := cellName(ingest.ColEffectiveDate, row)
	return f.SetCellStyle(exportSheet, dateCell, dateCell, dateStyle)
}

// nullDecimalCell leaves missing values as blank cells.
func nullDecimalCell(d decimal.NullDecimal) interface{} {
	if !d.Valid {
		return nil
	}
	return d.Decimal.InexactFloat64()
}

// ── helpers ──

// colName converts a zero-based column index to its letter name.
func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

// cellName builds a cell reference from a zero-based column and 1-based row.
func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row)
	return name
}
