package ingest

import (
	"fmt"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"costedge/backend/internal/model"
)

// Spreadsheet column order of a BOM change row.
const (
	ColModel = iota
	ColPartName
	ColPartNumber
	ColOldCost
	ColNewCost
	ColSupplier
	ColEffectiveDate
	ColChangeType
	ColStatus
	ColDepartment
	ColRemarks

	ColumnCount
)

// ColumnNames field names used in notes and errors, indexed by column.
var ColumnNames = [ColumnCount]string{
	"model", "part_name", "part_number", "old_cost", "new_cost",
	"supplier", "effective_date", "change_type", "status", "department", "remarks",
}

// HeaderTitles header row written by the exporter, indexed by column.
var HeaderTitles = [ColumnCount]string{
	"Model", "Part Name", "Part Number", "Old Cost", "New Cost",
	"Supplier", "Effective Date", "Change Type", "Status", "Department", "Remarks",
}

// maxLen text bounds per column. Zero means the column is not text.
var maxLen = [ColumnCount]int{
	ColModel:      100,
	ColPartName:   255,
	ColPartNumber: 100,
	ColSupplier:   255,
	ColDepartment: 100,
	ColRemarks:    500,
}

var requiredText = []int{ColModel, ColPartName, ColPartNumber, ColSupplier, ColDepartment}

// FieldNote records a field that fell back to its default.
type FieldNote struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
	Reason string `json:"reason"`
}

// RowError a row that produced no record.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// RowMapper turns one spreadsheet row into a candidate BomChange.
type RowMapper struct {
	coerce *Coercer
}

func NewRowMapper(coerce *Coercer) *RowMapper {
	return &RowMapper{coerce: coerce}
}

// MapRow maps cells of spreadsheet row rowNum. Exactly one of the record and
// the RowError is non-nil. Notes list fields that used a fallback value.
func (m *RowMapper) MapRow(rowNum int, cells []Cell) (rec *model.BomChange, notes []FieldNote, rowErr *RowError) {
	defer func() {
		if r := recover(); r != nil {
			rec, notes = nil, nil
			rowErr = &RowError{Row: rowNum, Reason: fmt.Sprintf("unreadable row: %v", r)}
		}
	}()

	note := func(col int, reason string) {
		notes = append(notes, FieldNote{Row: rowNum, Column: ColumnNames[col], Reason: reason})
	}

	var text [ColumnCount]string
	for _, col := range []int{ColModel, ColPartName, ColPartNumber, ColSupplier, ColDepartment, ColRemarks} {
		v := m.coerce.Text(cellAt(cells, col))
		if v.Defaulted {
			note(col, v.Reason)
		}
		text[col] = v.Value
	}

	for _, col := range requiredText {
		if text[col] == "" {
			return nil, nil, &RowError{Row: rowNum, Reason: ColumnNames[col] + " is required"}
		}
	}
	for col, limit := range maxLen {
		if limit > 0 && utf8.RuneCountInString(text[col]) > limit {
			return nil, nil, &RowError{
				Row:    rowNum,
				Reason: fmt.Sprintf("%s exceeds %d characters", ColumnNames[col], limit),
			}
		}
	}

	costs := [2]decimal.Decimal{}
	for i, col := range []int{ColOldCost, ColNewCost} {
		v := m.coerce.Decimal(cellAt(cells, col))
		if v.Defaulted {
			note(col, v.Reason)
		}
		if v.Value.IsNegative() {
			return nil, nil, &RowError{Row: rowNum, Reason: ColumnNames[col] + " must not be negative"}
		}
		costs[i] = v.Value
	}

	date := m.coerce.Date(cellAt(cells, ColEffectiveDate))
	if date.Defaulted {
		note(ColEffectiveDate, date.Reason)
	}
	changeType := m.coerce.ChangeType(cellAt(cells, ColChangeType))
	if changeType.Defaulted {
		note(ColChangeType, changeType.Reason)
	}
	status := m.coerce.Status(cellAt(cells, ColStatus))
	if status.Defaulted {
		note(ColStatus, status.Reason)
	}

	rec = &model.BomChange{
		Model:         text[ColModel],
		PartName:      text[ColPartName],
		PartNumber:    text[ColPartNumber],
		OldCost:       decimal.NewNullDecimal(costs[0]),
		NewCost:       decimal.NewNullDecimal(costs[1]),
		Supplier:      text[ColSupplier],
		EffectiveDate: datatypes.Date(date.Value),
		ChangeType:    changeType.Value,
		Status:        status.Value,
		Department:    text[ColDepartment],
		Quantity:      1,
		Remarks:       text[ColRemarks],
	}
	return rec, notes, nil
}
