package ingest

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"costedge/backend/internal/model"
)

// ErrNoUsableRecords the sheet yielded no accepted record.
var ErrNoUsableRecords = errors.New("no usable records in spreadsheet")

// Candidate an accepted record and the spreadsheet row it came from.
type Candidate struct {
	Row    int
	Record *model.BomChange
}

// Result outcome of one ingestion run.
type Result struct {
	// DataRows counts non-blank rows after the header.
	DataRows  int
	Accepted  []Candidate
	RowErrors []RowError
	Notes     []FieldNote
}

// Pipeline reads a RowSource end to end and maps every data row.
type Pipeline struct {
	mapper *RowMapper
	logger *zap.Logger
}

func NewPipeline(mapper *RowMapper, logger *zap.Logger) *Pipeline {
	return &Pipeline{mapper: mapper, logger: logger}
}

// Run consumes src. Wholly blank rows are skipped everywhere; the first
// non-blank row is the header. A failing row is recorded and the run continues.
//
// When nothing is accepted Run returns the partial Result together with
// ErrNoUsableRecords so callers can still report row errors. A read error
// from src aborts the run.
func (p *Pipeline) Run(ctx context.Context, src RowSource) (*Result, error) {
	res := &Result{}
	header := true

	for src.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cells := src.Cells()
		if rowIsBlank(cells) {
			continue
		}
		if header {
			header = false
			continue
		}
		rowNum := src.RowNumber()
		res.DataRows++

		rec, notes, rowErr := p.mapper.MapRow(rowNum, cells)
		if rowErr != nil {
			p.logger.Warn("spreadsheet row rejected",
				zap.Int("row", rowNum),
				zap.String("reason", rowErr.Reason),
			)
			res.RowErrors = append(res.RowErrors, *rowErr)
			continue
		}
		res.Notes = append(res.Notes, notes...)
		res.Accepted = append(res.Accepted, Candidate{Row: rowNum, Record: rec})
	}
	if err := src.Err(); err != nil {
		return nil, fmt.Errorf("read spreadsheet: %w", err)
	}

	if len(res.Accepted) == 0 {
		return res, ErrNoUsableRecords
	}

	p.logger.Info("spreadsheet parsed",
		zap.Int("data_rows", res.DataRows),
		zap.Int("accepted", len(res.Accepted)),
		zap.Int("rejected", len(res.RowErrors)),
		zap.Int("defaulted_fields", len(res.Notes)),
	)
	return res, nil
}
