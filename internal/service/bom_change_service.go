package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"costedge/backend/internal/costcalc"
	"costedge/backend/internal/dto"
	"costedge/backend/internal/ingest"
	"costedge/backend/internal/model"
	"costedge/backend/internal/repository"
	pkgerrors "costedge/backend/pkg/errors"
	"costedge/backend/pkg/tracing"
)

// ── BOM change errors ──

var (
	ErrBomChangeNotFound = errors.New("bom change not found")
	ErrEmptyBatch        = errors.New("no usable records")
)

// BomChangeService BOM change use cases, including spreadsheet ingestion.
type BomChangeService interface {
	Create(ctx context.Context, req *dto.BomChangeRequest) (*dto.BomChangeResponse, error)
	BatchCreate(ctx context.Context, items []dto.BomChangeRequest) (*dto.BomChangeBatchResponse, error)
	// ImportSpreadsheet ingests the first sheet of an .xlsx/.xls upload.
	// Rows are stored one by one; failures land in the response, not in err.
	ImportSpreadsheet(ctx context.Context, filename string, r io.ReadSeeker) (*dto.BomChangeImportResponse, error)
	GetByID(ctx context.Context, id uint64) (*dto.BomChangeResponse, error)
	GetByPartNumber(ctx context.Context, partNumber string) (*dto.BomChangeResponse, error)
	List(ctx context.Context) ([]dto.BomChangeResponse, error)
	Update(ctx context.Context, id uint64, req *dto.BomChangeRequest) (*dto.BomChangeResponse, error)
	Delete(ctx context.Context, id uint64) error

	ListByStatus(ctx context.Context, status string) ([]dto.BomChangeResponse, error)
	ListByDepartment(ctx context.Context, department string) ([]dto.BomChangeResponse, error)
	ListByModel(ctx context.Context, modelName string) ([]dto.BomChangeResponse, error)
	ListBySupplier(ctx context.Context, supplier string) ([]dto.BomChangeResponse, error)
	ListByChangeType(ctx context.Context, changeType string) ([]dto.BomChangeResponse, error)
	ListByModelAndStatus(ctx context.Context, modelName, status string) ([]dto.BomChangeResponse, error)
	ListBySupplierAndChangeType(ctx context.Context, supplier, changeType string) ([]dto.BomChangeResponse, error)
	ListByDateRange(ctx context.Context, q *dto.DateRangeQuery) ([]dto.BomChangeResponse, error)
	Search(ctx context.Context, q string) ([]dto.BomChangeResponse, error)
}

type bomChangeService struct {
	repo   *repository.Repository
	cache  ReportCache
	logger *zap.Logger
	now    func() time.Time
}

// NewBomChangeService creates a BomChangeService. cache may be nil.
func NewBomChangeService(repo *repository.Repository, cache ReportCache, logger *zap.Logger) BomChangeService {
	return &bomChangeService{repo: repo, cache: cache, logger: logger, now: time.Now}
}

// ────────────────────── Create ──────────────────────

func (s *bomChangeService) Create(ctx context.Context, req *dto.BomChangeRequest) (*dto.BomChangeResponse, error) {
	rec, err := bomChangeFromRequest(req)
	if err != nil {
		return nil, err
	}
	costcalc.ApplyBomChange(rec)

	if err := s.repo.BomChange.Create(ctx, rec); err != nil {
		s.logger.Error("create bom change failed", zap.String("part_number", rec.PartNumber), zap.Error(err))
		return nil, err
	}
	s.invalidateReports(ctx)

	resp := toBomChangeResponse(rec)
	return &resp, nil
}

// ═══════════════════════════════════════════════════════════
// BatchCreate: best-effort JSON batch
// ═══════════════════════════════════════════════════════════
//
// Every item is validated and stored on its own. A failing item is reported
// by its zero-based index and never blocks the others.

func (s *bomChangeService) BatchCreate(ctx context.Context, items []dto.BomChangeRequest) (*dto.BomChangeBatchResponse, error) {
	if len(items) == 0 {
		return nil, ErrEmptyBatch
	}

	resp := &dto.BomChangeBatchResponse{
		Total: len(items),
		Data:  make([]dto.BomChangeResponse, 0, len(items)),
	}
	for i := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := validateItem(&items[i]); err != nil {
			resp.Errors = append(resp.Errors, batchItemError(i, err))
			continue
		}
		rec, err := bomChangeFromRequest(&items[i])
		if err != nil {
			resp.Errors = append(resp.Errors, batchItemError(i, err))
			continue
		}
		costcalc.ApplyBomChange(rec)

		if err := s.repo.BomChange.Create(ctx, rec); err != nil {
			s.logger.Error("batch item not stored", zap.Int("index", i), zap.Error(err))
			resp.Errors = append(resp.Errors, dto.BatchItemError{Index: i, Reason: "storage error"})
			continue
		}
		resp.Data = append(resp.Data, toBomChangeResponse(rec))
	}
	resp.Success = len(resp.Data)
	resp.Failed = len(resp.Errors)

	if resp.Success > 0 {
		s.invalidateReports(ctx)
	}
	return resp, nil
}

// ═══════════════════════════════════════════════════════════
// ImportSpreadsheet: header row, then one BOM change per row
// ═══════════════════════════════════════════════════════════
//
// Column order: model, part name, part number, old cost, new cost, supplier,
// effective date, change type, status, department, remarks.
//
// When the sheet yields nothing usable the partial response is returned
// together with ingest.ErrNoUsableRecords.

func (s *bomChangeService) ImportSpreadsheet(ctx context.Context, filename string, r io.ReadSeeker) (*dto.BomChangeImportResponse, error) {
	ctx, span := tracing.Tracer("costedge/service").Start(ctx, "bom_change.import")
	defer span.End()
	span.SetAttributes(attribute.String("file", filename))

	src, err := ingest.OpenWorkbook(filename, r)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer src.Close()

	pipeline := ingest.NewPipeline(ingest.NewRowMapper(ingest.NewCoercer(s.now)), s.logger)
	result, runErr := pipeline.Run(ctx, src)
	if runErr != nil && !errors.Is(runErr, ingest.ErrNoUsableRecords) {
		s.logger.Error("spreadsheet ingestion failed", zap.String("file", filename), zap.Error(runErr))
		span.SetStatus(codes.Error, runErr.Error())
		return nil, runErr
	}

	resp := &dto.BomChangeImportResponse{
		FileName: filename,
		Total:    result.DataRows,
		Data:     make([]dto.BomChangeResponse, 0, len(result.Accepted)),
	}
	for _, re := range result.RowErrors {
		resp.Errors = append(resp.Errors, dto.ImportRowError{Row: re.Row, Reason: re.Reason})
	}
	for _, n := range result.Notes {
		resp.Notes = append(resp.Notes, dto.ImportFieldNote{Row: n.Row, Column: n.Column, Reason: n.Reason})
	}

	for _, cand := range result.Accepted {
		costcalc.ApplyBomChange(cand.Record)
		if err := s.repo.BomChange.Create(ctx, cand.Record); err != nil {
			s.logger.Warn("spreadsheet row not stored", zap.Int("row", cand.Row), zap.Error(err))
			resp.Errors = append(resp.Errors, dto.ImportRowError{Row: cand.Row, Reason: "storage error"})
			continue
		}
		resp.Data = append(resp.Data, toBomChangeResponse(cand.Record))
	}
	resp.Success = len(resp.Data)
	resp.Failed = len(resp.Errors)
	span.SetAttributes(
		attribute.Int("rows.total", resp.Total),
		attribute.Int("rows.stored", resp.Success),
		attribute.Int("rows.failed", resp.Failed),
	)

	if resp.Success > 0 {
		s.invalidateReports(ctx)
	}
	if runErr != nil {
		return resp, runErr
	}
	if resp.Success == 0 {
		return resp, ingest.ErrNoUsableRecords
	}

	s.logger.Info("spreadsheet imported",
		zap.String("file", filename),
		zap.Int("stored", resp.Success),
		zap.Int("failed", resp.Failed),
	)
	return resp, nil
}

// ────────────────────── Get ──────────────────────

func (s *bomChangeService) GetByID(ctx context.Context, id uint64) (*dto.BomChangeResponse, error) {
	rec, err := s.repo.BomChange.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBomChangeNotFound
		}
		s.logger.Error("get bom change failed", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	resp := toBomChangeResponse(rec)
	return &resp, nil
}

func (s *bomChangeService) GetByPartNumber(ctx context.Context, partNumber string) (*dto.BomChangeResponse, error) {
	rec, err := s.repo.BomChange.GetByPartNumber(ctx, partNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBomChangeNotFound
		}
		s.logger.Error("get bom change failed", zap.String("part_number", partNumber), zap.Error(err))
		return nil, err
	}
	resp := toBomChangeResponse(rec)
	return &resp, nil
}

func (s *bomChangeService) List(ctx context.Context) ([]dto.BomChangeResponse, error) {
	return s.list(ctx, "list", s.repo.BomChange.List)
}

// ────────────────────── Update ──────────────────────

func (s *bomChangeService) Update(ctx context.Context, id uint64, req *dto.BomChangeRequest) (*dto.BomChangeResponse, error) {
	existing, err := s.repo.BomChange.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBomChangeNotFound
		}
		s.logger.Error("get bom change failed", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}

	rec, err := bomChangeFromRequest(req)
	if err != nil {
		return nil, err
	}
	rec.ID = existing.ID
	rec.CreatedAt = existing.CreatedAt
	costcalc.ApplyBomChange(rec)

	if err := s.repo.BomChange.Update(ctx, rec); err != nil {
		s.logger.Error("update bom change failed", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	s.invalidateReports(ctx)

	resp := toBomChangeResponse(rec)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *bomChangeService) Delete(ctx context.Context, id uint64) error {
	if err := s.repo.BomChange.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBomChangeNotFound
		}
		s.logger.Error("delete bom change failed", zap.Uint64("id", id), zap.Error(err))
		return err
	}
	s.invalidateReports(ctx)
	return nil
}

// ────────────────────── Filters ──────────────────────

func (s *bomChangeService) ListByStatus(ctx context.Context, status string) ([]dto.BomChangeResponse, error) {
	st, ok := model.ParseBomStatus(status)
	if !ok {
		ve := pkgerrors.NewValidationError()
		ve.Add("status", "must be one of "+validValues(model.BomStatuses))
		return nil, ve
	}
	return s.list(ctx, "list by status", func(ctx context.Context) ([]model.BomChange, error) {
		return s.repo.BomChange.ListByStatus(ctx, st)
	})
}

func (s *bomChangeService) ListByDepartment(ctx context.Context, department string) ([]dto.BomChangeResponse, error) {
	return s.list(ctx, "list by department", func(ctx context.Context) ([]model.BomChange, error) {
		return s.repo.BomChange.ListByDepartment(ctx, department)
	})
}

func (s *bomChangeService) ListByModel(ctx context.Context, modelName string) ([]dto.BomChangeResponse, error) {
	return s.list(ctx, "list by model", func(ctx context.Context) ([]model.BomChange, error) {
		return s.repo.BomChange.ListByModel(ctx, modelName)
	})
}

func (s *bomChangeService) ListBySupplier(ctx context.Context, supplier string) ([]dto.BomChangeResponse, error) {
	return s.list(ctx, "list by supplier", func(ctx context.Context) ([]model.BomChange, error) {
		return s.repo.BomChange.ListBySupplier(ctx, supplier)
	})
}

func (s *bomChangeService) ListByChangeType(ctx context.Context, changeType string) ([]dto.BomChangeResponse, error) {
	ct, ok := model.ParseChangeType(changeType)
	if !ok {
		ve := pkgerrors.NewValidationError()
		ve.Add("change_type", "must be one of "+validValues(model.ChangeTypes))
		return nil, ve
	}
	return s.list(ctx, "list by change type", func(ctx context.Context) ([]model.BomChange, error) {
		return s.repo.BomChange.ListByChangeType(ctx, ct)
	})
}

func (s *bomChangeService) ListByModelAndStatus(ctx context.Context, modelName, status string) ([]dto.BomChangeResponse, error) {
	st, ok := model.ParseBomStatus(status)
	if !ok {
		ve := pkgerrors.NewValidationError()
		ve.Add("status", "must be one of "+validValues(model.BomStatuses))
		return nil, ve
	}
	return s.list(ctx, "list by model and status", func(ctx context.Context) ([]model.BomChange, error) {
		return s.repo.BomChange.ListByModelAndStatus(ctx, modelName, st)
	})
}

func (s *bomChangeService) ListBySupplierAndChangeType(ctx context.Context, supplier, changeType string) ([]dto.BomChangeResponse, error) {
	ct, ok := model.ParseChangeType(changeType)
	if !ok {
		ve := pkgerrors.NewValidationError()
		ve.Add("change_type", "must be one of "+validValues(model.ChangeTypes))
		return nil, ve
	}
	return s.list(ctx, "list by supplier and change type", func(ctx context.Context) ([]model.BomChange, error) {
		return s.repo.BomChange.ListBySupplierAndChangeType(ctx, supplier, ct)
	})
}

func (s *bomChangeService) ListByDateRange(ctx context.Context, q *dto.DateRangeQuery) ([]dto.BomChangeResponse, error) {
	ve := pkgerrors.NewValidationError()
	start := parseDate(ve, "start", q.Start)
	end := parseDate(ve, "end", q.End)
	if ve.Empty() && time.Time(end).Before(time.Time(start)) {
		ve.Add("end", "must not be before start")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}
	return s.list(ctx, "list by date range", func(ctx context.Context) ([]model.BomChange, error) {
		return s.repo.BomChange.ListByEffectiveDateRange(ctx, start, end)
	})
}

func (s *bomChangeService) Search(ctx context.Context, q string) ([]dto.BomChangeResponse, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		ve := pkgerrors.NewValidationError()
		ve.Add("q", "is required")
		return nil, ve
	}
	return s.list(ctx, "search", func(ctx context.Context) ([]model.BomChange, error) {
		return s.repo.BomChange.Search(ctx, q)
	})
}

// ── helpers ──

func (s *bomChangeService) list(ctx context.Context, op string, fetch func(context.Context) ([]model.BomChange, error)) ([]dto.BomChangeResponse, error) {
	recs, err := fetch(ctx)
	if err != nil {
		s.logger.Error("bom change query failed", zap.String("op", op), zap.Error(err))
		return nil, err
	}
	return toBomChangeResponses(recs), nil
}

// invalidateReports drops cached summaries after a write. Cache failures
// only cost freshness.
func (s *bomChangeService) invalidateReports(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPrefix(ctx, reportCachePrefix); err != nil {
		s.logger.Warn("report cache invalidation failed", zap.Error(err))
	}
}

// bomChangeFromRequest applies the domain rules gin tags cannot express.
func bomChangeFromRequest(req *dto.BomChangeRequest) (*model.BomChange, error) {
	ve := pkgerrors.NewValidationError()

	ct, ok := model.ParseChangeType(req.ChangeType)
	if !ok {
		ve.Add("change_type", "must be one of "+validValues(model.ChangeTypes))
	}
	st, ok := model.ParseBomStatus(req.Status)
	if !ok {
		ve.Add("status", "must be one of "+validValues(model.BomStatuses))
	}
	date := parseDate(ve, "effective_date", req.EffectiveDate)
	nonNegative(ve, "old_cost", req.OldCost)
	nonNegative(ve, "new_cost", req.NewCost)
	if req.Quantity != nil && *req.Quantity < 1 {
		ve.Add("quantity", "must be at least 1")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	return &model.BomChange{
		Model:         strings.TrimSpace(req.Model),
		PartName:      strings.TrimSpace(req.PartName),
		PartNumber:    strings.TrimSpace(req.PartNumber),
		OldCost:       toNullDecimal(req.OldCost),
		NewCost:       toNullDecimal(req.NewCost),
		Supplier:      strings.TrimSpace(req.Supplier),
		EffectiveDate: date,
		ChangeType:    ct,
		Status:        st,
		Department:    strings.TrimSpace(req.Department),
		Quantity:      quantityOrOne(req.Quantity),
		Remarks:       req.Remarks,
		Document:      req.Document,
	}, nil
}

func batchItemError(index int, err error) dto.BatchItemError {
	item := dto.BatchItemError{Index: index, Reason: err.Error()}
	var ve *pkgerrors.ValidationError
	if errors.As(err, &ve) {
		item.Reason = "validation failed"
		item.Fields = ve.Fields
	}
	return item
}

func toBomChangeResponse(rec *model.BomChange) dto.BomChangeResponse {
	return dto.BomChangeResponse{
		ID:            rec.ID,
		Model:         rec.Model,
		PartName:      rec.PartName,
		PartNumber:    rec.PartNumber,
		OldCost:       nullDecimalPtr(rec.OldCost),
		NewCost:       nullDecimalPtr(rec.NewCost),
		Impact:        nullDecimalPtr(rec.Impact),
		Supplier:      rec.Supplier,
		EffectiveDate: formatDate(rec.EffectiveDate),
		ChangeType:    string(rec.ChangeType),
		Status:        string(rec.Status),
		Department:    rec.Department,
		Quantity:      rec.Quantity,
		Remarks:       rec.Remarks,
		Document:      rec.Document,
		CreatedAt:     formatTimestamp(rec.CreatedAt),
		UpdatedAt:     formatTimestamp(rec.UpdatedAt),
	}
}

func toBomChangeResponses(recs []model.BomChange) []dto.BomChangeResponse {
	out := make([]dto.BomChangeResponse, 0, len(recs))
	for i := range recs {
		out = append(out, toBomChangeResponse(&recs[i]))
	}
	return out
}
