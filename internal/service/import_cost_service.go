package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"costedge/backend/internal/costcalc"
	"costedge/backend/internal/dto"
	"costedge/backend/internal/model"
	"costedge/backend/internal/repository"
	pkgerrors "costedge/backend/pkg/errors"
)

// ── import cost errors ──

var (
	ErrImportCostNotFound = errors.New("import cost not found")
	ErrShipmentIDExists   = errors.New("shipment id already exists")
)

// ImportCostService shipment landed-cost entries.
type ImportCostService interface {
	Create(ctx context.Context, req *dto.ImportCostRequest) (*dto.ImportCostResponse, error)
	BatchCreate(ctx context.Context, items []dto.ImportCostRequest) (*dto.ImportCostBatchResponse, error)
	GetByID(ctx context.Context, id uint64) (*dto.ImportCostResponse, error)
	List(ctx context.Context) ([]dto.ImportCostResponse, error)
	ListBySupplier(ctx context.Context, supplier string) ([]dto.ImportCostResponse, error)
	Update(ctx context.Context, id uint64, req *dto.ImportCostRequest) (*dto.ImportCostResponse, error)
	Delete(ctx context.Context, id uint64) error
}

type importCostService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewImportCostService creates an ImportCostService.
func NewImportCostService(repo *repository.Repository, logger *zap.Logger) ImportCostService {
	return &importCostService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *importCostService) Create(ctx context.Context, req *dto.ImportCostRequest) (*dto.ImportCostResponse, error) {
	c, err := importCostFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.ensureShipmentFree(ctx, c.ShipmentID, 0); err != nil {
		return nil, err
	}
	if err := s.repo.ImportCost.Create(ctx, c); err != nil {
		s.logger.Error("create import cost failed", zap.String("shipment_id", c.ShipmentID), zap.Error(err))
		return nil, err
	}
	resp := toImportCostResponse(c)
	return &resp, nil
}

// BatchCreate stores each shipment on its own. Duplicate shipment ids, within
// the batch or against stored rows, are reported per item.
func (s *importCostService) BatchCreate(ctx context.Context, items []dto.ImportCostRequest) (*dto.ImportCostBatchResponse, error) {
	if len(items) == 0 {
		return nil, ErrEmptyBatch
	}

	resp := &dto.ImportCostBatchResponse{
		Total: len(items),
		Data:  make([]dto.ImportCostResponse, 0, len(items)),
	}
	for i := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := validateItem(&items[i]); err != nil {
			resp.Errors = append(resp.Errors, batchItemError(i, err))
			continue
		}
		c, err := importCostFromRequest(&items[i])
		if err != nil {
			resp.Errors = append(resp.Errors, batchItemError(i, err))
			continue
		}
		if err := s.ensureShipmentFree(ctx, c.ShipmentID, 0); err != nil {
			resp.Errors = append(resp.Errors, batchItemError(i, err))
			continue
		}
		if err := s.repo.ImportCost.Create(ctx, c); err != nil {
			s.logger.Error("batch item not stored", zap.Int("index", i), zap.Error(err))
			resp.Errors = append(resp.Errors, dto.BatchItemError{Index: i, Reason: "storage error"})
			continue
		}
		resp.Data = append(resp.Data, toImportCostResponse(c))
	}
	resp.Success = len(resp.Data)
	resp.Failed = len(resp.Errors)
	return resp, nil
}

// ────────────────────── Get ──────────────────────

func (s *importCostService) GetByID(ctx context.Context, id uint64) (*dto.ImportCostResponse, error) {
	c, err := s.repo.ImportCost.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrImportCostNotFound
		}
		s.logger.Error("get import cost failed", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	resp := toImportCostResponse(c)
	return &resp, nil
}

func (s *importCostService) List(ctx context.Context) ([]dto.ImportCostResponse, error) {
	cs, err := s.repo.ImportCost.List(ctx)
	if err != nil {
		s.logger.Error("list import costs failed", zap.Error(err))
		return nil, err
	}
	return toImportCostResponses(cs), nil
}

func (s *importCostService) ListBySupplier(ctx context.Context, supplier string) ([]dto.ImportCostResponse, error) {
	cs, err := s.repo.ImportCost.ListBySupplier(ctx, supplier)
	if err != nil {
		s.logger.Error("list import costs failed", zap.String("supplier", supplier), zap.Error(err))
		return nil, err
	}
	return toImportCostResponses(cs), nil
}

// ────────────────────── Update ──────────────────────

func (s *importCostService) Update(ctx context.Context, id uint64, req *dto.ImportCostRequest) (*dto.ImportCostResponse, error) {
	existing, err := s.repo.ImportCost.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrImportCostNotFound
		}
		s.logger.Error("get import cost failed", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}

	c, err := importCostFromRequest(req)
	if err != nil {
		return nil, err
	}
	if c.ShipmentID != existing.ShipmentID {
		if err := s.ensureShipmentFree(ctx, c.ShipmentID, id); err != nil {
			return nil, err
		}
	}
	c.ID = existing.ID
	c.CreatedAt = existing.CreatedAt

	if err := s.repo.ImportCost.Update(ctx, c); err != nil {
		s.logger.Error("update import cost failed", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	resp := toImportCostResponse(c)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *importCostService) Delete(ctx context.Context, id uint64) error {
	if err := s.repo.ImportCost.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrImportCostNotFound
		}
		s.logger.Error("delete import cost failed", zap.Uint64("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── helpers ──

// ensureShipmentFree fails with ErrShipmentIDExists when another row owns shipmentID.
func (s *importCostService) ensureShipmentFree(ctx context.Context, shipmentID string, selfID uint64) error {
	existing, err := s.repo.ImportCost.GetByShipmentID(ctx, shipmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		s.logger.Error("lookup shipment failed", zap.String("shipment_id", shipmentID), zap.Error(err))
		return err
	}
	if existing.ID != selfID {
		return ErrShipmentIDExists
	}
	return nil
}

func importCostFromRequest(req *dto.ImportCostRequest) (*model.ImportCost, error) {
	ve := pkgerrors.NewValidationError()
	date := parseDate(ve, "date", req.Date)
	nonNegative(ve, "freight", req.Freight)
	nonNegative(ve, "duty", req.Duty)
	nonNegative(ve, "insurance", req.Insurance)
	if req.Quantity != nil && *req.Quantity < 1 {
		ve.Add("quantity", "must be at least 1")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	return &model.ImportCost{
		ShipmentID: strings.TrimSpace(req.ShipmentID),
		Date:       date,
		Supplier:   strings.TrimSpace(req.Supplier),
		Model:      strings.TrimSpace(req.Model),
		PartName:   strings.TrimSpace(req.PartName),
		Quantity:   quantityOrOne(req.Quantity),
		Freight:    decimalOrZero(req.Freight),
		Duty:       decimalOrZero(req.Duty),
		Insurance:  decimalOrZero(req.Insurance),
		Document:   req.Document,
	}, nil
}

func toImportCostResponse(c *model.ImportCost) dto.ImportCostResponse {
	return dto.ImportCostResponse{
		ID:         c.ID,
		ShipmentID: c.ShipmentID,
		Date:       formatDate(c.Date),
		Supplier:   c.Supplier,
		Model:      c.Model,
		PartName:   c.PartName,
		Quantity:   c.Quantity,
		Freight:    c.Freight,
		Duty:       c.Duty,
		Insurance:  c.Insurance,
		TotalCost:  costcalc.TotalImportCost(c),
		Document:   c.Document,
		CreatedAt:  formatTimestamp(c.CreatedAt),
		UpdatedAt:  formatTimestamp(c.UpdatedAt),
	}
}

func toImportCostResponses(cs []model.ImportCost) []dto.ImportCostResponse {
	out := make([]dto.ImportCostResponse, 0, len(cs))
	for i := range cs {
		out = append(out, toImportCostResponse(&cs[i]))
	}
	return out
}
