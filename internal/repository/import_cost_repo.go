package repository

import (
	"context"

	"gorm.io/gorm"

	"costedge/backend/internal/model"
)

// ImportCostRepository shipment landed-cost data access.
type ImportCostRepository interface {
	Create(ctx context.Context, c *model.ImportCost) error
	GetByID(ctx context.Context, id uint64) (*model.ImportCost, error)
	GetByShipmentID(ctx context.Context, shipmentID string) (*model.ImportCost, error)
	List(ctx context.Context) ([]model.ImportCost, error)
	ListBySupplier(ctx context.Context, supplier string) ([]model.ImportCost, error)
	Update(ctx context.Context, c *model.ImportCost) error
	Delete(ctx context.Context, id uint64) error
}

type importCostRepo struct {
	db *gorm.DB
}

// NewImportCostRepo creates an ImportCostRepository.
func NewImportCostRepo(db *gorm.DB) ImportCostRepository {
	return &importCostRepo{db: db}
}

func (r *importCostRepo) Create(ctx context.Context, c *model.ImportCost) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *importCostRepo) GetByID(ctx context.Context, id uint64) (*model.ImportCost, error) {
	var c model.ImportCost
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *importCostRepo) GetByShipmentID(ctx context.Context, shipmentID string) (*model.ImportCost, error) {
	var c model.ImportCost
	err := r.db.WithContext(ctx).
		Where("shipment_id = ?", shipmentID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *importCostRepo) List(ctx context.Context) ([]model.ImportCost, error) {
	var cs []model.ImportCost
	err := r.db.WithContext(ctx).
		Order("date DESC, id DESC").
		Find(&cs).Error
	return cs, err
}

func (r *importCostRepo) ListBySupplier(ctx context.Context, supplier string) ([]model.ImportCost, error) {
	var cs []model.ImportCost
	err := r.db.WithContext(ctx).
		Where("supplier = ?", supplier).
		Order("date DESC, id DESC").
		Find(&cs).Error
	return cs, err
}

func (r *importCostRepo) Update(ctx context.Context, c *model.ImportCost) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *importCostRepo) Delete(ctx context.Context, id uint64) error {
	return deleteByID(ctx, r.db, &model.ImportCost{}, id)
}
