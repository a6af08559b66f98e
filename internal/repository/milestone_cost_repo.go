package repository

import (
	"context"

	"gorm.io/gorm"

	"costedge/backend/internal/model"
)

// MilestoneCostRepository milestone cost data access.
type MilestoneCostRepository interface {
	Create(ctx context.Context, m *model.MilestoneCost) error
	GetByID(ctx context.Context, id uint64) (*model.MilestoneCost, error)
	List(ctx context.Context) ([]model.MilestoneCost, error)
	ListByProjectID(ctx context.Context, projectID int) ([]model.MilestoneCost, error)
	ListByProjectName(ctx context.Context, projectName string) ([]model.MilestoneCost, error)
	ListByMilestone(ctx context.Context, milestone string) ([]model.MilestoneCost, error)
	ListByApprovalStatus(ctx context.Context, status model.ApprovalStatus) ([]model.MilestoneCost, error)
	Update(ctx context.Context, m *model.MilestoneCost) error
	Delete(ctx context.Context, id uint64) error
}

type milestoneCostRepo struct {
	db *gorm.DB
}

// NewMilestoneCostRepo creates a MilestoneCostRepository.
func NewMilestoneCostRepo(db *gorm.DB) MilestoneCostRepository {
	return &milestoneCostRepo{db: db}
}

const milestoneOrder = "date DESC, id DESC"

func (r *milestoneCostRepo) Create(ctx context.Context, m *model.MilestoneCost) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *milestoneCostRepo) GetByID(ctx context.Context, id uint64) (*model.MilestoneCost, error) {
	var m model.MilestoneCost
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *milestoneCostRepo) List(ctx context.Context) ([]model.MilestoneCost, error) {
	return r.find(ctx, r.db)
}

func (r *milestoneCostRepo) ListByProjectID(ctx context.Context, projectID int) ([]model.MilestoneCost, error) {
	return r.find(ctx, r.db.Where("project_id = ?", projectID))
}

func (r *milestoneCostRepo) ListByProjectName(ctx context.Context, projectName string) ([]model.MilestoneCost, error) {
	return r.find(ctx, r.db.Where("project_name = ?", projectName))
}

func (r *milestoneCostRepo) ListByMilestone(ctx context.Context, milestone string) ([]model.MilestoneCost, error) {
	return r.find(ctx, r.db.Where("milestone = ?", milestone))
}

func (r *milestoneCostRepo) ListByApprovalStatus(ctx context.Context, status model.ApprovalStatus) ([]model.MilestoneCost, error) {
	return r.find(ctx, r.db.Where("status = ?", status))
}

func (r *milestoneCostRepo) Update(ctx context.Context, m *model.MilestoneCost) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *milestoneCostRepo) Delete(ctx context.Context, id uint64) error {
	return deleteByID(ctx, r.db, &model.MilestoneCost{}, id)
}

func (r *milestoneCostRepo) find(ctx context.Context, q *gorm.DB) ([]model.MilestoneCost, error) {
	var ms []model.MilestoneCost
	err := q.WithContext(ctx).Order(milestoneOrder).Find(&ms).Error
	return ms, err
}
