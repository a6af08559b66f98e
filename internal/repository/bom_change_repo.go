package repository

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"costedge/backend/internal/model"
)

// GroupSummary one row of a grouped impact report.
type GroupSummary struct {
	GroupKey string              `json:"group_key"`
	Changes  int64               `json:"changes"`
	Impact   decimal.NullDecimal `json:"impact"`
}

// BomChangeRepository BOM change data access.
type BomChangeRepository interface {
	Create(ctx context.Context, rec *model.BomChange) error
	GetByID(ctx context.Context, id uint64) (*model.BomChange, error)
	GetByPartNumber(ctx context.Context, partNumber string) (*model.BomChange, error)
	ExistsByPartNumber(ctx context.Context, partNumber string) (bool, error)
	List(ctx context.Context) ([]model.BomChange, error)
	Update(ctx context.Context, rec *model.BomChange) error
	Delete(ctx context.Context, id uint64) error

	// ── filters ──
	ListByStatus(ctx context.Context, status model.BomStatus) ([]model.BomChange, error)
	ListByDepartment(ctx context.Context, department string) ([]model.BomChange, error)
	ListByModel(ctx context.Context, modelName string) ([]model.BomChange, error)
	ListBySupplier(ctx context.Context, supplier string) ([]model.BomChange, error)
	ListByChangeType(ctx context.Context, changeType model.ChangeType) ([]model.BomChange, error)
	ListByEffectiveDateRange(ctx context.Context, start, end datatypes.Date) ([]model.BomChange, error)
	ListByModelAndStatus(ctx context.Context, modelName string, status model.BomStatus) ([]model.BomChange, error)
	ListBySupplierAndChangeType(ctx context.Context, supplier string, changeType model.ChangeType) ([]model.BomChange, error)
	Search(ctx context.Context, query string) ([]model.BomChange, error)

	// ── reports ──
	ListByImpactAbove(ctx context.Context, threshold decimal.Decimal) ([]model.BomChange, error)
	ListByImpactBelow(ctx context.Context, threshold decimal.Decimal) ([]model.BomChange, error)
	SummaryByModel(ctx context.Context) ([]GroupSummary, error)
	SummaryByChangeType(ctx context.Context) ([]GroupSummary, error)
}

type bomChangeRepo struct {
	db *gorm.DB
}

// NewBomChangeRepo creates a BomChangeRepository.
func NewBomChangeRepo(db *gorm.DB) BomChangeRepository {
	return &bomChangeRepo{db: db}
}

const bomChangeOrder = "effective_date DESC, id DESC"

func (r *bomChangeRepo) Create(ctx context.Context, rec *model.BomChange) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *bomChangeRepo) GetByID(ctx context.Context, id uint64) (*model.BomChange, error) {
	var rec model.BomChange
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *bomChangeRepo) GetByPartNumber(ctx context.Context, partNumber string) (*model.BomChange, error) {
	var rec model.BomChange
	err := r.db.WithContext(ctx).
		Where("part_number = ?", partNumber).
		Order(bomChangeOrder).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *bomChangeRepo) ExistsByPartNumber(ctx context.Context, partNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.BomChange{}).
		Where("part_number = ?", partNumber).
		Count(&count).Error
	return count > 0, err
}

func (r *bomChangeRepo) List(ctx context.Context) ([]model.BomChange, error) {
	return r.find(ctx, r.db)
}

func (r *bomChangeRepo) Update(ctx context.Context, rec *model.BomChange) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *bomChangeRepo) Delete(ctx context.Context, id uint64) error {
	return deleteByID(ctx, r.db, &model.BomChange{}, id)
}

// ── filters ──

func (r *bomChangeRepo) ListByStatus(ctx context.Context, status model.BomStatus) ([]model.BomChange, error) {
	return r.find(ctx, r.db.Where("status = ?", status))
}

func (r *bomChangeRepo) ListByDepartment(ctx context.Context, department string) ([]model.BomChange, error) {
	return r.find(ctx, r.db.Where("department = ?", department))
}

func (r *bomChangeRepo) ListByModel(ctx context.Context, modelName string) ([]model.BomChange, error) {
	return r.find(ctx, r.db.Where("model = ?", modelName))
}

func (r *bomChangeRepo) ListBySupplier(ctx context.Context, supplier string) ([]model.BomChange, error) {
	return r.find(ctx, r.db.Where("supplier = ?", supplier))
}

func (r *bomChangeRepo) ListByChangeType(ctx context.Context, changeType model.ChangeType) ([]model.BomChange, error) {
	return r.find(ctx, r.db.Where("change_type = ?", changeType))
}

// ListByEffectiveDateRange inclusive on both ends.
func (r *bomChangeRepo) ListByEffectiveDateRange(ctx context.Context, start, end datatypes.Date) ([]model.BomChange, error) {
	return r.find(ctx, r.db.Where("effective_date BETWEEN ? AND ?", start, end))
}

func (r *bomChangeRepo) ListByModelAndStatus(ctx context.Context, modelName string, status model.BomStatus) ([]model.BomChange, error) {
	return r.find(ctx, r.db.Where("model = ? AND status = ?", modelName, status))
}

func (r *bomChangeRepo) ListBySupplierAndChangeType(ctx context.Context, supplier string, changeType model.ChangeType) ([]model.BomChange, error) {
	return r.find(ctx, r.db.Where("supplier = ? AND change_type = ?", supplier, changeType))
}

// Search case-insensitive substring match over part name, part number, supplier and model.
func (r *bomChangeRepo) Search(ctx context.Context, query string) ([]model.BomChange, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	return r.find(ctx, r.db.Where(
		"LOWER(part_name) LIKE ? ESCAPE '\\' OR LOWER(part_number) LIKE ? ESCAPE '\\' OR LOWER(supplier) LIKE ? ESCAPE '\\' OR LOWER(model) LIKE ? ESCAPE '\\'",
		pattern, pattern, pattern, pattern,
	))
}

// ── reports ──

// ListByImpactAbove impact strictly greater than threshold.
func (r *bomChangeRepo) ListByImpactAbove(ctx context.Context, threshold decimal.Decimal) ([]model.BomChange, error) {
	var recs []model.BomChange
	err := r.db.WithContext(ctx).
		Where("impact > ?", threshold).
		Order("impact DESC, id ASC").
		Find(&recs).Error
	return recs, err
}

// ListByImpactBelow impact strictly less than threshold.
func (r *bomChangeRepo) ListByImpactBelow(ctx context.Context, threshold decimal.Decimal) ([]model.BomChange, error) {
	var recs []model.BomChange
	err := r.db.WithContext(ctx).
		Where("impact < ?", threshold).
		Order("impact ASC, id ASC").
		Find(&recs).Error
	return recs, err
}

func (r *bomChangeRepo) SummaryByModel(ctx context.Context) ([]GroupSummary, error) {
	return r.summary(ctx, "model")
}

func (r *bomChangeRepo) SummaryByChangeType(ctx context.Context) ([]GroupSummary, error) {
	return r.summary(ctx, "change_type")
}

// summary groups by a fixed column name; column is never user input.
func (r *bomChangeRepo) summary(ctx context.Context, column string) ([]GroupSummary, error) {
	var rows []GroupSummary
	err := r.db.WithContext(ctx).
		Model(&model.BomChange{}).
		Select(column + " AS group_key, COUNT(*) AS changes, SUM(impact) AS impact").
		Group(column).
		Order(column + " ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *bomChangeRepo) find(ctx context.Context, q *gorm.DB) ([]model.BomChange, error) {
	var recs []model.BomChange
	err := q.WithContext(ctx).Order(bomChangeOrder).Find(&recs).Error
	return recs, err
}

// escapeLike escapes LIKE wildcards so the query matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
