package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository aggregate entry point of every repository.
type Repository struct {
	db *gorm.DB

	BomChange     BomChangeRepository
	MilestoneCost MilestoneCostRepository
	ImportCost    ImportCostRepository
}

// NewRepository builds the aggregate on db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:            db,
		BomChange:     NewBomChangeRepo(db),
		MilestoneCost: NewMilestoneCostRepo(db),
		ImportCost:    NewImportCostRepo(db),
	}
}

// BeginTx starts a transaction. Without a database (unit tests with mock
// repositories) it returns a nil tx and callers run without one.
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx returns an aggregate bound to tx. A nil tx returns r itself.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// Ping checks the database connection.
func (r *Repository) Ping(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// deleteByID deletes one row and reports gorm.ErrRecordNotFound when nothing matched.
func deleteByID(ctx context.Context, db *gorm.DB, value interface{}, id uint64) error {
	res := db.WithContext(ctx).Delete(value, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
