package model

import "time"

// BaseModel audit timestamps embedded by every table.
// created_at is written on insert only.
type BaseModel struct {
	CreatedAt time.Time `gorm:"<-:create;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"           json:"updated_at"`
}

// All lists every persisted model, in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&BomChange{},
		&MilestoneCost{},
		&ImportCost{},
	}
}
