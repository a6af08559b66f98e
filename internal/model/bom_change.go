package model

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// BomChange one priced change to a part in a product's bill of materials.
// Impact is derived (new_cost - old_cost) and never taken from input.
type BomChange struct {
	ID            uint64              `gorm:"primaryKey;autoIncrement"        json:"id"`
	Model         string              `gorm:"type:varchar(100);not null;index" json:"model"`
	PartName      string              `gorm:"type:varchar(255);not null"       json:"part_name"`
	PartNumber    string              `gorm:"type:varchar(100);not null;index" json:"part_number"`
	OldCost       decimal.NullDecimal `gorm:"type:numeric(10,2)"               json:"old_cost"`
	NewCost       decimal.NullDecimal `gorm:"type:numeric(10,2)"               json:"new_cost"`
	Impact        decimal.NullDecimal `gorm:"type:numeric(10,2)"               json:"impact"`
	Supplier      string              `gorm:"type:varchar(255);not null"       json:"supplier"`
	EffectiveDate datatypes.Date      `gorm:"not null;index"                   json:"effective_date"`
	ChangeType    ChangeType          `gorm:"type:varchar(20);not null"        json:"change_type"`
	Status        BomStatus           `gorm:"type:varchar(20);not null;index"  json:"status"`
	Department    string              `gorm:"type:varchar(100);not null"       json:"department"`
	Quantity      int                 `gorm:"not null;default:1"               json:"quantity"`
	Remarks       string              `gorm:"type:varchar(500)"                json:"remarks,omitempty"`
	Document      string              `gorm:"type:varchar(500)"                json:"document,omitempty"`
	BaseModel
}

// TableName table name.
func (BomChange) TableName() string { return "bom_changes" }
