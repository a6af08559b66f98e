package model

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ImportCost landed-cost components of one inbound shipment.
type ImportCost struct {
	ID         uint64          `gorm:"primaryKey;autoIncrement"                json:"id"`
	ShipmentID string          `gorm:"type:varchar(100);not null;uniqueIndex"  json:"shipment_id"`
	Date       datatypes.Date  `gorm:"not null"                                json:"date"`
	Supplier   string          `gorm:"type:varchar(255);not null;index"        json:"supplier"`
	Model      string          `gorm:"type:varchar(100);not null"              json:"model"`
	PartName   string          `gorm:"type:varchar(255);not null"              json:"part_name"`
	Quantity   int             `gorm:"not null;default:1"                      json:"quantity"`
	Freight    decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0"   json:"freight"`
	Duty       decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0"   json:"duty"`
	Insurance  decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0"   json:"insurance"`
	Document   string          `gorm:"type:varchar(500)"                       json:"document,omitempty"`
	BaseModel
}

// TableName table name.
func (ImportCost) TableName() string { return "import_costs" }
