package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// MilestoneCost planned vs actual spend for one project milestone,
// carrying its own approval workflow.
type MilestoneCost struct {
	ID                     uint64              `gorm:"primaryKey;autoIncrement"                     json:"id"`
	ProjectID              int                 `gorm:"not null;index"                               json:"project_id"`
	ProjectName            string              `gorm:"type:varchar(255);not null"                   json:"project_name"`
	Milestone              string              `gorm:"type:varchar(255);not null"                   json:"milestone"`
	Planned                decimal.Decimal     `gorm:"type:numeric(15,2);not null"                  json:"planned"`
	Actual                 decimal.Decimal     `gorm:"type:numeric(15,2);not null"                  json:"actual"`
	Variance               decimal.Decimal     `gorm:"type:numeric(15,2);not null;default:0"        json:"variance"`
	ProjectQuantity        decimal.Decimal     `gorm:"type:numeric(15,2);not null"                  json:"project_quantity"`
	Reason                 string              `gorm:"type:varchar(1000);not null"                  json:"reason"`
	Date                   datatypes.Date      `gorm:"not null"                                     json:"date"`
	MilestoneType          string              `gorm:"type:varchar(100);not null"                   json:"milestone_type"`
	Department             string              `gorm:"type:varchar(100);not null"                   json:"department"`
	Currency               string              `gorm:"type:varchar(3);not null;default:INR"         json:"currency"`
	SupplierName           string              `gorm:"type:varchar(255)"                            json:"supplier_name,omitempty"`
	PartNumber             string              `gorm:"type:varchar(100)"                            json:"part_number,omitempty"`
	ExpectedCompletionDate datatypes.Date      `gorm:"not null"                                     json:"expected_completion_date"`
	ApprovedBy             *string             `gorm:"type:varchar(255)"                            json:"approved_by"`
	Remarks                string              `gorm:"type:varchar(1000)"                           json:"remarks,omitempty"`
	RejectionReason        *string             `gorm:"type:varchar(1000)"                           json:"rejection_reason"`
	ApprovedAt             *time.Time          `                                                    json:"approved_at"`
	DocumentsLinks         string              `gorm:"type:varchar(2000)"                           json:"documents_links,omitempty"`
	LastUpdatedBy          string              `gorm:"type:varchar(255)"                            json:"last_updated_by,omitempty"`
	Category               string              `gorm:"type:varchar(100);not null"                   json:"category"`
	ApprovalStatus         ApprovalStatus      `gorm:"column:status;type:varchar(20);not null;index" json:"approval_status"`
	CurrentPercent         decimal.NullDecimal `gorm:"type:numeric(5,2)"                            json:"current_percent"`
	TargetPercent          decimal.NullDecimal `gorm:"type:numeric(5,2)"                            json:"target_percent"`
	EstimatedSavings       decimal.NullDecimal `gorm:"type:numeric(15,2)"                           json:"estimated_savings"`
	CostReductionStatus    string              `gorm:"type:varchar(50)"                             json:"cost_reduction_status,omitempty"`
	BaseModel
}

// TableName table name.
func (MilestoneCost) TableName() string { return "project_milestone_costs" }

// DefaultCurrency applied when a milestone arrives without one.
const DefaultCurrency = "INR"
