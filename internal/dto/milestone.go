package dto

import "github.com/shopspring/decimal"

// ── milestone DTOs ──

// MilestoneRequest create and full-update payload.
// approval_status only accepts Pending here: decisions go through the approval endpoint.
type MilestoneRequest struct {
	ProjectID              int              `json:"project_id"               binding:"required,gt=0"`
	ProjectName            string           `json:"project_name"             binding:"required,max=255"`
	Milestone              string           `json:"milestone"                binding:"required,max=255"`
	Planned                *decimal.Decimal `json:"planned"                  binding:"required"`
	Actual                 *decimal.Decimal `json:"actual"                   binding:"required"`
	ProjectQuantity        *decimal.Decimal `json:"project_quantity"         binding:"required"`
	Reason                 string           `json:"reason"                   binding:"required,max=1000"`
	Date                   string           `json:"date"                     binding:"required,datetime=2006-01-02"`
	MilestoneType          string           `json:"milestone_type"           binding:"required,max=100"`
	Department             string           `json:"department"               binding:"required,max=100"`
	Category               string           `json:"category"                 binding:"required,max=100"`
	Currency               string           `json:"currency"                 binding:"omitempty,len=3,alpha"`
	SupplierName           string           `json:"supplier_name"            binding:"omitempty,max=255"`
	PartNumber             string           `json:"part_number"              binding:"omitempty,max=100"`
	ExpectedCompletionDate string           `json:"expected_completion_date" binding:"required,datetime=2006-01-02"`
	Remarks                string           `json:"remarks"                  binding:"omitempty,max=1000"`
	DocumentsLinks         string           `json:"documents_links"          binding:"omitempty,max=2000"`
	LastUpdatedBy          string           `json:"last_updated_by"          binding:"omitempty,max=255"`
	CurrentPercent         *decimal.Decimal `json:"current_percent"`
	TargetPercent          *decimal.Decimal `json:"target_percent"`
	EstimatedSavings       *decimal.Decimal `json:"estimated_savings"`
	CostReductionStatus    string           `json:"cost_reduction_status"    binding:"omitempty,max=50"`
	ApprovalStatus         string           `json:"approval_status"          binding:"omitempty,oneof=Pending"`
}

// ApprovalRequest reviewer decision on a milestone.
type ApprovalRequest struct {
	ApprovalStatus  string `json:"approval_status"  binding:"required"`
	ApprovedBy      string `json:"approved_by"      binding:"omitempty,max=255"` // defaults to the caller
	Remarks         string `json:"remarks"          binding:"omitempty,max=1000"`
	RejectionReason string `json:"rejection_reason" binding:"omitempty,max=1000"`
}

// MilestoneResponse milestone with derived figures.
type MilestoneResponse struct {
	ID                     uint64           `json:"id"`
	ProjectID              int              `json:"project_id"`
	ProjectName            string           `json:"project_name"`
	Milestone              string           `json:"milestone"`
	Planned                decimal.Decimal  `json:"planned"`
	Actual                 decimal.Decimal  `json:"actual"`
	Variance               decimal.Decimal  `json:"variance"`
	ProjectQuantity        decimal.Decimal  `json:"project_quantity"`
	UnitPlannedCost        decimal.Decimal  `json:"unit_planned_cost"`
	UnitActualCost         decimal.Decimal  `json:"unit_actual_cost"`
	OverBudget             bool             `json:"over_budget"`
	UnderBudget            bool             `json:"under_budget"`
	Reason                 string           `json:"reason"`
	Date                   string           `json:"date"`
	MilestoneType          string           `json:"milestone_type"`
	Department             string           `json:"department"`
	Category               string           `json:"category"`
	Currency               string           `json:"currency"`
	SupplierName           string           `json:"supplier_name,omitempty"`
	PartNumber             string           `json:"part_number,omitempty"`
	ExpectedCompletionDate string           `json:"expected_completion_date"`
	Remarks                string           `json:"remarks,omitempty"`
	DocumentsLinks         string           `json:"documents_links,omitempty"`
	LastUpdatedBy          string           `json:"last_updated_by,omitempty"`
	CurrentPercent         *decimal.Decimal `json:"current_percent"`
	TargetPercent          *decimal.Decimal `json:"target_percent"`
	EstimatedSavings       *decimal.Decimal `json:"estimated_savings"`
	CostReductionStatus    string           `json:"cost_reduction_status,omitempty"`
	ApprovalStatus         string           `json:"approval_status"`
	ApprovedBy             *string          `json:"approved_by"`
	ApprovedAt             *string          `json:"approved_at"`
	RejectionReason        *string          `json:"rejection_reason"`
	CreatedAt              string           `json:"created_at"`
	UpdatedAt              string           `json:"updated_at"`
}
