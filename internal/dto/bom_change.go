package dto

import "github.com/shopspring/decimal"

// ── BOM change DTOs ──

// BomChangeRequest create and full-update payload. Impact is never accepted.
type BomChangeRequest struct {
	Model         string           `json:"model"          binding:"required,max=100"`
	PartName      string           `json:"part_name"      binding:"required,max=255"`
	PartNumber    string           `json:"part_number"    binding:"required,max=100"`
	OldCost       *decimal.Decimal `json:"old_cost"       binding:"required"`
	NewCost       *decimal.Decimal `json:"new_cost"       binding:"required"`
	Supplier      string           `json:"supplier"       binding:"required,max=255"`
	EffectiveDate string           `json:"effective_date" binding:"required,datetime=2006-01-02"`
	ChangeType    string           `json:"change_type"    binding:"required,oneof=NEW_PART REDUCTION ADDITION"`
	Status        string           `json:"status"         binding:"required,oneof=PENDING APPROVED REJECTED COMPLETED"`
	Department    string           `json:"department"     binding:"required,max=100"`
	Quantity      *int             `json:"quantity"       binding:"omitempty,min=1"` // defaults to 1
	Remarks       string           `json:"remarks"        binding:"omitempty,max=500"`
	Document      string           `json:"document"       binding:"omitempty,max=500"`
}

// BomChangeResponse BOM change as returned by the API.
type BomChangeResponse struct {
	ID            uint64           `json:"id"`
	Model         string           `json:"model"`
	PartName      string           `json:"part_name"`
	PartNumber    string           `json:"part_number"`
	OldCost       *decimal.Decimal `json:"old_cost"`
	NewCost       *decimal.Decimal `json:"new_cost"`
	Impact        *decimal.Decimal `json:"impact"`
	Supplier      string           `json:"supplier"`
	EffectiveDate string           `json:"effective_date"`
	ChangeType    string           `json:"change_type"`
	Status        string           `json:"status"`
	Department    string           `json:"department"`
	Quantity      int              `json:"quantity"`
	Remarks       string           `json:"remarks,omitempty"`
	Document      string           `json:"document,omitempty"`
	CreatedAt     string           `json:"created_at"`
	UpdatedAt     string           `json:"updated_at"`
}

// ── batch & import ──

// BatchItemError a rejected item of a JSON batch, by zero-based index.
type BatchItemError struct {
	Index  int               `json:"index"`
	Reason string            `json:"reason"`
	Fields map[string]string `json:"fields,omitempty"`
}

// BomChangeBatchResponse outcome of a JSON batch.
type BomChangeBatchResponse struct {
	Total   int                 `json:"total"`
	Success int                 `json:"success"`
	Failed  int                 `json:"failed"`
	Errors  []BatchItemError    `json:"errors,omitempty"`
	Data    []BomChangeResponse `json:"data"`
}

// ImportRowError a spreadsheet row that was not stored.
type ImportRowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportFieldNote a field that fell back to its default value.
type ImportFieldNote struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
	Reason string `json:"reason"`
}

// BomChangeImportResponse outcome of a spreadsheet upload.
type BomChangeImportResponse struct {
	FileName string              `json:"file_name"`
	Total    int                 `json:"total"` // non-blank data rows
	Success  int                 `json:"success"`
	Failed   int                 `json:"failed"`
	Errors   []ImportRowError    `json:"errors,omitempty"`
	Notes    []ImportFieldNote   `json:"notes,omitempty"`
	Data     []BomChangeResponse `json:"data"`
}

// ── queries ──

// DateRangeQuery inclusive effective date window.
type DateRangeQuery struct {
	Start string `form:"start" binding:"required,datetime=2006-01-02"`
	End   string `form:"end"   binding:"required,datetime=2006-01-02"`
}

// SearchQuery free-text search.
type SearchQuery struct {
	Q string `form:"q" binding:"required,max=100"`
}

// ThresholdQuery signed impact threshold.
type ThresholdQuery struct {
	Threshold string `form:"threshold" binding:"required"`
}

// ── reports ──

// ImpactSummary count and summed impact of one group.
type ImpactSummary struct {
	Changes int64            `json:"changes"`
	Impact  *decimal.Decimal `json:"impact"`
}
