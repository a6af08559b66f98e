package dto

import "github.com/shopspring/decimal"

// ── import cost DTOs ──

// ImportCostRequest create and full-update payload. Cost components default to zero.
type ImportCostRequest struct {
	ShipmentID string           `json:"shipment_id" binding:"required,max=100"`
	Date       string           `json:"date"        binding:"required,datetime=2006-01-02"`
	Supplier   string           `json:"supplier"    binding:"required,max=255"`
	Model      string           `json:"model"       binding:"required,max=100"`
	PartName   string           `json:"part_name"   binding:"required,max=255"`
	Quantity   *int             `json:"quantity"    binding:"omitempty,min=1"`
	Freight    *decimal.Decimal `json:"freight"`
	Duty       *decimal.Decimal `json:"duty"`
	Insurance  *decimal.Decimal `json:"insurance"`
	Document   string           `json:"document"    binding:"omitempty,max=500"`
}

// ImportCostResponse shipment with its derived landed cost.
type ImportCostResponse struct {
	ID         uint64          `json:"id"`
	ShipmentID string          `json:"shipment_id"`
	Date       string          `json:"date"`
	Supplier   string          `json:"supplier"`
	Model      string          `json:"model"`
	PartName   string          `json:"part_name"`
	Quantity   int             `json:"quantity"`
	Freight    decimal.Decimal `json:"freight"`
	Duty       decimal.Decimal `json:"duty"`
	Insurance  decimal.Decimal `json:"insurance"`
	TotalCost  decimal.Decimal `json:"total_cost"`
	Document   string          `json:"document,omitempty"`
	CreatedAt  string          `json:"created_at"`
	UpdatedAt  string          `json:"updated_at"`
}

// ImportCostBatchResponse outcome of a JSON batch.
type ImportCostBatchResponse struct {
	Total   int                  `json:"total"`
	Success int                  `json:"success"`
	Failed  int                  `json:"failed"`
	Errors  []BatchItemError     `json:"errors,omitempty"`
	Data    []ImportCostResponse `json:"data"`
}
