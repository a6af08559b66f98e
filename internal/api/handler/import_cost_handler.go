package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"costedge/backend/internal/dto"
	"costedge/backend/internal/service"
	"costedge/backend/pkg/response"
)

// ── import cost business codes ──

const (
	codeImportCostNotFound = 22001
	codeShipmentIDExists   = 22002
	codeEmptyBatch         = 22003
)

// ImportCostHandler import cost HTTP handlers.
type ImportCostHandler struct {
	importCostSvc service.ImportCostService
}

// NewImportCostHandler creates an ImportCostHandler.
func NewImportCostHandler(importCostSvc service.ImportCostService) *ImportCostHandler {
	return &ImportCostHandler{importCostSvc: importCostSvc}
}

// List GET /api/v1/import-costs
func (h *ImportCostHandler) List(c *gin.Context) {
	list, err := h.importCostSvc.List(c.Request.Context())
	if err != nil {
		h.handleImportCostError(c, err)
		return
	}
	response.OK(c, list)
}

// Get GET /api/v1/import-costs/:id
func (h *ImportCostHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	ic, err := h.importCostSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleImportCostError(c, err)
		return
	}
	response.OK(c, ic)
}

// ListBySupplier GET /api/v1/import-costs/supplier/:supplier
func (h *ImportCostHandler) ListBySupplier(c *gin.Context) {
	list, err := h.importCostSvc.ListBySupplier(c.Request.Context(), c.Param("supplier"))
	if err != nil {
		h.handleImportCostError(c, err)
		return
	}
	response.OK(c, list)
}

// Create POST /api/v1/import-costs
func (h *ImportCostHandler) Create(c *gin.Context) {
	var req dto.ImportCostRequest
	if !bindJSON(c, &req) {
		return
	}
	ic, err := h.importCostSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleImportCostError(c, err)
		return
	}
	response.Created(c, ic)
}

// BatchCreate POST /api/v1/import-costs/batch
func (h *ImportCostHandler) BatchCreate(c *gin.Context) {
	var items []dto.ImportCostRequest
	if !decodeBatch(c, &items) {
		return
	}
	resp, err := h.importCostSvc.BatchCreate(c.Request.Context(), items)
	if err != nil {
		h.handleImportCostError(c, err)
		return
	}
	response.OK(c, resp)
}

// Update PUT /api/v1/import-costs/:id
func (h *ImportCostHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.ImportCostRequest
	if !bindJSON(c, &req) {
		return
	}
	ic, err := h.importCostSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleImportCostError(c, err)
		return
	}
	response.OK(c, ic)
}

// Delete DELETE /api/v1/import-costs/:id
func (h *ImportCostHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.importCostSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleImportCostError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *ImportCostHandler) handleImportCostError(c *gin.Context, err error) {
	if writeValidation(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrImportCostNotFound):
		response.NotFound(c, codeImportCostNotFound, "import cost not found")
	case errors.Is(err, service.ErrShipmentIDExists):
		response.Conflict(c, codeShipmentIDExists, "shipment id already exists")
	case errors.Is(err, service.ErrEmptyBatch):
		response.BadRequest(c, codeEmptyBatch, "no usable records")
	default:
		response.InternalError(c)
	}
}
