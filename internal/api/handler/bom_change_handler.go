package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"costedge/backend/internal/dto"
	"costedge/backend/internal/ingest"
	"costedge/backend/internal/service"
	"costedge/backend/pkg/response"
)

// ── BOM change business codes ──

const (
	codeBomChangeNotFound  = 20001
	codeNoUsableRecords    = 20002
	codeUnsupportedFormat  = 20003
	codeUnreadableWorkbook = 20004
	codeFileRequired       = 20005
	codeExportFailed       = 20006
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// BomChangeHandler BOM change HTTP handlers, including reports and export.
type BomChangeHandler struct {
	bomSvc    service.BomChangeService
	reportSvc service.ReportService
	exportSvc service.ExportService
}

// NewBomChangeHandler creates a BomChangeHandler.
func NewBomChangeHandler(bomSvc service.BomChangeService, reportSvc service.ReportService, exportSvc service.ExportService) *BomChangeHandler {
	return &BomChangeHandler{bomSvc: bomSvc, reportSvc: reportSvc, exportSvc: exportSvc}
}

// List all BOM changes, newest effective date first.
// GET /api/v1/bom-changes
func (h *BomChangeHandler) List(c *gin.Context) {
	list, err := h.bomSvc.List(c.Request.Context())
	if err != nil {
		h.handleBomChangeError(c, err)
		return
	}
	response.OK(c, list)
}

// Get one BOM change.
// GET /api/v1/bom-changes/:id
func (h *BomChangeHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	rec, err := h.bomSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleBomChangeError(c, err)
		return
	}
	response.OK(c, rec)
}

// GetByPartNumber latest BOM change of a part.
// GET /api/v1/bom-changes/part-number/:partNumber
func (h *BomChangeHandler) GetByPartNumber(c *gin.Context) {
	rec, err := h.bomSvc.GetByPartNumber(c.Request.Context(), c.Param("partNumber"))
	if err != nil {
		h.handleBomChangeError(c, err)
		return
	}
	response.OK(c, rec)
}

// Create a BOM change.
// POST /api/v1/bom-changes
func (h *BomChangeHandler) Create(c *gin.Context) {
	var req dto.BomChangeRequest
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.bomSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleBomChangeError(c, err)
		return
	}
	response.Created(c, rec)
}

// BatchCreate stores a JSON list of BOM changes, best effort per item.
// POST /api/v1/bom-changes/batch
func (h *BomChangeHandler) BatchCreate(c *gin.Context) {
	var items []dto.BomChangeRequest
	if !decodeBatch(c, &items) {
		return
	}
	resp, err := h.bomSvc.BatchCreate(c.Request.Context(), items)
	if err != nil {
		h.handleBomChangeError(c, err)
		return
	}
	response.OK(c, resp)
}

// Import ingests an uploaded .xlsx/.xls sheet.
// POST /api/v1/bom-changes/import  (multipart field "file")
func (h *BomChangeHandler) Import(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, codeFileRequired, "file is required")
		return
	}
	if _, err := ingest.DetectFormat(fh.Filename); err != nil {
		response.UnsupportedMediaType(c, codeUnsupportedFormat, ingest.ErrUnsupportedFormat.Error())
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, codeFileRequired, "uploaded file cannot be opened")
		return
	}
	defer f.Close()

	resp, err := h.bomSvc.ImportSpreadsheet(c.Request.Context(), fh.Filename, f)
	if err != nil {
		if errors.Is(err, ingest.ErrNoUsableRecords) && resp != nil {
			response.ErrorWithData(c, http.StatusBadRequest, codeNoUsableRecords, err.Error(), resp)
			return
		}
		h.handleBomChangeError(c, err)
		return
	}
	response.OK(c, resp)
}

// Update replaces a BOM change. The path id wins over any id in the body.
// PUT /api/v1/bom-changes/:id
func (h *BomChangeHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.BomChangeRequest
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.bomSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleBomChangeError(c, err)
		return
	}
	response.OK(c, rec)
}

// Delete a BOM change.
// DELETE /api/v1/bom-changes/:id
func (h *BomChangeHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.bomSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleBomChangeError(c, err)
		return
	}
	response.OK(c, nil)
}

// ── filters ──

// ListByStatus GET /api/v1/bom-changes/status/:status
func (h *BomChangeHandler) ListByStatus(c *gin.Context) {
	h.respondList(c, func(c *gin.Context) ([]dto.BomChangeResponse, error) {
		return h.bomSvc.ListByStatus(c.Request.Context(), c.Param("status"))
	})
}

// ListByDepartment GET /api/v1/bom-changes/department/:department
func (h *BomChangeHandler) ListByDepartment(c *gin.Context) {
	h.respondList(c, func(c *gin.Context) ([]dto.BomChangeResponse, error) {
		return h.bomSvc.ListByDepartment(c.Request.Context(), c.Param("department"))
	})
}

// ListByModel GET /api/v1/bom-changes/model/:model
func (h *BomChangeHandler) ListByModel(c *gin.Context) {
	h.respondList(c, func(c *gin.Context) ([]dto.BomChangeResponse, error) {
		return h.bomSvc.ListByModel(c.Request.Context(), c.Param("model"))
	})
}

// ListBySupplier GET /api/v1/bom-changes/supplier/:supplier
func (h *BomChangeHandler) ListBySupplier(c *gin.Context) {
	h.respondList(c, func(c *gin.Context) ([]dto.BomChangeResponse, error) {
		return h.bomSvc.ListBySupplier(c.Request.Context(), c.Param("supplier"))
	})
}

// ListByChangeType GET /api/v1/bom-changes/change-type/:changeType
func (h *BomChangeHandler) ListByChangeType(c *gin.Context) {
	h.respondList(c, func(c *gin.Context) ([]dto.BomChangeResponse, error) {
		return h.bomSvc.ListByChangeType(c.Request.Context(), c.Param("changeType"))
	})
}

// ListByModelAndStatus GET /api/v1/bom-changes/model/:model/status/:status
func (h *BomChangeHandler) ListByModelAndStatus(c *gin.Context) {
	h.respondList(c, func(c *gin.Context) ([]dto.BomChangeResponse, error) {
		return h.bomSvc.ListByModelAndStatus(c.Request.Context(), c.Param("model"), c.Param("status"))
	})
}

// ListBySupplierAndChangeType GET /api/v1/bom-changes/supplier/:supplier/change-type/:changeType
func (h *BomChangeHandler) ListBySupplierAndChangeType(c *gin.Context) {
	h.respondList(c, func(c *gin.Context) ([]dto.BomChangeResponse, error) {
		return h.bomSvc.ListBySupplierAndChangeType(c.Request.Context(), c.Param("supplier"), c.Param("changeType"))
	})
}

// ListByDateRange GET /api/v1/bom-changes/date-range?start=&end=
func (h *BomChangeHandler) ListByDateRange(c *gin.Context) {
	var q dto.DateRangeQuery
	if !bindQuery(c, &q) {
		return
	}
	h.respondList(c, func(c *gin.Context) ([]dto.BomChangeResponse, error) {
		return h.bomSvc.ListByDateRange(c.Request.Context(), &q)
	})
}

// Search GET /api/v1/bom-changes/search?q=
func (h *BomChangeHandler) Search(c *gin.Context) {
	var q dto.SearchQuery
	if !bindQuery(c, &q) {
		return
	}
	h.respondList(c, func(c *gin.Context) ([]dto.BomChangeResponse, error) {
		return h.bomSvc.Search(c.Request.Context(), q.Q)
	})
}

// ── reports ──

// SummaryByModel GET /api/v1/bom-changes/summary/model
func (h *BomChangeHandler) SummaryByModel(c *gin.Context) {
	summary, err := h.reportSvc.SummaryByModel(c.Request.Context())
	if err != nil {
		h.handleBomChangeError(c, err)
		return
	}
	response.OK(c, summary)
}

// SummaryByChangeType GET /api/v1/bom-changes/summary/change-type
func (h *BomChangeHandler) SummaryByChangeType(c *gin.Context) {
	summary, err := h.reportSvc.SummaryByChangeType(c.Request.Context())
	if err != nil {
		h.handleBomChangeError(c, err)
		return
	}
	response.OK(c, summary)
}

// HighImpact GET /api/v1/bom-changes/high-impact?threshold=
func (h *BomChangeHandler) HighImpact(c *gin.Context) {
	var q dto.ThresholdQuery
	if !bindQuery(c, &q) {
		return
	}
	h.respondList(c, func(c *gin.Context) ([]dto.BomChangeResponse, error) {
		return h.reportSvc.HighImpact(c.Request.Context(), q.Threshold)
	})
}

// CostSavings GET /api/v1/bom-changes/cost-savings?threshold=
func (h *BomChangeHandler) CostSavings(c *gin.Context) {
	var q dto.ThresholdQuery
	if !bindQuery(c, &q) {
		return
	}
	h.respondList(c, func(c *gin.Context) ([]dto.BomChangeResponse, error) {
		return h.reportSvc.CostSavings(c.Request.Context(), q.Threshold)
	})
}

// Export downloads every BOM change as .xlsx.
// GET /api/v1/bom-changes/export
func (h *BomChangeHandler) Export(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportBomChanges(c.Request.Context())
	if err != nil {
		h.handleBomChangeError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ── helpers ──

func (h *BomChangeHandler) respondList(c *gin.Context, fetch func(*gin.Context) ([]dto.BomChangeResponse, error)) {
	list, err := fetch(c)
	if err != nil {
		h.handleBomChangeError(c, err)
		return
	}
	response.OK(c, list)
}

func (h *BomChangeHandler) handleBomChangeError(c *gin.Context, err error) {
	if writeValidation(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrBomChangeNotFound):
		response.NotFound(c, codeBomChangeNotFound, "bom change not found")
	case errors.Is(err, service.ErrEmptyBatch), errors.Is(err, ingest.ErrNoUsableRecords):
		response.BadRequest(c, codeNoUsableRecords, "no usable records")
	case errors.Is(err, ingest.ErrUnsupportedFormat):
		response.UnsupportedMediaType(c, codeUnsupportedFormat, ingest.ErrUnsupportedFormat.Error())
	case errors.Is(err, ingest.ErrUnreadableWorkbook):
		response.UnprocessableEntity(c, codeUnreadableWorkbook, ingest.ErrUnreadableWorkbook.Error(), nil)
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, codeExportFailed, "failed to generate export")
	default:
		response.InternalError(c)
	}
}
