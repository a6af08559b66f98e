package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"costedge/backend/internal/approval"
	"costedge/backend/internal/dto"
	"costedge/backend/internal/service"
	"costedge/backend/pkg/response"
)

const calendarContentType = "text/calendar; charset=utf-8"

// ── milestone business codes ──

const (
	codeMilestoneNotFound = 21001
	codeInvalidDecision   = 21002
	codeRejectionReason   = 21003
	codeApproverRequired  = 21004
)

// MilestoneHandler milestone HTTP handlers.
type MilestoneHandler struct {
	milestoneSvc service.MilestoneService
}

// NewMilestoneHandler creates a MilestoneHandler.
func NewMilestoneHandler(milestoneSvc service.MilestoneService) *MilestoneHandler {
	return &MilestoneHandler{milestoneSvc: milestoneSvc}
}

// List GET /api/v1/milestones
func (h *MilestoneHandler) List(c *gin.Context) {
	h.respondList(c, func(c *gin.Context) ([]dto.MilestoneResponse, error) {
		return h.milestoneSvc.List(c.Request.Context())
	})
}

// Get GET /api/v1/milestones/:id
func (h *MilestoneHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	m, err := h.milestoneSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleMilestoneError(c, err)
		return
	}
	response.OK(c, m)
}

// Create POST /api/v1/milestones
func (h *MilestoneHandler) Create(c *gin.Context) {
	var req dto.MilestoneRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.milestoneSvc.Create(c.Request.Context(), &req, CallerID(c))
	if err != nil {
		h.handleMilestoneError(c, err)
		return
	}
	response.Created(c, m)
}

// Update PUT /api/v1/milestones/:id
func (h *MilestoneHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.MilestoneRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.milestoneSvc.Update(c.Request.Context(), id, &req, CallerID(c))
	if err != nil {
		h.handleMilestoneError(c, err)
		return
	}
	response.OK(c, m)
}

// Delete DELETE /api/v1/milestones/:id
func (h *MilestoneHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.milestoneSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleMilestoneError(c, err)
		return
	}
	response.OK(c, nil)
}

// SubmitApproval records a reviewer decision.
// PUT /api/v1/milestones/:id/approval
func (h *MilestoneHandler) SubmitApproval(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.ApprovalRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.milestoneSvc.SubmitApproval(c.Request.Context(), id, &req, CallerID(c))
	if err != nil {
		h.handleMilestoneError(c, err)
		return
	}
	response.OK(c, m)
}

// Calendar serves expected completion dates as an iCalendar feed.
// GET /api/v1/milestones/calendar.ics?approval_status=Approved
func (h *MilestoneHandler) Calendar(c *gin.Context) {
	feed, err := h.milestoneSvc.Calendar(c.Request.Context(), c.Query("approval_status"))
	if err != nil {
		h.handleMilestoneError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="milestones.ics"`)
	c.Data(http.StatusOK, calendarContentType, []byte(feed))
}

// ── lookups ──

// ListByProjectID GET /api/v1/milestones/project/:projectID
func (h *MilestoneHandler) ListByProjectID(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("projectID"))
	if err != nil {
		response.BadRequest(c, codeInvalidParams, "invalid project id")
		return
	}
	h.respondList(c, func(c *gin.Context) ([]dto.MilestoneResponse, error) {
		return h.milestoneSvc.ListByProjectID(c.Request.Context(), projectID)
	})
}

// ListByProjectName GET /api/v1/milestones/name/:projectName
func (h *MilestoneHandler) ListByProjectName(c *gin.Context) {
	h.respondList(c, func(c *gin.Context) ([]dto.MilestoneResponse, error) {
		return h.milestoneSvc.ListByProjectName(c.Request.Context(), c.Param("projectName"))
	})
}

// ListByMilestone GET /api/v1/milestones/milestone/:milestone
func (h *MilestoneHandler) ListByMilestone(c *gin.Context) {
	h.respondList(c, func(c *gin.Context) ([]dto.MilestoneResponse, error) {
		return h.milestoneSvc.ListByMilestone(c.Request.Context(), c.Param("milestone"))
	})
}

// ListByApprovalStatus GET /api/v1/milestones/approval-status/:status
func (h *MilestoneHandler) ListByApprovalStatus(c *gin.Context) {
	h.respondList(c, func(c *gin.Context) ([]dto.MilestoneResponse, error) {
		return h.milestoneSvc.ListByApprovalStatus(c.Request.Context(), c.Param("status"))
	})
}

// ── helpers ──

func (h *MilestoneHandler) respondList(c *gin.Context, fetch func(*gin.Context) ([]dto.MilestoneResponse, error)) {
	list, err := fetch(c)
	if err != nil {
		h.handleMilestoneError(c, err)
		return
	}
	response.OK(c, list)
}

func (h *MilestoneHandler) handleMilestoneError(c *gin.Context, err error) {
	if writeValidation(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrMilestoneNotFound):
		response.NotFound(c, codeMilestoneNotFound, "milestone not found")
	case errors.Is(err, approval.ErrInvalidDecision):
		response.BadRequest(c, codeInvalidDecision, err.Error())
	case errors.Is(err, approval.ErrRejectionReasonRequired):
		response.BadRequest(c, codeRejectionReason, err.Error())
	case errors.Is(err, approval.ErrApproverRequired):
		response.BadRequest(c, codeApproverRequired, err.Error())
	default:
		response.InternalError(c)
	}
}
