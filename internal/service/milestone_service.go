package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"costedge/backend/internal/approval"
	"costedge/backend/internal/costcalc"
	"costedge/backend/internal/dto"
	"costedge/backend/internal/model"
	"costedge/backend/internal/repository"
	pkgerrors "costedge/backend/pkg/errors"
)

// ── milestone errors ──

var ErrMilestoneNotFound = errors.New("milestone not found")

// MilestoneService milestone budget entries and their approval workflow.
type MilestoneService interface {
	Create(ctx context.Context, req *dto.MilestoneRequest, callerID string) (*dto.MilestoneResponse, error)
	GetByID(ctx context.Context, id uint64) (*dto.MilestoneResponse, error)
	List(ctx context.Context) ([]dto.MilestoneResponse, error)
	// Update replaces the editable fields. approval_status Pending reopens a
	// decided record; the last verdict's approver and time are kept.
	Update(ctx context.Context, id uint64, req *dto.MilestoneRequest, callerID string) (*dto.MilestoneResponse, error)
	Delete(ctx context.Context, id uint64) error

	ListByProjectID(ctx context.Context, projectID int) ([]dto.MilestoneResponse, error)
	ListByProjectName(ctx context.Context, projectName string) ([]dto.MilestoneResponse, error)
	ListByMilestone(ctx context.Context, milestone string) ([]dto.MilestoneResponse, error)
	ListByApprovalStatus(ctx context.Context, status string) ([]dto.MilestoneResponse, error)

	// SubmitApproval records a reviewer decision. approved_by falls back to callerID.
	SubmitApproval(ctx context.Context, id uint64, req *dto.ApprovalRequest, callerID string) (*dto.MilestoneResponse, error)

	// Calendar renders expected completion dates as an iCalendar feed,
	// optionally limited to one approval status.
	Calendar(ctx context.Context, status string) (string, error)
}

type milestoneService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewMilestoneService creates a MilestoneService.
func NewMilestoneService(repo *repository.Repository, logger *zap.Logger) MilestoneService {
	return &milestoneService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── Create ──────────────────────

func (s *milestoneService) Create(ctx context.Context, req *dto.MilestoneRequest, callerID string) (*dto.MilestoneResponse, error) {
	m := &model.MilestoneCost{}
	if err := applyMilestoneRequest(m, req); err != nil {
		return nil, err
	}
	if m.LastUpdatedBy == "" {
		m.LastUpdatedBy = callerID
	}
	approval.PrepareNew(m)
	costcalc.ApplyMilestone(m)

	if err := s.repo.MilestoneCost.Create(ctx, m); err != nil {
		s.logger.Error("create milestone failed", zap.Int("project_id", m.ProjectID), zap.Error(err))
		return nil, err
	}
	resp := toMilestoneResponse(m)
	return &resp, nil
}

// ────────────────────── Get ──────────────────────

func (s *milestoneService) GetByID(ctx context.Context, id uint64) (*dto.MilestoneResponse, error) {
	m, err := s.get(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	resp := toMilestoneResponse(m)
	return &resp, nil
}

func (s *milestoneService) List(ctx context.Context) ([]dto.MilestoneResponse, error) {
	return s.list(ctx, "list", s.repo.MilestoneCost.List)
}

// ────────────────────── Update ──────────────────────

func (s *milestoneService) Update(ctx context.Context, id uint64, req *dto.MilestoneRequest, callerID string) (*dto.MilestoneResponse, error) {
	m, err := s.get(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	// validate on a copy so a rejected payload leaves m as loaded
	updated := *m
	if err := applyMilestoneRequest(&updated, req); err != nil {
		return nil, err
	}
	if req.LastUpdatedBy == "" && callerID != "" {
		updated.LastUpdatedBy = callerID
	}
	if model.ApprovalStatus(req.ApprovalStatus) == model.ApprovalPending {
		approval.Reopen(&updated)
	} else {
		approval.Normalize(&updated)
	}
	costcalc.ApplyMilestone(&updated)

	if err := s.repo.MilestoneCost.Update(ctx, &updated); err != nil {
		s.logger.Error("update milestone failed", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	resp := toMilestoneResponse(&updated)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *milestoneService) Delete(ctx context.Context, id uint64) error {
	if err := s.repo.MilestoneCost.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMilestoneNotFound
		}
		s.logger.Error("delete milestone failed", zap.Uint64("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Filters ──────────────────────

func (s *milestoneService) ListByProjectID(ctx context.Context, projectID int) ([]dto.MilestoneResponse, error) {
	return s.list(ctx, "list by project id", func(ctx context.Context) ([]model.MilestoneCost, error) {
		return s.repo.MilestoneCost.ListByProjectID(ctx, projectID)
	})
}

func (s *milestoneService) ListByProjectName(ctx context.Context, projectName string) ([]dto.MilestoneResponse, error) {
	return s.list(ctx, "list by project name", func(ctx context.Context) ([]model.MilestoneCost, error) {
		return s.repo.MilestoneCost.ListByProjectName(ctx, projectName)
	})
}

func (s *milestoneService) ListByMilestone(ctx context.Context, milestone string) ([]dto.MilestoneResponse, error) {
	return s.list(ctx, "list by milestone", func(ctx context.Context) ([]model.MilestoneCost, error) {
		return s.repo.MilestoneCost.ListByMilestone(ctx, milestone)
	})
}

func (s *milestoneService) ListByApprovalStatus(ctx context.Context, status string) ([]dto.MilestoneResponse, error) {
	st, ok := model.ParseApprovalStatus(status)
	if !ok {
		ve := pkgerrors.NewValidationError()
		ve.Add("approval_status", "must be one of "+validValues(model.ApprovalStatuses))
		return nil, ve
	}
	return s.list(ctx, "list by approval status", func(ctx context.Context) ([]model.MilestoneCost, error) {
		return s.repo.MilestoneCost.ListByApprovalStatus(ctx, st)
	})
}

// ═══════════════════════════════════════════════════════════
// SubmitApproval: Pending → Approved / Rejected
// ═══════════════════════════════════════════════════════════
//
// The decision is validated before the record is loaded for writing, so a
// rejected decision never touches the row. Load and save share a transaction.

func (s *milestoneService) SubmitApproval(ctx context.Context, id uint64, req *dto.ApprovalRequest, callerID string) (*dto.MilestoneResponse, error) {
	approver := strings.TrimSpace(req.ApprovedBy)
	if approver == "" {
		approver = callerID
	}
	decision := approval.Decision{
		Status:          model.ApprovalStatus(req.ApprovalStatus),
		ApprovedBy:      approver,
		Remarks:         req.Remarks,
		RejectionReason: req.RejectionReason,
	}
	if err := decision.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("begin transaction failed", zap.Error(err))
		return nil, err
	}
	repo := s.repo.WithTx(tx)

	m, err := s.get(ctx, repo, id)
	if err != nil {
		rollback(tx)
		return nil, err
	}
	if err := approval.Submit(m, decision, s.now()); err != nil {
		rollback(tx)
		return nil, err
	}
	if err := repo.MilestoneCost.Update(ctx, m); err != nil {
		rollback(tx)
		s.logger.Error("save approval failed", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("commit approval failed", zap.Uint64("id", id), zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("milestone decided",
		zap.Uint64("id", id),
		zap.String("status", string(m.ApprovalStatus)),
		zap.String("approved_by", approver),
	)
	resp := toMilestoneResponse(m)
	return &resp, nil
}

// ── helpers ──

func (s *milestoneService) get(ctx context.Context, repo *repository.Repository, id uint64) (*model.MilestoneCost, error) {
	m, err := repo.MilestoneCost.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMilestoneNotFound
		}
		s.logger.Error("get milestone failed", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	return m, nil
}

func (s *milestoneService) list(ctx context.Context, op string, fetch func(context.Context) ([]model.MilestoneCost, error)) ([]dto.MilestoneResponse, error) {
	ms, err := fetch(ctx)
	if err != nil {
		s.logger.Error("milestone query failed", zap.String("op", op), zap.Error(err))
		return nil, err
	}
	out := make([]dto.MilestoneResponse, 0, len(ms))
	for i := range ms {
		out = append(out, toMilestoneResponse(&ms[i]))
	}
	return out, nil
}

func rollback(tx *gorm.DB) {
	if tx != nil {
		tx.Rollback()
	}
}

// applyMilestoneRequest copies the editable fields of req onto m.
// Workflow fields are left to the approval package.
func applyMilestoneRequest(m *model.MilestoneCost, req *dto.MilestoneRequest) error {
	ve := pkgerrors.NewValidationError()
	date := parseDate(ve, "date", req.Date)
	expected := parseDate(ve, "expected_completion_date", req.ExpectedCompletionDate)
	positive(ve, "planned", req.Planned)
	positive(ve, "actual", req.Actual)
	positive(ve, "project_quantity", req.ProjectQuantity)
	if err := ve.OrNil(); err != nil {
		return err
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = model.DefaultCurrency
	}

	m.ProjectID = req.ProjectID
	m.ProjectName = strings.TrimSpace(req.ProjectName)
	m.Milestone = strings.TrimSpace(req.Milestone)
	m.Planned = *req.Planned
	m.Actual = *req.Actual
	m.ProjectQuantity = *req.ProjectQuantity
	m.Reason = req.Reason
	m.Date = date
	m.MilestoneType = req.MilestoneType
	m.Department = req.Department
	m.Category = req.Category
	m.Currency = currency
	m.SupplierName = req.SupplierName
	m.PartNumber = req.PartNumber
	m.ExpectedCompletionDate = expected
	m.Remarks = req.Remarks
	m.DocumentsLinks = req.DocumentsLinks
	m.LastUpdatedBy = req.LastUpdatedBy
	m.CurrentPercent = toNullDecimal(req.CurrentPercent)
	m.TargetPercent = toNullDecimal(req.TargetPercent)
	m.EstimatedSavings = toNullDecimal(req.EstimatedSavings)
	m.CostReductionStatus = req.CostReductionStatus
	return nil
}

func positive(ve *pkgerrors.ValidationError, field string, d *decimal.Decimal) {
	if d == nil {
		ve.Add(field, "is required")
		return
	}
	if !d.IsPositive() {
		ve.Add(field, "must be positive")
	}
}

func toMilestoneResponse(m *model.MilestoneCost) dto.MilestoneResponse {
	resp := dto.MilestoneResponse{
		ID:                     m.ID,
		ProjectID:              m.ProjectID,
		ProjectName:            m.ProjectName,
		Milestone:              m.Milestone,
		Planned:                m.Planned,
		Actual:                 m.Actual,
		Variance:               m.Variance,
		ProjectQuantity:        m.ProjectQuantity,
		UnitPlannedCost:        costcalc.UnitPlannedCost(m),
		UnitActualCost:         costcalc.UnitActualCost(m),
		OverBudget:             costcalc.IsOverBudget(m),
		UnderBudget:            costcalc.IsUnderBudget(m),
		Reason:                 m.Reason,
		Date:                   formatDate(m.Date),
		MilestoneType:          m.MilestoneType,
		Department:             m.Department,
		Category:               m.Category,
		Currency:               m.Currency,
		SupplierName:           m.SupplierName,
		PartNumber:             m.PartNumber,
		ExpectedCompletionDate: formatDate(m.ExpectedCompletionDate),
		Remarks:                m.Remarks,
		DocumentsLinks:         m.DocumentsLinks,
		LastUpdatedBy:          m.LastUpdatedBy,
		CurrentPercent:         nullDecimalPtr(m.CurrentPercent),
		TargetPercent:          nullDecimalPtr(m.TargetPercent),
		EstimatedSavings:       nullDecimalPtr(m.EstimatedSavings),
		CostReductionStatus:    m.CostReductionStatus,
		ApprovalStatus:         string(m.ApprovalStatus),
		ApprovedBy:             m.ApprovedBy,
		RejectionReason:        m.RejectionReason,
		CreatedAt:              formatTimestamp(m.CreatedAt),
		UpdatedAt:              formatTimestamp(m.UpdatedAt),
	}
	if m.ApprovedAt != nil {
		at := formatTimestamp(*m.ApprovedAt)
		resp.ApprovedAt = &at
	}
	return resp
}
