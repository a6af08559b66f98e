// Package approval is the milestone approval state machine.
//
//	Pending ──Approved──▶ Approved
//	   │                     ▲
//	   └──Rejected──▶ Rejected (re-openable to Pending by edit)
//
// Every decision stamps approver and time. The rejection reason only
// survives while the record is Rejected.
package approval

import (
	"errors"
	"strings"
	"time"

	"costedge/backend/internal/model"
)

var (
	ErrInvalidDecision         = errors.New("approval status must be Approved or Rejected")
	ErrRejectionReasonRequired = errors.New("rejection reason is required when rejecting")
	ErrApproverRequired        = errors.New("approver is required")
)

// Decision a reviewer's verdict on a milestone.
type Decision struct {
	Status          model.ApprovalStatus
	ApprovedBy      string
	Remarks         string
	RejectionReason string
}

// Validate checks a decision without touching any record.
func (d Decision) Validate() error {
	switch d.Status {
	case model.ApprovalApproved:
	case model.ApprovalRejected:
		if strings.TrimSpace(d.RejectionReason) == "" {
			return ErrRejectionReasonRequired
		}
	default:
		return ErrInvalidDecision
	}
	if strings.TrimSpace(d.ApprovedBy) == "" {
		return ErrApproverRequired
	}
	return nil
}

// Submit applies d to m. On error m is left untouched.
// Re-deciding an already decided record is allowed and restamps it.
func Submit(m *model.MilestoneCost, d Decision, now time.Time) error {
	if err := d.Validate(); err != nil {
		return err
	}

	approver := strings.TrimSpace(d.ApprovedBy)
	at := now

	m.ApprovalStatus = d.Status
	m.ApprovedBy = &approver
	m.ApprovedAt = &at
	m.Remarks = d.Remarks
	m.LastUpdatedBy = approver

	if d.Status == model.ApprovalRejected {
		reason := strings.TrimSpace(d.RejectionReason)
		m.RejectionReason = &reason
	} else {
		m.RejectionReason = nil
	}
	return nil
}

// PrepareNew resets the workflow fields of a record about to be created.
// New records always start Pending with no decision metadata.
func PrepareNew(m *model.MilestoneCost) {
	m.ApprovalStatus = model.ApprovalPending
	m.ApprovedBy = nil
	m.ApprovedAt = nil
	m.RejectionReason = nil
}

// Reopen moves a decided record back to Pending. Decision metadata of the
// last verdict is kept for audit.
func Reopen(m *model.MilestoneCost) {
	m.ApprovalStatus = model.ApprovalPending
	Normalize(m)
}

// Normalize applies the workflow invariants after a direct edit: an empty
// status becomes Pending and only Rejected records carry a rejection reason.
func Normalize(m *model.MilestoneCost) {
	if m.ApprovalStatus == "" {
		m.ApprovalStatus = model.ApprovalPending
	}
	if m.ApprovalStatus != model.ApprovalRejected {
		m.RejectionReason = nil
	}
}
