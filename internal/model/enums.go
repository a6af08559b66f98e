package model

import "strings"

// ChangeType classifies a BOM cost change.
type ChangeType string

const (
	ChangeTypeNewPart   ChangeType = "NEW_PART"
	ChangeTypeReduction ChangeType = "REDUCTION"
	ChangeTypeAddition  ChangeType = "ADDITION"
)

// ChangeTypes in declaration order.
var ChangeTypes = []ChangeType{ChangeTypeNewPart, ChangeTypeReduction, ChangeTypeAddition}

// ParseChangeType matches case-insensitively.
func ParseChangeType(s string) (ChangeType, bool) {
	up := ChangeType(strings.ToUpper(s))
	for _, ct := range ChangeTypes {
		if ct == up {
			return ct, true
		}
	}
	return "", false
}

// BomStatus lifecycle of a BOM change record.
type BomStatus string

const (
	BomStatusPending   BomStatus = "PENDING"
	BomStatusApproved  BomStatus = "APPROVED"
	BomStatusRejected  BomStatus = "REJECTED"
	BomStatusCompleted BomStatus = "COMPLETED"
)

// BomStatuses in declaration order.
var BomStatuses = []BomStatus{BomStatusPending, BomStatusApproved, BomStatusRejected, BomStatusCompleted}

// ParseBomStatus matches case-insensitively.
func ParseBomStatus(s string) (BomStatus, bool) {
	up := BomStatus(strings.ToUpper(s))
	for _, st := range BomStatuses {
		if st == up {
			return st, true
		}
	}
	return "", false
}

// ApprovalStatus of a milestone cost record. Values are title-case on the wire.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "Pending"
	ApprovalApproved ApprovalStatus = "Approved"
	ApprovalRejected ApprovalStatus = "Rejected"
)

// ApprovalStatuses in declaration order.
var ApprovalStatuses = []ApprovalStatus{ApprovalPending, ApprovalApproved, ApprovalRejected}

// ParseApprovalStatus matches exactly.
func ParseApprovalStatus(s string) (ApprovalStatus, bool) {
	for _, st := range ApprovalStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}
