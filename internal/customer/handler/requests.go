package handler

import (
	"strings"

	"refurb/internal/customer/models"
	id "refurb/pkg/domain"
	dErrors "refurb/pkg/domain-errors"
)

const (
	maxBulkIDs      = 100
	maxReasonLength = 500
)

// StatusRequest is the body for PUT /customers/{id}/status.
type StatusRequest struct {
	Status string `json:"status"`
}

func (r *StatusRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
	if r.Status == "" {
		return dErrors.New(dErrors.CodeValidation, "status is required")
	}
	return nil
}

// BulkStatusRequest is the body for POST /customers/bulk-status. No ids
// means the current selection.
type BulkStatusRequest struct {
	CustomerIDs []string `json:"customer_ids,omitempty"`
	Status      string   `json:"status"`

	parsedIDs []id.CustomerID
}

func (r *BulkStatusRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.CustomerIDs) > maxBulkIDs {
		return dErrors.New(dErrors.CodeValidation, "at most 100 customers can be updated at once")
	}
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
	if r.Status == "" {
		return dErrors.New(dErrors.CodeValidation, "status is required")
	}
	ids := make([]id.CustomerID, 0, len(r.CustomerIDs))
	for _, raw := range r.CustomerIDs {
		cid, err := id.ParseCustomerID(strings.TrimSpace(raw))
		if err != nil {
			return err
		}
		ids = append(ids, cid)
	}
	r.parsedIDs = ids
	return nil
}

// ReviewRequest is the body for PUT /customers/{id}/kyc/documents/{kind}.
type ReviewRequest struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason,omitempty"`

	approve bool
}

func (r *ReviewRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	switch strings.ToLower(strings.TrimSpace(r.Decision)) {
	case "approve":
		r.approve = true
	case "reject":
		r.approve = false
	default:
		return dErrors.New(dErrors.CodeValidation, "decision must be approve or reject")
	}
	if len(r.Reason) > maxReasonLength {
		return dErrors.New(dErrors.CodeValidation, "reason must be at most 500 characters")
	}
	return nil
}

func (r *ReviewRequest) review(kind models.DocumentKind) models.DocumentReview {
	return models.DocumentReview{Kind: kind, Approve: r.approve, Reason: r.Reason}
}

// RiskRequest is the body for PUT /customers/{id}/kyc/risk.
type RiskRequest struct {
	RiskLevel string `json:"risk_level"`
}

func (r *RiskRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.RiskLevel = strings.ToLower(strings.TrimSpace(r.RiskLevel))
	if r.RiskLevel == "" {
		return dErrors.New(dErrors.CodeValidation, "risk_level is required")
	}
	return nil
}
