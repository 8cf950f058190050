package handler

import (
	"strings"

	dErrors "refurb/pkg/domain-errors"
)

const maxNotesLength = 1000

// ProcessRequest is the body for POST /payments/{id}/process. Amount and
// method are checked by the store, after the verification gates.
type ProcessRequest struct {
	Amount string `json:"amount"`
	Method string `json:"method"`
	Notes  string `json:"notes,omitempty"`
}

func (r *ProcessRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Notes = strings.TrimSpace(r.Notes)
	if len(r.Notes) > maxNotesLength {
		return dErrors.New(dErrors.CodeValidation, "notes must be at most 1000 characters")
	}
	return nil
}

// VerificationRequest is the body for PATCH /payments/{id}/verification.
// Omitted flags are left unchanged.
type VerificationRequest struct {
	CustomerVerified *bool `json:"customer_verified,omitempty"`
	ProductVerified  *bool `json:"product_verified,omitempty"`
}

func (r *VerificationRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.CustomerVerified == nil && r.ProductVerified == nil {
		return dErrors.New(dErrors.CodeValidation, "customer_verified or product_verified is required")
	}
	return nil
}
