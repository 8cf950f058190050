package handler

import (
	"strings"

	"refurb/internal/catalog/models"
	id "refurb/pkg/domain"
	dErrors "refurb/pkg/domain-errors"
)

const (
	maxReasonLength  = 500
	maxMessageLength = 1000
	maxBulkIDs       = 100
)

// StatusRequest is the body for PATCH /products/{id}/status.
type StatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`

	parsedStatus models.ProductStatus
}

func (r *StatusRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	status, err := parseStatus(r.Status)
	if err != nil {
		return err
	}
	r.Reason = strings.TrimSpace(r.Reason)
	if len(r.Reason) > maxReasonLength {
		return dErrors.New(dErrors.CodeValidation, "reason must be at most 500 characters")
	}
	r.parsedStatus = status
	return nil
}

// BulkStatusRequest is the body for POST /products/bulk-status.
type BulkStatusRequest struct {
	ProductIDs []string `json:"product_ids,omitempty"`
	Status     string   `json:"status"`
	Reason     string   `json:"reason,omitempty"`

	parsedIDs    []id.ProductID
	parsedStatus models.ProductStatus
}

func (r *BulkStatusRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.ProductIDs) > maxBulkIDs {
		return dErrors.New(dErrors.CodeValidation, "at most 100 products can be updated at once")
	}
	status, err := parseStatus(r.Status)
	if err != nil {
		return err
	}
	r.Reason = strings.TrimSpace(r.Reason)
	if len(r.Reason) > maxReasonLength {
		return dErrors.New(dErrors.CodeValidation, "reason must be at most 500 characters")
	}
	ids := make([]id.ProductID, 0, len(r.ProductIDs))
	for _, raw := range r.ProductIDs {
		pid, err := id.ParseProductID(strings.TrimSpace(raw))
		if err != nil {
			return err
		}
		ids = append(ids, pid)
	}
	r.parsedIDs = ids
	r.parsedStatus = status
	return nil
}

// NegotiationRequest is the body for POST /products/{id}/negotiations.
// Field contents are checked by the store so the admin also gets a
// notification.
type NegotiationRequest struct {
	ProposedPrice string `json:"proposed_price"`
	Reason        string `json:"reason"`
	Message       string `json:"message"`
}

func (r *NegotiationRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.ProposedPrice) > 32 || len(r.Reason) > 64 {
		return dErrors.New(dErrors.CodeValidation, "proposal fields are too long")
	}
	if len(r.Message) > maxMessageLength {
		return dErrors.New(dErrors.CodeValidation, "message must be at most 1000 characters")
	}
	return nil
}

func parseStatus(raw string) (models.ProductStatus, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", dErrors.New(dErrors.CodeValidation, "status is required")
	}
	status, ok := models.ParseStatus(raw)
	if !ok {
		return "", dErrors.New(dErrors.CodeValidation, "status must be one of pending, approved, rejected")
	}
	return status, nil
}
