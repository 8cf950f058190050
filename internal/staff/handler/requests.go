package handler

import (
	"strings"

	dErrors "refurb/pkg/domain-errors"
)

const (
	maxNameLength  = 128
	maxPermissions = 32
)

// CreateRequest is the body for POST /staff. Field checks that produce
// user-facing notifications happen in the registry.
type CreateRequest struct {
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone,omitempty"`
	Role            string   `json:"role,omitempty"`
	Permissions     []string `json:"permissions,omitempty"`
	Password        string   `json:"password"`
	ConfirmPassword string   `json:"confirm_password"`
}

func (r *CreateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Name) > maxNameLength {
		return dErrors.New(dErrors.CodeValidation, "name must be at most 128 characters")
	}
	if len(r.Permissions) > maxPermissions {
		return dErrors.New(dErrors.CodeValidation, "too many permissions")
	}
	return nil
}

// UpdateRequest is the body for PATCH /staff/{id}. Omitted fields are left
// unchanged.
type UpdateRequest struct {
	Name            *string `json:"name,omitempty"`
	Email           *string `json:"email,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	Role            *string `json:"role,omitempty"`
	Password        string  `json:"password,omitempty"`
	ConfirmPassword string  `json:"confirm_password,omitempty"`
}

func (r *UpdateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Name != nil && len(*r.Name) > maxNameLength {
		return dErrors.New(dErrors.CodeValidation, "name must be at most 128 characters")
	}
	return nil
}

// StatusRequest is the body for PUT /staff/{id}/status.
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

// PermissionsRequest is the body for PUT /staff/{id}/permissions. It
// replaces the whole set; an empty list revokes everything.
type PermissionsRequest struct {
	Permissions []string `json:"permissions"`
}

func (r *PermissionsRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Permissions) > maxPermissions {
		return dErrors.New(dErrors.CodeValidation, "too many permissions")
	}
	return nil
}
