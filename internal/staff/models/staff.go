package models

import (
	"net/mail"
	"slices"
	"strings"
	"time"

	id "refurb/pkg/domain"
	dErrors "refurb/pkg/domain-errors"
)

// Role is an account's job title. It only seeds permissions at creation.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleStaff     Role = "staff"
	RoleModerator Role = "moderator"
)

var roleDefaults = map[Role][]string{
	RoleAdmin: AllPermissions(),
	RoleStaff: {
		PermProductsView, PermProductsApprove, PermProductsReject,
		PermUsersView, PermPaymentsView,
	},
	RoleModerator: {
		PermProductsView, PermProductsApprove, PermProductsReject,
		PermUsersView,
	},
}

func (r Role) IsValid() bool {
	_, ok := roleDefaults[r]
	return ok
}

// DefaultPermissions returns a fresh copy of the role's starting set.
func (r Role) DefaultPermissions() []string {
	return slices.Clone(roleDefaults[r])
}

// Roles lists the roles in display order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleStaff, RoleModerator}
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}

// Account is a staff member of the admin console.
//
// Invariants:
//   - Name and a parseable Email are present
//   - Role and Status are known values
//   - Permissions holds known keys only, without duplicates
type Account struct {
	ID           id.StaffID `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone,omitempty"`
	Role         Role       `json:"role"`
	Status       Status     `json:"status"`
	Permissions  []string   `json:"permissions"`
	CreatedBy    string     `json:"created_by"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastActiveAt *time.Time `json:"last_active_at"`
	PasswordHash string     `json:"-"`
}

func (a Account) Validate() error {
	if a.ID.IsNil() {
		return dErrors.New(dErrors.CodeInvariantViolation, "staff id is required")
	}
	if strings.TrimSpace(a.Name) == "" || strings.TrimSpace(a.Email) == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "staff name and email are required")
	}
	if !ValidEmail(a.Email) {
		return dErrors.New(dErrors.CodeInvariantViolation, "staff email is invalid")
	}
	if !a.Role.IsValid() {
		return dErrors.New(dErrors.CodeInvariantViolation, "staff role is invalid")
	}
	if !a.Status.IsValid() {
		return dErrors.New(dErrors.CodeInvariantViolation, "staff status is invalid")
	}
	seen := make(map[string]struct{}, len(a.Permissions))
	for _, p := range a.Permissions {
		if !IsKnownPermission(p) {
			return dErrors.New(dErrors.CodeInvariantViolation, "unknown permission "+p)
		}
		if _, dup := seen[p]; dup {
			return dErrors.New(dErrors.CodeInvariantViolation, "duplicate permission "+p)
		}
		seen[p] = struct{}{}
	}
	return nil
}

func (a Account) IsActive() bool {
	return a.Status == StatusActive
}

func (a Account) HasPermission(key string) bool {
	return slices.Contains(a.Permissions, key)
}

// Clone returns a deep copy.
func (a Account) Clone() Account {
	a.Permissions = slices.Clone(a.Permissions)
	if a.Permissions == nil {
		a.Permissions = []string{}
	}
	if a.LastActiveAt != nil {
		t := *a.LastActiveAt
		a.LastActiveAt = &t
	}
	return a
}

// ValidEmail accepts a bare address such as alice@example.com.
func ValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// Filter narrows the staff list. Search matches name, email and role.
type Filter struct {
	Search string `json:"search"`
	Role   string `json:"role"`
}

const FilterAll = "all"

func (f Filter) Matches(a Account) bool {
	role := strings.TrimSpace(f.Role)
	if role != "" && role != FilterAll && string(a.Role) != role {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Search))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(a.Name), q) ||
		strings.Contains(strings.ToLower(a.Email), q) ||
		strings.Contains(string(a.Role), q)
}
