package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	id "refurb/pkg/domain"
	dErrors "refurb/pkg/domain-errors"
)

// Role is what a customer does on the marketplace.
type Role string

const (
	RoleSeller Role = "seller"
	RoleBuyer  Role = "buyer"
)

func (r Role) IsValid() bool {
	return r == RoleSeller || r == RoleBuyer
}

// Status gates a customer's access to the marketplace.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusBanned    Status = "banned"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusSuspended, StatusBanned:
		return true
	}
	return false
}

// Statuses lists the statuses in display order.
func Statuses() []Status {
	return []Status{StatusActive, StatusSuspended, StatusBanned}
}

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Country string `json:"country"`
}

type EmergencyContact struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Relation string `json:"relation"`
}

type PersonalDetails struct {
	DateOfBirth      string           `json:"date_of_birth,omitempty"`
	Gender           string           `json:"gender,omitempty"`
	Address          Address          `json:"address"`
	EmergencyContact EmergencyContact `json:"emergency_contact"`
}

// Customer is a marketplace buyer or seller as the console manages them.
//
// Invariants:
//   - Name and Email are present
//   - Role and Status are known values
//   - KYC.Status agrees with the review state of KYC.Documents
type Customer struct {
	ID            id.CustomerID   `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone,omitempty"`
	Role          Role            `json:"role"`
	Status        Status          `json:"status"`
	JoinedAt      time.Time       `json:"joined_at"`
	LastActiveAt  *time.Time      `json:"last_active_at,omitempty"`
	UpdatedAt     time.Time       `json:"updated_at"`
	TotalProducts int             `json:"total_products"`
	TotalSales    decimal.Decimal `json:"total_sales"`
	Personal      PersonalDetails `json:"personal_details"`
	KYC           KYC             `json:"kyc"`
}

func (c Customer) Validate() error {
	if c.ID.IsNil() {
		return dErrors.New(dErrors.CodeInvariantViolation, "customer id is required")
	}
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Email) == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "customer name and email are required")
	}
	if !c.Role.IsValid() {
		return dErrors.New(dErrors.CodeInvariantViolation, "customer role is invalid")
	}
	if !c.Status.IsValid() {
		return dErrors.New(dErrors.CodeInvariantViolation, "customer status is invalid")
	}
	if c.TotalSales.IsNegative() || c.TotalProducts < 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "customer totals cannot be negative")
	}
	return c.KYC.validate()
}

func (c Customer) IsActive() bool {
	return c.Status == StatusActive
}

// WithStatus moves the customer to next. Moving to the current status is a
// conflict.
func (c Customer) WithStatus(next Status, now time.Time) (Customer, error) {
	if !next.IsValid() {
		return Customer{}, dErrors.New(dErrors.CodeValidation, "Please select a valid status")
	}
	if c.Status == next {
		return Customer{}, dErrors.New(dErrors.CodeConflict, fmt.Sprintf("User %q is already %s", c.Name, next))
	}
	out := c.Clone()
	out.Status = next
	out.UpdatedAt = now
	return out, nil
}

// Toggled is the status the row switch moves to: active customers are
// suspended, everyone else is reactivated.
func (c Customer) Toggled() Status {
	if c.IsActive() {
		return StatusSuspended
	}
	return StatusActive
}

// Clone returns a deep copy.
func (c Customer) Clone() Customer {
	if c.LastActiveAt != nil {
		t := *c.LastActiveAt
		c.LastActiveAt = &t
	}
	c.KYC = c.KYC.clone()
	return c
}

// Filter narrows the customer list. Search matches name and email.
type Filter struct {
	Search string `json:"search"`
	Status string `json:"status"`
	KYC    string `json:"kyc"`
}

const FilterAll = "all"

func (f Filter) Matches(c Customer) bool {
	if status := strings.TrimSpace(f.Status); status != "" && status != FilterAll && string(c.Status) != status {
		return false
	}
	if kyc := strings.TrimSpace(f.KYC); kyc != "" && kyc != FilterAll && string(c.KYC.Status) != kyc {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Search))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Name), q) ||
		strings.Contains(strings.ToLower(c.Email), q)
}

