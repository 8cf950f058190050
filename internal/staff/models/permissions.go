package models

import (
	"slices"

	dErrors "refurb/pkg/domain-errors"
	pstrings "refurb/pkg/platform/strings"
)

// Permission is one grantable capability. Keys are flat; categories only
// group them for display.
type Permission struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

type PermissionCategory struct {
	Name        string       `json:"category"`
	Permissions []Permission `json:"permissions"`
}

const (
	PermProductsView    = "products.view"
	PermProductsApprove = "products.approve"
	PermProductsReject  = "products.reject"
	PermProductsDelete  = "products.delete"
	PermUsersView       = "users.view"
	PermUsersManage     = "users.manage"
	PermStaffView       = "staff.view"
	PermStaffManage     = "staff.manage"
	PermPaymentsView    = "payments.view"
	PermPaymentsProcess = "payments.process"
	PermSettingsManage  = "settings.manage"
)

// PermissionCatalog is the static reference table of every known key.
var PermissionCatalog = []PermissionCategory{
	{Name: "Products", Permissions: []Permission{
		{PermProductsView, "View Products", "Can view all products"},
		{PermProductsApprove, "Approve Products", "Can approve pending products"},
		{PermProductsReject, "Reject Products", "Can reject products"},
		{PermProductsDelete, "Delete Products", "Can permanently delete products"},
	}},
	{Name: "Users", Permissions: []Permission{
		{PermUsersView, "View Users", "Can view user profiles and details"},
		{PermUsersManage, "Manage Users", "Can suspend/activate users"},
	}},
	{Name: "Staff", Permissions: []Permission{
		{PermStaffView, "View Staff", "Can view staff members"},
		{PermStaffManage, "Manage Staff", "Can add/edit/remove staff members"},
	}},
	{Name: "Payments", Permissions: []Permission{
		{PermPaymentsView, "View Payments", "Can view payment requests and history"},
		{PermPaymentsProcess, "Process Payments", "Can process payments to verified customers"},
	}},
	{Name: "Settings", Permissions: []Permission{
		{PermSettingsManage, "Manage Settings", "Can modify platform settings"},
	}},
}

// catalogOrder maps each key to its position in the catalog.
var catalogOrder = func() map[string]int {
	order := make(map[string]int)
	for _, c := range PermissionCatalog {
		for _, p := range c.Permissions {
			order[p.Key] = len(order)
		}
	}
	return order
}()

func IsKnownPermission(key string) bool {
	_, ok := catalogOrder[key]
	return ok
}

// AllPermissions returns every key in catalog order.
func AllPermissions() []string {
	keys := make([]string, 0, len(catalogOrder))
	for _, c := range PermissionCatalog {
		for _, p := range c.Permissions {
			keys = append(keys, p.Key)
		}
	}
	return keys
}

// NormalizePermissions trims and dedupes keys, rejects unknown ones, and
// returns the set in catalog order. The result is never nil.
func NormalizePermissions(keys []string) ([]string, error) {
	set := pstrings.DedupeAndTrimLower(keys)
	for _, k := range set {
		if !IsKnownPermission(k) {
			return nil, dErrors.New(dErrors.CodeValidation, "Unknown permission: "+k)
		}
	}
	out := slices.Clone(set)
	if out == nil {
		out = []string{}
	}
	slices.SortFunc(out, func(a, b string) int {
		return catalogOrder[a] - catalogOrder[b]
	})
	return out, nil
}
