package handler

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"refurb/internal/staff/models"
	"refurb/internal/staff/service"
)

var titleCaser = cases.Title(language.English)

// StaffResponse is an account as the console shows it. The password hash
// never leaves the server.
type StaffResponse struct {
	models.Account
	RoleLabel string `json:"role_label"`
}

type ListResponse struct {
	Staff []StaffResponse `json:"staff"`
	Total int             `json:"total"`
}

type RoleResponse struct {
	Value              string   `json:"value"`
	Label              string   `json:"label"`
	DefaultPermissions []string `json:"default_permissions"`
}

type SummaryResponse struct {
	Active   int                 `json:"active"`
	Inactive int                 `json:"inactive"`
	ByRole   map[models.Role]int `json:"by_role"`
}

func toStaffResponse(a models.Account) StaffResponse {
	return StaffResponse{
		Account:   a,
		RoleLabel: titleCaser.String(string(a.Role)),
	}
}

func roleResponses() []RoleResponse {
	roles := models.Roles()
	out := make([]RoleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, RoleResponse{
			Value:              string(r),
			Label:              titleCaser.String(string(r)),
			DefaultPermissions: r.DefaultPermissions(),
		})
	}
	return out
}

func toSummaryResponse(s service.Summary) SummaryResponse {
	return SummaryResponse{Active: s.Active, Inactive: s.Inactive, ByRole: s.ByRole}
}
