package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"refurb/internal/staff/models"
	"refurb/internal/staff/secrets"
	id "refurb/pkg/domain"
)

var seedNamespace = uuid.MustParse("2d9c71e8-5b3a-4f06-8e4d-c1a7b09f3e52")

// SeedStaffID derives the stable id of demo account n.
func SeedStaffID(n int) id.StaffID {
	return id.StaffID(uuid.NewSHA1(seedNamespace, []byte{'s', byte(n)}))
}

// SeedDemoStaff loads the demo team. Each account gets a random password
// nobody knows; an admin must set a real one through Update.
func SeedDemoStaff(ctx context.Context, st *InMemory, hasher secrets.Hasher) error {
	for _, a := range demoStaff() {
		temp, err := secrets.Generate()
		if err != nil {
			return err
		}
		if a.PasswordHash, err = hasher.Hash(temp); err != nil {
			return err
		}
		if err := st.CreateIfEmailAvailable(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func demoStaff() []models.Account {
	at := func(s string) time.Time {
		t, _ := time.Parse(time.RFC3339, s)
		return t
	}
	lastActive := func(s string) *time.Time {
		t := at(s)
		return &t
	}
	return []models.Account{
		{
			ID:           SeedStaffID(1),
			Name:         "Alice Johnson",
			Email:        "alice@gorefurbish.com",
			Phone:        "+91 9876543210",
			Role:         models.RoleAdmin,
			Status:       models.StatusActive,
			Permissions:  models.RoleAdmin.DefaultPermissions(),
			CreatedBy:    "System",
			CreatedAt:    at("2024-11-01T10:00:00Z"),
			UpdatedAt:    at("2024-11-01T10:00:00Z"),
			LastActiveAt: lastActive("2024-12-29T14:30:00Z"),
		},
		{
			ID:           SeedStaffID(2),
			Name:         "Bob Smith",
			Email:        "bob@gorefurbish.com",
			Phone:        "+91 8765432109",
			Role:         models.RoleStaff,
			Status:       models.StatusActive,
			Permissions:  models.RoleStaff.DefaultPermissions(),
			CreatedBy:    "Alice Johnson",
			CreatedAt:    at("2024-11-10T09:30:00Z"),
			UpdatedAt:    at("2024-11-10T09:30:00Z"),
			LastActiveAt: lastActive("2024-12-28T16:45:00Z"),
		},
		{
			ID:           SeedStaffID(3),
			Name:         "Carol Davis",
			Email:        "carol@gorefurbish.com",
			Phone:        "+91 7654321098",
			Role:         models.RoleModerator,
			Status:       models.StatusInactive,
			Permissions:  models.RoleModerator.DefaultPermissions(),
			CreatedBy:    "Alice Johnson",
			CreatedAt:    at("2024-11-20T11:15:00Z"),
			UpdatedAt:    at("2024-11-20T11:15:00Z"),
			LastActiveAt: lastActive("2024-12-20T10:30:00Z"),
		},
	}
}
