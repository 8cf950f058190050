package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"refurb/internal/staff/models"
	"refurb/internal/staff/secrets"
	id "refurb/pkg/domain"
	"refurb/pkg/platform/sentinel"
)

type StaffStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *StaffStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestStaffStoreSuite(t *testing.T) {
	suite.Run(t, new(StaffStoreSuite))
}

func (s *StaffStoreSuite) newAccount(name, email string) models.Account {
	return models.Account{
		ID:          id.NewStaffID(),
		Name:        name,
		Email:       email,
		Role:        models.RoleStaff,
		Status:      models.StatusActive,
		Permissions: models.RoleStaff.DefaultPermissions(),
		CreatedAt:   time.Now(),
	}
}

func (s *StaffStoreSuite) TestCreationAndLookups() {
	s.Run("creates and finds by id", func() {
		a := s.newAccount("Bob Smith", "bob@gorefurbish.com")
		s.Require().NoError(s.store.CreateIfEmailAvailable(s.ctx, a))

		found, err := s.store.FindByID(s.ctx, a.ID)
		s.Require().NoError(err)
		s.Equal("Bob Smith", found.Name)
	})

	s.Run("returns ErrNotFound for unknown id", func() {
		_, err := s.store.FindByID(s.ctx, id.NewStaffID())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("finds by email case-insensitively", func() {
		a := s.newAccount("Carol Davis", "Carol@GoRefurbish.com")
		s.Require().NoError(s.store.CreateIfEmailAvailable(s.ctx, a))

		found, err := s.store.FindByEmail(s.ctx, "carol@gorefurbish.com")
		s.Require().NoError(err)
		s.Equal(a.ID, found.ID)
	})

	s.Run("returned copies do not alias the store", func() {
		a := s.newAccount("Dan", "dan@gorefurbish.com")
		s.Require().NoError(s.store.CreateIfEmailAvailable(s.ctx, a))
		found, _ := s.store.FindByID(s.ctx, a.ID)
		found.Permissions[0] = "tampered"

		again, _ := s.store.FindByID(s.ctx, a.ID)
		s.Equal(models.PermProductsView, again.Permissions[0])
	})
}

func (s *StaffStoreSuite) TestEmailUniqueness() {
	first := s.newAccount("Alice", "alice@gorefurbish.com")
	s.Require().NoError(s.store.CreateIfEmailAvailable(s.ctx, first))

	s.Run("rejects a duplicate email in any case", func() {
		err := s.store.CreateIfEmailAvailable(s.ctx, s.newAccount("Other Alice", " ALICE@gorefurbish.com"))
		s.ErrorIs(err, sentinel.ErrAlreadyUsed)
	})

	s.Run("rejects an email change onto a taken address", func() {
		second := s.newAccount("Bob", "bob@gorefurbish.com")
		s.Require().NoError(s.store.CreateIfEmailAvailable(s.ctx, second))

		_, err := s.store.Execute(s.ctx, second.ID, func(a models.Account) (models.Account, error) {
			a.Email = "Alice@gorefurbish.com"
			return a, nil
		})
		s.ErrorIs(err, sentinel.ErrAlreadyUsed)

		found, _ := s.store.FindByID(s.ctx, second.ID)
		s.Equal("bob@gorefurbish.com", found.Email)
	})

	s.Run("frees the old address after a change", func() {
		_, err := s.store.Execute(s.ctx, first.ID, func(a models.Account) (models.Account, error) {
			a.Email = "alice.j@gorefurbish.com"
			return a, nil
		})
		s.Require().NoError(err)
		s.NoError(s.store.CreateIfEmailAvailable(s.ctx, s.newAccount("New", "alice@gorefurbish.com")))
	})
}

func (s *StaffStoreSuite) TestExecuteAndDelete() {
	a := s.newAccount("Eve", "eve@gorefurbish.com")
	s.Require().NoError(s.store.CreateIfEmailAvailable(s.ctx, a))

	s.Run("callback error leaves the account unchanged", func() {
		boom := errors.New("boom")
		_, err := s.store.Execute(s.ctx, a.ID, func(acc models.Account) (models.Account, error) {
			acc.Name = "changed"
			return acc, boom
		})
		s.ErrorIs(err, boom)
		found, _ := s.store.FindByID(s.ctx, a.ID)
		s.Equal("Eve", found.Name)
	})

	s.Run("delete frees the email and preserves order of the rest", func() {
		b := s.newAccount("Frank", "frank@gorefurbish.com")
		s.Require().NoError(s.store.CreateIfEmailAvailable(s.ctx, b))

		removed, err := s.store.Delete(s.ctx, a.ID)
		s.Require().NoError(err)
		s.Equal("Eve", removed.Name)

		list, _ := s.store.List(s.ctx)
		s.Require().Len(list, 1)
		s.Equal(b.ID, list[0].ID)
		s.NoError(s.store.CreateIfEmailAvailable(s.ctx, s.newAccount("Eve 2", "eve@gorefurbish.com")))

		_, err = s.store.Delete(s.ctx, a.ID)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *StaffStoreSuite) TestSeedDemoStaff() {
	s.Require().NoError(SeedDemoStaff(s.ctx, s.store, secrets.NewHasher(bcrypt.MinCost)))

	list, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	for _, a := range list {
		s.NoError(a.Validate(), a.Name)
		s.NotEmpty(a.PasswordHash)
	}
	s.Equal(SeedStaffID(1), list[0].ID)
	s.Len(list[0].Permissions, 11)
	s.Equal(models.StatusInactive, list[2].Status)

	s.Error(SeedDemoStaff(s.ctx, s.store, secrets.NewHasher(bcrypt.MinCost)), "seeding twice collides on email")
}
