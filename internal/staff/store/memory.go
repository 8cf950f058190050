// Package store keeps staff accounts in memory with case-insensitive email
// uniqueness.
package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"refurb/internal/staff/models"
	id "refurb/pkg/domain"
	"refurb/pkg/platform/sentinel"
)

// InMemory is safe for concurrent use. Accounts are stored by value and
// cloned on the way in and out.
type InMemory struct {
	mu       sync.RWMutex
	accounts map[id.StaffID]models.Account
	byEmail  map[string]id.StaffID
	order    []id.StaffID
}

func NewInMemory() *InMemory {
	return &InMemory{
		accounts: make(map[id.StaffID]models.Account),
		byEmail:  make(map[string]id.StaffID),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateIfEmailAvailable inserts a new account. A taken email yields
// sentinel.ErrAlreadyUsed.
func (s *InMemory) CreateIfEmailAvailable(_ context.Context, account models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[account.ID]; exists {
		return fmt.Errorf("staff %s: %w", account.ID, sentinel.ErrAlreadyUsed)
	}
	key := emailKey(account.Email)
	if _, taken := s.byEmail[key]; taken {
		return fmt.Errorf("email %s: %w", key, sentinel.ErrAlreadyUsed)
	}
	s.accounts[account.ID] = account.Clone()
	s.byEmail[key] = account.ID
	s.order = append(s.order, account.ID)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, staffID id.StaffID) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[staffID]
	if !ok {
		return models.Account{}, sentinel.ErrNotFound
	}
	return a.Clone(), nil
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	staffID, ok := s.byEmail[emailKey(email)]
	if !ok {
		return models.Account{}, sentinel.ErrNotFound
	}
	return s.accounts[staffID].Clone(), nil
}

// List returns accounts in creation order.
func (s *InMemory) List(_ context.Context) ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Account, 0, len(s.order))
	for _, staffID := range s.order {
		out = append(out, s.accounts[staffID].Clone())
	}
	return out, nil
}

// Execute applies fn to the current account under the store lock and saves
// what it returns. An email change must stay unique.
func (s *InMemory) Execute(_ context.Context, staffID id.StaffID, fn func(models.Account) (models.Account, error)) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.accounts[staffID]
	if !ok {
		return models.Account{}, sentinel.ErrNotFound
	}
	next, err := fn(current.Clone())
	if err != nil {
		return models.Account{}, err
	}
	next.ID = staffID

	oldKey, newKey := emailKey(current.Email), emailKey(next.Email)
	if oldKey != newKey {
		if _, taken := s.byEmail[newKey]; taken {
			return models.Account{}, fmt.Errorf("email %s: %w", newKey, sentinel.ErrAlreadyUsed)
		}
		delete(s.byEmail, oldKey)
		s.byEmail[newKey] = staffID
	}
	s.accounts[staffID] = next.Clone()
	return next, nil
}

// Delete removes an account and returns what was removed.
func (s *InMemory) Delete(_ context.Context, staffID id.StaffID) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[staffID]
	if !ok {
		return models.Account{}, sentinel.ErrNotFound
	}
	delete(s.accounts, staffID)
	delete(s.byEmail, emailKey(a.Email))
	for i, existing := range s.order {
		if existing == staffID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return a, nil
}

func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts), nil
}
