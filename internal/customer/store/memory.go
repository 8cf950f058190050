// Package store keeps marketplace customers in memory in join order.
package store

import (
	"context"
	"fmt"
	"sync"

	"refurb/internal/customer/models"
	id "refurb/pkg/domain"
	"refurb/pkg/platform/sentinel"
)

// InMemory is safe for concurrent use. Customers are cloned on the way in
// and out.
type InMemory struct {
	mu        sync.RWMutex
	customers map[id.CustomerID]models.Customer
	order     []id.CustomerID
}

func NewInMemory() *InMemory {
	return &InMemory{customers: make(map[id.CustomerID]models.Customer)}
}

// Create inserts a new customer. A taken id yields sentinel.ErrAlreadyUsed.
func (s *InMemory) Create(_ context.Context, c models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.customers[c.ID]; exists {
		return fmt.Errorf("customer %s: %w", c.ID, sentinel.ErrAlreadyUsed)
	}
	s.customers[c.ID] = c.Clone()
	s.order = append(s.order, c.ID)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, customerID id.CustomerID) (models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[customerID]
	if !ok {
		return models.Customer{}, sentinel.ErrNotFound
	}
	return c.Clone(), nil
}

// List returns customers in join order.
func (s *InMemory) List(_ context.Context) ([]models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Customer, 0, len(s.order))
	for _, customerID := range s.order {
		out = append(out, s.customers[customerID].Clone())
	}
	return out, nil
}

// SaveAll replaces every given customer or none of them. An unknown id
// yields sentinel.ErrNotFound.
func (s *InMemory) SaveAll(_ context.Context, customers []models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range customers {
		if _, ok := s.customers[c.ID]; !ok {
			return fmt.Errorf("customer %s: %w", c.ID, sentinel.ErrNotFound)
		}
	}
	for _, c := range customers {
		s.customers[c.ID] = c.Clone()
	}
	return nil
}
