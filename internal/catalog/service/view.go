package service

import (
	"context"
	"slices"

	"refurb/internal/catalog/models"
	id "refurb/pkg/domain"
	dErrors "refurb/pkg/domain-errors"
)

func (s *Service) Filter() models.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

func (s *Service) Pagination() models.Pagination {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pagination
}

// SetFilter replaces the filter and returns to the first page.
func (s *Service) SetFilter(f models.Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f.Normalize()
	s.pagination.Page = 1
}

func (s *Service) SetPage(page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pagination = models.Pagination{Page: page, Limit: s.pagination.Limit}.Normalize()
}

// SearchAsYouType updates the search term and schedules a fetch once input
// has been quiet for the debounce window. Earlier pending fetches are
// cancelled.
func (s *Service) SearchAsYouType(term string) {
	s.mu.Lock()
	f := s.filter
	f.Search = term
	s.filter = f.Normalize()
	s.pagination.Page = 1
	s.mu.Unlock()

	s.debouncer.Trigger(func() {
		// failures are already reported through the notifier
		_, _ = s.Refresh(context.Background())
	})
}

// ToggleSelection flips a cached product's selection and reports whether it
// is now selected.
func (s *Service) ToggleSelection(productID id.ProductID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[productID]; !ok {
		return false, dErrors.New(dErrors.CodeNotFound, msgProductNotFound)
	}
	if _, ok := s.selected[productID]; ok {
		delete(s.selected, productID)
		return false, nil
	}
	s.selected[productID] = struct{}{}
	return true, nil
}

// SelectAll selects every product on the current page.
func (s *Service) SelectAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, pid := range s.order {
		s.selected[pid] = struct{}{}
	}
	return len(s.selected)
}

func (s *Service) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.selected)
}

// Selected lists selected ids in display order, then any selected products
// pinned outside the page.
func (s *Service) Selected() []id.ProductID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]id.ProductID, 0, len(s.selected))
	for _, pid := range s.order {
		if _, ok := s.selected[pid]; ok {
			out = append(out, pid)
		}
	}
	for pid := range s.selected {
		if !slices.Contains(out, pid) {
			out = append(out, pid)
		}
	}
	return out
}
