package service

import (
	"context"
	"slices"

	"refurb/internal/customer/models"
	id "refurb/pkg/domain"
)

// ToggleSelection flips a customer's selection and reports whether it is
// now selected.
func (s *Service) ToggleSelection(ctx context.Context, customerID id.CustomerID) (bool, error) {
	if _, err := s.store.FindByID(ctx, customerID); err != nil {
		return false, wrapStoreErr(err, "failed to load customer")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := slices.Index(s.selected, customerID); i >= 0 {
		s.selected = slices.Delete(s.selected, i, i+1)
		return false, nil
	}
	s.selected = append(s.selected, customerID)
	return true, nil
}

// SelectAll selects every customer matching f. When all of them are
// already selected it deselects them instead. It returns the selection
// size.
func (s *Service) SelectAll(ctx context.Context, f models.Filter) (int, error) {
	visible, err := s.List(ctx, f)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all := true
	for _, c := range visible {
		if !slices.Contains(s.selected, c.ID) {
			all = false
			break
		}
	}
	if all {
		s.selected = slices.DeleteFunc(s.selected, func(cid id.CustomerID) bool {
			return slices.ContainsFunc(visible, func(c models.Customer) bool { return c.ID == cid })
		})
		return len(s.selected), nil
	}
	for _, c := range visible {
		if !slices.Contains(s.selected, c.ID) {
			s.selected = append(s.selected, c.ID)
		}
	}
	return len(s.selected), nil
}

func (s *Service) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
}

// Selected lists selected ids in selection order.
func (s *Service) Selected() []id.CustomerID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := slices.Clone(s.selected)
	if out == nil {
		out = []id.CustomerID{}
	}
	return out
}
