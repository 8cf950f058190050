package models

import (
	"strings"
)

// FilterAll disables a status or category filter.
const FilterAll = "all"

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Filter narrows the listing. Search is case-insensitive over title,
// seller and category.
type Filter struct {
	Search   string `json:"search"`
	Status   string `json:"status"`
	Category string `json:"category"`
}

// DefaultFilter shows every product.
func DefaultFilter() Filter {
	return Filter{Status: FilterAll, Category: FilterAll}
}

// Normalize trims input and maps empty selectors to FilterAll.
func (f Filter) Normalize() Filter {
	f.Search = strings.TrimSpace(f.Search)
	f.Status = strings.TrimSpace(f.Status)
	f.Category = strings.TrimSpace(f.Category)
	if f.Status == "" {
		f.Status = FilterAll
	}
	if f.Category == "" {
		f.Category = FilterAll
	}
	return f
}

func (f Filter) Matches(p Product) bool {
	if f.Status != "" && f.Status != FilterAll && string(p.Status) != f.Status {
		return false
	}
	if f.Category != "" && f.Category != FilterAll && !strings.EqualFold(p.Category, f.Category) {
		return false
	}
	if f.Search == "" {
		return true
	}
	q := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(p.Seller), q) ||
		strings.Contains(strings.ToLower(p.Category), q)
}

// Pagination is 1-based.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func DefaultPagination() Pagination {
	return Pagination{Page: 1, Limit: DefaultPageLimit}
}

// Normalize clamps page and limit into range.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// Offset is the zero-based index of the page's first item.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Page is one fetched slice of the listing.
type Page struct {
	Products   []Product `json:"products"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"total_pages"`
}

// TotalPages is ceil(total/limit).
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
