package models

// ProductStatus is the moderation state of a listing.
type ProductStatus string

const (
	StatusPending  ProductStatus = "pending"
	StatusApproved ProductStatus = "approved"
	StatusRejected ProductStatus = "rejected"
)

func (s ProductStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// CanTransitionTo encodes the moderation state machine:
// pending → approved | rejected, and approved | rejected → pending.
func (s ProductStatus) CanTransitionTo(target ProductStatus) bool {
	switch s {
	case StatusPending:
		return target == StatusApproved || target == StatusRejected
	case StatusApproved, StatusRejected:
		return target == StatusPending
	}
	return false
}

// ParseStatus accepts a known status string.
func ParseStatus(raw string) (ProductStatus, bool) {
	s := ProductStatus(raw)
	return s, s.IsValid()
}

// PastTense is the verb used in bulk summaries ("3 product(s) approved").
func (s ProductStatus) PastTense() string {
	switch s {
	case StatusApproved:
		return "approved"
	case StatusRejected:
		return "rejected"
	default:
		return "updated"
	}
}
