package audit

import "context"

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subjectType SubjectType, subjectID string) ([]Event, error)
	// ListRecent returns up to limit events, newest first. A limit of zero
	// or less returns everything.
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
