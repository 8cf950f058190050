package sentinel

import "errors"

// Sentinel errors for facts reported by stores and upstream gateways. Callers
// wrap them with %w; services translate them into domain errors.
//
//   - ErrNotFound: the record does not exist
//   - ErrAlreadyUsed: a unique key (id, email) is already taken
//   - ErrInvalidState: the record is in the wrong state for the operation
//
// Input validation failures belong in pkg/domain-errors instead.
var (
	ErrNotFound     = errors.New("not found")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
)
