package services

import "errors"

// Failure classes surfaced by the moderation workflow. Controllers map
// these onto HTTP statuses; none of them are retried automatically.
var (
	// An empty eligible backlog. A normal terminal state, not a fault.
	ErrNoWorkAvailable = errors.New("no review items available")

	ErrItemNotFound = errors.New("review item not found")

	// Conflict failures.
	ErrAlreadyProcessed   = errors.New("review item is no longer pending")
	ErrNotAssigned        = errors.New("review item is not assigned to you")
	ErrSelfReview         = errors.New("cannot review your own submission")
	ErrNoteRequired       = errors.New("a note is required when rejecting")
	ErrInvalidAction      = errors.New("action must be approve or reject")
	ErrTenureOverlap      = errors.New("an open tenure for this role already exists")
	ErrTenureAlreadyEnded = errors.New("tenure is already ended")
)
