package models

// Lifecycle statuses shared by the three review-item tables. A status is
// terminal once it leaves pending; rows are never reassigned or deleted
// after that.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Decision actions recorded in moderation_actions.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)
