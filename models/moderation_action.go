package models

import "time"

// ModerationAction is the append-only audit record of review decisions.
// Rows are never updated or deleted; the participation gate counts them to
// decide whether a user has done enough review work.
type ModerationAction struct {
	ActionID    int       `gorm:"primaryKey;column:action_id" json:"action_id"`
	ModeratorID int       `gorm:"column:moderator_id" json:"moderator_id"`
	TargetType  string    `gorm:"column:target_type" json:"target_type"`
	TargetID    int       `gorm:"column:target_id" json:"target_id"`
	Action      string    `gorm:"column:action" json:"action"`
	Note        *string   `gorm:"column:note" json:"note,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`

	// Relations
	Moderator *User `gorm:"foreignKey:ModeratorID" json:"moderator,omitempty"`
}

func (ModerationAction) TableName() string {
	return "moderation_actions"
}
