package models

import "time"

// Evidence is a user-submitted accountability report against a company.
// Summary is stored as markdown and sanitized at render time.
type Evidence struct {
	EvidenceID          int        `gorm:"primaryKey;column:evidence_id" json:"evidence_id"`
	CompanyID           int        `gorm:"column:company_id" json:"company_id"`
	Title               string     `gorm:"column:title" json:"title"`
	Summary             string     `gorm:"column:summary" json:"summary"`
	SourceURL           string     `gorm:"column:source_url" json:"source_url"`
	Status              string     `gorm:"column:status" json:"status"`
	SubmittedBy         *int       `gorm:"column:submitted_by" json:"submitted_by,omitempty"`
	AssignedModeratorID *int       `gorm:"column:assigned_moderator_id" json:"assigned_moderator_id,omitempty"`
	AssignedAt          *time.Time `gorm:"column:assigned_at" json:"assigned_at,omitempty"`
	ModeratorID         *int       `gorm:"column:moderator_id" json:"moderator_id,omitempty"`
	DecisionReason      *string    `gorm:"column:decision_reason" json:"decision_reason,omitempty"`
	ModeratedAt         *time.Time `gorm:"column:moderated_at" json:"moderated_at,omitempty"`
	CreatedAt           time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"column:updated_at" json:"updated_at"`

	// Relations
	Company   *Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Submitter *User    `gorm:"foreignKey:SubmittedBy" json:"submitter,omitempty"`
}

func (Evidence) TableName() string {
	return "evidence"
}
