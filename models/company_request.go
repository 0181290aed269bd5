package models

import "time"

// CompanyRequest asks moderators to add a company to the platform. The
// leader_* columns stage an optional founding tenure that is materialized
// together with the company on approval.
type CompanyRequest struct {
	RequestID           int        `gorm:"primaryKey;column:request_id" json:"request_id"`
	Name                string     `gorm:"column:name" json:"name"`
	Website             string     `gorm:"column:website" json:"website"`
	Description         string     `gorm:"column:description" json:"description"`
	LeaderName          *string    `gorm:"column:leader_name" json:"leader_name,omitempty"`
	LeaderExternalID    *string    `gorm:"column:leader_external_id" json:"leader_external_id,omitempty"`
	LeaderRole          *string    `gorm:"column:leader_role" json:"leader_role,omitempty"`
	LeaderStartDate     *time.Time `gorm:"column:leader_start_date" json:"leader_start_date,omitempty"`
	CreatedCompanyID    *int       `gorm:"column:created_company_id" json:"created_company_id,omitempty"`
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
	Submitter *User `gorm:"foreignKey:SubmittedBy" json:"submitter,omitempty"`
}

func (CompanyRequest) TableName() string {
	return "company_requests"
}
