package models

import "time"

// Tenure-change request types.
const (
	TenureChangeAdd = "add"
	TenureChangeEnd = "end"
)

// LeaderTenureRequest proposes adding a leadership tenure to a company or
// closing out an existing one. For "end" requests TenureID points at the
// tenure whose end_date should be set.
type LeaderTenureRequest struct {
	RequestID           int        `gorm:"primaryKey;column:request_id" json:"request_id"`
	CompanyID           int        `gorm:"column:company_id" json:"company_id"`
	ChangeType          string     `gorm:"column:change_type" json:"change_type"`
	LeaderName          string     `gorm:"column:leader_name" json:"leader_name"`
	LeaderExternalID    *string    `gorm:"column:leader_external_id" json:"leader_external_id,omitempty"`
	RoleTitle           string     `gorm:"column:role_title" json:"role_title"`
	StartDate           *time.Time `gorm:"column:start_date" json:"start_date,omitempty"`
	EndDate             *time.Time `gorm:"column:end_date" json:"end_date,omitempty"`
	TenureID            *int       `gorm:"column:tenure_id" json:"tenure_id,omitempty"`
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

func (LeaderTenureRequest) TableName() string {
	return "leader_tenure_requests"
}
