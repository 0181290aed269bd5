package models

import "time"

type Leader struct {
	LeaderID   int       `gorm:"primaryKey;column:leader_id" json:"leader_id"`
	Name       string    `gorm:"column:name" json:"name"`
	Slug       string    `gorm:"column:slug" json:"slug"`
	ExternalID *string   `gorm:"column:external_id" json:"external_id,omitempty"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// LeaderTenure is a time-bounded leadership role at a company. EndDate is
// null while the tenure is open; at most one open tenure may exist per
// company and role title.
type LeaderTenure struct {
	TenureID  int        `gorm:"primaryKey;column:tenure_id" json:"tenure_id"`
	LeaderID  int        `gorm:"column:leader_id" json:"leader_id"`
	CompanyID int        `gorm:"column:company_id" json:"company_id"`
	RoleTitle string     `gorm:"column:role_title" json:"role_title"`
	StartDate *time.Time `gorm:"column:start_date" json:"start_date,omitempty"`
	EndDate   *time.Time `gorm:"column:end_date" json:"end_date,omitempty"`
	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`

	// Relations
	Leader *Leader `gorm:"foreignKey:LeaderID" json:"leader,omitempty"`
}

func (Leader) TableName() string {
	return "leaders"
}

func (LeaderTenure) TableName() string {
	return "leader_tenures"
}
