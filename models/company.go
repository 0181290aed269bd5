package models

import "time"

// Company is materialized from an approved CompanyRequest and is the target
// of evidence submissions and score recomputation.
type Company struct {
	CompanyID       int        `gorm:"primaryKey;column:company_id" json:"company_id"`
	Name            string     `gorm:"column:name" json:"name"`
	Slug            string     `gorm:"column:slug;unique" json:"slug"`
	Website         string     `gorm:"column:website" json:"website"`
	Description     string     `gorm:"column:description" json:"description"`
	ReputationScore *float64   `gorm:"column:reputation_score" json:"reputation_score,omitempty"`
	ScoreUpdatedAt  *time.Time `gorm:"column:score_updated_at" json:"score_updated_at,omitempty"`
	CreatedAt       time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at" json:"updated_at"`

	// Relations
	Tenures []LeaderTenure `gorm:"foreignKey:CompanyID" json:"tenures,omitempty"`
}

func (Company) TableName() string {
	return "companies"
}
