package services

import (
	"errors"
	"fmt"
	"time"

	"accountability-api/models"
	"accountability-api/utils"

	"gorm.io/gorm"
)

// How many numeric slug suffixes to try before falling back to a timestamp
// suffix.
const maxSlugAttempts = 5

// CompanyMaterializer turns approved requests into companies, leaders and
// tenures. All methods run inside the caller's decision transaction so a
// conflict rolls the whole decision back.
type CompanyMaterializer struct{}

// MaterializeCompany creates the company described by an approved request,
// picking a slug that does not collide with existing companies.
func (CompanyMaterializer) MaterializeCompany(tx *gorm.DB, req *models.CompanyRequest) (*models.Company, error) {
	slug, err := availableCompanySlug(tx, utils.Slugify(req.Name))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	company := &models.Company{
		Name:        req.Name,
		Slug:        slug,
		Website:     req.Website,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := tx.Create(company).Error; err != nil {
		return nil, err
	}
	return company, nil
}

func availableCompanySlug(tx *gorm.DB, base string) (string, error) {
	if base == "" {
		base = "company"
	}
	for i := 0; i < maxSlugAttempts; i++ {
		candidate := base
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d", base, i+1)
		}
		var n int64
		if err := tx.Model(&models.Company{}).Where("slug = ?", candidate).Count(&n).Error; err != nil {
			return "", err
		}
		if n == 0 {
			return candidate, nil
		}
	}
	// Numeric suffixes exhausted; a unix-timestamp suffix breaks the tie.
	return fmt.Sprintf("%s-%d", base, time.Now().Unix()), nil
}

// EnsureLeaderTenure resolves or creates the leader and inserts a tenure
// row. An open-ended tenure (nil end date) conflicts when the company
// already has an open tenure for the same role title.
func (CompanyMaterializer) EnsureLeaderTenure(tx *gorm.DB, companyID int, leaderName string, externalID *string, roleTitle string, start, end *time.Time) error {
	leader, err := resolveOrCreateLeader(tx, leaderName, externalID)
	if err != nil {
		return err
	}

	if end == nil {
		var open int64
		if err := tx.Model(&models.LeaderTenure{}).
			Where("company_id = ? AND role_title = ? AND end_date IS NULL", companyID, roleTitle).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return ErrTenureOverlap
		}
	}

	tenure := models.LeaderTenure{
		LeaderID:  leader.LeaderID,
		CompanyID: companyID,
		RoleTitle: roleTitle,
		StartDate: start,
		EndDate:   end,
		CreatedAt: time.Now(),
	}
	return tx.Create(&tenure).Error
}

// resolveOrCreateLeader looks a leader up by external identifier first,
// then by slugified name, and creates one when neither matches.
func resolveOrCreateLeader(tx *gorm.DB, name string, externalID *string) (*models.Leader, error) {
	var leader models.Leader

	if externalID != nil && *externalID != "" {
		err := tx.Where("external_id = ?", *externalID).First(&leader).Error
		if err == nil {
			return &leader, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	slug := utils.Slugify(name)
	err := tx.Where("slug = ?", slug).First(&leader).Error
	if err == nil {
		return &leader, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now()
	leader = models.Leader{
		Name:       name,
		Slug:       slug,
		ExternalID: externalID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := tx.Create(&leader).Error; err != nil {
		return nil, err
	}
	return &leader, nil
}

// CloseTenure sets the end date on a still-open tenure. The update is
// conditional on end_date IS NULL so a duplicate close surfaces as a
// conflict instead of rewriting history.
func (CompanyMaterializer) CloseTenure(tx *gorm.DB, tenureID int, endDate time.Time) error {
	result := tx.Exec(
		"UPDATE leader_tenures SET end_date = ? WHERE tenure_id = ? AND end_date IS NULL",
		endDate, tenureID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTenureAlreadyEnded
	}
	return nil
}
