package controllers

import (
	"errors"
	"net/http"

	"accountability-api/config"
	"accountability-api/models"
	"accountability-api/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListCompanies is the public company directory.
func ListCompanies(c *gin.Context) {
	var companies []models.Company
	if err := config.DB.Order("name ASC").Find(&companies).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch companies"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"companies": companies,
		"total":     len(companies),
	})
}

// GetCompanyBySlug returns the public company page: profile, leadership
// tenures and approved evidence with rendered summaries.
func GetCompanyBySlug(c *gin.Context) {
	slug := c.Param("slug")

	var company models.Company
	if err := config.DB.Preload("Tenures.Leader").
		Where("slug = ?", slug).
		First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load company"})
		return
	}

	var evidence []models.Evidence
	if err := config.DB.Where("company_id = ? AND status = ?", company.CompanyID, models.StatusApproved).
		Order("moderated_at DESC").
		Find(&evidence).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load evidence"})
		return
	}

	type renderedEvidence struct {
		models.Evidence
		SummaryHTML string `json:"summary_html"`
	}
	rendered := make([]renderedEvidence, 0, len(evidence))
	for _, item := range evidence {
		rendered = append(rendered, renderedEvidence{
			Evidence:    item,
			SummaryHTML: string(utils.RenderMarkdown(item.Summary)),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"company":  company,
		"evidence": rendered,
	})
}
