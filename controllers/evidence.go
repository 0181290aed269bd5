package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"accountability-api/config"
	"accountability-api/models"
	"accountability-api/services"
	"accountability-api/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateEvidenceRequest struct {
	CompanyID int    `json:"company_id" binding:"required"`
	Title     string `json:"title" binding:"required"`
	Summary   string `json:"summary" binding:"required"`
	SourceURL string `json:"source_url"`
}

// CreateEvidence files a new evidence submission into the pending queue.
// The participation gate is checked before the write.
func CreateEvidence(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	if !passesGate(c, userID) {
		return
	}

	var req CreateEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.SourceURL != "" && !utils.ValidateURL(req.SourceURL) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source_url must be an absolute http(s) URL"})
		return
	}

	var company models.Company
	if err := config.DB.Where("company_id = ?", req.CompanyID).First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load company"})
		return
	}

	now := time.Now()
	evidence := models.Evidence{
		CompanyID:   req.CompanyID,
		Title:       utils.SanitizeInput(req.Title),
		Summary:     utils.SanitizeInput(req.Summary),
		SourceURL:   utils.SanitizeInput(req.SourceURL),
		Status:      models.StatusPending,
		SubmittedBy: &userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := config.DB.Create(&evidence).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create evidence"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"evidence": evidence,
	})
}

// GetMyEvidence lists the caller's own submissions, newest first.
func GetMyEvidence(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var items []models.Evidence
	if err := config.DB.Preload("Company").
		Where("submitted_by = ?", userID).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch evidence"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"evidence": items,
		"total":    len(items),
	})
}

// GetEvidence returns one submission. Submitters see their own items;
// moderators may see anything.
func GetEvidence(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid evidence ID"})
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var evidence models.Evidence
	if err := config.DB.Preload("Company").
		Where("evidence_id = ?", id).
		First(&evidence).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Evidence not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load evidence"})
		return
	}

	roleID, _ := c.Get("roleID")
	isModerator := roleID == models.RoleModerator || roleID == models.RoleAdmin
	if !isModerator && (evidence.SubmittedBy == nil || *evidence.SubmittedBy != userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"evidence": evidence,
	})
}

// passesGate enforces the participation gate before submissions and claims.
// Writes the 403 response itself when the gate denies.
func passesGate(c *gin.Context, userID int) bool {
	gate, err := services.NewGateService(config.DB).CheckGate(&userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check participation gate"})
		return false
	}
	if !gate.Allowed {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Complete more reviews before taking this action",
			"gate":  gate,
		})
		return false
	}
	return true
}
