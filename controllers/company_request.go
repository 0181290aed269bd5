package controllers

import (
	"net/http"
	"time"

	"accountability-api/config"
	"accountability-api/models"
	"accountability-api/utils"

	"github.com/gin-gonic/gin"
)

type CreateCompanyRequestRequest struct {
	Name        string `json:"name" binding:"required"`
	Website     string `json:"website"`
	Description string `json:"description"`

	// Optional staged founding tenure, materialized on approval.
	LeaderName       string `json:"leader_name"`
	LeaderExternalID string `json:"leader_external_id"`
	LeaderRole       string `json:"leader_role"`
	LeaderStartDate  string `json:"leader_start_date"` // YYYY-MM-DD
}

// CreateCompanyRequest files a request to add a company. Gate-checked.
func CreateCompanyRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	if !passesGate(c, userID) {
		return
	}

	var req CreateCompanyRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Website != "" && !utils.ValidateURL(req.Website) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "website must be an absolute http(s) URL"})
		return
	}
	if req.LeaderName != "" && req.LeaderRole == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "leader_role is required when leader_name is set"})
		return
	}

	var startDate *time.Time
	if req.LeaderStartDate != "" {
		parsed, err := time.Parse("2006-01-02", req.LeaderStartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "leader_start_date must be YYYY-MM-DD"})
			return
		}
		startDate = &parsed
	}

	now := time.Now()
	request := models.CompanyRequest{
		Name:             utils.SanitizeInput(req.Name),
		Website:          utils.SanitizeInput(req.Website),
		Description:      utils.SanitizeInput(req.Description),
		LeaderName:       ptr(utils.SanitizeInput(req.LeaderName)),
		LeaderExternalID: ptr(utils.SanitizeInput(req.LeaderExternalID)),
		LeaderRole:       ptr(utils.SanitizeInput(req.LeaderRole)),
		LeaderStartDate:  startDate,
		Status:           models.StatusPending,
		SubmittedBy:      &userID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := config.DB.Create(&request).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create company request"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"request": request,
	})
}

// GetMyCompanyRequests lists the caller's company requests, newest first.
func GetMyCompanyRequests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var requests []models.CompanyRequest
	if err := config.DB.Where("submitted_by = ?", userID).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch company requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"requests": requests,
		"total":    len(requests),
	})
}
