package controllers

import (
	"errors"
	"net/http"
	"time"

	"accountability-api/config"
	"accountability-api/models"
	"accountability-api/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateTenureRequestRequest struct {
	CompanyID        int    `json:"company_id" binding:"required"`
	ChangeType       string `json:"change_type" binding:"required"` // add|end
	LeaderName       string `json:"leader_name"`
	LeaderExternalID string `json:"leader_external_id"`
	RoleTitle        string `json:"role_title"`
	StartDate        string `json:"start_date"` // YYYY-MM-DD
	EndDate          string `json:"end_date"`   // YYYY-MM-DD
	TenureID         int    `json:"tenure_id"`  // required for "end"
}

// CreateTenureRequest files a leader-tenure change request. Gate-checked.
func CreateTenureRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	if !passesGate(c, userID) {
		return
	}

	var req CreateTenureRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.ChangeType != models.TenureChangeAdd && req.ChangeType != models.TenureChangeEnd {
		c.JSON(http.StatusBadRequest, gin.H{"error": "change_type must be 'add' or 'end'"})
		return
	}
	if req.ChangeType == models.TenureChangeAdd && (req.LeaderName == "" || req.RoleTitle == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "leader_name and role_title are required for 'add'"})
		return
	}
	if req.ChangeType == models.TenureChangeEnd && req.TenureID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenure_id is required for 'end'"})
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD"})
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
	request := models.LeaderTenureRequest{
		CompanyID:        req.CompanyID,
		ChangeType:       req.ChangeType,
		LeaderName:       utils.SanitizeInput(req.LeaderName),
		LeaderExternalID: ptr(utils.SanitizeInput(req.LeaderExternalID)),
		RoleTitle:        utils.SanitizeInput(req.RoleTitle),
		StartDate:        startDate,
		EndDate:          endDate,
		Status:           models.StatusPending,
		SubmittedBy:      &userID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if req.TenureID > 0 {
		request.TenureID = &req.TenureID
	}
	if err := config.DB.Create(&request).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create tenure request"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"request": request,
	})
}

// GetMyTenureRequests lists the caller's tenure requests, newest first.
func GetMyTenureRequests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var requests []models.LeaderTenureRequest
	if err := config.DB.Preload("Company").
		Where("submitted_by = ?", userID).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tenure requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"requests": requests,
		"total":    len(requests),
	})
}

func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
