package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"accountability-api/config"
	"accountability-api/models"
	"accountability-api/services"

	"github.com/gin-gonic/gin"
)

// GetGateStatus reports the caller's participation gate.
func GetGateStatus(c *gin.Context) {
	var userID *int
	if id, ok := currentUserID(c); ok {
		userID = &id
	}

	gate, err := services.NewGateService(config.DB).CheckGate(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check participation gate"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"gate":    gate,
	})
}

// ClaimNext assigns the next eligible review item to the calling moderator.
// An empty queue is a normal outcome, returned as a null assignment.
func ClaimNext(c *gin.Context) {
	moderatorID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	svc := services.NewReviewQueueService(config.DB)

	// Re-entry stays unconditional: a moderator who already holds an item
	// gets it back even if the gate has tightened since they claimed it.
	ref, err := svc.CurrentAssignment(moderatorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to claim review item"})
		return
	}
	if ref == nil {
		if !passesGate(c, moderatorID) {
			return
		}

		ref, err = svc.ClaimNext(moderatorID)
		if err != nil {
			if errors.Is(err, services.ErrNoWorkAvailable) {
				c.JSON(http.StatusOK, gin.H{
					"success":    true,
					"assignment": nil,
					"message":    "No review items available",
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to claim review item"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"assignment": ref,
		"item":       loadItemDetail(*ref),
	})
}

// GetCurrentAssignment returns the item the moderator currently holds.
func GetCurrentAssignment(c *gin.Context) {
	moderatorID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	ref, err := services.NewReviewQueueService(config.DB).CurrentAssignment(moderatorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load assignment"})
		return
	}
	if ref == nil {
		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"assignment": nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"assignment": ref,
		"item":       loadItemDetail(*ref),
	})
}

type DecisionRequest struct {
	Action string `json:"action" binding:"required"` // approve|reject
	Note   string `json:"note"`
}

// Decide applies an approve/reject decision to an assigned item. Error
// mapping keeps authorization, conflict and not-found outcomes distinct so
// moderators can tell "no longer pending" from "not yours".
func Decide(c *gin.Context) {
	moderatorID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	kind, ok := services.ParseKind(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown review item kind"})
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review item ID"})
		return
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ref := services.ItemRef{Kind: kind, ID: id}
	svc := services.NewDecisionService(config.DB, services.NewScoringClient())
	if err := svc.Decide(moderatorID, ref, req.Action, req.Note); err != nil {
		status, message := decisionErrorResponse(err)
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Decision recorded",
		"item":    loadItemDetail(ref),
	})
}

func decisionErrorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrItemNotFound):
		return http.StatusNotFound, "Review item not found"
	case errors.Is(err, services.ErrAlreadyProcessed):
		return http.StatusConflict, "This item is no longer pending"
	case errors.Is(err, services.ErrNotAssigned):
		return http.StatusForbidden, "This item is not assigned to you"
	case errors.Is(err, services.ErrSelfReview):
		return http.StatusForbidden, "You cannot review your own submission"
	case errors.Is(err, services.ErrNoteRequired):
		return http.StatusBadRequest, "A note is required when rejecting"
	case errors.Is(err, services.ErrInvalidAction):
		return http.StatusBadRequest, "Action must be 'approve' or 'reject'"
	case errors.Is(err, services.ErrTenureOverlap):
		return http.StatusConflict, "An open tenure for this role already exists"
	case errors.Is(err, services.ErrTenureAlreadyEnded):
		return http.StatusConflict, "The target tenure is already ended"
	default:
		return http.StatusInternalServerError, "Failed to record decision"
	}
}

// GetQueueStats reports pending/assigned counts per kind.
func GetQueueStats(c *gin.Context) {
	stats, err := services.NewReviewQueueService(config.DB).Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch queue stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   stats,
	})
}

// RunReaper releases assignments held past the timeout. Admin-triggered;
// the cron binary in cmd/reaper does the same on a schedule.
func RunReaper(c *gin.Context) {
	type ReaperRequest struct {
		MaxAgeHours float64 `json:"max_age_hours"`
	}

	var req ReaperRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
	}

	maxAge := services.DefaultAssignmentMaxAge
	if req.MaxAgeHours > 0 {
		maxAge = time.Duration(req.MaxAgeHours * float64(time.Hour))
	}

	released, err := services.NewReviewQueueService(config.DB).ReleaseExpired(maxAge)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to release expired assignments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"released": released,
	})
}

// loadItemDetail fetches the kind-specific payload for an assignment
// response. Best effort; a nil detail never fails the request.
func loadItemDetail(ref services.ItemRef) interface{} {
	switch ref.Kind {
	case services.KindEvidence:
		var item models.Evidence
		if err := config.DB.Preload("Company").Where("evidence_id = ?", ref.ID).First(&item).Error; err == nil {
			return item
		}
	case services.KindCompanyRequest:
		var item models.CompanyRequest
		if err := config.DB.Where("request_id = ?", ref.ID).First(&item).Error; err == nil {
			return item
		}
	case services.KindLeaderTenureRequest:
		var item models.LeaderTenureRequest
		if err := config.DB.Preload("Company").Where("request_id = ?", ref.ID).First(&item).Error; err == nil {
			return item
		}
	}
	return nil
}
