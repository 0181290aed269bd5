package services

import (
	"fmt"
	"strings"

	"accountability-api/models"

	"gorm.io/gorm"
)

// GateStatus is the participation gate result. Computed fresh on every
// check; never cached across requests.
type GateStatus struct {
	PendingBacklogSize int  `json:"pendingBacklogSize"`
	RequiredReviews    int  `json:"requiredReviews"`
	CompletedReviews   int  `json:"completedReviews"`
	Allowed            bool `json:"allowed"`
}

// gateTiers maps the current pending backlog size to the number of
// completed reviews required before a user may claim or submit. Kept
// table-driven so the policy can change without touching CheckGate.
var gateTiers = []struct {
	MinBacklog int
	Required   int
}{
	{0, 0},
	{1, 1},
	{2, 2},
}

// RequiredReviewsFor resolves the gate tier for a backlog size.
func RequiredReviewsFor(backlog int) int {
	required := 0
	for _, tier := range gateTiers {
		if backlog >= tier.MinBacklog {
			required = tier.Required
		}
	}
	return required
}

type GateService struct {
	db *gorm.DB
}

func NewGateService(db *gorm.DB) *GateService {
	return &GateService{db: db}
}

// CheckGate computes the gate for a user. Completed reviews are the
// lifetime count of their moderation actions. A nil userID is an anonymous
// caller and is always denied.
func (s *GateService) CheckGate(userID *int) (GateStatus, error) {
	backlog, err := s.pendingBacklogSize()
	if err != nil {
		return GateStatus{}, err
	}

	status := GateStatus{
		PendingBacklogSize: backlog,
		RequiredReviews:    RequiredReviewsFor(backlog),
	}
	if userID == nil {
		return status, nil
	}

	var completed int64
	if err := s.db.Model(&models.ModerationAction{}).
		Where("moderator_id = ?", *userID).
		Count(&completed).Error; err != nil {
		return GateStatus{}, err
	}

	status.CompletedReviews = int(completed)
	status.Allowed = status.CompletedReviews >= status.RequiredReviews
	return status, nil
}

// pendingBacklogSize counts pending items across all kind tables in one
// round trip.
func (s *GateService) pendingBacklogSize() (int, error) {
	parts := make([]string, 0, len(reviewKinds))
	for _, kind := range reviewKinds {
		t := kindTables[kind]
		parts = append(parts, fmt.Sprintf(
			"(SELECT COUNT(*) FROM %s WHERE status = '%s')", t.table, models.StatusPending))
	}
	query := "SELECT " + strings.Join(parts, " + ") + " AS backlog"

	var row struct {
		Backlog int
	}
	if err := s.db.Raw(query).Scan(&row).Error; err != nil {
		return 0, err
	}
	return row.Backlog, nil
}
