package services

import (
	"fmt"
	"strings"
	"time"

	"accountability-api/models"

	"gorm.io/gorm"
)

const (
	// How many times ClaimNext re-selects after losing the conditional
	// update race before reporting an empty queue.
	maxClaimAttempts = 3

	// DefaultAssignmentMaxAge is how long a claim may sit untouched before
	// the reaper returns it to the pool.
	DefaultAssignmentMaxAge = 8 * time.Hour
)

// ReviewQueueService hands out pending review items to moderators and
// releases stale assignments. All exclusivity comes from single-row
// conditional updates; no lock is held across the read-then-write gap.
type ReviewQueueService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewReviewQueueService(db *gorm.DB) *ReviewQueueService {
	return &ReviewQueueService{db: db, now: time.Now}
}

type queueRow struct {
	Kind string
	ID   int
}

// unionSelect builds the cross-kind queue query. Each kind table
// contributes one subselect with the same WHERE tail, oldest row first.
func unionSelect(where string) string {
	parts := make([]string, 0, len(reviewKinds))
	for _, kind := range reviewKinds {
		t := kindTables[kind]
		parts = append(parts, fmt.Sprintf(
			"SELECT '%s' AS kind, %s AS id, created_at FROM %s WHERE status = '%s' AND %s",
			kind, t.idColumn, t.table, models.StatusPending, where))
	}
	return strings.Join(parts, " UNION ALL ") + " ORDER BY created_at ASC LIMIT 1"
}

// CurrentAssignment returns the pending item already claimed by the
// moderator, or nil when they hold nothing.
func (s *ReviewQueueService) CurrentAssignment(moderatorID int) (*ItemRef, error) {
	query := unionSelect("assigned_moderator_id = ?")

	var row queueRow
	result := s.db.Raw(query, moderatorID, moderatorID, moderatorID).Scan(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &ItemRef{Kind: ReviewKind(row.Kind), ID: row.ID}, nil
}

// oldestEligible picks the single oldest unassigned pending item across all
// kinds, excluding the moderator's own submissions.
func (s *ReviewQueueService) oldestEligible(moderatorID int) (*ItemRef, error) {
	query := unionSelect("assigned_moderator_id IS NULL AND (submitted_by IS NULL OR submitted_by <> ?)")

	var row queueRow
	result := s.db.Raw(query, moderatorID, moderatorID, moderatorID).Scan(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &ItemRef{Kind: ReviewKind(row.Kind), ID: row.ID}, nil
}

// ClaimNext assigns the next eligible item to the moderator. Re-entrant: a
// moderator who already holds a pending assignment gets that same item back
// instead of a second one. Returns ErrNoWorkAvailable when the eligible
// backlog is empty or every candidate was won by someone else.
func (s *ReviewQueueService) ClaimNext(moderatorID int) (*ItemRef, error) {
	existing, err := s.CurrentAssignment(moderatorID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	for attempt := 0; attempt < maxClaimAttempts; attempt++ {
		ref, err := s.oldestEligible(moderatorID)
		if err != nil {
			return nil, err
		}
		if ref == nil {
			return nil, ErrNoWorkAvailable
		}

		// Conditional claim: only lands if the row is still pending and
		// unassigned at write time.
		t := kindTables[ref.Kind]
		result := s.db.Exec(fmt.Sprintf(
			"UPDATE %s SET assigned_moderator_id = ?, assigned_at = ? WHERE %s = ? AND status = ? AND assigned_moderator_id IS NULL",
			t.table, t.idColumn),
			moderatorID, s.now(), ref.ID, models.StatusPending)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected > 0 {
			return ref, nil
		}
		// Another moderator won this row between select and update; pick
		// the next oldest candidate.
	}

	return nil, ErrNoWorkAvailable
}

// ReleaseExpired clears assignments held past maxAge, returning the items
// to the unassigned pool without touching their status. Safe to run
// concurrently with claims: the update re-checks the expiry predicate at
// write time.
func (s *ReviewQueueService) ReleaseExpired(maxAge time.Duration) (int64, error) {
	if maxAge <= 0 {
		maxAge = DefaultAssignmentMaxAge
	}
	cutoff := s.now().Add(-maxAge)

	var released int64
	for _, kind := range reviewKinds {
		t := kindTables[kind]
		result := s.db.Exec(fmt.Sprintf(
			"UPDATE %s SET assigned_moderator_id = NULL, assigned_at = NULL WHERE status = ? AND assigned_moderator_id IS NOT NULL AND assigned_at < ?",
			t.table),
			models.StatusPending, cutoff)
		if result.Error != nil {
			return released, result.Error
		}
		released += result.RowsAffected
	}
	return released, nil
}

// KindStats summarizes one kind's pending queue for the moderation
// dashboard.
type KindStats struct {
	Kind     ReviewKind `json:"kind"`
	Pending  int        `json:"pending"`
	Assigned int        `json:"assigned"`
}

// Stats reports pending/assigned counts per kind.
func (s *ReviewQueueService) Stats() ([]KindStats, error) {
	stats := make([]KindStats, 0, len(reviewKinds))
	for _, kind := range reviewKinds {
		t := kindTables[kind]
		var row struct {
			Pending  int
			Assigned int
		}
		query := fmt.Sprintf(
			"SELECT COUNT(*) AS pending, COUNT(assigned_moderator_id) AS assigned FROM %s WHERE status = ?",
			t.table)
		if err := s.db.Raw(query, models.StatusPending).Scan(&row).Error; err != nil {
			return nil, err
		}
		stats = append(stats, KindStats{Kind: kind, Pending: row.Pending, Assigned: row.Assigned})
	}
	return stats, nil
}
