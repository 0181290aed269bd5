package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"accountability-api/models"

	"gorm.io/gorm"
)

// ScoreRecomputer is the external scoring engine. Called after an evidence
// approval; failures are logged, never surfaced as decision failures.
type ScoreRecomputer interface {
	RecomputeScore(companyID int) error
}

// DecisionService applies approve/reject transitions to assigned review
// items. The status transition and the audit row commit together; score
// recompute and notification enqueue run best-effort after commit.
type DecisionService struct {
	db           *gorm.DB
	scorer       ScoreRecomputer
	notifier     *NotificationService
	materializer CompanyMaterializer
}

func NewDecisionService(db *gorm.DB, scorer ScoreRecomputer) *DecisionService {
	return &DecisionService{
		db:       db,
		scorer:   scorer,
		notifier: NewNotificationService(db),
	}
}

// itemState is the lifecycle snapshot shared by all kinds, used for the
// precondition chain and the notification.
type itemState struct {
	status      string
	submittedBy *int
	assignedTo  *int
	title       string
}

// Decide validates the moderator's assignment and applies the decision.
// Preconditions fail fast in a fixed order: exists, still pending,
// assigned to the caller, not a self-review, note present on reject.
func (s *DecisionService) Decide(moderatorID int, ref ItemRef, action, note string) error {
	action = strings.ToLower(strings.TrimSpace(action))
	if action != models.ActionApprove && action != models.ActionReject {
		return ErrInvalidAction
	}
	note = strings.TrimSpace(note)

	t, ok := kindTables[ref.Kind]
	if !ok {
		return ErrItemNotFound
	}

	var (
		state      itemState
		evidence   models.Evidence
		companyReq models.CompanyRequest
		tenureReq  models.LeaderTenureRequest
	)

	switch ref.Kind {
	case KindEvidence:
		if err := s.db.Where("evidence_id = ?", ref.ID).First(&evidence).Error; err != nil {
			return asNotFound(err)
		}
		state = itemState{evidence.Status, evidence.SubmittedBy, evidence.AssignedModeratorID, evidence.Title}
	case KindCompanyRequest:
		if err := s.db.Where("request_id = ?", ref.ID).First(&companyReq).Error; err != nil {
			return asNotFound(err)
		}
		state = itemState{companyReq.Status, companyReq.SubmittedBy, companyReq.AssignedModeratorID, companyReq.Name}
	case KindLeaderTenureRequest:
		if err := s.db.Where("request_id = ?", ref.ID).First(&tenureReq).Error; err != nil {
			return asNotFound(err)
		}
		state = itemState{tenureReq.Status, tenureReq.SubmittedBy, tenureReq.AssignedModeratorID,
			fmt.Sprintf("%s (%s)", tenureReq.LeaderName, tenureReq.RoleTitle)}
	}

	if state.status != models.StatusPending {
		return ErrAlreadyProcessed
	}
	if state.assignedTo == nil || *state.assignedTo != moderatorID {
		return ErrNotAssigned
	}
	if state.submittedBy != nil && *state.submittedBy == moderatorID {
		return ErrSelfReview
	}
	if action == models.ActionReject && note == "" {
		return ErrNoteRequired
	}

	newStatus := models.StatusApproved
	if action == models.ActionReject {
		newStatus = models.StatusRejected
	}
	now := time.Now()

	tx := s.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	// Conditional transition keyed on pending: a concurrent duplicate
	// decision affects zero rows and surfaces as already processed.
	result := tx.Exec(fmt.Sprintf(
		"UPDATE %s SET status = ?, moderator_id = ?, decision_reason = ?, moderated_at = ? WHERE %s = ? AND status = ?",
		t.table, t.idColumn),
		newStatus, moderatorID, note, now, ref.ID, models.StatusPending)
	if result.Error != nil {
		tx.Rollback()
		return result.Error
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return ErrAlreadyProcessed
	}

	actionRow := models.ModerationAction{
		ModeratorID: moderatorID,
		TargetType:  string(ref.Kind),
		TargetID:    ref.ID,
		Action:      action,
		CreatedAt:   now,
	}
	if note != "" {
		actionRow.Note = &note
	}
	if err := tx.Create(&actionRow).Error; err != nil {
		tx.Rollback()
		return err
	}

	if action == models.ActionApprove {
		switch ref.Kind {
		case KindCompanyRequest:
			if err := s.approveCompanyRequest(tx, &companyReq); err != nil {
				tx.Rollback()
				return err
			}
		case KindLeaderTenureRequest:
			if err := s.approveTenureRequest(tx, &tenureReq); err != nil {
				tx.Rollback()
				return err
			}
		}
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	// The decision is durable from here on; downstream calls only get
	// logged when they fail.
	if action == models.ActionApprove && ref.Kind == KindEvidence && s.scorer != nil {
		if err := s.scorer.RecomputeScore(evidence.CompanyID); err != nil {
			log.Printf("score recompute failed for company %d: %v", evidence.CompanyID, err)
		}
	}

	s.notifySubmitter(ref, state, action, note)
	return nil
}

func (s *DecisionService) approveCompanyRequest(tx *gorm.DB, req *models.CompanyRequest) error {
	company, err := s.materializer.MaterializeCompany(tx, req)
	if err != nil {
		return err
	}

	if err := tx.Exec(
		"UPDATE company_requests SET created_company_id = ? WHERE request_id = ?",
		company.CompanyID, req.RequestID).Error; err != nil {
		return err
	}

	// Staged founding tenure, if the request carried one.
	if req.LeaderName == nil || strings.TrimSpace(*req.LeaderName) == "" {
		return nil
	}
	roleTitle := "Leader"
	if req.LeaderRole != nil && strings.TrimSpace(*req.LeaderRole) != "" {
		roleTitle = *req.LeaderRole
	}
	return s.materializer.EnsureLeaderTenure(tx, company.CompanyID,
		*req.LeaderName, req.LeaderExternalID, roleTitle, req.LeaderStartDate, nil)
}

func (s *DecisionService) approveTenureRequest(tx *gorm.DB, req *models.LeaderTenureRequest) error {
	switch req.ChangeType {
	case models.TenureChangeAdd:
		return s.materializer.EnsureLeaderTenure(tx, req.CompanyID,
			req.LeaderName, req.LeaderExternalID, req.RoleTitle, req.StartDate, req.EndDate)
	case models.TenureChangeEnd:
		if req.TenureID == nil {
			return fmt.Errorf("tenure request %d has no target tenure", req.RequestID)
		}
		endDate := time.Now()
		if req.EndDate != nil {
			endDate = *req.EndDate
		}
		return s.materializer.CloseTenure(tx, *req.TenureID, endDate)
	default:
		return fmt.Errorf("unknown tenure change type %q", req.ChangeType)
	}
}

// notifySubmitter enqueues the decision notice. Missing submitters or
// unresolvable addresses are logged and skipped, never fatal.
func (s *DecisionService) notifySubmitter(ref ItemRef, state itemState, action, note string) {
	if state.submittedBy == nil {
		return
	}
	email, err := s.notifier.LookupEmail(*state.submittedBy)
	if err != nil {
		log.Printf("email lookup failed for user %d: %v", *state.submittedBy, err)
		return
	}
	if email == "" {
		log.Printf("no email for user %d, skipping decision notice", *state.submittedBy)
		return
	}
	if err := s.notifier.EnqueueDecisionNotice(email, ref, state.title, action, note); err != nil {
		log.Printf("failed to enqueue decision notice for %s %d: %v", ref.Kind, ref.ID, err)
	}
}

func asNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrItemNotFound
	}
	return err
}
