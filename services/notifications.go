package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"time"

	"accountability-api/models"
	"accountability-api/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationService appends jobs to the notification outbox. Delivery
// (SMTP, retries) belongs to cmd/notify-worker.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// LookupEmail resolves a user's address. Returns empty (not an error) when
// the account is gone or soft-deleted.
func (s *NotificationService) LookupEmail(userID int) (string, error) {
	var user models.User
	err := s.db.Select("user_id, email").
		Where("user_id = ? AND delete_at IS NULL", userID).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return user.Email, nil
}

var kindNouns = map[ReviewKind]string{
	KindEvidence:            "evidence submission",
	KindCompanyRequest:      "company request",
	KindLeaderTenureRequest: "leader tenure request",
}

// decisionNotice renders the outbox subject and HTML body. The title is raw
// user input and must be HTML-escaped; the note is markdown, rendered and
// sanitized by RenderMarkdown.
func decisionNotice(kind ReviewKind, title, action, note string) (subject, body string) {
	verb := "approved"
	if action == models.ActionReject {
		verb = "rejected"
	}
	noun := kindNouns[kind]

	subject = fmt.Sprintf("Your %s has been %s", noun, verb)
	body = fmt.Sprintf("<p>Your %s <strong>&quot;%s&quot;</strong> has been %s.</p>",
		noun, template.HTMLEscapeString(title), verb)
	if note != "" {
		body += "<p>Moderator note:</p>" + string(utils.RenderMarkdown(note))
	}
	return subject, body
}

// EnqueueDecisionNotice queues the email telling a submitter how their item
// was decided.
func (s *NotificationService) EnqueueDecisionNotice(recipient string, ref ItemRef, title, action, note string) error {
	subject, body := decisionNotice(ref.Kind, title, action, note)

	metadata, err := json.Marshal(map[string]interface{}{
		"kind":   ref.Kind,
		"id":     ref.ID,
		"action": action,
	})
	if err != nil {
		return err
	}
	meta := string(metadata)

	job := models.NotificationJob{
		JobKey:         uuid.NewString(),
		RecipientEmail: recipient,
		Subject:        subject,
		Body:           body,
		Metadata:       &meta,
		Status:         models.JobQueued,
		CreatedAt:      time.Now(),
	}
	return s.db.Create(&job).Error
}
