// Drains the notification outbox over SMTP. Run from cron; exits once the
// queue is empty. Delivery retries stay here, never in the moderation core.
package main

import (
	"accountability-api/config"
	"accountability-api/models"
	"log"
	"time"

	"github.com/joho/godotenv"
)

const (
	batchSize   = 50
	maxAttempts = 5
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize database
	config.InitDB()

	// Cursor on job_id so a transiently failing job is retried on the next
	// run, not spun on within this one.
	var sent, failed, lastID int
	for {
		var jobs []models.NotificationJob
		if err := config.DB.
			Where("status = ? AND attempts < ? AND job_id > ?", models.JobQueued, maxAttempts, lastID).
			Order("job_id ASC").
			Limit(batchSize).
			Find(&jobs).Error; err != nil {
			log.Fatal("Failed to fetch notification jobs:", err)
		}
		if len(jobs) == 0 {
			break
		}

		for _, job := range jobs {
			lastID = job.JobID
			updates := map[string]interface{}{
				"attempts": job.Attempts + 1,
			}

			err := config.SendMail([]string{job.RecipientEmail}, job.Subject, job.Body)
			if err != nil {
				log.Printf("Failed to send job %d to %s: %v", job.JobID, job.RecipientEmail, err)
				message := err.Error()
				updates["last_error"] = message
				if job.Attempts+1 >= maxAttempts {
					updates["status"] = models.JobFailed
				}
				failed++
			} else {
				now := time.Now()
				updates["status"] = models.JobSent
				updates["sent_at"] = now
				updates["last_error"] = nil
				sent++
			}

			if err := config.DB.Model(&models.NotificationJob{}).
				Where("job_id = ?", job.JobID).
				Updates(updates).Error; err != nil {
				log.Printf("Failed to update job %d: %v", job.JobID, err)
			}
		}
	}

	log.Printf("Notification worker done: %d sent, %d failed", sent, failed)
}
