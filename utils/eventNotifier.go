package utils

import (
	"log"
	"time"

	"lms/config"
	"lms/database"
	"lms/models"
	courseModels "lms/models/course"

	"github.com/go-resty/resty/v2"
)

// EventNotifier fans platform events out to email and the configured
// webhook. It implements the notifier contracts of both the course
// lifecycle and the progress engine. All delivery is fire-and-forget.
type EventNotifier struct {
	client *resty.Client
}

// NewEventNotifier builds the shared notifier
func NewEventNotifier() *EventNotifier {
	return &EventNotifier{
		client: resty.New().SetTimeout(10 * time.Second),
	}
}

// CourseSubmitted alerts the author and every admin reviewer
func (n *EventNotifier) CourseSubmitted(course *courseModels.Course, author *models.User) {
	if author != nil && author.Email != "" {
		SendCourseSubmittedEmail(author.Email, author.Name, course.Title)
	}

	var admins []models.User
	if err := database.Database.Db.Where("role = ? AND is_deleted = false", "ADMIN").Find(&admins).Error; err == nil {
		authorName := "Unknown"
		if author != nil {
			authorName = author.Name
		}
		for _, admin := range admins {
			if admin.Email != "" {
				SendReviewRequestedEmail(admin.Email, admin.Name, course.Title, authorName)
			}
		}
	}

	n.postWebhook("course.submitted", map[string]interface{}{
		"course_id": course.ID,
		"title":     course.Title,
		"author_id": course.AuthorID,
	})
}

// CourseApproved alerts the author with the review score
func (n *EventNotifier) CourseApproved(course *courseModels.Course, author *models.User, feedback courseModels.ReviewFeedback) {
	if author != nil && author.Email != "" && author.NotificationPrefs.Data().EmailOnApproval {
		SendCourseApprovedEmail(author.Email, author.Name, course.Title, feedback.OverallScore)
	}

	n.postWebhook("course.approved", map[string]interface{}{
		"course_id":     course.ID,
		"title":         course.Title,
		"overall_score": feedback.OverallScore,
	})
}

// CourseRejected alerts the author with the rejection reason
func (n *EventNotifier) CourseRejected(course *courseModels.Course, author *models.User, reason string) {
	if author != nil && author.Email != "" && author.NotificationPrefs.Data().EmailOnRejection {
		SendCourseRejectedEmail(author.Email, author.Name, course.Title, reason)
	}

	n.postWebhook("course.rejected", map[string]interface{}{
		"course_id": course.ID,
		"title":     course.Title,
		"reason":    reason,
	})
}

// ProgressMilestone congratulates the learner on crossing a threshold
func (n *EventNotifier) ProgressMilestone(userID, courseID uint, percent int) {
	user, course := n.lookupPair(userID, courseID)
	if user != nil && course != nil && user.Email != "" && user.NotificationPrefs.Data().EmailOnMilestone {
		SendMilestoneEmail(user.Email, user.Name, course.Title, percent)
	}

	n.postWebhook("progress.milestone", map[string]interface{}{
		"user_id":   userID,
		"course_id": courseID,
		"percent":   percent,
	})
}

// CertificateIssued delivers the certificate number to the learner
func (n *EventNotifier) CertificateIssued(cert *courseModels.Certificate) {
	user, course := n.lookupPair(cert.UserID, cert.CourseID)
	if user != nil && course != nil && user.Email != "" && user.NotificationPrefs.Data().EmailOnCertificate {
		SendCertificateEmail(user.Email, user.Name, course.Title, cert.CertificateNumber, cert.FinalGrade)
	}

	n.postWebhook("certificate.issued", map[string]interface{}{
		"user_id":            cert.UserID,
		"course_id":          cert.CourseID,
		"certificate_number": cert.CertificateNumber,
		"final_grade":        cert.FinalGrade,
	})
}

func (n *EventNotifier) lookupPair(userID, courseID uint) (*models.User, *courseModels.Course) {
	var user models.User
	if err := database.Database.Db.Select("id, name, email, notification_prefs").First(&user, userID).Error; err != nil {
		return nil, nil
	}
	var course courseModels.Course
	if err := database.Database.Db.Select("id, title").First(&course, courseID).Error; err != nil {
		return &user, nil
	}
	return &user, &course
}

// postWebhook pushes the event to the configured endpoint. Disabled when no
// URL is set; failures are logged and dropped.
func (n *EventNotifier) postWebhook(event string, payload map[string]interface{}) {
	if config.AppConfig.WebhookURL == "" {
		return
	}

	go func() {
		resp, err := n.client.R().
			SetHeader("Content-Type", "application/json").
			SetHeader("X-Webhook-Secret", config.AppConfig.WebhookSecret).
			SetBody(map[string]interface{}{
				"event":     event,
				"timestamp": time.Now().UTC(),
				"data":      payload,
			}).
			Post(config.AppConfig.WebhookURL)
		if err != nil {
			log.Printf("[WEBHOOK] Delivery failed for %s: %v", event, err)
			return
		}
		if resp.StatusCode() >= 300 {
			log.Printf("[WEBHOOK] Endpoint returned %d for %s", resp.StatusCode(), event)
		}
	}()
}
