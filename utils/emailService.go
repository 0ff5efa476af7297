package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"lms/config"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendEmail delivers an HTML email. SendGrid is used when an API key is
// configured, otherwise plain SMTP.
func SendEmail(to []string, subject string, htmlBody string) error {
	if config.AppConfig.SendGridAPIKey != "" {
		return sendViaSendGrid(to, subject, htmlBody)
	}
	return sendViaSMTP(to, subject, htmlBody)
}

func sendViaSendGrid(to []string, subject string, htmlBody string) error {
	from := mail.NewEmail("LearnHub", config.AppConfig.EmailSender)
	for _, recipient := range to {
		message := mail.NewSingleEmail(from, subject, mail.NewEmail("", recipient), "", htmlBody)
		client := sendgrid.NewSendClient(config.AppConfig.SendGridAPIKey)
		resp, err := client.Send(message)
		if err != nil {
			log.Printf("Error sending email via SendGrid: %v", err)
			return err
		}
		if resp.StatusCode >= 400 {
			log.Printf("SendGrid rejected email to %s: %d %s", recipient, resp.StatusCode, resp.Body)
			return fmt.Errorf("sendgrid rejected email, code: %d", resp.StatusCode)
		}
	}
	return nil
}

func sendViaSMTP(to []string, subject string, htmlBody string) error {
	smtpHost := "smtp.gmail.com"
	smtpPort := "587"

	from := config.AppConfig.EmailSender
	password := config.AppConfig.Password

	// MIME basics
	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: LearnHub <%s>\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", from, password, smtpHost)

	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, []byte(msg))
	if err != nil {
		log.Println("Error sending email:", err)
		return err
	}
	return nil
}

// HTML wrapper shared by all platform emails
func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #1A237E; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1A237E; line-height: 1.6; }
			.content h2 { color: #1A237E; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.btn { display: inline-block; padding: 12px 24px; background-color: #43A047; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; margin-top: 20px; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #43A047; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>LEARNHUB</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; 2026 LearnHub. All rights reserved.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// --- Triggers ---

// 1. Welcome / Signup
func SendWelcomeEmail(email, name string) {
	subject := "Welcome to LearnHub"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Welcome to <strong>LearnHub</strong>! We are thrilled to have you onboard.</p>
		<p>Your account has been successfully created. Browse the catalog and enroll in your first course to start learning.</p>
		<p>If you have any questions, feel free to reach out to our support team.</p>
	`, name)

	go SendEmail([]string{email}, subject, getEmailTemplate("Welcome Onboard!", body))
}

// 2. Enrollment Confirmation
func SendEnrollmentEmail(email, name, courseName string) {
	subject := "Enrollment Confirmed: " + courseName
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You have successfully enrolled in <strong>%s</strong>.</p>
		<p>You can now access all the course content. Complete every section to earn your certificate.</p>
		<div class="info-box">
			<strong>Next Steps:</strong> Open your dashboard and start the first lesson.
		</div>
	`, name, courseName)

	go SendEmail([]string{email}, subject, getEmailTemplate("Enrollment Successful", body))
}

// 3. Course Submitted for Review (To Author)
func SendCourseSubmittedEmail(email, name, courseName string) {
	subject := "Course Submitted: " + courseName
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your course <strong>%s</strong> has been submitted for review.</p>
		<p>Status: <strong style="color: #FFC107;">PENDING REVIEW</strong></p>
		<p>You will receive an email once it is approved or rejected.</p>
	`, name, courseName)

	go SendEmail([]string{email}, subject, getEmailTemplate("Course Submitted", body))
}

// 4. Submission Alert (To Reviewers)
func SendReviewRequestedEmail(reviewerEmail, reviewerName, courseName, authorName string) {
	subject := "Review Requested: " + courseName
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p><strong>%s</strong> by %s is waiting for review.</p>
		<p>Please review the course content and record your decision from the admin dashboard.</p>
	`, reviewerName, courseName, authorName)

	go SendEmail([]string{reviewerEmail}, subject, getEmailTemplate("New Course Submission", body))
}

// 5. Course Approved (To Author)
func SendCourseApprovedEmail(email, name, courseName string, score int) {
	subject := "Course Approved: " + courseName
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Great news! Your course <strong>%s</strong> has been approved with an overall score of <strong>%d</strong>.</p>
		<p>It is now published and open for enrollment.</p>
	`, name, courseName, score)

	go SendEmail([]string{email}, subject, getEmailTemplate("Course Approved", body))
}

// 6. Course Rejected (To Author)
func SendCourseRejectedEmail(email, name, courseName, reason string) {
	subject := "Course Rejected: " + courseName
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Unfortunately, your course <strong>%s</strong> was not approved.</p>
		<div style="color: #dc3545; font-weight: bold;">Reason: %s</div>
		<p>Please address the feedback, reopen the draft and submit again.</p>
	`, name, courseName, reason)

	go SendEmail([]string{email}, subject, getEmailTemplate("Course Rejected", body))
}

// 7. Progress Milestone
func SendMilestoneEmail(email, name, courseName string, percent int) {
	subject := fmt.Sprintf("You reached %d%% of %s", percent, courseName)
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You have completed <strong>%d%%</strong> of <strong>%s</strong>. Keep going!</p>
	`, name, percent, courseName)

	go SendEmail([]string{email}, subject, getEmailTemplate("Milestone Reached", body))
}

// 8. Certificate Issued
func SendCertificateEmail(email, name, courseName, certificateNumber string, finalGrade int) {
	subject := "Course Completion Certificate - " + courseName
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Congratulations on completing <strong>%s</strong> with a final grade of <strong>%d</strong>!</p>
		<div class="info-box" style="text-align: center;">
			<p style="margin-bottom: 10px;">Your Certificate Number:</p>
			<h2 style="color: #2196F3; margin: 0;">%s</h2>
		</div>
		<p>You can use this certificate number for verification purposes.</p>
	`, name, courseName, finalGrade, certificateNumber)

	go SendEmail([]string{email}, subject, getEmailTemplate("Certificate of Completion", body))
}

// 9. Login Notification
func SendLoginNotificationEmail(email, name, ip, device, timeStr string) {
	subject := "New Login Alert"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>We noticed a new login to your account.</p>
		<div class="info-box" style="background: #FFFFFF; border: 1px solid #E0E0E0;">
			<ul style="list-style: none; padding: 0; margin: 0;">
				<li style="margin-bottom: 8px;"><strong>Time:</strong> %s</li>
				<li style="margin-bottom: 8px;"><strong>IP Address:</strong> %s</li>
				<li><strong>Device:</strong> %s</li>
			</ul>
		</div>
		<p>If this was you, you can safely ignore this email.</p>
		<p style="color: #DC3545; font-weight: bold;">If you did not authorize this login, please contact support immediately.</p>
	`, name, timeStr, ip, device)

	go SendEmail([]string{email}, subject, getEmailTemplate("New Login Detected", body))
}
