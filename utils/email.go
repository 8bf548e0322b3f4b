// utils/email.go
package utils

import (
	"fmt"

	"hostel-meals/models"

	"github.com/keighl/postmark"
	"github.com/sirupsen/logrus"
)

// EmailService handles sending emails using Postmark
type EmailService struct {
	client *postmark.Client
	sender string
}

// NewEmailService initializes a new EmailService. An empty token yields a
// service that logs and drops every message.
func NewEmailService(apiToken, sender string) *EmailService {
	if apiToken == "" {
		logrus.Warn("POSTMARK_API_TOKEN is not set; outgoing email is disabled")
		return &EmailService{sender: sender}
	}
	return &EmailService{
		client: postmark.NewClient(apiToken, ""),
		sender: sender,
	}
}

// SendEmail sends a basic email to the specified recipient
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	if es.client == nil {
		logrus.WithField("to", toEmail).WithField("subject", subject).Debug("email disabled, dropping message")
		return nil
	}
	_, err := es.client.SendEmail(postmark.Email{
		From:     es.sender,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: htmlContent,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	logrus.WithField("to", toEmail).Info("email sent")
	return nil
}

// SendMealDeliveredEmail tells the requester their meal has been served
func (es *EmailService) SendMealDeliveredEmail(req models.MealRequest) error {
	subject := "Your meal has been served"
	title := req.MealTitle
	if title == "" {
		title = "your requested meal"
	}
	htmlContent := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Your request for <strong>%s</strong> (ID: %s) has been delivered. Enjoy your meal!",
		req.UserName,
		title,
		req.ID.Hex(),
	)

	return es.SendEmail(req.UserEmail, subject, htmlContent)
}
