// internal/notify/notifier.go

// Package notify delivers application-event notifications over SES email
// and, for high-priority events, SNS SMS. Delivery is best-effort: callers
// fire and log, a send failure never fails the originating request.
package notify

import (
	"context"
	"fmt"
	"time"

	apperrors "jobmate-backend/internal/common/errors"
	"jobmate-backend/internal/common/logger"
	"jobmate-backend/internal/common/metrics"
	"jobmate-backend/internal/common/validation"
	"jobmate-backend/internal/models"
	"jobmate-backend/pkg/registry"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"
)

type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// ContactDirectory resolves a recipient to the email and phone on file.
type ContactDirectory interface {
	GetContact(ctx context.Context, userID string) (email, phone string, err error)
}

type Config struct {
	EmailEnabled  bool
	SMSEnabled    bool
	FromEmail     string
	TemplatesPath string
	SendTimeout   time.Duration
}

// Request describes one notification to deliver.
type Request struct {
	RecipientID string
	Type        models.NotificationType
	Priority    string // "high" also triggers SMS
	Data        map[string]interface{}
}

type Notifier struct {
	config    *Config
	ses       SESService
	sns       SNSService
	contacts  ContactDirectory
	templates map[string]registry.Template
	logger    logger.Logger
}

func New(config *Config, sesClient SESService, snsClient SNSService, contacts ContactDirectory, log logger.Logger) (*Notifier, error) {
	templates, err := loadTemplates(config.TemplatesPath)
	if err != nil {
		return nil, err
	}
	if config.SendTimeout <= 0 {
		config.SendTimeout = 30 * time.Second
	}

	return &Notifier{
		config:    config,
		ses:       sesClient,
		sns:       snsClient,
		contacts:  contacts,
		templates: templates,
		logger:    log.WithFields(map[string]interface{}{"component": "notifier"}),
	}, nil
}

// Send renders and delivers the notification, returning a record of what
// happened on each channel.
func (n *Notifier) Send(ctx context.Context, req *Request) (*models.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, n.config.SendTimeout)
	defer cancel()

	record := &models.Notification{
		ID:          uuid.New().String(),
		RecipientID: req.RecipientID,
		Type:        req.Type,
		Status:      "disabled",
		Payload:     req.Data,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}

	template, ok := n.templates[string(req.Type)]
	if !ok {
		return record, apperrors.NewTemplateNotFoundError(string(req.Type))
	}

	if err := validation.ValidateAgainstSchema(template.VariableSchema, req.Data); err != nil {
		return record, &apperrors.StandardError{
			Code:      apperrors.ErrCodeTemplateInvalid,
			Message:   "Notification payload does not satisfy template schema",
			Details:   fmt.Sprintf("type: %s, error: %s", req.Type, err.Error()),
			Retryable: false,
			Timestamp: time.Now().UTC(),
		}
	}

	email, phone, err := n.contacts.GetContact(ctx, req.RecipientID)
	if err != nil {
		// Recipient gone (deactivated account): nothing to deliver.
		n.logger.Warn("recipient contact unavailable", map[string]interface{}{
			"recipientId": req.RecipientID,
			"type":        string(req.Type),
		})
		return record, nil
	}

	subject := renderTemplate(template.Subject, req.Data)
	body := renderTemplate(template.Body, req.Data)

	emailSent := false
	smsSent := false

	if n.config.EmailEnabled && email != "" {
		if err := n.sendEmail(ctx, email, subject, body); err != nil {
			n.logger.Error("email send failed", map[string]interface{}{
				"recipientId": req.RecipientID,
				"type":        string(req.Type),
				"error":       err.Error(),
			})
			metrics.NotificationsSent.WithLabelValues("email", "failure").Inc()
			record.Status = "failed"
			return record, apperrors.NewNotificationSendFailedError(string(req.Type), err)
		}
		emailSent = true
		metrics.NotificationsSent.WithLabelValues("email", "success").Inc()
	}

	if n.config.SMSEnabled && phone != "" && req.Priority == "high" {
		if err := n.sendSMS(ctx, phone, body); err != nil {
			// Email already went out; log the SMS miss and keep the record sent.
			n.logger.Error("SMS send failed", map[string]interface{}{
				"recipientId": req.RecipientID,
				"type":        string(req.Type),
				"error":       err.Error(),
			})
			metrics.NotificationsSent.WithLabelValues("sms", "failure").Inc()
		} else {
			smsSent = true
			metrics.NotificationsSent.WithLabelValues("sms", "success").Inc()
		}
	}

	if emailSent || smsSent {
		record.Status = "sent"
		record.SentAt = time.Now().UTC().Format(time.RFC3339)
	}
	switch {
	case emailSent && smsSent:
		record.Channel = "email,sms"
	case smsSent:
		record.Channel = "sms"
	case emailSent:
		record.Channel = "email"
	}

	return record, nil
}

func (n *Notifier) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := n.ses.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &sestypes.Destination{
			ToAddresses: []string{to},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.config.FromEmail),
	})
	return err
}

func (n *Notifier) sendSMS(ctx context.Context, to, message string) error {
	_, err := n.sns.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	return err
}
