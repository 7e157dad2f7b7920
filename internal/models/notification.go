// internal/models/notification.go
package models

type NotificationType string

const (
	NotificationApplicationReceived NotificationType = "application_received"
	NotificationApplicationStatus   NotificationType = "application_status"
	NotificationNewApplicant        NotificationType = "new_applicant"
)

type Notification struct {
	ID          string                 `json:"id"`
	RecipientID string                 `json:"recipientId"`
	Type        NotificationType       `json:"type"`
	Channel     string                 `json:"channel"` // "email", "sms"
	Status      string                 `json:"status"`  // "sent", "failed", "disabled"
	Payload     map[string]interface{} `json:"payload"`
	SentAt      string                 `json:"sentAt"`
	CreatedAt   string                 `json:"createdAt"`
}
