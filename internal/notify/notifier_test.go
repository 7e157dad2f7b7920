// internal/notify/notifier_test.go
package notify

import (
	"context"
	"errors"
	"testing"

	"jobmate-backend/internal/common/logger"
	"jobmate-backend/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type mockSES struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}
	return &ses.SendEmailOutput{}, nil
}

type mockSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}
	return &sns.PublishOutput{}, nil
}

type mockContacts struct {
	email string
	phone string
	err   error
}

func (m *mockContacts) GetContact(ctx context.Context, userID string) (string, string, error) {
	return m.email, m.phone, m.err
}

func newTestNotifier(t *testing.T, sesMock *mockSES, snsMock *mockSNS, contacts *mockContacts) *Notifier {
	t.Helper()
	n, err := New(&Config{
		EmailEnabled: true,
		SMSEnabled:   true,
		FromEmail:    "no-reply@jobmate.test",
	}, sesMock, snsMock, contacts, logger.NewTestLogger(t))
	require.NoError(t, err)
	return n
}

func statusData() map[string]interface{} {
	return map[string]interface{}{
		"seekerName":  "Jane",
		"jobTitle":    "Backend Engineer",
		"companyName": "Acme",
		"status":      "shortlisted",
	}
}

// ==========================
// Delivery Tests
// ==========================

func TestNotifier_SendEmailOnly(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	contacts := &mockContacts{email: "jane@example.com", phone: "+15550001111"}
	notifier := newTestNotifier(t, sesMock, snsMock, contacts)

	record, err := notifier.Send(context.Background(), &Request{
		RecipientID: "user-1",
		Type:        models.NotificationApplicationStatus,
		Priority:    "normal",
		Data:        statusData(),
	})
	require.NoError(t, err)

	assert.Equal(t, "sent", record.Status)
	assert.Equal(t, "email", record.Channel)
	require.Len(t, sesMock.inputs, 1)
	assert.Empty(t, snsMock.inputs, "normal priority must not trigger SMS")

	sent := sesMock.inputs[0]
	assert.Equal(t, "Update on your application for Backend Engineer", *sent.Message.Subject.Data)
	assert.Contains(t, *sent.Message.Body.Text.Data, "Jane")
	assert.Contains(t, *sent.Message.Body.Text.Data, "shortlisted")
	assert.Equal(t, []string{"jane@example.com"}, sent.Destination.ToAddresses)
}

func TestNotifier_HighPriorityAlsoSendsSMS(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	contacts := &mockContacts{email: "jane@example.com", phone: "+15550001111"}
	notifier := newTestNotifier(t, sesMock, snsMock, contacts)

	record, err := notifier.Send(context.Background(), &Request{
		RecipientID: "user-1",
		Type:        models.NotificationApplicationStatus,
		Priority:    "high",
		Data:        statusData(),
	})
	require.NoError(t, err)

	assert.Equal(t, "sent", record.Status)
	assert.Equal(t, "email,sms", record.Channel)
	assert.Len(t, sesMock.inputs, 1)
	require.Len(t, snsMock.inputs, 1)
	assert.Equal(t, "+15550001111", *snsMock.inputs[0].PhoneNumber)
}

func TestNotifier_NoPhoneSkipsSMS(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	contacts := &mockContacts{email: "jane@example.com"}
	notifier := newTestNotifier(t, sesMock, snsMock, contacts)

	record, err := notifier.Send(context.Background(), &Request{
		RecipientID: "user-1",
		Type:        models.NotificationApplicationStatus,
		Priority:    "high",
		Data:        statusData(),
	})
	require.NoError(t, err)
	assert.Equal(t, "email", record.Channel)
	assert.Empty(t, snsMock.inputs)
}

func TestNotifier_EmailFailureFailsTheSend(t *testing.T) {
	sesMock := &mockSES{err: errors.New("ses throttled")}
	snsMock := &mockSNS{}
	contacts := &mockContacts{email: "jane@example.com"}
	notifier := newTestNotifier(t, sesMock, snsMock, contacts)

	record, err := notifier.Send(context.Background(), &Request{
		RecipientID: "user-1",
		Type:        models.NotificationApplicationStatus,
		Priority:    "normal",
		Data:        statusData(),
	})
	require.Error(t, err)
	assert.Equal(t, "failed", record.Status)
}

func TestNotifier_SMSFailureKeepsRecordSent(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{err: errors.New("sns down")}
	contacts := &mockContacts{email: "jane@example.com", phone: "+15550001111"}
	notifier := newTestNotifier(t, sesMock, snsMock, contacts)

	record, err := notifier.Send(context.Background(), &Request{
		RecipientID: "user-1",
		Type:        models.NotificationApplicationStatus,
		Priority:    "high",
		Data:        statusData(),
	})
	require.NoError(t, err, "email went out; the SMS miss is logged, not surfaced")
	assert.Equal(t, "sent", record.Status)
	assert.Equal(t, "email", record.Channel)
}

func TestNotifier_MissingRecipientIsNoop(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	contacts := &mockContacts{err: errors.New("not found")}
	notifier := newTestNotifier(t, sesMock, snsMock, contacts)

	record, err := notifier.Send(context.Background(), &Request{
		RecipientID: "gone-user",
		Type:        models.NotificationApplicationStatus,
		Data:        statusData(),
	})
	require.NoError(t, err)
	assert.Equal(t, "disabled", record.Status)
	assert.Empty(t, sesMock.inputs)
}

// ==========================
// Template Tests
// ==========================

func TestNotifier_UnknownTemplateType(t *testing.T) {
	notifier := newTestNotifier(t, &mockSES{}, &mockSNS{}, &mockContacts{email: "a@b.c"})

	_, err := notifier.Send(context.Background(), &Request{
		RecipientID: "user-1",
		Type:        models.NotificationType("password_reset"),
		Data:        map[string]interface{}{},
	})
	assert.Error(t, err)
}

func TestNotifier_PayloadSchemaEnforced(t *testing.T) {
	sesMock := &mockSES{}
	notifier := newTestNotifier(t, sesMock, &mockSNS{}, &mockContacts{email: "a@b.c"})

	_, err := notifier.Send(context.Background(), &Request{
		RecipientID: "user-1",
		Type:        models.NotificationApplicationStatus,
		Data:        map[string]interface{}{"jobTitle": "Backend Engineer"}, // missing required keys
	})
	require.Error(t, err)
	assert.Empty(t, sesMock.inputs, "invalid payload must not reach SES")
}

func TestRenderTemplate(t *testing.T) {
	out := renderTemplate("Hi {{name}}, your {{thing}} is ready. {{unknown}} stays.",
		map[string]interface{}{"name": "Jane", "thing": "report"})
	assert.Equal(t, "Hi Jane, your report is ready. {{unknown}} stays.", out)
}
