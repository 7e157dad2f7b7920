// internal/service/applications.go
package service

import (
	"context"
	"time"

	apperrors "jobmate-backend/internal/common/errors"
	"jobmate-backend/internal/common/logger"
	"jobmate-backend/internal/models"
	"jobmate-backend/internal/notify"
	"jobmate-backend/internal/store"
)

// NotificationSender dispatches one notification. Satisfied by
// notify.Notifier.
type NotificationSender interface {
	Send(ctx context.Context, req *notify.Request) (*models.Notification, error)
}

type ApplicationService struct {
	applications *store.ApplicationStore
	jobs         *store.JobStore
	users        *store.UserStore
	audit        *store.AuditStore
	notifier     NotificationSender
	logger       logger.Logger
}

func NewApplicationService(applications *store.ApplicationStore, jobs *store.JobStore, users *store.UserStore, audit *store.AuditStore, notifier NotificationSender, log logger.Logger) *ApplicationService {
	return &ApplicationService{
		applications: applications,
		jobs:         jobs,
		users:        users,
		audit:        audit,
		notifier:     notifier,
		logger:       log.WithFields(map[string]interface{}{"service": "applications"}),
	}
}

// Apply submits the seeker's application to an open job. The resume on the
// seeker's profile is snapshotted onto the application so later profile
// edits do not rewrite history. The recruiter is notified and the seeker
// gets a confirmation; both sends are best-effort.
func (s *ApplicationService) Apply(ctx context.Context, seekerID, jobID, coverLetter string) (*models.JobApplication, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobStatusOpen {
		return nil, apperrors.NewBusinessRuleError("Job is not accepting applications",
			"status: "+string(job.Status))
	}

	seeker, err := s.users.GetByID(ctx, seekerID)
	if err != nil {
		return nil, err
	}

	app := &models.JobApplication{
		JobID:       jobID,
		SeekerID:    seekerID,
		ResumeText:  seeker.ResumeText,
		CoverLetter: coverLetter,
	}

	if err := s.applications.Create(ctx, app); err != nil {
		return nil, err
	}
	app.JobTitle = job.Title
	app.CompanyName = job.CompanyName

	s.recordAudit(seekerID, "application.created", "application", app.ID, map[string]interface{}{
		"jobId": jobID,
	})

	s.notifyAsync(&notify.Request{
		RecipientID: job.RecruiterID,
		Type:        models.NotificationNewApplicant,
		Priority:    "normal",
		Data: map[string]interface{}{
			"jobTitle":      job.Title,
			"applicationId": app.ID,
		},
	})
	s.notifyAsync(&notify.Request{
		RecipientID: seekerID,
		Type:        models.NotificationApplicationReceived,
		Priority:    "normal",
		Data: map[string]interface{}{
			"seekerName":  seeker.FullName,
			"jobTitle":    job.Title,
			"companyName": job.CompanyName,
		},
	})

	s.logger.Info("application submitted", map[string]interface{}{
		"applicationId": app.ID,
		"jobId":         jobID,
		"seekerId":      seekerID,
	})

	return app, nil
}

// ListMine returns the seeker's own applications.
func (s *ApplicationService) ListMine(ctx context.Context, seekerID string) ([]models.JobApplication, error) {
	return s.applications.ListBySeeker(ctx, seekerID)
}

// ListForJob returns a job's applicants to its owning recruiter.
func (s *ApplicationService) ListForJob(ctx context.Context, recruiterID, jobID string) ([]models.JobApplication, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.RecruiterID != recruiterID {
		return nil, apperrors.NewAuthorizationError("job belongs to another recruiter")
	}

	return s.applications.ListByJob(ctx, jobID)
}

// highPriorityStatuses are the moves worth an SMS on top of the email.
var highPriorityStatuses = map[models.ApplicationStatus]bool{
	models.ApplicationStatusShortlisted: true,
	models.ApplicationStatusAccepted:    true,
}

// UpdateStatus moves an application along the review flow. Only the job's
// recruiter may act, and only along an allowed transition.
func (s *ApplicationService) UpdateStatus(ctx context.Context, recruiterID, applicationID string, next models.ApplicationStatus) (*models.JobApplication, error) {
	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	job, err := s.jobs.GetByID(ctx, app.JobID)
	if err != nil {
		return nil, err
	}
	if job.RecruiterID != recruiterID {
		return nil, apperrors.NewAuthorizationError("job belongs to another recruiter")
	}

	if !app.Status.CanTransitionTo(next) {
		return nil, apperrors.NewInvalidStatusChangeError(string(app.Status), string(next))
	}

	if err := s.applications.UpdateStatus(ctx, applicationID, next); err != nil {
		return nil, err
	}
	previous := app.Status
	app.Status = next
	app.UpdatedAt = time.Now().UTC()

	s.recordAudit(recruiterID, "application.status_changed", "application", applicationID,
		map[string]interface{}{
			"from": string(previous),
			"to":   string(next),
		})

	priority := "normal"
	if highPriorityStatuses[next] {
		priority = "high"
	}

	seeker, err := s.users.GetByID(ctx, app.SeekerID)
	if err == nil {
		s.notifyAsync(&notify.Request{
			RecipientID: app.SeekerID,
			Type:        models.NotificationApplicationStatus,
			Priority:    priority,
			Data: map[string]interface{}{
				"seekerName":  seeker.FullName,
				"jobTitle":    job.Title,
				"companyName": job.CompanyName,
				"status":      string(next),
			},
		})
	}

	return app, nil
}

// notifyAsync fires the notification off the request path. Failures are
// logged by the notifier; nothing here can fail the caller.
func (s *ApplicationService) notifyAsync(req *notify.Request) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := s.notifier.Send(ctx, req); err != nil {
			s.logger.Warn("notification dispatch failed", map[string]interface{}{
				"recipientId": req.RecipientID,
				"type":        string(req.Type),
				"error":       err.Error(),
			})
		}
	}()
}

// recordAudit writes a best-effort audit row.
func (s *ApplicationService) recordAudit(actorID, action, entityType, entityID string, detail map[string]interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.audit.Record(ctx, actorID, action, entityType, entityID, detail); err != nil {
		s.logger.Warn("audit write failed", map[string]interface{}{
			"action": action,
			"error":  err.Error(),
		})
	}
}
