package service

import (
	"context"
	"fmt"
	"net/mail"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-results-api/internal/models"
	"github.com/noah-isme/sma-results-api/pkg/jobs"
	"github.com/noah-isme/sma-results-api/pkg/notify"
)

// NotificationJobType tags notification jobs on the queue.
const NotificationJobType = "notification"

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// NotificationService queues publication notices. Delivery is fire-and-forget: a failure to
// queue or send never fails the operation that triggered it.
type NotificationService struct {
	queue   jobDispatcher
	logger  *zap.Logger
	enabled bool
}

// NewNotificationService constructs a NotificationService. A nil queue disables notices.
func NewNotificationService(queue jobDispatcher, enabled bool, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{queue: queue, logger: logger, enabled: enabled && queue != nil}
}

// ReportPublished tells the student's guardian, and the school's notification address when set,
// that a report card is available.
func (s *NotificationService) ReportPublished(ctx context.Context, school *models.School, student *models.Student, result *models.Result) {
	if s == nil || !s.enabled || school == nil || student == nil || result == nil {
		return
	}
	if !school.Settings.EmailNotifications {
		return
	}

	var to []mail.Address
	if student.GuardianEmail != "" {
		to = append(to, mail.Address{Name: "Guardian of " + student.FullName(), Address: student.GuardianEmail})
	}
	if school.Settings.NotificationEmail != "" {
		to = append(to, mail.Address{Name: school.Name, Address: school.Settings.NotificationEmail})
	}
	if len(to) == 0 {
		s.logger.Debug("report published without notification recipients", zap.String("result_id", result.ID))
		return
	}

	msg := notify.Message{
		To:      to,
		Subject: fmt.Sprintf("%s report card for %s", result.Term, student.FullName()),
		TextContent: fmt.Sprintf("The %s %s report card of %s (%s, %s) has been published by %s.\nAverage score: %.2f, overall grade: %s.",
			result.AcademicYear, result.Term, student.FullName(), student.StudentID, result.ClassName, school.Name,
			result.OverallPerformance.AverageScore, result.OverallPerformance.OverallGrade),
	}
	if err := s.queue.Enqueue(jobs.Job{ID: result.ID, Type: NotificationJobType, Payload: msg}); err != nil {
		s.logger.Warn("failed to queue publication notice", zap.String("result_id", result.ID), zap.Error(err))
	}
}

// NotificationWorker delivers queued messages.
type NotificationWorker struct {
	sender  notify.Sender
	metrics *MetricsService
	logger  *zap.Logger
}

// NewNotificationWorker constructs a worker around sender.
func NewNotificationWorker(sender notify.Sender, metrics *MetricsService, logger *zap.Logger) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{sender: sender, metrics: metrics, logger: logger}
}

// Handle processes a queue job.
func (w *NotificationWorker) Handle(ctx context.Context, job jobs.Job) error {
	msg, ok := job.Payload.(notify.Message)
	if !ok {
		w.logger.Error("dropping notification job with unexpected payload", zap.String("job_id", job.ID))
		return nil
	}
	err := w.sender.Send(ctx, msg)
	w.metrics.RecordNotification(err)
	return err
}

// GiveUp logs a notification that exhausted its retries.
func (w *NotificationWorker) GiveUp(job jobs.Job, err error) {
	w.logger.Error("notification dropped after retries", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
}
