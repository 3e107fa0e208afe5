package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/training-service/internal/events"
	"github.com/SAP-F-2025/training-service/internal/expiry"
	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
)

// Reminder thresholds in days before expiry. Zero marks the expired
// notice; negative values are follow-ups after expiry.
var (
	EnrollmentReminderThresholds = []int{90, 60, 30, 7, 0}
	DocumentReminderThresholds   = []int{90, 60, 30, 7, 0, -30}
)

type reminderService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	publisher events.EventPublisher
	clock     Clock
}

func NewReminderService(repo repositories.Repository, logger *slog.Logger, publisher events.EventPublisher, clock Clock) ReminderService {
	if clock == nil {
		clock = SystemClock
	}
	return &reminderService{
		repo:      repo,
		logger:    logger,
		publisher: publisher,
		clock:     clock,
	}
}

// crossedThresholds returns the thresholds reached at days remaining,
// loosest first. The expired threshold counts once the expiry is derived.
func crossedThresholds(thresholds []int, days int) []int {
	var out []int
	for _, t := range thresholds {
		switch {
		case t > 0 && days >= 0 && days <= t:
			out = append(out, t)
		case t == 0 && days < 0:
			out = append(out, t)
		case t < 0 && days <= t:
			out = append(out, t)
		}
	}
	return out
}

// Scan publishes one event per subject for the tightest threshold it has
// reached that was not published before. Looser thresholds reached at the
// same time are recorded without an event.
func (s *reminderService) Scan(ctx context.Context) (*ScanResult, error) {
	now := s.clock().UTC()
	horizon := now.AddDate(0, 0, EnrollmentReminderThresholds[0]+1)
	result := &ScanResult{}

	enrollments, err := s.repo.Enrollment().ListCompletedExpiringBefore(ctx, nil, horizon)
	if err != nil {
		return nil, persistenceError("list expiring enrollments", err)
	}
	for _, e := range enrollments {
		days := expiry.DaysRemaining(*e.ExpiresAt, now)
		threshold, send, err := s.record(ctx, models.ReminderSubjectEnrollment, e.ID, crossedThresholds(EnrollmentReminderThresholds, days), now)
		if err != nil {
			s.logger.Error("Failed to record reminder", "enrollment_id", e.ID, "error", err)
			result.Failures++
			continue
		}
		if !send {
			continue
		}

		eventType := events.EnrollmentExpiring
		if threshold <= 0 {
			eventType = events.EnrollmentExpired
		}
		data := enrollmentEventData(e, nil)
		data.DaysRemaining = &days
		data.Threshold = &threshold
		if err := s.publish(ctx, eventType, now, data); err != nil {
			result.Failures++
			continue
		}
		result.EnrollmentEvents++
	}

	docs, err := s.repo.Document().ListExpiringBefore(ctx, nil, nil, horizon)
	if err != nil {
		return result, persistenceError("list expiring documents", err)
	}
	for _, d := range docs {
		days := expiry.DaysRemaining(d.ExpiresAt, now)
		threshold, send, err := s.record(ctx, models.ReminderSubjectDocument, d.ID, crossedThresholds(DocumentReminderThresholds, days), now)
		if err != nil {
			s.logger.Error("Failed to record reminder", "document_id", d.ID, "error", err)
			result.Failures++
			continue
		}
		if !send {
			continue
		}

		eventType := events.DocumentExpiring
		if threshold <= 0 {
			eventType = events.DocumentExpired
		}
		if err := s.publish(ctx, eventType, now, documentEventData(d, now, threshold)); err != nil {
			result.Failures++
			continue
		}
		result.DocumentEvents++
	}

	s.logger.Info("Reminder scan finished",
		"enrollment_events", result.EnrollmentEvents,
		"document_events", result.DocumentEvents,
		"failures", result.Failures)

	return result, nil
}

// record logs every crossed threshold and reports whether the tightest one was new.
func (s *reminderService) record(ctx context.Context, subject models.ReminderSubject, id uint, crossed []int, now time.Time) (int, bool, error) {
	if len(crossed) == 0 {
		return 0, false, nil
	}

	tightest := crossed[len(crossed)-1]
	fresh := false
	for _, t := range crossed {
		inserted, err := s.repo.Reminder().Record(ctx, nil, &models.ReminderLog{
			SubjectType: subject,
			SubjectID:   id,
			Threshold:   t,
			SentAt:      now,
		})
		if err != nil {
			return 0, false, err
		}
		if t == tightest {
			fresh = inserted
		}
	}
	return tightest, fresh, nil
}

func (s *reminderService) publish(ctx context.Context, eventType events.EventType, now time.Time, data interface{}) error {
	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.Publish(ctx, events.NewEvent(eventType, now, data)); err != nil {
		s.logger.Error("Failed to publish reminder", "type", eventType, "error", err)
		return err
	}
	return nil
}
