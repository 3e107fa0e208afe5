package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/SAP-F-2025/training-service/internal/events"
	"github.com/SAP-F-2025/training-service/internal/expiry"
	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"gorm.io/gorm"
)

// ===== LOOKUPS =====

func (s *enrollmentService) getEnrollment(ctx context.Context, tx *gorm.DB, id uint) (*models.Enrollment, error) {
	enrollment, err := s.repo.Enrollment().GetByID(ctx, tx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, persistenceError("get enrollment", err)
	}
	return enrollment, nil
}

func (s *enrollmentService) getModule(ctx context.Context, tx *gorm.DB, id string) (*models.TrainingModule, error) {
	module, err := s.repo.Module().GetByID(ctx, tx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrModuleNotFound
		}
		return nil, persistenceError("get module", err)
	}
	return module, nil
}

// loadOwned returns the enrollment and its module after checking that actor is the learner.
func (s *enrollmentService) loadOwned(ctx context.Context, tx *gorm.DB, id uint, actor Actor, action string) (*models.Enrollment, *models.TrainingModule, error) {
	enrollment, err := s.getEnrollment(ctx, tx, id)
	if err != nil {
		return nil, nil, err
	}
	if enrollment.UserID != actor.UserID {
		return nil, nil, NewPermissionError(actor.UserID, id, "enrollment", action, "not owned by user")
	}
	module, err := s.getModule(ctx, tx, enrollment.ModuleID)
	if err != nil {
		return nil, nil, err
	}
	return enrollment, module, nil
}

// canView allows the learner and managers of the same organization.
func canView(enrollment *models.Enrollment, actor Actor) bool {
	if enrollment.UserID == actor.UserID {
		return true
	}
	return actor.IsManager() && enrollment.OrgID == actor.OrgID
}

func (s *enrollmentService) modulesFor(ctx context.Context, enrollments []*models.Enrollment) (map[string]*models.TrainingModule, error) {
	ids := make([]string, 0, len(enrollments))
	seen := make(map[string]bool)
	for _, e := range enrollments {
		if !seen[e.ModuleID] {
			seen[e.ModuleID] = true
			ids = append(ids, e.ModuleID)
		}
	}
	sort.Strings(ids)

	modules, err := s.repo.Module().GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, persistenceError("get modules", err)
	}
	return modules, nil
}

// ===== DERIVATION =====

// derivedStatus reports a completed enrollment past its expiry as expired.
func derivedStatus(enrollment *models.Enrollment, now time.Time) models.EnrollmentStatus {
	if enrollment.IsExpiredAt(now) {
		return models.EnrollmentExpired
	}
	return enrollment.Status
}

func acknowledgmentPending(enrollment *models.Enrollment, module *models.TrainingModule) bool {
	return module != nil &&
		module.RequiresAcknowledgment &&
		enrollment.Status == models.EnrollmentInProgress &&
		enrollment.Progress >= models.FullProgress
}

func newEnrollmentResponse(enrollment *models.Enrollment, module *models.TrainingModule, now time.Time) *EnrollmentResponse {
	derived := expiry.Derive(enrollment.ExpiresAt, string(enrollment.Status), now)
	resp := &EnrollmentResponse{
		Enrollment:            enrollment,
		DerivedStatus:         derivedStatus(enrollment, now),
		DaysRemaining:         derived.DaysRemaining,
		IsExpired:             derived.IsExpired,
		Urgency:               derived.Urgency,
		AcknowledgmentPending: acknowledgmentPending(enrollment, module),
	}
	if module != nil {
		resp.ModuleTitle = module.Title
		resp.TotalLessons = module.TotalLessons()
	}
	return resp
}

func (s *enrollmentService) toResponses(ctx context.Context, enrollments []*models.Enrollment) ([]*EnrollmentResponse, error) {
	modules, err := s.modulesFor(ctx, enrollments)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]*EnrollmentResponse, 0, len(enrollments))
	for _, e := range enrollments {
		out = append(out, newEnrollmentResponse(e, modules[e.ModuleID], now))
	}
	return out, nil
}

// ===== EVENTS =====

func enrollmentEventData(enrollment *models.Enrollment, module *models.TrainingModule) events.EnrollmentEventData {
	data := events.EnrollmentEventData{
		EnrollmentID: enrollment.ID,
		OrgID:        enrollment.OrgID,
		UserID:       enrollment.UserID,
		ModuleID:     enrollment.ModuleID,
		Cycle:        enrollment.Cycle,
		AssignedBy:   enrollment.AssignedBy,
		DueAt:        enrollment.DueAt,
		CompletedAt:  enrollment.CompletedAt,
		ExpiresAt:    enrollment.ExpiresAt,
	}
	if module != nil {
		data.ModuleTitle = module.Title
	}
	return data
}

// publish sends an event after the state change committed. A failed publish
// is logged and never undoes the change.
func (s *enrollmentService) publish(ctx context.Context, eventType events.EventType, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewEvent(eventType, s.now(), data)); err != nil {
		s.logger.Error("Failed to publish event", "type", eventType, "error", err)
	}
}

// ===== ERRORS =====

// txError keeps domain errors raised inside a transaction and wraps everything else.
func txError(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{
		ErrInvalidTransition,
		ErrEnrollmentNotEligible,
		ErrDuplicateAcknowledgment,
		ErrNotFound,
		ErrPermissionDenied,
		ErrValidation,
		ErrPersistence,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return persistenceError(op, err)
}
