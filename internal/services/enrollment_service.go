package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/training-service/internal/events"
	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"github.com/SAP-F-2025/training-service/internal/validator"
	"gorm.io/gorm"
)

type enrollmentService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	clock     Clock
}

func NewEnrollmentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, clock Clock) EnrollmentService {
	if clock == nil {
		clock = SystemClock
	}
	return &enrollmentService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		clock:     clock,
	}
}

func (s *enrollmentService) now() time.Time {
	return s.clock().UTC()
}

// ===== ASSIGNMENT =====

func (s *enrollmentService) Assign(ctx context.Context, req *AssignRequest, actor Actor) (*EnrollmentResponse, error) {
	s.logger.Info("Assigning training module",
		"user_id", req.UserID,
		"module_id", req.ModuleID,
		"assigned_by", actor.UserID)

	if err := s.validator.Validate(req); err != nil {
		return nil, validationError(err)
	}

	module, err := s.getModule(ctx, nil, req.ModuleID)
	if err != nil {
		return nil, err
	}
	if !module.IsActive {
		return nil, validationError(fmt.Errorf("module %s is not active", module.ID))
	}

	var enrollment *models.Enrollment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, existing, err := s.createCycle(ctx, tx, req.OrgID, req.UserID, module, req.DueAt, actor.UserID)
		if err != nil {
			return err
		}
		if existing != nil {
			return newTransitionError(existing.Status, "assign",
				fmt.Sprintf("user already holds enrollment %d for this module", existing.ID))
		}
		enrollment = created
		return nil
	})
	if err != nil {
		return nil, txError("assign enrollment", err)
	}

	s.publish(ctx, events.EnrollmentAssigned, enrollmentEventData(enrollment, module))

	s.logger.Info("Training module assigned",
		"enrollment_id", enrollment.ID,
		"cycle", enrollment.Cycle)

	return newEnrollmentResponse(enrollment, module, s.now()), nil
}

func (s *enrollmentService) BulkAssign(ctx context.Context, req *BulkAssignRequest, actor Actor) (*BulkAssignResult, error) {
	s.logger.Info("Bulk assigning training modules",
		"org_id", req.OrgID,
		"pairs", len(req.Pairs),
		"assigned_by", actor.UserID)

	if err := s.validator.Validate(req); err != nil {
		return nil, validationError(err)
	}

	moduleIDs := make([]string, 0, len(req.Pairs))
	for _, p := range req.Pairs {
		moduleIDs = append(moduleIDs, p.ModuleID)
	}
	modules, err := s.repo.Module().GetByIDs(ctx, nil, moduleIDs)
	if err != nil {
		return nil, persistenceError("get modules", err)
	}

	result := &BulkAssignResult{
		Created: []*EnrollmentResponse{},
		Skipped: []SkippedAssignment{},
	}
	seen := make(map[AssignmentPair]bool, len(req.Pairs))
	now := s.now()

	for _, pair := range req.Pairs {
		if seen[pair] {
			continue
		}
		seen[pair] = true

		module, ok := modules[pair.ModuleID]
		if !ok || !module.IsActive {
			result.Skipped = append(result.Skipped, SkippedAssignment{
				UserID: pair.UserID, ModuleID: pair.ModuleID, Reason: "module_not_found",
			})
			continue
		}

		var created, existing *models.Enrollment
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			created, existing, err = s.createCycle(ctx, tx, req.OrgID, pair.UserID, module, req.DueAt, actor.UserID)
			return err
		})
		if err != nil {
			return result, txError("bulk assign", err)
		}
		if existing != nil {
			id := existing.ID
			result.Skipped = append(result.Skipped, SkippedAssignment{
				UserID: pair.UserID, ModuleID: pair.ModuleID, Reason: "already_enrolled", EnrollmentID: &id,
			})
			continue
		}

		result.Created = append(result.Created, newEnrollmentResponse(created, module, now))
		s.publish(ctx, events.EnrollmentAssigned, enrollmentEventData(created, module))
	}

	s.logger.Info("Bulk assignment finished",
		"created", len(result.Created),
		"skipped", len(result.Skipped))

	return result, nil
}

// createCycle enrolls the user unless the latest cycle of the pair is still
// active, in which case that cycle is returned as existing.
func (s *enrollmentService) createCycle(ctx context.Context, tx *gorm.DB, orgID, userID string, module *models.TrainingModule, dueAt *time.Time, assignedBy string) (created, existing *models.Enrollment, err error) {
	latest, err := s.repo.Enrollment().GetLatest(ctx, tx, userID, module.ID)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, nil, persistenceError("get latest enrollment", err)
	}
	if latest != nil && !latest.IsExpiredAt(s.now()) {
		return nil, latest, nil
	}

	enrollment := &models.Enrollment{
		OrgID:      orgID,
		UserID:     userID,
		ModuleID:   module.ID,
		Cycle:      1,
		Status:     models.EnrollmentNotStarted,
		DueAt:      dueAt,
		AssignedBy: assignedBy,
	}
	if latest != nil {
		enrollment.Cycle = latest.Cycle + 1
		enrollment.PreviousEnrollmentID = &latest.ID
	}

	// The insert runs under a savepoint: on Postgres a failed statement
	// aborts the enclosing transaction, and the winner lookup below needs it
	err = tx.Transaction(func(sp *gorm.DB) error {
		return s.repo.Enrollment().Create(ctx, sp, enrollment)
	})
	if err != nil {
		if repositories.IsDuplicateError(err) {
			// A concurrent assignment created the same cycle first
			winner, getErr := s.repo.Enrollment().GetLatest(ctx, tx, userID, module.ID)
			if getErr != nil {
				return nil, nil, persistenceError("get latest enrollment", getErr)
			}
			return nil, winner, nil
		}
		return nil, nil, persistenceError("create enrollment", err)
	}
	return enrollment, nil, nil
}

// ===== LEARNER TRANSITIONS =====

func (s *enrollmentService) Start(ctx context.Context, id uint, actor Actor) (*EnrollmentResponse, error) {
	s.logger.Info("Starting enrollment", "enrollment_id", id, "user_id", actor.UserID)

	enrollment, module, err := s.loadOwned(ctx, nil, id, actor, "start")
	if err != nil {
		return nil, err
	}

	if errs := s.validator.GetBusinessValidator().ValidateStatusTransition(enrollment.Status, models.EnrollmentInProgress); errs.HasErrors() {
		return nil, newTransitionError(enrollment.Status, "start", "enrollment is already completed")
	}
	if enrollment.Status == models.EnrollmentInProgress {
		return newEnrollmentResponse(enrollment, module, s.now()), nil
	}

	now := s.now()
	applied, err := s.repo.Enrollment().MarkStarted(ctx, nil, id, now, models.StartedProgress)
	if err != nil {
		return nil, persistenceError("start enrollment", err)
	}

	enrollment, err = s.getEnrollment(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if !applied {
		if enrollment.Status == models.EnrollmentInProgress {
			return newEnrollmentResponse(enrollment, module, now), nil
		}
		return nil, newTransitionError(enrollment.Status, "start", "enrollment changed concurrently")
	}

	s.publish(ctx, events.EnrollmentStarted, enrollmentEventData(enrollment, module))
	return newEnrollmentResponse(enrollment, module, now), nil
}

func (s *enrollmentService) CompleteLesson(ctx context.Context, id uint, lessonIndex int, actor Actor) (*EnrollmentResponse, error) {
	s.logger.Info("Completing lesson",
		"enrollment_id", id,
		"lesson_index", lessonIndex,
		"user_id", actor.UserID)

	enrollment, module, err := s.loadOwned(ctx, nil, id, actor, "complete lesson of")
	if err != nil {
		return nil, err
	}

	total := module.TotalLessons()
	if lessonIndex < 0 || lessonIndex >= total {
		return nil, validationError(fmt.Errorf("lesson index %d out of range for %d lessons", lessonIndex, total))
	}

	switch enrollment.Status {
	case models.EnrollmentNotStarted:
		return nil, newTransitionError(enrollment.Status, "complete lesson of", "enrollment has not been started")
	case models.EnrollmentInProgress:
	default:
		return nil, newTransitionError(enrollment.Status, "complete lesson of", "enrollment is already completed")
	}

	now := s.now()
	if lessonIndex < enrollment.LessonsCompleted {
		return newEnrollmentResponse(enrollment, module, now), nil
	}
	if lessonIndex > enrollment.LessonsCompleted {
		return nil, newTransitionError(enrollment.Status, "complete lesson of",
			fmt.Sprintf("lesson %d must be completed before lesson %d", enrollment.LessonsCompleted, lessonIndex))
	}

	progress := models.LessonProgress(lessonIndex, total)
	// The module may have gained lessons since progress was stored
	if progress < enrollment.Progress {
		progress = enrollment.Progress
	}
	final := lessonIndex == total-1
	autoComplete := final && !module.RequiresAcknowledgment

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		applied, err := s.repo.Enrollment().AdvanceLesson(ctx, tx, id, enrollment.LessonsCompleted, lessonIndex+1, progress)
		if err != nil {
			return persistenceError("advance lesson", err)
		}
		if !applied {
			return newTransitionError(enrollment.Status, "complete lesson of", "enrollment changed concurrently")
		}
		if !autoComplete {
			return nil
		}
		applied, err = s.repo.Enrollment().MarkCompleted(ctx, tx, id, now, module.ExpiresAfter(now))
		if err != nil {
			return persistenceError("complete enrollment", err)
		}
		if !applied {
			return newTransitionError(enrollment.Status, "complete", "enrollment changed concurrently")
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			// Replays of the same lesson land here when they race; treat them as no-ops
			current, getErr := s.getEnrollment(ctx, nil, id)
			if getErr == nil && current.LessonsCompleted > lessonIndex {
				return newEnrollmentResponse(current, module, now), nil
			}
		}
		return nil, txError("complete lesson", err)
	}

	enrollment, err = s.getEnrollment(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if autoComplete {
		s.publish(ctx, events.EnrollmentCompleted, enrollmentEventData(enrollment, module))
		s.logger.Info("Enrollment completed", "enrollment_id", id, "expires_at", enrollment.ExpiresAt)
	}
	return newEnrollmentResponse(enrollment, module, now), nil
}

// UpdateProgress records a raw progress value. It never completes an
// enrollment; 100 is reached only through the final lesson.
func (s *enrollmentService) UpdateProgress(ctx context.Context, id uint, progress int, actor Actor) (*EnrollmentResponse, error) {
	s.logger.Info("Updating progress",
		"enrollment_id", id,
		"progress", progress,
		"user_id", actor.UserID)

	enrollment, module, err := s.loadOwned(ctx, nil, id, actor, "update progress of")
	if err != nil {
		return nil, err
	}

	if enrollment.IsTerminal() {
		return nil, newTransitionError(enrollment.Status, "update progress of", "enrollment is already completed")
	}
	if errs := s.validator.GetBusinessValidator().ValidateProgressWrite(enrollment.Progress, progress); errs.HasErrors() {
		if progress < 0 || progress > models.FullProgress {
			return nil, validationError(errs)
		}
		return nil, newTransitionError(enrollment.Status, "update progress of", errs.Error())
	}

	now := s.now()
	if progress == enrollment.Progress {
		return newEnrollmentResponse(enrollment, module, now), nil
	}
	if progress >= models.FullProgress {
		return nil, newTransitionError(enrollment.Status, "update progress of", "progress reaches 100 only by completing the final lesson")
	}
	// Raw writes stay below the next lesson so every lesson still raises progress
	if next := models.LessonProgress(enrollment.LessonsCompleted, module.TotalLessons()); progress >= next {
		return nil, newTransitionError(enrollment.Status, "update progress of",
			fmt.Sprintf("progress must stay below %d until lesson %d is completed", next, enrollment.LessonsCompleted))
	}

	var applied bool
	started := enrollment.Status == models.EnrollmentNotStarted
	if started {
		applied, err = s.repo.Enrollment().MarkStarted(ctx, nil, id, now, progress)
	} else {
		applied, err = s.repo.Enrollment().RaiseProgress(ctx, nil, id, progress)
	}
	if err != nil {
		return nil, persistenceError("update progress", err)
	}

	enrollment, err = s.getEnrollment(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if !applied {
		if enrollment.Progress == progress && !enrollment.IsTerminal() {
			return newEnrollmentResponse(enrollment, module, now), nil
		}
		return nil, newTransitionError(enrollment.Status, "update progress of",
			fmt.Sprintf("progress is already %d", enrollment.Progress))
	}

	if started {
		s.publish(ctx, events.EnrollmentStarted, enrollmentEventData(enrollment, module))
	}
	return newEnrollmentResponse(enrollment, module, now), nil
}

// Complete finishes an enrollment whose lessons are all done and whose
// module needs no acknowledgment.
func (s *enrollmentService) Complete(ctx context.Context, id uint, actor Actor) (*EnrollmentResponse, error) {
	s.logger.Info("Completing enrollment", "enrollment_id", id, "user_id", actor.UserID)

	enrollment, module, err := s.loadOwned(ctx, nil, id, actor, "complete")
	if err != nil {
		return nil, err
	}

	switch {
	case enrollment.IsTerminal():
		return nil, newTransitionError(enrollment.Status, "complete", "enrollment is already completed")
	case enrollment.Status != models.EnrollmentInProgress:
		return nil, newTransitionError(enrollment.Status, "complete", "enrollment has not been started")
	case enrollment.Progress < models.FullProgress:
		return nil, newTransitionError(enrollment.Status, "complete",
			fmt.Sprintf("progress is %d, all lessons must be completed", enrollment.Progress))
	case module.RequiresAcknowledgment:
		return nil, newTransitionError(enrollment.Status, "complete", "module requires an acknowledgment")
	}

	now := s.now()
	applied, err := s.repo.Enrollment().MarkCompleted(ctx, nil, id, now, module.ExpiresAfter(now))
	if err != nil {
		return nil, persistenceError("complete enrollment", err)
	}
	if !applied {
		return nil, newTransitionError(enrollment.Status, "complete", "enrollment changed concurrently")
	}

	enrollment, err = s.getEnrollment(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.EnrollmentCompleted, enrollmentEventData(enrollment, module))
	return newEnrollmentResponse(enrollment, module, now), nil
}

// ===== ACKNOWLEDGMENT =====

// Acknowledge records the attestation and completes the enrollment in one
// transaction. Either both happen or neither does.
func (s *enrollmentService) Acknowledge(ctx context.Context, id uint, req *AcknowledgeRequest, actor Actor) (*AcknowledgeResponse, error) {
	s.logger.Info("Recording acknowledgment", "enrollment_id", id, "user_id", actor.UserID)

	if err := s.validator.Validate(req); err != nil {
		return nil, validationError(err)
	}

	now := s.now()
	var (
		enrollment *models.Enrollment
		module     *models.TrainingModule
		ack        *models.Acknowledgment
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		enrollment, module, err = s.loadOwned(ctx, tx, id, actor, "acknowledge")
		if err != nil {
			return err
		}

		exists, err := s.repo.Acknowledgment().ExistsForEnrollment(ctx, tx, id)
		if err != nil {
			return persistenceError("check acknowledgment", err)
		}
		if exists {
			return ErrDuplicateAcknowledgment
		}

		if err := acknowledgmentEligibility(enrollment, module); err != nil {
			return err
		}

		ack = &models.Acknowledgment{
			EnrollmentID:       id,
			UserID:             enrollment.UserID,
			ModuleID:           enrollment.ModuleID,
			AcknowledgmentText: req.AcknowledgmentText,
			AcknowledgedAt:     now,
		}
		if err := s.repo.Acknowledgment().Create(ctx, tx, ack); err != nil {
			if repositories.IsDuplicateError(err) {
				return ErrDuplicateAcknowledgment
			}
			return persistenceError("create acknowledgment", err)
		}

		applied, err := s.repo.Enrollment().MarkCompleted(ctx, tx, id, now, module.ExpiresAfter(now))
		if err != nil {
			return persistenceError("complete enrollment", err)
		}
		if !applied {
			return newTransitionError(enrollment.Status, "complete", "enrollment changed concurrently")
		}

		enrollment, err = s.getEnrollment(ctx, tx, id)
		return err
	})
	if err != nil {
		s.logger.Warn("Acknowledgment rejected", "enrollment_id", id, "error", err)
		return nil, txError("acknowledge", err)
	}

	s.publish(ctx, events.AcknowledgmentRecorded, events.AcknowledgmentEventData{
		AcknowledgmentID: ack.ID,
		EnrollmentID:     id,
		UserID:           ack.UserID,
		ModuleID:         ack.ModuleID,
		AcknowledgedAt:   ack.AcknowledgedAt,
	})
	s.publish(ctx, events.EnrollmentCompleted, enrollmentEventData(enrollment, module))

	s.logger.Info("Acknowledgment recorded",
		"enrollment_id", id,
		"acknowledgment_id", ack.ID,
		"expires_at", enrollment.ExpiresAt)

	return &AcknowledgeResponse{
		Enrollment:     newEnrollmentResponse(enrollment, module, now),
		Acknowledgment: ack,
	}, nil
}

func acknowledgmentEligibility(enrollment *models.Enrollment, module *models.TrainingModule) error {
	switch {
	case !module.RequiresAcknowledgment:
		return &NotEligibleError{Reason: "module does not require an acknowledgment"}
	case enrollment.IsTerminal():
		return &NotEligibleError{Reason: "enrollment is already completed"}
	case enrollment.Progress < models.FullProgress:
		return &NotEligibleError{Reason: fmt.Sprintf("progress is %d, all lessons must be completed", enrollment.Progress)}
	}
	return nil
}

func (s *enrollmentService) GetAcknowledgmentPrompt(ctx context.Context, id uint, actor Actor) (*AcknowledgmentPrompt, error) {
	enrollment, module, err := s.loadOwned(ctx, nil, id, actor, "view acknowledgment of")
	if err != nil {
		return nil, err
	}

	prompt := &AcknowledgmentPrompt{
		EnrollmentID: id,
		ModuleID:     module.ID,
		ModuleTitle:  module.Title,
		Required:     module.RequiresAcknowledgment,
		Pending:      acknowledgmentPending(enrollment, module),
		Statement:    models.AcknowledgmentStatement(module.Title),
	}

	if module.RequiresAcknowledgment {
		recorded, err := s.repo.Acknowledgment().GetByEnrollment(ctx, nil, id)
		if err != nil && !repositories.IsNotFoundError(err) {
			return nil, persistenceError("get acknowledgment", err)
		}
		prompt.Recorded = recorded
	}

	return prompt, nil
}

// ===== RETAKE =====

// Retake opens the next cycle for an expired enrollment. The expired cycle
// and its acknowledgment are left untouched.
func (s *enrollmentService) Retake(ctx context.Context, id uint, actor Actor) (*EnrollmentResponse, error) {
	s.logger.Info("Retaking enrollment", "enrollment_id", id, "user_id", actor.UserID)

	enrollment, module, err := s.loadOwned(ctx, nil, id, actor, "retake")
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !enrollment.IsExpiredAt(now) {
		return nil, newTransitionError(derivedStatus(enrollment, now), "retake", "only expired enrollments can be retaken")
	}

	var next *models.Enrollment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		latest, err := s.repo.Enrollment().GetLatest(ctx, tx, enrollment.UserID, enrollment.ModuleID)
		if err != nil {
			return persistenceError("get latest enrollment", err)
		}
		if latest.ID != enrollment.ID {
			return newTransitionError(models.EnrollmentExpired, "retake",
				fmt.Sprintf("cycle %d already exists", latest.Cycle))
		}

		previousID := enrollment.ID
		next = &models.Enrollment{
			OrgID:                enrollment.OrgID,
			UserID:               enrollment.UserID,
			ModuleID:             enrollment.ModuleID,
			Cycle:                enrollment.Cycle + 1,
			PreviousEnrollmentID: &previousID,
			Status:               models.EnrollmentNotStarted,
			AssignedBy:           actor.UserID,
		}
		if err := s.repo.Enrollment().Create(ctx, tx, next); err != nil {
			if repositories.IsDuplicateError(err) {
				return newTransitionError(models.EnrollmentExpired, "retake", "next cycle was created concurrently")
			}
			return persistenceError("create enrollment", err)
		}
		return nil
	})
	if err != nil {
		return nil, txError("retake", err)
	}

	s.publish(ctx, events.EnrollmentAssigned, enrollmentEventData(next, module))

	s.logger.Info("Retake enrollment created",
		"enrollment_id", next.ID,
		"previous_enrollment_id", id,
		"cycle", next.Cycle)

	return newEnrollmentResponse(next, module, now), nil
}

// ===== READS =====

func (s *enrollmentService) GetByID(ctx context.Context, id uint, actor Actor) (*EnrollmentResponse, error) {
	enrollment, err := s.getEnrollment(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if !canView(enrollment, actor) {
		return nil, NewPermissionError(actor.UserID, id, "enrollment", "view", "not owner or organization manager")
	}

	module, err := s.getModule(ctx, nil, enrollment.ModuleID)
	if err != nil && !errors.Is(err, ErrModuleNotFound) {
		return nil, err
	}
	return newEnrollmentResponse(enrollment, module, s.now()), nil
}

func (s *enrollmentService) ListForUser(ctx context.Context, userID string, filters repositories.EnrollmentFilters, actor Actor) ([]*EnrollmentResponse, int64, error) {
	if userID != actor.UserID && !actor.IsManager() {
		return nil, 0, NewPermissionError(actor.UserID, 0, "enrollment", "list", "not owner or manager")
	}

	filters.UserID = &userID
	if actor.OrgID != "" {
		filters.OrgID = &actor.OrgID
	}
	return s.list(ctx, filters)
}

func (s *enrollmentService) ListForOrg(ctx context.Context, filters repositories.EnrollmentFilters, actor Actor) ([]*EnrollmentResponse, int64, error) {
	if !actor.IsManager() {
		return nil, 0, NewPermissionError(actor.UserID, 0, "enrollment", "list", "manager role required")
	}

	filters.OrgID = &actor.OrgID
	return s.list(ctx, filters)
}

func (s *enrollmentService) list(ctx context.Context, filters repositories.EnrollmentFilters) ([]*EnrollmentResponse, int64, error) {
	enrollments, total, err := s.repo.Enrollment().List(ctx, nil, filters)
	if err != nil {
		return nil, 0, persistenceError("list enrollments", err)
	}
	responses, err := s.toResponses(ctx, enrollments)
	if err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

func (s *enrollmentService) History(ctx context.Context, userID, moduleID string, actor Actor) ([]*EnrollmentResponse, error) {
	enrollments, err := s.repo.Enrollment().History(ctx, nil, userID, moduleID)
	if err != nil {
		return nil, persistenceError("enrollment history", err)
	}
	for _, e := range enrollments {
		if !canView(e, actor) {
			return nil, NewPermissionError(actor.UserID, e.ID, "enrollment", "view", "not owner or organization manager")
		}
	}
	return s.toResponses(ctx, enrollments)
}

// PendingAcknowledgments lists the caller's enrollments that finished every
// lesson but still wait for the attestation.
func (s *enrollmentService) PendingAcknowledgments(ctx context.Context, actor Actor) ([]*EnrollmentResponse, error) {
	status := models.EnrollmentInProgress
	enrollments, _, err := s.repo.Enrollment().List(ctx, nil, repositories.EnrollmentFilters{
		UserID:     &actor.UserID,
		Status:     &status,
		LatestOnly: true,
	})
	if err != nil {
		return nil, persistenceError("list enrollments", err)
	}

	responses, err := s.toResponses(ctx, enrollments)
	if err != nil {
		return nil, err
	}
	pending := make([]*EnrollmentResponse, 0, len(responses))
	for _, r := range responses {
		if r.AcknowledgmentPending {
			pending = append(pending, r)
		}
	}
	return pending, nil
}
