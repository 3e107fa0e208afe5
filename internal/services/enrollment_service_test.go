package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SAP-F-2025/training-service/internal/events"
	"github.com/SAP-F-2025/training-service/internal/expiry"
	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ackText = "I acknowledge that I have completed the Harassment Prevention training."

func TestEnrollment_HarassmentPreventionJourney(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := learner("u1")

	assigned := env.assign(t, "u1", "harassment-prevention")
	assert.Equal(t, models.EnrollmentNotStarted, assigned.Status)
	assert.Equal(t, 0, assigned.Progress)
	assert.Equal(t, 1, assigned.Cycle)
	assert.Nil(t, assigned.StartedAt)
	assert.Equal(t, 3, assigned.TotalLessons)
	id := assigned.ID

	started, err := env.enrollment.Start(ctx, id, user)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentInProgress, started.Status)
	assert.Equal(t, models.StartedProgress, started.Progress)
	require.NotNil(t, started.StartedAt)
	assert.True(t, started.StartedAt.Equal(T1))

	for i, want := range []int{33, 67, 100} {
		resp, err := env.enrollment.CompleteLesson(ctx, id, i, user)
		require.NoError(t, err)
		assert.Equal(t, want, resp.Progress, "lesson %d", i)
		assert.Equal(t, models.EnrollmentInProgress, resp.Status, "lesson %d", i)
	}

	pending, err := env.enrollment.GetByID(ctx, id, user)
	require.NoError(t, err)
	assert.True(t, pending.AcknowledgmentPending)
	assert.Nil(t, pending.CompletedAt)

	_, err = env.enrollment.Complete(ctx, id, user)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	prompt, err := env.enrollment.GetAcknowledgmentPrompt(ctx, id, user)
	require.NoError(t, err)
	assert.True(t, prompt.Required)
	assert.True(t, prompt.Pending)
	assert.Contains(t, prompt.Statement, "Harassment Prevention")
	assert.Nil(t, prompt.Recorded)

	acked, err := env.enrollment.Acknowledge(ctx, id, &AcknowledgeRequest{AcknowledgmentText: ackText}, user)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentCompleted, acked.Enrollment.Status)
	assert.Equal(t, models.FullProgress, acked.Enrollment.Progress)
	require.NotNil(t, acked.Enrollment.CompletedAt)
	require.NotNil(t, acked.Enrollment.ExpiresAt)
	assert.True(t, acked.Enrollment.CompletedAt.Equal(T1))
	assert.True(t, acked.Enrollment.ExpiresAt.Equal(T1.Add(365*day)))
	assert.Equal(t, ackText, acked.Acknowledgment.AcknowledgmentText)
	assert.True(t, acked.Acknowledgment.AcknowledgedAt.Equal(T1))
	assert.False(t, acked.Enrollment.AcknowledgmentPending)

	assert.Len(t, env.publisher.EventsOfType(events.EnrollmentAssigned), 1)
	assert.Len(t, env.publisher.EventsOfType(events.EnrollmentStarted), 1)
	assert.Len(t, env.publisher.EventsOfType(events.AcknowledgmentRecorded), 1)
	assert.Len(t, env.publisher.EventsOfType(events.EnrollmentCompleted), 1)

	t.Run("valid on the last day", func(t *testing.T) {
		env.clock.Set(T1.Add(365 * day))
		resp, err := env.enrollment.GetByID(ctx, id, user)
		require.NoError(t, err)
		assert.Equal(t, models.EnrollmentCompleted, resp.DerivedStatus)
		assert.False(t, resp.IsExpired)
		require.NotNil(t, resp.DaysRemaining)
		assert.Equal(t, 0, *resp.DaysRemaining)
		assert.Equal(t, expiry.UrgencyCritical, resp.Urgency)
	})

	t.Run("expired the day after", func(t *testing.T) {
		env.clock.Set(T1.Add(366 * day))
		resp, err := env.enrollment.GetByID(ctx, id, user)
		require.NoError(t, err)
		assert.Equal(t, models.EnrollmentCompleted, resp.Status)
		assert.Equal(t, models.EnrollmentExpired, resp.DerivedStatus)
		assert.True(t, resp.IsExpired)
		assert.Equal(t, expiry.UrgencyExpired, resp.Urgency)
	})

	t.Run("retake opens a new cycle and keeps history", func(t *testing.T) {
		retake, err := env.enrollment.Retake(ctx, id, user)
		require.NoError(t, err)
		assert.Equal(t, 2, retake.Cycle)
		assert.Equal(t, models.EnrollmentNotStarted, retake.Status)
		require.NotNil(t, retake.PreviousEnrollmentID)
		assert.Equal(t, id, *retake.PreviousEnrollmentID)

		original, err := env.enrollment.GetByID(ctx, id, user)
		require.NoError(t, err)
		assert.Equal(t, models.EnrollmentCompleted, original.Status)
		assert.True(t, original.CompletedAt.Equal(T1))

		ack, err := env.repo.Acknowledgment().GetByEnrollment(ctx, nil, id)
		require.NoError(t, err)
		assert.Equal(t, ackText, ack.AcknowledgmentText)

		history, err := env.enrollment.History(ctx, "u1", "harassment-prevention", user)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, models.EnrollmentExpired, history[0].DerivedStatus)
		assert.Equal(t, models.EnrollmentNotStarted, history[1].DerivedStatus)

		_, err = env.enrollment.Retake(ctx, id, user)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestEnrollment_Assign(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("unknown module", func(t *testing.T) {
		_, err := env.enrollment.Assign(ctx, &AssignRequest{OrgID: testOrg, UserID: "u1", ModuleID: "no-such-module"}, orgManager())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("invalid request", func(t *testing.T) {
		_, err := env.enrollment.Assign(ctx, &AssignRequest{OrgID: testOrg, ModuleID: "harassment-prevention"}, orgManager())
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("due date is checked against the service clock", func(t *testing.T) {
		due := T1.Add(7 * day)
		resp, err := env.enrollment.Assign(ctx, &AssignRequest{OrgID: testOrg, UserID: "u2", ModuleID: "ai-hiring-fundamentals", DueAt: &due}, orgManager())
		require.NoError(t, err)
		require.NotNil(t, resp.DueAt)
		assert.True(t, due.Equal(*resp.DueAt))

		past := T1.Add(-time.Hour)
		_, err = env.enrollment.Assign(ctx, &AssignRequest{OrgID: testOrg, UserID: "u2", ModuleID: "harassment-prevention", DueAt: &past}, orgManager())
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("active enrollment blocks a second one", func(t *testing.T) {
		env.assign(t, "u1", "harassment-prevention")
		_, err := env.enrollment.Assign(ctx, &AssignRequest{OrgID: testOrg, UserID: "u1", ModuleID: "harassment-prevention"}, orgManager())
		assert.ErrorIs(t, err, ErrInvalidTransition)

		var te *TransitionError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, "assign", te.Action)
	})
}

func TestEnrollment_Start(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := learner("u1")
	e := env.assign(t, "u1", "ai-hiring-fundamentals")

	first, err := env.enrollment.Start(ctx, e.ID, user)
	require.NoError(t, err)

	env.clock.Advance(day)
	second, err := env.enrollment.Start(ctx, e.ID, user)
	require.NoError(t, err)
	assert.True(t, first.StartedAt.Equal(*second.StartedAt))
	assert.Len(t, env.publisher.EventsOfType(events.EnrollmentStarted), 1)

	_, err = env.enrollment.Start(ctx, e.ID, learner("u2"))
	assert.ErrorIs(t, err, ErrPermissionDenied)

	env.finish(t, e.ID, "u1")
	_, err = env.enrollment.Start(ctx, e.ID, user)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestEnrollment_CompleteLesson(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := learner("u1")
	e := env.assign(t, "u1", "ai-hiring-fundamentals")

	_, err := env.enrollment.CompleteLesson(ctx, e.ID, 0, user)
	assert.ErrorIs(t, err, ErrInvalidTransition, "not started")

	_, err = env.enrollment.Start(ctx, e.ID, user)
	require.NoError(t, err)

	_, err = env.enrollment.CompleteLesson(ctx, e.ID, 1, user)
	assert.ErrorIs(t, err, ErrInvalidTransition, "out of order")

	_, err = env.enrollment.CompleteLesson(ctx, e.ID, 4, user)
	assert.ErrorIs(t, err, ErrValidation, "out of range")

	resp, err := env.enrollment.CompleteLesson(ctx, e.ID, 0, user)
	require.NoError(t, err)
	assert.Equal(t, 25, resp.Progress)
	assert.Equal(t, 1, resp.LessonsCompleted)

	again, err := env.enrollment.CompleteLesson(ctx, e.ID, 0, user)
	require.NoError(t, err)
	assert.Equal(t, 25, again.Progress)
	assert.Equal(t, 1, again.LessonsCompleted)

	for i, want := range []int{50, 75} {
		resp, err = env.enrollment.CompleteLesson(ctx, e.ID, i+1, user)
		require.NoError(t, err)
		assert.Equal(t, want, resp.Progress)
	}

	final, err := env.enrollment.CompleteLesson(ctx, e.ID, 3, user)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentCompleted, final.Status)
	assert.Equal(t, 100, final.Progress)
	require.NotNil(t, final.ExpiresAt)
	assert.True(t, final.ExpiresAt.Equal(T1.AddDate(0, 12, 0)))
	assert.Len(t, env.publisher.EventsOfType(events.EnrollmentCompleted), 1)

	_, err = env.enrollment.CompleteLesson(ctx, e.ID, 3, user)
	assert.ErrorIs(t, err, ErrInvalidTransition, "completed")
}

func TestEnrollment_UpdateProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := learner("u1")
	e := env.assign(t, "u1", "ai-hiring-fundamentals")

	resp, err := env.enrollment.UpdateProgress(ctx, e.ID, 10, user)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentInProgress, resp.Status)
	assert.Equal(t, 10, resp.Progress)
	assert.NotNil(t, resp.StartedAt)
	assert.Len(t, env.publisher.EventsOfType(events.EnrollmentStarted), 1)

	resp, err = env.enrollment.UpdateProgress(ctx, e.ID, 10, user)
	require.NoError(t, err)
	assert.Equal(t, 10, resp.Progress)

	_, err = env.enrollment.UpdateProgress(ctx, e.ID, 5, user)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = env.enrollment.UpdateProgress(ctx, e.ID, 100, user)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = env.enrollment.UpdateProgress(ctx, e.ID, 101, user)
	assert.ErrorIs(t, err, ErrValidation)

	resp, err = env.enrollment.UpdateProgress(ctx, e.ID, 24, user)
	require.NoError(t, err)
	assert.Equal(t, 24, resp.Progress)

	resp, err = env.enrollment.CompleteLesson(ctx, e.ID, 0, user)
	require.NoError(t, err)
	assert.Equal(t, 25, resp.Progress)

	stored, err := env.repo.Enrollment().GetByID(ctx, nil, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentInProgress, stored.Status)
}

func TestEnrollment_UpdateProgressStaysBelowNextLesson(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := learner("u1")
	e := env.assign(t, "u1", "ai-hiring-fundamentals")
	require.Equal(t, 4, e.TotalLessons)

	for _, progress := range []int{99, 50, 25} {
		_, err := env.enrollment.UpdateProgress(ctx, e.ID, progress, user)
		require.ErrorIs(t, err, ErrInvalidTransition, "progress %d", progress)

		var te *TransitionError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, "update progress of", te.Action)
	}

	stored, err := env.repo.Enrollment().GetByID(ctx, nil, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentNotStarted, stored.Status)
	assert.Equal(t, 0, stored.Progress)

	_, err = env.enrollment.UpdateProgress(ctx, e.ID, 24, user)
	require.NoError(t, err)

	previous := 24
	for i := 0; i < 4; i++ {
		if i > 0 {
			ceiling := models.LessonProgress(i, 4)
			_, err := env.enrollment.UpdateProgress(ctx, e.ID, ceiling, user)
			require.ErrorIs(t, err, ErrInvalidTransition)
			_, err = env.enrollment.UpdateProgress(ctx, e.ID, ceiling-1, user)
			require.NoError(t, err)
			previous = ceiling - 1
		}

		resp, err := env.enrollment.CompleteLesson(ctx, e.ID, i, user)
		require.NoError(t, err)
		assert.Greater(t, resp.Progress, previous, "lesson %d", i)
		assert.Equal(t, models.LessonProgress(i, 4), resp.Progress)
		previous = resp.Progress
	}
	assert.Equal(t, models.FullProgress, previous)
}

func TestEnrollment_CompleteRequiresFullProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := learner("u1")
	e := env.assign(t, "u1", "harassment-prevention")

	_, err := env.enrollment.Complete(ctx, e.ID, user)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = env.enrollment.UpdateProgress(ctx, e.ID, 30, user)
	require.NoError(t, err)
	_, err = env.enrollment.Complete(ctx, e.ID, user)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	stored, err := env.repo.Enrollment().GetByID(ctx, nil, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentInProgress, stored.Status)
	assert.Equal(t, 30, stored.Progress)
	assert.Nil(t, stored.CompletedAt)

	t.Run("module no longer requires acknowledgment", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			_, err := env.enrollment.CompleteLesson(ctx, e.ID, i, user)
			require.NoError(t, err)
		}

		module, err := env.catalog.GetModule(ctx, "harassment-prevention")
		require.NoError(t, err)
		req := moduleRequestFrom(module.TrainingModule)
		req.RequiresAcknowledgment = false
		_, err = env.catalog.UpsertModule(ctx, req)
		require.NoError(t, err)

		done, err := env.enrollment.Complete(ctx, e.ID, user)
		require.NoError(t, err)
		assert.Equal(t, models.EnrollmentCompleted, done.Status)

		_, err = env.enrollment.Complete(ctx, e.ID, user)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestEnrollment_Acknowledge(t *testing.T) {
	ctx := context.Background()
	req := &AcknowledgeRequest{AcknowledgmentText: ackText}

	t.Run("not eligible below full progress", func(t *testing.T) {
		env := newTestEnv(t)
		e := env.assign(t, "u1", "harassment-prevention")
		_, err := env.enrollment.Start(ctx, e.ID, learner("u1"))
		require.NoError(t, err)

		_, err = env.enrollment.Acknowledge(ctx, e.ID, req, learner("u1"))
		assert.ErrorIs(t, err, ErrEnrollmentNotEligible)

		exists, err := env.repo.Acknowledgment().ExistsForEnrollment(ctx, nil, e.ID)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("not eligible for modules without acknowledgment", func(t *testing.T) {
		env := newTestEnv(t)
		e := env.assign(t, "u1", "ai-hiring-fundamentals")
		_, err := env.enrollment.Acknowledge(ctx, e.ID, req, learner("u1"))
		assert.ErrorIs(t, err, ErrEnrollmentNotEligible)
	})

	t.Run("only the learner may acknowledge", func(t *testing.T) {
		env := newTestEnv(t)
		e := env.assign(t, "u1", "harassment-prevention")
		env.finish(t, e.ID, "u1")
		_, err := env.enrollment.Acknowledge(ctx, e.ID, req, learner("u2"))
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("blank text is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		e := env.assign(t, "u1", "harassment-prevention")
		env.finish(t, e.ID, "u1")
		_, err := env.enrollment.Acknowledge(ctx, e.ID, &AcknowledgeRequest{AcknowledgmentText: "   "}, learner("u1"))
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("second acknowledgment is a duplicate", func(t *testing.T) {
		env := newTestEnv(t)
		e := env.assign(t, "u1", "harassment-prevention")
		env.finish(t, e.ID, "u1")

		_, err := env.enrollment.Acknowledge(ctx, e.ID, req, learner("u1"))
		require.NoError(t, err)
		_, err = env.enrollment.Acknowledge(ctx, e.ID, req, learner("u1"))
		assert.ErrorIs(t, err, ErrDuplicateAcknowledgment)

		prompt, err := env.enrollment.GetAcknowledgmentPrompt(ctx, e.ID, learner("u1"))
		require.NoError(t, err)
		assert.False(t, prompt.Pending)
		require.NotNil(t, prompt.Recorded)
	})

	t.Run("failed completion rolls back the record", func(t *testing.T) {
		env := newTestEnv(t)
		e := env.assign(t, "u1", "harassment-prevention")
		env.finish(t, e.ID, "u1")
		env.publisher.ClearEvents()

		env.wire(&faultyRepository{
			Repository: env.repo,
			enrollment: &failingCompletion{EnrollmentRepository: env.repo.Enrollment(), err: errors.New("disk full")},
		})

		_, err := env.enrollment.Acknowledge(ctx, e.ID, req, learner("u1"))
		assert.ErrorIs(t, err, ErrPersistence)

		exists, err := env.repo.Acknowledgment().ExistsForEnrollment(ctx, nil, e.ID)
		require.NoError(t, err)
		assert.False(t, exists)

		stored, err := env.repo.Enrollment().GetByID(ctx, nil, e.ID)
		require.NoError(t, err)
		assert.Equal(t, models.EnrollmentInProgress, stored.Status)
		assert.Equal(t, 100, stored.Progress)
		assert.Empty(t, env.publisher.GetPublishedEvents())
	})

	t.Run("lost completion race rolls back the record", func(t *testing.T) {
		env := newTestEnv(t)
		e := env.assign(t, "u1", "harassment-prevention")
		env.finish(t, e.ID, "u1")

		env.wire(&faultyRepository{
			Repository: env.repo,
			enrollment: &failingCompletion{EnrollmentRepository: env.repo.Enrollment()},
		})

		_, err := env.enrollment.Acknowledge(ctx, e.ID, req, learner("u1"))
		assert.ErrorIs(t, err, ErrInvalidTransition)

		exists, err := env.repo.Acknowledgment().ExistsForEnrollment(ctx, nil, e.ID)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("publish failure keeps the committed state", func(t *testing.T) {
		env := newTestEnv(t)
		e := env.assign(t, "u1", "harassment-prevention")
		env.finish(t, e.ID, "u1")
		env.publisher.FailWith(errors.New("broker down"))

		resp, err := env.enrollment.Acknowledge(ctx, e.ID, req, learner("u1"))
		require.NoError(t, err)
		assert.Equal(t, models.EnrollmentCompleted, resp.Enrollment.Status)
	})
}

func TestEnrollment_BulkAssign(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	req := &BulkAssignRequest{
		OrgID: testOrg,
		Pairs: []AssignmentPair{
			{UserID: "u1", ModuleID: "ai-hiring-fundamentals"},
			{UserID: "u2", ModuleID: "ai-hiring-fundamentals"},
			{UserID: "u1", ModuleID: "ai-hiring-fundamentals"},
			{UserID: "u3", ModuleID: "no-such-module"},
		},
	}

	first, err := env.enrollment.BulkAssign(ctx, req, orgManager())
	require.NoError(t, err)
	assert.Len(t, first.Created, 2)
	require.Len(t, first.Skipped, 1)
	assert.Equal(t, "module_not_found", first.Skipped[0].Reason)

	second, err := env.enrollment.BulkAssign(ctx, req, orgManager())
	require.NoError(t, err)
	assert.Empty(t, second.Created)
	assert.Len(t, second.Skipped, 3)
	for _, s := range second.Skipped[:2] {
		assert.Equal(t, "already_enrolled", s.Reason)
		assert.NotNil(t, s.EnrollmentID)
	}

	all, total, err := env.enrollment.ListForOrg(ctx, repositories.EnrollmentFilters{}, orgManager())
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	t.Run("expired enrollment gets a new cycle", func(t *testing.T) {
		var u1 uint
		for _, c := range first.Created {
			if c.UserID == "u1" {
				u1 = c.ID
			}
		}
		env.finish(t, u1, "u1")
		env.clock.Advance(400 * day)

		third, err := env.enrollment.BulkAssign(ctx, req, orgManager())
		require.NoError(t, err)
		require.Len(t, third.Created, 1)
		assert.Equal(t, "u1", third.Created[0].UserID)
		assert.Equal(t, 2, third.Created[0].Cycle)
	})
}

func TestEnrollment_ConcurrentAssignmentCollision(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	winner := env.insertEnrollment(t, &models.Enrollment{
		UserID:   "u1",
		ModuleID: "ai-hiring-fundamentals",
		Status:   models.EnrollmentNotStarted,
	})

	t.Run("assign reports the winning cycle", func(t *testing.T) {
		env.wire(&faultyRepository{
			Repository: env.repo,
			enrollment: &staleLatest{EnrollmentRepository: env.repo.Enrollment(), userID: "u1"},
		})

		_, err := env.enrollment.Assign(ctx, &AssignRequest{OrgID: testOrg, UserID: "u1", ModuleID: "ai-hiring-fundamentals"}, orgManager())
		require.ErrorIs(t, err, ErrInvalidTransition)
		assert.NotErrorIs(t, err, ErrPersistence)

		var te *TransitionError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, "assign", te.Action)
	})

	t.Run("bulk assign skips the pair and continues", func(t *testing.T) {
		env.wire(&faultyRepository{
			Repository: env.repo,
			enrollment: &staleLatest{EnrollmentRepository: env.repo.Enrollment(), userID: "u1"},
		})

		result, err := env.enrollment.BulkAssign(ctx, &BulkAssignRequest{
			OrgID: testOrg,
			Pairs: []AssignmentPair{
				{UserID: "u1", ModuleID: "ai-hiring-fundamentals"},
				{UserID: "u2", ModuleID: "ai-hiring-fundamentals"},
			},
		}, orgManager())
		require.NoError(t, err)

		require.Len(t, result.Skipped, 1)
		assert.Equal(t, "already_enrolled", result.Skipped[0].Reason)
		require.NotNil(t, result.Skipped[0].EnrollmentID)
		assert.Equal(t, winner.ID, *result.Skipped[0].EnrollmentID)

		require.Len(t, result.Created, 1)
		assert.Equal(t, "u2", result.Created[0].UserID)
	})

	env.wire(env.repo)
	all, total, err := env.enrollment.ListForUser(ctx, "u1", repositories.EnrollmentFilters{}, orgManager())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, all, 1)
	assert.Equal(t, winner.ID, all[0].ID)
}

func TestEnrollment_Reads(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	e := env.assign(t, "u1", "harassment-prevention")
	env.assign(t, "u2", "harassment-prevention")

	_, err := env.enrollment.GetByID(ctx, e.ID, learner("u2"))
	assert.ErrorIs(t, err, ErrPermissionDenied)

	resp, err := env.enrollment.GetByID(ctx, e.ID, orgManager())
	require.NoError(t, err)
	assert.Equal(t, "Harassment Prevention", resp.ModuleTitle)
	assert.Equal(t, expiry.UrgencyNone, resp.Urgency)

	other := Actor{UserID: "mgr-2", OrgID: "org-2", Role: models.RoleManager}
	_, err = env.enrollment.GetByID(ctx, e.ID, other)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = env.enrollment.GetByID(ctx, 9999, orgManager())
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = env.enrollment.ListForOrg(ctx, repositories.EnrollmentFilters{}, learner("u1"))
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, _, err = env.enrollment.ListForUser(ctx, "u2", repositories.EnrollmentFilters{}, learner("u1"))
	assert.ErrorIs(t, err, ErrPermissionDenied)

	mine, total, err := env.enrollment.ListForUser(ctx, "u1", repositories.EnrollmentFilters{}, learner("u1"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, e.ID, mine[0].ID)

	pending, err := env.enrollment.PendingAcknowledgments(ctx, learner("u1"))
	require.NoError(t, err)
	assert.Empty(t, pending)

	env.finish(t, e.ID, "u1")
	pending, err = env.enrollment.PendingAcknowledgments(ctx, learner("u1"))
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, e.ID, pending[0].ID)
}

func moduleRequestFrom(m *models.TrainingModule) *ModuleUpsertRequest {
	req := &ModuleUpsertRequest{
		ID:                     m.ID,
		Title:                  m.Title,
		Description:            m.Description,
		Tier:                   m.Tier,
		Audience:               []string(m.Audience),
		ValidityMonths:         m.ValidityMonths,
		RequiresAcknowledgment: m.RequiresAcknowledgment,
		TriggerType:            m.TriggerType,
		TriggerValues:          []string(m.TriggerValues),
		MinEmployees:           m.MinEmployees,
	}
	for _, l := range m.Lessons {
		req.Lessons = append(req.Lessons, LessonRequest{Title: l.Title, DurationMinutes: l.DurationMinutes})
	}
	return req
}
