package postgres

import (
	"context"
	"time"

	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"gorm.io/gorm"
)

type EnrollmentPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewEnrollmentPostgreSQL(db *gorm.DB) repositories.EnrollmentRepository {
	return &EnrollmentPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

const latestCycleCondition = "cycle = (SELECT MAX(e2.cycle) FROM training_enrollments e2 WHERE e2.user_id = training_enrollments.user_id AND e2.module_id = training_enrollments.module_id)"

func (e *EnrollmentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error {
	err := e.helpers.getDB(tx).WithContext(ctx).Omit("Module", "Acknowledgment").Create(enrollment).Error
	if repositories.IsDuplicateError(err) {
		return repositories.ErrDuplicate
	}
	return err
}

func (e *EnrollmentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := e.helpers.getDB(tx).WithContext(ctx).First(&enrollment, id).Error; err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (e *EnrollmentPostgreSQL) GetLatest(ctx context.Context, tx *gorm.DB, userID, moduleID string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := e.helpers.getDB(tx).WithContext(ctx).
		Where("user_id = ? AND module_id = ?", userID, moduleID).
		Order("cycle DESC").
		First(&enrollment).Error; err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (e *EnrollmentPostgreSQL) History(ctx context.Context, tx *gorm.DB, userID, moduleID string) ([]*models.Enrollment, error) {
	var enrollments []*models.Enrollment
	if err := e.helpers.getDB(tx).WithContext(ctx).
		Where("user_id = ? AND module_id = ?", userID, moduleID).
		Order("cycle ASC").
		Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (e *EnrollmentPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.EnrollmentFilters) ([]*models.Enrollment, int64, error) {
	var enrollments []*models.Enrollment
	var total int64

	query := e.applyFilters(e.helpers.getDB(tx).WithContext(ctx).Model(&models.Enrollment{}), filters)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	allowed := map[string]bool{"created_at": true, "expires_at": true, "progress": true, "completed_at": true, "module_id": true}
	query = e.helpers.ApplyPaginationAndSort(query, allowed, "created_at", filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Find(&enrollments).Error; err != nil {
		return nil, 0, err
	}
	return enrollments, total, nil
}

func (e *EnrollmentPostgreSQL) ListByOrg(ctx context.Context, tx *gorm.DB, orgID string) ([]*models.Enrollment, error) {
	var enrollments []*models.Enrollment
	if err := e.helpers.getDB(tx).WithContext(ctx).
		Where("org_id = ?", orgID).
		Where(latestCycleCondition).
		Order("user_id ASC").Order("module_id ASC").
		Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (e *EnrollmentPostgreSQL) ListCompletedExpiringBefore(ctx context.Context, tx *gorm.DB, before time.Time) ([]*models.Enrollment, error) {
	var enrollments []*models.Enrollment
	if err := e.helpers.getDB(tx).WithContext(ctx).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", models.EnrollmentCompleted, before).
		Where(latestCycleCondition).
		Order("expires_at ASC").
		Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

// ===== CONDITIONAL TRANSITIONS =====

func (e *EnrollmentPostgreSQL) MarkStarted(ctx context.Context, tx *gorm.DB, id uint, startedAt time.Time, progress int) (bool, error) {
	result := e.helpers.getDB(tx).WithContext(ctx).Model(&models.Enrollment{}).
		Where("id = ? AND status = ? AND started_at IS NULL", id, models.EnrollmentNotStarted).
		Updates(map[string]interface{}{
			"status":     models.EnrollmentInProgress,
			"started_at": startedAt,
			"progress":   progress,
		})
	return result.RowsAffected == 1, result.Error
}

func (e *EnrollmentPostgreSQL) AdvanceLesson(ctx context.Context, tx *gorm.DB, id uint, fromLessons, toLessons, progress int) (bool, error) {
	result := e.helpers.getDB(tx).WithContext(ctx).Model(&models.Enrollment{}).
		Where("id = ? AND status = ? AND lessons_completed = ? AND progress <= ?", id, models.EnrollmentInProgress, fromLessons, progress).
		Updates(map[string]interface{}{
			"lessons_completed": toLessons,
			"progress":          progress,
		})
	return result.RowsAffected == 1, result.Error
}

func (e *EnrollmentPostgreSQL) RaiseProgress(ctx context.Context, tx *gorm.DB, id uint, progress int) (bool, error) {
	result := e.helpers.getDB(tx).WithContext(ctx).Model(&models.Enrollment{}).
		Where("id = ? AND status = ? AND progress < ?", id, models.EnrollmentInProgress, progress).
		Update("progress", progress)
	return result.RowsAffected == 1, result.Error
}

func (e *EnrollmentPostgreSQL) MarkCompleted(ctx context.Context, tx *gorm.DB, id uint, completedAt, expiresAt time.Time) (bool, error) {
	result := e.helpers.getDB(tx).WithContext(ctx).Model(&models.Enrollment{}).
		Where("id = ? AND status = ? AND progress = ? AND completed_at IS NULL", id, models.EnrollmentInProgress, models.FullProgress).
		Updates(map[string]interface{}{
			"status":       models.EnrollmentCompleted,
			"completed_at": completedAt,
			"expires_at":   expiresAt,
		})
	return result.RowsAffected == 1, result.Error
}

func (e *EnrollmentPostgreSQL) applyFilters(query *gorm.DB, filters repositories.EnrollmentFilters) *gorm.DB {
	if filters.OrgID != nil {
		query = query.Where("org_id = ?", *filters.OrgID)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.ModuleID != nil {
		query = query.Where("module_id = ?", *filters.ModuleID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.LatestOnly {
		query = query.Where(latestCycleCondition)
	}
	return query
}
