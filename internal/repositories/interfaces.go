package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/training-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type ModuleFilters struct {
	Tier        *int                `json:"tier"`
	Audience    *string             `json:"audience"`
	TriggerType *models.TriggerType `json:"trigger_type"`
	ActiveOnly  bool                `json:"active_only"`
	Limit       int                 `json:"limit"`
	Offset      int                 `json:"offset"`
	SortBy      string              `json:"sort_by"`    // "tier", "title", "created_at"
	SortOrder   string              `json:"sort_order"` // "asc", "desc"
}

type EnrollmentFilters struct {
	OrgID      *string                  `json:"org_id"`
	UserID     *string                  `json:"user_id"`
	ModuleID   *string                  `json:"module_id"`
	Status     *models.EnrollmentStatus `json:"status"`
	LatestOnly bool                     `json:"latest_only"`
	Limit      int                      `json:"limit"`
	Offset     int                      `json:"offset"`
	SortBy     string                   `json:"sort_by"`    // "created_at", "expires_at", "progress"
	SortOrder  string                   `json:"sort_order"` // "asc", "desc"
}

type DocumentFilters struct {
	OrgID        *string                `json:"org_id"`
	DocumentType *models.DocumentType   `json:"document_type"`
	Status       *models.DocumentStatus `json:"status"`
	Limit        int                    `json:"limit"`
	Offset       int                    `json:"offset"`
	SortBy       string                 `json:"sort_by"`    // "expires_at", "issued_at", "created_at", "title"
	SortOrder    string                 `json:"sort_order"` // "asc", "desc"
}

// ===== REPOSITORY INTERFACES =====

// ModuleRepository reads and maintains the training catalog
type ModuleRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.TrainingModule, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) (map[string]*models.TrainingModule, error)
	List(ctx context.Context, tx *gorm.DB, filters ModuleFilters) ([]*models.TrainingModule, int64, error)
	ListActive(ctx context.Context, tx *gorm.DB) ([]*models.TrainingModule, error)
	// Upsert replaces the module row and its lesson list
	Upsert(ctx context.Context, tx *gorm.DB, module *models.TrainingModule) error
}

// EnrollmentRepository persists enrollments. Every mutating method is a
// conditional update and reports whether a row was changed, so a caller
// that lost a race sees false instead of overwriting newer state.
type EnrollmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Enrollment, error)
	GetLatest(ctx context.Context, tx *gorm.DB, userID, moduleID string) (*models.Enrollment, error)
	History(ctx context.Context, tx *gorm.DB, userID, moduleID string) ([]*models.Enrollment, error)
	List(ctx context.Context, tx *gorm.DB, filters EnrollmentFilters) ([]*models.Enrollment, int64, error)
	ListByOrg(ctx context.Context, tx *gorm.DB, orgID string) ([]*models.Enrollment, error)
	ListCompletedExpiringBefore(ctx context.Context, tx *gorm.DB, before time.Time) ([]*models.Enrollment, error)

	MarkStarted(ctx context.Context, tx *gorm.DB, id uint, startedAt time.Time, progress int) (bool, error)
	AdvanceLesson(ctx context.Context, tx *gorm.DB, id uint, fromLessons, toLessons, progress int) (bool, error)
	RaiseProgress(ctx context.Context, tx *gorm.DB, id uint, progress int) (bool, error)
	MarkCompleted(ctx context.Context, tx *gorm.DB, id uint, completedAt, expiresAt time.Time) (bool, error)
}

// AcknowledgmentRepository stores attestation records. There is no update or delete.
type AcknowledgmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, ack *models.Acknowledgment) error
	GetByEnrollment(ctx context.Context, tx *gorm.DB, enrollmentID uint) (*models.Acknowledgment, error)
	ExistsForEnrollment(ctx context.Context, tx *gorm.DB, enrollmentID uint) (bool, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Acknowledgment, error)
}

type DocumentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, doc *models.ComplianceDocument) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ComplianceDocument, error)
	Update(ctx context.Context, tx *gorm.DB, doc *models.ComplianceDocument) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	List(ctx context.Context, tx *gorm.DB, filters DocumentFilters) ([]*models.ComplianceDocument, int64, error)
	// ListExpiringBefore returns documents not yet renewed whose expiry is before the given time
	ListExpiringBefore(ctx context.Context, tx *gorm.DB, orgID *string, before time.Time) ([]*models.ComplianceDocument, error)
	MarkRenewed(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
}

type ReminderRepository interface {
	// Record inserts a reminder log and returns false when it already exists
	Record(ctx context.Context, tx *gorm.DB, log *models.ReminderLog) (bool, error)
}
